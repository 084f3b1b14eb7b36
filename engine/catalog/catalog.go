// Package catalog indexes loaded scenes in a SQLite database so their contents can be listed
// and searched without re-parsing the source documents.
package catalog

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-collada/engine/model"
	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	url TEXT PRIMARY KEY,
	file_path TEXT NOT NULL,
	title TEXT,
	up_axis TEXT,
	unit_name TEXT,
	unit_meter REAL,
	created TEXT,
	modified TEXT,
	loaded_at INTEGER NOT NULL,
	record JSON
);

CREATE TABLE IF NOT EXISTS meshes (
	document TEXT NOT NULL,
	id TEXT NOT NULL,
	name TEXT,
	primitives INTEGER NOT NULL,
	vertices INTEGER NOT NULL,
	indices INTEGER NOT NULL,
	PRIMARY KEY (document, id)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS materials (
	document TEXT NOT NULL,
	id TEXT NOT NULL,
	name TEXT,
	effect_id TEXT,
	technique TEXT,
	degraded INTEGER NOT NULL,
	PRIMARY KEY (document, id)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS images (
	document TEXT NOT NULL,
	id TEXT NOT NULL,
	name TEXT,
	path TEXT,
	PRIMARY KEY (document, id)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS nodes (
	document TEXT NOT NULL,
	seq INTEGER NOT NULL,
	id TEXT,
	name TEXT,
	depth INTEGER NOT NULL,
	geometries INTEGER NOT NULL,
	PRIMARY KEY (document, seq)
) WITHOUT ROWID;
CREATE INDEX IF NOT EXISTS idx_nodes_id ON nodes(id);
`

// DocumentSummary is one catalogued document.
type DocumentSummary struct {
	URL       string
	FilePath  string
	Title     string
	UpAxis    string
	Unit      model.Unit
	Created   string
	Modified  string
	LoadedAt  time.Time
	Meshes    int
	Materials int
	Images    int
	Nodes     int
}

// MeshSummary is one catalogued mesh.
type MeshSummary struct {
	Document   string
	ID         string
	Name       string
	Primitives int
	Vertices   int
	Indices    int
}

// catalogImpl is the implementation of the Catalog interface.
type catalogImpl struct {
	mu sync.Mutex
	db *sql.DB
}

// Catalog defines the interface for recording scene summaries and reading them back.
type Catalog interface {
	// Record stores the summary of a scene under url, replacing any earlier record for the same url.
	//
	// Parameters:
	//   - url: the location the scene was loaded from
	//   - s: the loaded scene
	//
	// Returns:
	//   - error: error if the write fails
	Record(url string, s scene.Scene) error

	// Documents lists every catalogued document ordered by url.
	//
	// Returns:
	//   - []DocumentSummary: the documents
	//   - error: error if the read fails
	Documents() ([]DocumentSummary, error)

	// Meshes lists the meshes of one document ordered by id.
	//
	// Parameters:
	//   - url: the document url
	//
	// Returns:
	//   - []MeshSummary: the meshes
	//   - error: error if the read fails
	Meshes(url string) ([]MeshSummary, error)

	// FindNode returns the urls of every document containing a node with the given id.
	//
	// Parameters:
	//   - id: the node id
	//
	// Returns:
	//   - []string: the matching document urls, ordered
	//   - error: error if the read fails
	FindNode(id string) ([]string, error)

	// Close releases the database.
	//
	// Returns:
	//   - error: error if closing fails
	Close() error
}

var _ Catalog = &catalogImpl{}

// Open opens (or creates) a catalog database at dbPath and initializes its schema.
//
// Parameters:
//   - dbPath: the database file path
//
// Returns:
//   - Catalog: the catalog
//   - error: error if the database cannot be opened or initialized
func Open(dbPath string) (Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// One connection keeps writes serialized on a single handle.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &catalogImpl{db: db}, nil
}

func (c *catalogImpl) Record(url string, s scene.Scene) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"documents", "meshes", "materials", "images", "nodes"} {
		column := "document"
		if table == "documents" {
			column = "url"
		}
		if _, err := tx.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, column), url); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	meta := s.Metadata()
	if _, err := tx.Exec(`
		INSERT INTO documents (url, file_path, title, up_axis, unit_name, unit_meter, created, modified, loaded_at, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		url, s.FilePath(), meta.Title, meta.UpAxis, meta.Unit.Name, meta.Unit.Meter,
		meta.Created, meta.Modified, time.Now().Unix(), scene.JSON(s, 0),
	); err != nil {
		return fmt.Errorf("insert document: %w", err)
	}

	meshes := s.Meshes()
	for _, id := range scene.SortedKeys(meshes) {
		m := meshes[id]
		vertices, indices := 0, 0
		for i := range m.Primitives {
			vertices += m.Primitives[i].VertexCount()
			indices += len(m.Primitives[i].Indices)
		}
		if _, err := tx.Exec(`INSERT INTO meshes (document, id, name, primitives, vertices, indices) VALUES (?, ?, ?, ?, ?, ?)`,
			url, id, m.Name, len(m.Primitives), vertices, indices); err != nil {
			return fmt.Errorf("insert mesh %q: %w", id, err)
		}
	}

	materials := s.Materials()
	for _, id := range scene.SortedKeys(materials) {
		m := materials[id]
		if _, err := tx.Exec(`INSERT INTO materials (document, id, name, effect_id, technique, degraded) VALUES (?, ?, ?, ?, ?, ?)`,
			url, id, m.Name, m.EffectID, m.Technique, m.Degraded); err != nil {
			return fmt.Errorf("insert material %q: %w", id, err)
		}
	}

	images := s.Images()
	for _, id := range scene.SortedKeys(images) {
		img := images[id]
		if _, err := tx.Exec(`INSERT INTO images (document, id, name, path) VALUES (?, ?, ?, ?)`,
			url, id, img.Name, img.Path); err != nil {
			return fmt.Errorf("insert image %q: %w", id, err)
		}
	}

	seq := 0
	var walkErr error
	s.Walk(func(n *model.Node, depth int) bool {
		if walkErr != nil {
			return false
		}
		if _, err := tx.Exec(`INSERT INTO nodes (document, seq, id, name, depth, geometries) VALUES (?, ?, ?, ?, ?, ?)`,
			url, seq, n.ID, n.Name, depth, len(n.Geometries)); err != nil {
			walkErr = fmt.Errorf("insert node %q: %w", n.ID, err)
			return false
		}
		seq++
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (c *catalogImpl) Documents() ([]DocumentSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`
		SELECT d.url, d.file_path, d.title, d.up_axis, d.unit_name, d.unit_meter, d.created, d.modified, d.loaded_at,
			(SELECT COUNT(*) FROM meshes m WHERE m.document = d.url),
			(SELECT COUNT(*) FROM materials t WHERE t.document = d.url),
			(SELECT COUNT(*) FROM images i WHERE i.document = d.url),
			(SELECT COUNT(*) FROM nodes n WHERE n.document = d.url)
		FROM documents d ORDER BY d.url`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []DocumentSummary
	for rows.Next() {
		var d DocumentSummary
		var loadedAt int64
		if err := rows.Scan(&d.URL, &d.FilePath, &d.Title, &d.UpAxis, &d.Unit.Name, &d.Unit.Meter,
			&d.Created, &d.Modified, &loadedAt, &d.Meshes, &d.Materials, &d.Images, &d.Nodes); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		d.LoadedAt = time.Unix(loadedAt, 0)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *catalogImpl) Meshes(url string) ([]MeshSummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT document, id, name, primitives, vertices, indices FROM meshes WHERE document = ? ORDER BY id`, url)
	if err != nil {
		return nil, fmt.Errorf("query meshes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []MeshSummary
	for rows.Next() {
		var m MeshSummary
		if err := rows.Scan(&m.Document, &m.ID, &m.Name, &m.Primitives, &m.Vertices, &m.Indices); err != nil {
			return nil, fmt.Errorf("scan mesh: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (c *catalogImpl) FindNode(id string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows, err := c.db.Query(`SELECT DISTINCT document FROM nodes WHERE id = ? ORDER BY document`, id)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		out = append(out, url)
	}
	return out, rows.Err()
}

func (c *catalogImpl) Close() error {
	return c.db.Close()
}
