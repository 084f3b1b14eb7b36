package scene

import (
	"github.com/Carmen-Shannon/oxy-collada/common"
	"github.com/Carmen-Shannon/oxy-collada/engine/model"
)

// Assembler accumulates the records of one parse and produces the immutable Scene.
// An Assembler is owned by a single parse and is not safe for concurrent use.
type Assembler struct {
	filePath  string
	metadata  model.Metadata
	images    map[string]*model.Image
	materials map[string]*model.Material
	meshes    map[string]*model.Mesh
	root      []*model.Node
}

// NewAssembler creates an empty Assembler for the given base path.
//
// Parameters:
//   - filePath: the base path; empty selects DefaultFilePath
//
// Returns:
//   - *Assembler: the assembler
func NewAssembler(filePath string) *Assembler {
	a := &Assembler{}
	a.Reset(filePath)
	return a
}

// Reset clears all accumulated state so the next parse starts from an empty scene.
//
// Parameters:
//   - filePath: the base path; empty selects DefaultFilePath
func (a *Assembler) Reset(filePath string) {
	a.filePath = common.Coalesce(filePath, DefaultFilePath)
	a.metadata = model.Metadata{}
	a.images = make(map[string]*model.Image)
	a.materials = make(map[string]*model.Material)
	a.meshes = make(map[string]*model.Mesh)
	a.root = []*model.Node{}
}

// FilePath returns the base path of the scene under construction.
//
// Returns:
//   - string: the base path
func (a *Assembler) FilePath() string {
	return a.filePath
}

// SetMetadata replaces the scene metadata.
//
// Parameters:
//   - metadata: the metadata record
func (a *Assembler) SetMetadata(metadata model.Metadata) {
	a.metadata = metadata
}

// AddImage inserts an image under id.
//
// Returns:
//   - bool: true if an image with the same id was replaced
func (a *Assembler) AddImage(id string, img *model.Image) bool {
	return insert(a.images, id, img)
}

// AddMaterial inserts a material under id.
//
// Returns:
//   - bool: true if a material with the same id was replaced
func (a *Assembler) AddMaterial(id string, mat *model.Material) bool {
	return insert(a.materials, id, mat)
}

// AddMesh inserts a mesh under id.
//
// Returns:
//   - bool: true if a mesh with the same id was replaced
func (a *Assembler) AddMesh(id string, mesh *model.Mesh) bool {
	return insert(a.meshes, id, mesh)
}

// AppendRoot appends a top-level node. Nil nodes are ignored.
//
// Parameters:
//   - n: the node to append
func (a *Assembler) AppendRoot(n *model.Node) {
	if n == nil {
		return
	}
	a.root = append(a.root, n)
}

// Build wraps the accumulated state into a new Scene. The returned scene owns copies
// of the maps and root slice, so a later Reset does not affect it.
//
// Returns:
//   - Scene: the finished scene
func (a *Assembler) Build() Scene {
	return NewScene(
		WithFilePath(a.filePath),
		WithMetadata(a.metadata),
		WithImages(a.images),
		WithMaterials(a.materials),
		WithMeshes(a.meshes),
		WithRootNodes(a.root...),
	)
}

func insert[V any](dst map[string]V, id string, v V) bool {
	_, replaced := dst[id]
	dst[id] = v
	return replaced
}
