package loader

import (
	"fmt"
	"io"
	"log"

	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
)

// referenceIndex holds the id indexes that must exist before any library is scanned,
// so references resolve regardless of declaration order.
type referenceIndex struct {
	nodes   elementIndex
	effects elementIndex
}

// colladaImporterImpl is the implementation of the colladaImporter interface.
type colladaImporterImpl struct {
	logger *log.Logger
}

// colladaImporter defines the interface for orchestrating a full COLLADA import.
// It combines the parser, the reference index and the library resolver to produce a complete Scene.
// Every call runs as an independent import task, so one importer may serve concurrent callers.
type colladaImporter interface {
	// Import parses a complete document and assembles its scene.
	//
	// Parameters:
	//   - data: the raw document text
	//   - filePath: the base path recorded on the scene and used to resolve image files
	//
	// Returns:
	//   - scene.Scene: the assembled scene
	//   - error: ErrEmptyDocument, ErrMalformedDocument or another document-fatal error
	Import(data []byte, filePath string) (scene.Scene, error)

	// ImportReader reads a complete document from r and assembles its scene.
	//
	// Parameters:
	//   - r: the reader providing the document text
	//   - filePath: the base path recorded on the scene
	//
	// Returns:
	//   - scene.Scene: the assembled scene
	//   - error: error if reading or import fails
	ImportReader(r io.Reader, filePath string) (scene.Scene, error)
}

var _ colladaImporter = &colladaImporterImpl{}

// newColladaImporter creates a new COLLADA importer.
//
// Parameters:
//   - logger: the logger used for skipped elements
//
// Returns:
//   - colladaImporter: the importer
func newColladaImporter(logger *log.Logger) colladaImporter {
	return &colladaImporterImpl{logger: logger}
}

func (imp *colladaImporterImpl) Import(data []byte, filePath string) (scene.Scene, error) {
	return newImportTask(filePath, imp.logger).run(data)
}

func (imp *colladaImporterImpl) ImportReader(r io.Reader, filePath string) (scene.Scene, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return imp.Import(data, filePath)
}

// importTask carries all state of one parse. It is used once and discarded.
type importTask struct {
	parser    colladaParser
	assembler *scene.Assembler
	logger    *log.Logger
}

func newImportTask(filePath string, logger *log.Logger) *importTask {
	return &importTask{
		parser:    newColladaParser(),
		assembler: scene.NewAssembler(filePath),
		logger:    logger,
	}
}

func (t *importTask) run(data []byte) (scene.Scene, error) {
	if err := t.parser.Parse(data); err != nil {
		return nil, err
	}
	doc := t.parser.Document()

	refs := indexReferences(doc)
	t.assembler.SetMetadata(newColladaAssetExtractor(doc).ExtractMetadata())

	resolver := newColladaLibraryResolver(doc, t.assembler, refs, t.logger)
	for _, kind := range libraryScanOrder {
		if err := resolver.ParseLib(kind); err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", kind, err)
		}
	}

	return t.assembler.Build(), nil
}

// indexReferences collects every node under library_nodes and every effect under
// library_effects, across all such containers.
func indexReferences(doc *colladaDocument) referenceIndex {
	var nodes, effects []*colladaElement
	for _, lib := range doc.FindAll(tagLibraryNodes) {
		nodes = lib.appendAll(nodes, tagNode)
	}
	for _, lib := range doc.FindAll(tagLibraryEffects) {
		effects = lib.appendAll(effects, tagEffect)
	}
	return referenceIndex{
		nodes:   newElementIndex(nodes),
		effects: newElementIndex(effects),
	}
}
