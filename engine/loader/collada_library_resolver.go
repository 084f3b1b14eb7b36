package loader

import (
	"log"

	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
)

// libraryKind names a top-level container scanned by the library resolver.
type libraryKind string

const (
	libraryVisualScene libraryKind = tagVisualScene
	libraryGeometries  libraryKind = tagLibraryGeometries
	libraryMaterials   libraryKind = tagLibraryMaterials
	libraryImages      libraryKind = tagLibraryImages
)

// libraryScanOrder is the fixed order in which libraries are consumed.
var libraryScanOrder = []libraryKind{
	libraryVisualScene,
	libraryGeometries,
	libraryMaterials,
	libraryImages,
}

// colladaLibraryResolverImpl is the implementation of the colladaLibraryResolver interface.
type colladaLibraryResolverImpl struct {
	document  *colladaDocument
	assembler *scene.Assembler
	logger    *log.Logger

	nodes     colladaNodeExtractor
	meshes    colladaMeshExtractor
	materials colladaMaterialExtractor
	images    colladaImageExtractor
}

// colladaLibraryResolver defines the interface for scanning one library container and feeding
// its decoded children into the scene assembler.
type colladaLibraryResolver interface {
	// ParseLib scans the first element with the library's tag. Only direct element children
	// are visited, each dispatched by tag to its interpreter. Children that are skipped or
	// produce no record are logged and dropped. A missing container contributes nothing.
	//
	// Parameters:
	//   - kind: the library to scan
	//
	// Returns:
	//   - error: a document-fatal error from an interpreter, or nil
	ParseLib(kind libraryKind) error
}

var _ colladaLibraryResolver = &colladaLibraryResolverImpl{}

// newColladaLibraryResolver creates a library resolver over a parsed document.
//
// Parameters:
//   - document: the parsed document
//   - assembler: the assembler receiving decoded records
//   - refs: the library_nodes and library_effects indexes built before any scan
//   - logger: the logger used for skipped children
//
// Returns:
//   - colladaLibraryResolver: the resolver
func newColladaLibraryResolver(document *colladaDocument, assembler *scene.Assembler, refs referenceIndex, logger *log.Logger) colladaLibraryResolver {
	r := &colladaLibraryResolverImpl{
		document:  document,
		assembler: assembler,
		logger:    logger,
		meshes:    newColladaMeshExtractor(),
		materials: newColladaMaterialExtractor(refs.effects),
		images:    newColladaImageExtractor(assembler.FilePath()),
	}
	r.nodes = newColladaNodeExtractor(refs.nodes, r.warn)
	return r
}

func (r *colladaLibraryResolverImpl) ParseLib(kind libraryKind) error {
	lib := r.document.Find(string(kind))
	if lib == nil {
		return nil
	}

	for _, child := range lib.Children() {
		if err := r.dispatch(child); err != nil {
			if IsSkippable(err) {
				r.warn(err)
				continue
			}
			return err
		}
	}
	return nil
}

// dispatch decodes one library child by tag and inserts the record. Unknown tags are ignored.
func (r *colladaLibraryResolverImpl) dispatch(el *colladaElement) error {
	switch el.Tag() {
	case tagNode:
		node, err := r.nodes.ExtractNode(el)
		if err != nil {
			return err
		}
		r.assembler.AppendRoot(node)

	case tagGeometry:
		mesh, err := r.meshes.ExtractMesh(el)
		if err != nil {
			return err
		}
		if mesh != nil && r.assembler.AddMesh(mesh.ID, mesh) {
			r.logger.Printf("[WARN] duplicate geometry id %q, keeping the last declaration", mesh.ID)
		}

	case tagMaterial:
		mat, err := r.materials.ExtractMaterial(el)
		if err != nil {
			return err
		}
		if mat == nil {
			return nil
		}
		if mat.Degraded {
			r.logger.Printf("[WARN] material %q: effect %q not found, using default appearance", mat.ID, mat.EffectID)
		}
		if r.assembler.AddMaterial(mat.ID, mat) {
			r.logger.Printf("[WARN] duplicate material id %q, keeping the last declaration", mat.ID)
		}

	case tagImage:
		img, err := r.images.ExtractImage(el)
		if err != nil {
			return err
		}
		if img != nil && r.assembler.AddImage(img.ID, img) {
			r.logger.Printf("[WARN] duplicate image id %q, keeping the last declaration", img.ID)
		}
	}
	return nil
}

func (r *colladaLibraryResolverImpl) warn(err error) {
	r.logger.Printf("[WARN] %v", err)
}
