package loader

import (
	"io"
	"log"

	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
)

// colladaLoaderBackendImpl is the implementation of colladaLoaderBackend.
type colladaLoaderBackendImpl struct {
	importer colladaImporter
}

// colladaLoaderBackend is a loaderBackend implementation for COLLADA documents.
// It delegates to the colladaImporter for parsing and extraction.
type colladaLoaderBackend interface {
	loaderBackend
}

var _ colladaLoaderBackend = &colladaLoaderBackendImpl{}

// newColladaLoaderBackend creates a new COLLADA loader backend.
//
// Parameters:
//   - logger: the logger used for skipped elements
//
// Returns:
//   - colladaLoaderBackend: the loader backend for .dae files
func newColladaLoaderBackend(logger *log.Logger) colladaLoaderBackend {
	return &colladaLoaderBackendImpl{
		importer: newColladaImporter(logger),
	}
}

func (b *colladaLoaderBackendImpl) Load(data []byte, filePath string) (scene.Scene, error) {
	return b.importer.Import(data, filePath)
}

func (b *colladaLoaderBackendImpl) LoadReader(r io.Reader, filePath string) (scene.Scene, error) {
	return b.importer.ImportReader(r, filePath)
}
