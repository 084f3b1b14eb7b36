package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
)

// loaderBackend defines the generic interface for turning fetched document bytes into scenes.
// Concrete implementations (e.g., colladaLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load performs a full scene import from document bytes.
	//
	// Parameters:
	//   - data: the raw document
	//   - filePath: the base path recorded on the scene
	//
	// Returns:
	//   - scene.Scene: the imported scene
	//   - error: error if the document cannot be imported
	Load(data []byte, filePath string) (scene.Scene, error)

	// LoadReader imports a scene from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing document data
	//   - filePath: the base path recorded on the scene
	//
	// Returns:
	//   - scene.Scene: the imported scene
	//   - error: error if the document cannot be imported
	LoadReader(r io.Reader, filePath string) (scene.Scene, error)
}
