package scene

import (
	"github.com/Carmen-Shannon/oxy-collada/engine/model"
)

// DefaultFilePath is the base path used when none is configured.
const DefaultFilePath = "/"

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithFilePath sets the base path used to resolve relative resource URLs.
// An empty path keeps DefaultFilePath.
//
// Parameters:
//   - path: the base path
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithFilePath(path string) SceneBuilderOption {
	return func(s *scene) {
		if path != "" {
			s.filePath = path
		}
	}
}

// WithMetadata sets the document metadata.
//
// Parameters:
//   - metadata: the metadata record
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMetadata(metadata model.Metadata) SceneBuilderOption {
	return func(s *scene) {
		s.metadata = metadata
	}
}

// WithImages adds images keyed by identifier. Later entries replace earlier ones with the same key.
//
// Parameters:
//   - images: the images to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithImages(images map[string]*model.Image) SceneBuilderOption {
	return func(s *scene) {
		for id, img := range images {
			s.images[id] = img
		}
	}
}

// WithMaterials adds materials keyed by identifier.
//
// Parameters:
//   - materials: the materials to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMaterials(materials map[string]*model.Material) SceneBuilderOption {
	return func(s *scene) {
		for id, mat := range materials {
			s.materials[id] = mat
		}
	}
}

// WithMeshes adds meshes keyed by identifier.
//
// Parameters:
//   - meshes: the meshes to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMeshes(meshes map[string]*model.Mesh) SceneBuilderOption {
	return func(s *scene) {
		for id, mesh := range meshes {
			s.meshes[id] = mesh
		}
	}
}

// WithRootNodes appends top-level nodes to the scene root, preserving their order.
// Nil nodes are ignored.
//
// Parameters:
//   - nodes: the nodes to append
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithRootNodes(nodes ...*model.Node) SceneBuilderOption {
	return func(s *scene) {
		for _, n := range nodes {
			if n != nil {
				s.root.Children = append(s.root.Children, n)
			}
		}
	}
}
