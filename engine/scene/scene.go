package scene

import (
	"github.com/Carmen-Shannon/oxy-collada/engine/model"
)

// Scene is the immutable result of one successful document load: the document metadata,
// the identifier-keyed image, material, and mesh libraries, and the root of the node tree.
// Map accessors return copies, so callers cannot alter the scene's key sets. The records
// themselves are shared and must be treated as read-only.
type Scene interface {
	// FilePath returns the base path used to resolve relative resource URLs referenced by the document.
	//
	// Returns:
	//   - string: the base path
	FilePath() string

	// Metadata returns the document authoring information.
	//
	// Returns:
	//   - model.Metadata: the metadata record
	Metadata() model.Metadata

	// Images returns a copy of the image map keyed by identifier.
	//
	// Returns:
	//   - map[string]*model.Image: the images
	Images() map[string]*model.Image

	// Image retrieves an image by identifier. Returns nil if not found.
	//
	// Parameters:
	//   - id: the image identifier
	//
	// Returns:
	//   - *model.Image: the image or nil
	Image(id string) *model.Image

	// Materials returns a copy of the material map keyed by identifier.
	//
	// Returns:
	//   - map[string]*model.Material: the materials
	Materials() map[string]*model.Material

	// Material retrieves a material by identifier. Returns nil if not found.
	//
	// Parameters:
	//   - id: the material identifier
	//
	// Returns:
	//   - *model.Material: the material or nil
	Material(id string) *model.Material

	// Meshes returns a copy of the mesh map keyed by identifier.
	//
	// Returns:
	//   - map[string]*model.Mesh: the meshes
	Meshes() map[string]*model.Mesh

	// Mesh retrieves a mesh by identifier. Returns nil if not found.
	//
	// Parameters:
	//   - id: the mesh identifier
	//
	// Returns:
	//   - *model.Mesh: the mesh or nil
	Mesh(id string) *model.Mesh

	// Root returns a deep copy of the scene tree. The root is never nil, and changes made to
	// the copy do not reach the scene.
	//
	// Returns:
	//   - *model.Root: the root holding top-level nodes in document order
	Root() *model.Root

	// NodeCount returns the total number of nodes in the tree.
	//
	// Returns:
	//   - int: the node count
	NodeCount() int

	// Walk visits every node depth-first in document order. Returning false from fn
	// skips the children of the visited node.
	//
	// Parameters:
	//   - fn: the visitor, called with each node and its depth (0 for top-level nodes)
	Walk(fn func(node *model.Node, depth int) bool)

	// ToMap converts the scene into a generic tree of maps, slices, strings, and numbers
	// suitable for JSON encoding and JSONPath queries.
	//
	// Returns:
	//   - map[string]any: the scene tree
	ToMap() map[string]any
}

// scene is the implementation of the Scene interface.
type scene struct {
	filePath  string
	metadata  model.Metadata
	images    map[string]*model.Image
	materials map[string]*model.Material
	meshes    map[string]*model.Mesh
	root      *model.Root
}

var _ Scene = &scene{}

// NewScene creates a new Scene with the given options applied. A scene created without
// options is empty but structurally complete.
//
// Parameters:
//   - options: functional options to populate the scene
//
// Returns:
//   - Scene: the new scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		filePath:  DefaultFilePath,
		metadata:  model.DefaultMetadata(),
		images:    make(map[string]*model.Image),
		materials: make(map[string]*model.Material),
		meshes:    make(map[string]*model.Mesh),
		root:      &model.Root{Children: []*model.Node{}},
	}

	for _, option := range options {
		option(s)
	}
	return s
}

func (s *scene) FilePath() string {
	return s.filePath
}

func (s *scene) Metadata() model.Metadata {
	return s.metadata
}

func (s *scene) Images() map[string]*model.Image {
	return copyMap(s.images)
}

func (s *scene) Image(id string) *model.Image {
	return s.images[id]
}

func (s *scene) Materials() map[string]*model.Material {
	return copyMap(s.materials)
}

func (s *scene) Material(id string) *model.Material {
	return s.materials[id]
}

func (s *scene) Meshes() map[string]*model.Mesh {
	return copyMap(s.meshes)
}

func (s *scene) Mesh(id string) *model.Mesh {
	return s.meshes[id]
}

func (s *scene) Root() *model.Root {
	root := &model.Root{Children: make([]*model.Node, len(s.root.Children))}
	for i, n := range s.root.Children {
		root.Children[i] = n.Clone()
	}
	return root
}

func (s *scene) NodeCount() int {
	count := 0
	s.Walk(func(*model.Node, int) bool {
		count++
		return true
	})
	return count
}

func (s *scene) Walk(fn func(node *model.Node, depth int) bool) {
	for _, n := range s.root.Children {
		walkNode(n, 0, fn)
	}
}

// walkNode visits n and, unless fn declines, its descendants.
func walkNode(n *model.Node, depth int, fn func(*model.Node, int) bool) {
	if n == nil {
		return
	}
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walkNode(c, depth+1, fn)
	}
}

func copyMap[V any](src map[string]V) map[string]V {
	out := make(map[string]V, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
