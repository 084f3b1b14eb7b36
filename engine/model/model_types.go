package model

import (
	"maps"

	"github.com/Carmen-Shannon/oxy-collada/common"
)

// --- Asset Types ---

// Contributor describes one authoring contributor listed in a document asset block.
type Contributor struct {
	// Author is the name of the author.
	Author string

	// AuthoringTool is the name of the tool used to author the document.
	AuthoringTool string

	// Comments holds free-form comments left by the contributor.
	Comments string

	// Copyright holds the copyright notice.
	Copyright string

	// SourceData is the URI of the source the document was exported from.
	SourceData string
}

// Unit describes the document length unit.
type Unit struct {
	// Name is the unit name (e.g. "meter", "inch").
	Name string

	// Meter is the length of one unit expressed in meters.
	Meter float64
}

// Metadata describes the authoring information of a document.
// Exactly one Metadata record exists per parsed scene.
type Metadata struct {
	// Contributors are all contributors listed in the asset block.
	Contributors []Contributor

	// Created is the raw creation timestamp as written in the document.
	Created string

	// Modified is the raw modification timestamp as written in the document.
	Modified string

	// Title is the document title.
	Title string

	// Subject is the document subject.
	Subject string

	// Keywords is the raw keyword list.
	Keywords string

	// Revision is the document revision string.
	Revision string

	// Unit is the length unit of the document.
	Unit Unit

	// UpAxis is the up-axis convention (X_UP, Y_UP or Z_UP).
	UpAxis string
}

// DefaultMetadata returns the metadata used when a document has no asset block.
//
// Returns:
//   - Metadata: metadata with a meter unit and a Y_UP axis
func DefaultMetadata() Metadata {
	return Metadata{
		Unit:   Unit{Name: "meter", Meter: 1.0},
		UpAxis: UpAxisY,
	}
}

// Up-axis conventions recognized in asset blocks.
const (
	UpAxisX = "X_UP"
	UpAxisY = "Y_UP"
	UpAxisZ = "Z_UP"
)

// --- Image Types ---

// Image is an image declaration from the image library.
type Image struct {
	// ID is the identifier the image is keyed by.
	ID string

	// Name is the human-readable image name.
	Name string

	// Filename is the raw init_from reference as written in the document.
	Filename string

	// Path is Filename resolved against the scene base path.
	Path string
}

// --- Mesh Types ---

// PrimitiveKind names the primitive element a Primitive was decoded from.
type PrimitiveKind string

const (
	PrimitiveTriangles  PrimitiveKind = "triangles"
	PrimitivePolylist   PrimitiveKind = "polylist"
	PrimitivePolygons   PrimitiveKind = "polygons"
	PrimitiveLines      PrimitiveKind = "lines"
	PrimitiveLinestrips PrimitiveKind = "linestrips"
	PrimitiveTrifans    PrimitiveKind = "trifans"
	PrimitiveTristrips  PrimitiveKind = "tristrips"
)

// Primitive is a single de-indexed draw batch within a mesh.
// Polygon kinds are triangulated, so Indices always describe triangles except
// for line kinds, which describe line segments.
type Primitive struct {
	// Kind is the primitive element the batch was decoded from.
	Kind PrimitiveKind

	// Material is the material symbol bound at instance time.
	Material string

	// Positions holds xyz triples.
	Positions []float32

	// Normals holds xyz triples, or is empty when the primitive has no normals.
	Normals []float32

	// TexCoords holds st pairs, or is empty when the primitive has no texture coordinates.
	TexCoords []float32

	// Indices index into the per-vertex buffers.
	Indices []uint32

	// Count is the primitive count declared by the document.
	Count int
}

// VertexCount returns the number of de-indexed vertices in the primitive.
//
// Returns:
//   - int: the vertex count
func (p *Primitive) VertexCount() int {
	return len(p.Positions) / 3
}

// Mesh is geometry decoded from a geometry element's mesh subtree.
type Mesh struct {
	// ID is the identifier of the geometry element the mesh came from.
	ID string

	// Name is the geometry name.
	Name string

	// Primitives are the draw batches in document order.
	Primitives []Primitive

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin [3]float32

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax [3]float32
}

// --- Material Types ---

// Shading techniques of the COMMON profile.
const (
	TechniquePhong    = "phong"
	TechniqueBlinn    = "blinn"
	TechniqueLambert  = "lambert"
	TechniqueConstant = "constant"
)

// Material is a material declaration resolved against its effect.
type Material struct {
	// ID is the identifier of the material element.
	ID string

	// Name is the material name.
	Name string

	// EffectID is the stripped identifier of the instanced effect.
	EffectID string

	// Technique is the shading technique of the effect.
	Technique string

	// Emission is the emitted RGBA color.
	Emission [4]float32

	// Ambient is the ambient RGBA color.
	Ambient [4]float32

	// Diffuse is the diffuse RGBA color.
	Diffuse [4]float32

	// Specular is the specular RGBA color.
	Specular [4]float32

	// Reflective is the reflective RGBA color.
	Reflective [4]float32

	// Transparent is the transparent RGBA color.
	Transparent [4]float32

	// Shininess is the specular exponent.
	Shininess float32

	// Reflectivity is the reflection amount.
	Reflectivity float32

	// Transparency is the transparency factor (1.0 = opaque under A_ONE).
	Transparency float32

	// IndexOfRefraction is the refraction index.
	IndexOfRefraction float32

	// DoubleSided reports whether back faces must be rendered.
	DoubleSided bool

	// Textures maps a channel name (diffuse, normal, ...) to its texture reference.
	Textures map[string]*common.TextureRef

	// Degraded is set when the referenced effect could not be located and the
	// material carries a default appearance.
	Degraded bool
}

// DefaultMaterial returns a material with the appearance used when its effect is missing.
//
// Parameters:
//   - id: the material identifier
//   - name: the material name
//
// Returns:
//   - *Material: a white constant-shaded material
func DefaultMaterial(id, name string) *Material {
	return &Material{
		ID:           id,
		Name:         name,
		Technique:    TechniqueConstant,
		Emission:     [4]float32{0, 0, 0, 1},
		Ambient:      [4]float32{0, 0, 0, 1},
		Diffuse:      [4]float32{1, 1, 1, 1},
		Specular:     [4]float32{0, 0, 0, 1},
		Transparency: 1,
		Textures:     make(map[string]*common.TextureRef),
	}
}

// --- Node Types ---

// MaterialBinding binds a material symbol used by a geometry to a material identifier.
type MaterialBinding struct {
	// Symbol is the symbol used by mesh primitives.
	Symbol string

	// Target is the stripped material identifier.
	Target string

	// TexCoordBindings maps an effect texcoord semantic to the mesh input set.
	TexCoordBindings map[string]int
}

// GeometryInstance references a mesh, resolved lazily by the renderer.
type GeometryInstance struct {
	// MeshID is the stripped geometry identifier.
	MeshID string

	// Name is the instance name.
	Name string

	// Materials are the material bindings in document order.
	Materials []MaterialBinding
}

// Node is one item of the scene tree. Each node is owned by exactly one parent.
type Node struct {
	// ID is the node identifier (may be empty).
	ID string

	// Name is the node name.
	Name string

	// SID is the scoped identifier.
	SID string

	// Type is NODE or JOINT.
	Type string

	// LocalTransform is the column-major local transform, or nil when the node
	// declares no transform elements.
	LocalTransform *[16]float32

	// Geometries are the geometry instances in document order.
	Geometries []GeometryInstance

	// Children are the child nodes in document order.
	Children []*Node
}

// Root is the scene tree root.
type Root struct {
	// Children are the top-level nodes in document order.
	Children []*Node
}

// Clone returns a deep copy of the node subtree.
//
// Returns:
//   - *Node: the copied node, or nil if n is nil
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		ID:   n.ID,
		Name: n.Name,
		SID:  n.SID,
		Type: n.Type,
	}
	if n.LocalTransform != nil {
		m := *n.LocalTransform
		out.LocalTransform = &m
	}
	if len(n.Geometries) > 0 {
		out.Geometries = make([]GeometryInstance, len(n.Geometries))
		for i, g := range n.Geometries {
			out.Geometries[i] = g
			out.Geometries[i].Materials = append([]MaterialBinding(nil), g.Materials...)
			for j := range out.Geometries[i].Materials {
				out.Geometries[i].Materials[j].TexCoordBindings = maps.Clone(g.Materials[j].TexCoordBindings)
			}
		}
	}
	if len(n.Children) > 0 {
		out.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}
