package loader

import (
	"fmt"
	"strconv"

	"github.com/Carmen-Shannon/oxy-collada/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// MaxInstanceDepth bounds how many nested instance_node expansions a single branch may perform.
const MaxInstanceDepth = 32

// MaxSceneNodes bounds the number of nodes one parse may produce, counting every copy made
// by instance_node expansion. Nodes past the budget are dropped.
const MaxSceneNodes = 1 << 18

// colladaNodeExtractorImpl is the implementation of the colladaNodeExtractor interface.
type colladaNodeExtractorImpl struct {
	libraryNodes elementIndex
	warn         func(err error)

	// expanding holds the library node ids on the current instance_node chain.
	expanding      map[string]bool
	budget         int
	count          int
	budgetReported bool
}

// colladaNodeExtractor defines the interface for decoding node elements into scene tree nodes.
type colladaNodeExtractor interface {
	// ExtractNode decodes a node element and its whole subtree. instance_node references are
	// expanded by decoding the referenced library node in place, so the result never holds
	// a bare reference. Child nodes that fail to decode are omitted and reported through the
	// warning callback.
	//
	// Parameters:
	//   - el: the node element
	//
	// Returns:
	//   - *model.Node: the decoded node
	//   - error: a SkippableElementError if the node itself is malformed
	ExtractNode(el *colladaElement) (*model.Node, error)
}

var _ colladaNodeExtractor = &colladaNodeExtractorImpl{}

// newColladaNodeExtractor creates a new node extractor.
//
// Parameters:
//   - libraryNodes: the index of node elements declared under library_nodes
//   - warn: callback receiving errors for dropped descendants (may be nil)
//
// Returns:
//   - colladaNodeExtractor: the node extractor
func newColladaNodeExtractor(libraryNodes elementIndex, warn func(err error)) colladaNodeExtractor {
	if warn == nil {
		warn = func(error) {}
	}
	return &colladaNodeExtractorImpl{
		libraryNodes: libraryNodes,
		warn:         warn,
		expanding:    make(map[string]bool),
		budget:       MaxSceneNodes,
	}
}

func (e *colladaNodeExtractorImpl) ExtractNode(el *colladaElement) (*model.Node, error) {
	return e.extract(el, 0)
}

// extract decodes el; instanceDepth counts the instance_node expansions above el.
func (e *colladaNodeExtractorImpl) extract(el *colladaElement, instanceDepth int) (*model.Node, error) {
	id := el.ID()
	if e.count >= e.budget {
		return nil, skipElement(ElementNode, id, "scene exceeds %d nodes", e.budget)
	}
	e.count++

	node := &model.Node{
		ID:   id,
		Name: el.Attr(attrName),
		SID:  el.Attr(attrSID),
		Type: el.Attr(attrType),
	}
	if node.Type == "" {
		node.Type = "NODE"
	}

	transform := mgl32.Ident4()
	hasTransform := false

	for _, child := range el.Children() {
		switch child.Tag() {
		case "matrix", "translate", "rotate", "scale", "lookat":
			m, err := transformMatrix(child)
			if err != nil {
				return nil, skipElement(ElementNode, id, "%v", err)
			}
			transform = transform.Mul4(m)
			hasTransform = true

		case tagInstanceGeometry:
			inst, err := extractGeometryInstance(child)
			if err != nil {
				e.drop(skipElement(ElementNode, id, "%v", err))
				continue
			}
			node.Geometries = append(node.Geometries, inst)

		case tagInstanceNode:
			sub, err := e.expandInstance(child, instanceDepth)
			if err != nil {
				e.drop(err)
				continue
			}
			node.Children = append(node.Children, sub)

		case tagNode:
			sub, err := e.extract(child, instanceDepth)
			if err != nil {
				e.drop(err)
				continue
			}
			node.Children = append(node.Children, sub)
		}
	}

	if hasTransform {
		m := [16]float32(transform)
		node.LocalTransform = &m
	}

	return node, nil
}

// expandInstance decodes the library node referenced by an instance_node element.
func (e *colladaNodeExtractorImpl) expandInstance(inst *colladaElement, instanceDepth int) (*model.Node, error) {
	ref := stripIDRef(inst.Attr(attrURL))
	if ref == "" {
		return nil, skipElement(ElementNode, "", "instance_node without url")
	}
	if instanceDepth >= MaxInstanceDepth {
		return nil, skipElement(ElementNode, ref, "instance depth exceeds %d", MaxInstanceDepth)
	}
	if e.expanding[ref] {
		return nil, skipElement(ElementNode, ref, "instance_node cycle")
	}
	target := e.libraryNodes.Lookup(ref)
	if target == nil {
		return nil, skipElement(ElementNode, ref, "instanced node not found in library_nodes")
	}

	e.expanding[ref] = true
	defer delete(e.expanding, ref)
	return e.extract(target, instanceDepth+1)
}

// drop reports a dropped descendant. Once the node budget is spent only the first refusal
// is reported.
func (e *colladaNodeExtractorImpl) drop(err error) {
	if e.count >= e.budget {
		if e.budgetReported {
			return
		}
		e.budgetReported = true
	}
	e.warn(err)
}

// extractGeometryInstance decodes an instance_geometry element with its material bindings.
func extractGeometryInstance(el *colladaElement) (model.GeometryInstance, error) {
	meshID := stripIDRef(el.Attr(attrURL))
	if meshID == "" {
		return model.GeometryInstance{}, fmt.Errorf("instance_geometry without url")
	}

	inst := model.GeometryInstance{
		MeshID: meshID,
		Name:   el.Attr(attrName),
	}

	bind := el.Child("bind_material")
	if bind == nil {
		return inst, nil
	}
	technique := bind.Child("technique_common")
	if technique == nil {
		return inst, nil
	}
	for _, im := range technique.ChildrenByTag("instance_material") {
		binding := model.MaterialBinding{
			Symbol: im.Attr("symbol"),
			Target: stripIDRef(im.Attr("target")),
		}
		for _, bvi := range im.ChildrenByTag("bind_vertex_input") {
			set, err := strconv.Atoi(bvi.Attr("input_set"))
			if err != nil {
				set = 0
			}
			if binding.TexCoordBindings == nil {
				binding.TexCoordBindings = make(map[string]int)
			}
			binding.TexCoordBindings[bvi.Attr("semantic")] = set
		}
		inst.Materials = append(inst.Materials, binding)
	}
	return inst, nil
}

// transformMatrix converts one transform element into a column-major matrix.
func transformMatrix(el *colladaElement) (mgl32.Mat4, error) {
	tag := el.Tag()
	values, err := parseFloats(el.Text())
	if err != nil {
		return mgl32.Mat4{}, fmt.Errorf("%s: %w", tag, err)
	}

	switch tag {
	case "matrix":
		if len(values) != 16 {
			return mgl32.Mat4{}, fmt.Errorf("matrix: want 16 values, got %d", len(values))
		}
		// Documents store matrices row-major.
		return mgl32.Mat4(values).Transpose(), nil

	case "translate":
		if len(values) != 3 {
			return mgl32.Mat4{}, fmt.Errorf("translate: want 3 values, got %d", len(values))
		}
		return mgl32.Translate3D(values[0], values[1], values[2]), nil

	case "rotate":
		if len(values) != 4 {
			return mgl32.Mat4{}, fmt.Errorf("rotate: want 4 values, got %d", len(values))
		}
		axis := mgl32.Vec3{values[0], values[1], values[2]}
		if axis.Len() == 0 {
			return mgl32.Ident4(), nil
		}
		return mgl32.HomogRotate3D(mgl32.DegToRad(values[3]), axis.Normalize()), nil

	case "scale":
		if len(values) != 3 {
			return mgl32.Mat4{}, fmt.Errorf("scale: want 3 values, got %d", len(values))
		}
		return mgl32.Scale3D(values[0], values[1], values[2]), nil

	case "lookat":
		if len(values) != 9 {
			return mgl32.Mat4{}, fmt.Errorf("lookat: want 9 values, got %d", len(values))
		}
		eye := mgl32.Vec3{values[0], values[1], values[2]}
		center := mgl32.Vec3{values[3], values[4], values[5]}
		up := mgl32.Vec3{values[6], values[7], values[8]}
		// lookat places the node, so it is the inverse of the view matrix.
		return mgl32.LookAtV(eye, center, up).Inv(), nil
	}

	return mgl32.Ident4(), nil
}
