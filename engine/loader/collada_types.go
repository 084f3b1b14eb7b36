package loader

import (
	"fmt"
	"strconv"
	"strings"
)

// Element and attribute names used across the COLLADA interpreters.
const (
	tagAsset             = "asset"
	tagLibraryNodes      = "library_nodes"
	tagLibraryGeometries = "library_geometries"
	tagLibraryMaterials  = "library_materials"
	tagLibraryImages     = "library_images"
	tagLibraryEffects    = "library_effects"
	tagVisualScene       = "visual_scene"
	tagNode              = "node"
	tagGeometry          = "geometry"
	tagMesh              = "mesh"
	tagMaterial          = "material"
	tagEffect            = "effect"
	tagImage             = "image"
	tagInstanceEffect    = "instance_effect"
	tagInstanceGeometry  = "instance_geometry"
	tagInstanceNode      = "instance_node"
	tagInitFrom          = "init_from"

	attrID   = "id"
	attrName = "name"
	attrSID  = "sid"
	attrURL  = "url"
	attrType = "type"
)

// colladaAttr is one element attribute, keyed by local name.
type colladaAttr struct {
	local string
	value string
}

// colladaElement is one element of the parsed document tree.
// Only element children are kept; text is accumulated per element.
type colladaElement struct {
	tag      string
	attrs    []colladaAttr
	children []*colladaElement
	parent   *colladaElement
	text     strings.Builder
}

// colladaDocument is the parsed document tree.
type colladaDocument struct {
	root *colladaElement
}

// Root returns the document element.
func (d *colladaDocument) Root() *colladaElement {
	return d.root
}

// Find returns the first element with the given tag in document order,
// including the document element itself. Returns nil if none exists.
func (d *colladaDocument) Find(tag string) *colladaElement {
	if d.root == nil {
		return nil
	}
	if d.root.tag == tag {
		return d.root
	}
	return d.root.Find(tag)
}

// FindAll returns every element with the given tag in document order,
// including the document element itself.
func (d *colladaDocument) FindAll(tag string) []*colladaElement {
	if d.root == nil {
		return nil
	}
	var out []*colladaElement
	if d.root.tag == tag {
		out = append(out, d.root)
	}
	return d.root.appendAll(out, tag)
}

// Tag returns the element local name.
func (e *colladaElement) Tag() string {
	return e.tag
}

// Attr returns the value of the attribute with the given local name, or "".
func (e *colladaElement) Attr(name string) string {
	v, _ := e.LookupAttr(name)
	return v
}

// LookupAttr returns the value of the attribute with the given local name and
// whether it was present.
func (e *colladaElement) LookupAttr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.local == name {
			return a.value, true
		}
	}
	return "", false
}

// ID returns the id attribute.
func (e *colladaElement) ID() string {
	return e.Attr(attrID)
}

// Children returns the direct element children in document order.
func (e *colladaElement) Children() []*colladaElement {
	return e.children
}

// Parent returns the parent element, or nil for the document element.
func (e *colladaElement) Parent() *colladaElement {
	return e.parent
}

// Child returns the first direct child with the given tag, or nil.
func (e *colladaElement) Child(tag string) *colladaElement {
	for _, c := range e.children {
		if c.tag == tag {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns every direct child with the given tag.
func (e *colladaElement) ChildrenByTag(tag string) []*colladaElement {
	var out []*colladaElement
	for _, c := range e.children {
		if c.tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// Find returns the first descendant (excluding e) with the given tag in document order.
func (e *colladaElement) Find(tag string) *colladaElement {
	for _, c := range e.children {
		if c.tag == tag {
			return c
		}
		if found := c.Find(tag); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every descendant (excluding e) with the given tag in document order.
func (e *colladaElement) FindAll(tag string) []*colladaElement {
	return e.appendAll(nil, tag)
}

func (e *colladaElement) appendAll(dst []*colladaElement, tag string) []*colladaElement {
	for _, c := range e.children {
		if c.tag == tag {
			dst = append(dst, c)
		}
		dst = c.appendAll(dst, tag)
	}
	return dst
}

// Text returns the element's direct text with surrounding whitespace removed.
func (e *colladaElement) Text() string {
	return strings.TrimSpace(e.text.String())
}

// ChildText returns the trimmed text of the first direct child with the given tag, or "".
func (e *colladaElement) ChildText(tag string) string {
	if c := e.Child(tag); c != nil {
		return c.Text()
	}
	return ""
}

// stripIDRef removes the same-document "#" prefix from a reference.
// References without the prefix are returned unchanged.
func stripIDRef(ref string) string {
	return strings.TrimPrefix(strings.TrimSpace(ref), "#")
}

// elementIndex maps element ids to elements. The first element declared with an id wins.
type elementIndex map[string]*colladaElement

// newElementIndex indexes elements by their id attribute, skipping elements without one.
func newElementIndex(elems []*colladaElement) elementIndex {
	idx := make(elementIndex, len(elems))
	for _, el := range elems {
		id := el.ID()
		if id == "" {
			continue
		}
		if _, ok := idx[id]; !ok {
			idx[id] = el
		}
	}
	return idx
}

// Lookup resolves a reference (with or without "#") by exact id match.
func (idx elementIndex) Lookup(ref string) *colladaElement {
	return idx[stripIDRef(ref)]
}

// parseFloats parses a whitespace-separated list of floats.
func parseFloats(text string) ([]float32, error) {
	fields := strings.Fields(text)
	out := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid float %q", f)
		}
		out[i] = float32(v)
	}
	return out, nil
}

// parseInts parses a whitespace-separated list of non-negative integers.
func parseInts(text string) ([]int, error) {
	fields := strings.Fields(text)
	out := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("invalid index %q", f)
		}
		out[i] = v
	}
	return out, nil
}
