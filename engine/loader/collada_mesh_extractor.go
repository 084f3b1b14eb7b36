package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-collada/engine/model"
)

// Input semantics read from vertices and primitive inputs.
const (
	semanticVertex   = "VERTEX"
	semanticPosition = "POSITION"
	semanticNormal   = "NORMAL"
	semanticTexCoord = "TEXCOORD"
)

// colladaSource is one decoded source element: a float array read through its accessor.
type colladaSource struct {
	data   []float32
	stride int
	offset int
	count  int
}

// element returns the first n components of accessor element i.
func (s *colladaSource) element(i, n int) ([]float32, bool) {
	if i < 0 || i >= s.count {
		return nil, false
	}
	start := s.offset + i*s.stride
	if start+n > len(s.data) || n > s.stride {
		return nil, false
	}
	return s.data[start : start+n], true
}

// colladaInput is one input element of a primitive.
type colladaInput struct {
	semantic string
	source   string
	offset   int
	set      int
}

// colladaMeshExtractorImpl is the implementation of the colladaMeshExtractor interface.
type colladaMeshExtractorImpl struct{}

// colladaMeshExtractor defines the interface for decoding geometry elements into meshes.
// Every primitive is de-indexed into flat per-vertex buffers so a single index list addresses
// positions, normals and texture coordinates alike.
type colladaMeshExtractor interface {
	// ExtractMesh decodes the mesh subtree of a geometry element.
	//
	// Parameters:
	//   - el: the geometry element
	//
	// Returns:
	//   - *model.Mesh: the decoded mesh with its bounding box computed
	//   - error: a SkippableElementError if the geometry has no mesh or references missing data
	ExtractMesh(el *colladaElement) (*model.Mesh, error)
}

var _ colladaMeshExtractor = &colladaMeshExtractorImpl{}

// newColladaMeshExtractor creates a new mesh extractor.
//
// Returns:
//   - colladaMeshExtractor: the mesh extractor
func newColladaMeshExtractor() colladaMeshExtractor {
	return &colladaMeshExtractorImpl{}
}

func (e *colladaMeshExtractorImpl) ExtractMesh(el *colladaElement) (*model.Mesh, error) {
	id := el.ID()
	meshEl := el.Find(tagMesh)
	if meshEl == nil {
		return nil, skipElement(ElementGeometry, id, "no mesh")
	}

	sources := make(map[string]*colladaSource)
	for _, srcEl := range meshEl.ChildrenByTag("source") {
		src, err := decodeSource(srcEl)
		if err != nil {
			return nil, skipElement(ElementGeometry, id, "source %q: %v", srcEl.ID(), err)
		}
		if _, ok := sources[srcEl.ID()]; !ok {
			sources[srcEl.ID()] = src
		}
	}

	mesh := &model.Mesh{
		ID:   id,
		Name: el.Attr(attrName),
	}

	verticesEl := meshEl.Child("vertices")
	if verticesEl == nil {
		// A mesh without vertices is only valid when it declares no primitives either.
		for _, child := range meshEl.Children() {
			if isPrimitiveKind(model.PrimitiveKind(child.Tag())) {
				return nil, skipElement(ElementGeometry, id, "no vertices")
			}
		}
		return mesh, nil
	}
	vertexInputs := make(map[string]*colladaSource)
	for _, in := range verticesEl.ChildrenByTag("input") {
		ref := stripIDRef(in.Attr("source"))
		src, ok := sources[ref]
		if !ok {
			return nil, skipElement(ElementGeometry, id, "vertices references missing source %q", ref)
		}
		semantic := in.Attr("semantic")
		if _, dup := vertexInputs[semantic]; !dup {
			vertexInputs[semantic] = src
		}
	}
	if vertexInputs[semanticPosition] == nil {
		return nil, skipElement(ElementGeometry, id, "vertices without POSITION input")
	}

	for _, child := range meshEl.Children() {
		kind := model.PrimitiveKind(child.Tag())
		if !isPrimitiveKind(kind) {
			continue
		}

		prim, err := decodePrimitive(child, kind, sources, verticesEl.ID(), vertexInputs)
		if err != nil {
			return nil, skipElement(ElementGeometry, id, "%s: %v", kind, err)
		}
		mesh.Primitives = append(mesh.Primitives, *prim)
	}

	mesh.ComputeBounds()
	return mesh, nil
}

func isPrimitiveKind(kind model.PrimitiveKind) bool {
	switch kind {
	case model.PrimitiveTriangles, model.PrimitivePolylist, model.PrimitivePolygons,
		model.PrimitiveLines, model.PrimitiveLinestrips, model.PrimitiveTrifans, model.PrimitiveTristrips:
		return true
	}
	return false
}

// decodeSource reads the float_array of a source through its technique_common accessor.
func decodeSource(el *colladaElement) (*colladaSource, error) {
	arr := el.Child("float_array")
	if arr == nil {
		return nil, fmt.Errorf("no float_array")
	}
	data, err := parseFloats(arr.Text())
	if err != nil {
		return nil, err
	}

	src := &colladaSource{data: data, stride: 1, count: len(data)}
	technique := el.Child("technique_common")
	if technique == nil {
		return src, nil
	}
	accessor := technique.Child("accessor")
	if accessor == nil {
		return src, nil
	}
	if v, ok := accessor.LookupAttr("stride"); ok {
		stride, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || stride <= 0 {
			return nil, fmt.Errorf("invalid accessor stride %q", v)
		}
		src.stride = stride
	}
	if v, ok := accessor.LookupAttr("offset"); ok {
		offset, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || offset < 0 {
			return nil, fmt.Errorf("invalid accessor offset %q", v)
		}
		src.offset = offset
	}
	src.count = (len(data) - src.offset) / src.stride
	if v, ok := accessor.LookupAttr("count"); ok {
		count, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || count < 0 {
			return nil, fmt.Errorf("invalid accessor count %q", v)
		}
		if count < src.count {
			src.count = count
		}
	}
	return src, nil
}

// primitiveBuilder accumulates de-indexed vertices for one primitive.
type primitiveBuilder struct {
	prim       *model.Primitive
	inputs     []colladaInput
	tuple      int
	sources    map[string]*colladaSource
	verticesID string
	vertex     map[string]*colladaSource
	seen       map[string]uint32
	hasNormal  bool
	hasUV      bool
}

// decodePrimitive decodes one primitive element into a triangulated, de-indexed Primitive.
func decodePrimitive(el *colladaElement, kind model.PrimitiveKind, sources map[string]*colladaSource, verticesID string, vertex map[string]*colladaSource) (*model.Primitive, error) {
	b := &primitiveBuilder{
		prim: &model.Primitive{
			Kind:     kind,
			Material: el.Attr("material"),
		},
		sources:    sources,
		verticesID: verticesID,
		vertex:     vertex,
		seen:       make(map[string]uint32),
	}
	if v := strings.TrimSpace(el.Attr("count")); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil || count < 0 {
			return nil, fmt.Errorf("invalid count %q", v)
		}
		b.prim.Count = count
	}

	if err := b.readInputs(el); err != nil {
		return nil, err
	}

	var err error
	switch kind {
	case model.PrimitiveTriangles:
		err = b.emitGroups(el.Child("p"), 3)
	case model.PrimitiveLines:
		err = b.emitGroups(el.Child("p"), 2)
	case model.PrimitivePolylist:
		err = b.emitPolylist(el)
	case model.PrimitivePolygons, model.PrimitiveTrifans:
		for _, p := range polygonRings(el) {
			if err = b.emitFan(p); err != nil {
				break
			}
		}
	case model.PrimitiveTristrips:
		for _, p := range el.ChildrenByTag("p") {
			if err = b.emitStrip(p); err != nil {
				break
			}
		}
	case model.PrimitiveLinestrips:
		for _, p := range el.ChildrenByTag("p") {
			if err = b.emitLineStrip(p); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	if !b.hasNormal {
		b.prim.Normals = nil
	}
	if !b.hasUV {
		b.prim.TexCoords = nil
	}
	return b.prim, nil
}

// polygonRings returns the outer ring of every polygon of a polygons or trifans element.
// Holes declared through ph are dropped.
func polygonRings(el *colladaElement) []*colladaElement {
	var out []*colladaElement
	for _, c := range el.Children() {
		switch c.Tag() {
		case "p":
			out = append(out, c)
		case "ph":
			if p := c.Child("p"); p != nil {
				out = append(out, p)
			}
		}
	}
	return out
}

func (b *primitiveBuilder) readInputs(el *colladaElement) error {
	texSet := -1
	for _, in := range el.ChildrenByTag("input") {
		input := colladaInput{
			semantic: in.Attr("semantic"),
			source:   stripIDRef(in.Attr("source")),
		}
		if v := strings.TrimSpace(in.Attr("offset")); v != "" {
			offset, err := strconv.Atoi(v)
			if err != nil || offset < 0 {
				return fmt.Errorf("invalid input offset %q", v)
			}
			input.offset = offset
		}
		if v := strings.TrimSpace(in.Attr("set")); v != "" {
			set, err := strconv.Atoi(v)
			if err == nil {
				input.set = set
			}
		}
		if input.offset+1 > b.tuple {
			b.tuple = input.offset + 1
		}

		switch input.semantic {
		case semanticVertex:
			if input.source != b.verticesID {
				return fmt.Errorf("VERTEX input references %q, want %q", input.source, b.verticesID)
			}
		case semanticNormal:
			if _, ok := b.sources[input.source]; !ok {
				return fmt.Errorf("input references missing source %q", input.source)
			}
		case semanticTexCoord:
			if _, ok := b.sources[input.source]; !ok {
				return fmt.Errorf("input references missing source %q", input.source)
			}
			// The lowest texcoord set feeds the vertex buffer.
			if texSet >= 0 && input.set >= texSet {
				continue
			}
			texSet = input.set
			b.inputs = removeSemantic(b.inputs, semanticTexCoord)
		default:
			continue
		}
		b.inputs = append(b.inputs, input)
	}

	hasVertex := false
	for _, in := range b.inputs {
		if in.semantic == semanticVertex {
			hasVertex = true
		}
	}
	if !hasVertex {
		return fmt.Errorf("no VERTEX input")
	}
	return nil
}

func removeSemantic(inputs []colladaInput, semantic string) []colladaInput {
	out := inputs[:0]
	for _, in := range inputs {
		if in.semantic != semantic {
			out = append(out, in)
		}
	}
	return out
}

// readIndices parses a p element into whole index tuples.
func (b *primitiveBuilder) readIndices(p *colladaElement) ([][]int, error) {
	if p == nil {
		return nil, nil
	}
	values, err := parseInts(p.Text())
	if err != nil {
		return nil, err
	}
	if len(values)%b.tuple != 0 {
		return nil, fmt.Errorf("index count %d is not a multiple of %d", len(values), b.tuple)
	}
	tuples := make([][]int, 0, len(values)/b.tuple)
	for i := 0; i < len(values); i += b.tuple {
		tuples = append(tuples, values[i:i+b.tuple])
	}
	return tuples, nil
}

// vertexIndex returns the output index of a tuple, appending a new vertex the first time it is seen.
func (b *primitiveBuilder) vertexIndex(tuple []int) (uint32, error) {
	var key strings.Builder
	for _, in := range b.inputs {
		key.WriteString(strconv.Itoa(tuple[in.offset]))
		key.WriteByte(',')
	}
	if idx, ok := b.seen[key.String()]; ok {
		return idx, nil
	}

	var position, normal, uv []float32
	for _, in := range b.inputs {
		i := tuple[in.offset]
		var ok bool
		switch in.semantic {
		case semanticVertex:
			if position, ok = b.vertex[semanticPosition].element(i, 3); !ok {
				return 0, fmt.Errorf("position index %d out of range", i)
			}
			if src := b.vertex[semanticNormal]; src != nil && normal == nil {
				if normal, ok = src.element(i, 3); !ok {
					return 0, fmt.Errorf("normal index %d out of range", i)
				}
			}
			if src := b.vertex[semanticTexCoord]; src != nil && uv == nil {
				if uv, ok = src.element(i, 2); !ok {
					return 0, fmt.Errorf("texcoord index %d out of range", i)
				}
			}
		case semanticNormal:
			if normal, ok = b.sources[in.source].element(i, 3); !ok {
				return 0, fmt.Errorf("normal index %d out of range", i)
			}
		case semanticTexCoord:
			if uv, ok = b.sources[in.source].element(i, 2); !ok {
				return 0, fmt.Errorf("texcoord index %d out of range", i)
			}
		}
	}

	idx := uint32(len(b.prim.Positions) / 3)
	b.prim.Positions = append(b.prim.Positions, position...)
	if normal != nil {
		b.hasNormal = true
		b.prim.Normals = append(b.prim.Normals, normal...)
	} else {
		b.prim.Normals = append(b.prim.Normals, 0, 0, 0)
	}
	if uv != nil {
		b.hasUV = true
		b.prim.TexCoords = append(b.prim.TexCoords, uv...)
	} else {
		b.prim.TexCoords = append(b.prim.TexCoords, 0, 0)
	}
	b.seen[key.String()] = idx
	return idx, nil
}

func (b *primitiveBuilder) resolve(tuples [][]int) ([]uint32, error) {
	out := make([]uint32, len(tuples))
	for i, t := range tuples {
		idx, err := b.vertexIndex(t)
		if err != nil {
			return nil, err
		}
		out[i] = idx
	}
	return out, nil
}

// emitGroups handles triangles and lines: the p list is consumed n vertices at a time.
func (b *primitiveBuilder) emitGroups(p *colladaElement, n int) error {
	tuples, err := b.readIndices(p)
	if err != nil {
		return err
	}
	if len(tuples)%n != 0 {
		return fmt.Errorf("vertex count %d is not a multiple of %d", len(tuples), n)
	}
	indices, err := b.resolve(tuples)
	if err != nil {
		return err
	}
	b.prim.Indices = append(b.prim.Indices, indices...)
	return nil
}

func (b *primitiveBuilder) emitPolylist(el *colladaElement) error {
	tuples, err := b.readIndices(el.Child("p"))
	if err != nil {
		return err
	}
	vcount, err := parseInts(el.ChildText("vcount"))
	if err != nil {
		return fmt.Errorf("vcount: %w", err)
	}
	indices, err := b.resolve(tuples)
	if err != nil {
		return err
	}

	pos := 0
	for _, n := range vcount {
		if pos+n > len(indices) {
			return fmt.Errorf("vcount exceeds the %d declared vertices", len(indices))
		}
		b.fan(indices[pos : pos+n])
		pos += n
	}
	return nil
}

func (b *primitiveBuilder) emitFan(p *colladaElement) error {
	tuples, err := b.readIndices(p)
	if err != nil {
		return err
	}
	indices, err := b.resolve(tuples)
	if err != nil {
		return err
	}
	b.fan(indices)
	return nil
}

// fan triangulates a convex polygon around its first vertex.
func (b *primitiveBuilder) fan(ring []uint32) {
	for i := 1; i+1 < len(ring); i++ {
		b.prim.Indices = append(b.prim.Indices, ring[0], ring[i], ring[i+1])
	}
}

func (b *primitiveBuilder) emitStrip(p *colladaElement) error {
	tuples, err := b.readIndices(p)
	if err != nil {
		return err
	}
	strip, err := b.resolve(tuples)
	if err != nil {
		return err
	}
	for i := 2; i < len(strip); i++ {
		// Odd triangles swap their first two vertices to keep the winding consistent.
		if i%2 == 0 {
			b.prim.Indices = append(b.prim.Indices, strip[i-2], strip[i-1], strip[i])
		} else {
			b.prim.Indices = append(b.prim.Indices, strip[i-1], strip[i-2], strip[i])
		}
	}
	return nil
}

func (b *primitiveBuilder) emitLineStrip(p *colladaElement) error {
	tuples, err := b.readIndices(p)
	if err != nil {
		return err
	}
	strip, err := b.resolve(tuples)
	if err != nil {
		return err
	}
	for i := 1; i < len(strip); i++ {
		b.prim.Indices = append(b.prim.Indices, strip[i-1], strip[i])
	}
	return nil
}
