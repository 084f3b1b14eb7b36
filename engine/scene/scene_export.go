package scene

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/oxy-collada/engine/model"
	"github.com/ohler55/ojg"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Query evaluates a JSONPath expression against the generic form of the scene (see Scene.ToMap).
//
// Parameters:
//   - s: the scene to query
//   - expr: the JSONPath expression (e.g. "$.meshes.*.id")
//
// Returns:
//   - []any: the matched values
//   - error: error if the expression is invalid
func Query(s Scene, expr string) ([]any, error) {
	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath '%s': %w", expr, err)
	}
	return x.Get(s.ToMap()), nil
}

// JSON encodes the generic form of the scene with sorted keys.
//
// Parameters:
//   - s: the scene to encode
//   - indent: the indentation width; 0 produces compact output
//
// Returns:
//   - string: the JSON document
func JSON(s Scene, indent int) string {
	return oj.JSON(s.ToMap(), &ojg.Options{Indent: indent, Sort: true})
}

func (s *scene) ToMap() map[string]any {
	images := make(map[string]any, len(s.images))
	for id, img := range s.images {
		images[id] = map[string]any{
			"id":       img.ID,
			"name":     img.Name,
			"filename": img.Filename,
			"path":     img.Path,
		}
	}

	materials := make(map[string]any, len(s.materials))
	for id, mat := range s.materials {
		materials[id] = materialToMap(mat)
	}

	meshes := make(map[string]any, len(s.meshes))
	for id, mesh := range s.meshes {
		meshes[id] = meshToMap(mesh)
	}

	children := make([]any, 0, len(s.root.Children))
	for _, n := range s.root.Children {
		children = append(children, nodeToMap(n))
	}

	return map[string]any{
		"filePath":  s.filePath,
		"metadata":  metadataToMap(s.metadata),
		"images":    images,
		"materials": materials,
		"meshes":    meshes,
		"root":      map[string]any{"children": children},
	}
}

func metadataToMap(m model.Metadata) map[string]any {
	contributors := make([]any, 0, len(m.Contributors))
	for _, c := range m.Contributors {
		contributors = append(contributors, map[string]any{
			"author":        c.Author,
			"authoringTool": c.AuthoringTool,
			"comments":      c.Comments,
			"copyright":     c.Copyright,
			"sourceData":    c.SourceData,
		})
	}
	return map[string]any{
		"contributors": contributors,
		"created":      m.Created,
		"modified":     m.Modified,
		"title":        m.Title,
		"subject":      m.Subject,
		"keywords":     m.Keywords,
		"revision":     m.Revision,
		"unit":         map[string]any{"name": m.Unit.Name, "meter": m.Unit.Meter},
		"upAxis":       m.UpAxis,
	}
}

func materialToMap(mat *model.Material) map[string]any {
	textures := make(map[string]any, len(mat.Textures))
	for channel, tex := range mat.Textures {
		if tex == nil {
			continue
		}
		textures[channel] = map[string]any{
			"image":    tex.ImageID,
			"texcoord": tex.TexCoord,
		}
	}
	return map[string]any{
		"id":                mat.ID,
		"name":              mat.Name,
		"effect":            mat.EffectID,
		"technique":         mat.Technique,
		"emission":          colorToSlice(mat.Emission),
		"ambient":           colorToSlice(mat.Ambient),
		"diffuse":           colorToSlice(mat.Diffuse),
		"specular":          colorToSlice(mat.Specular),
		"shininess":         float64(mat.Shininess),
		"transparency":      float64(mat.Transparency),
		"indexOfRefraction": float64(mat.IndexOfRefraction),
		"doubleSided":       mat.DoubleSided,
		"degraded":          mat.Degraded,
		"textures":          textures,
	}
}

func meshToMap(mesh *model.Mesh) map[string]any {
	prims := make([]any, 0, len(mesh.Primitives))
	for i := range mesh.Primitives {
		p := &mesh.Primitives[i]
		prims = append(prims, map[string]any{
			"kind":        string(p.Kind),
			"material":    p.Material,
			"count":       int64(p.Count),
			"vertexCount": int64(p.VertexCount()),
			"indexCount":  int64(len(p.Indices)),
			"hasNormals":  len(p.Normals) > 0,
			"hasUVs":      len(p.TexCoords) > 0,
		})
	}
	return map[string]any{
		"id":          mesh.ID,
		"name":        mesh.Name,
		"primitives":  prims,
		"boundingMin": vecToSlice(mesh.BoundingMin[:]),
		"boundingMax": vecToSlice(mesh.BoundingMax[:]),
	}
}

func nodeToMap(n *model.Node) map[string]any {
	geoms := make([]any, 0, len(n.Geometries))
	for _, g := range n.Geometries {
		bindings := make([]any, 0, len(g.Materials))
		for _, b := range g.Materials {
			bindings = append(bindings, map[string]any{
				"symbol": b.Symbol,
				"target": b.Target,
			})
		}
		geoms = append(geoms, map[string]any{
			"mesh":      g.MeshID,
			"name":      g.Name,
			"materials": bindings,
		})
	}

	children := make([]any, 0, len(n.Children))
	for _, c := range n.Children {
		children = append(children, nodeToMap(c))
	}

	out := map[string]any{
		"id":         n.ID,
		"name":       n.Name,
		"sid":        n.SID,
		"type":       n.Type,
		"geometries": geoms,
		"children":   children,
	}
	if n.LocalTransform != nil {
		out["transform"] = vecToSlice(n.LocalTransform[:])
	}
	return out
}

func colorToSlice(c [4]float32) []any {
	return vecToSlice(c[:])
}

func vecToSlice(v []float32) []any {
	out := make([]any, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out
}

// SortedKeys returns the keys of an identifier-keyed map in ascending order.
//
// Parameters:
//   - m: the map to read keys from
//
// Returns:
//   - []string: the sorted keys
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
