package loader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-collada/engine/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// meshDocument wraps primitive markup in a geometry with a unit quad position source and a normal source.
func meshDocument(primitives string) string {
	return `<COLLADA><library_geometries><geometry id="g" name="G"><mesh>
		<source id="pos">
			<float_array count="12">0 0 0 1 0 0 1 1 0 0 1 0</float_array>
			<technique_common><accessor count="4" stride="3"/></technique_common>
		</source>
		<source id="nrm">
			<float_array count="3">0 0 1</float_array>
			<technique_common><accessor count="1" stride="3"/></technique_common>
		</source>
		<vertices id="v"><input semantic="POSITION" source="#pos"/></vertices>
		` + primitives + `
	</mesh></geometry></library_geometries></COLLADA>`
}

func extractGeometry(t *testing.T, src string) (*model.Mesh, error) {
	t.Helper()
	doc := mustParseDocument(t, src)
	return newColladaMeshExtractor().ExtractMesh(doc.Find(tagGeometry))
}

func TestColladaMeshExtractor(t *testing.T) {
	t.Run("triangles with shared vertices", func(t *testing.T) {
		mesh, err := extractGeometry(t, meshDocument(`
			<triangles count="2" material="m">
				<input semantic="VERTEX" source="#v" offset="0"/>
				<p>0 1 2 0 2 3</p>
			</triangles>`))
		require.NoError(t, err)

		assert.Equal(t, "g", mesh.ID)
		assert.Equal(t, "G", mesh.Name)
		require.Len(t, mesh.Primitives, 1)
		prim := mesh.Primitives[0]
		assert.Equal(t, model.PrimitiveTriangles, prim.Kind)
		assert.Equal(t, "m", prim.Material)
		assert.Equal(t, 2, prim.Count)
		assert.Equal(t, 4, prim.VertexCount())
		assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, prim.Indices)
		assert.Nil(t, prim.Normals)
		assert.Nil(t, prim.TexCoords)
		assert.Equal(t, [3]float32{0, 0, 0}, mesh.BoundingMin)
		assert.Equal(t, [3]float32{1, 1, 0}, mesh.BoundingMax)
	})

	t.Run("multi-index inputs are de-indexed", func(t *testing.T) {
		mesh, err := extractGeometry(t, meshDocument(`
			<triangles count="1">
				<input semantic="VERTEX" source="#v" offset="0"/>
				<input semantic="NORMAL" source="#nrm" offset="1"/>
				<p>0 0 1 0 2 0</p>
			</triangles>`))
		require.NoError(t, err)

		prim := mesh.Primitives[0]
		assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 1, 1, 0}, prim.Positions)
		assert.Equal(t, []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}, prim.Normals)
		assert.Equal(t, []uint32{0, 1, 2}, prim.Indices)
	})

	t.Run("polylist is fan triangulated", func(t *testing.T) {
		mesh, err := extractGeometry(t, meshDocument(`
			<polylist count="1">
				<input semantic="VERTEX" source="#v" offset="0"/>
				<vcount>4</vcount>
				<p>0 1 2 3</p>
			</polylist>`))
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Primitives[0].Indices)
	})

	t.Run("polygons use one p per polygon", func(t *testing.T) {
		mesh, err := extractGeometry(t, meshDocument(`
			<polygons count="2">
				<input semantic="VERTEX" source="#v" offset="0"/>
				<p>0 1 2</p>
				<p>0 2 3</p>
			</polygons>`))
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, mesh.Primitives[0].Indices)
	})

	t.Run("tristrips alternate winding", func(t *testing.T) {
		mesh, err := extractGeometry(t, meshDocument(`
			<tristrips count="1">
				<input semantic="VERTEX" source="#v" offset="0"/>
				<p>0 1 3 2</p>
			</tristrips>`))
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, mesh.Primitives[0].Indices)
	})

	t.Run("linestrips become segments", func(t *testing.T) {
		mesh, err := extractGeometry(t, meshDocument(`
			<linestrips count="1">
				<input semantic="VERTEX" source="#v" offset="0"/>
				<p>0 1 2</p>
			</linestrips>`))
		require.NoError(t, err)
		assert.Equal(t, []uint32{0, 1, 1, 2}, mesh.Primitives[0].Indices)
	})

	t.Run("vertex normals declared on vertices", func(t *testing.T) {
		mesh, err := extractGeometry(t, `<COLLADA><geometry id="g"><mesh>
			<source id="pos"><float_array>0 0 0 1 0 0 0 1 0</float_array><technique_common><accessor stride="3"/></technique_common></source>
			<source id="nrm"><float_array>0 0 1 0 0 1 0 0 1</float_array><technique_common><accessor stride="3"/></technique_common></source>
			<vertices id="v"><input semantic="POSITION" source="#pos"/><input semantic="NORMAL" source="#nrm"/></vertices>
			<triangles count="1"><input semantic="VERTEX" source="#v" offset="0"/><p>0 1 2</p></triangles>
		</mesh></geometry></COLLADA>`)
		require.NoError(t, err)
		assert.Len(t, mesh.Primitives[0].Normals, 9)
	})

	t.Run("geometry without mesh", func(t *testing.T) {
		_, err := extractGeometry(t, `<COLLADA><geometry id="s"><spline/></geometry></COLLADA>`)
		assert.True(t, IsSkippable(err))
		assert.Contains(t, err.Error(), `"s"`)
	})

	t.Run("empty mesh", func(t *testing.T) {
		mesh, err := extractGeometry(t, `<COLLADA><geometry id="e"><mesh/></geometry></COLLADA>`)
		require.NoError(t, err)
		assert.Equal(t, "e", mesh.ID)
		assert.Empty(t, mesh.Primitives)
	})

	t.Run("missing source", func(t *testing.T) {
		_, err := extractGeometry(t, meshDocument(`
			<triangles count="1">
				<input semantic="VERTEX" source="#v" offset="0"/>
				<input semantic="NORMAL" source="#nothere" offset="1"/>
				<p>0 0 1 0 2 0</p>
			</triangles>`))
		assert.True(t, IsSkippable(err))
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := extractGeometry(t, meshDocument(`
			<triangles count="1">
				<input semantic="VERTEX" source="#v" offset="0"/>
				<p>0 1 9</p>
			</triangles>`))
		assert.True(t, IsSkippable(err))
	})
}
