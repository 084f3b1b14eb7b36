package loader

import (
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-collada/engine/model"
	"github.com/Carmen-Shannon/oxy-collada/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importSample(t *testing.T) scene.Scene {
	t.Helper()
	s, err := newColladaImporter(quietLogger()).Import([]byte(sampleDocument), "/models/")
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

func TestColladaImporter_SampleDocument(t *testing.T) {
	s := importSample(t)

	t.Run("metadata", func(t *testing.T) {
		meta := s.Metadata()
		require.Len(t, meta.Contributors, 1)
		assert.Equal(t, "Tester", meta.Contributors[0].Author)
		assert.Equal(t, "hand", meta.Contributors[0].AuthoringTool)
		assert.Equal(t, "2024-01-01T00:00:00Z", meta.Created)
		assert.Equal(t, "Sample", meta.Title)
		assert.Equal(t, model.Unit{Name: "centimeter", Meter: 0.01}, meta.Unit)
		assert.Equal(t, model.UpAxisZ, meta.UpAxis)
	})

	t.Run("root children in document order", func(t *testing.T) {
		children := s.Root().Children
		require.Len(t, children, 3)
		assert.Equal(t, "camera", children[0].ID)
		assert.Equal(t, "box", children[1].ID)
		assert.Equal(t, "inst", children[2].ID)
		assert.Equal(t, "child", children[1].Children[0].ID)
	})

	t.Run("library keys match element ids", func(t *testing.T) {
		assert.ElementsMatch(t, []string{"boxGeom"}, scene.SortedKeys(s.Meshes()))
		assert.ElementsMatch(t, []string{"red", "ghost"}, scene.SortedKeys(s.Materials()))
		assert.ElementsMatch(t, []string{"texImg"}, scene.SortedKeys(s.Images()))
		for id, m := range s.Meshes() {
			assert.Equal(t, id, m.ID)
		}
		for id, m := range s.Materials() {
			assert.Equal(t, id, m.ID)
		}
		for id, img := range s.Images() {
			assert.Equal(t, id, img.ID)
		}
	})

	t.Run("instance_node expands library descendants", func(t *testing.T) {
		inst := s.Root().Children[2]
		require.Len(t, inst.Children, 1)
		lib := inst.Children[0]
		assert.Equal(t, "libNode", lib.ID)
		require.Len(t, lib.Children, 1)
		assert.Equal(t, "libChild", lib.Children[0].ID)
		require.Len(t, lib.Children[0].Geometries, 1)
		assert.Equal(t, "boxGeom", lib.Children[0].Geometries[0].MeshID)
	})

	t.Run("references resolve regardless of declaration order", func(t *testing.T) {
		red := s.Material("red")
		require.NotNil(t, red)
		assert.Equal(t, model.TechniquePhong, red.Technique)
		assert.Equal(t, "texImg", red.Textures["diffuse"].ImageID)
		require.NotNil(t, s.Image(red.Textures["diffuse"].ImageID))
	})

	t.Run("image paths resolve against the base path", func(t *testing.T) {
		img := s.Image("texImg")
		assert.Equal(t, "textures/red.png", img.Filename)
		assert.Equal(t, "/models/textures/red.png", img.Path)
		assert.Equal(t, "/models/", s.FilePath())
	})

	t.Run("mesh data", func(t *testing.T) {
		mesh := s.Mesh("boxGeom")
		require.Len(t, mesh.Primitives, 1)
		prim := mesh.Primitives[0]
		assert.Equal(t, model.PrimitivePolylist, prim.Kind)
		assert.Equal(t, []uint32{0, 1, 2, 0, 2, 3}, prim.Indices)
		assert.Len(t, prim.TexCoords, 8)
	})

	t.Run("node count", func(t *testing.T) {
		// camera, box, child, inst, libNode, libChild
		assert.Equal(t, 6, s.NodeCount())
	})
}

func TestColladaImporter_SingleGeometry(t *testing.T) {
	s, err := newColladaImporter(quietLogger()).Import([]byte(singleGeometryDocument), "")
	require.NoError(t, err)

	assert.Equal(t, []string{"box1"}, scene.SortedKeys(s.Meshes()))
	assert.Empty(t, s.Materials())
	assert.Empty(t, s.Images())
	require.NotNil(t, s.Root())
	assert.NotNil(t, s.Root().Children)
	assert.Empty(t, s.Root().Children)
	assert.Equal(t, scene.DefaultFilePath, s.FilePath())
}

func TestColladaImporter_EmptyDocuments(t *testing.T) {
	imp := newColladaImporter(quietLogger())

	t.Run("no bytes", func(t *testing.T) {
		s, err := imp.Import(nil, "/")
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrEmptyDocument)
	})

	t.Run("empty but valid document", func(t *testing.T) {
		s, err := imp.Import([]byte(`<COLLADA/>`), "/")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Empty(t, s.Meshes())
		assert.Empty(t, s.Root().Children)
		assert.Equal(t, model.DefaultMetadata(), s.Metadata())
	})
}

func TestColladaImporter_Idempotent(t *testing.T) {
	imp := newColladaImporter(quietLogger())
	first, err := imp.Import([]byte(sampleDocument), "/")
	require.NoError(t, err)
	second, err := imp.Import([]byte(sampleDocument), "/")
	require.NoError(t, err)

	assert.Equal(t, first.ToMap(), second.ToMap())
	assert.NotSame(t, first.Mesh("boxGeom"), second.Mesh("boxGeom"))
	assert.NotSame(t, first.Root().Children[0], second.Root().Children[0])
}

func TestColladaImporter_LogsSkippedElements(t *testing.T) {
	logger, buf := captureLogger()
	_, err := newColladaImporter(logger).Import([]byte(sampleDocument), "/")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `[WARN] skipping geometry "spline"`)
	assert.Contains(t, out, `[WARN] skipping material "broken"`)
	assert.Contains(t, out, `[WARN] skipping image "noFile"`)
	assert.Contains(t, out, `effect "missingFx" not found`)
}

func TestColladaImporter_OnlyFirstVisualScene(t *testing.T) {
	s, err := newColladaImporter(quietLogger()).Import([]byte(`<COLLADA><library_visual_scenes>
		<visual_scene id="a"><node id="one"/></visual_scene>
		<visual_scene id="b"><node id="two"/></visual_scene>
	</library_visual_scenes></COLLADA>`), "/")
	require.NoError(t, err)

	require.Len(t, s.Root().Children, 1)
	assert.Equal(t, "one", s.Root().Children[0].ID)
}

func TestColladaImporter_RootAssetOnly(t *testing.T) {
	s, err := newColladaImporter(quietLogger()).Import([]byte(`<COLLADA>
		<library_geometries><asset><up_axis>X_UP</up_axis></asset></library_geometries>
	</COLLADA>`), "/")
	require.NoError(t, err)
	assert.Equal(t, model.UpAxisY, s.Metadata().UpAxis)
}

func TestColladaImporter_Malformed(t *testing.T) {
	s, err := newColladaImporter(quietLogger()).ImportReader(strings.NewReader(`<COLLADA><node>`), "/")
	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestColladaImporter_RecursiveInstanceNode(t *testing.T) {
	const doc = `<COLLADA>
  <library_nodes>
    <node id="a"><instance_node url="#a"/><instance_node url="#a"/></node>
  </library_nodes>
  <library_visual_scenes><visual_scene id="s">
    <node id="root"><instance_node url="#a"/></node>
  </visual_scene></library_visual_scenes>
</COLLADA>`

	logger, buf := captureLogger()
	done := make(chan scene.Scene, 1)
	go func() {
		s, err := newColladaImporter(logger).Import([]byte(doc), "/")
		assert.NoError(t, err)
		done <- s
	}()

	select {
	case s := <-done:
		require.NotNil(t, s)
		assert.Equal(t, 2, s.NodeCount())
		assert.Contains(t, buf.String(), "instance_node cycle")
	case <-time.After(5 * time.Second):
		t.Fatal("import of a self-instancing node did not finish")
	}
}
