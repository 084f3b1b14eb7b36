package loader

import (
	"bytes"
	"io"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
)

// sampleDocument exercises every library. Effects and library nodes are declared after the
// elements that reference them.
const sampleDocument = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <asset>
    <contributor>
      <author>Tester</author>
      <authoring_tool>hand</authoring_tool>
    </contributor>
    <created>2024-01-01T00:00:00Z</created>
    <modified>2024-01-02T00:00:00Z</modified>
    <title>Sample</title>
    <unit name="centimeter" meter="0.01"/>
    <up_axis>Z_UP</up_axis>
  </asset>
  <library_visual_scenes>
    <visual_scene id="Scene">
      <node id="camera" name="Camera">
        <translate>0 0 10</translate>
      </node>
      <node id="box" name="Box">
        <matrix>1 0 0 5 0 1 0 6 0 0 1 7 0 0 0 1</matrix>
        <instance_geometry url="#boxGeom">
          <bind_material>
            <technique_common>
              <instance_material symbol="mat0" target="#red">
                <bind_vertex_input semantic="UVSET0" input_semantic="TEXCOORD" input_set="0"/>
              </instance_material>
            </technique_common>
          </bind_material>
        </instance_geometry>
        <node id="child"/>
      </node>
      <node id="inst">
        <instance_node url="#libNode"/>
      </node>
    </visual_scene>
  </library_visual_scenes>
  <library_geometries>
    <geometry id="boxGeom" name="BoxGeom">
      <mesh>
        <source id="pos">
          <float_array id="pos-array" count="12">0 0 0 1 0 0 1 1 0 0 1 0</float_array>
          <technique_common><accessor source="#pos-array" count="4" stride="3"/></technique_common>
        </source>
        <source id="uv">
          <float_array id="uv-array" count="8">0 0 1 0 1 1 0 1</float_array>
          <technique_common><accessor source="#uv-array" count="4" stride="2"/></technique_common>
        </source>
        <vertices id="verts">
          <input semantic="POSITION" source="#pos"/>
        </vertices>
        <polylist count="1" material="mat0">
          <input semantic="VERTEX" source="#verts" offset="0"/>
          <input semantic="TEXCOORD" source="#uv" offset="1" set="0"/>
          <vcount>4</vcount>
          <p>0 0 1 1 2 2 3 3</p>
        </polylist>
      </mesh>
    </geometry>
    <geometry id="spline"><spline/></geometry>
  </library_geometries>
  <library_materials>
    <material id="red" name="Red"><instance_effect url="#redFx"/></material>
    <material id="ghost"><instance_effect url="#missingFx"/></material>
    <material id="broken"/>
  </library_materials>
  <library_effects>
    <effect id="redFx">
      <profile_COMMON>
        <newparam sid="tex-surface">
          <surface type="2D"><init_from>texImg</init_from></surface>
        </newparam>
        <newparam sid="tex-sampler">
          <sampler2D>
            <source>tex-surface</source>
            <wrap_s>CLAMP</wrap_s>
            <wrap_t>MIRROR</wrap_t>
            <minfilter>LINEAR_MIPMAP_LINEAR</minfilter>
            <magfilter>NEAREST</magfilter>
          </sampler2D>
        </newparam>
        <technique sid="common">
          <phong>
            <ambient><color>1 0 0 1</color></ambient>
            <diffuse><texture texture="tex-sampler" texcoord="UVSET0"/></diffuse>
            <specular><color>0.5 0.5 0.5 1</color></specular>
            <shininess><float>20</float></shininess>
          </phong>
          <extra>
            <technique profile="GOOGLEEARTH"><double_sided>1</double_sided></technique>
          </extra>
        </technique>
      </profile_COMMON>
    </effect>
  </library_effects>
  <library_images>
    <image id="texImg" name="Tex"><init_from>textures/red.png</init_from></image>
    <image id="noFile"/>
  </library_images>
  <library_nodes>
    <node id="libNode" name="Lib">
      <node id="libChild">
        <instance_geometry url="#boxGeom"/>
      </node>
    </node>
  </library_nodes>
</COLLADA>
`

// singleGeometryDocument has one geometry and empty material and image libraries.
const singleGeometryDocument = `<COLLADA>
  <library_geometries>
    <geometry id="box1"><mesh/></geometry>
  </library_geometries>
  <library_materials/>
  <library_images/>
</COLLADA>`

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// captureLogger returns a logger writing into the returned buffer.
func captureLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return log.New(&buf, "", 0), &buf
}

func mustParseDocument(t *testing.T, src string) *colladaDocument {
	t.Helper()
	p := newColladaParser()
	require.NoError(t, p.Parse([]byte(src)))
	require.NotNil(t, p.Document())
	return p.Document()
}
