package loader

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-collada/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractMaterial(t *testing.T, src, id string) (*model.Material, error) {
	t.Helper()
	doc := mustParseDocument(t, src)
	ex := newColladaMaterialExtractor(indexReferences(doc).effects)
	for _, el := range doc.FindAll(tagMaterial) {
		if el.ID() == id {
			return ex.ExtractMaterial(el)
		}
	}
	t.Fatalf("material %q not in document", id)
	return nil, nil
}

func TestColladaMaterialExtractor(t *testing.T) {
	t.Run("phong effect with sampled texture", func(t *testing.T) {
		mat, err := extractMaterial(t, sampleDocument, "red")
		require.NoError(t, err)

		assert.Equal(t, "Red", mat.Name)
		assert.Equal(t, "redFx", mat.EffectID)
		assert.Equal(t, model.TechniquePhong, mat.Technique)
		assert.False(t, mat.Degraded)
		assert.Equal(t, [4]float32{1, 0, 0, 1}, mat.Ambient)
		assert.Equal(t, [4]float32{0.5, 0.5, 0.5, 1}, mat.Specular)
		assert.Equal(t, float32(20), mat.Shininess)
		assert.True(t, mat.DoubleSided)

		tex := mat.Textures["diffuse"]
		require.NotNil(t, tex)
		assert.Equal(t, "diffuse", tex.Channel)
		assert.Equal(t, "texImg", tex.ImageID)
		assert.Equal(t, "UVSET0", tex.TexCoord)
		require.NotNil(t, tex.SamplerData)
		assert.Equal(t, wgpu.AddressModeClampToEdge, tex.SamplerData.AddressModeU)
		assert.Equal(t, wgpu.AddressModeMirrorRepeat, tex.SamplerData.AddressModeV)
		assert.Equal(t, wgpu.AddressModeRepeat, tex.SamplerData.AddressModeW)
		assert.Equal(t, wgpu.FilterModeNearest, tex.SamplerData.MagFilter)
		assert.Equal(t, wgpu.FilterModeLinear, tex.SamplerData.MinFilter)
		assert.Equal(t, wgpu.MipmapFilterModeLinear, tex.SamplerData.MipmapFilter)
	})

	t.Run("missing effect degrades to default appearance", func(t *testing.T) {
		mat, err := extractMaterial(t, sampleDocument, "ghost")
		require.NoError(t, err)

		assert.True(t, mat.Degraded)
		assert.Equal(t, "missingFx", mat.EffectID)
		assert.Equal(t, model.TechniqueConstant, mat.Technique)
		assert.Equal(t, [4]float32{1, 1, 1, 1}, mat.Diffuse)
	})

	t.Run("missing instance_effect is skippable", func(t *testing.T) {
		mat, err := extractMaterial(t, sampleDocument, "broken")
		assert.Nil(t, mat)
		assert.True(t, IsSkippable(err))
	})

	t.Run("effect lookup is exact", func(t *testing.T) {
		mat, err := extractMaterial(t, `<COLLADA>
			<library_materials><material id="m"><instance_effect url="#fx"/></material></library_materials>
			<library_effects>
				<effect id="fx-other"><profile_COMMON><technique><lambert><diffuse><color>0 1 0 1</color></diffuse></lambert></technique></profile_COMMON></effect>
				<effect id="fx"><profile_COMMON><technique><blinn><diffuse><color>0 0 1</color></diffuse></blinn></technique></profile_COMMON></effect>
			</library_effects>
		</COLLADA>`, "m")
		require.NoError(t, err)

		assert.Equal(t, model.TechniqueBlinn, mat.Technique)
		assert.Equal(t, [4]float32{0, 0, 1, 1}, mat.Diffuse)
	})

	t.Run("1.5 sampler with instance_image", func(t *testing.T) {
		mat, err := extractMaterial(t, `<COLLADA>
			<library_materials><material id="m"><instance_effect url="#fx"/></material></library_materials>
			<library_effects><effect id="fx"><profile_COMMON>
				<newparam sid="s"><sampler2D><instance_image url="#img"/><wrap_s>WRAP</wrap_s></sampler2D></newparam>
				<technique><lambert><emission><texture texture="s" texcoord="CHANNEL1"/></emission></lambert></technique>
			</profile_COMMON></effect></library_effects>
		</COLLADA>`, "m")
		require.NoError(t, err)

		tex := mat.Textures["emission"]
		require.NotNil(t, tex)
		assert.Equal(t, "img", tex.ImageID)
		assert.Equal(t, wgpu.AddressModeRepeat, tex.SamplerData.AddressModeU)
	})

	t.Run("texture naming an image directly", func(t *testing.T) {
		mat, err := extractMaterial(t, `<COLLADA>
			<library_materials><material id="m"><instance_effect url="#fx"/></material></library_materials>
			<library_effects><effect id="fx"><profile_COMMON>
				<technique><phong><diffuse><texture texture="img" texcoord="UV"/></diffuse></phong>
				<extra><technique profile="FCOLLADA"><bump><texture texture="nrm" texcoord="UV"/></bump></technique></extra>
				</technique>
			</profile_COMMON></effect></library_effects>
		</COLLADA>`, "m")
		require.NoError(t, err)

		assert.Equal(t, "img", mat.Textures["diffuse"].ImageID)
		assert.Nil(t, mat.Textures["diffuse"].SamplerData)
		require.NotNil(t, mat.Textures["normal"])
		assert.Equal(t, "nrm", mat.Textures["normal"].ImageID)
	})
}
