package loader

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-collada/common"
	"github.com/Carmen-Shannon/oxy-collada/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// colladaMaterialExtractorImpl is the implementation of the colladaMaterialExtractor interface.
type colladaMaterialExtractorImpl struct {
	effects elementIndex
}

// colladaMaterialExtractor defines the interface for decoding material elements against the effect library.
type colladaMaterialExtractor interface {
	// ExtractMaterial decodes a material element. The appearance comes from the effect the
	// material instances through instance_effect, looked up by exact identifier. When that
	// effect is not indexed the material is still produced with a default appearance,
	// its EffectID retained and Degraded set.
	//
	// Parameters:
	//   - el: the material element
	//
	// Returns:
	//   - *model.Material: the decoded material
	//   - error: a SkippableElementError if the material has no instance_effect
	ExtractMaterial(el *colladaElement) (*model.Material, error)
}

var _ colladaMaterialExtractor = &colladaMaterialExtractorImpl{}

// newColladaMaterialExtractor creates a new material extractor.
//
// Parameters:
//   - effects: the index of effect elements declared under library_effects
//
// Returns:
//   - colladaMaterialExtractor: the material extractor
func newColladaMaterialExtractor(effects elementIndex) colladaMaterialExtractor {
	return &colladaMaterialExtractorImpl{effects: effects}
}

func (e *colladaMaterialExtractorImpl) ExtractMaterial(el *colladaElement) (*model.Material, error) {
	id := el.ID()
	inst := el.Child(tagInstanceEffect)
	if inst == nil {
		return nil, skipElement(ElementMaterial, id, "no instance_effect")
	}

	effectID := stripIDRef(inst.Attr(attrURL))
	mat := model.DefaultMaterial(id, el.Attr(attrName))
	mat.EffectID = effectID

	effect := e.effects.Lookup(effectID)
	if effect == nil {
		mat.Degraded = true
		return mat, nil
	}

	profile := effect.Child("profile_COMMON")
	if profile == nil {
		return mat, nil
	}

	params := collectNewParams(profile)
	if shading := findShading(profile.Child("technique")); shading != nil {
		mat.Technique = shading.Tag()
		applyShading(mat, shading, params)
	}

	// Bump maps and the double-sided flag live in vendor extras on the technique, profile or effect.
	if bump := profile.Find("bump"); bump != nil {
		if tex := bump.Child("texture"); tex != nil {
			mat.Textures["normal"] = params.textureRef("normal", tex)
		}
	}
	if ds := effect.Find("double_sided"); ds != nil {
		mat.DoubleSided = parseBool(ds.Text())
	}

	return mat, nil
}

// findShading returns the first shading model element of a technique, or nil.
func findShading(technique *colladaElement) *colladaElement {
	if technique == nil {
		return nil
	}
	for _, c := range technique.Children() {
		switch c.Tag() {
		case model.TechniquePhong, model.TechniqueBlinn, model.TechniqueLambert, model.TechniqueConstant:
			return c
		}
	}
	return nil
}

// applyShading copies the colour, texture and float parameters of a shading element.
func applyShading(mat *model.Material, shading *colladaElement, params effectParams) {
	for _, param := range shading.Children() {
		channel := param.Tag()
		switch channel {
		case "emission":
			readColorOrTexture(mat, channel, param, params, &mat.Emission)
		case "ambient":
			readColorOrTexture(mat, channel, param, params, &mat.Ambient)
		case "diffuse":
			readColorOrTexture(mat, channel, param, params, &mat.Diffuse)
		case "specular":
			readColorOrTexture(mat, channel, param, params, &mat.Specular)
		case "reflective":
			readColorOrTexture(mat, channel, param, params, &mat.Reflective)
		case "transparent":
			readColorOrTexture(mat, channel, param, params, &mat.Transparent)
		case "shininess":
			readFloat(param, &mat.Shininess)
		case "reflectivity":
			readFloat(param, &mat.Reflectivity)
		case "transparency":
			readFloat(param, &mat.Transparency)
		case "index_of_refraction":
			readFloat(param, &mat.IndexOfRefraction)
		}
	}
}

func readColorOrTexture(mat *model.Material, channel string, param *colladaElement, params effectParams, dst *[4]float32) {
	if c := param.Child("color"); c != nil {
		values, err := parseFloats(c.Text())
		if err != nil || len(values) < 3 {
			return
		}
		color := [4]float32{values[0], values[1], values[2], 1}
		if len(values) >= 4 {
			color[3] = values[3]
		}
		*dst = color
		return
	}
	if tex := param.Child("texture"); tex != nil {
		mat.Textures[channel] = params.textureRef(channel, tex)
	}
}

func readFloat(param *colladaElement, dst *float32) {
	f := param.Child("float")
	if f == nil {
		return
	}
	v, err := strconv.ParseFloat(f.Text(), 32)
	if err != nil {
		return
	}
	*dst = float32(v)
}

func parseBool(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "1", "true":
		return true
	}
	return false
}

// effectParams holds the surface and sampler newparam declarations of one effect profile, keyed by sid.
type effectParams struct {
	surfaces map[string]string
	samplers map[string]*colladaElement
}

func collectNewParams(profile *colladaElement) effectParams {
	params := effectParams{
		surfaces: make(map[string]string),
		samplers: make(map[string]*colladaElement),
	}
	for _, np := range profile.ChildrenByTag("newparam") {
		sid := np.Attr(attrSID)
		if surface := np.Child("surface"); surface != nil {
			params.surfaces[sid] = surface.ChildText(tagInitFrom)
		}
		if sampler := np.Child("sampler2D"); sampler != nil {
			params.samplers[sid] = sampler
		}
	}
	return params
}

// textureRef resolves a texture element through sampler and surface parameters down to an image id.
// A texture attribute that names no sampler is taken as the image id itself.
func (p effectParams) textureRef(channel string, tex *colladaElement) *common.TextureRef {
	ref := &common.TextureRef{
		Channel:  channel,
		ImageID:  tex.Attr("texture"),
		TexCoord: tex.Attr("texcoord"),
	}

	sampler, ok := p.samplers[ref.ImageID]
	if !ok {
		return ref
	}
	if inst := sampler.Child("instance_image"); inst != nil {
		ref.ImageID = stripIDRef(inst.Attr(attrURL))
	} else if source := sampler.ChildText("source"); source != "" {
		if image, ok := p.surfaces[source]; ok && image != "" {
			ref.ImageID = image
		} else {
			ref.ImageID = source
		}
	}
	ref.SamplerData = samplerToStagingData(sampler)
	return ref
}

// samplerToStagingData converts a sampler2D declaration into SamplerStagingData.
// Unset fields keep the defaults of DefaultSamplerData.
func samplerToStagingData(sampler *colladaElement) *common.SamplerStagingData {
	result := common.DefaultSamplerData()

	if v := sampler.ChildText("wrap_s"); v != "" {
		result.AddressModeU = colladaWrapToAddressMode(v)
	}
	if v := sampler.ChildText("wrap_t"); v != "" {
		result.AddressModeV = colladaWrapToAddressMode(v)
	}
	if v := sampler.ChildText("wrap_p"); v != "" {
		result.AddressModeW = colladaWrapToAddressMode(v)
	}

	if v := sampler.ChildText("magfilter"); v != "" {
		result.MagFilter, _ = colladaFilterToModes(v)
	}
	if v := sampler.ChildText("minfilter"); v != "" {
		result.MinFilter, result.MipmapFilter = colladaFilterToModes(v)
	}
	// 1.5 documents declare the mip filter separately.
	switch sampler.ChildText("mipfilter") {
	case "NEAREST":
		result.MipmapFilter = wgpu.MipmapFilterModeNearest
	case "LINEAR":
		result.MipmapFilter = wgpu.MipmapFilterModeLinear
	}

	if v := sampler.ChildText("max_anisotropy"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil && n > 0 {
			result.MaxAnisotropy = uint16(n)
		}
	}

	return &result
}

// colladaWrapToAddressMode converts a COLLADA wrap mode to a wgpu AddressMode.
//
// Parameters:
//   - wrap: the wrap mode text (WRAP, MIRROR, CLAMP, BORDER, MIRROR_ONCE, NONE)
//
// Returns:
//   - wgpu.AddressMode: the corresponding wgpu address mode
func colladaWrapToAddressMode(wrap string) wgpu.AddressMode {
	switch strings.ToUpper(wrap) {
	case "MIRROR", "MIRROR_ONCE":
		return wgpu.AddressModeMirrorRepeat
	case "CLAMP", "BORDER", "NONE":
		return wgpu.AddressModeClampToEdge
	default:
		return wgpu.AddressModeRepeat
	}
}

// colladaFilterToModes splits a COLLADA filter name into the texel filter and the mipmap filter.
// Non-mipmapped filters pair with a nearest mipmap filter.
func colladaFilterToModes(filter string) (wgpu.FilterMode, wgpu.MipmapFilterMode) {
	switch strings.ToUpper(filter) {
	case "NEAREST":
		return wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest
	case "NEAREST_MIPMAP_NEAREST":
		return wgpu.FilterModeNearest, wgpu.MipmapFilterModeNearest
	case "NEAREST_MIPMAP_LINEAR":
		return wgpu.FilterModeNearest, wgpu.MipmapFilterModeLinear
	case "LINEAR_MIPMAP_NEAREST":
		return wgpu.FilterModeLinear, wgpu.MipmapFilterModeNearest
	case "LINEAR_MIPMAP_LINEAR", "ANISOTROPIC":
		return wgpu.FilterModeLinear, wgpu.MipmapFilterModeLinear
	default:
		return wgpu.FilterModeLinear, wgpu.MipmapFilterModeNearest
	}
}
