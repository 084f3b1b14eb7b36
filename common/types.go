// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// SamplerStagingData holds the sampling configuration decoded from a document sampler declaration.
// The values are expressed in wgpu enums so a renderer can create its sampler without any further translation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// DefaultSamplerData returns the linear/repeat sampler used when a document declares no sampler state.
//
// Returns:
//   - SamplerStagingData: the default sampler configuration
func DefaultSamplerData() SamplerStagingData {
	return SamplerStagingData{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

// TextureRef references an image from a material channel.
// The image itself is looked up by ImageID in the scene image map; pixel data is never loaded.
type TextureRef struct {
	// Channel is the material channel the texture feeds (e.g., "diffuse", "normal").
	Channel string

	// ImageID is the identifier of the referenced image.
	ImageID string

	// TexCoord is the texcoord semantic named by the effect, bound to a mesh input set at instance time.
	TexCoord string

	// SamplerData holds the sampler parameters declared by the effect.
	// When nil, DefaultSamplerData applies.
	SamplerData *SamplerStagingData
}
