package render

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vulkan-go/vulkan"
)

func TestChooseSurfaceFormat(t *testing.T) {
	preferred := vulkan.SurfaceFormat{Format: vulkan.FormatB8g8r8a8Srgb, ColorSpace: vulkan.ColorSpaceSrgbNonlinear}
	unorm := vulkan.SurfaceFormat{Format: vulkan.FormatB8g8r8a8Unorm, ColorSpace: vulkan.ColorSpaceSrgbNonlinear}
	rgba := vulkan.SurfaceFormat{Format: vulkan.FormatR8g8b8a8Srgb, ColorSpace: vulkan.ColorSpaceSrgbNonlinear}

	tests := []struct {
		name      string
		available []vulkan.SurfaceFormat
		want      vulkan.SurfaceFormat
	}{
		{"only preferred", []vulkan.SurfaceFormat{preferred}, preferred},
		{"preferred last", []vulkan.SurfaceFormat{unorm, rgba, preferred}, preferred},
		{"fallback first", []vulkan.SurfaceFormat{rgba, unorm}, rgba},
		{"format without colour space", []vulkan.SurfaceFormat{
			{Format: vulkan.FormatB8g8r8a8Srgb, ColorSpace: vulkan.ColorSpace(1000104002)},
			unorm,
		}, vulkan.SurfaceFormat{Format: vulkan.FormatB8g8r8a8Srgb, ColorSpace: vulkan.ColorSpace(1000104002)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chooseSurfaceFormat(tt.available))
		})
	}
}

func TestChoosePresentMode(t *testing.T) {
	assert.Equal(t, vulkan.PresentModeMailbox, choosePresentMode([]vulkan.PresentMode{vulkan.PresentModeFifo, vulkan.PresentModeMailbox}))
	assert.Equal(t, vulkan.PresentModeFifo, choosePresentMode([]vulkan.PresentMode{vulkan.PresentModeImmediate, vulkan.PresentModeFifo}))
	assert.Equal(t, vulkan.PresentModeFifo, choosePresentMode([]vulkan.PresentMode{vulkan.PresentModeImmediate}))
	assert.Equal(t, vulkan.PresentModeFifo, choosePresentMode(nil))
}

func TestChooseExtent(t *testing.T) {
	caps := vulkan.SurfaceCapabilities{
		CurrentExtent:  vulkan.Extent2D{Width: 1024, Height: 768},
		MinImageExtent: vulkan.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vulkan.Extent2D{Width: 4096, Height: 4096},
	}
	assert.Equal(t, vulkan.Extent2D{Width: 1024, Height: 768}, chooseExtent(caps, 800, 600))

	caps.CurrentExtent = vulkan.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	assert.Equal(t, vulkan.Extent2D{Width: 800, Height: 600}, chooseExtent(caps, 800, 600))
	assert.Equal(t, vulkan.Extent2D{Width: 4096, Height: 1}, chooseExtent(caps, 10000, 0))

	caps.MinImageExtent = vulkan.Extent2D{Width: 200, Height: 200}
	assert.Equal(t, vulkan.Extent2D{Width: 200, Height: 600}, chooseExtent(caps, 100, 600))
}

func TestChooseImageCount(t *testing.T) {
	tests := []struct {
		min, max, want uint32
	}{
		{2, 0, 3},
		{2, 8, 3},
		{2, 2, 2},
		{3, 3, 3},
		{1, 4, 2},
	}
	for _, tt := range tests {
		caps := vulkan.SurfaceCapabilities{MinImageCount: tt.min, MaxImageCount: tt.max}
		assert.Equal(t, tt.want, chooseImageCount(caps), "min=%d max=%d", tt.min, tt.max)
	}
}

func TestChooseSharing(t *testing.T) {
	same := queueFamilyIndices{graphics: 0, compute: 0, present: 0, hasGraphics: true, hasCompute: true, hasPresent: true}
	mode, families := chooseSharing(same)
	assert.Equal(t, vulkan.SharingModeExclusive, mode)
	assert.Nil(t, families)

	split := queueFamilyIndices{graphics: 0, compute: 1, present: 0, hasGraphics: true, hasCompute: true, hasPresent: true}
	mode, families = chooseSharing(split)
	assert.Equal(t, vulkan.SharingModeConcurrent, mode)
	assert.Equal(t, []uint32{0, 1}, families)

	all := queueFamilyIndices{graphics: 2, compute: 1, present: 0, hasGraphics: true, hasCompute: true, hasPresent: true}
	_, families = chooseSharing(all)
	assert.Equal(t, []uint32{2, 1, 0}, families)
}
