package render

import (
	"math"

	"github.com/vulkan-go/vulkan"
)

// chooseSurfaceFormat prefers 8-bit BGRA sRGB with a non-linear sRGB
// colour space and otherwise takes the first format offered. available
// must not be empty.
func chooseSurfaceFormat(available []vulkan.SurfaceFormat) vulkan.SurfaceFormat {
	for _, f := range available {
		if f.Format == vulkan.FormatB8g8r8a8Srgb && f.ColorSpace == vulkan.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	return available[0]
}

// choosePresentMode prefers mailbox. FIFO is always available.
func choosePresentMode(available []vulkan.PresentMode) vulkan.PresentMode {
	for _, m := range available {
		if m == vulkan.PresentModeMailbox {
			return m
		}
	}
	return vulkan.PresentModeFifo
}

// chooseExtent uses the surface's current extent unless the surface
// leaves it undefined, in which case the framebuffer size is clamped into
// the supported range.
func chooseExtent(caps vulkan.SurfaceCapabilities, fbWidth, fbHeight int) vulkan.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	min := caps.MinImageExtent
	max := caps.MaxImageExtent
	return vulkan.Extent2D{
		Width:  clamp(uint32(fbWidth), min.Width, max.Width),
		Height: clamp(uint32(fbHeight), min.Height, max.Height),
	}
}

// chooseImageCount asks for one image more than the minimum, capped by
// the maximum when the surface has one.
func chooseImageCount(caps vulkan.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// chooseSharing returns exclusive sharing when every queue role lives in
// one family, and concurrent sharing across the distinct families
// otherwise.
func chooseSharing(q queueFamilyIndices) (vulkan.SharingMode, []uint32) {
	families := q.unique()
	if len(families) == 1 {
		return vulkan.SharingModeExclusive, nil
	}
	return vulkan.SharingModeConcurrent, families
}

func clamp(val, min, max uint32) uint32 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
