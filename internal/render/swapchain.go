package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// swapchainState holds the swapchain and everything sized to it. Images
// belong to the swapchain; views and framebuffers are owned here.
type swapchainState struct {
	handle       vulkan.Swapchain
	images       []vulkan.Image
	views        []vulkan.ImageView
	framebuffers []vulkan.Framebuffer
	format       vulkan.SurfaceFormat
	extent       vulkan.Extent2D
	presentMode  vulkan.PresentMode
}

// createSwapchain negotiates a new swapchain from freshly queried
// support. It reports whether the surface format differs from the
// previous swapchain's, which invalidates the render pass.
func (r *Renderer) createSwapchain() (formatChanged bool, err error) {
	ctx := r.ctx
	support := querySwapchainSupport(ctx.physicalDevice, ctx.surface)
	if len(support.formats) == 0 {
		return false, ErrNoSurfaceFormat
	}

	surfaceFormat := chooseSurfaceFormat(support.formats)
	presentMode := choosePresentMode(support.presentModes)
	fbWidth, fbHeight := r.window.FramebufferSize()
	extent := chooseExtent(support.capabilities, fbWidth, fbHeight)
	if extent.Width == 0 || extent.Height == 0 {
		return false, errors.Errorf("create swapchain: zero extent %dx%d", extent.Width, extent.Height)
	}

	createInfo := vulkan.SwapchainCreateInfo{
		SType:            vulkan.StructureTypeSwapchainCreateInfo,
		Surface:          ctx.surface,
		MinImageCount:    chooseImageCount(support.capabilities),
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vulkan.ImageUsageFlags(vulkan.ImageUsageColorAttachmentBit),
		PreTransform:     support.capabilities.CurrentTransform,
		CompositeAlpha:   vulkan.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vulkan.True,
		OldSwapchain:     vulkan.Swapchain(vulkan.NullHandle),
	}
	mode, families := chooseSharing(ctx.queues)
	createInfo.ImageSharingMode = mode
	if mode == vulkan.SharingModeConcurrent {
		createInfo.QueueFamilyIndexCount = uint32(len(families))
		createInfo.PQueueFamilyIndices = families
	}

	var handle vulkan.Swapchain
	if res := vulkan.CreateSwapchain(ctx.device, &createInfo, nil, &handle); res != vulkan.Success {
		return false, newError("create swapchain", res)
	}

	var count uint32
	if res := vulkan.GetSwapchainImages(ctx.device, handle, &count, nil); res != vulkan.Success {
		vulkan.DestroySwapchain(ctx.device, handle, nil)
		return false, newError("get swapchain images", res)
	}
	images := make([]vulkan.Image, count)
	if res := vulkan.GetSwapchainImages(ctx.device, handle, &count, images); res != vulkan.Success {
		vulkan.DestroySwapchain(ctx.device, handle, nil)
		return false, newError("get swapchain images", res)
	}

	formatChanged = r.sc.format.Format != surfaceFormat.Format
	r.sc.handle = handle
	r.sc.images = images
	r.sc.format = surfaceFormat
	r.sc.extent = extent
	r.sc.presentMode = presentMode
	r.log.Debug("swapchain created",
		"width", extent.Width,
		"height", extent.Height,
		"images", count,
		"format", surfaceFormat.Format,
		"presentMode", presentMode)
	return formatChanged, nil
}

// createImageViews makes one 2D colour view per swapchain image.
func (r *Renderer) createImageViews() error {
	r.sc.views = make([]vulkan.ImageView, 0, len(r.sc.images))
	for i, img := range r.sc.images {
		viewInfo := vulkan.ImageViewCreateInfo{
			SType:    vulkan.StructureTypeImageViewCreateInfo,
			Image:    img,
			ViewType: vulkan.ImageViewType2d,
			Format:   r.sc.format.Format,
			Components: vulkan.ComponentMapping{
				R: vulkan.ComponentSwizzleIdentity,
				G: vulkan.ComponentSwizzleIdentity,
				B: vulkan.ComponentSwizzleIdentity,
				A: vulkan.ComponentSwizzleIdentity,
			},
			SubresourceRange: vulkan.ImageSubresourceRange{
				AspectMask:     vulkan.ImageAspectFlags(vulkan.ImageAspectColorBit),
				BaseMipLevel:   0,
				LevelCount:     1,
				BaseArrayLayer: 0,
				LayerCount:     1,
			},
		}
		var view vulkan.ImageView
		if res := vulkan.CreateImageView(r.ctx.device, &viewInfo, nil, &view); res != vulkan.Success {
			return errors.Wrapf(newError("create image view", res), "swapchain image %d", i)
		}
		r.sc.views = append(r.sc.views, view)
	}
	return nil
}

// createFramebuffers binds each image view to the render pass.
func (r *Renderer) createFramebuffers() error {
	r.sc.framebuffers = make([]vulkan.Framebuffer, 0, len(r.sc.views))
	for i, view := range r.sc.views {
		createInfo := vulkan.FramebufferCreateInfo{
			SType:           vulkan.StructureTypeFramebufferCreateInfo,
			RenderPass:      r.pl.renderPass,
			AttachmentCount: 1,
			PAttachments:    []vulkan.ImageView{view},
			Width:           r.sc.extent.Width,
			Height:          r.sc.extent.Height,
			Layers:          1,
		}
		var fb vulkan.Framebuffer
		if res := vulkan.CreateFramebuffer(r.ctx.device, &createInfo, nil, &fb); res != vulkan.Success {
			return errors.Wrapf(newError("create framebuffer", res), "swapchain image %d", i)
		}
		r.sc.framebuffers = append(r.sc.framebuffers, fb)
	}
	return nil
}

func (r *Renderer) destroyFramebuffers() {
	for _, fb := range r.sc.framebuffers {
		vulkan.DestroyFramebuffer(r.ctx.device, fb, nil)
	}
	r.sc.framebuffers = nil
}

func (r *Renderer) destroyImageViews() {
	for _, view := range r.sc.views {
		vulkan.DestroyImageView(r.ctx.device, view, nil)
	}
	r.sc.views = nil
}

// destroySwapchain releases the swapchain; its images go with it.
func (r *Renderer) destroySwapchain() {
	if r.sc.handle != vulkan.Swapchain(vulkan.NullHandle) {
		vulkan.DestroySwapchain(r.ctx.device, r.sc.handle, nil)
		r.sc.handle = vulkan.Swapchain(vulkan.NullHandle)
	}
	r.sc.images = nil
}
