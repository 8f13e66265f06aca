package render

// framebufferSource reports the window's framebuffer size and can block
// for window events.
type framebufferSource interface {
	FramebufferSize() (width, height int)
	WaitEvents()
}

// swapchainTarget is the set of swapchain-dependent objects recreation
// tears down and rebuilds.
type swapchainTarget interface {
	waitIdle() error
	destroyFramebuffers()
	destroyImageViews()
	destroySwapchain()
	createSwapchain() (formatChanged bool, err error)
	rebuildPipeline() error
	createImageViews() error
	createFramebuffers() error
}

// recreateSwapchain waits out a minimized window, drains the GPU and
// rebuilds the swapchain, its views and framebuffers. The render pass and
// pipeline are rebuilt only when the surface format changed.
func recreateSwapchain(window framebufferSource, target swapchainTarget) error {
	width, height := window.FramebufferSize()
	for width == 0 || height == 0 {
		window.WaitEvents()
		width, height = window.FramebufferSize()
	}

	if err := target.waitIdle(); err != nil {
		return err
	}

	target.destroyFramebuffers()
	target.destroyImageViews()
	target.destroySwapchain()

	formatChanged, err := target.createSwapchain()
	if err != nil {
		return err
	}
	if formatChanged {
		if err := target.rebuildPipeline(); err != nil {
			return err
		}
	}
	if err := target.createImageViews(); err != nil {
		return err
	}
	return target.createFramebuffers()
}
