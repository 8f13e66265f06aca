// Package render draws a single triangle with Vulkan: it owns the render
// context, the swapchain and its dependents, and the frames-in-flight
// loop that keeps them fed.
package render

import (
	"log/slog"
	"time"

	mgl32 "github.com/go-gl/mathgl/mgl32"
	"github.com/vulkan-go/vulkan"

	"Iridium/internal/config"
	"Iridium/internal/shader"
)

const statsInterval = time.Second

// Window is the windowing service as the renderer sees it.
type Window interface {
	Surfacer
	FramebufferSize() (width, height int)
	WaitEvents()
}

var (
	_ frameTarget     = (*Renderer)(nil)
	_ swapchainTarget = (*Renderer)(nil)
)

// Renderer is the single owner of every GPU object.
type Renderer struct {
	log        *slog.Logger
	window     Window
	compiler   *shader.Compiler
	triangle   shader.Triangle
	clearColor mgl32.Vec4

	ctx         *Context
	sc          swapchainState
	pl          pipelineState
	commandPool vulkan.CommandPool
	slots       [maxFramesInFlight]frameSlot
	scheduler   *frameScheduler
}

// New builds the context, swapchain, pipeline and frame slots. On failure
// whatever was created is destroyed again.
func New(window Window, cfg config.Config, log *slog.Logger) (*Renderer, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	ctx, err := NewContext(window, cfg.Info, cfg.Validation, log)
	if err != nil {
		return nil, err
	}

	r := &Renderer{
		log:        log,
		window:     window,
		compiler:   shader.NewCompiler(),
		triangle:   shader.DefaultTriangle,
		clearColor: cfg.ClearColor,
		ctx:        ctx,
	}
	r.scheduler = newFrameScheduler(r, r.recreateSwapchain, newFrameStats(log, statsInterval), log)

	if err := r.init(); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

func (r *Renderer) init() error {
	if _, err := r.createSwapchain(); err != nil {
		return err
	}
	if err := r.createImageViews(); err != nil {
		return err
	}
	if err := r.createPipeline(); err != nil {
		return err
	}
	if err := r.createFramebuffers(); err != nil {
		return err
	}
	if err := r.createCommandPool(); err != nil {
		return err
	}
	return r.createFrameSlots()
}

// DrawFrame renders and presents one frame.
func (r *Renderer) DrawFrame() error {
	return r.scheduler.drawFrame()
}

// NotifyResized is called from the window's resize callback.
func (r *Renderer) NotifyResized() {
	r.scheduler.notifyResized()
}

// Wait blocks until the GPU is idle. Call it after the last frame and
// before Destroy.
func (r *Renderer) Wait() error {
	return r.ctx.WaitIdle()
}

// DeviceName is the selected GPU's name.
func (r *Renderer) DeviceName() string {
	return r.ctx.DeviceName()
}

func (r *Renderer) waitIdle() error {
	return r.ctx.WaitIdle()
}

func (r *Renderer) recreateSwapchain() error {
	if err := recreateSwapchain(r.window, r); err != nil {
		return err
	}
	r.log.Info("swapchain recreated",
		"width", r.sc.extent.Width,
		"height", r.sc.extent.Height)
	return nil
}

// Destroy releases everything in reverse dependency order. The device is
// drained first so nothing still in use on the GPU is freed.
func (r *Renderer) Destroy() {
	if r.ctx == nil {
		return
	}
	if err := r.ctx.WaitIdle(); err != nil {
		r.log.Warn("wait idle before teardown", "err", err)
	}
	r.destroyFrameSlots()
	r.destroyFramebuffers()
	r.destroyImageViews()
	r.destroySwapchain()
	r.destroyPipeline()
	r.compiler.Close()
	r.ctx.Destroy()
	r.ctx = nil
}
