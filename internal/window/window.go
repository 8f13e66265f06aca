// Package window wraps GLFW for a Vulkan-only window: no client API,
// framebuffer resize notifications and surface creation.
package window

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/glfw/v3.3/glfw"
	"github.com/vulkan-go/vulkan"
)

// ErrVulkanUnsupported is returned by Init when GLFW finds no Vulkan loader.
var ErrVulkanUnsupported = errors.New("GLFW Vulkan loader not found")

// Init initializes GLFW and points the Vulkan loader at GLFW's
// vkGetInstanceProcAddr. It must run on the main thread.
func Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "init glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.WithStack(ErrVulkanUnsupported)
	}
	vulkan.SetGetInstanceProcAddr(glfw.GetVulkanGetInstanceProcAddress())
	if err := vulkan.Init(); err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "vulkan init")
	}
	return nil
}

// Terminate shuts GLFW down. Every window must be destroyed first.
func Terminate() {
	glfw.Terminate()
}

// PollEvents processes pending events and returns immediately.
func PollEvents() {
	glfw.PollEvents()
}

type Window struct {
	handle *glfw.Window
}

// Create opens a window with no client API attached.
func Create(width, height int, title string) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	handle, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}
	return &Window{handle: handle}, nil
}

func (w *Window) FramebufferSize() (width, height int) {
	return w.handle.GetFramebufferSize()
}

// WaitEvents blocks until at least one event arrives. Used while the
// window is minimized.
func (w *Window) WaitEvents() {
	glfw.WaitEvents()
}

// SetResizeCallback registers fn for framebuffer size changes. The
// callback runs on the main thread from inside PollEvents/WaitEvents.
func (w *Window) SetResizeCallback(fn func(width, height int)) {
	w.handle.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		fn(width, height)
	})
}

// SetCloseOnEscape makes the escape key request close.
func (w *Window) SetCloseOnEscape() {
	w.handle.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})
}

func (w *Window) ShouldClose() bool {
	return w.handle.ShouldClose()
}

// RequiredExtensions lists the instance extensions the platform needs to
// present to this window.
func (w *Window) RequiredExtensions() []string {
	return w.handle.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance vulkan.Instance) (vulkan.Surface, error) {
	ptr, err := w.handle.CreateWindowSurface(instance, nil)
	if err != nil {
		return vulkan.NullSurface, errors.Wrap(err, "create window surface")
	}
	return vulkan.SurfaceFromPointer(ptr), nil
}

func (w *Window) Destroy() {
	if w.handle != nil {
		w.handle.Destroy()
		w.handle = nil
	}
}
