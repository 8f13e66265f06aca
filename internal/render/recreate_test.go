package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	sizes [][2]int
	waits int
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	s := w.sizes[0]
	if len(w.sizes) > 1 {
		w.sizes = w.sizes[1:]
	}
	return s[0], s[1]
}

func (w *fakeWindow) WaitEvents() {
	w.waits++
}

// fakeSwapchain counts live objects so leaks and double frees show up.
type fakeSwapchain struct {
	calls []string

	swapchains   int
	views        int
	framebuffers int
	pipelines    int

	formatChanged bool
	createErr     error
	lastExtent    [2]int
	window        *fakeWindow
}

func (f *fakeSwapchain) waitIdle() error {
	f.calls = append(f.calls, "waitIdle")
	return nil
}

func (f *fakeSwapchain) destroyFramebuffers() {
	f.calls = append(f.calls, "destroyFramebuffers")
	f.framebuffers--
}

func (f *fakeSwapchain) destroyImageViews() {
	f.calls = append(f.calls, "destroyImageViews")
	f.views--
}

func (f *fakeSwapchain) destroySwapchain() {
	f.calls = append(f.calls, "destroySwapchain")
	f.swapchains--
}

func (f *fakeSwapchain) createSwapchain() (bool, error) {
	f.calls = append(f.calls, "createSwapchain")
	if f.createErr != nil {
		return false, f.createErr
	}
	if f.window != nil {
		w, h := f.window.FramebufferSize()
		f.lastExtent = [2]int{w, h}
	}
	f.swapchains++
	return f.formatChanged, nil
}

func (f *fakeSwapchain) rebuildPipeline() error {
	f.calls = append(f.calls, "rebuildPipeline")
	return nil
}

func (f *fakeSwapchain) createImageViews() error {
	f.calls = append(f.calls, "createImageViews")
	f.views++
	return nil
}

func (f *fakeSwapchain) createFramebuffers() error {
	f.calls = append(f.calls, "createFramebuffers")
	f.framebuffers++
	return nil
}

func liveSwapchain() *fakeSwapchain {
	return &fakeSwapchain{swapchains: 1, views: 1, framebuffers: 1, pipelines: 1}
}

func TestRecreateOrder(t *testing.T) {
	win := &fakeWindow{sizes: [][2]int{{800, 600}}}
	sc := liveSwapchain()

	require.NoError(t, recreateSwapchain(win, sc))
	assert.Equal(t, []string{
		"waitIdle",
		"destroyFramebuffers", "destroyImageViews", "destroySwapchain",
		"createSwapchain", "createImageViews", "createFramebuffers",
	}, sc.calls)
	assert.Zero(t, win.waits)
}

func TestRecreateIdempotent(t *testing.T) {
	win := &fakeWindow{sizes: [][2]int{{800, 600}}}
	sc := liveSwapchain()

	require.NoError(t, recreateSwapchain(win, sc))
	require.NoError(t, recreateSwapchain(win, sc))

	assert.Equal(t, 1, sc.swapchains)
	assert.Equal(t, 1, sc.views)
	assert.Equal(t, 1, sc.framebuffers)

	creates, destroys := 0, 0
	for _, c := range sc.calls {
		switch c {
		case "createSwapchain", "createImageViews", "createFramebuffers":
			creates++
		case "destroySwapchain", "destroyImageViews", "destroyFramebuffers":
			destroys++
		}
	}
	assert.Equal(t, creates, destroys)
}

func TestRecreateWaitsForNonZeroFramebuffer(t *testing.T) {
	win := &fakeWindow{sizes: [][2]int{{0, 0}, {0, 0}, {800, 600}}}
	sc := liveSwapchain()
	sc.window = win

	require.NoError(t, recreateSwapchain(win, sc))
	assert.Equal(t, 2, win.waits)
	assert.Equal(t, "waitIdle", sc.calls[0], "nothing may be touched while minimized")
	assert.Equal(t, [2]int{800, 600}, sc.lastExtent)
}

func TestRecreateRebuildsPipelineOnFormatChange(t *testing.T) {
	win := &fakeWindow{sizes: [][2]int{{800, 600}}}
	sc := liveSwapchain()
	sc.formatChanged = true

	require.NoError(t, recreateSwapchain(win, sc))
	assert.Equal(t, []string{
		"waitIdle",
		"destroyFramebuffers", "destroyImageViews", "destroySwapchain",
		"createSwapchain", "rebuildPipeline", "createImageViews", "createFramebuffers",
	}, sc.calls)
}

func TestRecreateCreateFailure(t *testing.T) {
	win := &fakeWindow{sizes: [][2]int{{800, 600}}}
	sc := liveSwapchain()
	sc.createErr = errors.New("boom")

	err := recreateSwapchain(win, sc)
	assert.EqualError(t, err, "boom")
	assert.NotContains(t, sc.calls, "createImageViews")
}
