package render

import (
	"log/slog"

	"github.com/vulkan-go/vulkan"
)

// maxFramesInFlight bounds how far the CPU may run ahead of the GPU.
const maxFramesInFlight = 2

// frameTarget is what the scheduler drives each frame. Every method takes
// the frame slot whose command buffer and sync objects it should use.
type frameTarget interface {
	waitForFence(slot int) error
	acquireNextImage(slot int) (imageIndex uint32, res vulkan.Result)
	resetFence(slot int) error
	recordCommands(slot int, imageIndex uint32) error
	submit(slot int) error
	present(slot int, imageIndex uint32) vulkan.Result
}

// frameScheduler runs the per-frame protocol over a ring of frame slots
// and hands stale swapchains to recreate.
type frameScheduler struct {
	log      *slog.Logger
	target   frameTarget
	recreate func() error
	stats    *frameStats

	frame   uint64
	resized bool
}

func newFrameScheduler(target frameTarget, recreate func() error, stats *frameStats, log *slog.Logger) *frameScheduler {
	return &frameScheduler{
		log:      log,
		target:   target,
		recreate: recreate,
		stats:    stats,
	}
}

// slot is the frame slot the next drawFrame will use.
func (s *frameScheduler) slot() int {
	return int(s.frame % maxFramesInFlight)
}

// notifyResized flags the swapchain for recreation after the next present.
func (s *frameScheduler) notifyResized() {
	s.resized = true
}

func (s *frameScheduler) drawFrame() error {
	slot := s.slot()

	if err := s.target.waitForFence(slot); err != nil {
		return err
	}

	imageIndex, res := s.target.acquireNextImage(slot)
	switch res {
	case vulkan.Success, vulkan.Suboptimal:
	case vulkan.ErrorOutOfDate:
		// Nothing was submitted for this slot: its fence stays signaled and
		// the semaphore was never handed to the GPU.
		s.log.Debug("swapchain out of date on acquire", "frame", s.frame)
		s.resized = false
		return s.recreate()
	default:
		return newError("acquire next image", res)
	}

	// Only reset the fence once work is certain to be submitted.
	if err := s.target.resetFence(slot); err != nil {
		return err
	}
	if err := s.target.recordCommands(slot, imageIndex); err != nil {
		return err
	}
	if err := s.target.submit(slot); err != nil {
		return err
	}

	res = s.target.present(slot, imageIndex)
	switch {
	case res == vulkan.ErrorOutOfDate || res == vulkan.Suboptimal || s.resized:
		s.log.Debug("swapchain stale after present", "frame", s.frame, "resized", s.resized)
		s.resized = false
		if err := s.recreate(); err != nil {
			return err
		}
	case res != vulkan.Success:
		return newError("queue present", res)
	}

	s.frame++
	if s.stats != nil {
		s.stats.frameDone()
	}
	return nil
}
