package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"
)

// frameSlot is one entry of the frames-in-flight ring. inFlight must be
// signaled before commandBuffer is reset and re-recorded.
type frameSlot struct {
	commandBuffer  vulkan.CommandBuffer
	imageAvailable vulkan.Semaphore
	renderFinished vulkan.Semaphore
	inFlight       vulkan.Fence
}

func (r *Renderer) createCommandPool() error {
	poolInfo := vulkan.CommandPoolCreateInfo{
		SType:            vulkan.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: r.ctx.queues.graphics,
		Flags:            vulkan.CommandPoolCreateFlags(vulkan.CommandPoolCreateResetCommandBufferBit),
	}
	if res := vulkan.CreateCommandPool(r.ctx.device, &poolInfo, nil, &r.commandPool); res != vulkan.Success {
		return newError("create command pool", res)
	}
	return nil
}

// createFrameSlots allocates a command buffer per slot and its sync
// objects. Fences start signaled so the first wait on each slot returns
// immediately.
func (r *Renderer) createFrameSlots() error {
	device := r.ctx.device
	allocInfo := vulkan.CommandBufferAllocateInfo{
		SType:              vulkan.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        r.commandPool,
		Level:              vulkan.CommandBufferLevelPrimary,
		CommandBufferCount: maxFramesInFlight,
	}
	buffers := make([]vulkan.CommandBuffer, maxFramesInFlight)
	if res := vulkan.AllocateCommandBuffers(device, &allocInfo, buffers); res != vulkan.Success {
		return newError("allocate command buffers", res)
	}

	semInfo := vulkan.SemaphoreCreateInfo{
		SType: vulkan.StructureTypeSemaphoreCreateInfo,
	}
	fenceInfo := vulkan.FenceCreateInfo{
		SType: vulkan.StructureTypeFenceCreateInfo,
		Flags: vulkan.FenceCreateFlags(vulkan.FenceCreateSignaledBit),
	}
	for i := range r.slots {
		slot := &r.slots[i]
		slot.commandBuffer = buffers[i]
		if res := vulkan.CreateSemaphore(device, &semInfo, nil, &slot.imageAvailable); res != vulkan.Success {
			return errors.Wrapf(newError("create semaphore", res), "image available, slot %d", i)
		}
		if res := vulkan.CreateSemaphore(device, &semInfo, nil, &slot.renderFinished); res != vulkan.Success {
			return errors.Wrapf(newError("create semaphore", res), "render finished, slot %d", i)
		}
		if res := vulkan.CreateFence(device, &fenceInfo, nil, &slot.inFlight); res != vulkan.Success {
			return errors.Wrapf(newError("create fence", res), "in flight, slot %d", i)
		}
	}
	return nil
}

// destroyFrameSlots frees sync objects and the command pool, which takes
// the command buffers with it.
func (r *Renderer) destroyFrameSlots() {
	device := r.ctx.device
	for i := range r.slots {
		slot := &r.slots[i]
		if slot.inFlight != vulkan.Fence(vulkan.NullHandle) {
			vulkan.DestroyFence(device, slot.inFlight, nil)
		}
		if slot.imageAvailable != vulkan.Semaphore(vulkan.NullHandle) {
			vulkan.DestroySemaphore(device, slot.imageAvailable, nil)
		}
		if slot.renderFinished != vulkan.Semaphore(vulkan.NullHandle) {
			vulkan.DestroySemaphore(device, slot.renderFinished, nil)
		}
		*slot = frameSlot{}
	}
	if r.commandPool != vulkan.CommandPool(vulkan.NullHandle) {
		vulkan.DestroyCommandPool(device, r.commandPool, nil)
		r.commandPool = vulkan.CommandPool(vulkan.NullHandle)
	}
}

func (r *Renderer) waitForFence(slot int) error {
	fences := []vulkan.Fence{r.slots[slot].inFlight}
	if res := vulkan.WaitForFences(r.ctx.device, 1, fences, vulkan.True, vulkan.MaxUint64); res != vulkan.Success {
		return newError("wait for fence", res)
	}
	return nil
}

func (r *Renderer) acquireNextImage(slot int) (uint32, vulkan.Result) {
	var imageIndex uint32
	res := vulkan.AcquireNextImage(r.ctx.device, r.sc.handle, vulkan.MaxUint64, r.slots[slot].imageAvailable, vulkan.Fence(vulkan.NullHandle), &imageIndex)
	return imageIndex, res
}

func (r *Renderer) resetFence(slot int) error {
	if res := vulkan.ResetFences(r.ctx.device, 1, []vulkan.Fence{r.slots[slot].inFlight}); res != vulkan.Success {
		return newError("reset fence", res)
	}
	return nil
}

// recordCommands re-records the slot's command buffer to draw the
// triangle into the acquired image.
func (r *Renderer) recordCommands(slot int, imageIndex uint32) error {
	cb := r.slots[slot].commandBuffer
	if res := vulkan.ResetCommandBuffer(cb, 0); res != vulkan.Success {
		return newError("reset command buffer", res)
	}

	beginInfo := vulkan.CommandBufferBeginInfo{
		SType: vulkan.StructureTypeCommandBufferBeginInfo,
	}
	if res := vulkan.BeginCommandBuffer(cb, &beginInfo); res != vulkan.Success {
		return newError("begin command buffer", res)
	}

	clearValues := []vulkan.ClearValue{vulkan.NewClearValue(r.clearColor[:])}
	renderPassInfo := vulkan.RenderPassBeginInfo{
		SType:       vulkan.StructureTypeRenderPassBeginInfo,
		RenderPass:  r.pl.renderPass,
		Framebuffer: r.sc.framebuffers[imageIndex],
		RenderArea: vulkan.Rect2D{
			Offset: vulkan.Offset2D{X: 0, Y: 0},
			Extent: r.sc.extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vulkan.CmdBeginRenderPass(cb, &renderPassInfo, vulkan.SubpassContentsInline)

	vulkan.CmdBindPipeline(cb, vulkan.PipelineBindPointGraphics, r.pl.pipeline)
	vulkan.CmdSetViewport(cb, 0, 1, []vulkan.Viewport{{
		X:        0,
		Y:        0,
		Width:    float32(r.sc.extent.Width),
		Height:   float32(r.sc.extent.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}})
	vulkan.CmdSetScissor(cb, 0, 1, []vulkan.Rect2D{{
		Offset: vulkan.Offset2D{X: 0, Y: 0},
		Extent: r.sc.extent,
	}})
	vulkan.CmdDraw(cb, 3, 1, 0, 0)

	vulkan.CmdEndRenderPass(cb)

	if res := vulkan.EndCommandBuffer(cb); res != vulkan.Success {
		return newError("end command buffer", res)
	}
	return nil
}

func (r *Renderer) submit(slot int) error {
	s := &r.slots[slot]
	submitInfo := vulkan.SubmitInfo{
		SType:                vulkan.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vulkan.Semaphore{s.imageAvailable},
		PWaitDstStageMask:    []vulkan.PipelineStageFlags{vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vulkan.CommandBuffer{s.commandBuffer},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vulkan.Semaphore{s.renderFinished},
	}
	if res := vulkan.QueueSubmit(r.ctx.graphicsQueue, 1, []vulkan.SubmitInfo{submitInfo}, s.inFlight); res != vulkan.Success {
		return newError("queue submit", res)
	}
	return nil
}

func (r *Renderer) present(slot int, imageIndex uint32) vulkan.Result {
	presentInfo := vulkan.PresentInfo{
		SType:              vulkan.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vulkan.Semaphore{r.slots[slot].renderFinished},
		SwapchainCount:     1,
		PSwapchains:        []vulkan.Swapchain{r.sc.handle},
		PImageIndices:      []uint32{imageIndex},
	}
	return vulkan.QueuePresent(r.ctx.presentQueue, &presentInfo)
}
