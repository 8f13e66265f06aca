package render

import (
	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"

	"Iridium/internal/shader"
)

// pipelineState depends on the swapchain's image format, not its extent:
// viewport and scissor are dynamic.
type pipelineState struct {
	renderPass vulkan.RenderPass
	layout     vulkan.PipelineLayout
	pipeline   vulkan.Pipeline
}

// createRenderPass describes a single cleared colour attachment that ends
// up ready for presentation.
func (r *Renderer) createRenderPass() error {
	colorAttachment := vulkan.AttachmentDescription{
		Format:         r.sc.format.Format,
		Samples:        vulkan.SampleCount1Bit,
		LoadOp:         vulkan.AttachmentLoadOpClear,
		StoreOp:        vulkan.AttachmentStoreOpStore,
		StencilLoadOp:  vulkan.AttachmentLoadOpDontCare,
		StencilStoreOp: vulkan.AttachmentStoreOpDontCare,
		InitialLayout:  vulkan.ImageLayoutUndefined,
		FinalLayout:    vulkan.ImageLayoutPresentSrc,
	}
	colorRef := vulkan.AttachmentReference{
		Attachment: 0,
		Layout:     vulkan.ImageLayoutColorAttachmentOptimal,
	}
	subpass := vulkan.SubpassDescription{
		PipelineBindPoint:    vulkan.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments:    []vulkan.AttachmentReference{colorRef},
	}

	// The render pass must not start writing before the acquired image is
	// released by the presentation engine.
	dependency := vulkan.SubpassDependency{
		SrcSubpass:    vulkan.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vulkan.PipelineStageFlags(vulkan.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vulkan.AccessFlags(vulkan.AccessColorAttachmentWriteBit),
	}

	createInfo := vulkan.RenderPassCreateInfo{
		SType:           vulkan.StructureTypeRenderPassCreateInfo,
		AttachmentCount: 1,
		PAttachments:    []vulkan.AttachmentDescription{colorAttachment},
		SubpassCount:    1,
		PSubpasses:      []vulkan.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vulkan.SubpassDependency{dependency},
	}
	if res := vulkan.CreateRenderPass(r.ctx.device, &createInfo, nil, &r.pl.renderPass); res != vulkan.Success {
		return newError("create render pass", res)
	}
	return nil
}

func (r *Renderer) createShaderModule(compiled shader.Compiled) (vulkan.ShaderModule, error) {
	createInfo := vulkan.ShaderModuleCreateInfo{
		SType:    vulkan.StructureTypeShaderModuleCreateInfo,
		CodeSize: compiled.SizeBytes(),
		PCode:    compiled.Code,
	}
	var module vulkan.ShaderModule
	if res := vulkan.CreateShaderModule(r.ctx.device, &createInfo, nil, &module); res != vulkan.Success {
		return vulkan.ShaderModule(vulkan.NullHandle), errors.Wrapf(newError("create shader module", res), "%s stage", compiled.Stage)
	}
	return module, nil
}

// createGraphicsPipeline compiles the triangle shaders and builds the
// fixed pipeline against the current render pass. Shader modules only
// live for the duration of this call.
func (r *Renderer) createGraphicsPipeline() error {
	vertSrc, fragSrc, err := shader.TriangleSources(r.triangle)
	if err != nil {
		return err
	}
	vert, err := r.compiler.Compile([]string{vertSrc}, shader.StageVertex)
	if err != nil {
		return err
	}
	frag, err := r.compiler.Compile([]string{fragSrc}, shader.StageFragment)
	if err != nil {
		return err
	}

	vertModule, err := r.createShaderModule(vert)
	if err != nil {
		return err
	}
	defer vulkan.DestroyShaderModule(r.ctx.device, vertModule, nil)
	fragModule, err := r.createShaderModule(frag)
	if err != nil {
		return err
	}
	defer vulkan.DestroyShaderModule(r.ctx.device, fragModule, nil)

	shaderStages := []vulkan.PipelineShaderStageCreateInfo{
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageVertexBit,
			Module: vertModule,
			PName:  safeString(vert.EntryPoint),
		},
		{
			SType:  vulkan.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkan.ShaderStageFragmentBit,
			Module: fragModule,
			PName:  safeString(frag.EntryPoint),
		},
	}

	dynamicStates := []vulkan.DynamicState{
		vulkan.DynamicStateViewport,
		vulkan.DynamicStateScissor,
	}
	dynamicState := vulkan.PipelineDynamicStateCreateInfo{
		SType:             vulkan.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	// Geometry lives in the vertex shader.
	vertexInput := vulkan.PipelineVertexInputStateCreateInfo{
		SType: vulkan.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vulkan.PipelineInputAssemblyStateCreateInfo{
		SType:                  vulkan.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vulkan.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: vulkan.False,
	}
	viewportState := vulkan.PipelineViewportStateCreateInfo{
		SType:         vulkan.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizer := vulkan.PipelineRasterizationStateCreateInfo{
		SType:                   vulkan.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vulkan.False,
		RasterizerDiscardEnable: vulkan.False,
		PolygonMode:             vulkan.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                vulkan.CullModeFlags(vulkan.CullModeBackBit),
		FrontFace:               vulkan.FrontFaceClockwise,
		DepthBiasEnable:         vulkan.False,
	}
	multisampling := vulkan.PipelineMultisampleStateCreateInfo{
		SType:                vulkan.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:  vulkan.False,
		RasterizationSamples: vulkan.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	colorBlendAttachment := vulkan.PipelineColorBlendAttachmentState{
		ColorWriteMask:      vulkan.ColorComponentFlags(vulkan.ColorComponentRBit | vulkan.ColorComponentGBit | vulkan.ColorComponentBBit | vulkan.ColorComponentABit),
		BlendEnable:         vulkan.True,
		SrcColorBlendFactor: vulkan.BlendFactorSrcAlpha,
		DstColorBlendFactor: vulkan.BlendFactorOneMinusSrcAlpha,
		ColorBlendOp:        vulkan.BlendOpAdd,
		SrcAlphaBlendFactor: vulkan.BlendFactorOne,
		DstAlphaBlendFactor: vulkan.BlendFactorZero,
		AlphaBlendOp:        vulkan.BlendOpAdd,
	}
	colorBlending := vulkan.PipelineColorBlendStateCreateInfo{
		SType:           vulkan.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vulkan.False,
		AttachmentCount: 1,
		PAttachments:    []vulkan.PipelineColorBlendAttachmentState{colorBlendAttachment},
	}

	layoutInfo := vulkan.PipelineLayoutCreateInfo{
		SType: vulkan.StructureTypePipelineLayoutCreateInfo,
	}
	if res := vulkan.CreatePipelineLayout(r.ctx.device, &layoutInfo, nil, &r.pl.layout); res != vulkan.Success {
		return newError("create pipeline layout", res)
	}

	pipelineInfo := vulkan.GraphicsPipelineCreateInfo{
		SType:               vulkan.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(shaderStages)),
		PStages:             shaderStages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisampling,
		PColorBlendState:    &colorBlending,
		PDynamicState:       &dynamicState,
		Layout:              r.pl.layout,
		RenderPass:          r.pl.renderPass,
		Subpass:             0,
		BasePipelineIndex:   -1,
	}
	pipelines := make([]vulkan.Pipeline, 1)
	if res := vulkan.CreateGraphicsPipelines(r.ctx.device, vulkan.PipelineCache(vulkan.NullHandle), 1, []vulkan.GraphicsPipelineCreateInfo{pipelineInfo}, nil, pipelines); res != vulkan.Success {
		return newError("create graphics pipeline", res)
	}
	r.pl.pipeline = pipelines[0]
	return nil
}

// createPipeline builds the render pass and the graphics pipeline on it.
func (r *Renderer) createPipeline() error {
	if err := r.createRenderPass(); err != nil {
		return err
	}
	return r.createGraphicsPipeline()
}

func (r *Renderer) destroyPipeline() {
	device := r.ctx.device
	if r.pl.pipeline != vulkan.Pipeline(vulkan.NullHandle) {
		vulkan.DestroyPipeline(device, r.pl.pipeline, nil)
		r.pl.pipeline = vulkan.Pipeline(vulkan.NullHandle)
	}
	if r.pl.layout != vulkan.PipelineLayout(vulkan.NullHandle) {
		vulkan.DestroyPipelineLayout(device, r.pl.layout, nil)
		r.pl.layout = vulkan.PipelineLayout(vulkan.NullHandle)
	}
	if r.pl.renderPass != vulkan.RenderPass(vulkan.NullHandle) {
		vulkan.DestroyRenderPass(device, r.pl.renderPass, nil)
		r.pl.renderPass = vulkan.RenderPass(vulkan.NullHandle)
	}
}

// rebuildPipeline replaces the format-dependent objects after the
// swapchain format changed.
func (r *Renderer) rebuildPipeline() error {
	r.destroyPipeline()
	return r.createPipeline()
}
