package render

import (
	"log/slog"

	"github.com/pkg/errors"
	"github.com/vulkan-go/vulkan"

	"Iridium/internal/config"
)

const engineName = "Iridium"

// Surfacer is the part of a window the context needs: the platform
// instance extensions and a presentation surface.
type Surfacer interface {
	RequiredExtensions() []string
	CreateSurface(instance vulkan.Instance) (vulkan.Surface, error)
}

// contextStage tracks how far context construction got.
type contextStage int

const (
	stageUninitialized contextStage = iota
	stageInstance
	stageDebugCallback
	stageSurface
	stagePhysicalDevice
	stageReady
)

func (s contextStage) String() string {
	switch s {
	case stageInstance:
		return "instance created"
	case stageDebugCallback:
		return "debug callback created"
	case stageSurface:
		return "surface created"
	case stagePhysicalDevice:
		return "physical device selected"
	case stageReady:
		return "ready"
	default:
		return "uninitialized"
	}
}

// Context owns the instance, the optional debug callback, the surface and
// the logical device. Queues are borrowed from the device.
type Context struct {
	log        *slog.Logger
	validation bool
	stage      contextStage

	instance       vulkan.Instance
	debugCallback  vulkan.DebugReportCallback
	surface        vulkan.Surface
	physicalDevice vulkan.PhysicalDevice
	deviceName     string
	device         vulkan.Device
	queues         queueFamilyIndices

	graphicsQueue vulkan.Queue
	computeQueue  vulkan.Queue
	presentQueue  vulkan.Queue
}

// NewContext builds the context in dependency order. On failure every
// object created so far is destroyed before the error is returned.
func NewContext(window Surfacer, info config.AppInfo, validation bool, log *slog.Logger) (*Context, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	c := &Context{log: log, validation: validation}

	steps := []contextStep{
		{stageInstance, "create instance", func() error { return c.createInstance(window, info) }},
		{stageDebugCallback, "setup debug callback", c.setupDebugCallback},
		{stageSurface, "create surface", func() error { return c.createSurface(window) }},
		{stagePhysicalDevice, "pick physical device", c.pickPhysicalDevice},
		{stageReady, "create logical device", c.createLogicalDevice},
	}
	if !validation {
		steps = append(steps[:1], steps[2:]...)
	}
	err := runContextSteps(steps, func(stage contextStage) {
		c.stage = stage
		c.log.Debug("render context", "stage", stage.String())
	})
	if err != nil {
		c.Destroy()
		return nil, err
	}
	return c, nil
}

// contextStep is one construction step and the stage reached once it
// succeeds.
type contextStep struct {
	stage contextStage
	op    string
	run   func() error
}

// runContextSteps runs steps in order and stops at the first failure,
// naming the step that failed.
func runContextSteps(steps []contextStep, done func(contextStage)) error {
	for _, step := range steps {
		if err := step.run(); err != nil {
			return errors.Wrapf(err, "render context: %s", step.op)
		}
		done(step.stage)
	}
	return nil
}

func (c *Context) createInstance(window Surfacer, info config.AppInfo) error {
	if c.validation && !validationLayersAvailable() {
		return ErrValidationUnavailable
	}

	appInfo := vulkan.ApplicationInfo{
		SType:              vulkan.StructureTypeApplicationInfo,
		PApplicationName:   safeString(info.Name),
		ApplicationVersion: vulkan.MakeVersion(int(info.Version.Major), int(info.Version.Minor), int(info.Version.Patch)),
		PEngineName:        safeString(engineName),
		EngineVersion:      vulkan.MakeVersion(0, 0, 1),
		ApiVersion:         vulkan.MakeVersion(1, 0, 0),
	}

	extensions := requiredExtensions(window.RequiredExtensions(), c.validation)
	createInfo := vulkan.InstanceCreateInfo{
		SType:                   vulkan.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
	}
	if c.validation {
		createInfo.EnabledLayerCount = uint32(len(validationLayers))
		createInfo.PpEnabledLayerNames = safeStrings(validationLayers)
	}

	if res := vulkan.CreateInstance(&createInfo, nil, &c.instance); res != vulkan.Success {
		return newError("create instance", res)
	}
	if err := vulkan.InitInstance(c.instance); err != nil {
		vulkan.DestroyInstance(c.instance, nil)
		c.instance = vulkan.Instance(vulkan.NullHandle)
		return errors.Wrap(err, "init instance functions")
	}
	return nil
}

func (c *Context) createSurface(window Surfacer) error {
	surface, err := window.CreateSurface(c.instance)
	if err != nil {
		return err
	}
	c.surface = surface
	return nil
}

// pickPhysicalDevice takes the first device that passes deviceIsSuitable.
func (c *Context) pickPhysicalDevice() error {
	var count uint32
	if res := vulkan.EnumeratePhysicalDevices(c.instance, &count, nil); res != vulkan.Success {
		return newError("enumerate physical devices", res)
	}
	if count == 0 {
		return ErrNoDevice
	}
	devices := make([]vulkan.PhysicalDevice, count)
	if res := vulkan.EnumeratePhysicalDevices(c.instance, &count, devices); res != vulkan.Success {
		return newError("enumerate physical devices", res)
	}

	for _, dev := range devices {
		indices, ok := deviceIsSuitable(dev, c.surface)
		if !ok {
			continue
		}
		c.physicalDevice = dev
		c.queues = indices

		var props vulkan.PhysicalDeviceProperties
		vulkan.GetPhysicalDeviceProperties(dev, &props)
		props.Deref()
		c.deviceName = vulkan.ToString(props.DeviceName[:])
		c.log.Info("selected GPU",
			"device", c.deviceName,
			"graphicsFamily", indices.graphics,
			"computeFamily", indices.compute,
			"presentFamily", indices.present)
		return nil
	}
	return ErrNoSuitableDevice
}

// createLogicalDevice requests one queue per distinct family. The
// validation layers are set on the device as well for older loaders.
func (c *Context) createLogicalDevice() error {
	families := c.queues.unique()
	queueInfos := make([]vulkan.DeviceQueueCreateInfo, 0, len(families))
	for _, family := range families {
		queueInfos = append(queueInfos, vulkan.DeviceQueueCreateInfo{
			SType:            vulkan.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: family,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}

	createInfo := vulkan.DeviceCreateInfo{
		SType:                   vulkan.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queueInfos)),
		PQueueCreateInfos:       queueInfos,
		PEnabledFeatures:        []vulkan.PhysicalDeviceFeatures{{}},
		EnabledExtensionCount:   uint32(len(deviceExtensions)),
		PpEnabledExtensionNames: safeStrings(deviceExtensions),
	}
	if c.validation {
		createInfo.EnabledLayerCount = uint32(len(validationLayers))
		createInfo.PpEnabledLayerNames = safeStrings(validationLayers)
	}

	if res := vulkan.CreateDevice(c.physicalDevice, &createInfo, nil, &c.device); res != vulkan.Success {
		return newError("create logical device", res)
	}

	vulkan.GetDeviceQueue(c.device, c.queues.graphics, 0, &c.graphicsQueue)
	vulkan.GetDeviceQueue(c.device, c.queues.compute, 0, &c.computeQueue)
	vulkan.GetDeviceQueue(c.device, c.queues.present, 0, &c.presentQueue)
	return nil
}

// WaitIdle blocks until the device has finished all submitted work.
func (c *Context) WaitIdle() error {
	if c.device == vulkan.Device(vulkan.NullHandle) {
		return nil
	}
	if res := vulkan.DeviceWaitIdle(c.device); res != vulkan.Success {
		return newError("device wait idle", res)
	}
	return nil
}

// DeviceName is the name the driver reports for the selected GPU.
func (c *Context) DeviceName() string {
	return c.deviceName
}

// Destroy tears the context down in reverse creation order: device,
// debug callback, surface, instance. Safe on a partially built context.
func (c *Context) Destroy() {
	if c.device != vulkan.Device(vulkan.NullHandle) {
		vulkan.DestroyDevice(c.device, nil)
		c.device = vulkan.Device(vulkan.NullHandle)
	}
	if c.debugCallback != vulkan.DebugReportCallback(vulkan.NullHandle) {
		vulkan.DestroyDebugReportCallback(c.instance, c.debugCallback, nil)
		c.debugCallback = vulkan.DebugReportCallback(vulkan.NullHandle)
	}
	if c.surface != vulkan.Surface(vulkan.NullHandle) {
		vulkan.DestroySurface(c.instance, c.surface, nil)
		c.surface = vulkan.Surface(vulkan.NullHandle)
	}
	if c.instance != vulkan.Instance(vulkan.NullHandle) {
		vulkan.DestroyInstance(c.instance, nil)
		c.instance = vulkan.Instance(vulkan.NullHandle)
	}
	c.stage = stageUninitialized
}

func safeString(s string) string {
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}
