package render

import (
	"github.com/vulkan-go/vulkan"
)

var (
	validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
	deviceExtensions = []string{"VK_KHR_swapchain"}
)

const debugReportExtension = "VK_EXT_debug_report"

// requiredExtensions returns the platform's instance extensions plus the
// debug report extension when validation is on.
func requiredExtensions(platform []string, validation bool) []string {
	extensions := make([]string, 0, len(platform)+1)
	extensions = append(extensions, platform...)
	if validation {
		extensions = append(extensions, debugReportExtension)
	}
	return extensions
}

// validationLayersAvailable reports whether every required layer is
// installed.
func validationLayersAvailable() bool {
	var count uint32
	if vulkan.EnumerateInstanceLayerProperties(&count, nil) != vulkan.Success {
		return false
	}
	props := make([]vulkan.LayerProperties, count)
	if vulkan.EnumerateInstanceLayerProperties(&count, props) != vulkan.Success {
		return false
	}
	names := make([]string, 0, len(props))
	for i := range props {
		props[i].Deref()
		names = append(names, vulkan.ToString(props[i].LayerName[:]))
	}
	return containsAll(names, validationLayers)
}

func containsAll(available, required []string) bool {
	set := make(map[string]bool, len(available))
	for _, name := range available {
		set[name] = true
	}
	for _, name := range required {
		if !set[name] {
			return false
		}
	}
	return true
}

// queueFamilyIndices maps each queue role to a queue family. A role is
// unresolved until its has* flag is set.
type queueFamilyIndices struct {
	graphics    uint32
	compute     uint32
	present     uint32
	hasGraphics bool
	hasCompute  bool
	hasPresent  bool
}

func (q queueFamilyIndices) isComplete() bool {
	return q.hasGraphics && q.hasCompute && q.hasPresent
}

// unique returns the distinct family indices in graphics, compute,
// present order.
func (q queueFamilyIndices) unique() []uint32 {
	out := []uint32{q.graphics}
	for _, idx := range []uint32{q.compute, q.present} {
		seen := false
		for _, o := range out {
			if o == idx {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, idx)
		}
	}
	return out
}

// scanQueueFamilies picks, independently, the first family with graphics,
// the first with compute and the first that can present. The scan stops
// as soon as all three are resolved.
func scanQueueFamilies(props []vulkan.QueueFamilyProperties, canPresent func(family uint32) bool) queueFamilyIndices {
	var indices queueFamilyIndices
	for i := range props {
		family := uint32(i)
		flags := props[i].QueueFlags
		if !indices.hasGraphics && flags&vulkan.QueueFlags(vulkan.QueueGraphicsBit) != 0 {
			indices.graphics = family
			indices.hasGraphics = true
		}
		if !indices.hasCompute && flags&vulkan.QueueFlags(vulkan.QueueComputeBit) != 0 {
			indices.compute = family
			indices.hasCompute = true
		}
		if !indices.hasPresent && canPresent(family) {
			indices.present = family
			indices.hasPresent = true
		}
		if indices.isComplete() {
			break
		}
	}
	return indices
}

func findQueueFamilies(device vulkan.PhysicalDevice, surface vulkan.Surface) queueFamilyIndices {
	var count uint32
	vulkan.GetPhysicalDeviceQueueFamilyProperties(device, &count, nil)
	props := make([]vulkan.QueueFamilyProperties, count)
	vulkan.GetPhysicalDeviceQueueFamilyProperties(device, &count, props)
	for i := range props {
		props[i].Deref()
	}
	return scanQueueFamilies(props, func(family uint32) bool {
		var present vulkan.Bool32
		vulkan.GetPhysicalDeviceSurfaceSupport(device, family, surface, &present)
		return present == vulkan.True
	})
}

func deviceExtensionsSupported(device vulkan.PhysicalDevice) bool {
	var count uint32
	if res := vulkan.EnumerateDeviceExtensionProperties(device, "", &count, nil); res != vulkan.Success {
		return false
	}
	props := make([]vulkan.ExtensionProperties, count)
	if res := vulkan.EnumerateDeviceExtensionProperties(device, "", &count, props); res != vulkan.Success {
		return false
	}
	names := make([]string, 0, len(props))
	for i := range props {
		props[i].Deref()
		names = append(names, vulkan.ToString(props[i].ExtensionName[:]))
	}
	return containsAll(names, deviceExtensions)
}

// swapchainSupport is queried fresh for every swapchain creation.
type swapchainSupport struct {
	capabilities vulkan.SurfaceCapabilities
	formats      []vulkan.SurfaceFormat
	presentModes []vulkan.PresentMode
}

func (s swapchainSupport) adequate() bool {
	return len(s.formats) > 0 && len(s.presentModes) > 0
}

func querySwapchainSupport(device vulkan.PhysicalDevice, surface vulkan.Surface) swapchainSupport {
	var details swapchainSupport
	vulkan.GetPhysicalDeviceSurfaceCapabilities(device, surface, &details.capabilities)
	details.capabilities.Deref()
	details.capabilities.CurrentExtent.Deref()
	details.capabilities.MinImageExtent.Deref()
	details.capabilities.MaxImageExtent.Deref()

	var formatCount uint32
	vulkan.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, nil)
	if formatCount > 0 {
		details.formats = make([]vulkan.SurfaceFormat, formatCount)
		vulkan.GetPhysicalDeviceSurfaceFormats(device, surface, &formatCount, details.formats)
		for i := range details.formats {
			details.formats[i].Deref()
		}
	}

	var presentCount uint32
	vulkan.GetPhysicalDeviceSurfacePresentModes(device, surface, &presentCount, nil)
	if presentCount > 0 {
		details.presentModes = make([]vulkan.PresentMode, presentCount)
		vulkan.GetPhysicalDeviceSurfacePresentModes(device, surface, &presentCount, details.presentModes)
	}
	return details
}

// deviceIsSuitable requires complete queue families, the swapchain
// extension and at least one surface format and present mode.
func deviceIsSuitable(device vulkan.PhysicalDevice, surface vulkan.Surface) (queueFamilyIndices, bool) {
	indices := findQueueFamilies(device, surface)
	if !indices.isComplete() {
		return indices, false
	}
	if !deviceExtensionsSupported(device) {
		return indices, false
	}
	return indices, querySwapchainSupport(device, surface).adequate()
}
