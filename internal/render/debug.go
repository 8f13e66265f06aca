package render

import (
	"context"
	"log/slog"
	"unsafe"

	"github.com/vulkan-go/vulkan"
)

// debugReportFlags selects warnings and errors; info and debug chatter
// from the layers is never requested.
const debugReportFlags = vulkan.DebugReportFlags(
	vulkan.DebugReportErrorBit |
		vulkan.DebugReportWarningBit |
		vulkan.DebugReportPerformanceWarningBit)

func debugReportLevel(flags vulkan.DebugReportFlags) slog.Level {
	if flags&vulkan.DebugReportFlags(vulkan.DebugReportErrorBit) != 0 {
		return slog.LevelError
	}
	return slog.LevelWarn
}

func debugReportCallback(log *slog.Logger) vulkan.DebugReportCallbackFunc {
	return func(flags vulkan.DebugReportFlags, objectType vulkan.DebugReportObjectType, object uint64, location uint, messageCode int32, layerPrefix string, message string, userData unsafe.Pointer) vulkan.Bool32 {
		log.Log(context.Background(), debugReportLevel(flags), "vk validation layer: "+message,
			"layer", layerPrefix,
			"code", messageCode)
		return vulkan.False
	}
}

func (c *Context) setupDebugCallback() error {
	createInfo := vulkan.DebugReportCallbackCreateInfo{
		SType:       vulkan.StructureTypeDebugReportCallbackCreateInfo,
		Flags:       debugReportFlags,
		PfnCallback: debugReportCallback(c.log),
	}
	if res := vulkan.CreateDebugReportCallback(c.instance, &createInfo, nil, &c.debugCallback); res != vulkan.Success {
		return newError("create debug report callback", res)
	}
	return nil
}
