// Package config holds the application description and the handful of
// settings the renderer needs at startup.
package config

import (
	"fmt"
	"os"

	mgl32 "github.com/go-gl/mathgl/mgl32"
)

// Version is a semantic application version.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AppInfo names the application for the GPU driver.
type AppInfo struct {
	Name    string
	Version Version
}

// Window describes the initial window.
type Window struct {
	Width  int
	Height int
	Title  string
}

type Config struct {
	Info   AppInfo
	Window Window

	// Validation enables the Khronos validation layer and the debug
	// report callback.
	Validation bool

	// ClearColor is the RGBA colour each frame is cleared to.
	ClearColor mgl32.Vec4
}

// Default returns the configuration used by the demo binary.
func Default() Config {
	return Config{
		Info: AppInfo{
			Name:    "Demo",
			Version: Version{Major: 0, Minor: 0, Patch: 1},
		},
		Window: Window{
			Width:  800,
			Height: 600,
			Title:  "Iridium",
		},
		Validation: ValidationEnabled(),
		ClearColor: mgl32.Vec4{0, 0, 0, 0},
	}
}

// ValidationEnabled reports whether validation should be active. The
// default is fixed at build time; VK_VALIDATION can only switch it off or
// back on explicitly.
func ValidationEnabled() bool {
	return validationFromEnv(os.Getenv("VK_VALIDATION"), validationDefault)
}

func validationFromEnv(val string, def bool) bool {
	switch val {
	case "":
		return def
	case "0", "false", "False", "FALSE":
		return false
	default:
		return true
	}
}
