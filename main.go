package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"Iridium/internal/config"
)

func init() {
	// GLFW/Vulkan require the main thread.
	runtime.LockOSThread()
}

func main() {
	cfg := config.Default()

	level := slog.LevelInfo
	if cfg.Validation {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("thread", "main")

	log.Info("Args are:")
	for i, arg := range os.Args {
		log.Info(fmt.Sprintf("#%d>%s", i, arg))
	}

	if err := run(cfg, log); err != nil {
		log.Error(err.Error())
		log.Debug("error detail", "trace", fmt.Sprintf("%+v", err))
		os.Exit(1)
	}
}
