package main

import (
	"log/slog"

	"github.com/pkg/errors"

	"Iridium/internal/config"
	"Iridium/internal/render"
	"Iridium/internal/window"
)

// run owns the window and the renderer for the lifetime of the process.
// Teardown is deferred in reverse order: renderer, window, GLFW.
func run(cfg config.Config, log *slog.Logger) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = errors.Errorf("panic: %v", v)
		}
	}()

	if err := window.Init(); err != nil {
		return err
	}
	defer window.Terminate()

	win, err := window.Create(cfg.Window.Width, cfg.Window.Height, cfg.Window.Title)
	if err != nil {
		return err
	}
	defer win.Destroy()
	win.SetCloseOnEscape()

	r, err := render.New(win, cfg, log)
	if err != nil {
		return errors.Wrap(err, "init renderer")
	}
	defer r.Destroy()

	win.SetResizeCallback(func(width, height int) {
		r.NotifyResized()
	})

	log.Info("entering main loop",
		"app", cfg.Info.Name,
		"version", cfg.Info.Version.String(),
		"device", r.DeviceName(),
		"validation", cfg.Validation)

	for !win.ShouldClose() {
		window.PollEvents()
		if err := r.DrawFrame(); err != nil {
			return errors.Wrap(err, "draw frame")
		}
	}
	return r.Wait()
}
