// SPDX-License-Identifier: Unlicense OR MIT

package main

// A Gio program that requests the location permission and shows the last
// known location of the device. See https://gioui.org for more information.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/op"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"

	"gioui.org/example/location/internal/config"
	"gioui.org/example/location/internal/screen"
	"gioui.org/example/location/location"
	"gioui.org/example/location/location/ipgeo"
	"gioui.org/example/location/permission"
	"gioui.org/example/location/platform"
)

type App struct {
	w      *app.Window
	ui     *UI
	native platform.Native

	ctx       context.Context
	ctxCancel context.CancelFunc
}

func main() {
	fs := config.Flags(filepath.Base(os.Args[0]))
	if err := fs.Parse(os.Args[1:]); err != nil {
		logrus.Fatal(err)
	}
	var dirs []string
	if dir, err := app.DataDir(); err == nil {
		dirs = append(dirs, filepath.Join(dir, "location"))
	}
	cfg, err := config.Load(fs, dirs...)
	if err != nil {
		logrus.Fatal(err)
	}
	log := cfg.NewLogger(os.Stderr)

	go func() {
		w := new(app.Window)
		w.Option(
			app.Title("Location"),
			app.Size(unit.Dp(400), unit.Dp(700)),
		)
		a, err := newApp(w, cfg, log)
		if err != nil {
			log.Fatal(err)
		}
		if err := a.run(); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}()
	app.Main()
}

func newApp(w *app.Window, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	native, err := platform.New()
	if err != nil {
		if !errors.Is(err, platform.ErrUnsupported) {
			return nil, err
		}
	}
	perms, provider, err := backends(cfg, native)
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"provider": cfg.Provider.Kind,
		"native":   native != nil,
		"refresh":  cfg.Screen.Refresh,
	}).Info("starting")

	a := &App{
		w:      w,
		native: native,
	}
	a.ctx, a.ctxCancel = context.WithCancel(context.Background())
	a.ui = newUI(a.ctx, newTheme(), cfg.Screen.Toast)
	a.ui.screen = screen.New(perms, provider, screen.Options{
		Refresh:    cfg.Screen.Refresh,
		Log:        log,
		Invalidate: w.Invalidate,
		Notify:     a.ui.notify,
	})
	return a, nil
}

// backends selects the permission registry and location provider. The
// native implementation is used where available; elsewhere the
// configuration scripts the permission dialog.
func backends(cfg *config.Config, native platform.Native) (permission.Manager, location.Provider, error) {
	var perms permission.Manager
	if native != nil {
		perms = native
	} else {
		var granted []permission.Permission
		if cfg.Permission.Granted {
			granted = append(granted, permission.FineLocation)
		}
		perms = permission.NewMemory(cfg.GrantOnRequest(), granted...)
	}

	var provider location.Provider
	switch cfg.Provider.Kind {
	case config.ProviderFused:
		if native == nil {
			return nil, nil, fmt.Errorf("provider %q: %w", cfg.Provider.Kind, platform.ErrUnsupported)
		}
		provider = native
	case config.ProviderStatic:
		s := cfg.Provider.Static
		if s.Set {
			provider = location.NewStatic(location.Coordinate{Latitude: s.Latitude, Longitude: s.Longitude})
		} else {
			provider = new(location.Static)
		}
	case config.ProviderIPGeo:
		provider = ipgeo.NewClient(cfg.Provider.IPGeo.URL, cfg.Provider.IPGeo.Timeout)
	case config.ProviderAuto:
		if native != nil {
			provider = native
		} else {
			provider = ipgeo.NewClient(cfg.Provider.IPGeo.URL, cfg.Provider.IPGeo.Timeout)
		}
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider.Kind)
	}
	return perms, provider, nil
}

func newTheme() *material.Theme {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	return th
}

func (a *App) run() error {
	defer a.ctxCancel()
	var ops op.Ops
	for {
		e := a.w.Event()
		if a.native != nil {
			a.native.Event(e)
		}
		switch e := e.(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			a.ui.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
