// SPDX-License-Identifier: Unlicense OR MIT

package main

import (
	"context"
	"image"
	"log"
	"time"

	"gioui.org/font"
	"gioui.org/layout"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"

	"golang.org/x/exp/shiny/materialdesign/icons"

	"gioui.org/example/location/internal/screen"
	"gioui.org/example/location/internal/toast"
)

type UI struct {
	theme  *material.Theme
	screen *screen.Screen
	ctx    context.Context

	button widget.Clickable
	icon   *widget.Icon
	toast  toast.Toast

	// now is the frame time notices are shown at.
	now time.Time
}

type (
	C = layout.Context
	D = layout.Dimensions
)

func newUI(ctx context.Context, th *material.Theme, toastDuration time.Duration) *UI {
	u := &UI{
		theme: th,
		ctx:   ctx,
		toast: toast.Toast{Duration: toastDuration},
	}
	var err error
	u.icon, err = widget.NewIcon(icons.MapsMyLocation)
	if err != nil {
		log.Fatal(err)
	}
	return u
}

func (u *UI) notify(msg string) {
	u.toast.Show(msg, u.now)
}

func (u *UI) Layout(gtx C) D {
	u.now = gtx.Now
	u.screen.Update()
	for u.button.Clicked(gtx) {
		u.screen.Press(u.ctx)
	}

	paint.Fill(gtx.Ops, u.theme.Bg)
	return layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx C) D {
			return layout.Center.Layout(gtx, u.layoutContent)
		}),
		layout.Expanded(func(gtx C) D {
			return u.toast.Layout(gtx, u.theme)
		}),
	)
}

func (u *UI) layoutContent(gtx C) D {
	return layout.Flex{Axis: layout.Vertical, Alignment: layout.Middle}.Layout(gtx,
		layout.Rigid(u.layoutButton),
		layout.Rigid(layout.Spacer{Height: unit.Dp(16)}.Layout),
		layout.Rigid(func(gtx C) D {
			l := material.Body1(u.theme, "Your location is:")
			l.Font.Weight = font.Bold
			l.Alignment = text.Middle
			return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16)}.Layout(gtx, l.Layout)
		}),
		layout.Rigid(layout.Spacer{Height: unit.Dp(8)}.Layout),
		layout.Rigid(func(gtx C) D {
			l := material.Body1(u.theme, u.screen.Display())
			l.Alignment = text.Middle
			return layout.Inset{Left: unit.Dp(16), Right: unit.Dp(16)}.Layout(gtx, l.Layout)
		}),
	)
}

func (u *UI) layoutButton(gtx C) D {
	return material.ButtonLayout(u.theme, &u.button).Layout(gtx, func(gtx C) D {
		return layout.UniformInset(unit.Dp(12)).Layout(gtx, func(gtx C) D {
			textIconSpacer := unit.Dp(5)
			return layout.Flex{Axis: layout.Horizontal, Alignment: layout.Middle}.Layout(gtx,
				layout.Rigid(func(gtx C) D {
					return layout.Inset{Right: textIconSpacer}.Layout(gtx, func(gtx C) D {
						size := gtx.Dp(unit.Dp(20))
						gtx.Constraints.Min = image.Pt(size, size)
						return u.icon.Layout(gtx, u.theme.ContrastFg)
					})
				}),
				layout.Rigid(func(gtx C) D {
					return layout.Inset{Left: textIconSpacer}.Layout(gtx, func(gtx C) D {
						l := material.Body1(u.theme, "Get my current location")
						l.Color = u.theme.ContrastFg
						return l.Layout(gtx)
					})
				}),
			)
		})
	})
}
