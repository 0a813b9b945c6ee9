// SPDX-License-Identifier: Unlicense OR MIT

// Package toast implements a transient notice drawn above the bottom
// edge of the window.
package toast

import (
	"image"
	"image/color"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// Toast shows one message at a time until its deadline. A newer message
// replaces the current one.
type Toast struct {
	// Duration is how long a message stays visible.
	Duration time.Duration

	text  string
	until time.Time
}

// Show displays msg for t.Duration starting at now.
func (t *Toast) Show(msg string, now time.Time) {
	t.text = msg
	t.until = now.Add(t.Duration)
}

// Text returns the message visible at now, or the empty string.
func (t *Toast) Text(now time.Time) string {
	if t.text == "" || !now.Before(t.until) {
		return ""
	}
	return t.text
}

// Layout draws the visible message, if any, and schedules a redraw for
// when it expires.
func (t *Toast) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	msg := t.Text(gtx.Now)
	if msg == "" {
		t.text = ""
		return layout.Dimensions{}
	}
	gtx.Execute(op.InvalidateCmd{At: t.until})
	return layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Bottom: unit.Dp(48), Left: unit.Dp(24), Right: unit.Dp(24)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints.Min = image.Point{}
			macro := op.Record(gtx.Ops)
			dims := layout.Inset{Top: unit.Dp(10), Bottom: unit.Dp(10), Left: unit.Dp(16), Right: unit.Dp(16)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				lbl := material.Body2(th, msg)
				lbl.Color = color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
				lbl.Alignment = text.Middle
				return lbl.Layout(gtx)
			})
			call := macro.Stop()
			bg := clip.UniformRRect(image.Rectangle{Max: dims.Size}, gtx.Dp(unit.Dp(16)))
			paint.FillShape(gtx.Ops, color.NRGBA{R: 0x32, G: 0x32, B: 0x32, A: 0xe6}, bg.Op(gtx.Ops))
			call.Add(gtx.Ops)
			return dims
		})
	})
}
