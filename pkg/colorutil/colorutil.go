// Package colorutil provides shared color utilities for the sketch canvas.
package colorutil

import (
	"image/color"
)

// Common canvas colors used throughout the application.
var (
	Black   = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Cyan    = color.RGBA{R: 0, G: 255, B: 255, A: 255}
	Magenta = color.RGBA{R: 255, G: 0, B: 255, A: 255}
	Blue    = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	Green   = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	Yellow  = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	Orange  = color.RGBA{R: 255, G: 165, B: 0, A: 255}
)

// WithAlpha returns the color with its alpha channel replaced.
func WithAlpha(c color.RGBA, alpha uint8) color.RGBA {
	c.A = alpha
	return c
}

// Blend mixes src over dst at the given opacity in [0, 1].
func Blend(dst, src color.RGBA, opacity float64) color.RGBA {
	if opacity <= 0 {
		return dst
	}
	if opacity >= 1 {
		return src
	}
	inv := 1 - opacity
	return color.RGBA{
		R: uint8(float64(src.R)*opacity + float64(dst.R)*inv),
		G: uint8(float64(src.G)*opacity + float64(dst.G)*inv),
		B: uint8(float64(src.B)*opacity + float64(dst.B)*inv),
		A: 255,
	}
}
