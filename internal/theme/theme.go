package theme

import (
	"image/color"
)

// Theme holds the colours used by the overlay window.
type Theme struct {
	Name string

	Background color.RGBA // Area around the canvas
	Foreground color.RGBA // Status text fallback

	StatusBackground color.RGBA
	StatusText       color.RGBA

	// Transparent canvas pixels are drawn over a checkerboard.
	CheckerLight color.RGBA
	CheckerDark  color.RGBA

	// Focused layer decoration
	BoxOutline   color.RGBA
	BoxDash      color.RGBA
	HandleFill   color.RGBA
	HandleBorder color.RGBA

	Shadow color.RGBA // Drop shadow behind the canvas, alpha sets its strength
}

// Default returns the built-in light theme.
func Default() *Theme {
	return &Theme{
		Name:             "Default",
		Background:       color.RGBA{220, 220, 220, 255},
		Foreground:       color.RGBA{0, 0, 0, 255},
		StatusBackground: color.RGBA{200, 200, 200, 255},
		StatusText:       color.RGBA{0, 0, 0, 255},
		CheckerLight:     color.RGBA{220, 220, 220, 255},
		CheckerDark:      color.RGBA{192, 192, 192, 255},
		BoxOutline:       color.RGBA{0, 0, 0, 255},
		BoxDash:          color.RGBA{255, 255, 255, 255},
		HandleFill:       color.RGBA{255, 255, 255, 255},
		HandleBorder:     color.RGBA{0, 0, 0, 255},
		Shadow:           color.RGBA{0, 0, 0, 140},
	}
}
