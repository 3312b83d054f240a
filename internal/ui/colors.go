package ui

import "image/color"

// Theme colors - these are variables so they can be modified for dark mode
var (
	colWhite     = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	colBlack     = color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	colGray      = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
	colLightGray = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	colDirBlue   = color.NRGBA{R: 0, G: 0, B: 128, A: 255}
	colSelected  = color.NRGBA{R: 200, G: 220, B: 255, A: 255}
	colPanel     = color.NRGBA{R: 245, G: 245, B: 245, A: 255}
	colDisabled  = color.NRGBA{R: 150, G: 150, B: 150, A: 255}
	colBar       = color.NRGBA{R: 66, G: 133, B: 244, A: 255}
	colDanger    = color.NRGBA{R: 220, G: 53, B: 69, A: 255}
	colPseudo    = color.NRGBA{R: 96, G: 125, B: 139, A: 255}
	colWarningBg = color.NRGBA{R: 255, G: 243, B: 205, A: 255}
	colWarning   = color.NRGBA{R: 133, G: 100, B: 4, A: 255}
	colStatusBg  = color.NRGBA{R: 235, G: 235, B: 235, A: 255}
)

var lightPalette = [...]color.NRGBA{colWhite, colBlack, colGray, colLightGray, colDirBlue, colSelected, colPanel, colDisabled, colStatusBg}

// applyPalette switches the shared colors between light and dark.
func (r *Renderer) applyPalette() {
	if r.DarkMode {
		colWhite = color.NRGBA{R: 30, G: 30, B: 30, A: 255}
		colBlack = color.NRGBA{R: 230, G: 230, B: 230, A: 255}
		colGray = color.NRGBA{R: 160, G: 160, B: 160, A: 255}
		colLightGray = color.NRGBA{R: 70, G: 70, B: 70, A: 255}
		colDirBlue = color.NRGBA{R: 130, G: 170, B: 255, A: 255}
		colSelected = color.NRGBA{R: 45, G: 70, B: 110, A: 255}
		colPanel = color.NRGBA{R: 40, G: 40, B: 40, A: 255}
		colDisabled = color.NRGBA{R: 100, G: 100, B: 100, A: 255}
		colStatusBg = color.NRGBA{R: 50, G: 50, B: 50, A: 255}
	} else {
		p := lightPalette
		colWhite, colBlack, colGray, colLightGray, colDirBlue = p[0], p[1], p[2], p[3], p[4]
		colSelected, colPanel, colDisabled, colStatusBg = p[5], p[6], p[7], p[8]
	}
	r.Theme.Palette.Bg = colWhite
	r.Theme.Palette.Fg = colBlack
}
