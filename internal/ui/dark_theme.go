package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// DarkTheme mirrors the muted editor palette the app has always shipped
// with: dark gray surfaces, light text, blue accent.
type DarkTheme struct{}

// NewDarkTheme creates the application theme
func NewDarkTheme() fyne.Theme {
	return &DarkTheme{}
}

// Color returns theme colors
func (t *DarkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.RGBA{R: 45, G: 45, B: 48, A: 255} // #2D2D30
	case theme.ColorNameForeground:
		return color.RGBA{R: 241, G: 241, B: 241, A: 255} // #F1F1F1
	case theme.ColorNameButton:
		return color.RGBA{R: 63, G: 63, B: 70, A: 255} // #3F3F46
	case theme.ColorNameInputBackground:
		return color.RGBA{R: 63, G: 63, B: 70, A: 255}
	case theme.ColorNamePrimary:
		return color.RGBA{R: 0, G: 122, B: 204, A: 255} // #007ACC accent
	case theme.ColorNameDisabled:
		return color.RGBA{R: 136, G: 136, B: 136, A: 255}
	case theme.ColorNameDisabledButton:
		return color.RGBA{R: 30, G: 30, B: 30, A: 255}
	case theme.ColorNameSeparator:
		return color.RGBA{R: 85, G: 85, B: 85, A: 255} // #555555 borders
	case theme.ColorNameError:
		return color.RGBA{R: 183, G: 28, B: 28, A: 255}
	case theme.ColorNameSuccess:
		return color.RGBA{R: 46, G: 160, B: 67, A: 255}
	}

	// Force the dark variant for everything else.
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}

// Font returns theme fonts
func (t *DarkTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

// Icon returns theme icons
func (t *DarkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

// Size returns theme sizes
func (t *DarkTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNameInputRadius:
		return 3
	case theme.SizeNameSelectionRadius:
		return 3
	}
	return theme.DefaultTheme().Size(name)
}
