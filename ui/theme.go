// Package ui draws the on-screen HUD and debug panels.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// Theme holds UI styling constants.
type Theme struct {
	PanelBg       rl.Color
	PanelBorder   rl.Color
	SectionHeader rl.Color
	LabelColor    rl.Color
	ValueColor    rl.Color
	BarBg         rl.Color
	BarFill       rl.Color
	BarFillHigh   rl.Color
	Padding       int32
	LineHeight    int32
	LabelWidth    int32
	BarHeight     int32
	FontSize      int32
	HeaderSize    int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		PanelBg:       rl.Color{R: 12, G: 14, B: 20, A: 220},
		PanelBorder:   rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader: rl.Yellow,
		LabelColor:    rl.LightGray,
		ValueColor:    rl.RayWhite,
		BarBg:         rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:       rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillHigh:   rl.Color{R: 220, G: 90, B: 80, A: 255},
		Padding:       10,
		LineHeight:    16,
		LabelWidth:    90,
		BarHeight:     10,
		FontSize:      12,
		HeaderSize:    14,
	}
}
