package imaging

import (
	"fmt"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex formats the color as "#RRGGBB".
func (c RGBColor) Hex() string {
	return HexColor(c.R, c.G, c.B)
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex string   `json:"hex"` // Hex format "#RRGGBB"
	RGB RGBColor `json:"rgb"` // RGB components
	HSL HSLColor `json:"hsl"` // HSL representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
//
// Coordinates are 0-based with origin at top-left. Returns an error if (x, y)
// is outside the raster.
func SampleColor(src *Raster, x, y int) (*ColorResult, error) {
	if !src.InBounds(x, y) {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b := src.RGB(x, y)
	return &ColorResult{
		Hex: HexColor(r, g, b),
		RGB: RGBColor{R: r, G: g, B: b},
		HSL: rgbToHSL(r, g, b),
	}, nil
}

// HexColor formats 8-bit components as "#RRGGBB".
func HexColor(r, g, b uint8) string {
	return strings.ToUpper(toColorful(r, g, b).Hex())
}

// ParseHexColor parses "#RRGGBB" (or the short "#RGB" form) into 8-bit components.
func ParseHexColor(hex string) (RGBColor, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return RGBColor{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return RGBColor{R: r, G: g, B: b}, nil
}

// rgbToHSL converts 8-bit RGB values to HSL with integer degrees and percentages.
func rgbToHSL(r, g, b uint8) HSLColor {
	h, s, l := toColorful(r, g, b).Hsl()
	return HSLColor{
		H: int(h),
		S: int(s * 100),
		L: int(l * 100),
	}
}

func toColorful(r, g, b uint8) colorful.Color {
	return colorful.Color{
		R: float64(r) / 255.0,
		G: float64(g) / 255.0,
		B: float64(b) / 255.0,
	}
}
