package imaging

import (
	"fmt"
	"image/color"
)

// DefaultGridColor is the line color used when GridOverlay gets an empty or invalid color.
const DefaultGridColor = "#FFFFFF"

// GridOverlay draws a coordinate grid on a copy of src.
//
// Lines are drawn every spacing pixels on both axes. With showCoordinates, each
// intersection gets an "x,y" label in a small bitmap font so stressed patches on
// a classified map can be located in the original capture. src is not modified.
// A spacing of zero or less returns an unmodified copy.
func GridOverlay(src *Raster, spacing int, showCoordinates bool, gridColorHex string) *Raster {
	out := src.Clone()
	if spacing <= 0 {
		return out
	}

	if gridColorHex == "" {
		gridColorHex = DefaultGridColor
	}
	lineColor, err := ParseHexColor(gridColorHex)
	if err != nil {
		lineColor, _ = ParseHexColor(DefaultGridColor)
	}

	for x := spacing; x < out.Width; x += spacing {
		for y := 0; y < out.Height; y++ {
			out.SetRGB(x, y, lineColor.R, lineColor.G, lineColor.B)
		}
	}
	for y := spacing; y < out.Height; y += spacing {
		for x := 0; x < out.Width; x++ {
			out.SetRGB(x, y, lineColor.R, lineColor.G, lineColor.B)
		}
	}

	if showCoordinates {
		fg := color.RGBA{255, 255, 255, 255}
		bg := color.RGBA{0, 0, 0, 255}
		for y := spacing; y < out.Height; y += spacing {
			for x := spacing; x < out.Width; x += spacing {
				drawLabel(out, x+2, y+2, fmt.Sprintf("%d,%d", x, y), fg, bg)
			}
		}
	}
	return out
}

// drawLabel draws a label in a 3x5 pixel font covering digits and comma.
func drawLabel(dst *Raster, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
		',': {"000", "000", "000", "010", "010"},
	}

	charWidth := 4
	labelWidth := len(text) * charWidth
	labelHeight := 7

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if px, py := x+dx, y+dy; dst.InBounds(px, py) {
				dst.SetRGB(px, py, bg.R, bg.G, bg.B)
			}
		}
	}

	cx := x
	for _, ch := range text {
		glyph, ok := glyphs[ch]
		if !ok {
			cx += charWidth
			continue
		}
		for row, line := range glyph {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if px, py := cx+col, y+row; dst.InBounds(px, py) {
					dst.SetRGB(px, py, fg.R, fg.G, fg.B)
				}
			}
		}
		cx += charWidth
	}
}
