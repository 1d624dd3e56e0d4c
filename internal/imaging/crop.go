package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidRegion is returned for empty or out-of-bounds crop regions.
var ErrInvalidRegion = errors.New("invalid region")

// Region represents a rectangular region within a raster.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Crop extracts a rectangular region into a new raster.
//
// Used to analyze a single bed or block of a larger capture.
func Crop(src *Raster, region Region) (*Raster, error) {
	if region.X1 < 0 || region.Y1 < 0 || region.X2 > src.Width || region.Y2 > src.Height {
		return nil, fmt.Errorf("%w: (%d,%d)-(%d,%d) outside raster bounds (0,0)-(%d,%d)",
			ErrInvalidRegion, region.X1, region.Y1, region.X2, region.Y2, src.Width, src.Height)
	}
	if region.X1 >= region.X2 || region.Y1 >= region.Y2 {
		return nil, fmt.Errorf("%w: x1 must be < x2, y1 must be < y2", ErrInvalidRegion)
	}

	cropped := imaging.Crop(src.Image(), image.Rect(region.X1, region.Y1, region.X2, region.Y2))
	return FromImage(cropped), nil
}

// NamedRegion resolves a named part of a width×height raster to a Region.
//
// Supported names: top-left, top-right, bottom-left, bottom-right, top-half,
// bottom-half, left-half, right-half, center (the middle 50% on both axes).
func NamedRegion(name string, width, height int) (Region, error) {
	midX := width / 2
	midY := height / 2

	switch name {
	case "top-left":
		return Region{0, 0, midX, midY}, nil
	case "top-right":
		return Region{midX, 0, width, midY}, nil
	case "bottom-left":
		return Region{0, midY, midX, height}, nil
	case "bottom-right":
		return Region{midX, midY, width, height}, nil
	case "top-half":
		return Region{0, 0, width, midY}, nil
	case "bottom-half":
		return Region{0, midY, width, height}, nil
	case "left-half":
		return Region{0, 0, midX, height}, nil
	case "right-half":
		return Region{midX, 0, width, height}, nil
	case "center":
		qW := width / 4
		qH := height / 4
		return Region{qW, qH, width - qW, height - qH}, nil
	}
	return Region{}, fmt.Errorf("%w: unknown region name %q", ErrInvalidRegion, name)
}
