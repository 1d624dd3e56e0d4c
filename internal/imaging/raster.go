package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/clone"
)

// Raster is a decoded image held as a flat, row-major RGBA byte buffer.
//
// Each pixel occupies 4 consecutive bytes (R, G, B, A), values 0-255. Pixel (x, y)
// starts at offset (y*Width+x)*4. The origin is always (0,0), regardless of the
// bounds of the image.Image it was built from.
//
// A Raster is owned by whoever created it. Analysis stages read it and allocate
// new rasters for their output; nothing in this module writes to a Raster it did
// not allocate, so an original can be kept around for side-by-side display.
type Raster struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewRaster allocates a zeroed (fully transparent black) raster.
func NewRaster(width, height int) *Raster {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// FromImage copies any image.Image into a new Raster.
//
// The conversion goes through *image.RGBA, so translucent pixels carry
// alpha-premultiplied color values. Aerial captures are opaque, where the two
// representations coincide.
func FromImage(img image.Image) *Raster {
	rgba := clone.AsRGBA(img)
	b := rgba.Bounds()
	r := NewRaster(b.Dx(), b.Dy())

	rowBytes := r.Width * 4
	for y := 0; y < r.Height; y++ {
		src := rgba.PixOffset(b.Min.X, b.Min.Y+y)
		copy(r.Pix[y*rowBytes:(y+1)*rowBytes], rgba.Pix[src:src+rowBytes])
	}
	return r
}

// Len returns the number of pixels.
func (r *Raster) Len() int {
	return r.Width * r.Height
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	out := &Raster{Width: r.Width, Height: r.Height, Pix: make([]uint8, len(r.Pix))}
	copy(out.Pix, r.Pix)
	return out
}

// RGB returns the color channels of pixel (x, y). No bounds checking is performed.
func (r *Raster) RGB(x, y int) (uint8, uint8, uint8) {
	i := (y*r.Width + x) * 4
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// SetRGB writes an opaque color at pixel (x, y). No bounds checking is performed.
func (r *Raster) SetRGB(x, y int, red, green, blue uint8) {
	i := (y*r.Width + x) * 4
	r.Pix[i] = red
	r.Pix[i+1] = green
	r.Pix[i+2] = blue
	r.Pix[i+3] = 255
}

// Image returns an *image.RGBA sharing the raster's pixel buffer.
//
// Writes through the returned image modify the raster.
func (r *Raster) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    r.Pix,
		Stride: r.Width * 4,
		Rect:   image.Rect(0, 0, r.Width, r.Height),
	}
}

// InBounds reports whether (x, y) lies inside the raster.
func (r *Raster) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < r.Width && y < r.Height
}
