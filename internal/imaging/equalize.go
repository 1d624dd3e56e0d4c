package imaging

import "math"

// EqualizeHistogram performs global histogram equalization on luminance and
// returns the result as a new raster. src is not modified.
//
// # Algorithm
//
//  1. Luminance per pixel: L = round(0.299*R + 0.587*G + 0.114*B), in [0, 255]
//  2. 256-bin histogram of L over all pixels
//  3. Cumulative distribution: cdf[i] = sum(hist[0..i])
//  4. Normalized: norm[i] = round(cdf[i] / totalPixels * 255)
//  5. For each pixel with L > 0, R, G and B are multiplied by norm[L] / L,
//     rounded and clamped to [0, 255]. Pixels with L == 0 are copied unchanged.
//
// Hue is roughly preserved because the three channels share one scale factor.
// Alpha is copied through.
//
// A constant image with luminance L maps every pixel to norm[L] = 255, so the
// whole image is scaled by 255/L; only a constant white image is left as is.
func EqualizeHistogram(src *Raster) *Raster {
	out := src.Clone()
	total := src.Len()
	if total == 0 {
		return out
	}

	lum := make([]uint8, total)
	var hist [256]int
	for i := 0; i < total; i++ {
		p := i * 4
		l := luminance(src.Pix[p], src.Pix[p+1], src.Pix[p+2])
		lum[i] = l
		hist[l]++
	}

	var norm [256]float64
	cdf := 0
	for i := 0; i < 256; i++ {
		cdf += hist[i]
		norm[i] = math.Round(float64(cdf) / float64(total) * 255)
	}

	for i := 0; i < total; i++ {
		l := lum[i]
		if l == 0 {
			continue
		}
		scale := norm[l] / float64(l)
		p := i * 4
		out.Pix[p] = clampChannel(float64(src.Pix[p]) * scale)
		out.Pix[p+1] = clampChannel(float64(src.Pix[p+1]) * scale)
		out.Pix[p+2] = clampChannel(float64(src.Pix[p+2]) * scale)
	}
	return out
}

// luminance computes ITU-R BT.601 luma rounded to the nearest integer.
func luminance(r, g, b uint8) uint8 {
	l := math.Round(0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b))
	if l > 255 {
		l = 255
	}
	return uint8(l)
}

func clampChannel(v float64) uint8 {
	v = math.Round(v)
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}
