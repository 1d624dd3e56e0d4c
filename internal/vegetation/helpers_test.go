package vegetation

import (
	"math/rand"

	"github.com/ironsheep/vegetation-health-mcp/internal/imaging"
)

// solidRaster returns an opaque raster filled with one color.
func solidRaster(width, height int, r, g, b uint8) *imaging.Raster {
	img := imaging.NewRaster(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, r, g, b)
		}
	}
	return img
}

// noiseRaster returns an opaque raster of seeded random colors.
func noiseRaster(width, height int, seed int64) *imaging.Raster {
	rng := rand.New(rand.NewSource(seed))
	img := imaging.NewRaster(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, uint8(rng.Intn(256)), uint8(rng.Intn(256)), uint8(rng.Intn(256)))
		}
	}
	return img
}
