package vegetation

import (
	"fmt"
	"math"
)

// Category is the per-pixel classification tag.
type Category uint8

const (
	CategoryVegetation Category = iota
	CategoryFabric
	CategoryFlower
	CategoryNewGrowth
	numCategories
)

var categoryNames = [numCategories]string{
	CategoryVegetation: "vegetation",
	CategoryFabric:     "fabric",
	CategoryFlower:     "flower",
	CategoryNewGrowth:  "newgrowth",
}

func (c Category) String() string {
	if c >= numCategories {
		return fmt.Sprintf("Category(%d)", c)
	}
	return categoryNames[c]
}

// MarshalText encodes the category by name.
func (c Category) MarshalText() ([]byte, error) {
	if c >= numCategories {
		return nil, fmt.Errorf("invalid category %d", c)
	}
	return []byte(categoryNames[c]), nil
}

// Classification is the result of classifying one pixel. Index is only
// meaningful for CategoryVegetation and is always finite.
type Classification struct {
	Category Category `json:"category"`
	Index    float64  `json:"index"`
}

// Classify tags one pixel with components normalized to [0,1].
//
// Screens run in order (fabric, flower, new growth) and only when enabled on
// the profile; the first match wins. Anything left is vegetation with the
// profile's domain index.
func Classify(r, g, b float64, p Profile) Classification {
	maxC := max(r, g, b)
	minC := min(r, g, b)
	saturation := maxC - minC
	brightness := (r + g + b) / 3

	if p.FilterFabric && isFabric(r, g, b, maxC, saturation, brightness) {
		return Classification{Category: CategoryFabric}
	}
	if p.FilterFlowers {
		if saturation > 0.4 && g < max(r, b) {
			return Classification{Category: CategoryFlower}
		}
		if r > 1.2*g && r < 1.8*g && brightness > 0.3 && brightness < 0.6 {
			return Classification{Category: CategoryNewGrowth}
		}
	}
	return Classification{Category: CategoryVegetation, Index: Index(r, g, b, p.Domain)}
}

// ClassifyRGB classifies an 8-bit pixel.
func ClassifyRGB(r, g, b uint8, p Profile) Classification {
	return Classify(float64(r)/255, float64(g)/255, float64(b)/255, p)
}

// isFabric matches shadow, bluish-gray ground cloth and neutral gray cloth.
// The constants are tuned on nursery captures.
func isFabric(r, g, b, maxC, saturation, brightness float64) bool {
	if maxC < 0.1 {
		return true
	}
	// Blue leads green on cloth; green leads blue on leaves.
	if b > g && g > r && saturation < 0.15 &&
		brightness > 0.25 && brightness < 0.6 && (b-g)/b > 0.05 {
		return true
	}
	spread := math.Abs(r-g) + math.Abs(g-b) + math.Abs(r-b)
	return saturation < 0.05 && brightness > 0.2 && brightness < 0.45 && spread < 0.05
}
