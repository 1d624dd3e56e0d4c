package detection

import (
	"fmt"
	"sort"
)

// DefaultMinPlantArea is the smallest component, in pixels, reported as a plant.
const DefaultMinPlantArea = 25

// Bounds represents a rectangular bounding box in pixel coordinates.
//
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
type Bounds struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// Width returns X2 - X1.
func (b Bounds) Width() int { return b.X2 - b.X1 }

// Height returns Y2 - Y1.
func (b Bounds) Height() int { return b.Y2 - b.Y1 }

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Plant is one connected patch of vegetation.
type Plant struct {
	// Bounds is the bounding box enclosing every pixel of the plant.
	Bounds Bounds `json:"bounds"`

	// Center is the centroid of the plant's pixels, rounded down.
	Center Point `json:"center"`

	// Area is the number of pixels in the component.
	Area int `json:"area"`
}

// PlantsResult is the output of CountPlants.
type PlantsResult struct {
	// Plants are sorted by area, largest first. Equal areas keep scan order.
	Plants []Plant `json:"plants"`

	// Count is len(Plants).
	Count int `json:"count"`

	// CoveredPixels is the total area of the reported plants.
	CoveredPixels int `json:"covered_pixels"`

	// Discarded counts components smaller than MinArea.
	Discarded int `json:"discarded"`

	// MinArea is the area threshold that was applied.
	MinArea int `json:"min_area"`
}

// CountPlants labels 8-connected components of true pixels in mask.
//
// mask must hold width*height entries in row-major order. Components smaller
// than minArea pixels are counted in Discarded and left out of Plants; a
// minArea of zero or less selects DefaultMinPlantArea.
func CountPlants(mask []bool, width, height, minArea int) (*PlantsResult, error) {
	if width < 0 || height < 0 || len(mask) != width*height {
		return nil, fmt.Errorf("mask has %d entries, want %dx%d", len(mask), width, height)
	}
	if minArea <= 0 {
		minArea = DefaultMinPlantArea
	}

	result := &PlantsResult{Plants: make([]Plant, 0), MinArea: minArea}
	visited := make([]bool, len(mask))

	for i, set := range mask {
		if !set || visited[i] {
			continue
		}
		plant := floodFill(mask, visited, i%width, i/width, width, height)
		if plant.Area < minArea {
			result.Discarded++
			continue
		}
		result.Plants = append(result.Plants, plant)
		result.CoveredPixels += plant.Area
	}

	sort.SliceStable(result.Plants, func(i, j int) bool {
		return result.Plants[i].Area > result.Plants[j].Area
	})
	result.Count = len(result.Plants)
	return result, nil
}

// floodFill performs iterative flood-fill from a starting point.
//
// Uses a stack-based approach (not recursive) so a field-sized canopy cannot
// overflow the goroutine stack. Uses 8-connectivity (includes diagonal neighbors).
func floodFill(mask, visited []bool, startX, startY, width, height int) Plant {
	stack := []Point{{X: startX, Y: startY}}
	visited[startY*width+startX] = true

	b := Bounds{X1: startX, Y1: startY, X2: startX + 1, Y2: startY + 1}
	var area, sumX, sumY int

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		area++
		sumX += p.X
		sumY += p.Y
		b.X1 = min(b.X1, p.X)
		b.Y1 = min(b.Y1, p.Y)
		b.X2 = max(b.X2, p.X+1)
		b.Y2 = max(b.Y2, p.Y+1)

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := p.X+dx, p.Y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if visited[n] || !mask[n] {
					continue
				}
				visited[n] = true
				stack = append(stack, Point{X: nx, Y: ny})
			}
		}
	}

	return Plant{
		Bounds: b,
		Center: Point{X: sumX / area, Y: sumY / area},
		Area:   area,
	}
}
