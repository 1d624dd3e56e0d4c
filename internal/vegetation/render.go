package vegetation

import (
	"github.com/ironsheep/vegetation-health-mcp/internal/imaging"
)

var categoryColors = [numCategories]imaging.RGBColor{
	CategoryFabric:    {R: 50, G: 50, B: 50},
	CategoryFlower:    {R: 255, G: 192, B: 203},
	CategoryNewGrowth: {R: 255, G: 245, B: 186},
}

var bucketColors = [numBuckets]imaging.RGBColor{
	BucketVeryHealthy:  {R: 0, G: 255, B: 0},
	BucketHealthy:      {R: 34, G: 200, B: 34},
	BucketBorderline:   {R: 255, G: 255, B: 0},
	BucketStressed:     {R: 255, G: 140, B: 0},
	BucketSevereStress: {R: 255, G: 0, B: 0},
}

// ColorFor returns the flat color a classification is painted with.
// Vegetation pixels are colored by health bucket.
func ColorFor(c Classification, threshold float64) imaging.RGBColor {
	if c.Category == CategoryVegetation || c.Category >= numCategories {
		return bucketColors[BucketFor(c.Index, threshold)]
	}
	return categoryColors[c.Category]
}

// LegendEntry describes one color of the classified map.
type LegendEntry struct {
	Key   string           `json:"key"`
	Label string           `json:"label"`
	Hex   string           `json:"hex"`
	RGB   imaging.RGBColor `json:"rgb"`
}

// Legend lists the colors of the classified map, health buckets first.
func Legend() []LegendEntry {
	entries := make([]LegendEntry, 0, int(numBuckets)+int(numCategories)-1)
	for _, b := range Buckets() {
		c := bucketColors[b]
		entries = append(entries, LegendEntry{Key: b.String(), Label: b.Label(), Hex: c.Hex(), RGB: c})
	}
	for _, cat := range []Category{CategoryFlower, CategoryNewGrowth, CategoryFabric} {
		c := categoryColors[cat]
		entries = append(entries, LegendEntry{Key: cat.String(), Label: categoryLabel(cat), Hex: c.Hex(), RGB: c})
	}
	return entries
}

func categoryLabel(c Category) string {
	switch c {
	case CategoryFabric:
		return "Fabric / shadow"
	case CategoryFlower:
		return "Flower"
	case CategoryNewGrowth:
		return "New growth"
	}
	return "Vegetation"
}

// Renderer paints classifications into a new raster of the source size.
type Renderer struct {
	dst       *imaging.Raster
	threshold float64
}

// NewRenderer allocates the output raster.
func NewRenderer(width, height int, threshold float64) *Renderer {
	return &Renderer{dst: imaging.NewRaster(width, height), threshold: threshold}
}

// Paint colors pixel i (row-major index) at full opacity.
func (r *Renderer) Paint(i int, c Classification) {
	col := ColorFor(c, r.threshold)
	p := r.dst.Pix[i*4 : i*4+4 : i*4+4]
	p[0] = col.R
	p[1] = col.G
	p[2] = col.B
	p[3] = 255
}

// Raster returns the rendered output.
func (r *Renderer) Raster() *imaging.Raster { return r.dst }
