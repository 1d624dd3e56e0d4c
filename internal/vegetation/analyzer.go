package vegetation

import (
	"context"
	"fmt"
	"math"

	"github.com/ironsheep/vegetation-health-mcp/internal/detection"
	"github.com/ironsheep/vegetation-health-mcp/internal/imaging"
)

// rowsPerChunk is how many rows are classified between cancellation checks.
const rowsPerChunk = 64

// Options configures one analysis run.
type Options struct {
	// Profile is a built-in profile key. Empty selects DefaultProfileKey.
	Profile string

	// Threshold overrides the profile's index threshold when non-nil.
	Threshold *float64

	// Equalize runs histogram equalization on a copy of the input first.
	Equalize bool

	// Stride is the aggregator sampling stride. Zero or less picks
	// SampleStride(width*height).
	Stride int

	// CountPlants labels connected vegetation patches after classification.
	CountPlants bool

	// MinPlantArea is passed to detection.CountPlants.
	MinPlantArea int
}

// Float64 returns a pointer to v, for Options.Threshold.
func Float64(v float64) *float64 { return &v }

// Snapshot records the configuration an analysis actually ran with.
type Snapshot struct {
	Profile     string  `json:"profile"`
	ProfileName string  `json:"profile_name"`
	Domain      Domain  `json:"domain"`
	Threshold   float64 `json:"threshold"`
	Equalize    bool    `json:"equalize"`
	Stride      int     `json:"stride"`
}

// Analysis is the output of one run. Original is the caller's raster and is
// never written to; Classified is a new allocation of the same size.
type Analysis struct {
	Original   *imaging.Raster
	Classified *imaging.Raster
	Result     Result
	Config     Snapshot
	Legend     []LegendEntry
	Plants     *detection.PlantsResult
}

// ResolveProfile looks up the profile named in opts and applies any
// threshold override.
func ResolveProfile(opts Options) (Profile, error) {
	p, err := LookupProfile(opts.Profile)
	if err != nil {
		return Profile{}, err
	}
	if opts.Threshold != nil {
		t := *opts.Threshold
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return Profile{}, fmt.Errorf("%w: %v", ErrInvalidThreshold, t)
		}
		p = p.WithThreshold(t)
	}
	return p, nil
}

// Analyze classifies every pixel of src, aggregates statistics over the
// sampled pixels and renders the classified map in a single pass.
//
// Fully transparent pixels (alpha 0) lie outside the capture, for example the
// border of an exported orthomosaic. They are counted in
// Result.TransparentPixels, stay transparent in the classified map and are
// never classified.
//
// ctx is checked every rowsPerChunk rows; a canceled run returns ctx's error.
// An image with no vegetation is not an error: the Result is marked
// Degenerate and Result.Err reports ErrEmptyVegetation.
func Analyze(ctx context.Context, src *imaging.Raster, opts Options) (*Analysis, error) {
	if src == nil {
		return nil, ErrNilRaster
	}
	profile, err := ResolveProfile(opts)
	if err != nil {
		return nil, err
	}

	input := src
	if opts.Equalize {
		input = imaging.EqualizeHistogram(src)
	}

	w, h := input.Width, input.Height
	stride := opts.Stride
	if stride <= 0 {
		stride = SampleStride(w * h)
	}

	agg := NewAggregator(profile.IndexThreshold, stride)
	renderer := NewRenderer(w, h, profile.IndexThreshold)

	var mask []bool
	if opts.CountPlants {
		mask = make([]bool, w*h)
	}

	pix := input.Pix
	for y := 0; y < h; y++ {
		if y%rowsPerChunk == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("analysis canceled at row %d: %w", y, err)
			}
		}
		for x := 0; x < w; x++ {
			i := y*w + x
			p := i * 4
			if pix[p+3] == 0 {
				agg.ObserveTransparent(i)
				continue
			}
			c := ClassifyRGB(pix[p], pix[p+1], pix[p+2], profile)
			agg.Observe(i, c)
			renderer.Paint(i, c)
			if mask != nil {
				mask[i] = isPlantPixel(c, profile.IndexThreshold)
			}
		}
	}

	a := &Analysis{
		Original:   src,
		Classified: renderer.Raster(),
		Result:     agg.Result(),
		Config: Snapshot{
			Profile:     profile.Key,
			ProfileName: profile.Name,
			Domain:      profile.Domain,
			Threshold:   profile.IndexThreshold,
			Equalize:    opts.Equalize,
			Stride:      agg.Stride(),
		},
		Legend: Legend(),
	}

	if mask != nil {
		plants, err := detection.CountPlants(mask, w, h, opts.MinPlantArea)
		if err != nil {
			return nil, fmt.Errorf("failed to count plants: %w", err)
		}
		a.Plants = plants
	}
	return a, nil
}

// isPlantPixel treats vegetation outside the severe-stress band as plant
// canopy. Severely stressed "vegetation" is mostly bare soil and mulch.
func isPlantPixel(c Classification, threshold float64) bool {
	return c.Category == CategoryVegetation && BucketFor(c.Index, threshold) != BucketSevereStress
}

// AnalyzeBytes decodes an encoded image, capping its longest side at maxDim,
// and analyzes it. Decoding failures are *imaging.ImageDecodeError.
func AnalyzeBytes(ctx context.Context, data []byte, maxDim int, opts Options) (*Analysis, error) {
	src, err := imaging.Decode(data, maxDim)
	if err != nil {
		return nil, err
	}
	return Analyze(ctx, src, opts)
}

// ClassifyPixel classifies pixel (x, y) of src with the profile named in opts,
// returning the classification and the health bucket it renders as.
func ClassifyPixel(src *imaging.Raster, x, y int, opts Options) (Classification, Bucket, error) {
	if src == nil {
		return Classification{}, 0, ErrNilRaster
	}
	if !src.InBounds(x, y) {
		return Classification{}, 0, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}
	profile, err := ResolveProfile(opts)
	if err != nil {
		return Classification{}, 0, err
	}
	if src.Pix[(y*src.Width+x)*4+3] == 0 {
		return Classification{}, 0, fmt.Errorf("%w: (%d,%d)", ErrTransparentPixel, x, y)
	}
	r, g, b := src.RGB(x, y)
	c := ClassifyRGB(r, g, b, profile)
	return c, BucketFor(c.Index, profile.IndexThreshold), nil
}
