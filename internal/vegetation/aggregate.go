package vegetation

import "math"

// SampleBudget is the approximate number of pixels the aggregator samples
// when the stride is chosen automatically.
const SampleBudget = 100000

// SampleStride returns max(1, total/SampleBudget).
func SampleStride(total int) int {
	return max(1, total/SampleBudget)
}

// Result holds the statistics of one analysis run.
//
// Pixel counts cover the sampled pixels only. With Stride > 1 they are
// estimates; use EstimatedPixels to scale one to the full image. HealthScore
// is a ratio and does not depend on the stride.
type Result struct {
	HealthScore float64 `json:"health_score"`
	MeanIndex   float64 `json:"mean_index"`
	MinIndex    float64 `json:"min_index"`
	MaxIndex    float64 `json:"max_index"`

	HealthyPixels         int `json:"healthy_pixels"`
	StressedPixels        int `json:"stressed_pixels"`
	FlowerPixels          int `json:"flower_pixels"`
	FabricPixels          int `json:"fabric_pixels"`
	NewGrowthPixels       int `json:"newgrowth_pixels"`
	TransparentPixels     int `json:"transparent_pixels"`
	TotalVegetationPixels int `json:"total_vegetation_pixels"`

	// Buckets counts sampled vegetation pixels per health bucket, keyed by
	// Bucket.String().
	Buckets map[string]int `json:"buckets"`

	SampledPixels int  `json:"sampled_pixels"`
	Stride        int  `json:"stride"`
	Degenerate    bool `json:"degenerate"`
}

// Err returns ErrEmptyVegetation for a degenerate result and nil otherwise.
func (r Result) Err() error {
	if r.Degenerate {
		return ErrEmptyVegetation
	}
	return nil
}

// EstimatedPixels scales a sampled count to the full image.
func (r Result) EstimatedPixels(n int) int {
	return n * max(1, r.Stride)
}

// Aggregator accumulates per-pixel classifications into a Result.
// It is not safe for concurrent use.
type Aggregator struct {
	threshold float64
	stride    int

	sampled     int
	fabric      int
	flower      int
	newGrowth   int
	transparent int
	healthy     int
	stressed    int
	buckets     [numBuckets]int

	sum      float64
	min, max float64
}

// NewAggregator returns an aggregator that samples pixel indices divisible
// by stride. A stride below 1 samples every pixel.
func NewAggregator(threshold float64, stride int) *Aggregator {
	return &Aggregator{
		threshold: threshold,
		stride:    max(1, stride),
		min:       math.Inf(1),
		max:       math.Inf(-1),
	}
}

// Stride returns the sampling stride in effect.
func (a *Aggregator) Stride() int { return a.stride }

// Observe records the classification of pixel i (row-major index) if i falls
// on the sampling stride. It reports whether the pixel was sampled.
func (a *Aggregator) Observe(i int, c Classification) bool {
	if i%a.stride != 0 {
		return false
	}
	a.sampled++

	switch c.Category {
	case CategoryFabric:
		a.fabric++
	case CategoryFlower:
		a.flower++
	case CategoryNewGrowth:
		a.newGrowth++
	default:
		a.sum += c.Index
		a.min = math.Min(a.min, c.Index)
		a.max = math.Max(a.max, c.Index)
		if IsHealthy(c.Index, a.threshold) {
			a.healthy++
		} else {
			a.stressed++
		}
		a.buckets[BucketFor(c.Index, a.threshold)]++
	}
	return true
}

// ObserveTransparent records pixel i as fully transparent if it falls on the
// sampling stride. Transparent pixels are outside the capture and never count
// toward any category.
func (a *Aggregator) ObserveTransparent(i int) bool {
	if i%a.stride != 0 {
		return false
	}
	a.sampled++
	a.transparent++
	return true
}

// Result summarizes everything observed so far.
func (a *Aggregator) Result() Result {
	res := Result{
		HealthyPixels:         a.healthy,
		StressedPixels:        a.stressed,
		FlowerPixels:          a.flower,
		FabricPixels:          a.fabric,
		NewGrowthPixels:       a.newGrowth,
		TransparentPixels:     a.transparent,
		TotalVegetationPixels: a.healthy + a.stressed,
		Buckets:               make(map[string]int, numBuckets),
		SampledPixels:         a.sampled,
		Stride:                a.stride,
	}
	for i, n := range a.buckets {
		res.Buckets[Bucket(i).String()] = n
	}

	if res.TotalVegetationPixels == 0 {
		res.Degenerate = true
		return res
	}
	res.HealthScore = float64(a.healthy) / float64(res.TotalVegetationPixels) * 100
	res.MeanIndex = a.sum / float64(res.TotalVegetationPixels)
	res.MinIndex = a.min
	res.MaxIndex = a.max
	return res
}
