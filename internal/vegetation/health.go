package vegetation

import (
	"fmt"
	"math"
)

// Bucket is a health band defined by offsets from the index threshold.
type Bucket uint8

const (
	BucketVeryHealthy Bucket = iota
	BucketHealthy
	BucketBorderline
	BucketStressed
	BucketSevereStress
	numBuckets
)

var bucketNames = [numBuckets]string{
	BucketVeryHealthy:  "very_healthy",
	BucketHealthy:      "healthy",
	BucketBorderline:   "borderline",
	BucketStressed:     "stressed",
	BucketSevereStress: "severe_stress",
}

var bucketLabels = [numBuckets]string{
	BucketVeryHealthy:  "Very healthy",
	BucketHealthy:      "Healthy",
	BucketBorderline:   "Borderline",
	BucketStressed:     "Stressed",
	BucketSevereStress: "Severe stress",
}

func (b Bucket) String() string {
	if b >= numBuckets {
		return fmt.Sprintf("Bucket(%d)", b)
	}
	return bucketNames[b]
}

// Label returns the display name of the bucket.
func (b Bucket) Label() string {
	if b >= numBuckets {
		return b.String()
	}
	return bucketLabels[b]
}

// Buckets returns every bucket from healthiest to most stressed.
func Buckets() []Bucket {
	return []Bucket{BucketVeryHealthy, BucketHealthy, BucketBorderline, BucketStressed, BucketSevereStress}
}

// BucketFor places index relative to threshold:
//
//	d > 0.2            very healthy
//	0.05 < d <= 0.2    healthy
//	-0.05 <= d <= 0.05 borderline
//	-0.2 <= d < -0.05  stressed
//	d < -0.2           severe stress
//
// where d = index - threshold. A NaN d reads as borderline.
func BucketFor(index, threshold float64) Bucket {
	d := index - threshold
	switch {
	case math.IsNaN(d):
		return BucketBorderline
	case d > 0.2:
		return BucketVeryHealthy
	case d > 0.05:
		return BucketHealthy
	case d >= -0.05:
		return BucketBorderline
	case d >= -0.2:
		return BucketStressed
	default:
		return BucketSevereStress
	}
}

// IsHealthy reports whether index meets the threshold. This is the split
// used by the health score, independent of the display buckets.
func IsHealthy(index, threshold float64) bool {
	d := index - threshold
	return d >= 0 || math.IsNaN(d)
}
