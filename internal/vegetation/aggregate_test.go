package vegetation

import (
	"errors"
	"testing"
)

func TestSampleStride(t *testing.T) {
	tests := []struct {
		total, want int
	}{
		{0, 1},
		{1, 1},
		{99999, 1},
		{100000, 1},
		{199999, 1},
		{200000, 2},
		{4000000, 40},
	}
	for _, tt := range tests {
		if got := SampleStride(tt.total); got != tt.want {
			t.Errorf("SampleStride(%d): got %d, want %d", tt.total, got, tt.want)
		}
	}
}

func TestAggregator_ExactCounts(t *testing.T) {
	agg := NewAggregator(0.1, 1)
	obs := []Classification{
		{Category: CategoryVegetation, Index: 0.5},  // healthy, very healthy
		{Category: CategoryVegetation, Index: 0.1},  // healthy (d == 0), borderline
		{Category: CategoryVegetation, Index: 0.2},  // healthy, healthy
		{Category: CategoryVegetation, Index: -0.3}, // stressed, severe
		{Category: CategoryFabric},
		{Category: CategoryFabric},
		{Category: CategoryFlower},
		{Category: CategoryNewGrowth},
	}
	for i, c := range obs {
		if !agg.Observe(i, c) {
			t.Fatalf("pixel %d not sampled at stride 1", i)
		}
	}

	res := agg.Result()
	if res.HealthyPixels != 3 || res.StressedPixels != 1 {
		t.Errorf("healthy/stressed: got %d/%d, want 3/1", res.HealthyPixels, res.StressedPixels)
	}
	if res.TotalVegetationPixels != 4 {
		t.Errorf("TotalVegetationPixels: got %d, want 4", res.TotalVegetationPixels)
	}
	if res.FabricPixels != 2 || res.FlowerPixels != 1 || res.NewGrowthPixels != 1 {
		t.Errorf("screens: got fabric=%d flower=%d newgrowth=%d",
			res.FabricPixels, res.FlowerPixels, res.NewGrowthPixels)
	}
	if res.SampledPixels != len(obs) {
		t.Errorf("SampledPixels: got %d, want %d", res.SampledPixels, len(obs))
	}
	if res.HealthScore != 75 {
		t.Errorf("HealthScore: got %v, want 75", res.HealthScore)
	}
	if !approxEqual(res.MeanIndex, 0.125) {
		t.Errorf("MeanIndex: got %v, want 0.125", res.MeanIndex)
	}
	if res.MinIndex != -0.3 || res.MaxIndex != 0.5 {
		t.Errorf("min/max: got %v/%v, want -0.3/0.5", res.MinIndex, res.MaxIndex)
	}

	wantBuckets := map[string]int{
		"very_healthy": 1, "healthy": 1, "borderline": 1, "stressed": 0, "severe_stress": 1,
	}
	for k, want := range wantBuckets {
		if got := res.Buckets[k]; got != want {
			t.Errorf("bucket %s: got %d, want %d", k, got, want)
		}
	}
	if res.Degenerate || res.Err() != nil {
		t.Error("result should not be degenerate")
	}
}

func TestAggregator_Stride(t *testing.T) {
	agg := NewAggregator(0, 3)
	for i := 0; i < 100; i++ {
		agg.Observe(i, Classification{Category: CategoryVegetation, Index: 1})
	}
	res := agg.Result()
	// Indices 0, 3, ..., 99.
	if res.SampledPixels != 34 {
		t.Errorf("SampledPixels: got %d, want 34", res.SampledPixels)
	}
	if res.Stride != 3 {
		t.Errorf("Stride: got %d, want 3", res.Stride)
	}
	if got := res.EstimatedPixels(res.TotalVegetationPixels); got != 102 {
		t.Errorf("EstimatedPixels: got %d, want 102", got)
	}
	if res.HealthScore != 100 {
		t.Errorf("HealthScore: got %v, want 100", res.HealthScore)
	}
}

func TestAggregator_StrideBelowOne(t *testing.T) {
	agg := NewAggregator(0, 0)
	if agg.Stride() != 1 {
		t.Errorf("Stride: got %d, want 1", agg.Stride())
	}
}

func TestAggregator_Degenerate(t *testing.T) {
	agg := NewAggregator(0.1, 1)
	for i := 0; i < 10; i++ {
		agg.Observe(i, Classification{Category: CategoryFabric})
	}
	res := agg.Result()

	if !res.Degenerate {
		t.Error("expected degenerate result")
	}
	if !errors.Is(res.Err(), ErrEmptyVegetation) {
		t.Errorf("Err: got %v, want ErrEmptyVegetation", res.Err())
	}
	if res.HealthScore != 0 || res.MeanIndex != 0 || res.MinIndex != 0 || res.MaxIndex != 0 {
		t.Errorf("statistics should default to 0, got %+v", res)
	}
	if res.FabricPixels != 10 {
		t.Errorf("FabricPixels: got %d, want 10", res.FabricPixels)
	}
}

func TestAggregator_ObserveTransparent(t *testing.T) {
	agg := NewAggregator(0.1, 2)
	for i := 0; i < 6; i++ {
		agg.ObserveTransparent(i)
	}
	agg.Observe(6, Classification{Category: CategoryVegetation, Index: 0.5})
	res := agg.Result()

	if res.TransparentPixels != 3 || res.SampledPixels != 4 {
		t.Errorf("got transparent %d, sampled %d; want 3, 4", res.TransparentPixels, res.SampledPixels)
	}
	if res.TotalVegetationPixels != 1 || res.HealthScore != 100 {
		t.Errorf("transparent pixels must not affect vegetation stats, got %+v", res)
	}
}
