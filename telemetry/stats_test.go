package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeFrameStats(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	mean, std, p95 := ComputeFrameStats(values)

	if math.Abs(mean-55) > 0.001 {
		t.Errorf("mean = %v, want 55", mean)
	}
	// Sample standard deviation
	if math.Abs(std-30.277) > 0.01 {
		t.Errorf("std = %v, want ~30.277", std)
	}
	if math.Abs(p95-95.5) > 0.001 {
		t.Errorf("p95 = %v, want 95.5", p95)
	}
	if values[0] != 10 || values[9] != 100 {
		t.Error("input slice must not be reordered")
	}
}

func TestComputeFrameStatsSmall(t *testing.T) {
	mean, std, p95 := ComputeFrameStats(nil)
	if mean != 0 || std != 0 || p95 != 0 {
		t.Error("empty slice should return all zeros")
	}

	mean, std, p95 = ComputeFrameStats([]float64{16})
	if mean != 16 || std != 0 || p95 != 16 {
		t.Errorf("single value: got mean %v std %v p95 %v", mean, std, p95)
	}
}

func TestMeanHeat(t *testing.T) {
	if got := MeanHeat([]float32{0, 1, 0.5, 0.5}); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("MeanHeat = %v, want 0.5", got)
	}
	if MeanHeat(nil) != 0 {
		t.Error("empty texture should have zero heat")
	}
}
