package llm

import (
	"math"
	"strings"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 1},
		{"orthogonal", []float64{1, 0}, []float64{0, 1}, 0},
		{"opposite", []float64{1, 0}, []float64{-1, 0}, -1},
		{"mismatched lengths", []float64{1, 2}, []float64{1}, 0},
		{"zero vector", []float64{0, 0}, []float64{1, 2}, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := CosineSimilarity(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
				t.Errorf("CosineSimilarity = %v, want %v", got, c.want)
			}
		})
	}
}

func TestEstimateTokenCount(t *testing.T) {
	if got := EstimateTokenCount(""); got != 0 {
		t.Errorf("EstimateTokenCount(\"\") = %d, want 0", got)
	}

	short := EstimateTokenCount("hello world")
	long := EstimateTokenCount(strings.Repeat("hello world ", 100))
	if short <= 0 {
		t.Errorf("EstimateTokenCount(short) = %d, want positive", short)
	}
	if long <= short {
		t.Error("Longer text must estimate more tokens")
	}
}
