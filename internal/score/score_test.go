package score

import (
	"math/rand"
	"testing"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.5, 0},
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.7, 1},
	}
	for _, c := range cases {
		if got := Clamp01(c.in); got != c.want {
			t.Errorf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClampScore(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-3, 1},
		{0, 1},
		{1, 1},
		{5.5, 5.5},
		{10, 10},
		{42, 10},
	}
	for _, c := range cases {
		if got := ClampScore(c.in); got != c.want {
			t.Errorf("ClampScore(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestRound1(t *testing.T) {
	if got := Round1(7.449); got != 7.4 {
		t.Errorf("Round1(7.449) = %v, want 7.4", got)
	}
	if got := Round1(7.45); got != 7.5 {
		t.Errorf("Round1(7.45) = %v, want 7.5", got)
	}
}

func TestDepthFromTechnicalSegments(t *testing.T) {
	if got := DepthFromTechnicalSegments(0, 0); got != 5.0 {
		t.Errorf("Expected neutral depth 5.0 with no segments, got %v", got)
	}
	if got := DepthFromTechnicalSegments(0, 10); got != 4.0 {
		t.Errorf("Expected baseline depth 4.0 with no technical segments, got %v", got)
	}
	if got := DepthFromTechnicalSegments(10, 10); got != 10.0 {
		t.Errorf("Expected max depth 10.0 for fully technical article, got %v", got)
	}

	// Majority technical should clear 6.
	if got := DepthFromTechnicalSegments(6, 10); got < 6.0 {
		t.Errorf("Expected depth >= 6 with majority technical segments, got %v", got)
	}
}

func TestQualityFromSentiment(t *testing.T) {
	if got := QualityFromSentiment(0); got != 5.0 {
		t.Errorf("Expected quality 5.0 with no positive segments, got %v", got)
	}
	if got := QualityFromSentiment(1); got != 9.0 {
		t.Errorf("Expected quality 9.0 with all positive segments, got %v", got)
	}
}

// Every derived score stays inside its documented bounds for arbitrary
// inputs, including ones outside the valid input ranges.
func TestScoreBoundsProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		depth := rng.Float64()*30 - 10
		quality := rng.Float64()*30 - 10
		imp := rng.Float64()*4 - 2
		relevance := rng.Float64()*30 - 10

		checks := map[string]float64{
			"Depth":        DepthFromTechnicalSegments(rng.Intn(50), rng.Intn(50)+1),
			"Quality":      QualityFromSentiment(imp),
			"Practicality": Practicality(depth, quality, imp),
			"Novelty":      Novelty(depth, imp),
			"Overall":      WeightedOverall(depth, quality, depth, quality, relevance),
		}
		for name, v := range checks {
			if v < 1 || v > 10 {
				t.Fatalf("%s = %v out of [1,10] (iteration %d)", name, v, i)
			}
		}
	}
}

func TestWeightedOverallWeightsSumToOne(t *testing.T) {
	// A uniform input must map to itself under a convex combination.
	if got := WeightedOverall(6, 6, 6, 6, 6); got != 6.0 {
		t.Errorf("WeightedOverall(6,...) = %v, want 6.0", got)
	}
	// Relevance carries the largest weight.
	low := WeightedOverall(5, 5, 5, 5, 1)
	high := WeightedOverall(5, 5, 5, 5, 10)
	if high-low < 2.0 {
		t.Errorf("Expected relevance to move the overall by at least 2 points, got %v to %v", low, high)
	}
}
