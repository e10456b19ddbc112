package modelcfg

import (
	"testing"

	"distill/internal/core"
)

func TestGetUnknownKeyFallsBack(t *testing.T) {
	r := NewRegistry()

	cfg := r.Get("no-such-model")
	if cfg.Model != DefaultModel {
		t.Errorf("Expected fallback to %q, got %q", DefaultModel, cfg.Model)
	}
}

func TestRegisterCustomOverridesBuiltin(t *testing.T) {
	r := NewRegistry()

	custom := core.ModelTierConfig{
		Provider: "local", Model: "gemini-2.5-flash",
		MaxTokens: 4096, CostPer1kTokens: 0.0001, Quality: 5, Speed: 10,
	}
	r.Register("gemini-2.5-flash", custom)

	got := r.Get("gemini-2.5-flash")
	if got.Provider != "local" {
		t.Errorf("Expected custom entry to shadow built-in, got provider %q", got.Provider)
	}
}

func TestCalculateCost(t *testing.T) {
	r := NewRegistry()

	cost := r.CalculateCost("gemini-2.5-flash", 1500, 500)
	want := 2.0 * 0.00131
	if cost != want {
		t.Errorf("CalculateCost = %v, want %v", cost, want)
	}
}

func TestBestValueModel(t *testing.T) {
	r := NewRegistry()

	best := r.BestValueModel(8)
	if best.Quality < 8 {
		t.Errorf("BestValueModel returned quality %v below the floor", best.Quality)
	}

	// qwen-plus has the highest quality/cost ratio among quality >= 8.
	if best.Model != "qwen-plus" {
		t.Errorf("Expected qwen-plus as best value at quality >= 8, got %q", best.Model)
	}

	// An unsatisfiable floor keeps the default.
	fallback := r.BestValueModel(99)
	if fallback.Model != DefaultModel {
		t.Errorf("Expected default model for impossible floor, got %q", fallback.Model)
	}
}

func TestRecommendReflectionRequiresHighQuality(t *testing.T) {
	r := NewRegistry()

	cfg := r.Recommend(Request{Language: "zh", Stage: StageReflection, MinQuality: 8})
	if cfg.Quality < 8 {
		t.Errorf("Reflection stage recommended quality %v < 8 (%s)", cfg.Quality, cfg.Model)
	}
}

func TestRecommendChineseShortlist(t *testing.T) {
	r := NewRegistry()

	cfg := r.Recommend(Request{Language: "zh", Stage: StageAnalysis, Priority: PriorityQuality})
	if cfg.Provider != "deepseek" && cfg.Provider != "alibaba" && cfg.Provider != "google" {
		t.Errorf("Unexpected provider %q for Chinese shortlist", cfg.Provider)
	}
	if cfg.Quality < 8 {
		t.Errorf("Quality priority picked quality %v", cfg.Quality)
	}
}

func TestRecommendPreliminaryPrefersCheapest(t *testing.T) {
	r := NewRegistry()

	cfg := r.Recommend(Request{Language: "en", Stage: StagePreliminary})
	// Cheapest entry on the default shortlist.
	if cfg.Model != "gemini-2.5-flash-lite" {
		t.Errorf("Expected cheapest model for preliminary stage, got %q", cfg.Model)
	}
}

func TestRecommendMaxCostFilters(t *testing.T) {
	r := NewRegistry()

	cfg := r.Recommend(Request{Language: "en", Stage: StageAnalysis, MaxCost: 0.001, Priority: PriorityQuality})
	if cfg.CostPer1kTokens > 0.001 {
		t.Errorf("MaxCost ignored: got %v/1k (%s)", cfg.CostPer1kTokens, cfg.Model)
	}
}

func TestRecommendEmptyShortlistFallsBack(t *testing.T) {
	r := NewRegistry()

	// No model is both free and perfect.
	cfg := r.Recommend(Request{Language: "en", Stage: StageAnalysis, MaxCost: 0.000001, MinQuality: 10})
	if cfg.Model != DefaultModel {
		t.Errorf("Expected default model fallback, got %q", cfg.Model)
	}
}

func TestRecommendSpeedPriority(t *testing.T) {
	r := NewRegistry()

	cfg := r.Recommend(Request{Language: "en", Stage: StageAnalysis, Priority: PrioritySpeed})
	if cfg.Speed < 9 {
		t.Errorf("Speed priority picked speed %v (%s)", cfg.Speed, cfg.Model)
	}
}
