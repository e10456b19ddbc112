// Package modelcfg maintains the registry of language-model backends with
// cost/quality/speed attributes and selects the best backend for a given
// language, pipeline stage, and cost/quality constraint.
package modelcfg

import (
	"sort"

	"distill/internal/core"
)

// DefaultModel is the fixed fallback returned for unknown keys and for
// recommendations whose shortlist filters down to nothing.
const DefaultModel = "gemini-2.5-flash-lite"

// Stage identifies the pipeline stage asking for a model.
type Stage string

const (
	StagePreliminary Stage = "preliminary"
	StageAnalysis    Stage = "analysis"
	StageReflection  Stage = "reflection"
	StageEmbedding   Stage = "embedding"
)

// Priority selects the sort order applied to the candidate shortlist.
type Priority string

const (
	PriorityCost    Priority = "cost"
	PriorityQuality Priority = "quality"
	PrioritySpeed   Priority = "speed"
)

// builtinModels is the semi-static backend table. Custom registrations take
// priority over these entries.
var builtinModels = map[string]core.ModelTierConfig{
	"gemini-2.5-pro": {
		Provider: "google", Model: "gemini-2.5-pro",
		MaxTokens: 65536, CostPer1kTokens: 0.00875, Quality: 9, Speed: 6,
	},
	"gemini-2.5-flash": {
		Provider: "google", Model: "gemini-2.5-flash",
		MaxTokens: 65536, CostPer1kTokens: 0.00131, Quality: 8, Speed: 9,
	},
	"gemini-2.5-flash-lite": {
		Provider: "google", Model: "gemini-2.5-flash-lite",
		MaxTokens: 65536, CostPer1kTokens: 0.00025, Quality: 6, Speed: 10,
	},
	"gpt-4o": {
		Provider: "openai", Model: "gpt-4o",
		MaxTokens: 16384, CostPer1kTokens: 0.00625, Quality: 9, Speed: 7,
	},
	"gpt-4o-mini": {
		Provider: "openai", Model: "gpt-4o-mini",
		MaxTokens: 16384, CostPer1kTokens: 0.000375, Quality: 7, Speed: 9,
	},
	"claude-sonnet-4": {
		Provider: "anthropic", Model: "claude-sonnet-4",
		MaxTokens: 64000, CostPer1kTokens: 0.009, Quality: 9, Speed: 7,
	},
	"deepseek-chat": {
		Provider: "deepseek", Model: "deepseek-chat",
		MaxTokens: 8192, CostPer1kTokens: 0.000685, Quality: 8, Speed: 7,
	},
	"deepseek-reasoner": {
		Provider: "deepseek", Model: "deepseek-reasoner",
		MaxTokens: 8192, CostPer1kTokens: 0.001385, Quality: 9, Speed: 5,
	},
	"qwen-plus": {
		Provider: "alibaba", Model: "qwen-plus",
		MaxTokens: 32768, CostPer1kTokens: 0.0006, Quality: 8, Speed: 8,
	},
	"qwen-turbo": {
		Provider: "alibaba", Model: "qwen-turbo",
		MaxTokens: 8192, CostPer1kTokens: 0.0001, Quality: 6, Speed: 10,
	},
}

// languageShortlists maps a language family to its candidate model keys.
// Chinese gets backends trained heavily on Chinese corpora; CJK neighbours
// prefer the multilingual tiers.
var languageShortlists = map[string][]string{
	"zh": {"qwen-plus", "deepseek-chat", "deepseek-reasoner", "qwen-turbo", "gemini-2.5-flash"},
	"ja": {"gemini-2.5-flash", "gpt-4o", "gemini-2.5-pro", "gpt-4o-mini"},
	"ko": {"gemini-2.5-flash", "gpt-4o", "gemini-2.5-pro", "gpt-4o-mini"},
}

// defaultShortlist serves every language without a dedicated shortlist.
var defaultShortlist = []string{
	"gemini-2.5-flash", "gpt-4o-mini", "gemini-2.5-pro", "gpt-4o",
	"claude-sonnet-4", "gemini-2.5-flash-lite",
}

// Request describes one model recommendation query.
type Request struct {
	Language   string
	Stage      Stage
	MaxCost    float64 // USD per 1k tokens, 0 = no ceiling
	MinQuality float64
	Priority   Priority
}

// Registry holds the built-in model table plus runtime registrations. It is
// constructed once at startup and injected into the manager; registration is
// rare and expected to be externally synchronized.
type Registry struct {
	custom map[string]core.ModelTierConfig
}

// NewRegistry creates a registry backed by the built-in model table.
func NewRegistry() *Registry {
	return &Registry{custom: make(map[string]core.ModelTierConfig)}
}

// Register adds or replaces a custom model entry. Custom entries take
// priority over built-ins with the same key.
func (r *Registry) Register(key string, cfg core.ModelTierConfig) {
	r.custom[key] = cfg
}

// Get returns the config for key, falling back to the default model for
// unknown keys. It never errors.
func (r *Registry) Get(key string) core.ModelTierConfig {
	if cfg, ok := r.custom[key]; ok {
		return cfg
	}
	if cfg, ok := builtinModels[key]; ok {
		return cfg
	}
	return builtinModels[DefaultModel]
}

// Keys returns every registered model key, custom entries included.
func (r *Registry) Keys() []string {
	seen := make(map[string]bool)
	var keys []string
	for k := range r.custom {
		seen[k] = true
		keys = append(keys, k)
	}
	for k := range builtinModels {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// CalculateCost returns the USD cost of a call given token counts.
func (r *Registry) CalculateCost(model string, inputTokens, outputTokens int) float64 {
	cfg := r.Get(model)
	return float64(inputTokens+outputTokens) / 1000.0 * cfg.CostPer1kTokens
}

// BestValueModel picks, among models meeting the quality floor, the one
// maximizing quality per dollar.
func (r *Registry) BestValueModel(minQuality float64) core.ModelTierConfig {
	best := builtinModels[DefaultModel]
	bestValue := -1.0
	for _, key := range r.Keys() {
		cfg := r.Get(key)
		if cfg.Quality < minQuality || cfg.CostPer1kTokens <= 0 {
			continue
		}
		value := cfg.Quality / cfg.CostPer1kTokens
		if value > bestValue {
			best, bestValue = cfg, value
		}
	}
	return best
}

// Recommend builds a language-appropriate shortlist, narrows it by stage and
// constraints, sorts by the requested priority, and returns the top
// candidate. An empty shortlist falls back to the fixed low-cost default.
func (r *Registry) Recommend(req Request) core.ModelTierConfig {
	keys, ok := languageShortlists[req.Language]
	if !ok {
		keys = defaultShortlist
	}

	var candidates []core.ModelTierConfig
	for _, key := range keys {
		cfg := r.Get(key)
		if req.Stage == StageReflection && cfg.Quality < 8 {
			continue
		}
		if req.MinQuality > 0 && cfg.Quality < req.MinQuality {
			continue
		}
		if req.MaxCost > 0 && cfg.CostPer1kTokens > req.MaxCost {
			continue
		}
		candidates = append(candidates, cfg)
	}

	if len(candidates) == 0 {
		return builtinModels[DefaultModel]
	}

	// The preliminary stage is a cost gatekeeper: unless the caller asked
	// for quality or speed, it takes the cheapest viable candidate.
	priority := req.Priority
	if req.Stage == StagePreliminary && priority == "" {
		priority = PriorityCost
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		switch priority {
		case PriorityQuality:
			return candidates[i].Quality > candidates[j].Quality
		case PrioritySpeed:
			return candidates[i].Speed > candidates[j].Speed
		default:
			return candidates[i].CostPer1kTokens < candidates[j].CostPer1kTokens
		}
	})

	return candidates[0]
}
