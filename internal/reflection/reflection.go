// Package reflection runs the critique-and-refine loop over an article
// analysis. Critique failures bias toward acceptance: a round that cannot be
// scored is treated as good enough rather than blocking the pipeline.
package reflection

import (
	"context"
	"encoding/json"
	"strings"

	"distill/internal/core"
	"distill/internal/llm"
	"distill/internal/logger"
	"distill/internal/score"
)

const (
	// DefaultQualityThreshold is the critique score at which refinement stops.
	DefaultQualityThreshold = 7.0
	// DefaultMaxRounds caps the number of critique/improve iterations.
	DefaultMaxRounds = 2
	// contentPreviewLimit is how much article text the critique call sees.
	contentPreviewLimit = 3000

	// acceptQuality is the score assumed when a critique call fails.
	acceptQuality = 8.0
)

// Options configures the reflection engine.
type Options struct {
	Model            string  // model for critique and improvement calls
	QualityThreshold float64 // stop once critique quality reaches this
	MaxRounds        int     // hard cap on rounds
}

// DefaultOptions returns the reflection defaults.
func DefaultOptions() Options {
	return Options{
		Model:            llm.DefaultModel,
		QualityThreshold: DefaultQualityThreshold,
		MaxRounds:        DefaultMaxRounds,
	}
}

// Engine critiques and refines analysis results.
type Engine struct {
	generator llm.TextGenerator
	opts      Options
}

// NewEngine creates a reflection engine using the given text generator.
func NewEngine(generator llm.TextGenerator, opts Options) *Engine {
	if opts.Model == "" {
		opts.Model = llm.DefaultModel
	}
	if opts.QualityThreshold <= 0 {
		opts.QualityThreshold = DefaultQualityThreshold
	}
	if opts.MaxRounds <= 0 {
		opts.MaxRounds = DefaultMaxRounds
	}
	return &Engine{generator: generator, opts: opts}
}

// Refine runs up to maxRounds critique/improve iterations and returns the
// refined analysis plus the number of improvement rounds applied. A maxRounds
// of zero or less means no rounds: the analysis is returned unchanged. The
// input analysis is never mutated.
func (e *Engine) Refine(ctx context.Context, content string, analysis core.ArticleAnalysisResult, maxRounds int) (core.ArticleAnalysisResult, int, error) {
	if maxRounds <= 0 {
		return analysis, 0, nil
	}

	current := analysis
	rounds := 0

	for rounds < maxRounds {
		critique := e.Critique(ctx, content, current)
		if !critique.NeedsRefinement || critique.Quality >= e.opts.QualityThreshold {
			break
		}

		improved, err := e.improve(ctx, content, current, critique)
		if err != nil {
			logger.Warn("Improvement call failed, keeping current analysis", map[string]interface{}{
				"round": rounds + 1,
				"error": err.Error(),
			})
			rounds++
			break
		}
		current = improved
		rounds++
	}

	current.ReflectionRounds = analysis.ReflectionRounds + rounds
	return current, rounds, nil
}

// Critique rates one analysis against the article text. On any failure it
// returns an accepting result so the caller moves on.
func (e *Engine) Critique(ctx context.Context, content string, analysis core.ArticleAnalysisResult) core.ReflectionResult {
	accept := core.ReflectionResult{Quality: acceptQuality, NeedsRefinement: false}

	raw, err := e.generator.GenerateText(ctx, buildCritiquePrompt(content, analysis), llm.TextGenerationOptions{
		Model:          e.opts.Model,
		MaxTokens:      1024,
		Temperature:    0.3,
		ResponseSchema: buildCritiqueSchema(),
	})
	if err != nil {
		logger.Warn("Critique call failed, accepting analysis as-is", map[string]interface{}{
			"error": err.Error(),
		})
		return accept
	}

	var result core.ReflectionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		logger.Warn("Critique response was not valid JSON, accepting analysis as-is", map[string]interface{}{
			"error": err.Error(),
		})
		return accept
	}

	result.Quality = clampQuality(result.Quality)
	if result.Scores != nil {
		result.Scores.Comprehensiveness = clampQuality(result.Scores.Comprehensiveness)
		result.Scores.Accuracy = clampQuality(result.Scores.Accuracy)
		result.Scores.Depth = clampQuality(result.Scores.Depth)
		result.Scores.Consistency = clampQuality(result.Scores.Consistency)
		result.Scores.Objectivity = clampQuality(result.Scores.Objectivity)
	}
	return result
}

// improve regenerates the mutable fields of the analysis guided by the
// critique. Stable fields (model name, timings, round counter) carry over.
func (e *Engine) improve(ctx context.Context, content string, analysis core.ArticleAnalysisResult, critique core.ReflectionResult) (core.ArticleAnalysisResult, error) {
	raw, err := e.generator.GenerateText(ctx, buildImprovePrompt(content, analysis, critique), llm.TextGenerationOptions{
		Model:          e.opts.Model,
		MaxTokens:      2048,
		Temperature:    0.4,
		ResponseSchema: buildImproveSchema(),
	})
	if err != nil {
		return analysis, err
	}

	var resp improveResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return analysis, err
	}

	improved := analysis
	if resp.OneLineSummary != "" {
		improved.OneLineSummary = resp.OneLineSummary
	}
	if resp.Summary != "" {
		improved.Summary = resp.Summary
	}
	if len(resp.MainPoints) > 0 {
		improved.MainPoints = improved.MainPoints[:0:0]
		for _, mp := range resp.MainPoints {
			improved.MainPoints = append(improved.MainPoints, core.MainPoint{
				Point:       mp.Point,
				Explanation: mp.Explanation,
				Importance:  score.Clamp01(mp.Importance),
			})
		}
	}
	if len(resp.Tags) > 0 {
		improved.Tags = resp.Tags
	}
	if resp.Domain != "" {
		improved.Domain = strings.ToLower(strings.TrimSpace(resp.Domain))
	}
	if resp.AIScore >= 1 && resp.AIScore <= 10 {
		improved.AIScore = resp.AIScore
	}
	return improved, nil
}

// QuickCheck is a cheap heuristic quality score in [0,10] that needs no model
// call. Used to decide whether a full reflection pass is worth running.
func QuickCheck(analysis core.ArticleAnalysisResult) float64 {
	s := 0.0
	if strings.TrimSpace(analysis.OneLineSummary) != "" {
		s += 2
	}
	if len(strings.TrimSpace(analysis.Summary)) >= 100 {
		s += 2
	}
	if len(analysis.MainPoints) >= 3 {
		s += 2
	} else if len(analysis.MainPoints) > 0 {
		s += 1
	}
	if len(analysis.Tags) >= 3 {
		s += 1
	}
	if analysis.Domain != "" && analysis.Domain != "general" {
		s += 1
	}
	if analysis.AIScore >= 1 {
		s += 2
	}
	return s
}

func clampQuality(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

func contentPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= contentPreviewLimit {
		return content
	}
	return string(runes[:contentPreviewLimit]) + "\n[... truncated]"
}
