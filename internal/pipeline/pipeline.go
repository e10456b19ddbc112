// Package pipeline wires language detection, model selection, segmented
// analysis, and reflection into the end-to-end article flow. It is invoked
// from background workers, never from a latency-sensitive request path.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"distill/internal/analyze"
	"distill/internal/core"
	"distill/internal/langdetect"
	"distill/internal/llm"
	"distill/internal/logger"
	"distill/internal/modelcfg"
	"distill/internal/reflection"
	"distill/internal/segment"
)

// ErrAnalysisUnavailable is returned when no model backend can serve the
// request. Callers treat it as retryable.
var ErrAnalysisUnavailable = errors.New("analysis unavailable: no usable model backend")

// Options configures a pipeline run.
type Options struct {
	EnableReflection    bool
	MaxReflectionRounds int     // zero disables reflection even when enabled
	QualityThreshold    float64 // skip reflection when QuickCheck already meets it
	AnalysisModel       string  // override; empty selects by recommendation
	ReflectionModel     string  // override; empty selects by recommendation
	MaxCost             float64 // USD per 1k tokens ceiling, 0 = no ceiling
	MaxConcurrency      int
	SegmentOptions      segment.Options
	Deduper             analyze.Deduper
}

// DefaultOptions returns the pipeline defaults.
func DefaultOptions() Options {
	return Options{
		EnableReflection:    true,
		MaxReflectionRounds: reflection.DefaultMaxRounds,
		QualityThreshold:    reflection.DefaultQualityThreshold,
		MaxConcurrency:      4,
		SegmentOptions:      segment.DefaultOptions(),
	}
}

// Result is a pipeline run's output plus run metadata.
type Result struct {
	Analysis  core.ArticleAnalysisResult `json:"analysis"`
	Language  langdetect.Detection       `json:"language"`
	ModelUsed string                     `json:"model_used"`
}

// Pipeline runs articles end to end.
type Pipeline struct {
	generator llm.TextGenerator
	detector  *langdetect.Detector
	registry  *modelcfg.Registry
	opts      Options
}

// New creates a pipeline. The registry is shared, read-mostly state
// constructed at startup.
func New(generator llm.TextGenerator, registry *modelcfg.Registry, opts Options) *Pipeline {
	if registry == nil {
		registry = modelcfg.NewRegistry()
	}
	if opts.QualityThreshold <= 0 {
		opts.QualityThreshold = reflection.DefaultQualityThreshold
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultOptions().MaxConcurrency
	}
	return &Pipeline{
		generator: generator,
		detector:  langdetect.NewDetector(),
		registry:  registry,
		opts:      opts,
	}
}

// Run analyzes one article: detect language, pick models, run segmented
// analysis, then optionally refine. Reflection rounds are sequential by
// design; only segment analysis fans out.
func (p *Pipeline) Run(ctx context.Context, article core.Article) (Result, error) {
	if p.generator == nil {
		return Result{}, ErrAnalysisUnavailable
	}

	detection := p.detector.Detect(article.Content)
	analysisModel := p.pickModel(detection.Language, modelcfg.StageAnalysis, p.opts.AnalysisModel)

	logger.Info("Starting article pipeline", map[string]interface{}{
		"title":    article.Title,
		"language": detection.Language,
		"model":    analysisModel,
	})

	analyzer := analyze.NewAnalyzer(p.generator, analyze.Options{
		Model:          analysisModel,
		SegmentOptions: p.opts.SegmentOptions,
		MaxConcurrency: p.opts.MaxConcurrency,
		Deduper:        p.opts.Deduper,
	})
	analysis, err := analyzer.Analyze(ctx, article)
	if err != nil {
		return Result{}, fmt.Errorf("analysis failed: %w", err)
	}

	if p.opts.EnableReflection && p.opts.MaxReflectionRounds > 0 && reflection.QuickCheck(analysis) < p.opts.QualityThreshold {
		reflectionModel := p.pickModel(detection.Language, modelcfg.StageReflection, p.opts.ReflectionModel)
		engine := reflection.NewEngine(p.generator, reflection.Options{
			Model:            reflectionModel,
			QualityThreshold: p.opts.QualityThreshold,
			MaxRounds:        p.opts.MaxReflectionRounds,
		})
		refined, rounds, err := engine.Refine(ctx, article.Content, analysis, p.opts.MaxReflectionRounds)
		if err == nil {
			analysis = refined
		}
		logger.Debug("Reflection finished", map[string]interface{}{
			"rounds": rounds,
		})
	}

	return Result{
		Analysis:  analysis,
		Language:  detection,
		ModelUsed: analysisModel,
	}, nil
}

// pickModel honors an explicit override, otherwise asks the registry for a
// stage-appropriate recommendation.
func (p *Pipeline) pickModel(language string, stage modelcfg.Stage, override string) string {
	if override != "" {
		return override
	}
	cfg := p.registry.Recommend(modelcfg.Request{
		Language: language,
		Stage:    stage,
		MaxCost:  p.opts.MaxCost,
	})
	return cfg.Model
}
