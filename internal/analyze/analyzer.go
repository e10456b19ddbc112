// Package analyze runs the map-reduce article analysis: segments are analyzed
// in parallel with bounded concurrency, then merged into one article-level
// result. Individual segment failures degrade to neutral placeholders instead
// of failing the whole article.
package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"distill/internal/core"
	"distill/internal/llm"
	"distill/internal/logger"
	"distill/internal/score"
	"distill/internal/segment"
)

// Options configures the analyzer.
type Options struct {
	Model          string          // model name passed through to the generator
	SegmentOptions segment.Options // segmentation parameters
	MaxConcurrency int             // cap on in-flight segment calls
	Deduper        Deduper         // key-point dedup strategy, NoopDeduper if nil
}

// DefaultOptions returns the analyzer defaults.
func DefaultOptions() Options {
	return Options{
		Model:          llm.DefaultModel,
		SegmentOptions: segment.DefaultOptions(),
		MaxConcurrency: 4,
		Deduper:        NoopDeduper{},
	}
}

// Analyzer performs segmented article analysis against an LLM.
type Analyzer struct {
	generator llm.TextGenerator
	opts      Options
}

// NewAnalyzer creates an analyzer using the given text generator.
func NewAnalyzer(generator llm.TextGenerator, opts Options) *Analyzer {
	if opts.Model == "" {
		opts.Model = llm.DefaultModel
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = DefaultOptions().MaxConcurrency
	}
	if opts.Deduper == nil {
		opts.Deduper = NoopDeduper{}
	}
	return &Analyzer{generator: generator, opts: opts}
}

// maxTopSegments is how many of the highest-importance segments feed the
// article-level summary call.
const maxTopSegments = 5

// maxTags caps the merged tag and entity lists.
const maxTags = 10

// segmentDigest pairs a segment with its analysis for ranking.
type segmentDigest struct {
	seg      core.Segment
	analysis core.SegmentAnalysis
}

// Analyze runs the full map-reduce pass over one article.
func (a *Analyzer) Analyze(ctx context.Context, article core.Article) (core.ArticleAnalysisResult, error) {
	start := time.Now()

	content := strings.TrimSpace(article.Content)
	if content == "" {
		return core.ArticleAnalysisResult{}, fmt.Errorf("article content is empty")
	}

	segments := segment.Split(content, a.opts.SegmentOptions)
	logger.Debug("Starting segmented analysis", map[string]interface{}{
		"title":    article.Title,
		"segments": len(segments),
		"model":    a.opts.Model,
	})

	digests := a.analyzeSegments(ctx, article.Title, segments)

	result, err := a.reduce(ctx, article, digests)
	if err != nil {
		return core.ArticleAnalysisResult{}, err
	}

	result.AnalysisModel = a.opts.Model
	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	return result, nil
}

// analyzeSegments runs the map phase with bounded concurrency. Every segment
// produces a digest: failed calls yield the neutral fallback.
func (a *Analyzer) analyzeSegments(ctx context.Context, title string, segments []core.Segment) []segmentDigest {
	digests := make([]segmentDigest, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxConcurrency)

	for i, seg := range segments {
		g.Go(func() error {
			digests[i] = segmentDigest{
				seg:      seg,
				analysis: a.analyzeSegment(gctx, title, seg),
			}
			return nil
		})
	}
	// Workers never return errors; Wait is for completion only.
	_ = g.Wait()

	return digests
}

// analyzeSegment performs one segment call. On any failure it returns the
// neutral placeholder so the reduce phase always has a full set of inputs.
func (a *Analyzer) analyzeSegment(ctx context.Context, title string, seg core.Segment) core.SegmentAnalysis {
	neutral := core.SegmentAnalysis{
		SegmentID:  seg.ID,
		KeyPoints:  []string{},
		Sentiment:  core.SentimentNeutral,
		Importance: 0.5,
	}

	prompt := buildSegmentPrompt(title, seg)
	raw, err := a.generator.GenerateText(ctx, prompt, llm.TextGenerationOptions{
		Model:          a.opts.Model,
		MaxTokens:      1024,
		Temperature:    0.2,
		ResponseSchema: buildSegmentSchema(),
	})
	if err != nil {
		logger.Warn("Segment analysis call failed, using neutral fallback", map[string]interface{}{
			"segment_id": seg.ID,
			"error":      err.Error(),
		})
		return neutral
	}

	var resp segmentResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		logger.Warn("Segment analysis response was not valid JSON, using neutral fallback", map[string]interface{}{
			"segment_id": seg.ID,
			"error":      err.Error(),
		})
		return neutral
	}

	return core.SegmentAnalysis{
		SegmentID:        seg.ID,
		KeyPoints:        resp.KeyPoints,
		TechnicalDetails: resp.TechnicalDetails,
		Sentiment:        parseSentiment(resp.Sentiment),
		Importance:       score.Clamp01(resp.Importance),
		Entities:         resp.Entities,
	}
}

func parseSentiment(s string) core.Sentiment {
	switch core.Sentiment(strings.ToLower(strings.TrimSpace(s))) {
	case core.SentimentPositive:
		return core.SentimentPositive
	case core.SentimentNegative:
		return core.SentimentNegative
	default:
		return core.SentimentNeutral
	}
}

// reduce merges per-segment digests into the article-level result.
func (a *Analyzer) reduce(ctx context.Context, article core.Article, digests []segmentDigest) (core.ArticleAnalysisResult, error) {
	ranked := make([]segmentDigest, len(digests))
	copy(ranked, digests)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].analysis.Importance > ranked[j].analysis.Importance
	})

	top := ranked
	if len(top) > maxTopSegments {
		top = top[:maxTopSegments]
	}

	var result core.ArticleAnalysisResult
	summary, err := a.summarize(ctx, article.Title, top)
	if err != nil {
		logger.Warn("Summary call failed, falling back to key points", map[string]interface{}{
			"title": article.Title,
			"error": err.Error(),
		})
		result = fallbackResult(article, top)
	} else {
		result = summary
	}

	allPoints := make([]string, 0, len(digests)*3)
	entities := make([]string, 0, len(digests)*2)
	for _, d := range ranked {
		allPoints = append(allPoints, d.analysis.KeyPoints...)
		entities = append(entities, d.analysis.Entities...)
	}
	allPoints = a.opts.Deduper.Dedupe(ctx, uniqueStrings(allPoints))

	if len(result.MainPoints) == 0 {
		for _, p := range allPoints {
			result.MainPoints = append(result.MainPoints, core.MainPoint{Point: p, Importance: 0.5})
			if len(result.MainPoints) == maxTopSegments {
				break
			}
		}
	}

	// Summary tags keep priority under the cap; segment entities fill the rest.
	result.Tags = capStrings(uniqueStrings(append(result.Tags, entities...)), maxTags)
	if result.Domain == "" {
		result.Domain = classifyDomain(article, append(result.Tags, entities...))
	}

	avgImp := averageImportance(digests)
	result.AIScore = score.ClampScore(score.Round1(avgImp * 10))
	result.ScoreDimensions = a.scoreDimensions(digests, avgImp)

	return result, nil
}

// summarize runs the article-level reduce call.
func (a *Analyzer) summarize(ctx context.Context, title string, top []segmentDigest) (core.ArticleAnalysisResult, error) {
	raw, err := a.generator.GenerateText(ctx, buildSummaryPrompt(title, top), llm.TextGenerationOptions{
		Model:          a.opts.Model,
		MaxTokens:      2048,
		Temperature:    0.3,
		ResponseSchema: buildSummarySchema(),
	})
	if err != nil {
		return core.ArticleAnalysisResult{}, err
	}

	var resp summaryResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return core.ArticleAnalysisResult{}, fmt.Errorf("failed to parse summary response: %w", err)
	}

	result := core.ArticleAnalysisResult{
		OneLineSummary: resp.OneLineSummary,
		Summary:        resp.Summary,
		Domain:         strings.ToLower(strings.TrimSpace(resp.Domain)),
		Subcategory:    strings.ToLower(strings.TrimSpace(resp.Subcategory)),
		Tags:           resp.Tags,
	}
	for _, mp := range resp.MainPoints {
		result.MainPoints = append(result.MainPoints, core.MainPoint{
			Point:       mp.Point,
			Explanation: mp.Explanation,
			Importance:  score.Clamp01(mp.Importance),
		})
	}
	for _, kq := range resp.KeyQuotes {
		result.KeyQuotes = append(result.KeyQuotes, core.KeyQuote{
			Quote:        kq.Quote,
			Significance: kq.Significance,
		})
	}
	return result, nil
}

// fallbackResult builds a degraded result from segment key points when the
// summary call cannot be completed.
func fallbackResult(article core.Article, top []segmentDigest) core.ArticleAnalysisResult {
	oneLine := article.Title
	if oneLine == "" {
		oneLine = "Analysis unavailable"
	}

	var points []string
	var entities []string
	for _, d := range top {
		points = append(points, d.analysis.KeyPoints...)
		entities = append(entities, d.analysis.Entities...)
	}

	summary := strings.Join(capStrings(points, maxTopSegments), " ")
	if summary == "" {
		summary = oneLine
	}

	return core.ArticleAnalysisResult{
		OneLineSummary: oneLine,
		Summary:        summary,
		Tags:           capStrings(uniqueStrings(entities), maxTags),
	}
}

// scoreDimensions derives the objective dimensions from segment signals.
func (a *Analyzer) scoreDimensions(digests []segmentDigest, avgImp float64) core.ScoreDimensions {
	technical := 0
	positive := 0
	for _, d := range digests {
		if len(d.analysis.TechnicalDetails) > 0 || d.seg.Type == core.SegmentCode {
			technical++
		}
		if d.analysis.Sentiment == core.SentimentPositive {
			positive++
		}
	}

	posFrac := 0.0
	if len(digests) > 0 {
		posFrac = float64(positive) / float64(len(digests))
	}

	depth := score.DepthFromTechnicalSegments(technical, len(digests))
	quality := score.QualityFromSentiment(posFrac)
	return core.ScoreDimensions{
		Depth:        score.Round1(depth),
		Quality:      score.Round1(quality),
		Practicality: score.Round1(score.Practicality(depth, quality, avgImp)),
		Novelty:      score.Round1(score.Novelty(depth, avgImp)),
	}
}

func averageImportance(digests []segmentDigest) float64 {
	if len(digests) == 0 {
		return 0.5
	}
	sum := 0.0
	for _, d := range digests {
		sum += d.analysis.Importance
	}
	return sum / float64(len(digests))
}

// domainKeywords maps domains to the keywords that indicate them. Checked in
// a fixed order so classification is deterministic.
var domainKeywords = []struct {
	domain   string
	keywords []string
}{
	{"software engineering", []string{"code", "programming", "api", "software", "framework", "library", "deployment", "kubernetes", "database"}},
	{"artificial intelligence", []string{"ai", "machine learning", "llm", "neural", "model", "training", "inference"}},
	{"business", []string{"startup", "revenue", "market", "funding", "acquisition", "strategy"}},
	{"science", []string{"research", "study", "experiment", "physics", "biology", "climate"}},
	{"design", []string{"design", "ux", "ui", "typography", "interface"}},
}

// classifyDomain assigns a domain by keyword match against the title and
// tags, defaulting to "general".
func classifyDomain(article core.Article, tags []string) string {
	haystack := strings.ToLower(article.Title + " " + strings.Join(tags, " "))
	for _, dk := range domainKeywords {
		for _, kw := range dk.keywords {
			if strings.Contains(haystack, kw) {
				return dk.domain
			}
		}
	}
	return "general"
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		key := strings.ToLower(s)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

func capStrings(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}
