package analyze

import (
	"context"

	"distill/internal/embedcache"
	"distill/internal/llm"
	"distill/internal/logger"
)

// Deduper removes near-duplicate key points before they are ranked.
type Deduper interface {
	Dedupe(ctx context.Context, points []string) []string
}

// NoopDeduper keeps every point. Used when no embedder is configured.
type NoopDeduper struct{}

func (NoopDeduper) Dedupe(_ context.Context, points []string) []string {
	return points
}

// DefaultSimilarityThreshold is the cosine similarity above which two key
// points are treated as duplicates.
const DefaultSimilarityThreshold = 0.92

// EmbeddingDeduper drops key points whose embeddings are near-identical to an
// earlier point. Embeddings go through the cache, so repeated points across
// articles cost one model call. Any embedding failure keeps the point.
type EmbeddingDeduper struct {
	embedder  llm.Embedder
	cache     *embedcache.Cache
	threshold float64
}

// NewEmbeddingDeduper creates a deduper backed by the given embedder and
// cache. A zero threshold uses DefaultSimilarityThreshold.
func NewEmbeddingDeduper(embedder llm.Embedder, cache *embedcache.Cache, threshold float64) *EmbeddingDeduper {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &EmbeddingDeduper{embedder: embedder, cache: cache, threshold: threshold}
}

func (d *EmbeddingDeduper) Dedupe(ctx context.Context, points []string) []string {
	if len(points) < 2 {
		return points
	}

	kept := make([]string, 0, len(points))
	keptVecs := make([][]float64, 0, len(points))

	for _, p := range points {
		vec, err := d.embed(ctx, p)
		if err != nil {
			logger.Debug("Embedding failed during dedup, keeping point", map[string]interface{}{
				"error": err.Error(),
			})
			kept = append(kept, p)
			keptVecs = append(keptVecs, nil)
			continue
		}

		dup := false
		for _, kv := range keptVecs {
			if kv == nil {
				continue
			}
			if llm.CosineSimilarity(vec, kv) >= d.threshold {
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, p)
			keptVecs = append(keptVecs, vec)
		}
	}
	return kept
}

func (d *EmbeddingDeduper) embed(ctx context.Context, text string) ([]float64, error) {
	if d.cache == nil {
		return d.embedder.GenerateEmbedding(ctx, text)
	}
	return d.cache.GetOrCompute(ctx, text, func(ctx context.Context) ([]float64, error) {
		return d.embedder.GenerateEmbedding(ctx, text)
	})
}
