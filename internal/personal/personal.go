// Package personal combines an article's objective analysis with a user
// preference profile to produce a personalized score and a recommended
// action. Scoring is pure and deterministic; no model calls are made here.
package personal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"distill/internal/core"
	"distill/internal/score"
)

const (
	// baseRelevance is the starting relevance before profile adjustments.
	baseRelevance = 5.0
	// excludedRelevance is the hard penalty when an excluded tag matches.
	excludedRelevance = 2.0
	// baseConfidence applies when no profile exists.
	baseConfidence = 0.7
)

// Depth-preference multipliers applied to the depth dimension.
const (
	deepMultiplier   = 1.3
	mediumMultiplier = 1.0
	lightMultiplier  = 0.8
)

// Scorer computes personalized scores.
type Scorer struct{}

// NewScorer creates a personal scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// CalculateScore scores one analysis result for one user. A nil profile
// yields a base score derived purely from the objective dimensions.
func (s *Scorer) CalculateScore(analysis core.ArticleAnalysisResult, profile *core.UserPreferenceProfile) core.PersonalizedScore {
	if profile == nil {
		return baseScore(analysis)
	}

	dims := analysis.ScoreDimensions
	boosts := make(map[string]float64)
	var reasons []string

	// Hard exclusion short-circuits every other relevance boost.
	if tag, ok := matchedExcludedTag(analysis.Tags, profile.ExcludedTags); ok {
		personal := core.PersonalDimensions{
			Depth:        score.ClampScore(dims.Depth),
			Quality:      score.ClampScore(dims.Quality),
			Practicality: score.ClampScore(dims.Practicality),
			Novelty:      score.ClampScore(dims.Novelty),
			Relevance:    excludedRelevance,
		}
		overall := weightedOverall(personal)
		return core.PersonalizedScore{
			Overall:           overall,
			Dimensions:        personal,
			Reasons:           []string{fmt.Sprintf("Matches excluded topic %q", tag)},
			RecommendedAction: recommendAction(overall, personal.Relevance),
			Confidence:        confidence(profile),
		}
	}

	topicBoost, matched := topicMatchBoost(analysis.Tags, profile.TopicWeights)
	relevance := baseRelevance + topicBoost*4.0
	if len(matched) > 0 {
		boosts["topic_match"] = topicBoost
		reasons = append(reasons, fmt.Sprintf("Matches your interests: %s", strings.Join(matched, ", ")))
	}

	if domainAligned(analysis.Domain, profile.TopicWeights) {
		relevance += 1.0
		boosts["domain_alignment"] = 1.0
		reasons = append(reasons, fmt.Sprintf("In a domain you read often (%s)", analysis.Domain))
	}

	depthMult := depthMultiplier(profile.PreferredDepth)
	if depthMult != mediumMultiplier {
		boosts["depth_preference"] = depthMult
	}
	practMult := practicalityMultiplier(profile.CompletionRate)
	if practMult != 1.0 {
		boosts["completion_rate"] = practMult
	}

	personal := core.PersonalDimensions{
		Depth:        score.ClampScore(dims.Depth * depthMult),
		Quality:      score.ClampScore(dims.Quality),
		Practicality: score.ClampScore(dims.Practicality * practMult),
		Novelty:      score.ClampScore(dims.Novelty),
		Relevance:    score.ClampScore(relevance),
	}

	overall := weightedOverall(personal)
	if len(reasons) == 0 {
		reasons = append(reasons, "No strong topic signal; scored on article quality alone")
	}

	return core.PersonalizedScore{
		Overall:           overall,
		Dimensions:        personal,
		Reasons:           reasons,
		RecommendedAction: recommendAction(overall, personal.Relevance),
		Confidence:        confidence(profile),
		BoostFactors:      boosts,
	}
}

// baseScore is the profile-free fallback: objective dimensions, neutral
// relevance, fixed confidence.
func baseScore(analysis core.ArticleAnalysisResult) core.PersonalizedScore {
	dims := analysis.ScoreDimensions
	personal := core.PersonalDimensions{
		Depth:        score.ClampScore(dims.Depth),
		Quality:      score.ClampScore(dims.Quality),
		Practicality: score.ClampScore(dims.Practicality),
		Novelty:      score.ClampScore(dims.Novelty),
		Relevance:    baseRelevance,
	}
	overall := weightedOverall(personal)
	return core.PersonalizedScore{
		Overall:           overall,
		Dimensions:        personal,
		Reasons:           []string{"No reading history yet; scored on article quality alone"},
		RecommendedAction: recommendAction(overall, personal.Relevance),
		Confidence:        baseConfidence,
	}
}

func weightedOverall(d core.PersonalDimensions) float64 {
	return score.WeightedOverall(d.Depth, d.Quality, d.Practicality, d.Novelty, d.Relevance)
}

// matchedExcludedTag returns the first article tag present in the excluded
// list, case-insensitively.
func matchedExcludedTag(tags, excluded []string) (string, bool) {
	if len(excluded) == 0 {
		return "", false
	}
	set := make(map[string]struct{}, len(excluded))
	for _, e := range excluded {
		set[strings.ToLower(e)] = struct{}{}
	}
	for _, t := range tags {
		if _, ok := set[strings.ToLower(t)]; ok {
			return t, true
		}
	}
	return "", false
}

// topicMatchBoost returns the mean preference weight over matched tags in
// [0,1], plus the matched tag names.
func topicMatchBoost(tags []string, weights map[string]float64) (float64, []string) {
	if len(weights) == 0 {
		return 0, nil
	}
	var matched []string
	sum := 0.0
	for _, t := range tags {
		if w, ok := weights[strings.ToLower(t)]; ok {
			matched = append(matched, t)
			sum += w
		} else if w, ok := weights[t]; ok {
			matched = append(matched, t)
			sum += w
		}
	}
	if len(matched) == 0 {
		return 0, nil
	}
	return score.Clamp01(sum / float64(len(matched))), matched
}

// domainAligned reports whether the article's domain appears among the user's
// top-weighted topics.
func domainAligned(domain string, weights map[string]float64) bool {
	if domain == "" || len(weights) == 0 {
		return false
	}
	for _, topic := range topTopics(weights, 3) {
		if strings.EqualFold(topic, domain) {
			return true
		}
	}
	return false
}

// topTopics returns up to n topics by descending weight, ties broken by name
// for determinism.
func topTopics(weights map[string]float64, n int) []string {
	topics := make([]string, 0, len(weights))
	for t := range weights {
		topics = append(topics, t)
	}
	sort.Slice(topics, func(i, j int) bool {
		wi, wj := weights[topics[i]], weights[topics[j]]
		if wi != wj {
			return wi > wj
		}
		return topics[i] < topics[j]
	})
	if len(topics) > n {
		topics = topics[:n]
	}
	return topics
}

func depthMultiplier(pref core.DepthPreference) float64 {
	switch pref {
	case core.DepthDeep:
		return deepMultiplier
	case core.DepthLight:
		return lightMultiplier
	default:
		return mediumMultiplier
	}
}

// practicalityMultiplier rewards users who finish what they start: a high
// completion rate signals that practical articles land well.
func practicalityMultiplier(completionRate float64) float64 {
	return 0.9 + score.Clamp01(completionRate)*0.3
}

func recommendAction(overall, relevance float64) core.RecommendedAction {
	switch {
	case overall >= 8 && relevance >= 7:
		return core.ActionReadNow
	case overall >= 6:
		return core.ActionReadLater
	case overall >= 4:
		return core.ActionArchive
	default:
		return core.ActionSkip
	}
}

// confidence grows with profile recency and breadth.
func confidence(profile *core.UserPreferenceProfile) float64 {
	c := baseConfidence
	if time.Since(profile.UpdatedAt) < 7*24*time.Hour {
		c += 0.15
	}
	if len(profile.TopicWeights) > 5 {
		c += 0.15
	}
	return score.Clamp01(c)
}
