// Package prefs derives per-user preference profiles from reading-session
// history. Recomputation is an upsert over a 30-day window of behavioral
// signals; the learner never fails the caller over an empty history.
package prefs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"distill/internal/core"
	"distill/internal/logger"
	"distill/internal/score"
)

const (
	// HistoryWindow is how far back session history is considered.
	HistoryWindow = 30 * 24 * time.Hour
	// minTopicWeight drops tags whose normalized weight falls at or below it.
	minTopicWeight = 0.1
	// abandonThreshold is how many quick abandonments exclude a tag.
	abandonThreshold = 3
	// maxEngagement is the per-session engagement ceiling.
	maxEngagement = 8.0
)

// SessionStore provides reading-session history. Implemented by the
// behavioral-tracking collaborator.
type SessionStore interface {
	SessionsSince(ctx context.Context, userID string, since time.Time) ([]core.ReadingSession, error)
}

// ProfileStore persists preference profiles with upsert semantics.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*core.UserPreferenceProfile, error)
	UpsertProfile(ctx context.Context, profile core.UserPreferenceProfile) error
}

// Learner recomputes user preference profiles.
type Learner struct {
	sessions SessionStore
	profiles ProfileStore

	// userLocks serializes concurrent recomputation for the same user.
	userLocks sync.Map
}

// NewLearner creates a learner over the given stores.
func NewLearner(sessions SessionStore, profiles ProfileStore) *Learner {
	return &Learner{sessions: sessions, profiles: profiles}
}

// UpdateUserPreferences recomputes and upserts the profile for one user from
// the last 30 days of sessions. An empty history is a silent no-op.
// Concurrent calls for the same user are serialized; different users proceed
// independently.
func (l *Learner) UpdateUserPreferences(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user ID is required")
	}

	mu, _ := l.userLocks.LoadOrStore(userID, &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	defer lock.Unlock()

	since := time.Now().Add(-HistoryWindow)
	sessions, err := l.sessions.SessionsSince(ctx, userID, since)
	if err != nil {
		return fmt.Errorf("failed to load sessions for user %s: %w", userID, err)
	}
	if len(sessions) == 0 {
		logger.Debug("No session history, skipping preference update", map[string]interface{}{
			"user_id": userID,
		})
		return nil
	}

	existing, err := l.profiles.GetProfile(ctx, userID)
	if err != nil {
		logger.Warn("Could not load existing profile, treating as first computation", map[string]interface{}{
			"user_id": userID,
			"error":   err.Error(),
		})
		existing = nil
	}

	profile := BuildProfile(userID, sessions)
	if err := l.profiles.UpsertProfile(ctx, profile); err != nil {
		return fmt.Errorf("failed to upsert profile for user %s: %w", userID, err)
	}

	logger.Info("Updated user preference profile", map[string]interface{}{
		"user_id":     userID,
		"sessions":    len(sessions),
		"topics":      len(profile.TopicWeights),
		"first_build": existing == nil,
	})
	return nil
}

// BuildProfile derives a profile from a non-empty session slice. Pure; safe
// to call directly in tests.
func BuildProfile(userID string, sessions []core.ReadingSession) core.UserPreferenceProfile {
	raw := make(map[string]float64)
	abandons := make(map[string]int)
	categories := make(map[string]struct{})

	totalDwell := 0.0
	completed := 0

	for _, s := range sessions {
		engagement := EngagementScore(s)

		labels := make([]string, 0, len(s.Tags)+1)
		labels = append(labels, s.Tags...)
		if s.Category != "" {
			labels = append(labels, s.Category)
			categories[s.Category] = struct{}{}
		}
		for _, label := range labels {
			raw[label] += engagement
		}

		if isAbandoned(s) {
			for _, tag := range s.Tags {
				abandons[tag]++
			}
		}

		totalDwell += s.DwellTime
		if s.IsCompleted {
			completed++
		}
	}

	avgDwell := totalDwell / float64(len(sessions))
	completionRate := float64(completed) / float64(len(sessions))

	return core.UserPreferenceProfile{
		UserID:          userID,
		TopicWeights:    normalizeWeights(raw),
		PreferredDepth:  inferDepth(avgDwell, completionRate),
		PreferredLength: inferLength(avgDwell, completionRate),
		ExcludedTags:    excludedTags(abandons),
		AvgDwellTime:    avgDwell,
		CompletionRate:  completionRate,
		DiversityScore:  diversityScore(len(categories)),
		UpdatedAt:       time.Now(),
	}
}

// EngagementScore rates one session 0-8: dwell time up to 2 points (linear,
// capped at 120s), scroll depth up to 2, completion +2, star +1, rating of 4
// or 5 +1.
func EngagementScore(s core.ReadingSession) float64 {
	e := 0.0

	dwell := s.DwellTime / 120.0 * 2.0
	if dwell > 2 {
		dwell = 2
	}
	if dwell > 0 {
		e += dwell
	}

	e += score.Clamp01(s.ScrollDepth) * 2.0

	if s.IsCompleted {
		e += 2
	}
	if s.IsStarred {
		e += 1
	}
	if s.Rating >= 4 {
		e += 1
	}

	if e > maxEngagement {
		e = maxEngagement
	}
	return e
}

// isAbandoned reports whether a session looks like an immediate bounce.
func isAbandoned(s core.ReadingSession) bool {
	return s.DwellTime < 10 && s.ScrollDepth < 0.2
}

// normalizeWeights divides by the max accumulated score and keeps topics
// whose share exceeds the floor.
func normalizeWeights(raw map[string]float64) map[string]float64 {
	max := 0.0
	for _, v := range raw {
		if v > max {
			max = v
		}
	}

	weights := make(map[string]float64)
	if max <= 0 {
		return weights
	}
	for tag, v := range raw {
		w := score.Clamp01(v / max)
		if w > minTopicWeight {
			weights[tag] = w
		}
	}
	return weights
}

func excludedTags(abandons map[string]int) []string {
	var out []string
	for tag, n := range abandons {
		if n >= abandonThreshold {
			out = append(out, tag)
		}
	}
	return out
}

func inferDepth(avgDwell, completionRate float64) core.DepthPreference {
	switch {
	case completionRate > 0.7 && avgDwell > 180:
		return core.DepthDeep
	case avgDwell < 60:
		return core.DepthLight
	default:
		return core.DepthMedium
	}
}

func inferLength(avgDwell, completionRate float64) core.LengthPreference {
	switch {
	case avgDwell > 240 && completionRate > 0.5:
		return core.LengthLong
	case avgDwell < 45:
		return core.LengthShort
	default:
		return core.LengthMedium
	}
}

// diversityScore normalizes distinct-category count, saturating at 10.
func diversityScore(categories int) float64 {
	return score.Clamp01(float64(categories) / 10.0)
}
