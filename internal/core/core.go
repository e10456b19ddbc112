package core

import "time"

// Article represents the raw input handed to the analysis pipeline by the
// feed-ingestion collaborator. The pipeline never fetches content itself.
type Article struct {
	Content string `json:"content"`          // Full article text (may contain markdown)
	Title   string `json:"title"`            // Article title
	Author  string `json:"author,omitempty"` // Optional author name
}

// SegmentType classifies the dominant block kind inside a segment.
type SegmentType string

const (
	SegmentText    SegmentType = "text"
	SegmentCode    SegmentType = "code"
	SegmentQuote   SegmentType = "quote"
	SegmentHeading SegmentType = "heading"
)

// Segment is a contiguous, semantically-bounded chunk of an article used as
// the unit of parallel analysis. Immutable once created; owned by one run.
type Segment struct {
	ID         string      `json:"id"`          // Unique identifier within the analysis run
	Content    string      `json:"content"`     // Segment text, including any carried overlap
	StartIndex int         `json:"start_index"` // Index of the first block in this segment
	EndIndex   int         `json:"end_index"`   // Index of the last block in this segment
	Type       SegmentType `json:"type"`        // Dominant block kind
}

// Sentiment is the per-segment tone classification.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// SegmentAnalysis is the model's per-segment output. Transient; consumed only
// by aggregation.
type SegmentAnalysis struct {
	SegmentID        string    `json:"segment_id"`
	KeyPoints        []string  `json:"key_points"`
	TechnicalDetails []string  `json:"technical_details,omitempty"`
	Sentiment        Sentiment `json:"sentiment"`
	Importance       float64   `json:"importance"` // [0,1]
	Entities         []string  `json:"entities,omitempty"`
}

// MainPoint is one ranked takeaway in the article-level result.
type MainPoint struct {
	Point       string  `json:"point"`
	Explanation string  `json:"explanation"`
	Importance  float64 `json:"importance"` // [0,1]
}

// KeyQuote is a notable quote with its significance.
type KeyQuote struct {
	Quote        string `json:"quote"`
	Significance string `json:"significance"`
}

// ScoreDimensions holds the objective per-dimension scores, each in [1,10].
type ScoreDimensions struct {
	Depth        float64 `json:"depth"`
	Quality      float64 `json:"quality"`
	Practicality float64 `json:"practicality"`
	Novelty      float64 `json:"novelty"`
}

// ArticleAnalysisResult is the structured artifact produced once per article
// per analysis request. Persisted by an external store; may be overwritten by
// a later reflection round.
type ArticleAnalysisResult struct {
	OneLineSummary   string          `json:"one_line_summary"`
	Summary          string          `json:"summary"`
	MainPoints       []MainPoint     `json:"main_points"`
	KeyQuotes        []KeyQuote      `json:"key_quotes,omitempty"`
	Domain           string          `json:"domain"`
	Subcategory      string          `json:"subcategory"`
	Tags             []string        `json:"tags"`
	AIScore          float64         `json:"ai_score"` // [1,10]
	ScoreDimensions  ScoreDimensions `json:"score_dimensions"`
	AnalysisModel    string          `json:"analysis_model"`
	ProcessingTimeMs int64           `json:"processing_time_ms"`
	ReflectionRounds int             `json:"reflection_rounds"`
}

// ReflectionScores holds the five rubric dimensions a critique call rates,
// each in [0,10].
type ReflectionScores struct {
	Comprehensiveness float64 `json:"comprehensiveness"`
	Accuracy          float64 `json:"accuracy"`
	Depth             float64 `json:"depth"`
	Consistency       float64 `json:"consistency"`
	Objectivity       float64 `json:"objectivity"`
}

// ReflectionResult is one round of structured critique. Transient; discarded
// after use except for the round counter on the analysis result.
type ReflectionResult struct {
	Quality         float64           `json:"quality"` // [0,10]
	Issues          []string          `json:"issues"`
	Suggestions     []string          `json:"suggestions"`
	NeedsRefinement bool              `json:"needs_refinement"`
	Scores          *ReflectionScores `json:"scores,omitempty"`
}

// ModelTierConfig describes one language-model backend registry entry.
type ModelTierConfig struct {
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	MaxTokens       int     `json:"max_tokens"`
	CostPer1kTokens float64 `json:"cost_per_1k_tokens"` // USD, input+output combined
	Quality         float64 `json:"quality"`            // [1,10]
	Speed           float64 `json:"speed"`              // [1,10]
}

// DepthPreference is a user's inferred appetite for analytical depth.
type DepthPreference string

const (
	DepthDeep   DepthPreference = "deep"
	DepthMedium DepthPreference = "medium"
	DepthLight  DepthPreference = "light"
)

// LengthPreference is a user's inferred appetite for article length.
type LengthPreference string

const (
	LengthShort  LengthPreference = "short"
	LengthMedium LengthPreference = "medium"
	LengthLong   LengthPreference = "long"
)

// UserPreferenceProfile is the per-user behavior profile recomputed
// periodically from reading-session history. Upsert semantics.
type UserPreferenceProfile struct {
	UserID          string             `json:"user_id"`
	TopicWeights    map[string]float64 `json:"topic_weights"` // tag -> [0,1]
	PreferredDepth  DepthPreference    `json:"preferred_depth"`
	PreferredLength LengthPreference   `json:"preferred_length"`
	ExcludedTags    []string           `json:"excluded_tags"`
	AvgDwellTime    float64            `json:"avg_dwell_time"` // seconds
	CompletionRate  float64            `json:"completion_rate"` // [0,1]
	DiversityScore  float64            `json:"diversity_score"` // [0,1]
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ReadingSession is one behavioral record from the tracking collaborator.
type ReadingSession struct {
	UserID      string    `json:"user_id"`
	EntryID     string    `json:"entry_id"`
	DwellTime   float64   `json:"dwell_time"`   // seconds spent on the article
	ScrollDepth float64   `json:"scroll_depth"` // [0,1]
	IsCompleted bool      `json:"is_completed"`
	IsStarred   bool      `json:"is_starred"`
	Rating      int       `json:"rating,omitempty"` // 1-5, 0 if unrated
	Tags        []string  `json:"tags"`
	Category    string    `json:"category"`
	ReadAt      time.Time `json:"read_at"`
}

// RecommendedAction is the pipeline's suggested disposition for an article
// relative to one user.
type RecommendedAction string

const (
	ActionReadNow   RecommendedAction = "read_now"
	ActionReadLater RecommendedAction = "read_later"
	ActionArchive   RecommendedAction = "archive"
	ActionSkip      RecommendedAction = "skip"
)

// PersonalDimensions extends the objective dimensions with a per-user
// relevance score, each in [1,10].
type PersonalDimensions struct {
	Depth        float64 `json:"depth"`
	Quality      float64 `json:"quality"`
	Practicality float64 `json:"practicality"`
	Novelty      float64 `json:"novelty"`
	Relevance    float64 `json:"relevance"`
}

// PersonalizedScore combines an analysis result with a user profile. Computed
// on demand; not persisted by the pipeline.
type PersonalizedScore struct {
	Overall           float64            `json:"overall"` // [1,10]
	Dimensions        PersonalDimensions `json:"dimensions"`
	Reasons           []string           `json:"reasons"`
	RecommendedAction RecommendedAction  `json:"recommended_action"`
	Confidence        float64            `json:"confidence"` // [0,1]
	BoostFactors      map[string]float64 `json:"boost_factors,omitempty"`
}
