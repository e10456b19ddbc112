package analyze

import (
	"fmt"
	"strings"

	"google.golang.org/genai"

	"distill/internal/core"
)

// segmentResponse is the typed JSON contract for one per-segment model call.
// Parse failures fall back to a neutral default rather than failing the run.
type segmentResponse struct {
	KeyPoints        []string `json:"key_points"`
	TechnicalDetails []string `json:"technical_details"`
	Sentiment        string   `json:"sentiment"`
	Importance       float64  `json:"importance"`
	Entities         []string `json:"entities"`
}

// summaryResponse is the typed JSON contract for the article-level reduce call.
type summaryResponse struct {
	OneLineSummary string `json:"one_line_summary"`
	Summary        string `json:"summary"`
	MainPoints     []struct {
		Point       string  `json:"point"`
		Explanation string  `json:"explanation"`
		Importance  float64 `json:"importance"`
	} `json:"main_points"`
	KeyQuotes []struct {
		Quote        string `json:"quote"`
		Significance string `json:"significance"`
	} `json:"key_quotes"`
	Domain      string   `json:"domain"`
	Subcategory string   `json:"subcategory"`
	Tags        []string `json:"tags"`
}

// buildSegmentPrompt creates the per-segment analysis prompt.
func buildSegmentPrompt(title string, seg core.Segment) string {
	return fmt.Sprintf(`Analyze the following segment of the article "%s".

Segment type: %s

Segment content:
---
%s
---

Extract:
1. KEY POINTS: the 2-4 most important points made in this segment
2. TECHNICAL DETAILS: specific technologies, methods, numbers, or APIs mentioned (empty if none)
3. SENTIMENT: the overall tone of this segment (positive, neutral, or negative)
4. IMPORTANCE: how central this segment is to the article's argument, 0.0 to 1.0
5. ENTITIES: named companies, products, people, or projects mentioned (empty if none)`,
		title, seg.Type, seg.Content)
}

// buildSegmentSchema defines the JSON schema for the per-segment response.
func buildSegmentSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"key_points": {
				Type:        genai.TypeArray,
				Description: "2-4 most important points in this segment",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
			"technical_details": {
				Type:        genai.TypeArray,
				Description: "Specific technologies, methods, or metrics mentioned",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
			"sentiment": {
				Type:        genai.TypeString,
				Description: "positive, neutral, or negative",
			},
			"importance": {
				Type:        genai.TypeNumber,
				Description: "Centrality of this segment to the article, 0.0-1.0",
			},
			"entities": {
				Type:        genai.TypeArray,
				Description: "Named companies, products, people, or projects",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"key_points", "sentiment", "importance"},
	}
}

// buildSummaryPrompt creates the reduce-phase prompt from the most important
// segment analyses.
func buildSummaryPrompt(title string, topSegments []segmentDigest) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Synthesize an article-level analysis of \"%s\" from its most important segments.\n\n", title))
	for i, d := range topSegments {
		sb.WriteString(fmt.Sprintf("## Segment %d (importance %.2f)\n", i+1, d.analysis.Importance))
		for _, p := range d.analysis.KeyPoints {
			sb.WriteString(fmt.Sprintf("- %s\n", p))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(`Produce:
1. ONE LINE SUMMARY: a single sentence capturing the article's core claim
2. SUMMARY: a 3-5 sentence summary
3. MAIN POINTS: 3-5 ranked takeaways, each with a one-sentence explanation and an importance 0.0-1.0
4. KEY QUOTES: up to 3 notable quotes with their significance (empty if none stand out)
5. DOMAIN and SUBCATEGORY: the article's subject area
6. TAGS: up to 10 short topical tags`)
	return sb.String()
}

// buildSummarySchema defines the JSON schema for the reduce-phase response.
func buildSummarySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"one_line_summary": {
				Type:        genai.TypeString,
				Description: "Single sentence capturing the core claim",
			},
			"summary": {
				Type:        genai.TypeString,
				Description: "3-5 sentence summary",
			},
			"main_points": {
				Type:        genai.TypeArray,
				Description: "3-5 ranked takeaways",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"point":       {Type: genai.TypeString},
						"explanation": {Type: genai.TypeString},
						"importance":  {Type: genai.TypeNumber},
					},
				},
			},
			"key_quotes": {
				Type:        genai.TypeArray,
				Description: "Up to 3 notable quotes",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"quote":        {Type: genai.TypeString},
						"significance": {Type: genai.TypeString},
					},
				},
			},
			"domain":      {Type: genai.TypeString},
			"subcategory": {Type: genai.TypeString},
			"tags": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
		},
		Required: []string{"one_line_summary", "summary", "main_points", "domain", "tags"},
	}
}
