package reflection

import (
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"distill/internal/core"
)

// improveResponse is the typed JSON contract for the improvement call. Only
// the fields a critique can change are present.
type improveResponse struct {
	OneLineSummary string `json:"one_line_summary"`
	Summary        string `json:"summary"`
	MainPoints     []struct {
		Point       string  `json:"point"`
		Explanation string  `json:"explanation"`
		Importance  float64 `json:"importance"`
	} `json:"main_points"`
	Tags    []string `json:"tags"`
	Domain  string   `json:"domain"`
	AIScore float64  `json:"ai_score"`
}

// buildCritiquePrompt creates the critique prompt from a content preview and
// the marshaled analysis.
func buildCritiquePrompt(content string, analysis core.ArticleAnalysisResult) string {
	encoded, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		encoded = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Critique the following article analysis against the source text.\n\n")
	sb.WriteString("**ARTICLE (may be truncated):**\n")
	sb.WriteString(contentPreview(content))
	sb.WriteString("\n\n**ANALYSIS TO CRITIQUE:**\n")
	sb.Write(encoded)
	sb.WriteString("\n\n**RATE 0-10 ON EACH DIMENSION:**\n")
	sb.WriteString("1. COMPREHENSIVENESS: does the analysis cover the article's main arguments?\n")
	sb.WriteString("2. ACCURACY: does every claim in the analysis appear in the article?\n")
	sb.WriteString("3. DEPTH: does it go beyond surface restatement?\n")
	sb.WriteString("4. CONSISTENCY: do summary, main points, and tags agree with each other?\n")
	sb.WriteString("5. OBJECTIVITY: is it free of editorializing not present in the source?\n\n")
	sb.WriteString("Then report the overall quality (0-10), concrete issues, concrete suggestions, ")
	sb.WriteString("and whether the analysis needs refinement.")
	return sb.String()
}

// buildCritiqueSchema defines the JSON schema for the critique response. It
// matches core.ReflectionResult.
func buildCritiqueSchema() *genai.Schema {
	dimension := &genai.Schema{Type: genai.TypeNumber, Description: "0-10"}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"quality": {
				Type:        genai.TypeNumber,
				Description: "Overall analysis quality, 0-10",
			},
			"issues": {
				Type:        genai.TypeArray,
				Description: "Concrete problems found",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
			"suggestions": {
				Type:        genai.TypeArray,
				Description: "Concrete improvements to make",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
			"needs_refinement": {
				Type:        genai.TypeBoolean,
				Description: "Whether an improvement pass is warranted",
			},
			"scores": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"comprehensiveness": dimension,
					"accuracy":          dimension,
					"depth":             dimension,
					"consistency":       dimension,
					"objectivity":       dimension,
				},
			},
		},
		Required: []string{"quality", "needs_refinement"},
	}
}

// buildImprovePrompt creates the improvement prompt from the critique.
func buildImprovePrompt(content string, analysis core.ArticleAnalysisResult, critique core.ReflectionResult) string {
	encoded, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		encoded = []byte("{}")
	}

	var sb strings.Builder
	sb.WriteString("Improve the following article analysis using the critique below.\n\n")
	sb.WriteString("**ARTICLE (may be truncated):**\n")
	sb.WriteString(contentPreview(content))
	sb.WriteString("\n\n**CURRENT ANALYSIS:**\n")
	sb.Write(encoded)
	sb.WriteString(fmt.Sprintf("\n\n**CRITIQUE (quality %.1f):**\n", critique.Quality))
	for _, issue := range critique.Issues {
		sb.WriteString(fmt.Sprintf("- Issue: %s\n", issue))
	}
	for _, sug := range critique.Suggestions {
		sb.WriteString(fmt.Sprintf("- Suggestion: %s\n", sug))
	}
	sb.WriteString("\nRewrite the one-line summary, summary, main points, and tags to address ")
	sb.WriteString("every issue. Keep claims grounded in the article text.")
	return sb.String()
}

// buildImproveSchema defines the JSON schema for the improvement response.
func buildImproveSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"one_line_summary": {Type: genai.TypeString},
			"summary":          {Type: genai.TypeString},
			"main_points": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"point":       {Type: genai.TypeString},
						"explanation": {Type: genai.TypeString},
						"importance":  {Type: genai.TypeNumber},
					},
				},
			},
			"tags": {
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			},
			"domain": {Type: genai.TypeString},
			"ai_score": {
				Type:        genai.TypeNumber,
				Description: "Revised overall score, 1-10",
			},
		},
		Required: []string{"one_line_summary", "summary", "main_points"},
	}
}
