package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"distill/internal/core"
	"distill/internal/llm"
	"distill/internal/modelcfg"
)

// mockGenerator returns minimal valid JSON for segment, summary, and critique
// calls, routed by prompt content.
type mockGenerator struct {
	calls         int
	critiqueCalls int
	modelParams   []string
}

func (m *mockGenerator) GenerateText(_ context.Context, prompt string, options llm.TextGenerationOptions) (string, error) {
	m.calls++
	m.modelParams = append(m.modelParams, options.Model)

	switch {
	case strings.Contains(prompt, "Synthesize an article-level analysis"):
		return `{"one_line_summary":"One line.","summary":"A fuller summary of the article that runs long enough to look real and mentions the architecture.","main_points":[{"point":"p1","explanation":"e1","importance":0.9},{"point":"p2","explanation":"e2","importance":0.8},{"point":"p3","explanation":"e3","importance":0.7}],"key_quotes":[],"domain":"software engineering","subcategory":"systems","tags":["systems","design","architecture"]}`, nil
	case strings.Contains(prompt, "Critique the following"):
		m.critiqueCalls++
		return `{"quality":9,"issues":[],"suggestions":[],"needs_refinement":false}`, nil
	case strings.Contains(prompt, "Improve the following"):
		return "", fmt.Errorf("improve should not run when quality is met")
	default:
		resp := map[string]interface{}{
			"key_points":        []string{"point"},
			"technical_details": []string{"Go"},
			"sentiment":         "positive",
			"importance":        0.8,
		}
		data, _ := json.Marshal(resp)
		return string(data), nil
	}
}

func articleFixture() core.Article {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Paragraph %d describes the design of the system in a fair amount of words so the segmenter has something to chew on.\n\n", i)
	}
	return core.Article{Content: sb.String(), Title: "System Design Notes"}
}

func TestRunWithoutGenerator(t *testing.T) {
	p := New(nil, modelcfg.NewRegistry(), DefaultOptions())

	_, err := p.Run(context.Background(), articleFixture())
	if !errors.Is(err, ErrAnalysisUnavailable) {
		t.Fatalf("Expected ErrAnalysisUnavailable, got %v", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	mock := &mockGenerator{}
	p := New(mock, modelcfg.NewRegistry(), DefaultOptions())

	result, err := p.Run(context.Background(), articleFixture())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Language.Language != "en" {
		t.Errorf("Language = %q, want en", result.Language.Language)
	}
	if result.ModelUsed == "" {
		t.Error("Expected the selected model to be reported")
	}
	if result.Analysis.OneLineSummary == "" {
		t.Error("Expected a populated analysis")
	}
	if result.Analysis.AIScore < 1 || result.Analysis.AIScore > 10 {
		t.Errorf("AIScore %v out of bounds", result.Analysis.AIScore)
	}
}

func TestRunHonorsModelOverride(t *testing.T) {
	mock := &mockGenerator{}
	opts := DefaultOptions()
	opts.AnalysisModel = "custom-model"
	opts.EnableReflection = false
	p := New(mock, modelcfg.NewRegistry(), opts)

	result, err := p.Run(context.Background(), articleFixture())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.ModelUsed != "custom-model" {
		t.Errorf("ModelUsed = %q, want override", result.ModelUsed)
	}
	for _, m := range mock.modelParams {
		if m != "custom-model" {
			t.Errorf("Call used model %q, want override", m)
		}
	}
}

func TestRunZeroReflectionRoundsSkipsReflection(t *testing.T) {
	mock := &mockGenerator{}
	opts := DefaultOptions()
	opts.MaxReflectionRounds = 0
	// Force QuickCheck below threshold so only the round cap can stop reflection.
	opts.QualityThreshold = 11
	p := New(mock, modelcfg.NewRegistry(), opts)

	result, err := p.Run(context.Background(), articleFixture())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Analysis.ReflectionRounds != 0 {
		t.Errorf("ReflectionRounds = %d, want 0 with a zero round cap", result.Analysis.ReflectionRounds)
	}
	if mock.critiqueCalls != 0 {
		t.Errorf("Critique called %d times, want 0", mock.critiqueCalls)
	}
}

func TestRunThreadsSegmentOptions(t *testing.T) {
	coarse := &mockGenerator{}
	coarseOpts := DefaultOptions()
	coarseOpts.EnableReflection = false
	if _, err := New(coarse, modelcfg.NewRegistry(), coarseOpts).Run(context.Background(), articleFixture()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	fine := &mockGenerator{}
	fineOpts := DefaultOptions()
	fineOpts.EnableReflection = false
	fineOpts.SegmentOptions.SegmentSize = 300
	if _, err := New(fine, modelcfg.NewRegistry(), fineOpts).Run(context.Background(), articleFixture()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// A smaller segment budget must reach the analyzer and produce more
	// per-segment calls than the default.
	if fine.calls <= coarse.calls {
		t.Errorf("Calls with 300-char segments = %d, want more than %d with defaults", fine.calls, coarse.calls)
	}
}

func TestRunSkipsReflectionWhenDisabled(t *testing.T) {
	mock := &mockGenerator{}
	opts := DefaultOptions()
	opts.EnableReflection = false
	p := New(mock, modelcfg.NewRegistry(), opts)

	result, err := p.Run(context.Background(), articleFixture())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Analysis.ReflectionRounds != 0 {
		t.Errorf("ReflectionRounds = %d with reflection disabled", result.Analysis.ReflectionRounds)
	}
}
