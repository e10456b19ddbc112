package core

import (
	"encoding/json"
	"testing"
)

func TestSegmentTypeValues(t *testing.T) {
	types := []SegmentType{SegmentText, SegmentCode, SegmentQuote, SegmentHeading}
	want := []string{"text", "code", "quote", "heading"}
	for i, st := range types {
		if string(st) != want[i] {
			t.Errorf("SegmentType %d = %q, want %q", i, st, want[i])
		}
	}
}

func TestRecommendedActionValues(t *testing.T) {
	actions := []RecommendedAction{ActionReadNow, ActionReadLater, ActionArchive, ActionSkip}
	want := []string{"read_now", "read_later", "archive", "skip"}
	for i, a := range actions {
		if string(a) != want[i] {
			t.Errorf("RecommendedAction %d = %q, want %q", i, a, want[i])
		}
	}
}

func TestAnalysisResultOmitsEmptyQuotes(t *testing.T) {
	result := ArticleAnalysisResult{
		OneLineSummary: "line",
		Summary:        "summary",
		Domain:         "general",
	}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatal(err)
	}
	// Optional slices stay out of the payload when empty.
	if string(data) == "" || json.Valid(data) == false {
		t.Fatal("Marshal produced invalid JSON")
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	if _, present := m["key_quotes"]; present {
		t.Error("Expected key_quotes to be omitted when empty")
	}
}
