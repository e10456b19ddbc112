package segment

import (
	"fmt"
	"strings"
	"testing"

	"distill/internal/core"
)

func TestTokenizeParagraphsAndFences(t *testing.T) {
	content := "# Title\n\nFirst paragraph.\n\n```go\nfunc main() {}\n```\n\n> A quote\n\nLast paragraph."

	blocks := Tokenize(content)
	if len(blocks) != 5 {
		t.Fatalf("Expected 5 blocks, got %d", len(blocks))
	}

	wantTypes := []core.SegmentType{
		core.SegmentHeading,
		core.SegmentText,
		core.SegmentCode,
		core.SegmentQuote,
		core.SegmentText,
	}
	for i, want := range wantTypes {
		if blocks[i].Type != want {
			t.Errorf("Block %d type = %q, want %q", i, blocks[i].Type, want)
		}
	}
}

func TestTokenizeUnterminatedFence(t *testing.T) {
	blocks := Tokenize("Intro.\n\n```python\nprint('hi')")

	if len(blocks) != 2 {
		t.Fatalf("Expected 2 blocks, got %d", len(blocks))
	}
	if blocks[1].Type != core.SegmentCode {
		t.Errorf("Unterminated fence tagged %q, want code", blocks[1].Type)
	}
}

func TestTokenizeFenceContentNotSplit(t *testing.T) {
	// Blank lines inside a fence must not split the block.
	content := "```\nline one\n\nline two\n```"
	blocks := Tokenize(content)

	if len(blocks) != 1 {
		t.Fatalf("Expected 1 block, got %d", len(blocks))
	}
	if !strings.Contains(blocks[0].Content, "line one") || !strings.Contains(blocks[0].Content, "line two") {
		t.Error("Fence content was split across blocks")
	}
}

func TestSplitEmptyContent(t *testing.T) {
	if segments := Split("", DefaultOptions()); segments != nil {
		t.Errorf("Expected nil segments for empty content, got %d", len(segments))
	}
}

func TestSplitSingleSegment(t *testing.T) {
	segments := Split("Short paragraph one.\n\nShort paragraph two.", DefaultOptions())

	if len(segments) != 1 {
		t.Fatalf("Expected 1 segment, got %d", len(segments))
	}
	if segments[0].StartIndex != 0 || segments[0].EndIndex != 1 {
		t.Errorf("Segment covers blocks [%d,%d], want [0,1]", segments[0].StartIndex, segments[0].EndIndex)
	}
	if segments[0].Type != core.SegmentText {
		t.Errorf("Segment type = %q, want text", segments[0].Type)
	}
}

// Block-range round-trip: every block index appears in some segment's
// [StartIndex, EndIndex] range with no gaps, so no block is dropped.
func TestSplitCoversEveryBlock(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 40; i++ {
		fmt.Fprintf(&sb, "Paragraph %d with enough words to carry a little bit of weight in the size budget.\n\n", i)
	}

	opts := Options{SegmentSize: 500, MaxOverlap: 3}
	blocks := Tokenize(sb.String())
	segments := Split(sb.String(), opts)

	if len(segments) < 2 {
		t.Fatalf("Expected multiple segments, got %d", len(segments))
	}

	covered := make([]bool, len(blocks))
	for _, seg := range segments {
		if seg.StartIndex < 0 || seg.EndIndex >= len(blocks) || seg.StartIndex > seg.EndIndex {
			t.Fatalf("Segment range [%d,%d] out of bounds for %d blocks", seg.StartIndex, seg.EndIndex, len(blocks))
		}
		for i := seg.StartIndex; i <= seg.EndIndex; i++ {
			covered[i] = true
		}
	}
	for i, ok := range covered {
		if !ok {
			t.Errorf("Block %d not covered by any segment", i)
		}
	}
}

func TestSplitCarriesOverlap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "Paragraph number %d is repeated filler text for the overlap test case.\n\n", i)
	}

	opts := Options{SegmentSize: 400, MaxOverlap: 3}
	segments := Split(sb.String(), opts)
	if len(segments) < 2 {
		t.Fatalf("Expected multiple segments, got %d", len(segments))
	}

	for i := 1; i < len(segments); i++ {
		prev, cur := segments[i-1], segments[i]
		if cur.StartIndex > prev.EndIndex+1 {
			t.Errorf("Gap between segments %d and %d: [%d,%d] then [%d,%d]",
				i-1, i, prev.StartIndex, prev.EndIndex, cur.StartIndex, cur.EndIndex)
		}
		// Overlap never exceeds the configured cap.
		if overlap := prev.EndIndex - cur.StartIndex + 1; overlap > opts.MaxOverlap {
			t.Errorf("Overlap of %d blocks exceeds cap %d", overlap, opts.MaxOverlap)
		}
	}
}

func TestSplitLongArticleWithCode(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&sb, "Section %d discusses the architecture in enough detail to fill out a full paragraph of prose about the design choices involved. %s\n\n",
			i, strings.Repeat("The tradeoffs between throughput and latency come up repeatedly in this part of the system. ", 3))
		if i%20 == 10 {
			sb.WriteString("```go\nfunc handler(w http.ResponseWriter, r *http.Request) {\n\tw.WriteHeader(http.StatusOK)\n}\n```\n\n")
		}
	}
	content := sb.String()
	if len(content) < 20000 {
		t.Fatalf("Fixture too short: %d chars", len(content))
	}

	segments := Split(content, DefaultOptions())
	if len(segments) < 3 {
		t.Fatalf("Expected at least 3 segments for a 20k-char article, got %d", len(segments))
	}

	hasCode := false
	for _, seg := range segments {
		if seg.Type == core.SegmentCode {
			hasCode = true
			break
		}
	}
	if !hasCode {
		t.Error("Expected at least one code-typed segment")
	}
}

func TestSegmentIDsAreUnique(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 30; i++ {
		fmt.Fprintf(&sb, "Paragraph %d carries several words of meaningful filler for uniqueness checks.\n\n", i)
	}

	segments := Split(sb.String(), Options{SegmentSize: 300, MaxOverlap: 2})
	seen := make(map[string]bool)
	for _, seg := range segments {
		if seg.ID == "" {
			t.Fatal("Segment with empty ID")
		}
		if seen[seg.ID] {
			t.Fatalf("Duplicate segment ID %q", seg.ID)
		}
		seen[seg.ID] = true
	}
}
