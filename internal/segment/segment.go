// Package segment splits long article text into overlapping semantic
// segments, the unit of parallel analysis. Blocks are never cut mid-way:
// a trailing overlap of whole blocks carries context across boundaries
// instead of hard character cuts.
package segment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"distill/internal/core"
)

// Options configures the segmenter.
type Options struct {
	SegmentSize int // character budget per segment
	MaxOverlap  int // cap on trailing blocks carried into the next segment
}

// DefaultOptions returns the segmenter defaults.
func DefaultOptions() Options {
	return Options{
		SegmentSize: 2000,
		MaxOverlap:  3,
	}
}

// Block is one block-level unit of the document: a paragraph, fenced code
// block, quote, or heading.
type Block struct {
	Content string
	Type    core.SegmentType
}

// Split tokenizes content into blocks and greedily accumulates them into
// segments under the size budget, carrying roughly the trailing third of each
// closed segment (capped at MaxOverlap blocks) into the next one.
func Split(content string, opts Options) []core.Segment {
	if opts.SegmentSize <= 0 {
		opts.SegmentSize = DefaultOptions().SegmentSize
	}
	if opts.MaxOverlap <= 0 {
		opts.MaxOverlap = DefaultOptions().MaxOverlap
	}

	blocks := Tokenize(content)
	if len(blocks) == 0 {
		return nil
	}

	var segments []core.Segment
	var current []Block
	currentSize := 0
	startIdx := 0

	flush := func(endIdx int) {
		if len(current) == 0 {
			return
		}
		segments = append(segments, buildSegment(current, startIdx, endIdx))
	}

	for i, block := range blocks {
		blockLen := len(block.Content)
		if currentSize > 0 && currentSize+blockLen > opts.SegmentSize {
			flush(i - 1)

			// Retain the trailing third of the closed segment as overlap.
			overlap := len(current) / 3
			if overlap > opts.MaxOverlap {
				overlap = opts.MaxOverlap
			}
			if overlap > 0 {
				carried := make([]Block, overlap)
				copy(carried, current[len(current)-overlap:])
				current = carried
				currentSize = 0
				for _, b := range current {
					currentSize += len(b.Content)
				}
				startIdx = i - overlap
			} else {
				current = nil
				currentSize = 0
				startIdx = i
			}
		}
		current = append(current, block)
		currentSize += blockLen
	}
	flush(len(blocks) - 1)

	return segments
}

// Tokenize splits the document into block-level units. Fenced code blocks are
// kept atomic; the remainder splits on blank lines.
func Tokenize(content string) []Block {
	var blocks []Block
	lines := strings.Split(content, "\n")

	var para []string
	inFence := false
	var fence []string

	flushPara := func() {
		text := strings.TrimSpace(strings.Join(para, "\n"))
		para = nil
		if text == "" {
			return
		}
		blocks = append(blocks, Block{Content: text, Type: blockType(text)})
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inFence {
				fence = append(fence, line)
				blocks = append(blocks, Block{
					Content: strings.Join(fence, "\n"),
					Type:    core.SegmentCode,
				})
				fence = nil
				inFence = false
			} else {
				flushPara()
				inFence = true
				fence = []string{line}
			}
			continue
		}
		if inFence {
			fence = append(fence, line)
			continue
		}
		if trimmed == "" {
			flushPara()
			continue
		}
		para = append(para, line)
	}
	// An unterminated fence is still a code block.
	if inFence {
		blocks = append(blocks, Block{
			Content: strings.Join(fence, "\n"),
			Type:    core.SegmentCode,
		})
	}
	flushPara()

	return blocks
}

// blockType tags a non-fence block by its leading marker.
func blockType(text string) core.SegmentType {
	switch {
	case strings.HasPrefix(text, ">"):
		return core.SegmentQuote
	case strings.HasPrefix(text, "#"):
		return core.SegmentHeading
	default:
		return core.SegmentText
	}
}

// buildSegment joins the accumulated blocks and tags the segment type by
// scanning for code, quote, and heading blocks in that priority order.
func buildSegment(blocks []Block, startIdx, endIdx int) core.Segment {
	parts := make([]string, 0, len(blocks))
	segType := core.SegmentText
	for _, b := range blocks {
		parts = append(parts, b.Content)
		segType = higherPriority(segType, b.Type)
	}
	return core.Segment{
		ID:         fmt.Sprintf("seg-%s", uuid.NewString()[:8]),
		Content:    strings.Join(parts, "\n\n"),
		StartIndex: startIdx,
		EndIndex:   endIdx,
		Type:       segType,
	}
}

var typePriority = map[core.SegmentType]int{
	core.SegmentCode:    3,
	core.SegmentQuote:   2,
	core.SegmentHeading: 1,
	core.SegmentText:    0,
}

func higherPriority(a, b core.SegmentType) core.SegmentType {
	if typePriority[b] > typePriority[a] {
		return b
	}
	return a
}
