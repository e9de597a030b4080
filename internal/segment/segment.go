// Package segment splits source text into a small number of named blocks
// anchored at top-level declarations.
package segment

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/model"
)

const (
	// MainCode names the single block produced when the source does not
	// split.
	MainCode = "main_code"
	// FirstSection and SecondSection name the halves of a bisected split.
	FirstSection  = "first_section"
	SecondSection = "second_section"

	// MaxBlocks is the most blocks Segment returns.
	MaxBlocks = 2

	// A pending block must exceed this many stripped characters to be
	// flushed when the next declaration starts.
	substanceThreshold = 50
	// Blocks at or below this many stripped characters are not kept as
	// blocks of their own.
	minBlockChars = 10
)

// Segmenter splits source text using a catalog's boundary patterns.
type Segmenter struct {
	catalog *lang.Catalog
}

// New returns a Segmenter backed by c.
func New(c *lang.Catalog) *Segmenter {
	return &Segmenter{catalog: c}
}

// Segment returns at most MaxBlocks blocks in source order. Every line of
// source belongs to exactly one returned block.
func (s *Segmenter) Segment(source string) []model.CodeBlock {
	lines := strings.Split(source, "\n")
	raw := s.scan(lines)

	if len(raw) > MaxBlocks {
		mid := len(raw) / 2
		return []model.CodeBlock{
			{Name: FirstSection, Lines: concat(raw[:mid])},
			{Name: SecondSection, Lines: concat(raw[mid:])},
		}
	}

	var blocks []model.CodeBlock
	for i, b := range raw {
		if stripped(b) <= minBlockChars {
			// A trivial trailing block is absorbed by its predecessor.
			if n := len(blocks); n > 0 {
				blocks[n-1].Lines = append(blocks[n-1].Lines, b...)
			}
			continue
		}
		blocks = append(blocks, model.CodeBlock{Name: fmt.Sprintf("section_%d", i+1), Lines: b})
	}

	if len(blocks) == 0 || (len(blocks) == 1 && len(blocks[0].Lines) == len(lines)) {
		return []model.CodeBlock{{Name: MainCode, Lines: lines}}
	}
	return blocks
}

// scan groups lines into raw blocks. A boundary line flushes the pending
// block only when it is substantial; otherwise the pending lines carry over
// into the block the boundary opens.
func (s *Segmenter) scan(lines []string) [][]string {
	var (
		raw [][]string
		cur []string
	)
	for _, line := range lines {
		if len(cur) > 0 && s.catalog.IsBoundary(line) && stripped(cur) > substanceThreshold {
			raw = append(raw, cur)
			cur = nil
		}
		cur = append(cur, line)
	}
	if len(cur) > 0 {
		raw = append(raw, cur)
	}
	return raw
}

func stripped(lines []string) int {
	return utf8.RuneCountInString(strings.TrimSpace(strings.Join(lines, "\n")))
}

func concat(blocks [][]string) []string {
	var out []string
	for _, b := range blocks {
		out = append(out, b...)
	}
	return out
}
