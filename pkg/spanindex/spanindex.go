// Package spanindex produces an addressable encoding of document text so a
// language model can cite individual units ("span 7") and the system can
// resolve those citations back to character offsets in the canonical content.
package spanindex

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
)

// Range is a half-open character range [Start, End) into canonical content.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var openTag = regexp.MustCompile(`<span(\d+)>`)

// Encode splits text into ordered line units and wraps unit i as
// <span{i}>{escaped}</span{i}>, 0-based and contiguous. The encoded form is
// stored alongside the canonical text, never instead of it.
func Encode(text string) string {
	units := strings.Split(text, "\n")
	wrapped := make([]string, len(units))
	for i, unit := range units {
		wrapped[i] = fmt.Sprintf("<span%d>%s</span%d>", i, html.EscapeString(unit), i)
	}
	return strings.Join(wrapped, "\n")
}

// Inner parses span-wrapped text into an id → inner-text mapping. Tags with a
// missing or mismatched closing tag are skipped. Empty input yields an empty map.
func Inner(spanText string) map[int]string {
	inner := make(map[int]string)
	for _, loc := range openTag.FindAllStringSubmatchIndex(spanText, -1) {
		id, err := strconv.Atoi(spanText[loc[2]:loc[3]])
		if err != nil {
			continue
		}

		rest := spanText[loc[1]:]
		closing := fmt.Sprintf("</span%d>", id)
		end := strings.Index(rest, closing)
		if end < 0 {
			continue
		}

		inner[id] = html.UnescapeString(rest[:end])
	}
	return inner
}

// Resolve maps span ids back to character ranges in content. Each id's inner
// text is located at its first occurrence in content; ids that cannot be
// resolved (unknown id, altered text) are dropped silently, so the result may
// be shorter than the request. Duplicate inner text across spans resolves to
// the first match only — a known limitation of first-occurrence search.
func Resolve(content, spanText string, ids []int) []Range {
	inner := Inner(spanText)

	ranges := make([]Range, 0, len(ids))
	for _, id := range ids {
		text, ok := inner[id]
		if !ok {
			continue
		}

		start := strings.Index(content, text)
		if start < 0 {
			continue
		}

		ranges = append(ranges, Range{Start: start, End: start + len(text)})
	}
	return ranges
}
