package rebuild

import (
	"strings"
	"unicode"
)

// snapRadius bounds how far a cut point may move to land on a word
// boundary. Beyond it the raw proportional cut stands, even mid-word.
const snapRadius = 12

// SplitProportional divides translated text into len(weights) pieces whose
// lengths approximate the weights' proportions. Cut points are nudged to
// the nearest word boundary within a bounded radius, preferring a forward
// move, so words survive intact where the text allows it. The last piece
// absorbs any remainder; the concatenation of the pieces always equals the
// input.
func SplitProportional(text string, weights []int) []string {
	if len(weights) == 0 {
		return nil
	}
	if len(weights) == 1 {
		return []string{text}
	}

	runes := []rune(text)
	total := 0
	for _, w := range weights {
		if w < 0 {
			w = 0
		}
		total += w
	}
	if total == 0 {
		// Degenerate weights: everything lands in the first piece.
		parts := make([]string, len(weights))
		parts[0] = text
		for i := 1; i < len(parts); i++ {
			parts[i] = ""
		}
		return parts
	}

	parts := make([]string, 0, len(weights))
	start := 0
	consumed := 0
	for i := 0; i < len(weights)-1; i++ {
		consumed += weights[i]
		cut := len(runes) * consumed / total
		if cut < start {
			cut = start
		}
		if cut > len(runes) {
			cut = len(runes)
		}
		cut = snapToBoundary(runes, cut, start)
		parts = append(parts, string(runes[start:cut]))
		start = cut
	}
	parts = append(parts, string(runes[start:]))
	return parts
}

// snapToBoundary moves a cut point to a whitespace boundary. Forward wins
// on ties so leading spaces stay attached to the following piece.
func snapToBoundary(runes []rune, cut, min int) int {
	if cut <= min || cut >= len(runes) {
		return cut
	}
	if isBoundary(runes, cut) {
		return cut
	}
	for d := 1; d <= snapRadius; d++ {
		if fwd := cut + d; fwd < len(runes) && isBoundary(runes, fwd) {
			return fwd
		}
		if back := cut - d; back > min && isBoundary(runes, back) {
			return back
		}
	}
	return cut
}

// isBoundary reports whether cutting before runes[i] separates two words,
// i.e. one side of the cut is whitespace.
func isBoundary(runes []rune, i int) bool {
	return unicode.IsSpace(runes[i]) || unicode.IsSpace(runes[i-1])
}

// JoinSegments concatenates item texts with single spaces for joined
// translation, collapsing each segment's outer whitespace first.
func JoinSegments(texts []string) string {
	trimmed := make([]string, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return strings.Join(trimmed, " ")
}
