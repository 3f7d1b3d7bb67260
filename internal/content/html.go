package content

import "strings"

// SegmentType marks an HTML segment as markup or text.
type SegmentType string

const (
	SegmentTag  SegmentType = "tag"
	SegmentText SegmentType = "text"
)

// HTMLSegment is one run of an HTML string, either a tag (including the
// angle brackets) or a text run between tags. TextIndex is a dense 0-based
// index into the structure's TextSegments for text runs, -1 for tags.
type HTMLSegment struct {
	Type      SegmentType
	Content   string
	TextIndex int
}

// HTMLStructure is the ordered decomposition of an HTML string into
// alternating tag/text runs. Concatenating Content over all Segments in
// order reproduces the original markup byte for byte.
type HTMLStructure struct {
	Segments     []HTMLSegment
	TextSegments []string
}

// SegmentHTML splits raw markup into tag and text runs with a single linear
// scan. Every text run is tracked, including pure whitespace, so the
// original can be reassembled exactly.
func SegmentHTML(raw string) *HTMLStructure {
	s := &HTMLStructure{}

	appendText := func(text string) {
		if text == "" {
			return
		}
		s.Segments = append(s.Segments, HTMLSegment{
			Type:      SegmentText,
			Content:   text,
			TextIndex: len(s.TextSegments),
		})
		s.TextSegments = append(s.TextSegments, text)
	}

	pos := 0
	for pos < len(raw) {
		open := strings.IndexByte(raw[pos:], '<')
		if open < 0 {
			appendText(raw[pos:])
			break
		}
		open += pos

		appendText(raw[pos:open])

		close := strings.IndexByte(raw[open:], '>')
		if close < 0 {
			// Stray '<' with no closing bracket: treat the remainder
			// as text so the concatenation invariant holds.
			appendText(raw[open:])
			break
		}
		close += open

		s.Segments = append(s.Segments, HTMLSegment{
			Type:      SegmentTag,
			Content:   raw[open : close+1],
			TextIndex: -1,
		})
		pos = close + 1
	}

	return s
}

// Concat reassembles the original markup.
func (s *HTMLStructure) Concat() string {
	var sb strings.Builder
	for _, seg := range s.Segments {
		sb.WriteString(seg.Content)
	}
	return sb.String()
}

// TranslatableLength sums the trimmed length of non-whitespace text
// segments. Whitespace-only runs never reach the translator, so they are
// excluded from size estimates.
func (s *HTMLStructure) TranslatableLength() int {
	total := 0
	for _, text := range s.TextSegments {
		total += len(strings.TrimSpace(text))
	}
	return total
}

// looksLikeHTML reports whether raw contains tag syntax. A single matched
// angle-bracket pair with a plausible tag name is enough.
func looksLikeHTML(raw string) bool {
	open := strings.IndexByte(raw, '<')
	if open < 0 {
		return false
	}
	close := strings.IndexByte(raw[open:], '>')
	if close < 1 {
		return false
	}

	inner := raw[open+1 : open+close]
	inner = strings.TrimPrefix(inner, "/")
	if inner == "" {
		return false
	}
	c := inner[0]
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '!'
}
