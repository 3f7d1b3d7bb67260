package content

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lingokit/lingokit/internal/pattern"
)

// ContentType classifies the input handed to the extractor.
type ContentType string

const (
	TypeHTML  ContentType = "html"
	TypeJSON  ContentType = "json"
	TypePlain ContentType = "plain"
)

// Hint optionally forces a classification instead of auto-detecting.
type Hint string

const (
	HintNone  Hint = ""
	HintHTML  Hint = "html"
	HintJSON  Hint = "json"
	HintPlain Hint = "plain"
)

// Item is one extracted translatable text segment. ID is unique within one
// extraction pass; Path is a structural locator kept for traceability only.
// Text is immutable once extracted. Origin records which extractor produced
// the item: JSON-originated text must reach the translator without marker
// substitution, so downstream stages need the provenance.
type Item struct {
	ID     string
	Path   string
	Text   string
	Origin ContentType
}

// Template is the structure left behind after extraction, isomorphic to the
// original content with every extracted text occurrence replaced by a
// {T<id>} token. Exactly one of JSON, HTML or Plain is populated, matching
// ContentType.
type Template struct {
	ContentType ContentType
	JSON        *Value
	HTML        *HTMLStructure
	Plain       string
	SchemaName  string

	// LocalePath locates the JSON field that carries the document locale;
	// reconstruction force-sets it to the target locale when one is given.
	LocalePath string
}

// Extraction is the result of decomposing one input.
type Extraction struct {
	ContentType ContentType
	Template    *Template
	Segments    []Item
}

// tokenPattern matches a full placeholder token like {T0} or {T17}.
var tokenPattern = regexp.MustCompile(`^\{T(\d+)\}$`)

// Token returns the placeholder token for an item ID.
func Token(id string) string {
	return "{T" + id + "}"
}

// ParseToken extracts the item ID from a placeholder token. The second
// return is false when s is not exactly one token.
func ParseToken(s string) (string, bool) {
	m := tokenPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Extractor decomposes raw content into a template and text segments using
// the schema registry for JSON detection.
type Extractor struct {
	registry *pattern.Registry
	dnt      map[string]bool
}

// NewExtractor creates an extractor backed by the given schema registry.
// A nil registry disables JSON classification. JSON string leaves that
// exactly equal one of dntTerms (trimmed, case-insensitive) are left in
// the template instead of being extracted: JSON text travels to the
// translator unmarked, so skipping the leaf is its only DNT protection.
func NewExtractor(registry *pattern.Registry, dntTerms ...string) *Extractor {
	e := &Extractor{registry: registry}
	if len(dntTerms) > 0 {
		e.dnt = make(map[string]bool, len(dntTerms))
		for _, term := range dntTerms {
			e.dnt[strings.ToLower(strings.TrimSpace(term))] = true
		}
	}
	return e
}

// Extract classifies raw input and decomposes it. Classification never
// fails for well-formed UTF-8: JSON parse or schema-walk failures demote
// the input to plain text.
func (e *Extractor) Extract(raw string, hint Hint) *Extraction {
	switch hint {
	case HintJSON:
		if ex, ok := e.extractJSON(raw); ok {
			return ex
		}
		return extractPlain(raw)
	case HintHTML:
		return extractHTML(raw)
	case HintPlain:
		return extractPlain(raw)
	}

	if ex, ok := e.extractJSON(raw); ok {
		return ex
	}
	if looksLikeHTML(raw) {
		return extractHTML(raw)
	}
	return extractPlain(raw)
}

func (e *Extractor) extractJSON(raw string) (*Extraction, bool) {
	if e.registry == nil {
		return nil, false
	}

	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") && !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}

	root, err := ParseValue([]byte(raw))
	if err != nil {
		return nil, false
	}

	schema, ok := e.registry.Match(root.Interface())
	if !ok {
		return nil, false
	}

	template := root.Clone()
	var items []Item

	var walk func(v *Value, path string)
	walk = func(v *Value, path string) {
		switch v.Kind {
		case KindObject:
			for _, m := range v.Members {
				walk(m.Value, pattern.JoinPath(path, m.Key))
			}
		case KindArray:
			for i, elem := range v.Array {
				walk(elem, pattern.JoinIndex(path, i))
			}
		case KindString:
			// The source-language field is output metadata, never a
			// translatable leaf.
			if path == schema.SourceLangPath {
				return
			}
			// A leaf that is exactly a do-not-translate term stays literal.
			if e.dnt[strings.ToLower(strings.TrimSpace(v.Str))] {
				return
			}
			if schema.PathMatches(path) {
				id := strconv.Itoa(len(items))
				items = append(items, Item{ID: id, Path: path, Text: v.Str, Origin: TypeJSON})
				v.Str = Token(id)
			}
		}
	}
	walk(template, "")

	return &Extraction{
		ContentType: TypeJSON,
		Template: &Template{
			ContentType: TypeJSON,
			JSON:        template,
			SchemaName:  schema.Name,
			LocalePath:  schema.SourceLangPath,
		},
		Segments: items,
	}, true
}

func extractHTML(raw string) *Extraction {
	structure := SegmentHTML(raw)

	var items []Item
	for _, seg := range structure.Segments {
		if seg.Type != SegmentText {
			continue
		}
		// Whitespace-only runs are carried by the template verbatim.
		if strings.TrimSpace(seg.Content) == "" {
			continue
		}
		id := strconv.Itoa(len(items))
		items = append(items, Item{
			ID:     id,
			Path:   fmt.Sprintf("text[%d]", seg.TextIndex),
			Text:   seg.Content,
			Origin: TypeHTML,
		})
	}

	return &Extraction{
		ContentType: TypeHTML,
		Template: &Template{
			ContentType: TypeHTML,
			HTML:        structure,
		},
		Segments: items,
	}
}

func extractPlain(raw string) *Extraction {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &Extraction{
			ContentType: TypePlain,
			Template:    &Template{ContentType: TypePlain, Plain: raw},
		}
	}

	item := Item{ID: "0", Path: "text", Text: trimmed, Origin: TypePlain}
	return &Extraction{
		ContentType: TypePlain,
		Template:    &Template{ContentType: TypePlain, Plain: Token(item.ID)},
		Segments:    []Item{item},
	}
}
