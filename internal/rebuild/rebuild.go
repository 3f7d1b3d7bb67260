// Package rebuild re-inserts translated text into extraction templates,
// reproducing the original structure around it.
package rebuild

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lingokit/lingokit/internal/content"
)

// Rebuild reconstructs output from a template and a map of item ID to
// translated text. Items without a translation keep their original text
// (HTML) or their placeholder token (JSON, plain), which signals a
// data-integrity gap instead of silently fabricating content.
// targetLocale, when non-empty, overwrites the JSON locale field.
func Rebuild(tmpl *content.Template, translations map[string]string, targetLocale string) (string, error) {
	switch tmpl.ContentType {
	case content.TypeJSON:
		return rebuildJSON(tmpl, translations, targetLocale)
	case content.TypeHTML:
		return rebuildHTML(tmpl, translations), nil
	case content.TypePlain:
		return rebuildPlain(tmpl, translations), nil
	}
	return "", fmt.Errorf("unknown content type %q", tmpl.ContentType)
}

func rebuildJSON(tmpl *content.Template, translations map[string]string, targetLocale string) (string, error) {
	out := tmpl.JSON.Clone()

	var walk func(v *content.Value)
	walk = func(v *content.Value) {
		switch v.Kind {
		case content.KindObject:
			for _, m := range v.Members {
				walk(m.Value)
			}
		case content.KindArray:
			for _, elem := range v.Array {
				walk(elem)
			}
		case content.KindString:
			if id, ok := content.ParseToken(v.Str); ok {
				if translated, found := translations[id]; found {
					v.Str = translated
				}
				// Missing translations leave the token in place.
			}
		}
	}
	walk(out)

	if targetLocale != "" {
		setLocale(out, tmpl.LocalePath, targetLocale)
	}

	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to encode rebuilt JSON: %w", err)
	}
	return string(data), nil
}

// setLocale force-sets the locale field to the target locale. The declared
// locale path wins; a top-level "locale" member is the fallback.
func setLocale(root *content.Value, localePath, locale string) {
	path := localePath
	if path == "" {
		path = "locale"
	}
	if v, ok := root.Lookup(path); ok {
		v.Kind = content.KindString
		v.Str = locale
		return
	}
	// A document that never carried a locale gains a top-level one.
	if root.Kind == content.KindObject && !strings.Contains(path, ".") {
		root.Members = append(root.Members, content.Member{
			Key:   path,
			Value: &content.Value{Kind: content.KindString, Str: locale},
		})
	}
}

func rebuildHTML(tmpl *content.Template, translations map[string]string) string {
	var sb strings.Builder

	itemIdx := 0
	for _, seg := range tmpl.HTML.Segments {
		if seg.Type == content.SegmentTag {
			sb.WriteString(seg.Content)
			continue
		}
		// Whitespace-only runs are reproduced verbatim so the original
		// spacing survives.
		if strings.TrimSpace(seg.Content) == "" {
			sb.WriteString(seg.Content)
			continue
		}

		id := itemID(itemIdx)
		itemIdx++
		if translated, ok := translations[id]; ok {
			sb.WriteString(translated)
		} else {
			sb.WriteString(seg.Content)
		}
	}

	return sb.String()
}

func rebuildPlain(tmpl *content.Template, translations map[string]string) string {
	if id, ok := content.ParseToken(tmpl.Plain); ok {
		if translated, found := translations[id]; found {
			return translated
		}
	}
	return tmpl.Plain
}

// RebuildJoined reconstructs HTML from one translated string that stands
// in for all the template's text segments (the segments were joined before
// translation). The translated text is redistributed across the original
// segment boundaries proportionally to each segment's trimmed length.
func RebuildJoined(tmpl *content.Template, translatedJoined string) (string, error) {
	if tmpl.ContentType != content.TypeHTML {
		return "", fmt.Errorf("joined reconstruction requires HTML content, got %q", tmpl.ContentType)
	}

	weights := make([]int, 0)
	for _, text := range tmpl.HTML.TextSegments {
		if strings.TrimSpace(text) != "" {
			weights = append(weights, len([]rune(strings.TrimSpace(text))))
		}
	}

	parts := SplitProportional(translatedJoined, weights)

	translations := make(map[string]string, len(parts))
	for i, part := range parts {
		translations[itemID(i)] = part
	}
	return rebuildHTML(tmpl, translations), nil
}

// itemID mirrors the extractor's ID assignment: dense decimal IDs in
// segment order.
func itemID(i int) string {
	return fmt.Sprintf("%d", i)
}
