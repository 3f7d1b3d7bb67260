package subtitle

import (
	"fmt"
	"regexp"
	"strings"
)

// cueTagRe matches HTML-style tags inside cue text, capturing the closing
// slash and the tag name.
var cueTagRe = regexp.MustCompile(`<(/?)([a-zA-Z][a-zA-Z0-9]*)[^>]*?(/?)>`)

// voidTags never take a closing tag.
var voidTags = map[string]bool{
	"br":  true,
	"hr":  true,
	"img": true,
	"wbr": true,
}

// CheckTagBalance validates the HTML tags inside one cue's text with an
// explicit stack: opening tags push, closing tags must match the top of
// the stack. The stack is local to the call, so state never leaks between
// cues. Imbalances are reported, never repaired.
func CheckTagBalance(cueIndex int, text string) []Issue {
	var issues []Issue
	var stack []string

	for _, m := range cueTagRe.FindAllStringSubmatch(text, -1) {
		closing := m[1] == "/"
		name := strings.ToLower(m[2])
		selfClosing := m[3] == "/"

		if selfClosing || voidTags[name] {
			continue
		}
		// VTT voice spans may legally stay open to the end of the cue,
		// so they are excluded from balancing entirely.
		if name == "v" {
			continue
		}

		if !closing {
			stack = append(stack, name)
			continue
		}

		if len(stack) == 0 {
			issues = append(issues, Issue{
				CueIndex: cueIndex,
				Severity: SeverityError,
				Type:     IssueMalformedHTML,
				Message:  fmt.Sprintf("closing tag </%s> has no opener", name),
			})
			continue
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if top != name {
			issues = append(issues, Issue{
				CueIndex: cueIndex,
				Severity: SeverityError,
				Type:     IssueMalformedHTML,
				Message:  fmt.Sprintf("closing tag </%s> does not match open tag <%s>", name, top),
			})
		}
	}

	for i := len(stack) - 1; i >= 0; i-- {
		issues = append(issues, Issue{
			CueIndex: cueIndex,
			Severity: SeverityError,
			Type:     IssueMalformedHTML,
			Message:  fmt.Sprintf("unclosed tag <%s>", stack[i]),
		})
	}

	return issues
}
