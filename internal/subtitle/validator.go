package subtitle

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Severity grades a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// IssueType names the category of a finding.
type IssueType string

const (
	IssueMalformedTimecode IssueType = "malformed-timecode"
	IssueNegativeDuration  IssueType = "negative-duration"
	IssueEmptyText         IssueType = "empty-text"
	IssueMissingIndex      IssueType = "missing-index"
	IssueIndexOutOfOrder   IssueType = "index-out-of-order"
	IssueMalformedHTML     IssueType = "malformed-html"
	IssueOverlap           IssueType = "overlap"
	IssueGapTooSmall       IssueType = "gap-too-small"
	IssueReadingTooFast    IssueType = "reading-too-fast"
	IssueReadingTooSlow    IssueType = "reading-too-slow"
)

// Issue is one immutable validation finding attached to a cue position.
// Findings never mutate the cue they describe.
type Issue struct {
	CueIndex int // position in the cue slice, not the cue's own Index
	Severity Severity
	Type     IssueType
	Message  string
}

// OverlapPolicy selects how ResolveOverlaps treats overlapping cues.
type OverlapPolicy string

const (
	OverlapWarnOnly        OverlapPolicy = "warn-only"
	OverlapShortenPrevious OverlapPolicy = "shorten-previous"
	OverlapDelayNext       OverlapPolicy = "delay-next"
)

// ValidatorConfig bounds the temporal checks. Zero values disable the
// corresponding check.
type ValidatorConfig struct {
	MinGap            time.Duration
	MinCharsPerSecond float64
	MaxCharsPerSecond float64
}

// Validate runs all structural and temporal checks over the cue sequence
// and returns the findings in cue order. It is a pure function: cues are
// never modified.
func Validate(cues []Cue, cfg ValidatorConfig) []Issue {
	var issues []Issue

	prevIndex := 0
	for i, cue := range cues {
		issues = append(issues, validateStructure(i, cue)...)

		if cue.Index > 0 {
			if cue.Index <= prevIndex {
				issues = append(issues, Issue{
					CueIndex: i,
					Severity: SeverityWarning,
					Type:     IssueIndexOutOfOrder,
					Message:  fmt.Sprintf("cue index %d does not ascend past %d", cue.Index, prevIndex),
				})
			}
			prevIndex = cue.Index
		}

		issues = append(issues, CheckTagBalance(i, cue.Text)...)
		issues = append(issues, checkReadingSpeed(i, cue, cfg)...)
	}

	issues = append(issues, checkTiming(cues, cfg)...)
	return issues
}

func validateStructure(i int, cue Cue) []Issue {
	var issues []Issue

	if !cue.TimingParsed {
		issues = append(issues, Issue{
			CueIndex: i,
			Severity: SeverityError,
			Type:     IssueMalformedTimecode,
			Message:  fmt.Sprintf("timecode %q does not match the expected syntax", cue.RawTiming),
		})
	} else if cue.EndTime <= cue.StartTime {
		issues = append(issues, Issue{
			CueIndex: i,
			Severity: SeverityError,
			Type:     IssueNegativeDuration,
			Message:  fmt.Sprintf("cue ends at %v before it starts at %v", cue.EndTime, cue.StartTime),
		})
	}

	if cue.Index <= 0 && cue.Identifier == "" {
		issues = append(issues, Issue{
			CueIndex: i,
			Severity: SeverityError,
			Type:     IssueMissingIndex,
			Message:  "cue has no index",
		})
	}

	if strings.TrimSpace(cue.Text) == "" {
		issues = append(issues, Issue{
			CueIndex: i,
			Severity: SeverityWarning,
			Type:     IssueEmptyText,
			Message:  "cue has no text",
		})
	}

	return issues
}

func checkTiming(cues []Cue, cfg ValidatorConfig) []Issue {
	var issues []Issue

	for i := 0; i < len(cues)-1; i++ {
		curr, next := cues[i], cues[i+1]
		if !curr.TimingParsed || !next.TimingParsed {
			continue
		}

		if curr.EndTime > next.StartTime {
			issues = append(issues, Issue{
				CueIndex: i,
				Severity: SeverityWarning,
				Type:     IssueOverlap,
				Message: fmt.Sprintf("cue ends at %v after the next cue starts at %v",
					curr.EndTime, next.StartTime),
			})
			continue
		}

		if cfg.MinGap > 0 {
			gap := next.StartTime - curr.EndTime
			if gap < cfg.MinGap {
				issues = append(issues, Issue{
					CueIndex: i,
					Severity: SeverityWarning,
					Type:     IssueGapTooSmall,
					Message:  fmt.Sprintf("gap to next cue is %v, below the %v minimum", gap, cfg.MinGap),
				})
			}
		}
	}

	return issues
}

var tagStripRe = regexp.MustCompile(`<[^>]*>`)

func checkReadingSpeed(i int, cue Cue, cfg ValidatorConfig) []Issue {
	if cfg.MinCharsPerSecond <= 0 && cfg.MaxCharsPerSecond <= 0 {
		return nil
	}

	duration := cue.Duration().Seconds()
	if duration <= 0 {
		return nil
	}

	chars := len([]rune(tagStripRe.ReplaceAllString(cue.Text, "")))
	speed := float64(chars) / duration

	if cfg.MaxCharsPerSecond > 0 && speed > cfg.MaxCharsPerSecond {
		return []Issue{{
			CueIndex: i,
			Severity: SeverityWarning,
			Type:     IssueReadingTooFast,
			Message:  fmt.Sprintf("reading speed %.1f chars/s exceeds the %.1f maximum", speed, cfg.MaxCharsPerSecond),
		}}
	}
	if cfg.MinCharsPerSecond > 0 && speed < cfg.MinCharsPerSecond {
		return []Issue{{
			CueIndex: i,
			Severity: SeverityWarning,
			Type:     IssueReadingTooSlow,
			Message:  fmt.Sprintf("reading speed %.1f chars/s is below the %.1f minimum", speed, cfg.MinCharsPerSecond),
		}}
	}
	return nil
}

// ResolveOverlaps returns a copy of the cue sequence with overlaps
// resolved according to policy. OverlapWarnOnly returns an unmodified
// copy; the input slice is never mutated.
func ResolveOverlaps(cues []Cue, policy OverlapPolicy) []Cue {
	out := append([]Cue(nil), cues...)
	if policy == OverlapWarnOnly || policy == "" {
		return out
	}

	for i := 0; i < len(out)-1; i++ {
		curr, next := out[i], out[i+1]
		if !curr.TimingParsed || !next.TimingParsed {
			continue
		}
		if curr.EndTime <= next.StartTime {
			continue
		}

		switch policy {
		case OverlapShortenPrevious:
			out[i].EndTime = next.StartTime
		case OverlapDelayNext:
			out[i+1].StartTime = curr.EndTime
			if out[i+1].EndTime < out[i+1].StartTime {
				out[i+1].EndTime = out[i+1].StartTime
			}
		}
	}

	return out
}
