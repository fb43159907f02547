package prompt

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Tag categories recorded in a Report, one per pipeline stage that matched.
const (
	TagZeroWidth           = "zero_width"
	TagUnicodeNormalized   = "unicode_normalized"
	TagInstructionOverride = "instruction_override"
	TagRoleMarker          = "role_marker"
	TagDelimiterRun        = "delimiter_run"
	TagNewlineRun          = "newline_run"
	TagTruncated           = "truncated"
)

// Tag records one category of matched content: what was matched, how many
// times, and the first matched fragment for phrase stages.
type Tag struct {
	Category string
	Count    int
	Fragment string
}

// Report describes what sanitization changed. It is produced and consumed
// within a single Sanitize call and never mutates the input.
type Report struct {
	// Tags lists matched categories in pipeline order.
	Tags []Tag

	// CharsRemoved counts characters removed across all stages.
	CharsRemoved int

	// Truncated is set when the text exceeded maxLength and was cut.
	Truncated bool

	// OriginalLength is the character length of the input.
	OriginalLength int
}

// Has reports whether the report carries a tag of the given category.
func (r *Report) Has(category string) bool {
	for _, tag := range r.Tags {
		if tag.Category == category {
			return true
		}
	}
	return false
}

// Sanitize runs untrusted text through the eight-stage cleaning pipeline
// and returns the cleaned text with a report of everything that matched.
// Each stage consumes the previous stage's output; the stage order is
// load-bearing and must not change. The function never fails: empty input
// yields empty output and a zeroed report.
//
// Stages, in order: strip invisible zero-width characters, NFC
// normalization, instruction-override phrase replacement, role-marker
// replacement, delimiter-run collapse (3+ to 2), newline-run collapse
// (4+ to 3), hard truncation to maxLength, whitespace trim.
func Sanitize(text string, maxLength int) (string, Report) {
	report := Report{OriginalLength: utf8.RuneCountInString(text)}
	if text == "" {
		return "", report
	}

	cur := text

	// 1. Strip invisible zero-width characters.
	var b strings.Builder
	b.Grow(len(cur))
	stripped := 0
	for _, r := range cur {
		if zeroWidthRunes[r] {
			stripped++
			continue
		}
		b.WriteRune(r)
	}
	if stripped > 0 {
		cur = b.String()
		report.Tags = append(report.Tags, Tag{Category: TagZeroWidth, Count: stripped})
		report.CharsRemoved += stripped
	}

	// 2. Canonical composition, collapsing confusable multi-codepoint
	// sequences before pattern matching.
	if normalized := norm.NFC.String(cur); normalized != cur {
		report.Tags = append(report.Tags, Tag{Category: TagUnicodeNormalized, Count: 1})
		report.CharsRemoved += lengthDelta(cur, normalized)
		cur = normalized
	}

	// 3. Replace instruction-override phrases with the placeholder.
	cur = replaceAll(cur, overridePatterns, TagInstructionOverride, &report)

	// 4. Replace role-impersonation markers with the placeholder.
	cur = replaceAll(cur, roleMarkerPatterns, TagRoleMarker, &report)

	// 5. Collapse runs of repeated delimiter characters.
	runCount := 0
	for _, p := range delimiterRunPatterns {
		matches := p.re.FindAllString(cur, -1)
		if len(matches) == 0 {
			continue
		}
		runCount += len(matches)
		before := cur
		cur = p.re.ReplaceAllString(cur, p.replacement)
		report.CharsRemoved += lengthDelta(before, cur)
	}
	if runCount > 0 {
		report.Tags = append(report.Tags, Tag{Category: TagDelimiterRun, Count: runCount})
	}

	// 6. Collapse runs of four or more newlines to three.
	if matches := newlineRunPattern.FindAllString(cur, -1); len(matches) > 0 {
		before := cur
		cur = newlineRunPattern.ReplaceAllString(cur, "\n\n\n")
		report.Tags = append(report.Tags, Tag{Category: TagNewlineRun, Count: len(matches)})
		report.CharsRemoved += lengthDelta(before, cur)
	}

	// 7. Hard truncation.
	if maxLength > 0 {
		if runes := []rune(cur); len(runes) > maxLength {
			report.CharsRemoved += len(runes) - maxLength
			cur = string(runes[:maxLength])
			report.Truncated = true
			report.Tags = append(report.Tags, Tag{Category: TagTruncated, Count: 1})
		}
	}

	// 8. Trim surrounding whitespace.
	trimmed := strings.TrimSpace(cur)
	report.CharsRemoved += lengthDelta(cur, trimmed)
	return trimmed, report
}

// replaceAll substitutes every match of the given ordered patterns with the
// placeholder and records one tag carrying the total count and the first
// matched fragment.
func replaceAll(text string, patterns []*regexp.Regexp, category string, report *Report) string {
	total := 0
	fragment := ""
	for _, re := range patterns {
		matches := re.FindAllString(text, -1)
		if len(matches) == 0 {
			continue
		}
		if fragment == "" {
			fragment = matches[0]
		}
		total += len(matches)
		before := text
		text = re.ReplaceAllString(text, Placeholder)
		report.CharsRemoved += lengthDelta(before, text)
	}
	if total > 0 {
		report.Tags = append(report.Tags, Tag{Category: category, Count: total, Fragment: fragment})
	}
	return text
}

// lengthDelta returns the number of characters removed going from before
// to after, never negative.
func lengthDelta(before, after string) int {
	d := utf8.RuneCountInString(before) - utf8.RuneCountInString(after)
	if d < 0 {
		return 0
	}
	return d
}
