package prompt

import "regexp"

// Placeholder is substituted for matched injection phrases and role markers.
// It must not itself match any pattern in this file, or sanitization would
// not be idempotent.
const Placeholder = "[filtered]"

// zeroWidthRunes is the fixed set of invisible code points stripped by the
// first stage. These are used to split recognizable phrases so they slip
// past pattern matching.
var zeroWidthRunes = map[rune]bool{
	'\u200b': true, // zero-width space
	'\u200c': true, // zero-width non-joiner
	'\u200d': true, // zero-width joiner
	'\u200e': true, // left-to-right mark
	'\u200f': true, // right-to-left mark
	'\u2060': true, // word joiner
	'\ufeff': true, // byte-order mark
	'\u00ad': true, // soft hyphen
}

// overridePatterns is the curated, ordered list of instruction-override
// phrases. Order matters: each pattern sees the output of the previous
// replacements within the stage.
var overridePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above|earlier)\s+(instructions?|prompts?|commands?|directions?)`),
	regexp.MustCompile(`(?i)disregard\s+(all|previous|above|any|prior)\s+(instructions?|rules?|commands?)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all\s+previous\s+(instructions?|prompts?)|your\s+instructions?)`),
	regexp.MustCompile(`(?i)override\s+(all|previous|system)\s+(instructions?|rules?|settings?)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+(a|an|in)\b`),
	regexp.MustCompile(`(?i)new\s+instructions?\s*:`),
	regexp.MustCompile(`(?i)pretend\s+(to\s+be|you\s+are)`),
	regexp.MustCompile(`(?i)(reveal|show|print|repeat)\s+(your|the)\s+(system|original|initial|hidden|secret)\s+(prompt|instructions?)`),
}

// roleMarkerPatterns matches literal role-impersonation tokens and
// chat-template sentinels, case-insensitively.
var roleMarkerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bsystem\s*:`),
	regexp.MustCompile(`(?i)\bassistant\s*:`),
	regexp.MustCompile(`(?i)\[/?INST\]`),
	regexp.MustCompile(`(?i)<\|im_(start|end)\|>`),
	regexp.MustCompile(`(?i)<\|(system|user|assistant|endoftext)\|>`),
	regexp.MustCompile(`(?i)<</?SYS>>`),
}

// delimiterRunPatterns collapses forged section boundaries: runs of three
// or more repeated delimiter characters come down to exactly two.
var delimiterRunPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`-{3,}`), "--"},
	{regexp.MustCompile(`={3,}`), "=="},
	{regexp.MustCompile(`~{3,}`), "~~"},
	{regexp.MustCompile("`{3,}"), "``"},
}

// newlineRunPattern collapses four or more consecutive newlines to three.
var newlineRunPattern = regexp.MustCompile(`\n{4,}`)
