package security

import (
	"regexp"
	"strings"
)

var (
	scriptPattern  = regexp.MustCompile(`(?i)<\s*script\b`)
	onEventPattern = regexp.MustCompile(`(?i)on\w+\s*=`)
	sqlPattern     = regexp.MustCompile(`(?i)(--|\b(SELECT|INSERT|UPDATE|DELETE|DROP|UNION|ALTER|CREATE|TRUNCATE)\b)`)
	alphanumeric   = regexp.MustCompile(`[A-Za-z0-9]`)
)

// ContainsScriptInjection reports whether text holds a script-tag opener or
// an inline event-handler attribute.
func ContainsScriptInjection(text string) bool {
	return scriptPattern.MatchString(text) || onEventPattern.MatchString(text)
}

// ContainsSQLInjectionPattern reports whether text holds a SQL comment marker
// or a recognized SQL keyword as a whole word.
func ContainsSQLInjectionPattern(text string) bool {
	return sqlPattern.MatchString(text)
}

// IsEmojiOnly reports whether text holds no alphanumeric character at all.
func IsEmojiOnly(text string) bool {
	return !alphanumeric.MatchString(text)
}

// ValidateContentSafety runs the static prefilter over the raw submission
// fields and returns the list of issues, empty when the submission passes.
// The pipeline must reject the submission before any AI call when the list
// is non-empty.
func ValidateContentSafety(fields ...string) []string {
	var issues []string
	combined := strings.Join(fields, " ")

	if ContainsScriptInjection(combined) {
		issues = append(issues, "Potential script injection detected.")
	}
	if ContainsSQLInjectionPattern(combined) {
		issues = append(issues, "Potential SQL injection pattern detected.")
	}

	emojiOnly := true
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			continue
		}
		if !IsEmojiOnly(field) {
			emojiOnly = false
			break
		}
	}
	if emojiOnly {
		issues = append(issues, "Emoji-only content is not allowed.")
	}

	return issues
}
