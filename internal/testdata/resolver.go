package testdata

import (
	"regexp"
	"strings"
)

// dynamicValuePatterns recognizes natural-language phrasing that asks for
// a generated value rather than a literal one: "my email", "a valid
// username", "the password", "any phone", "test email", "a new email",
// "a random username", "auto-generated password", "sample data", or a
// bare field-type word.
var dynamicValuePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^my\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:a\s+)?valid\s+(.+)$`),
	regexp.MustCompile(`(?i)^the\s+(.+)$`),
	regexp.MustCompile(`(?i)^any\s+(.+)$`),
	regexp.MustCompile(`(?i)^test\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:a\s+)?new\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:a\s+)?random\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:auto[- ]?)?generated\s+(.+)$`),
	regexp.MustCompile(`(?i)^(?:sample|dummy)\s+(.+)$`),
	regexp.MustCompile(`(?i)^(username|password|email|phone|address|name)$`),
}

// ExtractFieldHint strips the dynamic-value wrapping phrase ("a valid",
// "my", "the", ...) from text, returning the bare field-type hint. If no
// wrapping phrase matches, text is returned unchanged.
func ExtractFieldHint(text string) string {
	trimmed := strings.TrimSpace(text)
	for _, re := range dynamicValuePatterns {
		if m := re.FindStringSubmatch(trimmed); m != nil {
			return strings.TrimSpace(m[len(m)-1])
		}
	}
	return trimmed
}

// IsDynamicValue reports whether text asks for a generated value rather
// than naming a literal one.
func IsDynamicValue(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, re := range dynamicValuePatterns {
		if re.MatchString(trimmed) {
			return true
		}
	}
	return false
}

// Resolve generates a value for text if it is a dynamic-value phrase
// recognized by a known field kind, consulting session for within-test
// consistency (the same field hint always resolves to the same value for
// one Session instance, mirroring a human tester who reuses "my email"
// across steps).
func (s *Session) Resolve(text string) (value string, ok bool) {
	if !IsDynamicValue(text) {
		return "", false
	}
	kind, ok := ClassifyField(ExtractFieldHint(text))
	if !ok {
		return "", false
	}
	return s.Generate(kind), true
}
