package services

import (
	"regexp"
	"strings"
)

// RedactedPlaceholder overwrites identifying values in persisted text.
// Values are replaced in place, never dropped, so the surrounding
// structure of the note survives for downstream training.
const RedactedPlaceholder = "REDACTED"

var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phonePattern = regexp.MustCompile(`\(?\d{3}\)?[-.\s]\d{3}[-.\s]?\d{4}`)
	ssnPattern   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	mrnPattern   = regexp.MustCompile(`(?i)\bMRN[:#\s]*\d+`)
)

// ScrubPHI removes direct identifiers from free text before persistence.
// Beyond the generic patterns it redacts every name in names, typically
// the rendering provider extracted from the same note.
func ScrubPHI(text string, names ...string) string {
	scrubbed := emailPattern.ReplaceAllString(text, RedactedPlaceholder)
	scrubbed = ssnPattern.ReplaceAllString(scrubbed, RedactedPlaceholder)
	scrubbed = phonePattern.ReplaceAllString(scrubbed, RedactedPlaceholder)
	scrubbed = mrnPattern.ReplaceAllString(scrubbed, RedactedPlaceholder)

	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		pattern, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(name))
		if err != nil {
			continue
		}
		scrubbed = pattern.ReplaceAllString(scrubbed, RedactedPlaceholder)
	}

	return scrubbed
}
