package services

import (
	"strings"
	"testing"
)

func TestScrubPHI(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		names    []string
		contains []string
		excludes []string
	}{
		{
			name:     "redacts email addresses",
			text:     "Contact jane.doe@example.com for records.",
			contains: []string{"Contact REDACTED for records."},
			excludes: []string{"jane.doe@example.com"},
		},
		{
			name:     "redacts phone numbers",
			text:     "Callback at (555) 123-4567 tomorrow.",
			excludes: []string{"123-4567"},
		},
		{
			name:     "redacts social security numbers",
			text:     "SSN 123-45-6789 on file.",
			excludes: []string{"123-45-6789"},
		},
		{
			name:     "redacts medical record numbers",
			text:     "See MRN: 8675309 for history.",
			excludes: []string{"8675309"},
		},
		{
			name:     "redacts provider names case-insensitively",
			text:     "Seen by DR. SMITH; dr. smith will follow up.",
			names:    []string{"Dr. Smith"},
			excludes: []string{"SMITH", "smith"},
		},
		{
			name:     "ignores empty names",
			text:     "Routine follow-up visit.",
			names:    []string{"", "   "},
			contains: []string{"Routine follow-up visit."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScrubPHI(tt.text, tt.names...)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("ScrubPHI() = %q, want it to contain %q", got, want)
				}
			}
			for _, leak := range tt.excludes {
				if strings.Contains(got, leak) {
					t.Errorf("ScrubPHI() = %q, leaked %q", got, leak)
				}
			}
		})
	}
}
