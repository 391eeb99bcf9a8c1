package pipeline

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedJSONPattern = regexp.MustCompile("(?s)```json\\s*(.*?)```")

// extractJSONPayload locates the JSON candidate in a free-text completion.
// Phase 1 looks for a fenced ```json block; phase 2 falls back to the
// whole response.
func extractJSONPayload(response string) string {
	if m := fencedJSONPattern.FindStringSubmatch(response); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(response)
}

// decodeModelJSON extracts and strictly parses the JSON payload of a
// completion response into v. Callers treat an error as a content failure
// and degrade to their empty default; the error never propagates out of a
// stage.
func decodeModelJSON(response string, v any) error {
	return json.Unmarshal([]byte(extractJSONPayload(response)), v)
}
