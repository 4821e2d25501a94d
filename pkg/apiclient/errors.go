package apiclient

import (
	"fmt"
	"strings"
)

// APIError is the structured error produced for every non-2xx response.
// It always carries at least one human-readable message plus the decoded
// response payload for diagnostics.
type APIError struct {
	Status   int
	Messages []string
	Payload  any
}

func (e *APIError) Error() string {
	return strings.Join(e.Messages, "\n")
}

// ExtractMessages derives an ordered, non-empty list of human-readable
// messages from a heterogeneous error payload. Precedence, first match wins:
//
//  1. nil payload -> ["Unknown error"]
//  2. object with a non-empty "errors" array -> each element stringified, in order
//  3. object with a string "message" -> [message]
//  4. object with a string "title" -> [title]
//  5. anything else -> ["Request failed"]
//
// It is total: it never fails and never returns an empty list.
func ExtractMessages(payload any) []string {
	if payload == nil {
		return []string{"Unknown error"}
	}

	if m, ok := payload.(map[string]any); ok {
		if raw, ok := m["errors"].([]any); ok && len(raw) > 0 {
			out := make([]string, 0, len(raw))
			for _, v := range raw {
				out = append(out, stringify(v))
			}
			return out
		}
		if s, ok := m["message"].(string); ok {
			return []string{s}
		}
		if s, ok := m["title"].(string); ok {
			return []string{s}
		}
	}

	return []string{"Request failed"}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
