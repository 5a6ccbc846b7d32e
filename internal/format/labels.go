// Package format turns inbound payloads into human-readable Telegram
// notification text, either through the built-in section layout or through a
// per-rule message template.
package format

import "strings"

// labels maps payload field paths to display labels. Nested entries label a
// field in context (requested_by.name reads better as "Requester" than
// "Name"); top-level entries double as shorthand for any path ending in that
// segment.
var labels = map[string]any{
	"id":          "ID",
	"subject":     "Subject",
	"status":      "Status",
	"team":        "Team",
	"category":    "Category",
	"impact":      "Impact",
	"priority":    "Priority",
	"urgency":     "Urgency",
	"name":        "Name",
	"text":        "Text",
	"message":     "Message",
	"event":       "Event",
	"created_at":  "Created",
	"person_name": "Author",
	"requested_by": map[string]any{
		"name": "Requester",
		"account": map[string]any{
			"name": "Account",
		},
	},
	"person": map[string]any{
		"name": "Author",
		"account": map[string]any{
			"name": "Account",
		},
	},
	"account": map[string]any{
		"name": "Account",
	},
	"note": map[string]any{
		"text": "Note",
	},
}

// Translate resolves a dotted field path to a display label. It walks the
// nested label table as far as the path goes; if the walk misses at any depth
// it falls back to a top-level lookup of the path's terminal segment, and
// finally to the terminal segment text itself. Rule authors rely on both the
// exact and the shorthand forms.
func Translate(path string) string {
	segments := strings.Split(path, ".")

	cur := any(labels)
	matched := true
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			matched = false
			break
		}
		cur, ok = m[seg]
		if !ok {
			matched = false
			break
		}
	}
	if matched {
		if label, ok := cur.(string); ok {
			return label
		}
	}

	last := segments[len(segments)-1]
	if label, ok := labels[last].(string); ok {
		return label
	}
	return last
}
