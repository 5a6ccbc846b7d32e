package format

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"hookrelay/internal/rules"
)

// maxDumpLen bounds the raw JSON fallback so a huge payload cannot blow past
// Telegram's message size limit.
const maxDumpLen = 4000

// scalarFields are rendered as "<label>: <value>" lines, in this order, when
// present and non-null.
var scalarFields = []string{"team", "category", "impact", "priority", "urgency"}

// Format builds the default notification text for a payload. Sections are
// composed in priority order and every section is optional; when nothing at
// all matches, the raw envelope's event metadata or a truncated JSON dump of
// the payload is used so the notification is never empty. Any panic while
// formatting is converted into a visible error string, never propagated.
func Format(raw map[string]any, payload any) (msg string) {
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("message formatting failed: %v", r)
		}
	}()

	var lines []string
	add := func(path string, v any) {
		lines = append(lines, Translate(path)+": "+stringify(v))
	}

	if v := field(payload, "id"); v != nil {
		add("id", v)
	}
	if v := field(payload, "subject"); v != nil {
		add("subject", v)
	}
	if name := field(payload, "requested_by.name"); name != nil {
		line := Translate("requested_by.name") + ": " + stringify(name)
		if acc := field(payload, "requested_by.account.name"); acc != nil {
			line += " @" + stringify(acc)
		}
		lines = append(lines, line)
	}
	if v := field(payload, "status"); v != nil {
		add("status", v)
	}
	for _, f := range scalarFields {
		if v := field(payload, f); v != nil {
			add(f, v)
		}
	}

	notes, hasNote := normalizeNotes(payload)
	if hasNote {
		if len(notes) > 0 {
			lines = append(lines, "Notes:")
			for i, note := range notes {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, formatNote(note)))
			}
		}
	} else if text := firstPresent(field(payload, "text"), field(payload, "message")); text != nil {
		lines = append(lines, directMessageAuthor(raw, payload)+": "+stringify(text))
	}

	if len(lines) == 0 {
		return lastResort(raw, payload)
	}
	return strings.Join(lines, "\n")
}

// normalizeNotes returns the payload's notes as a list. A single note object
// and an array of notes are both accepted; hasNote reports whether a non-null
// "note" field existed at all, even a scalar one we cannot render, so the
// direct-message fallback only ever runs when the field is truly absent.
func normalizeNotes(payload any) (notes []map[string]any, hasNote bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return nil, false
	}
	raw, ok := m["note"]
	if !ok || raw == nil {
		return nil, false
	}
	switch v := raw.(type) {
	case map[string]any:
		return []map[string]any{v}, true
	case []any:
		for _, item := range v {
			if note, ok := item.(map[string]any); ok {
				notes = append(notes, note)
			}
		}
		return notes, true
	}
	return nil, true
}

func formatNote(note map[string]any) string {
	author := firstPresent(field(note, "person.name"), field(note, "person_name"))
	account := firstPresent(field(note, "account.name"), field(note, "person.account.name"))

	var sb strings.Builder
	if author != nil {
		sb.WriteString(stringify(author))
		if account != nil {
			sb.WriteString(" @")
			sb.WriteString(stringify(account))
		}
		sb.WriteString(": ")
	}
	if text := field(note, "text"); text != nil {
		sb.WriteString(stringify(text))
	}
	if created := field(note, "created_at"); created != nil {
		if ts := localTime(stringify(created)); ts != "" {
			sb.WriteString(" (")
			sb.WriteString(ts)
			sb.WriteString(")")
		}
	}
	return sb.String()
}

// directMessageAuthor resolves the author of a bare text/message payload,
// falling back through the payload and the raw envelope before giving up.
func directMessageAuthor(raw map[string]any, payload any) string {
	chain := []any{
		field(payload, "author"),
		field(payload, "person_name"),
	}
	if raw != nil {
		chain = append(chain, raw["person_name"])
	}
	chain = append(chain, field(payload, "requested_by.name"))
	for _, v := range chain {
		if s := stringify(v); v != nil && s != "" {
			return s
		}
	}
	return "Unknown"
}

func lastResort(raw map[string]any, payload any) string {
	var parts []string
	if raw != nil {
		if v, ok := raw["event"]; ok && v != nil {
			parts = append(parts, Translate("event")+": "+stringify(v))
		}
		if v, ok := raw["object_id"]; ok && v != nil {
			parts = append(parts, "#"+stringify(v))
		}
		if v, ok := raw["person_name"]; ok && v != nil {
			parts = append(parts, "by "+stringify(v))
		}
	}
	if len(parts) > 0 {
		return strings.Join(parts, " ")
	}

	dump, err := json.Marshal(payload)
	if err != nil {
		dump, _ = json.Marshal(raw)
	}
	s := string(dump)
	if len(s) > maxDumpLen {
		s = s[:maxDumpLen]
	}
	return s
}

// field resolves a dotted path against the payload, returning nil for absent
// or null fields.
func field(payload any, path string) any {
	return rules.LookupPath(payload, strings.Split(path, "."))
}

func firstPresent(values ...any) any {
	for _, v := range values {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		return v
	}
	return nil
}

// localTime renders an ISO timestamp in the server's timezone, compact enough
// for a one-line note. Unparseable input is returned as-is.
func localTime(raw string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Local().Format("2006-01-02 15:04")
		}
	}
	return raw
}

// stringify renders a payload value for inclusion in a message. Whole numbers
// print without a decimal point; objects and arrays fall back to JSON.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
