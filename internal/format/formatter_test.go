package format

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestFormatBasicSections(t *testing.T) {
	payload := decode(t, `{"id": 7, "subject": "Test", "status": "open"}`)

	got := Format(nil, payload)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID: 7", lines[0])
	assert.Equal(t, "Subject: Test", lines[1])
	assert.Equal(t, "Status: open", lines[2])
}

func TestFormatRequesterAndScalars(t *testing.T) {
	payload := decode(t, `{
		"requested_by": {"name": "Alice", "account": {"name": "Acme"}},
		"status": "open",
		"team": "Helpdesk",
		"priority": 2
	}`)

	got := Format(nil, payload)
	assert.Contains(t, got, "Requester: Alice @Acme")
	assert.Contains(t, got, "Team: Helpdesk")
	assert.Contains(t, got, "Priority: 2")

	// Requester line comes before status, scalars after.
	reqIdx := strings.Index(got, "Requester")
	statusIdx := strings.Index(got, "Status")
	teamIdx := strings.Index(got, "Team")
	assert.Less(t, reqIdx, statusIdx)
	assert.Less(t, statusIdx, teamIdx)
}

func TestFormatNotesArray(t *testing.T) {
	payload := decode(t, `{
		"subject": "Printer down",
		"note": [
			{"person": {"name": "Bob", "account": {"name": "Acme"}}, "text": "looking into it"},
			{"person_name": "Carol", "text": "fixed"}
		]
	}`)

	got := Format(nil, payload)
	assert.Contains(t, got, "Notes:")
	assert.Contains(t, got, "1. Bob @Acme: looking into it")
	assert.Contains(t, got, "2. Carol: fixed")
}

func TestFormatSingleNoteObject(t *testing.T) {
	payload := decode(t, `{"note": {"person_name": "Bob", "text": "hello"}}`)
	got := Format(nil, payload)
	assert.Contains(t, got, "1. Bob: hello")
}

func TestFormatDirectMessageFallback(t *testing.T) {
	// No note field, so text/message triggers the direct message section.
	payload := decode(t, `{"text": "ping", "author": "Dave"}`)
	assert.Equal(t, "Dave: ping", Format(nil, payload))

	// Author falls back through the raw envelope.
	raw := decode(t, `{"person_name": "Eve"}`)
	payload = decode(t, `{"message": "pong"}`)
	assert.Equal(t, "Eve: pong", Format(raw, payload))

	// Nothing resolves: Unknown.
	payload = decode(t, `{"message": "hi"}`)
	assert.Equal(t, "Unknown: hi", Format(nil, payload))
}

func TestFormatNotePresenceSuppressesDirectMessage(t *testing.T) {
	payload := decode(t, `{"text": "ping", "note": [{"text": "a note"}]}`)
	got := Format(nil, payload)
	assert.Contains(t, got, "1. a note")
	assert.NotContains(t, got, "Unknown: ping")

	// Even an unrenderable scalar note counts as present.
	payload = decode(t, `{"subject": "s", "text": "ping", "note": "hi"}`)
	got = Format(nil, payload)
	assert.NotContains(t, got, "Unknown: ping")
	assert.NotContains(t, got, "Notes:")

	// A null note does not: the field is treated as absent.
	payload = decode(t, `{"text": "ping", "note": null}`)
	assert.Equal(t, "Unknown: ping", Format(nil, payload))
}

func TestFormatLastResortEnvelope(t *testing.T) {
	raw := decode(t, `{"event": "ticket.update", "object_id": 42, "person_name": "Bob"}`)
	payload := decode(t, `{"unrecognized": true}`)
	got := Format(raw, payload)
	assert.Equal(t, "Event: ticket.update #42 by Bob", got)
}

func TestFormatLastResortDumpTruncated(t *testing.T) {
	big := strings.Repeat("x", 5000)
	payload := map[string]any{"blob": big}
	got := Format(nil, payload)
	assert.Len(t, got, maxDumpLen)
	assert.True(t, strings.HasPrefix(got, `{"blob":`))
}

func TestFormatIdempotent(t *testing.T) {
	payload := decode(t, `{"id": 1, "subject": "s", "note": [{"text": "n"}]}`)
	first := Format(nil, payload)
	second := Format(nil, payload)
	assert.Equal(t, first, second)
}
