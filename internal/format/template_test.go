package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	var data any
	require.NoError(t, json.Unmarshal([]byte(`{
		"status": "ok",
		"count": 3,
		"nested": {"deep": {"value": "found"}}
	}`), &data))

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"dollar form", "status is ${payload.status}", "status is ok"},
		{"brace form", "status is {{payload.status}}", "status is ok"},
		{"no prefix", "status is ${status}", "status is ok"},
		{"response prefix stripped", "${response.status}", "ok"},
		{"trigger prefix stripped", "${trigger.status}", "ok"},
		{"nested walk", "${payload.nested.deep.value}", "found"},
		{"number", "count=${payload.count}", "count=3"},
		{"missing left verbatim", "x ${payload.missing} y", "x ${payload.missing} y"},
		{"repeated placeholder", "${status} ${status}", "ok ok"},
		{"mixed placeholders", "${status}/{{count}}", "ok/3"},
		{"no placeholders", "plain text", "plain text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.template, data))
		})
	}
}

func TestRenderObjectValue(t *testing.T) {
	var data any
	require.NoError(t, json.Unmarshal([]byte(`{"obj": {"a": 1}}`), &data))
	assert.Equal(t, `{"a":1}`, Render("${payload.obj}", data))
}
