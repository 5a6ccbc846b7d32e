package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestEval(t *testing.T) {
	payload := decode(t, `{
		"category": "incident",
		"priority": 3,
		"urgent": true,
		"empty": "",
		"requested_by": {"name": "Alice", "account": {"name": "Acme"}}
	}`)

	tests := []struct {
		name string
		cond string
		want bool
	}{
		{"string equality", `payload.category == "incident"`, true},
		{"strict equality spelling", `payload.category === "incident"`, true},
		{"string inequality", `payload.category !== "request"`, true},
		{"no match", `payload.category == "request"`, false},
		{"numeric compare", `payload.priority >= 3`, true},
		{"numeric compare false", `payload.priority > 3`, false},
		{"bool literal", `payload.urgent == true`, true},
		{"and", `payload.category == "incident" && payload.priority > 1`, true},
		{"and short circuit", `payload.category == "request" && payload.priority > 1`, false},
		{"or", `payload.category == "request" || payload.urgent`, true},
		{"not", `!payload.missing`, true},
		{"parens", `(payload.priority > 5 || payload.urgent) && payload.category == "incident"`, true},
		{"nested path", `payload.requested_by.account.name == "Acme"`, true},
		{"bare path truthiness", `payload.category`, true},
		{"empty string falsy", `payload.empty`, false},
		{"missing path falsy", `payload.nope`, false},
		{"deeply missing path", `payload.a.b.c == "x"`, false},
		{"missing equals null", `payload.a.b.c == null`, true},
		{"missing not equals value", `payload.a.b.c != "x"`, true},
		{"single quoted string", `payload.category == 'incident'`, true},
		{"negative number", `payload.priority > -1`, true},
		{"escaped quote in string", `payload.category != "inci\"dent"`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, err := Compile(tt.cond)
			require.NoError(t, err)
			got, err := prog.Eval(payload)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	for _, cond := range []string{
		`payload.category ==`,
		`(payload.a == 1`,
		`payload.a == "unterminated`,
		`payload. == 1`,
		`payload.a == 1 extra`,
		``,
	} {
		_, err := Compile(cond)
		assert.Error(t, err, "condition %q should not compile", cond)
	}
}

func TestStringEscapes(t *testing.T) {
	payload := decode(t, `{"multi": "a\nb", "tabbed": "a\tb", "quoted": "say \"hi\""}`)

	tests := []struct {
		cond string
		want bool
	}{
		{`payload.multi == "a\nb"`, true},
		{`payload.tabbed == "a\tb"`, true},
		{`payload.quoted == "say \"hi\""`, true},
		{`payload.multi == "anb"`, false},
	}
	for _, tt := range tests {
		prog, err := Compile(tt.cond)
		require.NoError(t, err, "condition %q", tt.cond)
		got, err := prog.Eval(payload)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "condition %q", tt.cond)
	}
}

func TestLookupPath(t *testing.T) {
	v := decode(t, `{"a": {"b": {"c": 7}}}`)
	assert.Equal(t, float64(7), LookupPath(v, []string{"a", "b", "c"}))
	assert.Nil(t, LookupPath(v, []string{"a", "x", "c"}))
	assert.Nil(t, LookupPath(v, []string{"a", "b", "c", "d"}))
}
