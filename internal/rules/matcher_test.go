package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hookrelay/internal/models"
)

func TestMatches(t *testing.T) {
	var payload any
	require.NoError(t, json.Unmarshal([]byte(`{"category": "incident"}`), &payload))

	rule := models.Rule{ID: 1, Name: "incidents", Condition: `payload.category === "incident"`}
	assert.True(t, Matches(rule, payload))

	rule.Condition = `payload.category === "request"`
	assert.False(t, Matches(rule, payload))
}

func TestMatchesFaultIsolation(t *testing.T) {
	var payload any
	require.NoError(t, json.Unmarshal([]byte(`{"category": "incident"}`), &payload))

	// Broken syntax degrades to "no match" instead of erroring out.
	assert.False(t, Matches(models.Rule{ID: 2, Condition: `payload.category ===`}, payload))

	// Absent nested fields never panic.
	assert.False(t, Matches(models.Rule{ID: 3, Condition: `payload.a.b.c == "x"`}, payload))

	// Nil payload is fine too.
	assert.False(t, Matches(models.Rule{ID: 4, Condition: `payload.category == "incident"`}, nil))
}
