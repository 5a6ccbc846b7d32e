package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"id", "ID"},
		{"subject", "Subject"},
		{"requested_by.name", "Requester"},
		{"requested_by.account.name", "Account"},
		{"person.name", "Author"},
		// Nested walk misses, terminal segment found at top level.
		{"something.deep.status", "Status"},
		{"whatever.name", "Name"},
		// Nothing known at all: raw terminal segment.
		{"custom_field", "custom_field"},
		{"a.b.custom_field", "custom_field"},
		// Path stops at a subtree, not a leaf: falls through to shorthand.
		{"requested_by.account", "account"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Translate(tt.path), "path %q", tt.path)
	}
}
