package format

import (
	"regexp"
	"strings"

	"hookrelay/internal/rules"
)

// placeholderRe matches ${path} and {{path}} spans. Both spellings are in use
// by existing rule templates.
var placeholderRe = regexp.MustCompile(`\$\{([^}]+)\}|\{\{([^}]+)\}\}`)

// strippedPrefixes are root segments rule authors write out of habit; the
// data object passed to Render is already the payload, so they are dropped.
var strippedPrefixes = map[string]bool{
	"payload":  true,
	"response": true,
	"trigger":  true,
}

// Render substitutes every placeholder in a template against the data object
// in a single pass. A placeholder whose path does not resolve, or resolves to
// null, is left verbatim so a typo stays visible in the delivered message.
func Render(template string, data any) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		groups := placeholderRe.FindStringSubmatch(match)
		inner := groups[1]
		if inner == "" {
			inner = groups[2]
		}
		path := strings.TrimSpace(inner)
		if path == "" {
			return match
		}

		segments := strings.Split(path, ".")
		if strippedPrefixes[segments[0]] {
			segments = segments[1:]
		}

		var v any
		if len(segments) == 0 {
			v = data
		} else {
			v = rules.LookupPath(data, segments)
		}
		if v == nil {
			return match
		}
		return stringify(v)
	})
}
