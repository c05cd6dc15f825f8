package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// StrictPolicy removes all HTML tags and attributes.
var StrictPolicy = bluemonday.StrictPolicy()

// Text strips all HTML tags. The result is still HTML-escaped.
func Text(input string) string {
	return StrictPolicy.Sanitize(input)
}

// Plain strips tags, decodes entities and collapses whitespace so that imported
// values are stored as plain text and escaped once, at render time.
func Plain(input string) string {
	return strings.Join(strings.Fields(html.UnescapeString(Text(input))), " ")
}

// PlainSlice applies Plain to each value and drops values that end up empty.
func PlainSlice(inputs []string) []string {
	if inputs == nil {
		return nil
	}
	out := make([]string, 0, len(inputs))
	for _, input := range inputs {
		if cleaned := Plain(input); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}
