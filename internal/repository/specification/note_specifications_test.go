package specification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text passes through", "grocery list", "grocery list"},
		{"percent is literal", "100% done", `100\% done`},
		{"underscore is literal", "snake_case", `snake\_case`},
		{"backslash is escaped first", `back\slash`, `back\\slash`},
		{"mixed metacharacters", `50%_\`, `50\%\_\\`},
		{"empty query", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, escapeLike(tc.input))
		})
	}
}
