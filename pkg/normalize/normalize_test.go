package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"the lord of THE rings: a story", "The Lord of the Rings: A Story"},
		{"an introduction to databases", "An Introduction to Databases"},
		{"jane doe", "Jane Doe"},
		{"o'brien-smith", "O'brien-smith"},
		{"", ""},
		{"the", "The"},
		{"school of engineering and applied science", "School of Engineering and Applied Science"},
		{"part one. the reckoning", "Part One. The Reckoning"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Title(tc.in), "input %q", tc.in)
	}
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", Email("  Jane.Doe@EXAMPLE.com "))
	assert.Equal(t, "", Email("   "))
}
