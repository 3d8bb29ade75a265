package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only whitespace", "   \t\n ", ""},
		{"only punctuation", "--!!..", ""},
		{"lower-cases", "Road MAINTENANCE", "road maintenance"},
		{"punctuation becomes space", "Supply of P.P.E. (masks)", "supply of p p e masks"},
		{"collapses whitespace", "  school   \t building\nworks ", "school building works"},
		{"hyphenated words split", "Co-operative", "co operative"},
		{"keeps digits", "Lot 3/2024", "lot 3 2024"},
		{"underscore is not alphanumeric", "snake_case", "snake case"},
		{"unicode letters kept", "Straßenbau ÉCOLE", "straßenbau école"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Text(tt.input))
		})
	}
}

func TestTextIsIdempotent(t *testing.T) {
	inputs := []string{"Hello, World!", "  A--B  c ", "Ünïcödé & co.", ""}
	for _, in := range inputs {
		once := Text(in)
		assert.Equal(t, once, Text(once), "input %q", in)
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"road", "repair", "lot", "2"}, Tokens("Road repair - Lot 2"))
	assert.Empty(t, Tokens("   "))
}

func TestCountry(t *testing.T) {
	assert.Equal(t, "DE", Country(" de "))
	assert.Equal(t, "", Country(""))
}

func TestCodes(t *testing.T) {
	input := []string{"45000000", " 71000000", "", "45000000", "30200000 "}
	got := Codes(input)

	assert.Equal(t, []string{"30200000", "45000000", "71000000"}, got)
	// Input must be left untouched
	assert.Equal(t, []string{"45000000", " 71000000", "", "45000000", "30200000 "}, input)

	assert.Nil(t, Codes(nil))
	assert.Empty(t, Codes([]string{" ", ""}))
}
