package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases and strips article", "A Drop in the Bucket!", "drop in the bucket"},
		{"keeps internal articles", "Spill the Beans", "spill the beans"},
		{"quote then article", `"the cat"`, "cat"},
		{"stacked articles", "the the cat", "cat"},
		{"an article", "an apple a day", "apple a day"},
		{"dash runs become spaces", "rock-solid plan", "rock solid plan"},
		{"underscores too", "piece_of_cake", "piece of cake"},
		{"and becomes ampersand", "rock and roll", "rock & roll"},
		{"texting shorthand", "u r late", "you are late"},
		{"whitespace collapsed", "  spill   the beans  ", "spill the beans"},
		{"edge punctuation", "**break the ice.**", "break the ice"},
		{"curly quotes", "“break the ice”", "break the ice"},
		{"empty", "", ""},
		{"only punctuation", "?!.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"A Drop in the Bucket!",
		`"the cat"`,
		"the the the cat",
		"rock and roll",
		"u r my sunshine",
		"'an old flame'",
		"** the - big _ apple **",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
