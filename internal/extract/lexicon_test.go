package extract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLexiconPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	content := "filler_suffixes:\n  - idiom\n  - saying\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	lex, err := LoadLexicon(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"idiom", "saying"}, lex.FillerSuffixes)
	// Untouched lists keep the defaults.
	assert.Equal(t, DefaultLexicon().IntroKeywords, lex.IntroKeywords)
	assert.Equal(t, DefaultLexicon().DescriptionMarkers, lex.DescriptionMarkers)
}

func TestLoadLexiconMissingFile(t *testing.T) {
	_, err := LoadLexicon(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
