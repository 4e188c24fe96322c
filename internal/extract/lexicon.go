package extract

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Lexicon holds the word lists the classifier and candidate cleaner work
// from. It is plain configuration data: construct one (or load it from
// YAML), hand it to NewClassifier, and never mutate it afterwards.
type Lexicon struct {
	// DescriptionMarkers flag text that narrates the puzzle instead of
	// answering it. Matched as lower-cased substrings.
	DescriptionMarkers []string `yaml:"description_markers"`

	// FillerPrefixes are lead-ins stripped from candidates before
	// plausibility testing ("the idiom is", "i think", ...).
	FillerPrefixes []string `yaml:"filler_prefixes"`

	// FillerSuffixes are trailing labels stripped from candidates
	// ("idiom", "puzzle", ...).
	FillerSuffixes []string `yaml:"filler_suffixes"`

	// IntroKeywords introduce the model's actual answer in prose
	// ("answer", "represents", ...). Used by the keyword-intro stage.
	IntroKeywords []string `yaml:"intro_keywords"`
}

// DefaultLexicon returns the built-in lists tuned against real VLM
// responses to rebus prompts.
func DefaultLexicon() Lexicon {
	return Lexicon{
		DescriptionMarkers: []string{
			"this idiom", "refers to", "let me think", "i can see",
			"word", "letter", "image", "shows", "written", "drawn",
			"depicts", "represents", "visual", "graphic", "picture",
			"illustration", "stacked", "positioned", "placed",
			"arranged", "bottom", "corner", "above", "below",
		},
		FillerPrefixes: []string{
			"the idiom is", "the answer is", "the solution is",
			"idiom is", "answer is", "solution is",
			"i think", "this is", "it is", "likely",
		},
		FillerSuffixes: []string{
			"idiom", "puzzle", "phrase",
		},
		IntroKeywords: []string{
			"idiom", "answer", "solution", "puzzle",
			"represents", "suggests", "therefore",
		},
	}
}

// LoadLexicon reads a Lexicon from a YAML file. Lists absent from the
// file fall back to the defaults, so a config can override just one list.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, eris.Wrap(err, "extract: read lexicon file")
	}

	lex := DefaultLexicon()
	var override Lexicon
	if err := yaml.Unmarshal(data, &override); err != nil {
		return Lexicon{}, eris.Wrap(err, "extract: parse lexicon file")
	}

	if len(override.DescriptionMarkers) > 0 {
		lex.DescriptionMarkers = override.DescriptionMarkers
	}
	if len(override.FillerPrefixes) > 0 {
		lex.FillerPrefixes = override.FillerPrefixes
	}
	if len(override.FillerSuffixes) > 0 {
		lex.FillerSuffixes = override.FillerSuffixes
	}
	if len(override.IntroKeywords) > 0 {
		lex.IntroKeywords = override.IntroKeywords
	}
	return lex, nil
}
