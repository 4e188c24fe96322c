package extract

import "strings"

// WordBounds is the allowed word count for a plausible answer at a given
// cascade stage. The bracket-marker stage uses a tight [2,8]; later
// heuristic stages are more permissive.
type WordBounds struct {
	Min int
	Max int
}

// Default bounds for the heuristic stages.
var defaultBounds = WordBounds{Min: 1, Max: 10}

// Classifier decides whether a piece of text plausibly is an idiom or is
// descriptive prose about the puzzle. Pure and stateless apart from its
// injected lexicon.
type Classifier struct {
	lex Lexicon
}

// NewClassifier builds a Classifier over the given lexicon.
func NewClassifier(lex Lexicon) *Classifier {
	return &Classifier{lex: lex}
}

// IsDescription reports whether text reads as meta-commentary about the
// puzzle rather than an answer: empty text, text containing any
// description marker, or a single all-caps word (a literal label pulled
// from the image, not an idiom).
func (c *Classifier) IsDescription(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}

	lower := strings.ToLower(text)
	for _, marker := range c.lex.DescriptionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}

	if fields := strings.Fields(text); len(fields) == 1 && text == strings.ToUpper(text) {
		return true
	}

	return false
}

// IsPlausibleAnswer reports whether text could be a complete idiom under
// the given word-count bounds. A single-word answer shorter than 8
// characters is rejected as a likely label fragment.
func (c *Classifier) IsPlausibleAnswer(text string, bounds WordBounds) bool {
	text = strings.TrimSpace(text)
	if len(text) < 3 || len(text) > 100 {
		return false
	}

	words := len(strings.Fields(text))
	if words < bounds.Min || words > bounds.Max {
		return false
	}
	if words == 1 && len(text) < 8 {
		return false
	}

	return !c.IsDescription(text)
}
