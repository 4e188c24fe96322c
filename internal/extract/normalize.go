package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	dashRunRe = regexp.MustCompile(`[-_]+`)
	edgePunct = regexp.MustCompile("^[.,!?;:'\"`*()\\[\\]{}“”‘’]+|[.,!?;:'\"`*()\\[\\]{}“”‘’]+$")

	wordRewrites = map[string]string{
		"and": "&",
		"u":   "you",
		"r":   "are",
	}
)

// Normalize canonicalizes a phrase for comparison: lower-case, collapsed
// whitespace, edge punctuation stripped, whole-word texting shorthand
// rewritten (and→&, u→you, r→are), dash and underscore runs flattened,
// and leading articles removed. Idempotent: Normalize(Normalize(x)) ==
// Normalize(x) for all x.
func Normalize(text string) string {
	s := strings.ToLower(norm.NFC.String(text))

	// Stripping punctuation can expose a leading article and vice versa
	// ("\"the cat\""), so run the pass to a fixpoint. Each rewrite is
	// stable on its own output, so this terminates quickly.
	for {
		next := normalizePass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizePass(s string) string {
	s = dashRunRe.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = edgePunct.ReplaceAllString(s, "")

	fields := strings.Fields(s)
	for i, f := range fields {
		if repl, ok := wordRewrites[f]; ok {
			fields[i] = repl
		}
	}
	s = strings.Join(fields, " ")

	for _, art := range []string{"a ", "an ", "the "} {
		s = strings.TrimPrefix(s, art)
	}
	return strings.TrimSpace(s)
}
