package extract

import "strings"

// rubricRule is one additive line of the candidate-scoring rubric. The
// rubric lives in a table rather than inline conditionals so it can be
// unit-tested and tuned without touching extraction logic.
type rubricRule struct {
	name   string
	weight int
	match  func(s *Scorer, candidate string) bool
}

var rubric = []rubricRule{
	{
		name:   "idiom-sized",
		weight: 10,
		match: func(_ *Scorer, c string) bool {
			n := len(strings.Fields(c))
			return n >= 3 && n <= 6
		},
	},
	{
		name:   "short-enough",
		weight: 5,
		match: func(_ *Scorer, c string) bool {
			return len(strings.Fields(c)) <= 8
		},
	},
	{
		name:   "not-description",
		weight: 5,
		match: func(s *Scorer, c string) bool {
			return !s.classifier.IsDescription(c)
		},
	},
	{
		name:   "has-article",
		weight: 2,
		match: func(_ *Scorer, c string) bool {
			for _, f := range strings.Fields(strings.ToLower(c)) {
				if f == "a" || f == "an" || f == "the" {
					return true
				}
			}
			return false
		},
	},
}

// Scorer ranks candidate answer phrases produced within one extraction
// stage.
type Scorer struct {
	classifier *Classifier
}

// NewScorer builds a Scorer that consults the given classifier.
func NewScorer(classifier *Classifier) *Scorer {
	return &Scorer{classifier: classifier}
}

// Score computes a candidate's additive rubric score.
func (s *Scorer) Score(candidate string) int {
	total := 0
	for _, rule := range rubric {
		if rule.match(s, candidate) {
			total += rule.weight
		}
	}
	return total
}

// SelectBest returns the highest-scoring candidate. Ties keep the first
// occurrence, so a given candidate slice always resolves the same way.
func (s *Scorer) SelectBest(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	if len(candidates) == 1 {
		return candidates[0]
	}

	best := candidates[0]
	bestScore := s.Score(best)
	for _, c := range candidates[1:] {
		if score := s.Score(c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return best
}
