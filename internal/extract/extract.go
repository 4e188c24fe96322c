package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/idiomlab/rebusbench/internal/model"
)

const fallbackMaxLen = 50

// Strategy is one stage of the extraction cascade. TryExtract returns the
// candidate phrases the stage accepts from the text, already cleaned and
// plausibility-filtered; an empty result hands control to the next stage.
type Strategy interface {
	Stage() model.Stage
	TryExtract(text string) []string
}

// Extractor runs an ordered strategy cascade over a raw model response
// and returns the single best-guess answer phrase. It never fails: the
// final fallback stage accepts any input, including the empty string.
type Extractor struct {
	strategies []Strategy
	scorer     *Scorer
}

// New builds an Extractor with the default cascade over the given
// lexicon.
func New(lex Lexicon) *Extractor {
	classifier := NewClassifier(lex)
	scorer := NewScorer(classifier)
	cleaner := newCleaner(lex)

	return &Extractor{
		scorer: scorer,
		strategies: []Strategy{
			&bracketMarkerStage{cleaner: cleaner},
			&quotedStage{classifier: classifier, cleaner: cleaner},
			&keywordIntroStage{classifier: classifier, cleaner: cleaner, patterns: compileIntroPatterns(lex)},
			&standaloneLineStage{classifier: classifier, cleaner: cleaner},
			&firstSentenceStage{classifier: classifier, cleaner: cleaner},
			&ngramStage{classifier: classifier, cleaner: cleaner},
		},
	}
}

// Default returns an Extractor over the built-in lexicon.
func Default() *Extractor {
	return New(DefaultLexicon())
}

// Extract pulls the best-guess answer phrase out of raw response text.
// The first stage yielding at least one accepted candidate wins; ties
// within a stage are broken by the scorer.
func (e *Extractor) Extract(raw string) model.ExtractionOutcome {
	text := strings.TrimSpace(raw)
	if text == "" {
		return model.ExtractionOutcome{Text: "", Stage: model.StageFallbackRaw}
	}

	for _, st := range e.strategies {
		if candidates := st.TryExtract(text); len(candidates) > 0 {
			return model.ExtractionOutcome{
				Text:  e.scorer.SelectBest(candidates),
				Stage: st.Stage(),
			}
		}
	}

	if len([]rune(text)) > fallbackMaxLen {
		text = string([]rune(text)[:fallbackMaxLen])
	}
	return model.ExtractionOutcome{
		Text:  strings.TrimSpace(strings.ToLower(text)),
		Stage: model.StageFallbackRaw,
	}
}

// StageTrace records what one cascade stage produced for an input:
// its accepted candidates and their rubric scores, in stage order.
type StageTrace struct {
	Stage      model.Stage
	Candidates []string
	Scores     []int
	Selected   bool
}

// Trace runs every stage over the raw text, not just up to the first
// hit, and reports each stage's candidates with their scores. The stage
// marked Selected is the one Extract would have answered from.
func (e *Extractor) Trace(raw string) []StageTrace {
	text := strings.TrimSpace(raw)
	traces := make([]StageTrace, 0, len(e.strategies))
	selected := false
	for _, st := range e.strategies {
		tr := StageTrace{Stage: st.Stage(), Candidates: st.TryExtract(text)}
		for _, c := range tr.Candidates {
			tr.Scores = append(tr.Scores, e.scorer.Score(c))
		}
		if !selected && len(tr.Candidates) > 0 {
			tr.Selected = true
			selected = true
		}
		traces = append(traces, tr)
	}
	return traces
}

// --- candidate cleaning ---

// cleaner strips the filler that models wrap around answers: markdown
// emphasis, one layer of quotes, lead-ins like "the idiom is", and
// trailing labels like "idiom" or terminal punctuation.
type cleaner struct {
	lex Lexicon
}

func newCleaner(lex Lexicon) *cleaner {
	return &cleaner{lex: lex}
}

var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'`':      '`',
	'“': '”',
	'‘': '’',
}

func (c *cleaner) clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*")
	s = strings.TrimSpace(s)
	s = stripWrappingQuotes(s)

	// Lead-in fillers, outermost first.
	for changed := true; changed; {
		changed = false
		lower := strings.ToLower(s)
		for _, prefix := range c.lex.FillerPrefixes {
			if strings.HasPrefix(lower, prefix+" ") || strings.HasPrefix(lower, prefix+":") {
				s = strings.TrimSpace(s[len(prefix)+1:])
				changed = true
				break
			}
		}
	}

	// The filler prefix may have been wrapping a quoted answer.
	s = stripWrappingQuotes(s)

	// Leading "the" came along with the filler more often than it
	// belonged to the idiom; normalization strips articles anyway.
	if lower := strings.ToLower(s); strings.HasPrefix(lower, "the ") {
		s = s[len("the "):]
	}

	s = strings.TrimRight(s, ".,!?;: ")

	// Trailing label words ("... idiom").
	if fields := strings.Fields(s); len(fields) > 1 {
		last := strings.ToLower(fields[len(fields)-1])
		for _, suffix := range c.lex.FillerSuffixes {
			if last == suffix {
				s = strings.Join(fields[:len(fields)-1], " ")
				break
			}
		}
	}

	return strings.TrimSpace(strings.TrimRight(s, ".,!?;: "))
}

func stripWrappingQuotes(s string) string {
	runes := []rune(s)
	if len(runes) < 2 {
		return s
	}
	if closing, ok := quotePairs[runes[0]]; ok && runes[len(runes)-1] == closing {
		return strings.TrimSpace(string(runes[1 : len(runes)-1]))
	}
	return s
}

// --- stages ---

var bracketMarkerRe = regexp.MustCompile(`\{\{\{\s*([^{}]+?)\s*\}\}\}`)

// bracketMarkerStage looks for the reserved {{{...}}} answer marker the
// prompt asks the model to emit. A marker is trusted over every heuristic:
// its content is returned without a plausibility check, gated only on a
// sane word count.
type bracketMarkerStage struct {
	cleaner *cleaner
}

func (s *bracketMarkerStage) Stage() model.Stage { return model.StageBracketMarker }

func (s *bracketMarkerStage) TryExtract(text string) []string {
	for _, m := range bracketMarkerRe.FindAllStringSubmatch(text, -1) {
		candidate := s.cleaner.clean(m[1])
		if n := len(strings.Fields(candidate)); n >= 2 && n <= 8 {
			return []string{candidate}
		}
	}
	return nil
}

var quotedRes = []*regexp.Regexp{
	regexp.MustCompile(`"([^"\n]{3,60})"`),
	regexp.MustCompile("`([^`\n]{3,60})`"),
	// A single quote opens only after a non-word character, so the
	// apostrophes in "it's ... that's" do not pair into a candidate.
	regexp.MustCompile(`(?:^|\W)'([^'\n]{3,60})'`),
}

// quotedStage extracts text the model set off in quotes or backticks.
type quotedStage struct {
	classifier *Classifier
	cleaner    *cleaner
}

func (s *quotedStage) Stage() model.Stage { return model.StageQuoted }

func (s *quotedStage) TryExtract(text string) []string {
	var candidates []string
	for _, re := range quotedRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := s.cleaner.clean(m[1])
			if s.classifier.IsPlausibleAnswer(candidate, defaultBounds) {
				candidates = append(candidates, candidate)
			}
		}
	}
	return candidates
}

// introPattern pairs the regexes compiled for a single intro keyword.
type introPattern struct {
	bold  *regexp.Regexp
	plain *regexp.Regexp
}

// compileIntroPatterns builds, per intro keyword, a pattern for a bold
// answer near the keyword and one for a plain answer running to the next
// sentence boundary. Keywords are matched independently so a capture
// consumed by one keyword does not shadow a better match for another.
func compileIntroPatterns(lex Lexicon) []introPattern {
	patterns := make([]introPattern, 0, len(lex.IntroKeywords))
	for _, kw := range lex.IntroKeywords {
		quoted := regexp.QuoteMeta(kw)
		patterns = append(patterns, introPattern{
			bold:  regexp.MustCompile(fmt.Sprintf(`(?is)\b%s\b.{0,40}?\*\*["']?([^"'*\n]+?)["']?\*\*`, quoted)),
			plain: regexp.MustCompile(fmt.Sprintf(`(?i)\b%s\b(?:\s+is)?[,:]?\s+([^.!?\n]+)`, quoted)),
		})
	}
	return patterns
}

// keywordIntroStage matches the answer phrase following lead-ins like
// "the idiom is" or "this represents", up to the next sentence boundary.
// Each capture is also split on clause boundaries so a trailing
// restatement ("spill the beans, so spill beans") cannot drag down the
// real answer.
type keywordIntroStage struct {
	classifier *Classifier
	cleaner    *cleaner
	patterns   []introPattern
}

func (s *keywordIntroStage) Stage() model.Stage { return model.StageKeywordIntro }

var clauseSplitRe = regexp.MustCompile(`[,;]`)

func (s *keywordIntroStage) TryExtract(text string) []string {
	var candidates []string
	add := func(raw string) {
		// Clause pieces go in front of the full capture so that on a
		// rubric tie ("spill the beans" vs "spill the beans, so spill
		// beans") the tighter clause wins first-occurrence order.
		for _, piece := range append(clauseSplitRe.Split(raw, -1), raw) {
			candidate := s.cleaner.clean(piece)
			if s.classifier.IsPlausibleAnswer(candidate, defaultBounds) {
				candidates = append(candidates, candidate)
			}
		}
	}

	for _, p := range s.patterns {
		for _, m := range p.bold.FindAllStringSubmatch(text, -1) {
			add(m[1])
		}
	}
	for _, p := range s.patterns {
		for _, m := range p.plain.FindAllStringSubmatch(text, -1) {
			add(m[1])
		}
	}
	return candidates
}

// standaloneLineStage treats a short non-descriptive line as the answer;
// models often put the idiom on its own line after an explanation.
type standaloneLineStage struct {
	classifier *Classifier
	cleaner    *cleaner
}

func (s *standaloneLineStage) Stage() model.Stage { return model.StageStandaloneLine }

func (s *standaloneLineStage) TryExtract(text string) []string {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		candidate := s.cleaner.clean(line)
		if s.classifier.IsPlausibleAnswer(candidate, defaultBounds) {
			return []string{candidate}
		}
	}
	return nil
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]`)

// firstSentenceStage tests the response's first sentence on its own.
type firstSentenceStage struct {
	classifier *Classifier
	cleaner    *cleaner
}

func (s *firstSentenceStage) Stage() model.Stage { return model.StageFirstSentence }

func (s *firstSentenceStage) TryExtract(text string) []string {
	first := sentenceSplitRe.Split(text, 2)[0]
	candidate := s.cleaner.clean(first)
	if s.classifier.IsPlausibleAnswer(candidate, defaultBounds) {
		return []string{candidate}
	}
	return nil
}

// ngramStage is the last heuristic resort: slide word windows of length
// 3–8 across the full text and keep any span that reads like an idiom.
type ngramStage struct {
	classifier *Classifier
	cleaner    *cleaner
}

func (s *ngramStage) Stage() model.Stage { return model.StageNgramScan }

func (s *ngramStage) TryExtract(text string) []string {
	words := strings.Fields(text)
	var candidates []string
	for n := 3; n <= 8; n++ {
		for i := 0; i+n <= len(words); i++ {
			candidate := s.cleaner.clean(strings.Join(words[i:i+n], " "))
			if s.classifier.IsPlausibleAnswer(candidate, defaultBounds) {
				candidates = append(candidates, candidate)
			}
		}
	}
	return candidates
}
