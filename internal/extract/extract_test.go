package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idiomlab/rebusbench/internal/model"
)

func TestExtractBracketMarker(t *testing.T) {
	e := Default()

	out := e.Extract("The idiom is {{{a drop in the bucket}}}")
	assert.Equal(t, model.StageBracketMarker, out.Stage)
	assert.Equal(t, "a drop in the bucket", out.Text)
}

func TestExtractBracketMarkerBeatsQuoted(t *testing.T) {
	e := Default()

	out := e.Extract(`It could be "a blessing in disguise" but I will go with {{{hold your horses}}}`)
	assert.Equal(t, model.StageBracketMarker, out.Stage)
	assert.Equal(t, "hold your horses", out.Text)
}

func TestExtractBracketMarkerWordCountGate(t *testing.T) {
	e := Default()

	// A marker outside the 2-8 word window is distrusted and the
	// cascade falls through to later stages.
	out := e.Extract("{{{one two three four five six seven eight nine}}} kick the bucket")
	assert.NotEqual(t, model.StageBracketMarker, out.Stage)

	// The first acceptable marker wins even when an earlier one is too long.
	out = e.Extract("{{{one two three four five six seven eight nine}}} then {{{kick the bucket}}}")
	assert.Equal(t, model.StageBracketMarker, out.Stage)
	assert.Equal(t, "kick the bucket", out.Text)
}

func TestExtractBracketMarkerStripsFiller(t *testing.T) {
	e := Default()

	out := e.Extract(`{{{The answer is "break the ice"}}}`)
	assert.Equal(t, model.StageBracketMarker, out.Stage)
	assert.Equal(t, "break the ice", out.Text)
}

func TestExtractQuoted(t *testing.T) {
	e := Default()

	out := e.Extract(`I believe this one must be "break the ice" based on the ice cubes.`)
	assert.Equal(t, model.StageQuoted, out.Stage)
	assert.Equal(t, "break the ice", out.Text)
}

func TestExtractQuotedSingleQuotes(t *testing.T) {
	e := Default()

	out := e.Extract(`My best reading is 'bite the bullet' given the clenched teeth.`)
	assert.Equal(t, model.StageQuoted, out.Stage)
	assert.Equal(t, "bite the bullet", out.Text)
}

func TestExtractQuotedIgnoresPossessiveApostrophes(t *testing.T) {
	e := Default()

	// Two apostrophes inside contractions must not pair into a quote.
	out := e.Extract("It's raining and that's flooding the street.")
	assert.NotEqual(t, model.StageQuoted, out.Stage)
	assert.NotEqual(t, "s raining and that", out.Text)
}

func TestExtractKeywordIntroPrefersFullClause(t *testing.T) {
	e := Default()

	out := e.Extract("This rebus represents spill the beans, so spill beans")
	assert.Equal(t, model.StageKeywordIntro, out.Stage)
	assert.Equal(t, "spill the beans", out.Text)
}

func TestExtractKeywordIntroBold(t *testing.T) {
	e := Default()

	out := e.Extract("Therefore, the answer to this one is **under the weather**.")
	assert.Equal(t, model.StageKeywordIntro, out.Stage)
	assert.Equal(t, "under the weather", out.Text)
}

func TestExtractStandaloneLine(t *testing.T) {
	e := Default()

	out := e.Extract("I can see two birds and one stone here.\nonce in a blue moon")
	assert.Equal(t, model.StageStandaloneLine, out.Stage)
	assert.Equal(t, "once in a blue moon", out.Text)
}

func TestExtractFirstSentence(t *testing.T) {
	e := Default()

	out := e.Extract("Bite the bullet. That is what the image depicts in my view.")
	assert.Equal(t, model.StageFirstSentence, out.Stage)
	assert.Equal(t, "Bite the bullet", out.Text)
}

func TestExtractNgramScan(t *testing.T) {
	e := Default()

	raw := "image shows letters stacked above word drawn picture kick the bucket visual"
	out := e.Extract(raw)
	assert.Equal(t, model.StageNgramScan, out.Stage)
	assert.Equal(t, "kick the bucket", out.Text)
}

func TestExtractFallback(t *testing.T) {
	e := Default()

	out := e.Extract("Image shows stacked letters drawn")
	assert.Equal(t, model.StageFallbackRaw, out.Stage)
	assert.Equal(t, "image shows stacked letters drawn", out.Text)
}

func TestExtractFallbackTruncates(t *testing.T) {
	e := Default()

	raw := strings.TrimSpace(strings.Repeat("image shows drawn letters ", 20))
	out := e.Extract(raw)
	assert.Equal(t, model.StageFallbackRaw, out.Stage)
	assert.LessOrEqual(t, len([]rune(out.Text)), 50)
	assert.True(t, strings.HasPrefix(out.Text, "image shows drawn letters"))
}

func TestExtractEmptyInput(t *testing.T) {
	e := Default()

	for _, raw := range []string{"", "   ", "\n\t"} {
		out := e.Extract(raw)
		assert.Equal(t, model.StageFallbackRaw, out.Stage)
		assert.Equal(t, "", out.Text)
	}
}

func TestExtractNeverPanicsOnHugeInput(t *testing.T) {
	e := Default()

	raw := strings.Repeat("the image shows a word written above a letter ", 500)
	out := e.Extract(raw)
	assert.NotEmpty(t, out.Stage)
}

func TestExtractCustomLexicon(t *testing.T) {
	lex := DefaultLexicon()
	lex.FillerPrefixes = append(lex.FillerPrefixes, "my best guess")

	e := New(lex)
	out := e.Extract("{{{my best guess: beat around the bush}}}")
	assert.Equal(t, model.StageBracketMarker, out.Stage)
	assert.Equal(t, "beat around the bush", out.Text)
}

func TestTraceReportsAllStages(t *testing.T) {
	e := Default()

	traces := e.Trace(`It could be "a blessing in disguise" but I will go with {{{hold your horses}}}`)
	assert.Len(t, traces, 6)

	assert.Equal(t, model.StageBracketMarker, traces[0].Stage)
	assert.True(t, traces[0].Selected)
	assert.Equal(t, []string{"hold your horses"}, traces[0].Candidates)
	assert.Equal(t, []int{20}, traces[0].Scores)

	assert.Equal(t, model.StageQuoted, traces[1].Stage)
	assert.False(t, traces[1].Selected)
	assert.Contains(t, traces[1].Candidates, "a blessing in disguise")
	assert.Contains(t, traces[1].Scores, 22)
}

func TestTraceMarksSingleSelectedStage(t *testing.T) {
	e := Default()

	selected := 0
	for _, tr := range e.Trace(`The answer is "piece of cake"`) {
		if tr.Selected {
			selected++
			assert.NotEmpty(t, tr.Candidates)
		}
		assert.Len(t, tr.Scores, len(tr.Candidates))
	}
	assert.Equal(t, 1, selected)
}
