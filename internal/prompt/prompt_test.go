package prompt

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStyle(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Style
		wantErr bool
	}{
		{"zero shot", "zero_shot", Style{}, false},
		{"fewshot cot", "fewshot3_cot", Style{FewShot: true, Count: 3, CoT: true}, false},
		{"fewshot nocot", "fewshot5_nocot", Style{FewShot: true, Count: 5, CoT: false}, false},
		{"unknown", "oneshot", Style{}, true},
		{"zero count", "fewshot0_cot", Style{}, true},
		{"garbage suffix", "fewshot3_maybe", Style{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStyle(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStyleStringRoundTrips(t *testing.T) {
	for _, name := range []string{"zero_shot", "fewshot2_cot", "fewshot4_nocot"} {
		style, err := ParseStyle(name)
		require.NoError(t, err)
		assert.Equal(t, name, style.String())
	}
}

func TestStyleWithoutCoT(t *testing.T) {
	style, err := ParseStyle("fewshot3_cot")
	require.NoError(t, err)
	assert.Equal(t, "fewshot3_nocot", style.WithoutCoT().String())
}

func writeExamplesFile(t *testing.T) string {
	t.Helper()
	sets := exampleSets{
		FewshotCoT: []Example{
			{Filename: "ex1.png", Reasoning: "A bucket with a single falling drop.", Answer: "a drop in the bucket"},
			{Filename: "ex2.png", Reasoning: "Beans tipping out of a jar.", Answer: "spill the beans"},
		},
		FewshotNoCoT: []Example{
			{Filename: "ex1.png", Answer: "a drop in the bucket"},
			{Filename: "ex2.png", Answer: "spill the beans"},
		},
	}
	data, err := json.Marshal(sets)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "examples.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestBuildZeroShot(t *testing.T) {
	b, err := NewBuilder(BuilderConfig{})
	require.NoError(t, err)

	out, err := b.Build(Style{}, "/data/images/042.png")
	require.NoError(t, err)

	assert.Contains(t, out, "042.png")
	assert.Contains(t, out, DefaultQuestion)
	assert.Contains(t, out, "{{{your answer here}}}")
	assert.NotContains(t, out, "solved examples")
}

func TestBuildFewShotCoT(t *testing.T) {
	b, err := NewBuilder(BuilderConfig{ExamplesFile: writeExamplesFile(t)})
	require.NoError(t, err)

	style, err := ParseStyle("fewshot2_cot")
	require.NoError(t, err)

	out, err := b.Build(style, "042.png")
	require.NoError(t, err)

	assert.Contains(t, out, "{{{a drop in the bucket}}}")
	assert.Contains(t, out, "{{{spill the beans}}}")
	assert.Contains(t, out, "Reasoning: A bucket with a single falling drop.")
	assert.Contains(t, out, "step by step")
}

func TestBuildFewShotNoCoTOmitsReasoning(t *testing.T) {
	b, err := NewBuilder(BuilderConfig{ExamplesFile: writeExamplesFile(t)})
	require.NoError(t, err)

	style, err := ParseStyle("fewshot2_nocot")
	require.NoError(t, err)

	out, err := b.Build(style, "042.png")
	require.NoError(t, err)

	assert.Contains(t, out, "{{{a drop in the bucket}}}")
	assert.NotContains(t, out, "Reasoning:")
	assert.NotContains(t, out, "step by step")
}

func TestBuildFewShotTakesFirstN(t *testing.T) {
	b, err := NewBuilder(BuilderConfig{ExamplesFile: writeExamplesFile(t)})
	require.NoError(t, err)

	style, err := ParseStyle("fewshot1_nocot")
	require.NoError(t, err)

	out, err := b.Build(style, "042.png")
	require.NoError(t, err)

	assert.Contains(t, out, "{{{a drop in the bucket}}}")
	assert.NotContains(t, out, "{{{spill the beans}}}")
}

func TestBuildFewShotPoolTooSmall(t *testing.T) {
	b, err := NewBuilder(BuilderConfig{ExamplesFile: writeExamplesFile(t)})
	require.NoError(t, err)

	style, err := ParseStyle("fewshot9_cot")
	require.NoError(t, err)

	_, err = b.Build(style, "042.png")
	assert.Error(t, err)
}

func TestBuildCustomQuestion(t *testing.T) {
	b, err := NewBuilder(BuilderConfig{Question: "What idiom is this?"})
	require.NoError(t, err)

	out, err := b.Build(Style{}, "001.png")
	require.NoError(t, err)
	assert.Contains(t, out, "What idiom is this?")
	assert.False(t, strings.Contains(out, DefaultQuestion))
}
