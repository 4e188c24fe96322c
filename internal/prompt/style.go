package prompt

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
)

// Style identifies how a prompt is assembled: zero-shot or few-shot, and
// whether the model is asked to reason step by step first.
type Style struct {
	FewShot bool
	Count   int // number of few-shot examples; 0 for zero-shot
	CoT     bool
}

var styleRe = regexp.MustCompile(`^fewshot(\d+)_(cot|nocot)$`)

// ParseStyle parses a style name: "zero_shot", "fewshot2_cot",
// "fewshot3_nocot", and so on.
func ParseStyle(name string) (Style, error) {
	if name == "zero_shot" {
		return Style{}, nil
	}
	m := styleRe.FindStringSubmatch(name)
	if m == nil {
		return Style{}, eris.Errorf("prompt: unknown style %q", name)
	}
	count, err := strconv.Atoi(m[1])
	if err != nil || count < 1 {
		return Style{}, eris.Errorf("prompt: bad example count in style %q", name)
	}
	return Style{FewShot: true, Count: count, CoT: m[2] == "cot"}, nil
}

// String renders the canonical style name.
func (s Style) String() string {
	if !s.FewShot {
		return "zero_shot"
	}
	suffix := "nocot"
	if s.CoT {
		suffix = "cot"
	}
	return fmt.Sprintf("fewshot%d_%s", s.Count, suffix)
}

// WithoutCoT downgrades a chain-of-thought style for models that do not
// support it.
func (s Style) WithoutCoT() Style {
	s.CoT = false
	return s
}
