package prompt

import (
	"embed"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/rotisserie/eris"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultQuestion is the question posed for every target image.
const DefaultQuestion = "This rebus puzzle is an idiom which may contain text, figures, and other logical clues to represent the idiom. Can you figure out what this idiom is?"

// Example is one worked few-shot example.
type Example struct {
	Filename  string `json:"filename"`
	Reasoning string `json:"reasoning"`
	Answer    string `json:"answer"`
}

// exampleSets groups the worked examples by prompt style, mirroring the
// layout of the examples JSON file.
type exampleSets struct {
	ZeroShot     []Example `json:"zero_shot"`
	FewshotCoT   []Example `json:"fewshot_cot"`
	FewshotNoCoT []Example `json:"fewshot_nocot"`
}

// Builder renders prompts for a target image from text templates. The
// built-in templates can be overridden per style by dropping
// "<style-family>.tmpl" files into a directory.
type Builder struct {
	question  string
	examples  exampleSets
	templates *template.Template
}

// BuilderConfig configures a Builder.
type BuilderConfig struct {
	// Question overrides DefaultQuestion when non-empty.
	Question string
	// ExamplesFile is the JSON file of worked examples. Required for
	// few-shot styles; optional for zero-shot.
	ExamplesFile string
	// TemplatesDir, when non-empty, overrides the embedded templates.
	TemplatesDir string
}

// NewBuilder loads templates and examples and returns a ready Builder.
func NewBuilder(cfg BuilderConfig) (*Builder, error) {
	b := &Builder{question: cfg.Question}
	if b.question == "" {
		b.question = DefaultQuestion
	}

	var err error
	if cfg.TemplatesDir != "" {
		b.templates, err = template.ParseGlob(filepath.Join(cfg.TemplatesDir, "*.tmpl"))
	} else {
		b.templates, err = template.ParseFS(templateFS, "templates/*.tmpl")
	}
	if err != nil {
		return nil, eris.Wrap(err, "prompt: parse templates")
	}

	if cfg.ExamplesFile != "" {
		data, err := os.ReadFile(cfg.ExamplesFile)
		if err != nil {
			return nil, eris.Wrap(err, "prompt: read examples file")
		}
		if err := json.Unmarshal(data, &b.examples); err != nil {
			return nil, eris.Wrap(err, "prompt: parse examples file")
		}
	}

	return b, nil
}

// templateData is what the templates render against.
type templateData struct {
	Question       string
	TargetFilename string
	CoT            bool
	Examples       []Example
}

// Build renders the prompt for one target image. Few-shot styles take
// the first style.Count worked examples from the matching example set;
// asking for more examples than the file provides is an error so a thin
// examples file cannot silently weaken an experiment.
func (b *Builder) Build(style Style, targetImage string) (string, error) {
	data := templateData{
		Question:       b.question,
		TargetFilename: filepath.Base(targetImage),
		CoT:            style.CoT,
	}

	name := "zero_shot.tmpl"
	if style.FewShot {
		name = "fewshot.tmpl"
		pool := b.examples.FewshotNoCoT
		if style.CoT {
			pool = b.examples.FewshotCoT
		}
		if len(pool) < style.Count {
			return "", eris.Errorf("prompt: style %s wants %d examples, file has %d", style, style.Count, len(pool))
		}
		data.Examples = pool[:style.Count]
	}

	var sb strings.Builder
	if err := b.templates.ExecuteTemplate(&sb, name, data); err != nil {
		return "", eris.Wrapf(err, "prompt: render %s", name)
	}
	return sb.String(), nil
}
