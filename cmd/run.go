package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idiomlab/rebusbench/internal/dataset"
	"github.com/idiomlab/rebusbench/internal/model"
	"github.com/idiomlab/rebusbench/internal/prompt"
	"github.com/idiomlab/rebusbench/internal/resilience"
	"github.com/idiomlab/rebusbench/internal/runner"
	"github.com/idiomlab/rebusbench/pkg/claude"
	"github.com/idiomlab/rebusbench/pkg/gemini"
)

var (
	runBackend string
	runStyle   string
	runLabel   string
	runModel   string
	runLimit   int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmark against a vision backend",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		backend := runBackend
		if backend == "" {
			backend = cfg.Run.Backend
		}
		styleName := runStyle
		if styleName == "" {
			styleName = cfg.Prompt.Style
		}
		style, err := prompt.ParseStyle(styleName)
		if err != nil {
			return err
		}
		if downgraded := effectiveStyle(style, backendSupportsCoT(backend)); downgraded != style {
			zap.L().Info("model lacks chain-of-thought support, downgrading style",
				zap.String("requested", style.String()),
				zap.String("style", downgraded.String()),
			)
			style = downgraded
		}

		label := runLabel
		if label == "" {
			label = time.Now().Format("20060102_150405")
		}

		samples, err := dataset.Load(cfg.Dataset.ImagesDir, cfg.Dataset.AnnotationsFile)
		if err != nil {
			return err
		}
		if runLimit > 0 && runLimit < len(samples) {
			samples = samples[:runLimit]
		}
		if len(samples) == 0 {
			return eris.New("run: dataset is empty")
		}

		client, modelName, err := backendClient(ctx, backend)
		if err != nil {
			return err
		}

		builder, err := prompt.NewBuilder(prompt.BuilderConfig{
			Question:     cfg.Prompt.Question,
			ExamplesFile: cfg.Dataset.ExamplesFile,
			TemplatesDir: cfg.Prompt.TemplatesDir,
		})
		if err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zap.L().Info("starting run",
			zap.String("label", label),
			zap.String("backend", backend),
			zap.String("model", modelName),
			zap.String("style", style.String()),
			zap.Int("samples", len(samples)),
		)

		r := runner.New(client, builder, st, runnerOptions())
		run, err := r.Run(ctx, &model.Run{
			Label:       label,
			Backend:     backend,
			Model:       modelName,
			PromptStyle: style.String(),
		}, style, samples)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Run %s %s: %d samples, %d failed\nResults: %s\n",
			run.Label, run.Status, run.Total, run.Failed, st.RunDir(run.Label))
		return nil
	},
}

// effectiveStyle downgrades a chain-of-thought style when the configured
// model cannot follow step-by-step instructions.
func effectiveStyle(style prompt.Style, supportsCoT bool) prompt.Style {
	if style.CoT && !supportsCoT {
		return style.WithoutCoT()
	}
	return style
}

func backendSupportsCoT(backend string) bool {
	switch backend {
	case "gemini":
		return cfg.Gemini.SupportsCoT
	case "claude":
		return cfg.Claude.SupportsCoT
	default:
		return true
	}
}

func runnerOptions() runner.Options {
	return runner.Options{
		Concurrency:   cfg.Run.Concurrency,
		RatePerMinute: cfg.Run.RatePerMinute,
		Retry: resilience.RetryConfig{
			MaxAttempts:    cfg.Retry.MaxAttempts,
			InitialBackoff: time.Duration(cfg.Retry.InitialBackoffSecs * float64(time.Second)),
			MaxBackoff:     time.Duration(cfg.Retry.MaxBackoffSecs * float64(time.Second)),
		},
	}
}

func backendClient(ctx context.Context, backend string) (runner.VisionClient, string, error) {
	switch backend {
	case "gemini":
		modelName := cfg.Gemini.Model
		if runModel != "" {
			modelName = runModel
		}
		client, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:          cfg.Gemini.APIKey,
			Model:           modelName,
			UseVertex:       cfg.Gemini.UseVertex,
			Project:         cfg.Gemini.Project,
			Location:        cfg.Gemini.Location,
			MaxOutputTokens: int32(cfg.Gemini.MaxOutputTokens),
		})
		if err != nil {
			return nil, "", err
		}
		return geminiAdapter{client}, modelName, nil
	case "claude":
		modelName := cfg.Claude.Model
		if runModel != "" {
			modelName = runModel
		}
		client := claude.NewClient(cfg.Claude.APIKey, modelName,
			claude.WithMaxTokens(int64(cfg.Claude.MaxTokens)))
		return claudeAdapter{client}, modelName, nil
	default:
		return nil, "", eris.Errorf("run: unknown backend %q (want gemini or claude)", backend)
	}
}

type geminiAdapter struct {
	client gemini.Client
}

func (a geminiAdapter) Solve(ctx context.Context, promptText string, imageData []byte, mimeType string) (string, error) {
	resp, err := a.client.SolveImage(ctx, gemini.SolveRequest{
		Prompt:    promptText,
		ImageData: imageData,
		MIMEType:  mimeType,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

type claudeAdapter struct {
	client claude.Client
}

func (a claudeAdapter) Solve(ctx context.Context, promptText string, imageData []byte, mimeType string) (string, error) {
	resp, err := a.client.SolveImage(ctx, claude.SolveRequest{
		Prompt:    promptText,
		ImageData: imageData,
		MIMEType:  mimeType,
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func init() {
	runCmd.Flags().StringVar(&runBackend, "backend", "", "vision backend (gemini or claude)")
	runCmd.Flags().StringVar(&runStyle, "style", "", "prompt style (zero_shot, fewshotN_cot, fewshotN_nocot)")
	runCmd.Flags().StringVar(&runLabel, "label", "", "run label (default: timestamp)")
	runCmd.Flags().StringVar(&runModel, "model", "", "override the configured model")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "only run the first N samples")
	rootCmd.AddCommand(runCmd)
}
