package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/idiomlab/rebusbench/internal/dataset"
	"github.com/idiomlab/rebusbench/internal/prompt"
	"github.com/idiomlab/rebusbench/internal/runner"
)

var retryCmd = &cobra.Command{
	Use:   "retry <label>",
	Short: "Reprocess a run's failed and missing samples",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		label := args[0]

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, label)
		if err != nil {
			return err
		}
		style, err := prompt.ParseStyle(run.PromptStyle)
		if err != nil {
			return err
		}

		samples, err := dataset.Load(cfg.Dataset.ImagesDir, cfg.Dataset.AnnotationsFile)
		if err != nil {
			return err
		}

		client, _, err := backendClient(ctx, run.Backend)
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

		r := runner.New(client, builder, st, runnerOptions())
		run, err = r.Resume(ctx, label, style, samples)
		if err != nil {
			return err
		}

		fmt.Fprintf(os.Stdout, "Run %s %s: %d samples, %d failed\n",
			run.Label, run.Status, run.Total, run.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(retryCmd)
}
