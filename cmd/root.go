package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/idiomlab/rebusbench/internal/config"
	"github.com/idiomlab/rebusbench/internal/extract"
	"github.com/idiomlab/rebusbench/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rebusbench",
	Short: "Rebus idiom benchmark for vision language models",
	Long:  "Runs rebus puzzle images through vision models, extracts idiom answers from free-form responses, and scores them against annotations.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openStore() (*store.Store, error) {
	return store.Open(cfg.Store.DBPath, cfg.Run.LogsDir)
}

func newExtractor() (*extract.Extractor, error) {
	if cfg.Extract.LexiconFile == "" {
		return extract.Default(), nil
	}
	lex, err := extract.LoadLexicon(cfg.Extract.LexiconFile)
	if err != nil {
		return nil, err
	}
	return extract.New(lex), nil
}
