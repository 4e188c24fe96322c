package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"

	"github.com/idiomlab/rebusbench/internal/eval"
	"github.com/idiomlab/rebusbench/internal/model"
)

var (
	evalXLSXPath string
	evalExamples int
	evalNoWrite  bool
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <label-or-results-path>",
	Short: "Score a run's results against the ground truth",
	Long:  "Extracts answers from each raw model response, compares raw and extracted predictions to the ground truth, and reports match rates and token F1.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		target := args[0]

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		records, err := st.LoadResults(target)
		if err != nil {
			return err
		}

		extractor, err := newExtractor()
		if err != nil {
			return err
		}
		evaluator := eval.New(extractor, eval.WithParallelism(cfg.Extract.Parallelism))

		report, scores, err := evaluator.Evaluate(ctx, records)
		if err != nil {
			return err
		}

		printReport(os.Stdout, report)
		if evalExamples > 0 {
			printFlippedSamples(os.Stdout, scores, evalExamples)
		}

		// A bare label gets its metrics saved next to results.json.
		if !evalNoWrite && !strings.ContainsAny(target, "/\\") {
			if err := st.WriteMetrics(target, report); err != nil {
				return err
			}
		}

		if evalXLSXPath != "" {
			if err := exportScoresXLSX(evalXLSXPath, scores); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Per-sample scores written to %s\n", evalXLSXPath)
		}
		return nil
	},
}

func printReport(w *os.File, r *model.MetricsReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Samples\t%d (skipped %d)\n", r.TotalSamples, r.SkippedSamples)
	fmt.Fprintf(tw, "Raw accuracy\t%.4f\n", r.RawAccuracy)
	fmt.Fprintf(tw, "Exact match\t%.4f (%d)\n", r.ExactMatchAccuracy, r.ExactMatchCount)
	fmt.Fprintf(tw, "Partial match\t%.4f (%d)\n", r.PartialMatchAccuracy, r.PartialMatchCount)
	fmt.Fprintf(tw, "Macro F1\t%.4f\n", r.MacroF1)
	fmt.Fprintf(tw, "Extraction helped\t%d\n", r.ExtractionHelped)
	fmt.Fprintf(tw, "Extraction hurt\t%d\n", r.ExtractionHurt)
	tw.Flush()
}

// printFlippedSamples lists samples where extraction changed the verdict,
// the ones worth eyeballing when tuning the extractor.
func printFlippedSamples(w *os.File, scores []model.SampleScore, limit int) {
	helped, hurt := 0, 0
	for _, s := range scores {
		if s.Helped && helped < limit {
			helped++
			fmt.Fprintf(w, "\nHELPED %s (%s)\n  truth:      %s\n  raw:        %s\n  extracted:  %s\n",
				s.ImageID, s.Extraction.Stage, s.GroundTruth, truncate(s.Prediction, 120), s.Extraction.Text)
		}
		if s.Hurt && hurt < limit {
			hurt++
			fmt.Fprintf(w, "\nHURT %s (%s)\n  truth:      %s\n  raw:        %s\n  extracted:  %s\n",
				s.ImageID, s.Extraction.Stage, s.GroundTruth, truncate(s.Prediction, 120), s.Extraction.Text)
		}
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func exportScoresXLSX(path string, scores []model.SampleScore) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("scores")
	if err != nil {
		return eris.Wrap(err, "evaluate: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, name := range []string{"image_id", "ground_truth", "prediction", "extracted", "stage", "raw_match", "exact_match", "partial_match", "token_f1"} {
		header.AddCell().SetString(name)
	}

	for _, s := range scores {
		row := sheet.AddRow()
		row.AddCell().SetString(s.ImageID)
		row.AddCell().SetString(s.GroundTruth)
		row.AddCell().SetString(s.Prediction)
		row.AddCell().SetString(s.Extraction.Text)
		row.AddCell().SetString(string(s.Extraction.Stage))
		row.AddCell().SetBool(s.RawMatch)
		row.AddCell().SetBool(s.ExactMatch)
		row.AddCell().SetBool(s.PartialMatch)
		row.AddCell().SetFloat(s.TokenF1)
	}

	if err := file.Save(path); err != nil {
		return eris.Wrapf(err, "evaluate: save xlsx %s", path)
	}
	return nil
}

func init() {
	evaluateCmd.Flags().StringVar(&evalXLSXPath, "xlsx", "", "export per-sample scores to an XLSX file")
	evaluateCmd.Flags().IntVar(&evalExamples, "examples", 0, "print up to N helped and N hurt samples")
	evaluateCmd.Flags().BoolVar(&evalNoWrite, "no-write", false, "skip writing metrics.json to the run directory")
	rootCmd.AddCommand(evaluateCmd)
}
