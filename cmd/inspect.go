package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/idiomlab/rebusbench/internal/extract"
)

var inspectText string

var inspectCmd = &cobra.Command{
	Use:   "inspect [label image-id]",
	Short: "Trace answer extraction for one response",
	Long:  "Runs the extraction cascade on a stored response (or on --text) and shows the winning stage, the extracted answer, its normalized form, and every stage's candidates with their rubric scores.",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw := inspectText
		if raw == "" {
			if len(args) != 2 {
				return fmt.Errorf("inspect: need <label> <image-id>, or --text")
			}
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			records, err := st.LoadResults(args[0])
			if err != nil {
				return err
			}
			found := false
			for _, rec := range records {
				if rec.ImageID == args[1] && rec.Prediction != nil {
					raw = *rec.Prediction
					found = true
					break
				}
			}
			if !found {
				return fmt.Errorf("inspect: no prediction for %s in run %s", args[1], args[0])
			}
		}

		extractor, err := newExtractor()
		if err != nil {
			return err
		}
		printExtraction(os.Stdout, extractor, raw)
		return nil
	},
}

func printExtraction(w io.Writer, extractor *extract.Extractor, raw string) {
	outcome := extractor.Extract(raw)
	fmt.Fprintf(w, "raw:        %s\n", raw)
	fmt.Fprintf(w, "stage:      %s\n", outcome.Stage)
	fmt.Fprintf(w, "extracted:  %s\n", outcome.Text)
	fmt.Fprintf(w, "normalized: %s\n", extract.Normalize(outcome.Text))

	fmt.Fprintf(w, "\ncascade:\n")
	for _, tr := range extractor.Trace(raw) {
		marker := " "
		if tr.Selected {
			marker = "*"
		}
		if len(tr.Candidates) == 0 {
			fmt.Fprintf(w, "%s %-16s (no candidates)\n", marker, tr.Stage)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", marker, tr.Stage)
		for i, c := range tr.Candidates {
			fmt.Fprintf(w, "    %3d  %s\n", tr.Scores[i], c)
		}
	}
}

func init() {
	inspectCmd.Flags().StringVar(&inspectText, "text", "", "extract from this text instead of a stored response")
	rootCmd.AddCommand(inspectCmd)
}
