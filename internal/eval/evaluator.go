package eval

import (
	"context"
	"math"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/idiomlab/rebusbench/internal/extract"
	"github.com/idiomlab/rebusbench/internal/model"
)

// Evaluator turns a batch of result records into a MetricsReport. Each
// sample is scored independently, so the per-sample pass fans out across
// a worker group; aggregation is a commutative reduction over the scored
// slice and does not depend on completion order.
type Evaluator struct {
	extractor   *extract.Extractor
	parallelism int
}

// Option configures the evaluator.
type Option func(*Evaluator)

// WithParallelism caps the number of samples scored concurrently.
func WithParallelism(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.parallelism = n
		}
	}
}

// New builds an Evaluator around the given extractor.
func New(extractor *extract.Extractor, opts ...Option) *Evaluator {
	e := &Evaluator{
		extractor:   extractor,
		parallelism: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate scores every valid record and aggregates the batch metrics.
// A record missing its ground truth or prediction is counted as skipped
// and excluded from every rate denominator; it never aborts the batch.
// An empty batch yields a zeroed report rather than an error.
func (e *Evaluator) Evaluate(ctx context.Context, records []model.ResultRecord) (*model.MetricsReport, []model.SampleScore, error) {
	valid := make([]model.ResultRecord, 0, len(records))
	skipped := 0
	for _, r := range records {
		if r.Valid() {
			valid = append(valid, r)
		} else {
			skipped++
		}
	}

	scores := make([]model.SampleScore, len(valid))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, r := range valid {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			scores[i] = e.scoreSample(r)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := aggregate(scores, skipped)
	return report, scores, nil
}

func (e *Evaluator) scoreSample(r model.ResultRecord) model.SampleScore {
	gt := extract.Normalize(*r.GroundTruth)
	rawNorm := extract.Normalize(*r.Prediction)

	outcome := e.extractor.Extract(*r.Prediction)
	extNorm := extract.Normalize(outcome.Text)

	rawMatch := rawNorm == gt
	exact := extNorm == gt

	return model.SampleScore{
		ImageID:      r.ImageID,
		GroundTruth:  *r.GroundTruth,
		Prediction:   *r.Prediction,
		Extraction:   outcome,
		RawMatch:     rawMatch,
		ExactMatch:   exact,
		PartialMatch: partialMatch(extNorm, gt),
		TokenF1:      TokenF1(extNorm, gt),
		Helped:       exact && !rawMatch,
		Hurt:         rawMatch && !exact,
	}
}

// partialMatch reports whether one normalized phrase contains the other.
// Two empty phrases agree vacuously; a single empty phrase matches
// nothing (the empty string is a substring of everything, which is not a
// useful signal).
func partialMatch(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// TokenF1 computes token-set F1 between two normalized phrases. Tokens
// are whitespace-split and deduplicated, so repeated words carry no extra
// weight. Both sides empty is vacuous agreement (1.0); exactly one side
// empty is total disagreement (0.0).
func TokenF1(predicted, truth string) float64 {
	predSet := tokenSet(predicted)
	truthSet := tokenSet(truth)

	switch {
	case len(predSet) == 0 && len(truthSet) == 0:
		return 1.0
	case len(predSet) == 0 || len(truthSet) == 0:
		return 0.0
	}

	overlap := 0
	for tok := range predSet {
		if truthSet[tok] {
			overlap++
		}
	}

	precision := float64(overlap) / float64(len(predSet))
	recall := float64(overlap) / float64(len(truthSet))
	if precision+recall == 0 {
		return 0.0
	}
	return 2 * precision * recall / (precision + recall)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

func aggregate(scores []model.SampleScore, skipped int) *model.MetricsReport {
	report := &model.MetricsReport{
		TotalSamples:   len(scores),
		SkippedSamples: skipped,
	}

	rawMatches := 0
	var f1Sum float64
	for _, s := range scores {
		if s.RawMatch {
			rawMatches++
		}
		if s.ExactMatch {
			report.ExactMatchCount++
		}
		if s.PartialMatch {
			report.PartialMatchCount++
		}
		if s.Helped {
			report.ExtractionHelped++
		}
		if s.Hurt {
			report.ExtractionHurt++
		}
		f1Sum += s.TokenF1
	}

	if n := float64(len(scores)); n > 0 {
		report.RawAccuracy = Round4(float64(rawMatches) / n)
		report.ExactMatchAccuracy = Round4(float64(report.ExactMatchCount) / n)
		report.PartialMatchAccuracy = Round4(float64(report.PartialMatchCount) / n)
		report.MacroF1 = Round4(f1Sum / n)
	}
	return report
}

// Round4 rounds to 4 decimal places so metrics files diff cleanly
// between runs.
func Round4(x float64) float64 {
	return math.Round(x*10000) / 10000
}
