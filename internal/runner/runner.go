// Package runner drives a benchmark run: for each dataset sample it
// builds a prompt, calls the vision backend, and persists the response
// artifact. Failures become ERROR predictions rather than aborting the
// run, so one bad sample never loses the rest.
package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/idiomlab/rebusbench/internal/model"
	"github.com/idiomlab/rebusbench/internal/prompt"
	"github.com/idiomlab/rebusbench/internal/resilience"
	"github.com/idiomlab/rebusbench/internal/store"
)

// VisionClient answers one image-plus-prompt query. Both backend
// packages satisfy it through a thin adapter.
type VisionClient interface {
	Solve(ctx context.Context, promptText string, imageData []byte, mimeType string) (string, error)
}

// Options configures a Runner.
type Options struct {
	Concurrency   int
	RatePerMinute int
	Retry         resilience.RetryConfig
	Breaker       resilience.CircuitBreakerConfig
}

// Runner executes benchmark runs against one vision backend.
type Runner struct {
	client  VisionClient
	builder *prompt.Builder
	store   *store.Store
	limiter *rate.Limiter
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	workers int
}

// New creates a Runner.
func New(client VisionClient, builder *prompt.Builder, st *store.Store, opts Options) *Runner {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.RatePerMinute <= 0 {
		opts.RatePerMinute = 60
	}
	return &Runner{
		client:  client,
		builder: builder,
		store:   st,
		limiter: rate.NewLimiter(rate.Limit(float64(opts.RatePerMinute)/60.0), 1),
		breaker: resilience.NewCircuitBreaker(opts.Breaker),
		retry:   opts.Retry,
		workers: opts.Concurrency,
	}
}

// Run registers the run and processes every sample, then consolidates
// the per-sample responses into results.json. Samples that already have
// a response artifact are skipped, so a restarted run resumes where it
// stopped.
func (r *Runner) Run(ctx context.Context, run *model.Run, style prompt.Style, samples []model.Sample) (*model.Run, error) {
	if err := r.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}
	if err := r.process(ctx, run, style, samples, nil); err != nil {
		return nil, err
	}
	return r.store.GetRun(ctx, run.Label)
}

// Resume reprocesses an existing run's unfinished or failed samples.
func (r *Runner) Resume(ctx context.Context, label string, style prompt.Style, samples []model.Sample) (*model.Run, error) {
	run, err := r.store.GetRun(ctx, label)
	if err != nil {
		return nil, err
	}
	retryable, err := r.retryableIDs(label)
	if err != nil {
		return nil, err
	}
	if err := r.process(ctx, run, style, samples, retryable); err != nil {
		return nil, err
	}
	return r.store.GetRun(ctx, label)
}

// process runs the sample loop. Samples with an existing response are
// skipped unless named in redo, so restarts and retries never redo
// finished work.
func (r *Runner) process(ctx context.Context, run *model.Run, style prompt.Style, samples []model.Sample, redo map[string]bool) error {
	if err := r.store.EnsureRunDirs(run.Label); err != nil {
		return err
	}
	done, err := r.store.CompletedResponses(run.Label)
	if err != nil {
		return err
	}

	var failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for _, sample := range samples {
		if done[sample.ImageID] && !redo[sample.ImageID] {
			continue
		}

		g.Go(func() error {
			resp := r.solveSample(gctx, run.Label, style, sample)
			if strings.HasPrefix(resp.Prediction, errorPrefix) {
				failed.Add(1)
			}
			return r.store.WriteResponse(run.Label, resp)
		})
	}

	runErr := g.Wait()

	records, collectErr := r.store.CollectResults(run.Label)
	if collectErr == nil {
		collectErr = r.store.WriteResults(run.Label, records)
	}

	status := model.RunStatusCompleted
	if runErr != nil || collectErr != nil {
		status = model.RunStatusFailed
	}
	finishErr := r.store.FinishRun(ctx, run.Label, status, len(records), int(failed.Load()))

	for _, err := range []error{runErr, collectErr, finishErr} {
		if err != nil {
			return err
		}
	}

	zap.L().Info("run finished",
		zap.String("label", run.Label),
		zap.Int("total", len(records)),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}

const errorPrefix = "ERROR:"

// solveSample never fails the run; any error is recorded as an ERROR
// prediction on the sample.
func (r *Runner) solveSample(ctx context.Context, label string, style prompt.Style, sample model.Sample) store.Response {
	resp := store.Response{
		ImageID:     sample.ImageID,
		GroundTruth: sample.GroundTruth,
	}

	text, err := r.builder.Build(style, filepath.Base(sample.ImagePath))
	if err == nil {
		err = r.store.WritePrompt(label, sample.ImageID, text)
	}

	var imageData []byte
	if err == nil {
		imageData, err = os.ReadFile(sample.ImagePath)
	}

	var answer string
	if err == nil {
		answer, err = resilience.Do(ctx, r.retry, func(ctx context.Context) (string, error) {
			if err := r.breaker.Allow(); err != nil {
				return "", err
			}
			if err := r.limiter.Wait(ctx); err != nil {
				return "", err
			}
			out, callErr := r.client.Solve(ctx, text, imageData, mimeFor(sample.ImagePath))
			r.breaker.Record(callErr)
			return out, callErr
		})
	}

	if err != nil {
		zap.L().Warn("sample failed",
			zap.String("image_id", sample.ImageID),
			zap.Error(err),
		)
		resp.Prediction = fmt.Sprintf("%s %v", errorPrefix, eris.Cause(err))
		return resp
	}

	resp.Prediction = answer
	return resp
}

// retryableIDs returns samples with no response yet or an ERROR prediction.
func (r *Runner) retryableIDs(label string) (map[string]bool, error) {
	records, err := r.store.CollectResults(label)
	if err != nil {
		return nil, err
	}
	retryable := make(map[string]bool)
	for _, rec := range records {
		if rec.Prediction != nil && strings.HasPrefix(*rec.Prediction, errorPrefix) {
			retryable[rec.ImageID] = true
		}
	}
	return retryable, nil
}

func mimeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "image/png"
	}
}
