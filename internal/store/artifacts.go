package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/idiomlab/rebusbench/internal/model"
)

// Per-run directory layout under the logs root:
//
//	<logsDir>/<label>/prompts/<image_id>.txt
//	<logsDir>/<label>/responses/<image_id>.json
//	<logsDir>/<label>/results.json
//	<logsDir>/<label>/metrics.json

// RunDir returns the artifact directory for a run label.
func (s *Store) RunDir(label string) string {
	return filepath.Join(s.logsDir, label)
}

// EnsureRunDirs creates the prompt and response directories for a run.
func (s *Store) EnsureRunDirs(label string) error {
	for _, sub := range []string{"prompts", "responses"} {
		if err := os.MkdirAll(filepath.Join(s.RunDir(label), sub), 0o755); err != nil {
			return eris.Wrapf(err, "store: create %s dir for run %s", sub, label)
		}
	}
	return nil
}

// WritePrompt saves the rendered prompt sent for one sample.
func (s *Store) WritePrompt(label, imageID, prompt string) error {
	path := filepath.Join(s.RunDir(label), "prompts", imageID+".txt")
	if err := os.WriteFile(path, []byte(prompt), 0o644); err != nil {
		return eris.Wrapf(err, "store: write prompt for %s", imageID)
	}
	return nil
}

// Response is the per-sample artifact written as each model call returns,
// so an interrupted run can be resumed without redoing finished samples.
type Response struct {
	ImageID     string `json:"image_id"`
	GroundTruth string `json:"ground_truth"`
	Prediction  string `json:"prediction"`
}

// WriteResponse saves one sample's response.
func (s *Store) WriteResponse(label string, resp Response) error {
	path := filepath.Join(s.RunDir(label), "responses", resp.ImageID+".json")
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "store: marshal response for %s", resp.ImageID)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "store: write response for %s", resp.ImageID)
	}
	return nil
}

// CompletedResponses returns the image IDs that already have a response
// artifact for this run.
func (s *Store) CompletedResponses(label string) (map[string]bool, error) {
	dir := filepath.Join(s.RunDir(label), "responses")
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: read responses for run %s", label)
	}

	done := make(map[string]bool, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		done[strings.TrimSuffix(name, ".json")] = true
	}
	return done, nil
}

// WriteResults saves the consolidated results array for a run.
func (s *Store) WriteResults(label string, records []model.ResultRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: marshal results")
	}
	path := filepath.Join(s.RunDir(label), "results.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "store: write results for run %s", label)
	}
	return nil
}

// LoadResults reads a results file. The path may be a run directory, a
// run label under the logs root, or a direct path to a results JSON file.
func (s *Store) LoadResults(pathOrLabel string) ([]model.ResultRecord, error) {
	path := s.resolveResultsPath(pathOrLabel)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read results %s", path)
	}
	var records []model.ResultRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, eris.Wrapf(err, "store: parse results %s", path)
	}
	return records, nil
}

func (s *Store) resolveResultsPath(pathOrLabel string) string {
	if strings.HasSuffix(pathOrLabel, ".json") {
		return pathOrLabel
	}
	if info, err := os.Stat(pathOrLabel); err == nil && info.IsDir() {
		return filepath.Join(pathOrLabel, "results.json")
	}
	return filepath.Join(s.logsDir, pathOrLabel, "results.json")
}

// CollectResults rebuilds the results array from the per-sample response
// artifacts, used after retrying failed samples.
func (s *Store) CollectResults(label string) ([]model.ResultRecord, error) {
	dir := filepath.Join(s.RunDir(label), "responses")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "store: read responses for run %s", label)
	}

	var records []model.ResultRecord
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, eris.Wrapf(err, "store: read response %s", entry.Name())
		}
		var resp Response
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, eris.Wrapf(err, "store: parse response %s", entry.Name())
		}
		records = append(records, model.NewResultRecord(resp.ImageID, resp.GroundTruth, resp.Prediction))
	}
	return records, nil
}

// WriteMetrics saves the evaluation report for a run.
func (s *Store) WriteMetrics(label string, report *model.MetricsReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return eris.Wrap(err, "store: marshal metrics")
	}
	path := filepath.Join(s.RunDir(label), "metrics.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "store: write metrics for run %s", label)
	}
	return nil
}
