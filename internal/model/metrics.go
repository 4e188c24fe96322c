package model

// MetricsReport aggregates comparison metrics over one evaluation run.
// All rate fields are in [0,1] and rounded to 4 decimal places for
// reproducible diffing across runs.
type MetricsReport struct {
	TotalSamples   int `json:"total_samples"`
	SkippedSamples int `json:"skipped_samples"`

	RawAccuracy float64 `json:"raw_accuracy"`

	ExactMatchCount    int     `json:"exact_match_count"`
	ExactMatchAccuracy float64 `json:"exact_match_accuracy"`

	PartialMatchCount    int     `json:"partial_match_count"`
	PartialMatchAccuracy float64 `json:"partial_match_accuracy"`

	MacroF1 float64 `json:"macro_f1"`

	ExtractionHelped int `json:"extraction_helped"`
	ExtractionHurt   int `json:"extraction_hurt"`
}

// SampleScore is the per-sample detail behind a MetricsReport, kept so
// callers can surface helped/hurt examples for human review.
type SampleScore struct {
	ImageID      string            `json:"image_id"`
	GroundTruth  string            `json:"ground_truth"`
	Prediction   string            `json:"prediction"`
	Extraction   ExtractionOutcome `json:"extraction"`
	RawMatch     bool              `json:"raw_match"`
	ExactMatch   bool              `json:"exact_match"`
	PartialMatch bool              `json:"partial_match"`
	TokenF1      float64           `json:"token_f1"`
	Helped       bool              `json:"helped"`
	Hurt         bool              `json:"hurt"`
}
