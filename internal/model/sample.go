package model

// Sample is one rebus puzzle from the dataset: an image on disk plus the
// idiom it depicts.
type Sample struct {
	ImageID     string `json:"image_id"`
	ImagePath   string `json:"-"`
	GroundTruth string `json:"ground_truth"`
}

// ResultRecord is one row of a run's results.json. GroundTruth and
// Prediction are pointers so a record missing either field can be told
// apart from one carrying an empty string; an empty prediction is a
// valid, scoreable outcome while a missing field is not.
type ResultRecord struct {
	ImageID     string  `json:"image_id"`
	GroundTruth *string `json:"ground_truth"`
	Prediction  *string `json:"prediction"`
}

// NewResultRecord builds a complete record for persistence.
func NewResultRecord(imageID, groundTruth, prediction string) ResultRecord {
	return ResultRecord{
		ImageID:     imageID,
		GroundTruth: &groundTruth,
		Prediction:  &prediction,
	}
}

// Valid reports whether the record carries both fields required for scoring.
func (r ResultRecord) Valid() bool {
	return r.GroundTruth != nil && r.Prediction != nil
}
