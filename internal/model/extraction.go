package model

// Stage identifies which cascade strategy produced an extracted answer.
type Stage string

const (
	StageBracketMarker  Stage = "bracket_marker"
	StageQuoted         Stage = "quoted"
	StageKeywordIntro   Stage = "keyword_intro"
	StageStandaloneLine Stage = "standalone_line"
	StageFirstSentence  Stage = "first_sentence"
	StageNgramScan      Stage = "ngram_scan"
	StageFallbackRaw    Stage = "fallback_raw"
)

// ExtractionOutcome is the single best-guess answer phrase pulled out of a
// raw model response, plus the strategy that produced it. Immutable once
// created.
type ExtractionOutcome struct {
	Text  string `json:"text"`
	Stage Stage  `json:"stage"`
}
