package scribe

import (
	"encoding/json"

	"github.com/cliniscribe/scribe/pkg/scribe/diarize"
	"github.com/cliniscribe/scribe/pkg/scribe/entity"
	"github.com/cliniscribe/scribe/pkg/scribe/intent"
	"github.com/cliniscribe/scribe/pkg/scribe/keywords"
	"github.com/cliniscribe/scribe/pkg/scribe/sentiment"
	"github.com/cliniscribe/scribe/pkg/scribe/soap"
	"github.com/cliniscribe/scribe/pkg/scribe/summary"
)

// Version identifies the record format produced by this pipeline.
const Version = "1.0.0"

// Metadata describes one pipeline run. DegradedPhases lists every phase
// that fell back to its default value.
type Metadata struct {
	RunID           string   `json:"run_id"`
	ProcessedAt     string   `json:"processed_at"`
	PipelineVersion string   `json:"pipeline_version"`
	TotalDialogues  int      `json:"total_dialogues"`
	DoctorTurns     int      `json:"doctor_turns"`
	PatientTurns    int      `json:"patient_turns"`
	DegradedPhases  []string `json:"degraded_phases"`
}

// TemporalInfo is the top-level temporal view of the record.
type TemporalInfo struct {
	Dates     []string `json:"dates"`
	Times     []string `json:"times"`
	Durations []string `json:"durations"`
}

// SentimentAnalysis groups the per-statement, timeline, and overall
// sentiment views.
type SentimentAnalysis struct {
	Overall      sentiment.Overall         `json:"overall"`
	Timeline     []sentiment.TimelinePoint `json:"timeline"`
	PerStatement []sentiment.Result        `json:"per_statement"`
}

// IntentAnalysis groups the per-statement and distribution intent views.
type IntentAnalysis struct {
	Distribution   map[string]int  `json:"distribution"`
	DominantIntent string          `json:"dominant_intent"`
	PerStatement   []intent.Result `json:"per_statement"`
}

// KeywordInfo groups ranked keywords and their derived views.
type KeywordInfo struct {
	TopKeywords    []keywords.Ranked    `json:"top_keywords"`
	MedicalPhrases []string             `json:"medical_phrases"`
	Categorized    keywords.Categorized `json:"categorized"`
}

// Result is the aggregate record of one pipeline run. It is constructed
// once, immutable afterwards, and serializes directly to the output
// wire format. Every field is always present: absent information is an
// empty value, never a missing key.
type Result struct {
	Metadata     Metadata                     `json:"metadata"`
	Summary      summary.Summary              `json:"summary"`
	Entities     map[entity.Category][]string `json:"entities"`
	TemporalInfo TemporalInfo                 `json:"temporal_info"`
	Sentiment    SentimentAnalysis            `json:"sentiment_analysis"`
	Intent       IntentAnalysis               `json:"intent_analysis"`
	Keywords     KeywordInfo                  `json:"keywords"`
	Dialogues    []diarize.Turn               `json:"dialogues"`
	SOAPNote     soap.Note                    `json:"soap_note"`
}

// Marshal serializes the record with indentation for the output file.
func (r *Result) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// UnmarshalResult parses a serialized record. Round trip through
// Marshal and UnmarshalResult yields an equal Result.
func UnmarshalResult(data []byte) (*Result, error) {
	var r Result
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
