// Package summary aggregates dialogue, validated entities, and temporal
// facts into a patient-status summary.
package summary

import (
	"regexp"
	"strings"

	"github.com/cliniscribe/scribe/pkg/scribe/diarize"
	"github.com/cliniscribe/scribe/pkg/scribe/entity"
	"github.com/cliniscribe/scribe/pkg/scribe/temporal"
)

// earlyTurnWindow bounds how far into the dialogue the patient-name
// search reaches.
const earlyTurnWindow = 5

// Summary is the structured patient-status record.
type Summary struct {
	PatientName      string   `json:"patient_name"`
	Symptoms         []string `json:"symptoms"`
	Diagnosis        string   `json:"diagnosis"`
	Treatments       []string `json:"treatments"`
	CurrentStatus    string   `json:"current_status"`
	Prognosis        string   `json:"prognosis"`
	TemporalInfo     Temporal `json:"temporal_info"`
	AnatomyMentioned []string `json:"anatomy_mentioned"`
	Metadata         Metadata `json:"metadata"`
}

// Temporal is the summary's aggregated temporal view.
type Temporal struct {
	IncidentDate      string   `json:"incident_date"`
	TreatmentDuration string   `json:"treatment_duration"`
	Dates             []string `json:"dates"`
	Durations         []string `json:"durations"`
}

// Metadata carries summary-level counts and flags.
type Metadata struct {
	TotalEntities int  `json:"total_entities"`
	HasDiagnosis  bool `json:"has_diagnosis"`
	HasPrognosis  bool `json:"has_prognosis"`
}

var (
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(?:Ms|Mr|Mrs)\.\s+[A-Z][a-z]+`),
		regexp.MustCompile(`\bPatient\s+([A-Z][a-z]+\s+[A-Z][a-z]+)`),
	}
	diagnosisPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)diagnosed with\s+([^,.?!]+)`),
		regexp.MustCompile(`(?i)diagnosis(?:\s+of)?[:\s]\s*([^,.?!]+)`),
		regexp.MustCompile(`(?i)appears to be\s+(?:a\s+|an\s+)?([^,.?!]+)`),
		regexp.MustCompile(`(?i)it was\s+(?:a\s+|an\s+)?([^,.?!]+?)\s+injury`),
		regexp.MustCompile(`(?i)consistent with\s+([^,.?!]+)`),
	}
	prognosisPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(full recovery[^.?!]*)`),
		regexp.MustCompile(`(?i)(recover fully[^.?!]*)`),
		regexp.MustCompile(`(?i)(expect[^.?!]*recover[^.?!]*)`),
		regexp.MustCompile(`(?i)(don'?t foresee[^.?!]*)`),
		regexp.MustCompile(`(?i)(prognosis[^.?!]*)`),
	}
	statusKeywords = []string{"better", "improving", "occasional", "still", "now", "worse"}
)

// Summarizer builds patient summaries. It owns a temporal extractor for
// the incident-date and treatment-duration accessors.
type Summarizer struct {
	extractor *temporal.Extractor
}

// NewSummarizer creates a summarizer sharing the given temporal
// extractor.
func NewSummarizer(extractor *temporal.Extractor) *Summarizer {
	return &Summarizer{extractor: extractor}
}

// Generate builds the complete summary. Entities must already be
// validated; transcript is the cleaned full text.
func (s *Summarizer) Generate(turns []diarize.Turn, entities map[entity.Category][]string, mentions temporal.Mentions, transcript string) Summary {
	diagnosis := firstGroup(diagnosisPatterns, transcript)
	prognosis := firstGroup(prognosisPatterns, transcript)

	total := 0
	for _, list := range entities {
		total += len(list)
	}

	tinfo := Temporal{
		Dates:     temporal.Texts(mentions.Dates),
		Durations: temporal.Texts(mentions.Durations),
	}
	if m, ok := s.extractor.IncidentDate(transcript); ok {
		tinfo.IncidentDate = m.Text
	}
	if m, ok := s.extractor.TreatmentDuration(transcript); ok {
		tinfo.TreatmentDuration = m.Text
	}

	return Summary{
		PatientName:      extractPatientName(turns),
		Symptoms:         orEmpty(entities[entity.CategorySymptom]),
		Diagnosis:        diagnosis,
		Treatments:       orEmpty(entities[entity.CategoryTreatment]),
		CurrentStatus:    extractCurrentStatus(turns),
		Prognosis:        prognosis,
		TemporalInfo:     tinfo,
		AnatomyMentioned: orEmpty(entities[entity.CategoryAnatomy]),
		Metadata: Metadata{
			TotalEntities: total,
			HasDiagnosis:  diagnosis != "",
			HasPrognosis:  prognosis != "",
		},
	}
}

// extractPatientName pattern-matches doctor-addressed forms in early
// turns. Empty when nothing matches.
func extractPatientName(turns []diarize.Turn) string {
	limit := len(turns)
	if limit > earlyTurnWindow {
		limit = earlyTurnWindow
	}
	for _, t := range turns[:limit] {
		for _, re := range namePatterns {
			if m := re.FindString(t.Text); m != "" {
				return m
			}
		}
	}
	return ""
}

// extractCurrentStatus returns the most recent patient turn containing a
// status cue.
func extractCurrentStatus(turns []diarize.Turn) string {
	patient := diarize.Statements(turns, diarize.SpeakerPatient)
	for i := len(patient) - 1; i >= 0; i-- {
		lower := strings.ToLower(patient[i])
		for _, kw := range statusKeywords {
			if strings.Contains(lower, kw) {
				return patient[i]
			}
		}
	}
	return ""
}

// ShortSummary renders a single bounded paragraph from the diagnosis,
// top symptoms, and current status. Truncation never splits a word.
func ShortSummary(s Summary, maxLength int) string {
	var parts []string

	if s.PatientName != "" {
		parts = append(parts, "Patient: "+s.PatientName)
	}
	if s.Diagnosis != "" {
		parts = append(parts, "Diagnosis: "+s.Diagnosis)
	}
	if len(s.Symptoms) > 0 {
		parts = append(parts, "Symptoms: "+strings.Join(top(s.Symptoms, 3), ", "))
	}
	if len(s.Treatments) > 0 {
		parts = append(parts, "Treatment: "+strings.Join(top(s.Treatments, 2), ", "))
	}
	if s.CurrentStatus != "" {
		parts = append(parts, "Status: "+s.CurrentStatus)
	}
	if s.Prognosis != "" {
		parts = append(parts, "Prognosis: "+s.Prognosis)
	}

	text := strings.Join(parts, ". ")
	if text != "" {
		text += "."
	}
	if maxLength <= 0 || len(text) <= maxLength {
		return text
	}
	cut := text[:maxLength]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " .,;:") + "..."
}

func top(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func firstGroup(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}
