package summary

import (
	"reflect"
	"strings"
	"testing"

	"github.com/cliniscribe/scribe/pkg/scribe/diarize"
	"github.com/cliniscribe/scribe/pkg/scribe/entity"
	"github.com/cliniscribe/scribe/pkg/scribe/temporal"
)

func newSummarizer() *Summarizer {
	return NewSummarizer(temporal.NewExtractor(temporal.DefaultRules()))
}

func consultTurns() []diarize.Turn {
	return []diarize.Turn{
		{Speaker: diarize.SpeakerDoctor, Text: "Good morning Ms. Jones, how are you?", Order: 0},
		{Speaker: diarize.SpeakerPatient, Text: "I was in a car accident last week.", Order: 1},
		{Speaker: diarize.SpeakerDoctor, Text: "This appears to be whiplash.", Order: 2},
		{Speaker: diarize.SpeakerPatient, Text: "The pain is better now, just occasional stiffness.", Order: 3},
	}
}

func consultEntities() map[entity.Category][]string {
	return map[entity.Category][]string{
		entity.CategorySymptom:   {"neck pain", "stiffness"},
		entity.CategoryTreatment: {"physiotherapy"},
		entity.CategoryDiagnosis: {"whiplash"},
		entity.CategoryAnatomy:   {"neck"},
	}
}

func TestGenerate(t *testing.T) {
	s := newSummarizer()
	transcript := "I was in a car accident last week. This appears to be whiplash. " +
		"I expect a full recovery after 6 months of physiotherapy. The pain is better now."
	mentions := temporal.NewExtractor(temporal.DefaultRules()).ExtractAll(transcript)

	got := s.Generate(consultTurns(), consultEntities(), mentions, transcript)

	if got.PatientName != "Ms. Jones" {
		t.Errorf("patient name = %q", got.PatientName)
	}
	if got.Diagnosis != "whiplash" {
		t.Errorf("diagnosis = %q", got.Diagnosis)
	}
	if !strings.Contains(got.Prognosis, "full recovery") {
		t.Errorf("prognosis = %q", got.Prognosis)
	}
	if !reflect.DeepEqual(got.Symptoms, []string{"neck pain", "stiffness"}) {
		t.Errorf("symptoms = %v", got.Symptoms)
	}
	if !strings.Contains(got.CurrentStatus, "better now") {
		t.Errorf("current status = %q", got.CurrentStatus)
	}
	if got.TemporalInfo.IncidentDate != "last week" {
		t.Errorf("incident date = %q", got.TemporalInfo.IncidentDate)
	}
	if got.TemporalInfo.TreatmentDuration != "6 months" {
		t.Errorf("treatment duration = %q", got.TemporalInfo.TreatmentDuration)
	}
	if !got.Metadata.HasDiagnosis || !got.Metadata.HasPrognosis {
		t.Errorf("metadata = %+v", got.Metadata)
	}
	if got.Metadata.TotalEntities != 5 {
		t.Errorf("total entities = %d", got.Metadata.TotalEntities)
	}
}

func TestGenerateNoFindings(t *testing.T) {
	s := newSummarizer()

	got := s.Generate(nil, map[entity.Category][]string{}, temporal.Mentions{}, "nothing clinical here")

	if got.PatientName != "" || got.Diagnosis != "" || got.Prognosis != "" {
		t.Errorf("expected empty fields: %+v", got)
	}
	if got.Symptoms == nil || got.Treatments == nil || got.AnatomyMentioned == nil {
		t.Error("entity lists must be non-nil")
	}
	if got.Metadata.HasDiagnosis || got.Metadata.HasPrognosis {
		t.Errorf("metadata flags should be false: %+v", got.Metadata)
	}
}

func TestExtractPatientNameOnlyEarlyTurns(t *testing.T) {
	turns := []diarize.Turn{
		{Speaker: diarize.SpeakerDoctor, Text: "Hello there."},
		{Speaker: diarize.SpeakerPatient, Text: "Hello."},
		{Speaker: diarize.SpeakerDoctor, Text: "How is the neck?"},
		{Speaker: diarize.SpeakerPatient, Text: "Getting better."},
		{Speaker: diarize.SpeakerDoctor, Text: "Good to hear."},
		{Speaker: diarize.SpeakerDoctor, Text: "Take care Mr. Smith."},
	}
	if got := extractPatientName(turns); got != "" {
		t.Errorf("name found outside early window: %q", got)
	}

	turns[0].Text = "Good morning Mr. Smith."
	if got := extractPatientName(turns); got != "Mr. Smith" {
		t.Errorf("name = %q", got)
	}
}

func TestExtractCurrentStatusPicksLatest(t *testing.T) {
	turns := []diarize.Turn{
		{Speaker: diarize.SpeakerPatient, Text: "It was much worse before."},
		{Speaker: diarize.SpeakerPatient, Text: "I am feeling better these days."},
		{Speaker: diarize.SpeakerPatient, Text: "Thanks for asking."},
	}
	got := extractCurrentStatus(turns)
	if got != "I am feeling better these days." {
		t.Errorf("current status = %q", got)
	}
}

func TestShortSummary(t *testing.T) {
	s := Summary{
		PatientName: "Ms. Jones",
		Diagnosis:   "whiplash",
		Symptoms:    []string{"neck pain", "stiffness", "headache", "nausea"},
		Treatments:  []string{"physiotherapy"},
	}

	text := ShortSummary(s, 0)
	if !strings.Contains(text, "Diagnosis: whiplash") {
		t.Errorf("short summary = %q", text)
	}
	if strings.Contains(text, "nausea") {
		t.Errorf("symptoms should cap at 3: %q", text)
	}

	truncated := ShortSummary(s, 30)
	if len(truncated) > 33 {
		t.Errorf("truncated length %d: %q", len(truncated), truncated)
	}
	if !strings.HasSuffix(truncated, "...") {
		t.Errorf("missing marker: %q", truncated)
	}
}

func TestShortSummaryEmpty(t *testing.T) {
	if got := ShortSummary(Summary{}, 100); got != "" {
		t.Errorf("empty summary rendered %q", got)
	}
}
