// Package soap assembles clinical SOAP notes from diarized dialogue,
// validated entities, and temporal facts using rule-based extraction.
// No generative inference: every field is first-match or order-preserving
// concatenation over keyword and regex tables.
package soap

import (
	"regexp"
	"strings"

	"github.com/cliniscribe/scribe/pkg/scribe/diarize"
	"github.com/cliniscribe/scribe/pkg/scribe/entity"
	"github.com/cliniscribe/scribe/pkg/scribe/temporal"
)

// SeverityUnknown marks an assessment with no diagnosis to grade.
const SeverityUnknown = "unknown"

// Note is a four-section SOAP note. Every sub-field is always present;
// absent information is an empty string or empty list, never omitted.
type Note struct {
	Subjective Subjective `json:"subjective"`
	Objective  Objective  `json:"objective"`
	Assessment Assessment `json:"assessment"`
	Plan       Plan       `json:"plan"`
}

// Subjective captures what the patient reports.
type Subjective struct {
	ChiefComplaint          string `json:"chief_complaint"`
	HistoryOfPresentIllness string `json:"history_of_present_illness"`
	ReviewOfSystems         string `json:"review_of_systems"`
}

// Objective captures examination findings and measurements.
type Objective struct {
	PhysicalExamination string   `json:"physical_examination"`
	VitalSigns          []string `json:"vital_signs"`
	Observations        []string `json:"observations"`
}

// Assessment captures diagnosis, severity, and prognosis.
type Assessment struct {
	PrimaryDiagnosis string `json:"primary_diagnosis"`
	Severity         string `json:"severity"`
	Prognosis        string `json:"prognosis"`
}

// Plan captures treatment, medications, and follow-up instructions.
type Plan struct {
	TreatmentPlan    string   `json:"treatment_plan"`
	Medications      []string `json:"medications"`
	FollowUp         string   `json:"follow_up"`
	PatientEducation []string `json:"patient_education"`
}

// Rules holds the keyword tables and regex sources driving extraction.
type Rules struct {
	ComplaintKeywords   []string `yaml:"complaint_keywords"`
	HistoryKeywords     []string `yaml:"history_keywords"`
	ROSKeywords         []string `yaml:"ros_keywords"`
	ExamKeywords        []string `yaml:"exam_keywords"`
	VitalPatterns       []string `yaml:"vital_patterns"`
	ObservationKeywords []string `yaml:"observation_keywords"`
	DiagnosisPatterns   []string `yaml:"diagnosis_patterns"`
	SeverePhrases       []string `yaml:"severe_phrases"`
	ModeratePhrases     []string `yaml:"moderate_phrases"`
	MildPhrases         []string `yaml:"mild_phrases"`
	PrognosisPatterns   []string `yaml:"prognosis_patterns"`
	TreatmentKeywords   []string `yaml:"treatment_keywords"`
	MedicationCues      []string `yaml:"medication_cues"`
	FollowUpKeywords    []string `yaml:"follow_up_keywords"`
	EducationKeywords   []string `yaml:"education_keywords"`
}

// DefaultRules returns the standard extraction tables.
func DefaultRules() Rules {
	return Rules{
		ComplaintKeywords: []string{"pain", "discomfort", "hurt", "ache", "problem", "issue", "stiffness"},
		HistoryKeywords:   []string{"accident", "happened", "started", "began", "injury", "incident", "went", "hit", "since", "onset"},
		ROSKeywords:       []string{"anxiety", "nervous", "sleep", "work", "daily", "emotional", "concentrate", "mood", "appetite"},
		ExamKeywords:      []string{"examination", "exam", "range of movement", "range of motion", "tenderness", "palpation", "looks good", "checked"},
		VitalPatterns: []string{
			`blood pressure[^,.]*?\d{2,3}\s*/\s*\d{2,3}`,
			`\d{2,3}\s*/\s*\d{2,3}\s*mmhg`,
			`temperature[^,.]*?\d{2,3}(?:\.\d)?\s*(?:degrees|\x{00b0}?\s*[cf])?`,
			`\d{2,3}(?:\.\d)?\s*\x{00b0}\s*[cf]`,
			`heart rate[^,.]*?\d{2,3}`,
			`\d{2,3}\s*bpm`,
			`(?:oxygen|sats?|spo2)[^,.]*?\d{2,3}\s*%`,
		},
		ObservationKeywords: []string{"normal", "good", "full range", "no sign", "appears", "noted", "observed"},
		DiagnosisPatterns: []string{
			`diagnosed with\s+([^,.?!]+)`,
			`diagnosis(?:\s+of)?[:\s]\s*([^,.?!]+)`,
			`(?:this\s+)?appears to be\s+(?:a\s+|an\s+)?([^,.?!]+)`,
			`it was\s+(?:a\s+|an\s+)?([^,.?!]+?)(?:\s+injury)?\s*[,.?!]`,
			`consistent with\s+([^,.?!]+)`,
		},
		SeverePhrases:   []string{"severe", "critical", "serious"},
		ModeratePhrases: []string{"moderate"},
		MildPhrases:     []string{"mild", "minor", "slight"},
		PrognosisPatterns: []string{
			`(full recovery[^.?!]*)`,
			`(recover fully[^.?!]*)`,
			`(expect[^.?!]*recover[^.?!]*)`,
			`(should recover[^.?!]*)`,
			`(don'?t foresee[^.?!]*)`,
			`(no[^.?!]*long[- ]term[^.?!]*)`,
			`(prognosis[^.?!]*)`,
		},
		TreatmentKeywords: []string{"treatment", "therapy", "physiotherapy", "medication", "recommend", "prescribe", "sessions"},
		MedicationCues:    []string{"painkiller", "medication", "medicine", "tablet", "pill", "prescription", "analgesic", "dose", "mg"},
		FollowUpKeywords:  []string{"follow-up", "follow up", "come back", "return", "reach out", "check in", "if anything changes"},
		EducationKeywords: []string{"should", "avoid", "advised", "important", "make sure", "remember"},
	}
}

// Generator builds SOAP notes from pipeline intermediates.
type Generator struct {
	rules     Rules
	vitals    []*regexp.Regexp
	diagnosis []*regexp.Regexp
	prognosis []*regexp.Regexp
	dosageRe  *regexp.Regexp
}

// NewGenerator compiles the rule tables. Invalid patterns are skipped.
func NewGenerator(rules Rules) *Generator {
	compile := func(srcs []string) []*regexp.Regexp {
		out := make([]*regexp.Regexp, 0, len(srcs))
		for _, src := range srcs {
			re, err := regexp.Compile(`(?i)` + src)
			if err != nil {
				continue
			}
			out = append(out, re)
		}
		return out
	}
	return &Generator{
		rules:     rules,
		vitals:    compile(rules.VitalPatterns),
		diagnosis: compile(rules.DiagnosisPatterns),
		prognosis: compile(rules.PrognosisPatterns),
		dosageRe:  regexp.MustCompile(`(?i)\d+\s*(?:mg|ml|mcg|tablets?)`),
	}
}

// Generate assembles the full note. Entities must already be validated;
// transcript is the cleaned full text.
func (g *Generator) Generate(turns []diarize.Turn, entities map[entity.Category][]string, mentions temporal.Mentions, transcript string) Note {
	patient := diarize.Statements(turns, diarize.SpeakerPatient)
	doctor := diarize.Statements(turns, diarize.SpeakerDoctor)

	return Note{
		Subjective: g.generateSubjective(patient),
		Objective:  g.generateObjective(doctor, transcript),
		Assessment: g.generateAssessment(doctor, entities, transcript),
		Plan:       g.generatePlan(doctor, entities),
	}
}

func (g *Generator) generateSubjective(patient []string) Subjective {
	chief := firstContaining(patient, g.rules.ComplaintKeywords)
	if chief == "" && len(patient) > 0 {
		chief = patient[0]
	}
	return Subjective{
		ChiefComplaint:          chief,
		HistoryOfPresentIllness: joinContaining(patient, g.rules.HistoryKeywords),
		ReviewOfSystems:         joinContaining(patient, g.rules.ROSKeywords),
	}
}

func (g *Generator) generateObjective(doctor []string, transcript string) Objective {
	vitals := []string{}
	seen := make(map[string]struct{})
	for _, re := range g.vitals {
		for _, m := range re.FindAllString(transcript, -1) {
			m = strings.TrimSpace(m)
			key := strings.ToLower(m)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			vitals = append(vitals, m)
		}
	}

	return Objective{
		PhysicalExamination: joinContaining(doctor, g.rules.ExamKeywords),
		VitalSigns:          vitals,
		Observations:        allContaining(doctor, g.rules.ObservationKeywords),
	}
}

func (g *Generator) generateAssessment(doctor []string, entities map[entity.Category][]string, transcript string) Assessment {
	diagnosis := g.extractDiagnosis(doctor)
	if diagnosis == "" {
		if ents := entities[entity.CategoryDiagnosis]; len(ents) > 0 {
			diagnosis = ents[0]
		}
	}

	return Assessment{
		PrimaryDiagnosis: diagnosis,
		Severity:         g.classifySeverity(diagnosis, transcript),
		Prognosis:        firstMatchGroup(g.prognosis, doctor),
	}
}

func (g *Generator) generatePlan(doctor []string, entities map[entity.Category][]string) Plan {
	medications := []string{}
	for _, t := range entities[entity.CategoryTreatment] {
		lower := strings.ToLower(t)
		if g.dosageRe.MatchString(t) || containsAny(lower, g.rules.MedicationCues) {
			medications = append(medications, t)
		}
	}

	return Plan{
		TreatmentPlan:    joinContaining(doctor, g.rules.TreatmentKeywords),
		Medications:      medications,
		FollowUp:         joinContaining(doctor, g.rules.FollowUpKeywords),
		PatientEducation: allContaining(doctor, g.rules.EducationKeywords),
	}
}

// extractDiagnosis tries the pattern family over doctor turns in order;
// the first match wins.
func (g *Generator) extractDiagnosis(doctor []string) string {
	for _, stmt := range doctor {
		for _, re := range g.diagnosis {
			if m := re.FindStringSubmatch(stmt); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return ""
}

// classifySeverity grades the diagnosis by severity adjectives in the
// sentence mentioning it. A diagnosis without a cue defaults to
// Moderate; no diagnosis at all is unknown.
func (g *Generator) classifySeverity(diagnosis, transcript string) string {
	if diagnosis == "" {
		return SeverityUnknown
	}

	sentence := sentenceContaining(transcript, diagnosis)
	if sentence == "" {
		sentence = transcript
	}
	lower := strings.ToLower(sentence)

	switch {
	case containsAny(lower, g.rules.SeverePhrases):
		return "Severe"
	case containsAny(lower, g.rules.ModeratePhrases):
		return "Moderate"
	case containsAny(lower, g.rules.MildPhrases):
		return "Mild"
	}
	return "Moderate"
}

// FormatText renders the note in the canonical S/O/A/P layout.
func FormatText(n Note) string {
	var b strings.Builder

	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(title)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n")
	}
	field := func(label, value string) {
		if value == "" {
			value = "Not documented"
		}
		b.WriteString(label)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\n")
	}
	list := func(label string, items []string) {
		b.WriteString(label)
		b.WriteString(":\n")
		if len(items) == 0 {
			b.WriteString("  - Not documented\n")
			return
		}
		for _, it := range items {
			b.WriteString("  - ")
			b.WriteString(it)
			b.WriteString("\n")
		}
	}

	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\nCLINICAL SOAP NOTE\n")
	b.WriteString(strings.Repeat("=", 40))
	b.WriteString("\n")

	section("SUBJECTIVE")
	field("Chief Complaint", n.Subjective.ChiefComplaint)
	field("History of Present Illness", n.Subjective.HistoryOfPresentIllness)
	field("Review of Systems", n.Subjective.ReviewOfSystems)

	section("OBJECTIVE")
	field("Physical Examination", n.Objective.PhysicalExamination)
	list("Vital Signs", n.Objective.VitalSigns)
	list("Observations", n.Objective.Observations)

	section("ASSESSMENT")
	field("Primary Diagnosis", n.Assessment.PrimaryDiagnosis)
	field("Severity", n.Assessment.Severity)
	field("Prognosis", n.Assessment.Prognosis)

	section("PLAN")
	field("Treatment Plan", n.Plan.TreatmentPlan)
	list("Medications", n.Plan.Medications)
	field("Follow-up", n.Plan.FollowUp)
	list("Patient Education", n.Plan.PatientEducation)

	return b.String()
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func firstContaining(statements []string, keywords []string) string {
	for _, s := range statements {
		if containsAny(strings.ToLower(s), keywords) {
			return s
		}
	}
	return ""
}

func allContaining(statements []string, keywords []string) []string {
	out := []string{}
	for _, s := range statements {
		if containsAny(strings.ToLower(s), keywords) {
			out = append(out, s)
		}
	}
	return out
}

func joinContaining(statements []string, keywords []string) string {
	return strings.Join(allContaining(statements, keywords), " ")
}

func firstMatchGroup(patterns []*regexp.Regexp, statements []string) string {
	for _, s := range statements {
		for _, re := range patterns {
			if m := re.FindStringSubmatch(s); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return ""
}

var sentenceSplitRe = regexp.MustCompile(`[.?!]`)

func sentenceContaining(text, needle string) string {
	lowerNeedle := strings.ToLower(needle)
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if strings.Contains(strings.ToLower(s), lowerNeedle) {
			return s
		}
	}
	return ""
}
