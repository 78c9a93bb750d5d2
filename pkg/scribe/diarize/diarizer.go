package diarize

import (
	"regexp"
	"strings"
)

// Speaker identifies who produced a dialogue turn.
type Speaker string

const (
	SpeakerDoctor  Speaker = "doctor"
	SpeakerPatient Speaker = "patient"
	SpeakerUnknown Speaker = "unknown"
)

// Turn is one speaker-attributed statement. Order is strictly increasing
// and reflects appearance order in the transcript.
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
	Order   int     `json:"order"`
}

// Diarizer segments cleaned transcript text into ordered speaker turns.
type Diarizer struct {
	labels  map[string]Speaker
	labelRe *regexp.Regexp
}

// DefaultLabels maps recognized speaker labels to normalized speakers.
func DefaultLabels() map[string]Speaker {
	return map[string]Speaker{
		"physician": SpeakerDoctor,
		"doctor":    SpeakerDoctor,
		"dr":        SpeakerDoctor,
		"patient":   SpeakerPatient,
		"pt":        SpeakerPatient,
	}
}

// NewDiarizer creates a diarizer recognizing the given label set.
// A nil map falls back to DefaultLabels.
func NewDiarizer(labels map[string]Speaker) *Diarizer {
	if labels == nil {
		labels = DefaultLabels()
	}

	alts := make([]string, 0, len(labels))
	for l := range labels {
		alts = append(alts, regexp.QuoteMeta(l))
	}
	// Labels require a colon or free-standing dash separator so that
	// ordinary prose beginning with "Patient ..." and hyphenated
	// compounds like "patient-reported" are not mistaken for turn labels.
	pattern := `(?i)\b(` + strings.Join(alts, "|") + `)\.?(?:\s*:\s*|\s+-\s*)`

	return &Diarizer{
		labels:  labels,
		labelRe: regexp.MustCompile(pattern),
	}
}

// Parse segments text into speaker turns. Labels may open a turn at the
// start of a line or inline; unlabeled lines continue the open turn.
// Unlabeled leading text is attributed to SpeakerUnknown, and label-only
// lines are kept as empty-text turns. Stage directions in brackets are
// skipped.
func (d *Diarizer) Parse(text string) []Turn {
	var turns []Turn
	order := 0

	open := func(sp Speaker, initial string) {
		turns = append(turns, Turn{Speaker: sp, Text: initial, Order: order})
		order++
	}
	appendText := func(s string) {
		if s == "" {
			return
		}
		if len(turns) == 0 {
			open(SpeakerUnknown, s)
			return
		}
		cur := &turns[len(turns)-1]
		if cur.Text == "" {
			cur.Text = s
		} else {
			cur.Text += " " + s
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			continue
		}

		locs := d.labelRe.FindAllStringSubmatchIndex(line, -1)
		if len(locs) == 0 {
			appendText(line)
			continue
		}

		if locs[0][0] > 0 {
			appendText(strings.TrimSpace(line[:locs[0][0]]))
		}
		for i, m := range locs {
			label := strings.ToLower(line[m[2]:m[3]])
			end := len(line)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			seg := strings.TrimSpace(line[m[1]:end])
			open(d.normalize(label), seg)
		}
	}

	return turns
}

func (d *Diarizer) normalize(label string) Speaker {
	if sp, ok := d.labels[label]; ok {
		return sp
	}
	return SpeakerUnknown
}

// Statements returns the non-empty texts of the given speaker, in order.
func Statements(turns []Turn, sp Speaker) []string {
	var out []string
	for _, t := range turns {
		if t.Speaker == sp && strings.TrimSpace(t.Text) != "" {
			out = append(out, t.Text)
		}
	}
	return out
}

// TurnsBySpeaker filters turns by speaker, order preserved.
func TurnsBySpeaker(turns []Turn, sp Speaker) []Turn {
	var out []Turn
	for _, t := range turns {
		if t.Speaker == sp {
			out = append(out, t)
		}
	}
	return out
}

// Stats summarizes a parsed dialogue.
type Stats struct {
	TotalTurns      int     `json:"total_turns"`
	DoctorTurns     int     `json:"doctor_turns"`
	PatientTurns    int     `json:"patient_turns"`
	UnknownTurns    int     `json:"unknown_turns"`
	TotalWords      int     `json:"total_words"`
	AvgWordsPerTurn float64 `json:"avg_words_per_turn"`
}

// ComputeStats derives aggregate statistics from a parsed dialogue.
func ComputeStats(turns []Turn) Stats {
	s := Stats{TotalTurns: len(turns)}
	for _, t := range turns {
		switch t.Speaker {
		case SpeakerDoctor:
			s.DoctorTurns++
		case SpeakerPatient:
			s.PatientTurns++
		default:
			s.UnknownTurns++
		}
		s.TotalWords += len(strings.Fields(t.Text))
	}
	if s.TotalTurns > 0 {
		s.AvgWordsPerTurn = float64(s.TotalWords) / float64(s.TotalTurns)
	}
	return s
}
