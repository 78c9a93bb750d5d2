package diarize

import (
	"reflect"
	"testing"
)

func TestParseLabeledLines(t *testing.T) {
	d := NewDiarizer(nil)

	text := "Doctor: How are you feeling today?\n" +
		"Patient: My neck still hurts.\n" +
		"Doctor: Any numbness?\n" +
		"Patient: No, just the pain."

	turns := d.Parse(text)
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d: %+v", len(turns), turns)
	}

	wantSpeakers := []Speaker{SpeakerDoctor, SpeakerPatient, SpeakerDoctor, SpeakerPatient}
	for i, turn := range turns {
		if turn.Speaker != wantSpeakers[i] {
			t.Errorf("turn %d speaker = %s, want %s", i, turn.Speaker, wantSpeakers[i])
		}
		if turn.Order != i {
			t.Errorf("turn %d order = %d, want %d", i, turn.Order, i)
		}
	}
	if turns[1].Text != "My neck still hurts." {
		t.Errorf("turn 1 text = %q", turns[1].Text)
	}
}

func TestParseInlineLabels(t *testing.T) {
	d := NewDiarizer(nil)

	// All four turns on a single line.
	text := "Physician: Good morning. Patient: Good morning, doctor. " +
		"Physician: What brings you in? Patient: I was in a car accident last week."

	turns := d.Parse(text)
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d: %+v", len(turns), turns)
	}
	if turns[0].Speaker != SpeakerDoctor || turns[0].Text != "Good morning." {
		t.Errorf("turn 0 = %+v", turns[0])
	}
	if turns[3].Speaker != SpeakerPatient || turns[3].Text != "I was in a car accident last week." {
		t.Errorf("turn 3 = %+v", turns[3])
	}
	for i, turn := range turns {
		if turn.Order != i {
			t.Errorf("turn %d order = %d", i, turn.Order)
		}
	}
}

func TestParseLabelVariants(t *testing.T) {
	d := NewDiarizer(nil)

	tests := []struct {
		line string
		want Speaker
	}{
		{"Dr: hello", SpeakerDoctor},
		{"DOCTOR: hello", SpeakerDoctor},
		{"physician - hello", SpeakerDoctor},
		{"Pt: hello", SpeakerPatient},
		{"PATIENT: hello", SpeakerPatient},
	}

	for _, tt := range tests {
		turns := d.Parse(tt.line)
		if len(turns) != 1 {
			t.Fatalf("Parse(%q): expected 1 turn, got %d", tt.line, len(turns))
		}
		if turns[0].Speaker != tt.want {
			t.Errorf("Parse(%q) speaker = %s, want %s", tt.line, turns[0].Speaker, tt.want)
		}
		if turns[0].Text != "hello" {
			t.Errorf("Parse(%q) text = %q", tt.line, turns[0].Text)
		}
	}
}

func TestParseUnlabeledLeadingText(t *testing.T) {
	d := NewDiarizer(nil)

	turns := d.Parse("Consultation recorded Tuesday.\nDoctor: How can I help?")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Speaker != SpeakerUnknown {
		t.Errorf("leading text speaker = %s, want unknown", turns[0].Speaker)
	}
	if turns[1].Speaker != SpeakerDoctor {
		t.Errorf("second turn speaker = %s", turns[1].Speaker)
	}
}

func TestParseContinuationLines(t *testing.T) {
	d := NewDiarizer(nil)

	text := "Patient: The pain started\nafter the accident\nDoctor: I see."
	turns := d.Parse(text)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d: %+v", len(turns), turns)
	}
	if turns[0].Text != "The pain started after the accident" {
		t.Errorf("continuation not joined: %q", turns[0].Text)
	}
}

func TestParseEmptyLabelTurn(t *testing.T) {
	d := NewDiarizer(nil)

	turns := d.Parse("Doctor:\nPatient: still here")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Text != "" {
		t.Errorf("label-only turn text = %q, want empty", turns[0].Text)
	}
}

func TestParseSkipsStageDirections(t *testing.T) {
	d := NewDiarizer(nil)

	turns := d.Parse("[door opens]\nDoctor: come in\n[patient sits down]\nPatient: thanks")
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d: %+v", len(turns), turns)
	}
}

func TestParseProseStartingWithPatient(t *testing.T) {
	d := NewDiarizer(nil)

	// No separator after the word, so this is prose within a turn.
	turns := d.Parse("Doctor: Patient reports neck pain since last week.")
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d: %+v", len(turns), turns)
	}
	if turns[0].Speaker != SpeakerDoctor {
		t.Errorf("speaker = %s", turns[0].Speaker)
	}
}

func TestParseHyphenatedCompound(t *testing.T) {
	d := NewDiarizer(nil)

	// A hyphen glued to the label word is part of a compound, not a
	// turn separator.
	turns := d.Parse("Doctor: We use patient-reported outcomes to track recovery.")
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d: %+v", len(turns), turns)
	}
	if turns[0].Speaker != SpeakerDoctor {
		t.Errorf("speaker = %s", turns[0].Speaker)
	}
	if turns[0].Text != "We use patient-reported outcomes to track recovery." {
		t.Errorf("text = %q", turns[0].Text)
	}
}

func TestParseEmpty(t *testing.T) {
	d := NewDiarizer(nil)
	if turns := d.Parse(""); len(turns) != 0 {
		t.Errorf("expected no turns, got %+v", turns)
	}
}

func TestStatements(t *testing.T) {
	turns := []Turn{
		{Speaker: SpeakerDoctor, Text: "hello", Order: 0},
		{Speaker: SpeakerPatient, Text: "hi", Order: 1},
		{Speaker: SpeakerPatient, Text: "", Order: 2},
		{Speaker: SpeakerPatient, Text: "it hurts", Order: 3},
	}

	got := Statements(turns, SpeakerPatient)
	want := []string{"hi", "it hurts"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Statements = %v, want %v", got, want)
	}
}

func TestComputeStats(t *testing.T) {
	turns := []Turn{
		{Speaker: SpeakerDoctor, Text: "how are you"},
		{Speaker: SpeakerPatient, Text: "fine thanks doctor"},
		{Speaker: SpeakerUnknown, Text: "aside"},
	}

	s := ComputeStats(turns)
	if s.TotalTurns != 3 || s.DoctorTurns != 1 || s.PatientTurns != 1 || s.UnknownTurns != 1 {
		t.Errorf("counts = %+v", s)
	}
	if s.TotalWords != 7 {
		t.Errorf("TotalWords = %d, want 7", s.TotalWords)
	}
	if s.AvgWordsPerTurn < 2.33 || s.AvgWordsPerTurn > 2.34 {
		t.Errorf("AvgWordsPerTurn = %v", s.AvgWordsPerTurn)
	}

	empty := ComputeStats(nil)
	if empty.AvgWordsPerTurn != 0 {
		t.Errorf("empty AvgWordsPerTurn = %v", empty.AvgWordsPerTurn)
	}
}
