package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cliniscribe/scribe/pkg/scribe/diarize"
)

func TestLoadDefaults(t *testing.T) {
	loader := Loader{}
	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load with no paths: %v", err)
	}

	if comp.Cleaner == nil || comp.Diarizer == nil || comp.Temporal == nil ||
		comp.Validator == nil || comp.SOAP == nil {
		t.Fatal("default components missing")
	}
	if len(comp.Lexicon.Symptoms) == 0 {
		t.Error("default lexicon empty")
	}

	// Defaults should behave like the built-in rule tables.
	turns := comp.Diarizer.Parse("Doctor: hello\nPatient: hi there")
	if len(turns) != 2 {
		t.Errorf("default diarizer turns = %d", len(turns))
	}
}

func TestLoadCustomSpeakers(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "speakers.yaml")
	content := `labels:
  clinician: doctor
  client: patient
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := Loader{SpeakersPath: path}
	comp, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	turns := comp.Diarizer.Parse("Clinician: hello\nClient: hi")
	if len(turns) != 2 {
		t.Fatalf("turns = %d", len(turns))
	}
	if turns[0].Speaker != diarize.SpeakerDoctor || turns[1].Speaker != diarize.SpeakerPatient {
		t.Errorf("speakers = %+v", turns)
	}
}

func TestLoadCustomLexicon(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "lexicon.yaml")
	content := `symptoms:
  - vertigo
anatomy:
  - ear
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := Loader{LexiconPath: path}
	comp, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(comp.Lexicon.Symptoms) != 1 || comp.Lexicon.Symptoms[0] != "vertigo" {
		t.Errorf("lexicon = %+v", comp.Lexicon)
	}
}

func TestLoadCustomValidation(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "validation.yaml")
	content := `min_length: 4
max_length: 20
stopwords: []
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := Loader{ValidationPath: path}
	comp, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if comp.Validator.Valid("ache") != true {
		t.Error("4-char entity should pass 4-char minimum")
	}
	if comp.Validator.Valid("txt") {
		t.Error("3-char entity should fail 4-char minimum")
	}
}

func TestLoadThresholdsIntoComponents(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "thresholds.yaml")
	content := `sentiment: 0.8
provider_timeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	loader := Loader{ThresholdsPath: path}
	comp, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}
	if comp.SentimentThreshold != 0.8 {
		t.Errorf("sentiment threshold = %v", comp.SentimentThreshold)
	}
	if comp.ProviderTimeout != 5*time.Second {
		t.Errorf("provider timeout = %v", comp.ProviderTimeout)
	}
}

func TestLoadBadPathFails(t *testing.T) {
	loader := Loader{TemporalPath: "/nonexistent/temporal.yaml"}
	if _, err := loader.Load(); err == nil {
		t.Fatal("expected error for missing rule file")
	}
}
