package config

import (
	"fmt"
	"time"

	"github.com/cliniscribe/scribe/pkg/scribe/diarize"
	"github.com/cliniscribe/scribe/pkg/scribe/entity"
	"github.com/cliniscribe/scribe/pkg/scribe/provider/rulener"
	"github.com/cliniscribe/scribe/pkg/scribe/soap"
	"github.com/cliniscribe/scribe/pkg/scribe/temporal"
	"github.com/cliniscribe/scribe/pkg/scribe/textclean"
)

// Loader loads all rule files and constructs components
type Loader struct {
	CleaningPath   string
	SpeakersPath   string
	LexiconPath    string
	TemporalPath   string
	SOAPPath       string
	ValidationPath string
	ThresholdsPath string
}

// Components holds all loaded pipeline components
type Components struct {
	Cleaner   *textclean.Cleaner
	Diarizer  *diarize.Diarizer
	Temporal  *temporal.Extractor
	Validator *entity.Validator
	SOAP      *soap.Generator
	Lexicon   rulener.Lexicon

	SentimentThreshold float64
	IntentThreshold    float64
	NERThreshold       float64
	MaxTextLength      int
	ProviderTimeout    time.Duration
	KeywordTopN        int
}

// Load reads all rule files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	comp := &Components{}

	if l.CleaningPath != "" {
		cleaning, err := LoadCleaning(l.CleaningPath)
		if err != nil {
			return nil, fmt.Errorf("load cleaning rules: %w", err)
		}
		comp.Cleaner = textclean.NewCleaner(cleaning.Abbreviations)
	} else {
		comp.Cleaner = textclean.NewCleaner(textclean.DefaultAbbreviations())
	}

	if l.SpeakersPath != "" {
		speakers, err := LoadSpeakers(l.SpeakersPath)
		if err != nil {
			return nil, fmt.Errorf("load speaker labels: %w", err)
		}
		labels := make(map[string]diarize.Speaker, len(speakers.Labels))
		for label, role := range speakers.Labels {
			switch role {
			case "doctor":
				labels[label] = diarize.SpeakerDoctor
			case "patient":
				labels[label] = diarize.SpeakerPatient
			}
		}
		comp.Diarizer = diarize.NewDiarizer(labels)
	} else {
		comp.Diarizer = diarize.NewDiarizer(nil)
	}

	if l.TemporalPath != "" {
		rules := temporal.Rules{}
		if err := loadYAML(l.TemporalPath, &rules); err != nil {
			return nil, fmt.Errorf("load temporal rules: %w", err)
		}
		comp.Temporal = temporal.NewExtractor(rules)
	} else {
		comp.Temporal = temporal.NewExtractor(temporal.DefaultRules())
	}

	if l.ValidationPath != "" {
		v, err := LoadValidation(l.ValidationPath)
		if err != nil {
			return nil, fmt.Errorf("load validation rules: %w", err)
		}
		comp.Validator = entity.NewValidator(v.MinLength, v.MaxLength, v.Stopwords)
	} else {
		comp.Validator = entity.NewValidator(0, 0, nil)
	}

	if l.SOAPPath != "" {
		rules := soap.Rules{}
		if err := loadYAML(l.SOAPPath, &rules); err != nil {
			return nil, fmt.Errorf("load soap rules: %w", err)
		}
		comp.SOAP = soap.NewGenerator(rules)
	} else {
		comp.SOAP = soap.NewGenerator(soap.DefaultRules())
	}

	if l.LexiconPath != "" {
		lex := rulener.Lexicon{}
		if err := loadYAML(l.LexiconPath, &lex); err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		comp.Lexicon = lex
	} else {
		comp.Lexicon = rulener.DefaultLexicon()
	}

	if l.ThresholdsPath != "" {
		t, err := LoadThresholds(l.ThresholdsPath)
		if err != nil {
			return nil, fmt.Errorf("load thresholds: %w", err)
		}
		comp.SentimentThreshold = t.Sentiment
		comp.IntentThreshold = t.Intent
		comp.NERThreshold = t.NER
		comp.MaxTextLength = t.MaxTextLength
		comp.KeywordTopN = t.KeywordTopN
		if t.ProviderTimeout != "" {
			d, err := time.ParseDuration(t.ProviderTimeout)
			if err != nil {
				return nil, fmt.Errorf("load thresholds: provider_timeout: %w", err)
			}
			comp.ProviderTimeout = d
		}
	}

	return comp, nil
}
