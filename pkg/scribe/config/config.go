// Package config loads YAML rule files and constructs the pipeline
// components they configure. Every file is optional; a missing path
// falls back to the built-in defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cliniscribe/scribe/pkg/scribe/internalerr"
)

// Cleaning configures transcript normalization.
type Cleaning struct {
	Abbreviations map[string]string `yaml:"abbreviations"`
}

// LoadCleaning loads cleaning rules from a YAML file
func LoadCleaning(path string) (*Cleaning, error) {
	var c Cleaning
	if err := loadYAML(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Speakers maps transcript labels to canonical speaker roles. Values
// must be "doctor" or "patient".
type Speakers struct {
	Labels map[string]string `yaml:"labels"`
}

// LoadSpeakers loads speaker label mappings from a YAML file
func LoadSpeakers(path string) (*Speakers, error) {
	var s Speakers
	if err := loadYAML(path, &s); err != nil {
		return nil, err
	}
	for label, role := range s.Labels {
		if role != "doctor" && role != "patient" {
			return nil, fmt.Errorf("%w: speaker label %q maps to unknown role %q",
				internalerr.ErrInvalidConfig, label, role)
		}
	}
	return &s, nil
}

// Validation configures entity validation bounds and stopwords.
type Validation struct {
	MinLength int      `yaml:"min_length"`
	MaxLength int      `yaml:"max_length"`
	Stopwords []string `yaml:"stopwords"`
}

// LoadValidation loads entity validation settings from a YAML file
func LoadValidation(path string) (*Validation, error) {
	var v Validation
	if err := loadYAML(path, &v); err != nil {
		return nil, err
	}
	if v.MinLength < 0 || v.MaxLength < 0 {
		return nil, fmt.Errorf("%w: validation lengths must be non-negative", internalerr.ErrInvalidConfig)
	}
	if v.MinLength > 0 && v.MaxLength > 0 && v.MinLength > v.MaxLength {
		return nil, fmt.Errorf("%w: min_length %d exceeds max_length %d",
			internalerr.ErrInvalidConfig, v.MinLength, v.MaxLength)
	}
	return &v, nil
}

// Thresholds configures provider confidence cutoffs and run limits.
type Thresholds struct {
	Sentiment       float64 `yaml:"sentiment"`
	Intent          float64 `yaml:"intent"`
	NER             float64 `yaml:"ner"`
	MaxTextLength   int     `yaml:"max_text_length"`
	ProviderTimeout string  `yaml:"provider_timeout"`
	KeywordTopN     int     `yaml:"keyword_top_n"`
}

// LoadThresholds loads threshold settings from a YAML file
func LoadThresholds(path string) (*Thresholds, error) {
	var t Thresholds
	if err := loadYAML(path, &t); err != nil {
		return nil, err
	}
	for name, v := range map[string]float64{"sentiment": t.Sentiment, "intent": t.Intent, "ner": t.NER} {
		if v < 0 || v > 1 {
			return nil, fmt.Errorf("%w: %s threshold %v outside [0,1]", internalerr.ErrInvalidConfig, name, v)
		}
	}
	return &t, nil
}

func loadYAML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s: %v", internalerr.ErrInvalidConfig, path, err)
	}
	return nil
}
