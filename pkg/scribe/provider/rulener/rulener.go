// Package rulener is the rules-only NER variant: keyword and phrase
// tables instead of a model. It is the last resort of the provider
// fallback chain and needs no network or model files.
package rulener

import (
	"context"
	"regexp"
	"strings"

	"github.com/cliniscribe/scribe/pkg/scribe/entity"
	"github.com/cliniscribe/scribe/pkg/scribe/provider"
)

// Confidence levels for rule matches. Phrase patterns carry more signal
// than bare keyword hits.
const (
	phraseConfidence  = 0.8
	keywordConfidence = 0.6
)

// Lexicon holds the keyword tables per category.
type Lexicon struct {
	Symptoms   []string `yaml:"symptoms"`
	Treatments []string `yaml:"treatments"`
	Diagnoses  []string `yaml:"diagnoses"`
	Anatomy    []string `yaml:"anatomy"`
}

// DefaultLexicon returns the built-in medical keyword tables.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Symptoms: []string{
			"pain", "ache", "backache", "headache", "discomfort", "stiffness",
			"tenderness", "soreness", "burning", "throbbing", "swelling",
			"numbness", "dizziness", "nausea", "fatigue", "anxiety",
		},
		Treatments: []string{
			"physiotherapy", "therapy", "treatment", "medication",
			"painkillers", "analgesics", "surgery", "prescription",
			"rehabilitation", "injection", "rest", "ice",
		},
		Diagnoses: []string{
			"whiplash", "strain", "sprain", "concussion", "fracture",
			"arthritis", "migraine", "hypertension", "infection",
		},
		Anatomy: []string{
			"neck", "back", "head", "shoulder", "spine", "arm", "leg",
			"chest", "knee", "hip", "wrist", "ankle", "muscle", "joint",
		},
	}
}

// NER matches entity mentions with regex phrase rules built from a
// lexicon. Implements provider.NER.
type NER struct {
	phraseRules map[entity.Category][]*regexp.Regexp
	keywords    map[entity.Category][]keywordRule
}

type keywordRule struct {
	text    string
	pattern *regexp.Regexp
}

// New builds a rules-only NER from the lexicon.
func New(lex Lexicon) *NER {
	n := &NER{
		phraseRules: make(map[entity.Category][]*regexp.Regexp),
		keywords:    make(map[entity.Category][]keywordRule),
	}
	byCategory := map[entity.Category][]string{
		entity.CategorySymptom:   lex.Symptoms,
		entity.CategoryTreatment: lex.Treatments,
		entity.CategoryDiagnosis: lex.Diagnoses,
		entity.CategoryAnatomy:   lex.Anatomy,
	}
	for cat, words := range byCategory {
		for _, w := range words {
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(strings.ToLower(w)) + `\b`)
			if err != nil {
				continue
			}
			n.keywords[cat] = append(n.keywords[cat], keywordRule{text: w, pattern: re})
		}
	}

	// Anatomy-qualified symptom phrases ("neck pain", "back stiffness")
	// are more specific than either word alone.
	if len(lex.Anatomy) > 0 && len(lex.Symptoms) > 0 {
		n.phraseRules[entity.CategorySymptom] = []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(` + alternation(lex.Anatomy) + `)\s+(` + alternation(lex.Symptoms) + `)\b`),
		}
	}
	if len(lex.Treatments) > 0 {
		n.phraseRules[entity.CategoryTreatment] = []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(?:\d+|\w+)\s+sessions?\s+of\s+(` + alternation(lex.Treatments) + `)\b`),
		}
	}

	return n
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(w))
	}
	return strings.Join(quoted, "|")
}

// Extract returns every rule match in text. The error is always nil;
// the signature satisfies provider.NER.
func (n *NER) Extract(ctx context.Context, text string) ([]provider.Entity, error) {
	ents := []provider.Entity{}
	if strings.TrimSpace(text) == "" {
		return ents, nil
	}
	lower := strings.ToLower(text)

	for _, cat := range entity.Categories() {
		for _, re := range n.phraseRules[cat] {
			for _, match := range re.FindAllString(text, -1) {
				ents = append(ents, provider.Entity{
					Text:       strings.TrimSpace(match),
					Category:   cat,
					Confidence: phraseConfidence,
				})
			}
		}
		for _, kw := range n.keywords[cat] {
			if kw.pattern.MatchString(lower) {
				ents = append(ents, provider.Entity{
					Text:       kw.text,
					Category:   cat,
					Confidence: keywordConfidence,
				})
			}
		}
	}

	return ents, nil
}
