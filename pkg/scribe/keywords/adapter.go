// Package keywords adapts raw keyword-provider output into ranked,
// filtered, and categorized phrase lists.
package keywords

import (
	"math"
	"strings"

	"github.com/cliniscribe/scribe/pkg/scribe/provider"
)

// Defaults for keyword extraction requests.
const (
	DefaultTopN      = 15
	DefaultNgramMin  = 1
	DefaultNgramMax  = 3
	DefaultDiversity = 0.5
)

// Ranked is a scored keyword as it appears in the output record.
type Ranked struct {
	Keyword string  `json:"keyword"`
	Score   float64 `json:"score"`
}

// Categorized buckets keywords by clinical type.
type Categorized struct {
	Symptoms   []Ranked `json:"symptoms"`
	Treatments []Ranked `json:"treatments"`
	Conditions []Ranked `json:"conditions"`
	General    []Ranked `json:"general"`
}

// Adapter formats and filters keyword provider output.
type Adapter struct {
	topN       int
	indicators []string
}

// DefaultMedicalIndicators returns the substrings that mark a phrase as
// medically relevant.
func DefaultMedicalIndicators() []string {
	return []string{
		"injury", "pain", "therapy", "treatment", "accident",
		"exam", "diagnosis", "recovery", "symptom", "medical",
		"physiotherapy", "medication", "sessions", "whiplash",
		"examination", "prognosis", "stiffness", "discomfort",
	}
}

// NewAdapter creates an adapter. Zero topN and nil indicators fall back
// to the defaults.
func NewAdapter(topN int, indicators []string) *Adapter {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if indicators == nil {
		indicators = DefaultMedicalIndicators()
	}
	return &Adapter{topN: topN, indicators: indicators}
}

// Options returns the request options to pass to the keyword provider.
func (a *Adapter) Options() provider.KeywordOptions {
	return provider.KeywordOptions{
		TopN:      a.topN,
		NgramMin:  DefaultNgramMin,
		NgramMax:  DefaultNgramMax,
		Diversity: DefaultDiversity,
	}
}

// Format converts provider keywords to the output shape, truncated to
// the configured top N. Provider order (descending score) is kept.
func (a *Adapter) Format(kws []provider.Keyword) []Ranked {
	out := []Ranked{}
	for _, kw := range kws {
		if len(out) == a.topN {
			break
		}
		out = append(out, Ranked{Keyword: kw.Phrase, Score: round3(kw.Score)})
	}
	return out
}

// MedicalPhrases filters to phrases containing a medical indicator.
func (a *Adapter) MedicalPhrases(kws []provider.Keyword) []string {
	phrases := []string{}
	for _, kw := range kws {
		lower := strings.ToLower(kw.Phrase)
		for _, ind := range a.indicators {
			if strings.Contains(lower, ind) {
				phrases = append(phrases, kw.Phrase)
				break
			}
		}
	}
	return phrases
}

var (
	symptomTerms   = []string{"pain", "ache", "discomfort", "stiffness", "tenderness"}
	treatmentTerms = []string{"therapy", "treatment", "medication", "sessions", "physiotherapy"}
	conditionTerms = []string{"injury", "accident", "diagnosis", "whiplash", "strain"}
)

// Categorize buckets keywords by clinical type. A phrase can land in
// more than one bucket; phrases matching nothing go to General.
func (a *Adapter) Categorize(kws []provider.Keyword) Categorized {
	cat := Categorized{
		Symptoms:   []Ranked{},
		Treatments: []Ranked{},
		Conditions: []Ranked{},
		General:    []Ranked{},
	}

	contains := func(s string, terms []string) bool {
		for _, t := range terms {
			if strings.Contains(s, t) {
				return true
			}
		}
		return false
	}

	for _, kw := range kws {
		lower := strings.ToLower(kw.Phrase)
		ranked := Ranked{Keyword: kw.Phrase, Score: round3(kw.Score)}

		matched := false
		if contains(lower, symptomTerms) {
			cat.Symptoms = append(cat.Symptoms, ranked)
			matched = true
		}
		if contains(lower, treatmentTerms) {
			cat.Treatments = append(cat.Treatments, ranked)
			matched = true
		}
		if contains(lower, conditionTerms) {
			cat.Conditions = append(cat.Conditions, ranked)
			matched = true
		}
		if !matched {
			cat.General = append(cat.General, ranked)
		}
	}
	return cat
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
