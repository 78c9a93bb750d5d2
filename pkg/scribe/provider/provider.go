// Package provider defines the narrow contracts for the external
// inference capabilities the pipeline consumes: medical NER, sentiment,
// intent, and keyword extraction. The pipeline depends only on these
// interfaces; concrete variants are selected by the caller.
package provider

import (
	"context"

	"github.com/cliniscribe/scribe/pkg/scribe/entity"
)

// Entity is a raw NER span before validation.
type Entity struct {
	Text       string
	Category   entity.Category
	Confidence float64
}

// NER extracts medical entity spans from text. Implementations return
// an empty slice, never nil shape surprises, when nothing is found.
type NER interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}

// SentimentScore is a raw sentiment classification.
type SentimentScore struct {
	Label      string
	Confidence float64
}

// Sentiment classifies the emotional tone of one statement.
type Sentiment interface {
	Classify(ctx context.Context, text string) (SentimentScore, error)
}

// IntentScore is a zero-shot intent classification over candidate labels.
type IntentScore struct {
	Label      string
	Confidence float64
	Scores     map[string]float64
}

// Intent classifies a statement against candidate intent labels.
type Intent interface {
	Classify(ctx context.Context, text string, candidates []string) (IntentScore, error)
}

// Keyword is a ranked key phrase.
type Keyword struct {
	Phrase string
	Score  float64
}

// KeywordOptions controls keyword extraction.
type KeywordOptions struct {
	TopN      int
	NgramMin  int
	NgramMax  int
	Diversity float64
}

// Keywords extracts ranked key phrases, descending by score.
type Keywords interface {
	Extract(ctx context.Context, text string, opts KeywordOptions) ([]Keyword, error)
}

// Registry bundles the four providers. The caller constructs it once
// per process lifetime and hands it to the pipeline; nil slots simply
// degrade the corresponding phase.
type Registry struct {
	NER       NER
	Sentiment Sentiment
	Intent    Intent
	Keywords  Keywords
}
