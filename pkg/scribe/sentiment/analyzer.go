// Package sentiment maps raw sentiment provider output onto the
// clinical context labels and aggregates per-statement results.
package sentiment

import (
	"context"
	"math"
	"strings"

	"github.com/cliniscribe/scribe/pkg/scribe/provider"
)

// Label is a clinical-context sentiment.
type Label string

const (
	LabelAnxious   Label = "Anxious"
	LabelNeutral   Label = "Neutral"
	LabelReassured Label = "Reassured"
)

// DefaultConfidenceThreshold below which any raw label maps to Neutral.
const DefaultConfidenceThreshold = 0.7

// minStatementWords filters out fragments too short to classify.
const minStatementWords = 3

// DefaultLabelMap maps raw provider labels to clinical labels.
func DefaultLabelMap() map[string]Label {
	return map[string]Label{
		"POSITIVE": LabelReassured,
		"NEGATIVE": LabelAnxious,
		"NEUTRAL":  LabelNeutral,
	}
}

// Result is one statement's sentiment classification.
type Result struct {
	Text       string  `json:"text"`
	Sentiment  Label   `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	RawLabel   string  `json:"raw_label"`
}

// Overall aggregates results into a distribution view.
type Overall struct {
	Distribution      map[Label]int `json:"distribution"`
	DominantSentiment Label         `json:"dominant_sentiment"`
	TotalStatements   int           `json:"total_statements"`
	AvgConfidence     float64       `json:"avg_confidence"`
}

// TimelinePoint is one step of sentiment progression. Score is -1 for
// Anxious, 0 for Neutral, +1 for Reassured.
type TimelinePoint struct {
	Position   int     `json:"position"`
	Sentiment  Label   `json:"sentiment"`
	Score      int     `json:"score"`
	Confidence float64 `json:"confidence"`
}

// Analyzer classifies patient statements through a sentiment provider.
type Analyzer struct {
	provider  provider.Sentiment
	threshold float64
	labels    map[string]Label
}

// NewAnalyzer creates an analyzer. A zero threshold falls back to the
// default; a nil label map falls back to DefaultLabelMap.
func NewAnalyzer(p provider.Sentiment, threshold float64, labels map[string]Label) *Analyzer {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if labels == nil {
		labels = DefaultLabelMap()
	}
	return &Analyzer{provider: p, threshold: threshold, labels: labels}
}

// AnalyzeStatements classifies each statement, skipping fragments under
// three words. Individual provider failures fall back to Neutral; the
// error is non-nil only when every attempted call failed.
func (a *Analyzer) AnalyzeStatements(ctx context.Context, statements []string) ([]Result, error) {
	results := []Result{}
	var firstErr error
	attempted, failed := 0, 0

	for _, stmt := range statements {
		if len(strings.Fields(stmt)) < minStatementWords {
			continue
		}
		attempted++

		score, err := a.provider.Classify(ctx, stmt)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			results = append(results, Result{Text: stmt, Sentiment: LabelNeutral, RawLabel: "ERROR"})
			continue
		}
		results = append(results, Result{
			Text:       stmt,
			Sentiment:  a.mapLabel(score.Label, score.Confidence),
			Confidence: round3(score.Confidence),
			RawLabel:   score.Label,
		})
	}

	if attempted > 0 && failed == attempted {
		return results, firstErr
	}
	return results, nil
}

func (a *Analyzer) mapLabel(raw string, confidence float64) Label {
	if confidence < a.threshold {
		return LabelNeutral
	}
	if mapped, ok := a.labels[strings.ToUpper(raw)]; ok {
		return mapped
	}
	return LabelNeutral
}

// ComputeOverall derives the distribution and dominant sentiment.
// Ties resolve in Anxious, Neutral, Reassured order.
func ComputeOverall(results []Result) Overall {
	overall := Overall{
		Distribution:      map[Label]int{LabelAnxious: 0, LabelNeutral: 0, LabelReassured: 0},
		DominantSentiment: LabelNeutral,
		TotalStatements:   len(results),
	}
	if len(results) == 0 {
		return overall
	}

	var confSum float64
	for _, r := range results {
		overall.Distribution[r.Sentiment]++
		confSum += r.Confidence
	}
	overall.AvgConfidence = round3(confSum / float64(len(results)))

	best := -1
	for _, l := range []Label{LabelAnxious, LabelNeutral, LabelReassured} {
		if overall.Distribution[l] > best {
			best = overall.Distribution[l]
			overall.DominantSentiment = l
		}
	}
	return overall
}

// ComputeTimeline renders sentiment progression over the conversation.
func ComputeTimeline(results []Result) []TimelinePoint {
	scores := map[Label]int{LabelAnxious: -1, LabelNeutral: 0, LabelReassured: 1}

	timeline := make([]TimelinePoint, len(results))
	for i, r := range results {
		timeline[i] = TimelinePoint{
			Position:   i + 1,
			Sentiment:  r.Sentiment,
			Score:      scores[r.Sentiment],
			Confidence: r.Confidence,
		}
	}
	return timeline
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
