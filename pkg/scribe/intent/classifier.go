// Package intent classifies the purpose behind patient statements via
// a zero-shot provider over a fixed label set.
package intent

import (
	"context"
	"math"
	"strings"

	"github.com/cliniscribe/scribe/pkg/scribe/provider"
)

// Unclassified is the explicit label for low-confidence results.
const Unclassified = "unclassified"

// DefaultConfidenceThreshold below which a result is Unclassified.
const DefaultConfidenceThreshold = 0.6

const minStatementWords = 3

// DefaultCategories returns the fixed intent label set.
func DefaultCategories() []string {
	return []string{
		"seeking reassurance",
		"reporting symptoms",
		"expressing concern",
		"asking questions",
		"describing history",
		"confirming understanding",
		"expressing relief",
	}
}

// Result is one statement's intent classification.
type Result struct {
	Text       string             `json:"text"`
	Intent     string             `json:"intent"`
	Confidence float64            `json:"confidence"`
	AllScores  map[string]float64 `json:"all_scores"`
}

// Classifier runs zero-shot intent classification over patient statements.
type Classifier struct {
	provider   provider.Intent
	categories []string
	threshold  float64
}

// NewClassifier creates a classifier. Nil categories and a zero
// threshold fall back to the defaults.
func NewClassifier(p provider.Intent, categories []string, threshold float64) *Classifier {
	if categories == nil {
		categories = DefaultCategories()
	}
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	return &Classifier{provider: p, categories: categories, threshold: threshold}
}

// Categories returns the candidate label set.
func (c *Classifier) Categories() []string {
	return c.categories
}

// ClassifyStatements classifies each statement, skipping fragments under
// three words. Individual failures yield Unclassified; the error is
// non-nil only when every attempted call failed.
func (c *Classifier) ClassifyStatements(ctx context.Context, statements []string) ([]Result, error) {
	results := []Result{}
	var firstErr error
	attempted, failed := 0, 0

	for _, stmt := range statements {
		if len(strings.Fields(stmt)) < minStatementWords {
			continue
		}
		attempted++

		score, err := c.provider.Classify(ctx, stmt, c.categories)
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			results = append(results, Result{Text: stmt, Intent: Unclassified, AllScores: map[string]float64{}})
			continue
		}

		label := score.Label
		if score.Confidence < c.threshold {
			label = Unclassified
		}
		allScores := make(map[string]float64, len(score.Scores))
		for k, v := range score.Scores {
			allScores[k] = round3(v)
		}
		results = append(results, Result{
			Text:       stmt,
			Intent:     label,
			Confidence: round3(score.Confidence),
			AllScores:  allScores,
		})
	}

	if attempted > 0 && failed == attempted {
		return results, firstErr
	}
	return results, nil
}

// Distribution counts results per candidate label. Every label is
// present, possibly zero; Unclassified results are counted under their
// own key only if any occurred.
func (c *Classifier) Distribution(results []Result) map[string]int {
	dist := make(map[string]int, len(c.categories))
	for _, cat := range c.categories {
		dist[cat] = 0
	}
	for _, r := range results {
		if _, ok := dist[r.Intent]; ok {
			dist[r.Intent]++
		} else if r.Intent == Unclassified {
			dist[Unclassified]++
		}
	}
	return dist
}

// Dominant returns the most common intent, or Unclassified for an empty
// result set. Ties resolve in candidate-label order.
func (c *Classifier) Dominant(results []Result) string {
	if len(results) == 0 {
		return Unclassified
	}
	dist := c.Distribution(results)

	dominant := Unclassified
	best := dist[Unclassified]
	for _, cat := range c.categories {
		if dist[cat] > best {
			best = dist[cat]
			dominant = cat
		}
	}
	return dominant
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
