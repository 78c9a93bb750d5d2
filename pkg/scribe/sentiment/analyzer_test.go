package sentiment

import (
	"context"
	"errors"
	"testing"

	"github.com/cliniscribe/scribe/pkg/scribe/provider"
)

type fakeSentiment struct {
	scores map[string]provider.SentimentScore
	err    error
	calls  int
}

func (f *fakeSentiment) Classify(ctx context.Context, text string) (provider.SentimentScore, error) {
	f.calls++
	if f.err != nil {
		return provider.SentimentScore{}, f.err
	}
	if s, ok := f.scores[text]; ok {
		return s, nil
	}
	return provider.SentimentScore{Label: "NEUTRAL", Confidence: 0.9}, nil
}

func TestAnalyzeStatementsMapsLabels(t *testing.T) {
	fake := &fakeSentiment{scores: map[string]provider.SentimentScore{
		"I am very worried about this": {Label: "NEGATIVE", Confidence: 0.95},
		"that is a relief to hear":     {Label: "POSITIVE", Confidence: 0.88},
		"it happened on a Tuesday":     {Label: "NEGATIVE", Confidence: 0.45},
	}}
	a := NewAnalyzer(fake, 0, nil)

	results, err := a.AnalyzeStatements(context.Background(), []string{
		"I am very worried about this",
		"that is a relief to hear",
		"it happened on a Tuesday",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	wants := []Label{LabelAnxious, LabelReassured, LabelNeutral}
	for i, want := range wants {
		if results[i].Sentiment != want {
			t.Errorf("statement %d sentiment = %s, want %s (raw %s conf %v)",
				i, results[i].Sentiment, want, results[i].RawLabel, results[i].Confidence)
		}
	}
}

func TestAnalyzeStatementsSkipsFragments(t *testing.T) {
	fake := &fakeSentiment{}
	a := NewAnalyzer(fake, 0, nil)

	results, err := a.AnalyzeStatements(context.Background(), []string{"yes", "ok sure", "the pain is back"})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 {
		t.Errorf("expected 1 result, got %d", len(results))
	}
	if fake.calls != 1 {
		t.Errorf("provider called %d times, want 1", fake.calls)
	}
}

func TestAnalyzeStatementsPartialFailure(t *testing.T) {
	// Provider fails on one specific statement.
	calls := 0
	p := classifyFunc(func(ctx context.Context, text string) (provider.SentimentScore, error) {
		calls++
		if text == "this one breaks the model" {
			return provider.SentimentScore{}, errors.New("boom")
		}
		return provider.SentimentScore{Label: "POSITIVE", Confidence: 0.9}, nil
	})
	a := NewAnalyzer(p, 0, nil)

	results, err := a.AnalyzeStatements(context.Background(), []string{
		"this one breaks the model",
		"this one is perfectly fine",
	})
	if err != nil {
		t.Fatalf("partial failure should not return error, got %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Sentiment != LabelNeutral || results[0].RawLabel != "ERROR" {
		t.Errorf("failed statement result = %+v", results[0])
	}
	if results[1].Sentiment != LabelReassured {
		t.Errorf("ok statement result = %+v", results[1])
	}
}

func TestAnalyzeStatementsTotalFailure(t *testing.T) {
	fake := &fakeSentiment{err: errors.New("service down")}
	a := NewAnalyzer(fake, 0, nil)

	results, err := a.AnalyzeStatements(context.Background(), []string{"the pain is constant now"})
	if err == nil {
		t.Fatal("expected error when every call fails")
	}
	if len(results) != 1 || results[0].RawLabel != "ERROR" {
		t.Errorf("results = %+v", results)
	}
}

type classifyFunc func(ctx context.Context, text string) (provider.SentimentScore, error)

func (f classifyFunc) Classify(ctx context.Context, text string) (provider.SentimentScore, error) {
	return f(ctx, text)
}

func TestAnalyzeStatementsUnknownLabel(t *testing.T) {
	p := classifyFunc(func(ctx context.Context, text string) (provider.SentimentScore, error) {
		return provider.SentimentScore{Label: "MIXED", Confidence: 0.99}, nil
	})
	a := NewAnalyzer(p, 0, nil)

	results, err := a.AnalyzeStatements(context.Background(), []string{"some unusual statement here"})
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Sentiment != LabelNeutral {
		t.Errorf("unknown raw label should map to Neutral, got %s", results[0].Sentiment)
	}
}

func TestComputeOverall(t *testing.T) {
	results := []Result{
		{Sentiment: LabelAnxious, Confidence: 0.9},
		{Sentiment: LabelAnxious, Confidence: 0.8},
		{Sentiment: LabelReassured, Confidence: 0.7},
	}

	overall := ComputeOverall(results)
	if overall.DominantSentiment != LabelAnxious {
		t.Errorf("dominant = %s", overall.DominantSentiment)
	}
	if overall.Distribution[LabelAnxious] != 2 || overall.Distribution[LabelReassured] != 1 {
		t.Errorf("distribution = %v", overall.Distribution)
	}
	if overall.TotalStatements != 3 {
		t.Errorf("total = %d", overall.TotalStatements)
	}
	if overall.AvgConfidence != 0.8 {
		t.Errorf("avg confidence = %v", overall.AvgConfidence)
	}
}

func TestComputeOverallEmpty(t *testing.T) {
	overall := ComputeOverall(nil)
	if overall.DominantSentiment != LabelNeutral {
		t.Errorf("empty dominant = %s, want Neutral", overall.DominantSentiment)
	}
	if overall.TotalStatements != 0 {
		t.Errorf("total = %d", overall.TotalStatements)
	}
	if len(overall.Distribution) != 3 {
		t.Errorf("distribution missing labels: %v", overall.Distribution)
	}
}

func TestComputeTimeline(t *testing.T) {
	results := []Result{
		{Sentiment: LabelAnxious, Confidence: 0.9},
		{Sentiment: LabelNeutral, Confidence: 0.5},
		{Sentiment: LabelReassured, Confidence: 0.8},
	}

	timeline := ComputeTimeline(results)
	if len(timeline) != 3 {
		t.Fatalf("timeline length = %d", len(timeline))
	}
	wantScores := []int{-1, 0, 1}
	for i, p := range timeline {
		if p.Position != i+1 {
			t.Errorf("point %d position = %d", i, p.Position)
		}
		if p.Score != wantScores[i] {
			t.Errorf("point %d score = %d, want %d", i, p.Score, wantScores[i])
		}
	}
}
