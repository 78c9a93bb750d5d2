// Package remote implements the provider contracts against an HTTP
// inference service exposing one JSON route per capability.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cliniscribe/scribe/pkg/scribe/entity"
	"github.com/cliniscribe/scribe/pkg/scribe/provider"
)

// Client holds the shared connection settings for the remote providers.
type Client struct {
	BaseURL string
	APIKey  string

	HTTPClient *http.Client
}

type apiError struct {
	Message string `json:"message"`
}

func (c *Client) post(ctx context.Context, path string, reqBody, respBody any) error {
	if c.BaseURL == "" {
		return fmt.Errorf("remote: base URL required")
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("remote %s: %s", path, apiErr.Message)
		}
		return fmt.Errorf("remote %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(respBody)
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 15 * time.Second}
}

// NER implements provider.NER against the /v1/entities route.
type NER struct{ *Client }

type nerRequest struct {
	Text string `json:"text"`
}

type nerResponse struct {
	Entities []struct {
		Text       string  `json:"text"`
		Category   string  `json:"category"`
		Confidence float64 `json:"confidence"`
	} `json:"entities"`
}

// Extract calls the remote entity tagger. An empty entity list is a
// valid response, not an error.
func (n NER) Extract(ctx context.Context, text string) ([]provider.Entity, error) {
	var resp nerResponse
	if err := n.post(ctx, "/v1/entities", nerRequest{Text: text}, &resp); err != nil {
		return nil, err
	}
	ents := make([]provider.Entity, 0, len(resp.Entities))
	for _, e := range resp.Entities {
		ents = append(ents, provider.Entity{
			Text:       e.Text,
			Category:   entity.Category(e.Category),
			Confidence: e.Confidence,
		})
	}
	return ents, nil
}

// Sentiment implements provider.Sentiment against the /v1/sentiment route.
type Sentiment struct{ *Client }

type sentimentRequest struct {
	Text string `json:"text"`
}

type sentimentResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classify calls the remote sentiment classifier.
func (s Sentiment) Classify(ctx context.Context, text string) (provider.SentimentScore, error) {
	var resp sentimentResponse
	if err := s.post(ctx, "/v1/sentiment", sentimentRequest{Text: text}, &resp); err != nil {
		return provider.SentimentScore{}, err
	}
	return provider.SentimentScore{Label: resp.Label, Confidence: resp.Confidence}, nil
}

// Intent implements provider.Intent against the /v1/intent route.
type Intent struct{ *Client }

type intentRequest struct {
	Text       string   `json:"text"`
	Candidates []string `json:"candidate_labels"`
}

type intentResponse struct {
	Label      string             `json:"label"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

// Classify calls the remote zero-shot intent classifier.
func (i Intent) Classify(ctx context.Context, text string, candidates []string) (provider.IntentScore, error) {
	var resp intentResponse
	if err := i.post(ctx, "/v1/intent", intentRequest{Text: text, Candidates: candidates}, &resp); err != nil {
		return provider.IntentScore{}, err
	}
	return provider.IntentScore{Label: resp.Label, Confidence: resp.Confidence, Scores: resp.Scores}, nil
}

// Keywords implements provider.Keywords against the /v1/keywords route.
type Keywords struct{ *Client }

type keywordsRequest struct {
	Text      string  `json:"text"`
	TopN      int     `json:"top_n"`
	NgramMin  int     `json:"ngram_min"`
	NgramMax  int     `json:"ngram_max"`
	Diversity float64 `json:"diversity"`
}

type keywordsResponse struct {
	Keywords []struct {
		Phrase string  `json:"phrase"`
		Score  float64 `json:"score"`
	} `json:"keywords"`
}

// Extract calls the remote keyword extractor. Results arrive ranked
// descending by score.
func (k Keywords) Extract(ctx context.Context, text string, opts provider.KeywordOptions) ([]provider.Keyword, error) {
	req := keywordsRequest{
		Text:      text,
		TopN:      opts.TopN,
		NgramMin:  opts.NgramMin,
		NgramMax:  opts.NgramMax,
		Diversity: opts.Diversity,
	}
	var resp keywordsResponse
	if err := k.post(ctx, "/v1/keywords", req, &resp); err != nil {
		return nil, err
	}
	kws := make([]provider.Keyword, 0, len(resp.Keywords))
	for _, kw := range resp.Keywords {
		kws = append(kws, provider.Keyword{Phrase: kw.Phrase, Score: kw.Score})
	}
	return kws, nil
}

// NewRegistry wires all four remote providers onto one client.
func NewRegistry(c *Client) provider.Registry {
	return provider.Registry{
		NER:       NER{c},
		Sentiment: Sentiment{c},
		Intent:    Intent{c},
		Keywords:  Keywords{c},
	}
}
