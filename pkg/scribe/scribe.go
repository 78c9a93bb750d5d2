// Package scribe turns unstructured doctor-patient transcripts into
// structured clinical records: speaker-attributed dialogue, validated
// medical entities, temporal facts, and a rule-generated SOAP note.
package scribe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/cliniscribe/scribe/pkg/scribe/diarize"
	"github.com/cliniscribe/scribe/pkg/scribe/entity"
	"github.com/cliniscribe/scribe/pkg/scribe/intent"
	"github.com/cliniscribe/scribe/pkg/scribe/internalerr"
	"github.com/cliniscribe/scribe/pkg/scribe/keywords"
	"github.com/cliniscribe/scribe/pkg/scribe/provider"
	"github.com/cliniscribe/scribe/pkg/scribe/sentiment"
	"github.com/cliniscribe/scribe/pkg/scribe/soap"
	"github.com/cliniscribe/scribe/pkg/scribe/summary"
	"github.com/cliniscribe/scribe/pkg/scribe/temporal"
	"github.com/cliniscribe/scribe/pkg/scribe/textclean"
)

// Processing defaults.
const (
	DefaultMaxTextLength          = 50000
	DefaultProviderTimeout        = 30 * time.Second
	DefaultNERConfidenceThreshold = 0.5
)

// Phase names recorded in metadata when a provider phase falls back.
const (
	PhaseEntities  = "entities"
	PhaseSentiment = "sentiment"
	PhaseIntent    = "intent"
	PhaseKeywords  = "keywords"
)

// Options configures a Pipeline. Nil components fall back to defaults;
// nil provider slots degrade their phase on every run.
type Options struct {
	Providers provider.Registry

	Cleaner   *textclean.Cleaner
	Diarizer  *diarize.Diarizer
	Temporal  *temporal.Extractor
	Validator *entity.Validator
	SOAP      *soap.Generator
	Keywords  *keywords.Adapter

	SentimentThreshold float64
	SentimentLabels    map[string]sentiment.Label
	IntentCategories   []string
	IntentThreshold    float64

	NERConfidenceThreshold float64
	MaxTextLength          int
	ProviderTimeout        time.Duration

	Logger *zerolog.Logger
}

// Pipeline is the orchestrator. It sequences the rule-based components
// and the provider-backed phases, isolates per-phase failures, and
// assembles the final record. Safe for concurrent use; each run owns
// its own Result.
type Pipeline struct {
	providers  provider.Registry
	cleaner    *textclean.Cleaner
	diarizer   *diarize.Diarizer
	temporal   *temporal.Extractor
	validator  *entity.Validator
	soap       *soap.Generator
	keywords   *keywords.Adapter
	sentiment  *sentiment.Analyzer
	intent     *intent.Classifier
	summarizer *summary.Summarizer

	nerThreshold    float64
	maxTextLength   int
	providerTimeout time.Duration
	log             zerolog.Logger
}

// New creates a Pipeline with the given options.
func New(opts Options) *Pipeline {
	if opts.Cleaner == nil {
		opts.Cleaner = textclean.NewCleaner(textclean.DefaultAbbreviations())
	}
	if opts.Diarizer == nil {
		opts.Diarizer = diarize.NewDiarizer(nil)
	}
	if opts.Temporal == nil {
		opts.Temporal = temporal.NewExtractor(temporal.DefaultRules())
	}
	if opts.Validator == nil {
		opts.Validator = entity.NewValidator(0, 0, nil)
	}
	if opts.SOAP == nil {
		opts.SOAP = soap.NewGenerator(soap.DefaultRules())
	}
	if opts.Keywords == nil {
		opts.Keywords = keywords.NewAdapter(0, nil)
	}
	if opts.NERConfidenceThreshold <= 0 {
		opts.NERConfidenceThreshold = DefaultNERConfidenceThreshold
	}
	if opts.MaxTextLength <= 0 {
		opts.MaxTextLength = DefaultMaxTextLength
	}
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = DefaultProviderTimeout
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	return &Pipeline{
		providers:       opts.Providers,
		cleaner:         opts.Cleaner,
		diarizer:        opts.Diarizer,
		temporal:        opts.Temporal,
		validator:       opts.Validator,
		soap:            opts.SOAP,
		keywords:        opts.Keywords,
		sentiment:       sentiment.NewAnalyzer(opts.Providers.Sentiment, opts.SentimentThreshold, opts.SentimentLabels),
		intent:          intent.NewClassifier(opts.Providers.Intent, opts.IntentCategories, opts.IntentThreshold),
		summarizer:      summary.NewSummarizer(opts.Temporal),
		nerThreshold:    opts.NERConfidenceThreshold,
		maxTextLength:   opts.MaxTextLength,
		providerTimeout: opts.ProviderTimeout,
		log:             logger,
	}
}

// Process runs the full pipeline on a raw transcript. Only input
// validation failures abort the run; provider failures degrade their
// phase and are recorded in the result metadata.
func (p *Pipeline) Process(ctx context.Context, raw string) (*Result, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("process: %w", internalerr.ErrEmptyInput)
	}
	if n := utf8.RuneCountInString(raw); n > p.maxTextLength {
		return nil, fmt.Errorf("process: %d characters over limit %d: %w",
			n, p.maxTextLength, internalerr.ErrInputTooLarge)
	}

	cleaned := p.cleaner.Clean(raw)
	turns := p.diarizer.Parse(cleaned)
	if turns == nil {
		turns = []diarize.Turn{}
	}
	stats := diarize.ComputeStats(turns)
	patient := diarize.Statements(turns, diarize.SpeakerPatient)

	mentions := p.temporal.ExtractAll(cleaned)

	// The four provider-backed phases only depend on diarization and
	// run concurrently, each under its own timeout. Later phases wait
	// for all of them to settle.
	var (
		wg sync.WaitGroup

		entities    map[entity.Category][]string
		entitiesErr error

		sentResults []sentiment.Result
		sentErr     error

		intentResults []intent.Result
		intentErr     error

		rawKeywords []provider.Keyword
		kwErr       error
	)

	wg.Add(4)
	go func() {
		defer wg.Done()
		entities, entitiesErr = p.extractEntities(ctx, cleaned)
	}()
	go func() {
		defer wg.Done()
		sentResults, sentErr = p.analyzeSentiment(ctx, patient)
	}()
	go func() {
		defer wg.Done()
		intentResults, intentErr = p.classifyIntents(ctx, patient)
	}()
	go func() {
		defer wg.Done()
		rawKeywords, kwErr = p.extractKeywords(ctx, cleaned)
	}()
	wg.Wait()

	degraded := []string{}
	record := func(phase string, err error) {
		if err == nil {
			return
		}
		degraded = append(degraded, phase)
		p.log.Warn().Str("phase", phase).Err(err).Msg("phase degraded, using fallback")
	}
	record(PhaseEntities, entitiesErr)
	record(PhaseSentiment, sentErr)
	record(PhaseIntent, intentErr)
	record(PhaseKeywords, kwErr)

	if entities == nil {
		entities = fallbackEntities()
	}
	if sentResults == nil {
		sentResults = []sentiment.Result{}
	}
	if intentResults == nil {
		intentResults = []intent.Result{}
	}

	summ := p.summarizer.Generate(turns, entities, mentions, cleaned)
	note := p.soap.Generate(turns, entities, mentions, cleaned)

	return &Result{
		Metadata: Metadata{
			RunID:           ulid.Make().String(),
			ProcessedAt:     time.Now().UTC().Format(time.RFC3339),
			PipelineVersion: Version,
			TotalDialogues:  stats.TotalTurns,
			DoctorTurns:     stats.DoctorTurns,
			PatientTurns:    stats.PatientTurns,
			DegradedPhases:  degraded,
		},
		Summary:  summ,
		Entities: entities,
		TemporalInfo: TemporalInfo{
			Dates:     temporal.Texts(mentions.Dates),
			Times:     temporal.Texts(mentions.Times),
			Durations: temporal.Texts(mentions.Durations),
		},
		Sentiment: SentimentAnalysis{
			Overall:      sentiment.ComputeOverall(sentResults),
			Timeline:     sentiment.ComputeTimeline(sentResults),
			PerStatement: sentResults,
		},
		Intent: IntentAnalysis{
			Distribution:   p.intent.Distribution(intentResults),
			DominantIntent: p.intent.Dominant(intentResults),
			PerStatement:   intentResults,
		},
		Keywords: KeywordInfo{
			TopKeywords:    p.keywords.Format(rawKeywords),
			MedicalPhrases: p.keywords.MedicalPhrases(rawKeywords),
			Categorized:    p.keywords.Categorize(rawKeywords),
		},
		Dialogues: turns,
		SOAPNote:  note,
	}, nil
}

func (p *Pipeline) extractEntities(ctx context.Context, text string) (map[entity.Category][]string, error) {
	if p.providers.NER == nil {
		return nil, fmt.Errorf("ner provider unconfigured: %w", internalerr.ErrProviderFailed)
	}

	pctx, cancel := context.WithTimeout(ctx, p.providerTimeout)
	defer cancel()

	ents, err := p.providers.NER.Extract(pctx, text)
	if err != nil {
		return nil, p.wrapProviderErr("ner", err)
	}

	raw := map[entity.Category][]string{}
	for _, cat := range entity.Categories() {
		raw[cat] = []string{}
	}
	for _, e := range ents {
		if e.Confidence < p.nerThreshold {
			continue
		}
		if _, ok := raw[e.Category]; ok {
			raw[e.Category] = append(raw[e.Category], e.Text)
		}
	}
	return p.validator.ValidateByCategory(raw), nil
}

func (p *Pipeline) analyzeSentiment(ctx context.Context, statements []string) ([]sentiment.Result, error) {
	if p.providers.Sentiment == nil {
		return nil, fmt.Errorf("sentiment provider unconfigured: %w", internalerr.ErrProviderFailed)
	}

	pctx, cancel := context.WithTimeout(ctx, p.providerTimeout)
	defer cancel()

	results, err := p.sentiment.AnalyzeStatements(pctx, statements)
	if err != nil {
		return nil, p.wrapProviderErr("sentiment", err)
	}
	return results, nil
}

func (p *Pipeline) classifyIntents(ctx context.Context, statements []string) ([]intent.Result, error) {
	if p.providers.Intent == nil {
		return nil, fmt.Errorf("intent provider unconfigured: %w", internalerr.ErrProviderFailed)
	}

	pctx, cancel := context.WithTimeout(ctx, p.providerTimeout)
	defer cancel()

	results, err := p.intent.ClassifyStatements(pctx, statements)
	if err != nil {
		return nil, p.wrapProviderErr("intent", err)
	}
	return results, nil
}

func (p *Pipeline) extractKeywords(ctx context.Context, text string) ([]provider.Keyword, error) {
	if p.providers.Keywords == nil {
		return nil, fmt.Errorf("keyword provider unconfigured: %w", internalerr.ErrProviderFailed)
	}

	pctx, cancel := context.WithTimeout(ctx, p.providerTimeout)
	defer cancel()

	kws, err := p.providers.Keywords.Extract(pctx, text, p.keywords.Options())
	if err != nil {
		return nil, p.wrapProviderErr("keywords", err)
	}
	return kws, nil
}

func (p *Pipeline) wrapProviderErr(name string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", name, internalerr.ErrProviderTimeout)
	}
	return fmt.Errorf("%s: %v: %w", name, err, internalerr.ErrProviderFailed)
}

func fallbackEntities() map[entity.Category][]string {
	out := make(map[entity.Category][]string, len(entity.Categories()))
	for _, cat := range entity.Categories() {
		out[cat] = []string{}
	}
	return out
}

// SaveOutput serializes the record to path and returns the path.
func (p *Pipeline) SaveOutput(result *Result, path string) (string, error) {
	data, err := result.Marshal()
	if err != nil {
		return "", fmt.Errorf("%w: %v", internalerr.ErrSerialization, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("%w: %v", internalerr.ErrSerialization, err)
	}
	return path, nil
}

// LoadTranscript reads a UTF-8 transcript file.
func LoadTranscript(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("transcript %s: %w", path, internalerr.ErrNotFound)
		}
		return "", fmt.Errorf("load transcript: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("transcript %s: %w: not valid UTF-8", path, internalerr.ErrInvalidConfig)
	}
	return string(data), nil
}
