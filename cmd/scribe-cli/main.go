package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/cliniscribe/scribe/pkg/scribe"
	"github.com/cliniscribe/scribe/pkg/scribe/config"
	"github.com/cliniscribe/scribe/pkg/scribe/internalerr"
	"github.com/cliniscribe/scribe/pkg/scribe/keywords"
	"github.com/cliniscribe/scribe/pkg/scribe/provider"
	"github.com/cliniscribe/scribe/pkg/scribe/provider/remote"
	"github.com/cliniscribe/scribe/pkg/scribe/provider/rulener"
	"github.com/cliniscribe/scribe/pkg/scribe/soap"
	"github.com/cliniscribe/scribe/pkg/scribe/store"
	"github.com/cliniscribe/scribe/pkg/scribe/store/sqlite"
)

func main() {
	transcriptPath := flag.String("transcript", "", "Path to transcript file (required)")
	outputPath := flag.String("output", "", "Path for the JSON output (default: <transcript>.json)")
	dbPath := flag.String("db", "", "Optional SQLite path for run persistence")
	cleaningPath := flag.String("cleaning", "", "Cleaning rules YAML")
	speakersPath := flag.String("speakers", "", "Speaker labels YAML")
	lexiconPath := flag.String("lexicon", "", "Medical lexicon YAML")
	temporalPath := flag.String("temporal", "", "Temporal rules YAML")
	soapPath := flag.String("soap", "", "SOAP rules YAML")
	validationPath := flag.String("validation", "", "Entity validation YAML")
	thresholdsPath := flag.String("thresholds", "", "Thresholds YAML")
	printNote := flag.Bool("print-soap", false, "Print the SOAP note as text")
	jsonLogs := flag.Bool("json-logs", false, "Emit JSON logs instead of console output")
	verbose := flag.Bool("v", false, "Enable debug logging")
	flag.Parse()

	// Missing .env is fine; environment variables may be set directly.
	_ = godotenv.Load()

	logger := newLogger(*jsonLogs, *verbose)

	if *transcriptPath == "" {
		logger.Fatal().Msg("--transcript required")
	}
	out := *outputPath
	if out == "" {
		out = *transcriptPath + ".json"
	}

	loader := config.Loader{
		CleaningPath:   *cleaningPath,
		SpeakersPath:   *speakersPath,
		LexiconPath:    *lexiconPath,
		TemporalPath:   *temporalPath,
		SOAPPath:       *soapPath,
		ValidationPath: *validationPath,
		ThresholdsPath: *thresholdsPath,
	}
	comp, err := loader.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load configuration")
	}

	raw, err := scribe.LoadTranscript(*transcriptPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", *transcriptPath).Msg("load transcript")
	}

	pipeline := scribe.New(scribe.Options{
		Providers:              buildProviders(comp, logger),
		Cleaner:                comp.Cleaner,
		Diarizer:               comp.Diarizer,
		Temporal:               comp.Temporal,
		Validator:              comp.Validator,
		SOAP:                   comp.SOAP,
		Keywords:               keywords.NewAdapter(comp.KeywordTopN, nil),
		SentimentThreshold:     comp.SentimentThreshold,
		IntentThreshold:        comp.IntentThreshold,
		NERConfidenceThreshold: comp.NERThreshold,
		MaxTextLength:          comp.MaxTextLength,
		ProviderTimeout:        comp.ProviderTimeout,
		Logger:                 &logger,
	})

	ctx := context.Background()
	result, err := pipeline.Process(ctx, raw)
	if err != nil {
		switch {
		case errors.Is(err, internalerr.ErrEmptyInput):
			logger.Fatal().Msg("transcript is empty")
		case errors.Is(err, internalerr.ErrInputTooLarge):
			logger.Fatal().Err(err).Msg("transcript exceeds size limit")
		default:
			logger.Fatal().Err(err).Msg("process transcript")
		}
	}

	path, err := pipeline.SaveOutput(result, out)
	if err != nil {
		logger.Fatal().Err(err).Msg("write output")
	}
	logger.Info().
		Str("run_id", result.Metadata.RunID).
		Str("output", path).
		Int("dialogues", result.Metadata.TotalDialogues).
		Strs("degraded_phases", result.Metadata.DegradedPhases).
		Msg("transcript processed")

	if *dbPath != "" {
		if err := persistRun(ctx, *dbPath, result); err != nil {
			logger.Error().Err(err).Msg("persist run")
		} else {
			logger.Info().Str("db", *dbPath).Msg("run persisted")
		}
	}

	if *printNote {
		fmt.Println(soap.FormatText(result.SOAPNote))
	}
}

func newLogger(jsonLogs, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if jsonLogs {
		return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(level).With().Timestamp().Logger()
}

// buildProviders wires the inference backends. A remote inference
// service is used when SCRIBE_INFERENCE_URL is set; entity extraction
// otherwise falls back to the built-in rule lexicon, and the remaining
// phases run degraded.
func buildProviders(comp *config.Components, logger zerolog.Logger) provider.Registry {
	baseURL := os.Getenv("SCRIBE_INFERENCE_URL")
	if baseURL != "" {
		client := &remote.Client{
			BaseURL: baseURL,
			APIKey:  os.Getenv("SCRIBE_INFERENCE_API_KEY"),
		}
		logger.Debug().Str("base_url", baseURL).Msg("using remote inference providers")
		return remote.NewRegistry(client)
	}

	logger.Debug().Msg("no inference service configured, using rule-based entity extraction only")
	return provider.Registry{
		NER: rulener.New(comp.Lexicon),
	}
}

func persistRun(ctx context.Context, dbPath string, result *scribe.Result) error {
	st, err := sqlite.Open(ctx, dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := result.Marshal()
	if err != nil {
		return err
	}

	createdAt, err := time.Parse(time.RFC3339, result.Metadata.ProcessedAt)
	if err != nil {
		createdAt = time.Now().UTC()
	}

	return st.SaveRun(ctx, store.Run{
		ID:             result.Metadata.RunID,
		CreatedAt:      createdAt,
		DialogueCount:  result.Metadata.TotalDialogues,
		DegradedPhases: result.Metadata.DegradedPhases,
		ResultJSON:     string(data),
	})
}
