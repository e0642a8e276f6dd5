package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ewintr.nl/ytcollect/fetch"
	"ewintr.nl/ytcollect/storage"
	"golang.org/x/exp/slog"
)

type Config struct {
	YoutubeAPIKey           string
	YoutubeEndpoint         string
	MaxResults              int
	RequestTimeout          time.Duration
	TranscriptWorkers       int
	TranscriptRPS           float64
	TranscriptLangs         []string
	StageRetries            int
	SkipFailedDetailBatches bool
	OutputDir               string
	Sinks                   []string
	FormattedDuration       bool
	Postgres                storage.PostgresInfo
	Weaviate                storage.WeaviateInfo
	WeaviateResetSchema     bool
	APIPort                 int
	LogLevel                string
}

func LoadConfig() (Config, error) {
	conf := Config{
		YoutubeAPIKey:   getParam("YOUTUBE_API_KEY", ""),
		YoutubeEndpoint: getParam("YOUTUBE_ENDPOINT", ""),
		TranscriptLangs: splitList(getParam("TRANSCRIPT_LANGS", "en")),
		OutputDir:       getParam("OUTPUT_DIR", "."),
		Sinks:           splitList(getParam("SINKS", "csv")),
		Postgres: storage.PostgresInfo{
			Host:     getParam("POSTGRES_HOST", "localhost"),
			Port:     getParam("POSTGRES_PORT", "5432"),
			User:     getParam("POSTGRES_USER", "ytcollect"),
			Password: getParam("POSTGRES_PASSWORD", "ytcollect"),
			Database: getParam("POSTGRES_DB", "ytcollect"),
		},
		Weaviate: storage.WeaviateInfo{
			Scheme:       getParam("WEAVIATE_SCHEME", "https"),
			Host:         getParam("WEAVIATE_HOST", ""),
			ApiKey:       getParam("WEAVIATE_API_KEY", ""),
			OpenAIApiKey: getParam("OPENAI_API_KEY", ""),
		},
		LogLevel: getParam("LOG_LEVEL", "info"),
	}

	var err error
	if conf.MaxResults, err = strconv.Atoi(getParam("MAX_RESULTS", strconv.Itoa(fetch.DefaultMaxResults))); err != nil {
		return Config{}, fmt.Errorf("invalid MAX_RESULTS: %w", err)
	}
	if conf.MaxResults <= 0 {
		return Config{}, fmt.Errorf("invalid MAX_RESULTS: %w", fetch.ErrInvalidCount)
	}
	if conf.RequestTimeout, err = time.ParseDuration(getParam("REQUEST_TIMEOUT", "30s")); err != nil {
		return Config{}, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
	}
	if conf.TranscriptWorkers, err = strconv.Atoi(getParam("TRANSCRIPT_WORKERS", "1")); err != nil {
		return Config{}, fmt.Errorf("invalid TRANSCRIPT_WORKERS: %w", err)
	}
	if conf.TranscriptRPS, err = strconv.ParseFloat(getParam("TRANSCRIPT_RPS", "5"), 64); err != nil {
		return Config{}, fmt.Errorf("invalid TRANSCRIPT_RPS: %w", err)
	}
	if conf.StageRetries, err = strconv.Atoi(getParam("STAGE_RETRIES", "0")); err != nil {
		return Config{}, fmt.Errorf("invalid STAGE_RETRIES: %w", err)
	}
	if conf.SkipFailedDetailBatches, err = strconv.ParseBool(getParam("SKIP_FAILED_DETAIL_BATCHES", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid SKIP_FAILED_DETAIL_BATCHES: %w", err)
	}
	if conf.FormattedDuration, err = strconv.ParseBool(getParam("FORMATTED_DURATION", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid FORMATTED_DURATION: %w", err)
	}
	if conf.WeaviateResetSchema, err = strconv.ParseBool(getParam("WEAVIATE_RESET_SCHEMA", "false")); err != nil {
		return Config{}, fmt.Errorf("invalid WEAVIATE_RESET_SCHEMA: %w", err)
	}
	if conf.APIPort, err = strconv.Atoi(getParam("API_PORT", "8080")); err != nil {
		return Config{}, fmt.Errorf("invalid API_PORT: %w", err)
	}

	return conf, nil
}

func NewLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func getParam(param, def string) string {
	if val, ok := os.LookupEnv(param); ok {
		return val
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
