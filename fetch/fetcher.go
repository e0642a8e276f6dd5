package fetch

import (
	"context"
	"errors"
	"time"

	"ewintr.nl/ytcollect/model"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// StageRunner runs one pipeline stage. It can be replaced to add a retry
// policy around the search and details stages.
type StageRunner func(ctx context.Context, stage Stage, run func() error) error

func RunOnce(_ context.Context, _ Stage, run func() error) error {
	return run()
}

type Config struct {
	TranscriptWorkers       int
	SkipFailedDetailBatches bool
	StageRunner             StageRunner
}

type Fetcher struct {
	searcher          Searcher
	details           DetailFetcher
	transcripts       TranscriptFetcher
	transcriptWorkers int
	skipFailedBatches bool
	runStage          StageRunner
	logger            *slog.Logger
}

func NewFetcher(searcher Searcher, details DetailFetcher, transcripts TranscriptFetcher, conf Config, logger *slog.Logger) *Fetcher {
	f := &Fetcher{
		searcher:          searcher,
		details:           details,
		transcripts:       transcripts,
		transcriptWorkers: conf.TranscriptWorkers,
		skipFailedBatches: conf.SkipFailedDetailBatches,
		runStage:          conf.StageRunner,
		logger:            logger,
	}
	if f.transcriptWorkers < 1 {
		f.transcriptWorkers = 1
	}
	if f.runStage == nil {
		f.runStage = RunOnce
	}

	return f
}

// Run collects up to target videos for query and returns them with their
// details and transcripts. A target of zero or less means DefaultMaxResults.
// On a search or details failure the returned error is a *FetchError and no
// dataset is produced.
func (f *Fetcher) Run(ctx context.Context, query string, target int) (model.Dataset, error) {
	if target <= 0 {
		target = DefaultMaxResults
	}
	runID := uuid.New()
	logger := f.logger.With(slog.String("run", runID.String()), slog.String("query", query))

	logger.Info("fetching videos", slog.Int("target", target))
	var candidates []model.Candidate
	if err := f.timed(ctx, StageSearch, func() error {
		var err error
		candidates, err = f.Search(ctx, query, target)
		return err
	}); err != nil {
		logger.Error("search failed", slog.String("error", err.Error()))
		return model.Dataset{}, err
	}
	logger.Info("fetched videos", slog.Int("count", len(candidates)))

	ids := make([]model.YoutubeVideoID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.YoutubeID
	}
	var details []model.Detail
	if err := f.timed(ctx, StageDetails, func() error {
		var err error
		details, err = f.FetchDetails(ctx, ids)
		return err
	}); err != nil {
		logger.Error("details failed", slog.String("error", err.Error()))
		var fe *FetchError
		if errors.As(err, &fe) {
			fe.Partial = candidates
		}
		return model.Dataset{}, err
	}
	logger.Info("fetched details", slog.Int("count", len(details)), slog.Int("missing", len(candidates)-len(details)))
	rows := MergeDetails(candidates, details)

	start := time.Now()
	trs := f.ResolveTranscripts(ctx, candidates)
	stageDuration.WithLabelValues(string(StageTranscripts)).Observe(time.Since(start).Seconds())
	available := 0
	for _, tr := range trs {
		if tr.Available {
			available++
		}
	}
	logger.Info("fetched transcripts", slog.Int("available", available), slog.Int("unavailable", len(trs)-available))
	rows = MergeTranscripts(rows, trs)

	return model.Dataset{
		RunID: runID,
		Query: query,
		Rows:  rows,
	}, nil
}

func (f *Fetcher) timed(ctx context.Context, stage Stage, run func() error) error {
	start := time.Now()
	defer func() {
		stageDuration.WithLabelValues(string(stage)).Observe(time.Since(start).Seconds())
	}()

	return f.runStage(ctx, stage, run)
}
