package fetch

import (
	"context"
	"strings"

	"ewintr.nl/ytcollect/model"
	"golang.org/x/exp/slog"
)

const (
	MaxBatchSize = 50
	listSep      = ", "
)

// VideoDetails is the unflattened extended metadata of one video, as far as
// the API returned it.
type VideoDetails struct {
	YoutubeID           model.YoutubeVideoID
	Tags                []string
	CategoryID          *string
	Duration            *string
	ViewCount           *uint64
	CommentCount        *uint64
	LocationDescription *string
	TopicCategories     []string
}

// DetailFetcher looks up at most MaxBatchSize videos in one call. Videos it
// cannot resolve are left out of the result.
type DetailFetcher interface {
	FetchDetails(ctx context.Context, ids []model.YoutubeVideoID) ([]VideoDetails, error)
}

// Batches cuts ids into consecutive slices of at most size elements.
func Batches(ids []model.YoutubeVideoID, size int) [][]model.YoutubeVideoID {
	if size <= 0 {
		size = MaxBatchSize
	}
	batches := make([][]model.YoutubeVideoID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batches = append(batches, ids[start:end])
	}
	return batches
}

func Flatten(vd VideoDetails) model.Detail {
	d := model.Detail{
		YoutubeID:         vd.YoutubeID,
		Tags:              strings.Join(vd.Tags, listSep),
		CategoryID:        vd.CategoryID,
		Duration:          vd.Duration,
		FormattedDuration: zeroDuration,
		ViewCount:         vd.ViewCount,
		CommentCount:      vd.CommentCount,
		Location:          vd.LocationDescription,
		Topics:            strings.Join(vd.TopicCategories, listSep),
	}
	if vd.Duration != nil {
		d.FormattedDuration = FormatDuration(*vd.Duration)
	}

	return d
}

// FetchDetails requests the details for ids batch by batch, in order. A
// failing batch fails the stage, unless the fetcher is configured to skip
// it, in which case the ids of that batch get no details.
func (f *Fetcher) FetchDetails(ctx context.Context, ids []model.YoutubeVideoID) ([]model.Detail, error) {
	details := make([]model.Detail, 0, len(ids))
	for i, batch := range Batches(ids, MaxBatchSize) {
		f.logger.Debug("fetching details", slog.Int("batch", i), slog.Int("count", len(batch)))
		vds, err := f.details.FetchDetails(ctx, batch)
		if err != nil {
			if f.skipFailedBatches {
				detailBatches.WithLabelValues("skipped").Inc()
				f.logger.Warn("skipping failed details batch", slog.Int("batch", i), slog.Int("count", len(batch)), slog.String("error", err.Error()))
				continue
			}
			detailBatches.WithLabelValues("failed").Inc()
			return details, &FetchError{
				Stage: StageDetails,
				Err:   err,
			}
		}
		detailBatches.WithLabelValues("ok").Inc()
		for _, vd := range vds {
			details = append(details, Flatten(vd))
		}
		f.logger.Debug("fetched details", slog.Int("batch", i), slog.Int("count", len(vds)))
	}

	return details, nil
}
