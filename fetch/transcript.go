package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ewintr.nl/ytcollect/model"
	"golang.org/x/exp/slog"
)

type CaptionSegment struct {
	Text     string
	Start    float64
	Duration float64
}

// TranscriptFetcher returns the caption segments of a video in
// chronological order.
type TranscriptFetcher interface {
	FetchTranscript(ctx context.Context, id model.YoutubeVideoID) ([]CaptionSegment, error)
}

// ResolveTranscript never fails: whatever goes wrong, the video is reported
// as having no captions.
func (f *Fetcher) ResolveTranscript(ctx context.Context, id model.YoutubeVideoID) (tr model.Transcript) {
	tr = model.Transcript{YoutubeID: id}
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("transcript fetch panicked", slog.String("video", string(id)), slog.String("panic", fmt.Sprint(r)))
			tr = model.Transcript{YoutubeID: id}
		}
		if tr.Available {
			transcriptLookups.WithLabelValues("available").Inc()
		} else {
			transcriptLookups.WithLabelValues("unavailable").Inc()
		}
	}()

	segments, err := f.transcripts.FetchTranscript(ctx, id)
	if err != nil {
		f.logger.Debug("no transcript", slog.String("video", string(id)), slog.String("error", err.Error()))
		return tr
	}

	texts := make([]string, len(segments))
	for i, seg := range segments {
		texts[i] = seg.Text
	}
	text := strings.Join(texts, " ")
	tr.Available = true
	tr.Text = &text

	return tr
}

// ResolveTranscripts resolves the transcript of every candidate. With more
// than one worker the calls run concurrently; the result is always in
// candidate order.
func (f *Fetcher) ResolveTranscripts(ctx context.Context, candidates []model.Candidate) []model.Transcript {
	out := make([]model.Transcript, len(candidates))
	workers := min(f.transcriptWorkers, len(candidates))
	if workers <= 1 {
		for i, c := range candidates {
			out[i] = f.ResolveTranscript(ctx, c.YoutubeID)
		}
		return out
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i] = f.ResolveTranscript(ctx, candidates[i].YoutubeID)
			}
		}()
	}
	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return out
}
