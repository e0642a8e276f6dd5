package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"ewintr.nl/ytcollect/model"
	"golang.org/x/exp/slog"
)

var errCaptionsDisabled = errors.New("captions disabled")

// fakeSource serves canned pages, details and captions and records the
// requests it receives.
type fakeSource struct {
	mu sync.Mutex

	pages      []SearchPage
	served     int
	searchErr  map[int]error
	pageSizes  []int
	pageTokens []string

	details    map[model.YoutubeVideoID]VideoDetails
	detailErr  map[int]error
	batches    [][]model.YoutubeVideoID
	captions   map[model.YoutubeVideoID][]CaptionSegment
	captionLog []model.YoutubeVideoID
}

func (fs *fakeSource) Search(_ context.Context, _ string, pageSize int, pageToken string) (SearchPage, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	call := len(fs.pageSizes)
	fs.pageSizes = append(fs.pageSizes, pageSize)
	fs.pageTokens = append(fs.pageTokens, pageToken)
	if err, ok := fs.searchErr[call]; ok {
		return SearchPage{}, err
	}
	if fs.served >= len(fs.pages) {
		return SearchPage{}, nil
	}
	fs.served++

	return fs.pages[fs.served-1], nil
}

func (fs *fakeSource) FetchDetails(_ context.Context, ids []model.YoutubeVideoID) ([]VideoDetails, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	call := len(fs.batches)
	fs.batches = append(fs.batches, ids)
	if err, ok := fs.detailErr[call]; ok {
		return nil, err
	}
	var vds []VideoDetails
	for _, id := range ids {
		if vd, ok := fs.details[id]; ok {
			vds = append(vds, vd)
		}
	}

	return vds, nil
}

func (fs *fakeSource) FetchTranscript(_ context.Context, id model.YoutubeVideoID) ([]CaptionSegment, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.captionLog = append(fs.captionLog, id)
	segs, ok := fs.captions[id]
	if !ok {
		return nil, errCaptionsDisabled
	}

	return segs, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestFetcher(fs *fakeSource, conf Config) *Fetcher {
	return NewFetcher(fs, fs, fs, conf, testLogger())
}

func candidates(prefix string, n int) []model.Candidate {
	cs := make([]model.Candidate, n)
	for i := range cs {
		id := model.YoutubeVideoID(fmt.Sprintf("%s%03d", prefix, i))
		cs[i] = model.Candidate{
			YoutubeID: id,
			Title:     "title " + string(id),
			URL:       id.URL(),
		}
	}
	return cs
}

func ids(cs []model.Candidate) []model.YoutubeVideoID {
	out := make([]model.YoutubeVideoID, len(cs))
	for i, c := range cs {
		out[i] = c.YoutubeID
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

func modelID(s string) model.YoutubeVideoID {
	return model.YoutubeVideoID(s)
}
