package fetch

import (
	"context"
	"errors"
	"testing"

	"ewintr.nl/ytcollect/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pages(cs []model.Candidate, size int, lastToken string) []SearchPage {
	var ps []SearchPage
	for start := 0; start < len(cs); start += size {
		end := min(start+size, len(cs))
		ps = append(ps, SearchPage{Items: cs[start:end], NextPageToken: "next"})
	}
	if len(ps) > 0 {
		ps[len(ps)-1].NextPageToken = lastToken
	}
	return ps
}

func TestSearchCursor(t *testing.T) {
	t.Run("page size never exceeds remaining", func(t *testing.T) {
		c := NewSearchCursor(120)
		assert.Equal(t, 50, c.PageSize())
		c.Advance(SearchPage{Items: candidates("a", 50), NextPageToken: "t1"})
		assert.Equal(t, 50, c.PageSize())
		c.Advance(SearchPage{Items: candidates("b", 50), NextPageToken: "t2"})
		assert.Equal(t, 20, c.PageSize())
		assert.Equal(t, "t2", c.PageToken)
		assert.False(t, c.Done)
	})

	t.Run("oversized page is cut off", func(t *testing.T) {
		c := NewSearchCursor(3)
		added := c.Advance(SearchPage{Items: candidates("a", 5), NextPageToken: "t"})
		assert.Equal(t, 3, added)
		assert.Len(t, c.Accumulated, 3)
		assert.True(t, c.Done)
	})

	t.Run("duplicates are dropped", func(t *testing.T) {
		c := NewSearchCursor(10)
		c.Advance(SearchPage{Items: candidates("a", 3), NextPageToken: "t"})
		added := c.Advance(SearchPage{Items: append(candidates("a", 2), candidates("b", 1)...), NextPageToken: "t"})
		assert.Equal(t, 1, added)
		assert.Len(t, c.Accumulated, 4)
		assert.Equal(t, 6, c.Remaining)
	})

	t.Run("empty page ends", func(t *testing.T) {
		c := NewSearchCursor(10)
		c.Advance(SearchPage{NextPageToken: "t"})
		assert.True(t, c.Done)
	})

	t.Run("missing token ends", func(t *testing.T) {
		c := NewSearchCursor(10)
		c.Advance(SearchPage{Items: candidates("a", 2)})
		assert.True(t, c.Done)
	})
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("stops at target with exact final page size", func(t *testing.T) {
		all := candidates("v", 200)
		fs := &fakeSource{pages: pages(all, 50, "more")}
		f := newTestFetcher(fs, Config{})

		act, err := f.Search(ctx, "test", 120)
		require.NoError(t, err)
		assert.Len(t, act, 120)
		assert.Equal(t, []int{50, 50, 20}, fs.pageSizes)
		assert.Equal(t, []string{"", "next", "next"}, fs.pageTokens)
		assert.Equal(t, ids(all[:120]), ids(act))
	})

	t.Run("exact multiple of page size", func(t *testing.T) {
		fs := &fakeSource{pages: pages(candidates("v", 150), 50, "more")}
		f := newTestFetcher(fs, Config{})

		act, err := f.Search(ctx, "test", 100)
		require.NoError(t, err)
		assert.Len(t, act, 100)
		assert.Equal(t, []int{50, 50}, fs.pageSizes)
	})

	t.Run("small target asks for small page", func(t *testing.T) {
		fs := &fakeSource{pages: pages(candidates("v", 50), 50, "more")}
		f := newTestFetcher(fs, Config{})

		act, err := f.Search(ctx, "test", 7)
		require.NoError(t, err)
		assert.Len(t, act, 7)
		assert.Equal(t, []int{7}, fs.pageSizes)
	})

	t.Run("stops without next page token", func(t *testing.T) {
		fs := &fakeSource{pages: pages(candidates("v", 60), 50, "")}
		f := newTestFetcher(fs, Config{})

		act, err := f.Search(ctx, "test", 500)
		require.NoError(t, err)
		assert.Len(t, act, 60)
		assert.Len(t, fs.pageSizes, 2)
	})

	t.Run("stops on empty page", func(t *testing.T) {
		fs := &fakeSource{pages: []SearchPage{
			{Items: candidates("v", 10), NextPageToken: "t1"},
			{NextPageToken: "t2"},
			{Items: candidates("w", 10), NextPageToken: "t3"},
		}}
		f := newTestFetcher(fs, Config{})

		act, err := f.Search(ctx, "test", 500)
		require.NoError(t, err)
		assert.Len(t, act, 10)
		assert.Len(t, fs.pageSizes, 2)
	})

	t.Run("error keeps earlier pages", func(t *testing.T) {
		apiErr := errors.New("quota exceeded")
		fs := &fakeSource{
			pages:     pages(candidates("v", 150), 50, "more"),
			searchErr: map[int]error{2: apiErr},
		}
		f := newTestFetcher(fs, Config{})

		act, err := f.Search(ctx, "test", 150)
		require.Error(t, err)
		assert.ErrorIs(t, err, apiErr)
		var fe *FetchError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, StageSearch, fe.Stage)
		assert.Len(t, fe.Partial, 100)
		assert.Len(t, act, 100)
	})

	t.Run("invalid input", func(t *testing.T) {
		f := newTestFetcher(&fakeSource{}, Config{})

		_, err := f.Search(ctx, "", 10)
		assert.ErrorIs(t, err, ErrEmptyQuery)
		_, err = f.Search(ctx, "test", 0)
		assert.ErrorIs(t, err, ErrInvalidCount)
	})
}
