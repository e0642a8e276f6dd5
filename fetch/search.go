package fetch

import (
	"context"

	"ewintr.nl/ytcollect/model"
	"golang.org/x/exp/slog"
)

const (
	DefaultMaxResults = 500
	MaxPageSize       = 50
)

type SearchPage struct {
	Items         []model.Candidate
	NextPageToken string
}

// Searcher lists videos matching a query, most viewed first.
type Searcher interface {
	Search(ctx context.Context, query string, pageSize int, pageToken string) (SearchPage, error)
}

// SearchCursor is the pagination state threaded through the search loop.
type SearchCursor struct {
	Accumulated []model.Candidate
	PageToken   string
	Remaining   int
	Done        bool

	seen map[model.YoutubeVideoID]struct{}
}

func NewSearchCursor(target int) *SearchCursor {
	return &SearchCursor{
		Accumulated: make([]model.Candidate, 0, target),
		Remaining:   target,
		Done:        target <= 0,
		seen:        make(map[model.YoutubeVideoID]struct{}, target),
	}
}

// PageSize is the number of items to ask for in the next request.
func (c *SearchCursor) PageSize() int {
	return min(MaxPageSize, c.Remaining)
}

// Advance takes in a page. Ids already seen are dropped and the page is cut
// off at the remaining count. The cursor is done when the target is reached,
// the server sends no next page token, or the page added nothing.
func (c *SearchCursor) Advance(page SearchPage) int {
	added := 0
	for _, item := range page.Items {
		if c.Remaining == 0 {
			break
		}
		if _, ok := c.seen[item.YoutubeID]; ok {
			continue
		}
		c.seen[item.YoutubeID] = struct{}{}
		c.Accumulated = append(c.Accumulated, item)
		c.Remaining--
		added++
	}
	c.PageToken = page.NextPageToken

	if c.Remaining == 0 || c.PageToken == "" || added == 0 {
		c.Done = true
	}

	return added
}

// Search walks the result pages for query until target candidates are
// collected or the results run out.
func (f *Fetcher) Search(ctx context.Context, query string, target int) ([]model.Candidate, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if target <= 0 {
		return nil, ErrInvalidCount
	}

	cursor := NewSearchCursor(target)
	for !cursor.Done {
		f.logger.Debug("fetching search page", slog.String("query", query), slog.String("pagetoken", cursor.PageToken), slog.Int("size", cursor.PageSize()))
		page, err := f.searcher.Search(ctx, query, cursor.PageSize(), cursor.PageToken)
		if err != nil {
			return cursor.Accumulated, &FetchError{
				Stage:   StageSearch,
				Err:     err,
				Partial: cursor.Accumulated,
			}
		}
		added := cursor.Advance(page)
		searchPages.Inc()
		candidatesFound.Add(float64(added))
		f.logger.Debug("fetched search page", slog.String("query", query), slog.Int("count", added), slog.Int("total", len(cursor.Accumulated)))
	}

	return cursor.Accumulated, nil
}
