package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ewintr.nl/ytcollect/fetch"
	"ewintr.nl/ytcollect/model"
	"golang.org/x/exp/slog"
)

type Collector interface {
	Run(ctx context.Context, query string, target int) (model.Dataset, error)
}

type CollectAPI struct {
	collector     Collector
	withFormatted bool
	logger        *slog.Logger
}

func NewCollectAPI(collector Collector, withFormatted bool, logger *slog.Logger) *CollectAPI {
	return &CollectAPI{
		collector:     collector,
		withFormatted: withFormatted,
		logger:        logger,
	}
}

func (c *CollectAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sub, _ := ShiftPath(r.URL.Path)

	switch {
	case r.Method == http.MethodGet && sub == "":
		c.Collect(w, r)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the collect api", r.Method, sub))
	}
}

func (c *CollectAPI) Collect(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		c.returnErr(r.Context(), w, http.StatusBadRequest, "missing query", fetch.ErrEmptyQuery)
		return
	}
	target := fetch.DefaultMaxResults
	if countParam := r.URL.Query().Get("count"); countParam != "" {
		count, err := strconv.Atoi(countParam)
		if err != nil || count <= 0 {
			c.returnErr(r.Context(), w, http.StatusBadRequest, "invalid count", fetch.ErrInvalidCount, countParam)
			return
		}
		target = count
	}

	ds, err := c.collector.Run(r.Context(), query, target)
	if err != nil {
		status := http.StatusInternalServerError
		var fe *fetch.FetchError
		if errors.As(err, &fe) {
			status = http.StatusBadGateway
		}
		c.returnErr(r.Context(), w, status, "could not collect videos", err)
		return
	}

	type respDataset struct {
		RunID   string           `json:"run_id"`
		Query   string           `json:"query"`
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	resp := respDataset{
		RunID:   ds.RunID.String(),
		Query:   ds.Query,
		Columns: model.Header(c.withFormatted),
		Rows:    make([]map[string]any, 0, len(ds.Rows)),
	}
	for _, row := range ds.Rows {
		resp.Rows = append(resp.Rows, row.Record(c.withFormatted))
	}

	jsonBody, err := json.Marshal(resp)
	if err != nil {
		c.returnErr(r.Context(), w, http.StatusInternalServerError, "could not marshal response", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(jsonBody)
}

func (c *CollectAPI) returnErr(_ context.Context, w http.ResponseWriter, status int, message string, err error, details ...any) {
	c.logger.Error(message, slog.String("err", err.Error()), slog.String("details", fmt.Sprintf("%+v", details)))
	Error(w, status, message, err, details...)
}
