package storage

import (
	"context"
	"net/http"

	"ewintr.nl/ytcollect/model"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/fault"
	"github.com/weaviate/weaviate/entities/models"
)

const (
	className = "YoutubeVideo"
)

type WeaviateInfo struct {
	Scheme       string
	Host         string
	ApiKey       string
	OpenAIApiKey string
}

// Weaviate keeps one object per video, so that search results and
// transcripts can be queried semantically. Objects are keyed on the video
// id; a later run for the same video overwrites the earlier one.
type Weaviate struct {
	client *weaviate.Client
}

func NewWeaviate(info WeaviateInfo) (*Weaviate, error) {
	if info.Scheme == "" {
		info.Scheme = "https"
	}
	config := weaviate.Config{
		Scheme:     info.Scheme,
		Host:       info.Host,
		AuthConfig: auth.ApiKey{Value: info.ApiKey},
		Headers: map[string]string{
			"X-OpenAI-Api-Key": info.OpenAIApiKey,
		},
	}

	c, err := weaviate.NewClient(config)
	if err != nil {
		return nil, err
	}

	return &Weaviate{client: c}, nil
}

func (w *Weaviate) Name() string {
	return "weaviate"
}

func (w *Weaviate) ResetSchema(ctx context.Context) error {

	// delete old
	if err := w.client.Schema().ClassDeleter().WithClassName(className).Do(ctx); err != nil {
		// a missing class gives a 400, that is fine
		if status, ok := err.(*fault.WeaviateClientError); ok && status.StatusCode != http.StatusBadRequest {
			return err
		}
	}

	// create new
	classObj := &models.Class{
		Class:      className,
		Vectorizer: "text2vec-openai",
		ModuleConfig: map[string]any{
			"text2vec-openai": map[string]any{
				"model":        "ada",
				"modelVersion": "002",
				"type":         "text",
			},
		},
	}

	return w.client.Schema().ClassCreator().WithClass(classObj).Do(ctx)
}

func (w *Weaviate) Save(ctx context.Context, ds model.Dataset) error {
	for _, row := range ds.Rows {
		if err := w.saveRow(ctx, ds, row); err != nil {
			return err
		}
	}

	return nil
}

func (w *Weaviate) saveRow(ctx context.Context, ds model.Dataset, row model.Row) error {
	vID := objectID(row.YoutubeID).String()
	props := videoProperties(ds, row)

	// check it already exists
	exists, err := w.client.Data().
		Checker().
		WithID(vID).
		WithClassName(className).
		Do(ctx)
	if err != nil {
		return err
	}

	if exists {
		return w.client.Data().
			Updater().
			WithID(vID).
			WithClassName(className).
			WithProperties(props).
			Do(ctx)
	}

	_, err = w.client.Data().
		Creator().
		WithClassName(className).
		WithID(vID).
		WithProperties(props).
		Do(ctx)

	return err
}

func objectID(id model.YoutubeVideoID) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(id.URL()))
}

func videoProperties(ds model.Dataset, row model.Row) map[string]any {
	props := map[string]any{
		"youtubeId":    string(row.YoutubeID),
		"title":        row.Title,
		"description":  row.Description,
		"channelTitle": row.ChannelTitle,
		"publishedAt":  row.PublishedAt,
		"url":          row.URL,
		"query":        ds.Query,
		"runId":        ds.RunID.String(),
	}
	if d := row.Detail; d != nil {
		props["keywordTags"] = d.Tags
		props["topics"] = d.Topics
		props["durationFormatted"] = d.FormattedDuration
		if d.CategoryID != nil {
			props["categoryId"] = *d.CategoryID
		}
		if d.Duration != nil {
			props["duration"] = *d.Duration
		}
		if d.ViewCount != nil {
			props["viewCount"] = *d.ViewCount
		}
		if d.CommentCount != nil {
			props["commentCount"] = *d.CommentCount
		}
		if d.Location != nil {
			props["recordingLocation"] = *d.Location
		}
	}
	if tr := row.Transcript; tr != nil {
		props["captionsAvailable"] = tr.Available
		if tr.Text != nil {
			props["captionText"] = *tr.Text
		}
	}

	return props
}
