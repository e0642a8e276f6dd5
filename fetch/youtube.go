package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"ewintr.nl/ytcollect/model"
	"google.golang.org/api/youtube/v3"
)

var detailParts = []string{"snippet", "contentDetails", "statistics", "topicDetails", "recordingDetails"}

type Youtube struct {
	Client  *youtube.Service
	timeout time.Duration
}

func NewYoutube(client *youtube.Service, timeout time.Duration) *Youtube {
	return &Youtube{
		Client:  client,
		timeout: timeout,
	}
}

func (y *Youtube) Search(ctx context.Context, query string, pageSize int, pageToken string) (SearchPage, error) {
	ctx, cancel := y.withTimeout(ctx)
	defer cancel()

	call := y.Client.Search.
		List([]string{"id", "snippet"}).
		Q(query).
		Type("video").
		Order("viewCount").
		MaxResults(int64(pageSize))

	if pageToken != "" {
		call.PageToken(pageToken)
	}

	response, err := call.Context(ctx).Do()
	if err != nil {
		return SearchPage{}, err
	}

	page := SearchPage{
		Items:         make([]model.Candidate, 0, len(response.Items)),
		NextPageToken: response.NextPageToken,
	}
	for _, item := range response.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		id := model.YoutubeVideoID(item.Id.VideoId)
		c := model.Candidate{
			YoutubeID: id,
			URL:       id.URL(),
		}
		if item.Snippet != nil {
			c.Title = item.Snippet.Title
			c.Description = item.Snippet.Description
			c.ChannelTitle = item.Snippet.ChannelTitle
			c.PublishedAt = item.Snippet.PublishedAt
		}
		page.Items = append(page.Items, c)
	}

	return page, nil
}

func (y *Youtube) FetchDetails(ctx context.Context, ytIDs []model.YoutubeVideoID) ([]VideoDetails, error) {
	ctx, cancel := y.withTimeout(ctx)
	defer cancel()

	strIDs := make([]string, len(ytIDs))
	for i, id := range ytIDs {
		strIDs[i] = string(id)
	}
	call := y.Client.Videos.
		List(detailParts).
		Id(strings.Join(strIDs, ","))

	var raw bytes.Buffer
	response, err := call.Context(context.WithValue(ctx, rawBodyKey{}, &raw)).Do()
	if err != nil {
		return nil, err
	}
	sent := sentCounts(raw.Bytes())

	vds := make([]VideoDetails, 0, len(response.Items))
	for _, item := range response.Items {
		vd := VideoDetails{
			YoutubeID: model.YoutubeVideoID(item.Id),
		}
		if item.Snippet != nil {
			vd.Tags = item.Snippet.Tags
			vd.CategoryID = optional(item.Snippet.CategoryId)
		}
		if item.ContentDetails != nil {
			vd.Duration = optional(item.ContentDetails.Duration)
		}
		if item.Statistics != nil {
			views, comments := item.Statistics.ViewCount, item.Statistics.CommentCount
			counts, known := sent[item.Id]
			if !known || counts.views {
				vd.ViewCount = &views
			}
			if !known || counts.comments {
				vd.CommentCount = &comments
			}
		}
		if item.RecordingDetails != nil {
			vd.LocationDescription = optional(item.RecordingDetails.LocationDescription)
		}
		if item.TopicDetails != nil {
			vd.TopicCategories = item.TopicDetails.TopicCategories
		}
		vds = append(vds, vd)
	}

	return vds, nil
}

func (y *Youtube) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if y.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, y.timeout)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type rawBodyKey struct{}

// BodyRecorder copies response bodies into the buffer that FetchDetails puts
// on the request context. The generated client decodes a missing count as
// zero, so the raw body is the only place where hidden comment counts show.
type BodyRecorder struct {
	Base http.RoundTripper
}

func (br *BodyRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	base := br.Base
	if base == nil {
		base = http.DefaultTransport
	}
	resp, err := base.RoundTrip(req)
	buf, ok := req.Context().Value(rawBodyKey{}).(*bytes.Buffer)
	if err != nil || !ok || resp.Body == nil {
		return resp, err
	}
	resp.Body = recordedBody{Reader: io.TeeReader(resp.Body, buf), Closer: resp.Body}

	return resp, nil
}

type recordedBody struct {
	io.Reader
	io.Closer
}

type countsSent struct {
	views    bool
	comments bool
}

// sentCounts lists per video which statistics the server included. It
// returns nil when nothing was recorded.
func sentCounts(body []byte) map[string]countsSent {
	if len(body) == 0 {
		return nil
	}
	var resp struct {
		Items []struct {
			ID         string `json:"id"`
			Statistics *struct {
				ViewCount    *string `json:"viewCount"`
				CommentCount *string `json:"commentCount"`
			} `json:"statistics"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}

	sent := make(map[string]countsSent, len(resp.Items))
	for _, item := range resp.Items {
		if item.Statistics == nil {
			continue
		}
		sent[item.ID] = countsSent{
			views:    item.Statistics.ViewCount != nil,
			comments: item.Statistics.CommentCount != nil,
		}
	}

	return sent
}
