package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"ewintr.nl/ytcollect/model"
	"golang.org/x/time/rate"
)

const (
	youtubeBaseURL       = "https://www.youtube.com"
	playerResponseMarker = "ytInitialPlayerResponse = "
	maxWatchPageSize     = 6 * 1024 * 1024
	maxTimedTextSize     = 2 * 1024 * 1024
)

var formattingTagRE = regexp.MustCompile(`<[^>]+>`)

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type timedText struct {
	Lines []struct {
		Start    float64 `xml:"start,attr"`
		Duration float64 `xml:"dur,attr"`
		Text     string  `xml:",chardata"`
	} `xml:"text"`
}

// Captions reads the caption tracks that the watch page of a video
// advertises and downloads the best one in timedtext format.
type Captions struct {
	client  *http.Client
	baseURL string
	langs   []string
	limiter *rate.Limiter
}

func NewCaptions(client *http.Client, langs []string, limiter *rate.Limiter) *Captions {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &Captions{
		client:  client,
		baseURL: youtubeBaseURL,
		langs:   langs,
		limiter: limiter,
	}
}

func (c *Captions) FetchTranscript(ctx context.Context, id model.YoutubeVideoID) ([]CaptionSegment, error) {
	page, err := c.get(ctx, c.baseURL+"/watch?v="+string(id), maxWatchPageSize)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := bytes.Index(page, []byte(playerResponseMarker))
	if idx < 0 {
		return nil, fmt.Errorf("%w: no player response in watch page", ErrTranscriptMissing)
	}
	var player playerResponse
	if err := json.NewDecoder(bytes.NewReader(page[idx+len(playerResponseMarker):])).Decode(&player); err != nil {
		return nil, fmt.Errorf("decode player response: %w", err)
	}
	if player.Captions == nil {
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("%w: %s", ErrTranscriptMissing, player.PlayabilityStatus.Reason)
		}
		return nil, fmt.Errorf("%w: captions disabled", ErrTranscriptMissing)
	}
	track, ok := pickTrack(player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, c.langs)
	if !ok {
		return nil, fmt.Errorf("%w: no caption track in %s", ErrTranscriptMissing, strings.Join(c.langs, ", "))
	}

	body, err := c.get(ctx, track.BaseURL, maxTimedTextSize)
	if err != nil {
		return nil, fmt.Errorf("timedtext: %w", err)
	}

	return parseTimedText(body)
}

func (c *Captions) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// pickTrack prefers a manual track in one of langs over an auto-generated
// one. Tracks in other languages are never picked.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	if len(tracks) == 0 {
		return captionTrack{}, false
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}

	return captionTrack{}, false
}

func parseTimedText(body []byte) ([]CaptionSegment, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext: %w", err)
	}

	segments := make([]CaptionSegment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		// entities in caption text are escaped twice
		text := formattingTagRE.ReplaceAllString(html.UnescapeString(line.Text), "")
		if text == "" {
			continue
		}
		segments = append(segments, CaptionSegment{
			Text:     text,
			Start:    line.Start,
			Duration: line.Duration,
		})
	}

	return segments, nil
}
