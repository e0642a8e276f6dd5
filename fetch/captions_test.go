package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ewintr.nl/ytcollect/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

var timedTexts = map[string]string{
	"en": `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="2.1">we&amp;#39;re no strangers</text>
<text start="2.6" dur="1.9">to love</text>
</transcript>`,
	"de": `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0" dur="1">hallo</text>
<text start="1" dur="1"></text>
<text start="2" dur="1"/>
<text start="3" dur="1">&amp;lt;font color=&amp;quot;#FFFFFF&amp;quot;&amp;gt;welt&amp;lt;/font&amp;gt;</text>
</transcript>`,
}

func watchPage(playerJSON string) string {
	return `<html><script>var ytInitialPlayerResponse = ` + playerJSON + `;var meta = {"a": 1};</script></html>`
}

func newTestCaptions(t *testing.T, langs []string, pages map[string]string) *Captions {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			page, ok := pages[r.URL.Query().Get("v")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, strings.ReplaceAll(page, "{{base}}", srv.URL))
		case "/api/timedtext":
			body, ok := timedTexts[r.URL.Query().Get("lang")]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			fmt.Fprint(w, body)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	c := NewCaptions(srv.Client(), langs, rate.NewLimiter(rate.Inf, 1))
	c.baseURL = srv.URL

	return c
}

func TestCaptionsFetchTranscript(t *testing.T) {
	c := newTestCaptions(t, []string{"en"}, map[string]string{
		"ok": watchPage(`{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [
			{"baseUrl": "{{base}}/api/timedtext?lang=de", "languageCode": "de"},
			{"baseUrl": "{{base}}/api/timedtext?lang=en&kind=asr", "languageCode": "en", "kind": "asr"}
		]}}}`),
		"disabled": watchPage(`{"playabilityStatus": {"status": "OK"}}`),
		"private": watchPage(`{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "This video is private"}}`),
		"notracks": watchPage(`{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": []}}}`),
		"nomarker": `<html></html>`,
		"german":   watchPage(`{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [{"baseUrl": "{{base}}/api/timedtext?lang=de", "languageCode": "de"}]}}}`),
		"badtrack": watchPage(`{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [{"baseUrl": "{{base}}/nope", "languageCode": "en"}]}}}`),
	})
	ctx := context.Background()

	t.Run("segments in order", func(t *testing.T) {
		segs, err := c.FetchTranscript(ctx, "ok")
		require.NoError(t, err)
		require.Len(t, segs, 2)
		assert.Equal(t, CaptionSegment{Text: "we're no strangers", Start: 0.5, Duration: 2.1}, segs[0])
		assert.Equal(t, "to love", segs[1].Text)
	})

	for _, id := range []string{"disabled", "private", "notracks", "nomarker", "german"} {
		t.Run(id, func(t *testing.T) {
			_, err := c.FetchTranscript(ctx, modelID(id))
			assert.ErrorIs(t, err, ErrTranscriptMissing)
		})
	}

	t.Run("transport errors", func(t *testing.T) {
		_, err := c.FetchTranscript(ctx, "unknown")
		assert.Error(t, err)
		_, err = c.FetchTranscript(ctx, "badtrack")
		assert.Error(t, err)
	})
}

func TestPickTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "de", LanguageCode: "de"},
		{BaseURL: "en-asr", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "nl", LanguageCode: "nl"},
	}

	act, ok := pickTrack(tracks, []string{"nl", "en"})
	assert.True(t, ok)
	assert.Equal(t, "nl", act.BaseURL)

	act, _ = pickTrack(tracks, []string{"en"})
	assert.Equal(t, "en-asr", act.BaseURL)

	_, ok = pickTrack(tracks, []string{"fr"})
	assert.False(t, ok)

	_, ok = pickTrack(nil, []string{"en"})
	assert.False(t, ok)
}

func TestCaptionsSkipEmptyLines(t *testing.T) {
	c := newTestCaptions(t, []string{"de"}, map[string]string{
		"de": watchPage(`{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [{"baseUrl": "{{base}}/api/timedtext?lang=de", "languageCode": "de"}]}}}`),
	})

	segs, err := c.FetchTranscript(context.Background(), "de")
	require.NoError(t, err)
	assert.Equal(t, []CaptionSegment{
		{Text: "hallo", Start: 0, Duration: 1},
		{Text: "welt", Start: 3, Duration: 1},
	}, segs)

	act := NewFetcher(nil, nil, c, Config{}, testLogger()).ResolveTranscript(context.Background(), "de")
	assert.True(t, act.Available)
	require.NotNil(t, act.Text)
	assert.Equal(t, "hallo welt", *act.Text)
}

func TestCaptionsOtherLanguageOnly(t *testing.T) {
	c := newTestCaptions(t, []string{"en"}, map[string]string{
		"de": watchPage(`{"captions": {"playerCaptionsTracklistRenderer": {"captionTracks": [{"baseUrl": "{{base}}/api/timedtext?lang=de", "languageCode": "de"}]}}}`),
	})

	act := NewFetcher(nil, nil, c, Config{}, testLogger()).ResolveTranscript(context.Background(), "de")
	assert.Equal(t, model.Transcript{YoutubeID: "de"}, act)
}
