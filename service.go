package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"ewintr.nl/ytcollect/fetch"
	"ewintr.nl/ytcollect/handler"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

func main() {
	_ = godotenv.Load()

	conf, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := NewLogger(conf.LogLevel)

	root := &cobra.Command{
		Use:           "ytcollect",
		Short:         "Collect metadata, statistics and transcripts of YouTube videos for a search term",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(collectCommand(&conf, logger), serveCommand(&conf, logger))

	if err := root.ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newFetcher(ctx context.Context, conf Config, logger *slog.Logger) (*fetch.Fetcher, error) {
	// option.WithAPIKey is ignored once a client is passed, so the key goes
	// on the transport
	opts := []option.ClientOption{option.WithHTTPClient(&http.Client{
		Transport: &fetch.BodyRecorder{Base: apiKeyTransport{key: conf.YoutubeAPIKey, base: http.DefaultTransport}},
	})}
	if conf.YoutubeEndpoint != "" {
		opts = append(opts, option.WithEndpoint(conf.YoutubeEndpoint))
	}
	ytClient, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create youtube service: %w", err)
	}
	yt := fetch.NewYoutube(ytClient, conf.RequestTimeout)

	limit := rate.Inf
	if conf.TranscriptRPS > 0 {
		limit = rate.Limit(conf.TranscriptRPS)
	}
	captions := fetch.NewCaptions(&http.Client{Timeout: conf.RequestTimeout}, conf.TranscriptLangs, rate.NewLimiter(limit, 1))

	return fetch.NewFetcher(yt, yt, captions, fetch.Config{
		TranscriptWorkers:       conf.TranscriptWorkers,
		SkipFailedDetailBatches: conf.SkipFailedDetailBatches,
		StageRunner:             stageRunner(conf.StageRetries, time.Second, logger),
	}, logger), nil
}

type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	q := r.URL.Query()
	q.Set("key", t.key)
	r.URL.RawQuery = q.Encode()

	return t.base.RoundTrip(r)
}

func serveCommand(conf *Config, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the collect api over http",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fetcher, err := newFetcher(cmd.Context(), *conf, logger)
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", conf.APIPort),
				Handler:           handler.NewServer(fetcher, conf.FormattedDuration, logger),
				ReadHeaderTimeout: 15 * time.Second,
			}
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("http server stopped", slog.String("error", err.Error()))
				}
			}()
			logger.Info("http server started", slog.Int("port", conf.APIPort))

			done := make(chan os.Signal, 1)
			signal.Notify(done, os.Interrupt)
			<-done

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			logger.Info("service stopped")

			return nil
		},
	}
	cmd.Flags().IntVar(&conf.APIPort, "port", conf.APIPort, "port to listen on")

	return cmd
}
