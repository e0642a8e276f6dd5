package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ewintr.nl/ytcollect/fetch"
	"ewintr.nl/ytcollect/model"
	"ewintr.nl/ytcollect/storage"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"
)

const queryPrompt = "Enter a genre (e.g., Technology, Music, Education): "

func collectCommand(conf *Config, logger *slog.Logger) *cobra.Command {
	var (
		count       int
		keepPartial bool
		sinkNames   []string
	)
	cmd := &cobra.Command{
		Use:   "collect [query]",
		Short: "Collect the most viewed videos for a query and save them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count <= 0 {
				return fmt.Errorf("invalid count %d: %w", count, fetch.ErrInvalidCount)
			}
			ctx := cmd.Context()
			query := strings.Join(args, " ")
			if query == "" {
				var err error
				if query, err = promptQuery(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			sinks, err := newSinks(ctx, *conf, sinkNames)
			if err != nil {
				return err
			}
			fetcher, err := newFetcher(ctx, *conf, logger)
			if err != nil {
				return err
			}

			ds, runErr := fetcher.Run(ctx, query, count)
			if runErr != nil {
				var fe *fetch.FetchError
				if !keepPartial || !errors.As(runErr, &fe) || len(fe.Partial) == 0 {
					return runErr
				}
				logger.Warn("saving partial results", slog.Int("count", len(fe.Partial)), slog.String("stage", string(fe.Stage)))
				ds = partialDataset(query, fe.Partial)
			}

			if err := persist(ctx, sinks, ds, logger); err != nil {
				return err
			}

			return runErr
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", conf.MaxResults, "number of videos to collect")
	cmd.Flags().BoolVar(&keepPartial, "keep-partial", false, "save the videos found so far when the search or details stage fails")
	cmd.Flags().StringSliceVar(&sinkNames, "sinks", conf.Sinks, "where to save the dataset: csv, xlsx, postgres, weaviate")

	return cmd
}

func promptQuery(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, queryPrompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	query := strings.TrimSpace(line)
	if query == "" {
		return "", fetch.ErrEmptyQuery
	}

	return query, nil
}

// partialDataset turns the candidates of a failed run into rows without
// details or transcripts.
func partialDataset(query string, candidates []model.Candidate) model.Dataset {
	return model.Dataset{
		RunID: uuid.New(),
		Query: query,
		Rows:  fetch.Assemble(candidates, nil, nil),
	}
}

func newSinks(ctx context.Context, conf Config, names []string) ([]storage.Sink, error) {
	sinks := make([]storage.Sink, 0, len(names))
	for _, name := range names {
		switch name {
		case "csv":
			sinks = append(sinks, storage.NewCSV(conf.OutputDir, conf.FormattedDuration))
		case "xlsx":
			sinks = append(sinks, storage.NewXLSX(conf.OutputDir, conf.FormattedDuration))
		case "postgres":
			db, err := storage.ConnectPostgres(conf.Postgres)
			if err != nil {
				return nil, fmt.Errorf("unable to connect to postgres: %w", err)
			}
			pg, err := storage.NewPostgres(db)
			if err != nil {
				return nil, fmt.Errorf("unable to migrate postgres: %w", err)
			}
			sinks = append(sinks, pg)
		case "weaviate":
			w, err := storage.NewWeaviate(conf.Weaviate)
			if err != nil {
				return nil, fmt.Errorf("unable to create weaviate client: %w", err)
			}
			if conf.WeaviateResetSchema {
				if err := w.ResetSchema(ctx); err != nil {
					return nil, fmt.Errorf("unable to reset weaviate schema: %w", err)
				}
			}
			sinks = append(sinks, w)
		default:
			return nil, fmt.Errorf("unknown sink %q", name)
		}
	}

	return sinks, nil
}

func persist(ctx context.Context, sinks []storage.Sink, ds model.Dataset, logger *slog.Logger) error {
	for _, sink := range sinks {
		if err := sink.Save(ctx, ds); err != nil {
			return fmt.Errorf("could not save dataset to %s: %w", sink.Name(), err)
		}
		logger.Info("data saved", slog.String("sink", sink.Name()), slog.String("query", ds.Query), slog.Int("count", len(ds.Rows)))
	}

	return nil
}
