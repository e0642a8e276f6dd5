package main

import (
	"context"
	"errors"
	"time"

	"ewintr.nl/ytcollect/fetch"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/exp/slog"
)

// stageRunner retries a failing search or details stage from scratch, up
// to retries times with exponential backoff. Only fetch failures are
// retried.
func stageRunner(retries int, initialInterval time.Duration, logger *slog.Logger) fetch.StageRunner {
	if retries <= 0 {
		return fetch.RunOnce
	}

	return func(ctx context.Context, stage fetch.Stage, run func() error) error {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = initialInterval
		policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(retries)), ctx)

		operation := func() error {
			err := run()
			var fe *fetch.FetchError
			if err != nil && !errors.As(err, &fe) {
				return backoff.Permanent(err)
			}
			return err
		}
		notify := func(err error, wait time.Duration) {
			logger.Warn("stage failed, retrying", slog.String("stage", string(stage)), slog.Duration("wait", wait), slog.String("error", err.Error()))
		}

		return backoff.RetryNotify(operation, policy, notify)
	}
}
