package main

import (
	"context"

	"charm.land/lipgloss/v2"
	"github.com/pkg/errors"
	"github.com/vito/typejoin/pkg/ioctx"
	"github.com/vito/typejoin/pkg/universe"
	"golang.org/x/sync/errgroup"
)

// runBatch evaluates every query of file concurrently and prints the
// outcomes in file order. It returns the number of failed queries.
func runBatch(ctx context.Context, cfg Config, file *universe.File) (int, error) {
	u, err := file.Universe()
	if err != nil {
		return 0, errors.Wrap(err, "building universe")
	}

	logger := ioctx.LoggerFromContext(ctx)
	c := computer(ctx)
	outcomes := make([]outcome, len(file.Queries))

	eg, gctx := errgroup.WithContext(ctx)
	if cfg.Jobs > 0 {
		eg.SetLimit(cfg.Jobs)
	}
	for i, q := range file.Queries {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = evaluate(c, u, q)
			logger.Debug("evaluated query", "query", q.Label(), "result", outcomes[i].Rendered)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}

	w := ioctx.StdoutFromContext(ctx)
	st := newStyles(cfg.Plain)
	failed := 0
	for _, o := range outcomes {
		if o.Failed() {
			failed++
		}
		if _, err := lipgloss.Fprintln(w, st.line(o)); err != nil {
			return failed, err
		}
		if cfg.Dump && o.Err == nil {
			if err := dump(w, o); err != nil {
				return failed, err
			}
		}
	}
	return failed, nil
}
