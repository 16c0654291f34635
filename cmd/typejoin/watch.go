package main

import (
	"context"
	"fmt"

	"github.com/vito/typejoin/pkg/ioctx"
	"github.com/vito/typejoin/pkg/universe"
)

func runWatch(ctx context.Context, cfg Config, path string) error {
	stderr := ioctx.StderrFromContext(ctx)
	logger := ioctx.LoggerFromContext(ctx)
	return universe.Watch(ctx, path, func(file *universe.File, err error) {
		if err != nil {
			fmt.Fprintln(stderr, err)
			return
		}
		failed, err := runBatch(ctx, cfg, file)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return
		}
		logger.Info("queries evaluated", "path", path, "total", len(file.Queries), "failed", failed)
	})
}
