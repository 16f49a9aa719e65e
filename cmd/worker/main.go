package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/build"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/pgutil"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/record"
)

func main() {
	run := func() int {
		ctx := context.Background()

		_ = godotenv.Load()

		log := slog.Default()

		cfg, err := parseConfig(os.Environ())
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		store, err := artifact.NewStore(&cfg.Store)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		var records *record.Database
		if cfg.Postgres != "" {
			pool, err := pgutil.NewPool(ctx, cfg.Postgres)
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
			defer pool.Close()
			records = record.NewDatabase(pool)
		}

		worker := &Worker{
			AMQP: cfg.amqp(),
			Handler: &Handler{
				Dispatcher: &build.Dispatcher{
					Store:      store,
					Toolchain:  &cfg.Toolchain,
					ScratchDir: cfg.scratchDir(),
					Log:        log,
				},
				Records: records,
				Log:     log,
			},
			Log: log,
		}

		log.Info("starting worker")
		if err = worker.Run(ctx); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		return 0
	}
	os.Exit(run())
}
