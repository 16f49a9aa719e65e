package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/record"
)

// setup prepares the backing services the worker and server depend on:
// it applies the build record migrations to Postgres and creates the
// artifact bucket in S3. Each step runs only when its connection string
// is configured, so a directory-store deployment can skip both.
func main() {
	run := func() int {
		ctx := context.Background()

		_ = godotenv.Load()

		cfg, err := parseConfig(os.Environ())
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		if cfg.Postgres != "" {
			if err = record.Setup(cfg.Postgres); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
		}

		if cfg.Store.S3 != "" {
			client := artifact.NewS3Client(cfg.Store.S3)
			if err = artifact.SetupBucket(ctx, client, cfg.Store.Bucket()); err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
		}

		return 0
	}
	os.Exit(run())
}
