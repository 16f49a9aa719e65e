package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/build"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/queue"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/toolchain"
)

var (
	sourceFile = flag.String("i", "", "source file (.rs, .c or .cpp)")
	outputName = flag.String("o", "", "logical module name for the published artifacts")
	toQueue    = flag.Bool("queue", false, "publish a build request to AMQP instead of building locally")
)

func main() {
	run := func() int {
		_ = godotenv.Load()
		flag.Parse()

		const flagSourceFile = "-i"
		if *sourceFile == "" {
			_, _ = fmt.Fprintf(os.Stderr, "error: missing %s flag\n", flagSourceFile)
			return 2
		}

		const flagOutputName = "-o"
		if *outputName == "" {
			_, _ = fmt.Fprintf(os.Stderr, "error: missing %s flag\n", flagOutputName)
			return 2
		}

		cfg, err := parseConfig(os.Environ())
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		ctx := context.Background()

		if *toQueue {
			client := queue.NewClient(cfg.amqp())
			err = client.PublishBuildRequest(ctx, &queue.BuildRequest{
				SourcePath: *sourceFile,
				OutputName: *outputName,
			})
			if err != nil {
				_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
			fmt.Printf("requested build of %s as %s\n", *sourceFile, *outputName)
			return 0
		}

		store, err := artifact.NewStore(&cfg.Store)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		dispatcher := &build.Dispatcher{
			Store:      store,
			Toolchain:  &cfg.Toolchain,
			ScratchDir: cfg.scratchDir(),
		}
		result, err := dispatcher.Build(ctx, &build.BuildParams{
			SourcePath: *sourceFile,
			OutputName: *outputName,
		})
		if err != nil {
			if exitErr := (*toolchain.ExitError)(nil); errors.As(err, &exitErr) {
				_, _ = fmt.Fprint(os.Stderr, exitErr.Stderr)
			}
			_, _ = fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}

		for _, a := range result.Artifacts {
			fmt.Printf("published %s.%s (%d bytes)\n", a.Name, a.Ext, len(a.Data))
		}
		return 0
	}
	os.Exit(run())
}
