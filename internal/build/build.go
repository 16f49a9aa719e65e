// Package build routes source modules to the toolchain pipeline their kind
// requires and publishes the resulting artifact triplet.
package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/source"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/toolchain"
)

var (
	ErrUnsupportedSource = errors.New("unsupported source kind")
	ErrInvalidOutputName = errors.New("invalid output name")
)

// Dispatcher selects a toolchain adapter per source kind, drives it in an
// isolated working area, and publishes the triplet into the store.
//
// Builds sharing an output name must be serialized by the caller; the
// dispatcher doesn't coordinate them. Builds of distinct output names may
// run concurrently because each gets its own working area and writes
// distinct store keys.
type Dispatcher struct {
	Store      artifact.Store    // required
	Toolchain  *toolchain.Config // required
	ScratchDir string            // required
	Log        *slog.Logger      // default: slog.Default()
}

type BuildParams struct {
	SourcePath string
	OutputName string
}

type BuildResult struct {
	OutputName string
	SourceKind source.Kind
	Artifacts  []artifact.Artifact
}

// adapterFunc is the uniform contract every toolchain adapter is wrapped
// into. Adding a source kind means adding a kind constant and an entry
// here.
type adapterFunc func(ctx context.Context, cfg *toolchain.Config, sourceFile, outputName, workDir string) (*toolchain.Result, error)

var adapters = map[source.Kind]adapterFunc{
	source.KindRust: func(ctx context.Context, cfg *toolchain.Config, sourceFile, outputName, workDir string) (*toolchain.Result, error) {
		return toolchain.BuildRust(ctx, &toolchain.RustParams{
			Config:     cfg,
			SourceFile: sourceFile,
			OutputName: outputName,
			WorkDir:    workDir,
		})
	},
	source.KindCFamily: func(ctx context.Context, cfg *toolchain.Config, sourceFile, outputName, workDir string) (*toolchain.Result, error) {
		return toolchain.BuildEmcc(ctx, &toolchain.EmccParams{
			Config:     cfg,
			SourceFile: sourceFile,
			OutputName: outputName,
			WorkDir:    workDir,
		})
	},
}

// Build runs one build to completion. No artifact becomes visible in the
// store unless all three were produced; the working area is torn down on
// every exit path.
func (d *Dispatcher) Build(ctx context.Context, params *BuildParams) (*BuildResult, error) {
	if err := CheckOutputName(params.OutputName); err != nil {
		return nil, fmt.Errorf("build.Dispatcher: %w", err)
	}

	kind := source.KindOf(params.SourcePath)
	adapter, ok := adapters[kind]
	if !ok {
		return nil, fmt.Errorf("build.Dispatcher: %w: %q", ErrUnsupportedSource, filepath.Ext(params.SourcePath))
	}

	// The working area is keyed by output name alone: distinct names never
	// interfere, same-named sequential builds reuse and then tear down the
	// same path (last writer wins).
	workDir := filepath.Join(d.ScratchDir, params.OutputName)
	if err := os.MkdirAll(workDir, 0o777); err != nil {
		return nil, fmt.Errorf("build.Dispatcher: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(workDir)
	}()

	result, err := adapter(ctx, d.Toolchain, params.SourcePath, params.OutputName, workDir)
	if err != nil {
		return nil, fmt.Errorf("build.Dispatcher: %w", err)
	}

	artifacts := []artifact.Artifact{
		{Name: params.OutputName, Ext: artifact.ExtBinary, Data: result.Binary},
		{Name: params.OutputName, Ext: artifact.ExtLoader, Data: result.Loader},
		{Name: params.OutputName, Ext: artifact.ExtWrapper, Data: result.Wrapper},
	}
	if err = d.Store.Publish(ctx, artifacts); err != nil {
		return nil, fmt.Errorf("build.Dispatcher: %w", err)
	}

	d.log().Info("published build",
		"name", params.OutputName,
		"kind", kind,
		"binary_size", len(result.Binary),
	)

	return &BuildResult{
		OutputName: params.OutputName,
		SourceKind: kind,
		Artifacts:  artifacts,
	}, nil
}

// CheckOutputName reports whether name can serve as the logical module
// name: non-empty, no path separators, and not a dot name, so artifacts
// can't land outside the store root.
func CheckOutputName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return ErrInvalidOutputName
	case strings.ContainsAny(name, `/\`):
		return ErrInvalidOutputName
	case strings.HasPrefix(name, "."):
		return ErrInvalidOutputName
	}
	return nil
}

func (d *Dispatcher) log() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}
