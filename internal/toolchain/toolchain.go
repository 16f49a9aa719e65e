// Package toolchain wraps the external compiler toolchains behind a uniform
// build contract. Every adapter produces the same artifact triplet: a WASM
// binary, a JS loader that instantiates it, and a typed TS wrapper.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
)

// Config points the adapters at their external tools. The zero value uses
// the tool names as found on PATH. Tool locations are explicit configuration
// rather than ambient process state so builds stay reproducible.
type Config struct {
	Cargo       string `env:"CARGO"`        // default: "cargo"
	WasmBindgen string `env:"WASM_BINDGEN"` // default: "wasm-bindgen"
	Emcc        string `env:"EMCC"`         // default: "emcc"
}

func (cfg *Config) cargo() string {
	c := cfg.Cargo
	if c == "" {
		c = "cargo"
	}
	return c
}

func (cfg *Config) wasmBindgen() string {
	w := cfg.WasmBindgen
	if w == "" {
		w = "wasm-bindgen"
	}
	return w
}

func (cfg *Config) emcc() string {
	e := cfg.Emcc
	if e == "" {
		e = "emcc"
	}
	return e
}

// Result is the normalized output of any adapter, always exactly three
// artifacts sharing one output name.
type Result struct {
	Binary  []byte // the compiled module body, .wasm
	Loader  []byte // instantiates Binary in a host environment, .js
	Wrapper []byte // typed entry point re-exporting the loader, .ts
}

// ExitError reports an external tool that terminated abnormally. Stderr
// carries the tool's captured diagnostic output. ExitCode is -1 when the
// tool couldn't be started at all.
type ExitError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
}

// runTool runs one external tool in dir with extra environment variables
// appended to the current environment. Abnormal termination comes back as
// *ExitError; stdout is folded into the captured stderr stream since the
// toolchains write diagnostics to both.
func runTool(ctx context.Context, dir string, env []string, tool string, args ...string) error {
	var captured bytes.Buffer
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = dir
	cmd.Stdout = &captured
	cmd.Stderr = &captured
	if len(env) > 0 {
		cmd.Env = append(cmd.Environ(), env...)
	}

	err := cmd.Run()
	if exitErr := (*exec.ExitError)(nil); errors.As(err, &exitErr) {
		return &ExitError{
			Tool:     filepath.Base(tool),
			ExitCode: exitErr.ExitCode(),
			Stderr:   captured.String(),
		}
	} else if err != nil {
		return &ExitError{
			Tool:     filepath.Base(tool),
			ExitCode: -1,
			Stderr:   err.Error(),
		}
	}

	return nil
}
