package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// rustFlags is the fixed optimization and feature profile for the Rust
// pipeline: maximize size/speed, strip debug info, and enable the WASM
// features wasm-bindgen's output relies on.
const rustFlags = "-C opt-level=3 -C strip=debuginfo" +
	" -C target-feature=+bulk-memory,+mutable-globals,+reference-types,+simd128"

const rustTarget = "wasm32-unknown-unknown"

const cargoManifestFormat = `[package]
name = "%s"
version = "0.0.0"
edition = "2021"

[lib]
crate-type = ["cdylib"]
path = "src/lib.rs"

[dependencies]
wasm-bindgen = "0.2"
`

type RustParams struct {
	Config     *Config
	SourceFile string
	OutputName string
	WorkDir    string // an existing directory owned by the caller
}

// BuildRust compiles a Rust source file to the artifact triplet. It
// materializes a throwaway cdylib crate around the source, compiles it with
// cargo for wasm32-unknown-unknown, and runs wasm-bindgen targeting the Deno
// host profile over the produced binary. The crate scaffold is removed on
// all exit paths.
func BuildRust(ctx context.Context, params *RustParams) (*Result, error) {
	crateDir := filepath.Join(params.WorkDir, "crate")
	defer func() {
		_ = os.RemoveAll(crateDir)
	}()

	crate := crateName(params.OutputName)
	if err := scaffoldCrate(crateDir, crate, params.SourceFile); err != nil {
		return nil, fmt.Errorf("toolchain.BuildRust: %w", err)
	}

	targetDir := filepath.Join(crateDir, "target")
	err := runTool(ctx, crateDir,
		[]string{"RUSTFLAGS=" + rustFlags},
		params.Config.cargo(),
		"build", "--release",
		"--target", rustTarget,
		"--target-dir", targetDir,
	)
	if err != nil {
		return nil, fmt.Errorf("toolchain.BuildRust: %w", err)
	}

	binaryFile := filepath.Join(targetDir, rustTarget, "release", crate+".wasm")
	bindgenDir := filepath.Join(params.WorkDir, "bindgen")
	err = runTool(ctx, crateDir, nil,
		params.Config.wasmBindgen(),
		"--target", "deno",
		"--out-dir", bindgenDir,
		"--out-name", params.OutputName,
		binaryFile,
	)
	if err != nil {
		return nil, fmt.Errorf("toolchain.BuildRust: %w", err)
	}

	result := Result{}
	result.Binary, err = os.ReadFile(filepath.Join(bindgenDir, params.OutputName+"_bg.wasm"))
	if err != nil {
		return nil, fmt.Errorf("toolchain.BuildRust: %w", err)
	}
	loader, err := os.ReadFile(filepath.Join(bindgenDir, params.OutputName+".js"))
	if err != nil {
		return nil, fmt.Errorf("toolchain.BuildRust: %w", err)
	}
	result.Loader = rewriteBinaryRef(loader, params.OutputName)
	result.Wrapper, err = os.ReadFile(filepath.Join(bindgenDir, params.OutputName+".d.ts"))
	if err != nil {
		return nil, fmt.Errorf("toolchain.BuildRust: %w", err)
	}

	return &result, nil
}

func scaffoldCrate(crateDir, crate, sourceFile string) error {
	if err := os.MkdirAll(filepath.Join(crateDir, "src"), 0o777); err != nil {
		return err
	}

	manifest := fmt.Sprintf(cargoManifestFormat, crate)
	if err := os.WriteFile(filepath.Join(crateDir, "Cargo.toml"), []byte(manifest), 0o666); err != nil {
		return err
	}

	source, err := os.ReadFile(sourceFile)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(crateDir, "src", "lib.rs"), source, 0o666)
}

// rewriteBinaryRef normalizes the loader wasm-bindgen emits: its generated
// code reads <name>_bg.wasm while the store publishes the binary as
// <name>.wasm.
func rewriteBinaryRef(loader []byte, name string) []byte {
	return bytes.ReplaceAll(loader, []byte(name+"_bg.wasm"), []byte(name+".wasm"))
}

// crateName maps an output name to a valid cargo package name. Everything
// outside alphanumerics and underscores becomes an underscore; hyphens are
// included because cargo would rename the lib target's output file for
// them.
func crateName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		}
		return '_'
	}, name)
	if mapped == "" || mapped[0] >= '0' && mapped[0] <= '9' {
		mapped = "m" + mapped
	}
	return mapped
}
