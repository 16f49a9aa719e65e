package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// emccFlags is the fixed flag set for the C-family pipeline: ES6 module
// export style, the Deno-capable host environment list, and unicode
// emission via TextDecoder.
var emccFlags = []string{
	"-O3",
	"-sWASM=1",
	"-sMODULARIZE=1",
	"-sEXPORT_ES6=1",
	"-sENVIRONMENT=web,worker,deno",
	"-sTEXTDECODER=2",
	"-sEXPORT_NAME=createModule",
}

type EmccParams struct {
	Config     *Config
	SourceFile string
	OutputName string
	WorkDir    string // an existing directory owned by the caller
}

// BuildEmcc compiles a C or C++ source file to the artifact triplet. emcc
// emits the binary and the loader; it has no wrapper of its own, so the
// adapter synthesizes one to keep the triplet contract uniform across
// pipelines.
func BuildEmcc(ctx context.Context, params *EmccParams) (*Result, error) {
	outDir := filepath.Join(params.WorkDir, "emcc")
	if err := os.MkdirAll(outDir, 0o777); err != nil {
		return nil, fmt.Errorf("toolchain.BuildEmcc: %w", err)
	}

	sourceFile, err := filepath.Abs(params.SourceFile)
	if err != nil {
		return nil, fmt.Errorf("toolchain.BuildEmcc: %w", err)
	}

	loaderFile := filepath.Join(outDir, params.OutputName+".js")
	args := append([]string{sourceFile}, emccFlags...)
	args = append(args, "-o", loaderFile)
	if err = runTool(ctx, outDir, nil, params.Config.emcc(), args...); err != nil {
		return nil, fmt.Errorf("toolchain.BuildEmcc: %w", err)
	}

	result := Result{
		Wrapper: synthesizeWrapper(params.OutputName),
	}
	result.Binary, err = os.ReadFile(filepath.Join(outDir, params.OutputName+".wasm"))
	if err != nil {
		return nil, fmt.Errorf("toolchain.BuildEmcc: %w", err)
	}
	result.Loader, err = os.ReadFile(loaderFile)
	if err != nil {
		return nil, fmt.Errorf("toolchain.BuildEmcc: %w", err)
	}

	return &result, nil
}

// synthesizeWrapper returns the typed entry point for an emcc loader: a
// fixed-shape stub importing the loader and exposing initialize() which
// resolves to the instantiated exports.
func synthesizeWrapper(name string) []byte {
	return []byte(fmt.Sprintf(`import createModule from "./%s.js";

let instance: unknown;

export async function initialize(): Promise<unknown> {
  if (instance === undefined) {
    instance = await createModule();
  }
  return instance;
}

export default initialize;
`, name))
}
