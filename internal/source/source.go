// Package source classifies input modules by the toolchain pipeline
// they require.
package source

import "path/filepath"

// Kind represents the source kind as a string.
type Kind string

const (
	// KindRust indicates a Rust module built with cargo and wasm-bindgen.
	KindRust Kind = "rust"
	// KindCFamily indicates a C or C++ module built with emcc.
	KindCFamily Kind = "cfamily"
	// KindUnsupported indicates a module no pipeline accepts.
	KindUnsupported Kind = "unsupported"
)

var kindByExt = map[string]Kind{
	".rs":  KindRust,
	".c":   KindCFamily,
	".cpp": KindCFamily,
}

// KindOf reports the kind of the named source file based on its extension.
// Unrecognized extensions, including the empty one, map to KindUnsupported.
func KindOf(name string) Kind {
	if kind, ok := kindByExt[filepath.Ext(name)]; ok {
		return kind
	}
	return KindUnsupported
}

// KindFromString converts a string to a Kind and checks if it is a known kind.
// It returns the Kind and a boolean indicating whether the kind is known.
func KindFromString(s string) (kind Kind, known bool) {
	switch Kind(s) {
	case KindRust, KindCFamily, KindUnsupported:
		return Kind(s), true
	}
	return Kind(s), false
}
