// Package artifact holds published build outputs, keyed by logical module
// name and extension. The dispatcher is its only writer, the server its only
// reader.
package artifact

import (
	"context"
	"errors"
)

// Extensions of the artifact triplet every successful build publishes.
const (
	ExtBinary  = "wasm"
	ExtLoader  = "js"
	ExtWrapper = "ts"
)

var ErrNotFound = errors.New("artifact not found")

// Artifact is one named, typed output file produced by a build.
type Artifact struct {
	Name string
	Ext  string
	Data []byte
}

// Store persists artifacts.
//
// Publish makes all given artifacts visible together: a concurrent Get
// observes either the complete prior version of an artifact or the complete
// new one, never a partial write. Get returns ErrNotFound for an absent
// artifact. List returns the names that have an artifact with the given
// extension.
type Store interface {
	Publish(ctx context.Context, artifacts []Artifact) error
	Get(ctx context.Context, name, ext string) ([]byte, error)
	List(ctx context.Context, ext string) ([]string, error)
}
