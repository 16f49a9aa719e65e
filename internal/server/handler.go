package server

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
)

// contentTypes is the fixed extension to MIME mapping for served artifacts.
// Unknown extensions fall back to application/octet-stream.
var contentTypes = map[string]string{
	artifact.ExtBinary:  "application/wasm",
	artifact.ExtLoader:  "application/javascript",
	artifact.ExtWrapper: "application/typescript",
	"html":              "text/html",
}

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Modules</title>
</head>
<body>
<h1>Modules</h1>
<ul>
{{- range .Names}}
<li><a href="/{{.}}.wasm">{{.}}.wasm</a></li>
{{- end}}
</ul>
</body>
</html>
`))

type handler struct {
	mux   *http.ServeMux
	store artifact.Store
	log   *slog.Logger
}

func newHandler(store artifact.Store, log *slog.Logger) *handler {
	mux := http.NewServeMux()
	h := &handler{mux: mux, store: store, log: log}

	mux.HandleFunc("GET /{$}", h.Index)
	mux.HandleFunc("GET /{file}", h.Artifact)

	return h
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// Index renders an HTML listing of the binary module artifacts. Loaders and
// wrappers aren't advertised; they are reachable through their module's
// name.
func (h *handler) Index(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.List(r.Context(), artifact.ExtBinary)
	if err != nil {
		h.log.Error("didn't list artifacts", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	type executeParams struct {
		Names []string
	}
	buf := new(bytes.Buffer)
	if err = indexTemplate.Execute(buf, &executeParams{Names: names}); err != nil {
		h.log.Error("didn't render index", "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// Artifact streams one stored artifact with its content type resolved from
// the requested extension.
func (h *handler) Artifact(w http.ResponseWriter, r *http.Request) {
	const pathValueFile = "file"
	file := r.PathValue(pathValueFile)

	name, ext := splitExt(file)
	if name == "" || ext == "" {
		http.Error(w, fmt.Sprintf("not found: %s", file), http.StatusNotFound)
		return
	}

	data, err := h.store.Get(r.Context(), name, ext)
	if errors.Is(err, artifact.ErrNotFound) || errors.Is(err, fs.ErrInvalid) {
		http.Error(w, fmt.Sprintf("not found: %s", file), http.StatusNotFound)
		return
	} else if err != nil {
		h.log.Error("didn't get artifact", "file", file, "err", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeForExt(ext))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func contentTypeForExt(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

func splitExt(file string) (name, ext string) {
	i := strings.LastIndex(file, ".")
	if i < 0 {
		return file, ""
	}
	return file[:i], file[i+1:]
}
