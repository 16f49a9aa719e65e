package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rabbitmq/amqp091-go"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/build"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/record"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/source"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/toolchain"
)

// Handler processes one build request delivery. A malformed delivery is
// rejected without requeue; a well-formed delivery is acked whether the
// build succeeds or fails, with the outcome written to the build record
// when records are enabled.
type Handler struct {
	Dispatcher *build.Dispatcher // required
	Records    *record.Database  // optional
	Log        *slog.Logger      // required
}

func (h *Handler) Run(ctx context.Context, m amqp091.Delivery) {
	type message struct {
		SourcePath *string `json:"source_path"`
		OutputName *string `json:"output_name"`
	}

	var msg message
	dec := json.NewDecoder(bytes.NewReader(m.Body))
	dec.DisallowUnknownFields()
	err := dec.Decode(&msg)
	if err == nil && dec.More() {
		err = errors.New("multiple top-level values")
	}
	if err == nil && msg.SourcePath == nil {
		err = fmt.Errorf("missing %s body field", "source_path")
	}
	if err == nil && msg.OutputName == nil {
		err = fmt.Errorf("missing %s body field", "output_name")
	}
	if err != nil {
		h.Log.Error("rejecting delivery", "err", fmt.Errorf("invalid body: %w", err))
		_ = m.Nack(false, false)
		return
	}

	sourcePath, outputName := *msg.SourcePath, *msg.OutputName
	h.Log.Info("received build request", "name", outputName)

	var rec *record.Record
	if h.Records != nil {
		rec, err = h.Records.CreateRecord(ctx, &record.CreateRecordParams{
			OutputName: outputName,
			SourceKind: string(source.KindOf(sourcePath)),
		})
		if err != nil {
			if errors.Is(err, record.ErrAlreadyRunning) {
				h.Log.Warn("dropping build request", "name", outputName, "err", err)
				_ = m.Ack(false)
				return
			}
			h.Log.Error("didn't create record", "name", outputName, "err", err)
			_ = m.Nack(false, false)
			return
		}
	}

	_, buildErr := h.Dispatcher.Build(ctx, &build.BuildParams{
		SourcePath: sourcePath,
		OutputName: outputName,
	})

	if rec != nil {
		finish := &record.FinishRecordParams{ID: rec.ID, Status: record.StatusCompleted}
		if buildErr != nil {
			finish.Status = record.StatusFailed
			finish.Stderr = buildStderr(buildErr)
		}
		if _, err = h.Records.FinishRecord(ctx, finish); err != nil {
			h.Log.Error("didn't finish record", "id", rec.ID, "err", err)
		}
	}

	if buildErr != nil {
		h.Log.Error("build failed", "name", outputName, "err", buildErr)
	} else {
		h.Log.Info("build completed", "name", outputName)
	}
	_ = m.Ack(false)
}

// buildStderr extracts the tool's captured stderr when the build failed
// inside a toolchain run, and falls back to the error text otherwise.
func buildStderr(err error) string {
	var exitErr *toolchain.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Stderr
	}
	return err.Error()
}
