package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/rabbitmq/amqp091-go"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/artifact"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/build"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/toolchain"
)

type fakeAcknowledger struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked = true
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacked = true
	a.requeue = requeue
	return nil
}

func newHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := artifact.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("got %v, want nil", err)
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Handler{
		Dispatcher: &build.Dispatcher{
			Store:      store,
			Toolchain:  &toolchain.Config{},
			ScratchDir: t.TempDir(),
			Log:        log,
		},
		Log: log,
	}
}

func TestHandler(t *testing.T) {
	t.Run("rejects malformed deliveries without requeue", func(t *testing.T) {
		bodies := []string{
			`{`,
			`{"source_path":"a.rs","output_name":"a"} {}`,
			`{"source_path":"a.rs","output_name":"a","extra":1}`,
			`{"source_path":"a.rs"}`,
			`{"output_name":"a"}`,
		}
		for _, body := range bodies {
			h := newHandler(t)
			ack := &fakeAcknowledger{}

			h.Run(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: []byte(body)})

			if !ack.nacked {
				t.Errorf("got no nack for body %q", body)
			}
			if ack.requeue {
				t.Errorf("got requeue for body %q", body)
			}
		}
	})

	t.Run("acks a well-formed delivery whose build fails", func(t *testing.T) {
		h := newHandler(t)
		ack := &fakeAcknowledger{}
		body := `{"source_path":"module.txt","output_name":"module"}`

		h.Run(context.Background(), amqp091.Delivery{Acknowledger: ack, Body: []byte(body)})

		if !ack.acked {
			t.Error("got no ack")
		}
		if ack.nacked {
			t.Error("got nack, didn't want it")
		}
	})
}
