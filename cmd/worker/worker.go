package main

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/queue"
)

type Worker struct {
	AMQP    string   // required
	Handler *Handler // required
	Log     *slog.Logger
}

func (w *Worker) Run(ctx context.Context) error {
	retries := 0
	for {
		consumeErr := func() error {
			conn, err := amqp091.Dial(w.AMQP)
			if err != nil {
				return err
			}
			defer conn.Close()

			ch, err := conn.Channel()
			if err != nil {
				return err
			}
			defer ch.Close()

			q, err := queue.DeclareBuildRequested(ch)
			if err != nil {
				return err
			}

			if err = ch.Qos(1, 0, false); err != nil {
				return err
			}

			messages, err := ch.Consume(q.Name, "", false, false, false, false, nil)
			if err != nil {
				return err
			}

			w.Log.Info("consuming", "queue", q.Name)
			for m := range messages {
				w.Handler.Run(ctx, m)
				if retries > 0 && !ch.IsClosed() {
					w.Log.Info("recovered", "retries", retries)
					retries = 0
				}
			}

			return errors.New("delivery channel is closed")
		}()
		w.Log.Error("didn't consume", "err", consumeErr)

		retries++
		select {
		case <-time.After(retryWaitDuration(retries - 1)):
		case <-ctx.Done():
			return ctx.Err()
		}
		w.Log.Info("retrying", "retries", retries)
	}
}

// retryWaitDuration returns the wait duration before reconnect attempt
// retry, counted from 0. It doubles from 1s and stops growing at the
// sixth retry, with up to 50% random jitter added on top, so repeated
// broker outages settle into waits between 64s and 96s.
func retryWaitDuration(retry int) time.Duration {
	duration := time.Second << min(retry, 6)
	jitter := time.Duration(rand.Int64N(int64(duration) / 2))
	return duration + jitter
}
