// Package queue carries build requests between the build CLI and the
// worker over AMQP.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// BuildRequested is the queue the worker consumes.
const BuildRequested = "build.requested"

// BuildRequest asks the worker to build one source module.
type BuildRequest struct {
	SourcePath string `json:"source_path"`
	OutputName string `json:"output_name"`
}

// Client publishes build requests. It dials per publish, which suits the
// CLI's one-shot usage; the worker holds its own long-lived connection.
type Client struct {
	connectionString string
}

func NewClient(connectionString string) *Client {
	return &Client{connectionString: connectionString}
}

// PublishBuildRequest declares the queue and publishes the request to it.
func (cli *Client) PublishBuildRequest(ctx context.Context, req *BuildRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("queue.Client: %w", err)
	}

	conn, err := amqp091.Dial(cli.connectionString)
	if err != nil {
		return fmt.Errorf("queue.Client: %w", err)
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("queue.Client: %w", err)
	}
	defer func() {
		_ = ch.Close()
	}()

	if _, err = DeclareBuildRequested(ch); err != nil {
		return fmt.Errorf("queue.Client: %w", err)
	}

	err = ch.PublishWithContext(ctx, "", BuildRequested, false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("queue.Client: %w", err)
	}

	return nil
}

// DeclareBuildRequested declares the build.requested queue with the
// parameters both publisher and consumer must agree on.
func DeclareBuildRequested(ch *amqp091.Channel) (amqp091.Queue, error) {
	return ch.QueueDeclare(BuildRequested, false, false, false, false, nil)
}
