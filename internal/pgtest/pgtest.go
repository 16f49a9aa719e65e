// Package pgtest provisions a throwaway Postgres container for integration
// tests.
package pgtest

import (
	"context"
	"fmt"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Setup starts a Postgres container and returns its connection string and a
// teardown function. Schema migration is the caller's concern.
func Setup(ctx context.Context) (connectionString string, teardown func() error, err error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:16",
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "postgres",
				"POSTGRES_DB":       "postgres",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
		},
		Started: true,
	})
	if err != nil {
		return "", nil, err
	}
	teardown = func() error {
		return container.Terminate(context.Background())
	}

	host, err := container.Host(ctx)
	if err != nil {
		_ = teardown()
		return "", nil, err
	}
	port, err := container.MappedPort(ctx, "5432/tcp")
	if err != nil {
		_ = teardown()
		return "", nil, err
	}

	connectionString = fmt.Sprintf(
		"postgres://postgres:postgres@%s/postgres?sslmode=disable",
		fmt.Sprintf("%s:%s", host, port.Port()),
	)
	return connectionString, teardown, nil
}
