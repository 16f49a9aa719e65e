package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newS3Store starts a MinIO container and returns a store over a fresh
// bucket in it.
func newS3Store(t *testing.T) *S3Store {
	t.Helper()
	if testing.Short() {
		t.SkipNow()
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "minio/minio:latest",
			Env: map[string]string{
				"MINIO_ROOT_USER":     "minioadmin",
				"MINIO_ROOT_PASSWORD": "minioadmin",
			},
			Cmd:          []string{"server", "/data"},
			ExposedPorts: []string{"9000/tcp"},
			WaitingFor:   wait.ForHTTP("/minio/health/live").WithPort("9000/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("got %v, want nil", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("got %v, want nil", err)
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		t.Fatalf("got %v, want nil", err)
	}

	connectionString := fmt.Sprintf("http://minioadmin:minioadmin@%s:%s", host, port.Port())
	client := NewS3Client(connectionString)
	if err = SetupBucket(ctx, client, "modules"); err != nil {
		t.Fatalf("got %v, want nil", err)
	}

	return &S3Store{Client: client, Bucket: "modules"}
}

func TestS3Store(t *testing.T) {
	store := newS3Store(t)
	ctx := context.Background()

	t.Run("publishes and gets artifacts", func(t *testing.T) {
		artifacts := []Artifact{
			{Name: "alpha", Ext: ExtBinary, Data: []byte{0x00, 0x61, 0x73, 0x6d}},
			{Name: "alpha", Ext: ExtLoader, Data: []byte("loader")},
			{Name: "alpha", Ext: ExtWrapper, Data: []byte("wrapper")},
		}
		if err := store.Publish(ctx, artifacts); err != nil {
			t.Fatalf("got %v, want nil", err)
		}

		for _, a := range artifacts {
			data, err := store.Get(ctx, a.Name, a.Ext)
			if err != nil {
				t.Fatalf("got %v, want nil", err)
			}
			if !bytes.Equal(data, a.Data) {
				t.Errorf("got %q, want %q", data, a.Data)
			}
		}
	})

	t.Run("doesn't get a missing artifact", func(t *testing.T) {
		_, err := store.Get(ctx, "missing", ExtBinary)
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("lists one extension without staged leftovers", func(t *testing.T) {
		artifacts := []Artifact{
			{Name: "beta", Ext: ExtBinary, Data: []byte("b")},
			{Name: "beta", Ext: ExtLoader, Data: []byte("l")},
			{Name: "beta", Ext: ExtWrapper, Data: []byte("w")},
		}
		if err := store.Publish(ctx, artifacts); err != nil {
			t.Fatalf("got %v, want nil", err)
		}

		names, err := store.List(ctx, ExtBinary)
		if err != nil {
			t.Fatalf("got %v, want nil", err)
		}
		if want := []string{"alpha", "beta"}; !slices.Equal(names, want) {
			t.Errorf("got %q, want %q", names, want)
		}
	})

	t.Run("overwrites artifacts on republish", func(t *testing.T) {
		publish := func(data string) {
			t.Helper()
			artifacts := []Artifact{
				{Name: "gamma", Ext: ExtBinary, Data: []byte(data)},
				{Name: "gamma", Ext: ExtLoader, Data: []byte(data)},
				{Name: "gamma", Ext: ExtWrapper, Data: []byte(data)},
			}
			if err := store.Publish(ctx, artifacts); err != nil {
				t.Fatalf("got %v, want nil", err)
			}
		}
		publish("first")
		publish("second")

		data, err := store.Get(ctx, "gamma", ExtBinary)
		if err != nil {
			t.Fatalf("got %v, want nil", err)
		}
		if want := "second"; string(data) != want {
			t.Errorf("got %q, want %q", data, want)
		}
	})
}
