package record

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/TheMapleseed/EmscriptenforDeno/internal/pgtest"
	"github.com/TheMapleseed/EmscriptenforDeno/internal/pgutil"
)

func newDatabase(ctx context.Context, t testing.TB) *Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping in short mode: needs docker")
	}

	connectionString, teardown, err := pgtest.Setup(ctx)
	if err != nil {
		t.Fatalf("didn't want %q", err)
	}
	t.Cleanup(func() {
		if err := teardown(); err != nil {
			t.Errorf("didn't want %q", err)
		}
	})

	if err = Setup(connectionString); err != nil {
		t.Fatalf("didn't want %q", err)
	}

	pool, err := pgutil.NewPool(ctx, connectionString)
	if err != nil {
		t.Fatalf("didn't want %q", err)
	}
	t.Cleanup(pool.Close)

	return NewDatabase(pool)
}

func TestDatabase(t *testing.T) {
	t.Run("creates and gets a record", func(t *testing.T) {
		ctx := context.Background()
		database := newDatabase(ctx, t)

		created, err := database.CreateRecord(ctx, &CreateRecordParams{
			OutputName: "alpha",
			SourceKind: "cfamily",
		})
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}
		if got, want := created.Status, StatusRunning; got != want {
			t.Errorf("got %q Status, want %q", got, want)
		}

		got, err := database.GetRecord(ctx, created.ID)
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}
		if got.ID != created.ID || got.OutputName != "alpha" {
			t.Errorf("got %+v, want the created record", got)
		}
	})

	t.Run("rejects a second in-flight record per output name", func(t *testing.T) {
		ctx := context.Background()
		database := newDatabase(ctx, t)

		if _, err := database.CreateRecord(ctx, &CreateRecordParams{OutputName: "alpha", SourceKind: "rust"}); err != nil {
			t.Fatalf("didn't want %q", err)
		}

		_, err := database.CreateRecord(ctx, &CreateRecordParams{OutputName: "alpha", SourceKind: "rust"})
		if !errors.Is(err, ErrAlreadyRunning) {
			t.Errorf("got %v, want %v", err, ErrAlreadyRunning)
		}
	})

	t.Run("finishing frees the output name", func(t *testing.T) {
		ctx := context.Background()
		database := newDatabase(ctx, t)

		created, err := database.CreateRecord(ctx, &CreateRecordParams{OutputName: "alpha", SourceKind: "rust"})
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}

		finished, err := database.FinishRecord(ctx, &FinishRecordParams{
			ID:     created.ID,
			Status: StatusFailed,
			Stderr: "error[E0001]: broken",
		})
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}
		if got, want := finished.Status, StatusFailed; got != want {
			t.Errorf("got %q Status, want %q", got, want)
		}
		if got, want := finished.Stderr, "error[E0001]: broken"; got != want {
			t.Errorf("got %q Stderr, want %q", got, want)
		}

		if _, err = database.CreateRecord(ctx, &CreateRecordParams{OutputName: "alpha", SourceKind: "rust"}); err != nil {
			t.Errorf("didn't want %q", err)
		}
	})

	t.Run("doesn't finish a missing record", func(t *testing.T) {
		ctx := context.Background()
		database := newDatabase(ctx, t)

		_, err := database.FinishRecord(ctx, &FinishRecordParams{
			ID:     uuid.MustParse("aaaaaaaa-0000-0000-0000-000000000000"),
			Status: StatusCompleted,
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want %v", err, ErrNotFound)
		}
	})

	t.Run("lists records for one output name", func(t *testing.T) {
		ctx := context.Background()
		database := newDatabase(ctx, t)

		for _, name := range []string{"alpha", "beta"} {
			created, err := database.CreateRecord(ctx, &CreateRecordParams{OutputName: name, SourceKind: "cfamily"})
			if err != nil {
				t.Fatalf("didn't want %q", err)
			}
			if _, err = database.FinishRecord(ctx, &FinishRecordParams{ID: created.ID, Status: StatusCompleted}); err != nil {
				t.Fatalf("didn't want %q", err)
			}
		}

		records, err := database.ListRecords(ctx, &ListRecordsParams{OutputName: "alpha"})
		if err != nil {
			t.Fatalf("didn't want %q", err)
		}
		if got, want := len(records), 1; got != want {
			t.Fatalf("got %d records, want %d", got, want)
		}
		if got, want := records[0].OutputName, "alpha"; got != want {
			t.Errorf("got %q OutputName, want %q", got, want)
		}
	})
}
