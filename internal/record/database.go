package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyRunning reports a pending or running record for the same
	// output name. Build serialization per name is the caller's duty; the
	// partial unique index backing this error catches a caller that broke
	// it.
	ErrAlreadyRunning = errors.New("build already running for output name")
)

// Querier covers pgx pools, connections and transactions.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Database struct {
	db Querier // required
}

func NewDatabase(db Querier) *Database {
	return &Database{db: db}
}

type CreateRecordParams struct {
	OutputName string
	SourceKind string
}

func (d *Database) CreateRecord(ctx context.Context, params *CreateRecordParams) (*Record, error) {
	query := `
		INSERT INTO build_records (output_name, source_kind, status)
		VALUES ($1, $2, $3)
		RETURNING id, output_name, source_kind, status, stderr, created_at, updated_at
	`
	args := []any{params.OutputName, params.SourceKind, StatusRunning}

	rows, _ := d.db.Query(ctx, query, args...)
	r, err := pgx.CollectExactlyOneRow(rows, rowToRecord)
	if err != nil {
		if pgErr := (*pgconn.PgError)(nil); errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return nil, fmt.Errorf("create record: %w", ErrAlreadyRunning)
		}
		return nil, fmt.Errorf("create record: %w", err)
	}

	return r, nil
}

type FinishRecordParams struct {
	ID     uuid.UUID
	Status Status // StatusCompleted or StatusFailed
	Stderr string // empty unless Status is StatusFailed
}

func (d *Database) FinishRecord(ctx context.Context, params *FinishRecordParams) (*Record, error) {
	query := `
		UPDATE build_records
		SET status = $2, stderr = $3, updated_at = now()
		WHERE id = $1
		RETURNING id, output_name, source_kind, status, stderr, created_at, updated_at
	`
	args := []any{params.ID, params.Status, params.Stderr}

	rows, _ := d.db.Query(ctx, query, args...)
	r, err := pgx.CollectExactlyOneRow(rows, rowToRecord)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("finish record: %w", ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("finish record: %w", err)
	}

	return r, nil
}

func (d *Database) GetRecord(ctx context.Context, id uuid.UUID) (*Record, error) {
	query := `
		SELECT id, output_name, source_kind, status, stderr, created_at, updated_at
		FROM build_records
		WHERE id = $1
	`
	args := []any{id}

	rows, _ := d.db.Query(ctx, query, args...)
	r, err := pgx.CollectExactlyOneRow(rows, rowToRecord)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get record: %w", ErrNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("get record: %w", err)
	}

	return r, nil
}

type ListRecordsParams struct {
	OutputName string // empty lists all output names
	Limit      int    // zero value means 100
}

func (d *Database) ListRecords(ctx context.Context, params *ListRecordsParams) ([]*Record, error) {
	limit := params.Limit
	if limit == 0 {
		limit = 100
	}

	query := `
		SELECT id, output_name, source_kind, status, stderr, created_at, updated_at
		FROM build_records
		WHERE $1 = '' OR output_name = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	args := []any{params.OutputName, limit}

	rows, _ := d.db.Query(ctx, query, args...)
	records, err := pgx.CollectRows(rows, rowToRecord)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	return records, nil
}

func rowToRecord(collectable pgx.CollectableRow) (*Record, error) {
	var r Record
	err := collectable.Scan(
		&r.ID,
		&r.OutputName,
		&r.SourceKind,
		&r.Status,
		&r.Stderr,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
