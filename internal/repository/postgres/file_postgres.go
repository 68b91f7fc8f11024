package postgres

import (
	"context"
	"database/sql"
	"time"

	"filedepot/internal/model"
	"filedepot/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
// It uses database/sql with parameterized queries.
//
// uploaded_at is persisted as an RFC 3339 text column, mirroring how the
// record travels on the wire. Parsing happens once per row at read time; a
// row whose timestamp does not parse gets the zero time, which sorts as
// infinitely old in the listing.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (key, original_name, description, uploaded_at)
		VALUES ($1, $2, $3, $4)
		RETURNING key, original_name, description, uploaded_at
	`
	row := r.db.QueryRowContext(ctx, q,
		f.Key,
		f.OriginalName,
		f.Description,
		f.UploadedAt.Format(time.RFC3339),
	)
	return scanFile(row)
}

// FindByKey fetches a single record by its storage key.
func (r *FilePostgres) FindByKey(ctx context.Context, key string) (*model.File, error) {
	const q = `
		SELECT key, original_name, description, uploaded_at
		FROM files
		WHERE key = $1
	`
	return scanFile(r.db.QueryRowContext(ctx, q, key))
}

// Scan reads every file row. Ordering is left to the caller.
func (r *FilePostgres) Scan(ctx context.Context) ([]model.File, error) {
	const q = `SELECT key, original_name, description, uploaded_at FROM files`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.File, 0)
	for rows.Next() {
		var (
			f  model.File
			ts string
		)
		if err := rows.Scan(&f.Key, &f.OriginalName, &f.Description, &ts); err != nil {
			return nil, err
		}
		f.UploadedAt = parseUploadedAt(ts)
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes a record by key. A missing row is not an error.
func (r *FilePostgres) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM files WHERE key = $1`
	res, err := r.db.ExecContext(ctx, q, key)
	if err != nil {
		return err
	}
	// Rows affected is deliberately ignored: deleting an absent key is a no-op.
	_, _ = res.RowsAffected()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.File, error) {
	var (
		f  model.File
		ts string
	)
	if err := row.Scan(&f.Key, &f.OriginalName, &f.Description, &ts); err != nil {
		return nil, err
	}
	f.UploadedAt = parseUploadedAt(ts)
	return &f, nil
}

// parseUploadedAt falls back to the zero time for unparsable values.
func parseUploadedAt(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
