package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"filedepot/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

var fileColumns = []string{"key", "original_name", "description", "uploaded_at"}

func TestFilePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	f := &model.File{
		Key:          "file_abc.pdf",
		OriginalName: "report.pdf",
		Description:  "Q3 results",
		UploadedAt:   now,
	}

	rows := sqlmock.NewRows(fileColumns).
		AddRow(f.Key, f.OriginalName, f.Description, now.Format(time.RFC3339))

	mock.ExpectQuery("INSERT INTO files").
		WithArgs(f.Key, f.OriginalName, f.Description, now.Format(time.RFC3339)).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, f)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, f.Key, result.Key)
	assert.Equal(t, f.OriginalName, result.OriginalName)
	assert.True(t, now.Equal(result.UploadedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_FindByKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(fileColumns).
			AddRow("file_abc.txt", "notes.txt", "No description", "2026-08-30T10:00:00+02:00")

		mock.ExpectQuery("SELECT (.+) FROM files WHERE key = ?").
			WithArgs("file_abc.txt").
			WillReturnRows(rows)

		f, err := repo.FindByKey(ctx, "file_abc.txt")

		assert.NoError(t, err)
		assert.NotNil(t, f)
		assert.Equal(t, "file_abc.txt", f.Key)
		assert.Equal(t, "notes.txt", f.OriginalName)
		assert.False(t, f.UploadedAt.IsZero())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files WHERE key = ?").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		f, err := repo.FindByKey(ctx, "missing")

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, f)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Scan(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("parses timestamps and tolerates bad ones", func(t *testing.T) {
		rows := sqlmock.NewRows(fileColumns).
			AddRow("file_a.pdf", "a.pdf", "", "2026-08-29T12:00:00Z").
			AddRow("file_b.pdf", "b.pdf", "", "not-a-timestamp")

		mock.ExpectQuery("SELECT (.+) FROM files").WillReturnRows(rows)

		items, err := repo.Scan(ctx)

		assert.NoError(t, err)
		assert.Len(t, items, 2)
		assert.False(t, items[0].UploadedAt.IsZero())
		assert.True(t, items[1].UploadedAt.IsZero())
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files").
			WillReturnRows(sqlmock.NewRows(fileColumns))

		items, err := repo.Scan(ctx)

		assert.NoError(t, err)
		assert.Empty(t, items)
		assert.NotNil(t, items)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM files").
			WillReturnError(errors.New("connection refused"))

		items, err := repo.Scan(ctx)

		assert.Error(t, err)
		assert.Nil(t, items)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilePostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewFilePostgres(db)
	ctx := context.Background()

	t.Run("existing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files WHERE key = ?").
			WithArgs("file_abc.pdf").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, "file_abc.pdf"))
	})

	t.Run("missing row is a no-op", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files WHERE key = ?").
			WithArgs("never-existed").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, "never-existed"))
	})

	t.Run("backend error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM files WHERE key = ?").
			WithArgs("file_err.pdf").
			WillReturnError(errors.New("connection refused"))

		assert.Error(t, repo.Delete(ctx, "file_err.pdf"))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParseUploadedAt(t *testing.T) {
	assert.False(t, parseUploadedAt("2026-08-30T10:00:00+02:00").IsZero())
	assert.True(t, parseUploadedAt("").IsZero())
	assert.True(t, parseUploadedAt("yesterday").IsZero())
}
