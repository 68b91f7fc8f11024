package repository

import (
	"context"

	"filedepot/internal/model"
)

// FileRepository is the metadata-store client: strictly persistence
// operations keyed by the storage key, no business logic.
type FileRepository interface {
	// Create inserts a new file record. The caller provides all fields.
	// Returns the stored record as read back from the store.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByKey returns a record by its storage key.
	FindByKey(ctx context.Context, key string) (*model.File, error)

	// Scan returns every file record. The scan is unbounded and carries no
	// ordering guarantee; callers sort. A partial or empty result is valid.
	Scan(ctx context.Context) ([]model.File, error)

	// Delete removes a record by key. It returns nil if the row was deleted
	// or did not exist, so repeated deletes are no-ops.
	Delete(ctx context.Context, key string) error
}
