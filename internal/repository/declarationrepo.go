// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/lovepage/internal/model"
)

// DeclarationRepository persists shared declarations keyed by a generated identifier.
type DeclarationRepository interface {
	// Create inserts a new record; rec.CreatedAt is filled by the backend.
	Create(ctx context.Context, rec *model.Record) error
	// Get loads a record by ID, returning errs.ErrNotFound when absent.
	Get(ctx context.Context, id uuid.UUID) (*model.Record, error)
}
