package repository

import (
	"context"

	"extranet/internal/model"
)

// DocumentFilter narrows a document listing. Zero values mean "any".
type DocumentFilter struct {
	UserID   int64
	Category model.Category
}

// DocumentRepository defines data access for documents using SQL queries only.
// Implementations hold no business logic.
type DocumentRepository interface {
	// Create inserts a new document record and returns the stored row.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns a page of documents matching f, newest first, with the total count.
	List(ctx context.Context, f DocumentFilter, pq PageQuery) (*PageResult[model.Document], error)

	// Delete removes a document by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
