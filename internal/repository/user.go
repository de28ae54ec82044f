package repository

import (
	"context"

	"extranet/internal/model"
)

// UserRepository reads extranet users. Account management happens elsewhere.
type UserRepository interface {
	FindByID(ctx context.Context, id int64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ListRoster returns every user ordered by id, for filename matching.
	ListRoster(ctx context.Context) ([]model.User, error)

	List(ctx context.Context, pq PageQuery) (*PageResult[model.User], error)
}
