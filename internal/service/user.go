package service

import (
	"context"

	"extranet/internal/model"
	"extranet/internal/repository"
)

// UserListResult is a page of users.
type UserListResult struct {
	Items []model.User `json:"data"`
	Total int          `json:"total"`
}

type UserService interface {
	// Roster returns every user ordered by id.
	Roster(ctx context.Context) ([]model.User, error)
	List(ctx context.Context, limit, offset int) (*UserListResult, error)
}

type userService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) Roster(ctx context.Context) ([]model.User, error) {
	return s.repo.ListRoster(ctx)
}

func (s *userService) List(ctx context.Context, limit, offset int) (*UserListResult, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	res, err := s.repo.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &UserListResult{Items: res.Items, Total: res.Total}, nil
}
