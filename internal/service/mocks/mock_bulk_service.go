package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"extranet/internal/model"
	"extranet/internal/service"
)

type MockBulkService struct {
	mock.Mock
}

func (m *MockBulkService) Preview(ctx context.Context, filenames []string) (*service.BulkPreview, error) {
	args := m.Called(ctx, filenames)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BulkPreview), args.Error(1)
}

func (m *MockBulkService) Commit(ctx context.Context, category model.Category, files []service.BulkFile, overrides map[string]int64) (*service.BulkCommitResult, error) {
	args := m.Called(ctx, category, files, overrides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BulkCommitResult), args.Error(1)
}
