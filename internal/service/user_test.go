package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"extranet/internal/auth"
	"extranet/internal/model"
	"extranet/internal/repository"
	repoMocks "extranet/internal/repository/mocks"
)

func TestUserService_List(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		limit      int
		offset     int
		setupMocks func(m *repoMocks.MockUserRepository)
		wantErr    bool
	}{
		{
			name:  "happy path",
			limit: 20,
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("List", ctx, repository.PageQuery{Limit: 20}).
					Return(&repository.PageResult[model.User]{Items: []model.User{{ID: 1}}, Total: 1}, nil)
			},
		},
		{
			name:   "defaults",
			limit:  -1,
			offset: -5,
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("List", ctx, repository.PageQuery{Limit: 50}).
					Return(&repository.PageResult[model.User]{Items: []model.User{}}, nil)
			},
		},
		{
			name:  "repository error",
			limit: 20,
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("List", ctx, mock.Anything).Return(nil, errors.New("db fail"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(repoMocks.MockUserRepository)
			tt.setupMocks(m)

			res, err := NewUserService(m).List(ctx, tt.limit, tt.offset)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, res.Items)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestUserService_Roster(t *testing.T) {
	m := new(repoMocks.MockUserRepository)
	m.On("ListRoster", mock.Anything).Return([]model.User{{ID: 1}, {ID: 2}}, nil)

	users, err := NewUserService(m).Roster(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

type stubIssuer struct{ err error }

func (s stubIssuer) Issue(userID int64, role string) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "token-" + role, time.Unix(0, 0), nil
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	hash, err := auth.HashPassword("correct horse")
	require.NoError(t, err)
	admin := &model.User{ID: 1, Email: "admin@x.com", Role: model.RoleAdmin, PasswordHash: hash}

	tests := []struct {
		name       string
		email      string
		password   string
		issuer     TokenIssuer
		setupMocks func(m *repoMocks.MockUserRepository)
		wantToken  string
		wantErr    error
		wantErrMsg string
	}{
		{
			name:     "success",
			email:    " admin@x.com ",
			password: "correct horse",
			issuer:   stubIssuer{},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "admin@x.com").Return(admin, nil)
			},
			wantToken: "token-admin",
		},
		{
			name:     "unknown email",
			email:    "nobody@x.com",
			password: "x",
			issuer:   stubIssuer{},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "nobody@x.com").Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "admin@x.com",
			password: "battery staple",
			issuer:   stubIssuer{},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "admin@x.com").Return(admin, nil)
			},
			wantErr: ErrInvalidCredentials,
		},
		{
			name:     "lookup error",
			email:    "admin@x.com",
			password: "correct horse",
			issuer:   stubIssuer{},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "admin@x.com").Return(nil, errors.New("db down"))
			},
			wantErrMsg: "lookup user: db down",
		},
		{
			name:     "issuer error",
			email:    "admin@x.com",
			password: "correct horse",
			issuer:   stubIssuer{err: errors.New("sign failed")},
			setupMocks: func(m *repoMocks.MockUserRepository) {
				m.On("FindByEmail", ctx, "admin@x.com").Return(admin, nil)
			},
			wantErrMsg: "sign failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(repoMocks.MockUserRepository)
			tt.setupMocks(m)

			res, err := NewAuthService(m, tt.issuer).Login(ctx, tt.email, tt.password)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, res)
			case tt.wantErrMsg != "":
				assert.ErrorContains(t, err, tt.wantErrMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantToken, res.Token)
				assert.Equal(t, int64(1), res.User.ID)
			}
			m.AssertExpectations(t)
		})
	}
}
