package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extranet/internal/repository"
)

var userCols = []string{"id", "last_name", "first_name", "email", "role", "password_hash", "created_at"}

func TestUserPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserPostgres(db)

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(int64(2), "Martin", "Jean", "jean.martin@x.com", "user", "", time.Now()))

		u, err := repo.FindByID(context.Background(), 2)
		require.NoError(t, err)
		assert.Equal(t, "Martin", u.LastName)
		assert.Equal(t, "Jean", u.FirstName)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`FROM users WHERE id = \$1`).
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		u, err := repo.FindByID(context.Background(), 99)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, u)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM users WHERE lower\(email\) = lower\(\$1\)`).
		WithArgs("Admin@X.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(1), "Admin", "Root", "admin@x.com", "admin", "$2a$hash", time.Now()))

	u, err := NewUserPostgres(db).FindByEmail(context.Background(), "Admin@X.com")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
	assert.Equal(t, "$2a$hash", u.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_ListRoster(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := NewUserPostgres(db)

	t.Run("ordered by id", func(t *testing.T) {
		mock.ExpectQuery(`SELECT (.+) FROM users ORDER BY id$`).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(int64(2), "Martin", "Jean", "jean.martin@x.com", "user", "", time.Now()).
				AddRow(int64(5), "", "", "", "user", "", time.Now()))

		users, err := repo.ListRoster(context.Background())
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, int64(2), users[0].ID)
		assert.Empty(t, users[1].LastName)
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectQuery(`FROM users ORDER BY id`).WillReturnError(errors.New("db down"))

		users, err := repo.ListRoster(context.Background())
		assert.EqualError(t, err, "db down")
		assert.Nil(t, users)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`FROM users ORDER BY last_name, first_name, id LIMIT \$1 OFFSET \$2`).
		WithArgs(2, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(int64(4), "Bernard", "Paul", "p.bernard@x.com", "user", "", time.Now()).
			AddRow(int64(2), "Martin", "Jean", "jean.martin@x.com", "user", "", time.Now()))

	res, err := NewUserPostgres(db).List(context.Background(), repository.PageQuery{Limit: 2, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
