package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"extranet/internal/model"
)

func TestRedisRecentUploads_Push(t *testing.T) {
	entry := RecentUpload{
		DocumentID: "doc-1",
		Filename:   "Martin_Jean.pdf",
		Category:   model.CategoryBordereau,
		UploadedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(entry)
	require.NoError(t, err)

	t.Run("push trims and refreshes ttl", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisRecentUploads(db, 5, time.Hour)

		mock.ExpectLPush("recent_uploads:2", string(payload)).SetVal(1)
		mock.ExpectLTrim("recent_uploads:2", 0, 4).SetVal("OK")
		mock.ExpectExpire("recent_uploads:2", time.Hour).SetVal(true)

		assert.NoError(t, store.Push(context.Background(), 2, entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lpush failure", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisRecentUploads(db, 5, time.Hour)

		mock.ExpectLPush("recent_uploads:2", string(payload)).SetErr(errors.New("connection refused"))

		err := store.Push(context.Background(), 2, entry)
		assert.ErrorContains(t, err, "lpush recent_uploads:2")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no ttl skips expire", func(t *testing.T) {
		db, mock := redismock.NewClientMock()
		store := NewRedisRecentUploads(db, 0, 0)

		mock.ExpectLPush("recent_uploads:3", string(payload)).SetVal(1)
		mock.ExpectLTrim("recent_uploads:3", 0, 19).SetVal("OK")

		assert.NoError(t, store.Push(context.Background(), 3, entry))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRedisRecentUploads_List(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := NewRedisRecentUploads(db, 5, time.Hour)

	good, err := json.Marshal(RecentUpload{DocumentID: "doc-2", Filename: "b.pdf", Category: model.CategoryArchive})
	require.NoError(t, err)
	mock.ExpectLRange("recent_uploads:2", 0, -1).SetVal([]string{string(good), "not-json"})

	got, err := store.List(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "doc-2", got[0].DocumentID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNoop(t *testing.T) {
	var n Noop
	assert.NoError(t, n.Push(context.Background(), 1, RecentUpload{}))
	got, err := n.List(context.Background(), 1)
	assert.NoError(t, err)
	assert.Empty(t, got)
}
