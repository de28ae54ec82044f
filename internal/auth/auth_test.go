package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", hash)

	assert.True(t, CheckPassword("s3cret!", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("s3cret!", ""))
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)

	token, exp, err := iss.Issue(42, "admin")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestIssuer_Parse_Rejects(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	token, _, err := iss.Issue(1, "user")
	require.NoError(t, err)

	tests := []struct {
		name   string
		issuer *Issuer
		token  string
	}{
		{name: "garbage", issuer: iss, token: "not-a-token"},
		{name: "wrong secret", issuer: NewIssuer("other", time.Hour), token: token},
		{name: "tampered", issuer: iss, token: token + "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.issuer.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}

	t.Run("expired", func(t *testing.T) {
		old := NewIssuer("test-secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		expired, _, err := old.Issue(1, "user")
		require.NoError(t, err)

		_, err = iss.Parse(expired)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
