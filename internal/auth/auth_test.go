package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardbinder/cardbinder/internal/storage"
	"github.com/cardbinder/cardbinder/internal/storage/repository"
)

func testService(t *testing.T) *Service {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(repository.NewUserRepo(db.DB))
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "not-a-hash")
	assert.Error(t, err)
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	a, err := HashPassword("same password")
	require.NoError(t, err)
	b, err := HashPassword("same password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSignupAndLogin(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	account, token, err := svc.Signup(ctx, "alice", "Alice@Example.com", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, account.ID)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, "alice@example.com", account.Email, "email stored lowercased")
	assert.NotEmpty(t, token)

	// By username
	_, _, err = svc.Login(ctx, "alice", "password123")
	require.NoError(t, err)

	// By email
	byEmail, _, err := svc.Login(ctx, "alice@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, account.ID, byEmail.ID)
}

func TestSignupRejectsDuplicates(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Signup(ctx, "alice", "other@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserExists)

	_, _, err = svc.Signup(ctx, "bob", "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestSignupValidation(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "al", "a@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidUsername)

	_, _, err = svc.Signup(ctx, "alice", "a@example.com", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestLoginInvalidCredentials(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice", "wrong password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRestoreAndLogout(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	account, token, err := svc.Signup(ctx, "alice", "alice@example.com", "password123")
	require.NoError(t, err)

	restored, err := svc.Restore(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, restored.ID)

	require.NoError(t, svc.Logout(ctx, token))
	_, err = svc.Restore(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	// Logout of an unknown token is not an error
	assert.NoError(t, svc.Logout(ctx, "missing"))
}
