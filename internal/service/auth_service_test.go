package service

import (
	"context"
	"testing"

	"github.com/Tapananshu17/HCI/config"
	"github.com/Tapananshu17/HCI/internal/apperror"
	"github.com/Tapananshu17/HCI/internal/dto"
	"github.com/Tapananshu17/HCI/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authTestConfig() *config.Config {
	return &config.Config{JWT: config.JWT{Secret: "test-secret", ExpiryHours: 1}}
}

func TestSetupCreatesUserAndIssuesToken(t *testing.T) {
	userRepo := newFakeUserRepo()
	cfg := authTestConfig()
	svc := NewAuthService(userRepo, cfg)

	resp, err := svc.Setup(context.Background(), dto.SetupRequest{
		Username: "asha",
		Password: "secret123",
		Name:     "Asha",
		Grade:    "10",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha", resp.User.Username)
	assert.True(t, resp.User.IsSetupComplete)
	require.NotEmpty(t, resp.AccessToken)

	claims, err := token.Parse(cfg, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "asha", claims.Username)

	// The stored hash must not be the plaintext password.
	stored, err := userRepo.FindByID(resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
}

func TestSetupRejectsDuplicateUsername(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), authTestConfig())

	req := dto.SetupRequest{Username: "asha", Password: "secret123", Name: "Asha", Grade: "10"}
	_, err := svc.Setup(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Setup(context.Background(), req)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestLoginSucceedsWithCorrectPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), authTestConfig())
	_, err := svc.Setup(context.Background(), dto.SetupRequest{Username: "asha", Password: "secret123", Name: "Asha", Grade: "10"})
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "asha", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "asha", resp.User.Username)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), authTestConfig())
	_, err := svc.Setup(context.Background(), dto.SetupRequest{Username: "asha", Password: "secret123", Name: "Asha", Grade: "10"})
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "asha", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestLoginRejectsUnknownUser(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), authTestConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}
