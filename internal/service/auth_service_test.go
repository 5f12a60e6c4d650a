package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gov-collab/portal-api/internal/models"
	appErrors "github.com/gov-collab/portal-api/pkg/errors"
)

type mockAuthRepo struct {
	userByUsername    *models.User
	userByID          *models.User
	findByUsernameErr error
	findByIDErr       error
	updatedHash       string
}

func (m *mockAuthRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.findByUsernameErr != nil {
		return nil, m.findByUsernameErr
	}
	return m.userByUsername, nil
}

func (m *mockAuthRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	if m.userByID != nil {
		return m.userByID, nil
	}
	return m.userByUsername, nil
}

func (m *mockAuthRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.updatedHash = passwordHash
	return nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{TokenSecret: "test-secret", TokenExpiry: time.Hour, Issuer: "gov-collab-portal"}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: &models.User{
		ID: 1, Username: "jdoe", PasswordHash: hashOf(t, "secret123"),
		FullName: "John Doe", Role: models.RoleCollaborator, Active: true,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, models.RoleCollaborator, resp.User.Role)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: &models.User{
		ID: 1, Username: "jdoe", PasswordHash: hashOf(t, "secret123"), Active: true,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "wrong"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginUnknownUserSameError(t *testing.T) {
	repo := &mockAuthRepo{findByUsernameErr: sql.ErrNoRows}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "whatever"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: &models.User{
		ID: 1, Username: "jdoe", PasswordHash: hashOf(t, "secret123"), Active: false,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "secret123"})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestValidateTokenRejectsDeactivatedUser(t *testing.T) {
	user := &models.User{ID: 1, Username: "jdoe", PasswordHash: hashOf(t, "secret123"),
		Role: models.RoleSupervisor, Active: true}
	repo := &mockAuthRepo{userByUsername: user}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "secret123"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)

	user.Active = false
	_, err = svc.ValidateToken(context.Background(), resp.Token)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestValidateTokenPicksUpRoleChange(t *testing.T) {
	user := &models.User{ID: 1, Username: "jdoe", PasswordHash: hashOf(t, "secret123"),
		Role: models.RoleCollaborator, Active: true}
	repo := &mockAuthRepo{userByUsername: user}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "jdoe", Password: "secret123"})
	require.NoError(t, err)

	user.Role = models.RoleViewer
	claims, err := svc.ValidateToken(context.Background(), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleViewer, claims.Role)
}

func TestChangePasswordRequiresOldPassword(t *testing.T) {
	repo := &mockAuthRepo{userByUsername: &models.User{
		ID: 1, Username: "jdoe", PasswordHash: hashOf(t, "secret123"), Active: true,
	}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), 1, models.ChangePasswordRequest{
		OldPassword: "wrong", NewPassword: "newsecret",
	})
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
	assert.Empty(t, repo.updatedHash)

	err = svc.ChangePassword(context.Background(), 1, models.ChangePasswordRequest{
		OldPassword: "secret123", NewPassword: "newsecret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, repo.updatedHash)
}
