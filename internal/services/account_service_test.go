package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"walletwatch/internal/models"
	pkgauth "walletwatch/pkg/auth"
)

func TestUpdateUsernameTrimsWhitespace(t *testing.T) {
	var gotUsername string
	repo := &MockAdminUserRepository{
		UpdateUsernameFunc: func(ctx context.Context, id, username string) error {
			gotUsername = username
			return nil
		},
	}
	svc := NewAccountService(repo, newTestLogger())

	err := svc.UpdateUsername(context.Background(), "admin_1", "  root  ")

	require.NoError(t, err)
	assert.Equal(t, "root", gotUsername)
}

func TestUpdateUsernameEmptyRejected(t *testing.T) {
	svc := NewAccountService(&MockAdminUserRepository{}, newTestLogger())

	err := svc.UpdateUsername(context.Background(), "admin_1", "   ")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUpdateUsernameTakenSurfacesConflict(t *testing.T) {
	repo := &MockAdminUserRepository{
		UpdateUsernameFunc: func(ctx context.Context, id, username string) error {
			return models.ErrConflict
		},
	}
	svc := NewAccountService(repo, newTestLogger())

	err := svc.UpdateUsername(context.Background(), "admin_1", "taken")

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestUpdateUsernameRepoFailureIsInternal(t *testing.T) {
	repo := &MockAdminUserRepository{
		UpdateUsernameFunc: func(ctx context.Context, id, username string) error {
			return errors.New("connection reset")
		},
	}
	svc := NewAccountService(repo, newTestLogger())

	err := svc.UpdateUsername(context.Background(), "admin_1", "root")

	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestUpdatePasswordWrongCurrentPassword(t *testing.T) {
	admin := NewTestAdmin("admin_1", "root", testPasswordHash)
	repo := &MockAdminUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.AdminUser, error) {
			return admin, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id, passwordHash string) error {
			t.Fatal("password must not change when the current one is wrong")
			return nil
		},
	}
	svc := NewAccountService(repo, newTestLogger())

	err := svc.UpdatePassword(context.Background(), "admin_1", "not-the-password", "NewPassword456!")

	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestUpdatePasswordWeakNewPasswordRejected(t *testing.T) {
	admin := NewTestAdmin("admin_1", "root", testPasswordHash)
	repo := &MockAdminUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.AdminUser, error) {
			return admin, nil
		},
	}
	svc := NewAccountService(repo, newTestLogger())

	err := svc.UpdatePassword(context.Background(), "admin_1", testPassword, "short")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUpdatePasswordSuccessStoresNewHash(t *testing.T) {
	admin := NewTestAdmin("admin_1", "root", testPasswordHash)
	var gotHash string
	repo := &MockAdminUserRepository{
		GetByIDFunc: func(ctx context.Context, id string) (*models.AdminUser, error) {
			return admin, nil
		},
		UpdatePasswordFunc: func(ctx context.Context, id, passwordHash string) error {
			gotHash = passwordHash
			return nil
		},
	}
	svc := NewAccountService(repo, newTestLogger())

	const newPassword = "NewPassword456!"
	err := svc.UpdatePassword(context.Background(), "admin_1", testPassword, newPassword)

	require.NoError(t, err)
	require.NotEmpty(t, gotHash)
	assert.NotEqual(t, testPasswordHash, gotHash)
	assert.NoError(t, pkgauth.ComparePassword(gotHash, newPassword))
}

func TestUpdatePasswordUnknownAdmin(t *testing.T) {
	svc := NewAccountService(&MockAdminUserRepository{}, newTestLogger())

	err := svc.UpdatePassword(context.Background(), "ghost", testPassword, "NewPassword456!")

	assert.ErrorIs(t, err, models.ErrNotFound)
}
