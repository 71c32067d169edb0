package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edukit/academia-api/internal/models"
	"github.com/edukit/academia-api/pkg/config"
	appErrors "github.com/edukit/academia-api/pkg/errors"
)

type fakeUsers struct {
	byUsername map[string]*models.User
	byID       map[string]*models.User
	created    *models.User
	passwords  map[string]string
	lastLogin  *time.Time
}

func (f *fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if user, ok := f.byUsername[username]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	if user, ok := f.byID[id]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUsers) Create(_ context.Context, user *models.User) error {
	user.ID = "user-new"
	f.created = user
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	if f.passwords == nil {
		f.passwords = map[string]string{}
	}
	f.passwords[id] = hash
	return nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, _ string, ts time.Time) error {
	f.lastLogin = &ts
	return nil
}

func jwtTestConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "test-secret", Expiration: time.Hour, Issuer: "academia-test"}
}

func seededUsers(t *testing.T, password string, active bool) *fakeUsers {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		ID:           "user-1",
		Username:     "cashier",
		PasswordHash: string(hash),
		Role:         models.RoleCashier,
		Active:       active,
	}
	return &fakeUsers{
		byUsername: map[string]*models.User{user.Username: user},
		byID:       map[string]*models.User{user.ID: user},
	}
}

func TestLoginIssuesValidToken(t *testing.T) {
	users := seededUsers(t, "s3cret", true)
	svc := NewAuthService(users, jwtTestConfig(), nil, nil)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "cashier", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, int64(3600), result.ExpiresIn)
	assert.Equal(t, models.RoleCashier, result.User.Role)
	require.NotNil(t, users.lastLogin)

	claims, err := svc.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleCashier, claims.Role)
}

func TestLoginWrongPasswordAndUnknownUserLookAlike(t *testing.T) {
	users := seededUsers(t, "s3cret", true)
	svc := NewAuthService(users, jwtTestConfig(), nil, nil)

	_, wrongPass := svc.Login(context.Background(), models.LoginRequest{Username: "cashier", Password: "nope"})
	_, unknown := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "nope"})

	require.Error(t, wrongPass)
	require.Error(t, unknown)
	assert.Equal(t, appErrors.FromError(wrongPass).Code, appErrors.FromError(unknown).Code)
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	users := seededUsers(t, "s3cret", false)
	svc := NewAuthService(users, jwtTestConfig(), nil, nil)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "cashier", Password: "s3cret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	users := seededUsers(t, "s3cret", true)
	svc := NewAuthService(users, jwtTestConfig(), nil, nil)

	result, err := svc.Login(context.Background(), models.LoginRequest{Username: "cashier", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(result.AccessToken + "x")
	require.Error(t, err)

	other := NewAuthService(users, config.JWTConfig{Secret: "other-secret", Expiration: time.Hour}, nil, nil)
	_, err = other.ValidateToken(result.AccessToken)
	require.Error(t, err)
}

func TestRegisterHashesPassword(t *testing.T) {
	users := &fakeUsers{byUsername: map[string]*models.User{}, byID: map[string]*models.User{}}
	svc := NewAuthService(users, jwtTestConfig(), nil, nil)

	info, err := svc.Register(context.Background(), models.RegisterUserRequest{
		Username: "teacher1",
		Password: "classroom",
		Role:     models.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTeacher, info.Role)
	require.NotNil(t, users.created)
	assert.NotEqual(t, "classroom", users.created.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.created.PasswordHash), []byte("classroom")))
}

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	users := seededUsers(t, "s3cret", true)
	svc := NewAuthService(users, jwtTestConfig(), nil, nil)

	_, err := svc.Register(context.Background(), models.RegisterUserRequest{
		Username: "cashier",
		Password: "whatever",
		Role:     models.RoleCashier,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateIdentifier.Code, appErrors.FromError(err).Code)
}

func TestChangePasswordVerifiesOldPassword(t *testing.T) {
	users := seededUsers(t, "old-pass", true)
	svc := NewAuthService(users, jwtTestConfig(), nil, nil)

	err := svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "new-pass",
	})
	require.Error(t, err)
	assert.Empty(t, users.passwords)

	err = svc.ChangePassword(context.Background(), "user-1", models.ChangePasswordRequest{
		OldPassword: "old-pass",
		NewPassword: "new-pass",
	})
	require.NoError(t, err)
	require.NotEmpty(t, users.passwords["user-1"])
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(users.passwords["user-1"]), []byte("new-pass")))
}
