package userservice

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blogvoci/blogvoci/internal/common"
)

const (
	testName     = "Test User"
	testEmail    = "testuser@example.com"
	testPassword = "TestPassword123!"
)

func setupTestEnvironment(t *testing.T) (*UserService, *sql.DB, func() error, error) {
	db := common.TestDB("file://../../migrations", t)
	connURL := common.TestRabbitMQ(t)
	mb, err := common.NewMessageBroker(connURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not create message broker: %w", err)
	}

	err = common.SetupUserExchange(mb)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("could not setup user exchange: %w", err)
	}

	cache := common.NewCache(5*time.Minute, 10*time.Minute)

	cleanup := func() error {
		_, err := db.Exec("DELETE FROM users")
		if err != nil {
			return err
		}

		cache.Flush()

		return nil
	}

	return NewUserService(db, mb, cache, "test-secret", time.Hour, 3, 5*time.Minute), db, cleanup, nil
}

func TestCreateUser(t *testing.T) {
	s, db, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	testCases := []struct {
		name        string
		userName    string
		email       string
		password    string
		expectedErr error
	}{
		{
			name:        "valid user",
			userName:    testName,
			email:       testEmail,
			password:    testPassword,
			expectedErr: nil,
		},
		{
			name:        "empty name",
			userName:    "",
			email:       testEmail,
			password:    testPassword,
			expectedErr: common.ValidationError{Errors: map[string]string{"name": "must be provided"}},
		},
		{
			name:        "invalid email",
			userName:    testName,
			email:       "not-an-email",
			password:    testPassword,
			expectedErr: common.ValidationError{Errors: map[string]string{"email": "must be a valid email address"}},
		},
		{
			name:        "weak password",
			userName:    testName,
			email:       testEmail,
			password:    "password",
			expectedErr: common.ValidationError{Errors: map[string]string{"password": "must be between 8 and 72 characters long and contain at least one uppercase letter, one lowercase letter, one number, and one symbol"}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			user, token, err := s.CreateUser(ctx, tc.userName, tc.email, tc.password)
			assert.Equal(t, tc.expectedErr, err)

			var count int

			if err == nil {
				assert.NotNil(t, user)
				assert.NotZero(t, user.ID)
				assert.Equal(t, RoleMember, user.Role)
				assert.NotNil(t, token)
				assert.NotEmpty(t, token.Token)

				err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 1, count)
			} else {
				err = db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
				assert.NoError(t, err)
				assert.Equal(t, 0, count)
			}

			t.Cleanup(func() {
				err := cleanup()
				assert.NoError(t, err)
			})
		})
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s, _, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	ctx := context.Background()

	_, _, err = s.CreateUser(ctx, testName, testEmail, testPassword)
	assert.NoError(t, err)

	_, _, err = s.CreateUser(ctx, "Other User", testEmail, testPassword)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestLoginUser(t *testing.T) {
	s, db, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	testCases := []struct {
		name        string
		setup       func(ctx context.Context) error
		email       string
		password    string
		expectedErr error
	}{
		{
			name:        "valid credentials",
			email:       testEmail,
			password:    testPassword,
			expectedErr: nil,
		},
		{
			name:        "wrong password",
			email:       testEmail,
			password:    "WrongPassword123!",
			expectedErr: ErrAuthenticationFailure,
		},
		{
			name:        "unknown email",
			email:       "nobody@example.com",
			password:    testPassword,
			expectedErr: ErrAuthenticationFailure,
		},
		{
			name: "blocked account",
			setup: func(ctx context.Context) error {
				_, err := db.ExecContext(ctx, "UPDATE users SET blocked = true WHERE email = $1", testEmail)
				return err
			},
			email:       testEmail,
			password:    testPassword,
			expectedErr: ErrAccountBlocked,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_, _, err := s.CreateUser(ctx, testName, testEmail, testPassword)
			assert.NoError(t, err)

			if tc.setup != nil {
				err := tc.setup(ctx)
				assert.NoError(t, err)
			}

			user, token, err := s.LoginUser(ctx, tc.email, tc.password)
			assert.Equal(t, tc.expectedErr, err)

			if err == nil {
				assert.NotNil(t, user)
				assert.NotNil(t, token)
				assert.NotEmpty(t, token.Token)
			}

			t.Cleanup(func() {
				err := cleanup()
				assert.NoError(t, err)
			})
		})
	}
}

func TestLoginUserLockout(t *testing.T) {
	s, _, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	ctx := context.Background()

	_, _, err = s.CreateUser(ctx, testName, testEmail, testPassword)
	assert.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, _, err = s.LoginUser(ctx, testEmail, "WrongPassword123!")
		assert.ErrorIs(t, err, ErrAuthenticationFailure)
	}

	// the lockout rejects even the correct password once the limit is hit
	_, _, err = s.LoginUser(ctx, testEmail, testPassword)
	assert.ErrorIs(t, err, ErrTooManyAttempts)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestGetUserByAccessToken(t *testing.T) {
	s, db, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	ctx := context.Background()

	user, token, err := s.CreateUser(ctx, testName, testEmail, testPassword)
	assert.NoError(t, err)

	got, err := s.GetUserByAccessToken(ctx, token.Token)
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.Email, got.Email)

	_, err = s.GetUserByAccessToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// the token outlives the account, but the lookup does not
	_, err = db.Exec("DELETE FROM users WHERE id = $1", user.ID)
	assert.NoError(t, err)

	_, err = s.GetUserByAccessToken(ctx, token.Token)
	assert.ErrorIs(t, err, ErrNotFound)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}

func TestToggleBlock(t *testing.T) {
	s, _, cleanup, err := setupTestEnvironment(t)
	assert.NoError(t, err)

	ctx := context.Background()

	user, _, err := s.CreateUser(ctx, testName, testEmail, testPassword)
	assert.NoError(t, err)

	blocked, err := s.ToggleBlock(ctx, user.ID)
	assert.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = s.ToggleBlock(ctx, user.ID)
	assert.NoError(t, err)
	assert.False(t, blocked)

	_, err = s.ToggleBlock(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	t.Cleanup(func() {
		err := cleanup()
		assert.NoError(t, err)
	})
}
