package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/blogvoci/blogvoci/internal/common"
)

var (
	ErrAuthenticationFailure = errors.New("invalid email or password")
	ErrAccountBlocked        = errors.New("account blocked by admin")
	ErrTooManyAttempts       = errors.New("too many login attempts")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache, secret string, tokenTTL time.Duration, maxLoginAttempts int, lockoutWindow time.Duration) *UserService {
	if tokenTTL <= 0 {
		tokenTTL = AccessTokenTime
	}

	return &UserService{
		m:                newUserModel(db),
		mb:               mb,
		c:                c,
		secret:           secret,
		tokenTTL:         tokenTTL,
		maxLoginAttempts: maxLoginAttempts,
		lockoutWindow:    lockoutWindow,
	}
}

// CreateUser registers a new account with the default member role, issues a
// signed access token for it and publishes a user.created event.
func (s *UserService) CreateUser(ctx context.Context, name, email, password string) (*User, *AccessToken, error) {
	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	u := User{
		Name:     name,
		Email:    email,
		Password: Password{Plain: password},
	}

	err := u.Password.set(u.Password.Plain)
	if err != nil {
		return nil, nil, err
	}

	err = s.m.insert(ctx, &u)
	if err != nil {
		return nil, nil, err
	}

	token, err := newAccessToken(s.secret, u.ID, s.tokenTTL)
	if err != nil {
		return nil, nil, err
	}

	data := struct {
		Name  string
		Email string
	}{
		Name:  u.Name,
		Email: u.Email,
	}

	eventData, err := json.Marshal(data)
	if err != nil {
		return nil, nil, err
	}

	err = s.mb.Publish(ctx, eventData, common.UserCreatedKey, common.UserExchange)
	if err != nil {
		return nil, nil, err
	}

	return &u, token, nil
}

// LoginUser verifies the credentials and returns a fresh access token. An
// unknown email and a wrong password produce the same failure so accounts
// cannot be enumerated. Repeated failures inside the lockout window reject
// further attempts before any credential check runs.
func (s *UserService) LoginUser(ctx context.Context, email, password string) (*User, *AccessToken, error) {
	v := common.NewValidator()
	v.Check(email != "", "email", "must be provided")
	v.Check(password != "", "password", "must be provided")
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	if s.lockedOut(email) {
		return nil, nil, ErrTooManyAttempts
	}

	user, err := s.m.getByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			s.recordFailedAttempt(email)
			return nil, nil, ErrAuthenticationFailure
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.compare(password)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		s.recordFailedAttempt(email)
		return nil, nil, ErrAuthenticationFailure
	}

	if user.Blocked {
		return nil, nil, ErrAccountBlocked
	}

	s.clearFailedAttempts(email)

	token, err := newAccessToken(s.secret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// GetUserByAccessToken resolves a bearer token to the live user record. The
// user row is re-read on every call, so a block takes effect on the next
// request even though the token itself stays valid until expiry.
func (s *UserService) GetUserByAccessToken(ctx context.Context, token string) (*User, error) {
	id, err := parseAccessToken(s.secret, token)
	if err != nil {
		return nil, err
	}

	return s.m.getByID(ctx, id)
}

func (s *UserService) GetUserByID(ctx context.Context, id int) (*User, error) {
	v := common.NewValidator()
	validateInt(v, id, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	return s.m.getByID(ctx, id)
}

// ToggleBlock flips the block flag of the target account and reports the
// resulting state. Already-issued tokens are not revoked.
func (s *UserService) ToggleBlock(ctx context.Context, targetID int) (bool, error) {
	v := common.NewValidator()
	validateInt(v, targetID, "id")
	if !v.Valid() {
		return false, v.ValidationError()
	}

	return s.m.toggleBlock(ctx, targetID)
}

func (s *UserService) lockedOut(email string) bool {
	if s.c == nil || s.maxLoginAttempts <= 0 {
		return false
	}

	value, ok := s.c.Get(common.CacheKeyLoginAttempts(email))
	if !ok {
		return false
	}

	attempts, ok := value.(int)
	return ok && attempts >= s.maxLoginAttempts
}

func (s *UserService) recordFailedAttempt(email string) {
	if s.c == nil || s.maxLoginAttempts <= 0 {
		return
	}

	key := common.CacheKeyLoginAttempts(email)

	attempts := 0
	if value, ok := s.c.Get(key); ok {
		if n, ok := value.(int); ok {
			attempts = n
		}
	}

	s.c.Set(key, attempts+1, s.lockoutWindow)
}

func (s *UserService) clearFailedAttempts(email string) {
	if s.c == nil {
		return
	}

	s.c.Delete(common.CacheKeyLoginAttempts(email))
}
