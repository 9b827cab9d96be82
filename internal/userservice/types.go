package userservice

import (
	"database/sql"
	"time"

	"github.com/blogvoci/blogvoci/internal/common"
)

// Role is a closed two-valued enumeration. Authorization decisions compare
// against it directly instead of inspecting free-form attributes.
type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

const AccessTokenTime time.Duration = 7 * 24 * time.Hour

var AnonymousUser = User{}

type UserService struct {
	m  *UserModel
	mb common.MessageProducer
	c  *common.Cache

	secret   string
	tokenTTL time.Duration

	maxLoginAttempts int
	lockoutWindow    time.Duration
}

type UserModel struct {
	db *sql.DB
}

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  Password  `json:"-"`
	Role      Role      `json:"role"`
	Blocked   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"-"`
}

type Password struct {
	Plain string `json:"-"`
	hash  []byte `json:"-"`
}

// AccessToken is the signed credential returned on registration and login.
type AccessToken struct {
	Token  string    `json:"token"`
	Expiry time.Time `json:"expiry"`
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
