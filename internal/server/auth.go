package server

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/qanoonhq/qanoon/internal/access"
	"github.com/qanoonhq/qanoon/internal/qerrors"
)

// User is one account in the demo credential table.
type User struct {
	Username string
	Password string
	FullName string
	Roles    []string
}

// demoUsers is the in-memory account table. One account per role tier so
// the access gates can be exercised without a user store.
var demoUsers = map[string]User{
	"admin": {
		Username: "admin",
		Password: "admin123",
		FullName: "System Administrator",
		Roles:    []string{access.RoleAdmin, access.RoleLegal, access.RoleStaff},
	},
	"legal": {
		Username: "legal",
		Password: "legal123",
		FullName: "Legal Advisor",
		Roles:    []string{access.RoleLegal, access.RoleStaff},
	},
	"staff": {
		Username: "staff",
		Password: "staff123",
		FullName: "General Staff",
		Roles:    []string{access.RoleStaff},
	},
}

// Authenticator verifies credentials and issues HS256 session tokens
// carrying the subject and its declared roles.
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

// NewAuthenticator creates an authenticator with the given signing secret
// and token lifetime.
func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	return &Authenticator{secret: []byte(secret), ttl: ttl}
}

// Login checks credentials against the account table and returns a
// signed token. Unknown user and wrong password are indistinguishable to
// the caller.
func (a *Authenticator) Login(username, password string) (string, *User, error) {
	user, ok := demoUsers[username]
	if !ok || user.Password != password {
		return "", nil, qerrors.New(qerrors.CodeUnauthorized, "incorrect username or password")
	}

	claims := jwt.MapClaims{
		"sub":   user.Username,
		"roles": user.Roles,
		"exp":   time.Now().Add(a.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", nil, qerrors.Internal(err, "sign token")
	}
	return signed, &user, nil
}

// Verify parses a bearer token and returns the subject and role claims.
func (a *Authenticator) Verify(tokenStr string) (string, []string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, qerrors.New(qerrors.CodeUnauthorized, "unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return "", nil, qerrors.New(qerrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", nil, qerrors.New(qerrors.CodeUnauthorized, "invalid claims")
	}
	sub, _ := claims["sub"].(string)

	var roles []string
	if raw, ok := claims["roles"].([]any); ok {
		for _, r := range raw {
			if s, ok := r.(string); ok {
				roles = append(roles, s)
			}
		}
	}
	if sub == "" || len(roles) == 0 {
		return "", nil, qerrors.New(qerrors.CodeUnauthorized, "token missing subject or roles")
	}
	return sub, roles, nil
}
