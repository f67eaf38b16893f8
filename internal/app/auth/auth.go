// Package auth issues and validates the bearer tokens used by the HTTP API.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCredentials is returned when a login attempt fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidToken is returned when a presented token cannot be verified.
var ErrInvalidToken = errors.New("invalid token")

// User is a back-office operator allowed to log in.
type User struct {
	Username string
	Password string
	Role     string
}

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Manager issues HS256 tokens for a static set of users.
type Manager struct {
	secret []byte
	ttl    time.Duration
	users  map[string]User
}

// NewManager creates a token manager. A zero ttl defaults to 12 hours.
func NewManager(secret string, ttl time.Duration, users []User) (*Manager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("auth secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	byName := make(map[string]User, len(users))
	for _, u := range users {
		if u.Username == "" || u.Password == "" {
			return nil, fmt.Errorf("user entries need a username and password")
		}
		if _, dup := byName[u.Username]; dup {
			return nil, fmt.Errorf("duplicate user %s", u.Username)
		}
		byName[u.Username] = u
	}
	return &Manager{
		secret: []byte(secret),
		ttl:    ttl,
		users:  byName,
	}, nil
}

// Login verifies the credentials and returns a signed token.
func (m *Manager) Login(username, password string) (string, error) {
	u, ok := m.users[username]
	if !ok || u.Password != password {
		return "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := Claims{
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate parses and verifies a token, returning its claims.
func (m *Manager) Validate(tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}
