// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/goose-tap/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username must be 1-50 characters")
	ErrInvalidPassword    = errors.New("password must be 8-100 characters")
)

// UserStore is the persistence the credential layer needs.
type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByID(ctx context.Context, id string) (models.User, error)
	CreateUser(ctx context.Context, u models.User) error
}

// Config controls token issuing and role assignment.
type Config struct {
	Secret         string
	TokenTTL       time.Duration
	AdminUsername  string
	GhostUsernames []string
}

// Claims are the JWT claims carried by an access token. Subject is the user ID.
type Claims struct {
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service logs participants in and resolves bearer tokens back to users.
type Service struct {
	users UserStore
	cfg   Config
	now   func() time.Time
}

func NewService(users UserStore, cfg Config) *Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &Service{users: users, cfg: cfg, now: time.Now}
}

// Login signs an existing user in or registers a new one.
// New users get their role from RoleFor.
func (s *Service) Login(ctx context.Context, username, password string) (models.LoginResponse, error) {
	if n := utf8.RuneCountInString(username); n < 1 || n > 50 {
		return models.LoginResponse{}, ErrInvalidUsername
	}
	if n := utf8.RuneCountInString(password); n < 8 || n > 100 {
		return models.LoginResponse{}, ErrInvalidPassword
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		if !CheckPassword(user.PasswordHash, password) {
			return models.LoginResponse{}, ErrInvalidCredentials
		}
	case errors.Is(err, ErrUserNotFound):
		user, err = s.register(ctx, username, password)
		if err != nil {
			return models.LoginResponse{}, err
		}
	default:
		return models.LoginResponse{}, fmt.Errorf("failed to load user: %w", err)
	}

	token, err := IssueToken(user, s.cfg.Secret, s.cfg.TokenTTL, s.now())
	if err != nil {
		return models.LoginResponse{}, err
	}

	return models.LoginResponse{
		AccessToken: token,
		User: models.UserInfo{
			ID:       user.ID,
			Username: user.Username,
			Role:     user.Role,
		},
	}, nil
}

func (s *Service) register(ctx context.Context, username, password string) (models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         s.RoleFor(username),
		CreatedAt:    s.now().UTC(),
	}

	err = s.users.CreateUser(ctx, user)
	if errors.Is(err, ErrUsernameTaken) {
		// Lost a registration race; the other request's password decides.
		existing, err := s.users.GetUserByUsername(ctx, username)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to load user: %w", err)
		}
		if !CheckPassword(existing.PasswordHash, password) {
			return models.User{}, ErrInvalidCredentials
		}
		return existing, nil
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// RoleFor assigns a role to a new username.
func (s *Service) RoleFor(username string) models.Role {
	if s.cfg.AdminUsername != "" && username == s.cfg.AdminUsername {
		return models.RoleAdmin
	}
	for _, g := range s.cfg.GhostUsernames {
		if username == g {
			return models.RoleGhost
		}
	}
	return models.RolePlayer
}

// Authenticate verifies a bearer token and reloads its user, so tokens of
// deleted users stop working.
func (s *Service) Authenticate(ctx context.Context, token string) (models.User, error) {
	claims, err := ParseToken(token, s.cfg.Secret, s.now())
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return models.User{}, ErrInvalidToken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs an HS256 access token for user.
func IssueToken(user models.User, secret string, ttl time.Duration, now time.Time) (string, error) {
	claims := Claims{
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature, algorithm and expiry of an access token.
func ParseToken(tokenString, secret string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
