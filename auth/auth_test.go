// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/goose-tap/models"
)

type memUsers struct {
	mu     sync.Mutex
	byName map[string]models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byName: make(map[string]models.User)}
}

func (m *memUsers) GetUserByUsername(_ context.Context, username string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byName[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memUsers) GetUserByID(_ context.Context, id string) (models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byName {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (m *memUsers) CreateUser(_ context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byName[u.Username]; ok {
		return ErrUsernameTaken
	}
	m.byName[u.Username] = u
	return nil
}

func newTestService() (*Service, *memUsers) {
	users := newMemUsers()
	return NewService(users, Config{
		Secret:         "test-secret",
		TokenTTL:       time.Hour,
		AdminUsername:  "admin",
		GhostUsernames: []string{"Никита"},
	}), users
}

func TestRoleFor(t *testing.T) {
	svc, _ := newTestService()

	tests := []struct {
		username string
		want     models.Role
	}{
		{"admin", models.RoleAdmin},
		{"Никита", models.RoleGhost},
		{"никита", models.RolePlayer},
		{"Admin", models.RolePlayer},
		{"goosefan", models.RolePlayer},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			if got := svc.RoleFor(tt.username); got != tt.want {
				t.Errorf("RoleFor(%q) = %s, want %s", tt.username, got, tt.want)
			}
		})
	}
}

func TestLogin_RegisterAndReturn(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	first, err := svc.Login(ctx, "Никита", "password123")
	if err != nil {
		t.Fatal(err)
	}
	if first.User.Role != models.RoleGhost {
		t.Errorf("role = %s, want ghost", first.User.Role)
	}
	if stored := users.byName["Никита"]; stored.PasswordHash == "password123" || stored.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	second, err := svc.Login(ctx, "Никита", "password123")
	if err != nil {
		t.Fatal(err)
	}
	if second.User.ID != first.User.ID {
		t.Error("second login should return the same user")
	}

	if _, err := svc.Login(ctx, "Никита", "wrongpassword"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLogin_Validation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"empty username", "", "password123", ErrInvalidUsername},
		{"long username", strings.Repeat("a", 51), "password123", ErrInvalidUsername},
		{"50 cyrillic runes", strings.Repeat("ж", 50), "password123", nil},
		{"short password", "alice", "1234567", ErrInvalidPassword},
		{"long password", "alice", strings.Repeat("p", 101), ErrInvalidPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.want) {
				t.Errorf("Login() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAuthenticate(t *testing.T) {
	svc, users := newTestService()
	ctx := context.Background()

	resp, err := svc.Login(ctx, "alice", "password123")
	if err != nil {
		t.Fatal(err)
	}

	user, err := svc.Authenticate(ctx, resp.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if user.Username != "alice" {
		t.Errorf("authenticated %s, want alice", user.Username)
	}

	// Token of a user that no longer exists
	delete(users.byName, "alice")
	if _, err := svc.Authenticate(ctx, resp.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	user := models.User{ID: "u1", Username: "alice", Role: models.RolePlayer}

	token, err := IssueToken(user, "secret", time.Hour, now)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseToken(token, "secret", now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "u1" || claims.Role != models.RolePlayer {
		t.Errorf("unexpected claims %+v", claims)
	}

	if _, err := ParseToken(token, "other-secret", now); !errors.Is(err, ErrInvalidToken) {
		t.Error("wrong secret should be rejected")
	}
	if _, err := ParseToken(token, "secret", now.Add(2*time.Hour)); !errors.Is(err, ErrInvalidToken) {
		t.Error("expired token should be rejected")
	}
	if _, err := ParseToken("not-a-jwt", "secret", now); !errors.Is(err, ErrInvalidToken) {
		t.Error("garbage should be rejected")
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	now := time.Now()
	claims := Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}

	// HS512 with the right secret is still not accepted
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ParseToken(token, "secret", now); !errors.Is(err, ErrInvalidToken) {
		t.Error("HS512 token should be rejected")
	}

	// No expiry
	claims.ExpiresAt = nil
	token, _ = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if _, err := ParseToken(token, "secret", now); !errors.Is(err, ErrInvalidToken) {
		t.Error("token without expiry should be rejected")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatal(err)
	}
	if !CheckPassword(hash, "password123") {
		t.Error("correct password rejected")
	}
	if CheckPassword(hash, "password124") {
		t.Error("wrong password accepted")
	}
}
