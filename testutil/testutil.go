// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/goose-tap/auth"
	"github.com/danielhkuo/goose-tap/cliparse"
	"github.com/danielhkuo/goose-tap/db"
	"github.com/danielhkuo/goose-tap/models"
)

// TestSecret signs tokens in tests
const TestSecret = "test-jwt-secret"

// TestPassword is the password of every user made by CreateTestUser
const TestPassword = "password123"

// bcrypt is slow on purpose, so every test user shares one hash
var (
	hashOnce    sync.Once
	testHash    string
	testHashErr error
)

// SetupTestDB creates a fresh SQLite database with the full schema in a
// temporary directory. It is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "goose-tap.db")
	conn, err := db.Open(db.TypeSQLite, "file:"+path)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             3000,
		DatabaseURL:      "file::memory:",
		DatabaseType:     db.TypeSQLite,
		FrontendURL:      "http://localhost:5173",
		JWTSecret:        TestSecret,
		TokenTTL:         time.Hour,
		AdminUsername:    "admin",
		GhostUsernames:   []string{"Никита"},
		RoundDuration:    60 * time.Second,
		BonusDivisor:     11,
		BonusPoints:      10,
		RegularPoints:    1,
		GracePeriod:      time.Second,
		TapsPerSecond:    10,
		MaxScheduleAhead: 24 * time.Hour,
	}
}

// CreateTestUser inserts a user with TestPassword and returns it
func CreateTestUser(t *testing.T, conn *sql.DB, username string, role models.Role) models.User {
	t.Helper()

	hashOnce.Do(func() {
		testHash, testHashErr = auth.HashPassword(TestPassword)
	})
	if testHashErr != nil {
		t.Fatalf("Failed to hash password: %v", testHashErr)
	}
	hash := testHash

	user := models.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	_, err := conn.Exec(`
		INSERT INTO app_user (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, user.ID, user.Username, user.PasswordHash, string(user.Role), user.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// CreateTestRound inserts a round with the given bounds and returns its ID
func CreateTestRound(t *testing.T, conn *sql.DB, start, end time.Time) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO round (id, start_time, end_time, total_taps, total_points, created_at)
		VALUES ($1, $2, $3, 0, 0, $4)
	`, id, start.UTC(), end.UTC(), time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test round: %v", err)
	}

	return id
}

// TokenFor issues a bearer token for user signed with TestSecret
func TokenFor(t *testing.T, user models.User) string {
	t.Helper()

	token, err := auth.IssueToken(user, TestSecret, time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return token
}

// AuthHeader returns the Authorization header for user
func AuthHeader(t *testing.T, user models.User) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + TokenFor(t, user)}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
