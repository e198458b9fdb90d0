// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/danielhkuo/goose-tap/auth"
	"github.com/danielhkuo/goose-tap/game"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	FrontendURL  string
	ConfigFile   string

	JWTSecret      string
	TokenTTL       time.Duration
	AdminUsername  string
	GhostUsernames []string

	RoundDuration    time.Duration
	BonusDivisor     int64
	BonusPoints      int64
	RegularPoints    int64
	GracePeriod      time.Duration
	TapsPerSecond    int
	MaxScheduleAhead time.Duration
}

// fileConfig mirrors the optional TOML config file. Secrets are not read
// from it.
type fileConfig struct {
	Server struct {
		Port        int    `toml:"port"`
		FrontendURL string `toml:"frontend_url"`
	} `toml:"server"`
	Database struct {
		URL  string `toml:"url"`
		Type string `toml:"type"`
	} `toml:"database"`
	Auth struct {
		TokenTTL       string   `toml:"token_ttl"`
		AdminUsername  string   `toml:"admin_username"`
		GhostUsernames []string `toml:"ghost_usernames"`
	} `toml:"auth"`
	Game struct {
		RoundDuration    int    `toml:"round_duration"`
		BonusDivisor     *int64 `toml:"bonus_divisor"`
		BonusPoints      *int64 `toml:"bonus_points"`
		RegularPoints    *int64 `toml:"regular_points"`
		GracePeriodMS    *int64 `toml:"grace_period_ms"`
		TapsPerSecond    int    `toml:"taps_per_second"`
		MaxScheduleAhead string `toml:"max_schedule_ahead"`
	} `toml:"game"`
}

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags builds the config. Precedence: CLI flag, environment,
// config file, default.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var roundSecs, graceMS, bonusPts, regularPts int64
	var ghosts, tokenTTL, maxAhead string

	fs := flag.NewFlagSet("goose-tap", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.StringVar(&cfg.FrontendURL, "frontend-url", "", "Allowed CORS origin")
	fs.StringVar(&cfg.ConfigFile, "c", "", "Optional TOML config file")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "JWT signing secret (prefer env)")
	fs.StringVar(&tokenTTL, "token-ttl", "", "Access token lifetime, e.g. 24h")
	fs.StringVar(&cfg.AdminUsername, "admin-username", "", "Username that registers as admin")
	fs.StringVar(&ghosts, "ghost-usernames", "", "Comma-separated usernames whose taps never score")

	// Game rules
	fs.Int64Var(&roundSecs, "round-duration", -1, "Round duration in seconds")
	fs.Int64Var(&cfg.BonusDivisor, "bonus-divisor", 0, "Every Nth tap in a round is a bonus tap")
	fs.Int64Var(&bonusPts, "bonus-points", -1, "Points for a bonus tap")
	fs.Int64Var(&regularPts, "regular-points", -1, "Points for a regular tap")
	fs.Int64Var(&graceMS, "grace-ms", -1, "Grace period after round end in milliseconds")
	fs.IntVar(&cfg.TapsPerSecond, "taps-per-second", 0, "Per-participant tap rate limit")
	fs.StringVar(&maxAhead, "max-ahead", "", "How far ahead a round may be scheduled, e.g. 24h")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.ConfigFile == "" {
		cfg.ConfigFile = os.Getenv("CONFIG_FILE")
	}
	var file fileConfig
	if cfg.ConfigFile != "" {
		data, err := os.ReadFile(cfg.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &file); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Fall back to environment variables, then the file, then defaults
	var err error
	if cfg.Port == 0 {
		if cfg.Port, err = envInt("PORT", file.Server.Port, 3000); err != nil {
			return Config{}, err
		}
	}
	cfg.DatabaseURL = firstNonEmpty(cfg.DatabaseURL, os.Getenv("DATABASE_URL"), file.Database.URL)
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}
	cfg.DatabaseType = firstNonEmpty(cfg.DatabaseType, os.Getenv("DATABASE_TYPE"), file.Database.Type, "sqlite")
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	cfg.FrontendURL = firstNonEmpty(cfg.FrontendURL, os.Getenv("FRONTEND_URL"), file.Server.FrontendURL, "http://localhost:5173")

	// Secrets - MUST be provided
	cfg.JWTSecret = firstNonEmpty(cfg.JWTSecret, os.Getenv("JWT_SECRET"))
	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET required")
	}

	if cfg.TokenTTL, err = parseDuration("JWT_TTL", firstNonEmpty(tokenTTL, os.Getenv("JWT_TTL"), file.Auth.TokenTTL, "24h")); err != nil {
		return Config{}, err
	}
	cfg.AdminUsername = firstNonEmpty(cfg.AdminUsername, os.Getenv("ADMIN_USERNAME"), file.Auth.AdminUsername, "admin")

	switch {
	case ghosts != "":
		cfg.GhostUsernames = splitList(ghosts)
	case os.Getenv("GHOST_USERNAMES") != "":
		cfg.GhostUsernames = splitList(os.Getenv("GHOST_USERNAMES"))
	case len(file.Auth.GhostUsernames) > 0:
		cfg.GhostUsernames = file.Auth.GhostUsernames
	default:
		cfg.GhostUsernames = []string{"Никита"}
	}

	if roundSecs < 0 {
		n, err := envInt("ROUND_DURATION", file.Game.RoundDuration, 60)
		if err != nil {
			return Config{}, err
		}
		roundSecs = int64(n)
	}
	if roundSecs <= 0 {
		return Config{}, errors.New("round duration must be positive")
	}
	cfg.RoundDuration = time.Duration(roundSecs) * time.Second

	if cfg.BonusDivisor == 0 {
		if cfg.BonusDivisor, err = envInt64("BONUS_TAP_DIVISOR", deref(file.Game.BonusDivisor, -1), 11); err != nil {
			return Config{}, err
		}
	}
	if cfg.BonusDivisor <= 0 {
		return Config{}, errors.New("bonus divisor must be positive")
	}

	if bonusPts < 0 {
		if bonusPts, err = envInt64("BONUS_POINTS", deref(file.Game.BonusPoints, -1), 10); err != nil {
			return Config{}, err
		}
	}
	if regularPts < 0 {
		if regularPts, err = envInt64("REGULAR_POINTS", deref(file.Game.RegularPoints, -1), 1); err != nil {
			return Config{}, err
		}
	}
	if graceMS < 0 {
		if graceMS, err = envInt64("GRACE_PERIOD_MS", deref(file.Game.GracePeriodMS, -1), 1000); err != nil {
			return Config{}, err
		}
	}
	if bonusPts < 0 || regularPts < 0 || graceMS < 0 {
		return Config{}, errors.New("points and grace period must not be negative")
	}
	cfg.BonusPoints = bonusPts
	cfg.RegularPoints = regularPts
	cfg.GracePeriod = time.Duration(graceMS) * time.Millisecond

	if cfg.TapsPerSecond == 0 {
		if cfg.TapsPerSecond, err = envInt("RATE_LIMIT_TAPS_PER_SECOND", file.Game.TapsPerSecond, 10); err != nil {
			return Config{}, err
		}
	}
	if cfg.TapsPerSecond <= 0 {
		return Config{}, errors.New("taps per second must be positive")
	}

	if cfg.MaxScheduleAhead, err = parseDuration("MAX_SCHEDULE_AHEAD", firstNonEmpty(maxAhead, os.Getenv("MAX_SCHEDULE_AHEAD"), file.Game.MaxScheduleAhead, "24h")); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Rules returns the contest settings carried by the config.
func (c Config) Rules() game.Rules {
	return game.Rules{
		RoundDuration:    c.RoundDuration,
		BonusDivisor:     c.BonusDivisor,
		BonusPoints:      c.BonusPoints,
		RegularPoints:    c.RegularPoints,
		GracePeriod:      c.GracePeriod,
		MaxScheduleAhead: c.MaxScheduleAhead,
	}
}

// Auth returns the credential-layer settings carried by the config.
func (c Config) Auth() auth.Config {
	return auth.Config{
		Secret:         c.JWTSecret,
		TokenTTL:       c.TokenTTL,
		AdminUsername:  c.AdminUsername,
		GhostUsernames: c.GhostUsernames,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func deref(p *int64, fallback int64) int64 {
	if p == nil {
		return fallback
	}
	return *p
}

// envInt reads key from the environment, else fromFile when set, else def.
func envInt(key string, fromFile, def int) (int, error) {
	if s := os.Getenv(key); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("invalid %s env variable", key)
		}
		return n, nil
	}
	if fromFile != 0 {
		return fromFile, nil
	}
	return def, nil
}

// envInt64 is envInt for int64 values where a negative fromFile means unset.
func envInt64(key string, fromFile, def int64) (int64, error) {
	if s := os.Getenv(key); s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s env variable", key)
		}
		return n, nil
	}
	if fromFile >= 0 {
		return fromFile, nil
	}
	return def, nil
}

func parseDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s duration %q", key, s)
	}
	return d, nil
}
