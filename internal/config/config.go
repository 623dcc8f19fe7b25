// Package config loads runtime settings for the floor tracker server.
//
// Settings come from environment variables. An optional .env file in the
// working directory is loaded first (see LoadDotEnv) so local development
// doesn't need exported shell variables; real environment variables always
// win over the file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every setting the server needs.
type Config struct {
	Port        int
	DBPath      string // ":memory:" keeps accounts for the process lifetime only
	ExportDir   string // where service_data_<username>.xlsx files are written
	TemplateDir string
	StaticDir   string

	// SessionSecret signs the session cookie. When it is empty at load time a
	// random one is generated, so sessions do not survive a restart.
	SessionSecret       string
	SessionSecretRandom bool

	CSRFKey      []byte // 32 bytes
	CSRFDisabled bool

	// SecureCookies marks cookies Secure and tells the CSRF layer the site is
	// served over HTTPS.
	SecureCookies bool

	LogLevel slog.Level
}

// Defaults returns the development defaults.
func Defaults() Config {
	return Config{
		Port:        8080,
		DBPath:      ":memory:",
		ExportDir:   ".",
		TemplateDir: "web/templates",
		StaticDir:   "web/static",
		LogLevel:    slog.LevelInfo,
	}
}

// LoadDotEnv reads .env into the process environment if the file exists.
// Variables that are already set are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: loading %s: %w", path, err)
	}
	return nil
}

// Load builds a Config from Defaults overlaid with environment variables.
// getenv is os.Getenv in production; tests pass a map lookup.
//
// Recognized variables:
//
//	PORT            listen port (8080)
//	DB_PATH         SQLite path (":memory:")
//	EXPORT_DIR      directory for spreadsheet exports (".")
//	TEMPLATE_DIR    HTML templates ("web/templates")
//	STATIC_DIR      static assets ("web/static")
//	SESSION_SECRET  HMAC key for the session cookie, at least 16 chars (random)
//	CSRF_KEY        64 hex chars = 32 bytes (random)
//	CSRF_DISABLED   "true" turns CSRF protection off
//	SECURE_COOKIES  "true" when served over HTTPS
//	LOG_LEVEL       debug | info | warn | error (info)
func Load(getenv func(string) string) (Config, error) {
	cfg := Defaults()

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("config: invalid PORT %q", v)
		}
		cfg.Port = port
	}

	if v := getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := getenv("EXPORT_DIR"); v != "" {
		cfg.ExportDir = v
	}
	if v := getenv("TEMPLATE_DIR"); v != "" {
		cfg.TemplateDir = v
	}
	if v := getenv("STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}

	cfg.SessionSecret = getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		secret, err := randomHex(32)
		if err != nil {
			return Config{}, fmt.Errorf("config: generating session secret: %w", err)
		}
		cfg.SessionSecret = secret
		cfg.SessionSecretRandom = true
	} else if len(cfg.SessionSecret) < 16 {
		return Config{}, fmt.Errorf("config: SESSION_SECRET must be at least 16 characters")
	}

	if v := getenv("CSRF_KEY"); v != "" {
		key, err := hex.DecodeString(v)
		if err != nil || len(key) != 32 {
			return Config{}, fmt.Errorf("config: CSRF_KEY must be 64 hex characters")
		}
		cfg.CSRFKey = key
	} else {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return Config{}, fmt.Errorf("config: generating CSRF key: %w", err)
		}
		cfg.CSRFKey = key
	}

	var err error
	if cfg.CSRFDisabled, err = parseBool(getenv, "CSRF_DISABLED"); err != nil {
		return Config{}, err
	}
	if cfg.SecureCookies, err = parseBool(getenv, "SECURE_COOKIES"); err != nil {
		return Config{}, err
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(strings.ToUpper(v))); err != nil {
			return Config{}, fmt.Errorf("config: invalid LOG_LEVEL %q", v)
		}
	}

	return cfg, nil
}

func parseBool(getenv func(string) string, name string) (bool, error) {
	v := getenv(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: invalid %s %q", name, v)
	}
	return b, nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
