/*
config.go - Server configuration

PURPOSE:
  Resolves server settings from three layers, later layers winning:
  1. Built-in defaults
  2. Environment, including a .env file loaded with godotenv (a real
     environment variable is never overwritten by .env)
  3. Command-line flags

ENVIRONMENT:
  PORT             HTTP port (default 8080)
  DATABASE_URL     SQLite path, ":memory:", or postgres:// URL
                   (default tuition.db)
  ALLOWED_ORIGINS  Comma-separated CORS origins
  APP_ENV          "development" (default) or "production"

FLAGS:
  -port, -db, -origins override PORT, DATABASE_URL, ALLOWED_ORIGINS.
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Port           int
	DatabaseURL    string
	AllowedOrigins []string
	Env            string
}

// IsProduction reports whether dev-only endpoints must be disabled.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// Load reads ./.env if present, then the environment, then args.
func Load(args []string) (Config, error) {
	return load(".env", args)
}

func load(envFile string, args []string) (Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", envFile, err)
	}

	cfg := Config{
		Port:        8080,
		DatabaseURL: getEnv("DATABASE_URL", "tuition.db"),
		Env:         getEnv("APP_ENV", EnvDevelopment),
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Port = port
	}
	origins := os.Getenv("ALLOWED_ORIGINS")

	fset := flag.NewFlagSet("server", flag.ContinueOnError)
	fset.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fset.StringVar(&cfg.DatabaseURL, "db", cfg.DatabaseURL, `SQLite path, ":memory:", or postgres:// URL`)
	fset.StringVar(&origins, "origins", origins, "Comma-separated CORS origins")
	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	cfg.AllowedOrigins = splitList(origins)

	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port out of range: %d", cfg.Port)
	}
	if cfg.Env != EnvDevelopment && cfg.Env != EnvProduction {
		return Config{}, fmt.Errorf("unknown APP_ENV %q", cfg.Env)
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
