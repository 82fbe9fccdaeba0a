// Package config は環境変数と任意のTOMLファイルから設定を読み込む。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration

	// Server
	ServerPort      string
	ShutdownTimeout time.Duration

	// CORS
	CORSAllowedOrigins []string

	// Article
	EnforceArticleOwnership bool

	// Logging
	LogLevel string
}

// fileConfig はCONFIG_FILEで指定するTOMLファイルの構造。
// ファイルの値はデフォルトを上書きし、環境変数はファイルの値を上書きする。
type fileConfig struct {
	Port                    string        `toml:"port"`
	ShutdownTimeout         time.Duration `toml:"shutdown_timeout"`
	JWTExpiresIn            time.Duration `toml:"jwt_expires_in"`
	CORSAllowedOrigins      []string      `toml:"cors_allowed_origins"`
	EnforceArticleOwnership *bool         `toml:"enforce_article_ownership"`
	LogLevel                string        `toml:"log_level"`

	Database struct {
		URL             string        `toml:"url"`
		MaxOpenConns    int           `toml:"max_open_conns"`
		MaxIdleConns    int           `toml:"max_idle_conns"`
		ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	} `toml:"database"`
}

// DefaultAllowedOrigins はCORS_ALLOWED_ORIGINS未設定時に許可するオリジン。
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"https://knowvia-bd.web.app",
}

func defaults() *Config {
	return &Config{
		DBMaxOpenConns:     10,
		DBMaxIdleConns:     5,
		DBConnMaxLifetime:  30 * time.Minute,
		JWTExpiresIn:       2 * time.Hour,
		ServerPort:         "3000",
		ShutdownTimeout:    30 * time.Second,
		CORSAllowedOrigins: append([]string(nil), DefaultAllowedOrigins...),
		LogLevel:           "info",
	}
}

// Load はデフォルト値、CONFIG_FILE、環境変数の順にConfigを組み立てる。
// 必須項目が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.DatabaseURL = getEnvString("DATABASE_URL", cfg.DatabaseURL)
	cfg.JWTSecret = os.Getenv("JWT_SECRET_KEY")

	// Required fields
	var missing []string
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	if cfg.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET_KEY")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields
	cfg.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxLifetime = getEnvDuration("DB_CONN_MAX_LIFETIME", cfg.DBConnMaxLifetime)
	cfg.JWTExpiresIn = getEnvDuration("JWT_EXPIRES_IN", cfg.JWTExpiresIn)
	cfg.ServerPort = getEnvString("PORT", cfg.ServerPort)
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", cfg.CORSAllowedOrigins)
	cfg.EnforceArticleOwnership = getEnvBool("ENFORCE_ARTICLE_OWNERSHIP", cfg.EnforceArticleOwnership)
	cfg.LogLevel = getEnvString("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

// applyFile はTOMLファイルの値のうち指定されたものだけをcfgに反映する。
func applyFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if fc.Port != "" {
		cfg.ServerPort = fc.Port
	}
	if fc.ShutdownTimeout > 0 {
		cfg.ShutdownTimeout = fc.ShutdownTimeout
	}
	if fc.JWTExpiresIn > 0 {
		cfg.JWTExpiresIn = fc.JWTExpiresIn
	}
	if len(fc.CORSAllowedOrigins) > 0 {
		cfg.CORSAllowedOrigins = fc.CORSAllowedOrigins
	}
	if fc.EnforceArticleOwnership != nil {
		cfg.EnforceArticleOwnership = *fc.EnforceArticleOwnership
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.Database.URL != "" {
		cfg.DatabaseURL = fc.Database.URL
	}
	if fc.Database.MaxOpenConns > 0 {
		cfg.DBMaxOpenConns = fc.Database.MaxOpenConns
	}
	if fc.Database.MaxIdleConns > 0 {
		cfg.DBMaxIdleConns = fc.Database.MaxIdleConns
	}
	if fc.Database.ConnMaxLifetime > 0 {
		cfg.DBConnMaxLifetime = fc.Database.ConnMaxLifetime
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの環境変数を空要素を除いたスライスとして返す。
func getEnvList(key string, defaultVal []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	var list []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	if len(list) == 0 {
		return defaultVal
	}
	return list
}
