package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultSecretKey is only acceptable outside production.
const DefaultSecretKey = "change-me-in-production-0123456789"

// Config holds application level configuration.
type Config struct {
	ProjectName    string
	Version        string
	Description    string
	APIPrefix      string
	AllowedOrigins []string
	DatabaseURL    string
	SecretKey      string
	Algorithm      string
	TokenTTL       time.Duration
	Environment    string
	Debug          bool
	ServerPort     string
	LogLevel       string
	LogFile        string
	BcryptCost     int
	HashWorkers    int
	SwaggerHost    string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PROJECT_NAME", "Item Hub")
	v.SetDefault("VERSION", "1.0.0")
	v.SetDefault("DESCRIPTION", "Items and users CRUD service")
	v.SetDefault("API_V1_STR", "/api/v1")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:8000")
	v.SetDefault("DATABASE_URL", "sqlite://./app.db")
	v.SetDefault("SECRET_KEY", DefaultSecretKey)
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("DEBUG", true)
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("HASH_CONCURRENCY", runtime.NumCPU())
	v.SetDefault("SWAGGER_HOST", "")
}

// Load reads .env (if present), the optional config file at path and the
// environment, in increasing order of precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		ProjectName:    v.GetString("PROJECT_NAME"),
		Version:        v.GetString("VERSION"),
		Description:    v.GetString("DESCRIPTION"),
		APIPrefix:      strings.TrimRight(v.GetString("API_V1_STR"), "/"),
		AllowedOrigins: parseOrigins(v.GetString("ALLOWED_ORIGINS")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		SecretKey:      v.GetString("SECRET_KEY"),
		Algorithm:      strings.ToUpper(v.GetString("ALGORITHM")),
		TokenTTL:       time.Duration(v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")) * time.Minute,
		Environment:    strings.ToLower(v.GetString("ENVIRONMENT")),
		Debug:          v.GetBool("DEBUG"),
		ServerPort:     v.GetString("SERVER_PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFile:        v.GetString("LOG_FILE"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		HashWorkers:    v.GetInt("HASH_CONCURRENCY"),
		SwaggerHost:    v.GetString("SWAGGER_HOST"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("unsupported ALGORITHM %q", c.Algorithm)
	}
	if c.TokenTTL < 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must not be negative")
	}
	if c.SecretKey == "" {
		return errors.New("SECRET_KEY must be set")
	}
	if c.IsProduction() && c.SecretKey == DefaultSecretKey {
		return errors.New("SECRET_KEY must be changed in production")
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if c.HashWorkers < 1 {
		c.HashWorkers = 1
	}
	return nil
}

// IsProduction reports whether ENVIRONMENT is production.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// parseOrigins splits a comma separated origin list, dropping blanks.
func parseOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
