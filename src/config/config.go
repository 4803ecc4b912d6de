package config

import (
	cryptoRand "crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	Port           int
	AllowedOrigins string
	LogLevel       string
	LogFormat      string

	// Admin seed (password login disabled when unset)
	AdminEmail    string
	AdminPassword string

	// Credential secrets
	JWTSecret    string
	APIKeySecret string // 64 hex chars = 32 bytes AES-256 key
	BcryptCost   int
	TokenTTL     time.Duration

	// Mail transport: Mailgun preferred when configured, SMTP otherwise
	MailgunDomain string
	MailgunAPIKey string
	SMTPHost      string
	SMTPPort      int
	SMTPUser      string
	SMTPPass      string
	MailFrom      string
}

// fileConfig mirrors Config for the optional YAML config file.
// Values present in the file override environment values.
type fileConfig struct {
	Port           int    `yaml:"port"`
	AllowedOrigins string `yaml:"allowed_origins"`
	LogLevel       string `yaml:"log_level"`
	LogFormat      string `yaml:"log_format"`
	AdminEmail     string `yaml:"admin_email"`
	AdminPassword  string `yaml:"admin_password"`
	JWTSecret      string `yaml:"jwt_secret"`
	APIKeySecret   string `yaml:"api_key_secret"`
	BcryptCost     int    `yaml:"bcrypt_cost"`
	TokenTTLHours  int    `yaml:"token_ttl_hours"`
	MailgunDomain  string `yaml:"mailgun_domain"`
	MailgunAPIKey  string `yaml:"mailgun_api_key"`
	SMTPHost       string `yaml:"smtp_host"`
	SMTPPort       int    `yaml:"smtp_port"`
	SMTPUser       string `yaml:"smtp_user"`
	SMTPPass       string `yaml:"smtp_pass"`
	MailFrom       string `yaml:"mail_from"`
}

// Load loads configuration from environment variables, then applies the
// optional YAML file named by CONFIG_FILE on top
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnvInt("PORT", 8080),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),

		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		APIKeySecret: getEnv("API_KEY_SECRET", ""),
		BcryptCost:   getEnvInt("BCRYPT_COST", bcrypt.DefaultCost),
		TokenTTL:     time.Duration(getEnvInt("TOKEN_TTL_HOURS", 24)) * time.Hour,

		MailgunDomain: getEnv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey: getEnv("MAILGUN_API_KEY", ""),
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnvInt("SMTP_PORT", 587),
		SMTPUser:      getEnv("SMTP_USER", ""),
		SMTPPass:      getEnv("SMTP_PASS", ""),
		MailFrom:      getEnv("MAIL_FROM", ""),
	}

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	// Generate secrets if not provided. Credential state is
	// process-lifetime only, so per-process random secrets are usable.
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = generateRandomSecret(32)
	}
	if cfg.APIKeySecret == "" {
		cfg.APIKeySecret = generateRandomHex(32)
	}

	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}

	return cfg, nil
}

// applyFile overlays values from a YAML config file
func (c *Config) applyFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(content, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Port != 0 {
		c.Port = fc.Port
	}
	if fc.AllowedOrigins != "" {
		c.AllowedOrigins = fc.AllowedOrigins
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		c.LogFormat = fc.LogFormat
	}
	if fc.AdminEmail != "" {
		c.AdminEmail = fc.AdminEmail
	}
	if fc.AdminPassword != "" {
		c.AdminPassword = fc.AdminPassword
	}
	if fc.JWTSecret != "" {
		c.JWTSecret = fc.JWTSecret
	}
	if fc.APIKeySecret != "" {
		c.APIKeySecret = fc.APIKeySecret
	}
	if fc.BcryptCost != 0 {
		c.BcryptCost = fc.BcryptCost
	}
	if fc.TokenTTLHours != 0 {
		c.TokenTTL = time.Duration(fc.TokenTTLHours) * time.Hour
	}
	if fc.MailgunDomain != "" {
		c.MailgunDomain = fc.MailgunDomain
	}
	if fc.MailgunAPIKey != "" {
		c.MailgunAPIKey = fc.MailgunAPIKey
	}
	if fc.SMTPHost != "" {
		c.SMTPHost = fc.SMTPHost
	}
	if fc.SMTPPort != 0 {
		c.SMTPPort = fc.SMTPPort
	}
	if fc.SMTPUser != "" {
		c.SMTPUser = fc.SMTPUser
	}
	if fc.SMTPPass != "" {
		c.SMTPPass = fc.SMTPPass
	}
	if fc.MailFrom != "" {
		c.MailFrom = fc.MailFrom
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// generateRandomSecret generates a cryptographically secure random secret for JWT signing
func generateRandomSecret(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	result := make([]byte, length)
	if _, err := cryptoRand.Read(result); err != nil {
		panic("failed to generate random secret: " + err.Error())
	}
	for i := range result {
		result[i] = charset[result[i]%byte(len(charset))]
	}
	return string(result)
}

// generateRandomHex generates a hex-encoded random key of n bytes
func generateRandomHex(n int) string {
	buf := make([]byte, n)
	if _, err := cryptoRand.Read(buf); err != nil {
		panic("failed to generate random secret: " + err.Error())
	}
	return hex.EncodeToString(buf)
}
