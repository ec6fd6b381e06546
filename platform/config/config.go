// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// GroqConfig provides settings for the Groq chat-completions API.
type GroqConfig interface {
	GetGroqAPIKey() string
	GetGroqBaseURL() string
	GetGroqModel() string
	GetGroqRequestsPerMinute() int
	IsGroqEnabled() bool
}

// DocScanConfig provides settings for the document extraction service.
type DocScanConfig interface {
	GetDocScanBaseURL() string
	GetDocScanMaxFileSize() int64
	IsDocScanEnabled() bool
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketSalarySlips() string
	GetMinioBucketSanctionLetters() string
	IsMinIOEnabled() bool
}

// GotenbergConfig provides settings for the Gotenberg HTML-to-PDF service.
type GotenbergConfig interface {
	GetGotenbergURL() string
	GetGotenbergUsername() string
	GetGotenbergPassword() string
	IsGotenbergEnabled() bool
}

// SMTPConfig provides settings for outbound email.
type SMTPConfig interface {
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetOpsAlertEmail() string
	IsEmailEnabled() bool
}

// SchedulerConfig provides settings for the background job queue.
type SchedulerConfig interface {
	GetRedisAddr() string
	GetSessionTTL() time.Duration
}

// AdminConfig provides credentials for the operational endpoints.
type AdminConfig interface {
	GetAdminAPIKey() string
}

// AppConfig provides application-level settings shared across modules.
type AppConfig interface {
	GetAppBaseURL() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                        string
	HTTPAddr                   string
	DatabaseURL                string
	CORSAllowAll               bool
	CORSOrigins                []string
	CORSAllowCreds             bool
	AppBaseURL                 string
	GroqAPIKey                 string
	GroqBaseURL                string
	GroqModel                  string
	GroqRequestsPerMinute      int
	DocScanBaseURL             string
	DocScanMaxFileSize         int64
	MinIOEndpoint              string
	MinIOAccessKey             string
	MinIOSecretKey             string
	MinIOUseSSL                bool
	MinIOMaxFileSize           int64
	MinioBucketSalarySlips     string
	MinioBucketSanctionLetters string
	GotenbergURL               string
	GotenbergUsername          string
	GotenbergPassword          string
	SMTPHost                   string
	SMTPPort                   int
	SMTPUsername               string
	SMTPPassword               string
	EmailEnabled               bool
	EmailFromName              string
	EmailFromAddress           string
	OpsAlertEmail              string
	RedisAddr                  string
	SessionTTL                 time.Duration
	AdminAPIKey                string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// GroqConfig implementation
func (c *Config) GetGroqAPIKey() string         { return c.GroqAPIKey }
func (c *Config) GetGroqBaseURL() string        { return c.GroqBaseURL }
func (c *Config) GetGroqModel() string          { return c.GroqModel }
func (c *Config) GetGroqRequestsPerMinute() int { return c.GroqRequestsPerMinute }
func (c *Config) IsGroqEnabled() bool           { return c.GroqAPIKey != "" }

// DocScanConfig implementation
func (c *Config) GetDocScanBaseURL() string    { return c.DocScanBaseURL }
func (c *Config) GetDocScanMaxFileSize() int64 { return c.DocScanMaxFileSize }
func (c *Config) IsDocScanEnabled() bool       { return c.DocScanBaseURL != "" }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string   { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string  { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string  { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool       { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64 { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketSalarySlips() string {
	return c.MinioBucketSalarySlips
}
func (c *Config) GetMinioBucketSanctionLetters() string {
	return c.MinioBucketSanctionLetters
}
func (c *Config) IsMinIOEnabled() bool { return c.MinIOEndpoint != "" }

// GotenbergConfig implementation
func (c *Config) GetGotenbergURL() string      { return c.GotenbergURL }
func (c *Config) GetGotenbergUsername() string { return c.GotenbergUsername }
func (c *Config) GetGotenbergPassword() string { return c.GotenbergPassword }
func (c *Config) IsGotenbergEnabled() bool     { return c.GotenbergURL != "" }

// SMTPConfig implementation
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetOpsAlertEmail() string    { return c.OpsAlertEmail }
func (c *Config) IsEmailEnabled() bool        { return c.EmailEnabled }

// SchedulerConfig implementation
func (c *Config) GetRedisAddr() string         { return c.RedisAddr }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// AdminConfig implementation
func (c *Config) GetAdminAPIKey() string { return c.AdminAPIKey }

// AppConfig implementation
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "true"), "true")
	smtpHost := getEnv("SMTP_HOST", "")

	cfg := &Config{
		Env:                        getEnv("APP_ENV", "development"),
		HTTPAddr:                   getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		CORSAllowAll:               corsAllowAll,
		CORSOrigins:                corsOrigins,
		CORSAllowCreds:             strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		AppBaseURL:                 getEnv("APP_BASE_URL", "http://localhost:8080"),
		GroqAPIKey:                 getEnv("GROQ_API_KEY", ""),
		GroqBaseURL:                getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		GroqModel:                  getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GroqRequestsPerMinute:      mustInt(getEnv("GROQ_REQUESTS_PER_MINUTE", "30")),
		DocScanBaseURL:             getEnv("DOCSCAN_BASE_URL", ""),
		DocScanMaxFileSize:         mustInt64(getEnv("DOCSCAN_MAX_FILE_SIZE", "10485760")),
		MinIOEndpoint:              getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:             getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:             getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:                strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:           mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "10485760")),
		MinioBucketSalarySlips:     getEnv("MINIO_BUCKET_SALARY_SLIPS", "salary-slips"),
		MinioBucketSanctionLetters: getEnv("MINIO_BUCKET_SANCTION_LETTERS", "sanction-letters"),
		GotenbergURL:               getEnv("GOTENBERG_URL", ""),
		GotenbergUsername:          getEnv("GOTENBERG_USERNAME", ""),
		GotenbergPassword:          getEnv("GOTENBERG_PASSWORD", ""),
		SMTPHost:                   smtpHost,
		SMTPPort:                   mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:               getEnv("SMTP_USERNAME", ""),
		SMTPPassword:               getEnv("SMTP_PASSWORD", ""),
		EmailEnabled:               emailEnabled && smtpHost != "",
		EmailFromName:              getEnv("EMAIL_FROM_NAME", "CredSaathi"),
		EmailFromAddress:           getEnv("EMAIL_FROM_ADDRESS", ""),
		OpsAlertEmail:              getEnv("OPS_ALERT_EMAIL", ""),
		RedisAddr:                  getEnv("REDIS_ADDR", "localhost:6379"),
		SessionTTL:                 mustDuration(getEnv("SESSION_TTL", "24h")),
		AdminAPIKey:                getEnv("ADMIN_API_KEY", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.EmailEnabled && cfg.EmailFromAddress == "" {
		return nil, fmt.Errorf("EMAIL_FROM_ADDRESS is required when email is enabled")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
