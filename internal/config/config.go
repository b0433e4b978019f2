package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=password dbname=jobtracker port=5432 sslmode=disable"

type Config struct {
	Port        string
	DatabaseURL string
	LogMode     string

	// Admin gate
	AuthJWTSecret string
	AdminRole     string

	// Interview prep migration
	ApplicationsTable     string
	MigrationDefaultLimit int
	MigrationMaxLimit     int

	// LLM
	GeminiAPIKey string
	GeminiModel  string

	// Migration report email
	GmailCredentialsFile string
	GmailTokenFile       string
	ReportRecipient      string

	CORSAllowedOrigins []string
}

// Load reads .env (if present) and then the process environment.
// The returned bool reports whether a .env file was loaded.
func Load() (Config, bool) {
	loaded := godotenv.Load() == nil
	return FromEnv(), loaded
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	cfg := Config{
		Port:        str("PORT", "8080"),
		DatabaseURL: str("DATABASE_URL", defaultDSN),
		LogMode:     str("LOG_MODE", "development"),

		AuthJWTSecret: str("AUTH_JWT_SECRET", ""),
		AdminRole:     str("ADMIN_ROLE", "admin"),

		ApplicationsTable:     str("APPLICATIONS_TABLE", "applications"),
		MigrationDefaultLimit: positiveInt("MIGRATION_DEFAULT_LIMIT", 100),
		MigrationMaxLimit:     positiveInt("MIGRATION_MAX_LIMIT", 1000),

		GeminiAPIKey: str("GEMINI_API_KEY", ""),
		GeminiModel:  str("GEMINI_MODEL", "gemini-2.5-flash"),

		GmailCredentialsFile: str("GMAIL_CREDENTIALS_FILE", ""),
		GmailTokenFile:       str("GMAIL_TOKEN_FILE", ""),
		ReportRecipient:      str("MIGRATION_REPORT_RECIPIENT", ""),

		CORSAllowedOrigins: list("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}
	if cfg.MigrationDefaultLimit > cfg.MigrationMaxLimit {
		cfg.MigrationDefaultLimit = cfg.MigrationMaxLimit
	}
	return cfg
}

// NotifierEnabled reports whether every Gmail setting needed to send reports is present.
func (c Config) NotifierEnabled() bool {
	return c.GmailCredentialsFile != "" && c.GmailTokenFile != "" && c.ReportRecipient != ""
}

func str(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func positiveInt(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i <= 0 {
		return def
	}
	return i
}

func list(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
