package app

import "time"

// Config contains all runtime configuration loaded from environment variables.
type Config struct {
	HTTPAddr string
	LogLevel string

	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	DatabaseURL string
	DBMaxConns  int32
	DBMinConns  int32

	// If true, /readyz returns 503 unless the DB is configured and reachable.
	ReadinessRequireDB bool

	// Cookie attributes for the session cookie.
	CookieDomain string
	CookieSecure bool
}

// LoadConfig loads Config from environment variables with defaults.
func LoadConfig() Config {
	return Config{
		HTTPAddr: EnvString("COMMERCE_HTTP_ADDR", "0.0.0.0:8000"),
		LogLevel: EnvString("COMMERCE_LOG_LEVEL", "info"),

		ReadHeaderTimeout: EnvDuration("COMMERCE_HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
		ReadTimeout:       EnvDuration("COMMERCE_HTTP_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:      EnvDuration("COMMERCE_HTTP_WRITE_TIMEOUT", 15*time.Second),
		IdleTimeout:       EnvDuration("COMMERCE_HTTP_IDLE_TIMEOUT", 60*time.Second),

		MaxHeaderBytes: EnvInt("COMMERCE_HTTP_MAX_HEADER_BYTES", 1<<20),

		DatabaseURL: EnvString("COMMERCE_DATABASE_URL", ""),
		DBMaxConns:  EnvInt32("COMMERCE_DB_MAX_CONNS", 10),
		DBMinConns:  EnvInt32("COMMERCE_DB_MIN_CONNS", 0),

		ReadinessRequireDB: EnvBool("COMMERCE_READINESS_REQUIRE_DB", false),

		CookieDomain: EnvString("COMMERCE_COOKIE_DOMAIN", ""),
		CookieSecure: EnvBool("COMMERCE_COOKIE_SECURE", true),
	}
}
