// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes server timeouts,
// logging, database paths, rate limiting, push (VAPID) credentials, the
// secondary relay, and observability settings.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ldmoura/go-payments-backend/internal/sysutil"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-payments-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// PushConfig carries the Web Push (VAPID) credentials and delivery knobs.
// The key pair is injected here explicitly so the signer can be constructed
// with fixture keys in tests instead of reading the environment ad hoc.
type PushConfig struct {
	// VAPIDPublicKey is the base64url-encoded uncompressed P-256 point
	// (65 raw bytes, leading 0x04 marker).
	VAPIDPublicKey string
	// VAPIDPrivateKey is the base64url-encoded raw P-256 scalar (32 bytes).
	VAPIDPrivateKey string
	// Subject is the contact URI placed in the token's sub claim
	// (e.g. "mailto:ops@example.com").
	Subject string
	// TTL is the message lifetime advertised to the push service.
	TTL time.Duration
	// Timeout bounds one delivery attempt so a dead endpoint cannot stall
	// the fan-out.
	Timeout time.Duration
	// Concurrency caps in-flight deliveries during a broadcast.
	Concurrency int
}

// Enabled reports whether push credentials are configured. When false the
// dispatcher skips the broadcast leg entirely.
func (p PushConfig) Enabled() bool {
	return strings.TrimSpace(p.VAPIDPrivateKey) != ""
}

// RelayConfig configures the secondary templated relay channel.
type RelayConfig struct {
	Enabled bool          // RELAY_ENABLED
	URL     string        // RELAY_URL (target of the fire-and-forget GET)
	Device  string        // RELAY_DEVICE (target/device identifier)
	Timeout time.Duration // RELAY_TIMEOUT
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging
	LogLevel    string // debug|info|warn|error|fatal|panic
	LogPretty   bool   // pretty console logs in dev
	APIBasePath string // base path for API routes

	// App
	DBPath string // SQLite path

	// Notifications
	Push  PushConfig
	Relay RelayConfig
	// DispatchTimeout bounds one whole notification pass (broadcast + relay)
	// after the ledger write committed.
	DispatchTimeout time.Duration

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging
		LogLevel:    strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:   getbool("LOG_PRETTY", false),
		APIBasePath: normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath: getenv("DB_PATH", "payments.db"),

		// Notifications
		Push: PushConfig{
			VAPIDPublicKey:  getenv("VAPID_PUBLIC_KEY", ""),
			VAPIDPrivateKey: getenv("VAPID_PRIVATE_KEY", ""),
			Subject:         getenv("VAPID_SUBJECT", "mailto:suporte@example.com"),
			TTL:             getdur("PUSH_TTL", 24*time.Hour),
			Timeout:         getdur("PUSH_TIMEOUT", 8*time.Second),
			Concurrency:     getint("PUSH_CONCURRENCY", 8),
		},
		Relay: RelayConfig{
			Enabled: getbool("RELAY_ENABLED", false),
			URL:     getenv("RELAY_URL", ""),
			Device:  getenv("RELAY_DEVICE", ""),
			Timeout: getdur("RELAY_TIMEOUT", 8*time.Second),
		},
		DispatchTimeout: getdur("DISPATCH_TIMEOUT", 30*time.Second),

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 25.0),
		RateBurst: getint("RATE_BURST", 50),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-payments-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if cfg.Push.TTL <= 0 {
		return cfg, errors.New("PUSH_TTL must be > 0")
	}
	if cfg.Push.Timeout <= 0 || cfg.Relay.Timeout <= 0 || cfg.DispatchTimeout <= 0 {
		return cfg, errors.New("PUSH_TIMEOUT, RELAY_TIMEOUT and DISPATCH_TIMEOUT must be > 0")
	}
	if cfg.Push.Concurrency < 1 {
		return cfg, errors.New("PUSH_CONCURRENCY must be >= 1")
	}
	if cfg.Relay.Enabled && strings.TrimSpace(cfg.Relay.URL) == "" {
		return cfg, errors.New("RELAY_URL must be set when RELAY_ENABLED is true")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if sysutil.IsTruthy(v) {
			return true
		}
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
