package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable the loader reads so defaults apply.
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT", "READ_TIMEOUT", "READ_HEADER_TIMEOUT", "WRITE_TIMEOUT",
		"IDLE_TIMEOUT", "MAX_HEADER_BYTES", "GIN_MODE", "LOG_LEVEL",
		"LOG_PRETTY", "API_BASE_PATH", "DB_PATH",
		"VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY", "VAPID_SUBJECT",
		"PUSH_TTL", "PUSH_TIMEOUT", "PUSH_CONCURRENCY",
		"RELAY_ENABLED", "RELAY_URL", "RELAY_DEVICE", "RELAY_TIMEOUT",
		"DISPATCH_TIMEOUT", "RATE_RPS", "RATE_BURST",
		"CORS_ALLOWED_ORIGINS", "ENABLE_HSTS", "HSTS_MAX_AGE",
		"OTEL_ENABLED", "OTEL_EXPORTER_OTLP_ENDPOINT",
		"OTEL_EXPORTER_OTLP_INSECURE", "OTEL_SERVICE_NAME",
		"OTEL_TRACES_SAMPLER_ARG",
	}
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with defaults failed: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q; want 8080", cfg.Port)
	}
	if cfg.DBPath != "payments.db" {
		t.Errorf("DBPath = %q; want payments.db", cfg.DBPath)
	}
	if cfg.APIBasePath != "/api/v1" {
		t.Errorf("APIBasePath = %q; want /api/v1", cfg.APIBasePath)
	}
	if cfg.Push.TTL != 24*time.Hour {
		t.Errorf("Push.TTL = %v; want 24h", cfg.Push.TTL)
	}
	if cfg.Push.Timeout != 8*time.Second {
		t.Errorf("Push.Timeout = %v; want 8s", cfg.Push.Timeout)
	}
	if cfg.Push.Concurrency != 8 {
		t.Errorf("Push.Concurrency = %d; want 8", cfg.Push.Concurrency)
	}
	if cfg.Push.Enabled() {
		t.Errorf("Push.Enabled() = true with no private key")
	}
	if cfg.Relay.Enabled {
		t.Errorf("Relay.Enabled default should be false")
	}
	if !strings.HasPrefix(cfg.Push.Subject, "mailto:") {
		t.Errorf("Push.Subject = %q; want a mailto: URI", cfg.Push.Subject)
	}
}

func TestLoad_RelayRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("RELAY_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when RELAY_ENABLED without RELAY_URL")
	}

	t.Setenv("RELAY_URL", "https://relay.example.com/send")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Relay.Enabled || cfg.Relay.URL == "" {
		t.Fatalf("relay config not applied: %+v", cfg.Relay)
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad_log_level", "LOG_LEVEL", "verbose"},
		{"zero_push_concurrency", "PUSH_CONCURRENCY", "0"},
		{"negative_rate", "RATE_RPS", "-1"},
		{"zero_burst", "RATE_BURST", "0"},
		{"bad_sample_ratio", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected validation error for %s=%s", tc.key, tc.value)
			}
		})
	}
}

func TestLoad_NormalizesBasePathAndLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_BASE_PATH", "api/v2/")
	t.Setenv("LOG_LEVEL", "WARNING")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.APIBasePath != "/api/v2" {
		t.Errorf("APIBasePath = %q; want /api/v2", cfg.APIBasePath)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q; want warn", cfg.LogLevel)
	}
}

func Test_getbool(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{" on ", false, true},
		{"1", false, true},
		{"false", true, false},
		{"off", true, false},
		{"0", true, false},
		{"", true, true},
		{"garbage", true, true},
		{"garbage", false, false},
	}
	for _, tc := range tests {
		t.Setenv("SOME_FLAG", tc.value)
		if got := getbool("SOME_FLAG", tc.def); got != tc.want {
			t.Errorf("getbool(%q, %v) = %v; want %v", tc.value, tc.def, got, tc.want)
		}
	}
}

func TestPushConfig_Enabled(t *testing.T) {
	p := PushConfig{VAPIDPrivateKey: "  "}
	if p.Enabled() {
		t.Fatalf("blank private key should not enable push")
	}
	p.VAPIDPrivateKey = "AAAA"
	if !p.Enabled() {
		t.Fatalf("non-empty private key should enable push")
	}
}
