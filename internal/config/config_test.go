package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/riskibarqy/fantaqb/internal/platform/logging"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("APP_ENV", EnvDev)
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DB_URL", "")
	t.Setenv("UPTRACE_ENABLED", "false")
	t.Setenv("UPTRACE_DSN", "")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "")
	t.Setenv("PYROSCOPE_ENABLED", "false")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("unexpected StoreDriver: %q", cfg.StoreDriver)
	}
	if cfg.CacheTTL != time.Minute {
		t.Fatalf("unexpected CacheTTL: %s", cfg.CacheTTL)
	}
	if cfg.AggregateWorkers != 8 {
		t.Fatalf("unexpected AggregateWorkers: %d", cfg.AggregateWorkers)
	}
	if cfg.WriteTimeout != 0 {
		t.Fatalf("unexpected WriteTimeout: %s", cfg.WriteTimeout)
	}
	if !cfg.MetricsEnabled {
		t.Fatalf("expected MetricsEnabled=true")
	}
	if cfg.PyroscopeAppName != cfg.ServiceName {
		t.Fatalf("expected PyroscopeAppName to default to service name, got %q", cfg.PyroscopeAppName)
	}
}

func TestLoad_AppEnvValidation(t *testing.T) {
	isolate(t)
	t.Setenv("APP_ENV", "invalid")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for invalid APP_ENV")
	}
}

func TestLoad_StoreDriverValidation(t *testing.T) {
	isolate(t)
	t.Setenv("STORE_DRIVER", "firestore")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for unknown STORE_DRIVER")
	}

	t.Setenv("STORE_DRIVER", "postgres")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when STORE_DRIVER=postgres without DB_URL")
	}

	t.Setenv("DB_URL", "postgres://localhost:5432/fantaqb?sslmode=disable")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.StoreDriver != StorePostgres {
		t.Fatalf("unexpected StoreDriver: %q", cfg.StoreDriver)
	}
}

func TestLoad_UptraceRequiresDSNWhenEnabled(t *testing.T) {
	isolate(t)
	t.Setenv("UPTRACE_ENABLED", "true")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error when UPTRACE_ENABLED=true without UPTRACE_DSN")
	}
}

func TestLoad_UptraceDSNFromOTLPHeaders(t *testing.T) {
	isolate(t)
	t.Setenv("UPTRACE_ENABLED", "true")
	t.Setenv("OTEL_EXPORTER_OTLP_HEADERS", "x-other=1, uptrace-dsn='https://token@api.uptrace.dev?grpc=4317'")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.UptraceDSN != "https://token@api.uptrace.dev?grpc=4317" {
		t.Fatalf("unexpected UptraceDSN: %q", cfg.UptraceDSN)
	}
}

func TestLoad_NumericValidation(t *testing.T) {
	cases := map[string]string{
		"AGGREGATE_WORKERS":            "0",
		"LIVE_VIEW_BUFFER":             "-1",
		"CACHE_TTL":                    "0s",
		"HTTP_WRITE_TIMEOUT":           "-5s",
		"ANUBIS_CIRCUIT_FAILURE_COUNT": "zero",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoad_EnvFileFillsUnsetKeys(t *testing.T) {
	isolate(t)

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("AGGREGATE_WORKERS=3\nAPP_LOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("ENV_FILE", path)
	t.Setenv("AGGREGATE_WORKERS", "")
	t.Setenv("APP_LOG_LEVEL", "")
	// godotenv does not overwrite keys that already hold a value; t.Setenv("")
	// leaves them set but empty, so drop them for the file to apply.
	os.Unsetenv("AGGREGATE_WORKERS")
	os.Unsetenv("APP_LOG_LEVEL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AggregateWorkers != 3 {
		t.Fatalf("unexpected AggregateWorkers: %d", cfg.AggregateWorkers)
	}
	if cfg.LogLevel != logging.LevelDebug {
		t.Fatalf("unexpected LogLevel: %s", cfg.LogLevel)
	}
}

func TestLoad_SwaggerDefaultsOffInProd(t *testing.T) {
	isolate(t)
	t.Setenv("SWAGGER_ENABLED", "")
	os.Unsetenv("SWAGGER_ENABLED")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.SwaggerEnabled {
		t.Fatalf("expected swagger enabled outside prod")
	}

	t.Setenv("APP_ENV", EnvProd)
	cfg, err = Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SwaggerEnabled {
		t.Fatalf("expected swagger disabled in prod")
	}
}
