package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the Forge server.
type Config struct {
	Port      int
	Version   string
	Store     StoreConfig
	Generate  GenerateConfig
	Workspace WorkspaceConfig
	Telemetry TelemetryConfig
}

type WorkspaceConfig struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string
	DataDir string
	DBPath  string
}

type GenerateConfig struct {
	// APIKey empty selects the deterministic offline service.
	APIKey   string
	Model    string
	Debounce time.Duration
}

type TelemetryConfig struct {
	Enabled      bool
	OTLPEndpoint string
	ServiceName  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:    envInt("FORGE_PORT", 8080),
		Version: envStr("FORGE_VERSION", "0.2.0"),
		Store: StoreConfig{
			Backend: envStr("FORGE_STORE", "memory"),
			DataDir: envStr("FORGE_DATA_DIR", "data"),
			DBPath:  envStr("FORGE_DB_PATH", "data/forge.db"),
		},
		Generate: GenerateConfig{
			APIKey:   envStr("GEMINI_API_KEY", ""),
			Model:    envStr("FORGE_MODEL", ""),
			Debounce: envDuration("FORGE_DEBOUNCE", 750*time.Millisecond),
		},
		Workspace: WorkspaceConfig{
			IdleTTL:       envDuration("FORGE_WORKSPACE_TTL", 2*time.Hour),
			SweepInterval: envDuration("FORGE_SWEEP_INTERVAL", 10*time.Minute),
		},
		Telemetry: TelemetryConfig{
			Enabled:      envBool("OTEL_ENABLED", false),
			OTLPEndpoint: envStr("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			ServiceName:  envStr("OTEL_SERVICE_NAME", "forge-server"),
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
