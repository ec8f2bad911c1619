package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/fincalc/pkg/constants"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fincalc.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfigurationDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfiguration(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Server.Address != constants.DefaultServerAddress {
		t.Errorf("expected default address, got %q", cfg.Server.Address)
	}
	if cfg.Output.Format != constants.OutputFormatPretty {
		t.Errorf("expected pretty output, got %q", cfg.Output.Format)
	}
	if cfg.History.Backend != constants.HistoryBackendMemory {
		t.Errorf("expected memory history backend, got %q", cfg.History.Backend)
	}
	if cfg.History.RecentLimit != constants.DefaultRecentLimit {
		t.Errorf("expected recent limit %d, got %d", constants.DefaultRecentLimit, cfg.History.RecentLimit)
	}
	if cfg.History.SaveTimeout != 5*time.Second {
		t.Errorf("expected 5s save timeout, got %s", cfg.History.SaveTimeout)
	}
	if cfg.Assistant.Timeout != 30*time.Second {
		t.Errorf("expected 30s assistant timeout, got %s", cfg.Assistant.Timeout)
	}
	if cfg.Fuel.ProjectionSeed != constants.DefaultFuelProjectionSeed {
		t.Errorf("expected default fuel seed, got %d", cfg.Fuel.ProjectionSeed)
	}
	if cfg.Logging.Level != "" || cfg.Logging.Format != "" || cfg.Logging.OutputFile != "" {
		t.Errorf("expected empty logging defaults, got %+v", cfg.Logging)
	}
}

func TestLoadConfigurationOverrides(t *testing.T) {
	path := writeConfig(t, `logging:
  level: debug
  format: console
  outputFile: /tmp/fincalc.log
output:
  format: json
server:
  address: 127.0.0.1:9000
  maxBodySize: 2M
history:
  backend: redis
  redisAddress: cache:6379
  keyPrefix: test
  recentLimit: 25
  saveTimeout: 2s
assistant:
  apiKey: secret
  model: custom-model
fuel:
  projectionSeed: 99
`)

	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" || cfg.Logging.OutputFile != "/tmp/fincalc.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Output.Format != "json" {
		t.Errorf("expected json output, got %q", cfg.Output.Format)
	}
	if cfg.Server.Address != "127.0.0.1:9000" {
		t.Errorf("expected address override, got %s", cfg.Server.Address)
	}
	size, err := cfg.Server.MaxBodySizeBytes()
	if err != nil || size != 2*1024*1024 {
		t.Errorf("expected 2M body size, got %d (%v)", size, err)
	}
	if cfg.History.Backend != "redis" || cfg.History.RedisAddress != "cache:6379" || cfg.History.KeyPrefix != "test" {
		t.Errorf("unexpected history config %+v", cfg.History)
	}
	if cfg.History.RecentLimit != 25 {
		t.Errorf("expected recent limit 25, got %d", cfg.History.RecentLimit)
	}
	if cfg.History.SaveTimeout != 2*time.Second {
		t.Errorf("expected 2s save timeout, got %s", cfg.History.SaveTimeout)
	}
	if !cfg.Assistant.Enabled() || cfg.Assistant.Model != "custom-model" {
		t.Errorf("unexpected assistant config %+v", cfg.Assistant)
	}
	if cfg.Assistant.Endpoint != constants.DefaultAssistantEndpoint {
		t.Errorf("expected default assistant endpoint, got %q", cfg.Assistant.Endpoint)
	}
	if cfg.Fuel.ProjectionSeed != 99 {
		t.Errorf("expected fuel seed 99, got %d", cfg.Fuel.ProjectionSeed)
	}
}

func TestLoadConfigurationEnvironmentOverrides(t *testing.T) {
	t.Setenv("FINCALC_SERVER_ADDRESS", ":9999")
	t.Setenv("FINCALC_ASSISTANT_APIKEY", "from-env")
	t.Setenv("FINCALC_HISTORY_RECENTLIMIT", "3")

	path := writeConfig(t, "server:\n  address: 127.0.0.1:9000\n")
	cfg, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if cfg.Server.Address != ":9999" {
		t.Errorf("expected environment address, got %q", cfg.Server.Address)
	}
	if cfg.Assistant.APIKey != "from-env" {
		t.Errorf("expected environment api key, got %q", cfg.Assistant.APIKey)
	}
	if cfg.History.RecentLimit != 3 {
		t.Errorf("expected environment recent limit, got %d", cfg.History.RecentLimit)
	}
}

func TestLoadConfigurationInvalidYaml(t *testing.T) {
	path := writeConfig(t, "server: [unclosed")
	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected error for invalid YAML but got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		mutate       func(*Configuration)
		wantError    bool
		wantWarning  string
		wantWarnings int
	}{
		{
			name:         "Defaults",
			mutate:       func(*Configuration) {},
			wantWarning:  "in-memory backend",
			wantWarnings: 2,
		},
		{
			name:      "Unsupported log level",
			mutate:    func(c *Configuration) { c.Logging.Level = "verbose" },
			wantError: true,
		},
		{
			name:      "Unsupported output format",
			mutate:    func(c *Configuration) { c.Output.Format = "xml" },
			wantError: true,
		},
		{
			name:      "Bad body size",
			mutate:    func(c *Configuration) { c.Server.MaxBodySize = "lots" },
			wantError: true,
		},
		{
			name:      "Unknown history backend",
			mutate:    func(c *Configuration) { c.History.Backend = "postgres" },
			wantError: true,
		},
		{
			name: "Redis without address",
			mutate: func(c *Configuration) {
				c.History.Backend = constants.HistoryBackendRedis
				c.History.RedisAddress = " "
			},
			wantError: true,
		},
		{
			name: "Fully configured",
			mutate: func(c *Configuration) {
				c.History.Backend = constants.HistoryBackendRedis
				c.Assistant.APIKey = "key"
			},
			wantWarnings: 0,
		},
		{
			name: "Non-positive recent limit",
			mutate: func(c *Configuration) {
				c.History.Backend = constants.HistoryBackendRedis
				c.Assistant.APIKey = "key"
				c.History.RecentLimit = 0
			},
			wantWarning:  "recentLimit",
			wantWarnings: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfiguration("")
			if err != nil {
				t.Fatalf("LoadConfiguration() error = %v", err)
			}
			tt.mutate(cfg)

			warnings, err := cfg.Validate()
			if tt.wantError {
				if err == nil {
					t.Errorf("Validate() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if len(warnings) != tt.wantWarnings {
				t.Errorf("Validate() returned %d warnings, expected %d: %v", len(warnings), tt.wantWarnings, warnings)
			}
			if tt.wantWarning != "" && !strings.Contains(strings.Join(warnings, "\n"), tt.wantWarning) {
				t.Errorf("Validate() warnings %v do not mention %q", warnings, tt.wantWarning)
			}
			if cfg.History.RecentLimit <= 0 {
				t.Errorf("Validate() should correct a non-positive recent limit")
			}
		})
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":          constants.DefaultMaxBodySizeBytes,
		"1024":      1024,
		"512b":      512,
		"256K":      256 * 1024,
		"1m":        1024 * 1024,
		"3MB":       3 * 1024 * 1024,
		"2G":        2 * 1024 * 1024 * 1024,
		"  4096   ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	if _, err := ParseSize("1TB"); err == nil {
		t.Fatal("expected error for unsupported unit")
	}
	if _, err := ParseSize("abc"); err == nil {
		t.Fatal("expected error for invalid number")
	}
}

func TestFileExists(t *testing.T) {
	path := writeConfig(t, "output:\n  format: csv\n")
	if !FileExists(path) {
		t.Errorf("FileExists(%q) = false, expected true", path)
	}
	if FileExists(filepath.Join(t.TempDir(), "nope.yaml")) {
		t.Errorf("FileExists() reported a missing file")
	}
}

func TestExampleConfiguration(t *testing.T) {
	cfg, err := LoadConfiguration(filepath.Join("..", "..", "fincalc.yaml.example"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if _, err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	size, err := cfg.Server.MaxBodySizeBytes()
	if err != nil {
		t.Fatalf("MaxBodySizeBytes() error = %v", err)
	}
	if size != 256*1024 {
		t.Errorf("MaxBodySizeBytes() = %d, want %d", size, 256*1024)
	}
	if cfg.History.Backend != constants.HistoryBackendRedis {
		t.Errorf("History.Backend = %q, want %q", cfg.History.Backend, constants.HistoryBackendRedis)
	}
	if cfg.History.SaveTimeout != 5*time.Second {
		t.Errorf("History.SaveTimeout = %v, want 5s", cfg.History.SaveTimeout)
	}
	if cfg.Fuel.ProjectionSeed != 1 {
		t.Errorf("Fuel.ProjectionSeed = %d, want 1", cfg.Fuel.ProjectionSeed)
	}
}
