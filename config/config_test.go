package config

import (
	"strings"
	"testing"
	"time"

	"github.com/ChristianF88/bitsort/radix"
	"github.com/ChristianF88/bitsort/testutil"
	"github.com/rs/zerolog"
)

func TestLoadConfig(t *testing.T) {
	testConfigContent := `
[sort]
workers = 4
grain = 1024
maxLength = 1000000
verify = false

[input]
file = "/tmp/keys.txt"

[output]
compact = true
plotPath = "/tmp/passes.html"
values = false
indices = true

[serve]
port = "6000"
readTimeout = "10s"
batchSize = 500
flushInterval = "250ms"

[log]
level = "debug"
trace = true
`
	path := testutil.WriteTempFile(t, "config_*.toml", testConfigContent)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Sort.Workers != 4 || cfg.Sort.Grain != 1024 || cfg.Sort.MaxLength != 1000000 || cfg.Sort.Verify {
		t.Errorf("unexpected sort section: %+v", cfg.Sort)
	}
	if cfg.Input.File != "/tmp/keys.txt" {
		t.Errorf("expected input file /tmp/keys.txt, got %q", cfg.Input.File)
	}
	if !cfg.Output.Compact || cfg.Output.Plain || cfg.Output.Values || !cfg.Output.Indices {
		t.Errorf("unexpected output section: %+v", cfg.Output)
	}
	if cfg.Output.PlotPath != "/tmp/passes.html" {
		t.Errorf("expected plotPath /tmp/passes.html, got %q", cfg.Output.PlotPath)
	}
	if cfg.Serve.Port != "6000" || cfg.Serve.BatchSize != 500 {
		t.Errorf("unexpected serve section: %+v", cfg.Serve)
	}
	if cfg.Serve.ReadTimeout != 10*time.Second {
		t.Errorf("expected readTimeout 10s, got %s", cfg.Serve.ReadTimeout)
	}
	if cfg.Serve.FlushInterval != 250*time.Millisecond {
		t.Errorf("expected flushInterval 250ms, got %s", cfg.Serve.FlushInterval)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.Trace {
		t.Errorf("unexpected log section: %+v", cfg.Log)
	}

	if err := cfg.ValidateServe(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	path := testutil.WriteTempFile(t, "config_*.toml", "[sort]\nworkers = 2\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Sort.Workers != 2 {
		t.Errorf("expected workers 2, got %d", cfg.Sort.Workers)
	}
	if cfg.Sort.MaxLength != radix.MaxLength || !cfg.Sort.Verify {
		t.Errorf("sort defaults lost: %+v", cfg.Sort)
	}
	if !cfg.Output.Values {
		t.Error("expected values to default to true")
	}
	if cfg.Serve.Port != DefaultPort || cfg.Serve.BatchSize != DefaultBatchSize {
		t.Errorf("serve defaults lost: %+v", cfg.Serve)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("expected log level %q, got %q", DefaultLogLevel, cfg.Log.Level)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"syntax", "[sort\nworkers = 1", "failed to parse config file"},
		{"unknown key", "[sort]\nworkerz = 1\n", "unknown configuration keys: sort.workerz"},
		{"wrong type", "[sort]\nworkers = \"many\"\n", "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteTempFile(t, "config_*.toml", tt.content)
			_, err := LoadConfig(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(testutil.TempFilePath(t, "missing.toml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"negative workers", func(c *Config) { c.Sort.Workers = -1 }, "workers must not be negative"},
		{"negative grain", func(c *Config) { c.Sort.Grain = -5 }, "grain must not be negative"},
		{"maxLength too large", func(c *Config) { c.Sort.MaxLength = radix.MaxLength + 1 }, "maxLength must be between"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "invalid log level"},
		{"compact and plain", func(c *Config) { c.Output.Compact, c.Output.Plain = true, true }, "mutually exclusive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateServe(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Serve.Port = "" }, "port is required"},
		{"zero batch", func(c *Config) { c.Serve.BatchSize = 0 }, "batchSize must be positive"},
		{"batch above limit", func(c *Config) { c.Sort.MaxLength = 10; c.Serve.BatchSize = 11 }, "exceeds maxLength"},
		{"zero timeout", func(c *Config) { c.Serve.ReadTimeout = 0 }, "readTimeout must be positive"},
		{"zero flush", func(c *Config) { c.Serve.FlushInterval = 0 }, "flushInterval must be positive"},
		{"invalid base", func(c *Config) { c.Sort.Workers = -2 }, "workers must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.ValidateServe()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	cfg := Default()
	cfg.Log.Level = ""
	if lvl, err := cfg.LogLevel(); err != nil || lvl != zerolog.InfoLevel {
		t.Errorf("empty level = %v, %v; want info", lvl, err)
	}

	cfg.Log.Level = "WARN"
	if lvl, err := cfg.LogLevel(); err != nil || lvl != zerolog.WarnLevel {
		t.Errorf("WARN = %v, %v; want warn", lvl, err)
	}
}

func TestEffectiveMaxLength(t *testing.T) {
	cfg := Default()
	cfg.Sort.MaxLength = 0
	if got := cfg.EffectiveMaxLength(); got != radix.MaxLength {
		t.Errorf("EffectiveMaxLength() = %d, want %d", got, radix.MaxLength)
	}

	cfg.Sort.MaxLength = 3
	s := radix.New[uint32](cfg.SorterOptions()...)
	defer s.Close()
	if s.MaxLength() != 3 {
		t.Errorf("sorter MaxLength() = %d, want 3", s.MaxLength())
	}
}
