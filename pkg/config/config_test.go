package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/layout"
)

// isolate points the default config path at an empty directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load(Options{})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg != Default() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, Default())
	}
	if cfg.Layout.Options().WithDefaults() != layout.DefaultOptions() {
		t.Errorf("Layout.Options() = %+v, want layout defaults", cfg.Layout.Options())
	}
}

func TestLoadMergesNestedDefaults(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[cache.redis]
db = 3

[telemetry]
service_version = "1.2.3"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(Options{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	want.Cache.Redis.DB = 3
	want.Telemetry.ServiceVersion = "1.2.3"
	if cfg != want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestDefaultPath(t *testing.T) {
	dir := isolate(t)
	if got, want := DefaultPath(), filepath.Join(dir, "roadmap", "config.toml"); got != want {
		t.Errorf("DefaultPath() = %q, want %q", got, want)
	}
}

func TestLoadLayers(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
addr = "0.0.0.0:9000"
rate_limit = 5.0

[layout]
algorithm = "force-directed"

[cache]
backend = "redis"

[cache.redis]
addr = "redis:6379"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ROADMAP_SERVER_RATE_LIMIT", "7.5")
	t.Setenv("ROADMAP_CACHE_REDIS_DB", "3")
	t.Setenv("ROADMAP_LOG_LEVEL", "debug")

	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.String("addr", "", "")
	fs.String("algorithm", "hierarchical", "")
	if err := fs.Parse([]string{"--addr", "localhost:7000"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(Options{
		Path:     path,
		Flags:    fs,
		FlagKeys: map[string]string{"addr": "server.addr", "algorithm": "layout.algorithm"},
	})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"flag beats file", cfg.Server.Addr, "localhost:7000"},
		{"env beats file", cfg.Server.RateLimit, 7.5},
		{"unset flag keeps file", cfg.Layout.Algorithm, "force-directed"},
		{"file", cfg.Cache.Backend, "redis"},
		{"nested file", cfg.Cache.Redis.Addr, "redis:6379"},
		{"nested env", cfg.Cache.Redis.DB, 3},
		{"env", cfg.Log.Level, "debug"},
		{"default survives", cfg.Server.HistoryLimit, 100},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	isolate(t)
	_, err := Load(Options{Path: filepath.Join(t.TempDir(), "nope.toml")})
	if !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("Load(explicit missing) error = %v, want INVALID_CONFIG", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "roadmap", "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[server\naddr="), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(Options{}); !errs.Is(err, errs.ErrCodeInvalidConfig) {
		t.Errorf("Load(malformed) error = %v, want INVALID_CONFIG", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantKey string
	}{
		{"bad backend", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"bad algorithm", func(c *Config) { c.Layout.Algorithm = "spiral" }, "layout.algorithm"},
		{"negative width", func(c *Config) { c.Layout.NodeWidth = -1 }, "layout.nodewidth"},
		{"bad addr", func(c *Config) { c.Server.Addr = "nope" }, "server.addr"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad nats url", func(c *Config) { c.Events.NATSURL = "::" }, "events.natsurl"},
		{"bad exporter", func(c *Config) { c.Telemetry.TraceExporter = "zipkin" }, "telemetry.traceexporter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errs.Is(err, errs.ErrCodeInvalidConfig) {
				t.Fatalf("Validate() error = %v, want INVALID_CONFIG", err)
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("Validate() error = %q, want mention of %q", err, tt.wantKey)
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestEnvKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"ROADMAP_SERVER_ADDR", "server.addr"},
		{"ROADMAP_SERVER_RATE_LIMIT", "server.rate_limit"},
		{"ROADMAP_LAYOUT_NODE_WIDTH", "layout.node_width"},
		{"ROADMAP_CACHE_REDIS_ADDR", "cache.redis.addr"},
		{"ROADMAP_EVENTS_NATS_URL", "events.nats_url"},
		{"ROADMAP_DEBUG", "debug"},
	}
	for _, tt := range tests {
		if got := envKey(tt.in); got != tt.want {
			t.Errorf("envKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestWriteFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.Server.Addr = "localhost:9999"
	if err := WriteFile(path, cfg, false); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := WriteFile(path, cfg, false); !errs.Is(err, errs.ErrCodeConflict) {
		t.Errorf("WriteFile(existing) error = %v, want CONFLICT", err)
	}
	if err := WriteFile(path, cfg, true); err != nil {
		t.Errorf("WriteFile(force) error = %v", err)
	}

	got, err := Load(Options{Path: path})
	if err != nil {
		t.Fatalf("Load(written) error = %v", err)
	}
	if got != cfg {
		t.Errorf("Load(written) = %+v, want %+v", got, cfg)
	}
}
