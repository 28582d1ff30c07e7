// Package config loads roadmap settings in layers, lowest first:
//
//  1. Built-in defaults ([Default])
//  2. The TOML config file, $XDG_CONFIG_HOME/roadmap/config.toml by default
//  3. Environment variables prefixed ROADMAP_ (ROADMAP_SERVER_ADDR sets server.addr)
//  4. Command-line flags that were explicitly set
//
// A missing config file is not an error. The merged result is checked with
// go-playground/validator; any failure is reported as INVALID_CONFIG.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/matzehuels/roadmap/pkg/cache"
	errs "github.com/matzehuels/roadmap/pkg/errors"
	"github.com/matzehuels/roadmap/pkg/layout"
	"github.com/matzehuels/roadmap/pkg/telemetry"
)

const (
	appName = "roadmap"

	// EnvPrefix prefixes every environment variable read by Load.
	EnvPrefix = "ROADMAP_"

	// FileName is the config file name inside the config directory.
	FileName = "config.toml"
)

// Cache backends.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendNone   = "none"
)

// Config is the complete roadmap configuration.
type Config struct {
	Log       LogConfig        `koanf:"log" toml:"log"`
	Layout    LayoutConfig     `koanf:"layout" toml:"layout"`
	Cache     CacheConfig      `koanf:"cache" toml:"cache"`
	Server    ServerConfig     `koanf:"server" toml:"server"`
	Events    EventsConfig     `koanf:"events" toml:"events"`
	Telemetry telemetry.Config `koanf:"telemetry" toml:"telemetry"`
}

// LogConfig controls CLI and server logging.
type LogConfig struct {
	Level string `koanf:"level" toml:"level" validate:"oneof=debug info warn error"`
}

// LayoutConfig holds the layout defaults used when a request or flag does
// not choose its own. Zero numeric values fall back to the layout
// package's defaults.
type LayoutConfig struct {
	Algorithm   string  `koanf:"algorithm" toml:"algorithm" validate:"algorithm"`
	NodeWidth   float64 `koanf:"node_width" toml:"node_width" validate:"gte=0"`
	NodeHeight  float64 `koanf:"node_height" toml:"node_height" validate:"gte=0"`
	NodeSep     float64 `koanf:"node_sep" toml:"node_sep" validate:"gte=0"`
	RankSep     float64 `koanf:"rank_sep" toml:"rank_sep" validate:"gte=0"`
	Margin      float64 `koanf:"margin" toml:"margin" validate:"gte=0"`
	Sweeps      int     `koanf:"sweeps" toml:"sweeps" validate:"gte=0"`
	Iterations  int     `koanf:"iterations" toml:"iterations" validate:"gte=0"`
	IdealLength float64 `koanf:"ideal_length" toml:"ideal_length" validate:"gte=0"`
	Seed        uint64  `koanf:"seed" toml:"seed"`
}

// Options converts the section to layout options.
func (c LayoutConfig) Options() layout.Options {
	return layout.Options{
		NodeWidth:   c.NodeWidth,
		NodeHeight:  c.NodeHeight,
		NodeSep:     c.NodeSep,
		RankSep:     c.RankSep,
		Margin:      c.Margin,
		Sweeps:      c.Sweeps,
		Iterations:  c.Iterations,
		IdealLength: c.IdealLength,
		Seed:        c.Seed,
	}
}

// CacheConfig selects and configures the pipeline cache.
type CacheConfig struct {
	Backend string            `koanf:"backend" toml:"backend" validate:"oneof=file badger redis none"`
	Dir     string            `koanf:"dir" toml:"dir"`
	Redis   cache.RedisConfig `koanf:"redis" toml:"redis"`
}

// ServerConfig configures `roadmap serve`.
type ServerConfig struct {
	Addr string `koanf:"addr" toml:"addr" validate:"required,hostname_port"`

	// RateLimit is the sustained request rate per client in requests per
	// second. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit" toml:"rate_limit" validate:"gte=0"`
	Burst     int     `koanf:"burst" toml:"burst" validate:"gte=0"`

	// HistoryLimit caps the editor's undo stack.
	HistoryLimit int `koanf:"history_limit" toml:"history_limit" validate:"gte=0"`
}

// EventsConfig configures editor event publishing.
type EventsConfig struct {
	// NATSURL enables NATS publishing when set.
	NATSURL string `koanf:"nats_url" toml:"nats_url" validate:"omitempty,url"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info"},
		Layout: LayoutConfig{
			Algorithm:  string(layout.AlgorithmHierarchical),
			NodeWidth:  layout.DefaultNodeWidth,
			NodeHeight: layout.DefaultNodeHeight,
			NodeSep:    layout.DefaultNodeSep,
			RankSep:    layout.DefaultRankSep,
			Sweeps:     layout.DefaultSweeps,
			Iterations: layout.DefaultIterations,
			Seed:       layout.DefaultSeed,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Redis:   cache.RedisConfig{Addr: "localhost:6379"},
		},
		Server: ServerConfig{
			Addr:         "127.0.0.1:8080",
			RateLimit:    20,
			Burst:        40,
			HistoryLimit: 100,
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}

// =============================================================================
// Loading
// =============================================================================

// Options controls where Load reads from.
type Options struct {
	// Path is the config file. Empty means DefaultPath(); a missing file at
	// the default path is ignored, a missing explicit file is an error.
	Path string

	// Flags is the command's flag set. Only flags listed in FlagKeys that
	// were explicitly set are applied.
	Flags *pflag.FlagSet

	// FlagKeys maps flag names to config keys, e.g. "addr" to "server.addr".
	FlagKeys map[string]string
}

// Load merges every layer and validates the result.
func Load(opts Options) (Config, error) {
	k := koanf.New(".")

	// 1. Defaults, flattened by their koanf tags.
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load defaults")
	}

	// 2. Config file
	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			if explicit || !errors.Is(err, fs.ErrNotExist) {
				return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load %s", path)
			}
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load environment")
	}

	// 4. Flags
	if opts.Flags != nil {
		fp := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := opts.FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(fp, nil); err != nil {
			return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "load flags")
		}
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return Config{}, errs.Wrap(errs.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey turns ROADMAP_SERVER_RATE_LIMIT into server.rate_limit: the first
// segment names the section, the rest is the key. cache.redis is the one
// nested section.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(s, "_")
	if !ok {
		return s
	}
	if section == "cache" && strings.HasPrefix(rest, "redis_") {
		return "cache.redis." + strings.TrimPrefix(rest, "redis_")
	}
	return section + "." + rest
}

// DefaultPath returns $XDG_CONFIG_HOME/roadmap/config.toml, falling back
// to ~/.config/roadmap/config.toml. It returns "" if neither can be found.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, FileName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName, FileName)
}

// =============================================================================
// Validation
// =============================================================================

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("algorithm", func(fl validator.FieldLevel) bool {
		_, err := layout.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks every section. All failures are reported together.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(errs.ErrCodeInvalidConfig, err, "validate config")
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s: failed %q (value %v)", keyPath(fe.Namespace()), fe.Tag(), fe.Value())
	}
	return errs.New(errs.ErrCodeInvalidConfig, "invalid config: %s", strings.Join(msgs, "; "))
}

// keyPath turns a validator namespace like Config.Server.RateLimit into the
// config key server.ratelimit. Field names are lowered, not snake-cased,
// which is close enough to find the offending key.
func keyPath(ns string) string {
	_, rest, _ := strings.Cut(ns, ".")
	return strings.ToLower(rest)
}
