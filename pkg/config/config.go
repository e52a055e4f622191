// Package config holds the batch configuration.
//
// A Config is built once per batch and passed by value through every stage.
// Values are layered in this order, later sources winning:
//
//  1. Default()
//  2. a TOML file (multicon.toml when present)
//  3. MULTICON_* environment variables
//  4. command-line flags (applied by the CLI)
//
// Example multicon.toml:
//
//	src       = ["icons/*.svg"]
//	dest      = "public/icons"
//	basedir   = "icons"
//	scales    = [1, 2]
//	cssprefix = "icon-"
//
//	[engine]
//	kind    = "process"
//	timeout = "30s"
//
//	[cache]
//	backend = "file"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/Two-Screen/multicon/pkg/cache"
	"github.com/Two-Screen/multicon/pkg/engine/process"
	merrors "github.com/Two-Screen/multicon/pkg/errors"
	"github.com/Two-Screen/multicon/pkg/stylesheet"
	"github.com/Two-Screen/multicon/pkg/variant"
)

const (
	// AppName names the cache directory.
	AppName = "multicon"

	// DefaultFile is loaded by Load("") when it exists.
	DefaultFile = "multicon.toml"

	// EnvPrefix is prepended to every environment variable name.
	EnvPrefix = "MULTICON_"

	// DefaultRenderTimeout bounds a single render.
	DefaultRenderTimeout = 30 * time.Second
)

// Engine kinds. EngineProcess runs the renderer in a worker process, so a
// crashing render cannot take the batch down with it; EngineBuiltin renders
// in-process.
const (
	EngineBuiltin = "builtin"
	EngineProcess = "process"
	EngineRsvg    = "rsvg"
	EngineHTTP    = "http"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheMongo = "mongo"
)

// Config is the complete configuration of one batch.
type Config struct {
	Src     []string  `toml:"src" env:"SRC" envSeparator:","`
	Dest    string    `toml:"dest" env:"DEST"`
	BaseDir string    `toml:"basedir" env:"BASEDIR"`
	Scales  []float64 `toml:"scales" env:"SCALES" envSeparator:","`

	CSSPrefix  string `toml:"cssprefix" env:"CSSPREFIX"`
	PNGFolder  string `toml:"pngfolder" env:"PNGFOLDER"`
	DataSVGCSS string `toml:"datasvgcss" env:"DATASVGCSS"`
	DataPNGCSS string `toml:"datapngcss" env:"DATAPNGCSS"`
	URLPNGCSS  string `toml:"urlpngcss" env:"URLPNGCSS"`

	Engine EngineConfig `toml:"engine" envPrefix:"ENGINE_"`
	Cache  CacheConfig  `toml:"cache" envPrefix:"CACHE_"`
}

// EngineConfig selects and tunes the render engine.
type EngineConfig struct {
	Kind         string        `toml:"kind" env:"KIND"`
	Command      []string      `toml:"command" env:"COMMAND" envSeparator:" "`
	URL          string        `toml:"url" env:"URL"`
	Timeout      time.Duration `toml:"timeout" env:"TIMEOUT"`
	ReadyTimeout time.Duration `toml:"ready_timeout" env:"READY_TIMEOUT"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend         string        `toml:"backend" env:"BACKEND"`
	Dir             string        `toml:"dir" env:"DIR"`
	TTL             time.Duration `toml:"ttl" env:"TTL"`
	RedisAddr       string        `toml:"redis_addr" env:"REDIS_ADDR"`
	RedisDB         int           `toml:"redis_db" env:"REDIS_DB"`
	MongoURI        string        `toml:"mongo_uri" env:"MONGO_URI"`
	MongoDatabase   string        `toml:"mongo_database" env:"MONGO_DATABASE"`
	MongoCollection string        `toml:"mongo_collection" env:"MONGO_COLLECTION"`
}

// Default returns the configuration used when nothing is set. The engine is
// a worker process started from the running executable ("multicon engine");
// programs embedding the pipeline should choose EngineBuiltin or set
// Engine.Command.
func Default() Config {
	return Config{
		Dest:       ".",
		Scales:     []float64{1},
		CSSPrefix:  variant.DefaultCSSPrefix,
		PNGFolder:  variant.DefaultPNGFolder,
		DataSVGCSS: stylesheet.DefaultSVGName,
		DataPNGCSS: stylesheet.DefaultPNGName,
		URLPNGCSS:  stylesheet.DefaultFallbackName,
		Engine: EngineConfig{
			Kind:         EngineProcess,
			Timeout:      DefaultRenderTimeout,
			ReadyTimeout: process.DefaultReadyTimeout,
		},
		Cache: CacheConfig{
			Backend:         CacheFile,
			TTL:             cache.DefaultTTL,
			MongoDatabase:   cache.DefaultMongoDatabase,
			MongoCollection: cache.DefaultMongoCollection,
		},
	}
}

// Load layers a TOML file and the environment over Default. An empty path
// loads DefaultFile if it exists; an explicit path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return cfg, merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "open %s", path)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "parse environment")
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside a batch.
func (c Config) Validate() error {
	if len(c.Scales) == 0 {
		return merrors.New(merrors.ErrCodeInvalidConfig, "at least one scale is required")
	}
	for _, s := range c.Scales {
		if err := merrors.ValidateScale(s); err != nil {
			return err
		}
	}
	if err := merrors.ValidateRelPath(filepath.ToSlash(c.PNGFolder)); err != nil {
		return merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "pngfolder")
	}
	if err := merrors.ValidateClassPrefix(c.CSSPrefix); err != nil {
		return merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "cssprefix")
	}
	sheets := []struct{ key, name string }{
		{"datasvgcss", c.DataSVGCSS},
		{"datapngcss", c.DataPNGCSS},
		{"urlpngcss", c.URLPNGCSS},
	}
	for _, s := range sheets {
		if err := merrors.ValidateRelPath(filepath.ToSlash(s.name)); err != nil {
			return merrors.Wrap(merrors.ErrCodeInvalidConfig, err, "%s", s.key)
		}
	}

	switch c.Engine.Kind {
	case EngineBuiltin, EngineProcess, EngineRsvg:
	case EngineHTTP:
		if c.Engine.URL == "" {
			return merrors.New(merrors.ErrCodeInvalidConfig, "engine.url is required for the http engine")
		}
	default:
		return merrors.New(merrors.ErrCodeInvalidConfig, "unknown engine %q (want builtin, process, rsvg or http)", c.Engine.Kind)
	}
	if c.Engine.Timeout < 0 || c.Engine.ReadyTimeout < 0 {
		return merrors.New(merrors.ErrCodeInvalidConfig, "engine timeouts must not be negative")
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return merrors.New(merrors.ErrCodeInvalidConfig, "cache.redis_addr is required for the redis backend")
		}
	case CacheMongo:
		if c.Cache.MongoURI == "" {
			return merrors.New(merrors.ErrCodeInvalidConfig, "cache.mongo_uri is required for the mongo backend")
		}
	default:
		return merrors.New(merrors.ErrCodeInvalidConfig, "unknown cache backend %q (want none, file, redis or mongo)", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return merrors.New(merrors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	return nil
}

// ScaleList converts the configured scales.
func (c Config) ScaleList() []variant.Scale {
	out := make([]variant.Scale, len(c.Scales))
	for i, s := range c.Scales {
		out[i] = variant.Scale(s)
	}
	return out
}

// VariantOptions returns the expansion options for this batch.
func (c Config) VariantOptions() variant.Options {
	return variant.Options{
		BaseDir:   c.BaseDir,
		Dest:      c.Dest,
		PNGFolder: c.PNGFolder,
		CSSPrefix: c.CSSPrefix,
		Scales:    c.ScaleList(),
	}
}

// SheetNames returns the configured stylesheet base names.
func (c Config) SheetNames() stylesheet.Names {
	return stylesheet.Names{
		SVG:      c.DataSVGCSS,
		PNG:      c.DataPNGCSS,
		Fallback: c.URLPNGCSS,
	}
}

// CacheDir returns the file cache directory: cache.dir when set, otherwise
// $XDG_CACHE_HOME/multicon or ~/.cache/multicon.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locate cache dir: %w", err)
	}
	return filepath.Join(home, ".cache", AppName), nil
}
