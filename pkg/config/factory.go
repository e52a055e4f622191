package config

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/Two-Screen/multicon/pkg/cache"
	"github.com/Two-Screen/multicon/pkg/engine"
	"github.com/Two-Screen/multicon/pkg/engine/httpengine"
	"github.com/Two-Screen/multicon/pkg/engine/process"
	"github.com/Two-Screen/multicon/pkg/engine/raster"
	"github.com/Two-Screen/multicon/pkg/engine/rsvg"
	merrors "github.com/Two-Screen/multicon/pkg/errors"
)

// NewEngine builds the configured render engine. Starting it is left to the
// pipeline.
func (c Config) NewEngine(logger *log.Logger) (engine.Engine, error) {
	switch c.Engine.Kind {
	case EngineBuiltin:
		return raster.NewEngine(), nil
	case EngineProcess, "":
		return &process.Engine{
			Command:      c.Engine.Command,
			Stderr:       os.Stderr,
			ReadyTimeout: c.Engine.ReadyTimeout,
			Logger:       logger,
		}, nil
	case EngineRsvg:
		e := &rsvg.Engine{}
		if len(c.Engine.Command) > 0 {
			e.Binary = c.Engine.Command[0]
		}
		return e, nil
	case EngineHTTP:
		return &httpengine.Engine{URL: c.Engine.URL}, nil
	}
	return nil, merrors.New(merrors.ErrCodeInvalidConfig, "unknown engine %q", c.Engine.Kind)
}

// OpenCache connects the configured cache backend. An unusable file cache
// directory degrades to no caching with a warning; remote backends that
// cannot be reached are an error.
func (c Config) OpenCache(ctx context.Context, logger *log.Logger) (cache.Cache, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	switch c.Cache.Backend {
	case CacheNone:
		return cache.NewNullCache(), nil
	case CacheFile, "":
		dir, err := c.CacheDir()
		if err != nil {
			logger.Warn("render cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			logger.Warn("render cache disabled", "dir", dir, "error", err)
			return cache.NewNullCache(), nil
		}
		return fc, nil
	case CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.Cache.RedisAddr, DB: c.Cache.RedisDB})
		if err != nil {
			return nil, err
		}
		return rc, nil
	case CacheMongo:
		mc, err := cache.NewMongoCache(ctx, cache.MongoConfig{
			URI:        c.Cache.MongoURI,
			Database:   c.Cache.MongoDatabase,
			Collection: c.Cache.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		return mc, nil
	}
	return nil, merrors.New(merrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
}
