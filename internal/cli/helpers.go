package cli

import (
	"context"
	"fmt"

	"depviz/pkg/cache"
	"depviz/pkg/config"
	"depviz/pkg/graph"
	"depviz/pkg/provider/fixture"
	"depviz/pkg/provider/pypi"
)

// loadConfig resolves the effective configuration: the file named by
// --config when given, defaults otherwise.
func (o *rootOpts) loadConfig() (*config.Config, error) {
	if o.configPath != "" {
		return config.Load(o.configPath)
	}
	cfg := config.Default()
	return cfg, nil
}

// openCache constructs the cache backend the configuration selects.
// The caller owns the returned backend and must Close it.
func openCache(ctx context.Context, cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "file", "":
		dir, err := cfg.Cache.CacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cfg.Cache.Addr)
	case "mongo":
		return cache.NewMongoCache(ctx, cfg.Cache.URI, "depviz", "responses")
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}

// newProvider builds the dependency provider the configuration selects:
// the fixture repository in test mode, the live registry otherwise. The
// returned close function releases the cache backend and is always safe
// to call.
func newProvider(ctx context.Context, cfg *config.Config) (graph.Provider, func(), error) {
	if cfg.TestMode {
		repo, err := fixture.Open(cfg.TestRepositoryPath)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}

	backend, err := openCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	ttl, err := cfg.Cache.ParseTTL()
	if err != nil {
		backend.Close()
		return nil, nil, err
	}

	client := pypi.NewClient(cfg.RepositoryURL, backend, ttl)
	return client, func() { backend.Close() }, nil
}
