package out

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"
)

const hiddenKey = "hidden"

type hiddenFile struct {
	Packages []string `yaml:"packages"`
}

// CachedFilterProvider merges the configured hidden packages with an
// optional YAML list on disk. The merged set is cached for ttl so edits to
// the file are picked up without a restart.
type CachedFilterProvider struct {
	static []string
	path   string
	cache  *cache.Cache
}

func NewCachedFilterProvider(static []string, path string, ttl time.Duration) *CachedFilterProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &CachedFilterProvider{
		static: static,
		path:   path,
		cache:  cache.New(ttl, 2*ttl),
	}
}

func (p *CachedFilterProvider) HiddenPackages(_ context.Context) (map[string]struct{}, error) {
	if cached, ok := p.cache.Get(hiddenKey); ok {
		return cached.(map[string]struct{}), nil
	}
	set := map[string]struct{}{}
	for _, pkg := range p.static {
		set[pkg] = struct{}{}
	}
	if p.path != "" {
		raw, err := os.ReadFile(p.path)
		switch {
		case err == nil:
			file := hiddenFile{}
			if err := yaml.Unmarshal(raw, &file); err != nil {
				return nil, fmt.Errorf("decode hidden packages: %w", err)
			}
			for _, pkg := range file.Packages {
				set[pkg] = struct{}{}
			}
		case !errors.Is(err, os.ErrNotExist):
			return nil, fmt.Errorf("read hidden packages: %w", err)
		}
	}
	p.cache.Set(hiddenKey, set, cache.DefaultExpiration)
	return set, nil
}

// Invalidate drops the cached set.
func (p *CachedFilterProvider) Invalidate() {
	p.cache.Delete(hiddenKey)
}
