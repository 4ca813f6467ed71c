package cache

import (
	"context"
	"sort"

	"github.com/kapu/mana-chat-bot-go/internal/constants"
)

// ModuleStateStore persists the active module set as a JSON list under a
// single key.
type ModuleStateStore struct {
	cache *CacheService
	key   string
}

func NewModuleStateStore(cache *CacheService, key string) *ModuleStateStore {
	if key == "" {
		key = constants.RedisConfig.ModulesKey
	}
	return &ModuleStateStore{cache: cache, key: key}
}

func (s *ModuleStateStore) LoadModules(ctx context.Context) ([]string, bool, error) {
	var modules []string
	found, err := s.cache.Get(ctx, s.key, &modules)
	if err != nil || !found {
		return nil, false, err
	}
	return modules, true, nil
}

// SaveModules stores modules without expiry. An empty list is stored as well,
// so a bot with every module disabled stays that way after a restart.
func (s *ModuleStateStore) SaveModules(ctx context.Context, modules []string) error {
	sorted := append([]string{}, modules...)
	sort.Strings(sorted)
	return s.cache.Set(ctx, s.key, sorted, 0)
}
