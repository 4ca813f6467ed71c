package command

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kapu/mana-chat-bot-go/internal/constants"
	"go.uber.org/zap"
)

// ModuleStore persists the active module set between restarts.
type ModuleStore interface {
	LoadModules(ctx context.Context) (modules []string, found bool, err error)
	SaveModules(ctx context.Context, modules []string) error
}

// ModuleRegistry tracks which functional modules are active. The default
// module is active until it is explicitly disabled.
type ModuleRegistry struct {
	mu     sync.RWMutex
	active map[string]struct{}
	store  ModuleStore
	logger *zap.Logger
}

// NewModuleRegistry creates a registry with only the default module active.
// store may be nil.
func NewModuleRegistry(store ModuleStore, logger *zap.Logger) *ModuleRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModuleRegistry{
		active: map[string]struct{}{constants.DefaultModule: {}},
		store:  store,
		logger: logger,
	}
}

// Restore replaces the active set with the stored one. restored is false
// when nothing was saved yet.
func (m *ModuleRegistry) Restore(ctx context.Context) (restored bool, err error) {
	if m.store == nil {
		return false, nil
	}

	modules, found, err := m.store.LoadModules(ctx)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}

	active := make(map[string]struct{}, len(modules))
	for _, name := range modules {
		if name = strings.TrimSpace(name); name != "" {
			active[name] = struct{}{}
		}
	}

	m.mu.Lock()
	m.active = active
	m.mu.Unlock()

	m.logger.Info("Active modules restored", zap.Strings("modules", m.Active()))
	return true, nil
}

// Enable activates a module. It reports whether the set changed.
func (m *ModuleRegistry) Enable(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}

	m.mu.Lock()
	if _, ok := m.active[name]; ok {
		m.mu.Unlock()
		return false
	}
	m.active[name] = struct{}{}
	snapshot := m.sortedLocked()
	m.mu.Unlock()

	m.logger.Info("Module enabled", zap.String("module", name))
	m.persist(ctx, snapshot)
	return true
}

// Disable deactivates a module. It reports whether the set changed.
func (m *ModuleRegistry) Disable(ctx context.Context, name string) bool {
	name = strings.TrimSpace(name)

	m.mu.Lock()
	if _, ok := m.active[name]; !ok {
		m.mu.Unlock()
		return false
	}
	delete(m.active, name)
	snapshot := m.sortedLocked()
	m.mu.Unlock()

	m.logger.Info("Module disabled", zap.String("module", name))
	m.persist(ctx, snapshot)
	return true
}

func (m *ModuleRegistry) IsActive(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.active[name]
	return ok
}

// Active returns the active module names in sorted order.
func (m *ModuleRegistry) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedLocked()
}

func (m *ModuleRegistry) sortedLocked() []string {
	out := make([]string, 0, len(m.active))
	for name := range m.active {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// persist writes through to the store. A failed write leaves the in-memory
// state as is.
func (m *ModuleRegistry) persist(ctx context.Context, modules []string) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveModules(ctx, modules); err != nil {
		m.logger.Warn("Failed to persist active modules",
			zap.Strings("modules", modules),
			zap.Error(err),
		)
	}
}
