package strategy

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Factory constructs a fresh strategy instance. params override the
// documented defaults and may be nil.
type Factory func(params map[string]any) (Strategy, error)

// StrategyParam describes one tunable parameter for discovery.
type StrategyParam struct {
	Name        string   `yaml:"name" json:"name"`
	Type        string   `yaml:"type" json:"type"`
	Description string   `yaml:"description" json:"description"`
	Default     any      `yaml:"default" json:"default"`
	Options     []string `yaml:"options,omitempty" json:"options,omitempty"`
}

// StrategyInfo is the registry entry of a strategy.
type StrategyInfo struct {
	ID          string          `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Params      []StrategyParam `yaml:"params" json:"params"`
	// Schema is the JSON schema of the parameters
	Schema  string  `yaml:"schema" json:"schema"`
	Factory Factory `yaml:"-" json:"-"`
}

// Registry maps strategy ids to their metadata and factory.
type Registry interface {
	// Register adds info. The first registration of an id wins, later ones fail.
	Register(info StrategyInfo) error
	// Lookup returns the factory registered under id.
	Lookup(id string) (Factory, error)
	// Get returns the metadata registered under id.
	Get(id string) (StrategyInfo, error)
	// Enumerate returns every registered entry sorted by id.
	Enumerate() []StrategyInfo
}

// RegistryV1 is a Registry safe for concurrent lookups.
type RegistryV1 struct {
	strategies map[string]StrategyInfo
	mu         sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return &RegistryV1{
		strategies: make(map[string]StrategyInfo),
		mu:         sync.RWMutex{},
	}
}

func (r *RegistryV1) Register(info StrategyInfo) error {
	if info.ID == "" {
		return errors.New(errors.ErrCodeInvalidParameter, "Register: strategy id cannot be empty")
	}

	if info.Factory == nil {
		return errors.Newf(errors.ErrCodeStrategyFactoryUnavailable, "Register: strategy %s has no factory", info.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.strategies[info.ID]; exists {
		return errors.Newf(errors.ErrCodeStrategyAlreadyRegistered, "Register: strategy with id %s already registered", info.ID)
	}

	r.strategies[info.ID] = info

	return nil
}

func (r *RegistryV1) Lookup(id string) (Factory, error) {
	info, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	return info.Factory, nil
}

func (r *RegistryV1) Get(id string) (StrategyInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	info, exists := r.strategies[id]
	if !exists {
		return StrategyInfo{}, errors.Newf(errors.ErrCodeUnsupportedStrategy, "Lookup: strategy with id %s not found", id)
	}

	return info, nil
}

func (r *RegistryV1) Enumerate() []StrategyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]StrategyInfo, 0, len(r.strategies))
	for _, info := range r.strategies {
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].ID < infos[j].ID
	})

	return infos
}
