package checks

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/dqcheck/pkg/rules"
	"github.com/leapstack-labs/dqcheck/pkg/table"
)

// CheckFunc applies one check to a table under a rule set and returns
// its violations. Check functions must not mutate the table.
type CheckFunc func(t *table.Table, rs *rules.RuleSet) Report

// CheckDef describes one registered check.
type CheckDef struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Description string    `json:"description"`
	Run         CheckFunc `json:"-"`
}

var (
	registryMu sync.RWMutex
	registry   = map[string]CheckDef{}
)

// Register adds a check to the global registry. Called from init.
func Register(def CheckDef) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[def.ID] = def
}

// All returns the registered checks sorted by ID.
func All() []CheckDef {
	registryMu.RLock()
	defer registryMu.RUnlock()

	defs := make([]CheckDef, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ID < defs[j].ID })
	return defs
}

// Get returns a check by ID.
func Get(id string) (CheckDef, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	def, ok := registry[id]
	return def, ok
}
