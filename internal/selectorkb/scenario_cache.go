package selectorkb

import (
	"encoding/json"
	"os"
	"path/filepath"

	"ghostqa/internal/logging"
)

// ScenarioCache is the set of element-keys actually used in a scenario's
// most recent run, so replays can prewarm the LRU.
type ScenarioCache struct {
	ScenarioID   string   `json:"scenario_id"`
	Domain       string   `json:"domain"`
	ElementKeys  []string `json:"element_keys"`
}

func (kb *KB) scenarioCachePath(scenarioID string) string {
	return filepath.Join(kb.dataDir, "scenario_cache", scenarioID+".json")
}

// GetScenarioCache loads the prewarm cache for a scenario, if present.
func (kb *KB) GetScenarioCache(scenarioID string) (*ScenarioCache, bool) {
	data, err := os.ReadFile(kb.scenarioCachePath(scenarioID))
	if err != nil {
		return nil, false
	}
	var sc ScenarioCache
	if err := json.Unmarshal(data, &sc); err != nil {
		logging.KBError("corrupt scenario cache for %s: %v", scenarioID, err)
		return nil, false
	}
	return &sc, true
}

// SaveScenarioCache persists the element-keys used in a scenario's run.
func (kb *KB) SaveScenarioCache(sc ScenarioCache) error {
	path := kb.scenarioCachePath(sc.ScenarioID)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(sc, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// PrewarmFromScenario loads a scenario's cache and pulls each referenced
// element, on every page of the scenario's domain where it is known, into
// the LRU ahead of a replay run. It returns the number of entries warmed.
func (kb *KB) PrewarmFromScenario(scenarioID string) int {
	sc, ok := kb.GetScenarioCache(scenarioID)
	if !ok {
		return 0
	}
	kb.ensureDomainLoaded(sc.Domain)
	warmed := 0
	kb.mu.RLock()
	for _, key := range sc.ElementKeys {
		for page, keys := range kb.primary[sc.Domain] {
			if e, ok := keys[key]; ok {
				kb.lru.Put(compositeKey(sc.Domain, page, key), e)
				warmed++
			}
		}
	}
	kb.mu.RUnlock()
	return warmed
}
