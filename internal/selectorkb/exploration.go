package selectorkb

import (
	"encoding/json"
	"os"
	"path/filepath"

	"ghostqa/internal/logging"
)

// explorationElement is one discovered element in an exploration file.
type explorationElement struct {
	Domain      string   `json:"domain"`
	Page        string   `json:"page"`
	Key         string   `json:"key"`
	Selector    string   `json:"selector"`
	Strategy    Strategy `json:"strategy"`
	Confidence  float64  `json:"confidence"`
	ElementType string   `json:"element_type,omitempty"`
}

// importExplorations scans <data>/explorations/*.json at startup. For
// each discovered element with confidence >= the configured threshold, it
// calls AddLearningWithSource(success=true, LearnedFromExploration)
// unless an equal-or-higher-confidence entry already exists.
func (kb *KB) importExplorations() {
	dir := filepath.Join(kb.dataDir, "explorations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return // no explorations directory yet; not an error
	}

	imported := 0
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logging.KBError("failed to read exploration file %s: %v", path, err)
			continue
		}

		var elements []explorationElement
		if err := json.Unmarshal(data, &elements); err != nil {
			logging.KBError("corrupt exploration file %s, skipping: %v", path, err)
			continue
		}

		for _, el := range elements {
			if el.Confidence < kb.cfg.ExplorationMinConf {
				continue
			}
			kb.ensureDomainLoaded(el.Domain)
			if existing, ok := kb.Lookup(el.Domain, el.Page, el.Key); ok {
				if best := existing.BestSelector(); best != nil && best.Confidence() >= el.Confidence {
					continue
				}
			}
			strategy := el.Strategy
			if strategy == "" {
				strategy = StrategyCSS
			}
			kb.AddLearningWithSource(el.Domain, el.Page, el.Key, el.Selector, strategy, true, el.ElementType, nil, LearnedFromExploration)
			imported++
		}
	}

	if imported > 0 {
		logging.KB("imported %d elements from explorations", imported)
	}
}
