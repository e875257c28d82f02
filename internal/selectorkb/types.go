// Package selectorkb implements the Selector Knowledge Base: a persistent,
// indexed store mapping (domain, page, element-key) to ranked selectors,
// with O(1) direct lookup, fuzzy intent matching, a Bloom filter for fast
// negative answers, and a bounded hot cache.
package selectorkb

import (
	"sort"
	"time"
)

// Strategy is the closed set of selector resolution strategies.
type Strategy string

const (
	StrategyCSS         Strategy = "css"
	StrategyXPath       Strategy = "xpath"
	StrategyText        Strategy = "text"
	StrategyPlaceholder Strategy = "placeholder"
	StrategyLabel       Strategy = "label"
	StrategyRole        Strategy = "role"
	StrategyARIA        Strategy = "aria"
	StrategyTestID      Strategy = "test_id"
)

// LearnedFrom tags the provenance of a selector observation.
type LearnedFrom string

const (
	LearnedFromRecording  LearnedFrom = "recording"
	LearnedFromExploration LearnedFrom = "exploration"
	LearnedFromExecution  LearnedFrom = "execution"
	LearnedFromAI         LearnedFrom = "ai"
	LearnedFromManual     LearnedFrom = "manual"
)

// Selector is a candidate locator for an element, with empirical outcome
// counts driving its confidence.
type Selector struct {
	Value       string      `json:"value"`
	Strategy    Strategy    `json:"strategy"`
	Successes   int         `json:"successes"`
	Failures    int         `json:"failures"`
	LastUsed    time.Time   `json:"last_used"`
	LearnedFrom LearnedFrom `json:"learned_from"`
}

// Confidence returns the empirical success rate, defaulting to 0.5 when
// there is no observation yet.
func (s *Selector) Confidence() float64 {
	total := s.Successes + s.Failures
	if total == 0 {
		return 0.5
	}
	c := float64(s.Successes) / float64(total)
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func (s *Selector) recordOutcome(success bool) {
	if success {
		s.Successes++
	} else {
		s.Failures++
	}
	s.LastUsed = time.Now()
}

// ElementKnowledge is everything learned about one (domain, page, key)
// triple: an ordered list of candidate selectors and the current best one.
type ElementKnowledge struct {
	Domain      string                 `json:"domain"`
	Page        string                 `json:"page"`
	Key         string                 `json:"key"`
	Selectors   []*Selector            `json:"selectors"`
	ElementType string                 `json:"element_type,omitempty"`
	Context     map[string]interface{} `json:"context,omitempty"`
	LastSuccess time.Time              `json:"last_success,omitempty"`
}

// BestSelector returns the head of the selector list: maximum confidence,
// ties broken by most recent LastUsed.
func (e *ElementKnowledge) BestSelector() *Selector {
	if len(e.Selectors) == 0 {
		return nil
	}
	return e.Selectors[0]
}

// resort re-sorts Selectors by confidence descending, ties by recency
// descending. Must be called under the owning KB's write lock.
func (e *ElementKnowledge) resort() {
	sort.SliceStable(e.Selectors, func(i, j int) bool {
		ci, cj := e.Selectors[i].Confidence(), e.Selectors[j].Confidence()
		if ci != cj {
			return ci > cj
		}
		return e.Selectors[i].LastUsed.After(e.Selectors[j].LastUsed)
	})
}

func (e *ElementKnowledge) findSelector(value string, strategy Strategy) *Selector {
	for _, s := range e.Selectors {
		if s.Value == value && s.Strategy == strategy {
			return s
		}
	}
	return nil
}

// SelectorMatch is a ranked hit returned by FindByIntent: a reference to
// the owning triple plus a match confidence, which may be discounted
// relative to the selector's own stored confidence when the match was
// fuzzy.
type SelectorMatch struct {
	Domain     string    `json:"domain"`
	Page       string    `json:"page"`
	Key        string    `json:"key"`
	Selector   *Selector `json:"selector"`
	Confidence float64   `json:"confidence"`
	Fuzzy      bool      `json:"fuzzy"`
}

// Stats is a snapshot of KB-wide counters, returned by GetStats.
type Stats struct {
	Domains            int     `json:"domains"`
	Elements           int     `json:"elements"`
	Selectors          int     `json:"selectors"`
	LRUHits            int64   `json:"lru_hits"`
	LRUMisses          int64   `json:"lru_misses"`
	CacheHitRate        float64 `json:"cache_hit_rate"`
	BloomRejections     int64   `json:"bloom_rejections"`
	BloomSaveRate       float64 `json:"bloom_save_rate"` // fraction of lookups short-circuited by the bloom filter
	Lookups             int64   `json:"lookups"`
	DirtyDomains        int     `json:"dirty_domains"`
}

func normalizeKey(key string) string {
	out := make([]byte, 0, len(key))
	for i := 0; i < len(key); i++ {
		c := key[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out = append(out, c)
	}
	return string(out)
}

func compositeKey(domain, page, key string) string {
	return domain + ":" + page + ":" + key
}
