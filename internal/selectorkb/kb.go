package selectorkb

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"ghostqa/internal/config"
	"ghostqa/internal/logging"
)

type ref struct {
	Domain string
	Page   string
	Key    string
}

// KB is the Selector Knowledge Base: five cooperating indexes plus a
// bounded hot cache, with per-domain atomic JSON persistence.
type KB struct {
	mu sync.RWMutex

	// 1. primary map: domain -> page -> element-key -> ElementKnowledge
	primary map[string]map[string]map[string]*ElementKnowledge

	// 2. intent-hash map: hash(normalized key) -> owning triples
	intentHash map[string][]ref

	// 3. reverse map: selector string -> owning triple
	reverse map[string]ref

	// 4. bloom filter over "domain:page:key"
	bloom *Bloom

	// 5. trie of normalized element-keys
	trie *Trie

	lru *LRU

	cfg     config.KBConfig
	dataDir string

	loadedDomains map[string]bool

	dirtyMu sync.Mutex
	dirty   map[string]bool

	stopCh chan struct{}
	doneCh chan struct{}

	lookups         int64
	bloomRejections int64
}

// New constructs a KB rooted at dataDir, seeds its indexes, imports
// exploration data, and starts the background persistence loop.
func New(cfg config.KBConfig, dataDir string) *KB {
	kb := &KB{
		primary:       make(map[string]map[string]map[string]*ElementKnowledge),
		intentHash:    make(map[string][]ref),
		reverse:       make(map[string]ref),
		bloom:         NewBloom(cfg.BloomCapacity, cfg.BloomFalsePositive),
		trie:          NewTrie(),
		lru:           NewLRU(cfg.LRUSize),
		cfg:           cfg,
		dataDir:       dataDir,
		loadedDomains: make(map[string]bool),
		dirty:         make(map[string]bool),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}

	kb.importExplorations()
	go kb.persistenceLoop()

	return kb
}

func hashKey(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])[:16]
}

// Lookup resolves (domain, page, key) to its ElementKnowledge, consulting
// the LRU, then lazily loading the domain (which fills the Bloom filter
// with its keys), then the Bloom filter as a fast-negative path, before
// falling through to the primary map.
func (kb *KB) Lookup(domain, page, key string) (*ElementKnowledge, bool) {
	kb.mu.Lock()
	kb.lookups++
	kb.mu.Unlock()

	ck := compositeKey(domain, page, key)

	if e, ok := kb.lru.Get(ck); ok {
		return e, true
	}

	kb.ensureDomainLoaded(domain)

	if !kb.bloom.MayContain(ck) {
		kb.mu.Lock()
		kb.bloomRejections++
		kb.mu.Unlock()
		return nil, false
	}

	kb.mu.RLock()
	pages, ok := kb.primary[domain]
	if !ok {
		kb.mu.RUnlock()
		return nil, false
	}
	keys, ok := pages[page]
	if !ok {
		kb.mu.RUnlock()
		return nil, false
	}
	e, ok := keys[key]
	kb.mu.RUnlock()
	if !ok {
		return nil, false
	}

	kb.lru.Put(ck, e)
	return e, true
}

// FindByIntent performs a fuzzy, cross-domain search by element-key
// intent: exact hash match first, falling back to trie fuzzy search with
// a confidence penalty on the match score.
func (kb *KB) FindByIntent(intent, domain, page string, limit int) []SelectorMatch {
	norm := normalizeKey(intent)
	h := hashKey(norm)

	kb.mu.RLock()
	refs := append([]ref(nil), kb.intentHash[h]...)
	kb.mu.RUnlock()

	var matches []SelectorMatch
	seen := make(map[string]bool)

	addMatch := func(r ref, fuzzy bool) {
		if domain != "" && r.Domain != domain {
			return
		}
		if page != "" && r.Page != page {
			return
		}
		ck := compositeKey(r.Domain, r.Page, r.Key)
		if seen[ck] {
			return
		}
		seen[ck] = true

		kb.mu.RLock()
		e := kb.getLocked(r.Domain, r.Page, r.Key)
		kb.mu.RUnlock()
		if e == nil || e.BestSelector() == nil {
			return
		}
		conf := e.BestSelector().Confidence()
		if fuzzy {
			conf *= kb.cfg.FuzzyMatchPenalty
		}
		matches = append(matches, SelectorMatch{
			Domain:     r.Domain,
			Page:       r.Page,
			Key:        r.Key,
			Selector:   e.BestSelector(),
			Confidence: conf,
			Fuzzy:      fuzzy,
		})
	}

	for _, r := range refs {
		addMatch(r, false)
	}

	if len(matches) == 0 {
		similar := kb.trie.FuzzySearch(norm, limit*3+10)
		for _, s := range similar {
			kb.mu.RLock()
			fuzzyRefs := append([]ref(nil), kb.intentHash[hashKey(s)]...)
			kb.mu.RUnlock()
			for _, r := range fuzzyRefs {
				addMatch(r, true)
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Confidence > matches[j].Confidence })
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// getLocked returns the ElementKnowledge for a triple assuming it is
// already loaded; callers must hold kb.mu (read or write).
func (kb *KB) getLocked(domain, page, key string) *ElementKnowledge {
	pages, ok := kb.primary[domain]
	if !ok {
		return nil
	}
	keys, ok := pages[page]
	if !ok {
		return nil
	}
	return keys[key]
}

// AddLearning upserts a selector observation into the KB, attributing the
// outcome to a direct test execution. See AddLearningWithSource for
// exploration- or AI-sourced observations, which seed a different starting
// confidence.
func (kb *KB) AddLearning(domain, page, key, selectorValue string, strategy Strategy, success bool, elementType string, context map[string]interface{}) *ElementKnowledge {
	return kb.AddLearningWithSource(domain, page, key, selectorValue, strategy, success, elementType, context, LearnedFromExecution)
}

// AddLearningWithSource upserts a selector observation into the KB: creates
// the ElementKnowledge on first observation, updates outcome counts,
// recomputes confidence, re-sorts, refreshes all side indexes, and marks
// the owning domain dirty for the next persistence flush.
//
// A brand-new selector first observed via exploration or AI inference is
// seeded with pseudo-counts matching cfg.FuzzyWriteConfidence rather than
// jumping straight to 1.0 on one success: a single untested suggestion
// shouldn't outrank a selector with real execution history. The seed
// decays toward the true rate as further real outcomes accumulate.
func (kb *KB) AddLearningWithSource(domain, page, key, selectorValue string, strategy Strategy, success bool, elementType string, context map[string]interface{}, learnedFrom LearnedFrom) *ElementKnowledge {
	kb.ensureDomainLoaded(domain)

	kb.mu.Lock()
	defer kb.mu.Unlock()

	if kb.primary[domain] == nil {
		kb.primary[domain] = make(map[string]map[string]*ElementKnowledge)
	}
	if kb.primary[domain][page] == nil {
		kb.primary[domain][page] = make(map[string]*ElementKnowledge)
	}

	e, exists := kb.primary[domain][page][key]
	isNewSelector := false
	if !exists {
		e = &ElementKnowledge{Domain: domain, Page: page, Key: key, ElementType: elementType, Context: context}
		kb.primary[domain][page][key] = e
	}
	if elementType != "" {
		e.ElementType = elementType
	}
	if context != nil {
		e.Context = context
	}

	sel := e.findSelector(selectorValue, strategy)
	if sel == nil {
		isNewSelector = true
		sel = &Selector{Value: selectorValue, Strategy: strategy, LearnedFrom: learnedFrom}
		if success && (learnedFrom == LearnedFromExploration || learnedFrom == LearnedFromAI) {
			seedSuccesses, seedFailures := pseudoCounts(kb.cfg.FuzzyWriteConfidence)
			sel.Successes, sel.Failures = seedSuccesses, seedFailures
		}
		e.Selectors = append(e.Selectors, sel)
	}
	sel.recordOutcome(success)
	if success {
		e.LastSuccess = sel.LastUsed
	}

	e.resort()

	ck := compositeKey(domain, page, key)
	kb.bloom.Add(ck)
	kb.trie.Insert(key)
	kb.intentHash[hashKey(normalizeKey(key))] = appendUniqueRef(kb.intentHash[hashKey(normalizeKey(key))], ref{Domain: domain, Page: page, Key: key})
	kb.reverse[selectorValue] = ref{Domain: domain, Page: page, Key: key}

	kb.lru.Put(ck, e)
	kb.markDirty(domain)

	if isNewSelector {
		logging.KBDebug("learned new selector domain=%s page=%s key=%s selector=%s success=%v", domain, page, key, selectorValue, success)
	}

	return e
}

// pseudoCounts converts a target confidence into the smallest integer
// success/failure pair (out of 5 trials) approximating it, e.g. 0.8 -> (4, 1).
func pseudoCounts(confidence float64) (successes, failures int) {
	const trials = 5
	if confidence <= 0 {
		return 0, trials
	}
	if confidence >= 1 {
		return trials, 0
	}
	s := int(confidence*trials + 0.5)
	return s, trials - s
}

func appendUniqueRef(list []ref, r ref) []ref {
	for _, existing := range list {
		if existing == r {
			return list
		}
	}
	return append(list, r)
}

func (kb *KB) markDirty(domain string) {
	kb.dirtyMu.Lock()
	kb.dirty[domain] = true
	kb.dirtyMu.Unlock()
}

// Close stops the background persistence loop, then flushes every dirty
// domain.
func (kb *KB) Close() {
	close(kb.stopCh)
	<-kb.doneCh
	kb.ForceSave()
}

func (kb *KB) persistenceLoop() {
	defer close(kb.doneCh)
	interval := time.Duration(kb.cfg.PersistIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			kb.flushDirty()
		case <-kb.stopCh:
			return
		}
	}
}
