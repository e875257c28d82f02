package patterns

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"ghostqa/internal/logging"
)

// Store is the Action Pattern Store: an in-memory catalog with a single
// JSON catalog file, hot-reloaded on external edits via fsnotify so
// operators can add patterns without a restart.
type Store struct {
	mu       sync.RWMutex
	byID     map[string]*ActionPattern
	dataDir  string
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
}

// New constructs a Store rooted at dataDir, seeds built-in patterns,
// loads any persisted catalog, and starts a file watcher for hot-reload.
func New(dataDir string) *Store {
	s := &Store{
		byID:    make(map[string]*ActionPattern),
		dataDir: dataDir,
		stopCh:  make(chan struct{}),
	}

	for _, p := range builtinPatterns() {
		s.byID[p.ID] = p
	}

	s.load()
	s.startWatcher()
	return s
}

func (s *Store) catalogPath() string {
	return filepath.Join(s.dataDir, "catalog.json")
}

func (s *Store) load() {
	data, err := os.ReadFile(s.catalogPath())
	if err != nil {
		return
	}
	var list []*ActionPattern
	if err := json.Unmarshal(data, &list); err != nil {
		logging.PatternsDebug("corrupt pattern catalog, skipping: %v", err)
		return
	}
	s.mu.Lock()
	for _, p := range list {
		s.byID[p.ID] = p
	}
	s.mu.Unlock()
}

// save persists every pattern in the catalog, built-ins included, so
// usage counts of built-ins survive restarts. New re-seeds built-ins
// before loading, so a saved built-in overrides its seeded copy.
func (s *Store) save() error {
	s.mu.RLock()
	list := make([]*ActionPattern, 0, len(s.byID))
	for _, p := range s.byID {
		list = append(list, p)
	}
	s.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })

	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.catalogPath() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.catalogPath())
}

func (s *Store) startWatcher() {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		logging.PatternsDebug("fsnotify unavailable, hot-reload disabled: %v", err)
		return
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		w.Close()
		return
	}
	if err := w.Add(s.dataDir); err != nil {
		w.Close()
		return
	}
	s.watcher = w

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 && filepath.Base(ev.Name) == "catalog.json" {
					logging.Patterns("catalog.json changed externally, reloading")
					s.load()
				}
			case <-w.Errors:
			case <-s.stopCh:
				return
			}
		}
	}()
}

// Close stops the file watcher.
func (s *Store) Close() {
	close(s.stopCh)
	if s.watcher != nil {
		s.watcher.Close()
	}
}

// FindPattern returns patterns matching an optional intent and/or
// category, sorted by confidence descending.
func (s *Store) FindPattern(intent, category string) []*ActionPattern {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*ActionPattern
	for _, p := range s.byID {
		if category != "" && p.Category != category {
			continue
		}
		if !p.matchesIntent(intent) {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence() > out[j].Confidence() })
	return out
}

// GetPattern returns a pattern by ID.
func (s *Store) GetPattern(id string) (*ActionPattern, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	return p, ok
}

// AddPattern inserts a new pattern, generating an ID if absent, and
// persists the catalog.
func (s *Store) AddPattern(p *ActionPattern) string {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	s.mu.Lock()
	s.byID[p.ID] = p
	s.mu.Unlock()
	if err := s.save(); err != nil {
		logging.PatternsDebug("failed to persist pattern catalog: %v", err)
	}
	return p.ID
}

// UpdateStats increments used/succeeded for a pattern and persists the
// change.
func (s *Store) UpdateStats(id string, success bool) {
	s.mu.Lock()
	p, ok := s.byID[id]
	if ok {
		p.Used++
		if success {
			p.Succeeded++
		}
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	if err := s.save(); err != nil {
		logging.PatternsDebug("failed to persist pattern stats: %v", err)
	}
}

// StatsSummary is the dict returned by GetStats.
type StatsSummary struct {
	TotalPatterns int     `json:"total_patterns"`
	TotalUsed     int     `json:"total_used"`
	AverageConf   float64 `json:"average_confidence"`
}

// GetStats returns a summary of the catalog.
func (s *Store) GetStats() StatsSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	var used int
	for _, p := range s.byID {
		sum += p.Confidence()
		used += p.Used
	}
	avg := 0.0
	if len(s.byID) > 0 {
		avg = sum / float64(len(s.byID))
	}
	return StatsSummary{TotalPatterns: len(s.byID), TotalUsed: used, AverageConf: avg}
}
