package brain

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ghostqa/internal/logging"
)

// ErrorPattern tracks one class of error and its recovery success rate.
type ErrorPattern struct {
	ID              string    `json:"id"`
	ErrorType       string    `json:"error_type"`
	MessageTokens   []string  `json:"message_tokens"`
	FieldHint       string    `json:"field_hint,omitempty"`
	RecoveryAction  string    `json:"recovery_action,omitempty"`
	RecoverySuccess int       `json:"recovery_success"`
	RecoveryFailure int       `json:"recovery_failure"`
	LastSeen        time.Time `json:"last_seen"`
}

// RecoveryRate returns RecoverySuccess/(Success+Failure), 0 with no data.
func (p *ErrorPattern) RecoveryRate() float64 {
	total := p.RecoverySuccess + p.RecoveryFailure
	if total == 0 {
		return 0
	}
	return float64(p.RecoverySuccess) / float64(total)
}

// ErrorMemory recognizes recurring error messages and tracks which
// recovery actions have worked for them.
type ErrorMemory struct {
	mu       sync.RWMutex
	patterns map[string]*ErrorPattern
	path     string
}

// NewErrorMemory loads (or initializes) error memory from dataDir.
func NewErrorMemory(dataDir string) *ErrorMemory {
	em := &ErrorMemory{
		patterns: make(map[string]*ErrorPattern),
		path:     filepath.Join(dataDir, "error_memory.json"),
	}
	em.load()
	return em
}

func (em *ErrorMemory) load() {
	data, err := os.ReadFile(em.path)
	if err != nil {
		return
	}
	var patterns map[string]*ErrorPattern
	if err := json.Unmarshal(data, &patterns); err != nil {
		logging.BrainDebug("corrupt error memory, skipping: %v", err)
		return
	}
	em.mu.Lock()
	em.patterns = patterns
	em.mu.Unlock()
}

func tokenize(message string) []string {
	lower := strings.ToLower(message)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'))
	})
	return fields
}

// RememberError upserts a pattern for the given error, recording a
// recovery outcome if recoveryAction was attempted.
func (em *ErrorMemory) RememberError(errType, message, fieldHint, recoveryAction string, recoveryWorked *bool) *ErrorPattern {
	tokens := tokenize(message)
	id := errType + ":" + fieldHint

	em.mu.Lock()
	defer em.mu.Unlock()

	p, ok := em.patterns[id]
	if !ok {
		p = &ErrorPattern{ID: id, ErrorType: errType, MessageTokens: tokens, FieldHint: fieldHint}
		em.patterns[id] = p
	}
	p.LastSeen = time.Now()
	if recoveryAction != "" {
		p.RecoveryAction = recoveryAction
	}
	if recoveryWorked != nil {
		if *recoveryWorked {
			p.RecoverySuccess++
		} else {
			p.RecoveryFailure++
		}
	}
	return p
}

// FindMatchingError tokenizes message and returns the highest-scoring
// known pattern above a minimal overlap threshold.
func (em *ErrorMemory) FindMatchingError(message string) (*ErrorPattern, float64) {
	tokens := tokenize(message)
	tokenSet := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		tokenSet[t] = true
	}

	em.mu.RLock()
	defer em.mu.RUnlock()

	var best *ErrorPattern
	var bestScore float64
	for _, p := range em.patterns {
		if len(p.MessageTokens) == 0 {
			continue
		}
		matches := 0
		for _, t := range p.MessageTokens {
			if tokenSet[t] {
				matches++
			}
		}
		score := float64(matches) / float64(len(p.MessageTokens))
		if score > bestScore {
			bestScore = score
			best = p
		}
	}
	if bestScore < 0.3 {
		return nil, 0
	}
	return best, bestScore
}

// Decay drops low-confidence stale patterns.
func (em *ErrorMemory) Decay(maxAgeDays int) int {
	cutoff := time.Now().AddDate(0, 0, -maxAgeDays)

	em.mu.Lock()
	defer em.mu.Unlock()

	dropped := 0
	for id, p := range em.patterns {
		if p.LastSeen.Before(cutoff) && p.RecoveryRate() < 0.5 {
			delete(em.patterns, id)
			dropped++
		}
	}
	return dropped
}

// Flush persists error memory to disk atomically.
func (em *ErrorMemory) Flush() error {
	em.mu.RLock()
	data, err := json.MarshalIndent(em.patterns, "", "  ")
	em.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(em.path), 0755); err != nil {
		return err
	}
	tmp := em.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, em.path)
}

// GetStats returns counters for this memory.
func (em *ErrorMemory) GetStats() map[string]interface{} {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return map[string]interface{}{"patterns": len(em.patterns)}
}
