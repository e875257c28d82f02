package selectorkb

// GetStats returns a snapshot of KB-wide counters.
func (kb *KB) GetStats() Stats {
	kb.mu.RLock()
	domains := len(kb.primary)
	elements := 0
	selectors := 0
	for _, pages := range kb.primary {
		for _, keys := range pages {
			elements += len(keys)
			for _, e := range keys {
				selectors += len(e.Selectors)
			}
		}
	}
	lookups := kb.lookups
	bloomRejections := kb.bloomRejections
	kb.mu.RUnlock()

	hits, misses := kb.lru.Counts()

	kb.dirtyMu.Lock()
	dirtyCount := len(kb.dirty)
	kb.dirtyMu.Unlock()

	var bloomSaveRate float64
	if lookups > 0 {
		bloomSaveRate = float64(bloomRejections) / float64(lookups)
	}

	return Stats{
		Domains:         domains,
		Elements:        elements,
		Selectors:       selectors,
		LRUHits:         hits,
		LRUMisses:       misses,
		CacheHitRate:    kb.lru.HitRate(),
		BloomRejections: bloomRejections,
		BloomSaveRate:   bloomSaveRate,
		Lookups:         lookups,
		DirtyDomains:    dirtyCount,
	}
}
