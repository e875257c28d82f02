package selectorkb

import "sync"

// Trie indexes normalized element-keys for prefix and fuzzy lookup when an
// exact intent-hash match misses. No example repo ships
// a trie implementation; this is hand-rolled stdlib, justified in DESIGN.md.
type Trie struct {
	mu   sync.RWMutex
	root *trieNode
	keys map[string]struct{} // full set of inserted (normalized) keys, for fuzzy scoring
}

type trieNode struct {
	children map[byte]*trieNode
	terminal bool
	full     string
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{
		root: &trieNode{children: make(map[byte]*trieNode)},
		keys: make(map[string]struct{}),
	}
}

// Insert adds a normalized element-key to the trie.
func (t *Trie) Insert(key string) {
	norm := normalizeKey(key)
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.keys[norm]; exists {
		return
	}
	t.keys[norm] = struct{}{}

	node := t.root
	for i := 0; i < len(norm); i++ {
		c := norm[i]
		child, ok := node.children[c]
		if !ok {
			child = &trieNode{children: make(map[byte]*trieNode)}
			node.children[c] = child
		}
		node = child
	}
	node.terminal = true
	node.full = norm
}

// PrefixSearch returns up to limit inserted keys starting with prefix.
func (t *Trie) PrefixSearch(prefix string, limit int) []string {
	norm := normalizeKey(prefix)
	t.mu.RLock()
	defer t.mu.RUnlock()

	node := t.root
	for i := 0; i < len(norm); i++ {
		child, ok := node.children[norm[i]]
		if !ok {
			return nil
		}
		node = child
	}

	var results []string
	collect(node, &results, limit)
	return results
}

func collect(node *trieNode, results *[]string, limit int) {
	if limit > 0 && len(*results) >= limit {
		return
	}
	if node.terminal {
		*results = append(*results, node.full)
	}
	for _, child := range node.children {
		if limit > 0 && len(*results) >= limit {
			return
		}
		collect(child, results, limit)
	}
}

// FuzzySearch returns up to limit inserted keys ranked by edit-distance
// closeness to query. Keys sharing query's longest available prefix are
// preferred; if none share a prefix the whole key set is scored.
func (t *Trie) FuzzySearch(query string, limit int) []string {
	norm := normalizeKey(query)
	t.mu.RLock()
	candidates := make([]string, 0, len(t.keys))
	for k := range t.keys {
		candidates = append(candidates, k)
	}
	t.mu.RUnlock()

	if len(candidates) == 0 {
		return nil
	}

	// Prefer candidates sharing the longest common prefix with the query.
	best := candidates
	for l := len(norm); l > 0; l-- {
		prefix := norm[:l]
		var shared []string
		for _, c := range candidates {
			if len(c) >= l && c[:l] == prefix {
				shared = append(shared, c)
			}
		}
		if len(shared) > 0 {
			best = shared
			break
		}
	}

	type scored struct {
		key  string
		dist int
	}
	scoredList := make([]scored, 0, len(best))
	for _, c := range best {
		scoredList = append(scoredList, scored{key: c, dist: levenshtein(norm, c)})
	}

	// simple insertion sort by distance; candidate lists are small.
	for i := 1; i < len(scoredList); i++ {
		j := i
		for j > 0 && scoredList[j-1].dist > scoredList[j].dist {
			scoredList[j-1], scoredList[j] = scoredList[j], scoredList[j-1]
			j--
		}
	}

	if limit <= 0 || limit > len(scoredList) {
		limit = len(scoredList)
	}
	out := make([]string, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, scoredList[i].key)
	}
	return out
}

// levenshtein computes the classic edit distance between a and b.
func levenshtein(a, b string) int {
	la, lb := len(a), len(b)
	if la == 0 {
		return lb
	}
	if lb == 0 {
		return la
	}

	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}

	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			del := prev[j] + 1
			ins := curr[j-1] + 1
			sub := prev[j-1] + cost
			m := del
			if ins < m {
				m = ins
			}
			if sub < m {
				m = sub
			}
			curr[j] = m
		}
		prev, curr = curr, prev
	}
	return prev[lb]
}
