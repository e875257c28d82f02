// Package brain implements the three adaptive memories — PageMemory,
// ErrorMemory, WorkflowMemory — that the Decision Engine and Learning
// Engine consult and update, each persisted as JSON
// in the same atomic-write idiom as internal/selectorkb.
package brain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
)

// PageSignature is a fingerprint of a rendered page: two pages with
// equal signatures are treated as the same page.
type PageSignature struct {
	URLPattern  string `json:"url_pattern"`
	TitleHash   string `json:"title_hash"`
	ElementHash string `json:"element_hash"`
	PageType    string `json:"page_type"`
}

// Key returns the pinned lowercase hex SHA-256 digest over a canonical
// JSON encoding of the signature fields: an array of {"k","v"} pairs
// sorted by field name.
// This guarantees two independently computed signatures over the same
// inputs always agree, resolving the hash-algorithm Open Question.
func (s PageSignature) Key() string {
	canonical := map[string]string{
		"url_pattern":  s.URLPattern,
		"title_hash":   s.TitleHash,
		"element_hash": s.ElementHash,
		"page_type":    s.PageType,
	}
	keys := make([]string, 0, len(canonical))
	for k := range canonical {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]struct {
		K string `json:"k"`
		V string `json:"v"`
	}, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, struct {
			K string `json:"k"`
			V string `json:"v"`
		}{K: k, V: canonical[k]})
	}

	data, _ := json.Marshal(ordered)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashTitle returns a short stable hash of a page title, for embedding
// in a PageSignature.
func HashTitle(title string) string {
	sum := sha256.Sum256([]byte(title))
	return hex.EncodeToString(sum[:])[:16]
}

// HashElements returns a short stable hash over a sorted list of visible
// interactive-element keys, for embedding in a PageSignature.
func HashElements(elementKeys []string) string {
	sorted := append([]string(nil), elementKeys...)
	sort.Strings(sorted)
	h := sha256.New()
	for _, k := range sorted {
		h.Write([]byte(k))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}
