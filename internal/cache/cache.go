// Package cache is the single source of truth for highlight results, keyed
// by block id with a content-signature secondary index.
package cache

import "github.com/riverfjs/streamdown-go/internal/types"

type entry struct {
	signature types.Signature
	result    types.HighlightResult
}

// Store maps a block id to its latest highlight result. A block id holds at
// most one live entry: accepting a new signature for an id evicts the
// previous entry before the new one is inserted, so a grown block misses the
// cache immediately while unchanged content keeps hitting it.
//
// Not safe for concurrent use; the owning scheduler serializes access.
type Store struct {
	entries map[string]entry
	hits    int
	misses  int
}

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[string]entry)}
}

// Put stores the result for (id, signature), evicting any previous entry for
// the same id.
func (s *Store) Put(id string, sig types.Signature, result types.HighlightResult) {
	s.entries[id] = entry{signature: sig, result: result}
}

// Get returns the latest result for a block id.
func (s *Store) Get(id string) (types.HighlightResult, bool) {
	e, ok := s.entries[id]
	if !ok {
		s.misses++
		return types.HighlightResult{}, false
	}
	s.hits++
	return e.result, true
}

// GetBySignature 仅在签名匹配时返回结果。
// A superseded signature is unresolvable, even though the id still has a
// live entry.
func (s *Store) GetBySignature(id string, sig types.Signature) (types.HighlightResult, bool) {
	e, ok := s.entries[id]
	if !ok || e.signature != sig {
		s.misses++
		return types.HighlightResult{}, false
	}
	s.hits++
	return e.result, true
}

// Has reports whether the id holds a live entry.
func (s *Store) Has(id string) bool {
	_, ok := s.entries[id]
	return ok
}

// Signature returns the live signature for an id, if any.
func (s *Store) Signature(id string) (types.Signature, bool) {
	e, ok := s.entries[id]
	return e.signature, ok
}

// Delete removes the entry for an id.
func (s *Store) Delete(id string) {
	delete(s.entries, id)
}

// Len returns the number of live entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// Clear drops every entry and the hit/miss counters.
func (s *Store) Clear() {
	s.entries = make(map[string]entry)
	s.hits = 0
	s.misses = 0
}

// HitMiss returns the lookup counters.
func (s *Store) HitMiss() (hits, misses int) {
	return s.hits, s.misses
}
