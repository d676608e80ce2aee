package faq

import (
	"encoding/json"
	"fmt"
	"os"
)

// Store exposes canned-answer lookup for the turn handler and HTTP layer.
type Store interface {
	List() []Entry
	Lookup(question string) (string, bool)
}

// MemoryStore implements Store with an in-memory table keyed by the
// normalized question text.
type MemoryStore struct {
	items []Entry
	index map[string]string
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied entries.
// Entries whose questions normalize to the same key keep the first answer.
func NewMemoryStore(items []Entry) *MemoryStore {
	index := make(map[string]string, len(items))
	kept := make([]Entry, 0, len(items))
	for _, item := range items {
		key := Normalize(item.Question)
		if key == "" {
			continue
		}
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = item.Answer
		kept = append(kept, item)
	}
	return &MemoryStore{items: kept, index: index}
}

// List returns the loaded question bank.
func (s *MemoryStore) List() []Entry {
	return append([]Entry(nil), s.items...)
}

// Lookup resolves a question to its canned answer by exact match on the
// normalized form.
func (s *MemoryStore) Lookup(question string) (string, bool) {
	answer, ok := s.index[Normalize(question)]
	return answer, ok
}

// LoadFile reads a JSON array of entries from disk.
func LoadFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FAQ file: %w", err)
	}

	var items []Entry
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse FAQ file %s: %w", path, err)
	}
	return items, nil
}
