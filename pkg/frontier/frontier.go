// Package frontier implements the deduplicating crawl work queue. Entries
// are never removed; they are marked visited after their response has been
// fully processed, so an interrupted fetch round can be replayed safely.
package frontier

import (
	"sync"

	"feed-scraper/pkg/fetch"
)

// AnyType matches entries of every link type in Next/CountByType.
const AnyType fetch.LinkType = ""

type entry struct {
	link    fetch.Link
	visited bool
}

// Frontier is safe for concurrent use, though a single orchestrator owns it
// during a crawl run. Iteration order is insertion order.
type Frontier struct {
	mu      sync.Mutex
	entries map[string]*entry
	order   []string // identity keys in insertion order
}

// New returns an empty Frontier.
func New() *Frontier {
	return &Frontier{entries: make(map[string]*entry)}
}

// Add inserts links of the given type, skipping identity keys already known
// regardless of their visited state. Returns the number actually inserted.
func (f *Frontier) Add(links []fetch.Link, typ fetch.LinkType) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	added := 0
	for _, l := range links {
		l.Type = typ
		key := l.Key()
		if _, exists := f.entries[key]; exists {
			continue
		}
		f.entries[key] = &entry{link: l}
		f.order = append(f.order, key)
		added++
	}
	return added
}

// Next returns up to count unvisited links, optionally filtered by type
// (AnyType matches all). Entries are not removed or marked; call
// MarkVisited once a link's response has been processed.
func (f *Frontier) Next(typ fetch.LinkType, count int) []fetch.Link {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []fetch.Link
	for _, key := range f.order {
		if len(out) >= count {
			break
		}
		e := f.entries[key]
		if e.visited {
			continue
		}
		if typ != AnyType && e.link.Type != typ {
			continue
		}
		out = append(out, e.link)
	}
	return out
}

// MarkVisited flips the visited flag for the given identity key.
func (f *Frontier) MarkVisited(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.entries[key]; ok {
		e.visited = true
	}
}

// Get returns the link stored under an identity key. The orchestrator uses
// this to recover the declared type of a completed response.
func (f *Frontier) Get(key string) (fetch.Link, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[key]
	if !ok {
		return fetch.Link{}, false
	}
	return e.link, true
}

// Count returns the total number of entries, visited included.
func (f *Frontier) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// CountByType returns the number of entries of a type, visited included.
func (f *Frontier) CountByType(typ fetch.LinkType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if typ == AnyType {
		return len(f.entries)
	}
	n := 0
	for _, e := range f.entries {
		if e.link.Type == typ {
			n++
		}
	}
	return n
}

// Pending returns the number of unvisited entries of a type.
func (f *Frontier) Pending(typ fetch.LinkType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.entries {
		if e.visited {
			continue
		}
		if typ != AnyType && e.link.Type != typ {
			continue
		}
		n++
	}
	return n
}

// Clear discards all entries. Used when switching into the bounded debug
// sample mode with an explicit product list.
func (f *Frontier) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = make(map[string]*entry)
	f.order = nil
}

// MarkCategoriesVisited flags every category entry visited, stopping further
// discovery once the debug product cutoff has enough links queued.
func (f *Frontier) MarkCategoriesVisited() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.link.Type == fetch.LinkCategory {
			e.visited = true
		}
	}
}
