// Package pattern holds the keyword → response memory used for suggestions.
package pattern

import (
	"sync"
	"time"

	"github.com/rcliao/signal-memory/internal/model"
)

// DefaultMaxResponses is how many recent responses are kept per keyword.
const DefaultMaxResponses = 5

// Memory is an insertion-ordered store of PatternRecords keyed by keyword.
// Records are only ever created or grown; nothing is removed except by Import.
//
// Thread Safety: all methods are safe for concurrent use.
type Memory struct {
	mu           sync.RWMutex
	order        []string
	records      map[string]*model.PatternRecord
	maxResponses int
	now          func() time.Time
}

// Option configures a Memory.
type Option func(*Memory)

// WithMaxResponses caps the per-keyword response history.
func WithMaxResponses(n int) Option {
	return func(m *Memory) {
		if n > 0 {
			m.maxResponses = n
		}
	}
}

// WithClock overrides the time source used for LastUsedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates an empty Memory.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		records:      make(map[string]*model.PatternRecord),
		maxResponses: DefaultMaxResponses,
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Record associates response with keyword. Known keywords get their count
// bumped and response prepended; unknown keywords are appended to the order.
func (m *Memory) Record(keyword, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	rec, ok := m.records[keyword]
	if !ok {
		m.records[keyword] = &model.PatternRecord{
			Keyword:         keyword,
			Count:           1,
			RecentResponses: []string{response},
			LastUsedAt:      now,
		}
		m.order = append(m.order, keyword)
		return
	}

	responses := make([]string, 0, m.maxResponses)
	responses = append(responses, response)
	responses = append(responses, rec.RecentResponses...)
	if len(responses) > m.maxResponses {
		responses = responses[:m.maxResponses]
	}

	rec.Count++
	rec.RecentResponses = responses
	rec.LastUsedAt = now
}

// BestMatch returns the record with the highest count among keywords.
// Ties go to the keyword inserted first. The returned record is a copy.
func (m *Memory) BestMatch(keywords []string) (model.PatternRecord, bool) {
	if len(keywords) == 0 {
		return model.PatternRecord{}, false
	}

	wanted := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		wanted[k] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *model.PatternRecord
	for _, k := range m.order {
		if !wanted[k] {
			continue
		}
		rec := m.records[k]
		if best == nil || rec.Count > best.Count {
			best = rec
		}
	}
	if best == nil {
		return model.PatternRecord{}, false
	}
	return clone(best), true
}

// Get returns a copy of the record for keyword.
func (m *Memory) Get(keyword string) (model.PatternRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[keyword]
	if !ok {
		return model.PatternRecord{}, false
	}
	return clone(rec), true
}

// Len returns the number of distinct keywords.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

// Export returns all records in insertion order.
func (m *Memory) Export() []model.PatternEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := make([]model.PatternEntry, 0, len(m.order))
	for _, k := range m.order {
		entries = append(entries, model.PatternEntry{Keyword: k, Record: clone(m.records[k])})
	}
	return entries
}

// Import replaces the contents with entries, keeping their order. Later
// duplicates of a keyword are ignored and histories are capped.
func (m *Memory) Import(entries []model.PatternEntry) {
	order := make([]string, 0, len(entries))
	records := make(map[string]*model.PatternRecord, len(entries))

	for _, e := range entries {
		if _, dup := records[e.Keyword]; dup {
			continue
		}
		rec := clone(&e.Record)
		rec.Keyword = e.Keyword
		if len(rec.RecentResponses) > m.maxResponses {
			rec.RecentResponses = rec.RecentResponses[:m.maxResponses]
		}
		if rec.Count < 1 {
			rec.Count = 1
		}
		records[e.Keyword] = &rec
		order = append(order, e.Keyword)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.order = order
	m.records = records
}

func clone(r *model.PatternRecord) model.PatternRecord {
	c := *r
	c.RecentResponses = append([]string(nil), r.RecentResponses...)
	return c
}
