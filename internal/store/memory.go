package store

import (
	"errors"
	"sync"
	"time"

	"github.com/nwsdaily/nws-daily-forecast/internal/forecast"
)

var (
	// ErrNotFound is returned when no forecast is available for a point.
	ErrNotFound = errors.New("no forecast for point")
)

// Entry is the latest consolidated forecast held for one point.
type Entry struct {
	Location forecast.Location `json:"location"`
	Periods  []forecast.Period `json:"periods"`
	Summary  string            `json:"summary,omitempty"`
	Updated  time.Time         `json:"updated"`
}

// MemoryStore is a concurrency-safe in-memory cache of the latest forecast
// per point. Entries older than maxAge are treated as missing.
type MemoryStore struct {
	mu sync.RWMutex

	// key: location key, value: latest entry
	data map[string]Entry

	maxAge time.Duration // 0 = never expires

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore. If maxAge is <= 0, entries never
// go stale.
func NewMemoryStore(maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:   make(map[string]Entry),
		maxAge: maxAge,
		now:    time.Now,
	}
}

// SaveForecast replaces the stored forecast for a point.
func (s *MemoryStore) SaveForecast(loc forecast.Location, periods []forecast.Period, summary string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[loc.Key()] = Entry{
		Location: loc,
		Periods:  periods,
		Summary:  summary,
		Updated:  s.now().UTC(),
	}
}

// GetLatest returns the most recent non-stale forecast for a point.
func (s *MemoryStore) GetLatest(loc forecast.Location) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.data[loc.Key()]
	if !ok {
		return Entry{}, ErrNotFound
	}
	if s.maxAge > 0 && s.now().Sub(entry.Updated) > s.maxAge {
		return Entry{}, ErrNotFound
	}
	return entry, nil
}
