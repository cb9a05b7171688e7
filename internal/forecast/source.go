package forecast

import (
	"context"
	"sync"
)

// Source abstracts a forecast data source (e.g. the NWS API).
type Source interface {
	Name() string
	Mode() Mode
	Forecast(ctx context.Context, loc Location) ([]Period, error)
}

// DailySource decorates a Source with day/night consolidation. It implements
// Source itself, so callers can swap it in for the raw source and swap back
// by using Inner() again; nothing about the wrapped source is modified.
//
// The latest summary per location is the only state retained across calls.
type DailySource struct {
	inner Source

	mu        sync.RWMutex
	summaries map[string]string
}

// NewDailySource wraps src with day/night consolidation.
func NewDailySource(src Source) *DailySource {
	return &DailySource{
		inner:     src,
		summaries: make(map[string]string),
	}
}

// Inner returns the wrapped source, restoring unconsolidated behavior.
func (d *DailySource) Inner() Source {
	return d.inner
}

func (d *DailySource) Name() string {
	return d.inner.Name()
}

func (d *DailySource) Mode() Mode {
	return d.inner.Mode()
}

// Forecast fetches from the inner source and consolidates the result when the
// source's mode splits days into day/night pairs. Other modes pass through.
func (d *DailySource) Forecast(ctx context.Context, loc Location) ([]Period, error) {
	periods, err := d.inner.Forecast(ctx, loc)
	if err != nil {
		return nil, err
	}

	merge := d.inner.Mode().MergeEnabled()
	daily, summary := BuildDaily(periods, merge)

	if merge {
		d.mu.Lock()
		d.summaries[loc.Key()] = summary
		d.mu.Unlock()
	}

	return daily, nil
}

// Summary returns the two-section summary produced by the most recent
// consolidating Forecast call for loc, or "" when none exists.
func (d *DailySource) Summary(loc Location) string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.summaries[loc.Key()]
}
