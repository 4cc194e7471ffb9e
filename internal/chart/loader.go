package chart

import (
	"context"
	"sync/atomic"
)

// Loader guards a chart's in-flight refreshes against the stale-response
// race: when several fetches for the same chart overlap, only the result of
// the most recently started one may be applied. Without this, a slow response
// for an old filter selection can land after, and overwrite, a newer one.
type Loader struct {
	gen atomic.Uint64
}

// NewLoader returns a loader for a single chart.
func NewLoader() *Loader {
	return &Loader{}
}

// Do runs fetch and reports whether its result is still current. A false
// second return value means a newer fetch started while this one was running;
// the caller must discard the result (and any error) without applying it.
func (l *Loader) Do(ctx context.Context, fetch func(context.Context) ([]Series, error)) ([]Series, bool, error) {
	gen := l.gen.Add(1)

	series, err := fetch(ctx)
	if l.gen.Load() != gen {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, err
	}
	return series, true, nil
}
