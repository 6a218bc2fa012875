package nav

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/hollowmere/ashfall/internal/model"
)

// Dispatcher bounds how many searches run at once. Network and AI goroutines
// hand their queries here instead of calling the finder inline, so a burst of
// worst-case searches cannot occupy every scheduler thread.
type Dispatcher struct {
	finder *PathFinder
	slots  *semaphore.Weighted
}

// NewDispatcher wraps finder with at most maxConcurrent in-flight searches.
func NewDispatcher(finder *PathFinder, maxConcurrent int64) *Dispatcher {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Dispatcher{
		finder: finder,
		slots:  semaphore.NewWeighted(maxConcurrent),
	}
}

// FindPath runs one search, waiting for a free slot. It returns the context
// error if the caller gives up before a slot frees; a search is not
// cancelable once started.
func (d *Dispatcher) FindPath(ctx context.Context, e model.Entity, start, target model.Position, opts Options) ([]model.Position, error) {
	if err := d.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer d.slots.Release(1)
	return d.finder.FindPath(e, start, target, opts), nil
}
