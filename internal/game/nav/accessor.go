package nav

import "sync/atomic"

var defaultFinder atomic.Pointer[PathFinder]

// SetDefaultPathFinder installs the process-wide finder built at wiring time.
func SetDefaultPathFinder(p *PathFinder) { defaultFinder.Store(p) }

// DefaultPathFinder returns the process-wide finder, or nil before wiring.
func DefaultPathFinder() *PathFinder { return defaultFinder.Load() }
