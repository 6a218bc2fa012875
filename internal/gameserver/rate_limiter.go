package gameserver

import "sync"

// Rate limiting windows. The burst cap bounds packets inside any single
// second; the sustained cap bounds the average rate across ten seconds, so
// a client cannot ride the burst allowance forever. The caps are
// independent — neither subsumes the other.
const (
	burstWindowMS     = 1_000
	sustainedWindowMS = 10_000

	// Idle entries are swept opportunistically during allow calls.
	rateSweepIntervalMS = 5 * 60 * 1000
)

// rateLimiter tracks movement packet arrivals per entity over sliding
// windows. All state shares one mutex: the append and the cap checks must
// be atomic or concurrent packets from one entity could both pass.
//
// Arrivals count whether or not they are allowed — a client flooding past
// the caps stays blocked until its window drains.
type rateLimiter struct {
	mu        sync.Mutex
	entries   map[uint32]*rateEntry
	burstSize int
	sustained int
	lastSweep int64
}

type rateEntry struct {
	stamps   []int64 // packet arrival times, unix ms, ascending
	lastSeen int64
}

func newRateLimiter(movesPerSecond, burstSize int) *rateLimiter {
	rl := &rateLimiter{entries: make(map[uint32]*rateEntry)}
	rl.setLimits(movesPerSecond, burstSize)
	return rl
}

// allow records a packet arriving at nowMS and reports whether it fits both
// caps: at most burstSize packets in the burst window and at most the
// sustained count in the sustained window.
func (rl *rateLimiter) allow(entityID uint32, nowMS int64) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.shouldSweepLocked(nowMS) {
		rl.sweepLocked(nowMS)
	}

	e := rl.entries[entityID]
	if e == nil {
		e = &rateEntry{}
		rl.entries[entityID] = e
	}
	e.lastSeen = nowMS

	// Slide the sustained window, then record the arrival.
	cut := nowMS - sustainedWindowMS
	drop := 0
	for drop < len(e.stamps) && e.stamps[drop] <= cut {
		drop++
	}
	if drop > 0 {
		e.stamps = append(e.stamps[:0], e.stamps[drop:]...)
	}
	e.stamps = append(e.stamps, nowMS)

	burstCut := nowMS - burstWindowMS
	burst := 0
	for i := len(e.stamps) - 1; i >= 0 && e.stamps[i] > burstCut; i-- {
		burst++
	}
	if burst > rl.burstSize {
		return false
	}
	return len(e.stamps) <= rl.sustained
}

// setLimits reconfigures the caps. Existing windows are kept, so tightening
// limits applies to traffic already in flight.
func (rl *rateLimiter) setLimits(movesPerSecond, burstSize int) {
	if movesPerSecond <= 0 {
		movesPerSecond = defaultMovesPerSecond
	}
	if burstSize <= 0 {
		burstSize = defaultBurstSize
	}

	rl.mu.Lock()
	rl.burstSize = burstSize
	rl.sustained = movesPerSecond * (sustainedWindowMS / 1000)
	rl.mu.Unlock()
}

// forget drops an entity's window, typically on session close.
func (rl *rateLimiter) forget(entityID uint32) {
	rl.mu.Lock()
	delete(rl.entries, entityID)
	rl.mu.Unlock()
}

func (rl *rateLimiter) entryCount() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.entries)
}

func (rl *rateLimiter) shouldSweepLocked(nowMS int64) bool {
	if len(rl.entries) == 0 {
		return false
	}
	return nowMS-rl.lastSweep > rateSweepIntervalMS
}

// sweepLocked purges entities idle longer than the sustained window; their
// stamps would all be pruned on the next call anyway.
func (rl *rateLimiter) sweepLocked(nowMS int64) {
	for id, e := range rl.entries {
		if nowMS-e.lastSeen > sustainedWindowMS {
			delete(rl.entries, id)
		}
	}
	rl.lastSweep = nowMS
}
