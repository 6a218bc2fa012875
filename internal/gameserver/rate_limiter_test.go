package gameserver

import "testing"

func TestRateLimiter_BurstCap(t *testing.T) {
	rl := newRateLimiter(5, 10)
	now := int64(1_000_000)

	// Ten arrivals inside one second pass, the eleventh trips the burst cap.
	for i := 1; i <= 10; i++ {
		if !rl.allow(1, now) {
			t.Fatalf("arrival %d rejected under the burst cap", i)
		}
	}
	if rl.allow(1, now) {
		t.Fatal("arrival 11 accepted over the burst cap")
	}
}

func TestRateLimiter_BurstWindowSlides(t *testing.T) {
	rl := newRateLimiter(5, 10)
	now := int64(1_000_000)

	for range 10 {
		rl.allow(1, now)
	}
	if rl.allow(1, now+500) {
		t.Fatal("arrival inside the saturated burst window accepted")
	}

	// A second later the burst window has drained; the sustained cap (50
	// over 10s) still has room.
	if !rl.allow(1, now+1_001) {
		t.Fatal("arrival after the burst window drained was rejected")
	}
}

func TestRateLimiter_RejectedArrivalsStillCount(t *testing.T) {
	rl := newRateLimiter(5, 10)
	now := int64(1_000_000)

	// Hammering past the cap keeps the window saturated: rejected arrivals
	// are recorded too, so retrying immediately never helps.
	for range 15 {
		rl.allow(1, now)
	}
	if rl.allow(1, now+900) {
		t.Fatal("arrival accepted while the window is saturated with rejected arrivals")
	}
	if !rl.allow(1, now+1_001) {
		t.Fatal("arrival after drain rejected")
	}
}

func TestRateLimiter_SustainedCap(t *testing.T) {
	// Two moves per second sustained (20 per 10s window) with a burst cap
	// high enough to never interfere.
	rl := newRateLimiter(2, 100)
	now := int64(1_000_000)

	// Arrivals spaced 400ms apart: at most three share any one-second span,
	// so only the sustained cap can reject.
	for i := 0; i < 20; i++ {
		at := now + int64(i)*400
		if !rl.allow(1, at) {
			t.Fatalf("arrival %d rejected under the sustained cap", i+1)
		}
	}
	if rl.allow(1, now+20*400) {
		t.Fatal("arrival 21 accepted over the sustained cap")
	}
}

func TestRateLimiter_SustainedWindowSlides(t *testing.T) {
	rl := newRateLimiter(2, 100)
	now := int64(1_000_000)

	for i := 0; i < 20; i++ {
		rl.allow(1, now+int64(i)*400)
	}
	// 10s after the first arrival the oldest stamps fall out of the window.
	if !rl.allow(1, now+10_001) {
		t.Fatal("arrival rejected after old stamps left the sustained window")
	}
}

func TestRateLimiter_PerEntityIsolation(t *testing.T) {
	rl := newRateLimiter(5, 10)
	now := int64(1_000_000)

	for range 11 {
		rl.allow(1, now)
	}
	if rl.allow(1, now) {
		t.Fatal("entity 1 should be saturated")
	}
	if !rl.allow(2, now) {
		t.Fatal("entity 2 throttled by entity 1's traffic")
	}
}

func TestRateLimiter_Forget(t *testing.T) {
	rl := newRateLimiter(5, 10)
	now := int64(1_000_000)

	for range 11 {
		rl.allow(1, now)
	}
	rl.forget(1)
	if !rl.allow(1, now) {
		t.Fatal("entity still throttled after forget")
	}
}

func TestRateLimiter_SetLimits(t *testing.T) {
	rl := newRateLimiter(5, 10)
	now := int64(1_000_000)

	for range 3 {
		if !rl.allow(1, now) {
			t.Fatal("arrival rejected under the original caps")
		}
	}

	// Tightening mid-flight applies to traffic already in the window.
	rl.setLimits(1, 3)
	if rl.allow(1, now) {
		t.Fatal("arrival accepted over the tightened burst cap")
	}

	// Zero and negative values fall back to the defaults.
	rl.setLimits(0, -1)
	if rl.burstSize != defaultBurstSize || rl.sustained != defaultMovesPerSecond*10 {
		t.Fatalf("setLimits(0, -1) = burst %d sustained %d, want defaults",
			rl.burstSize, rl.sustained)
	}
}

func TestRateLimiter_SweepPurgesIdleEntries(t *testing.T) {
	rl := newRateLimiter(5, 10)
	now := int64(1_000_000)

	rl.allow(1, now)
	rl.allow(2, now)
	rl.allow(3, now)
	if got := rl.entryCount(); got != 3 {
		t.Fatalf("entryCount = %d, want 3", got)
	}

	// All three entities have been idle for longer than the rate window by
	// the time the sweep interval elapses, so the next arrival sweeps them.
	later := now + rateSweepIntervalMS + 1
	rl.allow(4, later)
	if got := rl.entryCount(); got != 1 {
		t.Fatalf("entryCount after sweep = %d, want 1", got)
	}

	// Active entries survive a sweep.
	evenLater := later + rateSweepIntervalMS + 1
	rl.allow(4, evenLater-1_000)
	rl.allow(5, evenLater)
	if got := rl.entryCount(); got != 2 {
		t.Fatalf("entryCount after second sweep = %d, want 2 (4 and 5 active)", got)
	}
}
