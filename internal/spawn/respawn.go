package spawn

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type respawnTask struct {
	def   Definition
	dueAt time.Time
}

// RespawnQueue re-spawns despawned walkers after their configured delay.
type RespawnQueue struct {
	manager *Manager
	ticker  *time.Ticker
	stopCh  chan struct{}

	mu    sync.RWMutex
	tasks map[string]respawnTask // definition name → task
}

// NewRespawnQueue creates a respawn queue feeding the spawn manager.
func NewRespawnQueue(manager *Manager) *RespawnQueue {
	return &RespawnQueue{
		manager: manager,
		stopCh:  make(chan struct{}),
		tasks:   make(map[string]respawnTask),
	}
}

// Start starts the respawn loop (blocks until the context is canceled).
func (q *RespawnQueue) Start(ctx context.Context) error {
	q.ticker = time.NewTicker(1 * time.Second)
	defer q.ticker.Stop()

	slog.Info("respawn queue started", "interval", "1s")

	for {
		select {
		case <-ctx.Done():
			slog.Info("respawn queue stopping")
			return ctx.Err()

		case <-q.stopCh:
			slog.Info("respawn queue stopped")
			return nil

		case now := <-q.ticker.C:
			q.processDue(now)
		}
	}
}

// Stop stops the respawn loop.
func (q *RespawnQueue) Stop() {
	close(q.stopCh)
}

// Schedule queues a definition for respawn after delay. Scheduling the same
// name again replaces the pending task.
func (q *RespawnQueue) Schedule(def Definition, delay time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.tasks[def.Name] = respawnTask{def: def, dueAt: time.Now().Add(delay)}

	slog.Debug("respawn scheduled", "name", def.Name, "delay", delay)
}

// Cancel drops a pending respawn.
func (q *RespawnQueue) Cancel(name string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	delete(q.tasks, name)

	slog.Debug("respawn cancelled", "name", name)
}

// TaskCount returns the number of pending respawns.
func (q *RespawnQueue) TaskCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.tasks)
}

// DueAt returns the due time of a pending respawn.
func (q *RespawnQueue) DueAt(name string) (time.Time, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	task, ok := q.tasks[name]
	return task.dueAt, ok
}

// processDue spawns every task whose due time has passed. Spawning happens
// outside the lock.
func (q *RespawnQueue) processDue(now time.Time) {
	q.mu.Lock()
	var due []respawnTask
	for name, task := range q.tasks {
		if !now.Before(task.dueAt) {
			due = append(due, task)
			delete(q.tasks, name)
		}
	}
	q.mu.Unlock()

	for _, task := range due {
		// The name may have been taken again while the task waited.
		if _, active := q.manager.EntityIDByName(task.def.Name); active {
			slog.Debug("respawn skipped, name already active", "name", task.def.Name)
			continue
		}

		actor, err := q.manager.Spawn(task.def)
		if err != nil {
			slog.Error("respawn failed", "name", task.def.Name, "error", err)
			continue
		}

		slog.Info("walker respawned",
			"entityID", actor.EntityID(),
			"name", task.def.Name)
	}
}
