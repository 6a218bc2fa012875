package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// defaultTickInterval is used when the configured interval is zero or negative.
const defaultTickInterval = 1 * time.Second

// TickManager drives all registered AI controllers on a shared ticker.
type TickManager struct {
	controllers     sync.Map // map[uint32]Controller — entityID → controller
	interval        time.Duration
	ticker          *time.Ticker
	stopCh          chan struct{}
	controllerCount atomic.Int32 // cached count of controllers (O(1) access)
}

// NewTickManager creates a tick manager driving controllers every interval.
func NewTickManager(interval time.Duration) *TickManager {
	if interval <= 0 {
		interval = defaultTickInterval
	}
	return &TickManager{
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Register registers an AI controller for an actor and starts it.
func (m *TickManager) Register(entityID uint32, controller Controller) {
	m.controllers.Store(entityID, controller)
	m.controllerCount.Add(1) // Update cached count
	controller.Start()

	slog.Debug("AI controller registered",
		"entityID", entityID,
		"state", controller.State())
}

// Unregister stops and removes an actor's AI controller.
func (m *TickManager) Unregister(entityID uint32) {
	value, ok := m.controllers.LoadAndDelete(entityID)
	if !ok {
		return
	}

	m.controllerCount.Add(-1) // Update cached count

	controller := value.(Controller)
	controller.Stop()

	slog.Debug("AI controller unregistered", "entityID", entityID)
}

// Start starts the AI tick loop (blocks until the context is canceled).
func (m *TickManager) Start(ctx context.Context) error {
	m.ticker = time.NewTicker(m.interval)
	defer m.ticker.Stop()

	slog.Info("AI tick manager started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("AI tick manager stopped")
			return nil

		case <-m.ticker.C:
			m.tickAll()
		}
	}
}

// Stop stops the AI tick loop.
func (m *TickManager) Stop() {
	close(m.stopCh)
}

// tickAll ticks all registered controllers
func (m *TickManager) tickAll() {
	count := 0

	m.controllers.Range(func(key, value any) bool {
		controller := value.(Controller)
		controller.Tick()
		count++
		return true
	})

	if count > 0 && IsDebugEnabled() {
		slog.Debug("AI tick completed", "controllers", count)
	}
}

// Count returns the number of registered controllers (O(1) cached count).
func (m *TickManager) Count() int {
	return int(m.controllerCount.Load())
}

// GetController returns the controller registered for an actor.
func (m *TickManager) GetController(entityID uint32) (Controller, error) {
	value, ok := m.controllers.Load(entityID)
	if !ok {
		return nil, fmt.Errorf("controller not found for entity %d", entityID)
	}
	return value.(Controller), nil
}
