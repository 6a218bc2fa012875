package ai

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// tickStub is a minimal Controller that counts lifecycle calls.
type tickStub struct {
	running atomic.Bool
	ticks   atomic.Int32
}

func (s *tickStub) Start()       { s.running.Store(true) }
func (s *tickStub) Stop()        { s.running.Store(false) }
func (s *tickStub) State() State { return StateIdle }
func (s *tickStub) Tick()        { s.ticks.Add(1) }

func TestTickManager_RegisterUnregister(t *testing.T) {
	mgr := NewTickManager(0)

	stub := &tickStub{}
	mgr.Register(1, stub)

	if mgr.Count() != 1 {
		t.Errorf("Count() after Register() = %d, want 1", mgr.Count())
	}
	if !stub.running.Load() {
		t.Error("Register() should start the controller")
	}

	controller, err := mgr.GetController(1)
	if err != nil {
		t.Fatalf("GetController() error = %v", err)
	}
	if controller != Controller(stub) {
		t.Error("GetController() returned a different controller")
	}

	mgr.Unregister(1)

	if mgr.Count() != 0 {
		t.Errorf("Count() after Unregister() = %d, want 0", mgr.Count())
	}
	if stub.running.Load() {
		t.Error("Unregister() should stop the controller")
	}

	if _, err := mgr.GetController(1); err == nil {
		t.Error("GetController() after Unregister() should return error")
	}

	// Unregistering an unknown entity is a no-op.
	mgr.Unregister(99)
	if mgr.Count() != 0 {
		t.Errorf("Count() after no-op Unregister() = %d, want 0", mgr.Count())
	}
}

func TestTickManager_Start(t *testing.T) {
	mgr := NewTickManager(20 * time.Millisecond)

	stub := &tickStub{}
	mgr.Register(1, stub)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- mgr.Start(ctx)
	}()

	// Wait for a few ticks to land.
	time.Sleep(120 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Start() error = %v, want context cancellation", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start() did not stop after context cancel")
	}

	if stub.ticks.Load() == 0 {
		t.Error("controller was never ticked while the manager ran")
	}
}

func TestTickManager_Stop(t *testing.T) {
	mgr := NewTickManager(10 * time.Millisecond)

	done := make(chan error, 1)
	go func() {
		done <- mgr.Start(context.Background())
	}()

	time.Sleep(30 * time.Millisecond)
	mgr.Stop()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() after Stop() error = %v, want nil", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Start() did not return after Stop()")
	}
}

func TestTickManager_MultipleControllers(t *testing.T) {
	mgr := NewTickManager(time.Second)

	stubs := make([]*tickStub, 10)
	for i := range stubs {
		stubs[i] = &tickStub{}
		mgr.Register(uint32(i+1), stubs[i])
	}

	if mgr.Count() != 10 {
		t.Errorf("Count() after registering 10 controllers = %d, want 10", mgr.Count())
	}

	mgr.tickAll()

	for i, stub := range stubs {
		if got := stub.ticks.Load(); got != 1 {
			t.Errorf("controller %d ticked %d times, want 1", i+1, got)
		}
	}

	for i := range stubs {
		mgr.Unregister(uint32(i + 1))
	}

	if mgr.Count() != 0 {
		t.Errorf("Count() after unregistering all = %d, want 0", mgr.Count())
	}
}
