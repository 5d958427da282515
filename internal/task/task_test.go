package task

import (
	"context"
	"errors"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal(msg)
}

func TestStartAndStop(t *testing.T) {
	r := NewRunner("worker")
	if r.IsRunning() {
		t.Error("new runner should not be running")
	}

	started := make(chan struct{})
	err := r.Start(func(ctx context.Context) {
		close(started)
		<-ctx.Done()
	})
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	<-started

	if !r.IsRunning() {
		t.Error("expected IsRunning=true after start")
	}

	r.Stop()
	if r.IsRunning() {
		t.Error("expected IsRunning=false after stop")
	}
}

func TestStartWhileRunning(t *testing.T) {
	r := NewRunner("worker")
	if err := r.Start(func(ctx context.Context) { <-ctx.Done() }); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}
	defer r.Stop()

	err := r.Start(func(ctx context.Context) {})
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestHandleRetiredWhenLoopReturns(t *testing.T) {
	r := NewRunner("worker")
	if err := r.Start(func(context.Context) {}); err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	waitFor(t, func() bool { return !r.IsRunning() },
		"runner should report not running after loop returns on its own")
}

func TestStopWhenNotRunning(t *testing.T) {
	r := NewRunner("worker")
	r.Stop() // must not panic or block
	if r.IsRunning() {
		t.Error("expected IsRunning=false")
	}
}

func TestRestartAfterStop(t *testing.T) {
	r := NewRunner("worker")
	for i := 0; i < 3; i++ {
		if err := r.Start(func(ctx context.Context) { <-ctx.Done() }); err != nil {
			t.Fatalf("round %d: unexpected start error: %v", i, err)
		}
		if !r.IsRunning() {
			t.Fatalf("round %d: expected running", i)
		}
		r.Stop()
		if r.IsRunning() {
			t.Fatalf("round %d: expected stopped", i)
		}
	}
}

func TestName(t *testing.T) {
	r := NewRunner("presence-hall")
	if r.Name() != "presence-hall" {
		t.Errorf("Name: got %q, want presence-hall", r.Name())
	}
}
