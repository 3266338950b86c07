package callsession

import (
	"context"
	"sync"
	"testing"
	"time"
)

type updateLog struct {
	mu      sync.Mutex
	updates []Update
}

func (l *updateLog) add(u Update) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.updates = append(l.updates, u)
}

func (l *updateLog) all() []Update {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Update, len(l.updates))
	copy(out, l.updates)
	return out
}

func TestRunner_RunsToEnded(t *testing.T) {
	var log updateLog
	endCh := make(chan State, 2)

	r := NewRunner(RunnerConfig{
		Duration:         200 * time.Millisecond,
		ConnectDelay:     10 * time.Millisecond,
		WarningThreshold: 50 * time.Millisecond,
		TickInterval:     20 * time.Millisecond,
	}, log.add, func(s State) { endCh <- s })

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	select {
	case s := <-endCh:
		if s != StateEnded {
			t.Fatalf("Expected Ended, got %v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for session end")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after session end")
	}

	select {
	case s := <-endCh:
		t.Fatalf("End callback fired twice, second state %v", s)
	default:
	}

	updates := log.all()
	if len(updates) == 0 {
		t.Fatal("Expected updates to be published")
	}
	last := updates[len(updates)-1]
	if last.Event != UpdateEnded || last.State != "ended" {
		t.Errorf("Expected final ended update, got %+v", last)
	}
	if last.Remaining != 0 || last.Formatted != "00:00" {
		t.Errorf("Expected final update at 00:00, got %+v", last)
	}
}

func TestRunner_Hangup(t *testing.T) {
	endCh := make(chan State, 2)

	r := NewRunner(RunnerConfig{
		Duration:         time.Minute,
		ConnectDelay:     5 * time.Millisecond,
		WarningThreshold: 10 * time.Second,
		TickInterval:     20 * time.Millisecond,
	}, nil, func(s State) { endCh <- s })

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	// Let the call connect before hanging up
	time.Sleep(30 * time.Millisecond)
	r.Hangup()

	select {
	case s := <-endCh:
		if s != StateClosed {
			t.Fatalf("Expected Closed, got %v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for hangup")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after hangup")
	}

	// Hangup after close is a no-op
	r.Hangup()
	select {
	case s := <-endCh:
		t.Fatalf("End callback fired twice, second state %v", s)
	default:
	}
}

func TestRunner_CancelCountsAsHangup(t *testing.T) {
	endCh := make(chan State, 1)

	r := NewRunner(RunnerConfig{
		Duration:         time.Minute,
		ConnectDelay:     5 * time.Millisecond,
		WarningThreshold: 10 * time.Second,
		TickInterval:     20 * time.Millisecond,
	}, nil, func(s State) { endCh <- s })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case s := <-endCh:
		if s != StateClosed {
			t.Fatalf("Expected Closed on cancellation, got %v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for cancellation")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRunner_MediaEnded(t *testing.T) {
	endCh := make(chan State, 1)

	r := NewRunner(RunnerConfig{
		Duration:         time.Minute,
		ConnectDelay:     5 * time.Millisecond,
		WarningThreshold: 10 * time.Second,
		TickInterval:     20 * time.Millisecond,
	}, nil, func(s State) { endCh <- s })

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	r.MediaEnded()

	select {
	case s := <-endCh:
		if s != StateEnded {
			t.Fatalf("Expected Ended on media completion, got %v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for media end")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after media end")
	}
}

func TestRunner_DuplicatePauseCommands(t *testing.T) {
	r := NewRunner(RunnerConfig{
		Duration:         time.Minute,
		ConnectDelay:     5 * time.Millisecond,
		WarningThreshold: 10 * time.Second,
		TickInterval:     20 * time.Millisecond,
	}, nil, nil)

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()
	defer func() {
		r.Hangup()
		<-done
	}()

	time.Sleep(30 * time.Millisecond)

	r.Pause()
	r.Pause()
	if got := r.State(); got != StatePaused {
		t.Fatalf("Expected Paused after duplicate pause, got %v", got)
	}

	r.Resume()
	r.Resume()
	if got := r.State(); got != StatePlaying {
		t.Fatalf("Expected Playing after duplicate resume, got %v", got)
	}
}

func TestRunner_HangupDuringConnect(t *testing.T) {
	var log updateLog
	endCh := make(chan State, 1)

	r := NewRunner(RunnerConfig{
		Duration:         time.Minute,
		ConnectDelay:     100 * time.Millisecond,
		WarningThreshold: 10 * time.Second,
		TickInterval:     20 * time.Millisecond,
	}, log.add, func(s State) { endCh <- s })

	done := make(chan struct{})
	go func() {
		r.Run(context.Background())
		close(done)
	}()

	// Hang up before the connect delay elapses
	time.Sleep(20 * time.Millisecond)
	r.Hangup()

	select {
	case s := <-endCh:
		if s != StateClosed {
			t.Fatalf("Expected Closed, got %v", s)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for hangup")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after hangup during connect")
	}

	// Wait past the connect delay: the dead session must not report
	// playback starting after its ended update
	time.Sleep(150 * time.Millisecond)
	updates := log.all()
	if len(updates) == 0 {
		t.Fatal("Expected the ended update to be published")
	}
	last := updates[len(updates)-1]
	if last.Event != UpdateEnded || last.State != "closed" {
		t.Fatalf("Expected the final update to be the ended one, got %+v", last)
	}
	for _, u := range updates {
		if u.State == "playing" {
			t.Fatalf("Session hung up while connecting must never play, got %+v", u)
		}
	}
}
