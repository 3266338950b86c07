package callsession

import (
	"testing"
	"time"
)

func TestMachine_ConnectThenPlay(t *testing.T) {
	m := NewMachine(5*time.Minute, 10*time.Second, nil)

	if m.State() != StateConnecting {
		t.Fatalf("Expected Connecting, got %v", m.State())
	}

	// Ticks before connect must not move the clock
	m.Tick(30 * time.Second)
	if m.Remaining() != 5*time.Minute {
		t.Errorf("Expected full duration before connect, got %v", m.Remaining())
	}

	m.Connect()
	if m.State() != StatePlaying {
		t.Fatalf("Expected Playing after connect, got %v", m.State())
	}

	// Connect is idempotent
	m.Connect()
	if m.State() != StatePlaying {
		t.Errorf("Expected Playing after second connect, got %v", m.State())
	}
}

func TestMachine_CountdownToEnded(t *testing.T) {
	endCount := 0
	var final State
	m := NewMachine(30*time.Second, 10*time.Second, func(s State) {
		endCount++
		final = s
	})
	m.Connect()

	prev := m.Remaining()
	for pos := time.Second; pos < 30*time.Second; pos += time.Second {
		m.Tick(pos)
		if m.Remaining() >= prev {
			t.Fatalf("Remaining did not decrease at position %v", pos)
		}
		prev = m.Remaining()
	}

	if m.State() != StateEnding {
		t.Errorf("Expected Ending near expiry, got %v", m.State())
	}
	if endCount != 0 {
		t.Fatalf("End callback fired before expiry")
	}

	m.Tick(30 * time.Second)
	if m.Remaining() != 0 {
		t.Errorf("Expected 00:00 at expiry, got %v", m.Remaining())
	}
	if m.FormatRemaining() != "00:00" {
		t.Errorf("Expected formatted 00:00, got %s", m.FormatRemaining())
	}
	if m.State() != StateEnded {
		t.Errorf("Expected Ended, got %v", m.State())
	}
	if endCount != 1 || final != StateEnded {
		t.Errorf("Expected end callback once with Ended, got count=%d state=%v", endCount, final)
	}

	// Further signals must not refire the callback
	m.Tick(31 * time.Second)
	m.MediaEnded()
	m.Hangup()
	if endCount != 1 {
		t.Errorf("End callback fired %d times, want 1", endCount)
	}
}

func TestMachine_MediaEnded(t *testing.T) {
	endCount := 0
	var final State
	m := NewMachine(5*time.Minute, 10*time.Second, func(s State) {
		endCount++
		final = s
	})
	m.Connect()
	m.Tick(time.Minute)

	m.MediaEnded()
	if m.State() != StateEnded {
		t.Fatalf("Expected Ended, got %v", m.State())
	}
	if m.Remaining() != 0 {
		t.Errorf("Expected zero remaining after media end, got %v", m.Remaining())
	}
	if endCount != 1 || final != StateEnded {
		t.Errorf("Expected end callback once with Ended, got count=%d state=%v", endCount, final)
	}
}

func TestMachine_MediaEndedWhileConnecting(t *testing.T) {
	m := NewMachine(5*time.Minute, 10*time.Second, nil)

	m.MediaEnded()
	if m.State() != StateConnecting {
		t.Errorf("Media end before connect should be ignored, got %v", m.State())
	}
}

func TestMachine_HangupAlwaysWins(t *testing.T) {
	states := []struct {
		name  string
		setup func(m *Machine)
	}{
		{name: "Connecting", setup: func(m *Machine) {}},
		{name: "Playing", setup: func(m *Machine) { m.Connect() }},
		{name: "Paused", setup: func(m *Machine) { m.Connect(); m.TogglePause() }},
		{name: "Ending", setup: func(m *Machine) { m.Connect(); m.Tick(55 * time.Second) }},
	}

	for _, tt := range states {
		t.Run(tt.name, func(t *testing.T) {
			endCount := 0
			var final State
			m := NewMachine(time.Minute, 10*time.Second, func(s State) {
				endCount++
				final = s
			})
			tt.setup(m)

			m.Hangup()
			if m.State() != StateClosed {
				t.Fatalf("Expected Closed, got %v", m.State())
			}
			if endCount != 1 || final != StateClosed {
				t.Errorf("Expected end callback once with Closed, got count=%d state=%v", endCount, final)
			}

			// Second hangup is a no-op
			m.Hangup()
			if endCount != 1 {
				t.Errorf("End callback fired %d times, want 1", endCount)
			}
		})
	}
}

func TestMachine_PauseFreezesCountdown(t *testing.T) {
	m := NewMachine(time.Minute, 10*time.Second, nil)
	m.Connect()
	m.Tick(20 * time.Second)

	m.TogglePause()
	if m.State() != StatePaused {
		t.Fatalf("Expected Paused, got %v", m.State())
	}

	// Position updates while paused are ignored
	m.Tick(50 * time.Second)
	if m.Remaining() != 40*time.Second {
		t.Errorf("Expected 40s remaining while paused, got %v", m.Remaining())
	}

	m.TogglePause()
	if m.State() != StatePlaying {
		t.Fatalf("Expected Playing after resume, got %v", m.State())
	}
	m.Tick(25 * time.Second)
	if m.Remaining() != 35*time.Second {
		t.Errorf("Expected 35s remaining after resume, got %v", m.Remaining())
	}
}

func TestMachine_WarningThreshold(t *testing.T) {
	m := NewMachine(time.Minute, 10*time.Second, nil)
	m.Connect()

	m.Tick(49 * time.Second)
	if m.Warning() {
		t.Error("Warning before threshold")
	}
	m.Tick(50 * time.Second)
	if !m.Warning() {
		t.Error("Expected warning at threshold")
	}
	if m.State() != StateEnding {
		t.Errorf("Expected Ending, got %v", m.State())
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00"},
		{5 * time.Second, "00:05"},
		{125 * time.Second, "02:05"},
		{10 * time.Minute, "10:00"},
		{-3 * time.Second, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.in); got != tt.want {
			t.Errorf("FormatDuration(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestMachine_DuplicatePauseStaysPaused(t *testing.T) {
	m := NewMachine(5*time.Minute, 10*time.Second, nil)
	m.Connect()

	m.Pause()
	if m.State() != StatePaused {
		t.Fatalf("Expected Paused, got %v", m.State())
	}

	// A repeated pause command must not resume playback
	m.Pause()
	if m.State() != StatePaused {
		t.Fatalf("Expected repeated pause to stay Paused, got %v", m.State())
	}

	m.Resume()
	if m.State() != StatePlaying {
		t.Fatalf("Expected Playing after resume, got %v", m.State())
	}

	// A repeated resume command changes nothing
	m.Resume()
	if m.State() != StatePlaying {
		t.Fatalf("Expected repeated resume to stay Playing, got %v", m.State())
	}
}
