// Package callsession models the simulated call screen lifecycle as a pure
// state machine. The machine receives playback-position ticks, media
// signals and user commands, and owns every transition; nothing in here
// touches timers, sockets or storage, which keeps it directly testable.
package callsession

import (
	"fmt"
	"time"
)

type State int

const (
	StateConnecting State = iota
	StatePlaying
	StatePaused
	StateEnding
	StateEnded
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnding:
		return "ending"
	case StateEnded:
		return "ended"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the session can no longer change state.
func (s State) Terminal() bool {
	return s == StateEnded || s == StateClosed
}

// Machine drives one call from connect to teardown. Remaining time derives
// from the playback position, not an independent countdown, so pauses and
// stalls never let the display drift from what actually played.
type Machine struct {
	state    State
	duration time.Duration
	position time.Duration
	warnAt   time.Duration

	onEnd    func(State)
	endFired bool
}

// NewMachine creates a machine for a clip of the probed duration. warnAt is
// the remaining-time threshold at which the session enters Ending. onEnd
// fires exactly once when the session reaches Ended or Closed, whichever
// comes first.
func NewMachine(duration, warnAt time.Duration, onEnd func(State)) *Machine {
	return &Machine{
		state:    StateConnecting,
		duration: duration,
		warnAt:   warnAt,
		onEnd:    onEnd,
	}
}

func (m *Machine) State() State { return m.state }

// Remaining returns the time left, clamped at zero.
func (m *Machine) Remaining() time.Duration {
	left := m.duration - m.position
	if left < 0 {
		return 0
	}
	return left
}

// Warning reports whether the countdown banner should show.
func (m *Machine) Warning() bool {
	return m.state == StateEnding
}

// Connect moves the session out of the simulated connect phase.
func (m *Machine) Connect() {
	if m.state != StateConnecting {
		return
	}
	m.state = StatePlaying
}

// Tick advances the playback position. Position only moves while playing;
// ticks in any other state are ignored. Reaching zero remaining ends the
// session.
func (m *Machine) Tick(position time.Duration) {
	if m.state != StatePlaying && m.state != StateEnding {
		return
	}
	if position > m.position {
		m.position = position
	}

	if m.Remaining() <= 0 {
		m.end(StateEnded)
		return
	}
	if m.state == StatePlaying && m.Remaining() <= m.warnAt {
		m.state = StateEnding
	}
}

// Pause suspends playback. Pausing anything but a playing session,
// including an already paused one, changes nothing.
func (m *Machine) Pause() {
	if m.state == StatePlaying {
		m.state = StatePaused
	}
}

// Resume continues a paused session. Resuming anything else is ignored.
func (m *Machine) Resume() {
	if m.state == StatePaused {
		m.state = StatePlaying
	}
}

// TogglePause flips between Playing and Paused. The playback clock freezes
// while paused, so remaining time is unaffected.
func (m *Machine) TogglePause() {
	switch m.state {
	case StatePlaying:
		m.Pause()
	case StatePaused:
		m.Resume()
	}
}

// MediaEnded signals natural completion of the underlying clip.
func (m *Machine) MediaEnded() {
	if m.state.Terminal() || m.state == StateConnecting {
		return
	}
	m.position = m.duration
	m.end(StateEnded)
}

// Hangup closes the session from any state. It always wins over other
// transitions.
func (m *Machine) Hangup() {
	if m.state.Terminal() {
		return
	}
	m.end(StateClosed)
}

func (m *Machine) end(final State) {
	m.state = final
	if m.endFired {
		return
	}
	m.endFired = true
	if m.onEnd != nil {
		m.onEnd(final)
	}
}

// FormatRemaining renders the remaining time as zero-padded MM:SS.
func (m *Machine) FormatRemaining() string {
	return FormatDuration(m.Remaining())
}

// FormatDuration renders a duration as zero-padded MM:SS.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
