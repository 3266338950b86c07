package callsession

import (
	"context"
	"log"
	"sync"
	"time"
)

// Update is one outbound snapshot for the call screen.
type Update struct {
	Event     string
	State     string
	Remaining int
	Formatted string
	Warning   bool
}

// Update event names.
const (
	UpdateState = "state"
	UpdateTick  = "tick"
	UpdateEnded = "ended"
)

// RunnerConfig carries the timing knobs for a call.
type RunnerConfig struct {
	// Duration is the probed clip length, not the nominal plan length.
	Duration time.Duration

	// ConnectDelay simulates connection setup before playback starts.
	ConnectDelay time.Duration

	// WarningThreshold is the remaining time at which Ending is entered.
	WarningThreshold time.Duration

	// TickInterval is the cadence of countdown updates.
	TickInterval time.Duration
}

// Runner drives a Machine from a single ticker and fans updates out through
// notify. All machine access is serialized; command methods may be called
// from any goroutine.
type Runner struct {
	mu      sync.Mutex
	machine *Machine
	cfg     RunnerConfig
	notify  func(Update)

	// playback clock: accumulated play time plus the stretch since the
	// last resume while playing
	played   time.Duration
	resumeAt time.Time
	playing  bool

	endedSent bool
}

// NewRunner creates a runner. onEnd fires exactly once when the session
// ends, before the final update is sent. notify may be nil.
func NewRunner(cfg RunnerConfig, notify func(Update), onEnd func(State)) *Runner {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	r := &Runner{cfg: cfg, notify: notify}
	r.machine = NewMachine(cfg.Duration, cfg.WarningThreshold, onEnd)
	return r
}

// Run blocks until the session reaches a terminal state or ctx is
// cancelled. Cancellation counts as a hangup so the session log never holds
// a call open after its screen is gone.
func (r *Runner) Run(ctx context.Context) {
	connect := time.NewTimer(r.cfg.ConnectDelay)
	defer connect.Stop()

	select {
	case <-ctx.Done():
		r.Hangup()
		return
	case <-connect.C:
	}

	r.mu.Lock()
	// A hangup may have landed while connecting; the session is over and
	// must not start playing
	if r.machine.State().Terminal() {
		r.mu.Unlock()
		return
	}
	r.machine.Connect()
	r.startClock(time.Now())
	u := r.snapshotLocked(UpdateState)
	r.mu.Unlock()
	if r.notify != nil {
		r.notify(u)
	}

	ticker := time.NewTicker(r.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Hangup()
			return
		case now := <-ticker.C:
			r.mu.Lock()
			r.machine.Tick(r.position(now))
			terminal := r.machine.State().Terminal()
			r.mu.Unlock()

			if terminal {
				r.publishEnded()
				return
			}
			r.publish(UpdateTick)
		}
	}
}

// Hangup closes the call immediately.
func (r *Runner) Hangup() {
	r.mu.Lock()
	was := r.machine.State()
	r.machine.Hangup()
	r.mu.Unlock()

	if !was.Terminal() {
		r.publishEnded()
	}
}

// Pause suspends playback. Repeating the command is a no-op, never a
// resume.
func (r *Runner) Pause() {
	r.transition((*Machine).Pause)
}

// Resume continues paused playback. Repeating the command is a no-op.
func (r *Runner) Resume() {
	r.transition((*Machine).Resume)
}

// TogglePause pauses or resumes playback without touching remaining time.
func (r *Runner) TogglePause() {
	r.transition((*Machine).TogglePause)
}

// transition applies a machine command, keeps the playback clock in step
// with the Playing/Paused edge, and announces the change if there was one.
func (r *Runner) transition(apply func(*Machine)) {
	now := time.Now()
	r.mu.Lock()
	before := r.machine.State()
	apply(r.machine)
	after := r.machine.State()
	if before == StatePlaying && after == StatePaused {
		r.stopClock(now)
	}
	if before == StatePaused && after == StatePlaying {
		r.startClock(now)
	}
	r.mu.Unlock()

	if before != after {
		r.publish(UpdateState)
	}
}

// MediaEnded signals that the clip finished playing on its own.
func (r *Runner) MediaEnded() {
	r.mu.Lock()
	was := r.machine.State()
	r.machine.MediaEnded()
	ended := !was.Terminal() && r.machine.State().Terminal()
	r.mu.Unlock()

	if ended {
		r.publishEnded()
	}
}

// MediaError records a playback error reported by the client. The session
// carries on in a degraded state rather than tearing down.
func (r *Runner) MediaError(message string) {
	log.Printf("Call media error (session continues): %s", message)
}

// State returns the current machine state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.machine.State()
}

// Snapshot returns the current outward-facing view of the call.
func (r *Runner) Snapshot() Update {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(UpdateState)
}

func (r *Runner) snapshotLocked(event string) Update {
	remaining := r.machine.Remaining()
	return Update{
		Event:     event,
		State:     r.machine.State().String(),
		Remaining: int(remaining.Round(time.Second) / time.Second),
		Formatted: FormatDuration(remaining),
		Warning:   r.machine.Warning(),
	}
}

func (r *Runner) publishEnded() {
	r.mu.Lock()
	if r.endedSent {
		r.mu.Unlock()
		return
	}
	r.endedSent = true
	u := r.snapshotLocked(UpdateEnded)
	r.mu.Unlock()

	if r.notify != nil {
		r.notify(u)
	}
}

func (r *Runner) publish(event string) {
	if r.notify == nil {
		return
	}
	r.mu.Lock()
	u := r.snapshotLocked(event)
	r.mu.Unlock()
	r.notify(u)
}

func (r *Runner) startClock(now time.Time) {
	r.resumeAt = now
	r.playing = true
}

func (r *Runner) stopClock(now time.Time) {
	if r.playing {
		r.played += now.Sub(r.resumeAt)
		r.playing = false
	}
}

func (r *Runner) position(now time.Time) time.Duration {
	if r.playing {
		return r.played + now.Sub(r.resumeAt)
	}
	return r.played
}
