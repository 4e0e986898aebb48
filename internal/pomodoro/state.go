package pomodoro

import "time"

// Mode is a phase of the pomodoro cycle.
type Mode string

const (
	ModeWork       Mode = "work"
	ModeShortBreak Mode = "shortBreak"
	ModeLongBreak  Mode = "longBreak"
)

// SnapshotTTL bounds how old a persisted snapshot may be before it is
// discarded on load.
const SnapshotTTL = time.Hour

// Durations holds the phase lengths in seconds and the cadence of long
// breaks.
type Durations struct {
	Work           int
	ShortBreak     int
	LongBreak      int
	LongBreakEvery int
}

// DefaultDurations returns the classic 25/5/15 minute cycle with a long
// break after every fourth pomodoro.
func DefaultDurations() Durations {
	return Durations{Work: 1500, ShortBreak: 300, LongBreak: 900, LongBreakEvery: 4}
}

func (d Durations) normalized() Durations {
	def := DefaultDurations()
	if d.Work <= 0 {
		d.Work = def.Work
	}
	if d.ShortBreak <= 0 {
		d.ShortBreak = def.ShortBreak
	}
	if d.LongBreak <= 0 {
		d.LongBreak = def.LongBreak
	}
	if d.LongBreakEvery <= 0 {
		d.LongBreakEvery = def.LongBreakEvery
	}
	return d
}

func (d Durations) forMode(m Mode) int {
	switch m {
	case ModeShortBreak:
		return d.ShortBreak
	case ModeLongBreak:
		return d.LongBreak
	default:
		return d.Work
	}
}

// State is the externally visible timer state. Field names match the
// persisted snapshot format.
type State struct {
	Mode               Mode `json:"mode"`
	TimeRemaining      int  `json:"timeRemaining"`
	IsActive           bool `json:"isActive"`
	PomodorosCompleted int  `json:"pomodorosCompleted"`
}

// Snapshot is a State stamped with the wall-clock time it was taken,
// written to the key-value store on every state change.
type Snapshot struct {
	State
	Timestamp int64 `json:"timestamp"`
}

func initialState(d Durations) State {
	return State{Mode: ModeWork, TimeRemaining: d.Work}
}

// tick advances the timer by one second. The tick that reaches zero also
// performs the phase transition, so a completion can never fire twice for
// the same phase. The returned flag reports that a work session completed
// naturally.
func tick(s State, d Durations) (State, bool) {
	if !s.IsActive {
		return s, false
	}
	if s.TimeRemaining > 0 {
		s.TimeRemaining--
	}
	if s.TimeRemaining > 0 {
		return s, false
	}
	return advance(s, d)
}

// advance leaves the current phase as on natural completion: a finished
// work session counts towards the long-break cadence, breaks lead back to
// work. The machine always comes up paused in the new phase.
func advance(s State, d Durations) (State, bool) {
	completedWork := s.Mode == ModeWork
	if completedWork {
		s.PomodorosCompleted++
		if s.PomodorosCompleted%d.LongBreakEvery == 0 {
			s.Mode = ModeLongBreak
		} else {
			s.Mode = ModeShortBreak
		}
	} else {
		s.Mode = ModeWork
	}
	s.TimeRemaining = d.forMode(s.Mode)
	s.IsActive = false
	return s, completedWork
}

// skipPhase leaves the current phase without crediting it: an abandoned
// work session is not counted and never earns the long break.
func skipPhase(s State, d Durations) State {
	if s.Mode == ModeWork {
		s.Mode = ModeShortBreak
	} else {
		s.Mode = ModeWork
	}
	s.TimeRemaining = d.forMode(s.Mode)
	s.IsActive = false
	return s
}

// resetPhase restores the current phase to its full duration and pauses.
func resetPhase(s State, d Durations) State {
	s.TimeRemaining = d.forMode(s.Mode)
	s.IsActive = false
	return s
}

func startPause(s State) State {
	s.IsActive = !s.IsActive
	return s
}

// reconcile replays the wall-clock time elapsed since a snapshot was
// taken. Snapshots older than SnapshotTTL are rejected. An active snapshot
// loses the elapsed seconds, floored and clamped at zero, and pauses once
// nothing remains; an inactive one restores as is.
func reconcile(snap Snapshot, now time.Time, d Durations) (State, bool) {
	elapsed := now.UnixMilli() - snap.Timestamp
	if elapsed > SnapshotTTL.Milliseconds() {
		return initialState(d), false
	}
	s := snap.State
	if s.IsActive {
		s.TimeRemaining -= int(elapsed / 1000)
		if s.TimeRemaining <= 0 {
			s.TimeRemaining = 0
			s.IsActive = false
		}
	}
	return s, true
}
