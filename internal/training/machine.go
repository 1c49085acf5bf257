// Package training drives one workout session through its exercises, sets
// and rest periods.
//
// A Machine is not safe for concurrent use. Drive it from one goroutine;
// LoopScheduler delivers timer ticks onto a Loop for exactly that reason.
package training

import (
	"errors"
	"log/slog"
	"math"
	"time"

	"github.com/meltforce/vizofit/internal/models"
	"github.com/meltforce/vizofit/internal/units"
)

const (
	// DefaultRest applies when an exercise's rest field has no duration.
	DefaultRest = 60
	// MaxSets caps the parsed set count of one exercise.
	MaxSets = 99
	// CueThreshold is the remaining-seconds bound below which ticks cue.
	CueThreshold = 6
)

var (
	// ErrNotAvailable is returned when an action does not apply to the
	// current phase (Done during a countdown, Skip while untimed).
	ErrNotAvailable = errors.New("action not available in current phase")
	// ErrNoExercises is returned by Start for an empty routine.
	ErrNoExercises = errors.New("routine has no exercises")
	// ErrNotRunning is returned for actions after the session ended.
	ErrNotRunning = errors.New("training session not running")
)

// Phase is the machine's current state.
type Phase string

const (
	Idle      Phase = "idle"
	Working   Phase = "working"
	Resting   Phase = "resting"
	Finished  Phase = "finished"
	Cancelled Phase = "cancelled"
	Closed    Phase = "closed"
)

// Snapshot is a read-only view of the machine.
type Snapshot struct {
	Phase     Phase           `json:"phase"`
	Exercise  int             `json:"exercise"`
	Set       int             `json:"set"`
	TotalSets int             `json:"totalSets"`
	Remaining int             `json:"remaining"`
	Timed     bool            `json:"timed"`
	Current   models.Exercise `json:"current"`
	Progress  float64         `json:"progress"`
}

// Options configures a Machine. Zero values pick sensible defaults.
type Options struct {
	Scheduler Scheduler
	Cue       Cue
	// OnComplete runs once when a finished session is closed.
	OnComplete func()
	// Interval is the tick period, one second unless overridden.
	Interval time.Duration
}

// Machine is the active-training state machine.
type Machine struct {
	exercises []models.Exercise
	sched     Scheduler
	cue       Cue
	complete  func()
	interval  time.Duration
	log       *slog.Logger

	phase     Phase
	index     int
	set       int
	totalSets int
	remaining int
	timed     bool
	finished  bool

	cancelTick func()
}

// New creates an idle machine over a copy of exercises.
func New(exercises []models.Exercise, opts Options, log *slog.Logger) *Machine {
	m := &Machine{
		exercises: append([]models.Exercise(nil), exercises...),
		sched:     opts.Scheduler,
		cue:       opts.Cue,
		complete:  opts.OnComplete,
		interval:  opts.Interval,
		log:       log,
		phase:     Idle,
	}
	if m.sched == nil {
		m.sched = NewManualScheduler()
	}
	if m.cue == nil {
		m.cue = NopCue{}
	}
	if m.interval <= 0 {
		m.interval = time.Second
	}
	return m
}

// Start enters working(0, 1).
func (m *Machine) Start() error {
	if m.phase != Idle {
		return ErrNotAvailable
	}
	if len(m.exercises) == 0 {
		return ErrNoExercises
	}
	m.log.Debug("training started", "exercises", len(m.exercises))
	m.enterExercise(0)
	return nil
}

// Tick advances the countdown by one second. Ticks outside a running
// countdown are ignored.
func (m *Machine) Tick() {
	if !m.counting() {
		return
	}
	if m.remaining <= 1 {
		m.remaining = 0
		m.expire()
		return
	}
	if m.remaining < CueThreshold {
		m.cue.Tick(m.remaining - 1)
	}
	m.remaining--
}

// Done completes an untimed working set.
func (m *Machine) Done() error {
	if err := m.running(); err != nil {
		return err
	}
	if m.phase != Working || m.timed {
		return ErrNotAvailable
	}
	m.finishSet()
	return nil
}

// Skip performs the transition the running countdown would perform at zero.
func (m *Machine) Skip() error {
	if err := m.running(); err != nil {
		return err
	}
	if !m.counting() {
		return ErrNotAvailable
	}
	m.remaining = 0
	m.expire()
	return nil
}

// Cancel aborts the session without completing it. No-op once ended.
func (m *Machine) Cancel() {
	if m.phase == Cancelled || m.phase == Closed {
		return
	}
	m.stopTimer()
	m.log.Debug("training cancelled", "exercise", m.index, "set", m.set)
	m.phase = Cancelled
}

// Close dismisses the session. A finished session runs OnComplete exactly
// once; an unfinished one is cancelled.
func (m *Machine) Close() {
	switch m.phase {
	case Finished:
		m.stopTimer()
		m.phase = Closed
		if m.complete != nil {
			m.complete()
		}
	case Closed:
	default:
		m.Cancel()
		m.phase = Closed
	}
}

// State returns a snapshot of the machine.
func (m *Machine) State() Snapshot {
	s := Snapshot{
		Phase:     m.phase,
		Exercise:  m.index,
		Set:       m.set,
		TotalSets: m.totalSets,
		Remaining: m.remaining,
		Timed:     m.timed,
		Progress:  m.Progress(),
	}
	if m.index < len(m.exercises) {
		s.Current = m.exercises[m.index]
	}
	return s
}

// Progress is the completed fraction of the workout in [0, 1].
func (m *Machine) Progress() float64 {
	n := len(m.exercises)
	switch {
	case m.finished:
		return 1
	case n == 0 || m.totalSets == 0:
		return 0
	}
	total := float64(n)
	p := float64(m.index)/total + (float64(m.set)/float64(m.totalSets))/total
	return math.Min(p, 1)
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

func (m *Machine) running() error {
	switch m.phase {
	case Working, Resting:
		return nil
	}
	return ErrNotRunning
}

func (m *Machine) counting() bool {
	return m.phase == Resting || (m.phase == Working && m.timed)
}

func (m *Machine) enterExercise(i int) {
	m.index = i
	m.totalSets = TotalSets(m.exercises[i].Sets)
	m.enterWorking(1)
}

func (m *Machine) enterWorking(set int) {
	m.stopTimer()
	m.phase = Working
	m.set = set
	m.cue.SetStart()

	secs, ok := units.ParseDurationSeconds(m.exercises[m.index].Reps)
	m.timed = ok
	if !ok {
		m.remaining = 0
		return
	}
	if secs <= 0 {
		// already expired
		m.remaining = 0
		m.finishSet()
		return
	}
	m.remaining = secs
	m.startTimer()
}

func (m *Machine) enterResting() {
	m.stopTimer()
	m.phase = Resting
	m.timed = true
	m.remaining = RestSeconds(m.exercises[m.index].Rest)
	if m.remaining == 0 {
		m.enterWorking(m.set + 1)
		return
	}
	m.startTimer()
}

func (m *Machine) expire() {
	switch m.phase {
	case Working:
		m.finishSet()
	case Resting:
		m.enterWorking(m.set + 1)
	}
}

func (m *Machine) finishSet() {
	m.stopTimer()
	m.cue.SetComplete()
	if m.set < m.totalSets {
		m.enterResting()
		return
	}
	if m.index < len(m.exercises)-1 {
		m.enterExercise(m.index + 1)
		return
	}
	m.phase = Finished
	m.finished = true
	m.remaining = 0
	m.timed = false
	m.log.Debug("training finished")
	m.cue.WorkoutComplete()
}

func (m *Machine) startTimer() {
	m.cancelTick = m.sched.Every(m.interval, m.Tick)
}

func (m *Machine) stopTimer() {
	if m.cancelTick != nil {
		m.cancelTick()
		m.cancelTick = nil
	}
}

// TotalSets parses a sets field, rounds it and clamps it to [1, MaxSets].
func TotalSets(sets string) int {
	n := math.Round(units.ParseLeadingNumber(sets))
	return int(max(1, min(n, MaxSets)))
}

// RestSeconds parses a rest field. Text without a duration rests
// DefaultRest seconds; non-positive durations clamp to 0.
func RestSeconds(rest string) int {
	secs, ok := units.ParseDurationSeconds(rest)
	if !ok {
		return DefaultRest
	}
	return max(0, secs)
}
