package training

// Cue receives fire-and-forget feedback events (sound, haptics, terminal
// bell). Implementations must not block.
type Cue interface {
	Tick(remaining int)
	SetStart()
	SetComplete()
	WorkoutComplete()
}

// NopCue ignores every event.
type NopCue struct{}

func (NopCue) Tick(int)         {}
func (NopCue) SetStart()        {}
func (NopCue) SetComplete()     {}
func (NopCue) WorkoutComplete() {}

// Mutable wraps a Cue and drops events while muted reports true.
type Mutable struct {
	Cue   Cue
	Muted func() bool
}

func (m Mutable) on() bool { return m.Cue != nil && (m.Muted == nil || !m.Muted()) }

func (m Mutable) Tick(remaining int) {
	if m.on() {
		m.Cue.Tick(remaining)
	}
}

func (m Mutable) SetStart() {
	if m.on() {
		m.Cue.SetStart()
	}
}

func (m Mutable) SetComplete() {
	if m.on() {
		m.Cue.SetComplete()
	}
}

func (m Mutable) WorkoutComplete() {
	if m.on() {
		m.Cue.WorkoutComplete()
	}
}
