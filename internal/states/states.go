// Package states implements the game state stack: a push-down
// automaton of screens/modes (playing, paused, menu) where only the
// top state receives per-frame updates. Stack mutations are deferred
// to frame boundaries so a state can safely push/pop itself mid-update
// without the stack shifting underneath the in-flight call.
package states

// UI is the overlay-UI draw target passed to DrawUI. Rendering and UI
// are out of scope for the simulation core; this is just the seam a
// state uses to hand off to whatever UI collaborator the host wires
// in.
type UI interface{}

// State is one entry on the stack.
type State interface {
	OnEnter()
	OnExit()
	OnPause()
	OnResume()
	Update(dt float64)
	FixedUpdate(tickInterval float64)
	Render()
	DrawUI(ui UI)
}

type changeKind int

const (
	changePush changeKind = iota
	changePop
	changeClear
)

type pendingChange struct {
	kind    changeKind
	factory func() State
}

// Stack is a LIFO of States with deferred mutation.
type Stack struct {
	states  []State
	pending []pendingChange
}

// New returns an empty state stack.
func New() *Stack {
	return &Stack{}
}

// Push enqueues construction and entry of a new top state via
// factory, applied on the next ProcessPendingChanges.
func (s *Stack) Push(factory func() State) {
	s.pending = append(s.pending, pendingChange{kind: changePush, factory: factory})
}

// Pop enqueues exit of the current top state.
func (s *Stack) Pop() {
	s.pending = append(s.pending, pendingChange{kind: changePop})
}

// Switch enqueues a Pop followed by a Push of factory, i.e. replacing
// the top state rather than stacking on top of it.
func (s *Stack) Switch(factory func() State) {
	s.pending = append(s.pending, pendingChange{kind: changePop})
	s.pending = append(s.pending, pendingChange{kind: changePush, factory: factory})
}

// Clear enqueues exit of every state on the stack.
func (s *Stack) Clear() {
	s.pending = append(s.pending, pendingChange{kind: changeClear})
}

// Top returns the current top state, or (nil, false) if the stack is
// empty.
func (s *Stack) Top() (State, bool) {
	if len(s.states) == 0 {
		return nil, false
	}
	return s.states[len(s.states)-1], true
}

// IsEmpty reports whether the stack has no states (the application
// should exit its loop when this becomes true).
func (s *Stack) IsEmpty() bool {
	return len(s.states) == 0
}

// ProcessPendingChanges drains the queued Push/Pop/Switch/Clear
// intents in FIFO order, applying OnPause/OnEnter/OnExit/OnResume as
// each mutation crosses the stack boundary.
func (s *Stack) ProcessPendingChanges() {
	changes := s.pending
	s.pending = nil

	for _, change := range changes {
		switch change.kind {
		case changePush:
			if top, ok := s.Top(); ok {
				top.OnPause()
			}
			newState := change.factory()
			newState.OnEnter()
			s.states = append(s.states, newState)
		case changePop:
			s.popOne()
		case changeClear:
			for len(s.states) > 0 {
				s.popOne()
			}
		}
	}
}

func (s *Stack) popOne() {
	if len(s.states) == 0 {
		return
	}
	top := s.states[len(s.states)-1]
	top.OnExit()
	s.states = s.states[:len(s.states)-1]
	if newTop, ok := s.Top(); ok {
		newTop.OnResume()
	}
}
