package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingState struct {
	name string
	log  *[]string
}

func (r *recordingState) OnEnter()                     { *r.log = append(*r.log, r.name+":enter") }
func (r *recordingState) OnExit()                      { *r.log = append(*r.log, r.name+":exit") }
func (r *recordingState) OnPause()                     { *r.log = append(*r.log, r.name+":pause") }
func (r *recordingState) OnResume()                    { *r.log = append(*r.log, r.name+":resume") }
func (r *recordingState) Update(dt float64)             {}
func (r *recordingState) FixedUpdate(tick float64)      {}
func (r *recordingState) Render()                       {}
func (r *recordingState) DrawUI(ui UI)                  {}

func newRecording(name string, log *[]string) func() State {
	return func() State { return &recordingState{name: name, log: log} }
}

func TestPushEntersAndPausesPreviousTop(t *testing.T) {
	var log []string
	s := New()
	s.Push(newRecording("playing", &log))
	s.ProcessPendingChanges()

	s.Push(newRecording("pause-menu", &log))
	s.ProcessPendingChanges()

	assert.Equal(t, []string{"playing:enter", "playing:pause", "pause-menu:enter"}, log)
	top, ok := s.Top()
	assert.True(t, ok)
	assert.Equal(t, "pause-menu", top.(*recordingState).name)
}

func TestPopExitsTopAndResumesUnderlying(t *testing.T) {
	var log []string
	s := New()
	s.Push(newRecording("playing", &log))
	s.Push(newRecording("pause-menu", &log))
	s.ProcessPendingChanges()
	log = nil

	s.Pop()
	s.ProcessPendingChanges()

	assert.Equal(t, []string{"pause-menu:exit", "playing:resume"}, log)
	top, ok := s.Top()
	assert.True(t, ok)
	assert.Equal(t, "playing", top.(*recordingState).name)
}

func TestPopLastStateLeavesEmptyStack(t *testing.T) {
	var log []string
	s := New()
	s.Push(newRecording("only", &log))
	s.ProcessPendingChanges()

	s.Pop()
	s.ProcessPendingChanges()

	assert.True(t, s.IsEmpty())
}

func TestSwitchPopsThenPushesResumingAndRepausingUnderlying(t *testing.T) {
	var log []string
	s := New()
	s.Push(newRecording("menu", &log))
	s.Push(newRecording("loading", &log))
	s.ProcessPendingChanges()
	log = nil

	s.Switch(newRecording("playing", &log))
	s.ProcessPendingChanges()

	assert.Equal(t, []string{"loading:exit", "menu:resume", "menu:pause", "playing:enter"}, log)
	top, ok := s.Top()
	assert.True(t, ok)
	assert.Equal(t, "playing", top.(*recordingState).name)
}

func TestClearExitsEveryStateInLIFOOrder(t *testing.T) {
	var log []string
	s := New()
	s.Push(newRecording("bottom", &log))
	s.Push(newRecording("middle", &log))
	s.Push(newRecording("top", &log))
	s.ProcessPendingChanges()
	log = nil

	s.Clear()
	s.ProcessPendingChanges()

	assert.Equal(t, []string{"top:exit", "middle:exit", "bottom:exit"}, log)
	assert.True(t, s.IsEmpty())
}

func TestPendingChangesAreDeferredUntilProcessed(t *testing.T) {
	var log []string
	s := New()
	s.Push(newRecording("playing", &log))

	assert.Empty(t, log, "Push must not apply until ProcessPendingChanges runs")
	assert.True(t, s.IsEmpty())

	s.ProcessPendingChanges()
	assert.Equal(t, []string{"playing:enter"}, log)
}
