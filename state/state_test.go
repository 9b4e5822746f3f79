package state

import (
	"errors"
	"testing"
)

// MockState is a test double for the State interface.
type MockState struct {
	ID            string
	OnEnterCalled bool
	OnExitCalled  bool
}

func (m *MockState) OnEnter() { m.OnEnterCalled = true }
func (m *MockState) OnExit()  { m.OnExitCalled = true }
func (m *MockState) GetID() string {
	return m.ID
}

func (m *MockState) reset() {
	m.OnEnterCalled = false
	m.OnExitCalled = false
}

func TestStateMachine_InitialState(t *testing.T) {
	initial := &MockState{ID: "idle"}
	sm := NewBaseStateMachine(initial)

	if !initial.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the initial state")
	}
	if sm.GetCurrentState() != initial {
		t.Error("GetCurrentState should return the initial state")
	}
	if !sm.Is("idle") {
		t.Error("Expected Is(idle) to be true")
	}
}

func TestStateMachine_ChangeState(t *testing.T) {
	idle := &MockState{ID: "idle"}
	running := &MockState{ID: "running"}

	sm := NewBaseStateMachine(idle)
	idle.reset()

	if err := sm.ChangeState(running); err != nil {
		t.Fatalf("ChangeState should not return an error, but got: %v", err)
	}
	if !idle.OnExitCalled {
		t.Error("Expected OnExit to be called on the old state")
	}
	if !running.OnEnterCalled {
		t.Error("Expected OnEnter to be called on the new state")
	}
	if sm.GetCurrentState() != running {
		t.Error("GetCurrentState should return the new state")
	}
}

func TestStateMachine_GuardedTransition(t *testing.T) {
	running := &MockState{ID: "running"}
	ended := &MockState{ID: "ended"}

	sm := NewBaseStateMachine(running)
	if err := sm.AddTransition(running, ended, func() bool { return true }); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}
	if err := sm.AddTransition(ended, running, func() bool { return false }); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	if err := sm.ChangeState(ended); err != nil {
		t.Fatalf("Expected running -> ended to be allowed, got %v", err)
	}

	ended.reset()
	running.reset()
	err := sm.ChangeState(running)
	if !errors.Is(err, ErrTransitionNotAllowed) {
		t.Errorf("Expected ErrTransitionNotAllowed, but got: %v", err)
	}
	if !sm.Is("ended") {
		t.Errorf("Expected to remain in ended, got %s", sm.GetCurrentState().GetID())
	}
	if ended.OnExitCalled || running.OnEnterCalled {
		t.Error("Hooks should not run for a blocked transition")
	}
}

func TestStateMachine_AddTransitionNil(t *testing.T) {
	sm := NewBaseStateMachine(&MockState{ID: "a"})
	if err := sm.AddTransition(nil, &MockState{ID: "b"}, nil); err == nil {
		t.Error("Expected an error for a nil state")
	}
}

func TestFuncState_Hooks(t *testing.T) {
	var entered, exited int
	s := NewFunc("playing", func() { entered++ }, func() { exited++ })
	sm := NewBaseStateMachine(s)
	sm.ChangeState(NewFunc("done", nil, nil))

	if entered != 1 || exited != 1 {
		t.Errorf("Expected one enter and one exit, got %d and %d", entered, exited)
	}
}
