// state/state.go
package state

import (
	"errors"
	"fmt"
	"sync"
)

// 状态机接口
type StateMachine interface {
	ChangeState(state State) error
	GetCurrentState() State
	AddTransition(from State, to State, condition func() bool) error
}

// 状态接口
type State interface {
	OnEnter()
	OnExit()
	GetID() string
}

// ErrTransitionNotAllowed is returned when a state transition is not allowed.
var ErrTransitionNotAllowed = errors.New("state transition not allowed")

type edge struct {
	from, to string
}

// BaseStateMachine guards transitions with optional conditions. A transition
// with no registered condition is always allowed.
type BaseStateMachine struct {
	current     State
	transitions map[edge]func() bool
	mutex       sync.RWMutex
}

func NewBaseStateMachine(initialState State) *BaseStateMachine {
	machine := &BaseStateMachine{
		current:     initialState,
		transitions: make(map[edge]func() bool),
	}
	initialState.OnEnter()
	return machine
}

func (sm *BaseStateMachine) ChangeState(newState State) error {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	// 检查是否有转换条件
	e := edge{from: sm.current.GetID(), to: newState.GetID()}
	if condition, ok := sm.transitions[e]; ok && condition != nil && !condition() {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, e.from, e.to)
	}

	sm.current.OnExit()
	sm.current = newState
	sm.current.OnEnter()
	return nil
}

func (sm *BaseStateMachine) GetCurrentState() State {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return sm.current
}

// Is reports whether the machine currently sits in the state with the given id.
func (sm *BaseStateMachine) Is(id string) bool {
	return sm.GetCurrentState().GetID() == id
}

func (sm *BaseStateMachine) AddTransition(from State, to State, condition func() bool) error {
	if from == nil || to == nil {
		return errors.New("state: nil state in transition")
	}
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	sm.transitions[edge{from: from.GetID(), to: to.GetID()}] = condition
	return nil
}

// Base is a state that does nothing on enter or exit. Embed it and override
// the hooks that matter.
type Base struct {
	ID string
}

func (s *Base) GetID() string {
	return s.ID
}

func (s *Base) OnEnter() {}

func (s *Base) OnExit() {}

// Func is a state whose hooks are plain functions; either may be nil.
type Func struct {
	Base
	Enter func()
	Exit  func()
}

// NewFunc builds a Func state.
func NewFunc(id string, enter, exit func()) *Func {
	return &Func{Base: Base{ID: id}, Enter: enter, Exit: exit}
}

func (s *Func) OnEnter() {
	if s.Enter != nil {
		s.Enter()
	}
}

func (s *Func) OnExit() {
	if s.Exit != nil {
		s.Exit()
	}
}
