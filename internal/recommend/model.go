// Package recommend turns compass selections into a scored recommendation:
// a reducer owns the selection set, and the Orchestrator runs the scoring
// and the optional proxy round-trip with last-request-wins semantics.
package recommend

import (
	"strings"

	"compass-backend/internal/scoring"
)

// State is the orchestrator's display state.
type State string

const (
	StateIdle          State = "idle"
	StateAwaitingInput State = "awaiting-input"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateFailed        State = "failed"
)

// Msg is an input to the reducer.
type Msg interface {
	isMsg()
}

// SelectionChanged records one dimension choice. An empty Value clears it.
type SelectionChanged struct {
	Dimension scoring.Dimension
	Value     string
}

// Retry re-runs the request for the current selections when they are
// complete.
type Retry struct{}

type resultArrived struct {
	seq    uint64
	result Result
}

type requestFailed struct {
	seq     uint64
	message string
}

func (SelectionChanged) isMsg() {}
func (Retry) isMsg()            {}
func (resultArrived) isMsg()    {}
func (requestFailed) isMsg()    {}

// Model is the reducer state. It is replaced, never mutated, by reduce.
type Model struct {
	State      State
	Seq        uint64
	Selections scoring.Selections
	Result     *Result
	Message    string
}

// NewModel returns the initial idle model.
func NewModel() Model {
	return Model{State: StateIdle, Selections: scoring.Selections{}}
}

// reduce applies msg to m. load reports that a new request with sequence
// number next.Seq must be started.
func reduce(m Model, msg Msg) (next Model, load bool) {
	next = m
	switch msg := msg.(type) {
	case SelectionChanged:
		sel := m.Selections.Clone()
		value := strings.TrimSpace(msg.Value)
		if value == "" {
			delete(sel, msg.Dimension)
		} else {
			sel[msg.Dimension] = value
		}
		next.Selections = sel
		return evaluate(next)

	case Retry:
		if m.State == StateIdle && len(m.Selections) == 0 {
			return m, false
		}
		return evaluate(next)

	case resultArrived:
		if m.State != StateLoading || msg.seq != m.Seq {
			return m, false
		}
		result := msg.result
		next.State = StateReady
		next.Result = &result
		next.Message = ""
		return next, false

	case requestFailed:
		if m.State != StateLoading || msg.seq != m.Seq {
			return m, false
		}
		next.State = StateFailed
		next.Result = nil
		next.Message = msg.message
		return next, false
	}
	return m, false
}

func evaluate(m Model) (Model, bool) {
	m.Result = nil
	m.Message = ""
	if !m.Selections.Complete() {
		m.State = StateAwaitingInput
		return m, false
	}
	m.State = StateLoading
	m.Seq++
	return m, true
}
