package wizard

import (
	"fmt"
	"sort"
)

// State is one of the five wizard states.
type State string

const (
	StateBrandDetails State = "brand-details"
	StateAnalyzing    State = "analyzing"
	StateCompetitors  State = "competitors"
	StateGenerating   State = "generating"
	StateResults      State = "results"
)

// Checkpoint progress per step. Progress is a checkpoint write, not an
// accumulation; backend ordering is trusted and regressions are not
// defended against.
var (
	brandInfoCheckpoints = map[string]int{
		"init":        10,
		"description": 25,
		"industry":    50,
		"competitors": 75,
		"name":        90,
		"complete":    100,
	}

	queryGenCheckpoints = map[string]int{
		"init":       10,
		"generating": 50,
		"complete":   75,
	}
)

// testProgressBase is where the final test stream's own progress field is
// rescaled into: 75 + progress*0.25 fills the remaining 75-100 band.
const testProgressBase = 75

// Machine is the wizard state machine. It is pure event dispatch with no
// network awareness; the controller feeds it parsed events.
type Machine struct {
	state      State
	progress   int
	statusText string
	selected   map[string]bool
	halted     bool
}

// NewMachine returns a machine in the brand-details state.
func NewMachine() *Machine {
	return &Machine{
		state:    StateBrandDetails,
		selected: make(map[string]bool),
	}
}

func (m *Machine) State() State       { return m.state }
func (m *Machine) Progress() int      { return m.progress }
func (m *Machine) StatusText() string { return m.statusText }
func (m *Machine) Halted() bool       { return m.halted }

// SelectedCompetitors returns the toggle set in stable order.
func (m *Machine) SelectedCompetitors() []string {
	names := make([]string, 0, len(m.selected))
	for name := range m.selected {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToggleCompetitor adds the name to the selection set, or removes it when
// already present.
func (m *Machine) ToggleCompetitor(name string) {
	if m.selected[name] {
		delete(m.selected, name)
		return
	}
	m.selected[name] = true
}

// CanGenerate reports whether report generation is unlocked. It requires at
// least one selected competitor.
func (m *Machine) CanGenerate() bool {
	return len(m.selected) > 0
}

// BeginAnalysis enters the analyzing state as the first stream is opened.
func (m *Machine) BeginAnalysis() error {
	if m.state != StateBrandDetails && m.state != StateAnalyzing {
		return fmt.Errorf("cannot start analysis from state %q", m.state)
	}
	m.state = StateAnalyzing
	m.progress = 0
	m.statusText = ""
	m.halted = false
	return nil
}

// BeginGeneration enters the generating state as the second stream is
// opened. At least one competitor must be selected.
func (m *Machine) BeginGeneration() error {
	if m.state != StateCompetitors {
		return fmt.Errorf("cannot start generation from state %q", m.state)
	}
	if !m.CanGenerate() {
		return fmt.Errorf("at least one competitor must be selected")
	}
	m.state = StateGenerating
	m.progress = 0
	m.statusText = ""
	m.halted = false
	return nil
}

// Fail halts the current step with a fixed message. Used for transport
// failures where no event-level error text exists.
func (m *Machine) Fail(message string) {
	m.statusText = message
	m.halted = true
}

// ApplyBrandInfoEvent dispatches one event of the brand-info stream.
// It returns true when the step completed and the state advanced.
func (m *Machine) ApplyBrandInfoEvent(e Event) bool {
	if !m.applyCommon(e, brandInfoCheckpoints) {
		return false
	}

	// The transition requires the complete event to carry a result.
	if e.Step == "complete" && len(e.Result) > 0 {
		m.state = StateCompetitors
		return true
	}
	return false
}

// ApplyQueryGenEvent dispatches one event of the query-generation stream.
// Completion leaves the machine in generating; the test stream follows.
func (m *Machine) ApplyQueryGenEvent(e Event) bool {
	if !m.applyCommon(e, queryGenCheckpoints) {
		return false
	}
	return e.Step == "complete" && len(e.Result) > 0
}

// ApplyTestEvent dispatches one event of the test-queries stream. The
// event's own progress field is rescaled into the 75-100 band. Completion
// with a result enters the terminal results state.
func (m *Machine) ApplyTestEvent(e Event) bool {
	if m.halted {
		return false
	}
	if e.Error != "" {
		m.statusText = "Error: " + e.Error
		m.halted = true
		return false
	}

	if e.Status != "" {
		m.statusText = e.Status
	}
	if e.Progress != nil {
		m.progress = testProgressBase + int(*e.Progress*0.25)
	}

	if e.Step == "complete" && len(e.Result) > 0 {
		m.progress = 100
		m.state = StateResults
		return true
	}
	return false
}

// applyCommon handles the error, status, and step checkpoint fields shared
// by the checkpoint-driven streams. It returns false when the event must
// not advance the step.
func (m *Machine) applyCommon(e Event, checkpoints map[string]int) bool {
	if m.halted {
		return false
	}
	if e.Error != "" {
		m.statusText = "Error: " + e.Error
		m.halted = true
		return false
	}

	if e.Status != "" {
		m.statusText = e.Status
	}
	if p, ok := checkpoints[e.Step]; ok {
		m.progress = p
	}
	return true
}
