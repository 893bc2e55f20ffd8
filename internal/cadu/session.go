package cadu

import (
	"regexp"
	"time"

	"github.com/rotorlab/cadu-sim/internal/measure"
)

// Menu is one of the four top-level device menus.
type Menu string

const (
	MenuMeasure Menu = "MEASURE"
	MenuDisplay Menu = "DISPLAY"
	MenuDiags   Menu = "DIAGS"
	MenuManager Menu = "MANAGER"
)

// Step is a MEASURE sub-state. It is meaningful only while the active menu
// is MEASURE.
type Step string

const (
	StepSelectAircraft   Step = "SELECT_AIRCRAFT"
	StepEnterTail        Step = "ENTER_TAIL"
	StepSelectFlightPlan Step = "SELECT_FLIGHT_PLAN"
	StepSelectTestState  Step = "SELECT_TEST_STATE"
	StepReadyToLaunch    Step = "READY_TO_LAUNCH"
	StepAcquiring        Step = "ACQUIRING"
	StepDone             Step = "DONE"
)

// Lifecycle tracks the session from creation through acquisitions to reset.
type Lifecycle string

const (
	LifecycleFresh    Lifecycle = "FRESH"
	LifecycleRunning  Lifecycle = "RUNNING"
	LifecycleComplete Lifecycle = "COMPLETE"
	LifecycleReset    Lifecycle = "RESET"
)

// Session is the single source of truth for one trainer run. The menu state
// machine is its sole writer; every other component gets read-only views.
type Session struct {
	ActiveMenu   Menu
	Step         Step
	AircraftType string
	TailNumber   string
	FlightPlan   string
	TestState    string
	Measurements []measure.Record // append-only, insertion order is chronological
	Lifecycle    Lifecycle
}

func NewSession() *Session {
	return &Session{
		ActiveMenu: MenuMeasure,
		Step:       StepSelectAircraft,
		Lifecycle:  LifecycleFresh,
	}
}

// Reset returns the session to FRESH: history, sub-step and selections are
// cleared, the active menu is kept.
func (s *Session) Reset() {
	s.Step = StepSelectAircraft
	s.AircraftType = ""
	s.TailNumber = ""
	s.FlightPlan = ""
	s.TestState = ""
	s.Measurements = nil
	s.Lifecycle = LifecycleFresh
}

// Summary is the read-only MANAGER projection of the session.
type Summary struct {
	Measurements int       `json:"measurements"`
	Lifecycle    Lifecycle `json:"lifecycle"`
}

func (s *Session) Summary() Summary {
	return Summary{
		Measurements: len(s.Measurements),
		Lifecycle:    s.Lifecycle,
	}
}

// Export is the JSON payload of the MANAGER export action: the committed
// selections plus the full measurement history.
type Export struct {
	ExportedAt   time.Time        `json:"exportedAt"`
	AircraftType string           `json:"aircraftType,omitempty"`
	TailNumber   string           `json:"tailNumber,omitempty"`
	FlightPlan   string           `json:"flightPlan,omitempty"`
	TestState    string           `json:"testState,omitempty"`
	Lifecycle    Lifecycle        `json:"lifecycle"`
	Measurements []measure.Record `json:"measurements"`
}

func (s *Session) Export() Export {
	return Export{
		ExportedAt:   time.Now(),
		AircraftType: s.AircraftType,
		TailNumber:   s.TailNumber,
		FlightPlan:   s.FlightPlan,
		TestState:    s.TestState,
		Lifecycle:    s.Lifecycle,
		Measurements: s.Measurements,
	}
}

var tailPattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]{1,9}$`)

// ValidTailNumber reports whether a tail number is acceptable for launching
// an acquisition: non-empty, upper-case alphanumeric with optional dashes.
func ValidTailNumber(tail string) bool {
	return tailPattern.MatchString(tail)
}
