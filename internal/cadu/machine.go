package cadu

import (
	"encoding/json"
	"strings"

	"github.com/rotorlab/cadu-sim/internal/diag"
	"github.com/rotorlab/cadu-sim/internal/measure"
	"github.com/rotorlab/cadu-sim/internal/rotorcraft"
)

// Simulator synthesizes one acquisition from committed selections.
// run is the per-session acquisition counter.
type Simulator interface {
	Simulate(aircraft, tail, plan, state string, run int) (measure.Record, error)
}

// Diagnoser derives correction suggestions from the measurement history.
type Diagnoser interface {
	Diagnose(records []measure.Record) []diag.Suggestion
}

// Device is the menu state machine: the sole writer of the session state.
// One input symbol is fully processed before the next is accepted; hosts in
// concurrent environments must serialize access per device.
type Device struct {
	catalog *rotorcraft.Catalog
	session *Session
	sim     Simulator
	diag    Diagnoser

	cursor      int    // highlighted option within the current list
	displayIdx  int    // measurement shown in DISPLAY
	entry       string // tail number entry buffer
	invalid     bool   // validation flag, surfaced to the formatter
	message     string // one-line status for the formatter
	runCount    int    // acquisitions this session, feeds the simulator seed
	suggestions []diag.Suggestion

	recorder func(measure.Record)
	exporter func([]byte) error
}

type DeviceOption func(*Device)

// WithRecorder registers a callback invoked once per appended measurement,
// e.g. a session log writer. The record passed is a copy.
func WithRecorder(fn func(measure.Record)) DeviceOption {
	return func(d *Device) { d.recorder = fn }
}

// WithExporter registers the sink for the MANAGER export action.
func WithExporter(fn func([]byte) error) DeviceOption {
	return func(d *Device) { d.exporter = fn }
}

func NewDevice(catalog *rotorcraft.Catalog, sim Simulator, diagnoser Diagnoser, opts ...DeviceOption) *Device {
	d := &Device{
		catalog: catalog,
		session: NewSession(),
		sim:     sim,
		diag:    diagnoser,
		message: "READY",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Session returns a read-only view of the session state.
func (d *Device) Session() Session { return *d.session }

// Summary exposes the MANAGER projection.
func (d *Device) Summary() Summary { return d.session.Summary() }

// ResetSession returns the session to FRESH per the lifecycle rule. The
// active menu is kept; everything else, including the acquisition counter,
// is cleared.
func (d *Device) ResetSession() {
	d.session.Reset()
	d.cursor = 0
	d.displayIdx = 0
	d.entry = ""
	d.invalid = false
	d.runCount = 0
	d.suggestions = nil
	d.message = "SESSION RESET"
}

// SetTailEntry fills the tail entry buffer from a host with real text input.
// Outside the ENTER_TAIL sub-state this is a no-op. The value is validated
// on ACCEPT, not here.
func (d *Device) SetTailEntry(text string) {
	if d.session.ActiveMenu != MenuMeasure || d.session.Step != StepEnterTail {
		return
	}
	d.entry = strings.ToUpper(strings.TrimSpace(text))
	d.invalid = false
}

// Dispatch processes one input symbol. Symbols outside the alphabet are a
// no-op; the function keys jump to their menu from anywhere, discarding any
// in-progress MEASURE sub-flow.
func (d *Device) Dispatch(k Key) {
	switch k {
	case KeyF1:
		d.enterMenu(MenuMeasure)
		return
	case KeyF2:
		d.enterMenu(MenuDisplay)
		return
	case KeyF3:
		d.enterMenu(MenuDiags)
		return
	case KeyF4:
		d.enterMenu(MenuManager)
		return
	case KeyUp, KeyDown, KeyAccept, KeyQuit:
		// handled per menu below
	default:
		return
	}

	switch d.session.ActiveMenu {
	case MenuMeasure:
		d.dispatchMeasure(k)
	case MenuDisplay:
		d.dispatchDisplay(k)
	case MenuDiags:
		d.dispatchDiags(k)
	case MenuManager:
		d.dispatchManager(k)
	}
}

func (d *Device) enterMenu(m Menu) {
	if d.session.ActiveMenu == MenuMeasure || m == MenuMeasure {
		d.resetFlow()
	}
	d.session.ActiveMenu = m
	d.cursor = 0
	d.invalid = false
	d.message = string(m)

	switch m {
	case MenuDisplay:
		if n := len(d.session.Measurements); n > 0 {
			d.displayIdx = n - 1
		}
	case MenuDiags:
		d.suggestions = d.diag.Diagnose(d.session.Measurements)
	}
}

// resetFlow discards the in-progress MEASURE sub-flow: selections, entry
// buffer and cursor. Completed measurements are untouched.
func (d *Device) resetFlow() {
	d.session.Step = StepSelectAircraft
	d.session.AircraftType = ""
	d.session.TailNumber = ""
	d.session.FlightPlan = ""
	d.session.TestState = ""
	d.entry = ""
	d.cursor = 0
	d.invalid = false
}

// stepSpec describes one MEASURE sub-state: its operator prompt, the option
// list UP/DOWN cycles over, and the ACCEPT action. The closed map doubles as
// the transition table of the sub-flow.
type stepSpec struct {
	prompt  string
	options func(d *Device) []string
	accept  func(d *Device)
}

var measureFlow = map[Step]stepSpec{
	StepSelectAircraft: {
		prompt:  "Select aircraft type",
		options: aircraftOptions,
		accept:  acceptAircraft,
	},
	StepEnterTail: {
		prompt:  "Enter tail number",
		options: tailOptions,
		accept:  acceptTail,
	},
	StepSelectFlightPlan: {
		prompt:  "Select flight plan",
		options: planOptions,
		accept:  acceptPlan,
	},
	StepSelectTestState: {
		prompt:  "Select test state",
		options: testStateOptions,
		accept:  acceptTestState,
	},
	StepReadyToLaunch: {
		prompt: "Ready: ACCEPT starts acquisition",
		accept: launchAcquisition,
	},
	StepDone: {
		prompt: "Acquisition complete",
		accept: acceptDone,
	},
}

func (d *Device) dispatchMeasure(k Key) {
	d.invalid = false

	spec, ok := measureFlow[d.session.Step]
	if !ok {
		// ACQUIRING is never observable between dispatches
		return
	}

	switch k {
	case KeyUp, KeyDown:
		if spec.options == nil {
			return
		}
		opts := spec.options(d)
		if len(opts) == 0 {
			return
		}
		if k == KeyDown {
			d.cursor = (d.cursor + 1) % len(opts)
		} else {
			d.cursor = (d.cursor - 1 + len(opts)) % len(opts)
		}
		if d.session.Step == StepEnterTail {
			d.entry = opts[d.cursor]
		}

	case KeyAccept:
		spec.accept(d)

	case KeyQuit:
		d.resetFlow()
		d.message = "SELECTIONS CLEARED"
	}
}

func aircraftOptions(d *Device) []string {
	names := make([]string, len(d.catalog.Aircraft))
	for i, a := range d.catalog.Aircraft {
		names[i] = a.Name
	}
	return names
}

func tailOptions(d *Device) []string { return d.catalog.TailNumbers }

func planOptions(d *Device) []string {
	names := make([]string, len(d.catalog.FlightPlans))
	for i, p := range d.catalog.FlightPlans {
		names[i] = p.Name
	}
	return names
}

func testStateOptions(d *Device) []string {
	plan := d.catalog.PlanByName(d.session.FlightPlan)
	if plan == nil {
		return nil
	}
	names := make([]string, len(plan.TestStates))
	for i, ts := range plan.TestStates {
		names[i] = ts.Name
	}
	return names
}

func acceptAircraft(d *Device) {
	opts := aircraftOptions(d)
	d.session.AircraftType = opts[d.cursor%len(opts)]
	d.session.Step = StepEnterTail
	d.cursor = 0
	d.entry = ""
	d.message = "AIRCRAFT " + d.session.AircraftType
}

func acceptTail(d *Device) {
	tail := strings.ToUpper(strings.TrimSpace(d.entry))
	if !ValidTailNumber(tail) {
		d.invalid = true
		d.message = "INVALID TAIL NUMBER"
		return
	}
	d.session.TailNumber = tail
	d.session.Step = StepSelectFlightPlan
	d.cursor = 0
	d.message = "TAIL " + tail
}

func acceptPlan(d *Device) {
	opts := planOptions(d)
	d.session.FlightPlan = opts[d.cursor%len(opts)]
	d.session.Step = StepSelectTestState
	d.cursor = 0
	d.message = "PLAN " + d.session.FlightPlan
}

func acceptTestState(d *Device) {
	opts := testStateOptions(d)
	if len(opts) == 0 {
		d.invalid = true
		d.message = "NO TEST STATES FOR PLAN"
		return
	}
	d.session.TestState = opts[d.cursor%len(opts)]
	d.session.Step = StepReadyToLaunch
	d.cursor = 0
	d.message = "TEST " + d.session.TestState
}

// launchAcquisition runs the simulator synchronously. The session passes
// through ACQUIRING and lands on DONE within this dispatch, so observers
// only ever see ACQUIRING mid-dispatch.
func launchAcquisition(d *Device) {
	s := d.session
	if s.AircraftType == "" || s.FlightPlan == "" || s.TestState == "" || !ValidTailNumber(s.TailNumber) {
		d.invalid = true
		d.message = "SELECTIONS INCOMPLETE"
		return
	}

	s.Step = StepAcquiring
	if s.Lifecycle == LifecycleFresh {
		s.Lifecycle = LifecycleRunning
	}

	rec, err := d.sim.Simulate(s.AircraftType, s.TailNumber, s.FlightPlan, s.TestState, d.runCount)
	if err != nil {
		// contract error from a misconfigured catalog; recover in place
		s.Step = StepReadyToLaunch
		d.message = "ACQUISITION FAILED"
		return
	}

	d.runCount++
	rec.ID = len(s.Measurements) + 1
	s.Measurements = append(s.Measurements, rec)
	s.Lifecycle = LifecycleComplete
	s.Step = StepDone
	d.message = "ACQ COMPLETE"

	if d.recorder != nil {
		d.recorder(rec)
	}
}

// acceptDone returns to the test state list with selections kept, ready for
// the next regime of the plan.
func acceptDone(d *Device) {
	d.session.Step = StepSelectTestState
	d.cursor = 0
	d.message = "SELECT NEXT TEST"
}

func (d *Device) dispatchDisplay(k Key) {
	n := len(d.session.Measurements)
	switch k {
	case KeyUp, KeyDown:
		if n == 0 {
			return
		}
		if k == KeyDown {
			d.displayIdx = (d.displayIdx + 1) % n
		} else {
			d.displayIdx = (d.displayIdx - 1 + n) % n
		}
	case KeyQuit:
		if n > 0 {
			d.displayIdx = n - 1
		}
	}
}

func (d *Device) dispatchDiags(k Key) {
	n := len(d.suggestions)
	switch k {
	case KeyUp, KeyDown:
		if n == 0 {
			return
		}
		if k == KeyDown {
			d.cursor = (d.cursor + 1) % n
		} else {
			d.cursor = (d.cursor - 1 + n) % n
		}
	case KeyQuit:
		d.cursor = 0
	}
}

var managerOptions = []string{"SUMMARY", "RESET SESSION", "EXPORT SESSION"}

func (d *Device) dispatchManager(k Key) {
	switch k {
	case KeyUp, KeyDown:
		if k == KeyDown {
			d.cursor = (d.cursor + 1) % len(managerOptions)
		} else {
			d.cursor = (d.cursor - 1 + len(managerOptions)) % len(managerOptions)
		}
	case KeyAccept:
		switch d.cursor {
		case 0:
			sum := d.session.Summary()
			d.message = string(sum.Lifecycle)
		case 1:
			d.ResetSession()
		case 2:
			d.exportSession()
		}
	case KeyQuit:
		d.cursor = 0
	}
}

func (d *Device) exportSession() {
	if d.exporter == nil {
		d.message = "NO EXPORT SINK"
		return
	}
	payload, err := json.MarshalIndent(d.session.Export(), "", "  ")
	if err != nil {
		d.message = "EXPORT FAILED"
		return
	}
	if err := d.exporter(payload); err != nil {
		d.message = "EXPORT FAILED"
		return
	}
	d.message = "SESSION EXPORTED"
}
