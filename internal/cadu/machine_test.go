package cadu

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/rotorlab/cadu-sim/internal/acquire"
	"github.com/rotorlab/cadu-sim/internal/diag"
	"github.com/rotorlab/cadu-sim/internal/measure"
	"github.com/rotorlab/cadu-sim/internal/rotorcraft"
)

// testCatalog is a minimal single-aircraft configuration so tests spell out
// the exact options the device cycles over.
func testCatalog() *rotorcraft.Catalog {
	return &rotorcraft.Catalog{
		Aircraft: []rotorcraft.AircraftType{{
			Name:    "Bell412",
			Version: "1.0",
			Blades: []rotorcraft.Blade{
				{Label: "GRN", AzimuthDeg: 0},
				{Label: "BLU", AzimuthDeg: 90},
				{Label: "ORG", AzimuthDeg: 180},
				{Label: "RED", AzimuthDeg: 270},
			},
			Locations: []string{"LAT", "VERT"},
		}},
		FlightPlans: []rotorcraft.FlightPlan{{
			Name: "GROUND_IDLE",
			TestStates: []rotorcraft.TestState{{
				Name:          "BASELINE",
				Regime:        rotorcraft.RegimeGround,
				TrackSpreadMM: 20,
				AmpMinIPS:     0.05,
				AmpMaxIPS:     0.3,
			}},
		}},
		TailNumbers: []string{"EC-ABC", "EC-MHV"},
		Limits: rotorcraft.Limits{
			LateralLocation:    "LAT",
			VerticalLocation:   "VERT",
			TrackTolMM:         6,
			LateralLimitIPS:    0.15,
			VerticalLimitIPS:   0.18,
			PitchLinkMMPerFlat: 2.2,
			HubGramsPerIPS:     450,
			TabDegPerIPS:       3.3,
			RemoveWithinDeg:    30,
		},
	}
}

func newTestDevice(t *testing.T, opts ...DeviceOption) *Device {
	t.Helper()
	catalog := testCatalog()
	return NewDevice(catalog, acquire.New(catalog), diag.New(catalog), opts...)
}

func press(d *Device, keys ...Key) {
	for _, k := range keys {
		d.Dispatch(k)
	}
}

// runThroughMeasure walks the happy path up to and including one launch.
func runThroughMeasure(t *testing.T, d *Device) {
	t.Helper()
	press(d, KeyAccept) // aircraft
	d.SetTailEntry("EC-ABC")
	press(d, KeyAccept) // tail
	press(d, KeyAccept) // plan
	press(d, KeyAccept) // test state
	press(d, KeyAccept) // launch

	if s := d.Session(); s.Step != StepDone {
		t.Fatalf("expected DONE after launch, got %s (lifecycle %s)", s.Step, s.Lifecycle)
	}
}

func TestNewDeviceInitialState(t *testing.T) {
	d := newTestDevice(t)
	s := d.Session()

	if s.ActiveMenu != MenuMeasure {
		t.Errorf("expected MEASURE menu, got %s", s.ActiveMenu)
	}
	if s.Step != StepSelectAircraft {
		t.Errorf("expected SELECT_AIRCRAFT, got %s", s.Step)
	}
	if s.Lifecycle != LifecycleFresh {
		t.Errorf("expected FRESH lifecycle, got %s", s.Lifecycle)
	}
}

func TestMeasureScenario(t *testing.T) {
	d := newTestDevice(t)
	runThroughMeasure(t, d)

	s := d.Session()
	if s.AircraftType != "Bell412" || s.TailNumber != "EC-ABC" ||
		s.FlightPlan != "GROUND_IDLE" || s.TestState != "BASELINE" {
		t.Errorf("unexpected selections: %+v", s)
	}
	if len(s.Measurements) != 1 {
		t.Fatalf("expected 1 measurement, got %d", len(s.Measurements))
	}
	if s.Measurements[0].ID != 1 {
		t.Errorf("expected record ID 1, got %d", s.Measurements[0].ID)
	}
	if s.Lifecycle != LifecycleComplete {
		t.Errorf("expected COMPLETE lifecycle, got %s", s.Lifecycle)
	}

	f := d.Frame()
	if f.Result == nil || f.Result.ID != 1 {
		t.Error("DONE frame should carry the new record")
	}
}

func TestSecondAcquisitionDiffers(t *testing.T) {
	d := newTestDevice(t)
	runThroughMeasure(t, d)

	press(d, KeyAccept) // DONE returns to test state selection
	if s := d.Session(); s.Step != StepSelectTestState {
		t.Fatalf("expected SELECT_TEST_STATE after DONE, got %s", s.Step)
	}
	press(d, KeyAccept, KeyAccept) // re-select the state, launch again

	s := d.Session()
	if len(s.Measurements) != 2 {
		t.Fatalf("expected 2 measurements, got %d", len(s.Measurements))
	}
	if s.Measurements[1].ID != 2 {
		t.Errorf("expected record ID 2, got %d", s.Measurements[1].ID)
	}
	if reflect.DeepEqual(s.Measurements[0].Track, s.Measurements[1].Track) &&
		reflect.DeepEqual(s.Measurements[0].Vibration, s.Measurements[1].Vibration) {
		t.Error("repeated acquisition produced identical values")
	}
}

func TestInvalidTailKeepsSubState(t *testing.T) {
	d := newTestDevice(t)
	press(d, KeyAccept) // aircraft committed, now entering tail

	press(d, KeyAccept) // empty entry
	s := d.Session()
	if s.Step != StepEnterTail {
		t.Errorf("expected to stay in ENTER_TAIL, got %s", s.Step)
	}
	if !d.Frame().Invalid {
		t.Error("expected the invalid flag to be set")
	}

	d.SetTailEntry("lowercase gets normalized")
	// spaces are not allowed, still invalid
	press(d, KeyAccept)
	if !d.Frame().Invalid {
		t.Error("expected tail with spaces to be rejected")
	}

	d.SetTailEntry("ec-abc")
	press(d, KeyAccept)
	s = d.Session()
	if s.Step != StepSelectFlightPlan || s.TailNumber != "EC-ABC" {
		t.Errorf("expected normalized tail committed, got step %s tail %q", s.Step, s.TailNumber)
	}
}

func TestTailCandidateCycling(t *testing.T) {
	d := newTestDevice(t)
	press(d, KeyAccept) // into ENTER_TAIL

	press(d, KeyDown)
	if f := d.Frame(); f.Entry != "EC-MHV" {
		t.Errorf("expected DOWN to load the second candidate, got %q", f.Entry)
	}
	press(d, KeyDown) // wraps
	if f := d.Frame(); f.Entry != "EC-ABC" {
		t.Errorf("expected wrap back to the first candidate, got %q", f.Entry)
	}
	press(d, KeyUp)
	if f := d.Frame(); f.Entry != "EC-MHV" {
		t.Errorf("expected UP to wrap to the last candidate, got %q", f.Entry)
	}
}

func TestSetTailEntryOutsideEnterTail(t *testing.T) {
	d := newTestDevice(t)

	d.SetTailEntry("EC-ABC") // still selecting aircraft
	if f := d.Frame(); f.Entry != "" {
		t.Errorf("expected entry to stay empty outside ENTER_TAIL, got %q", f.Entry)
	}
}

func TestQuitClearsFlowKeepsMeasurements(t *testing.T) {
	d := newTestDevice(t)
	runThroughMeasure(t, d)

	press(d, KeyQuit)
	s := d.Session()
	if s.Step != StepSelectAircraft {
		t.Errorf("expected QUIT to restart the flow, got %s", s.Step)
	}
	if s.AircraftType != "" || s.TailNumber != "" || s.FlightPlan != "" || s.TestState != "" {
		t.Errorf("expected selections cleared, got %+v", s)
	}
	if len(s.Measurements) != 1 {
		t.Errorf("expected completed measurements kept, got %d", len(s.Measurements))
	}
}

func TestFunctionKeysDiscardFlow(t *testing.T) {
	d := newTestDevice(t)
	press(d, KeyAccept) // mid-flow
	d.SetTailEntry("EC-ABC")

	press(d, KeyF4)
	if s := d.Session(); s.ActiveMenu != MenuManager {
		t.Fatalf("expected MANAGER, got %s", s.ActiveMenu)
	}

	press(d, KeyF1)
	s := d.Session()
	if s.ActiveMenu != MenuMeasure || s.Step != StepSelectAircraft {
		t.Errorf("expected a fresh MEASURE flow, got %s/%s", s.ActiveMenu, s.Step)
	}
	if s.AircraftType != "" {
		t.Errorf("expected in-progress selection discarded, got %q", s.AircraftType)
	}
}

func TestDisplayMenu(t *testing.T) {
	d := newTestDevice(t)

	press(d, KeyF2)
	if f := d.Frame(); !f.NoData {
		t.Error("expected NO DATA with an empty history")
	}

	press(d, KeyF1)
	runThroughMeasure(t, d)
	press(d, KeyAccept, KeyAccept, KeyAccept) // acquire a second record

	press(d, KeyF2)
	if f := d.Frame(); f.Result == nil || f.Result.ID != 2 {
		t.Fatalf("expected DISPLAY to open on the latest record, got %+v", d.Frame().Result)
	}
	press(d, KeyUp)
	if f := d.Frame(); f.Result.ID != 1 {
		t.Errorf("expected UP to step back to record 1, got %d", f.Result.ID)
	}
	press(d, KeyDown)
	if f := d.Frame(); f.Result.ID != 2 {
		t.Errorf("expected DOWN to return to record 2, got %d", f.Result.ID)
	}
}

type stubDiagnoser struct {
	calls       int
	seen        int
	suggestions []diag.Suggestion
}

func (s *stubDiagnoser) Diagnose(records []measure.Record) []diag.Suggestion {
	s.calls++
	s.seen = len(records)
	return s.suggestions
}

func TestDiagsRunsDiagnosisOnEntry(t *testing.T) {
	catalog := testCatalog()
	stub := &stubDiagnoser{suggestions: []diag.Suggestion{
		{Rule: "track-split", Detail: "SHORTEN GRN pitch link 2 flats", Confidence: diag.Low},
		{Rule: "lateral-balance", Detail: "Add ~90g hub weight at 6:00 (ORG)", Confidence: diag.Medium},
	}}
	d := NewDevice(catalog, acquire.New(catalog), stub)
	runThroughMeasure(t, d)

	press(d, KeyF3)
	if stub.calls != 1 || stub.seen != 1 {
		t.Fatalf("expected one diagnosis over one record, got calls=%d seen=%d", stub.calls, stub.seen)
	}

	f := d.Frame()
	if len(f.Diagnosis) != 2 {
		t.Fatalf("expected 2 suggestions in the frame, got %d", len(f.Diagnosis))
	}
	if f.HighlightIdx != 0 {
		t.Errorf("expected highlight on the first suggestion, got %d", f.HighlightIdx)
	}
	press(d, KeyDown)
	if f = d.Frame(); f.HighlightIdx != 1 {
		t.Errorf("expected DOWN to move the highlight, got %d", f.HighlightIdx)
	}
}

func TestDiagsNoData(t *testing.T) {
	d := newTestDevice(t)
	press(d, KeyF3)
	if f := d.Frame(); !f.NoData {
		t.Error("expected NO DATA in DIAGS with an empty history")
	}
}

func TestManagerSummaryAndReset(t *testing.T) {
	d := newTestDevice(t)
	runThroughMeasure(t, d)

	press(d, KeyF4)
	if sum := d.Summary(); sum.Measurements != 1 || sum.Lifecycle != LifecycleComplete {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	press(d, KeyDown, KeyAccept) // RESET SESSION
	sum := d.Summary()
	if sum.Measurements != 0 || sum.Lifecycle != LifecycleFresh {
		t.Errorf("expected a fresh empty session after reset, got %+v", sum)
	}
}

func TestManagerExport(t *testing.T) {
	var payload []byte
	d := newTestDevice(t, WithExporter(func(p []byte) error {
		payload = p
		return nil
	}))
	runThroughMeasure(t, d)

	press(d, KeyF4, KeyDown, KeyDown, KeyAccept) // EXPORT SESSION
	if payload == nil {
		t.Fatal("exporter was not invoked")
	}

	var export Export
	if err := json.Unmarshal(payload, &export); err != nil {
		t.Fatalf("export payload is not valid JSON: %v", err)
	}
	if export.TailNumber != "EC-ABC" || len(export.Measurements) != 1 {
		t.Errorf("unexpected export payload: %+v", export)
	}
}

func TestManagerExportFailures(t *testing.T) {
	t.Run("no sink", func(t *testing.T) {
		d := newTestDevice(t)
		press(d, KeyF4, KeyDown, KeyDown, KeyAccept)
		if f := d.Frame(); f.Message != "NO EXPORT SINK" {
			t.Errorf("expected NO EXPORT SINK, got %q", f.Message)
		}
	})

	t.Run("sink error", func(t *testing.T) {
		d := newTestDevice(t, WithExporter(func([]byte) error {
			return errors.New("disk full")
		}))
		press(d, KeyF4, KeyDown, KeyDown, KeyAccept)
		if f := d.Frame(); f.Message != "EXPORT FAILED" {
			t.Errorf("expected EXPORT FAILED, got %q", f.Message)
		}
	})
}

func TestRecorderReceivesAppendedRecord(t *testing.T) {
	var recorded []measure.Record
	d := newTestDevice(t, WithRecorder(func(rec measure.Record) {
		recorded = append(recorded, rec)
	}))
	runThroughMeasure(t, d)

	if len(recorded) != 1 {
		t.Fatalf("expected 1 recorded measurement, got %d", len(recorded))
	}
	if recorded[0].ID != 1 || recorded[0].TailNumber != "EC-ABC" {
		t.Errorf("unexpected recorded measurement: %+v", recorded[0])
	}
}

type failingSimulator struct{}

func (failingSimulator) Simulate(_, _, _, _ string, _ int) (measure.Record, error) {
	return measure.Record{}, errors.New("synthesis failed")
}

func TestAcquisitionFailureRecoversInPlace(t *testing.T) {
	catalog := testCatalog()
	d := NewDevice(catalog, failingSimulator{}, diag.New(catalog))

	press(d, KeyAccept)
	d.SetTailEntry("EC-ABC")
	press(d, KeyAccept, KeyAccept, KeyAccept, KeyAccept)

	s := d.Session()
	if s.Step != StepReadyToLaunch {
		t.Errorf("expected READY_TO_LAUNCH after a failed acquisition, got %s", s.Step)
	}
	if len(s.Measurements) != 0 {
		t.Errorf("expected no measurement appended, got %d", len(s.Measurements))
	}
	if f := d.Frame(); f.Message != "ACQUISITION FAILED" {
		t.Errorf("expected ACQUISITION FAILED, got %q", f.Message)
	}
}

// TestNoUndefinedStates drives the device with exhaustive short key sequences
// and checks it never leaves the defined state space.
func TestNoUndefinedStates(t *testing.T) {
	keys := []Key{KeyUp, KeyDown, KeyF1, KeyF2, KeyF3, KeyF4, KeyAccept, KeyQuit, Key("BOGUS")}
	menus := map[Menu]bool{MenuMeasure: true, MenuDisplay: true, MenuDiags: true, MenuManager: true}
	steps := map[Step]bool{
		StepSelectAircraft: true, StepEnterTail: true, StepSelectFlightPlan: true,
		StepSelectTestState: true, StepReadyToLaunch: true, StepDone: true,
	}

	// ACQUIRING is absent from steps: it must never persist between dispatches
	for _, k1 := range keys {
		for _, k2 := range keys {
			for _, k3 := range keys {
				d := newTestDevice(t)
				press(d, k1, k2, k3)

				s := d.Session()
				if !menus[s.ActiveMenu] {
					t.Fatalf("undefined menu %q after %s %s %s", s.ActiveMenu, k1, k2, k3)
				}
				if !steps[s.Step] {
					t.Fatalf("undefined step %q after %s %s %s", s.Step, k1, k2, k3)
				}
			}
		}
	}
}
