package diag

import (
	"reflect"
	"testing"
	"time"

	"github.com/rotorlab/cadu-sim/internal/measure"
	"github.com/rotorlab/cadu-sim/internal/rotorcraft"
)

// testRecord builds an in-limits 412 record that individual tests then skew.
func testRecord(id int) measure.Record {
	return measure.Record{
		ID:           id,
		Timestamp:    time.Date(2026, 5, 12, 10, 0, 0, 0, time.UTC),
		AircraftType: "412_50",
		TailNumber:   "EC-ABC",
		FlightPlan:   "INITIAL",
		TestState:    "HOVER",
		Track: []measure.TrackPoint{
			{Blade: "GRN", DeviationMM: 1.2},
			{Blade: "BLU", DeviationMM: -0.8},
			{Blade: "ORG", DeviationMM: 0.4},
			{Blade: "RED", DeviationMM: -0.8},
		},
		Vibration: []measure.VibrationReading{
			{Location: "LAT", AmplitudeIPS: 0.08, PhaseDeg: 120},
			{Location: "VERT", AmplitudeIPS: 0.1, PhaseDeg: 200},
			{Location: "PYLON", AmplitudeIPS: 0.05, PhaseDeg: 10},
		},
	}
}

func TestDiagnoseEmptyHistory(t *testing.T) {
	e := New(rotorcraft.DefaultCatalog())
	if got := e.Diagnose(nil); got != nil {
		t.Errorf("expected nil for empty history, got %v", got)
	}
}

func TestDiagnoseWithinLimits(t *testing.T) {
	e := New(rotorcraft.DefaultCatalog())
	if got := e.Diagnose([]measure.Record{testRecord(1)}); len(got) != 0 {
		t.Errorf("expected no suggestions for an in-limits record, got %v", got)
	}
}

func TestDiagnoseDoesNotMutateInput(t *testing.T) {
	e := New(rotorcraft.DefaultCatalog())

	rec := testRecord(1)
	rec.Track[0].DeviationMM = 9 // over tolerance
	records := []measure.Record{rec}
	before := records[0]

	e.Diagnose(records)

	if !reflect.DeepEqual(before, records[0]) {
		t.Error("Diagnose mutated its input")
	}
}

func TestTrackSplitRule(t *testing.T) {
	e := New(rotorcraft.DefaultCatalog())

	rec := testRecord(1)
	rec.Track[0].DeviationMM = 9    // GRN high
	rec.Track[1].DeviationMM = -6.5 // BLU low, just over the 6mm band

	got := e.Diagnose([]measure.Record{rec})
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %d: %v", len(got), got)
	}

	grn := got[0]
	if grn.Rule != "track-split" || grn.TargetBlade != "GRN" || grn.Adjustment != AdjustPitchLink {
		t.Errorf("unexpected first suggestion: %+v", grn)
	}
	// 9mm / 2.2mm per flat rounds to 4
	if grn.Magnitude != 4 || grn.Unit != "flats" {
		t.Errorf("expected 4 flats, got %v %s", grn.Magnitude, grn.Unit)
	}
	if grn.Confidence != Medium { // 9/6 = 1.5
		t.Errorf("expected MEDIUM confidence, got %s", grn.Confidence)
	}

	blu := got[1]
	if blu.TargetBlade != "BLU" {
		t.Errorf("expected second suggestion for BLU, got %+v", blu)
	}
	if blu.Confidence != Low { // 6.5/6 = 1.08
		t.Errorf("expected LOW confidence, got %s", blu.Confidence)
	}
}

func TestLateralBalanceRule(t *testing.T) {
	e := New(rotorcraft.DefaultCatalog())

	t.Run("peak on a blade removes weight there", func(t *testing.T) {
		rec := testRecord(1)
		rec.Vibration[0] = measure.VibrationReading{Location: "LAT", AmplitudeIPS: 0.2, PhaseDeg: 85}

		got := e.Diagnose([]measure.Record{rec})
		if len(got) != 1 {
			t.Fatalf("expected 1 suggestion, got %d: %v", len(got), got)
		}
		s := got[0]
		if s.Rule != "lateral-balance" || s.Adjustment != RemoveWeight {
			t.Errorf("unexpected suggestion: %+v", s)
		}
		if s.TargetBlade != "BLU" { // peak at 85 deg, BLU sits at 90
			t.Errorf("expected BLU, got %s", s.TargetBlade)
		}
		if s.Magnitude != 90 { // 0.2 * 450 rounded to 10
			t.Errorf("expected 90g, got %v", s.Magnitude)
		}
		if s.Confidence != Medium { // 0.2/0.15 = 1.33
			t.Errorf("expected MEDIUM confidence, got %s", s.Confidence)
		}
	})

	t.Run("peak between blades adds weight opposite", func(t *testing.T) {
		rec := testRecord(1)
		rec.Vibration[0] = measure.VibrationReading{Location: "LAT", AmplitudeIPS: 0.31, PhaseDeg: 45}

		got := e.Diagnose([]measure.Record{rec})
		if len(got) != 1 {
			t.Fatalf("expected 1 suggestion, got %d: %v", len(got), got)
		}
		s := got[0]
		if s.Adjustment != AddWeight {
			t.Errorf("expected ADD_WEIGHT, got %s", s.Adjustment)
		}
		// opposite of 45 is 225; ORG at 180 is the first blade 45 deg away
		if s.TargetBlade != "ORG" {
			t.Errorf("expected ORG, got %s", s.TargetBlade)
		}
		if s.Confidence != High { // 0.31/0.15 > 2
			t.Errorf("expected HIGH confidence, got %s", s.Confidence)
		}
	})
}

func TestVerticalSmoothingRule(t *testing.T) {
	e := New(rotorcraft.DefaultCatalog())

	rec := testRecord(1)
	rec.Vibration[1] = measure.VibrationReading{Location: "VERT", AmplitudeIPS: 0.25, PhaseDeg: 178}

	got := e.Diagnose([]measure.Record{rec})
	if len(got) != 1 {
		t.Fatalf("expected 1 suggestion, got %d: %v", len(got), got)
	}
	s := got[0]
	if s.Rule != "vertical-smoothing" || s.Adjustment != AdjustTab {
		t.Errorf("unexpected suggestion: %+v", s)
	}
	if s.TargetBlade != "ORG" { // phase 178 sits on ORG at 180
		t.Errorf("expected ORG, got %s", s.TargetBlade)
	}
	if s.Magnitude != 0.8 { // 0.25 * 3.3 rounded to 0.1
		t.Errorf("expected 0.8 deg, got %v", s.Magnitude)
	}
}

func TestRulePriorityOrder(t *testing.T) {
	e := New(rotorcraft.DefaultCatalog())

	rec := testRecord(1)
	rec.Track[2].DeviationMM = 8
	rec.Vibration[0] = measure.VibrationReading{Location: "LAT", AmplitudeIPS: 0.2, PhaseDeg: 85}
	rec.Vibration[1] = measure.VibrationReading{Location: "VERT", AmplitudeIPS: 0.25, PhaseDeg: 10}

	got := e.Diagnose([]measure.Record{rec})
	if len(got) != 3 {
		t.Fatalf("expected 3 suggestions, got %d: %v", len(got), got)
	}

	wantOrder := []string{"track-split", "lateral-balance", "vertical-smoothing"}
	for i, want := range wantOrder {
		if got[i].Rule != want {
			t.Errorf("suggestion %d: expected rule %s, got %s", i, want, got[i].Rule)
		}
	}
}

func TestDiagnoseUsesLatestRecordOnly(t *testing.T) {
	e := New(rotorcraft.DefaultCatalog())

	over := testRecord(1)
	over.Track[0].DeviationMM = 10
	clean := testRecord(2)

	if got := e.Diagnose([]measure.Record{over, clean}); len(got) != 0 {
		t.Errorf("expected no suggestions when the latest record is clean, got %v", got)
	}
}

func TestTrendWindowRaisesConfidence(t *testing.T) {
	catalog := rotorcraft.DefaultCatalog()

	// 0.16 ips is just over the 0.15 limit: LOW on its own
	overBy := func(id int) measure.Record {
		rec := testRecord(id)
		rec.Vibration[0] = measure.VibrationReading{Location: "LAT", AmplitudeIPS: 0.16, PhaseDeg: 85}
		return rec
	}

	t.Run("window of one keeps the base grade", func(t *testing.T) {
		e := New(catalog)
		got := e.Diagnose([]measure.Record{overBy(1), overBy(2)})
		if len(got) != 1 || got[0].Confidence != Low {
			t.Fatalf("expected one LOW suggestion, got %v", got)
		}
	})

	t.Run("persistent finding gains a level", func(t *testing.T) {
		e := New(catalog, WithWindow(2))
		got := e.Diagnose([]measure.Record{overBy(1), overBy(2)})
		if len(got) != 1 || got[0].Confidence != Medium {
			t.Fatalf("expected one MEDIUM suggestion, got %v", got)
		}
	})

	t.Run("transient finding keeps the base grade", func(t *testing.T) {
		e := New(catalog, WithWindow(2))
		got := e.Diagnose([]measure.Record{testRecord(1), overBy(2)})
		if len(got) != 1 || got[0].Confidence != Low {
			t.Fatalf("expected one LOW suggestion, got %v", got)
		}
	})
}

func TestClockLabel(t *testing.T) {
	tests := []struct {
		deg  float64
		want string
	}{
		{0, "12:00"},
		{30, "1:00"},
		{45, "1:30"},
		{90, "3:00"},
		{180, "6:00"},
		{270, "9:00"},
		{355, "12:00"},
	}
	for _, tt := range tests {
		if got := clockLabel(tt.deg); got != tt.want {
			t.Errorf("clockLabel(%v) = %s, want %s", tt.deg, got, tt.want)
		}
	}
}
