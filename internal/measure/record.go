package measure

import (
	"fmt"
	"math"
	"time"
)

// TrackPoint is the relative track height of one blade during an acquisition.
type TrackPoint struct {
	Blade       string  `json:"blade"`       // Blade color label (e.g. "RED")
	DeviationMM float64 `json:"deviationMM"` // Height relative to the blade mean, millimeters
}

// VibrationReading is one amplitude/phase pair captured at a measurement location.
type VibrationReading struct {
	Location     string  `json:"location"`     // Measurement location label (e.g. "LAT")
	AmplitudeIPS float64 `json:"amplitudeIPS"` // 1/rev amplitude in inches per second
	PhaseDeg     float64 `json:"phaseDeg"`     // Phase angle in degrees [0, 360)
}

// Record is one completed simulated acquisition. Records are created by the
// acquisition simulator, appended to the session history by the menu state
// machine, and never mutated afterwards.
type Record struct {
	ID           int                `json:"id"`        // Sequential within a session, starting at 1
	Timestamp    time.Time          `json:"timestamp"` // When the acquisition completed
	AircraftType string             `json:"aircraftType"`
	TailNumber   string             `json:"tailNumber"`
	FlightPlan   string             `json:"flightPlan"`
	TestState    string             `json:"testState"`
	Track        []TrackPoint       `json:"track"`     // Per-blade deviations, rotor order
	Vibration    []VibrationReading `json:"vibration"` // Per-location readings, catalog order
}

// Validate reports whether the record honors the contract the diagnostic
// engine assumes. A failure here is a programming error, not operator input.
func (r *Record) Validate() error {
	if r.ID <= 0 {
		return fmt.Errorf("record id must be positive, got %d", r.ID)
	}
	if len(r.Track) == 0 {
		return fmt.Errorf("record %d has no track points", r.ID)
	}
	for _, tp := range r.Track {
		if math.IsNaN(tp.DeviationMM) || math.IsInf(tp.DeviationMM, 0) {
			return fmt.Errorf("record %d: blade %s deviation is not finite", r.ID, tp.Blade)
		}
	}
	for _, v := range r.Vibration {
		if math.IsNaN(v.AmplitudeIPS) || v.AmplitudeIPS < 0 {
			return fmt.Errorf("record %d: location %s amplitude out of range", r.ID, v.Location)
		}
		if math.IsNaN(v.PhaseDeg) || v.PhaseDeg < 0 || v.PhaseDeg >= 360 {
			return fmt.Errorf("record %d: location %s phase out of range", r.ID, v.Location)
		}
	}
	return nil
}

// ReadingAt returns the vibration reading for a location label, nil if the
// record carries none.
func (r *Record) ReadingAt(location string) *VibrationReading {
	for i := range r.Vibration {
		if r.Vibration[i].Location == location {
			return &r.Vibration[i]
		}
	}
	return nil
}
