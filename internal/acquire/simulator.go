// Package acquire synthesizes measurement records for the trainer. Values are
// illustrative, not physical: each acquisition is drawn from the configured
// window of its test state, seeded from the selection tuple plus a run
// counter so identical selections vary per call but replay per session.
package acquire

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/rotorlab/cadu-sim/internal/measure"
	"github.com/rotorlab/cadu-sim/internal/rotorcraft"
)

// Simulator generates acquisitions from a catalog. It holds no mutable state
// and is safe to share between sessions.
type Simulator struct {
	catalog *rotorcraft.Catalog
}

func New(catalog *rotorcraft.Catalog) *Simulator {
	return &Simulator{catalog: catalog}
}

// Simulate produces one measurement record for the committed selections.
// run is the per-session acquisition counter; it feeds the seed so repeated
// identical selections yield different but reproducible results. The record
// ID is left zero, assignment is the caller's responsibility.
func (s *Simulator) Simulate(aircraft, tail, plan, state string, run int) (measure.Record, error) {
	ac := s.catalog.AircraftByName(aircraft)
	if ac == nil {
		return measure.Record{}, fmt.Errorf("unknown aircraft type '%s'", aircraft)
	}
	fp := s.catalog.PlanByName(plan)
	if fp == nil {
		return measure.Record{}, fmt.Errorf("unknown flight plan '%s'", plan)
	}
	ts := fp.TestStateByName(state)
	if ts == nil {
		return measure.Record{}, fmt.Errorf("unknown test state '%s' in plan '%s'", state, plan)
	}

	rng := rand.New(rand.NewSource(seed(aircraft, tail, plan, state, run)))

	rec := measure.Record{
		Timestamp:    time.Now(),
		AircraftType: aircraft,
		TailNumber:   tail,
		FlightPlan:   plan,
		TestState:    state,
		Track:        trackPoints(rng, ac, ts),
		Vibration:    vibration(rng, ac, ts),
	}
	return rec, nil
}

// trackPoints draws one height per blade inside the spread window, then
// re-references to the mean so deviations always sum to ~zero, which is how
// a real tracker reports them.
func trackPoints(rng *rand.Rand, ac *rotorcraft.AircraftType, ts *rotorcraft.TestState) []measure.TrackPoint {
	heights := make([]float64, len(ac.Blades))
	var mean float64
	for i := range heights {
		heights[i] = (rng.Float64()*2 - 1) * ts.TrackSpreadMM
		mean += heights[i]
	}
	mean /= float64(len(heights))

	points := make([]measure.TrackPoint, len(ac.Blades))
	for i, b := range ac.Blades {
		points[i] = measure.TrackPoint{
			Blade:       b.Label,
			DeviationMM: round1(heights[i] - mean),
		}
	}
	return points
}

func vibration(rng *rand.Rand, ac *rotorcraft.AircraftType, ts *rotorcraft.TestState) []measure.VibrationReading {
	readings := make([]measure.VibrationReading, len(ac.Locations))
	for i, loc := range ac.Locations {
		amp := ts.AmpMinIPS + rng.Float64()*(ts.AmpMaxIPS-ts.AmpMinIPS)
		phase := round1(rng.Float64() * 360)
		if phase >= 360 {
			phase -= 360
		}
		readings[i] = measure.VibrationReading{
			Location:     loc,
			AmplitudeIPS: round3(amp),
			PhaseDeg:     phase,
		}
	}
	return readings
}

// seed hashes the selection tuple and run counter with FNV-1a.
func seed(parts ...any) int64 {
	h := fnv.New32a()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{'|'})
		}
		fmt.Fprintf(h, "%v", p)
	}
	return int64(h.Sum32())
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
