package diag

import (
	"fmt"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/rotorlab/cadu-sim/internal/rotorcraft"
)

// DefaultRules returns the training rule set in priority order: track
// mechanics first, then lateral mass balance, then vertical aerodynamics.
// The ordering follows the BHT-412-MM workflow the trainer teaches.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name: "track-split",
			When: trackOutOfBand,
			Emit: pitchLinkCorrection,
		},
		{
			Name: "lateral-balance",
			When: lateralOverLimit,
			Emit: hubWeightCorrection,
		},
		{
			Name: "vertical-smoothing",
			When: verticalOverLimit,
			Emit: tabCorrection,
		},
	}
}

// trackOutOfBand flags every blade whose deviation leaves the tolerance band.
func trackOutOfBand(ctx *Context) []Finding {
	var findings []Finding
	for _, tp := range ctx.Record.Track {
		if math.Abs(tp.DeviationMM) > ctx.Limits.TrackTolMM {
			findings = append(findings, Finding{
				Blade:       tp.Blade,
				Value:       math.Abs(tp.DeviationMM),
				Limit:       ctx.Limits.TrackTolMM,
				DeviationMM: tp.DeviationMM,
			})
		}
	}
	return findings
}

func pitchLinkCorrection(ctx *Context, f Finding) Suggestion {
	flats := math.Max(1, math.Round(f.Value/ctx.Limits.PitchLinkMMPerFlat))
	action := "SHORTEN"
	if f.DeviationMM < 0 { // blade running low
		action = "LENGTHEN"
	}
	return Suggestion{
		TargetBlade: f.Blade,
		Adjustment:  AdjustPitchLink,
		Magnitude:   flats,
		Unit:        "flats",
		Detail:      fmt.Sprintf("%s %s pitch link %s flats", action, f.Blade, humanize.Ftoa(flats)),
	}
}

func lateralOverLimit(ctx *Context) []Finding {
	v := ctx.Record.ReadingAt(ctx.Limits.LateralLocation)
	if v == nil || v.AmplitudeIPS <= ctx.Limits.LateralLimitIPS {
		return nil
	}
	return []Finding{{
		Location: v.Location,
		Value:    v.AmplitudeIPS,
		Limit:    ctx.Limits.LateralLimitIPS,
		PhaseDeg: v.PhaseDeg,
	}}
}

// hubWeightCorrection opposes the lateral 1/rev peak. When the peak already
// points at a blade within the configured window, weight comes off that
// blade; otherwise weight goes on the blade nearest the opposite azimuth.
func hubWeightCorrection(ctx *Context, f Finding) Suggestion {
	grams := roundTo(f.Value*ctx.Limits.HubGramsPerIPS, 10)
	opposite := math.Mod(f.PhaseDeg+180, 360)

	peakBlade, peakDist := nearestBlade(ctx.Aircraft, f.PhaseDeg)
	if peakBlade != "" && peakDist <= ctx.Limits.RemoveWithinDeg {
		return Suggestion{
			TargetBlade:    peakBlade,
			TargetLocation: f.Location,
			Adjustment:     RemoveWeight,
			Magnitude:      grams,
			Unit:           "g",
			Detail:         fmt.Sprintf("Remove ~%sg hub weight at %s (%s)", humanize.Ftoa(grams), peakBlade, clockLabel(f.PhaseDeg)),
		}
	}

	target, _ := nearestBlade(ctx.Aircraft, opposite)
	return Suggestion{
		TargetBlade:    target,
		TargetLocation: f.Location,
		Adjustment:     AddWeight,
		Magnitude:      grams,
		Unit:           "g",
		Detail:         fmt.Sprintf("Add ~%sg hub weight at %s (%s)", humanize.Ftoa(grams), clockLabel(opposite), orBlade(target)),
	}
}

func verticalOverLimit(ctx *Context) []Finding {
	v := ctx.Record.ReadingAt(ctx.Limits.VerticalLocation)
	if v == nil || v.AmplitudeIPS <= ctx.Limits.VerticalLimitIPS {
		return nil
	}
	return []Finding{{
		Location: v.Location,
		Value:    v.AmplitudeIPS,
		Limit:    ctx.Limits.VerticalLimitIPS,
		PhaseDeg: v.PhaseDeg,
	}}
}

func tabCorrection(ctx *Context, f Finding) Suggestion {
	deg := math.Max(0.2, roundTo(f.Value*ctx.Limits.TabDegPerIPS, 0.1))
	blade, _ := nearestBlade(ctx.Aircraft, f.PhaseDeg)
	return Suggestion{
		TargetBlade:    blade,
		TargetLocation: f.Location,
		Adjustment:     AdjustTab,
		Magnitude:      deg,
		Unit:           "deg",
		Detail:         fmt.Sprintf("Bend OUTBD tab of %s UP %s deg", orBlade(blade), humanize.Ftoa(deg)),
	}
}

// nearestBlade returns the blade label closest in azimuth to the given phase
// and the angular distance to it. Unknown aircraft yield an empty label.
func nearestBlade(ac *rotorcraft.AircraftType, phaseDeg float64) (string, float64) {
	if ac == nil || len(ac.Blades) == 0 {
		return "", math.MaxFloat64
	}
	best := ""
	bestDist := math.MaxFloat64
	for _, b := range ac.Blades {
		if d := angDiff(phaseDeg, b.AzimuthDeg); d < bestDist {
			bestDist = d
			best = b.Label
		}
	}
	return best, bestDist
}

// angDiff is the absolute angular distance between two angles in degrees.
func angDiff(a, b float64) float64 {
	d := math.Mod(a-b, 360)
	if d < 0 {
		d += 360
	}
	if d > 180 {
		d = 360 - d
	}
	return d
}

// clockLabel converts degrees to the nearest half-hour clock position, the
// form hub weight positions are briefed in (0 deg = 12:00).
func clockLabel(deg float64) string {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	half := math.Round(d/30*2) / 2
	h := int(half) % 12
	if h == 0 {
		h = 12
	}
	if half != math.Trunc(half) {
		return fmt.Sprintf("%d:30", h)
	}
	return fmt.Sprintf("%d:00", h)
}

func orBlade(label string) string {
	if label == "" {
		return "(BLADE)"
	}
	return label
}

func roundTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}
