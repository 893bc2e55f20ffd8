// Package display renders device frames into the fixed 38x10 text buffer
// the LCD abstraction expects. It owns layout and nothing else: all content
// decisions are made by the device.
package display

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rotorlab/cadu-sim/internal/cadu"
	"github.com/rotorlab/cadu-sim/internal/measure"
)

const (
	Cols = 38
	Rows = 10 // 9 content lines + 1 footer
)

const footer = "F1 MEAS F2 DISP F3 DIAG F4 MGR"

// Render lays a frame out as Rows lines of exactly Cols characters.
func Render(f cadu.Frame) []string {
	lines := make([]string, 0, Rows)
	lines = append(lines, header(f))
	lines = append(lines, fit(f.Prompt))

	switch {
	case f.NoData:
		lines = append(lines, fit(""), fit("   ** NO DATA **"), fit("   Run MEASURE first."))
	case f.Menu == cadu.MenuDiags:
		lines = append(lines, diagnosisLines(f)...)
	case f.Result != nil:
		lines = append(lines, resultLines(f.Result)...)
	default:
		lines = append(lines, optionLines(f)...)
	}

	if f.Menu == cadu.MenuManager && f.Summary != nil {
		lines = append(lines,
			fit(fmt.Sprintf("Measurements: %d", f.Summary.Measurements)),
			fit(fmt.Sprintf("Lifecycle:    %s", f.Summary.Lifecycle)))
	}

	for len(lines) < Rows-1 {
		lines = append(lines, fit(""))
	}
	lines = append(lines[:Rows-1], fit(footer))
	return lines
}

func header(f cadu.Frame) string {
	left := string(f.Menu)
	if f.Invalid {
		left += " !"
	}
	msg := f.Message
	pad := Cols - len(left) - len(msg)
	if pad < 1 {
		return fit(left + " " + msg)
	}
	return left + strings.Repeat(" ", pad) + msg
}

func optionLines(f cadu.Frame) []string {
	var out []string
	if f.Entry != "" || f.Step == cadu.StepEnterTail {
		out = append(out, fit("Tail No: "+f.Entry))
	}
	for i, opt := range f.Options {
		marker := "  "
		if i == f.HighlightIdx {
			marker = "> "
		}
		out = append(out, fit(marker+opt))
	}
	if f.Step == cadu.StepReadyToLaunch {
		sel := f.Selection
		out = append(out,
			fit("Aircraft  "+sel.AircraftType),
			fit("Tail      "+sel.TailNumber),
			fit("Plan      "+sel.FlightPlan),
			fit("Test      "+sel.TestState))
	}
	return out
}

func resultLines(rec *measure.Record) []string {
	out := []string{
		fit(fmt.Sprintf("REC %d  %s/%s", rec.ID, rec.FlightPlan, rec.TestState)),
		fit(trackLine(rec)),
	}
	for _, v := range rec.Vibration {
		out = append(out, fit(fmt.Sprintf("%-6s %s ips @ %s",
			v.Location, humanize.Ftoa(v.AmplitudeIPS), humanize.Ftoa(v.PhaseDeg))))
	}
	return out
}

func trackLine(rec *measure.Record) string {
	parts := make([]string, len(rec.Track))
	for i, tp := range rec.Track {
		parts[i] = fmt.Sprintf("%s %s", tp.Blade, humanize.Ftoa(tp.DeviationMM))
	}
	return "TRK " + strings.Join(parts, " ")
}

func diagnosisLines(f cadu.Frame) []string {
	if len(f.Diagnosis) == 0 {
		return []string{fit(""), fit("   IN LIMITS"), fit("   No action needed.")}
	}
	// scroll so the highlighted suggestion stays on screen
	start := 0
	if len(f.Diagnosis) > Rows-3 && f.HighlightIdx > Rows-4 {
		start = f.HighlightIdx - (Rows - 4)
	}
	var out []string
	for i := start; i < len(f.Diagnosis); i++ {
		marker := "  "
		if i == f.HighlightIdx {
			marker = "> "
		}
		out = append(out, fit(fmt.Sprintf("%s%s [%s]", marker, f.Diagnosis[i].Detail, f.Diagnosis[i].Confidence)))
	}
	return out
}

// fit truncates or pads a line to the LCD width.
func fit(s string) string {
	if len(s) > Cols {
		return s[:Cols]
	}
	return s + strings.Repeat(" ", Cols-len(s))
}
