package cadu

import (
	"github.com/rotorlab/cadu-sim/internal/diag"
	"github.com/rotorlab/cadu-sim/internal/measure"
)

// Frame is the structured payload handed to the LCD-rendering collaborator.
// The device never performs layout; the formatter owns that.
type Frame struct {
	Menu         Menu              `json:"menu"`
	Step         Step              `json:"step,omitempty"` // set only while in MEASURE
	Prompt       string            `json:"prompt"`
	Options      []string          `json:"options,omitempty"`
	HighlightIdx int               `json:"highlightIdx"`
	Highlight    string            `json:"highlight,omitempty"`
	Entry        string            `json:"entry,omitempty"` // tail number buffer
	Invalid      bool              `json:"invalid"`         // validation flag
	Message      string            `json:"message"`
	NoData       bool              `json:"noData"` // DISPLAY/DIAGS with empty history
	Result       *measure.Record   `json:"result,omitempty"`
	Diagnosis    []diag.Suggestion `json:"diagnosis,omitempty"`
	Summary      *Summary          `json:"summary,omitempty"`
	Selection    Selection         `json:"selection"`
}

// Selection mirrors the committed MEASURE selections for display purposes.
type Selection struct {
	AircraftType string `json:"aircraftType,omitempty"`
	TailNumber   string `json:"tailNumber,omitempty"`
	FlightPlan   string `json:"flightPlan,omitempty"`
	TestState    string `json:"testState,omitempty"`
}

// Frame renders the current session state into the display payload.
func (d *Device) Frame() Frame {
	s := d.session
	f := Frame{
		Menu:    s.ActiveMenu,
		Invalid: d.invalid,
		Message: d.message,
		Selection: Selection{
			AircraftType: s.AircraftType,
			TailNumber:   s.TailNumber,
			FlightPlan:   s.FlightPlan,
			TestState:    s.TestState,
		},
	}

	switch s.ActiveMenu {
	case MenuMeasure:
		f.Step = s.Step
		spec := measureFlow[s.Step]
		f.Prompt = spec.prompt
		if spec.options != nil {
			f.Options = spec.options(d)
			if len(f.Options) > 0 {
				f.HighlightIdx = d.cursor % len(f.Options)
				f.Highlight = f.Options[f.HighlightIdx]
			}
		}
		if s.Step == StepEnterTail {
			f.Entry = d.entry
		}
		if s.Step == StepDone && len(s.Measurements) > 0 {
			rec := s.Measurements[len(s.Measurements)-1]
			f.Result = &rec
		}

	case MenuDisplay:
		if len(s.Measurements) == 0 {
			f.Prompt = "Measurement review"
			f.NoData = true
			break
		}
		f.Prompt = "Measurement review"
		rec := s.Measurements[d.displayIdx]
		f.Result = &rec

	case MenuDiags:
		if len(s.Measurements) == 0 {
			f.Prompt = "Diagnostics"
			f.NoData = true
			break
		}
		f.Prompt = "Diagnostics"
		f.Diagnosis = d.suggestions
		if n := len(d.suggestions); n > 0 {
			f.HighlightIdx = d.cursor % n
		}

	case MenuManager:
		f.Prompt = "Session manager"
		f.Options = managerOptions
		f.HighlightIdx = d.cursor % len(managerOptions)
		f.Highlight = managerOptions[f.HighlightIdx]
		sum := s.Summary()
		f.Summary = &sum
	}

	return f
}
