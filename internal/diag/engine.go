// Package diag derives correction suggestions from measurement records. The
// rule set is a fixed, priority-ordered list of (predicate, template) pairs:
// every matching rule fires, output order follows rule order, and a record
// with all values inside the tolerance bands yields no suggestions.
package diag

import (
	"github.com/rotorlab/cadu-sim/internal/measure"
	"github.com/rotorlab/cadu-sim/internal/rotorcraft"
)

// AdjustmentType is the kind of maintenance action a suggestion asks for.
type AdjustmentType string

const (
	AddWeight       AdjustmentType = "ADD_WEIGHT"
	RemoveWeight    AdjustmentType = "REMOVE_WEIGHT"
	AdjustTab       AdjustmentType = "ADJUST_TAB"
	AdjustPitchLink AdjustmentType = "ADJUST_PITCH_LINK"
)

// Confidence grades how firmly the rule engine stands behind a suggestion.
type Confidence string

const (
	Low    Confidence = "LOW"
	Medium Confidence = "MEDIUM"
	High   Confidence = "HIGH"
)

// Suggestion is one derived correction. Suggestions are recomputed on every
// DIAGS view and never persisted.
type Suggestion struct {
	Rule           string         `json:"rule"`                     // Name of the rule that fired
	TargetBlade    string         `json:"targetBlade,omitempty"`    // Blade label, when the action is per blade
	TargetLocation string         `json:"targetLocation,omitempty"` // Location label, when the action is per location
	Adjustment     AdjustmentType `json:"adjustment"`
	Magnitude      float64        `json:"magnitude"` // In Unit
	Unit           string         `json:"unit"`
	Confidence     Confidence     `json:"confidence"`
	Detail         string         `json:"detail"` // One LCD-ready instruction line
}

// Finding is one observation a rule predicate extracted from a record.
type Finding struct {
	Blade       string
	Location    string
	Value       float64 // observed magnitude
	Limit       float64 // the threshold it exceeded
	PhaseDeg    float64 // phase of the offending reading, when applicable
	DeviationMM float64 // signed track deviation, when applicable
}

// Context carries everything a rule may read. Rules treat it as read-only.
type Context struct {
	Limits   rotorcraft.Limits
	Aircraft *rotorcraft.AircraftType // nil when the record names an unknown type
	Record   *measure.Record
}

// Rule pairs a predicate with a suggestion template. Adding a rule to the
// engine never touches engine control flow.
type Rule struct {
	Name string
	When func(*Context) []Finding
	Emit func(*Context, Finding) Suggestion
}

// Engine evaluates the rule list over the most recent record of a history.
// With a window above one it also grades persistence: a finding whose rule
// fired on every record in the window gains one confidence level.
type Engine struct {
	catalog *rotorcraft.Catalog
	rules   []Rule
	window  int
}

type Option func(*Engine)

// WithWindow sets the trend window: the number of most recent records
// considered for persistence grading. Values below one fall back to one.
func WithWindow(k int) Option {
	return func(e *Engine) {
		if k >= 1 {
			e.window = k
		}
	}
}

// WithRules replaces the default rule list.
func WithRules(rules []Rule) Option {
	return func(e *Engine) { e.rules = rules }
}

func New(catalog *rotorcraft.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: catalog,
		rules:   DefaultRules(),
		window:  1,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Diagnose evaluates the rule list against the most recent record and
// returns suggestions in rule priority order. It never mutates its input and
// returns nil for an empty history.
func (e *Engine) Diagnose(records []measure.Record) []Suggestion {
	if len(records) == 0 {
		return nil
	}

	latest := records[len(records)-1]
	ctx := &Context{
		Limits:   e.catalog.Limits,
		Aircraft: e.catalog.AircraftByName(latest.AircraftType),
		Record:   &latest,
	}

	start := len(records) - e.window
	if start < 0 {
		start = 0
	}
	window := records[start:]

	var out []Suggestion
	for _, rule := range e.rules {
		findings := rule.When(ctx)
		if len(findings) == 0 {
			continue
		}
		persistent := e.window > 1 && len(window) > 1 && e.firesThroughout(rule, window)
		for _, f := range findings {
			s := rule.Emit(ctx, f)
			s.Rule = rule.Name
			s.Confidence = grade(f, persistent)
			out = append(out, s)
		}
	}
	return out
}

// firesThroughout reports whether the rule found something on every record
// of the window.
func (e *Engine) firesThroughout(rule Rule, window []measure.Record) bool {
	for i := range window {
		rec := window[i]
		ctx := &Context{
			Limits:   e.catalog.Limits,
			Aircraft: e.catalog.AircraftByName(rec.AircraftType),
			Record:   &rec,
		}
		if len(rule.When(ctx)) == 0 {
			return false
		}
	}
	return true
}

// grade maps exceedance ratio to confidence; persistence over the trend
// window raises the result one level.
func grade(f Finding, persistent bool) Confidence {
	var c Confidence
	ratio := 0.0
	if f.Limit > 0 {
		ratio = f.Value / f.Limit
	}
	switch {
	case ratio >= 2.0:
		c = High
	case ratio >= 1.25:
		c = Medium
	default:
		c = Low
	}
	if persistent {
		switch c {
		case Low:
			c = Medium
		case Medium:
			c = High
		}
	}
	return c
}
