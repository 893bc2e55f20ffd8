package rotorcraft

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Regime classifies a test state by where it is flown. Ground and flight
// regimes carry different plausible vibration windows.
type Regime string

const (
	RegimeGround Regime = "ground"
	RegimeFlight Regime = "flight"
)

// Blade identifies one main rotor blade by its color label and its
// azimuth position in degrees (0 = over the nose, increasing with rotation).
type Blade struct {
	Label      string  `yaml:"label"`
	AzimuthDeg float64 `yaml:"azimuthDeg"`
}

// AircraftType describes one entry of the aircraft catalog. Blade and
// vibration location counts drive the shape of every simulated acquisition.
type AircraftType struct {
	Name      string   `yaml:"name"`
	Version   string   `yaml:"version"`
	Blades    []Blade  `yaml:"blades"`
	Locations []string `yaml:"locations"`
}

// TestState is a single acquisition regime within a flight plan.
// The bounds describe the window the simulator synthesizes values into.
type TestState struct {
	Name          string  `yaml:"name"`
	Regime        Regime  `yaml:"regime"`
	TrackSpreadMM float64 `yaml:"trackSpreadMM"` // max per-blade deviation from mean
	AmpMinIPS     float64 `yaml:"ampMinIPS"`
	AmpMaxIPS     float64 `yaml:"ampMaxIPS"`
}

// FlightPlan is an ordered script of test states.
type FlightPlan struct {
	Name       string      `yaml:"name"`
	TestStates []TestState `yaml:"testStates"`
}

// Limits holds the diagnostic thresholds and correction sensitivities.
// They are injected configuration: the rule engine never embeds numbers.
type Limits struct {
	LateralLocation    string  `yaml:"lateralLocation"`    // location label carrying the lateral 1/rev
	VerticalLocation   string  `yaml:"verticalLocation"`   // location label carrying the vertical 1/rev
	TrackTolMM         float64 `yaml:"trackTolMM"`         // per-blade track tolerance band
	LateralLimitIPS    float64 `yaml:"lateralLimitIPS"`    // 1/rev lateral within limits below this
	VerticalLimitIPS   float64 `yaml:"verticalLimitIPS"`   // 1/rev vertical within limits below this
	PitchLinkMMPerFlat float64 `yaml:"pitchLinkMMPerFlat"` // track change per pitch link flat
	HubGramsPerIPS     float64 `yaml:"hubGramsPerIPS"`     // hub weight sensitivity
	TabDegPerIPS       float64 `yaml:"tabDegPerIPS"`       // trim tab sensitivity
	RemoveWithinDeg    float64 `yaml:"removeWithinDeg"`    // peak this close to a blade: remove there instead of adding opposite
}

// Catalog is the complete injected configuration of the trainer: aircraft
// types, flight plans, known tail numbers and diagnostic limits.
type Catalog struct {
	Aircraft    []AircraftType `yaml:"aircraft"`
	FlightPlans []FlightPlan   `yaml:"flightPlans"`
	TailNumbers []string       `yaml:"tailNumbers"`
	Limits      Limits         `yaml:"limits"`
}

// LoadCatalog reads and validates a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var c Catalog
	if err = yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	if err = c.Validate(); err != nil {
		return nil, fmt.Errorf("validating catalog: %w", err)
	}
	return &c, nil
}

// Validate checks the catalog for the invariants the core relies on.
func (c *Catalog) Validate() error {
	if len(c.Aircraft) == 0 {
		return fmt.Errorf("catalog has no aircraft types")
	}
	for _, a := range c.Aircraft {
		if a.Name == "" {
			return fmt.Errorf("aircraft type with empty name")
		}
		if len(a.Blades) == 0 {
			return fmt.Errorf("aircraft type '%s' has no blades", a.Name)
		}
		if len(a.Locations) == 0 {
			return fmt.Errorf("aircraft type '%s' has no vibration locations", a.Name)
		}
	}

	if len(c.FlightPlans) == 0 {
		return fmt.Errorf("catalog has no flight plans")
	}
	for _, p := range c.FlightPlans {
		if p.Name == "" {
			return fmt.Errorf("flight plan with empty name")
		}
		if len(p.TestStates) == 0 {
			return fmt.Errorf("flight plan '%s' has no test states", p.Name)
		}
		for _, ts := range p.TestStates {
			if ts.Regime != RegimeGround && ts.Regime != RegimeFlight {
				return fmt.Errorf("test state '%s': unknown regime '%s'", ts.Name, ts.Regime)
			}
			if ts.AmpMinIPS < 0 || ts.AmpMaxIPS <= ts.AmpMinIPS {
				return fmt.Errorf("test state '%s': invalid amplitude window [%v, %v]", ts.Name, ts.AmpMinIPS, ts.AmpMaxIPS)
			}
			if ts.TrackSpreadMM <= 0 {
				return fmt.Errorf("test state '%s': track spread must be positive", ts.Name)
			}
		}
	}

	if c.Limits.PitchLinkMMPerFlat <= 0 || c.Limits.HubGramsPerIPS <= 0 || c.Limits.TabDegPerIPS <= 0 {
		return fmt.Errorf("limits: sensitivities must be positive")
	}
	return nil
}

// AircraftByName returns the catalog entry for a type name, nil if unknown.
func (c *Catalog) AircraftByName(name string) *AircraftType {
	for i := range c.Aircraft {
		if c.Aircraft[i].Name == name {
			return &c.Aircraft[i]
		}
	}
	return nil
}

// PlanByName returns the flight plan for a plan name, nil if unknown.
func (c *Catalog) PlanByName(name string) *FlightPlan {
	for i := range c.FlightPlans {
		if c.FlightPlans[i].Name == name {
			return &c.FlightPlans[i]
		}
	}
	return nil
}

// TestStateByName resolves a test state within a plan, nil if unknown.
func (p *FlightPlan) TestStateByName(name string) *TestState {
	for i := range p.TestStates {
		if p.TestStates[i].Name == name {
			return &p.TestStates[i]
		}
	}
	return nil
}
