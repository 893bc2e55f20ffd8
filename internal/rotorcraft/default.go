package rotorcraft

// DefaultCatalog returns the built-in Bell 412 training catalog, used when no
// catalog file is supplied. Values mirror the BHT-412-MM training workflow.
func DefaultCatalog() *Catalog {
	bell412Blades := []Blade{
		{Label: "GRN", AzimuthDeg: 0},
		{Label: "BLU", AzimuthDeg: 90},
		{Label: "ORG", AzimuthDeg: 180},
		{Label: "RED", AzimuthDeg: 270},
	}
	locations := []string{"LAT", "VERT", "PYLON"}

	return &Catalog{
		Aircraft: []AircraftType{
			{Name: "412_50", Version: "7.1", Blades: bell412Blades, Locations: locations},
			{Name: "412_41", Version: "5.21", Blades: bell412Blades, Locations: locations},
		},
		FlightPlans: []FlightPlan{
			{
				Name: "INITIAL",
				TestStates: []TestState{
					{Name: "60NR", Regime: RegimeGround, TrackSpreadMM: 25, AmpMinIPS: 0.03, AmpMaxIPS: 0.12},
					{Name: "100NR", Regime: RegimeGround, TrackSpreadMM: 22, AmpMinIPS: 0.05, AmpMaxIPS: 0.28},
					{Name: "HOVER", Regime: RegimeFlight, TrackSpreadMM: 30, AmpMinIPS: 0.06, AmpMaxIPS: 0.32},
				},
			},
			{
				Name: "FLIGHT",
				TestStates: []TestState{
					{Name: "HOVER", Regime: RegimeFlight, TrackSpreadMM: 30, AmpMinIPS: 0.06, AmpMaxIPS: 0.32},
					{Name: "120K", Regime: RegimeFlight, TrackSpreadMM: 40, AmpMinIPS: 0.08, AmpMaxIPS: 0.38},
					{Name: "LETDOWN", Regime: RegimeFlight, TrackSpreadMM: 35, AmpMinIPS: 0.07, AmpMaxIPS: 0.26},
				},
			},
			{
				Name: "TAIL",
				TestStates: []TestState{
					{Name: "TR-HOVER", Regime: RegimeFlight, TrackSpreadMM: 18, AmpMinIPS: 0.04, AmpMaxIPS: 0.20},
					{Name: "TR-80K", Regime: RegimeFlight, TrackSpreadMM: 20, AmpMinIPS: 0.05, AmpMaxIPS: 0.24},
				},
			},
		},
		TailNumbers: []string{"EC-ABC", "EC-MHV", "PT-101"},
		Limits: Limits{
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
