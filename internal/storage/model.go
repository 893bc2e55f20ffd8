package storage

import "time"

// SessionInfo describes one logged trainer session.
type SessionInfo struct {
	ID           int64
	StartTime    time.Time
	AircraftType string
	TailNumber   string
}

// measurementRow is the raw measurements table row; track and vibration are
// stored as JSON text columns.
type measurementRow struct {
	ID         int64
	SessionID  int64
	Seq        int
	Timestamp  time.Time
	FlightPlan string
	TestState  string
	Track      string
	Vibration  string
}
