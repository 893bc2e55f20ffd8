package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rotorlab/cadu-sim/internal/measure"
)

// Store is the flight-recorder log of trainer sessions. Hosts append
// completed measurements as they happen; the log is never read back into a
// live session, only by offline tooling such as tbplot.
type Store interface {
	// CreateSession registers a new trainer session and returns its unique
	// identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - aircraftType: Catalog name of the selected aircraft type
	//   - tailNumber: Validated tail number the session was flown under
	//
	// Returns:
	//   - sessionID: Unique identifier for the created session
	//   - error: If session creation fails or context is cancelled
	CreateSession(ctx context.Context, aircraftType, tailNumber string) (sessionID int64, err error)

	// StoreMeasurement appends one completed acquisition to a session.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - sessionID: ID of the session the measurement belongs to
	//   - rec: The completed measurement record; never mutated
	//
	// Returns:
	//   - error: If storage fails or context is cancelled
	StoreMeasurement(ctx context.Context, sessionID int64, rec *measure.Record) error

	// Session retrieves one logged session by its ID, nil if not found.
	Session(ctx context.Context, id int64) (*SessionInfo, error)

	// Sessions returns all logged sessions ordered by start time.
	Sessions(ctx context.Context) ([]SessionInfo, error)

	// Measurements returns the measurements of a session in acquisition
	// order, reconstructed into full records.
	Measurements(ctx context.Context, sessionID int64) ([]measure.Record, error)

	// Close releases all database connections. It is safe to call Close
	// multiple times.
	Close() error
}
