package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rotorlab/cadu-sim/internal/measure"
)

//go:embed schema.sql
var schemaSQL string

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      aircraft_type,
                      tail_number)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	insertMeasurementSQL = `
INSERT INTO measurements (session_id,
                          seq,
                          timestamp,
                          flight_plan,
                          test_state,
                          track,
                          vibration)
VALUES (?, ?, ?, ?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    aircraft_type,
    tail_number
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    aircraft_type,
    tail_number
FROM sessions
ORDER BY start_time`

	selectMeasurementsSQL = `
SELECT
    id,
    session_id,
    seq,
    timestamp,
    flight_plan,
    test_state,
    track,
    vibration
FROM measurements
WHERE
    session_id = ?
ORDER BY seq`
)

// SqliteStore implements Store on a single sqlite file. Write and read
// connections are opened lazily and independently, so a read-only consumer
// never creates the schema.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store backed by the sqlite file at dbPath. The file and
// schema are created on first write.
func New(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", s.dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
		if err != nil {
			s.writeDBErr = err
			return
		}

		if _, err = db.Exec(schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = err
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		// share the write connection when this process already writes,
		// a second handle would miss uncheckpointed WAL pages
		if s.writeDB != nil {
			s.readDB = s.writeDB
			return
		}

		db, err := sql.Open("sqlite3", s.dbPath+"?mode=ro")
		if err != nil {
			s.readDBErr = err
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, aircraftType, tailNumber string) (sessionID int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return 0, fmt.Errorf("getting write connection: %w", err)
	}

	result, err := db.ExecContext(ctx, insertSessionSQL, aircraftType, tailNumber)
	if err != nil {
		return 0, fmt.Errorf("inserting session: %w", err)
	}

	return result.LastInsertId()
}

func (s *SqliteStore) StoreMeasurement(ctx context.Context, sessionID int64, rec *measure.Record) (err error) {
	if err = rec.Validate(); err != nil {
		return fmt.Errorf("validating measurement: %w", err)
	}

	track, err := json.Marshal(rec.Track)
	if err != nil {
		return fmt.Errorf("marshaling track points: %w", err)
	}
	vibration, err := json.Marshal(rec.Vibration)
	if err != nil {
		return fmt.Errorf("marshaling vibration readings: %w", err)
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	_, err = db.ExecContext(ctx, insertMeasurementSQL,
		sessionID,
		rec.ID,
		rec.Timestamp,
		rec.FlightPlan,
		rec.TestState,
		string(track),
		string(vibration),
	)
	if err != nil {
		return fmt.Errorf("inserting measurement: %w", err)
	}
	return nil
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (session *SessionInfo, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	var info SessionInfo
	err = db.QueryRowContext(ctx, selectSessionSQL, id).
		Scan(&info.ID, &info.StartTime, &info.AircraftType, &info.TailNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return &info, nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []SessionInfo, err error) {
	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cErr)
		}
	}()

	for rows.Next() {
		var info SessionInfo
		if err = rows.Scan(&info.ID, &info.StartTime, &info.AircraftType, &info.TailNumber); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, info)
	}
	return sessions, rows.Err()
}

func (s *SqliteStore) Measurements(ctx context.Context, sessionID int64) (records []measure.Record, err error) {
	session, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, fmt.Errorf("session %d not found", sessionID)
	}

	db, err := s.getReadDB()
	if err != nil {
		return nil, fmt.Errorf("getting read connection: %w", err)
	}

	rows, err := db.QueryContext(ctx, selectMeasurementsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying measurements: %w", err)
	}
	defer func() {
		if cErr := rows.Close(); cErr != nil && err == nil {
			err = fmt.Errorf("closing rows: %w", cErr)
		}
	}()

	for rows.Next() {
		var row measurementRow
		if err = rows.Scan(
			&row.ID,
			&row.SessionID,
			&row.Seq,
			&row.Timestamp,
			&row.FlightPlan,
			&row.TestState,
			&row.Track,
			&row.Vibration,
		); err != nil {
			return nil, fmt.Errorf("scanning measurement: %w", err)
		}

		rec := measure.Record{
			ID:           row.Seq,
			Timestamp:    row.Timestamp,
			AircraftType: session.AircraftType,
			TailNumber:   session.TailNumber,
			FlightPlan:   row.FlightPlan,
			TestState:    row.TestState,
		}
		if err = json.Unmarshal([]byte(row.Track), &rec.Track); err != nil {
			return nil, fmt.Errorf("unmarshaling track points: %w", err)
		}
		if err = json.Unmarshal([]byte(row.Vibration), &rec.Vibration); err != nil {
			return nil, fmt.Errorf("unmarshaling vibration readings: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Close closes the database connections.
func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			if s.readDB == s.writeDB {
				s.readDB = nil
			}
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
