// The tbplot command renders charts from a logged trainer session: a track
// deviation bar chart and a 1/rev polar chart for one measurement.
package app

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/rotorlab/cadu-sim/internal/measure"
	"github.com/rotorlab/cadu-sim/internal/plot"
	"github.com/rotorlab/cadu-sim/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	store := storage.New(config.DBPath)
	defer store.Close()

	rec, err := pickRecord(ctx, store, config)
	if err != nil {
		return err
	}
	logger.Debug("charting measurement",
		slog.Int("record", rec.ID),
		slog.String("tail", rec.TailNumber),
		slog.String("testState", rec.TestState))

	renderer, err := plot.NewRenderer(plot.Config{FontPath: config.FontPath})
	if err != nil {
		return err
	}

	track, err := renderer.TrackChart(rec, config.TolMM)
	if err != nil {
		return err
	}
	polar, err := renderer.PolarChart(rec)
	if err != nil {
		return err
	}

	for name, img := range map[string]*image.RGBA{
		config.Output + "_track." + config.Format: track,
		config.Output + "_polar." + config.Format: polar,
	} {
		if err := writeImage(name, img, config.Format); err != nil {
			return err
		}
		logger.Info("chart written", slog.String("path", name))
	}

	return nil
}

// pickRecord resolves the session and measurement selection: missing session
// ID means the most recent session, missing record number means its last
// measurement.
func pickRecord(ctx context.Context, store storage.Store, config *Config) (*measure.Record, error) {
	sessionID := config.SessionID
	if sessionID == 0 {
		sessions, err := store.Sessions(ctx)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			return nil, fmt.Errorf("no sessions logged in %s", config.DBPath)
		}
		sessionID = sessions[len(sessions)-1].ID
	}

	records, err := store.Measurements(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("session %d has no measurements", sessionID)
	}

	if config.RecordSeq == 0 {
		return &records[len(records)-1], nil
	}
	for i := range records {
		if records[i].ID == config.RecordSeq {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("session %d has no measurement %d", sessionID, config.RecordSeq)
}

func writeImage(path string, img *image.RGBA, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	switch format {
	case FormatJPEG:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	default:
		err = png.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	return f.Close()
}
