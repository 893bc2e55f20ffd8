// The cadu command is the terminal host of the trainer: key tokens in on
// stdin, rendered LCD frames out on stdout. With -db it also appends every
// completed acquisition to a sqlite session log for tbplot.
package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/rotorlab/cadu-sim/internal/acquire"
	"github.com/rotorlab/cadu-sim/internal/cadu"
	"github.com/rotorlab/cadu-sim/internal/diag"
	"github.com/rotorlab/cadu-sim/internal/display"
	"github.com/rotorlab/cadu-sim/internal/measure"
	"github.com/rotorlab/cadu-sim/internal/rotorcraft"
	"github.com/rotorlab/cadu-sim/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	catalog, err := loadCatalog(config)
	if err != nil {
		return err
	}

	var opts []cadu.DeviceOption
	if config.DBPath != "" {
		store := storage.New(config.DBPath)
		defer store.Close()
		opts = append(opts, cadu.WithRecorder(newRecorder(ctx, store, logger)))
	}
	opts = append(opts, cadu.WithExporter(func(payload []byte) error {
		if err := os.WriteFile(config.ExportFile, payload, 0o644); err != nil {
			return fmt.Errorf("writing export file: %w", err)
		}
		logger.Info("session exported", slog.String("path", config.ExportFile))
		return nil
	}))

	device := cadu.NewDevice(
		catalog,
		acquire.New(catalog),
		diag.New(catalog, diag.WithWindow(config.DiagWindow)),
		opts...,
	)

	printFrame(device)

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if done := handleLine(device, line, logger); done {
				return nil
			}
			printFrame(device)
		}
	}
}

func loadCatalog(config *Config) (*rotorcraft.Catalog, error) {
	if config.CatalogPath == "" {
		return rotorcraft.DefaultCatalog(), nil
	}
	catalog, err := rotorcraft.LoadCatalog(config.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	return catalog, nil
}

// newRecorder lazily opens the log session on the first completed
// acquisition, so empty runs leave no rows behind.
func newRecorder(ctx context.Context, store storage.Store, logger *slog.Logger) func(measure.Record) {
	var sessionID int64

	return func(rec measure.Record) {
		if sessionID == 0 {
			id, err := store.CreateSession(ctx, rec.AircraftType, rec.TailNumber)
			if err != nil {
				logger.Error("creating log session", slog.String("error", err.Error()))
				return
			}
			sessionID = id
			logger.Debug("log session created", slog.Int64("sessionID", sessionID))
		}

		if err := store.StoreMeasurement(ctx, sessionID, &rec); err != nil {
			logger.Error("logging measurement", slog.String("error", err.Error()))
		}
	}
}

// handleLine turns one stdin line into device input. "tail XYZ" fills the
// tail entry buffer, "exit" ends the run, anything else is parsed as a key
// token and ignored when outside the alphabet.
func handleLine(device *cadu.Device, line string, logger *slog.Logger) (done bool) {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return false

	case strings.EqualFold(line, "exit"):
		return true

	case len(line) > 5 && strings.EqualFold(line[:5], "tail "):
		device.SetTailEntry(line[5:])
		return false
	}

	key, ok := cadu.ParseKey(line)
	if !ok {
		logger.Debug("ignoring unknown input", slog.String("token", line))
		return false
	}
	device.Dispatch(key)
	return false
}

func printFrame(device *cadu.Device) {
	border := "+" + strings.Repeat("-", display.Cols) + "+"
	fmt.Println(border)
	for _, line := range display.Render(device.Frame()) {
		fmt.Println("|" + line + "|")
	}
	fmt.Println(border)
}
