package app

import (
	"errors"
	"flag"
	"fmt"
)

const (
	FormatPNG  = "png"
	FormatJPEG = "jpeg"

	defaultOutput = "tbplot"
	defaultTolMM  = 6.0
)

// Config holds the chart tool configuration.
type Config struct {
	DBPath    string  // sqlite session log written by the cadu host
	SessionID int64   // session to chart; 0 picks the most recent
	RecordSeq int     // measurement within the session; 0 picks the last
	Output    string  // output file prefix
	Format    string  // png or jpeg
	FontPath  string  // TTF for chart labels; empty renders without text
	TolMM     float64 // track tolerance band drawn on the track chart
	Verbose   bool
}

func NewConfigFromCLI() (*Config, error) {
	c := &Config{}

	flag.StringVar(&c.DBPath, "db", "", "Path to the sqlite session log (required)")
	flag.Int64Var(&c.SessionID, "s", 0, "Session ID to chart, 0 selects the most recent")
	flag.IntVar(&c.RecordSeq, "rec", 0, "Measurement number within the session, 0 selects the last")
	flag.StringVar(&c.Output, "o", defaultOutput, "Output file prefix")
	flag.StringVar(&c.Format, "f", FormatPNG, "Output image format (png or jpeg)")
	flag.StringVar(&c.FontPath, "font", "", "Path to a TTF font for chart labels")
	flag.Float64Var(&c.TolMM, "tol", defaultTolMM, "Track tolerance band in millimetres")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	if c.DBPath == "" {
		return nil, errors.New("path to the session log is required")
	}

	switch c.Format {
	case FormatPNG, FormatJPEG:
	default:
		return nil, fmt.Errorf("unsupported output format %q", c.Format)
	}

	return c, nil
}
