package app

import "flag"

const defaultExportFile = "cadu_session.json"

// Config holds the terminal host configuration.
type Config struct {
	CatalogPath string // YAML catalog; empty uses the built-in Bell 412 catalog
	DBPath      string // sqlite session log; empty disables logging
	ExportFile  string // destination of the MANAGER export action
	DiagWindow  int    // trend window for the rule engine
	Verbose     bool
}

func NewConfigFromCLI() (*Config, error) {
	c := &Config{}

	flag.StringVar(&c.CatalogPath, "c", "", "Path to the catalog configuration file")
	flag.StringVar(&c.DBPath, "db", "", "Path to the sqlite session log (optional)")
	flag.StringVar(&c.ExportFile, "export", defaultExportFile, "Path the MANAGER export action writes to")
	flag.IntVar(&c.DiagWindow, "trend", 1, "Number of recent measurements the diagnosis considers")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	return c, nil
}
