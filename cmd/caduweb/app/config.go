package app

import "flag"

const defaultAddr = ":8080"

// Config holds the websocket host configuration.
type Config struct {
	Addr        string // listen address of the HTTP server
	CatalogPath string // YAML catalog; empty uses the built-in Bell 412 catalog
	DiagWindow  int    // trend window for the rule engine
	Verbose     bool
}

func NewConfigFromCLI() (*Config, error) {
	c := &Config{}

	flag.StringVar(&c.Addr, "addr", defaultAddr, "Listen address")
	flag.StringVar(&c.CatalogPath, "c", "", "Path to the catalog configuration file")
	flag.IntVar(&c.DiagWindow, "trend", 1, "Number of recent measurements the diagnosis considers")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	return c, nil
}
