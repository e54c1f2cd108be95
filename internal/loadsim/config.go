// Package loadsim generates synthetic player traffic against a running
// arena instance for load and sanity testing.
package loadsim

import "time"

// Default simulation constants.
const (
	defaultPlayers     = 100
	defaultEvents      = 10_000
	defaultWorkers     = 8
	defaultHTTPTimeout = 30 * time.Second
)

// Config controls a simulation run.
type Config struct {
	// BaseURL of the service under test.
	BaseURL string

	// Players is the number of synthetic player ids.
	Players int

	// Events is the total number of events to submit.
	Events int

	// Workers is the number of concurrent senders.
	Workers int

	// Timeout bounds each HTTP request.
	Timeout time.Duration

	// Mode is the matchmaking mode queue joins target.
	Mode string
}

// NewConfig returns a Config with defaults applied.
func NewConfig() *Config {
	return &Config{
		BaseURL: "http://localhost:9080",
		Players: defaultPlayers,
		Events:  defaultEvents,
		Workers: defaultWorkers,
		Timeout: defaultHTTPTimeout,
		Mode:    "deathmatch",
	}
}
