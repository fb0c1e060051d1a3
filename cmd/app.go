// Package cmd implements the irr command line application.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/irr/config"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for _, cmd := range Calculations() {
		c.Register(cmd, "calculations")
	}
	c.Register(&topicCmd{}, "help")
	c.Register(&assistCmd{}, "")
	c.Register(&serveCmd{}, "")
}

// Calculations returns the calculation commands.
func Calculations() []subcommands.Command {
	return []subcommands.Command{
		&rateCmd{},
		&futureCmd{},
		&presentCmd{},
		&blendedCmd{},
		&portfolioCmd{},
		&calcCmd{},
	}
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	configFile = flag.String("config", "", "Path to the configuration file (YAML). Settings can also be set with IRR_ environment variables.")
	verbose    = flag.Bool("v", false, "Verbose logging")

	// stdout is where commands print their results.
	stdout io.Writer = os.Stdout
)

// loadConfig loads and validates the configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return nil, err
	}
	if *verbose {
		cfg.Logging.Level = zerolog.LevelDebugValue
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup loads the configuration and the logger of a command. On failure it
// reports the error and returns false.
func setup() (*config.Config, zerolog.Logger, bool) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return nil, zerolog.Nop(), false
	}
	return cfg, cfg.Logger(os.Stderr), true
}
