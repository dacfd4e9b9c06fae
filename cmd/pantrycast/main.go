// Runs the food bank operations analysis suite. Input locations and
// analysis parameters come from PANTRYCAST_CONFIG or PANTRYCAST_
// environment variables, with defaults matching the statewide and
// mRFEI exports checked into the data directory.
package main

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/ccfoodbank/pantrycast"
)

func main() {
	cfg, err := pantrycast.LoadConfig()
	if err != nil {
		slog.Error("unable to load configuration", "error", err)
		os.Exit(1)
	}

	err = pantrycast.New(cfg).Run()
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, pantrycast.ErrNoInputConfigured) {
		os.Exit(1)
	}
}
