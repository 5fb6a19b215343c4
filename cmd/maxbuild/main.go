package main

import (
	"os"
	"time"

	"github.com/beam-cloud/maxbuild/pkg/commands"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if err := commands.Execute(); err != nil {
		log.Error().Err(err).Msg("maxbuild failed")
		os.Exit(1)
	}
}
