package shutdown

import (
	"context"
	"database/sql"
	"os"

	"github.com/rs/zerolog/log"
)

// Shutdown stops the poller loop via its context, closes the settings
// database, and exits. In-flight HTTP requests are bounded by their timeouts;
// nothing waits on them.
func Shutdown(cancel context.CancelFunc, dbConn *sql.DB) {
	cancel()
	if dbConn != nil {
		if err := dbConn.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close settings database")
		}
	}
	log.Info().Msg("Shutdown complete")
	os.Exit(0)
}

func ShutdownWithError(err error, msg string, cancel context.CancelFunc, dbConn *sql.DB) {
	log.Error().Err(err).Msg(msg)
	cancel()
	if dbConn != nil {
		dbConn.Close()
	}
	os.Exit(1)
}
