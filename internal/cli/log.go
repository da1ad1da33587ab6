package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// configureLogger points the logger at stderr and applies the configured level.
func (a *app) configureLogger() error {
	a.log.SetOutput(a.stderr)
	a.log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	name := a.cfg.GetString(cfgKeyLogLevel)
	if a.flags.verbose {
		name = logrus.DebugLevel.String()
	}
	level, err := logrus.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	a.log.SetLevel(level)
	return nil
}

// newRunID returns an identifier for one export run, used to correlate its
// log lines.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
