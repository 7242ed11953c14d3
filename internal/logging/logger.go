package logging

import "github.com/sirupsen/logrus"

// NewLogger builds the process-wide *logrus.Logger from the configured
// level ("debug", "info", ...) and format ("json" or "text"). An
// unrecognized level falls back to info rather than failing startup.
func NewLogger(level, format string) *logrus.Logger {
	log := logrus.New()

	if format == "text" {
		log.SetFormatter(&logrus.TextFormatter{})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	return log
}
