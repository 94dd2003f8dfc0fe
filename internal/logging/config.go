package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// Config holds the logging options supplied by the CLI.
type Config struct {
	Level string // debug, info, warn, error
	JSON  bool   // structured JSON output instead of text
}

// NewLogger builds a logrus.Logger configured from Config, writing to out
// (normally stderr so stdout stays clean for user-facing output). The
// redaction hook is always installed.
func NewLogger(cfg Config, out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(out)

	if cfg.JSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    true,
			TimestampFormat:  "15:04:05",
			PadLevelText:     true,
			QuoteEmptyFields: true,
		})
	}

	logger.AddHook(NewRedactionService().CreateHook())

	return logger, nil
}
