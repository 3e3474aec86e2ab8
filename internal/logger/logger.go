package logger

import (
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

var once sync.Once
var logger *logrus.Logger

// GetLogger returns the singleton logger shared by the command-line tools.
// Output goes to stderr so that standoff lines on stdout stay clean.
func GetLogger() *logrus.Logger {
	once.Do(func() {
		logger = logrus.New()

		logger.Out = os.Stderr
		logger.SetLevel(logrus.WarnLevel)

		logger.SetFormatter(&logrus.TextFormatter{
			DisableColors: true,
			FullTimestamp: true,
			PadLevelText:  true,
		})
	})

	return logger
}

// SetVerbose switches the shared logger between Warn and Debug.
func SetVerbose(verbose bool) {
	if verbose {
		GetLogger().SetLevel(logrus.DebugLevel)
		return
	}
	GetLogger().SetLevel(logrus.WarnLevel)
}

// Discard returns a logger that drops everything. Library packages fall
// back to it when no logger is supplied.
func Discard() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	l.SetLevel(logrus.PanicLevel)
	return l
}

// OrDiscard returns log, or a discarding logger when log is nil.
func OrDiscard(log logrus.FieldLogger) logrus.FieldLogger {
	if log == nil {
		return Discard()
	}
	return log
}

// SetOutput redirects the shared logger, e.g. to a command's error stream.
func SetOutput(w io.Writer) {
	GetLogger().SetOutput(w)
}
