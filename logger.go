package village

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the package logger. It starts at info level writing text to stderr;
// hosts call ConfigureLogging once at startup, tests may silence it with
// SetLogOutput(io.Discard).
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}

// ConfigureLogging applies LOG_LEVEL (default "info") and LOG_FORMAT
// ("json" or text) from the environment to Log.
func ConfigureLogging() {
	level, err := logrus.ParseLevel(envOr("LOG_LEVEL", "info"))
	if err != nil {
		level = logrus.InfoLevel
	}
	Log.SetLevel(level)

	if strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		Log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		Log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// SetLogOutput redirects Log.
func SetLogOutput(w io.Writer) {
	Log.SetOutput(w)
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
