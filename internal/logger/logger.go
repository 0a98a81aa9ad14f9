package logger

import (
	"io"
	"os"
	"strings"

	"storefront-web/internal/config"

	log "github.com/sirupsen/logrus"
)

// Setup configures the standard logrus logger from the LOG_* settings.
func Setup(cfg config.Log, environment string) {
	Configure(log.StandardLogger(), cfg, os.Stdout)
	log.AddHook(&environmentHook{environment: environment})
}

func Configure(logger *log.Logger, cfg config.Log, out io.Writer) {
	logger.SetOutput(out)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
}

type environmentHook struct {
	environment string
}

func (h *environmentHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *environmentHook) Fire(entry *log.Entry) error {
	entry.Data["env"] = h.environment
	return nil
}
