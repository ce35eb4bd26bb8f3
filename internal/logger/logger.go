package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/mealplan/internal/constants"
)

var (
	// Logger is the global logger instance
	Logger *log.Logger

	rotator *lumberjack.Logger
)

// Config holds logger configuration
type Config struct {
	Debug     bool
	ConfigDir string
	// Output replaces the rotating log file when set.
	Output io.Writer
}

// Init initializes the global logger. Logs go to a rotating file under
// ConfigDir; debug mode also writes to stderr and lowers the level.
func Init(cfg Config) error {
	var fileWriter io.Writer = cfg.Output
	if fileWriter == nil {
		logDir := filepath.Join(cfg.ConfigDir, constants.LogDirName)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			return err
		}

		rotator = &lumberjack.Logger{
			Filename:   filepath.Join(logDir, constants.LogFileName),
			MaxSize:    constants.LogMaxSizeMB,
			MaxBackups: constants.LogMaxBackups,
			MaxAge:     constants.LogMaxAgeDays,
			Compress:   true,
		}
		fileWriter = rotator
	}

	level := log.InfoLevel
	writer := fileWriter
	if cfg.Debug {
		level = log.DebugLevel
		writer = io.MultiWriter(os.Stderr, fileWriter)
	}

	Logger = log.NewWithOptions(writer, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          constants.AppName,
	})

	return nil
}

// Close flushes and closes the rotating log file, if any.
func Close() error {
	if rotator == nil {
		return nil
	}
	err := rotator.Close()
	rotator = nil
	return err
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
