package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the rotating log file written under the log directory.
const LogFileName = "strokemodel.log"

// Init installs the global logger with dual sinks: os.Stderr and a rotating file.
// It is called before config.Load, so it reads LOGS_FOLDER itself.
func Init(verbose bool) error {
	// 0. Load .env from binary directory to ensure LOGS_FOLDER is available.
	exePath, exeErr := os.Executable()
	if exeErr == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
	}

	// 1. Determine log level
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	// 2. Console writer, never stdout (MCP uses it for protocol traffic)
	isTerminal := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	consoleWriter := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !isTerminal,
	}

	// 3. Rotating file writer
	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		if exeErr == nil {
			logDir = filepath.Join(filepath.Dir(exePath), "logs")
		} else {
			logDir = "logs"
		}
	}
	fileWriter, err := NewFileWriter(logDir)
	if err != nil {
		return err
	}

	// 4. Combine and install
	log.Logger = New(io.Writer(consoleWriter), fileWriter)
	return nil
}

// NewFileWriter checks that dir is writable and returns a rotating writer for LogFileName in it.
func NewFileWriter(dir string) (*lumberjack.Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %q: %w", dir, err)
	}

	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return nil, fmt.Errorf("log directory %q is not writable: %w", dir, err)
	}
	_ = os.Remove(testFile)

	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, LogFileName),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}, nil
}

// New builds a timestamped logger fanning out to every writer.
func New(writers ...io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()
}
