package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

var (
	debugLogger *log.Logger

	DebugEnabled = false

	logFile *os.File
)

// InitLogging sets up logging based on configuration. Nothing is written
// unless debug mode is on.
func InitLogging(debugMode bool, logPath string) error {
	DebugEnabled = debugMode

	if DebugEnabled && logPath != "" {
		logDir := filepath.Dir(logPath)
		err := os.MkdirAll(logDir, 0o755)
		if err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}

		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}

		logFile = f
		debugLogger = newLogger(f)
	}

	return nil
}

// SetOutput redirects debug logging to w and enables it.
func SetOutput(w io.Writer) {
	DebugEnabled = true
	debugLogger = newLogger(w)
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, "", log.Ldate|log.Ltime|log.Lshortfile)
}

// Close closes the log file if open.
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	debugLogger = nil
}

func Infof(format string, v ...interface{}) {
	logf("[INFO] ", format, v...)
}

// Errorf logs an error message to the file if debug mode is enabled.
func Errorf(format string, v ...interface{}) {
	logf("[ERROR] ", format, v...)
}

func Debugf(format string, v ...interface{}) {
	logf("[DEBUG] ", format, v...)
}

func Warnf(format string, v ...interface{}) {
	logf("[WARNING] ", format, v...)
}

func logf(level, format string, v ...interface{}) {
	if DebugEnabled && debugLogger != nil {
		// depth 3 reports the caller of Infof and friends
		debugLogger.Output(3, level+fmt.Sprintf(format, v...))
	}
}
