package scans

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// LogLevel represents severity.
type LogLevel int32

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[string]LogLevel{
	"debug":   LevelDebug,
	"info":    LevelInfo,
	"warn":    LevelWarn,
	"warning": LevelWarn,
	"error":   LevelError,
}

var currentLevel atomic.Int32

var baseLogger = log.New(os.Stderr, "", log.Ldate|log.Ltime)

func init() {
	currentLevel.Store(int32(LevelInfo))
}

// SetLogLevel parses and sets the global log level. Unknown names are ignored.
func SetLogLevel(s string) {
	l, ok := levelNames[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return
	}
	currentLevel.Store(int32(l))
}

// SetLogOutput redirects log output (used by tests).
func SetLogOutput(w io.Writer) {
	baseLogger.SetOutput(w)
}

func getLevel() LogLevel { return LogLevel(currentLevel.Load()) }

func logf(l LogLevel, format string, args ...any) {
	if getLevel() > l {
		return
	}
	prefix := "INFO"
	switch l {
	case LevelDebug:
		prefix = "DEBUG"
	case LevelWarn:
		prefix = "WARN"
	case LevelError:
		prefix = "ERROR"
	}
	// Without args the input is a plain message; formatting it would mangle
	// literal % characters (file names like "90%_loaded.txt" are real).
	if len(args) == 0 {
		baseLogger.Printf("[%s] %s", prefix, format)
		return
	}
	baseLogger.Printf("[%s] %s", prefix, fmt.Sprintf(format, args...))
}

// Public helpers
func Debugf(format string, a ...any) { logf(LevelDebug, format, a...) }
func Infof(format string, a ...any)  { logf(LevelInfo, format, a...) }
func Warnf(format string, a ...any)  { logf(LevelWarn, format, a...) }
func Errorf(format string, a ...any) { logf(LevelError, format, a...) }

// TimeTrack logs the duration of a phase at debug level.
func TimeTrack(start time.Time, label string) {
	Debugf("%s took %s", label, time.Since(start))
}
