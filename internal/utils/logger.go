package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

var (
	CurrentLevel    LogLevel = LevelWarn
	ShowBackendInfo bool
)

var (
	logger = log.New(os.Stderr, "", log.LstdFlags)
	output = termenv.NewOutput(os.Stderr)
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel maps a config value such as "debug" or "WARN" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", s)
}

// SetOutput redirects all log output to w. Colors are only emitted when w is a terminal.
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
	output = termenv.NewOutput(w)
}

func levelColor(level LogLevel) termenv.Color {
	switch level {
	case LevelDebug:
		return termenv.ANSICyan
	case LevelInfo:
		return termenv.ANSIBlue
	case LevelWarn:
		return termenv.ANSIYellow
	default:
		return termenv.ANSIRed
	}
}

func logMessage(level LogLevel, format string, v ...interface{}) {
	if level < CurrentLevel {
		return
	}
	emit(level, format, v...)
}

func emit(level LogLevel, format string, v ...interface{}) {
	prefix := output.String("[" + level.String() + "]").Foreground(levelColor(level)).String()
	logger.Printf(prefix+" "+format, v...)
}

func Info(format string, v ...interface{})  { logMessage(LevelInfo, format, v...) }
func Debug(format string, v ...interface{}) { logMessage(LevelDebug, format, v...) }
func Warn(format string, v ...interface{})  { logMessage(LevelWarn, format, v...) }
func Error(format string, v ...interface{}) { logMessage(LevelError, format, v...) }

// BackendLogCallback forwards native library trace output (raylib numbering) into the leveled log.
func BackendLogCallback(level int, text string) {
	tag := output.String("[BACKEND]").Foreground(termenv.ANSIMagenta).String()
	formatted := tag + " " + text
	switch level {
	case 1, 2: // LOG_TRACE, LOG_DEBUG
		Debug("%s", formatted)
	case 3: // LOG_INFO
		if ShowBackendInfo {
			emit(LevelInfo, "%s", formatted)
		} else {
			Info("%s", formatted)
		}
	case 4: // LOG_WARNING
		Warn("%s", formatted)
	case 5, 6: // LOG_ERROR, LOG_FATAL
		Error("%s", formatted)
	}
}
