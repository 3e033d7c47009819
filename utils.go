package go_akrypt

import (
	"bufio"
	"os"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-i2p/logger"
)

var configRegex = regexp.MustCompile("\\s*([\\w.]+)=\\s*(.+)\\s*;\\s*")

// Logging utility functions

// LogInit initializes the logger with the specified level
func LogInit(level int) {
	logger.InitializeGoI2PLogger()

	switch level {
	case DEBUG:
		os.Setenv("DEBUG_I2P", "debug")
	case INFO:
		os.Setenv("DEBUG_I2P", "debug")
	case WARNING:
		os.Setenv("DEBUG_I2P", "warn")
	case ERROR:
		os.Setenv("DEBUG_I2P", "error")
	case FATAL:
		os.Setenv("DEBUG_I2P", "fatal")
		os.Setenv("WARNFAIL_I2P", "true")
	default:
		os.Setenv("DEBUG_I2P", "debug")
	}
}

// Debug logs a debug message with optional arguments.
func Debug(message string, args ...interface{}) {
	if libraryLogger.dispatch(DEBUG, message, args...) {
		return
	}
	if len(args) == 0 {
		logInstance.Debug(message)
		return
	}
	logInstance.Debugf(message, args...)
}

// Info logs an info message with optional arguments.
// Note: Info maps to Warn level in the logger.
func Info(message string, args ...interface{}) {
	if libraryLogger.dispatch(INFO, message, args...) {
		return
	}
	if len(args) == 0 {
		logInstance.Warn(message)
		return
	}
	logInstance.Warnf(message, args...)
}

// Warning logs a warning message with optional arguments.
func Warning(message string, args ...interface{}) {
	if libraryLogger.dispatch(WARNING, message, args...) {
		return
	}
	if len(args) == 0 {
		logInstance.Warn(message)
		return
	}
	logInstance.Warnf(message, args...)
}

// Error logs an error message with optional arguments.
func Error(message string, args ...interface{}) {
	if libraryLogger.dispatch(ERROR, message, args...) {
		return
	}
	if len(args) == 0 {
		logInstance.Error(message)
		return
	}
	logInstance.Errorf(message, args...)
}

// Fatal logs a fatal message with optional arguments.
// Note: Fatal maps to Error level in the logger and sets WARNFAIL_I2P.
func Fatal(message string, args ...interface{}) {
	if libraryLogger.dispatch(FATAL, message, args...) {
		return
	}
	os.Setenv("WARNFAIL_I2P", "true")
	if len(args) == 0 {
		logInstance.Error(message)
		return
	}
	logInstance.Errorf(message, args...)
}

// Config parsing utility functions

// ParseConfig parses a configuration file and calls the callback for each key-value pair.
// Lines have the form "key=value;"; anything else is skipped.
func ParseConfig(s string, cb func(string, string)) {
	file, err := os.Open(s)
	if err != nil {
		if !strings.Contains(err.Error(), "no such file") {
			Error("%s", err.Error())
		}
		return
	}
	defer file.Close()
	Debug("Parsing config file '%s'", s)
	scan := bufio.NewScanner(file)
	for scan.Scan() {
		line := scan.Text()
		groups := configRegex.FindStringSubmatch(line)
		if len(groups) != 3 {
			continue
		}
		cb(groups[1], groups[2])
	}
	if err := scan.Err(); err != nil {
		Error("reading input from %s config %s", s, err.Error())
	}
}

// secureZero overwrites key material before a buffer is dropped.
func secureZero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(b)
}
