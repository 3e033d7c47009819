package go_akrypt

import (
	"fmt"

	"github.com/go-i2p/logger"
)

var logInstance = logger.GetGoI2PLogger()

// libraryLogger is the process-wide callback sink used by the Debug/Info/Warning/Error wrappers.
var libraryLogger = &Logger{logLevel: ERROR}

// SetLogCallback installs (or, with nil, removes) the application log sink and the
// minimum level forwarded to it. This mirrors initialising the library with a log function.
func SetLogCallback(callbacks *LoggerCallbacks, level int) {
	libraryLogger.mu.Lock()
	libraryLogger.callbacks = callbacks
	libraryLogger.mu.Unlock()
	libraryLogger.setLogLevel(level)
}

// dispatch hands a log line to the installed callback. It reports false when no callback
// is installed so the caller falls back to go-i2p/logger.
func (l *Logger) dispatch(tags LoggerTags, format string, args ...interface{}) bool {
	l.mu.RLock()
	callbacks := l.callbacks
	level := l.logLevel
	l.mu.RUnlock()

	if callbacks == nil || callbacks.OnLog == nil {
		return false
	}
	if int(tags&LEVEL_MASK) < level {
		return true
	}
	message := format
	if len(args) != 0 {
		message = fmt.Sprintf(format, args...)
	}
	callbacks.OnLog(l, tags, message)
	return true
}

func (l *Logger) setLogLevel(level int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch level {
	case DEBUG, INFO, WARNING, ERROR, FATAL:
		l.logLevel = level
	default:
		l.logLevel = ERROR
	}
}

// LogLevel returns the minimum level forwarded to the callback.
func (l *Logger) LogLevel() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.logLevel
}
