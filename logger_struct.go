// Logger struct definition
package go_akrypt

import "sync"

// LoggerTags defines the type for logger tags
type LoggerTags = uint32

// Logger routes library log lines to an application callback when one is installed.
// Without a callback every line goes to github.com/go-i2p/logger.
type Logger struct {
	mu        sync.RWMutex
	callbacks *LoggerCallbacks
	logLevel  int
}
