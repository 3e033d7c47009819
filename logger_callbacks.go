// LoggerCallbacks struct definition
package go_akrypt

// LoggerCallbacks provides callback functions for logging events
type LoggerCallbacks struct {
	Opaque interface{}
	OnLog  func(*Logger, LoggerTags, string)
}
