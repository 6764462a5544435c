package dht

// Logging indirection. The engine logs through a small interface rather
// than calling glog directly, so a caller embedding this package can
// substitute its own sink; the default implementation defers to glog, the
// same library the teacher uses throughout (in place of the defunct
// code.google.com/p/log4go the teacher's own deprecated.go still imports).

import (
	log "github.com/golang/glog"
)

// Logger is the sink the engine writes diagnostic output to.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// glogLogger is the default Logger, backed by glog's verbosity-leveled
// logging.
type glogLogger struct{}

func (glogLogger) Debugf(format string, args ...interface{}) {
	if log.V(3) {
		log.Infof(format, args...)
	}
}

func (glogLogger) Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func (glogLogger) Warningf(format string, args ...interface{}) {
	log.Warningf(format, args...)
}

func (glogLogger) Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// nullLogger discards everything, useful for tests that don't want glog's
// flag-parsing baggage.
type nullLogger struct{}

func (nullLogger) Debugf(format string, args ...interface{})   {}
func (nullLogger) Infof(format string, args ...interface{})    {}
func (nullLogger) Warningf(format string, args ...interface{}) {}
func (nullLogger) Errorf(format string, args ...interface{})   {}
