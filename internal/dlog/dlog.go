// Package dlog provides the named-logger convention used by lito's outer
// layer, the litodump CLI. The
// decoder core itself never imports this package: logging on the
// per-instruction hot path would defeat the zero-allocation guarantee the
// core gives callers.
package dlog

import "github.com/sirupsen/logrus"

// Logger wraps a *logrus.Entry scoped to one package/component pair.
type Logger struct {
	entry *logrus.Entry
}

var base = logrus.New()

func init() {
	base.SetLevel(logrus.InfoLevel)
}

// SetLevel adjusts the level for every Logger returned by NamedLogger, past
// and future — they all share the same underlying *logrus.Logger.
func SetLevel(level logrus.Level) {
	base.SetLevel(level)
}

// NamedLogger returns a Logger tagged with pkg and component fields, mirroring
// the teacher's log.NamedLogger(pkg, component string) call convention.
func NamedLogger(pkg string, component string) *Logger {
	return &Logger{entry: base.WithFields(logrus.Fields{
		"pkg":       pkg,
		"component": component,
	})}
}

// WithField returns a derived Logger carrying one additional structured
// field, without mutating the receiver.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value)}
}

func (l *Logger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *Logger) Tracef(format string, args ...interface{}) { l.entry.Tracef(format, args...) }
func (l *Logger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *Logger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *Logger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
