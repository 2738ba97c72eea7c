package core

// Logger is the subset of the leveled logger used by the rendering packages
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Noticef(format string, v ...interface{})
}

// NopLogger discards every message
type NopLogger struct{}

func (NopLogger) Debugf(format string, v ...interface{})  {}
func (NopLogger) Infof(format string, v ...interface{})   {}
func (NopLogger) Noticef(format string, v ...interface{}) {}
