package z

import "golang.org/x/net/trace"

var (
	// NoEventLog discards everything written to it, it is used whenever event logging is disabled.
	NoEventLog trace.EventLog = nilEventLog{}
)

type nilEventLog struct{}

func (nel nilEventLog) Printf(format string, a ...interface{}) {}

func (nel nilEventLog) Errorf(format string, a ...interface{}) {}

func (nel nilEventLog) Finish() {}

// NewEventLog returns a trace.EventLog for the family and title provided if enabled is true, otherwise NoEventLog.
func NewEventLog(family, title string, enabled bool) trace.EventLog {
	if !enabled {
		return NoEventLog
	}

	return trace.NewEventLog(family, title)
}
