package logger

// Noop discards everything. It is the default logger of every
// eventship component.
type Noop struct{}

var (
	_ Logger = Noop{}
	_ Logger = &Noop{}
)

func (Noop) Debugf(string, ...any) {}
func (Noop) Infof(string, ...any)  {}
func (Noop) Warnf(string, ...any)  {}
func (Noop) Errorf(string, ...any) {}
