package log

// Nop is a Logger that discards everything.
type Nop struct{}

// NewNop returns a Logger that discards all messages.
func NewNop() Nop {
	return Nop{}
}

func (Nop) Debug(string, ...interface{}) {}
func (Nop) Info(string, ...interface{})  {}
func (Nop) Warn(string, ...interface{})  {}
func (Nop) Error(string, ...interface{}) {}

// With returns the Nop logger itself.
func (n Nop) With(...interface{}) Logger { return n }
