package pulse

import "errors"

var (
	// ErrClosed is the cause attached to rejections of a closed Provider.
	ErrClosed = errors.New("pulse: provider closed")
)
