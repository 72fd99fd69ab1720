package event

import "sync"

// Stream adapts bus listeners to channel consumption. Events are delivered
// to a buffered channel; when the consumer falls behind the buffer, events
// are dropped rather than blocking the emitting goroutine.
type Stream struct {
	ch   chan Event
	subs []*Subscription
	done chan struct{}
	once sync.Once
}

// NewStream subscribes to the given event types (all types when none are
// given) and delivers them on a channel with the given buffer size.
func NewStream(b *Bus, bufSize int, types ...Type) *Stream {
	if bufSize <= 0 {
		bufSize = 64
	}
	if len(types) == 0 {
		types = Types()
	}
	s := &Stream{
		ch:   make(chan Event, bufSize),
		done: make(chan struct{}),
	}
	for _, t := range types {
		s.subs = append(s.subs, b.On(t, s.send))
	}
	return s
}

// C returns the channel to read events from.
func (s *Stream) C() <-chan Event {
	return s.ch
}

// send delivers an event to the channel. Drops the event if the channel is full.
func (s *Stream) send(e Event) {
	select {
	case <-s.done:
	case s.ch <- e:
	default:
		// drop: consumer is not keeping up
	}
}

// Close detaches the stream from the bus. The channel is left open and
// drains; it never closes, so a receive loop should select on its own
// shutdown signal as well.
func (s *Stream) Close() {
	s.once.Do(func() {
		close(s.done)
		for _, sub := range s.subs {
			sub.Off()
		}
	})
}
