// Package notify routes server-pushed notifications onto the event bus as
// message events.
package notify

import (
	"encoding/json"

	"github.com/hedeqiang/pulse/client"
	"github.com/hedeqiang/pulse/event"
	"github.com/hedeqiang/pulse/log"
)

// Router turns raw client notifications into message events. Every push
// yields exactly one emission; nothing is filtered or deduplicated.
type Router struct {
	bus    *event.Bus
	logger log.Logger
}

// NewRouter creates a Router emitting through bus. A nil logger discards
// diagnostics.
func NewRouter(bus *event.Bus, logger log.Logger) *Router {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Router{
		bus:    bus,
		logger: logger,
	}
}

// Route emits one message event for the notification. An eth_subscription
// push whose payload parses into a subscription id and result is wrapped
// into a SubscriptionPayload; anything else carries the raw data under the
// client-defined type.
func (r *Router) Route(n client.Notification) {
	if n.Type == event.MessageEthSubscription {
		var payload event.SubscriptionPayload
		if err := json.Unmarshal(n.Data, &payload); err == nil && payload.Subscription != "" {
			r.bus.Emit(event.Message{Type: event.MessageEthSubscription, Data: payload})
			return
		}
		r.logger.Warn("subscription push did not parse, forwarding raw", "data", string(n.Data))
	}
	r.bus.Emit(event.Message{Type: n.Type, Data: n.Data})
}
