package notify

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedeqiang/pulse/client"
	"github.com/hedeqiang/pulse/event"
)

func newRouterWithRecorder(t *testing.T) (*Router, *[]event.Message) {
	t.Helper()
	bus := event.NewBus(nil)
	var messages []event.Message
	bus.On(event.TypeMessage, func(e event.Event) {
		messages = append(messages, e.(event.Message))
	})
	return NewRouter(bus, nil), &messages
}

func TestRouteWrapsSubscriptionPushes(t *testing.T) {
	r, messages := newRouterWithRecorder(t)

	r.Route(client.Notification{
		Type: "eth_subscription",
		Data: json.RawMessage(`{"subscription":"0xcafe","result":{"number":"0x1b4"}}`),
	})

	require.Len(t, *messages, 1)
	msg := (*messages)[0]
	assert.Equal(t, event.MessageEthSubscription, msg.Type)

	payload, ok := msg.Data.(event.SubscriptionPayload)
	require.True(t, ok, "subscription pushes carry a typed payload")
	assert.Equal(t, "0xcafe", payload.Subscription)
	assert.JSONEq(t, `{"number":"0x1b4"}`, string(payload.Result))
}

func TestRouteForwardsGenericPushes(t *testing.T) {
	r, messages := newRouterWithRecorder(t)

	raw := json.RawMessage(`{"anything":"goes"}`)
	r.Route(client.Notification{Type: "shh_message", Data: raw})

	require.Len(t, *messages, 1)
	msg := (*messages)[0]
	assert.Equal(t, "shh_message", msg.Type)
	assert.Equal(t, raw, msg.Data)
}

func TestRouteMalformedSubscriptionFallsBackToRaw(t *testing.T) {
	r, messages := newRouterWithRecorder(t)

	for _, data := range []string{
		`not json at all`,
		`{"result":{"number":"0x1"}}`, // no subscription id
		`42`,
	} {
		r.Route(client.Notification{Type: "eth_subscription", Data: json.RawMessage(data)})
	}

	require.Len(t, *messages, 3, "malformed pushes still yield exactly one emission each")
	for _, msg := range *messages {
		assert.Equal(t, "eth_subscription", msg.Type)
		_, typed := msg.Data.(event.SubscriptionPayload)
		assert.False(t, typed, "malformed payloads are forwarded raw")
	}
}

func TestRouteNeverDeduplicates(t *testing.T) {
	r, messages := newRouterWithRecorder(t)

	push := client.Notification{
		Type: "eth_subscription",
		Data: json.RawMessage(`{"subscription":"0xcafe","result":"0x1"}`),
	}
	for i := 0; i < 5; i++ {
		r.Route(push)
	}
	assert.Len(t, *messages, 5, "every raw push yields exactly one message")
}
