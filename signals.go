package pulse

import (
	"github.com/hedeqiang/pulse/client"
)

// sink is the provider's client.Handler. It is unexported so lifecycle
// signals can only originate from the client, never from application code.
type sink struct {
	p *Provider
}

func (s *sink) HandleConnect(chainID string) {
	s.p.tracker.SignalConnect(chainID)
}

func (s *sink) HandleChainChanged(chainID string) {
	s.p.tracker.SignalChainChanged(chainID)
}

func (s *sink) HandleDisconnect(code int, reason string) {
	s.p.tracker.SignalDisconnect(code, reason)
}

func (s *sink) HandleAccounts(accounts []string) {
	s.p.accounts.Observe(accounts)
}

func (s *sink) HandleNotification(n client.Notification) {
	s.p.router.Route(n)
}
