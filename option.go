package pulse

import (
	"github.com/hedeqiang/pulse/event"
	"github.com/hedeqiang/pulse/log"
	"github.com/hedeqiang/pulse/metrics"
	"github.com/hedeqiang/pulse/middleware"
)

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger for provider diagnostics.
func WithLogger(l log.Logger) Option {
	return func(p *Provider) {
		p.logger = l
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.Metrics) Option {
	return func(p *Provider) {
		p.metrics = m
	}
}

// WithMiddleware adds middleware to the request pipeline.
func WithMiddleware(mw ...middleware.Middleware) Option {
	return func(p *Provider) {
		p.middlewares = append(p.middlewares, mw...)
	}
}

// WithBus sets a custom event bus.
func WithBus(b *event.Bus) Option {
	return func(p *Provider) {
		p.bus = b
	}
}

// WithStreamBuffer sets the channel capacity of streams returned by Events.
func WithStreamBuffer(n int) Option {
	return func(p *Provider) {
		p.streamBuf = n
	}
}
