package client

import (
	"net/http"
	"time"

	"github.com/hedeqiang/pulse/log"
	"github.com/hedeqiang/pulse/retry"
)

// Config holds the settings shared by the HTTP and WebSocket clients.
type Config struct {
	// Logger receives client diagnostics. Defaults to a no-op logger.
	Logger log.Logger

	// Header is sent with every HTTP request and with the WebSocket
	// handshake.
	Header http.Header

	// Retry retries transport-level failures of HTTP calls. Errors answered
	// by the endpoint are never retried. nil disables retries.
	Retry retry.Strategy

	// Breaker short-circuits HTTP calls to an unhealthy endpoint.
	// nil disables it.
	Breaker *retry.Breaker

	// HTTPClient overrides the underlying *http.Client.
	HTTPClient *http.Client

	// HandshakeTimeout bounds the WebSocket handshake.
	HandshakeTimeout time.Duration

	// PingPeriod is the WebSocket keepalive interval. PongWait is how long
	// to wait for the peer's pong before declaring the connection dead; it
	// must be longer than PingPeriod.
	PingPeriod time.Duration
	PongWait   time.Duration

	// WriteTimeout bounds a single WebSocket frame write.
	WriteTimeout time.Duration

	// Reconnect redials a dropped WebSocket connection, stopping on Close.
	// nil disables reconnection.
	Reconnect retry.Strategy

	// ChainProbe controls whether the client issues an eth_chainId call
	// after connecting and reports the result through Handler.HandleConnect.
	ChainProbe bool
}

// DefaultConfig returns the configuration Dial starts from.
func DefaultConfig() Config {
	return Config{
		Logger:           log.NewNop(),
		HandshakeTimeout: 10 * time.Second,
		PingPeriod:       54 * time.Second,
		PongWait:         60 * time.Second,
		WriteTimeout:     10 * time.Second,
		ChainProbe:       true,
	}
}

// Option configures a client.
type Option func(*Config)

// WithLogger sets the logger for client diagnostics.
func WithLogger(l log.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithHeader sets extra headers for requests and the WebSocket handshake.
func WithHeader(h http.Header) Option {
	return func(c *Config) {
		c.Header = h
	}
}

// WithRetry sets the retry strategy for transport-level HTTP failures.
func WithRetry(s retry.Strategy) Option {
	return func(c *Config) {
		c.Retry = s
	}
}

// WithBreaker sets a circuit breaker for HTTP calls.
func WithBreaker(b *retry.Breaker) Option {
	return func(c *Config) {
		c.Breaker = b
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = hc
	}
}

// WithHandshakeTimeout bounds the WebSocket handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.HandshakeTimeout = d
	}
}

// WithKeepalive sets the WebSocket ping interval and pong deadline.
func WithKeepalive(pingPeriod, pongWait time.Duration) Option {
	return func(c *Config) {
		c.PingPeriod = pingPeriod
		c.PongWait = pongWait
	}
}

// WithWriteTimeout bounds a single WebSocket frame write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.WriteTimeout = d
	}
}

// WithReconnect enables WebSocket reconnection with the given backoff.
func WithReconnect(s retry.Strategy) Option {
	return func(c *Config) {
		c.Reconnect = s
	}
}

// WithoutChainProbe disables the eth_chainId probe after connecting.
func WithoutChainProbe() Option {
	return func(c *Config) {
		c.ChainProbe = false
	}
}
