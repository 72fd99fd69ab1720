// Package accounts tracks the account list the endpoint exposes and emits
// accountsChanged when it moves.
package accounts

import (
	"slices"
	"sync"

	"github.com/hedeqiang/pulse/event"
	"github.com/hedeqiang/pulse/log"
)

// Watcher holds the current accounts snapshot. The snapshot is replaced only
// through Observe; applications read copies.
type Watcher struct {
	signalMu sync.Mutex // serializes observations so emission order matches

	mu       sync.Mutex
	accounts []string

	bus    *event.Bus
	logger log.Logger
}

// NewWatcher creates a Watcher emitting through bus. A nil logger discards
// diagnostics.
func NewWatcher(bus *event.Bus, logger log.Logger) *Watcher {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Watcher{
		bus:    bus,
		logger: logger,
	}
}

// Observe compares accounts against the stored snapshot using sequence
// equality. A different sequence (including empty to non-empty and back)
// replaces the snapshot and emits accountsChanged; an identical one emits
// nothing. Hex addresses are normalized to their EIP-55 checksum form before
// comparison, so case-variant spellings of the same accounts never double-fire.
func (w *Watcher) Observe(accounts []string) {
	normalized := normalize(accounts)

	w.signalMu.Lock()
	defer w.signalMu.Unlock()

	w.mu.Lock()
	if slices.Equal(w.accounts, normalized) {
		w.mu.Unlock()
		return
	}
	w.accounts = normalized
	w.mu.Unlock()

	w.logger.Debug("accounts changed", "count", len(normalized))
	w.bus.Emit(event.AccountsChanged{Accounts: slices.Clone(normalized)})
}

// Current returns a copy of the accounts snapshot.
func (w *Watcher) Current() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Clone(w.accounts)
}

// normalize checksums every well-formed hex address and passes anything else
// through verbatim.
func normalize(accounts []string) []string {
	if len(accounts) == 0 {
		return nil
	}
	out := make([]string, len(accounts))
	for i, a := range accounts {
		if c, err := Checksum(a); err == nil {
			out[i] = c
		} else {
			out[i] = a
		}
	}
	return out
}
