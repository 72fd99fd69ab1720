package accounts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hedeqiang/pulse/event"
)

const (
	addrA = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	addrB = "0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359"
)

func newWatcherWithRecorder(t *testing.T) (*Watcher, *[]event.AccountsChanged) {
	t.Helper()
	bus := event.NewBus(nil)
	var changes []event.AccountsChanged
	bus.On(event.TypeAccountsChanged, func(e event.Event) {
		changes = append(changes, e.(event.AccountsChanged))
	})
	return NewWatcher(bus, nil), &changes
}

func TestWatcherStartsEmpty(t *testing.T) {
	w, changes := newWatcherWithRecorder(t)

	assert.Empty(t, w.Current())
	w.Observe(nil)
	w.Observe([]string{})
	assert.Empty(t, *changes, "observing emptiness while empty emits nothing")
}

func TestWatcherEmitsOnChange(t *testing.T) {
	w, changes := newWatcherWithRecorder(t)

	w.Observe([]string{addrA, addrB})
	require.Len(t, *changes, 1)
	assert.Equal(t, []string{addrA, addrB}, (*changes)[0].Accounts)
	assert.Equal(t, []string{addrA, addrB}, w.Current())
}

func TestWatcherIdempotence(t *testing.T) {
	w, changes := newWatcherWithRecorder(t)

	w.Observe([]string{addrA})
	w.Observe([]string{addrA})
	w.Observe([]string{addrA})
	assert.Len(t, *changes, 1, "repeated observation of the same accounts never double-fires")
}

func TestWatcherNormalizesCaseVariants(t *testing.T) {
	w, changes := newWatcherWithRecorder(t)

	w.Observe([]string{"0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed"})
	w.Observe([]string{"0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED"})

	require.Len(t, *changes, 1, "case variants of the same address are the same account")
	assert.Equal(t, []string{addrA}, w.Current(), "the snapshot holds the checksum form")
}

func TestWatcherOrderMatters(t *testing.T) {
	w, changes := newWatcherWithRecorder(t)

	w.Observe([]string{addrA, addrB})
	w.Observe([]string{addrB, addrA})

	require.Len(t, *changes, 2, "a reordered sequence is a different sequence")
	assert.Equal(t, []string{addrB, addrA}, (*changes)[1].Accounts)
}

func TestWatcherEmitsEmptyTransition(t *testing.T) {
	w, changes := newWatcherWithRecorder(t)

	w.Observe([]string{addrA})
	w.Observe(nil)

	require.Len(t, *changes, 2)
	assert.Empty(t, (*changes)[1].Accounts)
	assert.Empty(t, w.Current())
}

func TestWatcherDefensiveCopies(t *testing.T) {
	w, changes := newWatcherWithRecorder(t)

	input := []string{addrA}
	w.Observe(input)
	input[0] = "mutated"
	assert.Equal(t, []string{addrA}, w.Current(), "the snapshot must not alias caller input")

	(*changes)[0].Accounts[0] = "mutated"
	assert.Equal(t, []string{addrA}, w.Current(), "the snapshot must not alias emitted payloads")

	w.Current()[0] = "mutated"
	assert.Equal(t, []string{addrA}, w.Current(), "reads are copies")
}

func TestWatcherPassesNonAddressesVerbatim(t *testing.T) {
	w, changes := newWatcherWithRecorder(t)

	w.Observe([]string{"account-alias", addrA})
	require.Len(t, *changes, 1)
	assert.Equal(t, []string{"account-alias", addrA}, w.Current())
}
