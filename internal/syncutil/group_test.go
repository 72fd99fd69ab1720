package syncutil

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupStopWaitsForGoroutines(t *testing.T) {
	g := NewGroup(context.Background())

	var exited atomic.Int32
	for i := 0; i < 4; i++ {
		g.Go(func(ctx context.Context) {
			<-ctx.Done()
			exited.Add(1)
		})
	}

	g.Stop()
	assert.Equal(t, int32(4), exited.Load())
}

func TestGroupCancelFromInside(t *testing.T) {
	g := NewGroup(context.Background())

	g.Go(func(ctx context.Context) {
		g.Cancel()
	})

	select {
	case <-g.Quit():
	case <-time.After(time.Second):
		t.Fatal("group was not cancelled")
	}
	g.Stop()
}

func TestGroupInheritsParentCancellation(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	g := NewGroup(parent)

	cancel()
	select {
	case <-g.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("group context did not follow parent")
	}
	require.Error(t, g.Context().Err())
}
