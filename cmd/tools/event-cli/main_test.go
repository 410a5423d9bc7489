package main

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/floodworld/internal/eventbus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTailEvents_ShortHistoryStopsAfterWait(t *testing.T) {
	bus := eventbus.NewMemoryBus(4)
	defer bus.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		ev, err := eventbus.NewEnvelope("sim", eventbus.EventWorldGenerated, 5, eventbus.WorldGenerated{})
		if err == nil {
			_ = bus.Publish(context.Background(), ev)
		}
	}()

	start := time.Now()
	n, err := tailEvents(context.Background(), bus, eventbus.Filter{}, 5, false, 300*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestTailEvents_EmptyStream(t *testing.T) {
	bus := eventbus.NewMemoryBus(4)
	defer bus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	n, err := tailEvents(ctx, bus, eventbus.Filter{}, 10, false, 50*time.Millisecond)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, ctx.Err())
}
