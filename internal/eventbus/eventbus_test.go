package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope_RoundTripPayload(t *testing.T) {
	ev, err := NewEnvelope("sim", EventSeaLevelRaised, 5, SeaLevelRaised{Tick: 2, SeaLevel: 5, Plane: 5, Columns: 7})
	require.NoError(t, err)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, "sim", ev.Source)
	assert.Equal(t, EventSeaLevelRaised, ev.EventType)
	assert.Equal(t, 1, ev.Version)

	var p SeaLevelRaised
	require.NoError(t, ev.Decode(&p))
	assert.Equal(t, uint64(2), p.Tick)
	assert.Equal(t, 5, p.SeaLevel)
	assert.Equal(t, 7, p.Columns)
}

func TestNewEnvelope_UniqueIDs(t *testing.T) {
	a, err := NewEnvelope("sim", EventWorldGenerated, 0, WorldGenerated{})
	require.NoError(t, err)
	b, err := NewEnvelope("sim", EventWorldGenerated, 0, WorldGenerated{})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewEnvelope_UnsupportedPayload(t *testing.T) {
	_, err := NewEnvelope("sim", EventWorldGenerated, 0, make(chan int))
	assert.Error(t, err)
}

func TestMemoryBus_FilteredDelivery(t *testing.T) {
	bus := NewMemoryBus(16)

	var mu sync.Mutex
	var all, raised []string

	_, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		all = append(all, ev.EventType)
		mu.Unlock()
	})
	require.NoError(t, err)

	_, err = bus.Subscribe(context.Background(), Filter{Types: []string{EventSeaLevelRaised}}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		raised = append(raised, ev.EventType)
		mu.Unlock()
	})
	require.NoError(t, err)

	gen, err := NewEnvelope("sim", EventWorldGenerated, 5, WorldGenerated{Width: 4})
	require.NoError(t, err)
	up, err := NewEnvelope("sim", EventSeaLevelRaised, 5, SeaLevelRaised{Tick: 1})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), gen))
	require.NoError(t, bus.Publish(context.Background(), up))
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{EventWorldGenerated, EventSeaLevelRaised}, all)
	assert.Equal(t, []string{EventSeaLevelRaised}, raised)

	stats := bus.Metrics()
	assert.Equal(t, uint64(2), stats.Published)
	assert.Equal(t, uint64(3), stats.Consumed)
	assert.Equal(t, 0, stats.InFlight)
}

func TestMemoryBus_SourceFilter(t *testing.T) {
	f := Filter{Sources: []string{"api"}}
	assert.True(t, matchFilter(&Envelope{Source: "api", EventType: "x"}, f))
	assert.False(t, matchFilter(&Envelope{Source: "sim", EventType: "x"}, f))
	assert.True(t, matchFilter(&Envelope{Source: "sim"}, Filter{}))
}

func TestMemoryBus_PublishAfterClose(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	ev, err := NewEnvelope("sim", EventWorldGenerated, 9, WorldGenerated{})
	require.NoError(t, err)
	assert.ErrorIs(t, bus.Publish(context.Background(), ev), ErrClosed)
}

func TestMemoryBus_Unsubscribe(t *testing.T) {
	bus := NewMemoryBus(4)

	var mu sync.Mutex
	count := 0
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	require.NoError(t, err)
	sub.Unsubscribe()

	ev, err := NewEnvelope("sim", EventWorldGenerated, 5, WorldGenerated{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 0, count)
}

func TestMetricsExporter_Collect(t *testing.T) {
	bus := NewMemoryBus(4)
	reg := prometheus.NewRegistry()
	me := NewMetricsExporter(bus, reg)

	ev, err := NewEnvelope("sim", EventWorldGenerated, 5, WorldGenerated{})
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), ev))
	require.NoError(t, bus.Close())

	prev := me.collect(Stats{})
	assert.Equal(t, uint64(1), prev.Published)
	assert.Equal(t, 1.0, testutil.ToFloat64(me.published))

	// повторный сбор без новых событий не меняет счётчики
	me.collect(prev)
	assert.Equal(t, 1.0, testutil.ToFloat64(me.published))
	assert.Equal(t, 0.0, testutil.ToFloat64(me.dropped))
}
