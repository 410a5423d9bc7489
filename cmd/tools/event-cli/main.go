package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/annel0/floodworld/internal/eventbus"
)

const (
	defaultServerAddr = "nats://127.0.0.1:4222"
	timeFormat        = "2006-01-02T15:04:05Z"
)

func main() {
	var (
		serverAddr = flag.String("server", defaultServerAddr, "NATS server address")
		stream     = flag.String("stream", "FLOOD", "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats")
		eventTypes = flag.String("types", "", "Event types filter (comma-separated)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
		wait       = flag.Duration("wait", 2*time.Second, "How long tail and stats read stream history")
	)
	flag.Parse()

	bus, err := eventbus.NewJetStreamBus(*serverAddr, *stream, 24*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to connect to server: %v", err)
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	filter := eventbus.Filter{Types: parseStringList(*eventTypes)}

	switch *command {
	case "tail":
		if _, err := tailEvents(ctx, bus, filter, *limit, *follow, *wait); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "stats":
		if err := showStats(ctx, bus, filter, *wait); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats")
		os.Exit(1)
	}
}

// tailEvents выводит события стрима и возвращает их число; без follow чтение истории ограничено wait
func tailEvents(ctx context.Context, bus eventbus.EventBus, filter eventbus.Filter, limit int, follow bool, wait time.Duration) (int, error) {
	fmt.Printf("🎬 Tailing events (limit: %d, follow: %v)\n", limit, follow)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var mu sync.Mutex
	eventCount := 0

	sub, err := bus.Subscribe(ctx, filter, func(_ context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		if !follow && eventCount >= limit {
			return
		}
		printEvent(ev)
		eventCount++
		if !follow && eventCount >= limit {
			cancel()
		}
	})
	if err != nil {
		return 0, fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	if follow {
		<-ctx.Done()
	} else {
		// история короче limit: ждём не дольше wait
		select {
		case <-ctx.Done():
		case <-time.After(wait):
		}
	}

	mu.Lock()
	defer mu.Unlock()
	fmt.Printf("\n📊 Total events: %d\n", eventCount)
	return eventCount, nil
}

// showStats считает события по типам за время ожидания
func showStats(ctx context.Context, bus eventbus.EventBus, filter eventbus.Filter, wait time.Duration) error {
	fmt.Println("📊 Event statistics")

	var mu sync.Mutex
	counts := make(map[string]int)
	var last *eventbus.SeaLevelRaised

	sub, err := bus.Subscribe(ctx, filter, func(_ context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		counts[ev.EventType]++
		if ev.EventType == eventbus.EventSeaLevelRaised {
			var p eventbus.SeaLevelRaised
			if err := ev.Decode(&p); err == nil {
				last = &p
			}
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	select {
	case <-ctx.Done():
	case <-time.After(wait):
	}

	mu.Lock()
	defer mu.Unlock()

	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	for _, t := range types {
		fmt.Printf("  %-28s %d\n", t, counts[t])
	}
	if last != nil {
		fmt.Printf("\n🌊 Last tick %d: sea level %d, saturated=%v\n", last.Tick, last.SeaLevel, last.Saturated)
	}
	return nil
}

// printEvent выводит одно событие в читаемом виде
func printEvent(ev *eventbus.Envelope) {
	fmt.Printf("[%s] %-26s src=%s id=%s\n", ev.Timestamp.Format(timeFormat), ev.EventType, ev.Source, ev.ID)

	switch ev.EventType {
	case eventbus.EventWorldGenerated:
		var p eventbus.WorldGenerated
		if err := ev.Decode(&p); err == nil {
			fmt.Printf("    🌍 %dx%dx%d seed=%d terrain=%d water=%d trees=%d\n",
				p.Width, p.Height, p.Depth, p.Seed, p.Terrain, p.Water, p.Trees)
		}
	case eventbus.EventSeaLevelRaised:
		var p eventbus.SeaLevelRaised
		if err := ev.Decode(&p); err == nil {
			fmt.Printf("    🌊 tick=%d sea_level=%d columns=%d created=%d flooded=%d saturated=%v\n",
				p.Tick, p.SeaLevel, p.Columns, p.Created, p.Converted, p.Saturated)
		}
	}
}

// parseStringList разбирает список через запятую
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
