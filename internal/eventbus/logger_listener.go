package eventbus

import (
	"context"

	"github.com/annel0/floodworld/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// События мира дополнительно раскрываются в читаемую сводку.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus) error {
	_, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		logging.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))

		switch ev.EventType {
		case EventWorldGenerated:
			var p WorldGenerated
			if err := ev.Decode(&p); err == nil {
				logging.Info("🌍 Мир %dx%dx%d сгенерирован (seed=%d): terrain=%d water=%d trees=%d",
					p.Width, p.Height, p.Depth, p.Seed, p.Terrain, p.Water, p.Trees)
			}
		case EventSeaLevelRaised:
			var p SeaLevelRaised
			if err := ev.Decode(&p); err == nil {
				logging.Info("🌊 Тик %d: уровень моря %d, колонок=%d, создано=%d, затоплено=%d",
					p.Tick, p.SeaLevel, p.Columns, p.Created, p.Converted)
			}
		}
	})
	if err != nil {
		return err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return nil
}
