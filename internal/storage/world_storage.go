package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/annel0/floodworld/internal/logging"
	"github.com/annel0/floodworld/internal/world"
	"github.com/dgraph-io/badger/v3"
)

const snapshotPrefix = "snapshot:"

// ErrNoSnapshot - в хранилище нет ни одного снимка
var ErrNoSnapshot = errors.New("снимок не найден")

// WorldStorage хранит снимки сетки вокселей в BadgerDB
type WorldStorage struct {
	db      *badger.DB
	dbPath  string
	mutex   sync.RWMutex
	isReady bool
	logger  *logging.Logger
}

// NewWorldStorage создает новое хранилище мира
func NewWorldStorage(dataPath string) (*WorldStorage, error) {
	dbPath := filepath.Join(dataPath, "world")
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil // Отключаем логирование BadgerDB

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть BadgerDB: %w", err)
	}

	return &WorldStorage{
		db:      db,
		dbPath:  dbPath,
		isReady: true,
		logger:  logging.GetStorageLogger(),
	}, nil
}

// Close закрывает хранилище данных
func (ws *WorldStorage) Close() error {
	ws.mutex.Lock()
	defer ws.mutex.Unlock()

	if !ws.isReady {
		return nil
	}

	ws.isReady = false
	return ws.db.Close()
}

// snapshotKey возвращает ключ снимка; номер тика дополнен нулями, чтобы ключи сортировались по тикам
func snapshotKey(tick uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", snapshotPrefix, tick))
}

// SaveSnapshot сохраняет снимок под номером его тика
func (ws *WorldStorage) SaveSnapshot(snap *world.Snapshot) error {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return fmt.Errorf("хранилище не готово")
	}

	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}

	err = ws.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(snap.Tick), data)
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения в BadgerDB: %w", err)
	}

	ws.logger.Debug("Снимок тика %d сохранён (%d байт, уровень моря %d)", snap.Tick, len(data), snap.SeaLevel)
	return nil
}

// LoadSnapshot загружает снимок указанного тика
func (ws *WorldStorage) LoadSnapshot(tick uint64) (*world.Snapshot, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte

	// Читаем данные из BadgerDB
	err := ws.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(tick))
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("тик %d: %w", tick, ErrNoSnapshot)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из BadgerDB: %w", err)
	}

	return decodeSnapshot(data)
}

// LatestSnapshot загружает снимок с наибольшим номером тика
func (ws *WorldStorage) LatestSnapshot() (*world.Snapshot, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	var data []byte
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = []byte(snapshotPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		it.Seek(append([]byte(snapshotPrefix), 0xFF))
		if !it.Valid() {
			return ErrNoSnapshot
		}

		return it.Item().Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return decodeSnapshot(data)
}

// ListTicks возвращает номера тиков всех сохранённых снимков по возрастанию
func (ws *WorldStorage) ListTicks() ([]uint64, error) {
	ws.mutex.RLock()
	defer ws.mutex.RUnlock()

	if !ws.isReady {
		return nil, fmt.Errorf("хранилище не готово")
	}

	ticks := make([]uint64, 0)
	err := ws.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(snapshotPrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var tick uint64
			key := string(it.Item().Key())
			if _, err := fmt.Sscanf(key, snapshotPrefix+"%d", &tick); err != nil {
				ws.logger.Warn("Ошибка парсинга ключа '%s': %v", key, err)
				continue
			}
			ticks = append(ticks, tick)
		}
		return nil
	})
	return ticks, err
}

// LoadGrid восстанавливает сетку из последнего снимка
func (ws *WorldStorage) LoadGrid() (*world.Grid, uint64, error) {
	snap, err := ws.LatestSnapshot()
	if err != nil {
		return nil, 0, err
	}

	grid, err := snap.Restore()
	if err != nil {
		return nil, 0, err
	}
	return grid, snap.Tick, nil
}
