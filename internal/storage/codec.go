package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/annel0/floodworld/internal/world"
	"github.com/klauspost/compress/zstd"
)

// Формат записи снимка до сжатия: [len(header) uint32 BE] [header JSON] [cells]

var (
	encoder, _ = zstd.NewWriter(nil)
	decoder, _ = zstd.NewReader(nil)
)

// encodeSnapshot сериализует и сжимает снимок
func encodeSnapshot(snap *world.Snapshot) ([]byte, error) {
	header, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации заголовка: %w", err)
	}

	raw := make([]byte, 4, 4+len(header)+len(snap.Cells))
	binary.BigEndian.PutUint32(raw, uint32(len(header)))
	raw = append(raw, header...)
	raw = append(raw, snap.Cells...)

	return encoder.EncodeAll(raw, nil), nil
}

// decodeSnapshot распаковывает и разбирает снимок
func decodeSnapshot(data []byte) (*world.Snapshot, error) {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка распаковки снимка: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("снимок повреждён: %d байт", len(raw))
	}

	n := int(binary.BigEndian.Uint32(raw))
	if 4+n > len(raw) {
		return nil, fmt.Errorf("снимок повреждён: заголовок %d байт при длине %d", n, len(raw))
	}

	var snap world.Snapshot
	if err := json.Unmarshal(raw[4:4+n], &snap); err != nil {
		return nil, fmt.Errorf("ошибка десериализации заголовка: %w", err)
	}
	snap.Cells = append([]byte{}, raw[4+n:]...)

	if err := world.ValidateDimensions(snap.Width, snap.Height, snap.Depth); err != nil {
		return nil, fmt.Errorf("снимок повреждён: %w", err)
	}
	if len(snap.Cells) != snap.Width*snap.Height*snap.Depth {
		return nil, fmt.Errorf("снимок повреждён: %d ячеек для сетки %dx%dx%d",
			len(snap.Cells), snap.Width, snap.Height, snap.Depth)
	}
	return &snap, nil
}
