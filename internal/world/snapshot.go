package world

import (
	"fmt"

	"github.com/annel0/floodworld/internal/vec"
)

// Snapshot - плотное представление сетки для сохранения.
// Cells[i] = 0 для пустой координаты и 1+Tile для занятой; i = Vec3.Index(Height, Depth).
type Snapshot struct {
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Depth    int    `json:"depth"`
	SeaLevel int    `json:"sea_level"`
	Tick     uint64 `json:"tick"`
	Cells    []byte `json:"-"`
}

// TakeSnapshot снимает состояние хранилища
func TakeSnapshot(store VoxelStore, tick uint64) *Snapshot {
	w, h, d := store.Dimensions()
	snap := &Snapshot{
		Width:    w,
		Height:   h,
		Depth:    d,
		SeaLevel: store.SeaLevel(),
		Tick:     tick,
		Cells:    make([]byte, w*h*d),
	}

	for _, v := range store.Query(nil) {
		snap.Cells[v.Pos.Index(h, d)] = byte(v.Tile) + 1
	}
	return snap
}

// Restore строит новую сетку по снимку
func (s *Snapshot) Restore() (*Grid, error) {
	if err := ValidateDimensions(s.Width, s.Height, s.Depth); err != nil {
		return nil, err
	}
	if len(s.Cells) != s.Width*s.Height*s.Depth {
		return nil, fmt.Errorf("снимок повреждён: %d ячеек вместо %d", len(s.Cells), s.Width*s.Height*s.Depth)
	}
	grid, err := NewGrid(s.Width, s.Height, s.Depth)
	if err != nil {
		return nil, err
	}

	for i, cell := range s.Cells {
		if cell == 0 {
			continue
		}
		pos := vec.FromIndex(i, s.Height, s.Depth)
		if _, err := grid.CreateVoxel(pos, Tile(cell-1)); err != nil {
			return nil, fmt.Errorf("восстановление %s: %w", pos, err)
		}
	}

	grid.SetSeaLevel(s.SeaLevel)
	return grid, nil
}

// Counts возвращает количество занятых ячеек снимка по видам; повреждённые ячейки не учитываются
func (s *Snapshot) Counts() map[Tile]int {
	counts := make(map[Tile]int, tileCount)
	for _, cell := range s.Cells {
		if cell == 0 || !Tile(cell-1).Valid() {
			continue
		}
		counts[Tile(cell-1)]++
	}
	return counts
}
