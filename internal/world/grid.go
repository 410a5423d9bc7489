package world

import (
	"fmt"

	"github.com/annel0/floodworld/internal/vec"
)

// voxelRecord хранит данные одного вокселя в таблице сетки
type voxelRecord struct {
	pos  vec.Vec3
	tile Tile
}

// Grid - плотная реализация VoxelStore в памяти.
// Индекс координат - массив W*H*D идентификаторов, таблица вокселей - срез,
// где воксель с ID=n лежит по индексу n-1. Воксели никогда не удаляются и не перемещаются.
type Grid struct {
	w, h, d  int
	index    []VoxelID
	voxels   []voxelRecord
	seaLevel int
}

// NewGrid создаёт пустую сетку указанных размеров
func NewGrid(w, h, d int) (*Grid, error) {
	if err := ValidateDimensions(w, h, d); err != nil {
		return nil, err
	}

	return &Grid{
		w:        w,
		h:        h,
		d:        d,
		index:    make([]VoxelID, w*h*d),
		voxels:   make([]voxelRecord, 0, w*h*BaselineWaterDepth),
		seaLevel: SeaLevelUnset,
	}, nil
}

// Dimensions возвращает размеры сетки
func (g *Grid) Dimensions() (int, int, int) {
	return g.w, g.h, g.d
}

// CreateVoxel создаёт воксель в свободной координате
func (g *Grid) CreateVoxel(pos vec.Vec3, tile Tile) (VoxelID, error) {
	if !pos.InBounds(g.w, g.h, g.d) {
		return NoVoxel, fmt.Errorf("%w: %s", ErrOutOfBounds, pos)
	}
	if !tile.Valid() {
		return NoVoxel, fmt.Errorf("%w: %d", ErrInvalidTile, tile)
	}

	i := pos.Index(g.h, g.d)
	if g.index[i] != NoVoxel {
		return NoVoxel, fmt.Errorf("%w: %s", ErrOccupied, pos)
	}

	g.voxels = append(g.voxels, voxelRecord{pos: pos, tile: tile})
	id := VoxelID(len(g.voxels))
	g.index[i] = id
	return id, nil
}

// record возвращает запись вокселя по идентификатору
func (g *Grid) record(id VoxelID) (*voxelRecord, error) {
	if id == NoVoxel || int(id) > len(g.voxels) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownVoxel, id)
	}
	return &g.voxels[id-1], nil
}

// Tile возвращает вид вокселя
func (g *Grid) Tile(id VoxelID) (Tile, error) {
	rec, err := g.record(id)
	if err != nil {
		return 0, err
	}
	return rec.tile, nil
}

// SetTile перезаписывает вид вокселя
func (g *Grid) SetTile(id VoxelID, tile Tile) error {
	if !tile.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidTile, tile)
	}
	rec, err := g.record(id)
	if err != nil {
		return err
	}
	rec.tile = tile
	return nil
}

// Lookup ищет воксель по координате
func (g *Grid) Lookup(pos vec.Vec3) (VoxelID, bool) {
	if !pos.InBounds(g.w, g.h, g.d) {
		return NoVoxel, false
	}
	id := g.index[pos.Index(g.h, g.d)]
	return id, id != NoVoxel
}

// Query возвращает воксели, прошедшие фильтр, в порядке создания.
// nil-фильтр возвращает все воксели.
func (g *Grid) Query(filter func(vec.Vec3) bool) []Voxel {
	result := make([]Voxel, 0)
	for i, rec := range g.voxels {
		if filter != nil && !filter(rec.pos) {
			continue
		}
		result = append(result, Voxel{ID: VoxelID(i + 1), Pos: rec.pos, Tile: rec.tile})
	}
	return result
}

// SeaLevel возвращает текущий уровень моря
func (g *Grid) SeaLevel() int {
	return g.seaLevel
}

// SetSeaLevel устанавливает уровень моря
func (g *Grid) SetSeaLevel(level int) {
	g.seaLevel = level
}

// Len возвращает количество вокселей в сетке
func (g *Grid) Len() int {
	return len(g.voxels)
}

// Counts возвращает количество вокселей каждого вида
func (g *Grid) Counts() map[Tile]int {
	counts := make(map[Tile]int, tileCount)
	for _, rec := range g.voxels {
		counts[rec.tile]++
	}
	return counts
}

// ColumnProfile возвращает содержимое колонки снизу вверх; nil означает пустую координату
func (g *Grid) ColumnProfile(col vec.Vec2) ([]*Tile, error) {
	if !col.InBounds(g.w, g.h) {
		return nil, fmt.Errorf("%w: колонка (%d,%d)", ErrOutOfBounds, col.X, col.Y)
	}

	profile := make([]*Tile, g.d)
	for z := 0; z < g.d; z++ {
		id := g.index[col.WithZ(z).Index(g.h, g.d)]
		if id == NoVoxel {
			continue
		}
		tile := g.voxels[id-1].tile
		profile[z] = &tile
	}
	return profile, nil
}
