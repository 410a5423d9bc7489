package world

import (
	"fmt"

	"github.com/annel0/floodworld/internal/vec"
)

// VoxelID - непрозрачный идентификатор вокселя. Нулевое значение означает "нет вокселя".
type VoxelID uint64

// NoVoxel обозначает отсутствие вокселя
const NoVoxel VoxelID = 0

// SeaLevelUnset - значение уровня моря до запуска генератора
const SeaLevelUnset = -1

// BaselineWaterDepth - минимальная глубина океана, которую гарантирует генератор
const BaselineWaterDepth = 4

// MinDepth - минимальная глубина сетки: базовый океан плюс хотя бы один слой над ним
const MinDepth = BaselineWaterDepth + 1

// Voxel - снимок одного вокселя, возвращаемый запросами
type Voxel struct {
	ID   VoxelID
	Pos  vec.Vec3
	Tile Tile
}

// VoxelStore определяет хранилище вокселей, с которым работают генератор и затопление.
// Одна координата принадлежит не более чем одному вокселю. Хранилище не синхронизировано:
// вызывающий код обязан держать единственную блокировку записи на время операций.
type VoxelStore interface {
	// Dimensions возвращает размеры сетки (W, H, D)
	Dimensions() (w, h, d int)

	// CreateVoxel создаёт воксель в свободной координате.
	// Возвращает ErrOccupied, если координата занята, и ErrOutOfBounds вне сетки.
	CreateVoxel(pos vec.Vec3, tile Tile) (VoxelID, error)

	// Tile возвращает вид вокселя
	Tile(id VoxelID) (Tile, error)

	// SetTile перезаписывает вид вокселя на месте
	SetTile(id VoxelID, tile Tile) error

	// Lookup ищет воксель по координате
	Lookup(pos vec.Vec3) (VoxelID, bool)

	// Query возвращает все воксели, координаты которых удовлетворяют фильтру.
	// Результат - конечный снимок на момент вызова.
	Query(filter func(vec.Vec3) bool) []Voxel

	// SeaLevel возвращает текущий уровень моря
	SeaLevel() int

	// SetSeaLevel устанавливает уровень моря
	SetSeaLevel(level int)
}

// MaxCells - предельное число координат W*H*D одной сетки
const MaxCells = 1 << 26

// ValidateDimensions проверяет размеры сетки до начала генерации.
// Произведение W*H*D сравнивается с MaxCells без переполнения int.
func ValidateDimensions(w, h, d int) error {
	if w <= 0 || h <= 0 {
		return fmt.Errorf("%w: %dx%dx%d, ширина и высота должны быть положительными", ErrInvalidDimensions, w, h, d)
	}
	if d < MinDepth {
		return fmt.Errorf("%w: %dx%dx%d, глубина должна быть не меньше %d", ErrInvalidDimensions, w, h, d, MinDepth)
	}
	if w > MaxCells || h > MaxCells/w || d > MaxCells/(w*h) {
		return fmt.Errorf("%w: %dx%dx%d, больше %d координат", ErrInvalidDimensions, w, h, d, MaxCells)
	}
	return nil
}

// TileAt возвращает вид вокселя в координате; ok=false для пустой координаты
func TileAt(store VoxelStore, pos vec.Vec3) (Tile, bool) {
	id, ok := store.Lookup(pos)
	if !ok {
		return 0, false
	}
	tile, err := store.Tile(id)
	if err != nil {
		return 0, false
	}
	return tile, true
}
