package world

import "fmt"

// Tile определяет вид вокселя. Пустая координата не имеет Tile вовсе,
// это отдельное состояние (см. VoxelStore.Lookup).
type Tile uint8

const (
	TileTerrain Tile = iota // Суша, никогда не меняется
	TileWater               // Вода: базовый океан и затопленные воксели
	TileTrees               // Дерево, не более одного на колонку

	tileCount // всегда последний: количество видов
)

// String возвращает строковое представление вида вокселя
func (t Tile) String() string {
	switch t {
	case TileTerrain:
		return "terrain"
	case TileWater:
		return "water"
	case TileTrees:
		return "trees"
	default:
		return fmt.Sprintf("tile(%d)", uint8(t))
	}
}

// Valid проверяет, что значение входит в перечисление
func (t Tile) Valid() bool {
	return t < tileCount
}

// Floodable сообщает, может ли воксель этого вида стать водой
func (t Tile) Floodable() bool {
	return t != TileTerrain
}
