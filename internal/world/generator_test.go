package world

import (
	"testing"

	"github.com/annel0/floodworld/internal/util"
	"github.com/annel0/floodworld/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerrainGenerator_SingleColumnLowland(t *testing.T) {
	// bound = clamp(0 + 0, 1, 4) = 1
	grid, err := NewGrid(1, 1, 5)
	require.NoError(t, err)

	stats, err := NewTerrainGenerator(fakeNoise{height: 0, vegetation: 1}).Generate(grid)
	require.NoError(t, err)

	tile, ok := tileAt(grid, 0, 0, 0)
	assert.True(t, ok)
	assert.Equal(t, TileTerrain, tile, "z=0 должен быть сушей")

	for z := 1; z < 4; z++ {
		tile, ok := tileAt(grid, 0, 0, z)
		assert.True(t, ok)
		assert.Equal(t, TileWater, tile, "z=%d должен быть базовым океаном", z)
	}

	_, ok = tileAt(grid, 0, 0, 4)
	assert.False(t, ok, "Над водой дерево не ставится")

	assert.Equal(t, GenerationStats{Terrain: 1, Water: 3}, stats)
	assert.Equal(t, 3, grid.SeaLevel(), "После генерации уровень моря равен 3")
}

func TestTerrainGenerator_TreeOnHighland(t *testing.T) {
	// bound = clamp(0.5*8*1, 1, 7) = 4: суша z=0..3, дерево на z=4
	grid, err := NewGrid(1, 1, 8)
	require.NoError(t, err)

	stats, err := NewTerrainGenerator(fakeNoise{height: 1, vegetation: 0.5}).Generate(grid)
	require.NoError(t, err)
	assert.Equal(t, GenerationStats{Terrain: 4, Trees: 1}, stats)

	tile, ok := tileAt(grid, 0, 0, 4)
	assert.True(t, ok)
	assert.Equal(t, TileTrees, tile)

	for z := 5; z < 8; z++ {
		_, ok := tileAt(grid, 0, 0, z)
		assert.False(t, ok, "Над деревом слой %d должен быть пуст", z)
	}
}

func TestTerrainGenerator_NoTreeWithNegativeVegetation(t *testing.T) {
	grid, err := NewGrid(2, 2, 8)
	require.NoError(t, err)

	stats, err := NewTerrainGenerator(fakeNoise{height: 1, vegetation: -0.2}).Generate(grid)
	require.NoError(t, err)
	assert.Zero(t, stats.Trees)
	assert.Zero(t, grid.Counts()[TileTrees])
}

func TestTerrainGenerator_HeightClampedBelowDepth(t *testing.T) {
	// y=5 при шуме 1 даёт bound = 5 + 3 = 8, ограничивается D-1 = 5
	grid, err := NewGrid(1, 6, 6)
	require.NoError(t, err)

	_, err = NewTerrainGenerator(fakeNoise{height: 1, vegetation: 1}).Generate(grid)
	require.NoError(t, err)

	for z := 0; z < 5; z++ {
		tile, ok := tileAt(grid, 0, 5, z)
		assert.True(t, ok)
		assert.Equal(t, TileTerrain, tile)
	}
	tile, ok := tileAt(grid, 0, 5, 5)
	assert.True(t, ok, "Над сушей до D-1 стоит дерево")
	assert.Equal(t, TileTrees, tile)
}

func TestTerrainGenerator_RejectsOccupiedGrid(t *testing.T) {
	grid, err := NewGrid(1, 1, 5)
	require.NoError(t, err)
	_, err = grid.CreateVoxel(vec.Vec3{}, TileWater)
	require.NoError(t, err)

	_, err = NewTerrainGenerator(fakeNoise{}).Generate(grid)
	assert.ErrorIs(t, err, ErrOccupied, "Генерация в занятую сетку должна прерываться")
}

func TestTerrainGenerator_Properties(t *testing.T) {
	for _, seed := range []int64{1, 42, 12345, 987654321} {
		grid, err := NewGrid(16, 12, 10)
		require.NoError(t, err)

		stats, err := NewTerrainGenerator(util.NewNoiseField(seed)).Generate(grid)
		require.NoError(t, err)
		assert.Equal(t, grid.Len(), stats.Total())
		assert.Equal(t, InitialSeaLevel, grid.SeaLevel())

		for x := 0; x < 16; x++ {
			for y := 0; y < 12; y++ {
				col := vec.Vec2{X: x, Y: y}

				// Базовый океан: все z < 4 заняты
				for z := 0; z < BaselineWaterDepth; z++ {
					_, ok := grid.Lookup(col.WithZ(z))
					assert.True(t, ok, "seed=%d: координата %s должна быть занята", seed, col.WithZ(z))
				}

				// Не более одного дерева, и только над сушей
				trees := 0
				for z := 0; z < 10; z++ {
					tile, ok := TileAt(grid, col.WithZ(z))
					if !ok || tile != TileTrees {
						continue
					}
					trees++
					below, ok := TileAt(grid, col.WithZ(z-1))
					assert.True(t, ok)
					assert.Equal(t, TileTerrain, below, "seed=%d: дерево должно стоять на суше", seed)
				}
				assert.LessOrEqual(t, trees, 1, "seed=%d: в колонке (%d,%d) больше одного дерева", seed, x, y)
			}
		}
	}
}

func TestTerrainGenerator_Deterministic(t *testing.T) {
	a, err := NewGrid(8, 8, 9)
	require.NoError(t, err)
	b, err := NewGrid(8, 8, 9)
	require.NoError(t, err)

	_, err = NewTerrainGenerator(util.NewNoiseField(2024)).Generate(a)
	require.NoError(t, err)
	_, err = NewTerrainGenerator(util.NewNoiseField(2024)).Generate(b)
	require.NoError(t, err)

	assert.Equal(t, TakeSnapshot(a, 0).Cells, TakeSnapshot(b, 0).Cells, "Одинаковый сид должен давать одинаковый мир")
}
