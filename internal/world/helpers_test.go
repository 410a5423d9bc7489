package world

import (
	"testing"

	"github.com/annel0/floodworld/internal/vec"
	"github.com/stretchr/testify/require"
)

// fakeNoise - управляемый источник шума для тестов
type fakeNoise struct {
	height     float64
	vegetation float64
}

func (n fakeNoise) Height(x, y float64) float64     { return n.height }
func (n fakeNoise) Vegetation(x, y float64) float64 { return n.vegetation }

// buildGrid строит сетку по карте высот суши heights[y][x]:
// суша на z < height, базовый океан на пустых z < 4, уровень моря 3
func buildGrid(t *testing.T, d int, heights [][]int) *Grid {
	t.Helper()

	h := len(heights)
	w := len(heights[0])
	grid, err := NewGrid(w, h, d)
	require.NoError(t, err)

	for y, row := range heights {
		for x, top := range row {
			for z := 0; z < top; z++ {
				_, err := grid.CreateVoxel(vec.Vec3{X: x, Y: y, Z: z}, TileTerrain)
				require.NoError(t, err)
			}
			for z := top; z < BaselineWaterDepth; z++ {
				_, err := grid.CreateVoxel(vec.Vec3{X: x, Y: y, Z: z}, TileWater)
				require.NoError(t, err)
			}
		}
	}
	grid.SetSeaLevel(InitialSeaLevel)
	return grid
}

// tileAt возвращает вид вокселя и признак занятости
func tileAt(g *Grid, x, y, z int) (Tile, bool) {
	return TileAt(g, vec.Vec3{X: x, Y: y, Z: z})
}
