package world

import (
	"fmt"
	"math"

	"github.com/annel0/floodworld/internal/logging"
	"github.com/annel0/floodworld/internal/util"
	"github.com/annel0/floodworld/internal/vec"
)

// InitialSeaLevel - уровень моря после генерации: верхний слой базового океана
const InitialSeaLevel = BaselineWaterDepth - 1

// GenerationStats содержит количество созданных генератором вокселей
type GenerationStats struct {
	Terrain int
	Water   int
	Trees   int
}

// Total возвращает общее количество созданных вокселей
func (s GenerationStats) Total() int {
	return s.Terrain + s.Water + s.Trees
}

// TerrainGenerator заполняет пустую сетку сушей, базовым океаном и деревьями
type TerrainGenerator struct {
	noise  util.NoiseSource
	logger *logging.Logger
}

// NewTerrainGenerator создаёт генератор рельефа поверх источника шума
func NewTerrainGenerator(noise util.NoiseSource) *TerrainGenerator {
	return &TerrainGenerator{
		noise:  noise,
		logger: logging.GetWorldLogger(),
	}
}

// Generate заполняет сетку и устанавливает уровень моря в InitialSeaLevel.
// Сетка должна быть пустой: любое совпадение координат прерывает генерацию с ErrOccupied.
func (tg *TerrainGenerator) Generate(store VoxelStore) (GenerationStats, error) {
	var stats GenerationStats

	w, h, d := store.Dimensions()
	if err := ValidateDimensions(w, h, d); err != nil {
		return stats, err
	}

	// Поле высот
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			top := tg.columnHeight(x, y, w, h, d)
			for z := 0; z < top; z++ {
				if _, err := store.CreateVoxel(vec.Vec3{X: x, Y: y, Z: z}, TileTerrain); err != nil {
					return stats, fmt.Errorf("поле высот: %w", err)
				}
				stats.Terrain++
			}
		}
	}

	// Базовый океан, суша не перезаписывается
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			for z := 0; z < BaselineWaterDepth; z++ {
				pos := vec.Vec3{X: x, Y: y, Z: z}
				if _, ok := store.Lookup(pos); ok {
					continue
				}
				if _, err := store.CreateVoxel(pos, TileWater); err != nil {
					return stats, fmt.Errorf("базовый океан: %w", err)
				}
				stats.Water++
			}
		}
	}

	// Растительность: одно дерево на колонку, на самой низкой подходящей высоте
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			placed, err := tg.placeTree(store, vec.Vec2{X: x, Y: y}, w, h, d)
			if err != nil {
				return stats, fmt.Errorf("растительность: %w", err)
			}
			if placed {
				stats.Trees++
			}
		}
	}

	store.SetSeaLevel(InitialSeaLevel)

	tg.logger.Info("Сгенерирован рельеф %dx%dx%d: суша=%d вода=%d деревья=%d",
		w, h, d, stats.Terrain, stats.Water, stats.Trees)
	return stats, nil
}

// columnHeight возвращает количество слоёв суши в колонке.
// Высота растёт с y и возмущается шумом, масштабированным глубиной сетки.
func (tg *TerrainGenerator) columnHeight(x, y, w, h, d int) int {
	sample := tg.noise.Height(1+float64(x)/float64(w), 1+float64(y)/float64(h))
	bound := float64(y) + 0.5*float64(d)*math.Abs(sample)
	bound = math.Max(bound, 1)
	bound = math.Min(bound, float64(d-1))
	return int(bound)
}

// placeTree ставит дерево в первую свободную координату над сушей, начиная с z=BaselineWaterDepth
func (tg *TerrainGenerator) placeTree(store VoxelStore, col vec.Vec2, w, h, d int) (bool, error) {
	for z := BaselineWaterDepth; z < d; z++ {
		pos := col.WithZ(z)
		if _, ok := store.Lookup(pos); ok {
			continue
		}
		if below, ok := TileAt(store, pos.Below()); !ok || below != TileTerrain {
			continue
		}
		if tg.noise.Vegetation(1+0.5*float64(col.X)/float64(w), 1+2*float64(col.Y)/float64(h)) <= 0 {
			continue
		}
		if _, err := store.CreateVoxel(pos, TileTrees); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}
