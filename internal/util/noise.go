package util

import (
	"math/rand"
	"time"

	"github.com/aquilax/go-perlin"
)

// Параметры шума Перлина
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав

	// vegetationSeedOffset разводит шум растительности и шум высот
	vegetationSeedOffset = 42
)

// NoiseSource описывает двумерный когерентный шум для генерации рельефа.
// Значения лежат примерно в [-1, 1]. Высота и растительность берутся
// из логически независимых полей.
type NoiseSource interface {
	Height(x, y float64) float64
	Vegetation(x, y float64) float64
}

// NoiseField - детерминированный источник шума на основе Перлина.
// Один и тот же сид даёт одно и то же поле.
type NoiseField struct {
	seed       int64
	height     *perlin.Perlin
	vegetation *perlin.Perlin
}

// NewNoiseField создаёт поле шума для указанного сида
func NewNoiseField(seed int64) *NoiseField {
	return &NoiseField{
		seed:       seed,
		height:     perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
		vegetation: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed+vegetationSeedOffset),
	}
}

// RandomSeed возвращает случайный сид для очередного запуска генерации
func RandomSeed() int64 {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for {
		if seed := rng.Int63(); seed != 0 {
			return seed
		}
	}
}

// Seed возвращает сид поля
func (n *NoiseField) Seed() int64 {
	return n.seed
}

// Height возвращает значение шума высот (от -1 до 1)
func (n *NoiseField) Height(x, y float64) float64 {
	return n.height.Noise2D(x, y)
}

// Vegetation возвращает значение шума растительности (от -1 до 1)
func (n *NoiseField) Vegetation(x, y float64) float64 {
	return n.vegetation.Noise2D(x, y)
}
