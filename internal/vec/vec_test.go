package vec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_IndexRoundTrip(t *testing.T) {
	const w, h, d = 3, 4, 5
	seen := make(map[int]bool)

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			for z := 0; z < d; z++ {
				v := Vec3{X: x, Y: y, Z: z}
				i := v.Index(h, d)
				assert.False(t, seen[i], "Индекс %d не должен повторяться", i)
				seen[i] = true
				assert.Equal(t, v, FromIndex(i, h, d), "Координата должна восстанавливаться по индексу")
			}
		}
	}

	assert.Len(t, seen, w*h*d, "Индексы должны покрывать весь массив")
}

func TestVec3_ColumnIsContiguous(t *testing.T) {
	// Соседние по Z координаты лежат рядом в массиве
	a := Vec3{X: 1, Y: 2, Z: 0}
	b := Vec3{X: 1, Y: 2, Z: 1}
	assert.Equal(t, a.Index(4, 5)+1, b.Index(4, 5))
}

func TestVec2_Neighbors4(t *testing.T) {
	n := Vec2{X: 0, Y: 0}.Neighbors4()

	inside := 0
	for _, c := range n {
		if c.InBounds(2, 2) {
			inside++
		}
	}
	assert.Equal(t, 2, inside, "У угловой колонки два соседа внутри сетки")
}

func TestVec3_InBounds(t *testing.T) {
	assert.True(t, Vec3{X: 0, Y: 0, Z: 4}.InBounds(1, 1, 5))
	assert.False(t, Vec3{X: 0, Y: 0, Z: 5}.InBounds(1, 1, 5))
	assert.False(t, Vec3{X: -1, Y: 0, Z: 0}.InBounds(1, 1, 5))
}

func TestVec3_Less(t *testing.T) {
	assert.True(t, Vec3{X: 5, Y: 5, Z: 0}.Less(Vec3{X: 0, Y: 0, Z: 1}))
	assert.True(t, Vec3{X: 5, Y: 0, Z: 1}.Less(Vec3{X: 0, Y: 1, Z: 1}))
	assert.False(t, Vec3{X: 1, Y: 1, Z: 1}.Less(Vec3{X: 1, Y: 1, Z: 1}))
	assert.Equal(t, "(1,2,3)", Vec3{X: 1, Y: 2, Z: 3}.String())
}
