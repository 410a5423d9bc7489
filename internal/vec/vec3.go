package vec

import "fmt"

// Vec3 представляет трехмерную координату вокселя с целочисленными компонентами
type Vec3 struct {
	X int
	Y int
	Z int
}

// Column возвращает колонку (x, y), которой принадлежит координата
func (v Vec3) Column() Vec2 {
	return Vec2{
		X: v.X,
		Y: v.Y,
	}
}

// Below возвращает координату непосредственно под текущей
func (v Vec3) Below() Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: v.Z - 1}
}

// InBounds проверяет, что координата лежит внутри сетки размером w×h×d
func (v Vec3) InBounds(w, h, d int) bool {
	return v.Column().InBounds(w, h) && v.Z >= 0 && v.Z < d
}

// Index возвращает линейный индекс координаты в плотном массиве w×h×d.
// Порядок: z меняется быстрее всего, затем y, затем x, чтобы колонка лежала подряд.
func (v Vec3) Index(h, d int) int {
	return (v.X*h+v.Y)*d + v.Z
}

// FromIndex восстанавливает координату по линейному индексу (обратная к Index)
func FromIndex(i, h, d int) Vec3 {
	z := i % d
	i /= d
	return Vec3{X: i / h, Y: i % h, Z: z}
}

// Less задаёт детерминированный порядок координат: z, затем y, затем x
func (v Vec3) Less(other Vec3) bool {
	if v.Z != other.Z {
		return v.Z < other.Z
	}
	return v.Column().Less(other.Column())
}

// String возвращает текстовое представление координаты
func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}
