package vec

// Vec2 представляет координаты колонки (x, y) сетки вокселей
type Vec2 struct {
	X, Y int
}

// WithZ создает Vec3 из колонки и заданной Z координаты
func (v Vec2) WithZ(z int) Vec3 {
	return Vec3{X: v.X, Y: v.Y, Z: z}
}

// Neighbors4 возвращает четырёх соседей колонки: слева, справа, снизу и сверху по оси Y.
// Границы не проверяются, это делает вызывающий код.
func (v Vec2) Neighbors4() [4]Vec2 {
	return [4]Vec2{
		{X: v.X - 1, Y: v.Y},
		{X: v.X + 1, Y: v.Y},
		{X: v.X, Y: v.Y - 1},
		{X: v.X, Y: v.Y + 1},
	}
}

// InBounds проверяет, что колонка лежит внутри прямоугольника [0,w)×[0,h)
func (v Vec2) InBounds(w, h int) bool {
	return v.X >= 0 && v.X < w && v.Y >= 0 && v.Y < h
}

// Less задаёт порядок колонок: сначала по Y, затем по X
func (v Vec2) Less(other Vec2) bool {
	if v.Y != other.Y {
		return v.Y < other.Y
	}
	return v.X < other.X
}
