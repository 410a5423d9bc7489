package world

import (
	"fmt"
	"sort"

	"github.com/annel0/floodworld/internal/logging"
	"github.com/annel0/floodworld/internal/vec"
)

// FloodStrategy определяет способ распространения связности по плоскости затопления
type FloodStrategy int

const (
	// FloodStrategyQueue - обход в ширину от кромки y=0, сходится за один проход
	FloodStrategyQueue FloodStrategy = iota
	// FloodStrategySweep - четыре направленных прохода по строкам (змейкой) без очереди.
	// Не гарантирует сходимость для сильно изогнутых областей.
	FloodStrategySweep
)

// String возвращает имя стратегии
func (s FloodStrategy) String() string {
	switch s {
	case FloodStrategyQueue:
		return "queue"
	case FloodStrategySweep:
		return "sweep"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseFloodStrategy разбирает имя стратегии; пустая строка означает queue
func ParseFloodStrategy(s string) (FloodStrategy, error) {
	switch s {
	case "", "queue":
		return FloodStrategyQueue, nil
	case "sweep":
		return FloodStrategySweep, nil
	default:
		return 0, fmt.Errorf("неизвестная стратегия затопления %q", s)
	}
}

// FloodResult описывает итог одного вызова SeaFlooder.Flood
type FloodResult struct {
	SeaLevel  int  `json:"sea_level"` // Уровень моря после вызова
	Plane     int  `json:"plane"`     // Плоскость затопления (прежний уровень + 1)
	Columns   int  `json:"columns"`   // Колонок, до которых дошла вода на плоскости
	Reused    int  `json:"reused"`    // Существующих вокселей, переписанных в воду
	Converted int  `json:"converted"` // Из них тех, что до этого не были водой
	Created   int  `json:"created"`   // Новых вокселей воды
	Saturated bool `json:"saturated"` // Плоскость выше сетки, затапливать нечего
}

// SeaFlooder поднимает уровень моря на один слой и затапливает достижимые с кромки y=0 колонки
type SeaFlooder struct {
	strategy FloodStrategy
	logger   *logging.Logger
}

// NewSeaFlooder создаёт затопитель с указанной стратегией распространения
func NewSeaFlooder(strategy FloodStrategy) *SeaFlooder {
	return &SeaFlooder{
		strategy: strategy,
		logger:   logging.GetWorldLogger(),
	}
}

// Strategy возвращает стратегию распространения
func (f *SeaFlooder) Strategy() FloodStrategy {
	return f.strategy
}

// Flood выполняет один тик затопления: вычисляет отметки на плоскости s+1,
// применяет их и увеличивает уровень моря на единицу.
// Отметки сначала собираются целиком и только потом применяются.
func (f *SeaFlooder) Flood(store VoxelStore) (FloodResult, error) {
	level := store.SeaLevel()
	if level < 0 {
		return FloodResult{}, ErrSeaLevelUnset
	}

	w, h, d := store.Dimensions()
	result := FloodResult{Plane: level + 1}

	if result.Plane >= d {
		result.Saturated = true
	} else {
		snap := newFloodSnapshot(store, w, h, result.Plane)
		marks := make(floodMarks)

		switch f.strategy {
		case FloodStrategySweep:
			snap.propagateSweep(marks)
		default:
			snap.propagateQueue(marks)
		}

		if err := commitMarks(store, marks, &result); err != nil {
			return result, err
		}
	}

	store.SetSeaLevel(level + 1)
	result.SeaLevel = level + 1

	f.logger.Debug("Затопление плоскости z=%d (%s): колонок=%d создано=%d переписано=%d",
		result.Plane, f.strategy, result.Columns, result.Created, result.Reused)
	return result, nil
}

// floodMarks - отметки затопления: координата -> существующий воксель или NoVoxel для создания
type floodMarks map[vec.Vec3]VoxelID

// floodSnapshot - снимок вокселей с z <= plane, сделанный до любых изменений
type floodSnapshot struct {
	w, h      int
	plane     int
	floodable map[vec.Vec3]Voxel
	onPlane   map[vec.Vec2]Voxel
}

func newFloodSnapshot(store VoxelStore, w, h, plane int) *floodSnapshot {
	voxels := store.Query(func(p vec.Vec3) bool { return p.Z <= plane })

	snap := &floodSnapshot{
		w:         w,
		h:         h,
		plane:     plane,
		floodable: make(map[vec.Vec3]Voxel, len(voxels)),
		onPlane:   make(map[vec.Vec2]Voxel, w*h),
	}
	for _, v := range voxels {
		snap.floodable[v.Pos] = v
		if v.Pos.Z == plane {
			snap.onPlane[v.Pos.Column()] = v
		}
	}
	return snap
}

// reached сообщает, отмечена ли колонка на плоскости затопления
func (fs *floodSnapshot) reached(marks floodMarks, col vec.Vec2) bool {
	_, ok := marks[col.WithZ(fs.plane)]
	return ok
}

// evaluate отмечает колонку. Существующий воксель на плоскости переиспользуется,
// если это не суша. Пустая координата на плоскости отмечается к созданию; при wholeColumn
// отмечается вся подколонка z=0..plane, кроме суши.
func (fs *floodSnapshot) evaluate(marks floodMarks, col vec.Vec2, wholeColumn bool) {
	if v, ok := fs.onPlane[col]; ok {
		if v.Tile.Floodable() {
			marks[v.Pos] = v.ID
		}
		return
	}

	if !wholeColumn {
		marks[col.WithZ(fs.plane)] = NoVoxel
		return
	}

	for z := 0; z <= fs.plane; z++ {
		pos := col.WithZ(z)
		if v, ok := fs.floodable[pos]; ok {
			if v.Tile.Floodable() {
				marks[pos] = v.ID
			}
			continue
		}
		marks[pos] = NoVoxel
	}
}

// seedRow отмечает колонки кромки y=0
func (fs *floodSnapshot) seedRow(marks floodMarks) {
	for x := 0; x < fs.w; x++ {
		fs.evaluate(marks, vec.Vec2{X: x, Y: 0}, false)
	}
}

// propagateQueue распространяет затопление обходом в ширину от кромки
func (fs *floodSnapshot) propagateQueue(marks floodMarks) {
	visited := make([]bool, fs.w*fs.h)
	frontier := make([]vec.Vec2, 0, fs.w)

	fs.seedRow(marks)
	for x := 0; x < fs.w; x++ {
		col := vec.Vec2{X: x, Y: 0}
		visited[col.Y*fs.w+col.X] = true
		if fs.reached(marks, col) {
			frontier = append(frontier, col)
		}
	}

	for len(frontier) > 0 {
		col := frontier[0]
		frontier = frontier[1:]

		for _, next := range col.Neighbors4() {
			if !next.InBounds(fs.w, fs.h) || visited[next.Y*fs.w+next.X] {
				continue
			}
			visited[next.Y*fs.w+next.X] = true

			fs.evaluate(marks, next, true)
			if fs.reached(marks, next) {
				frontier = append(frontier, next)
			}
		}
	}
}

// propagateSweep распространяет затопление двумя проходами по строкам (вверх и вниз по y),
// каждая строка просматривается слева направо и справа налево
func (fs *floodSnapshot) propagateSweep(marks floodMarks) {
	fs.seedRow(marks)

	row := func(y int) {
		for x := 0; x < fs.w; x++ {
			fs.sweepCheck(marks, vec.Vec2{X: x, Y: y})
		}
		for x := fs.w - 1; x >= 0; x-- {
			fs.sweepCheck(marks, vec.Vec2{X: x, Y: y})
		}
	}

	for y := 1; y < fs.h; y++ {
		row(y)
	}
	for y := fs.h - 1; y >= 1; y-- {
		row(y)
	}
}

// sweepCheck оценивает неотмеченную колонку, если отмечен хотя бы один её сосед
func (fs *floodSnapshot) sweepCheck(marks floodMarks, col vec.Vec2) {
	if fs.reached(marks, col) {
		return
	}
	for _, n := range col.Neighbors4() {
		if n.InBounds(fs.w, fs.h) && fs.reached(marks, n) {
			fs.evaluate(marks, col, true)
			return
		}
	}
}

// commitMarks проверяет все отметки и затем применяет их к хранилищу.
// Нарушение инвариантов хранилища прерывает операцию до первой записи.
func commitMarks(store VoxelStore, marks floodMarks, result *FloodResult) error {
	positions := make([]vec.Vec3, 0, len(marks))
	for pos := range marks {
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].Less(positions[j]) })

	previous := make(map[vec.Vec3]Tile, len(marks))
	for _, pos := range positions {
		id := marks[pos]
		if id == NoVoxel {
			if _, ok := store.Lookup(pos); ok {
				return fmt.Errorf("затопление %s: %w", pos, ErrOccupied)
			}
			continue
		}
		tile, err := store.Tile(id)
		if err != nil {
			return fmt.Errorf("затопление %s: %w", pos, err)
		}
		if !tile.Floodable() {
			return fmt.Errorf("затопление %s: %w", pos, ErrTerrainFlood)
		}
		previous[pos] = tile
	}

	for _, pos := range positions {
		if pos.Z == result.Plane {
			result.Columns++
		}

		id := marks[pos]
		if id == NoVoxel {
			if _, err := store.CreateVoxel(pos, TileWater); err != nil {
				return fmt.Errorf("затопление %s: %w", pos, err)
			}
			result.Created++
			continue
		}

		if err := store.SetTile(id, TileWater); err != nil {
			return fmt.Errorf("затопление %s: %w", pos, err)
		}
		result.Reused++
		if previous[pos] != TileWater {
			result.Converted++
		}
	}
	return nil
}
