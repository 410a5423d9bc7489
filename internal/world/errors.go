package world

import "errors"

var (
	// ErrInvalidDimensions - размеры сетки вне допустимого диапазона (ошибка конфигурации)
	ErrInvalidDimensions = errors.New("недопустимые размеры сетки")
	// ErrOccupied - попытка создать воксель в уже занятой координате
	ErrOccupied = errors.New("координата уже занята")
	// ErrOutOfBounds - координата за пределами сетки
	ErrOutOfBounds = errors.New("координата вне сетки")
	// ErrUnknownVoxel - идентификатор не соответствует ни одному вокселю
	ErrUnknownVoxel = errors.New("неизвестный воксель")
	// ErrInvalidTile - значение Tile вне перечисления
	ErrInvalidTile = errors.New("недопустимый вид вокселя")
	// ErrTerrainFlood - отметка затопления указывает на воксель суши
	ErrTerrainFlood = errors.New("суша не может стать водой")
	// ErrSeaLevelUnset - затопление вызвано до генерации рельефа
	ErrSeaLevelUnset = errors.New("уровень моря не установлен")
)
