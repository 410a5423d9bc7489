package eventbus

// Типы событий мира
const (
	EventWorldGenerated = "world.generated"
	EventSeaLevelRaised = "world.sea_level_raised"
)

// WorldGenerated публикуется после генерации рельефа
type WorldGenerated struct {
	Width    int   `json:"width"`
	Height   int   `json:"height"`
	Depth    int   `json:"depth"`
	Seed     int64 `json:"seed"`
	Terrain  int   `json:"terrain"`
	Water    int   `json:"water"`
	Trees    int   `json:"trees"`
	SeaLevel int   `json:"sea_level"`
}

// SeaLevelRaised публикуется после каждого тика затопления
type SeaLevelRaised struct {
	Tick      uint64 `json:"tick"`
	SeaLevel  int    `json:"sea_level"`
	Plane     int    `json:"plane"`
	Columns   int    `json:"columns"`
	Created   int    `json:"created"`
	Converted int    `json:"converted"`
	Saturated bool   `json:"saturated"`
}
