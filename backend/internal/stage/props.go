package stage

import "x-spores/backend/internal/scene"

// Mushroom размеры гриба для клиентского рендера. Сервер геометрию не
// рисует, но служит единственным источником правды о ее пропорциях,
// чтобы облако сердец и меш шляпки совпадали у всех клиентов.
type Mushroom struct {
	CapCenterY float32 `json:"cap_center_y"`
	CapRadius  float32 `json:"cap_radius"`
	StemRadius float32 `json:"stem_radius"`
	StemHeight float32 `json:"stem_height"`
	CapColor   string  `json:"cap_color"`
	StemColor  string  `json:"stem_color"`
	SpotColor  string  `json:"spot_color"`
}

// MushroomFromConfig выводит пропорции меша из конфигурации сцены
func MushroomFromConfig(cfg scene.Config) Mushroom {
	return Mushroom{
		CapCenterY: cfg.CapCenter.Y(),
		// Меш шляпки чуть шире объема, в котором прячутся сердца
		CapRadius:  cfg.CapRadius * 1.1,
		StemRadius: cfg.StemRadius,
		StemHeight: cfg.CapCenter.Y(),
		CapColor:   "#d6455d",
		StemColor:  "#f2e8d8",
		SpotColor:  "#fff4f4",
	}
}
