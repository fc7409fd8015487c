package scene

import "github.com/go-gl/mathgl/mgl32"

// Константы распределения частиц по архетипам движения.
// Кумулятивные пороги обязаны разбивать [0,1) точно, без зазоров и перекрытий:
// [0, 0.116) -> Front, [0.116, 0.537) -> Surround, [0.537, 1.0) -> Scatter.
const (
	FrontThreshold    = 0.116
	SurroundThreshold = 0.537
)

// Config описывает все настройки сцены: геометрию гриба, размеры облака
// сердец, параметры архетипов и скорости сглаживания.
type Config struct {
	// Количество частиц
	HeartCount   int `json:"heart_count"`
	FireflyCount int `json:"firefly_count"`

	// Геометрия гриба (локальные координаты сцены, основание ножки в нуле)
	CapCenter  mgl32.Vec3 `json:"cap_center"`
	CapRadius  float32    `json:"cap_radius"`
	StemRadius float32    `json:"stem_radius"`
	StemHeight float32    `json:"stem_height"`

	// Доля сердец, рождающихся в куполе шляпки; остаток уходит в цилиндр под ней
	CapShare float64 `json:"cap_share"`

	// Параметры архетипа Front: глубина перед камерой и коэффициент разлета диска
	FrontDepthMin  float32 `json:"front_depth_min"`
	FrontDepthMax  float32 `json:"front_depth_max"`
	FrontDiskSlope float32 `json:"front_disk_slope"`

	// Параметры архетипа Surround: радиус сферической оболочки вокруг камеры
	SurroundRadiusMin float32 `json:"surround_radius_min"`
	SurroundRadiusMax float32 `json:"surround_radius_max"`

	// Параметры архетипа Scatter: дальность разлета и вертикальное смещение
	ScatterDistMin float32 `json:"scatter_dist_min"`
	ScatterDistMax float32 `json:"scatter_dist_max"`
	ScatterLift    float32 `json:"scatter_lift"`

	// Скорости сглаживания (единиц в секунду): возврат быстрее разлета
	ExplodeSpeed float32 `json:"explode_speed"`
	GatherSpeed  float32 `json:"gather_speed"`

	// Радиус, внутри которого масштаб сердца гасится к нулю у дома
	PopInRadius float32 `json:"pop_in_radius"`

	// Оболочка светлячков вокруг шляпки
	FireflyShellMin float32 `json:"firefly_shell_min"`
	FireflyShellMax float32 `json:"firefly_shell_max"`

	// Максимальные углы поворота корня сцены от look-вектора (радианы)
	LookYawRange   float32 `json:"look_yaw_range"`
	LookPitchRange float32 `json:"look_pitch_range"`
}

// DefaultConfig возвращает конфигурацию сцены по умолчанию.
func DefaultConfig() Config {
	return Config{
		HeartCount:   1900,
		FireflyCount: 100,

		CapCenter:  mgl32.Vec3{0, 3.2, 0},
		CapRadius:  1.45,
		StemRadius: 0.5,
		StemHeight: 1.2,

		CapShare: 0.7,

		FrontDepthMin:  2.0,
		FrontDepthMax:  6.0,
		FrontDiskSlope: 0.35,

		SurroundRadiusMin: 2.0,
		SurroundRadiusMax: 7.0,

		ScatterDistMin: 6.0,
		ScatterDistMax: 22.0,
		ScatterLift:    2.0,

		ExplodeSpeed: 3.0,
		GatherSpeed:  6.0,

		PopInRadius: 0.2,

		FireflyShellMin: 2.2,
		FireflyShellMax: 3.4,

		LookYawRange:   0.5,
		LookPitchRange: 0.3,
	}
}
