package stage

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Константы лесной поляны под грибом
const (
	// Физические размеры поляны в мире
	GroundPhysicalWidth = 60.0
	GroundPhysicalDepth = 60.0

	// Размер сетки высотной карты
	GroundGridSize = 64

	// Диапазон высот: пологий рельеф, гриб стоит на ровном пятачке
	GroundMinHeight = -0.6
	GroundMaxHeight = 1.2

	// Радиус ровного пятачка вокруг основания гриба (в клетках от центра)
	clearingRadius = 9.0
)

// Ground высотная карта поляны, уходит клиенту один раз в scene_config
type Ground struct {
	Width     int       `json:"width"`
	Depth     int       `json:"depth"`
	Heights   []float32 `json:"heights"`
	ScaleX    float32   `json:"scale_x"`
	ScaleZ    float32   `json:"scale_z"`
	MinHeight float32   `json:"min_height"`
	MaxHeight float32   `json:"max_height"`
}

// GenerateGround строит рельеф поляны фрактальным шумом Перлина.
// Несколько октав дают мягкие кочки, затухание у центра оставляет
// ровное место под основание гриба. Фиксированное зерно дает один и
// тот же рельеф для всех подключившихся клиентов.
func GenerateGround(seed int64) *Ground {
	const w, d = GroundGridSize, GroundGridSize

	noise := perlin.NewPerlin(2, 2, 3, seed)
	heights := make([]float32, w*d)

	octaves := []struct {
		scale     float64
		amplitude float64
	}{
		{1.0, 0.5},
		{2.0, 0.25},
		{4.0, 0.125},
	}

	heightRange := GroundMaxHeight - GroundMinHeight
	centerX := float64(w-1) / 2
	centerZ := float64(d-1) / 2

	for z := 0; z < d; z++ {
		for x := 0; x < w; x++ {
			nx := float64(x) / float64(w-1)
			nz := float64(z) / float64(d-1)

			elevation := 0.0
			for _, oct := range octaves {
				elevation += noise.Noise2D(nx*oct.scale*3.0, nz*oct.scale*3.0) * oct.amplitude
			}
			// Noise2D возвращает примерно [-1,1]; приводим к [0,1]
			elevation = (elevation + 1.0) * 0.5

			// Затухание к центру: ровный пятачок под грибом
			dx := float64(x) - centerX
			dz := float64(z) - centerZ
			distance := math.Sqrt(dx*dx + dz*dz)
			if distance < clearingRadius {
				falloff := distance / clearingRadius
				elevation *= falloff * falloff
			}

			heights[z*w+x] = float32(elevation*heightRange + GroundMinHeight)
		}
	}

	return &Ground{
		Width:     w,
		Depth:     d,
		Heights:   heights,
		ScaleX:    float32(GroundPhysicalWidth) / float32(w-1),
		ScaleZ:    float32(GroundPhysicalDepth) / float32(d-1),
		MinHeight: GroundMinHeight,
		MaxHeight: GroundMaxHeight,
	}
}

// HeightAt билинейно интерполированная высота поляны в мировой точке (x, z);
// за границами карты возвращается нулевой уровень
func (g *Ground) HeightAt(x, z float32) float32 {
	fx := float64(x)/float64(g.ScaleX) + float64(g.Width-1)/2
	fz := float64(z)/float64(g.ScaleZ) + float64(g.Depth-1)/2

	if fx < 0 || fz < 0 || fx > float64(g.Width-1) || fz > float64(g.Depth-1) {
		return 0
	}

	x0 := int(math.Floor(fx))
	z0 := int(math.Floor(fz))
	x1 := min(x0+1, g.Width-1)
	z1 := min(z0+1, g.Depth-1)

	tx := float32(fx - float64(x0))
	tz := float32(fz - float64(z0))

	h00 := g.Heights[z0*g.Width+x0]
	h10 := g.Heights[z0*g.Width+x1]
	h01 := g.Heights[z1*g.Width+x0]
	h11 := g.Heights[z1*g.Width+x1]

	hx0 := h00 + (h10-h00)*tx
	hx1 := h01 + (h11-h01)*tx
	return hx0 + (hx1-hx0)*tz
}
