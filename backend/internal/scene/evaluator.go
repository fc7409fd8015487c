package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Амплитуды общего колебания взорванного облака
const (
	oscAmplitudeY = 0.2
	oscAmplitudeX = 0.1
	oscPhaseStep  = 0.1
)

// desiredPosition вычисляет желаемую позицию частицы в текущем кадре.
// В собранном состоянии это всегда дом: все видимое движение возврата
// дает шаг сглаживания. Во взорванном состоянии позиция зависит от
// архетипа, а камера обязана быть уже приведена в локальные координаты
// сцены (см. PoseToLocal) — устаревшая поза дает видимый рассинхрон.
func desiredPosition(p *Particle, index int, exploded bool, t float64, cam CameraPose) mgl32.Vec3 {
	if !exploded {
		return p.Home
	}

	var base mgl32.Vec3
	switch p.Target.Kind {
	case ArchetypeFront:
		// Жестко прикреплено к фрустуму: смещение вращается ориентацией камеры
		base = cam.Position.Add(cam.Orientation.Rotate(p.Target.Front.Offset))
	case ArchetypeSurround:
		// Следует за переносом камеры, но не за ее поворотом
		base = cam.Position.Add(p.Target.Surround.Offset)
	case ArchetypeScatter:
		// Неподвижная мировая точка, от камеры не зависит
		base = p.Target.Scatter.Point
	default:
		base = p.Home
	}

	return base.Add(oscillation(index, t))
}

// oscillation общее для всех взорванных частиц покачивание; фаза
// декоррелируется индексом частицы, персонального состояния нет
func oscillation(index int, t float64) mgl32.Vec3 {
	phase := t + float64(index)*oscPhaseStep
	dy := math.Sin(phase) * oscAmplitudeY
	dx := math.Cos(0.5*t+float64(index)*oscPhaseStep) * oscAmplitudeX
	return mgl32.Vec3{float32(dx), float32(dy), 0}
}
