package scene

import (
	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

// Параметры дрейфа светлячков в шумовом поле
const (
	wanderScale     = 0.3
	wanderTimeScale = 0.15
	wanderAmplitude = 0.25
)

// newWanderField создает шумовое поле для горизонтального дрейфа светлячков
func newWanderField(seed int64) *perlin.Perlin {
	return perlin.NewPerlin(2, 2, 3, seed)
}

// fireflyWander медленное горизонтальное смещение светлячка, непрерывное
// по времени. Поле привязано к базовой позиции, поэтому у каждого
// светлячка собственная траектория без персонального состояния.
func fireflyWander(field *perlin.Perlin, f *Firefly, t float64) mgl32.Vec3 {
	bx := float64(f.Base.X()) * wanderScale
	bz := float64(f.Base.Z()) * wanderScale
	ts := t * wanderTimeScale

	dx := field.Noise3D(bx, bz, ts)
	dz := field.Noise3D(bz, bx, ts+17.0)

	return mgl32.Vec3{float32(dx) * wanderAmplitude, 0, float32(dz) * wanderAmplitude}
}
