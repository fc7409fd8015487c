package scene

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// NewHeartField создает count дескрипторов сердец. Домашние позиции
// распределяются по двум объемам: доля CapShare попадает в купол шляпки
// (радиус масштабируется кубическим корнем равномерной величины, иначе
// частицы скапливались бы у поверхности), остальные в короткий цилиндр
// под ней. Каждому сердцу один раз назначается архетип и его параметры.
// При count=0 возвращается пустой срез без побочных эффектов.
func NewHeartField(cfg Config, rng *rand.Rand) []Particle {
	hearts := make([]Particle, 0, cfg.HeartCount)

	for i := 0; i < cfg.HeartCount; i++ {
		var home mgl32.Vec3
		if rng.Float64() < cfg.CapShare {
			home = sampleCapHome(cfg, rng)
		} else {
			home = sampleStemHome(cfg, rng)
		}

		p := Particle{
			Home:          home,
			Target:        rollTarget(cfg, rng),
			Color:         heartColor(rng),
			BaseScale:     0.08 + rng.Float32()*0.08,
			RotationSpeed: randomSpin(rng),
			ColorPhase:    rng.Float32() * 2 * math.Pi,
			SmoothJitter:  0.8 + rng.Float32()*0.4,
			Current:       home,
		}
		hearts = append(hearts, p)
	}

	return hearts
}

// sampleCapHome равномерно по объему заполняет полусферический купол шляпки
func sampleCapHome(cfg Config, rng *rand.Rand) mgl32.Vec3 {
	dir := randomUnitVector(rng)
	if dir.Y() < 0 {
		// Складываем нижнюю полусферу наверх: купол, плоский снизу
		dir = mgl32.Vec3{dir.X(), -dir.Y(), dir.Z()}
	}

	r := cfg.CapRadius * float32(math.Cbrt(rng.Float64()))
	return cfg.CapCenter.Add(dir.Mul(r))
}

// sampleStemHome заполняет короткий цилиндр под центром шляпки
func sampleStemHome(cfg Config, rng *rand.Rand) mgl32.Vec3 {
	angle := rng.Float64() * 2 * math.Pi
	// Корень из равномерной величины дает равномерную плотность по площади диска
	r := cfg.StemRadius * float32(math.Sqrt(rng.Float64()))

	x := r * float32(math.Cos(angle))
	z := r * float32(math.Sin(angle))
	y := cfg.CapCenter.Y() - rng.Float32()*cfg.StemHeight

	return mgl32.Vec3{cfg.CapCenter.X() + x, y, cfg.CapCenter.Z() + z}
}

// rollTarget назначает архетип по фиксированному кумулятивному разбиению
// [0,1) и вычисляет его параметры. Вызывается ровно один раз на частицу.
func rollTarget(cfg Config, rng *rand.Rand) TargetDescriptor {
	u := rng.Float64()
	switch {
	case u < FrontThreshold:
		return TargetDescriptor{
			Kind:  ArchetypeFront,
			Front: &FrontTarget{Offset: sampleFrontOffset(cfg, rng)},
		}
	case u < SurroundThreshold:
		return TargetDescriptor{
			Kind:     ArchetypeSurround,
			Surround: &SurroundTarget{Offset: sampleSurroundOffset(cfg, rng)},
		}
	default:
		return TargetDescriptor{
			Kind:    ArchetypeScatter,
			Scatter: &ScatterTarget{Point: sampleScatterPoint(cfg, rng)},
		}
	}
}

// sampleFrontOffset выбирает точку на диске перед объективом. Радиус диска
// растет с глубиной, чтобы дальние частицы получали пропорционально больший
// разброс и облако не сжималось перспективой в комок.
func sampleFrontOffset(cfg Config, rng *rand.Rand) mgl32.Vec3 {
	depth := cfg.FrontDepthMin + rng.Float32()*(cfg.FrontDepthMax-cfg.FrontDepthMin)
	diskR := depth * cfg.FrontDiskSlope * float32(math.Sqrt(rng.Float64()))
	angle := rng.Float64() * 2 * math.Pi

	// Камера смотрит вдоль -Z в собственных координатах
	return mgl32.Vec3{
		diskR * float32(math.Cos(angle)),
		diskR * float32(math.Sin(angle)),
		-depth,
	}
}

// sampleSurroundOffset выбирает точку на поверхности сферической оболочки
// вокруг камеры
func sampleSurroundOffset(cfg Config, rng *rand.Rand) mgl32.Vec3 {
	r := cfg.SurroundRadiusMin + rng.Float32()*(cfg.SurroundRadiusMax-cfg.SurroundRadiusMin)
	return randomUnitVector(rng).Mul(r)
}

// sampleScatterPoint выбирает неподвижную мировую точку: случайное
// направление, дальность и подъем вверх, чтобы поле обломков висело
// над землей
func sampleScatterPoint(cfg Config, rng *rand.Rand) mgl32.Vec3 {
	dist := cfg.ScatterDistMin + rng.Float32()*(cfg.ScatterDistMax-cfg.ScatterDistMin)
	p := randomUnitVector(rng).Mul(dist)
	return p.Add(mgl32.Vec3{0, cfg.ScatterLift, 0})
}

// NewFireflyShell создает count светлячков в тонкой сферической оболочке
// вокруг шляпки гриба
func NewFireflyShell(cfg Config, rng *rand.Rand) []Firefly {
	flies := make([]Firefly, 0, cfg.FireflyCount)

	for i := 0; i < cfg.FireflyCount; i++ {
		r := cfg.FireflyShellMin + rng.Float32()*(cfg.FireflyShellMax-cfg.FireflyShellMin)
		base := cfg.CapCenter.Add(randomUnitVector(rng).Mul(r))

		flies = append(flies, Firefly{
			Base:     base,
			Color:    fireflyColor(rng),
			Scale:    0.03 + rng.Float32()*0.03,
			BobSpeed: 0.6 + rng.Float32()*0.8,
			BobPhase: rng.Float32() * 2 * math.Pi,
		})
	}

	return flies
}

// randomUnitVector равномерно распределенное направление на единичной сфере
func randomUnitVector(rng *rand.Rand) mgl32.Vec3 {
	y := rng.Float64()*2 - 1
	phi := rng.Float64() * 2 * math.Pi
	s := math.Sqrt(1 - y*y)

	return mgl32.Vec3{
		float32(s * math.Cos(phi)),
		float32(y),
		float32(s * math.Sin(phi)),
	}
}

// randomSpin скорость вращения сердца: величина в [0.5, 2.0), случайный знак
func randomSpin(rng *rand.Rand) float32 {
	speed := 0.5 + rng.Float32()*1.5
	if rng.IntN(2) == 0 {
		return -speed
	}
	return speed
}
