package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Параметры мерцания цвета: только значения синуса выше порога усиливают
// яркость, получаются редкие вспышки вместо непрерывного "дыхания"
const (
	twinkleFrequency = 5.0
	twinkleThreshold = 0.5
	twinkleBoost     = 0.8
)

// integrate подтягивает текущую позицию частицы к желаемой экспоненциальным
// сглаживанием, не зависящим от частоты кадров: при 30 и 144 Гц поведение
// визуально эквивалентно. Персональный джиттер частицы разводит фазы
// движения соседей. Позиция никогда не сбрасывается при смене состояния,
// поэтому резкое повторное переключение дает плавный разворот, а не скачок.
func integrate(p *Particle, desired mgl32.Vec3, speed float32, dt float64) {
	blend := 1 - math.Exp(-float64(speed*p.SmoothJitter)*dt)
	p.Current = p.Current.Add(desired.Sub(p.Current).Mul(float32(blend)))
}

// convergenceSpeed возврат домой быстрее разлета: "защелкивание" шляпки
// обратно ощущается отзывчивее
func convergenceSpeed(cfg Config, exploded bool) float32 {
	if exploded {
		return cfg.ExplodeSpeed
	}
	return cfg.GatherSpeed
}

// heartScale масштаб сердца в текущем кадре. Рядом с домом масштаб гасится
// пропорционально оставшейся дистанции: при запуске сердце вырастает из
// шляпки, а не появляется сразу в полный размер, при возврате прячется в нее.
// Производная величина, не хранится.
func heartScale(p *Particle, popInRadius float32) float32 {
	if popInRadius <= 0 {
		return p.BaseScale
	}

	d := p.Current.Sub(p.Home).Len()
	if d >= popInRadius {
		return p.BaseScale
	}
	return p.BaseScale * (d / popInRadius)
}

// heartRotation ориентация сердца: чистая функция времени вокруг двух осей,
// без накопленного состояния — анимация тривиально возобновляема
func heartRotation(p *Particle, t float64) mgl32.Quat {
	angle := float32(t) * p.RotationSpeed
	qy := mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})
	qx := mgl32.QuatRotate(angle*0.7, mgl32.Vec3{1, 0, 0})
	return qy.Mul(qx).Normalize()
}

// twinkleFactor множитель яркости кадра для мерцания цвета
func twinkleFactor(p *Particle, t float64) float32 {
	s := math.Sin(twinkleFrequency*t + float64(p.ColorPhase))
	if s <= twinkleThreshold {
		return 1.0
	}
	return 1.0 + float32(s-twinkleThreshold)*twinkleBoost
}

// fireflyPosition позиция светлячка: статичная база, вертикальное
// покачивание и медленный горизонтальный дрейф, который добавляет
// шумовое поле сцены
func fireflyPosition(f *Firefly, t float64, wander mgl32.Vec3) mgl32.Vec3 {
	bob := float32(math.Sin(float64(f.BobSpeed)*t+float64(f.BobPhase))) * 0.12
	return f.Base.Add(mgl32.Vec3{0, bob, 0}).Add(wander)
}
