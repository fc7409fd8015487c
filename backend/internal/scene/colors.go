package scene

import (
	"math/rand/v2"

	"github.com/crazy3lf/colorconv"
)

// Базовые оттенки частиц в градусах HSV: сердца розово-красные,
// светлячки зелено-желтые.
const (
	heartHueBase   = 340.0
	heartHueSpread = 25.0

	fireflyHueBase   = 95.0
	fireflyHueSpread = 35.0
)

// heartColor генерирует базовый цвет сердца: розовый с разбросом оттенка,
// насыщенности и яркости
func heartColor(rng *rand.Rand) [3]float32 {
	hue := wrapHue(heartHueBase + (rng.Float64()*2-1)*heartHueSpread)
	sat := 0.6 + rng.Float64()*0.3
	val := 0.8 + rng.Float64()*0.2

	r, g, b, _ := colorconv.HSVToRGB(hue, sat, val)
	return [3]float32{float32(r) / 255.0, float32(g) / 255.0, float32(b) / 255.0}
}

// fireflyColor генерирует цвет светлячка в зелено-желтой гамме
func fireflyColor(rng *rand.Rand) [3]float32 {
	hue := wrapHue(fireflyHueBase + (rng.Float64()*2-1)*fireflyHueSpread)
	sat := 0.45 + rng.Float64()*0.25
	val := 0.9 + rng.Float64()*0.1

	r, g, b, _ := colorconv.HSVToRGB(hue, sat, val)
	return [3]float32{float32(r) / 255.0, float32(g) / 255.0, float32(b) / 255.0}
}

// wrapHue приводит оттенок в диапазон [0, 360), допустимый для colorconv
func wrapHue(h float64) float64 {
	for h < 0 {
		h += 360.0
	}
	for h >= 360.0 {
		h -= 360.0
	}
	return h
}
