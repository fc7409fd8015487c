package scene

import (
	"math"
	"testing"
)

func TestWrapHue(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{359.5, 359.5},
		{360, 0},
		{725, 5},
		{-20, 340},
		{-380, 340},
	}

	for _, tt := range tests {
		if got := wrapHue(tt.in); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("wrapHue(%.1f) = %.1f, ожидали %.1f", tt.in, got, tt.want)
		}
	}
}

func TestParticleColors_Palette(t *testing.T) {
	rng := testRand(21)

	// Сердца розово-красные: красный канал доминирует
	for i := 0; i < 200; i++ {
		c := heartColor(rng)
		for ch, v := range c {
			if v < 0 || v > 1 {
				t.Fatalf("Сердце %d: канал %d вне [0,1]: %.3f", i, ch, v)
			}
		}
		if c[0] <= c[1] || c[0] <= c[2] {
			t.Errorf("Сердце %d: красный не доминирует: %v", i, c)
		}
	}

	// Светлячки зелено-желтые: зеленый канал не уступает остальным
	for i := 0; i < 200; i++ {
		c := fireflyColor(rng)
		if c[1] < c[0] || c[1] <= c[2] {
			t.Errorf("Светлячок %d: зеленый не доминирует: %v", i, c)
		}
	}
}
