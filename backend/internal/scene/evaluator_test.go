package scene

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func frontParticle(offset mgl32.Vec3) *Particle {
	return &Particle{
		Home:   mgl32.Vec3{0, 3, 0},
		Target: TargetDescriptor{Kind: ArchetypeFront, Front: &FrontTarget{Offset: offset}},
	}
}

func surroundParticle(offset mgl32.Vec3) *Particle {
	return &Particle{
		Home:   mgl32.Vec3{0, 3, 0},
		Target: TargetDescriptor{Kind: ArchetypeSurround, Surround: &SurroundTarget{Offset: offset}},
	}
}

func scatterParticle(point mgl32.Vec3) *Particle {
	return &Particle{
		Home:   mgl32.Vec3{0, 3, 0},
		Target: TargetDescriptor{Kind: ArchetypeScatter, Scatter: &ScatterTarget{Point: point}},
	}
}

func vecclose(a, b mgl32.Vec3, eps float32) bool {
	return a.Sub(b).Len() <= eps
}

func TestDesiredPosition_GatheredIsHome(t *testing.T) {
	// В собранном состоянии желаемая позиция всегда дом, независимо
	// от архетипа, времени и камеры
	cam := CameraPose{Position: mgl32.Vec3{5, 5, 5}, Orientation: mgl32.QuatRotate(1.2, mgl32.Vec3{0, 1, 0})}

	particles := []*Particle{
		frontParticle(mgl32.Vec3{0, 0, -4}),
		surroundParticle(mgl32.Vec3{3, 0, 0}),
		scatterParticle(mgl32.Vec3{10, 2, -7}),
	}

	for i, p := range particles {
		for _, elapsed := range []float64{0, 1.5, 100} {
			desired := desiredPosition(p, i, false, elapsed, cam)
			if desired != p.Home {
				t.Errorf("Частица %d при t=%.1f: ожидали дом %v, получили %v", i, elapsed, p.Home, desired)
			}
		}
	}
}

func TestDesiredPosition_FrontAttachedToCamera(t *testing.T) {
	// Front жестко прикреплен к фрустуму: смещение вращается вместе
	// с ориентацией камеры и следует за ее позицией
	p := frontParticle(mgl32.Vec3{0, 0, -5})
	elapsed := 2.0
	osc := oscillation(0, elapsed)

	// Камера в нуле без поворота: частица ровно перед объективом
	camIdentity := CameraPose{Position: mgl32.Vec3{}, Orientation: mgl32.QuatIdent()}
	desired := desiredPosition(p, 0, true, elapsed, camIdentity).Sub(osc)
	if !vecclose(desired, mgl32.Vec3{0, 0, -5}, 1e-4) {
		t.Errorf("Front при камере в нуле: получили %v", desired)
	}

	// Поворот камеры на 90° вокруг Y уводит частицу влево от мировой оси Z
	camTurned := CameraPose{
		Position:    mgl32.Vec3{},
		Orientation: mgl32.QuatRotate(math.Pi/2, mgl32.Vec3{0, 1, 0}),
	}
	desired = desiredPosition(p, 0, true, elapsed, camTurned).Sub(osc)
	if !vecclose(desired, mgl32.Vec3{-5, 0, 0}, 1e-4) {
		t.Errorf("Front при повороте камеры на 90°: ожидали (-5, 0, 0), получили %v", desired)
	}

	// Перенос камеры переносит частицу на тот же вектор
	camMoved := CameraPose{Position: mgl32.Vec3{1, 2, 3}, Orientation: mgl32.QuatIdent()}
	desired = desiredPosition(p, 0, true, elapsed, camMoved).Sub(osc)
	if !vecclose(desired, mgl32.Vec3{1, 2, -2}, 1e-4) {
		t.Errorf("Front при переносе камеры: ожидали (1, 2, -2), получили %v", desired)
	}
}

func TestDesiredPosition_SurroundIgnoresRotation(t *testing.T) {
	// Surround следует за переносом камеры, но не за ее поворотом
	p := surroundParticle(mgl32.Vec3{4, 0, 0})
	elapsed := 1.0
	osc := oscillation(3, elapsed)

	base := CameraPose{Position: mgl32.Vec3{2, 1, 0}, Orientation: mgl32.QuatIdent()}
	turned := CameraPose{Position: mgl32.Vec3{2, 1, 0}, Orientation: mgl32.QuatRotate(1.1, mgl32.Vec3{0, 1, 0})}

	fromBase := desiredPosition(p, 3, true, elapsed, base).Sub(osc)
	fromTurned := desiredPosition(p, 3, true, elapsed, turned).Sub(osc)

	if !vecclose(fromBase, mgl32.Vec3{6, 1, 0}, 1e-4) {
		t.Errorf("Surround: ожидали (6, 1, 0), получили %v", fromBase)
	}
	if fromBase != fromTurned {
		t.Errorf("Surround отреагировал на поворот камеры: %v vs %v", fromBase, fromTurned)
	}

	// Перенос камеры двигает частицу
	moved := CameraPose{Position: mgl32.Vec3{0, 0, 5}, Orientation: mgl32.QuatIdent()}
	fromMoved := desiredPosition(p, 3, true, elapsed, moved).Sub(osc)
	if !vecclose(fromMoved, mgl32.Vec3{4, 0, 5}, 1e-4) {
		t.Errorf("Surround при переносе: ожидали (4, 0, 5), получили %v", fromMoved)
	}
}

func TestDesiredPosition_ScatterCameraIndependent(t *testing.T) {
	// Scatter — неподвижная мировая точка, любые перемещения камеры
	// не должны ее трогать
	point := mgl32.Vec3{-8, 4, 12}
	p := scatterParticle(point)
	elapsed := 3.0
	osc := oscillation(11, elapsed)

	poses := []CameraPose{
		{Position: mgl32.Vec3{}, Orientation: mgl32.QuatIdent()},
		{Position: mgl32.Vec3{100, -50, 3}, Orientation: mgl32.QuatRotate(2.5, mgl32.Vec3{1, 0, 0})},
		{Position: mgl32.Vec3{0, 1000, 0}, Orientation: mgl32.QuatRotate(0.3, mgl32.Vec3{0, 0, 1})},
	}

	for i, cam := range poses {
		desired := desiredPosition(p, 11, true, elapsed, cam).Sub(osc)
		if !vecclose(desired, point, 1e-5) {
			t.Errorf("Поза %d: scatter сдвинулся в %v, ожидали %v", i, desired, point)
		}
	}
}

func TestDesiredPosition_StationaryCameraInvariant(t *testing.T) {
	// При неподвижной камере желаемые позиции Front и Surround неизменны
	// от кадра к кадру, если вычесть общее колебание
	cam := CameraPose{Position: mgl32.Vec3{1, 4, 9}, Orientation: mgl32.QuatRotate(0.7, mgl32.Vec3{0, 1, 0})}

	particles := []*Particle{
		frontParticle(mgl32.Vec3{0.5, -0.2, -3}),
		surroundParticle(mgl32.Vec3{0, 0, 6}),
		scatterParticle(mgl32.Vec3{15, 2, 15}),
	}

	for i, p := range particles {
		var first mgl32.Vec3
		for frame := 0; frame < 100; frame++ {
			elapsed := float64(frame) / 60.0
			base := desiredPosition(p, i, true, elapsed, cam).Sub(oscillation(i, elapsed))
			if frame == 0 {
				first = base
				continue
			}
			if !vecclose(base, first, 1e-5) {
				t.Fatalf("Частица %d, кадр %d: база сместилась с %v на %v", i, frame, first, base)
			}
		}
	}
}

func TestOscillation_BoundsAndPhase(t *testing.T) {
	// Колебание ограничено ±0.2 по Y и ±0.1 по X, Z не трогает,
	// а индекс частицы разводит фазы
	for i := 0; i < 50; i++ {
		for tick := 0; tick < 200; tick++ {
			elapsed := float64(tick) * 0.05
			osc := oscillation(i, elapsed)

			if math.Abs(float64(osc.Y())) > oscAmplitudeY+1e-6 {
				t.Fatalf("Колебание Y %.4f выходит за ±%.1f", osc.Y(), oscAmplitudeY)
			}
			if math.Abs(float64(osc.X())) > oscAmplitudeX+1e-6 {
				t.Fatalf("Колебание X %.4f выходит за ±%.1f", osc.X(), oscAmplitudeX)
			}
			if osc.Z() != 0 {
				t.Fatalf("Колебание тронуло Z: %.4f", osc.Z())
			}
		}
	}

	// Частицы с разными индексами качаются не синхронно
	same := true
	for tick := 1; tick < 100; tick++ {
		elapsed := float64(tick) * 0.1
		if oscillation(0, elapsed) != oscillation(7, elapsed) {
			same = false
			break
		}
	}
	if same {
		t.Error("Колебания частиц 0 и 7 полностью совпадают, фазы не развязаны")
	}
}

func TestOscillation_SpotValues(t *testing.T) {
	// t=0, i=0: sin(0)=0, cos(0)=1 — смещение ровно (0.1, 0, 0)
	osc := oscillation(0, 0)
	if !vecclose(osc, mgl32.Vec3{0.1, 0, 0}, 1e-6) {
		t.Errorf("oscillation(0, 0): ожидали (0.1, 0, 0), получили %v", osc)
	}

	// t=π/2, i=0: sin=1 дает максимум по Y
	osc = oscillation(0, math.Pi/2)
	if math.Abs(float64(osc.Y())-0.2) > 1e-6 {
		t.Errorf("oscillation(0, π/2): ожидали Y=0.2, получили %.4f", osc.Y())
	}
}
