package controls

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"

	"x-spores/backend/internal/scene"
)

// lookSmoothRate скорость экспоненциального сглаживания look-вектора
// (единиц в секунду): примерно 10% замыкания за кадр при 60 Гц,
// независимо от частоты кадров
const lookSmoothRate = 6.0

// lookState целевой и сглаженный look-вектор плюс последняя поза камеры.
// Цель пишут горутины транспорта, сглаживание продвигает игровой цикл.
type lookState struct {
	mu      sync.Mutex
	target  [2]float32
	current [2]float32
	pose    scene.CameraPose
	hasPose bool

	clamped atomic.Uint64
}

// setTarget зажимает вход в [-1,1]. NaN и бесконечности отбрасываются
// целиком, цель остается прежней: одно NaN-значение в буфере позиций
// портит весь инстансированный вызов отрисовки
func (l *lookState) setTarget(x, y float64) {
	if !isFinite(x) || !isFinite(y) {
		l.clamped.Add(1)
		return
	}

	sx, okX := clampUnit(x)
	sy, okY := clampUnit(y)
	if !okX || !okY {
		l.clamped.Add(1)
	}

	l.mu.Lock()
	l.target[0] = sx
	l.target[1] = sy
	l.mu.Unlock()
}

// advance продвигает сглаживание к цели и возвращает текущее значение
func (l *lookState) advance(dt float64) [2]float32 {
	blend := float32(1 - math.Exp(-lookSmoothRate*dt))

	l.mu.Lock()
	defer l.mu.Unlock()

	l.current[0] += (l.target[0] - l.current[0]) * blend
	l.current[1] += (l.target[1] - l.current[1]) * blend
	return l.current
}

func (l *lookState) setCamera(pose scene.CameraPose) {
	if !poseValid(pose) {
		l.clamped.Add(1)
		return
	}

	l.mu.Lock()
	l.pose = pose
	l.hasPose = true
	l.mu.Unlock()
}

func (l *lookState) camera() scene.CameraPose {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.hasPose {
		return defaultPose()
	}
	return l.pose
}

func (l *lookState) clampedCount() uint64 {
	return l.clamped.Load()
}

// clampUnit зажимает значение в [-1,1]; второй результат false, если
// вход пришлось исправлять
func clampUnit(v float64) (float32, bool) {
	if v > 1 {
		return 1, false
	}
	if v < -1 {
		return -1, false
	}
	return float32(v), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// poseValid проверяет позу камеры на NaN/Inf во всех компонентах
func poseValid(pose scene.CameraPose) bool {
	vals := []float32{
		pose.Position.X(), pose.Position.Y(), pose.Position.Z(),
		pose.Orientation.X(), pose.Orientation.Y(), pose.Orientation.Z(), pose.Orientation.W,
	}
	for _, v := range vals {
		if !isFinite(float64(v)) {
			return false
		}
	}
	return true
}

// defaultPose камера по умолчанию до первого сообщения рендера: смотрит
// на гриб спереди
func defaultPose() scene.CameraPose {
	return scene.CameraPose{
		Position:    mgl32.Vec3{0, 3.2, 7},
		Orientation: mgl32.QuatIdent(),
	}
}
