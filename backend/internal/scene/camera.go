package scene

import "github.com/go-gl/mathgl/mgl32"

// RootTransform поворот корня сцены, управляемый сглаженным look-вектором.
// Весь гриб с облаком слегка доворачивается за взглядом наблюдателя.
type RootTransform struct {
	Yaw   float32
	Pitch float32
}

// Apply пересчитывает углы корня из look-вектора в [-1,1]²
func (r *RootTransform) Apply(look [2]float32, cfg Config) {
	r.Yaw = -look[0] * cfg.LookYawRange
	r.Pitch = look[1] * cfg.LookPitchRange
}

// Quat ориентация корня сцены
func (r *RootTransform) Quat() mgl32.Quat {
	qYaw := mgl32.QuatRotate(r.Yaw, mgl32.Vec3{0, 1, 0})
	qPitch := mgl32.QuatRotate(r.Pitch, mgl32.Vec3{1, 0, 0})
	return qYaw.Mul(qPitch).Normalize()
}

// PoseToLocal приводит мировую позу камеры в локальные координаты сцены.
// Родительский узел частиц вращается look-вектором каждый кадр, поэтому
// пересчет обязан выполняться заново в каждом кадре: закешированная поза
// дает видимое отставание частиц Front от объектива.
func (r *RootTransform) PoseToLocal(world CameraPose) CameraPose {
	inv := r.Quat().Inverse()
	return CameraPose{
		Position:    inv.Rotate(world.Position),
		Orientation: inv.Mul(world.Orientation).Normalize(),
	}
}
