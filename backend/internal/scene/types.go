package scene

import "github.com/go-gl/mathgl/mgl32"

// ArchetypeKind тип поведения частицы во взорванном состоянии
type ArchetypeKind int

const (
	ArchetypeFront    ArchetypeKind = iota // прилипает к объективу камеры
	ArchetypeSurround                      // оболочка, следующая за позицией камеры
	ArchetypeScatter                       // неподвижное поле обломков в мире
)

// String возвращает имя архетипа для логов и телеметрии
func (k ArchetypeKind) String() string {
	switch k {
	case ArchetypeFront:
		return "front"
	case ArchetypeSurround:
		return "surround"
	case ArchetypeScatter:
		return "scatter"
	default:
		return "unknown"
	}
}

// FrontTarget параметры архетипа Front: смещение в локальных координатах
// камеры, вращается вместе с ней
type FrontTarget struct {
	Offset mgl32.Vec3
}

// SurroundTarget параметры архетипа Surround: статичное смещение от позиции
// камеры, ориентацию камеры не отслеживает
type SurroundTarget struct {
	Offset mgl32.Vec3
}

// ScatterTarget параметры архетипа Scatter: фиксированная точка мира,
// вычисляется один раз и никогда не пересчитывается
type ScatterTarget struct {
	Point mgl32.Vec3
}

// TargetDescriptor описывает поведение частицы во взорванном состоянии.
// Заполнен ровно один из указателей в соответствии с Kind.
type TargetDescriptor struct {
	Kind     ArchetypeKind
	Front    *FrontTarget
	Surround *SurroundTarget
	Scatter  *ScatterTarget
}

// Particle одно сердце облака. Дескриптор неизменен после создания:
// повторная рандомизация архетипа при каждом взрыве визуально
// "перетасовала" бы облако. Эволюционирует только Current.
type Particle struct {
	Home   mgl32.Vec3
	Target TargetDescriptor

	Color         [3]float32
	BaseScale     float32
	RotationSpeed float32
	ColorPhase    float32

	// Персональный множитель сглаживания в [0.8, 1.2), фиксируется при
	// создании, чтобы облако не двигалось механически синхронно
	SmoothJitter float32

	// Текущая позиция, единственное изменяемое поле
	Current mgl32.Vec3
}

// Firefly декоративная "флуоресцентная" частица. Статичная база плюс
// зависящие от времени колебания; между состояниями сцены не переходит.
type Firefly struct {
	Base     mgl32.Vec3
	Color    [3]float32
	Scale    float32
	BobSpeed float32
	BobPhase float32
}

// CameraPose позиция и ориентация камеры, приходит от рендера раз в кадр
type CameraPose struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
}

// FrameInput входные данные одного кадра симуляции, читаются один раз
// в начале тика
type FrameInput struct {
	Exploded bool
	Look     [2]float32
	Camera   CameraPose
}
