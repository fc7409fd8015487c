package scene

import (
	"log"
	"math/rand/v2"
	"time"

	"github.com/aquilax/go-perlin"
)

// Scene авторитетное состояние сцены: облако сердец, оболочка светлячков,
// поворот корня и буферы инстансов. Все мутации происходят в Advance,
// который вызывается ровно один раз за тик из единственной горутины
// игрового цикла — внутренних блокировок нет и не требуется.
type Scene struct {
	cfg Config

	hearts  []Particle
	flies   []Firefly
	buffers *InstanceBuffers
	root    RootTransform
	wander  *perlin.Perlin

	elapsed  float64
	frames   uint64
	exploded bool

	logger *log.Logger
}

// New создает сцену с заданной конфигурацией. Источник случайности
// передается снаружи, чтобы тесты могли фиксировать зерно.
func New(cfg Config, rng *rand.Rand, logger *log.Logger) *Scene {
	if logger == nil {
		logger = log.Default()
	}

	s := &Scene{
		cfg:     cfg,
		hearts:  NewHeartField(cfg, rng),
		flies:   NewFireflyShell(cfg, rng),
		buffers: NewInstanceBuffers(cfg.HeartCount, cfg.FireflyCount),
		wander:  newWanderField(int64(rng.Uint64() >> 1)),
		logger:  logger,
	}

	logger.Printf("[Scene] Сцена создана: %d сердец, %d светлячков", len(s.hearts), len(s.flies))

	// Первый кадр заполняет буферы домашними позициями
	s.uploadInstances()

	return s
}

// Advance продвигает симуляцию на dt. Порядок фиксирован: поворот корня,
// пересчет позы камеры в локальные координаты, оценка и интеграция всех
// частиц, затем единственный проход записи в буферы инстансов.
func (s *Scene) Advance(dt time.Duration, in FrameInput) {
	step := dt.Seconds()
	if step <= 0 {
		return
	}

	s.elapsed += step
	s.frames++
	s.exploded = in.Exploded

	s.root.Apply(in.Look, s.cfg)
	localCam := s.root.PoseToLocal(in.Camera)

	speed := convergenceSpeed(s.cfg, in.Exploded)
	for i := range s.hearts {
		p := &s.hearts[i]
		desired := desiredPosition(p, i, in.Exploded, s.elapsed, localCam)
		integrate(p, desired, speed, step)
	}

	s.uploadInstances()
}

// uploadInstances записывает трансформации и цвета всех частиц в буферы
// одним проходом и один раз помечает их грязными
func (s *Scene) uploadInstances() {
	t := s.elapsed

	for i := range s.hearts {
		p := &s.hearts[i]

		rot := heartRotation(p, t)
		scale := heartScale(p, s.cfg.PopInRadius)
		glow := twinkleFactor(p, t)

		s.buffers.writeHeart(i,
			p.Current.X(), p.Current.Y(), p.Current.Z(),
			rot.X(), rot.Y(), rot.Z(), rot.W,
			scale,
			p.Color[0]*glow, p.Color[1]*glow, p.Color[2]*glow,
		)
	}

	for i := range s.flies {
		f := &s.flies[i]

		pos := fireflyPosition(f, t, fireflyWander(s.wander, f, t))
		s.buffers.writeFirefly(i,
			pos.X(), pos.Y(), pos.Z(),
			f.Scale,
			f.Color[0], f.Color[1], f.Color[2],
		)
	}

	s.buffers.markDirty()
}

// Buffers буферы инстансов текущего кадра. Читать разрешено только из
// горутины игрового цикла либо после его остановки.
func (s *Scene) Buffers() *InstanceBuffers {
	return s.buffers
}

// Config конфигурация сцены
func (s *Scene) Config() Config {
	return s.cfg
}

// Elapsed накопленное время симуляции в секундах
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

// Exploded состояние, примененное последним кадром
func (s *Scene) Exploded() bool {
	return s.exploded
}

// Root текущий поворот корня сцены
func (s *Scene) Root() RootTransform {
	return s.root
}

// Hearts прямой доступ к частицам для инспекции в тестах и телеметрии
func (s *Scene) Hearts() []Particle {
	return s.hearts
}

// Fireflies прямой доступ к светлячкам
func (s *Scene) Fireflies() []Firefly {
	return s.flies
}
