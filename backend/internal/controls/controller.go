package controls

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"

	"x-spores/backend/internal/scene"
)

// Метки жестов, которые выдает внешний классификатор. Все прочие метки
// игнорируются: переход требует явного позитивного распознавания в обе
// стороны, "все что не ладонь" кулаком не считается.
const (
	GestureOpenPalm   = "open_palm"
	GestureClosedFist = "closed_fist"
)

// ConfidenceThreshold порог уверенности классификатора. Сравнение строгое:
// ровно 0.5 переход не запускает.
const ConfidenceThreshold = 0.5

// InputMode режим источника ввода
type InputMode int32

const (
	ModePointer InputMode = iota // указатель/мышь
	ModeCamera                   // классификатор жестов по веб-камере
)

// String имя режима для логов и сообщений
func (m InputMode) String() string {
	if m == ModeCamera {
		return "camera"
	}
	return "pointer"
}

// ErrCameraBusy режим камеры уже занят другой сессией
var ErrCameraBusy = errors.New("camera mode is held by another session")

// StateNotifier получает уведомления о смене состояния сцены.
// Устанавливается транспортом для рассылки клиентам.
type StateNotifier interface {
	NotifyStateChanged(exploded bool, source string)
}

// Controller единственный владелец состояния "собрано/взорвано" и
// look-вектора. Пишут обработчики ввода из горутин транспорта, читает
// игровой цикл раз в кадр. Булево состояние атомарно, look-вектор под
// мьютексом; согласованности между ними не требуется.
type Controller struct {
	exploded atomic.Bool
	mode     atomic.Int32

	mu          sync.Mutex // сериализует переходы состояния
	cameraOwner string     // сессия, удерживающая режим камеры

	look lookState

	notifier StateNotifier
	logger   *log.Logger

	// Счетчики для телеметрии
	transitions      atomic.Uint64
	gesturesAccepted atomic.Uint64
	gesturesRejected atomic.Uint64
}

// NewController создает контроллер в собранном состоянии и режиме указателя
func NewController(logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{logger: logger}
}

// SetNotifier устанавливает получателя уведомлений о переходах
func (c *Controller) SetNotifier(n StateNotifier) {
	c.notifier = n
}

// Exploded текущее состояние; безопасно из любой горутины
func (c *Controller) Exploded() bool {
	return c.exploded.Load()
}

// Mode текущий режим ввода
func (c *Controller) Mode() InputMode {
	return InputMode(c.mode.Load())
}

// PointerPress нажатие указателя: собирает облако. В режиме камеры
// игнорируется, производитель состояния ровно один.
func (c *Controller) PointerPress() bool {
	if c.Mode() != ModePointer {
		return false
	}
	return c.setExploded(false, "pointer")
}

// PointerRelease отпускание указателя: взрывает облако
func (c *Controller) PointerRelease() bool {
	if c.Mode() != ModePointer {
		return false
	}
	return c.setExploded(true, "pointer")
}

// HandleGesture обрабатывает результат классификатора от сессии session.
// Возвращает true, если произошел переход. Срабатывают только явные метки
// с уверенностью строго выше порога; шумный посадровый выход классификатора
// состояние не дергает.
func (c *Controller) HandleGesture(session, label string, confidence float64) bool {
	if c.Mode() != ModeCamera || !c.isCameraOwner(session) {
		c.gesturesRejected.Add(1)
		return false
	}

	if confidence <= ConfidenceThreshold {
		c.gesturesRejected.Add(1)
		return false
	}

	switch label {
	case GestureOpenPalm:
		c.gesturesAccepted.Add(1)
		return c.setExploded(true, "gesture")
	case GestureClosedFist:
		c.gesturesAccepted.Add(1)
		return c.setExploded(false, "gesture")
	default:
		c.gesturesRejected.Add(1)
		return false
	}
}

// setExploded выполняет переход, если состояние действительно меняется
func (c *Controller) setExploded(exploded bool, source string) bool {
	c.mu.Lock()
	if c.exploded.Load() == exploded {
		c.mu.Unlock()
		return false
	}

	c.exploded.Store(exploded)
	c.transitions.Add(1)
	c.mu.Unlock()

	state := "собрано"
	if exploded {
		state = "взорвано"
	}
	c.logger.Printf("[Controls] Переход состояния: %s (источник: %s)", state, source)

	// Уведомление уходит вне мьютекса: рассылка пишет в сеть и берет
	// собственные блокировки транспорта
	if c.notifier != nil {
		c.notifier.NotifyStateChanged(exploded, source)
	}
	return true
}

// EnterCameraMode переводит сцену в режим камеры от имени сессии session.
// Ресурсы захватываются эксклюзивно: если режим уже удерживается другой
// сессией, возвращается ErrCameraBusy.
func (c *Controller) EnterCameraMode(session string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cameraOwner != "" && c.cameraOwner != session {
		return ErrCameraBusy
	}

	c.cameraOwner = session
	c.mode.Store(int32(ModeCamera))
	c.logger.Printf("[Controls] Режим камеры включен (сессия %s)", session)
	return nil
}

// LeaveCameraMode освобождает режим камеры, если его держит session,
// и возвращает сцену в режим указателя
func (c *Controller) LeaveCameraMode(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseCameraLocked(session)
}

// ReleaseSession вызывается на любом пути завершения сессии, включая
// ошибочные: обрыв соединения не должен оставить захваченный режим камеры
func (c *Controller) ReleaseSession(session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releaseCameraLocked(session)
}

func (c *Controller) releaseCameraLocked(session string) {
	if c.cameraOwner != session || session == "" {
		return
	}
	c.cameraOwner = ""
	c.mode.Store(int32(ModePointer))
	c.logger.Printf("[Controls] Режим камеры освобожден (сессия %s), возврат к указателю", session)
}

func (c *Controller) isCameraOwner(session string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cameraOwner == session
}

// IsCameraOwner сообщает, удерживает ли сессия режим камеры.
// Транспорт использует это, чтобы отбрасывать позы камеры от чужих сессий.
func (c *Controller) IsCameraOwner(session string) bool {
	return c.isCameraOwner(session)
}

// SetLookTarget обновляет целевой look-вектор. Значения зажимаются в
// [-1,1], NaN и бесконечности отбрасываются до попадания в буферы позиций.
func (c *Controller) SetLookTarget(x, y float64) {
	c.look.setTarget(x, y)
}

// SetCameraPose сохраняет позу камеры, присланную рендером
func (c *Controller) SetCameraPose(pose scene.CameraPose) {
	c.look.setCamera(pose)
}

// FrameInput собирает вход кадра: продвигает сглаживание look-вектора на dt
// и снимает атомарный снимок состояния. Вызывается только игровым циклом.
func (c *Controller) FrameInput(dt float64) scene.FrameInput {
	look := c.look.advance(dt)
	return scene.FrameInput{
		Exploded: c.exploded.Load(),
		Look:     look,
		Camera:   c.look.camera(),
	}
}

// Stats счетчики контроллера для телеметрии и /stats
func (c *Controller) Stats() map[string]interface{} {
	return map[string]interface{}{
		"exploded":          c.exploded.Load(),
		"mode":              c.Mode().String(),
		"transitions":       c.transitions.Load(),
		"gestures_accepted": c.gesturesAccepted.Load(),
		"gestures_rejected": c.gesturesRejected.Load(),
		"look_clamped":      c.look.clampedCount(),
	}
}
