package sim

import (
	"log"
	"time"

	"x-spores/backend/internal/controls"
	"x-spores/backend/internal/scene"
	"x-spores/backend/internal/telemetry"
)

// FrameBroadcaster интерфейс для отправки кадров сцены (будет установлен извне)
type FrameBroadcaster interface {
	BroadcastFrame(buffers *scene.InstanceBuffers, simTime float64, exploded bool)
}

// SceneSystem продвигает симуляцию сцены на каждый тик.
// Единственное место, где вызывается scene.Advance, поэтому буферы
// инстансов меняются строго в горутине тикера.
type SceneSystem struct {
	name     string
	priority int
	ticker   *Ticker
	scene    *scene.Scene
	controls *controls.Controller
	logger   *log.Logger
}

// NewSceneSystem создает систему обновления сцены
func NewSceneSystem(ticker *Ticker, sc *scene.Scene, ctrl *controls.Controller, logger *log.Logger) *SceneSystem {
	if logger == nil {
		logger = log.Default()
	}
	return &SceneSystem{
		name:     "SceneSystem",
		priority: 10, // Сцена обновляется первой
		ticker:   ticker,
		scene:    sc,
		controls: ctrl,
		logger:   logger,
	}
}

// Update обновляет сцену
func (ss *SceneSystem) Update(deltaTime time.Duration) error {
	// Собираем входной снимок кадра (состояние, взгляд, камера)
	in := ss.controls.FrameInput(deltaTime.Seconds())

	ss.scene.Advance(deltaTime, in)

	// Логирование каждые 300 тиков (5 секунд при 60 TPS)
	if ss.ticker.GetTickCount()%300 == 0 {
		ss.logStats(in)
	}

	return nil
}

// logStats выводит статистику сцены
func (ss *SceneSystem) logStats(in scene.FrameInput) {
	state := "собрана"
	if in.Exploded {
		state = "взорвана"
	}
	ss.logger.Printf("[SceneSystem] Сцена %s, время симуляции: %.1fс, взгляд: (%.2f, %.2f)",
		state, ss.scene.Elapsed(), in.Look[0], in.Look[1])
}

// GetName возвращает имя системы
func (ss *SceneSystem) GetName() string {
	return ss.name
}

// GetPriority возвращает приоритет системы
func (ss *SceneSystem) GetPriority() int {
	return ss.priority
}

// BroadcastSystem рассылает кадры сцены подключенным клиентам.
// Работает после SceneSystem, поэтому читает буферы того же тика.
type BroadcastSystem struct {
	name     string
	priority int
	scene    *scene.Scene
	logger   *log.Logger

	// Настройки рассылки
	sendInterval time.Duration // Интервал отправки кадров
	lastSend     time.Time
	framesSent   uint64

	// Интерфейс для отправки кадров (будет установлен извне)
	broadcaster FrameBroadcaster
}

// NewBroadcastSystem создает систему рассылки кадров
func NewBroadcastSystem(sc *scene.Scene, sendInterval time.Duration, logger *log.Logger) *BroadcastSystem {
	if sendInterval <= 0 {
		sendInterval = 50 * time.Millisecond // 20 кадров в секунду по умолчанию
	}
	if logger == nil {
		logger = log.Default()
	}
	return &BroadcastSystem{
		name:         "BroadcastSystem",
		priority:     20, // После обновления сцены
		scene:        sc,
		logger:       logger,
		sendInterval: sendInterval,
	}
}

// Update отправляет кадр, если пришло время
func (bs *BroadcastSystem) Update(deltaTime time.Duration) error {
	if bs.broadcaster == nil {
		return nil
	}

	now := time.Now()
	if now.Sub(bs.lastSend) < bs.sendInterval {
		return nil
	}
	bs.lastSend = now

	bs.broadcaster.BroadcastFrame(bs.scene.Buffers(), bs.scene.Elapsed(), bs.scene.Exploded())
	bs.framesSent++

	return nil
}

// FramesSent возвращает количество отправленных кадров
func (bs *BroadcastSystem) FramesSent() uint64 {
	return bs.framesSent
}

// GetName возвращает имя системы
func (bs *BroadcastSystem) GetName() string {
	return bs.name
}

// GetPriority возвращает приоритет системы
func (bs *BroadcastSystem) GetPriority() int {
	return bs.priority
}

// SetBroadcaster устанавливает интерфейс для отправки кадров
func (bs *BroadcastSystem) SetBroadcaster(broadcaster FrameBroadcaster) {
	bs.broadcaster = broadcaster
}

// TelemetrySystem периодически выводит сводку телеметрии
type TelemetrySystem struct {
	name     string
	priority int
	tracker  *telemetry.TelemetryManager
}

// NewTelemetrySystem создает систему телеметрии
func NewTelemetrySystem(tracker *telemetry.TelemetryManager) *TelemetrySystem {
	if tracker == nil {
		tracker = telemetry.GlobalTelemetry
	}
	return &TelemetrySystem{
		name:     "TelemetrySystem",
		priority: 90, // В самом конце тика
		tracker:  tracker,
	}
}

// Update выводит сводку (сам метод ограничивает частоту вывода)
func (ts *TelemetrySystem) Update(deltaTime time.Duration) error {
	ts.tracker.Count("ticks", 1)
	ts.tracker.PrintSummary()
	return nil
}

// GetName возвращает имя системы
func (ts *TelemetrySystem) GetName() string {
	return ts.name
}

// GetPriority возвращает приоритет системы
func (ts *TelemetrySystem) GetPriority() int {
	return ts.priority
}
