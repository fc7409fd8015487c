package sim

import (
	"bytes"
	"io"
	"log"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"x-spores/backend/internal/controls"
	"x-spores/backend/internal/scene"
	"x-spores/backend/internal/telemetry"
)

// recordingBroadcaster запоминает разосланные кадры
type recordingBroadcaster struct {
	frames   int
	lastBuf  *scene.InstanceBuffers
	lastTime float64
	lastExpl bool
}

func (rb *recordingBroadcaster) BroadcastFrame(buffers *scene.InstanceBuffers, simTime float64, exploded bool) {
	rb.frames++
	rb.lastBuf = buffers
	rb.lastTime = simTime
	rb.lastExpl = exploded
}

func newSimScene(hearts, flies int) *scene.Scene {
	cfg := scene.DefaultConfig()
	cfg.HeartCount = hearts
	cfg.FireflyCount = flies
	rng := rand.New(rand.NewPCG(11, 17))
	return scene.New(cfg, rng, log.New(io.Discard, "", 0))
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestSceneSystem_AdvancesScene(t *testing.T) {
	ticker := quietTicker(60)
	sc := newSimScene(16, 4)
	ctrl := controls.NewController(quietLogger())
	ss := NewSceneSystem(ticker, sc, ctrl, quietLogger())

	if ss.GetName() != "SceneSystem" {
		t.Errorf("Ожидали имя SceneSystem, получили %s", ss.GetName())
	}
	if ss.GetPriority() != 10 {
		t.Errorf("Ожидали приоритет 10, получили %d", ss.GetPriority())
	}

	if err := ss.Update(50 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if got := sc.Elapsed(); math.Abs(got-0.05) > 1e-9 {
		t.Errorf("Ожидали время симуляции 0.05с, получили %v", got)
	}
}

func TestSceneSystem_ReflectsControllerState(t *testing.T) {
	ticker := quietTicker(60)
	sc := newSimScene(16, 4)
	ctrl := controls.NewController(quietLogger())
	ss := NewSceneSystem(ticker, sc, ctrl, quietLogger())

	if sc.Exploded() {
		t.Fatal("Новая сцена должна быть собрана")
	}

	// Отпускание указателя взрывает сцену на следующем тике
	if !ctrl.PointerRelease() {
		t.Fatal("PointerRelease должен переключить состояние")
	}
	if err := ss.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if !sc.Exploded() {
		t.Error("После отпускания указателя сцена должна быть взорвана")
	}

	ctrl.PointerPress()
	if err := ss.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if sc.Exploded() {
		t.Error("После нажатия указателя сцена должна собираться")
	}
}

func TestSceneSystem_PeriodicStats(t *testing.T) {
	ticker := quietTicker(60)
	sc := newSimScene(8, 2)
	ctrl := controls.NewController(quietLogger())

	var buf bytes.Buffer
	ss := NewSceneSystem(ticker, sc, ctrl, log.New(&buf, "", 0))

	// На кратном 300 тике статистика пишется в лог
	if err := ss.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if !strings.Contains(buf.String(), "[SceneSystem]") {
		t.Error("На нулевом тике ожидали запись статистики")
	}

	buf.Reset()
	ticker.tickCount = 7
	if err := ss.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Между интервалами лог должен молчать, получили: %q", buf.String())
	}
}

func TestBroadcastSystem_IntervalGating(t *testing.T) {
	sc := newSimScene(8, 2)
	bs := NewBroadcastSystem(sc, 50*time.Millisecond, quietLogger())

	if bs.GetName() != "BroadcastSystem" {
		t.Errorf("Ожидали имя BroadcastSystem, получили %s", bs.GetName())
	}
	if bs.GetPriority() != 20 {
		t.Errorf("Ожидали приоритет 20, получили %d", bs.GetPriority())
	}

	rb := &recordingBroadcaster{}
	bs.SetBroadcaster(rb)

	sc.Advance(time.Second/60, scene.FrameInput{
		Exploded: true,
		Camera: scene.CameraPose{
			Position:    mgl32.Vec3{0, 3.2, 7},
			Orientation: mgl32.QuatIdent(),
		},
	})

	// Первый Update отправляет сразу: lastSend еще нулевой
	if err := bs.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if rb.frames != 1 {
		t.Fatalf("Ожидали 1 кадр, получили %d", rb.frames)
	}
	if rb.lastBuf != sc.Buffers() {
		t.Error("Кадр должен ссылаться на буферы сцены")
	}
	if rb.lastTime != sc.Elapsed() {
		t.Errorf("Ожидали время симуляции %v, получили %v", sc.Elapsed(), rb.lastTime)
	}
	if !rb.lastExpl {
		t.Error("Кадр должен нести взорванное состояние")
	}

	// Повторный Update внутри интервала ничего не шлет
	if err := bs.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if rb.frames != 1 {
		t.Errorf("Внутри интервала кадры не отправляются, получили %d", rb.frames)
	}

	// После истечения интервала кадр уходит снова
	bs.lastSend = time.Now().Add(-time.Second)
	if err := bs.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if rb.frames != 2 {
		t.Errorf("Ожидали 2 кадра, получили %d", rb.frames)
	}

	if bs.FramesSent() != 2 {
		t.Errorf("Ожидали счетчик 2, получили %d", bs.FramesSent())
	}
}

func TestBroadcastSystem_NilBroadcaster(t *testing.T) {
	sc := newSimScene(4, 1)
	bs := NewBroadcastSystem(sc, 50*time.Millisecond, quietLogger())

	// Без получателя Update просто выходит
	if err := bs.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
	if bs.FramesSent() != 0 {
		t.Errorf("Без получателя кадры не считаются, получили %d", bs.FramesSent())
	}
}

func TestBroadcastSystem_DefaultInterval(t *testing.T) {
	sc := newSimScene(4, 1)

	bs := NewBroadcastSystem(sc, 0, quietLogger())
	if bs.sendInterval != 50*time.Millisecond {
		t.Errorf("Ожидали интервал по умолчанию 50мс, получили %v", bs.sendInterval)
	}

	bs = NewBroadcastSystem(sc, -time.Second, quietLogger())
	if bs.sendInterval != 50*time.Millisecond {
		t.Errorf("Отрицательный интервал заменяется на 50мс, получили %v", bs.sendInterval)
	}
}

func TestTelemetrySystem_Defaults(t *testing.T) {
	ts := NewTelemetrySystem(nil)
	if ts.tracker != telemetry.GlobalTelemetry {
		t.Error("Без менеджера система должна использовать глобальную телеметрию")
	}

	tracker := telemetry.NewTelemetryManager()
	tracker.SetEnabled(false)
	ts = NewTelemetrySystem(tracker)

	if ts.GetName() != "TelemetrySystem" {
		t.Errorf("Ожидали имя TelemetrySystem, получили %s", ts.GetName())
	}
	if ts.GetPriority() != 90 {
		t.Errorf("Ожидали приоритет 90, получили %d", ts.GetPriority())
	}

	if err := ts.Update(16 * time.Millisecond); err != nil {
		t.Fatalf("Update вернул ошибку: %v", err)
	}
}

// Полная цепочка тика: сцена обновляется раньше рассылки, поэтому клиент
// получает буферы того же тика.
func TestSystems_FullTickChain(t *testing.T) {
	ticker := quietTicker(60)
	sc := newSimScene(16, 4)
	ctrl := controls.NewController(quietLogger())

	tracker := telemetry.NewTelemetryManager()
	tracker.SetEnabled(false)

	rb := &recordingBroadcaster{}
	bs := NewBroadcastSystem(sc, 50*time.Millisecond, quietLogger())
	bs.SetBroadcaster(rb)

	ticker.RegisterSystem(NewTelemetrySystem(tracker))
	ticker.RegisterSystem(bs)
	ticker.RegisterSystem(NewSceneSystem(ticker, sc, ctrl, quietLogger()))

	ticker.executeAllSystems(16 * time.Millisecond)

	if rb.frames != 1 {
		t.Fatalf("Ожидали 1 кадр, получили %d", rb.frames)
	}
	// Время кадра совпадает с временем сцены: рассылка шла после обновления
	if rb.lastTime == 0 || rb.lastTime != sc.Elapsed() {
		t.Errorf("Кадр должен нести время текущего тика %v, получили %v", sc.Elapsed(), rb.lastTime)
	}
}
