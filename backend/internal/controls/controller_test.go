package controls

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"x-spores/backend/internal/scene"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// mockNotifier записывает уведомления о переходах в порядке получения
type mockNotifier struct {
	mu     sync.Mutex
	events []string
}

func (m *mockNotifier) NotifyStateChanged(exploded bool, source string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, fmt.Sprintf("%v/%s", exploded, source))
}

func (m *mockNotifier) snapshot() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.events...)
}

func TestController_PointerTransitions(t *testing.T) {
	c := NewController(testLogger())
	n := &mockNotifier{}
	c.SetNotifier(n)

	if c.Exploded() {
		t.Fatal("Новый контроллер должен быть в собранном состоянии")
	}

	// Отпускание взрывает
	if !c.PointerRelease() {
		t.Error("Отпускание указателя должно запустить переход")
	}
	if !c.Exploded() {
		t.Error("После отпускания облако должно быть взорвано")
	}

	// Повтор того же состояния перехода не дает
	if c.PointerRelease() {
		t.Error("Повторное отпускание не должно давать переход")
	}

	// Нажатие собирает
	if !c.PointerPress() {
		t.Error("Нажатие указателя должно запустить переход")
	}
	if c.Exploded() {
		t.Error("После нажатия облако должно быть собрано")
	}

	want := []string{"true/pointer", "false/pointer"}
	got := n.snapshot()
	if len(got) != len(want) {
		t.Fatalf("Уведомлений %d, ожидали %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Уведомление %d: %q, ожидали %q", i, got[i], want[i])
		}
	}
}

func TestController_GestureConfidenceThreshold(t *testing.T) {
	c := NewController(testLogger())
	if err := c.EnterCameraMode("s1"); err != nil {
		t.Fatalf("Не удалось войти в режим камеры: %v", err)
	}

	// Ровно на пороге — отказ, сравнение строгое
	if c.HandleGesture("s1", GestureOpenPalm, 0.5) {
		t.Error("Уверенность ровно 0.5 не должна запускать переход")
	}
	if c.Exploded() {
		t.Error("Состояние изменилось при пороговой уверенности")
	}

	// Чуть выше порога — переход
	if !c.HandleGesture("s1", GestureOpenPalm, 0.501) {
		t.Error("Уверенность выше порога должна запускать переход")
	}
	if !c.Exploded() {
		t.Error("Открытая ладонь должна взорвать облако")
	}

	// Кулак с низкой уверенностью игнорируется
	if c.HandleGesture("s1", GestureClosedFist, 0.3) {
		t.Error("Низкая уверенность не должна давать переход")
	}
	if !c.Exploded() {
		t.Error("Состояние сброшено шумным распознаванием")
	}

	// Уверенный кулак собирает обратно
	if !c.HandleGesture("s1", GestureClosedFist, 0.9) {
		t.Error("Уверенный кулак должен собрать облако")
	}
	if c.Exploded() {
		t.Error("После кулака облако должно быть собрано")
	}
}

func TestController_UnknownLabelsAreSticky(t *testing.T) {
	c := NewController(testLogger())
	if err := c.EnterCameraMode("s1"); err != nil {
		t.Fatalf("Не удалось войти в режим камеры: %v", err)
	}

	c.HandleGesture("s1", GestureOpenPalm, 0.9)
	if !c.Exploded() {
		t.Fatal("Подготовка: облако должно быть взорвано")
	}

	// Посторонние метки не трактуются как "не ладонь": состояние липкое
	for _, label := range []string{"peace_sign", "thumbs_up", "", "none"} {
		if c.HandleGesture("s1", label, 0.99) {
			t.Errorf("Метка %q дала переход", label)
		}
		if !c.Exploded() {
			t.Errorf("Метка %q сбросила состояние", label)
		}
	}

	rejected, ok := c.Stats()["gestures_rejected"].(uint64)
	if !ok || rejected < 4 {
		t.Errorf("Счетчик отказов %v, ожидали не меньше 4", c.Stats()["gestures_rejected"])
	}
}

func TestController_CameraModeExclusive(t *testing.T) {
	c := NewController(testLogger())

	if err := c.EnterCameraMode("a"); err != nil {
		t.Fatalf("Первая сессия не смогла занять режим камеры: %v", err)
	}
	if c.Mode() != ModeCamera {
		t.Error("Режим должен быть camera")
	}

	// Повторный вход той же сессии идемпотентен
	if err := c.EnterCameraMode("a"); err != nil {
		t.Errorf("Повторный вход владельца вернул ошибку: %v", err)
	}

	// Чужая сессия получает отказ
	if err := c.EnterCameraMode("b"); !errors.Is(err, ErrCameraBusy) {
		t.Errorf("Ожидали ErrCameraBusy, получили %v", err)
	}

	// Выход чужой сессии режим не трогает
	c.LeaveCameraMode("b")
	if c.Mode() != ModeCamera {
		t.Error("Чужой выход не должен освобождать режим камеры")
	}

	c.LeaveCameraMode("a")
	if c.Mode() != ModePointer {
		t.Error("После выхода владельца режим должен вернуться к указателю")
	}

	// Теперь режим свободен для другой сессии
	if err := c.EnterCameraMode("b"); err != nil {
		t.Errorf("Освобожденный режим недоступен: %v", err)
	}
}

func TestController_GestureRequiresCameraMode(t *testing.T) {
	c := NewController(testLogger())

	// В режиме указателя жесты отбрасываются независимо от уверенности
	if c.HandleGesture("s1", GestureOpenPalm, 0.99) {
		t.Error("Жест в режиме указателя дал переход")
	}
	if c.Exploded() {
		t.Error("Жест в режиме указателя изменил состояние")
	}
}

func TestController_GestureFromStrangerRejected(t *testing.T) {
	c := NewController(testLogger())
	if err := c.EnterCameraMode("owner"); err != nil {
		t.Fatalf("Не удалось войти в режим камеры: %v", err)
	}

	if c.HandleGesture("stranger", GestureOpenPalm, 0.9) {
		t.Error("Жест чужой сессии дал переход")
	}
	if !c.HandleGesture("owner", GestureOpenPalm, 0.9) {
		t.Error("Жест владельца должен пройти")
	}
}

func TestController_PointerIgnoredInCameraMode(t *testing.T) {
	c := NewController(testLogger())
	if err := c.EnterCameraMode("s1"); err != nil {
		t.Fatalf("Не удалось войти в режим камеры: %v", err)
	}

	c.HandleGesture("s1", GestureOpenPalm, 0.9)

	// Производитель состояния ровно один: указатель молчит
	if c.PointerPress() {
		t.Error("Указатель сработал в режиме камеры")
	}
	if !c.Exploded() {
		t.Error("Указатель изменил состояние в режиме камеры")
	}

	// После освобождения сессии указатель снова главный
	c.ReleaseSession("s1")
	if !c.PointerPress() {
		t.Error("Указатель не работает после возврата из режима камеры")
	}
}

func TestController_ReleaseSessionFreesCamera(t *testing.T) {
	c := NewController(testLogger())
	if err := c.EnterCameraMode("a"); err != nil {
		t.Fatalf("Не удалось войти в режим камеры: %v", err)
	}

	// Освобождение посторонней и пустой сессии — no-op
	c.ReleaseSession("stranger")
	c.ReleaseSession("")
	if c.Mode() != ModeCamera {
		t.Error("Посторонняя сессия освободила режим камеры")
	}

	// Обрыв соединения владельца обязан вернуть режим указателя
	c.ReleaseSession("a")
	if c.Mode() != ModePointer {
		t.Error("Режим камеры завис после обрыва сессии владельца")
	}
	if err := c.EnterCameraMode("b"); err != nil {
		t.Errorf("Режим не освободился: %v", err)
	}
}

func TestController_FrameInputSnapshot(t *testing.T) {
	c := NewController(testLogger())

	pose := scene.CameraPose{
		Position:    mgl32.Vec3{1, 2, 3},
		Orientation: mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0}),
	}
	c.SetCameraPose(pose)
	c.SetLookTarget(0.6, -0.4)
	c.PointerRelease()

	in := c.FrameInput(1.0 / 60.0)

	if !in.Exploded {
		t.Error("Снимок не отразил взорванное состояние")
	}
	if in.Camera != pose {
		t.Errorf("Поза камеры в снимке %+v, ожидали %+v", in.Camera, pose)
	}

	// Один кадр сглаживания проходит ~9.5% пути к цели
	blend := 1 - math.Exp(-6.0/60.0)
	if math.Abs(float64(in.Look[0])-0.6*blend) > 1e-3 {
		t.Errorf("Look X после кадра %.4f, ожидали %.4f", in.Look[0], 0.6*blend)
	}
	if math.Abs(float64(in.Look[1])+0.4*blend) > 1e-3 {
		t.Errorf("Look Y после кадра %.4f, ожидали %.4f", in.Look[1], -0.4*blend)
	}
}

func TestController_Stats(t *testing.T) {
	c := NewController(testLogger())
	c.PointerRelease()
	c.PointerPress()

	if err := c.EnterCameraMode("s1"); err != nil {
		t.Fatalf("Не удалось войти в режим камеры: %v", err)
	}
	c.HandleGesture("s1", GestureOpenPalm, 0.9)
	c.HandleGesture("s1", "noise", 0.9)
	c.SetLookTarget(5, 0)

	stats := c.Stats()

	if got := stats["transitions"].(uint64); got != 3 {
		t.Errorf("Переходов %d, ожидали 3", got)
	}
	if got := stats["gestures_accepted"].(uint64); got != 1 {
		t.Errorf("Принятых жестов %d, ожидали 1", got)
	}
	if got := stats["gestures_rejected"].(uint64); got != 1 {
		t.Errorf("Отклоненных жестов %d, ожидали 1", got)
	}
	if got := stats["look_clamped"].(uint64); got != 1 {
		t.Errorf("Зажатых look-значений %d, ожидали 1", got)
	}
	if got := stats["mode"].(string); got != "camera" {
		t.Errorf("Режим %q, ожидали camera", got)
	}
	if got := stats["exploded"].(bool); !got {
		t.Error("Статистика не отразила взорванное состояние")
	}
}
