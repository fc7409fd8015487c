package main

import (
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"x-spores/backend/internal/transport/ws"
)

const (
	screenWidth  = 960
	screenHeight = 640

	// Параметры проекции отладочной камеры
	focalLength = 420.0
	cameraY     = 3.0
	cameraZ     = 10.0
)

// Viewer — отладочный 2D-просмотрщик сцены. Подключается к серверу,
// декодирует двоичные кадры и рисует сердца и светлячков простой
// перспективной проекцией. Управление:
//
//	ЛКМ (зажать/отпустить) — указатель: собрать/взорвать сцену (режим указателя)
//	движение мыши         — look-вектор
//	M                     — переключение режима камеры
//	G / H                 — жесты open_palm / closed_fist, уверенность 0.9 (в режиме камеры)
//	L                     — жест с низкой уверенностью (сервер должен игнорировать)
//	стрелки               — орбита камеры (в режиме камеры)
type Viewer struct {
	mu    sync.Mutex
	frame *ws.Frame

	conn    *websocket.Conn
	writeMu sync.Mutex

	connected  bool
	exploded   bool
	stateFrom  string
	cameraMode bool

	// Орбита камеры в режиме камеры
	orbitAngle  float64
	orbitHeight float64

	lastLookX float64
	lastLookY float64

	framesReceived int
}

// connect подключается к серверу и запускает цикл чтения
func (v *Viewer) connect(serverURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(serverURL, nil)
	if err != nil {
		return err
	}

	v.conn = conn
	v.connected = true

	go v.readLoop()
	return nil
}

// readLoop читает кадры и сообщения от сервера
func (v *Viewer) readLoop() {
	for {
		messageType, data, err := v.conn.ReadMessage()
		if err != nil {
			log.Printf("[Viewer] Соединение закрыто: %v", err)
			v.mu.Lock()
			v.connected = false
			v.mu.Unlock()
			return
		}

		if messageType == websocket.BinaryMessage {
			frame, err := ws.DecodeFrame(data)
			if err != nil {
				log.Printf("[Viewer] Ошибка декодирования кадра: %v", err)
				continue
			}

			v.mu.Lock()
			v.frame = frame
			v.exploded = frame.Exploded
			v.framesReceived++
			v.mu.Unlock()
			continue
		}

		msgType, err := ws.GetMessageType(data)
		if err != nil {
			continue
		}

		if msgType == ws.MessageTypeState {
			message, err := ws.ParseMessage(data)
			if err != nil {
				continue
			}
			if state, ok := message.(*ws.StateMessage); ok {
				v.mu.Lock()
				v.exploded = state.Exploded
				v.stateFrom = state.Source
				v.mu.Unlock()
				log.Printf("[Viewer] Состояние сцены: exploded=%v (источник: %s)", state.Exploded, state.Source)
			}
		}
	}
}

// writeJSON потокобезопасно отправляет сообщение серверу
func (v *Viewer) writeJSON(msg interface{}) {
	v.mu.Lock()
	connected := v.connected
	v.mu.Unlock()
	if !connected {
		return
	}

	v.writeMu.Lock()
	defer v.writeMu.Unlock()

	if err := v.conn.WriteJSON(msg); err != nil {
		log.Printf("[Viewer] Ошибка отправки: %v", err)
	}
}

// sendGesture отправляет жест серверу
func (v *Viewer) sendGesture(label string, confidence float64) {
	v.writeJSON(ws.NewHandMessage(label, confidence))
	log.Printf("[Viewer] Отправлен жест %s (%.2f)", label, confidence)
}

// Update обрабатывает ввод и шлет его серверу
func (v *Viewer) Update() error {
	// Указатель: зажатие собирает сцену, отпускание взрывает
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		v.writeJSON(ws.NewPointerMessage("press"))
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		v.writeJSON(ws.NewPointerMessage("release"))
	}

	// Жесты с клавиатуры
	if inpututil.IsKeyJustPressed(ebiten.KeyG) {
		v.sendGesture("open_palm", 0.9)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		v.sendGesture("closed_fist", 0.9)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyL) {
		// Ниже порога уверенности — сервер должен проигнорировать
		v.sendGesture("open_palm", 0.3)
	}

	// Переключение режима камеры
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		v.cameraMode = !v.cameraMode
		mode := "pointer"
		if v.cameraMode {
			mode = "camera"
		}
		v.writeJSON(map[string]interface{}{"type": ws.MessageTypeMode, "mode": mode})
		log.Printf("[Viewer] Режим ввода: %s", mode)
	}

	if v.cameraMode {
		v.updateOrbit()
	} else {
		v.updateLook()
	}

	v.updateTitle()
	return nil
}

// updateLook преобразует позицию курсора в look-вектор
func (v *Viewer) updateLook() {
	cx, cy := ebiten.CursorPosition()

	lookX := float64(cx)/float64(screenWidth)*2 - 1
	lookY := float64(cy)/float64(screenHeight)*2 - 1

	// Шлем только при заметном изменении, чтобы не заливать сервер
	if math.Abs(lookX-v.lastLookX) < 0.01 && math.Abs(lookY-v.lastLookY) < 0.01 {
		return
	}
	v.lastLookX = lookX
	v.lastLookY = lookY

	v.writeJSON(map[string]interface{}{"type": ws.MessageTypeLook, "x": lookX, "y": lookY})
}

// updateOrbit крутит камеру вокруг гриба и шлет позу серверу
func (v *Viewer) updateOrbit() {
	changed := false

	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.orbitAngle -= 0.03
		changed = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.orbitAngle += 0.03
		changed = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.orbitHeight += 0.05
		changed = true
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.orbitHeight -= 0.05
		changed = true
	}

	if !changed {
		return
	}

	const orbitRadius = 9.0
	px := float32(math.Sin(v.orbitAngle) * orbitRadius)
	py := float32(3.0 + v.orbitHeight)
	pz := float32(math.Cos(v.orbitAngle) * orbitRadius)

	// Камера смотрит на гриб: поворот вокруг Y на угол орбиты
	orientation := mgl32.QuatRotate(float32(v.orbitAngle), mgl32.Vec3{0, 1, 0})

	v.writeJSON(map[string]interface{}{
		"type": ws.MessageTypeCamera,
		"px":   px, "py": py, "pz": pz,
		"qx": orientation.X(), "qy": orientation.Y(), "qz": orientation.Z(), "qw": orientation.W,
	})
}

// updateTitle выводит статус в заголовок окна
func (v *Viewer) updateTitle() {
	v.mu.Lock()
	connected := v.connected
	exploded := v.exploded
	frames := v.framesReceived
	v.mu.Unlock()

	state := "собрана"
	if exploded {
		state = "взорвана"
	}
	conn := "онлайн"
	if !connected {
		conn = "оффлайн"
	}
	mode := "указатель"
	if v.cameraMode {
		mode = "камера"
	}

	ebiten.SetWindowTitle(fmt.Sprintf("x-spores viewer | %s | сцена %s | режим: %s | кадров: %d",
		conn, state, mode, frames))
}

// project проецирует точку сцены на экран. Возвращает ok=false для
// точек позади отладочной камеры.
func project(x, y, z float32) (sx, sy, depth float32, ok bool) {
	vx := x
	vy := y - cameraY
	vz := cameraZ - z

	if vz < 0.5 {
		return 0, 0, 0, false
	}

	sx = screenWidth/2 + vx*focalLength/vz
	sy = screenHeight/2 - vy*focalLength/vz
	return sx, sy, vz, true
}

// colorFromFloats собирает цвет из float32 компонент с зажимом
func colorFromFloats(r, g, b float32) color.RGBA {
	clamp := func(c float32) uint8 {
		if c <= 0 {
			return 0
		}
		if c >= 1 {
			return 255
		}
		return uint8(c * 255)
	}
	return color.RGBA{R: clamp(r), G: clamp(g), B: clamp(b), A: 255}
}

// Draw рисует последний полученный кадр
func (v *Viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 12, G: 10, B: 24, A: 255})

	v.mu.Lock()
	frame := v.frame
	connected := v.connected
	v.mu.Unlock()

	// Индикатор соединения в углу
	indicator := color.RGBA{R: 200, G: 40, B: 40, A: 255}
	if connected {
		indicator = color.RGBA{R: 40, G: 200, B: 80, A: 255}
	}
	vector.DrawFilledRect(screen, 8, 8, 12, 12, indicator, false)

	if frame == nil {
		return
	}

	// Земля — условная линия горизонта
	vector.DrawFilledRect(screen, 0, screenHeight*0.78, screenWidth, 2,
		color.RGBA{R: 40, G: 60, B: 40, A: 255}, false)

	// Светлячки рисуем первыми, они позади сердец
	for i := 0; i < frame.FireflyCount(); i++ {
		x := frame.FireflyPositions[i*3]
		y := frame.FireflyPositions[i*3+1]
		z := frame.FireflyPositions[i*3+2]

		sx, sy, vz, ok := project(x, y, z)
		if !ok {
			continue
		}

		r := frame.FireflyScales[i] * focalLength / vz * 2
		if r < 1 {
			r = 1
		}
		clr := colorFromFloats(frame.FireflyColors[i*3], frame.FireflyColors[i*3+1], frame.FireflyColors[i*3+2])
		vector.DrawFilledCircle(screen, sx, sy, r, clr, true)
	}

	// Сердца
	for i := 0; i < frame.HeartCount(); i++ {
		x := frame.HeartPositions[i*3]
		y := frame.HeartPositions[i*3+1]
		z := frame.HeartPositions[i*3+2]

		sx, sy, vz, ok := project(x, y, z)
		if !ok {
			continue
		}

		r := frame.HeartScales[i] * focalLength / vz
		if r < 0.5 {
			continue // Сердце со схлопнутым масштабом не видно
		}
		clr := colorFromFloats(frame.HeartColors[i*3], frame.HeartColors[i*3+1], frame.HeartColors[i*3+2])
		vector.DrawFilledCircle(screen, sx, sy, r, clr, true)
	}
}

// Layout возвращает логический размер экрана
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "URL WebSocket сервера")
	flag.Parse()

	viewer := &Viewer{}

	if err := viewer.connect(*serverURL); err != nil {
		log.Printf("[Viewer] Не удалось подключиться: %v (запустите сервер и повторите)", err)
		// Окно все равно открываем, чтобы показать индикатор оффлайна
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("x-spores viewer")
	ebiten.SetTPS(60)

	start := time.Now()
	defer func() {
		log.Printf("[Viewer] Сеанс завершен за %v", time.Since(start).Round(time.Second))
	}()

	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatalf("[Viewer] Ошибка: %v", err)
	}
}
