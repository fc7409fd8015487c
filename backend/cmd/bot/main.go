package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Структуры сообщений (копируем из backend/internal/transport/ws/types.go)
type HandMessage struct {
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	ClientTime int64   `json:"client_time,omitempty"`
}

type PointerMessage struct {
	Type       string `json:"type"`
	Action     string `json:"action"`
	ClientTime int64  `json:"client_time,omitempty"`
}

type LookMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type PingMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
}

type ModeMessage struct {
	Type string `json:"type"`
	Mode string `json:"mode"`
}

// Bot имитирует классификатор жестов, подключенный к серверу сцены
type Bot struct {
	ID          string
	ServerURL   string
	Conn        *websocket.Conn
	Running     bool
	Stats       BotStats
	Pattern     string
	Duration    time.Duration
	CommandRate time.Duration
	mu          sync.RWMutex
	writeMu     sync.Mutex // Мьютекс для синхронизации записи в WebSocket
	sessionID   string     // ID сессии, полученный от сервера

	// Состояние паттернов
	cycleOpen bool // true = следующий жест open_palm
}

// BotStats содержит статистику работы бота
type BotStats struct {
	GesturesSent      int
	LooksSent         int
	PointersSent      int
	ResponsesReceived int
	GesturesAccepted  int
	GesturesRejected  int
	FramesReceived    int
	Errors            int
	StartTime         time.Time
	mu                sync.RWMutex
}

// NewBot создает нового бота
func NewBot(id, serverURL, pattern string, duration, commandRate time.Duration) *Bot {
	return &Bot{
		ID:          id,
		ServerURL:   serverURL,
		Pattern:     pattern,
		Duration:    duration,
		CommandRate: commandRate,
		Stats: BotStats{
			StartTime: time.Now(),
		},
	}
}

// Connect подключается к серверу
func (b *Bot) Connect() error {
	u, err := url.Parse(b.ServerURL)
	if err != nil {
		return fmt.Errorf("неверный URL: %v", err)
	}

	log.Printf("[Bot %s] Подключение к %s", b.ID, u.String())

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("ошибка подключения: %v", err)
	}

	b.Conn = conn
	b.Running = true

	log.Printf("[Bot %s] Успешно подключен", b.ID)
	return nil
}

// Disconnect отключается от сервера
func (b *Bot) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.Conn != nil {
		b.Running = false
		b.Conn.Close()
		log.Printf("[Bot %s] Отключен", b.ID)
	}
}

// sendGesture отправляет результат распознавания жеста
func (b *Bot) sendGesture(label string, confidence float64) error {
	msg := HandMessage{
		Type:       "hand",
		Label:      label,
		Confidence: confidence,
		ClientTime: time.Now().UnixMilli(),
	}

	if err := b.writeJSON(msg); err != nil {
		return err
	}

	b.Stats.mu.Lock()
	b.Stats.GesturesSent++
	b.Stats.mu.Unlock()

	log.Printf("[Bot %s] Отправлен жест %s (уверенность %.2f)", b.ID, label, confidence)
	return nil
}

// sendLook отправляет look-вектор
func (b *Bot) sendLook(x, y float64) error {
	msg := LookMessage{Type: "look", X: x, Y: y}

	if err := b.writeJSON(msg); err != nil {
		return err
	}

	b.Stats.mu.Lock()
	b.Stats.LooksSent++
	b.Stats.mu.Unlock()
	return nil
}

// sendPointer отправляет событие указателя
func (b *Bot) sendPointer(action string) error {
	msg := PointerMessage{
		Type:       "pointer",
		Action:     action,
		ClientTime: time.Now().UnixMilli(),
	}

	if err := b.writeJSON(msg); err != nil {
		return err
	}

	b.Stats.mu.Lock()
	b.Stats.PointersSent++
	b.Stats.mu.Unlock()

	log.Printf("[Bot %s] Отправлено событие указателя: %s", b.ID, action)
	return nil
}

// sendPing отправляет ping сообщение
func (b *Bot) sendPing() error {
	ping := PingMessage{
		Type:       "ping",
		ClientTime: time.Now().UnixMilli(),
	}
	return b.writeJSON(ping)
}

// requestCameraMode запрашивает режим камеры: сервер принимает жесты
// только от сессии, которая его удерживает
func (b *Bot) requestCameraMode() error {
	msg := ModeMessage{Type: "mode", Mode: "camera"}
	if err := b.writeJSON(msg); err != nil {
		return err
	}
	log.Printf("[Bot %s] Запрошен режим камеры", b.ID)
	return nil
}

// writeJSON потокобезопасно отправляет сообщение
func (b *Bot) writeJSON(v interface{}) error {
	b.mu.RLock()
	conn := b.Conn
	b.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("соединение не установлено")
	}

	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := conn.WriteJSON(v); err != nil {
		b.Stats.mu.Lock()
		b.Stats.Errors++
		b.Stats.mu.Unlock()
		return fmt.Errorf("ошибка отправки: %v", err)
	}
	return nil
}

// stepPattern выполняет один шаг выбранного паттерна поведения
func (b *Bot) stepPattern() error {
	switch b.Pattern {
	case "cycle":
		return b.stepCycle()
	case "wave":
		return b.stepWave()
	default: // "chaos"
		return b.stepChaos()
	}
}

// stepCycle чередует open_palm и closed_fist с высокой уверенностью.
// Сцена должна послушно переключаться на каждый жест.
func (b *Bot) stepCycle() error {
	label := "closed_fist"
	if b.cycleOpen {
		label = "open_palm"
	}
	b.cycleOpen = !b.cycleOpen

	confidence := 0.7 + rand.Float64()*0.3 // от 0.7 до 1.0
	return b.sendGesture(label, confidence)
}

// stepWave плавно водит взглядом по синусоиде и изредка шлет жесты
func (b *Bot) stepWave() error {
	elapsed := time.Since(b.Stats.StartTime).Seconds()

	x := math.Sin(elapsed * 0.4)
	y := math.Cos(elapsed*0.4) * 0.6

	if err := b.sendLook(x, y); err != nil {
		return err
	}

	// Жест каждые ~5 секунд
	if rand.Float64() < 0.05 {
		label := "open_palm"
		if rand.Float64() < 0.5 {
			label = "closed_fist"
		}
		return b.sendGesture(label, 0.8)
	}
	return nil
}

// stepChaos шлет случайные входы, включая мусорные.
// Жесты с уверенностью ниже порога и неизвестные метки сервер
// должен молча отбрасывать.
func (b *Bot) stepChaos() error {
	switch rand.IntN(4) {
	case 0:
		labels := []string{"open_palm", "closed_fist", "thumbs_up", "peace", "unknown"}
		label := labels[rand.IntN(len(labels))]
		confidence := rand.Float64() // Вся шкала, в том числе ниже порога
		return b.sendGesture(label, confidence)

	case 1:
		// Взгляд за пределами диапазона проверяет зажим на сервере
		x := rand.Float64()*4 - 2 // от -2 до 2
		y := rand.Float64()*4 - 2
		return b.sendLook(x, y)

	case 2:
		action := "press"
		if rand.Float64() < 0.5 {
			action = "release"
		}
		return b.sendPointer(action)

	default:
		return b.sendLook(rand.Float64()*2-1, rand.Float64()*2-1)
	}
}

// handleMessage обрабатывает входящие сообщения
func (b *Bot) handleMessage(messageType int, data []byte) {
	if messageType == websocket.BinaryMessage {
		// Двоичные кадры сцены — считаем и пропускаем
		b.Stats.mu.Lock()
		b.Stats.FramesReceived++
		b.Stats.mu.Unlock()
		return
	}

	if messageType != websocket.TextMessage {
		return
	}

	var msg map[string]interface{}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("[Bot %s] Ошибка разбора сообщения: %v", b.ID, err)
		return
	}

	msgType, ok := msg["type"].(string)
	if !ok {
		log.Printf("[Bot %s] Сообщение без типа: %v", b.ID, msg)
		return
	}

	switch msgType {
	case "cmd_ack":
		b.Stats.mu.Lock()
		b.Stats.ResponsesReceived++
		if accepted, ok := msg["accepted"].(bool); ok {
			if accepted {
				b.Stats.GesturesAccepted++
			} else {
				b.Stats.GesturesRejected++
			}
		}
		b.Stats.mu.Unlock()

	case "pong":
		log.Printf("[Bot %s] Получен pong", b.ID)

	case "ping":
		// Сервер пингует нас — отвечать не обязательно
		break

	case "info":
		if message, ok := msg["message"].(string); ok {
			log.Printf("[Bot %s] Информация: %s", b.ID, message)
		}

	case "session":
		if sessionID, ok := msg["session_id"].(string); ok {
			b.mu.Lock()
			b.sessionID = sessionID
			b.mu.Unlock()
			log.Printf("[Bot %s] Получен session ID: %s", b.ID, sessionID)
		}

	case "state":
		if exploded, ok := msg["exploded"].(bool); ok {
			source, _ := msg["source"].(string)
			log.Printf("[Bot %s] Состояние сцены: exploded=%v (источник: %s)", b.ID, exploded, source)
		}

	case "scene_config":
		log.Printf("[Bot %s] Получена конфигурация сцены", b.ID)

	default:
		log.Printf("[Bot %s] Неизвестный тип сообщения: %s", b.ID, msgType)
	}
}

// Run запускает бота
func (b *Bot) Run() error {
	if err := b.Connect(); err != nil {
		return err
	}
	defer b.Disconnect()

	// Все паттерны изображают классификатор жестов, поэтому сразу
	// захватываем режим камеры. Событиям указателя в паттерне chaos
	// сервер после этого отвечает отказом — это ожидаемо.
	if err := b.requestCameraMode(); err != nil {
		return err
	}

	// Запускаем горутину для чтения сообщений
	go func() {
		for b.Running {
			messageType, data, err := b.Conn.ReadMessage()
			if err != nil {
				if b.Running {
					log.Printf("[Bot %s] Ошибка чтения сообщения: %v", b.ID, err)
					b.Stats.mu.Lock()
					b.Stats.Errors++
					b.Stats.mu.Unlock()
				}
				return
			}
			b.handleMessage(messageType, data)
		}
	}()

	// Запускаем горутину для отправки ping
	go func() {
		pingTicker := time.NewTicker(5 * time.Second)
		defer pingTicker.Stop()

		for b.Running {
			<-pingTicker.C
			if err := b.sendPing(); err != nil {
				log.Printf("[Bot %s] Ошибка отправки ping: %v", b.ID, err)
			}
		}
	}()

	// Основной цикл паттерна
	commandTicker := time.NewTicker(b.CommandRate)
	defer commandTicker.Stop()

	endTime := time.Now().Add(b.Duration)

	for b.Running && time.Now().Before(endTime) {
		<-commandTicker.C
		if err := b.stepPattern(); err != nil {
			log.Printf("[Bot %s] Ошибка шага паттерна: %v", b.ID, err)
		}
	}

	log.Printf("[Bot %s] Завершение работы", b.ID)
	return nil
}

// PrintStats выводит статистику бота
func (b *Bot) PrintStats() {
	b.Stats.mu.RLock()
	defer b.Stats.mu.RUnlock()

	duration := time.Since(b.Stats.StartTime)
	log.Printf("[Bot %s] Статистика:", b.ID)
	log.Printf("  Время работы: %v", duration)
	log.Printf("  Жестов отправлено: %d (принято: %d, отклонено: %d)",
		b.Stats.GesturesSent, b.Stats.GesturesAccepted, b.Stats.GesturesRejected)
	log.Printf("  Look-векторов отправлено: %d", b.Stats.LooksSent)
	log.Printf("  Событий указателя: %d", b.Stats.PointersSent)
	log.Printf("  Подтверждений получено: %d", b.Stats.ResponsesReceived)
	log.Printf("  Кадров получено: %d", b.Stats.FramesReceived)
	log.Printf("  Ошибок: %d", b.Stats.Errors)
}

func main() {
	// Флаги командной строки
	var (
		serverURL   = flag.String("url", "ws://localhost:8080/ws", "URL WebSocket сервера")
		botID       = flag.String("id", "bot1", "ID бота")
		pattern     = flag.String("pattern", "cycle", "Паттерн поведения (cycle, wave, chaos)")
		duration    = flag.Duration("duration", 30*time.Second, "Длительность работы бота")
		commandRate = flag.Duration("rate", 500*time.Millisecond, "Частота отправки сообщений")
	)
	flag.Parse()

	// Создаем и запускаем бота
	bot := NewBot(*botID, *serverURL, *pattern, *duration, *commandRate)

	// Обработка сигналов для корректного завершения
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		<-c
		log.Printf("[Bot %s] Получен сигнал прерывания, завершение работы...", bot.ID)
		bot.Disconnect()
		bot.PrintStats()
		os.Exit(0)
	}()

	// Запускаем бота
	if err := bot.Run(); err != nil {
		log.Printf("[Bot %s] Ошибка: %v", bot.ID, err)
		os.Exit(1)
	}

	// Выводим статистику
	bot.PrintStats()
}
