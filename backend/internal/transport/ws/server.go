package ws

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"x-spores/backend/internal/controls"
	"x-spores/backend/internal/scene"
	"x-spores/backend/internal/stage"
	"x-spores/backend/internal/telemetry"
)

const (
	DefaultUpdateInterval = 50 * time.Millisecond // Интервал отправки кадров
	DefaultPingInterval   = 2 * time.Second       // Интервал отправки пингов
)

// MessageHandler - тип функции обработчика сообщений
type MessageHandler func(conn *SafeWriter, message interface{}) error

// WSServer представляет WebSocket сервер сцены с поддержкой потокобезопасной записи.
// Все подключенные клиенты получают кадры сцены и сообщения о состоянии;
// входные сообщения (жесты, указатель, взгляд, камера) направляются контроллеру.
type WSServer struct {
	upgrader     websocket.Upgrader
	controller   *controls.Controller
	scene        *scene.Scene
	mushroom     stage.Mushroom
	ground       *stage.Ground
	handlers     map[string]MessageHandler
	pingInterval time.Duration
	tracker      *telemetry.TelemetryManager

	// Управление клиентами
	clients   map[string]*ClientSession
	clientsMu sync.RWMutex

	// Имитация сетевых условий
	networkSim      NetworkSimulation
	delayedMessages chan DelayedMessage
	simMu           sync.RWMutex

	// Счетчики рассылки
	framesBroadcast atomic.Uint64
	bytesBroadcast  atomic.Uint64
}

// NewWSServer создает новый экземпляр WebSocket сервера сцены
func NewWSServer(controller *controls.Controller, sc *scene.Scene, mushroom stage.Mushroom, ground *stage.Ground, tracker *telemetry.TelemetryManager) *WSServer {
	if tracker == nil {
		tracker = telemetry.GlobalTelemetry
	}

	server := &WSServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		controller:   controller,
		scene:        sc,
		mushroom:     mushroom,
		ground:       ground,
		handlers:     make(map[string]MessageHandler),
		pingInterval: DefaultPingInterval,
		tracker:      tracker,

		// Управление клиентами
		clients:   make(map[string]*ClientSession),
		clientsMu: sync.RWMutex{},

		// Инициализация имитации сети
		networkSim: NetworkSimulation{
			Enabled:         false, // По умолчанию выключена
			BaseLatency:     0,
			LatencyVariance: 0,
			PacketLoss:      0.0,
		},
		delayedMessages: make(chan DelayedMessage, 1000),
		simMu:           sync.RWMutex{},
	}

	// Регистрируем стандартные обработчики
	server.RegisterHandler(MessageTypeHand, server.handleHand)
	server.RegisterHandler(MessageTypePointer, server.handlePointer)
	server.RegisterHandler(MessageTypeLook, server.handleLook)
	server.RegisterHandler(MessageTypeCamera, server.handleCamera)
	server.RegisterHandler(MessageTypeMode, server.handleMode)
	server.RegisterHandler(MessageTypePing, server.handlePing)

	// Запускаем обработчик отложенных сообщений
	go server.processDelayedMessages()

	return server
}

// RegisterHandler регистрирует обработчик для конкретного типа сообщений
func (s *WSServer) RegisterHandler(messageType string, handler MessageHandler) {
	s.handlers[messageType] = handler
}

// SetPingInterval устанавливает интервал отправки пингов
func (s *WSServer) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// HandleWS обрабатывает входящие WebSocket соединения
func (s *WSServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade error: %v", err)
		return
	}

	// Создаем потокобезопасную обертку для WebSocket соединения
	safeConn := NewSafeWriter(conn)
	defer func() {
		// Удаляем сессию при закрытии соединения (освобождает режим камеры)
		s.removeClient(safeConn)
		safeConn.Close()
	}()

	log.Printf("New WebSocket connection established from %s", conn.RemoteAddr())

	// Отправляем приветственное сообщение
	if err := safeConn.WriteJSON(NewInfoMessage("Successfully connected to X-Spores server")); err != nil {
		log.Printf("Error sending welcome message: %v", err)
		return
	}

	// Отправляем клиенту конфигурацию сцены перед началом стриминга
	s.sendSceneConfig(safeConn)

	// Отправляем текущее состояние сцены, чтобы клиент сразу знал фазу
	if err := safeConn.WriteJSON(NewStateMessage(s.controller.Exploded(), "server")); err != nil {
		log.Printf("[WSServer] Ошибка отправки начального состояния: %v", err)
		return
	}

	// Регистрируем сессию
	s.addClient(safeConn, conn.RemoteAddr().String())
	s.tracker.Count("clients_connected", 1)

	// Запускаем пинг для поддержания соединения
	if s.pingInterval > 0 {
		go s.startPing(safeConn)
	}

	// Основной цикл обработки сообщений
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		// Разбираем сообщение
		message, err := ParseMessage(data)
		if err != nil {
			log.Printf("Error parsing message: %v", err)
			continue
		}

		// Получаем тип сообщения
		var messageType string
		switch msg := message.(type) {
		case *HandMessage:
			messageType = msg.Type
		case *PointerMessage:
			messageType = msg.Type
		case *LookMessage:
			messageType = msg.Type
		case *CameraMessage:
			messageType = msg.Type
		case *ModeMessage:
			messageType = msg.Type
		case *PingMessage:
			messageType = msg.Type
		case *PongMessage:
			messageType = msg.Type
		case *AckMessage:
			messageType = msg.Type
		case *InfoMessage:
			messageType = msg.Type
		default:
			log.Printf("Unknown message type: %T", message)
			continue
		}

		// Ищем обработчик для данного типа сообщений
		if handler, ok := s.handlers[messageType]; ok {
			if err := handler(safeConn, message); err != nil {
				log.Printf("Error handling message %s: %v", messageType, err)
			}
		} else {
			log.Printf("No handler registered for message type: %s", messageType)
		}
	}

	log.Printf("WebSocket connection closed: %s", conn.RemoteAddr())
}

// NotifyStateChanged рассылает всем клиентам смену состояния сцены.
// Вызывается контроллером сразу при переходе, не дожидаясь следующего кадра.
func (s *WSServer) NotifyStateChanged(exploded bool, source string) {
	stateMsg := NewStateMessage(exploded, source)

	s.BroadcastJSON(stateMsg)

	detail := "gathered"
	if exploded {
		detail = "exploded"
	}
	s.tracker.LogEvent("transition", source, detail, 0)

	log.Printf("[WSServer] Разослано состояние сцены: exploded=%v (источник: %s)", exploded, source)
}

// Stats возвращает статистику сервера для отладочной страницы
func (s *WSServer) Stats() map[string]interface{} {
	s.simMu.RLock()
	sim := s.networkSim
	s.simMu.RUnlock()

	return map[string]interface{}{
		"clients":          s.ClientCount(),
		"frames_broadcast": s.framesBroadcast.Load(),
		"bytes_broadcast":  s.bytesBroadcast.Load(),
		"network_sim": map[string]interface{}{
			"enabled":          sim.Enabled,
			"base_latency_ms":  sim.BaseLatency.Milliseconds(),
			"latency_variance": sim.LatencyVariance.Milliseconds(),
			"packet_loss":      sim.PacketLoss,
		},
	}
}
