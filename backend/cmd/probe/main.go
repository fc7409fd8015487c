package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"x-spores/backend/internal/transport/ws"
)

// Простой клиент для дымовой проверки сервера: подключается, читает
// конфигурацию и кадры, шлет один жест и ждет смены состояния.
func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "URL WebSocket сервера")
	messages := flag.Int("messages", 30, "Сколько сообщений прочитать перед выходом")
	flag.Parse()

	u, err := url.Parse(*serverURL)
	if err != nil {
		log.Fatalf("Неверный URL: %v", err)
	}

	log.Printf("Подключение к %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Ошибка подключения: %v", err)
	}
	defer conn.Close()

	log.Printf("Успешно подключен")

	// Жесты принимаются только от сессии, удерживающей режим камеры,
	// поэтому сперва запрашиваем режим, потом шлем открытую ладонь —
	// сцена должна взорваться
	go func() {
		time.Sleep(500 * time.Millisecond)
		mode := map[string]interface{}{"type": "mode", "mode": "camera"}
		if err := conn.WriteJSON(mode); err != nil {
			log.Printf("Ошибка запроса режима камеры: %v", err)
			return
		}
		log.Printf("Запрошен режим камеры")

		time.Sleep(500 * time.Millisecond)
		gesture := map[string]interface{}{
			"type":        "hand",
			"label":       "open_palm",
			"confidence":  0.9,
			"client_time": time.Now().UnixMilli(),
		}
		if err := conn.WriteJSON(gesture); err != nil {
			log.Printf("Ошибка отправки жеста: %v", err)
		} else {
			log.Printf("Отправлен жест open_palm (0.90)")
		}
	}()

	framesSeen := 0

	for i := 0; i < *messages; i++ {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			log.Printf("Ошибка чтения сообщения: %v", err)
			break
		}

		if messageType == websocket.BinaryMessage {
			frame, err := ws.DecodeFrame(data)
			if err != nil {
				log.Printf("Ошибка декодирования кадра: %v", err)
				continue
			}

			framesSeen++
			if framesSeen == 1 || framesSeen%20 == 0 {
				log.Printf("FRAME #%d: %d сердец, %d светлячков, t=%.2fс, exploded=%v, generation=%d",
					framesSeen, frame.HeartCount(), frame.FireflyCount(),
					frame.SimTime, frame.Exploded, frame.Generation)
				if frame.HeartCount() > 0 {
					log.Printf("  первое сердце: (%.2f, %.2f, %.2f), масштаб %.3f",
						frame.HeartPositions[0], frame.HeartPositions[1], frame.HeartPositions[2],
						frame.HeartScales[0])
				}
			}
			continue
		}

		var msg map[string]interface{}
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("Ошибка разбора сообщения: %v", err)
			continue
		}

		msgType, ok := msg["type"].(string)
		if !ok {
			log.Printf("Сообщение без типа: %v", msg)
			continue
		}

		switch msgType {
		case "info":
			if message, ok := msg["message"].(string); ok {
				log.Printf("INFO: %s", message)
			}

		case "session":
			if sessionID, ok := msg["session_id"].(string); ok {
				log.Printf("SESSION: %s", sessionID)
			}

		case "scene_config":
			log.Printf("SCENE_CONFIG: %.0f сердец, %.0f светлячков",
				msg["heart_count"], msg["firefly_count"])

		case "state":
			log.Printf("STATE: exploded=%v (источник: %v)", msg["exploded"], msg["source"])

		case "cmd_ack":
			log.Printf("ACK: %v принят=%v", msg["cmd"], msg["accepted"])

		case "ping", "pong":
			// Служебные сообщения пропускаем
			break

		default:
			log.Printf("Сообщение типа %s", msgType)
		}
	}

	log.Printf("Проверка завершена: получено %d кадров", framesSeen)
}
