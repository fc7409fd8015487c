package ws

import (
	"log"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"x-spores/backend/internal/controls"
	"x-spores/backend/internal/scene"
)

// handleHand обрабатывает результаты распознавания жестов
func (s *WSServer) handleHand(conn *SafeWriter, message interface{}) error {
	handMsg, ok := message.(*HandMessage)
	if !ok {
		return ErrInvalidMessage
	}

	session := s.getClientByConnection(conn)
	if session == nil {
		log.Printf("[Go] Сессия не найдена для соединения")
		return nil
	}

	accepted := s.controller.HandleGesture(session.ID, handMsg.Label, handMsg.Confidence)

	if accepted {
		s.tracker.LogEvent("gesture_accepted", session.ID, handMsg.Label, handMsg.Confidence)
	} else {
		s.tracker.Count("gesture_rejected", 1)
	}

	// Отправляем подтверждение обработки жеста
	ackMsg := NewAckMessage(handMsg.Label, accepted, handMsg.ClientTime)
	return s.simulateNetworkConditions(conn, ackMsg)
}

// handlePointer обрабатывает нажатия и отпускания указателя
func (s *WSServer) handlePointer(conn *SafeWriter, message interface{}) error {
	ptrMsg, ok := message.(*PointerMessage)
	if !ok {
		return ErrInvalidMessage
	}

	var accepted bool
	switch ptrMsg.Action {
	case "press":
		accepted = s.controller.PointerPress()
	case "release":
		accepted = s.controller.PointerRelease()
	default:
		log.Printf("[Go] Неизвестное действие указателя: %s", ptrMsg.Action)
		return nil
	}

	if accepted {
		s.tracker.LogEvent("pointer", "", ptrMsg.Action, 0)
	}

	ackMsg := NewAckMessage(ptrMsg.Action, accepted, ptrMsg.ClientTime)
	return s.simulateNetworkConditions(conn, ackMsg)
}

// handleLook обрабатывает look-вектор. Значения проходят через зажим
// в контроллере, поэтому транспорт не валидирует их сам.
func (s *WSServer) handleLook(conn *SafeWriter, message interface{}) error {
	lookMsg, ok := message.(*LookMessage)
	if !ok {
		return ErrInvalidMessage
	}

	s.controller.SetLookTarget(lookMsg.X, lookMsg.Y)
	return nil
}

// handleCamera обрабатывает позу камеры рендера.
// Принимается только от сессии, удерживающей режим камеры.
func (s *WSServer) handleCamera(conn *SafeWriter, message interface{}) error {
	camMsg, ok := message.(*CameraMessage)
	if !ok {
		return ErrInvalidMessage
	}

	session := s.getClientByConnection(conn)
	if session == nil {
		log.Printf("[Go] Сессия не найдена для соединения")
		return nil
	}

	if !s.controller.IsCameraOwner(session.ID) {
		// Поза от сессии без режима камеры игнорируется
		return nil
	}

	pose := scene.CameraPose{
		Position: mgl32.Vec3{camMsg.PX, camMsg.PY, camMsg.PZ},
		Orientation: mgl32.Quat{
			W: camMsg.QW,
			V: mgl32.Vec3{camMsg.QX, camMsg.QY, camMsg.QZ},
		},
	}

	s.controller.SetCameraPose(pose)
	return nil
}

// handleMode обрабатывает переключение режима ввода
func (s *WSServer) handleMode(conn *SafeWriter, message interface{}) error {
	modeMsg, ok := message.(*ModeMessage)
	if !ok {
		return ErrInvalidMessage
	}

	session := s.getClientByConnection(conn)
	if session == nil {
		log.Printf("[Go] Сессия не найдена для соединения")
		return nil
	}

	switch modeMsg.Mode {
	case "camera":
		if err := s.controller.EnterCameraMode(session.ID); err != nil {
			if err == controls.ErrCameraBusy {
				// Режим камеры уже удерживается другой сессией
				infoMsg := NewInfoMessage("Режим камеры занят другой сессией")
				return s.simulateNetworkConditions(conn, infoMsg)
			}
			return err
		}
		s.tracker.LogEvent("mode", session.ID, "camera", 0)

	case "pointer":
		s.controller.LeaveCameraMode(session.ID)
		s.tracker.LogEvent("mode", session.ID, "pointer", 0)

	default:
		log.Printf("[Go] Неизвестный режим ввода: %s", modeMsg.Mode)
		return nil
	}

	ackMsg := NewAckMessage(modeMsg.Mode, true, 0)
	return s.simulateNetworkConditions(conn, ackMsg)
}

// handlePing обрабатывает ping-сообщения
func (s *WSServer) handlePing(conn *SafeWriter, message interface{}) error {
	pingMsg, ok := message.(*PingMessage)
	if !ok {
		return ErrInvalidMessage
	}

	// Отправляем pong в ответ с применением имитации сетевых условий
	pongMessage := NewPongMessage(pingMsg.ClientTime)
	return s.simulateNetworkConditions(conn, pongMessage)
}

// startPing запускает периодическую отправку пингов для проверки соединения
func (s *WSServer) startPing(conn *SafeWriter) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for range ticker.C {
		pingMsg := map[string]interface{}{
			"type":        MessageTypePing,
			"server_time": GetCurrentServerTime(),
		}

		// Применяем имитацию сетевых условий к ping сообщениям
		if err := s.simulateNetworkConditions(conn, pingMsg); err != nil {
			log.Printf("Error sending ping: %v", err)
			return
		}
	}
}
