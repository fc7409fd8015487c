package ws

import (
	"fmt"
	"log"
	"math/rand/v2"
	"time"
)

// ClientSession представляет подключенного клиента сцены.
// Клиентом может быть рендер, классификатор жестов или отладочный бот —
// все они говорят по одному протоколу.
type ClientSession struct {
	ID         string      // Уникальный ID сессии
	Conn       *SafeWriter // WebSocket соединение
	RemoteAddr string      // Адрес клиента
	JoinTime   time.Time   // Время подключения
}

// generateSessionID генерирует уникальный ID для сессии
func (s *WSServer) generateSessionID() string {
	return fmt.Sprintf("session_%d_%d", time.Now().UnixNano(), rand.IntN(10000))
}

// addClient регистрирует нового клиента при подключении
func (s *WSServer) addClient(conn *SafeWriter, remoteAddr string) *ClientSession {
	session := &ClientSession{
		ID:         s.generateSessionID(),
		Conn:       conn,
		RemoteAddr: remoteAddr,
		JoinTime:   time.Now(),
	}

	s.clientsMu.Lock()
	s.clients[session.ID] = session
	s.clientsMu.Unlock()

	log.Printf("[WSServer] Создана сессия %s для %s", session.ID, remoteAddr)

	// Отправляем клиенту его session ID для использования в командах
	sessionMsg := map[string]interface{}{
		"type":       "session",
		"session_id": session.ID,
	}
	if err := conn.WriteJSON(sessionMsg); err != nil {
		log.Printf("[WSServer] Ошибка отправки session_id сессии %s: %v", session.ID, err)
	}

	return session
}

// removeClient удаляет клиента при отключении
func (s *WSServer) removeClient(conn *SafeWriter) {
	s.clientsMu.Lock()

	// Ищем сессию по соединению
	var sessionToRemove *ClientSession
	var sessionID string

	for id, session := range s.clients {
		if session.Conn == conn {
			sessionToRemove = session
			sessionID = id
			break
		}
	}

	if sessionToRemove == nil {
		s.clientsMu.Unlock()
		log.Printf("[WSServer] Сессия для удаления не найдена")
		return
	}

	delete(s.clients, sessionID)
	s.clientsMu.Unlock()

	// Освобождаем ресурсы, удерживаемые сессией (например, режим камеры),
	// уже сняв clientsMu: контроллер при переходе рассылает уведомления
	// и сам приходит за этой блокировкой
	s.controller.ReleaseSession(sessionID)

	log.Printf("[WSServer] Удалена сессия %s (%s), время в сети: %v",
		sessionID, sessionToRemove.RemoteAddr, time.Since(sessionToRemove.JoinTime).Round(time.Second))
}

// getClientByConnection возвращает сессию по соединению
func (s *WSServer) getClientByConnection(conn *SafeWriter) *ClientSession {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, session := range s.clients {
		if session.Conn == conn {
			return session
		}
	}
	return nil
}

// ClientCount возвращает количество подключенных клиентов
func (s *WSServer) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// BroadcastJSON отправляет JSON сообщение всем подключенным клиентам
func (s *WSServer) BroadcastJSON(message interface{}) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, session := range s.clients {
		if err := session.Conn.WriteJSON(message); err != nil {
			log.Printf("[WSServer] Ошибка отправки сообщения сессии %s: %v", session.ID, err)
		}
	}
}
