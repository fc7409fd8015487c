package ws

import (
	"fmt"
	"log"
	"math/rand"
	"time"
)

// NetworkSimulation - настройки для имитации сетевых условий.
// Применяется к управляющим JSON сообщениям, чтобы проверять, как
// сглаживание сцены и подтверждения переживают плохую сеть.
type NetworkSimulation struct {
	Enabled         bool          // Включена ли имитация
	BaseLatency     time.Duration // Базовая задержка
	LatencyVariance time.Duration // Вариация задержки (jitter)
	PacketLoss      float64       // Процент потери пакетов (0.0 - 1.0)
}

// DelayedMessage - сообщение с задержкой
type DelayedMessage struct {
	conn    *SafeWriter
	message interface{}
	sendAt  time.Time
}

// SetNetworkSimulation устанавливает параметры имитации сети
func (s *WSServer) SetNetworkSimulation(sim NetworkSimulation) {
	s.simMu.Lock()
	defer s.simMu.Unlock()
	s.networkSim = sim
	log.Printf("[NetworkSim] Настройки обновлены: Enabled=%v, BaseLatency=%v, Variance=%v, PacketLoss=%.2f%%",
		sim.Enabled, sim.BaseLatency, sim.LatencyVariance, sim.PacketLoss*100)
}

// GetNetworkSimulation возвращает текущие настройки имитации
func (s *WSServer) GetNetworkSimulation() NetworkSimulation {
	s.simMu.RLock()
	defer s.simMu.RUnlock()
	return s.networkSim
}

// simulateNetworkConditions применяет имитацию сетевых условий к сообщению
func (s *WSServer) simulateNetworkConditions(conn *SafeWriter, message interface{}) error {
	// Проверяем входные параметры
	if conn == nil {
		return fmt.Errorf("connection is nil")
	}
	if message == nil {
		return fmt.Errorf("message is nil")
	}

	s.simMu.RLock()
	sim := s.networkSim
	s.simMu.RUnlock()

	// Если имитация выключена, отправляем сразу
	if !sim.Enabled {
		return conn.WriteJSON(message)
	}

	// Имитация потери пакетов
	if sim.PacketLoss > 0 && rand.Float64() < sim.PacketLoss {
		log.Printf("[NetworkSim] Пакет потерян (%.1f%% loss rate)", sim.PacketLoss*100)
		return nil // Пакет "потерян"
	}

	// Вычисляем задержку
	delay := sim.BaseLatency
	if sim.LatencyVariance > 0 {
		// Добавляем случайную вариацию (jitter)
		variance := time.Duration(rand.Float64() * float64(sim.LatencyVariance))
		if rand.Float64() < 0.5 {
			variance = -variance
		}
		delay += variance
	}

	// Если задержка нулевая или отрицательная, отправляем сразу
	if delay <= 0 {
		return conn.WriteJSON(message)
	}

	// Отправляем сообщение с задержкой
	delayedMsg := DelayedMessage{
		conn:    conn,
		message: message,
		sendAt:  time.Now().Add(delay),
	}

	select {
	case s.delayedMessages <- delayedMsg:
		return nil
	default:
		log.Printf("[NetworkSim] Буфер отложенных сообщений переполнен, отправляем сразу")
		return conn.WriteJSON(message)
	}
}

// processDelayedMessages обрабатывает отложенные сообщения
func (s *WSServer) processDelayedMessages() {
	for delayedMsg := range s.delayedMessages {
		// Проверяем, что соединение еще активно
		if delayedMsg.conn == nil {
			log.Printf("[NetworkSim] Пропускаем сообщение: соединение nil")
			continue
		}

		// Проверяем, что сообщение не nil
		if delayedMsg.message == nil {
			log.Printf("[NetworkSim] Пропускаем сообщение: message nil")
			continue
		}

		// Ждем до времени отправки
		now := time.Now()
		if delayedMsg.sendAt.After(now) {
			time.Sleep(delayedMsg.sendAt.Sub(now))
		}

		// Отправляем сообщение
		if err := delayedMsg.conn.WriteJSON(delayedMsg.message); err != nil {
			log.Printf("[NetworkSim] Ошибка отправки отложенного сообщения: %v", err)
		}
	}
}

// EnableNetworkSimulation включает имитацию с предустановленными профилями
func (s *WSServer) EnableNetworkSimulation(profile string) {
	var sim NetworkSimulation

	switch profile {
	case "mobile_3g":
		sim = NetworkSimulation{
			Enabled:         true,
			BaseLatency:     100 * time.Millisecond,
			LatencyVariance: 50 * time.Millisecond,
			PacketLoss:      0.02, // 2%
		}
	case "mobile_4g":
		sim = NetworkSimulation{
			Enabled:         true,
			BaseLatency:     50 * time.Millisecond,
			LatencyVariance: 20 * time.Millisecond,
			PacketLoss:      0.01, // 1%
		}
	case "wifi_poor":
		sim = NetworkSimulation{
			Enabled:         true,
			BaseLatency:     80 * time.Millisecond,
			LatencyVariance: 40 * time.Millisecond,
			PacketLoss:      0.03, // 3%
		}
	case "wifi_good":
		sim = NetworkSimulation{
			Enabled:         true,
			BaseLatency:     20 * time.Millisecond,
			LatencyVariance: 10 * time.Millisecond,
			PacketLoss:      0.005, // 0.5%
		}
	case "high_latency":
		sim = NetworkSimulation{
			Enabled:         true,
			BaseLatency:     200 * time.Millisecond,
			LatencyVariance: 100 * time.Millisecond,
			PacketLoss:      0.05, // 5%
		}
	case "unstable":
		sim = NetworkSimulation{
			Enabled:         true,
			BaseLatency:     60 * time.Millisecond,
			LatencyVariance: 80 * time.Millisecond,
			PacketLoss:      0.04, // 4%
		}
	default:
		sim = NetworkSimulation{Enabled: false}
	}

	s.SetNetworkSimulation(sim)
}
