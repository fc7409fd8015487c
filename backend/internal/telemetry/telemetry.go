package telemetry

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// EventData структура для записи одного события сцены
type EventData struct {
	Timestamp int64   `json:"timestamp"`         // Время в миллисекундах
	Event     string  `json:"event"`             // Тип события (transition, gesture, look_clamp, etc.)
	Session   string  `json:"session,omitempty"` // ID сессии клиента (если есть)
	Detail    string  `json:"detail,omitempty"`  // Дополнительная информация
	Value     float64 `json:"value,omitempty"`   // Числовое значение (confidence, размер кадра, etc.)
	Source    string  `json:"source"`            // Источник данных (server/client)
}

// TelemetryManager управляет сбором и выводом телеметрии сцены
type TelemetryManager struct {
	enabled    bool
	data       []EventData
	mutex      sync.RWMutex
	maxEntries int

	// Счетчики для статистики
	counters      map[string]int
	lastPrint     time.Time
	printInterval time.Duration
}

// NewTelemetryManager создает новый менеджер телеметрии
func NewTelemetryManager() *TelemetryManager {
	return &TelemetryManager{
		enabled:       true, // Включаем по умолчанию для отладки
		data:          make([]EventData, 0),
		maxEntries:    200, // Храним последние 200 записей
		counters:      make(map[string]int),
		lastPrint:     time.Now(),
		printInterval: 2 * time.Second, // Выводим статистику каждые 2 секунды
	}
}

// LogEvent записывает событие сцены
func (tm *TelemetryManager) LogEvent(event, session, detail string, value float64) {
	if !tm.enabled {
		return
	}

	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	entry := EventData{
		Timestamp: time.Now().UnixMilli(),
		Event:     event,
		Session:   session,
		Detail:    detail,
		Value:     value,
		Source:    "server",
	}

	tm.data = append(tm.data, entry)

	// Ограничиваем размер буфера
	if len(tm.data) > tm.maxEntries {
		tm.data = tm.data[1:]
	}

	// Обновляем счетчики
	tm.counters[event]++
}

// Count увеличивает счетчик без записи полного события
func (tm *TelemetryManager) Count(event string, delta int) {
	if !tm.enabled {
		return
	}

	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.counters[event] += delta
}

// PrintSummary выводит сводку телеметрии
func (tm *TelemetryManager) PrintSummary() {
	if !tm.enabled {
		return
	}

	now := time.Now()
	if now.Sub(tm.lastPrint) < tm.printInterval {
		return
	}

	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	log.Println("🔬 [Telemetry] ===== СЕРВЕРНАЯ ТЕЛЕМЕТРИЯ =====")
	log.Printf("📊 [Telemetry] Всего записей: %d", len(tm.data))

	// Статистика по счетчикам
	for key, count := range tm.counters {
		log.Printf("📈 [Telemetry] %s: %d", key, count)
	}

	// Последние переходы состояния
	tm.printRecentTransitions()

	// Сброс счетчиков
	tm.counters = make(map[string]int)
	tm.lastPrint = now

	log.Println("🔬 [Telemetry] ===================================")
}

// printRecentTransitions выводит данные о последних переходах состояния сцены
func (tm *TelemetryManager) printRecentTransitions() {
	// Собираем последний переход по каждому источнику (pointer, gesture)
	transitions := make(map[string]EventData)

	for i := len(tm.data) - 1; i >= 0; i-- {
		entry := tm.data[i]
		if entry.Event == "transition" {
			if _, exists := transitions[entry.Session]; !exists {
				transitions[entry.Session] = entry
			}
		}
	}

	for source, data := range transitions {
		// Конвертируем timestamp в читаемое время
		timestamp := time.UnixMilli(data.Timestamp)

		log.Printf("🍄 [Telemetry] Переход от %s [%s]:", source, timestamp.Format("15:04:05.000"))
		log.Printf("   🎯 Состояние: %s", data.Detail)
		log.Printf("   ⏰ Временная метка: %d", data.Timestamp)
	}
}

// GetTelemetryJSON возвращает телеметрию в JSON формате
func (tm *TelemetryManager) GetTelemetryJSON() (string, error) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	jsonData, err := json.MarshalIndent(tm.data, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonData), nil
}

// SetEnabled включает/выключает телеметрию
func (tm *TelemetryManager) SetEnabled(enabled bool) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.enabled = enabled
	log.Printf("🔬 [Telemetry] Телеметрия %s", map[bool]string{true: "включена", false: "выключена"}[enabled])
}

// Clear очищает все данные телеметрии
func (tm *TelemetryManager) Clear() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.data = make([]EventData, 0)
	tm.counters = make(map[string]int)
	log.Println("🔬 [Telemetry] Данные телеметрии очищены")
}

// Глобальный экземпляр телеметрии
var GlobalTelemetry = NewTelemetryManager()
