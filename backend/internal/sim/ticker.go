package sim

import (
	"context"
	"log"
	"sync"
	"time"
)

// TickSystem интерфейс для всех систем, которые обновляются каждый тик
type TickSystem interface {
	Update(deltaTime time.Duration) error
	GetName() string
	GetPriority() int // Приоритет выполнения (меньше = раньше)
}

// Ticker основной менеджер цикла симуляции сцены. Единственная горутина
// цикла по очереди выполняет все зарегистрированные системы, поэтому
// внутри одного тика состояние сцены меняется строго последовательно.
type Ticker struct {
	// Конфигурация
	targetTPS    int           // Целевая частота тиков в секунду
	tickDuration time.Duration // Длительность одного тика
	maxTickTime  time.Duration // Максимальное время на один тик

	// Состояние
	isRunning    bool
	isPaused     bool
	tickCount    uint64
	startTime    time.Time
	lastTickTime time.Time

	// Системы
	systems      []TickSystem
	systemsMutex sync.RWMutex

	// Мониторинг производительности
	perfMonitor *PerformanceMonitor

	// Управление
	ctx       context.Context
	cancel    context.CancelFunc
	pauseChan chan bool

	// Метрики
	averageTickTime time.Duration
	maxObservedTick time.Duration
	skippedTicks    uint64

	// Логирование
	logger           *log.Logger
	warningThreshold time.Duration
}

// PerformanceMonitor отслеживает производительность каждой системы
type PerformanceMonitor struct {
	systemMetrics map[string]*SystemMetrics
	mutex         sync.RWMutex

	// Настройки мониторинга
	metricsWindow     int           // Количество последних тиков для усреднения
	warningThreshold  time.Duration // Порог предупреждения для системы
	criticalThreshold time.Duration // Критический порог
}

// SystemMetrics метрики производительности системы
type SystemMetrics struct {
	Name              string
	LastExecutionTime time.Duration
	AverageTime       time.Duration
	MaxTime           time.Duration
	TotalExecutions   uint64
	Errors            uint64

	// Скользящее окно для вычисления среднего
	recentTimes  []time.Duration
	recentIndex  int
	windowFilled bool
}

// NewTicker создает новый тикер сцены
func NewTicker(targetTPS int, logger *log.Logger) *Ticker {
	if targetTPS <= 0 {
		targetTPS = 60 // По умолчанию 60 TPS: симуляция идет в темпе дисплея
	}

	if logger == nil {
		logger = log.Default()
	}

	tickDuration := time.Second / time.Duration(targetTPS)
	maxTickTime := tickDuration * 2 // Максимум в 2 раза больше целевого времени

	ctx, cancel := context.WithCancel(context.Background())

	return &Ticker{
		targetTPS:        targetTPS,
		tickDuration:     tickDuration,
		maxTickTime:      maxTickTime,
		systems:          make([]TickSystem, 0),
		perfMonitor:      NewPerformanceMonitor(50, tickDuration/4), // Предупреждение при 25% от тика
		ctx:              ctx,
		cancel:           cancel,
		pauseChan:        make(chan bool, 1),
		logger:           logger,
		warningThreshold: tickDuration / 2, // Предупреждение при 50% от времени тика
	}
}

// NewPerformanceMonitor создает новый монитор производительности
func NewPerformanceMonitor(windowSize int, warningThreshold time.Duration) *PerformanceMonitor {
	return &PerformanceMonitor{
		systemMetrics:     make(map[string]*SystemMetrics),
		metricsWindow:     windowSize,
		warningThreshold:  warningThreshold,
		criticalThreshold: warningThreshold * 2,
	}
}

// Start запускает цикл симуляции
func (t *Ticker) Start() error {
	if t.isRunning {
		return nil // Уже запущен
	}

	t.isRunning = true
	t.startTime = time.Now()
	t.lastTickTime = t.startTime

	t.logger.Printf("[Ticker] Запуск цикла сцены: %d TPS (тик каждые %v)",
		t.targetTPS, t.tickDuration)

	go t.loop()

	return nil
}

// Stop останавливает цикл симуляции
func (t *Ticker) Stop() {
	if !t.isRunning {
		return
	}

	t.logger.Printf("[Ticker] Остановка цикла сцены (выполнено тиков: %d)", t.tickCount)

	t.cancel()
	t.isRunning = false
}

// Pause приостанавливает выполнение тиков
func (t *Ticker) Pause() {
	if !t.isRunning || t.isPaused {
		return
	}
	t.isPaused = true
	t.pauseChan <- true
	t.logger.Printf("[Ticker] Цикл приостановлен")
}

// Resume возобновляет выполнение тиков
func (t *Ticker) Resume() {
	if !t.isRunning || !t.isPaused {
		return
	}
	t.isPaused = false
	t.pauseChan <- false
	t.logger.Printf("[Ticker] Цикл возобновлен")
}

// RegisterSystem добавляет систему в цикл
func (t *Ticker) RegisterSystem(system TickSystem) {
	t.systemsMutex.Lock()
	defer t.systemsMutex.Unlock()

	// Добавляем систему
	t.systems = append(t.systems, system)

	// Сортируем по приоритету (меньше = выше приоритет)
	for i := len(t.systems) - 1; i > 0; i-- {
		if t.systems[i].GetPriority() < t.systems[i-1].GetPriority() {
			t.systems[i], t.systems[i-1] = t.systems[i-1], t.systems[i]
		} else {
			break
		}
	}

	// Инициализируем метрики для системы
	t.perfMonitor.initSystemMetrics(system.GetName())

	t.logger.Printf("[Ticker] Зарегистрирована система: %s (приоритет: %d)",
		system.GetName(), system.GetPriority())
}

// loop основной цикл симуляции
func (t *Ticker) loop() {
	ticker := time.NewTicker(t.tickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-t.ctx.Done():
			return

		case pause := <-t.pauseChan:
			if pause {
				// Ждем команды возобновления
				for pause {
					select {
					case <-t.ctx.Done():
						return
					case pause = <-t.pauseChan:
					}
				}
			}

		case tickTime := <-ticker.C:
			t.executeTick(tickTime)
		}
	}
}

// executeTick выполняет один тик
func (t *Ticker) executeTick(tickTime time.Time) {
	tickStart := time.Now()
	deltaTime := tickTime.Sub(t.lastTickTime)

	// Проверяем, не слишком ли большая задержка между тиками
	if deltaTime > t.tickDuration*2 {
		t.logger.Printf("[Ticker] ПРЕДУПРЕЖДЕНИЕ: Большая задержка между тиками: %v (ожидалось: %v)",
			deltaTime, t.tickDuration)
		t.skippedTicks++
	}

	t.tickCount++
	t.lastTickTime = tickTime

	// Выполняем все системы
	t.executeAllSystems(deltaTime)

	// Измеряем общее время тика
	totalTickTime := time.Since(tickStart)
	t.updateTickMetrics(totalTickTime)

	// Проверяем производительность
	t.checkPerformance(totalTickTime)
}

// executeAllSystems выполняет все зарегистрированные системы по приоритету
func (t *Ticker) executeAllSystems(deltaTime time.Duration) {
	t.systemsMutex.RLock()
	systems := make([]TickSystem, len(t.systems))
	copy(systems, t.systems)
	t.systemsMutex.RUnlock()

	for _, system := range systems {
		t.executeSystem(system, deltaTime)
	}
}

// executeSystem выполняет одну систему с замером времени
func (t *Ticker) executeSystem(system TickSystem, deltaTime time.Duration) {
	systemStart := time.Now()
	systemName := system.GetName()

	defer func() {
		if r := recover(); r != nil {
			t.logger.Printf("[Ticker] КРИТИЧЕСКАЯ ОШИБКА в системе %s: %v", systemName, r)
			t.perfMonitor.recordError(systemName)
		}
	}()

	// Выполняем систему
	err := system.Update(deltaTime)

	executionTime := time.Since(systemStart)

	// Записываем метрики
	t.perfMonitor.recordExecution(systemName, executionTime)

	// Обрабатываем ошибки
	if err != nil {
		t.logger.Printf("[Ticker] Ошибка в системе %s: %v", systemName, err)
		t.perfMonitor.recordError(systemName)
	}
}

// GetTickCount возвращает текущее количество тиков
func (t *Ticker) GetTickCount() uint64 {
	return t.tickCount
}

// GetStats возвращает статистику цикла симуляции
func (t *Ticker) GetStats() map[string]interface{} {
	uptime := time.Since(t.startTime)
	actualTPS := float64(t.tickCount) / uptime.Seconds()

	return map[string]interface{}{
		"target_tps":        t.targetTPS,
		"actual_tps":        actualTPS,
		"tick_count":        t.tickCount,
		"uptime_seconds":    uptime.Seconds(),
		"average_tick_time": t.averageTickTime.String(),
		"max_observed_tick": t.maxObservedTick.String(),
		"skipped_ticks":     t.skippedTicks,
		"is_running":        t.isRunning,
		"is_paused":         t.isPaused,
		"systems_count":     len(t.systems),
		"systems":           t.perfMonitor.GetSystemsStats(),
	}
}

// Вспомогательные методы для мониторинга производительности
func (pm *PerformanceMonitor) initSystemMetrics(systemName string) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.systemMetrics[systemName] = &SystemMetrics{
		Name:        systemName,
		recentTimes: make([]time.Duration, pm.metricsWindow),
	}
}

func (pm *PerformanceMonitor) recordExecution(systemName string, executionTime time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	metrics, exists := pm.systemMetrics[systemName]
	if !exists {
		return
	}

	metrics.LastExecutionTime = executionTime
	metrics.TotalExecutions++

	// Обновляем максимальное время
	if executionTime > metrics.MaxTime {
		metrics.MaxTime = executionTime
	}

	// Добавляем в скользящее окно
	metrics.recentTimes[metrics.recentIndex] = executionTime
	metrics.recentIndex = (metrics.recentIndex + 1) % pm.metricsWindow

	if !metrics.windowFilled && metrics.recentIndex == 0 {
		metrics.windowFilled = true
	}

	// Пересчитываем среднее время
	pm.recalculateAverage(metrics)
}

func (pm *PerformanceMonitor) recordError(systemName string) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if metrics, exists := pm.systemMetrics[systemName]; exists {
		metrics.Errors++
	}
}

func (pm *PerformanceMonitor) recalculateAverage(metrics *SystemMetrics) {
	var total time.Duration
	var count int

	limit := pm.metricsWindow
	if !metrics.windowFilled {
		limit = metrics.recentIndex
	}

	for i := 0; i < limit; i++ {
		total += metrics.recentTimes[i]
		count++
	}

	if count > 0 {
		metrics.AverageTime = total / time.Duration(count)
	}
}

// GetSystemsStats возвращает метрики всех систем
func (pm *PerformanceMonitor) GetSystemsStats() map[string]interface{} {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	systemsStats := make(map[string]interface{})

	for name, metrics := range pm.systemMetrics {
		systemsStats[name] = map[string]interface{}{
			"last_execution_time": metrics.LastExecutionTime.String(),
			"average_time":        metrics.AverageTime.String(),
			"max_time":            metrics.MaxTime.String(),
			"total_executions":    metrics.TotalExecutions,
			"errors":              metrics.Errors,
		}
	}

	return systemsStats
}

func (t *Ticker) updateTickMetrics(tickTime time.Duration) {
	if tickTime > t.maxObservedTick {
		t.maxObservedTick = tickTime
	}

	// Простое скользящее среднее
	if t.averageTickTime == 0 {
		t.averageTickTime = tickTime
	} else {
		t.averageTickTime = (t.averageTickTime*9 + tickTime) / 10
	}
}

func (t *Ticker) checkPerformance(tickTime time.Duration) {
	if tickTime > t.maxTickTime {
		t.logger.Printf("[Ticker] КРИТИЧЕСКОЕ ПРЕДУПРЕЖДЕНИЕ: Тик превысил максимальное время! %v > %v (цель: %v)",
			tickTime, t.maxTickTime, t.tickDuration)
	} else if tickTime > t.warningThreshold {
		t.logger.Printf("[Ticker] ПРЕДУПРЕЖДЕНИЕ: Медленный тик: %v (цель: %v)",
			tickTime, t.tickDuration)
	}
}
