package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"time"

	"x-spores/backend/internal/controls"
	"x-spores/backend/internal/scene"
	"x-spores/backend/internal/sim"
	"x-spores/backend/internal/stage"
	"x-spores/backend/internal/telemetry"
	"x-spores/backend/internal/transport/ws"
)

func main() {
	// Флаги командной строки
	var (
		addr          = flag.String("addr", ":8080", "Адрес HTTP сервера")
		targetTPS     = flag.Int("tps", 60, "Частота тиков симуляции")
		frameInterval = flag.Duration("frame-interval", ws.DefaultUpdateInterval, "Интервал рассылки кадров")
		heartCount    = flag.Int("hearts", 0, "Количество сердец (0 = значение по умолчанию)")
		fireflyCount  = flag.Int("fireflies", 0, "Количество светлячков (0 = значение по умолчанию)")
		seed          = flag.Int64("seed", 0, "Seed генерации сцены (0 = по текущему времени)")
		staticDir     = flag.String("static", "./web", "Директория статических файлов рендера")
		netProfile    = flag.String("net-profile", "", "Профиль имитации сети (mobile_3g, wifi_poor, ...)")
	)
	flag.Parse()

	logger := log.Default()

	// Seed воспроизводим: один и тот же seed дает одинаковое поле сердец
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	logger.Printf("[Server] Seed сцены: %d", *seed)

	rng := rand.New(rand.NewPCG(uint64(*seed), uint64(*seed)+1))

	// Конфигурация сцены
	cfg := scene.DefaultConfig()
	if *heartCount > 0 {
		cfg.HeartCount = *heartCount
	}
	if *fireflyCount > 0 {
		cfg.FireflyCount = *fireflyCount
	}

	// Создаем сцену, землю и гриб
	sc := scene.New(cfg, rng, logger)
	ground := stage.GenerateGround(*seed)
	mushroom := stage.MushroomFromConfig(cfg)

	// Контроллер ввода
	controller := controls.NewController(logger)

	// WebSocket сервер
	wsServer := ws.NewWSServer(controller, sc, mushroom, ground, telemetry.GlobalTelemetry)
	controller.SetNotifier(wsServer)

	if *netProfile != "" {
		wsServer.EnableNetworkSimulation(*netProfile)
	}

	// Цикл симуляции
	ticker := sim.NewTicker(*targetTPS, logger)

	sceneSystem := sim.NewSceneSystem(ticker, sc, controller, logger)
	ticker.RegisterSystem(sceneSystem)

	broadcastSystem := sim.NewBroadcastSystem(sc, *frameInterval, logger)
	broadcastSystem.SetBroadcaster(wsServer)
	ticker.RegisterSystem(broadcastSystem)

	telemetrySystem := sim.NewTelemetrySystem(telemetry.GlobalTelemetry)
	ticker.RegisterSystem(telemetrySystem)

	if err := ticker.Start(); err != nil {
		logger.Fatalf("[Server] Ошибка запуска цикла симуляции: %v", err)
	}

	// Настройка HTTP маршрутов
	http.HandleFunc("/ws", wsServer.HandleWS)

	http.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		stats := map[string]interface{}{
			"ticker":    ticker.GetStats(),
			"transport": wsServer.Stats(),
			"controls":  controller.Stats(),
			"frames":    broadcastSystem.FramesSent(),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(stats); err != nil {
			logger.Printf("[Server] Ошибка кодирования статистики: %v", err)
		}
	})

	http.HandleFunc("/telemetry", func(w http.ResponseWriter, r *http.Request) {
		jsonData, err := telemetry.GlobalTelemetry.GetTelemetryJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(jsonData))
	})

	// Добавим проверку существования директории
	if _, err := os.Stat(*staticDir); os.IsNotExist(err) {
		logger.Printf("Warning: Directory %s does not exist", *staticDir)
	}

	// Обработчик для статических файлов рендера
	fs := http.FileServer(http.Dir(*staticDir))
	http.Handle("/", http.StripPrefix("/", fs))

	logger.Printf("Serving static files from: %s", *staticDir)
	logger.Printf("Server starting on %s", *addr)

	server := &http.Server{Addr: *addr}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("[Server] Ошибка HTTP сервера: %v", err)
		}
	}()

	// Обработка сигналов для корректного завершения
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c

	logger.Printf("[Server] Получен сигнал прерывания, завершение работы...")

	ticker.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("[Server] Ошибка остановки HTTP сервера: %v", err)
	}

	logger.Printf("[Server] Сервер остановлен")
}
