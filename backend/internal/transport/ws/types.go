package ws

// Константы для WebSocket сообщений
const (
	// Типы сообщений
	MessageTypeHand        = "hand"         // Результат распознавания жеста
	MessageTypePointer     = "pointer"      // Нажатие/отпускание указателя
	MessageTypeLook        = "look"         // Нормализованный look-вектор
	MessageTypeCamera      = "camera"       // Поза камеры от рендера
	MessageTypeMode        = "mode"         // Переключение режима ввода
	MessageTypePing        = "ping"         // Пинг для измерения задержки
	MessageTypePong        = "pong"         // Ответ на пинг
	MessageTypeAck         = "cmd_ack"      // Подтверждение команды
	MessageTypeInfo        = "info"         // Информационное сообщение
	MessageTypeState       = "state"        // Состояние сцены (собрана/взорвана)
	MessageTypeSceneConfig = "scene_config" // Конфигурация сцены при подключении
)

// HandMessage представляет результат распознавания жеста от клиента
type HandMessage struct {
	Type       string  `json:"type"`
	Label      string  `json:"label"`      // open_palm, closed_fist или иной жест
	Confidence float64 `json:"confidence"` // Уверенность распознавания (0.0 - 1.0)
	ClientTime int64   `json:"client_time,omitempty"`
}

// PointerMessage представляет событие указателя от клиента
type PointerMessage struct {
	Type       string `json:"type"`
	Action     string `json:"action"` // press или release
	ClientTime int64  `json:"client_time,omitempty"`
}

// LookMessage представляет нормализованный look-вектор от клиента
type LookMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"` // Горизонталь, -1..1
	Y    float64 `json:"y"` // Вертикаль, -1..1
}

// CameraMessage представляет позу камеры рендера в мировых координатах
type CameraMessage struct {
	Type string  `json:"type"`
	PX   float32 `json:"px"`
	PY   float32 `json:"py"`
	PZ   float32 `json:"pz"`
	QX   float32 `json:"qx"`
	QY   float32 `json:"qy"`
	QZ   float32 `json:"qz"`
	QW   float32 `json:"qw"`
}

// ModeMessage представляет запрос на переключение режима ввода
type ModeMessage struct {
	Type string `json:"type"`
	Mode string `json:"mode"` // pointer или camera
}

// PingMessage представляет пинг от клиента
type PingMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
}

// PongMessage представляет ответ на пинг от сервера
type PongMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// AckMessage представляет подтверждение команды сервером
type AckMessage struct {
	Type       string `json:"type"`
	Cmd        string `json:"cmd"`
	Accepted   bool   `json:"accepted"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// InfoMessage представляет информационное сообщение от сервера
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StateMessage представляет текущее состояние сцены
type StateMessage struct {
	Type       string `json:"type"`
	Exploded   bool   `json:"exploded"`
	Source     string `json:"source"` // Источник перехода: pointer или gesture
	ServerTime int64  `json:"server_time"`
}
