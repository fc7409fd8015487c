package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidMessage возвращается, когда сообщение не соответствует ожидаемому типу
	ErrInvalidMessage = errors.New("invalid message format")
	// ErrUnknownMessageType возвращается для сообщений с неизвестным полем type
	ErrUnknownMessageType = errors.New("unknown message type")
)

// ParseMessage разбирает входящее сообщение в соответствующий тип
func ParseMessage(data []byte) (interface{}, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return nil, fmt.Errorf("error parsing message: %w", err)
	}

	switch baseMessage.Type {
	case MessageTypeHand:
		var msg HandMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing hand message: %w", err)
		}
		return &msg, nil

	case MessageTypePointer:
		var msg PointerMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing pointer message: %w", err)
		}
		return &msg, nil

	case MessageTypeLook:
		var msg LookMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing look message: %w", err)
		}
		return &msg, nil

	case MessageTypeCamera:
		var msg CameraMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing camera message: %w", err)
		}
		return &msg, nil

	case MessageTypeMode:
		var msg ModeMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing mode message: %w", err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing ping message: %w", err)
		}
		return &msg, nil

	case MessageTypePong:
		var msg PongMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing pong message: %w", err)
		}
		return &msg, nil

	case MessageTypeAck:
		var msg AckMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing ack message: %w", err)
		}
		return &msg, nil

	case MessageTypeInfo:
		var msg InfoMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error parsing info message: %w", err)
		}
		return &msg, nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownMessageType, baseMessage.Type)
	}
}

// GetMessageType возвращает тип сообщения на основе входных данных
func GetMessageType(data []byte) (string, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return "", err
	}

	return baseMessage.Type, nil
}

// GetCurrentServerTime возвращает текущее серверное время в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// NewPongMessage создает новое pong-сообщение
func NewPongMessage(clientTime int64) *PongMessage {
	return &PongMessage{
		Type:       MessageTypePong,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewAckMessage создает новое сообщение подтверждения
func NewAckMessage(cmd string, accepted bool, clientTime int64) *AckMessage {
	return &AckMessage{
		Type:       MessageTypeAck,
		Cmd:        cmd,
		Accepted:   accepted,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewInfoMessage создает новое информационное сообщение
func NewInfoMessage(message string) *InfoMessage {
	return &InfoMessage{
		Type:    MessageTypeInfo,
		Message: message,
	}
}

// NewStateMessage создает сообщение о состоянии сцены
func NewStateMessage(exploded bool, source string) *StateMessage {
	return &StateMessage{
		Type:       MessageTypeState,
		Exploded:   exploded,
		Source:     source,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewHandMessage создает сообщение с результатом распознавания жеста
func NewHandMessage(label string, confidence float64) *HandMessage {
	return &HandMessage{
		Type:       MessageTypeHand,
		Label:      label,
		Confidence: confidence,
		ClientTime: GetCurrentServerTime(),
	}
}

// NewPointerMessage создает сообщение о событии указателя
func NewPointerMessage(action string) *PointerMessage {
	return &PointerMessage{
		Type:       MessageTypePointer,
		Action:     action,
		ClientTime: GetCurrentServerTime(),
	}
}
