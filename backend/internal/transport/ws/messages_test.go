package ws

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestGetCurrentServerTime(t *testing.T) {
	// Проверяем, что функция возвращает текущее время в миллисекундах
	now := time.Now().UnixNano() / int64(time.Millisecond)
	serverTime := GetCurrentServerTime()

	// Допускаем разницу в 100 мс (что более чем достаточно для локального выполнения)
	if serverTime < now-100 || serverTime > now+100 {
		t.Errorf("GetCurrentServerTime() returned time too far from current time. Got %d, expected around %d", serverTime, now)
	}
}

func TestNewPongMessage(t *testing.T) {
	msg := NewPongMessage(123456)

	if msg.Type != MessageTypePong {
		t.Errorf("Expected message type %s, got %s", MessageTypePong, msg.Type)
	}
	if msg.ClientTime != 123456 {
		t.Errorf("Expected ClientTime 123456, got %d", msg.ClientTime)
	}
	if msg.ServerTime == 0 {
		t.Error("Expected ServerTime to be set, got 0")
	}
}

func TestNewAckMessage(t *testing.T) {
	msg := NewAckMessage("open_palm", true, 42)

	if msg.Type != MessageTypeAck {
		t.Errorf("Expected message type %s, got %s", MessageTypeAck, msg.Type)
	}
	if msg.Cmd != "open_palm" {
		t.Errorf("Expected cmd open_palm, got %s", msg.Cmd)
	}
	if !msg.Accepted {
		t.Error("Expected Accepted to be true")
	}
	if msg.ClientTime != 42 {
		t.Errorf("Expected ClientTime 42, got %d", msg.ClientTime)
	}
	if msg.ServerTime == 0 {
		t.Error("Expected ServerTime to be set, got 0")
	}
}

func TestNewStateMessage(t *testing.T) {
	msg := NewStateMessage(true, "gesture")

	if msg.Type != MessageTypeState {
		t.Errorf("Expected message type %s, got %s", MessageTypeState, msg.Type)
	}
	if !msg.Exploded {
		t.Error("Expected Exploded to be true")
	}
	if msg.Source != "gesture" {
		t.Errorf("Expected source gesture, got %s", msg.Source)
	}
	if msg.ServerTime == 0 {
		t.Error("Expected ServerTime to be set, got 0")
	}
}

func TestNewHandMessage(t *testing.T) {
	msg := NewHandMessage("closed_fist", 0.91)

	if msg.Type != MessageTypeHand {
		t.Errorf("Expected message type %s, got %s", MessageTypeHand, msg.Type)
	}
	if msg.Label != "closed_fist" {
		t.Errorf("Expected label closed_fist, got %s", msg.Label)
	}
	if msg.Confidence != 0.91 {
		t.Errorf("Expected confidence 0.91, got %f", msg.Confidence)
	}
	if msg.ClientTime == 0 {
		t.Error("Expected ClientTime to be set, got 0")
	}
}

func TestNewPointerMessage(t *testing.T) {
	msg := NewPointerMessage("release")

	if msg.Type != MessageTypePointer {
		t.Errorf("Expected message type %s, got %s", MessageTypePointer, msg.Type)
	}
	if msg.Action != "release" {
		t.Errorf("Expected action release, got %s", msg.Action)
	}
	if msg.ClientTime == 0 {
		t.Error("Expected ClientTime to be set, got 0")
	}
}

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		expected interface{}
		error    bool
	}{
		{
			name: "HandMessage",
			json: `{"type":"hand","label":"open_palm","confidence":0.87,"client_time":123456}`,
			expected: &HandMessage{
				Type:       MessageTypeHand,
				Label:      "open_palm",
				Confidence: 0.87,
				ClientTime: 123456,
			},
			error: false,
		},
		{
			name: "PointerMessage",
			json: `{"type":"pointer","action":"press","client_time":123456}`,
			expected: &PointerMessage{
				Type:       MessageTypePointer,
				Action:     "press",
				ClientTime: 123456,
			},
			error: false,
		},
		{
			name: "LookMessage",
			json: `{"type":"look","x":0.25,"y":-0.5}`,
			expected: &LookMessage{
				Type: MessageTypeLook,
				X:    0.25,
				Y:    -0.5,
			},
			error: false,
		},
		{
			name: "CameraMessage",
			json: `{"type":"camera","px":1,"py":2,"pz":3,"qx":0,"qy":0.5,"qz":0,"qw":0.5}`,
			expected: &CameraMessage{
				Type: MessageTypeCamera,
				PX:   1, PY: 2, PZ: 3,
				QX: 0, QY: 0.5, QZ: 0, QW: 0.5,
			},
			error: false,
		},
		{
			name: "ModeMessage",
			json: `{"type":"mode","mode":"camera"}`,
			expected: &ModeMessage{
				Type: MessageTypeMode,
				Mode: "camera",
			},
			error: false,
		},
		{
			name: "PingMessage",
			json: `{"type":"ping","client_time":123456}`,
			expected: &PingMessage{
				Type:       MessageTypePing,
				ClientTime: 123456,
			},
			error: false,
		},
		{
			name: "PongMessage",
			json: `{"type":"pong","client_time":1,"server_time":2}`,
			expected: &PongMessage{
				Type:       MessageTypePong,
				ClientTime: 1,
				ServerTime: 2,
			},
			error: false,
		},
		{
			name: "AckMessage",
			json: `{"type":"cmd_ack","cmd":"press","accepted":true,"client_time":1,"server_time":2}`,
			expected: &AckMessage{
				Type:       MessageTypeAck,
				Cmd:        "press",
				Accepted:   true,
				ClientTime: 1,
				ServerTime: 2,
			},
			error: false,
		},
		{
			name: "InfoMessage",
			json: `{"type":"info","message":"Hello, world!"}`,
			expected: &InfoMessage{
				Type:    MessageTypeInfo,
				Message: "Hello, world!",
			},
			error: false,
		},
		{
			name:     "Invalid JSON",
			json:     `{"type":`,
			expected: nil,
			error:    true,
		},
		{
			name:     "Unknown message type",
			json:     `{"type":"teleport"}`,
			expected: nil,
			error:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseMessage([]byte(tt.json))
			if tt.error {
				if err == nil {
					t.Errorf("Expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Errorf("Unexpected error: %v", err)
				return
			}

			// Сравниваем результат с ожидаемым
			expected, _ := json.Marshal(tt.expected)
			actual, _ := json.Marshal(result)

			if string(expected) != string(actual) {
				t.Errorf("Expected %s, got %s", string(expected), string(actual))
			}
		})
	}
}

func TestParseMessage_UnknownTypeError(t *testing.T) {
	// Неизвестный тип должен опознаваться через errors.Is
	_, err := ParseMessage([]byte(`{"type":"teleport"}`))
	if !errors.Is(err, ErrUnknownMessageType) {
		t.Errorf("Expected ErrUnknownMessageType, got %v", err)
	}
}

func TestGetMessageType(t *testing.T) {
	msgType, err := GetMessageType([]byte(`{"type":"hand","label":"open_palm"}`))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if msgType != MessageTypeHand {
		t.Errorf("Expected type %s, got %s", MessageTypeHand, msgType)
	}

	if _, err := GetMessageType([]byte(`not json`)); err == nil {
		t.Error("Expected error for invalid JSON, got nil")
	}
}
