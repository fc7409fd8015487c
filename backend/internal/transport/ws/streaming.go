package ws

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/gorilla/websocket"

	"x-spores/backend/internal/scene"
)

// Двоичный формат кадра (little-endian):
//
//	заголовок: версия u8, флаги u8 (бит 0 = exploded), резерв u16,
//	           heart_count u32, firefly_count u32, sim_time f64, generation u64
//	далее блоки float32: позиции сердец (3N), повороты (4N), масштабы (N),
//	           цвета (3N), позиции светлячков (3M), масштабы (M), цвета (3M)
const (
	FrameVersion    = 1
	FrameHeaderSize = 28

	frameFlagExploded = 1 << 0

	heartFloats   = 11 // 3 позиция + 4 кватернион + 1 масштаб + 3 цвет
	fireflyFloats = 7  // 3 позиция + 1 масштаб + 3 цвет
)

var (
	// ErrFrameTooShort возвращается при декодировании усеченного кадра
	ErrFrameTooShort = errors.New("frame data too short")
	// ErrFrameVersion возвращается при несовпадении версии формата кадра
	ErrFrameVersion = errors.New("unsupported frame version")
)

// Frame декодированный кадр сцены. Используется клиентами (viewer, probe),
// сервер оперирует только закодированными байтами.
type Frame struct {
	Exploded   bool
	SimTime    float64
	Generation uint64

	HeartPositions []float32 // 3 на сердце
	HeartRotations []float32 // 4 на сердце
	HeartScales    []float32 // 1 на сердце
	HeartColors    []float32 // 3 на сердце

	FireflyPositions []float32 // 3 на светлячка
	FireflyScales    []float32 // 1 на светлячка
	FireflyColors    []float32 // 3 на светлячка
}

// HeartCount возвращает количество сердец в кадре
func (f *Frame) HeartCount() int {
	return len(f.HeartScales)
}

// FireflyCount возвращает количество светлячков в кадре
func (f *Frame) FireflyCount() int {
	return len(f.FireflyScales)
}

// EncodeFrame кодирует буферы инстансов в двоичный кадр
func EncodeFrame(buffers *scene.InstanceBuffers, simTime float64, exploded bool) []byte {
	heartCount := buffers.HeartCount()
	fireflyCount := buffers.FireflyCount()

	size := FrameHeaderSize + heartCount*heartFloats*4 + fireflyCount*fireflyFloats*4
	data := make([]byte, size)

	data[0] = FrameVersion
	if exploded {
		data[1] |= frameFlagExploded
	}
	// data[2:4] - резерв
	binary.LittleEndian.PutUint32(data[4:], uint32(heartCount))
	binary.LittleEndian.PutUint32(data[8:], uint32(fireflyCount))
	binary.LittleEndian.PutUint64(data[12:], math.Float64bits(simTime))
	binary.LittleEndian.PutUint64(data[20:], buffers.Generation)

	offset := FrameHeaderSize
	offset = putFloat32Slice(data, offset, buffers.HeartPositions)
	offset = putFloat32Slice(data, offset, buffers.HeartRotations)
	offset = putFloat32Slice(data, offset, buffers.HeartScales)
	offset = putFloat32Slice(data, offset, buffers.HeartColors)
	offset = putFloat32Slice(data, offset, buffers.FireflyPositions)
	offset = putFloat32Slice(data, offset, buffers.FireflyScales)
	putFloat32Slice(data, offset, buffers.FireflyColors)

	return data
}

// DecodeFrame разбирает двоичный кадр сцены
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, ErrFrameTooShort
	}

	if data[0] != FrameVersion {
		return nil, fmt.Errorf("%w: %d", ErrFrameVersion, data[0])
	}

	heartCount := int(binary.LittleEndian.Uint32(data[4:]))
	fireflyCount := int(binary.LittleEndian.Uint32(data[8:]))

	expected := FrameHeaderSize + heartCount*heartFloats*4 + fireflyCount*fireflyFloats*4
	if len(data) < expected {
		return nil, fmt.Errorf("%w: получено %d байт, ожидалось %d", ErrFrameTooShort, len(data), expected)
	}

	frame := &Frame{
		Exploded:   data[1]&frameFlagExploded != 0,
		SimTime:    math.Float64frombits(binary.LittleEndian.Uint64(data[12:])),
		Generation: binary.LittleEndian.Uint64(data[20:]),
	}

	offset := FrameHeaderSize
	frame.HeartPositions, offset = readFloat32Slice(data, offset, heartCount*3)
	frame.HeartRotations, offset = readFloat32Slice(data, offset, heartCount*4)
	frame.HeartScales, offset = readFloat32Slice(data, offset, heartCount)
	frame.HeartColors, offset = readFloat32Slice(data, offset, heartCount*3)
	frame.FireflyPositions, offset = readFloat32Slice(data, offset, fireflyCount*3)
	frame.FireflyScales, offset = readFloat32Slice(data, offset, fireflyCount)
	frame.FireflyColors, _ = readFloat32Slice(data, offset, fireflyCount*3)

	return frame, nil
}

// putFloat32Slice записывает float32 значения в буфер и возвращает новый offset
func putFloat32Slice(data []byte, offset int, values []float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(data[offset:], math.Float32bits(v))
		offset += 4
	}
	return offset
}

// readFloat32Slice читает count float32 значений и возвращает срез и новый offset
func readFloat32Slice(data []byte, offset, count int) ([]float32, int) {
	values := make([]float32, count)
	for i := 0; i < count; i++ {
		values[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
	}
	return values, offset
}

// BroadcastFrame кодирует кадр один раз и рассылает всем клиентам.
// Двоичные кадры идут мимо имитации сети: она предназначена для
// управляющих JSON сообщений, а задержка кадров сделала бы отладку
// сглаживания бессмысленной.
func (s *WSServer) BroadcastFrame(buffers *scene.InstanceBuffers, simTime float64, exploded bool) {
	payload := EncodeFrame(buffers, simTime, exploded)

	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	if len(s.clients) == 0 {
		return
	}

	for _, session := range s.clients {
		if err := session.Conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
			log.Printf("[WSServer] Ошибка отправки кадра сессии %s: %v", session.ID, err)
		}
	}

	s.framesBroadcast.Add(1)
	s.bytesBroadcast.Add(uint64(len(payload) * len(s.clients)))
}

// sendSceneConfig отправляет конфигурацию сцены клиенту
func (s *WSServer) sendSceneConfig(conn *SafeWriter) {
	cfg := s.scene.Config()

	configMessage := map[string]interface{}{
		"type":          MessageTypeSceneConfig,
		"heart_count":   cfg.HeartCount,
		"firefly_count": cfg.FireflyCount,
		"mushroom":      s.mushroom,
		"ground":        s.ground,
		"server_time":   GetCurrentServerTime(),
	}

	// Используем имитацию сетевых условий
	if err := s.simulateNetworkConditions(conn, configMessage); err != nil {
		log.Printf("[Go] Ошибка отправки конфигурации сцены: %v", err)
	} else {
		log.Printf("[Go] Конфигурация сцены отправлена клиенту")
	}
}
