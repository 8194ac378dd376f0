package entity

import (
	"image"
	"sync"
)

// maxBoundActions сколько последних действий "скачать" помнит сессия
const maxBoundActions = 16

// VideoConstraints желаемые параметры видеопотока
type VideoConstraints struct {
	Width      int
	Height     int
	FacingMode string
}

// DefaultVideoConstraints 640x480, фронтальная камера
var DefaultVideoConstraints = VideoConstraints{Width: 640, Height: 480, FacingMode: "user"}

// MediaStream активный видеопоток камеры
type MediaStream interface {
	// Frame возвращает текущий кадр в исходном разрешении
	Frame() (image.Image, error)

	// Close освобождает все дорожки потока
	Close() error
}

// CaptureSession эфемерное состояние одного пользователя (чата или вкладки браузера)
type CaptureSession struct {
	ID string

	mu       sync.Mutex
	stream   MediaStream
	pending  *PendingImage
	raster   image.Image
	selected *ImageFile
	actions  map[string]string
	order    []string
}

// NewCaptureSession создаёт пустую сессию
func NewCaptureSession(id string) *CaptureSession {
	return &CaptureSession{
		ID:      id,
		actions: make(map[string]string),
	}
}

// CameraActive сообщает, запущена ли камера
func (s *CaptureSession) CameraActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream != nil
}

// Stream возвращает активный поток или nil
func (s *CaptureSession) Stream() MediaStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream
}

// AttachStream запоминает поток. Возвращает false, если поток уже есть.
func (s *CaptureSession) AttachStream(stream MediaStream) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return false
	}
	s.stream = stream
	return true
}

// DetachStream забирает поток из сессии, закрывать его должен вызывающий
func (s *CaptureSession) DetachStream() MediaStream {
	s.mu.Lock()
	defer s.mu.Unlock()
	stream := s.stream
	s.stream = nil
	return stream
}

// Pending возвращает ожидающее изображение и его растр (растр может быть nil)
func (s *CaptureSession) Pending() (*PendingImage, image.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending, s.raster
}

// SetPending заменяет ожидающее изображение
func (s *CaptureSession) SetPending(img *PendingImage, raster image.Image) {
	s.mu.Lock()
	s.pending = img
	s.raster = raster
	s.mu.Unlock()
}

// Selected возвращает последний выбранный файл
func (s *CaptureSession) Selected() *ImageFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SetSelected запоминает выбранный файл (как input type=file)
func (s *CaptureSession) SetSelected(f *ImageFile) {
	s.mu.Lock()
	s.selected = f
	s.mu.Unlock()
}

// BindAction связывает токен действия с полезной нагрузкой.
// Хранятся только последние maxBoundActions токенов.
func (s *CaptureSession) BindAction(token, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.actions[token] = payload
	s.order = append(s.order, token)
	for len(s.order) > maxBoundActions {
		delete(s.actions, s.order[0])
		s.order = s.order[1:]
	}
}

// Action возвращает полезную нагрузку по токену
func (s *CaptureSession) Action(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.actions[token]
	return payload, ok
}
