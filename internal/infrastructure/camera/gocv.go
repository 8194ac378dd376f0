//go:build gocv
// +build gocv

package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"

	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/domain/port"
)

// GoCVCamera камера через OpenCV VideoCapture
type GoCVCamera struct {
	Device int

	once      sync.Once
	available bool
}

// NewGoCVCamera создаёт камеру для устройства с указанным индексом
func NewGoCVCamera(device int) *GoCVCamera {
	return &GoCVCamera{Device: device}
}

// Available пробно открывает устройство один раз и запоминает результат
func (c *GoCVCamera) Available() bool {
	c.once.Do(func() {
		capture, err := gocv.OpenVideoCapture(c.Device)
		if err != nil {
			return
		}
		c.available = capture.IsOpened()
		capture.Close()
	})
	return c.available
}

// Open открывает устройство и выставляет желаемое разрешение
func (c *GoCVCamera) Open(ctx context.Context, constraints entity.VideoConstraints) (entity.MediaStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	capture, err := gocv.OpenVideoCapture(c.Device)
	if err != nil {
		return nil, fmt.Errorf("open video capture %d: %w", c.Device, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return nil, fmt.Errorf("video capture %d is not opened", c.Device)
	}

	if constraints.Width > 0 {
		capture.Set(gocv.VideoCaptureFrameWidth, float64(constraints.Width))
	}
	if constraints.Height > 0 {
		capture.Set(gocv.VideoCaptureFrameHeight, float64(constraints.Height))
	}

	return &gocvStream{capture: capture, frame: gocv.NewMat()}, nil
}

// gocvStream открытый поток VideoCapture
type gocvStream struct {
	mu      sync.Mutex
	capture *gocv.VideoCapture
	frame   gocv.Mat
	closed  bool
}

// Frame читает кадр в исходном разрешении устройства
func (s *gocvStream) Frame() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("stream is closed")
	}
	if ok := s.capture.Read(&s.frame); !ok || s.frame.Empty() {
		return nil, errors.New("failed to read frame")
	}

	return s.frame.ToImage()
}

// Close освобождает буфер кадра и устройство
func (s *gocvStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.frame.Close()
	return s.capture.Close()
}

// Проверка реализации интерфейса
var _ port.Camera = (*GoCVCamera)(nil)
