//go:build !gocv
// +build !gocv

package camera

import (
	"context"
	"errors"

	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/domain/port"
)

// GoCVCamera камера-заглушка (без OpenCV)
type GoCVCamera struct {
	Device int
}

// NewGoCVCamera создаёт камеру-заглушку
func NewGoCVCamera(device int) *GoCVCamera {
	return &GoCVCamera{Device: device}
}

// Available всегда false, если сборка без тега gocv
func (c *GoCVCamera) Available() bool {
	return false
}

// Open возвращает ошибку, если сборка без тега gocv
func (c *GoCVCamera) Open(ctx context.Context, constraints entity.VideoConstraints) (entity.MediaStream, error) {
	_ = ctx
	_ = constraints
	return nil, errors.New("gocv build tag is not enabled")
}

// Проверка реализации интерфейса
var _ port.Camera = (*GoCVCamera)(nil)
