package port

import (
	"context"

	"palm-analyzer/internal/domain/entity"
)

// SessionRepository интерфейс хранилища сессий захвата
type SessionRepository interface {
	// Get возвращает сессию по ID, создаёт новую если не найдена
	Get(ctx context.Context, id string) (*entity.CaptureSession, error)

	// Delete удаляет сессию
	Delete(ctx context.Context, id string) error
}
