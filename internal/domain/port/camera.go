package port

import (
	"context"

	"palm-analyzer/internal/domain/entity"
)

// Camera источник видеопотока
type Camera interface {
	// Available сообщает, поддерживается ли захват видео в этой среде
	Available() bool

	// Open запрашивает доступ к камере с желаемыми параметрами
	Open(ctx context.Context, constraints entity.VideoConstraints) (entity.MediaStream, error)
}
