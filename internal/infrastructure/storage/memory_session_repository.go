package storage

import (
	"context"
	"sync"

	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий захвата
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*entity.CaptureSession
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]*entity.CaptureSession),
	}
}

// Get возвращает сессию по ID, создаёт новую если не найдена
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*entity.CaptureSession, error) {
	r.mu.RLock()
	session, exists := r.sessions[id]
	r.mu.RUnlock()

	if exists {
		return session, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Другая горутина могла успеть создать сессию
	if session, exists := r.sessions[id]; exists {
		return session, nil
	}

	session = entity.NewCaptureSession(id)
	r.sessions[id] = session

	return session, nil
}

// Delete удаляет сессию и освобождает камеру, если она была запущена
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	session, exists := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !exists {
		return nil
	}
	if stream := session.DetachStream(); stream != nil {
		return stream.Close()
	}

	return nil
}

// Len количество активных сессий
func (r *MemorySessionRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Проверка реализации интерфейса
var _ port.SessionRepository = (*MemorySessionRepository)(nil)
