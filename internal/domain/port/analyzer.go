package port

import (
	"context"

	"palm-analyzer/internal/domain/entity"
)

// Analyzer внешний сервис анализа ладони
type Analyzer interface {
	// Analyze отправляет изображение и возвращает разобранный ответ
	Analyze(ctx context.Context, upload entity.Upload) (*entity.AnalysisResult, error)
}
