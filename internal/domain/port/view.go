package port

import (
	"context"

	"palm-analyzer/internal/domain/entity"
)

// View то, что контроллер показывает пользователю.
// Каждый фронтенд (бот, веб, терминал) реализует его по-своему.
type View interface {
	// ShowCamera включает или выключает живое превью и кнопку "снять"
	ShowCamera(active bool)

	// ShowPreview показывает ожидающее изображение
	ShowPreview(img *entity.PendingImage)

	// ShowLoading переключает индикатор загрузки и панель результата
	ShowLoading(show bool)

	// RenderResult отображает модель результата
	RenderResult(result *entity.ResultView)

	// Deliver отдаёт пользователю временный файл
	Deliver(ctx context.Context, dl entity.Download) error

	// Notify показывает всплывающее уведомление
	Notify(n entity.Notice)
}
