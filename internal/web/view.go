package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/domain/port"
	"palm-analyzer/internal/infrastructure/notify"
)

// pageState то, что видно на странице одной сессии браузера
type pageState struct {
	mu              sync.Mutex
	cameraSupported bool
	cameraActive    bool
	preview         *entity.PendingImage
	result          *entity.ResultView
	loading         bool
	banner          *notify.Banner

	// lastSeen последнее обращение, под Server.mu
	lastSeen time.Time
}

// pageView записывает действия контроллера в состояние страницы.
// Deliver пишет файл прямо в текущий ответ.
type pageView struct {
	state *pageState
	w     http.ResponseWriter
	r     *http.Request
}

func (v *pageView) ShowCamera(active bool) {
	v.state.mu.Lock()
	v.state.cameraActive = active
	v.state.mu.Unlock()
}

func (v *pageView) ShowPreview(img *entity.PendingImage) {
	v.state.mu.Lock()
	v.state.preview = img
	v.state.mu.Unlock()
}

// ShowLoading только запоминает флаг; пока он стоит, шаблон рисует индикатор вместо панели результата
func (v *pageView) ShowLoading(show bool) {
	v.state.mu.Lock()
	v.state.loading = show
	v.state.mu.Unlock()
}

func (v *pageView) RenderResult(result *entity.ResultView) {
	v.state.mu.Lock()
	v.state.result = result
	v.state.mu.Unlock()
}

func (v *pageView) Deliver(ctx context.Context, dl entity.Download) error {
	if v.w == nil {
		return fmt.Errorf("no response to deliver %s", dl.Filename)
	}

	f, err := os.Open(dl.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	v.w.Header().Set("Content-Type", dl.MIME)
	v.w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, dl.Filename))
	http.ServeContent(v.w, v.r, dl.Filename, info.ModTime(), f)
	return nil
}

func (v *pageView) Notify(n entity.Notice) {
	_ = v.state.banner.Show(n)
}

// Проверка реализации интерфейса
var _ port.View = (*pageView)(nil)
