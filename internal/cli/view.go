package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/domain/port"
	"palm-analyzer/internal/infrastructure/notify"
)

const (
	msgCameraOn   = "📷 카메라 켜짐"
	msgCameraOff  = "📷 카메라 꺼짐"
	msgAnalyzing  = "⏳ 분석 중..."
	msgSavedTo    = "저장됨: "
	labelSelected = "선택한 이미지"
)

// TerminalView выводит ход работы и результат в терминал.
// Скачанные изображения копируются в outDir.
type TerminalView struct {
	mu     sync.Mutex
	out    io.Writer
	outDir string
	banner *notify.Banner

	last  *entity.ResultView
	saved []string
}

// NewTerminalView создаёт отображение. outDir пустой: текущий каталог.
func NewTerminalView(out io.Writer, outDir string) *TerminalView {
	v := &TerminalView{out: out, outDir: outDir}
	v.banner = notify.NewBanner(&lineSink{view: v})
	return v
}

func (v *TerminalView) ShowCamera(active bool) {
	if active {
		v.println(mutedStyle.Render(msgCameraOn))
		return
	}
	v.println(mutedStyle.Render(msgCameraOff))
}

func (v *TerminalView) ShowPreview(img *entity.PendingImage) {
	v.println(fmt.Sprintf("%s %s (%s, %d bytes)",
		titleStyle.Render(labelSelected+":"), img.Name, img.MIME, len(img.Data)))
}

func (v *TerminalView) ShowLoading(show bool) {
	if show {
		v.println(mutedStyle.Render(msgAnalyzing))
	}
}

func (v *TerminalView) RenderResult(result *entity.ResultView) {
	v.mu.Lock()
	v.last = result
	v.mu.Unlock()

	v.println(RenderResult(result))
}

// Deliver копирует временный файл в outDir под именем для скачивания
func (v *TerminalView) Deliver(ctx context.Context, dl entity.Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := os.Open(dl.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	dir := v.outDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	target := filepath.Join(dir, dl.Filename)
	dst, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	v.mu.Lock()
	v.saved = append(v.saved, target)
	v.mu.Unlock()

	v.println(mutedStyle.Render(msgSavedTo + target))
	return nil
}

func (v *TerminalView) Notify(n entity.Notice) {
	_ = v.banner.Show(n)
}

// LastResult последний показанный результат
func (v *TerminalView) LastResult() *entity.ResultView {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.last
}

// Saved пути сохранённых файлов
func (v *TerminalView) Saved() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.saved...)
}

func (v *TerminalView) println(s string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintln(v.out, s)
}

// RenderResult панель результата для терминала
func RenderResult(result *entity.ResultView) string {
	if !result.Success {
		return failurePanelStyle.Render(titleStyle.Foreground(colorRed).Render(result.Title) + "\n" + result.Message)
	}

	lines := []string{titleStyle.Render(result.Title), ""}
	for _, stat := range result.Stats {
		lines = append(lines, fmt.Sprintf("%s  %s", stat.Label, statValueStyle.Render(fmt.Sprint(stat.Value))))
	}

	if len(result.Badges) > 0 {
		badges := make([]string, 0, len(result.Badges))
		for _, badge := range result.Badges {
			style := badgeStyle
			if strings.HasPrefix(badge.Class, "major") {
				style = badgeMajorStyle
			}
			badges = append(badges, style.Render(badge.Label))
		}
		lines = append(lines, "", result.BadgesTitle, lipgloss.JoinHorizontal(lipgloss.Top, badges...))
	}

	lines = append(lines, "")
	if result.ImageSize != "" {
		lines = append(lines, mutedStyle.Render(result.ImageSize))
	}
	lines = append(lines, mutedStyle.Render(result.ProcessingTime))

	return panelStyle.Render(strings.Join(lines, "\n"))
}

// lineSink печатает уведомление строкой. Напечатанное не стирается, поэтому Remove пустой.
type lineSink struct {
	view *TerminalView
}

func (s *lineSink) Display(n entity.Notice) (any, error) {
	style, ok := noticeStyles[n.CSSClass()]
	if !ok {
		style = noticeStyles["info"]
	}
	s.view.println(style.Render(n.Text))
	return nil, nil
}

func (s *lineSink) Remove(any) {}

// Проверка реализации интерфейса
var _ port.View = (*TerminalView)(nil)
