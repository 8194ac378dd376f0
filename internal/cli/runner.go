package cli

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	app "palm-analyzer/internal/application"
	"palm-analyzer/internal/domain/entity"
)

// sessionID у терминала одна сессия на запуск
const sessionID = "cli"

// Runner разовые сценарии для командной строки
type Runner struct {
	capture *app.CaptureService
	view    *TerminalView
}

func NewRunner(capture *app.CaptureService, view *TerminalView) *Runner {
	return &Runner{capture: capture, view: view}
}

// AnalyzeFile проверяет файл, отправляет его на анализ и при download сохраняет результат
func (r *Runner) AnalyzeFile(ctx context.Context, path string, download bool) error {
	defer r.close()

	file, err := fileFromPath(path)
	if err != nil {
		return err
	}

	if err := r.capture.SelectFile(ctx, sessionID, r.view, file); err != nil {
		return err
	}
	if err := r.capture.SubmitForm(ctx, sessionID, r.view, nil); err != nil {
		return err
	}

	return r.download(ctx, download)
}

// CaptureAndAnalyze снимает кадр с камеры и отправляет его на анализ
func (r *Runner) CaptureAndAnalyze(ctx context.Context, download bool) error {
	defer r.close()

	supported, err := r.capture.Open(ctx, sessionID, r.view)
	if err != nil {
		return err
	}
	if !supported {
		return app.ErrCameraUnavailable
	}

	if err := r.capture.StartCamera(ctx, sessionID, r.view); err != nil {
		return err
	}
	if err := r.capture.TakePicture(ctx, sessionID, r.view); err != nil {
		return err
	}
	if err := r.capture.SubmitPending(ctx, sessionID, r.view); err != nil {
		return err
	}

	return r.download(ctx, download)
}

func (r *Runner) download(ctx context.Context, enabled bool) error {
	result := r.view.LastResult()
	if !enabled || result == nil || result.DownloadAction == "" {
		return nil
	}
	return r.capture.Download(ctx, sessionID, r.view, result.DownloadAction)
}

func (r *Runner) close() {
	_ = r.capture.Close(context.Background(), sessionID)
}

// fileFromPath описывает файл на диске. MIME берётся по расширению, иначе по содержимому.
func fileFromPath(path string) (*entity.ImageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	mimeType := mime.TypeByExtension(filepath.Ext(path))
	if mimeType == "" {
		mimeType, err = sniff(path)
		if err != nil {
			return nil, err
		}
	}

	return &entity.ImageFile{
		Name: filepath.Base(path),
		MIME: mimeType,
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

func sniff(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
