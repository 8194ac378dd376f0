package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/domain/port"
)

// CaptureService управляет захватом и загрузкой изображения,
// отправкой его на анализ и отображением результата.
type CaptureService struct {
	sessions port.SessionRepository
	camera   port.Camera
	analyzer port.Analyzer
	log      *zap.Logger

	now      func() time.Time
	newToken func() string
	tempDir  string
}

// Option настраивает CaptureService
type Option func(*CaptureService)

// WithClock подменяет источник времени (имя файла для скачивания)
func WithClock(now func() time.Time) Option {
	return func(s *CaptureService) { s.now = now }
}

// WithTempDir задаёт каталог для временных файлов скачивания
func WithTempDir(dir string) Option {
	return func(s *CaptureService) { s.tempDir = dir }
}

// WithTokenGenerator подменяет генератор токенов действий
func WithTokenGenerator(gen func() string) Option {
	return func(s *CaptureService) { s.newToken = gen }
}

// NewCaptureService создаёт сервис. camera может быть nil: тогда доступна только загрузка файлов.
func NewCaptureService(sessions port.SessionRepository, camera port.Camera, analyzer port.Analyzer, log *zap.Logger, opts ...Option) *CaptureService {
	if log == nil {
		log = zap.NewNop()
	}

	s := &CaptureService{
		sessions: sessions,
		camera:   camera,
		analyzer: analyzer,
		log:      log,
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// CameraSupported сообщает, есть ли в среде захват видео
func (s *CaptureService) CameraSupported() bool {
	return s.camera != nil && s.camera.Available()
}

// Open начинает сессию. Без камеры показывает уведомление и возвращает false (режим только загрузки).
func (s *CaptureService) Open(ctx context.Context, sessionID string, view port.View) (bool, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return false, err
	}

	if s.CameraSupported() {
		return true, nil
	}

	view.Notify(entity.Notice{Kind: entity.NoticeInfo, Text: msgCameraUnsupported})
	return false, nil
}

// Close завершает сессию и освобождает камеру
func (s *CaptureService) Close(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// CameraActive сообщает, запущена ли камера в сессии
func (s *CaptureService) CameraActive(ctx context.Context, sessionID string) bool {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return false
	}
	return session.CameraActive()
}

// StartCamera запрашивает доступ к камере и включает превью.
// Повторный запуск при активной камере ничего не делает.
func (s *CaptureService) StartCamera(ctx context.Context, sessionID string, view port.View) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.CameraActive() {
		return nil
	}

	if !s.CameraSupported() {
		return s.fail(view, ErrCameraUnavailable, msgCameraDenied)
	}

	stream, err := s.camera.Open(ctx, entity.DefaultVideoConstraints)
	if err != nil {
		return s.fail(view, fmt.Errorf("%w: %v", ErrCameraUnavailable, err), msgCameraDenied)
	}

	// Параллельный запуск успел раньше: лишний поток сразу закрываем
	if !session.AttachStream(stream) {
		if err := stream.Close(); err != nil {
			s.log.Warn("close duplicate stream", zap.String("session", sessionID), zap.Error(err))
		}
		return nil
	}

	s.log.Info("camera started", zap.String("session", sessionID))
	view.ShowCamera(true)
	view.Notify(entity.Notice{Kind: entity.NoticeSuccess, Text: msgCameraStarted})

	return nil
}

// StopCamera освобождает все дорожки и выключает превью. Без активной камеры ничего не делает.
func (s *CaptureService) StopCamera(ctx context.Context, sessionID string, view port.View) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	stream := session.DetachStream()
	if stream == nil {
		return nil
	}

	if err := stream.Close(); err != nil {
		s.log.Warn("close stream", zap.String("session", sessionID), zap.Error(err))
	}

	s.log.Info("camera stopped", zap.String("session", sessionID))
	view.ShowCamera(false)

	return nil
}

// TakePicture снимает текущий кадр, делает его ожидающим изображением и останавливает камеру
func (s *CaptureService) TakePicture(ctx context.Context, sessionID string, view port.View) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	stream := session.Stream()
	if stream == nil {
		return s.fail(view, ErrCameraInactive, msgCameraInactive)
	}

	frame, err := stream.Frame()
	if err != nil {
		return s.fail(view, fmt.Errorf("read frame: %w", err), msgCaptureError)
	}

	raster := copyFrame(frame)
	data, err := encodeJPEG(raster)
	if err != nil {
		return s.fail(view, fmt.Errorf("encode frame: %w", err), msgCaptureError)
	}

	pending := &entity.PendingImage{
		Name:   entity.CapturedFilename,
		MIME:   "image/jpeg",
		Data:   data,
		Source: entity.SourceCamera,
	}
	session.SetPending(pending, raster)
	view.ShowPreview(pending)

	if err := s.StopCamera(ctx, sessionID, view); err != nil {
		return err
	}

	view.Notify(entity.Notice{Kind: entity.NoticeSuccess, Text: msgPhotoTaken})
	return nil
}

// Preview возвращает текущий кадр камеры в JPEG для живого превью
func (s *CaptureService) Preview(ctx context.Context, sessionID string) ([]byte, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	stream := session.Stream()
	if stream == nil {
		return nil, ErrCameraInactive
	}

	frame, err := stream.Frame()
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}

	return encodeJPEG(frame)
}

// SelectFile принимает файл из выбора или drag-and-drop, проверяет его и показывает превью.
// Отклонённый файл не меняет ожидающее изображение.
func (s *CaptureService) SelectFile(ctx context.Context, sessionID string, view port.View, file *entity.ImageFile) error {
	if file == nil {
		return nil
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	session.SetSelected(file)

	if !file.IsImage() {
		return s.fail(view, fmt.Errorf("%w: %q", ErrNotImage, file.MIME), msgNotImage)
	}
	if file.Size > entity.MaxUploadSize {
		return s.fail(view, fmt.Errorf("%w: %d bytes", ErrFileTooLarge, file.Size), msgFileTooLarge)
	}

	data, err := readFile(file, entity.MaxUploadSize+1)
	if err != nil {
		return s.fail(view, err, msgReadError)
	}
	// Заявленный размер мог не совпасть с фактическим
	if len(data) > entity.MaxUploadSize {
		return s.fail(view, fmt.Errorf("%w: more than %d bytes read", ErrFileTooLarge, entity.MaxUploadSize), msgFileTooLarge)
	}

	raster, err := decodeRaster(data)
	if err != nil {
		s.log.Debug("selected file has no raster", zap.String("name", file.Name), zap.Error(err))
	}

	pending := &entity.PendingImage{
		Name:   file.Name,
		MIME:   file.MIME,
		Data:   data,
		Source: entity.SourceFile,
	}
	session.SetPending(pending, raster)
	view.ShowPreview(pending)

	return nil
}

// SubmitForm отправляет файл из формы. Если файл не передан, берётся последний выбранный.
func (s *CaptureService) SubmitForm(ctx context.Context, sessionID string, view port.View, file *entity.ImageFile) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if file == nil {
		file = session.Selected()
	}
	if file == nil {
		return s.fail(view, ErrNoFile, msgNoFile)
	}

	data, err := readFile(file, -1)
	if err != nil {
		return s.fail(view, err, msgReadError)
	}

	return s.Send(ctx, sessionID, view, entity.NewImageUpload(file.Name, file.MIME, data))
}

// SubmitPending перекодирует растр ожидающего изображения в JPEG и отправляет его
func (s *CaptureService) SubmitPending(ctx context.Context, sessionID string, view port.View) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	pending, raster := session.Pending()
	if pending == nil {
		return s.fail(view, ErrNoPendingImage, msgNoPendingImage)
	}

	upload := entity.NewImageUpload(pending.Name, pending.MIME, pending.Data)
	if raster != nil {
		data, err := encodeJPEG(raster)
		if err != nil {
			return s.fail(view, fmt.Errorf("encode raster: %w", err), msgAnalysisError+err.Error())
		}
		upload = entity.NewImageUpload(entity.CapturedFilename, "image/jpeg", data)
	}

	return s.Send(ctx, sessionID, view, upload)
}

// Send отправляет изображение на анализ и показывает результат.
// Индикатор загрузки скрывается ровно один раз при любом исходе.
func (s *CaptureService) Send(ctx context.Context, sessionID string, view port.View, upload entity.Upload) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	view.ShowLoading(true)
	defer view.ShowLoading(false)

	started := s.now()
	result, err := s.analyzer.Analyze(ctx, upload)
	if err != nil {
		return s.fail(view, err, msgAnalysisError+err.Error())
	}

	s.log.Info("analysis finished",
		zap.String("session", sessionID),
		zap.Bool("success", result.Success),
		zap.Int("bytes", len(upload.Data)),
		zap.Duration("elapsed", s.now().Sub(started)),
	)

	view.RenderResult(BuildResultView(result, s.binder(session)))

	if !result.Success {
		return fmt.Errorf("%w: %s", ErrAnalysisFailed, result.Message)
	}
	return nil
}

// Download отдаёт обработанное изображение, связанное с токеном действия
func (s *CaptureService) Download(ctx context.Context, sessionID string, view port.View, token string) error {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	payload, ok := session.Action(token)
	if !ok {
		return s.fail(view, fmt.Errorf("%w: unknown action %q", ErrDownload, token), msgDownloadError)
	}

	dl, cleanup, err := prepareDownload(s.tempDir, payload, s.now())
	if err != nil {
		return s.fail(view, fmt.Errorf("%w: %v", ErrDownload, err), msgDownloadError)
	}
	defer cleanup()

	if err := view.Deliver(ctx, dl); err != nil {
		return s.fail(view, fmt.Errorf("%w: deliver: %v", ErrDownload, err), msgDownloadError)
	}

	view.Notify(entity.Notice{Kind: entity.NoticeSuccess, Text: msgDownloaded})
	return nil
}

// binder связывает полезную нагрузку с новым токеном в сессии
func (s *CaptureService) binder(session *entity.CaptureSession) Binder {
	return func(payload string) string {
		token := s.newToken()
		session.BindAction(token, payload)
		return token
	}
}

// fail логирует ошибку, показывает уведомление и возвращает её
func (s *CaptureService) fail(view port.View, err error, text string) error {
	s.log.Warn("capture operation failed", zap.Error(err))
	view.Notify(entity.Notice{Kind: entity.NoticeError, Text: text})
	return err
}

// readFile читает файл целиком. limit < 0 означает без ограничения.
func readFile(file *entity.ImageFile, limit int64) ([]byte, error) {
	if file.Open == nil {
		return nil, errors.New("file has no content")
	}

	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit >= 0 {
		r = io.LimitReader(rc, limit)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}
