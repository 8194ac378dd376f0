package web

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	app "palm-analyzer/internal/application"
	"palm-analyzer/internal/domain/entity"
)

const msgRequestTooLarge = "파일 크기가 너무 큽니다. 16MB 이하의 파일을 업로드해주세요."

// pageData данные шаблона index.html
type pageData struct {
	CameraSupported bool
	CameraActive    bool
	CameraLabel     string
	Loading         bool
	Notice          *entity.Notice
	PreviewURL      template.URL
	Result          *entity.ResultView
	ResultImage     template.URL
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"message": "Palm Analyzer is running",
	})
}

func (s *Server) IndexHandler(w http.ResponseWriter, r *http.Request) {
	_, state, _ := s.session(w, r)

	state.mu.Lock()
	data := pageData{
		CameraSupported: state.cameraSupported,
		CameraActive:    state.cameraActive,
		CameraLabel:     app.CameraStartLabel,
		Loading:         state.loading,
		Result:          state.result,
	}
	if state.cameraActive {
		data.CameraLabel = app.CameraStopLabel
	}
	if state.preview != nil {
		data.PreviewURL = template.URL(state.preview.DataURL())
	}
	if state.result != nil && state.result.Success {
		data.ResultImage = template.URL(state.result.ImageDataURL())
	}
	state.mu.Unlock()

	if notice, ok := state.banner.Current(); ok {
		data.Notice = &notice
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		s.log.Error("render index", zap.Error(err))
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
	}
}

func (s *Server) ToggleCameraHandler(w http.ResponseWriter, r *http.Request) {
	id, _, view := s.session(w, r)

	var err error
	if s.capture.CameraActive(r.Context(), id) {
		err = s.capture.StopCamera(r.Context(), id, view)
	} else {
		err = s.capture.StartCamera(r.Context(), id, view)
	}
	s.finish(w, r, "toggle camera", err)
}

func (s *Server) TakePictureHandler(w http.ResponseWriter, r *http.Request) {
	id, _, view := s.session(w, r)
	s.finish(w, r, "take picture", s.capture.TakePicture(r.Context(), id, view))
}

// FrameHandler живое превью: текущий кадр камеры
func (s *Server) FrameHandler(w http.ResponseWriter, r *http.Request) {
	id, _, _ := s.session(w, r)

	frame, err := s.capture.Preview(r.Context(), id)
	if errors.Is(err, app.ErrCameraInactive) {
		http.Error(w, "camera is not active", http.StatusConflict)
		return
	}
	if err != nil {
		s.log.Warn("preview frame", zap.Error(err))
		http.Error(w, "failed to read frame", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(frame)
}

// SelectFileHandler выбор файла или drag-and-drop в форму
func (s *Server) SelectFileHandler(w http.ResponseWriter, r *http.Request) {
	id, _, view := s.session(w, r)

	file, ok := s.formFile(w, r, view)
	if !ok {
		s.redirect(w, r)
		return
	}
	s.finish(w, r, "select file", s.capture.SelectFile(r.Context(), id, view, file))
}

// UploadHandler отправка формы загрузки на анализ
func (s *Server) UploadHandler(w http.ResponseWriter, r *http.Request) {
	id, _, view := s.session(w, r)

	file, ok := s.formFile(w, r, view)
	if !ok {
		s.redirect(w, r)
		return
	}
	s.finish(w, r, "upload", s.capture.SubmitForm(r.Context(), id, view, file))
}

func (s *Server) AnalyzePendingHandler(w http.ResponseWriter, r *http.Request) {
	id, _, view := s.session(w, r)
	s.finish(w, r, "analyze pending", s.capture.SubmitPending(r.Context(), id, view))
}

func (s *Server) DownloadHandler(w http.ResponseWriter, r *http.Request) {
	id, _, view := s.session(w, r)

	if err := s.capture.Download(r.Context(), id, view, chi.URLParam(r, "token")); err != nil {
		s.finish(w, r, "download", err)
	}
}

func (s *Server) DismissHandler(w http.ResponseWriter, r *http.Request) {
	_, state, _ := s.session(w, r)
	state.banner.Dismiss()
	s.redirect(w, r)
}

// session возвращает сессию, при первом обращении проверяя поддержку камеры
func (s *Server) session(w http.ResponseWriter, r *http.Request) (string, *pageState, *pageView) {
	id, state, created := s.page(w, r)
	view := &pageView{state: state, w: w, r: r}

	if created {
		supported, err := s.capture.Open(r.Context(), id, view)
		if err != nil {
			s.log.Warn("open session", zap.Error(err))
		}
		state.mu.Lock()
		state.cameraSupported = supported
		state.mu.Unlock()
	}

	return id, state, view
}

// formFile достаёт часть "image". Отсутствие файла не ошибка: вернётся nil.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, view *pageView) (*entity.ImageFile, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)

	if err := r.ParseMultipartForm(maxRequestSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			view.Notify(entity.Notice{Kind: entity.NoticeError, Text: msgRequestTooLarge})
			return nil, false
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			s.log.Warn("parse multipart form", zap.Error(err))
			return nil, false
		}
	}

	_, header, err := r.FormFile("image")
	if err != nil {
		if !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
			s.log.Warn("form file", zap.Error(err))
		}
		return nil, true
	}

	return fileFromHeader(header), true
}

func fileFromHeader(header *multipart.FileHeader) *entity.ImageFile {
	return &entity.ImageFile{
		Name: header.Filename,
		MIME: header.Header.Get("Content-Type"),
		Size: header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

// finish логирует ошибку (пользователь уже видит уведомление) и возвращает на главную
func (s *Server) finish(w http.ResponseWriter, r *http.Request, op string, err error) {
	if err != nil {
		s.log.Info("operation finished with error", zap.String("op", op), zap.Error(err))
	}
	s.redirect(w, r)
}

func (s *Server) redirect(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
