package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	app "palm-analyzer/internal/application"
	"palm-analyzer/internal/infrastructure/notify"
)

//go:embed templates/*.html
var templatesFS embed.FS

const (
	sessionCookie = "palm_session"

	// maxRequestSize предел тела запроса, как у исходного сервера (16 MiB)
	maxRequestSize = 16 << 20

	// DefaultIdleTTL через столько неактивная сессия закрывается вместе с камерой
	DefaultIdleTTL = 30 * time.Minute

	sweepInterval = time.Minute
)

// Server веб-интерфейс захвата и загрузки
type Server struct {
	capture *app.CaptureService
	log     *zap.Logger
	tmpl    *template.Template

	idleTTL time.Duration
	now     func() time.Time

	mu    sync.Mutex
	pages map[string]*pageState
}

// Option настраивает Server
type Option func(*Server)

// WithIdleTTL задаёт время простоя, после которого сессия закрывается
func WithIdleTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.idleTTL = ttl
		}
	}
}

// WithClock подменяет источник времени (для тестов)
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// NewServer создаёт сервер и разбирает шаблоны
func NewServer(capture *app.CaptureService, log *zap.Logger, opts ...Option) (*Server, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	s := &Server{
		capture: capture,
		log:     log,
		tmpl:    tmpl,
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		pages:   make(map[string]*pageState),
	}
	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Handler возвращает chi-роутер
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/", s.IndexHandler)
	r.Get("/health", HealthHandler)

	r.Route("/camera", func(r chi.Router) {
		r.Post("/toggle", s.ToggleCameraHandler)
		r.Post("/capture", s.TakePictureHandler)
		r.Get("/frame.jpg", s.FrameHandler)
	})

	r.Route("/files", func(r chi.Router) {
		r.Post("/select", s.SelectFileHandler)
		r.Post("/upload", s.UploadHandler)
	})

	r.Post("/pending/analyze", s.AnalyzePendingHandler)
	r.Get("/download/{token}", s.DownloadHandler)
	r.Post("/notice/dismiss", s.DismissHandler)

	return r
}

// Run слушает addr до отмены ctx, затем завершает сервер и сессии
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.sweep(ctx)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	s.log.Info("serving web ui", zap.String("addr", ln.Addr().String()))
	err = httpServer.Serve(ln)
	s.closeSessions()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// page возвращает состояние страницы для cookie-сессии, создавая её при необходимости
func (s *Server) page(w http.ResponseWriter, r *http.Request) (string, *pageState, bool) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		state, ok := s.pages[c.Value]
		if ok {
			state.lastSeen = s.now()
		}
		s.mu.Unlock()
		if ok {
			return c.Value, state, false
		}
	}

	id := uuid.NewString()
	state := &pageState{banner: notify.NewBanner(nil), lastSeen: s.now()}

	s.mu.Lock()
	s.pages[id] = state
	s.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id, state, true
}

// sweep периодически закрывает простаивающие сессии
func (s *Server) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.evictIdle(ctx); n > 0 {
				s.log.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}

// evictIdle закрывает сессии, к которым не обращались дольше idleTTL:
// останавливает камеру и освобождает ожидающее изображение и результат.
func (s *Server) evictIdle(ctx context.Context) int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	idle := make(map[string]*pageState)
	for id, state := range s.pages {
		if state.lastSeen.Before(cutoff) {
			idle[id] = state
			delete(s.pages, id)
		}
	}
	s.mu.Unlock()

	for id, state := range idle {
		state.banner.Dismiss()
		if err := s.capture.Close(ctx, id); err != nil {
			s.log.Warn("close idle session", zap.String("session", id), zap.Error(err))
		}
	}

	return len(idle)
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	ids := make([]string, 0, len(s.pages))
	for id := range s.pages {
		ids = append(ids, id)
	}
	s.pages = make(map[string]*pageState)
	s.mu.Unlock()

	for _, id := range ids {
		if err := s.capture.Close(context.Background(), id); err != nil {
			s.log.Warn("close session", zap.String("session", id), zap.Error(err))
		}
	}
}
