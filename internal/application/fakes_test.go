package app

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"sync"

	"palm-analyzer/internal/domain/entity"
)

// recordingView запоминает всё, что контроллер показал пользователю
type recordingView struct {
	mu         sync.Mutex
	camera     []bool
	previews   []*entity.PendingImage
	loading    []bool
	results    []*entity.ResultView
	notices    []entity.Notice
	delivered  []entity.Download
	deliveredB [][]byte
	deliverErr error
}

func (v *recordingView) ShowCamera(active bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.camera = append(v.camera, active)
}

func (v *recordingView) ShowPreview(img *entity.PendingImage) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.previews = append(v.previews, img)
}

func (v *recordingView) ShowLoading(show bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.loading = append(v.loading, show)
}

func (v *recordingView) RenderResult(result *entity.ResultView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.results = append(v.results, result)
}

func (v *recordingView) Deliver(ctx context.Context, dl entity.Download) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.deliverErr != nil {
		return v.deliverErr
	}
	data, err := os.ReadFile(dl.Path)
	if err != nil {
		return err
	}
	v.delivered = append(v.delivered, dl)
	v.deliveredB = append(v.deliveredB, data)
	return nil
}

func (v *recordingView) Notify(n entity.Notice) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.notices = append(v.notices, n)
}

func (v *recordingView) lastNotice() entity.Notice {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.notices) == 0 {
		return entity.Notice{}
	}
	return v.notices[len(v.notices)-1]
}

func (v *recordingView) hiddenCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	n := 0
	for _, show := range v.loading {
		if !show {
			n++
		}
	}
	return n
}

// fakeCamera считает открытые потоки
type fakeCamera struct {
	mu        sync.Mutex
	available bool
	openErr   error
	frame     image.Image
	open      int
	opened    int
}

func newFakeCamera() *fakeCamera {
	return &fakeCamera{available: true, frame: testImage(64, 48)}
}

func (c *fakeCamera) Available() bool { return c.available }

func (c *fakeCamera) Open(ctx context.Context, constraints entity.VideoConstraints) (entity.MediaStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return nil, c.openErr
	}
	c.open++
	c.opened++
	return &fakeStream{camera: c}, nil
}

func (c *fakeCamera) openTracks() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

type fakeStream struct {
	camera *fakeCamera
	closed bool
}

func (s *fakeStream) Frame() (image.Image, error) {
	if s.closed {
		return nil, errors.New("closed")
	}
	return s.camera.frame, nil
}

func (s *fakeStream) Close() error {
	s.camera.mu.Lock()
	defer s.camera.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.camera.open--
	}
	return nil
}

// fakeAnalyzer возвращает заранее заданный ответ
type fakeAnalyzer struct {
	mu      sync.Mutex
	result  *entity.AnalysisResult
	err     error
	uploads []entity.Upload
}

func (a *fakeAnalyzer) Analyze(ctx context.Context, upload entity.Upload) (*entity.AnalysisResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.uploads = append(a.uploads, upload)
	return a.result, a.err
}

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(w, h int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, testImage(w, h))
	return buf.Bytes()
}

func memFile(name, mime string, size int64, data []byte) *entity.ImageFile {
	return &entity.ImageFile{
		Name: name,
		MIME: mime,
		Size: size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
