package web

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	app "palm-analyzer/internal/application"
	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/infrastructure/analysis"
	"palm-analyzer/internal/infrastructure/storage"
)

func newTestServer(t *testing.T, analyzer http.HandlerFunc) (*httptest.Server, *http.Client) {
	t.Helper()

	backend := httptest.NewServer(analyzer)
	t.Cleanup(backend.Close)

	capture := app.NewCaptureService(
		storage.NewMemorySessionRepository(),
		nil,
		analysis.NewClient(backend.URL, time.Second),
		zap.NewNop(),
		app.WithTempDir(t.TempDir()),
	)

	srv, err := NewServer(capture, zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return ts, &http.Client{Jar: jar}
}

func multipartBody(t *testing.T, filename, mime string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", mime)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return &body, writer.FormDataContentType()
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func successHandler(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":         true,
		"processed_image": base64.StdEncoding.EncodeToString([]byte("processed")),
		"total_lines":     12,
		"major_lines":     3,
		"medium_lines":    5,
		"minor_lines":     4,
		"line_types":      []string{"MAJOR_LINE"},
		"processing_time": 1.2,
	})
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthHandler(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"healthy","message":"Palm Analyzer is running"}`, rec.Body.String())
}

func TestIndex_UploadOnlyWithoutCamera(t *testing.T) {
	ts, client := newTestServer(t, successHandler)

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, body, "이 환경은 카메라 기능을 지원하지 않습니다.")
	require.NotContains(t, body, "/camera/toggle")
}

func TestUpload_RendersResultAndDownloads(t *testing.T) {
	ts, client := newTestServer(t, successHandler)

	body, contentType := multipartBody(t, "palm.png", "image/png", []byte("png-bytes"))
	resp, err := client.Post(ts.URL+"/files/upload", contentType, body)
	require.NoError(t, err)
	page := readBody(t, resp)

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, page, "분석 완료")
	require.Contains(t, page, `<div class="stats-number">12</div>`)
	require.Contains(t, page, `<div class="stats-number">3</div>`)
	require.Contains(t, page, `<div class="stats-number">5</div>`)
	require.Contains(t, page, `<div class="stats-number">4</div>`)
	require.Contains(t, page, `<span class="line-type major-line">MAJOR_LINE</span>`)
	require.Contains(t, page, "처리 시간: 1.2초")

	link := regexp.MustCompile(`href="(/download/[^"]+)"`).FindStringSubmatch(page)
	require.Len(t, link, 2)

	dl, err := client.Get(ts.URL + link[1])
	require.NoError(t, err)
	data := readBody(t, dl)
	require.Equal(t, http.StatusOK, dl.StatusCode)
	require.Equal(t, "processed", data)
	require.Regexp(t, `attachment; filename="palm_analysis_\d+\.jpg"`, dl.Header.Get("Content-Disposition"))
}

func TestUpload_Status500ShowsNotice(t *testing.T) {
	ts, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	body, contentType := multipartBody(t, "palm.png", "image/png", []byte("png-bytes"))
	resp, err := client.Post(ts.URL+"/files/upload", contentType, body)
	require.NoError(t, err)
	page := readBody(t, resp)

	require.Contains(t, page, "분석 중 오류가 발생했습니다: 서버 오류: 500")
	require.NotContains(t, page, "spinner-border")
}

func TestUpload_WithoutFile(t *testing.T) {
	ts, client := newTestServer(t, successHandler)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.Close())

	resp, err := client.Post(ts.URL+"/files/upload", writer.FormDataContentType(), &body)
	require.NoError(t, err)
	require.Contains(t, readBody(t, resp), "업로드할 이미지를 선택해주세요.")
}

func TestSelect_RejectsNonImage(t *testing.T) {
	ts, client := newTestServer(t, successHandler)

	body, contentType := multipartBody(t, "notes.txt", "text/plain", []byte("hello"))
	resp, err := client.Post(ts.URL+"/files/select", contentType, body)
	require.NoError(t, err)
	page := readBody(t, resp)

	require.Contains(t, page, "이미지 파일만 업로드 가능합니다.")
	require.NotContains(t, page, "선택한 이미지")
}

func TestSelect_ShowsPreviewAndDismiss(t *testing.T) {
	ts, client := newTestServer(t, successHandler)

	body, contentType := multipartBody(t, "palm.gif", "image/gif", []byte("GIF89a"))
	resp, err := client.Post(ts.URL+"/files/select", contentType, body)
	require.NoError(t, err)
	page := readBody(t, resp)
	require.Contains(t, page, `src="data:image/gif;base64,`)

	resp, err = client.Post(ts.URL+"/pending/analyze", "", nil)
	require.NoError(t, err)
	require.Contains(t, readBody(t, resp), "분석 완료")
}

func TestAnalyzePending_WithoutImage(t *testing.T) {
	ts, client := newTestServer(t, successHandler)

	resp, err := client.Post(ts.URL+"/pending/analyze", "", nil)
	require.NoError(t, err)
	page := readBody(t, resp)
	require.Contains(t, page, "분석할 이미지가 없습니다.")

	resp, err = client.Post(ts.URL+"/notice/dismiss", "", nil)
	require.NoError(t, err)
	require.NotContains(t, readBody(t, resp), "분석할 이미지가 없습니다.")
}

func TestFrame_CameraInactive(t *testing.T) {
	ts, client := newTestServer(t, successHandler)

	resp, err := client.Get(ts.URL + "/camera/frame.jpg")
	require.NoError(t, err)
	_ = readBody(t, resp)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestIndexTemplate_LoadingHidesResult(t *testing.T) {
	srv, err := NewServer(nil, zap.NewNop())
	require.NoError(t, err)

	data := pageData{
		Loading: true,
		Result:  &entity.ResultView{Success: true, Title: "분석 완료"},
	}

	var out bytes.Buffer
	require.NoError(t, srv.tmpl.ExecuteTemplate(&out, "index.html", data))
	require.Contains(t, out.String(), "spinner-border")
	require.NotContains(t, out.String(), "분석 완료")

	out.Reset()
	data.Loading = false
	require.NoError(t, srv.tmpl.ExecuteTemplate(&out, "index.html", data))
	require.NotContains(t, out.String(), "spinner-border")
	require.Contains(t, out.String(), "분석 완료")
}
