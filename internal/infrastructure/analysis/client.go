package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/domain/port"
)

// AnalyzePath путь эндпоинта анализа
const AnalyzePath = "/analyze"

// maxResponseSize ограничение на тело ответа (обработанное изображение в base64)
const maxResponseSize = 64 << 20

// StatusError ответ сервиса с кодом не 2xx
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("서버 오류: %d", e.Code)
}

// Client HTTP-клиент сервиса анализа ладони
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient создаёт клиент для сервиса по адресу baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/") + AnalyzePath,
		http:     &http.Client{Timeout: timeout},
	}
}

// Analyze отправляет multipart-запрос с частью "image" и разбирает JSON-ответ
func (c *Client) Analyze(ctx context.Context, upload entity.Upload) (*entity.AnalysisResult, error) {
	body, contentType, err := encodeUpload(upload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var result entity.AnalysisResult
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &result, nil
}

// encodeUpload собирает multipart/form-data тело
func encodeUpload(upload entity.Upload) (*bytes.Buffer, string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	field := upload.Field
	if field == "" {
		field = "image"
	}
	filename := upload.Filename
	if filename == "" {
		filename = "blob"
	}
	mime := upload.MIME
	if mime == "" {
		mime = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(field), escapeQuotes(filename)))
	header.Set("Content-Type", mime)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("create part: %w", err)
	}
	if _, err := part.Write(upload.Data); err != nil {
		return nil, "", fmt.Errorf("write part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}

	return &body, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// Проверка реализации интерфейса
var _ port.Analyzer = (*Client)(nil)
