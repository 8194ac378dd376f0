package entity

import (
	"encoding/base64"
	"io"
	"strings"
)

// MaxUploadSize предел размера выбранного файла (5 MiB)
const MaxUploadSize = 5 * 1024 * 1024

// CapturedFilename имя файла для снимка с камеры
const CapturedFilename = "captured_image.jpg"

// ImageSource откуда взялось ожидающее изображение
type ImageSource string

const (
	SourceCamera ImageSource = "camera"
	SourceFile   ImageSource = "file"
)

// ImageFile файл, выбранный пользователем (выбор или drag-and-drop).
// Open вызывается только после проверки метаданных.
type ImageFile struct {
	Name string
	MIME string
	Size int64
	Open func() (io.ReadCloser, error)
}

// IsImage проверяет MIME-тип файла
func (f *ImageFile) IsImage() bool {
	return strings.HasPrefix(f.MIME, "image/")
}

// PendingImage последнее снятое или выбранное изображение, ожидающее отправки
type PendingImage struct {
	Name   string
	MIME   string
	Data   []byte
	Source ImageSource
}

// DataURL возвращает изображение в виде data URL для превью
func (p *PendingImage) DataURL() string {
	return "data:" + p.MIME + ";base64," + base64.StdEncoding.EncodeToString(p.Data)
}

// Upload содержимое multipart-запроса к сервису анализа
type Upload struct {
	Field    string
	Filename string
	MIME     string
	Data     []byte
}

// NewImageUpload собирает часть "image" запроса
func NewImageUpload(filename, mime string, data []byte) Upload {
	return Upload{Field: "image", Filename: filename, MIME: mime, Data: data}
}

// Download временный файл с результатом, который отдаётся пользователю
type Download struct {
	Filename string
	MIME     string
	Path     string
	Size     int64
}
