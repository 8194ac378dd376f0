package app

import (
	"encoding/base64"
	"fmt"
	"os"
	"time"

	"palm-analyzer/internal/domain/entity"
)

// prepareDownload декодирует base64 во временный файл.
// cleanup удаляет файл и должен вызываться после передачи.
func prepareDownload(dir, payload string, now time.Time) (entity.Download, func(), error) {
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return entity.Download{}, nil, fmt.Errorf("decode image: %w", err)
	}

	f, err := os.CreateTemp(dir, "palm_analysis_*.jpg")
	if err != nil {
		return entity.Download{}, nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return entity.Download{}, nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return entity.Download{}, nil, fmt.Errorf("close temp file: %w", err)
	}

	return entity.Download{
		Filename: DownloadFilename(now),
		MIME:     "image/jpeg",
		Path:     f.Name(),
		Size:     int64(len(data)),
	}, cleanup, nil
}

// DownloadFilename имя файла с отметкой времени в миллисекундах
func DownloadFilename(now time.Time) string {
	return fmt.Sprintf("palm_analysis_%d.jpg", now.UnixMilli())
}
