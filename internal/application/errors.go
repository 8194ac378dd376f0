package app

import "errors"

// Ошибки контроллера. Все они показываются пользователю уведомлением
// и не прерывают работу сессии.
var (
	// ErrCameraUnavailable камера недоступна или доступ запрещён
	ErrCameraUnavailable = errors.New("camera unavailable")

	// ErrCameraInactive снимок запрошен без запущенной камеры
	ErrCameraInactive = errors.New("camera is not active")

	// ErrNotImage выбран файл не с типом image/*
	ErrNotImage = errors.New("file is not an image")

	// ErrFileTooLarge выбранный файл больше 5 MiB
	ErrFileTooLarge = errors.New("file is larger than 5MB")

	// ErrNoFile форма отправлена без файла
	ErrNoFile = errors.New("no file selected")

	// ErrNoPendingImage нечего отправлять на анализ
	ErrNoPendingImage = errors.New("no pending image")

	// ErrAnalysisFailed сервис вернул success=false
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrDownload не удалось подготовить файл для скачивания
	ErrDownload = errors.New("download failed")
)
