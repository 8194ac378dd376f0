package entity

// ResultView модель представления результата анализа.
// Не зависит от способа отображения (бот, веб, терминал).
type ResultView struct {
	Success        bool
	Title          string
	ImageBase64    string
	Stats          []Stat
	BadgesTitle    string
	Badges         []Badge
	ProcessingTime string
	ImageSize      string
	DownloadLabel  string
	DownloadAction string // токен, который фронтенд возвращает в контроллер
	Message        string
}

// Stat одна ячейка статистики линий
type Stat struct {
	Label string
	Value int
}

// Badge метка типа линии
type Badge struct {
	Label string
	Class string
}

// ImageDataURL обработанное изображение в виде data URL
func (v *ResultView) ImageDataURL() string {
	if v.ImageBase64 == "" {
		return ""
	}
	return "data:image/jpeg;base64," + v.ImageBase64
}
