package entity

// AnalysisResult ответ сервиса анализа ладони.
// При Success == false осмысленно только поле Message.
type AnalysisResult struct {
	Success        bool       `json:"success"`
	ProcessedImage string     `json:"processed_image,omitempty"` // base64 JPEG
	TotalLines     int        `json:"total_lines"`
	MajorLines     int        `json:"major_lines"`
	MediumLines    int        `json:"medium_lines"`
	MinorLines     int        `json:"minor_lines"`
	LineTypes      []string   `json:"line_types,omitempty"`
	ProcessingTime float64    `json:"processing_time"` // секунды
	Message        string     `json:"message,omitempty"`
	ImageSize      *ImageSize `json:"image_size,omitempty"`
}

// ImageSize размер исходного изображения на стороне сервиса
type ImageSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
