package app

import (
	"fmt"
	"strconv"
	"strings"

	"palm-analyzer/internal/domain/entity"
)

// Binder регистрирует полезную нагрузку действия и возвращает токен,
// по которому фронтенд потом вызывает действие.
type Binder func(payload string) string

// BuildResultView переводит ответ сервиса в модель представления.
// При неуспехе поля с данными не читаются.
func BuildResultView(result *entity.AnalysisResult, bind Binder) *entity.ResultView {
	if result == nil || !result.Success {
		message := ""
		if result != nil {
			message = result.Message
		}
		if message == "" {
			message = fallbackFailure
		}
		return &entity.ResultView{
			Success: false,
			Title:   titleFailure,
			Message: message,
		}
	}

	view := &entity.ResultView{
		Success:     true,
		Title:       titleSuccess,
		ImageBase64: result.ProcessedImage,
		Stats: []entity.Stat{
			{Label: labelTotalLines, Value: result.TotalLines},
			{Label: labelMajorLines, Value: result.MajorLines},
			{Label: labelMediumLines, Value: result.MediumLines},
			{Label: labelMinorLines, Value: result.MinorLines},
		},
		BadgesTitle:    labelLineTypes,
		Badges:         make([]entity.Badge, 0, len(result.LineTypes)),
		ProcessingTime: "처리 시간: " + strconv.FormatFloat(result.ProcessingTime, 'f', -1, 64) + "초",
		DownloadLabel:  labelDownload,
	}

	for _, lineType := range result.LineTypes {
		view.Badges = append(view.Badges, entity.Badge{
			Label: lineType,
			Class: BadgeClass(lineType),
		})
	}

	if result.ImageSize != nil {
		view.ImageSize = fmt.Sprintf("이미지 크기: %d×%d", result.ImageSize.Width, result.ImageSize.Height)
	}

	if bind != nil && result.ProcessedImage != "" {
		view.DownloadAction = bind(result.ProcessedImage)
	}

	return view
}

// BadgeClass CSS-класс метки: нижний регистр, первое "_" заменяется на "-"
func BadgeClass(lineType string) string {
	return strings.Replace(strings.ToLower(lineType), "_", "-", 1)
}
