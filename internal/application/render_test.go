package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"palm-analyzer/internal/domain/entity"
)

func TestBuildResultView_FailureUsesMessage(t *testing.T) {
	view := BuildResultView(&entity.AnalysisResult{
		Success:        false,
		Message:        "손금 분석에 실패했습니다.",
		TotalLines:     99,
		ProcessedImage: "ignored",
	}, func(string) string {
		t.Fatal("binder must not be called for failures")
		return ""
	})

	require.False(t, view.Success)
	require.Equal(t, "분석 실패", view.Title)
	require.Equal(t, "손금 분석에 실패했습니다.", view.Message)
	require.Empty(t, view.Stats)
	require.Empty(t, view.ImageBase64)
	require.Empty(t, view.DownloadAction)
}

func TestBuildResultView_FailureFallback(t *testing.T) {
	require.Equal(t, "알 수 없는 오류가 발생했습니다.", BuildResultView(&entity.AnalysisResult{}, nil).Message)
	require.Equal(t, "알 수 없는 오류가 발생했습니다.", BuildResultView(nil, nil).Message)
}

func TestBuildResultView_Success(t *testing.T) {
	var bound string
	view := BuildResultView(&entity.AnalysisResult{
		Success:        true,
		ProcessedImage: "b64",
		TotalLines:     7,
		MajorLines:     2,
		MediumLines:    3,
		MinorLines:     2,
		LineTypes:      []string{"major_vertical", "MINOR"},
		ProcessingTime: 0.35,
		ImageSize:      &entity.ImageSize{Width: 640, Height: 480},
	}, func(payload string) string {
		bound = payload
		return "tok"
	})

	require.True(t, view.Success)
	require.Equal(t, "분석 완료", view.Title)
	require.Equal(t, "b64", bound)
	require.Equal(t, "tok", view.DownloadAction)
	require.Equal(t, "data:image/jpeg;base64,b64", view.ImageDataURL())
	require.Equal(t, "처리 시간: 0.35초", view.ProcessingTime)
	require.Equal(t, "이미지 크기: 640×480", view.ImageSize)
	require.Equal(t, []entity.Badge{
		{Label: "major_vertical", Class: "major-vertical"},
		{Label: "MINOR", Class: "minor"},
	}, view.Badges)
	require.Len(t, view.Stats, 4)
}

func TestBadgeClass_ReplacesFirstUnderscoreOnly(t *testing.T) {
	require.Equal(t, "major-line_extra", BadgeClass("MAJOR_LINE_EXTRA"))
	require.Equal(t, "medium", BadgeClass("MEDIUM"))
}
