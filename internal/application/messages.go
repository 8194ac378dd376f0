package app

const (
	msgCameraStarted     = "카메라가 시작되었습니다. 손바닥을 화면에 맞춰주세요."
	msgCameraDenied      = "카메라에 접근할 수 없습니다. 브라우저 설정을 확인해주세요."
	msgCameraUnsupported = "이 환경은 카메라 기능을 지원하지 않습니다. 파일 업로드를 사용해주세요."
	msgCameraInactive    = "먼저 카메라를 시작해주세요."
	msgPhotoTaken        = "사진이 촬영되었습니다. 분석 버튼을 클릭하세요."
	msgNotImage          = "이미지 파일만 업로드 가능합니다."
	msgFileTooLarge      = "파일 크기는 5MB를 초과할 수 없습니다."
	msgNoFile            = "업로드할 이미지를 선택해주세요."
	msgNoPendingImage    = "분석할 이미지가 없습니다."
	msgAnalysisError     = "분석 중 오류가 발생했습니다: "
	msgDownloaded        = "이미지가 다운로드되었습니다."
	msgDownloadError     = "다운로드 중 오류가 발생했습니다."

	titleSuccess     = "분석 완료"
	titleFailure     = "분석 실패"
	fallbackFailure  = "알 수 없는 오류가 발생했습니다."
	labelTotalLines  = "총 라인 수"
	labelMajorLines  = "주요 라인"
	labelMediumLines = "중간 라인"
	labelMinorLines  = "세부 라인"
	labelLineTypes   = "검출된 라인 유형:"
	labelDownload    = "결과 이미지 다운로드"

	// CameraStartLabel и CameraStopLabel подписи переключателя камеры
	CameraStartLabel = "카메라 시작"
	CameraStopLabel  = "카메라 중지"
)

const (
	msgCaptureError = "사진을 촬영할 수 없습니다. 다시 시도해주세요."
	msgReadError    = "파일을 읽을 수 없습니다."
)
