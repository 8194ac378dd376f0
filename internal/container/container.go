package container

import (
	"go.uber.org/zap"

	app "palm-analyzer/internal/application"
	"palm-analyzer/internal/domain/port"
)

type Container struct {
	CaptureService *app.CaptureService
	Log            *zap.Logger
}

func New(sessions port.SessionRepository, camera port.Camera, analyzer port.Analyzer, log *zap.Logger, opts ...app.Option) *Container {
	if log == nil {
		log = zap.NewNop()
	}

	return &Container{
		CaptureService: app.NewCaptureService(sessions, camera, analyzer, log, opts...),
		Log:            log,
	}
}
