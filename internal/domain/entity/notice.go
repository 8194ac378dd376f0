package entity

import "time"

// NoticeKind класс всплывающего уведомления
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// NoticeTTL время жизни уведомления до автоматического скрытия
const NoticeTTL = 3 * time.Second

// Notice уведомление для пользователя
type Notice struct {
	Kind NoticeKind
	Text string
}

// CSSClass возвращает класс alert-баннера
func (n Notice) CSSClass() string {
	switch n.Kind {
	case NoticeError:
		return "danger"
	case NoticeSuccess:
		return "success"
	default:
		return "info"
	}
}
