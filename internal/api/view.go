package telegram

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "palm-analyzer/internal/application"
	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/domain/port"
)

// chatView отображение контроллера в одном чате
type chatView struct {
	bot       *Bot
	chatID    int64
	loadingID int
}

// ShowCamera сообщает о состоянии камеры и показывает переключатель
func (v *chatView) ShowCamera(active bool) {
	text, toggle := msgCameraOff, app.CameraStartLabel
	rows := [][]tgbotapi.InlineKeyboardButton{}
	if active {
		text, toggle = msgCameraOn, app.CameraStopLabel
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(btnSnap, cbSnap)))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(toggle, cbCamera)))

	msg := tgbotapi.NewMessage(v.chatID, text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	v.send(msg)
}

// ShowPreview отправляет ожидающее изображение с кнопкой анализа
func (v *chatView) ShowPreview(img *entity.PendingImage) {
	photo := tgbotapi.NewPhoto(v.chatID, tgbotapi.FileBytes{Name: img.Name, Bytes: img.Data})
	photo.Caption = msgPreview
	photo.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(btnAnalyze, cbAnalyze)),
	)
	v.send(photo)
}

// ShowLoading показывает сообщение "분석 중" и удаляет его после ответа
func (v *chatView) ShowLoading(show bool) {
	if show {
		_, _ = v.bot.api.Request(tgbotapi.NewChatAction(v.chatID, tgbotapi.ChatUploadPhoto))
		if msg, ok := v.send(tgbotapi.NewMessage(v.chatID, msgProcessing)); ok {
			v.loadingID = msg.MessageID
		}
		return
	}

	if v.loadingID == 0 {
		return
	}
	if _, err := v.bot.api.Request(tgbotapi.NewDeleteMessage(v.chatID, v.loadingID)); err != nil {
		v.bot.log.Debug("delete loading message", zap.Error(err))
	}
	v.loadingID = 0
}

// RenderResult отправляет результат: фото с подписью или панель ошибки
func (v *chatView) RenderResult(result *entity.ResultView) {
	caption := FormatResult(result)
	if !result.Success {
		v.send(tgbotapi.NewMessage(v.chatID, caption))
		return
	}

	var markup interface{}
	if result.DownloadAction != "" {
		markup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬇️ "+result.DownloadLabel, cbDownload+result.DownloadAction),
		))
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil || len(data) == 0 {
		msg := tgbotapi.NewMessage(v.chatID, caption)
		msg.ReplyMarkup = markup
		v.send(msg)
		return
	}

	photo := tgbotapi.NewPhoto(v.chatID, tgbotapi.FileBytes{Name: "palm_analysis.jpg", Bytes: data})
	photo.Caption = caption
	photo.ReplyMarkup = markup
	v.send(photo)
}

// Deliver отправляет временный файл документом с именем для скачивания
func (v *chatView) Deliver(ctx context.Context, dl entity.Download) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := os.Open(dl.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc := tgbotapi.NewDocument(v.chatID, tgbotapi.FileReader{Name: dl.Filename, Reader: f})
	_, err = v.bot.api.Send(doc)
	return err
}

// Notify показывает уведомление через баннер чата
func (v *chatView) Notify(n entity.Notice) {
	if err := v.bot.banner(v.chatID).Show(n); err != nil {
		v.bot.log.Warn("show notice", zap.Int64("chat", v.chatID), zap.Error(err))
	}
}

func (v *chatView) send(c tgbotapi.Chattable) (tgbotapi.Message, bool) {
	msg, err := v.bot.api.Send(c)
	if err != nil {
		v.bot.log.Warn("send to chat", zap.Int64("chat", v.chatID), zap.Error(err))
		return msg, false
	}
	return msg, true
}

// FormatResult текст результата для подписи к фото
func FormatResult(result *entity.ResultView) string {
	var sb strings.Builder

	if !result.Success {
		fmt.Fprintf(&sb, "⚠️ %s\n%s", result.Title, result.Message)
		return sb.String()
	}

	fmt.Fprintf(&sb, "✅ %s\n\n", result.Title)
	for _, stat := range result.Stats {
		fmt.Fprintf(&sb, "%s: %d\n", stat.Label, stat.Value)
	}

	if len(result.Badges) > 0 {
		labels := make([]string, 0, len(result.Badges))
		for _, badge := range result.Badges {
			labels = append(labels, "#"+badge.Label)
		}
		fmt.Fprintf(&sb, "\n%s %s\n", result.BadgesTitle, strings.Join(labels, " "))
	}

	if result.ImageSize != "" {
		fmt.Fprintf(&sb, "\n%s", result.ImageSize)
	}
	fmt.Fprintf(&sb, "\n⏱ %s", result.ProcessingTime)

	return sb.String()
}

// noticeIcons префиксы уведомлений по классу
var noticeIcons = map[entity.NoticeKind]string{
	entity.NoticeSuccess: "✅",
	entity.NoticeError:   "⚠️",
	entity.NoticeInfo:    "ℹ️",
}

// chatSink показывает баннер сообщением в чате и удаляет его
type chatSink struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *zap.Logger
}

func (s *chatSink) Display(n entity.Notice) (any, error) {
	msg := tgbotapi.NewMessage(s.chatID, noticeIcons[n.Kind]+" "+n.Text)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData(btnDismiss, cbDismiss)),
	)
	sent, err := s.api.Send(msg)
	if err != nil {
		return nil, err
	}
	return sent.MessageID, nil
}

func (s *chatSink) Remove(handle any) {
	id, ok := handle.(int)
	if !ok {
		return
	}
	if _, err := s.api.Request(tgbotapi.NewDeleteMessage(s.chatID, id)); err != nil {
		s.log.Debug("delete notice", zap.Int64("chat", s.chatID), zap.Error(err))
	}
}

// Проверка реализации интерфейса
var _ port.View = (*chatView)(nil)
