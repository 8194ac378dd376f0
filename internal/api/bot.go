package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	app "palm-analyzer/internal/application"
	"palm-analyzer/internal/domain/entity"
	"palm-analyzer/internal/infrastructure/notify"
)

const (
	msgStart = `👋 안녕하세요! 손금 분석 봇입니다.

📸 손바닥 사진을 보내면 미리보기를 보여드리고, 분석 버튼으로 서버에 분석을 요청합니다.

📋 명령어:
/camera — 카메라 시작/중지
/snap — 사진 촬영
/analyze — 미리보기 이미지 분석
/upload — 마지막으로 선택한 파일 분석
/help — 도움말
/cancel — 현재 작업 취소`

	msgHelp = `ℹ️ 사용 방법:

1️⃣ 손바닥 사진을 보내거나 /camera 로 카메라를 켜고 /snap 으로 촬영하세요
2️⃣ 미리보기 아래의 "분석하기" 버튼을 누르세요
3️⃣ 결과 이미지와 라인 통계를 받게 됩니다

💡 팁:
• 사진 캡션에 /analyze 를 적으면 바로 분석합니다
• 이미지 파일만, 5MB 이하로 보내주세요
• 밝은 곳에서 손바닥 전체가 보이도록 촬영하세요`

	msgCancelled      = "❌ 작업이 취소되었습니다."
	msgSendPhoto      = "📸 분석할 손바닥 사진을 보내주세요."
	msgUnknownCommand = "❓ 알 수 없는 명령어입니다. /help 를 확인해주세요."
	msgProcessing     = "⏳ 분석 중입니다..."
	msgPreview        = "🖼 미리보기"
	msgCameraOn       = "📷 카메라가 켜져 있습니다."
	msgCameraOff      = "📷 카메라가 꺼졌습니다."

	btnAnalyze = "🔍 분석하기"
	btnSnap    = "📸 촬영"
	btnDismiss = "✖"

	cbAnalyze  = "analyze"
	cbCamera   = "camera"
	cbSnap     = "snap"
	cbDismiss  = "dismiss"
	cbDownload = "dl:"
)

// analyzeCaptions подписи к фото, при которых оно сразу отправляется как форма
var analyzeCaptions = map[string]bool{"/analyze": true, "분석": true}

const (
	// DefaultIdleTTL через столько молчащий чат теряет сессию и камеру
	DefaultIdleTTL = 30 * time.Minute

	sweepInterval = time.Minute
)

// chatState баннер чата и время последнего обращения
type chatState struct {
	banner   *notify.Banner
	lastSeen time.Time
}

// Bot представляет Telegram-бота
type Bot struct {
	api     *tgbotapi.BotAPI
	capture *app.CaptureService
	log     *zap.Logger
	files   *http.Client

	idleTTL time.Duration
	now     func() time.Time

	mu    sync.Mutex
	chats map[int64]*chatState
}

// Option настраивает Bot
type Option func(*Bot)

// WithIdleTTL задаёт время простоя чата до закрытия его сессии
func WithIdleTTL(ttl time.Duration) Option {
	return func(b *Bot) {
		if ttl > 0 {
			b.idleTTL = ttl
		}
	}
}

// NewBot создаёт нового бота
func NewBot(token string, capture *app.CaptureService, log *zap.Logger, opts ...Option) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Info("authorized on account", zap.String("username", api.Self.UserName))

	b := &Bot{
		api:     api,
		capture: capture,
		log:     log,
		files:   &http.Client{Timeout: 60 * time.Second},
		idleTTL: DefaultIdleTTL,
		now:     time.Now,
		chats:   make(map[int64]*chatState),
	}
	for _, opt := range opts {
		opt(b)
	}

	return b, nil
}

// Run запускает основной цикл обработки обновлений.
// Каждое обновление обрабатывается в своей горутине, чтобы анализ не блокировал другие чаты.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case <-ticker.C:
			if n := b.evictIdle(ctx); n > 0 {
				b.log.Debug("evicted idle chats", zap.Int("count", n))
			}
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				b.handleUpdate(ctx, update)
			}()
		}
	}
}

// handleUpdate разбирает обновление
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if chatID, ok := updateChat(update); ok {
		b.touch(chatID)
	}

	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message == nil {
		return
	}
	b.handleMessage(ctx, update.Message)
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Фото или документ — это выбор файла, с подписью /analyze — отправка формы
	if file := b.messageFile(msg); file != nil {
		b.handleFile(ctx, msg, file)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	id := sessionID(chatID)
	view := b.view(chatID)

	var err error
	switch msg.Command() {
	case "start":
		b.sendMessage(chatID, msgStart)
		_, err = b.capture.Open(ctx, id, view)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "camera":
		err = b.toggleCamera(ctx, id, view)

	case "snap":
		err = b.capture.TakePicture(ctx, id, view)

	case "analyze":
		err = b.capture.SubmitPending(ctx, id, view)

	case "upload":
		err = b.capture.SubmitForm(ctx, id, view, nil)

	case "cancel", "stop":
		err = b.capture.StopCamera(ctx, id, view)
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}

	b.logResult(chatID, msg.Command(), err)
}

// handleFile выбирает файл или сразу отправляет его как форму
func (b *Bot) handleFile(ctx context.Context, msg *tgbotapi.Message, file *entity.ImageFile) {
	chatID := msg.Chat.ID
	id := sessionID(chatID)
	view := b.view(chatID)

	var err error
	if analyzeCaptions[strings.TrimSpace(msg.Caption)] {
		err = b.capture.SubmitForm(ctx, id, view, file)
		b.logResult(chatID, "submit form", err)
		return
	}

	err = b.capture.SelectFile(ctx, id, view, file)
	b.logResult(chatID, "select file", err)
}

// handleCallback обрабатывает нажатия inline-кнопок
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Debug("answer callback", zap.Error(err))
	}
	if cb.Message == nil {
		return
	}

	chatID := cb.Message.Chat.ID
	id := sessionID(chatID)
	view := b.view(chatID)

	var err error
	switch {
	case cb.Data == cbAnalyze:
		err = b.capture.SubmitPending(ctx, id, view)
	case cb.Data == cbCamera:
		err = b.toggleCamera(ctx, id, view)
	case cb.Data == cbSnap:
		err = b.capture.TakePicture(ctx, id, view)
	case cb.Data == cbDismiss:
		b.banner(chatID).Dismiss()
	case strings.HasPrefix(cb.Data, cbDownload):
		err = b.capture.Download(ctx, id, view, strings.TrimPrefix(cb.Data, cbDownload))
	default:
		err = fmt.Errorf("unknown callback %q", cb.Data)
	}

	b.logResult(chatID, "callback", err)
}

// toggleCamera переключатель "카메라 시작" / "카메라 중지"
func (b *Bot) toggleCamera(ctx context.Context, id string, view *chatView) error {
	if b.capture.CameraActive(ctx, id) {
		return b.capture.StopCamera(ctx, id, view)
	}
	return b.capture.StartCamera(ctx, id, view)
}

// messageFile превращает фото или документ в ImageFile
func (b *Bot) messageFile(msg *tgbotapi.Message) *entity.ImageFile {
	if len(msg.Photo) > 0 {
		// Берём фото с максимальным разрешением
		photo := msg.Photo[len(msg.Photo)-1]
		return &entity.ImageFile{
			Name: "photo_" + photo.FileUniqueID + ".jpg",
			MIME: "image/jpeg",
			Size: int64(photo.FileSize),
			Open: b.opener(photo.FileID),
		}
	}

	if msg.Document != nil {
		return &entity.ImageFile{
			Name: msg.Document.FileName,
			MIME: msg.Document.MimeType,
			Size: int64(msg.Document.FileSize),
			Open: b.opener(msg.Document.FileID),
		}
	}

	return nil
}

// opener скачивает файл из Telegram только при чтении
func (b *Bot) opener(fileID string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		fileURL, err := b.api.GetFileDirectURL(fileID)
		if err != nil {
			return nil, fmt.Errorf("get file: %w", err)
		}

		resp, err := b.files.Get(fileURL)
		if err != nil {
			return nil, fmt.Errorf("download file: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
		}

		return resp.Body, nil
	}
}

// touch отмечает активность чата, создавая его состояние при необходимости
func (b *Bot) touch(chatID int64) *chatState {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.chats[chatID]
	if !ok {
		state = &chatState{banner: notify.NewBanner(&chatSink{api: b.api, chatID: chatID, log: b.log})}
		b.chats[chatID] = state
	}
	state.lastSeen = b.now()
	return state
}

// banner возвращает баннер уведомлений чата
func (b *Bot) banner(chatID int64) *notify.Banner {
	return b.touch(chatID).banner
}

// evictIdle закрывает сессии чатов, молчащих дольше idleTTL, вместе с камерой
func (b *Bot) evictIdle(ctx context.Context) int {
	cutoff := b.now().Add(-b.idleTTL)

	b.mu.Lock()
	idle := make(map[int64]*chatState)
	for chatID, state := range b.chats {
		if state.lastSeen.Before(cutoff) {
			idle[chatID] = state
			delete(b.chats, chatID)
		}
	}
	b.mu.Unlock()

	for chatID, state := range idle {
		state.banner.Dismiss()
		if err := b.capture.Close(ctx, sessionID(chatID)); err != nil {
			b.log.Warn("close idle chat", zap.Int64("chat", chatID), zap.Error(err))
		}
	}

	return len(idle)
}

func (b *Bot) view(chatID int64) *chatView {
	return &chatView{bot: b, chatID: chatID}
}

func (b *Bot) logResult(chatID int64, op string, err error) {
	if err == nil {
		return
	}
	// Ошибки уже показаны пользователю, здесь только лог
	level := b.log.Warn
	if errors.Is(err, app.ErrAnalysisFailed) {
		level = b.log.Info
	}
	level("operation finished with error", zap.Int64("chat", chatID), zap.String("op", op), zap.Error(err))
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Warn("send message", zap.Int64("chat", chatID), zap.Error(err))
	}
}

// updateChat чат, к которому относится обновление
func updateChat(update tgbotapi.Update) (int64, bool) {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return update.CallbackQuery.Message.Chat.ID, true
	}
	return 0, false
}

func sessionID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}
