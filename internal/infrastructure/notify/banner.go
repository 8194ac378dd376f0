package notify

import (
	"sync"
	"time"

	"palm-analyzer/internal/domain/entity"
)

// Sink место, где баннер физически показывается (сообщение в чате, строка в терминале)
type Sink interface {
	// Display показывает уведомление и возвращает handle для удаления
	Display(n entity.Notice) (any, error)

	// Remove убирает ранее показанное уведомление
	Remove(handle any)
}

// Timer останавливаемый таймер
type Timer interface {
	Stop() bool
}

// AfterFunc планирует вызов f через d
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type shown struct {
	seq    uint64
	notice entity.Notice
	handle any
	timer  Timer
}

// Banner не больше одного видимого уведомления: новое заменяет старое,
// через ttl уведомление скрывается само.
type Banner struct {
	mu        sync.Mutex
	sink      Sink
	ttl       time.Duration
	afterFunc AfterFunc
	seq       uint64
	current   *shown
}

// NewBanner создаёт баннер. sink может быть nil, тогда уведомление только хранится в Current.
func NewBanner(sink Sink) *Banner {
	return &Banner{
		sink:      sink,
		ttl:       entity.NoticeTTL,
		afterFunc: stdAfterFunc,
	}
}

// WithAfterFunc подменяет планировщик (для тестов)
func (b *Banner) WithAfterFunc(fn AfterFunc) *Banner {
	b.afterFunc = fn
	return b
}

// Show показывает уведомление, убирая предыдущее.
// Вызовы sink выполняются без блокировки: у бота это сетевые запросы.
func (b *Banner) Show(n entity.Notice) error {
	b.mu.Lock()
	old := b.takeLocked()
	b.seq++
	seq := b.seq
	b.mu.Unlock()

	b.remove(old)

	var handle any
	if b.sink != nil {
		h, err := b.sink.Display(n)
		if err != nil {
			return err
		}
		handle = h
	}

	b.mu.Lock()
	if b.seq != seq {
		// Пока показывали, пришло более новое уведомление
		b.mu.Unlock()
		b.remove(&shown{handle: handle})
		return nil
	}
	b.current = &shown{
		seq:    seq,
		notice: n,
		handle: handle,
	}
	b.current.timer = b.afterFunc(b.ttl, func() { b.expire(seq) })
	b.mu.Unlock()

	return nil
}

// Dismiss закрывает текущее уведомление по действию пользователя
func (b *Banner) Dismiss() {
	b.mu.Lock()
	old := b.takeLocked()
	b.mu.Unlock()

	b.remove(old)
}

// Current возвращает видимое уведомление
func (b *Banner) Current() (entity.Notice, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return entity.Notice{}, false
	}
	return b.current.notice, true
}

// expire срабатывает по таймеру; уже заменённое уведомление не трогаем
func (b *Banner) expire(seq uint64) {
	b.mu.Lock()
	if b.current == nil || b.current.seq != seq {
		b.mu.Unlock()
		return
	}
	old := b.takeLocked()
	b.mu.Unlock()

	b.remove(old)
}

// takeLocked снимает текущее уведомление и останавливает его таймер
func (b *Banner) takeLocked() *shown {
	old := b.current
	if old == nil {
		return nil
	}
	if old.timer != nil {
		old.timer.Stop()
	}
	b.current = nil
	return old
}

func (b *Banner) remove(old *shown) {
	if old == nil || b.sink == nil {
		return
	}
	b.sink.Remove(old.handle)
}
