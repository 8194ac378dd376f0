package notify

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"palm-analyzer/internal/domain/entity"
)

type recordingSink struct {
	mu      sync.Mutex
	next    int
	visible map[int]entity.Notice
	removed []int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{visible: make(map[int]entity.Notice)}
}

func (s *recordingSink) Display(n entity.Notice) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.visible[s.next] = n
	return s.next, nil
}

func (s *recordingSink) Remove(handle any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := handle.(int)
	delete(s.visible, id)
	s.removed = append(s.removed, id)
}

type manualTimer struct {
	fn      func()
	d       time.Duration
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.stopped = true
	return true
}

type manualClock struct {
	timers []*manualTimer
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{fn: f, d: d}
	c.timers = append(c.timers, t)
	return t
}

func TestBanner_NewNoticeReplacesOld(t *testing.T) {
	sink := newRecordingSink()
	clock := &manualClock{}
	b := NewBanner(sink).WithAfterFunc(clock.AfterFunc)

	require.NoError(t, b.Show(entity.Notice{Kind: entity.NoticeInfo, Text: "first"}))
	require.NoError(t, b.Show(entity.Notice{Kind: entity.NoticeError, Text: "second"}))

	require.Len(t, sink.visible, 1)
	current, ok := b.Current()
	require.True(t, ok)
	require.Equal(t, "second", current.Text)
	require.True(t, clock.timers[0].stopped)
}

func TestBanner_AutoDismissAfterTTL(t *testing.T) {
	sink := newRecordingSink()
	clock := &manualClock{}
	b := NewBanner(sink).WithAfterFunc(clock.AfterFunc)

	require.NoError(t, b.Show(entity.Notice{Kind: entity.NoticeSuccess, Text: "ok"}))
	require.Len(t, clock.timers, 1)
	require.Equal(t, 3*time.Second, clock.timers[0].d)

	clock.timers[0].fn()

	_, ok := b.Current()
	require.False(t, ok)
	require.Empty(t, sink.visible)
}

func TestBanner_StaleTimerDoesNotRemoveReplacement(t *testing.T) {
	sink := newRecordingSink()
	clock := &manualClock{}
	b := NewBanner(sink).WithAfterFunc(clock.AfterFunc)

	require.NoError(t, b.Show(entity.Notice{Text: "first"}))
	require.NoError(t, b.Show(entity.Notice{Text: "second"}))

	// Таймер первого уведомления всё-таки сработал
	clock.timers[0].fn()

	current, ok := b.Current()
	require.True(t, ok)
	require.Equal(t, "second", current.Text)
	require.Len(t, sink.visible, 1)
}

func TestBanner_DismissByUser(t *testing.T) {
	sink := newRecordingSink()
	clock := &manualClock{}
	b := NewBanner(sink).WithAfterFunc(clock.AfterFunc)

	require.NoError(t, b.Show(entity.Notice{Text: "bye"}))
	b.Dismiss()
	b.Dismiss()

	_, ok := b.Current()
	require.False(t, ok)
	require.Equal(t, []int{1}, sink.removed)

	// Таймер после закрытия ничего не делает
	clock.timers[0].fn()
	require.Equal(t, []int{1}, sink.removed)
}

func TestBanner_NilSink(t *testing.T) {
	b := NewBanner(nil)
	require.NoError(t, b.Show(entity.Notice{Text: "web"}))
	current, ok := b.Current()
	require.True(t, ok)
	require.Equal(t, "web", current.Text)
	b.Dismiss()
}

// reentrantSink обращается к баннеру изнутри Display и Remove
type reentrantSink struct {
	banner  *Banner
	removed chan entity.Notice
}

func (s *reentrantSink) Display(n entity.Notice) (any, error) {
	_, _ = s.banner.Current()
	return n, nil
}

func (s *reentrantSink) Remove(handle any) {
	_, _ = s.banner.Current()
	s.removed <- handle.(entity.Notice)
}

func TestBanner_SinkCalledWithoutLock(t *testing.T) {
	sink := &reentrantSink{removed: make(chan entity.Notice, 4)}
	clock := &manualClock{}
	b := NewBanner(sink).WithAfterFunc(clock.AfterFunc)
	sink.banner = b

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = b.Show(entity.Notice{Text: "first"})
		_ = b.Show(entity.Notice{Text: "second"})
		clock.timers[1].fn()
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("banner blocked while calling the sink")
	}

	require.Equal(t, "first", (<-sink.removed).Text)
	require.Equal(t, "second", (<-sink.removed).Text)
	_, ok := b.Current()
	require.False(t, ok)
}

func TestBanner_SupersededDisplayIsRemoved(t *testing.T) {
	clock := &manualClock{}
	var b *Banner
	sink := &hookSink{}
	b = NewBanner(sink).WithAfterFunc(clock.AfterFunc)

	// Пока первое уведомление показывается, приходит второе
	sink.onDisplay = func(n entity.Notice) {
		if n.Text == "slow" {
			sink.onDisplay = nil
			require.NoError(t, b.Show(entity.Notice{Text: "fast"}))
		}
	}

	require.NoError(t, b.Show(entity.Notice{Text: "slow"}))

	current, ok := b.Current()
	require.True(t, ok)
	require.Equal(t, "fast", current.Text)
	require.Equal(t, []string{"slow"}, sink.removed)
	require.Len(t, clock.timers, 1)
}

type hookSink struct {
	onDisplay func(entity.Notice)
	removed   []string
}

func (s *hookSink) Display(n entity.Notice) (any, error) {
	if s.onDisplay != nil {
		s.onDisplay(n)
	}
	return n.Text, nil
}

func (s *hookSink) Remove(handle any) {
	s.removed = append(s.removed, handle.(string))
}
