package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/router"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

type delivery struct {
	Env Envelope
	Msg router.Message
}

type ack struct {
	Env    Envelope
	Notice string
}

// fakeSender records deliveries. Edits whose render matches the previous
// render for that message fail with ErrNotModified, like Telegram does.
type fakeSender struct {
	mu         sync.Mutex
	deliveries []delivery
	acks       []ack
	shown      map[int]view.Render
	failWith   error
}

func newFakeSender() *fakeSender {
	return &fakeSender{shown: make(map[int]view.Render)}
}

func (f *fakeSender) Deliver(ctx context.Context, env Envelope, msg router.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	if msg.Directive == router.Edit {
		if prev, ok := f.shown[env.MessageID]; ok && prev.Equal(msg.Render) {
			return ErrNotModified
		}
		f.shown[env.MessageID] = msg.Render
	}
	f.deliveries = append(f.deliveries, delivery{Env: env, Msg: msg})
	return nil
}

func (f *fakeSender) Acknowledge(ctx context.Context, env Envelope, notice string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.acks = append(f.acks, ack{Env: env, Notice: notice})
	return nil
}

func (f *fakeSender) count() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deliveries), len(f.acks)
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeSender, *catalog.Store) {
	t.Helper()
	c := catalog.New(catalog.NewMemoryPersister())
	r := router.New(c, session.NewStore(), router.WithAdmin(1))
	s := newFakeSender()
	return New(r, s, opts...), s, c
}

func pressEnv(payload string, msgID int) Envelope {
	return Envelope{
		Event:      router.Event{Kind: router.KindAction, Caller: 1, Payload: payload},
		Chat:       10,
		MessageID:  msgID,
		CallbackID: "cb",
	}
}

func TestEngine_StampsIDAndSeq(t *testing.T) {
	e, _, _ := newTestEngine(t, WithIDGenerator(NewFixedGenerator("id-1", "id-2")), WithClock(NewClockAt(10)))

	a := e.Stamp(Envelope{})
	b := e.Stamp(Envelope{})
	assert.Equal(t, "id-1", a.ID)
	assert.Equal(t, int64(11), a.Seq)
	assert.Equal(t, "id-2", b.ID)
	assert.Equal(t, int64(12), b.Seq)
}

func TestEngine_ProcessDeliversAndAcknowledges(t *testing.T) {
	e, s, _ := newTestEngine(t)

	require.NoError(t, e.Process(context.Background(), pressEnv("menu:subjects", 5)))

	require.Len(t, s.deliveries, 1)
	assert.Equal(t, router.Edit, s.deliveries[0].Msg.Directive)
	assert.Equal(t, "Выбери предмет:", s.deliveries[0].Msg.Render.Text)
	require.Len(t, s.acks, 1)
	assert.Empty(t, s.acks[0].Notice)
}

func TestEngine_NotModifiedIsSoftSuccess(t *testing.T) {
	e, s, _ := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, e.Process(ctx, pressEnv("menu:subjects", 5)))
	err := e.Process(ctx, pressEnv("menu:subjects", 5))
	require.NoError(t, err, "identical re-render is not an error")

	assert.Len(t, s.deliveries, 1)
	assert.Len(t, s.acks, 2, "press is still acknowledged")
}

func TestEngine_NoticeOnlyResponse(t *testing.T) {
	e, s, _ := newTestEngine(t)

	env := pressEnv("menu:admin", 5)
	env.Event.Caller = 2
	require.NoError(t, e.Process(context.Background(), env))

	assert.Empty(t, s.deliveries)
	require.Len(t, s.acks, 1)
	assert.Equal(t, view.NoticeAdminOnly, s.acks[0].Notice)
}

func TestEngine_TextIsNotAcknowledged(t *testing.T) {
	e, s, _ := newTestEngine(t)

	env := Envelope{Event: router.Event{Kind: router.KindCommand, Caller: 1, Name: "help"}, Chat: 10}
	require.NoError(t, e.Process(context.Background(), env))

	assert.Len(t, s.deliveries, 1)
	assert.Empty(t, s.acks)
}

func TestEngine_DeliveryErrorReturned(t *testing.T) {
	e, s, _ := newTestEngine(t)
	s.failWith = errors.New("network down")

	err := e.Process(context.Background(), pressEnv("menu:subjects", 5))
	require.Error(t, err)
	assert.ErrorIs(t, err, s.failWith)
}

func TestEngine_RunProcessesInOrderUntilCancelled(t *testing.T) {
	e, s, c := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx) }()

	require.True(t, e.Enqueue(pressEnv("edit:sched:day:sat", 1)))
	require.True(t, e.Enqueue(pressEnv("edit:sched:add:geo", 1)))
	require.True(t, e.Enqueue(pressEnv("edit:sched:add:math", 1)))

	require.Eventually(t, func() bool {
		_, acks := s.count()
		return acks == 3
	}, time.Second, 5*time.Millisecond)

	keys, _ := c.Lessons(catalog.Saturday)
	assert.Equal(t, []string{"hist", "bio", "geo", "math"}, keys)

	s.mu.Lock()
	for i := 1; i < len(s.acks); i++ {
		assert.Less(t, s.acks[i-1].Env.Seq, s.acks[i].Env.Seq)
	}
	s.mu.Unlock()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop")
	}
	assert.False(t, e.Enqueue(pressEnv("menu:subjects", 1)), "closed after cancel")
}

func TestEngine_StopDrainsAndReturns(t *testing.T) {
	e, s, _ := newTestEngine(t)

	e.Enqueue(pressEnv("menu:subjects", 1))
	e.Enqueue(pressEnv("menu:day", 2))
	e.Stop()

	require.NoError(t, e.Run(context.Background()))
	deliveries, _ := s.count()
	assert.Equal(t, 2, deliveries)
	assert.Zero(t, e.Pending())
}
