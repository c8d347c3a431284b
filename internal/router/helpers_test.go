package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

const (
	adminID session.Identity = 100
	userID  session.Identity = 200
)

// monday is 2024-01-01, so tomorrow is Tuesday.
var monday = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	router    *Router
	catalog   *catalog.Store
	sessions  *session.Store
	persister *catalog.MemoryPersister
}

func newFixture(t *testing.T, snap catalog.Snapshot) *fixture {
	t.Helper()
	p := catalog.NewMemoryPersister()
	c := catalog.New(p, catalog.WithSnapshot(snap))
	s := session.NewStore()
	r := New(c, s, WithAdmin(adminID), WithClock(func() time.Time { return monday }))
	return &fixture{router: r, catalog: c, sessions: s, persister: p}
}

func press(id session.Identity, payload string) Event {
	return Event{Kind: KindAction, Caller: id, Payload: payload}
}

func say(id session.Identity, body string) Event {
	return Event{Kind: KindText, Caller: id, Body: body}
}

func cmdEvent(id session.Identity, name string) Event {
	return Event{Kind: KindCommand, Caller: id, Name: name}
}

// do handles ev and returns the response; the error is ignored.
func (f *fixture) do(t *testing.T, ev Event) Response {
	t.Helper()
	resp, _ := f.router.Handle(context.Background(), ev)
	return resp
}

// last returns the render of the only message in resp.
func last(t *testing.T, resp Response) view.Render {
	t.Helper()
	require.NotEmpty(t, resp.Messages, "response has no messages")
	return resp.Messages[len(resp.Messages)-1].Render
}

func payloadsOf(r view.Render) []string {
	var out []string
	for _, o := range r.Options() {
		out = append(out, o.Payload)
	}
	return out
}
