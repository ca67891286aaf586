package realtime

import (
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

// fakeConn собирает всё, что в него запушили.
type fakeConn struct {
	mu     sync.Mutex
	sent   []any
	failed bool
}

func (f *fakeConn) Push(v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return errors.New("broken pipe")
	}
	f.sent = append(f.sent, v)
	return nil
}

func (f *fakeConn) messages() []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]any, len(f.sent))
	copy(out, f.sent)
	return out
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(log.New(io.Discard, "", 0))
}

func TestRegisterAuthenticateDeregister(t *testing.T) {
	h := newTestHub(t)
	c := &fakeConn{}

	h.Register(c)
	require.Equal(t, 1, h.Conns())
	require.Equal(t, 0, h.UserConns(42))

	h.Authenticate(c, 42)
	require.Equal(t, 1, h.UserConns(42))

	h.Deregister(c)
	require.Equal(t, 0, h.Conns())
	require.Equal(t, 0, h.UserConns(42))
}

func TestMultiDeviceFanOut(t *testing.T) {
	h := newTestHub(t)
	a, b, c := &fakeConn{}, &fakeConn{}, &fakeConn{}

	h.Register(a)
	h.Register(b)
	h.Register(c)
	h.Authenticate(a, 42)
	h.Authenticate(b, 42)
	h.Authenticate(c, 7)

	h.Deliver(42, domain.Notification{Type: domain.NotifyLikeProject, RecipientID: 42})

	// оба соединения пользователя 42 получили пуш, пользователь 7 — нет
	require.Len(t, a.messages(), 1)
	require.Len(t, b.messages(), 1)
	require.Empty(t, c.messages())

	msg, ok := a.messages()[0].(pushMessage)
	require.True(t, ok)
	require.Equal(t, "notification", msg.Type)
	require.Equal(t, domain.NotifyLikeProject, msg.Data.Type)
}

func TestDeliverNoConnectionsIsSilent(t *testing.T) {
	h := newTestHub(t)

	// ни паники, ни ошибок — просто no-op
	h.Deliver(99, domain.Notification{Type: domain.NotifyCommentProject})
}

func TestDeliverSkipsUnauthenticated(t *testing.T) {
	h := newTestHub(t)
	c := &fakeConn{}

	h.Register(c)
	h.Deliver(42, domain.Notification{Type: domain.NotifyLikeProject})
	require.Empty(t, c.messages())
}

func TestDeliverSurvivesBrokenConn(t *testing.T) {
	h := newTestHub(t)
	ok, bad := &fakeConn{}, &fakeConn{failed: true}

	h.Register(ok)
	h.Register(bad)
	h.Authenticate(ok, 42)
	h.Authenticate(bad, 42)

	h.Deliver(42, domain.Notification{Type: domain.NotifyLikeProject})
	require.Len(t, ok.messages(), 1)
}

func TestSecondDeviceKeepsFirst(t *testing.T) {
	h := newTestHub(t)
	a, b := &fakeConn{}, &fakeConn{}

	h.Register(a)
	h.Authenticate(a, 42)
	h.Register(b)
	h.Authenticate(b, 42)

	require.Equal(t, 2, h.UserConns(42))
}

func TestReauthenticateRebinds(t *testing.T) {
	h := newTestHub(t)
	c := &fakeConn{}

	h.Register(c)
	h.Authenticate(c, 42)
	h.Authenticate(c, 7)

	require.Equal(t, 0, h.UserConns(42))
	require.Equal(t, 1, h.UserConns(7))
}

func TestDeregisterLastConnRemovesUser(t *testing.T) {
	h := newTestHub(t)
	a, b := &fakeConn{}, &fakeConn{}

	h.Register(a)
	h.Register(b)
	h.Authenticate(a, 42)
	h.Authenticate(b, 42)

	h.Deregister(a)
	require.Equal(t, 1, h.UserConns(42))
	h.Deregister(b)
	require.Equal(t, 0, h.UserConns(42))

	// доставка после ухода всех устройств — тихий no-op
	h.Deliver(42, domain.Notification{Type: domain.NotifyLikeProject})
	require.Empty(t, a.messages())
	require.Empty(t, b.messages())
}

func TestAuthenticateUnregisteredIsNoop(t *testing.T) {
	h := newTestHub(t)
	c := &fakeConn{}

	// гонка: Deregister уже прошёл
	h.Authenticate(c, 42)
	require.Equal(t, 0, h.UserConns(42))
}
