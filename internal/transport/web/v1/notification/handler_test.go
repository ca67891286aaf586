package notification

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

type memNotifs struct {
	byID map[domain.NotificationID]domain.Notification
	next domain.NotificationID
}

func newMemNotifs() *memNotifs {
	return &memNotifs{byID: map[domain.NotificationID]domain.Notification{}}
}

func (m *memNotifs) add(recipient domain.UserID, read bool) domain.Notification {
	m.next++
	n := domain.Notification{
		ID: m.next, RecipientID: recipient, ActorID: 99,
		Type: domain.NotifyLikeProject, Read: read, CreatedAt: time.Now(),
	}
	m.byID[n.ID] = n
	return n
}

func (m *memNotifs) CreateNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	m.next++
	n.ID = m.next
	m.byID[n.ID] = n
	return n, nil
}

func (m *memNotifs) NotificationsList(_ context.Context, recipient domain.UserID, limit, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, n := range m.byID {
		if n.RecipientID == recipient {
			out = append(out, n)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memNotifs) UnreadCount(_ context.Context, recipient domain.UserID) (int, error) {
	c := 0
	for _, n := range m.byID {
		if n.RecipientID == recipient && !n.Read {
			c++
		}
	}
	return c, nil
}

func (m *memNotifs) MarkRead(_ context.Context, id domain.NotificationID, recipient domain.UserID) error {
	n, ok := m.byID[id]
	if !ok || n.RecipientID != recipient {
		return domain.ErrNotFound
	}
	n.Read = true
	m.byID[id] = n
	return nil
}

func (m *memNotifs) MarkAllRead(_ context.Context, recipient domain.UserID) (int64, error) {
	var c int64
	for id, n := range m.byID {
		if n.RecipientID == recipient && !n.Read {
			n.Read = true
			m.byID[id] = n
			c++
		}
	}
	return c, nil
}

func (m *memNotifs) DeleteNotification(_ context.Context, id domain.NotificationID, recipient domain.UserID) error {
	n, ok := m.byID[id]
	if !ok || n.RecipientID != recipient {
		return domain.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func newHandler(m *memNotifs) *Handler {
	return &Handler{
		Log:          log.New(io.Discard, "", 0),
		Notifs:       m,
		PollInterval: time.Minute,
	}
}

func do(t *testing.T, fn http.HandlerFunc, method, target string, user *domain.User, id string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, target, nil)
	if user != nil {
		r = r.WithContext(domain.WithUser(r.Context(), *user))
	}
	if id != "" {
		r.SetPathValue("id", id)
	}
	w := httptest.NewRecorder()
	fn(w, r)
	return w
}

var me = domain.User{ID: 7, Login: "dave"}

func TestListOnlyOwnNotifications(t *testing.T) {
	m := newMemNotifs()
	m.add(me.ID, false)
	m.add(me.ID, true)
	m.add(8, false) // чужое

	w := do(t, newHandler(m).List, http.MethodGet, "/api/notifications", &me, "")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data struct {
			Notifications []domain.Notification `json:"notifications"`
			Unread        int                   `json:"unread"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data.Notifications, 2)
	require.Equal(t, 1, env.Data.Unread)
}

func TestListUnauthenticated(t *testing.T) {
	w := do(t, newHandler(newMemNotifs()).List, http.MethodGet, "/api/notifications", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCount(t *testing.T) {
	m := newMemNotifs()
	m.add(me.ID, false)
	m.add(me.ID, false)

	w := do(t, newHandler(m).Count, http.MethodGet, "/api/notifications/count", &me, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":{"unread":2}}`, w.Body.String())
}

func TestMarkRead(t *testing.T) {
	m := newMemNotifs()
	n := m.add(me.ID, false)

	w := do(t, newHandler(m).MarkRead, http.MethodPatch, "/api/notifications/1", &me, "1")
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, m.byID[n.ID].Read)
}

func TestMarkReadForeignIs404(t *testing.T) {
	m := newMemNotifs()
	m.add(8, false)

	w := do(t, newHandler(m).MarkRead, http.MethodPatch, "/api/notifications/1", &me, "1")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.False(t, m.byID[1].Read)
}

func TestMarkAllRead(t *testing.T) {
	m := newMemNotifs()
	m.add(me.ID, false)
	m.add(me.ID, false)
	m.add(8, false)

	w := do(t, newHandler(m).MarkAllRead, http.MethodPatch, "/api/notifications", &me, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"response":{"marked":2}}`, w.Body.String())
	require.False(t, m.byID[3].Read) // чужое не тронуто
}

func TestDeleteForeignIs404(t *testing.T) {
	m := newMemNotifs()
	m.add(8, false)

	w := do(t, newHandler(m).Delete, http.MethodDelete, "/api/notifications/1", &me, "1")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Len(t, m.byID, 1)
}

func TestClientConfig(t *testing.T) {
	w := do(t, newHandler(newMemNotifs()).ClientConfig, http.MethodGet, "/api/notifications/config", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"data":{"ws_path":"/ws","poll_interval_seconds":60}}`, w.Body.String())
}
