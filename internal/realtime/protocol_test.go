package realtime

import (
	"encoding/json"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAuthMessage(t *testing.T) {
	h := NewHub(log.New(io.Discard, "", 0))
	c := &fakeConn{}
	h.Register(c)

	h.handleMessage(c, []byte(`{"type":"auth","userId":42}`))

	require.Equal(t, 1, h.UserConns(42))
	require.Len(t, c.messages(), 1)
	require.Equal(t, authSuccessMessage{Type: "auth_success", UserID: 42}, c.messages()[0])
}

func TestAuthInvalidUserID(t *testing.T) {
	h := NewHub(log.New(io.Discard, "", 0))
	c := &fakeConn{}
	h.Register(c)

	cases := []string{
		`{"type":"auth"}`,              // userId отсутствует
		`{"type":"auth","userId":0}`,   // не положительный
		`{"type":"auth","userId":-5}`,  // отрицательный
		`{"type":"auth","userId":"x"}`, // не число
	}
	for _, raw := range cases {
		c.sent = nil
		h.handleMessage(c, []byte(raw))
		require.Len(t, c.messages(), 1, "payload: %s", raw)
		require.Equal(t, errorMessage{Type: "auth_error", Message: "Invalid user ID"}, c.messages()[0])
		// соединение остаётся в реестре неаутентифицированным
		require.Equal(t, 1, h.Conns())
	}
}

func TestPingPong(t *testing.T) {
	h := NewHub(log.New(io.Discard, "", 0))
	c := &fakeConn{}
	h.Register(c)

	h.handleMessage(c, []byte(`{"type":"ping"}`))

	require.Len(t, c.messages(), 1)
	pong, ok := c.messages()[0].(pongMessage)
	require.True(t, ok)
	require.Equal(t, "pong", pong.Type)
	// время — валидный ISO-8601/RFC3339
	_, err := time.Parse(time.RFC3339, pong.Time)
	require.NoError(t, err)
}

func TestMalformedMessage(t *testing.T) {
	h := NewHub(log.New(io.Discard, "", 0))
	c := &fakeConn{}
	h.Register(c)

	h.handleMessage(c, []byte(`not json at all`))

	// ровно один ответ-ошибка, соединение живо
	require.Len(t, c.messages(), 1)
	require.Equal(t, errorMessage{Type: "error", Message: "Invalid message format"}, c.messages()[0])
	require.Equal(t, 1, h.Conns())
}

func TestUnknownTypeIgnored(t *testing.T) {
	h := NewHub(log.New(io.Discard, "", 0))
	c := &fakeConn{}
	h.Register(c)

	h.handleMessage(c, []byte(`{"type":"subscribe_topics","topics":["x"]}`))

	require.Empty(t, c.messages())
}

func TestWireShapes(t *testing.T) {
	// формат фиксирован — клиенты разбирают его побайтово
	b, err := json.Marshal(authSuccessMessage{Type: "auth_success", UserID: 42})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"auth_success","userId":42}`, string(b))

	b, err = json.Marshal(errorMessage{Type: "auth_error", Message: "Invalid user ID"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"auth_error","message":"Invalid user ID"}`, string(b))

	b, err = json.Marshal(errorMessage{Type: "error", Message: "Invalid message format"})
	require.NoError(t, err)
	require.JSONEq(t, `{"type":"error","message":"Invalid message format"}`, string(b))
}
