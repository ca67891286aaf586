package realtime

import (
	"encoding/json"
	"time"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

// Проводной протокол канала. Формат фиксирован — клиенты на него
// завязаны побайтово, см. тесты.
const (
	msgAuth         = "auth"
	msgAuthSuccess  = "auth_success"
	msgAuthError    = "auth_error"
	msgPing         = "ping"
	msgPong         = "pong"
	msgNotification = "notification"
	msgError        = "error"
)

type inbound struct {
	Type   string          `json:"type"`
	UserID json.RawMessage `json:"userId,omitempty"`
}

type authSuccessMessage struct {
	Type   string        `json:"type"`
	UserID domain.UserID `json:"userId"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type pongMessage struct {
	Type string `json:"type"`
	Time string `json:"time"`
}

type pushMessage struct {
	Type string              `json:"type"`
	Data domain.Notification `json:"data"`
}

// handleMessage обрабатывает одно входящее сообщение и пишет ответ в c.
// Соединение никогда не закрывается отсюда: мусор на входе — это ответ
// с ошибкой, а не обрыв. Неизвестные типы молча пропускаются, чтобы
// старый сервер переживал новые типы клиента.
func (h *Hub) handleMessage(c Pusher, data []byte) {
	var m inbound
	if err := json.Unmarshal(data, &m); err != nil {
		_ = c.Push(errorMessage{Type: msgError, Message: "Invalid message format"})
		return
	}

	switch m.Type {
	case msgAuth:
		userID, ok := parseUserID(m.UserID)
		if !ok {
			_ = c.Push(errorMessage{Type: msgAuthError, Message: "Invalid user ID"})
			return
		}
		h.Authenticate(c, userID)
		_ = c.Push(authSuccessMessage{Type: msgAuthSuccess, UserID: userID})
	case msgPing:
		_ = c.Push(pongMessage{Type: msgPong, Time: time.Now().UTC().Format(time.RFC3339)})
	default:
		// forward-compatible: не отвечаем
	}
}

func parseUserID(raw json.RawMessage) (domain.UserID, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var id domain.UserID
	if err := json.Unmarshal(raw, &id); err != nil {
		return 0, false
	}
	if id <= 0 {
		return 0, false
	}
	return id, true
}
