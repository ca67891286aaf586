package realtime

import (
	"log"
	"sync"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

// Pusher — один живой канал к клиенту. Реализация — обёртка над
// WebSocket-соединением (conn.go); в тестах — фейк.
type Pusher interface {
	Push(v any) error
}

// Hub — процессный реестр живых соединений: user id -> множество
// соединений. Один пользователь может держать несколько вкладок или
// устройств, доставка — fan-out по всем. Состояние только в памяти
// этого процесса, ничего не переживает рестарт — durable-записи
// уведомлений живут в БД.
type Hub struct {
	mu  sync.RWMutex
	log *log.Logger

	// 0 — соединение открыто, но ещё не аутентифицировано
	byConn map[Pusher]domain.UserID
	byUser map[domain.UserID]map[Pusher]struct{}
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		log:    logger,
		byConn: make(map[Pusher]domain.UserID),
		byUser: make(map[domain.UserID]map[Pusher]struct{}),
	}
}

var _ domain.NotificationDelivery = (*Hub)(nil)

// Register добавляет открытое неаутентифицированное соединение.
func (h *Hub) Register(c Pusher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.byConn[c] = 0
	h.log.Printf("register: conns=%d", len(h.byConn))
}

// Authenticate связывает соединение с пользователем. Прежние соединения
// того же пользователя не трогаются (мультиустройство). Повторная
// аутентификация того же соединения перепривязывает его.
func (h *Hub) Authenticate(c Pusher, userID domain.UserID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	prev, ok := h.byConn[c]
	if !ok {
		// Deregister успел сработать — соединение уже мертво
		return
	}
	if prev != 0 {
		h.unbindLocked(c, prev)
	}
	h.byConn[c] = userID
	set, ok := h.byUser[userID]
	if !ok {
		set = make(map[Pusher]struct{})
		h.byUser[userID] = set
	}
	set[c] = struct{}{}
	h.log.Printf("authenticate: user=%d conns=%d", userID, len(set))
}

// Deregister убирает соединение из всех структур. Вызывается и при
// закрытии, и при ошибке чтения — очистка симметрична и безусловна.
func (h *Hub) Deregister(c Pusher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	userID, ok := h.byConn[c]
	if !ok {
		return
	}
	delete(h.byConn, c)
	if userID != 0 {
		h.unbindLocked(c, userID)
	}
	h.log.Printf("deregister: user=%d conns=%d", userID, len(h.byConn))
}

// Deliver отправляет событие во все аутентифицированные соединения
// пользователя. Нет соединений — молча no-op: без ретраев и очередей,
// durable-запись в БД остаётся источником правды. Ошибка записи в
// отдельное соединение логируется и не мешает остальным.
func (h *Hub) Deliver(userID domain.UserID, n domain.Notification) {
	h.mu.RLock()
	conns := make([]Pusher, 0, len(h.byUser[userID]))
	for c := range h.byUser[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return
	}
	msg := pushMessage{Type: msgNotification, Data: n}
	for _, c := range conns {
		if err := c.Push(msg); err != nil {
			h.log.Printf("deliver to user=%d failed: %v", userID, err)
		}
	}
}

// UserConns — число живых аутентифицированных соединений пользователя.
func (h *Hub) UserConns(userID domain.UserID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byUser[userID])
}

// Conns — общее число зарегистрированных соединений.
func (h *Hub) Conns() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byConn)
}

func (h *Hub) unbindLocked(c Pusher, userID domain.UserID) {
	set, ok := h.byUser[userID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.byUser, userID)
	}
}
