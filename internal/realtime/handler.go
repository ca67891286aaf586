package realtime

import (
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handler обслуживает upgrade-эндпоинт GET /ws.
type Handler struct {
	Log         *log.Logger
	Hub         *Hub
	MaxMsgBytes int64
	CheckOrigin func(r *http.Request) bool
}

// Serve апгрейдит соединение и крутит цикл чтения до закрытия или
// ошибки; в обоих случаях соединение безусловно снимается с учёта.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	up := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.CheckOrigin,
	}
	ws, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade сам пишет ответ клиенту
		h.Log.Printf("upgrade failed: %v", err)
		return
	}
	if h.MaxMsgBytes > 0 {
		ws.SetReadLimit(h.MaxMsgBytes)
	}

	conn := newConn(ws)
	h.Hub.Register(conn)
	defer func() {
		h.Hub.Deregister(conn)
		_ = conn.Close()
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Log.Printf("read: %v", err)
			}
			return
		}
		h.Hub.handleMessage(conn, data)
	}
}
