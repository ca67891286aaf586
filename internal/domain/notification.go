package domain

import "time"

// Типы уведомлений — закрытый набор, а не произвольные строки.
type NotificationType string

const (
	NotifyLikeProject    NotificationType = "like_project"
	NotifyCommentProject NotificationType = "comment_project"
	NotifyReplyComment   NotificationType = "reply_comment"
	NotifyShareProject   NotificationType = "share_project"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotifyLikeProject, NotifyCommentProject, NotifyReplyComment, NotifyShareProject:
		return true
	}
	return false
}

// Уведомление. Durable-запись в БД — источник правды; realtime-пуш
// поверх неё это только подсказка клиенту перечитать список.
type Notification struct {
	ID          NotificationID   `json:"id"`
	RecipientID UserID           `json:"recipient_id"`
	ActorID     UserID           `json:"actor_id"`
	ActorLogin  string           `json:"actor_login,omitempty"`
	Type        NotificationType `json:"type"`
	ProjectID   *ProjectID       `json:"project_id,omitempty"`
	CommentID   *CommentID       `json:"comment_id,omitempty"`
	Read        bool             `json:"read"`
	CreatedAt   time.Time        `json:"created_at"`
}

// NotificationDelivery — порт realtime-доставки. Реализация — hub
// WebSocket-соединений; передаётся хендлерам явно, без глобального
// состояния. Доставка best-effort: нет живого соединения — молча no-op.
type NotificationDelivery interface {
	Deliver(userID UserID, n Notification)
}
