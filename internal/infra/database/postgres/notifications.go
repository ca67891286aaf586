package postgres

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

func (r *PGRepo) CreateNotification(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	q := r.qb().Insert(fmt.Sprintf("%s.notifications", r.schema)).
		Columns("recipient_id", "actor_id", "type", "project_id", "comment_id").
		Values(n.RecipientID, n.ActorID, string(n.Type), n.ProjectID, n.CommentID).
		Suffix("RETURNING id, recipient_id, actor_id, type, project_id, comment_id, read, created_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateNotification", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var out domain.Notification
	if err := row.Scan(
		&out.ID, &out.RecipientID, &out.ActorID, &out.Type,
		&out.ProjectID, &out.CommentID, &out.Read, &out.CreatedAt,
	); err != nil {
		r.logger.Printf("CreateNotification scan error after %s: %v", time.Since(start), err)
		return domain.Notification{}, err
	}
	r.logDone("CreateNotification", start, fmt.Sprintf("id=%d recipient=%d type=%s", out.ID, out.RecipientID, out.Type))
	return out, nil
}

func (r *PGRepo) NotificationsList(ctx context.Context, recipient domain.UserID, limit, offset int) ([]domain.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	notifications := fmt.Sprintf("%s.notifications n", r.schema)
	users := fmt.Sprintf("%s.users u", r.schema)
	q := r.qb().Select("n.id", "n.recipient_id", "n.actor_id", "u.login", "n.type", "n.project_id", "n.comment_id", "n.read", "n.created_at").
		From(notifications).
		Join(users + " ON u.id = n.actor_id").
		Where(sq.Eq{"n.recipient_id": recipient}).
		OrderBy("n.created_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sqlStr, args, _ := q.ToSql()
	r.logSQL("NotificationsList", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("NotificationsList query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(
			&n.ID, &n.RecipientID, &n.ActorID, &n.ActorLogin, &n.Type,
			&n.ProjectID, &n.CommentID, &n.Read, &n.CreatedAt,
		); err != nil {
			r.logger.Printf("NotificationsList scan error: %v", err)
			return nil, err
		}
		res = append(res, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logDone("NotificationsList", start, fmt.Sprintf("recipient=%d count=%d", recipient, len(res)))
	return res, nil
}

func (r *PGRepo) UnreadCount(ctx context.Context, recipient domain.UserID) (int, error) {
	q := r.qb().Select("count(*)").
		From(fmt.Sprintf("%s.notifications", r.schema)).
		Where(sq.Eq{"recipient_id": recipient, "read": false})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UnreadCount", sqlStr, args)

	start := time.Now()
	var n int
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&n); err != nil {
		r.logger.Printf("UnreadCount scan error after %s: %v", time.Since(start), err)
		return 0, err
	}
	r.logDone("UnreadCount", start, fmt.Sprintf("recipient=%d unread=%d", recipient, n))
	return n, nil
}

// MarkRead помечает прочитанным только запись самого recipient —
// чужой id даёт not_found, не forbidden (не раскрываем существование).
func (r *PGRepo) MarkRead(ctx context.Context, id domain.NotificationID, recipient domain.UserID) error {
	q := r.qb().Update(fmt.Sprintf("%s.notifications", r.schema)).
		Set("read", true).
		Where(sq.Eq{"id": id, "recipient_id": recipient})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("MarkRead", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("MarkRead exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logDone("MarkRead", start, fmt.Sprintf("id=%d", id))
	return nil
}

func (r *PGRepo) MarkAllRead(ctx context.Context, recipient domain.UserID) (int64, error) {
	q := r.qb().Update(fmt.Sprintf("%s.notifications", r.schema)).
		Set("read", true).
		Where(sq.Eq{"recipient_id": recipient, "read": false})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("MarkAllRead", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("MarkAllRead exec error after %s: %v", time.Since(start), err)
		return 0, err
	}
	r.logDone("MarkAllRead", start, fmt.Sprintf("recipient=%d rows=%d", recipient, tag.RowsAffected()))
	return tag.RowsAffected(), nil
}

func (r *PGRepo) DeleteNotification(ctx context.Context, id domain.NotificationID, recipient domain.UserID) error {
	q := r.qb().Delete(fmt.Sprintf("%s.notifications", r.schema)).
		Where(sq.Eq{"id": id, "recipient_id": recipient})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("DeleteNotification", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("DeleteNotification exec error after %s: %v", time.Since(start), err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	r.logDone("DeleteNotification", start, fmt.Sprintf("id=%d", id))
	return nil
}
