package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

func (r *PGRepo) CreateComment(ctx context.Context, c domain.Comment) (domain.Comment, error) {
	q := r.qb().Insert(fmt.Sprintf("%s.comments", r.schema)).
		Columns("project_id", "author_id", "parent_id", "body").
		Values(c.ProjectID, c.AuthorID, c.ParentID, c.Body).
		Suffix("RETURNING id, project_id, author_id, parent_id, body, created_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateComment", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var out domain.Comment
	if err := row.Scan(&out.ID, &out.ProjectID, &out.AuthorID, &out.ParentID, &out.Body, &out.CreatedAt); err != nil {
		r.logger.Printf("CreateComment scan error after %s: %v", time.Since(start), err)
		return domain.Comment{}, err
	}
	r.logDone("CreateComment", start, fmt.Sprintf("id=%d project=%d", out.ID, out.ProjectID))
	return out, nil
}

func (r *PGRepo) CommentByID(ctx context.Context, id domain.CommentID) (domain.Comment, error) {
	comments := fmt.Sprintf("%s.comments c", r.schema)
	users := fmt.Sprintf("%s.users u", r.schema)
	q := r.qb().Select("c.id", "c.project_id", "c.author_id", "u.login", "c.parent_id", "c.body", "c.created_at").
		From(comments).
		Join(users + " ON u.id = c.author_id").
		Where(sq.Eq{"c.id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CommentByID", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var c domain.Comment
	if err := row.Scan(&c.ID, &c.ProjectID, &c.AuthorID, &c.AuthorLogin, &c.ParentID, &c.Body, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Comment{}, domain.ErrNotFound
		}
		r.logger.Printf("CommentByID scan error after %s: %v", time.Since(start), err)
		return domain.Comment{}, err
	}
	r.logDone("CommentByID", start, fmt.Sprintf("id=%d", c.ID))
	return c, nil
}

func (r *PGRepo) ProjectComments(ctx context.Context, id domain.ProjectID) ([]domain.Comment, error) {
	comments := fmt.Sprintf("%s.comments c", r.schema)
	users := fmt.Sprintf("%s.users u", r.schema)
	q := r.qb().Select("c.id", "c.project_id", "c.author_id", "u.login", "c.parent_id", "c.body", "c.created_at").
		From(comments).
		Join(users + " ON u.id = c.author_id").
		Where(sq.Eq{"c.project_id": id}).
		OrderBy("c.created_at ASC")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("ProjectComments", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("ProjectComments query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.AuthorID, &c.AuthorLogin, &c.ParentID, &c.Body, &c.CreatedAt); err != nil {
			r.logger.Printf("ProjectComments scan error: %v", err)
			return nil, err
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logDone("ProjectComments", start, fmt.Sprintf("project=%d count=%d", id, len(res)))
	return res, nil
}
