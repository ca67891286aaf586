package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

func (r *PGRepo) CreateUser(ctx context.Context, login, name string, passHash []byte) (domain.User, error) {
	q := r.qb().Insert(fmt.Sprintf("%s.users", r.schema)).
		Columns("login", "name", "pass_hash").
		Values(login, name, passHash).
		Suffix("RETURNING id, login, name, avatar_url, pass_hash, is_admin, created_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateUser", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Login, &u.Name, &u.AvatarURL, &u.PassHash, &u.IsAdmin, &u.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // занятый login
			return domain.User{}, domain.ErrConflict
		}
		r.logger.Printf("CreateUser scan error after %s: %v", time.Since(start), err)
		return domain.User{}, err
	}
	r.logDone("CreateUser", start, fmt.Sprintf("id=%d login=%s", u.ID, u.Login))
	return u, nil
}

func (r *PGRepo) UserByLogin(ctx context.Context, login string) (domain.User, error) {
	return r.userBy(ctx, "UserByLogin", sq.Eq{"login": login})
}

func (r *PGRepo) UserByID(ctx context.Context, id domain.UserID) (domain.User, error) {
	return r.userBy(ctx, "UserByID", sq.Eq{"id": id})
}

func (r *PGRepo) userBy(ctx context.Context, op string, where sq.Eq) (domain.User, error) {
	q := r.qb().Select("id", "login", "name", "avatar_url", "pass_hash", "is_admin", "created_at").
		From(fmt.Sprintf("%s.users", r.schema)).
		Where(where)

	sqlStr, args, _ := q.ToSql()
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var u domain.User
	if err := row.Scan(&u.ID, &u.Login, &u.Name, &u.AvatarURL, &u.PassHash, &u.IsAdmin, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		r.logger.Printf("%s scan error after %s: %v", op, time.Since(start), err)
		return domain.User{}, err
	}
	r.logDone(op, start, fmt.Sprintf("id=%d", u.ID))
	return u, nil
}
