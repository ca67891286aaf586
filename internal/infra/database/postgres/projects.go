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

func (r *PGRepo) CreateProject(ctx context.Context, p domain.Project) (domain.Project, error) {
	q := r.qb().Insert(fmt.Sprintf("%s.projects", r.schema)).
		Columns("author_id", "title", "description", "repo_url", "site_url").
		Values(p.AuthorID, p.Title, p.Description, p.RepoURL, p.SiteURL).
		Suffix("RETURNING id, author_id, title, description, repo_url, site_url, image_key, featured, created_at, updated_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("CreateProject", sqlStr, args)

	start := time.Now()
	row := r.pool.QueryRow(ctx, sqlStr, args...)
	var out domain.Project
	if err := row.Scan(
		&out.ID, &out.AuthorID, &out.Title, &out.Description, &out.RepoURL, &out.SiteURL,
		&out.ImageKey, &out.Featured, &out.CreatedAt, &out.UpdatedAt,
	); err != nil {
		r.logger.Printf("CreateProject scan error after %s: %v", time.Since(start), err)
		return domain.Project{}, err
	}

	// теги — отдельной вставкой
	if len(p.Tags) > 0 {
		qt := r.qb().Insert(fmt.Sprintf("%s.project_tags", r.schema)).Columns("project_id", "tag")
		for _, t := range p.Tags {
			qt = qt.Values(out.ID, t)
		}
		qt = qt.Suffix("ON CONFLICT DO NOTHING")
		sqlStr, args, _ = qt.ToSql()
		r.logSQL("CreateProject.tags", sqlStr, args)
		if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
			r.logger.Printf("CreateProject.tags exec error: %v", err)
			return domain.Project{}, err
		}
		out.Tags = p.Tags
	}
	r.logDone("CreateProject", start, fmt.Sprintf("id=%d title=%q", out.ID, out.Title))
	return out, nil
}

// projectSelect собирает выборку проекта с агрегатами и контекстом
// смотрящего (viewer == 0 — аноним, liked всегда FALSE).
func (r *PGRepo) projectSelect(viewer domain.UserID) sq.SelectBuilder {
	projects := fmt.Sprintf("%s.projects p", r.schema)
	users := fmt.Sprintf("%s.users u", r.schema)
	likes := fmt.Sprintf("%s.project_likes", r.schema)
	comments := fmt.Sprintf("%s.comments", r.schema)
	tags := fmt.Sprintf("%s.project_tags", r.schema)

	sb := r.qb().Select(
		"p.id", "p.author_id", "u.login", "p.title", "p.description",
		"p.repo_url", "p.site_url", "p.image_key", "p.featured",
		"p.created_at", "p.updated_at",
	).From(projects).
		Join(users + " ON u.id = p.author_id").
		Column("(SELECT count(*) FROM " + likes + " l WHERE l.project_id = p.id) AS likes_count").
		Column("(SELECT count(*) FROM " + comments + " c WHERE c.project_id = p.id) AS comments_count").
		Column("(SELECT coalesce(array_agg(t.tag ORDER BY t.tag), '{}') FROM " + tags + " t WHERE t.project_id = p.id) AS tags")

	if viewer != 0 {
		sb = sb.Column(sq.Expr("EXISTS (SELECT 1 FROM "+likes+" l WHERE l.project_id = p.id AND l.user_id = ?) AS liked", viewer))
	} else {
		sb = sb.Column("FALSE AS liked")
	}
	return sb
}

func scanProject(row pgx.Row) (domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.AuthorLogin, &p.Title, &p.Description,
		&p.RepoURL, &p.SiteURL, &p.ImageKey, &p.Featured,
		&p.CreatedAt, &p.UpdatedAt,
		&p.LikesCount, &p.CommentsCount, &p.Tags, &p.LikedByViewer,
	)
	return p, err
}

func (r *PGRepo) ProjectByID(ctx context.Context, id domain.ProjectID, viewer domain.UserID) (domain.Project, error) {
	sb := r.projectSelect(viewer).Where(sq.Eq{"p.id": id})

	sqlStr, args, _ := sb.ToSql()
	r.logSQL("ProjectByID", sqlStr, args)

	start := time.Now()
	p, err := scanProject(r.pool.QueryRow(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Project{}, domain.ErrNotFound
		}
		r.logger.Printf("ProjectByID scan error after %s: %v", time.Since(start), err)
		return domain.Project{}, err
	}
	r.logDone("ProjectByID", start, fmt.Sprintf("id=%d", p.ID))
	return p, nil
}

func (r *PGRepo) ProjectsList(ctx context.Context, f domain.ProjectFilter, viewer domain.UserID) ([]domain.Project, int, error) {
	tags := fmt.Sprintf("%s.project_tags", r.schema)

	sb := r.projectSelect(viewer)
	where := make([]sq.Sqlizer, 0, 2)
	if f.Tag != "" {
		where = append(where, sq.Expr("EXISTS (SELECT 1 FROM "+tags+" t WHERE t.project_id = p.id AND t.tag = ?)", f.Tag))
	}
	if f.Search != "" {
		pat := "%" + f.Search + "%"
		where = append(where, sq.Or{sq.ILike{"p.title": pat}, sq.ILike{"p.description": pat}})
	}
	for _, w := range where {
		sb = sb.Where(w)
	}

	switch f.Sort {
	case domain.SortByPopular:
		sb = sb.OrderBy("likes_count DESC", "p.created_at DESC")
	case domain.SortByComments:
		sb = sb.OrderBy("comments_count DESC", "p.created_at DESC")
	default:
		sb = sb.OrderBy("p.created_at DESC")
	}

	limit := f.Limit
	if limit <= 0 || limit > 100 {
		limit = 12
	}
	page := f.Page
	if page < 1 {
		page = 1
	}
	sb = sb.Limit(uint64(limit)).Offset(uint64((page - 1) * limit))

	sqlStr, args, _ := sb.ToSql()
	r.logSQL("ProjectsList", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("ProjectsList query error after %s: %v", time.Since(start), err)
		return nil, 0, err
	}
	defer rows.Close()

	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			r.logger.Printf("ProjectsList scan error: %v", err)
			return nil, 0, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("ProjectsList rows error: %v", err)
		return nil, 0, err
	}

	// общее число под те же фильтры — для пагинации
	cb := r.qb().Select("count(*)").From(fmt.Sprintf("%s.projects p", r.schema))
	for _, w := range where {
		cb = cb.Where(w)
	}
	sqlStr, args, _ = cb.ToSql()
	r.logSQL("ProjectsList.count", sqlStr, args)

	var total int
	if err := r.pool.QueryRow(ctx, sqlStr, args...).Scan(&total); err != nil {
		r.logger.Printf("ProjectsList count error: %v", err)
		return nil, 0, err
	}
	r.logDone("ProjectsList", start, fmt.Sprintf("count=%d total=%d", len(res), total))
	return res, total, nil
}

func (r *PGRepo) FeaturedProjects(ctx context.Context, limit int, viewer domain.UserID) ([]domain.Project, error) {
	sb := r.projectSelect(viewer).
		Where(sq.Eq{"p.featured": true}).
		OrderBy("p.updated_at DESC")
	return r.listProjects(ctx, "FeaturedProjects", sb, limit)
}

// TrendingProjects — по лайкам за последние 7 дней.
func (r *PGRepo) TrendingProjects(ctx context.Context, limit int, viewer domain.UserID) ([]domain.Project, error) {
	likes := fmt.Sprintf("%s.project_likes", r.schema)
	sb := r.projectSelect(viewer).
		Column("(SELECT count(*) FROM "+likes+" l WHERE l.project_id = p.id AND l.created_at > now() - interval '7 days') AS recent_likes").
		OrderBy("recent_likes DESC", "p.created_at DESC")

	if limit <= 0 || limit > 100 {
		limit = 6
	}
	sb = sb.Limit(uint64(limit))

	sqlStr, args, _ := sb.ToSql()
	r.logSQL("TrendingProjects", sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("TrendingProjects query error after %s: %v", time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.Project
	for rows.Next() {
		var p domain.Project
		var recentLikes int
		if err := rows.Scan(
			&p.ID, &p.AuthorID, &p.AuthorLogin, &p.Title, &p.Description,
			&p.RepoURL, &p.SiteURL, &p.ImageKey, &p.Featured,
			&p.CreatedAt, &p.UpdatedAt,
			&p.LikesCount, &p.CommentsCount, &p.Tags, &p.LikedByViewer,
			&recentLikes,
		); err != nil {
			r.logger.Printf("TrendingProjects scan error: %v", err)
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logDone("TrendingProjects", start, fmt.Sprintf("count=%d", len(res)))
	return res, nil
}

func (r *PGRepo) listProjects(ctx context.Context, op string, sb sq.SelectBuilder, limit int) ([]domain.Project, error) {
	if limit <= 0 || limit > 100 {
		limit = 6
	}
	sb = sb.Limit(uint64(limit))

	sqlStr, args, _ := sb.ToSql()
	r.logSQL(op, sqlStr, args)

	start := time.Now()
	rows, err := r.pool.Query(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("%s query error after %s: %v", op, time.Since(start), err)
		return nil, err
	}
	defer rows.Close()

	var res []domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			r.logger.Printf("%s scan error: %v", op, err)
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	r.logDone(op, start, fmt.Sprintf("count=%d", len(res)))
	return res, nil
}

// LikeProject; false — лайк уже стоял.
func (r *PGRepo) LikeProject(ctx context.Context, id domain.ProjectID, user domain.UserID) (bool, error) {
	q := r.qb().Insert(fmt.Sprintf("%s.project_likes", r.schema)).
		Columns("project_id", "user_id").
		Values(id, user).
		Suffix("ON CONFLICT DO NOTHING")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("LikeProject", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("LikeProject exec error after %s: %v", time.Since(start), err)
		return false, err
	}
	r.logDone("LikeProject", start, fmt.Sprintf("project=%d user=%d rows=%d", id, user, tag.RowsAffected()))
	return tag.RowsAffected() > 0, nil
}

// UnlikeProject; false — лайка не было.
func (r *PGRepo) UnlikeProject(ctx context.Context, id domain.ProjectID, user domain.UserID) (bool, error) {
	q := r.qb().Delete(fmt.Sprintf("%s.project_likes", r.schema)).
		Where(sq.And{sq.Eq{"project_id": id}, sq.Eq{"user_id": user}})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("UnlikeProject", sqlStr, args)

	start := time.Now()
	tag, err := r.pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		r.logger.Printf("UnlikeProject exec error after %s: %v", time.Since(start), err)
		return false, err
	}
	r.logDone("UnlikeProject", start, fmt.Sprintf("project=%d user=%d rows=%d", id, user, tag.RowsAffected()))
	return tag.RowsAffected() > 0, nil
}

func (r *PGRepo) SetProjectImage(ctx context.Context, id domain.ProjectID, imageKey string) error {
	q := r.qb().Update(fmt.Sprintf("%s.projects", r.schema)).
		SetMap(map[string]any{
			"image_key":  imageKey,
			"updated_at": sq.Expr("now()"),
		}).
		Where(sq.Eq{"id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("SetProjectImage", sqlStr, args)

	start := time.Now()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.logger.Printf("SetProjectImage exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logDone("SetProjectImage", start, fmt.Sprintf("id=%d", id))
	return nil
}

func (r *PGRepo) SaveEvaluation(ctx context.Context, ev domain.Evaluation) error {
	q := r.qb().Insert(fmt.Sprintf("%s.evaluations", r.schema)).
		Columns("project_id", "summary", "score", "strengths", "weaknesses", "generated_at").
		Values(ev.ProjectID, ev.Summary, ev.Score, ev.Strengths, ev.Weaknesses, ev.GeneratedAt).
		Suffix("ON CONFLICT (project_id) DO UPDATE SET summary = EXCLUDED.summary, score = EXCLUDED.score, strengths = EXCLUDED.strengths, weaknesses = EXCLUDED.weaknesses, generated_at = EXCLUDED.generated_at")

	sqlStr, args, _ := q.ToSql()
	r.logSQL("SaveEvaluation", sqlStr, args)

	start := time.Now()
	if _, err := r.pool.Exec(ctx, sqlStr, args...); err != nil {
		r.logger.Printf("SaveEvaluation exec error after %s: %v", time.Since(start), err)
		return err
	}
	r.logDone("SaveEvaluation", start, fmt.Sprintf("project=%d score=%d", ev.ProjectID, ev.Score))
	return nil
}

func (r *PGRepo) EvaluationByProject(ctx context.Context, id domain.ProjectID) (domain.Evaluation, error) {
	q := r.qb().Select("project_id", "summary", "score", "strengths", "weaknesses", "generated_at").
		From(fmt.Sprintf("%s.evaluations", r.schema)).
		Where(sq.Eq{"project_id": id})

	sqlStr, args, _ := q.ToSql()
	r.logSQL("EvaluationByProject", sqlStr, args)

	start := time.Now()
	var ev domain.Evaluation
	err := r.pool.QueryRow(ctx, sqlStr, args...).
		Scan(&ev.ProjectID, &ev.Summary, &ev.Score, &ev.Strengths, &ev.Weaknesses, &ev.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Evaluation{}, domain.ErrNotFound
		}
		r.logger.Printf("EvaluationByProject scan error after %s: %v", time.Since(start), err)
		return domain.Evaluation{}, err
	}
	r.logDone("EvaluationByProject", start, fmt.Sprintf("project=%d", ev.ProjectID))
	return ev, nil
}
