package domain

import (
	"context"
)

// Сортировки ленты проектов
type ListSort string

const (
	SortByNew      ListSort = "new"
	SortByPopular  ListSort = "popular"
	SortByComments ListSort = "comments"
)

func NormalizeSort(s string) ListSort {
	switch ListSort(s) {
	case SortByPopular, SortByComments:
		return ListSort(s)
	default:
		return SortByNew
	}
}

// Фильтры и пагинация ленты
type ProjectFilter struct {
	Page   int
	Limit  int
	Tag    string // фильтр по тегу проекта
	Search string // подстрока в названии/описании
	Sort   ListSort
}

type UsersRepo interface {
	Close()
	Ping(context.Context) error
	CreateUser(ctx context.Context, login, name string, passHash []byte) (User, error)
	UserByLogin(ctx context.Context, login string) (User, error)
	UserByID(ctx context.Context, id UserID) (User, error)
}

type ProjectsRepo interface {
	CreateProject(ctx context.Context, p Project) (Project, error)
	// viewer == 0 — анонимный запрос, LikedByViewer всегда false
	ProjectByID(ctx context.Context, id ProjectID, viewer UserID) (Project, error)
	ProjectsList(ctx context.Context, f ProjectFilter, viewer UserID) ([]Project, int, error)
	FeaturedProjects(ctx context.Context, limit int, viewer UserID) ([]Project, error)
	TrendingProjects(ctx context.Context, limit int, viewer UserID) ([]Project, error)

	// Возвращают false, если состояние уже было таким (повторный лайк/снятие)
	LikeProject(ctx context.Context, id ProjectID, user UserID) (bool, error)
	UnlikeProject(ctx context.Context, id ProjectID, user UserID) (bool, error)

	SetProjectImage(ctx context.Context, id ProjectID, imageKey string) error
	SaveEvaluation(ctx context.Context, ev Evaluation) error
	EvaluationByProject(ctx context.Context, id ProjectID) (Evaluation, error)
}

type CommentsRepo interface {
	CreateComment(ctx context.Context, c Comment) (Comment, error)
	CommentByID(ctx context.Context, id CommentID) (Comment, error)
	ProjectComments(ctx context.Context, id ProjectID) ([]Comment, error)
}

type NotificationsRepo interface {
	CreateNotification(ctx context.Context, n Notification) (Notification, error)
	NotificationsList(ctx context.Context, recipient UserID, limit, offset int) ([]Notification, error)
	UnreadCount(ctx context.Context, recipient UserID) (int, error)
	// Операции по id проверяют принадлежность recipient — чужие записи не видны
	MarkRead(ctx context.Context, id NotificationID, recipient UserID) error
	MarkAllRead(ctx context.Context, recipient UserID) (int64, error)
	DeleteNotification(ctx context.Context, id NotificationID, recipient UserID) error
}
