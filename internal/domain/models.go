package domain

import (
	"time"
)

// Базовые идентификаторы (bigserial в БД)
type UserID = int64
type ProjectID = int64
type CommentID = int64
type NotificationID = int64

// Пользователь
type User struct {
	ID        UserID    `json:"id"`
	Login     string    `json:"login"`
	Name      string    `json:"name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	PassHash  []byte    `json:"-"` // никогда не отдаём наружу
	IsAdmin   bool      `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Проект — основная сущность ленты
type Project struct {
	ID          ProjectID `json:"id"`
	AuthorID    UserID    `json:"author_id"`
	AuthorLogin string    `json:"author_login,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	RepoURL     string    `json:"repo_url,omitempty"`
	SiteURL     string    `json:"site_url,omitempty"`
	// Ключ скриншота в S3 (заполняется превью-сервисом, может быть пустым)
	ImageKey string   `json:"-"`
	ImageURL string   `json:"image_url,omitempty"`
	Tags     []string `json:"tags"`
	Featured bool     `json:"featured"`

	// Агрегаты для выдачи списков
	LikesCount    int `json:"likes_count"`
	CommentsCount int `json:"comments_count"`

	// Контекст смотрящего пользователя. Ключ кэша списка обязан включать
	// viewer id, иначе это поле утечёт между пользователями.
	LikedByViewer bool `json:"liked_by_viewer"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Комментарий к проекту; ParentID != nil — ответ на другой комментарий
type Comment struct {
	ID          CommentID  `json:"id"`
	ProjectID   ProjectID  `json:"project_id"`
	AuthorID    UserID     `json:"author_id"`
	AuthorLogin string     `json:"author_login,omitempty"`
	ParentID    *CommentID `json:"parent_id,omitempty"`
	Body        string     `json:"body"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Результат внешнего AI-сервиса оценки проекта
type Evaluation struct {
	ProjectID   ProjectID `json:"project_id"`
	Summary     string    `json:"summary"`
	Score       int       `json:"score"`
	Strengths   []string  `json:"strengths"`
	Weaknesses  []string  `json:"weaknesses"`
	GeneratedAt time.Time `json:"generated_at"`
}
