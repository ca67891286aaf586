package domain

import (
	"fmt"
	"strconv"
	"time"
)

// Теги инвалидации — крупные группы запросов. Любая мутация, влияющая
// на класс выборок, сбрасывает весь класс одним вызовом.
const (
	TagProjectsList     = "projects:list"
	TagProjectsTrending = "projects:trending"
	TagProjectsFeatured = "projects:featured"
)

// TagCache — процессный кэш с TTL и групповой инвалидацией по тегам.
// Кэш — только оптимизация: любой путь обязан оставаться корректным,
// если каждый Get промахивается. Операции ошибок не возвращают.
type TagCache interface {
	Set(key string, val []byte, ttl time.Duration, tags ...string)
	Get(key string) ([]byte, bool)
	Delete(key string)
	InvalidateTag(tag string) int
	Clear()
}

// NoExpiry — явное «жить вечно» для Set.
const NoExpiry time.Duration = -1

// Ключи кэша — единое место, чтобы не расползались по коду.
// Ключ списка кодирует ВСЁ пространство параметров запроса, включая
// смотрящего пользователя (LikedByViewer персонален).
func CacheKeyProjectsList(page, limit int, tag, search string, sort ListSort, viewer UserID) string {
	return fmt.Sprintf("projects:list:page:%d:limit:%d:tag:%s:search:%s:sort:%s:currentUser:%s",
		page, limit, orNone(tag), orNone(search), sort, viewerKey(viewer))
}

func CacheKeyProjectsFeatured(limit int, viewer UserID) string {
	return fmt.Sprintf("projects:featured:limit:%d:currentUser:%s", limit, viewerKey(viewer))
}

func CacheKeyProjectsTrending(limit int, viewer UserID) string {
	return fmt.Sprintf("projects:trending:limit:%d:currentUser:%s", limit, viewerKey(viewer))
}

func viewerKey(viewer UserID) string {
	if viewer == 0 {
		return "none"
	}
	return strconv.FormatInt(viewer, 10)
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
