package memory

import (
	"log"
	"sync"
	"time"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

// Процессный кэш с TTL и тегами. Истечение ленивое: просроченная запись
// удаляется при чтении, фонового свипа нет. Один мьютекс на значения и
// тег-индекс — set/get/delete/invalidate атомарны друг относительно друга.
// Состояние живёт только в этом процессе; в multi-replica деплое у каждой
// реплики свой кэш (осознанное ограничение).
type Cache struct {
	mu         sync.RWMutex
	logger     *log.Logger
	defaultTTL time.Duration

	entries map[string]*entry
	byTag   map[string]map[string]struct{} // tag -> set(key)
}

type entry struct {
	val     []byte
	expires time.Time // zero — живёт вечно
	tags    []string
}

func New(defaultTTL time.Duration, logger *log.Logger) *Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Cache{
		logger:     logger,
		defaultTTL: defaultTTL,
		entries:    make(map[string]*entry),
		byTag:      make(map[string]map[string]struct{}),
	}
}

var _ domain.TagCache = (*Cache)(nil)

// Set сохраняет значение. ttl == 0 — TTL по умолчанию,
// ttl == domain.NoExpiry — без истечения. Перезапись ключа полностью
// заменяет его теги: старые связи в индексе снимаются, не сливаются.
func (c *Cache) Set(key string, val []byte, ttl time.Duration, tags ...string) {
	var expires time.Time
	switch {
	case ttl == domain.NoExpiry:
		// zero time — вечная запись
	case ttl <= 0:
		expires = time.Now().Add(c.defaultTTL)
	default:
		expires = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[key]; ok {
		c.untagLocked(key, old.tags)
	}
	c.entries[key] = &entry{val: val, expires: expires, tags: tags}
	for _, t := range tags {
		set, ok := c.byTag[t]
		if !ok {
			set = make(map[string]struct{})
			c.byTag[t] = set
		}
		set[key] = struct{}{}
	}
	c.logger.Printf("SET %q (%d bytes, tags=%v)", key, len(val), tags)
}

// Get возвращает значение, если оно есть и не истекло. Просроченная
// запись удаляется вместе со связями в тег-индексе. Промах — нормальный
// исход, не ошибка.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.logger.Printf("GET %q: miss", key)
		return nil, false
	}
	if !e.expires.IsZero() && time.Now().After(e.expires) {
		c.removeLocked(key, e)
		c.logger.Printf("GET %q: expired", key)
		return nil, false
	}
	c.logger.Printf("GET %q: hit (%d bytes)", key, len(e.val))
	return e.val, true
}

// Delete удаляет запись и её связи в индексе. Идемпотентна.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return
	}
	c.removeLocked(key, e)
	c.logger.Printf("DEL %q", key)
}

// InvalidateTag удаляет все ключи с тегом и сам тег из индекса.
// Возвращает число удалённых ключей; повторный вызов — no-op (0).
func (c *Cache) InvalidateTag(tag string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	set, ok := c.byTag[tag]
	if !ok {
		c.logger.Printf("INVALIDATE %q: 0 keys", tag)
		return 0
	}
	n := 0
	for key := range set {
		if e, ok := c.entries[key]; ok {
			c.removeLocked(key, e)
			n++
		}
	}
	// removeLocked уже вычистил tag при удалении последнего ключа,
	// но если индекс был пуст — страхуемся
	delete(c.byTag, tag)
	c.logger.Printf("INVALIDATE %q: %d keys", tag, n)
	return n
}

// Clear безусловно очищает значения и тег-индекс.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.byTag = make(map[string]map[string]struct{})
	c.logger.Println("CLEAR")
}

// Len — число живых записей (для health/тестов). Просроченные, но ещё
// не вычищенные лениво записи тоже считаются.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// TagLen — число ключей под тегом (для тестов консистентности индекса).
func (c *Cache) TagLen(tag string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byTag[tag])
}

// removeLocked удаляет запись и её связи; вызывается под c.mu.
func (c *Cache) removeLocked(key string, e *entry) {
	delete(c.entries, key)
	c.untagLocked(key, e.tags)
}

func (c *Cache) untagLocked(key string, tags []string) {
	for _, t := range tags {
		set, ok := c.byTag[t]
		if !ok {
			continue
		}
		delete(set, key)
		if len(set) == 0 {
			delete(c.byTag, t)
		}
	}
}
