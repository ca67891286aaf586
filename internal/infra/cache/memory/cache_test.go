package memory

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return New(5*time.Minute, log.New(io.Discard, "", 0))
}

func TestSetGet(t *testing.T) {
	c := newTestCache(t)

	c.Set("p:list:1", []byte(`{"count":5}`), time.Second, domain.TagProjectsList)
	got, ok := c.Get("p:list:1")
	require.True(t, ok)
	require.Equal(t, []byte(`{"count":5}`), got)

	_, ok = c.Get("absent")
	require.False(t, ok)
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t)

	c.Set("k", []byte("v"), 30*time.Millisecond)
	_, ok := c.Get("k")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)
	_, ok = c.Get("k")
	require.False(t, ok)
	// ленивое удаление вычищает запись целиком
	require.Equal(t, 0, c.Len())
}

func TestExpiryCleansTagIndex(t *testing.T) {
	c := newTestCache(t)

	c.Set("k", []byte("v"), 20*time.Millisecond, "grp")
	require.Equal(t, 1, c.TagLen("grp"))

	time.Sleep(40 * time.Millisecond)
	_, ok := c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.TagLen("grp"))
}

func TestNoExpiry(t *testing.T) {
	c := New(time.Millisecond, log.New(io.Discard, "", 0))

	c.Set("forever", []byte("v"), domain.NoExpiry)
	time.Sleep(10 * time.Millisecond)
	_, ok := c.Get("forever")
	require.True(t, ok)
}

func TestDefaultTTL(t *testing.T) {
	// defaultTTL заведомо больше длительности теста
	c := newTestCache(t)

	c.Set("k", []byte("v"), 0)
	_, ok := c.Get("k")
	require.True(t, ok)
}

func TestInvalidateTag(t *testing.T) {
	c := newTestCache(t)

	c.Set("a", []byte("1"), time.Minute, domain.TagProjectsList)
	c.Set("b", []byte("2"), time.Minute, domain.TagProjectsList)
	c.Set("c", []byte("3"), time.Minute, domain.TagProjectsTrending)

	n := c.InvalidateTag(domain.TagProjectsList)
	require.Equal(t, 2, n)

	_, ok := c.Get("a")
	require.False(t, ok)
	_, ok = c.Get("b")
	require.False(t, ok)

	// изоляция тегов: c живёт
	got, ok := c.Get("c")
	require.True(t, ok)
	require.Equal(t, []byte("3"), got)

	// идемпотентность
	require.Equal(t, 0, c.InvalidateTag(domain.TagProjectsList))
}

func TestOverwriteReplacesTags(t *testing.T) {
	c := newTestCache(t)

	c.Set("k", []byte("v1"), time.Minute, "tagA")
	c.Set("k", []byte("v2"), time.Minute, "tagB")

	// тег A больше не связан с k — инвалидация A не трогает его
	require.Equal(t, 0, c.InvalidateTag("tagA"))
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, []byte("v2"), got)
	require.Equal(t, 0, c.TagLen("tagA"))

	require.Equal(t, 1, c.InvalidateTag("tagB"))
	_, ok = c.Get("k")
	require.False(t, ok)
}

func TestDeleteIdempotent(t *testing.T) {
	c := newTestCache(t)

	c.Set("k", []byte("v"), time.Minute, "grp")
	c.Delete("k")
	c.Delete("k") // повторное удаление — no-op

	_, ok := c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.TagLen("grp"))
}

func TestMultiTagEntry(t *testing.T) {
	c := newTestCache(t)

	c.Set("k", []byte("v"), time.Minute, domain.TagProjectsList, domain.TagProjectsFeatured)

	// удаление по одному тегу вычищает ключ и из второго
	require.Equal(t, 1, c.InvalidateTag(domain.TagProjectsFeatured))
	require.Equal(t, 0, c.TagLen(domain.TagProjectsList))
	_, ok := c.Get("k")
	require.False(t, ok)
}

func TestClear(t *testing.T) {
	c := newTestCache(t)

	c.Set("a", []byte("1"), time.Minute, "grp")
	c.Set("b", []byte("2"), domain.NoExpiry)
	c.Clear()

	require.Equal(t, 0, c.Len())
	require.Equal(t, 0, c.TagLen("grp"))
	_, ok := c.Get("a")
	require.False(t, ok)
}

func TestScenarioListInvalidation(t *testing.T) {
	c := newTestCache(t)

	c.Set("p:list:1", []byte(`{"count":5}`), time.Second, domain.TagProjectsList)
	got, ok := c.Get("p:list:1")
	require.True(t, ok)
	require.Equal(t, []byte(`{"count":5}`), got)

	c.InvalidateTag(domain.TagProjectsList)
	_, ok = c.Get("p:list:1")
	require.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	c := newTestCache(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			c.Set("k", []byte("v"), time.Minute, domain.TagProjectsList)
			c.InvalidateTag(domain.TagProjectsList)
		}
	}()
	for i := 0; i < 500; i++ {
		c.Get("k")
		c.Delete("k")
	}
	<-done
}
