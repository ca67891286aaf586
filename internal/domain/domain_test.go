package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCacheKeyProjectsList(t *testing.T) {
	key := CacheKeyProjectsList(2, 6, "ai", "", SortByNew, 7)
	require.Equal(t, "projects:list:page:2:limit:6:tag:ai:search:none:sort:new:currentUser:7", key)

	// аноним и пустые фильтры кодируются как none
	key = CacheKeyProjectsList(1, 12, "", "", SortByPopular, 0)
	require.Equal(t, "projects:list:page:1:limit:12:tag:none:search:none:sort:popular:currentUser:none", key)
}

func TestCacheKeyViewerSeparation(t *testing.T) {
	anon := CacheKeyProjectsFeatured(6, 0)
	user := CacheKeyProjectsFeatured(6, 7)
	require.NotEqual(t, anon, user)
}

func TestNormalizeSort(t *testing.T) {
	require.Equal(t, SortByNew, NormalizeSort(""))
	require.Equal(t, SortByNew, NormalizeSort("garbage"))
	require.Equal(t, SortByPopular, NormalizeSort("popular"))
	require.Equal(t, SortByComments, NormalizeSort("comments"))
}

func TestNotificationTypeValid(t *testing.T) {
	for _, v := range []NotificationType{
		NotifyLikeProject, NotifyCommentProject, NotifyReplyComment, NotifyShareProject,
	} {
		require.True(t, v.Valid(), string(v))
	}
	require.False(t, NotificationType("").Valid())
	require.False(t, NotificationType("like").Valid())
}

func TestValidation(t *testing.T) {
	require.True(t, ValidLogin("user_01"))
	require.False(t, ValidLogin("ab"))
	require.False(t, ValidLogin("bad login"))

	require.True(t, ValidPassword("Passw0rd"))
	require.False(t, ValidPassword("short1A"))
	require.False(t, ValidPassword("alllowercase1"))

	require.True(t, ValidProjectTitle("  My Project  "))
	require.False(t, ValidProjectTitle("   "))

	require.True(t, ValidCommentBody("nice"))
	require.False(t, ValidCommentBody(" "))
}
