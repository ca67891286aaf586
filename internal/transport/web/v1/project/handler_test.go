package project

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jnealey88/ctrl-alt-vibe-sub002/internal/domain"
)

// --- фейки ---

type fakeProjects struct {
	projects map[domain.ProjectID]domain.Project
	liked    map[[2]int64]bool

	listCalls int
}

func newFakeProjects(ps ...domain.Project) *fakeProjects {
	f := &fakeProjects{
		projects: map[domain.ProjectID]domain.Project{},
		liked:    map[[2]int64]bool{},
	}
	for _, p := range ps {
		f.projects[p.ID] = p
	}
	return f
}

func (f *fakeProjects) CreateProject(_ context.Context, p domain.Project) (domain.Project, error) {
	p.ID = domain.ProjectID(len(f.projects) + 1)
	p.CreatedAt = time.Now()
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeProjects) ProjectByID(_ context.Context, id domain.ProjectID, _ domain.UserID) (domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return domain.Project{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) ProjectsList(_ context.Context, _ domain.ProjectFilter, _ domain.UserID) ([]domain.Project, int, error) {
	f.listCalls++
	out := make([]domain.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, p)
	}
	return out, len(out), nil
}

func (f *fakeProjects) FeaturedProjects(_ context.Context, _ int, _ domain.UserID) ([]domain.Project, error) {
	f.listCalls++
	return nil, nil
}

func (f *fakeProjects) TrendingProjects(_ context.Context, _ int, _ domain.UserID) ([]domain.Project, error) {
	f.listCalls++
	return nil, nil
}

func (f *fakeProjects) LikeProject(_ context.Context, id domain.ProjectID, u domain.UserID) (bool, error) {
	k := [2]int64{id, u}
	if f.liked[k] {
		return false, nil
	}
	f.liked[k] = true
	return true, nil
}

func (f *fakeProjects) UnlikeProject(_ context.Context, id domain.ProjectID, u domain.UserID) (bool, error) {
	k := [2]int64{id, u}
	if !f.liked[k] {
		return false, nil
	}
	delete(f.liked, k)
	return true, nil
}

func (f *fakeProjects) SetProjectImage(_ context.Context, id domain.ProjectID, key string) error {
	p := f.projects[id]
	p.ImageKey = key
	f.projects[id] = p
	return nil
}

func (f *fakeProjects) SaveEvaluation(_ context.Context, _ domain.Evaluation) error { return nil }

func (f *fakeProjects) EvaluationByProject(_ context.Context, _ domain.ProjectID) (domain.Evaluation, error) {
	return domain.Evaluation{}, domain.ErrNotFound
}

type fakeComments struct {
	byID map[domain.CommentID]domain.Comment
	next domain.CommentID
}

func newFakeComments(cs ...domain.Comment) *fakeComments {
	f := &fakeComments{byID: map[domain.CommentID]domain.Comment{}}
	for _, c := range cs {
		f.byID[c.ID] = c
		if c.ID > f.next {
			f.next = c.ID
		}
	}
	return f
}

func (f *fakeComments) CreateComment(_ context.Context, c domain.Comment) (domain.Comment, error) {
	f.next++
	c.ID = f.next
	c.CreatedAt = time.Now()
	f.byID[c.ID] = c
	return c, nil
}

func (f *fakeComments) CommentByID(_ context.Context, id domain.CommentID) (domain.Comment, error) {
	c, ok := f.byID[id]
	if !ok {
		return domain.Comment{}, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeComments) ProjectComments(_ context.Context, id domain.ProjectID) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, c := range f.byID {
		if c.ProjectID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeNotifs struct {
	mu      sync.Mutex
	created []domain.Notification
	fail    bool
}

func (f *fakeNotifs) CreateNotification(_ context.Context, n domain.Notification) (domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return domain.Notification{}, domain.ErrUnexpected
	}
	n.ID = domain.NotificationID(len(f.created) + 1)
	n.CreatedAt = time.Now()
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotifs) all() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.created...)
}

func (f *fakeNotifs) NotificationsList(_ context.Context, _ domain.UserID, _, _ int) ([]domain.Notification, error) {
	return f.all(), nil
}
func (f *fakeNotifs) UnreadCount(_ context.Context, _ domain.UserID) (int, error) { return 0, nil }
func (f *fakeNotifs) MarkRead(_ context.Context, _ domain.NotificationID, _ domain.UserID) error {
	return nil
}
func (f *fakeNotifs) MarkAllRead(_ context.Context, _ domain.UserID) (int64, error) { return 0, nil }
func (f *fakeNotifs) DeleteNotification(_ context.Context, _ domain.NotificationID, _ domain.UserID) error {
	return nil
}

type fakeDelivery struct {
	mu     sync.Mutex
	pushed []domain.Notification
}

func (f *fakeDelivery) Deliver(_ domain.UserID, n domain.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushed = append(f.pushed, n)
}

func (f *fakeDelivery) all() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Notification(nil), f.pushed...)
}

// fakeCache фиксирует инвалидации тегов поверх рабочего хранилища.
type fakeCache struct {
	data        map[string][]byte
	invalidated []string
}

func newFakeCache() *fakeCache { return &fakeCache{data: map[string][]byte{}} }

func (f *fakeCache) Set(key string, val []byte, _ time.Duration, _ ...string) { f.data[key] = val }
func (f *fakeCache) Get(key string) ([]byte, bool) {
	v, ok := f.data[key]
	return v, ok
}
func (f *fakeCache) Delete(key string) { delete(f.data, key) }
func (f *fakeCache) InvalidateTag(tag string) int {
	f.invalidated = append(f.invalidated, tag)
	f.data = map[string][]byte{}
	return 0
}
func (f *fakeCache) Clear() { f.data = map[string][]byte{}; f.invalidated = nil }

// --- сборка ---

type env struct {
	h        *Handler
	projects *fakeProjects
	comments *fakeComments
	notifs   *fakeNotifs
	delivery *fakeDelivery
	cache    *fakeCache
}

func newEnv(t *testing.T, ps ...domain.Project) *env {
	t.Helper()
	e := &env{
		projects: newFakeProjects(ps...),
		comments: newFakeComments(),
		notifs:   &fakeNotifs{},
		delivery: &fakeDelivery{},
		cache:    newFakeCache(),
	}
	e.h = &Handler{
		Log:      log.New(io.Discard, "", 0),
		Projects: e.projects,
		Comments: e.comments,
		Notifs:   e.notifs,
		Cache:    e.cache,
		Delivery: e.delivery,
		ListTTL:  time.Minute,
	}
	return e
}

func doReq(t *testing.T, fn http.HandlerFunc, method, target string, body string, user *domain.User, path map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, rd)
	if user != nil {
		r = r.WithContext(domain.WithUser(r.Context(), *user))
	}
	for k, v := range path {
		r.SetPathValue(k, v)
	}
	w := httptest.NewRecorder()
	fn(w, r)
	return w
}

var (
	author = domain.User{ID: 1, Login: "alice"}
	liker  = domain.User{ID: 2, Login: "bob"}
)

func demoProject() domain.Project {
	return domain.Project{ID: 10, AuthorID: author.ID, Title: "demo"}
}

// --- тесты ---

func TestLikeCreatesAndPushesNotification(t *testing.T) {
	e := newEnv(t, demoProject())

	w := doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", &liker, map[string]string{"id": "10"})
	require.Equal(t, http.StatusOK, w.Code)

	created := e.notifs.all()
	require.Len(t, created, 1)
	require.Equal(t, domain.NotifyLikeProject, created[0].Type)
	require.Equal(t, author.ID, created[0].RecipientID)
	require.Equal(t, liker.ID, created[0].ActorID)
	require.NotNil(t, created[0].ProjectID)
	require.EqualValues(t, 10, *created[0].ProjectID)

	pushed := e.delivery.all()
	require.Len(t, pushed, 1)
	require.Equal(t, created[0].ID, pushed[0].ID)
}

func TestLikeSelfActionSuppressed(t *testing.T) {
	e := newEnv(t, demoProject())

	w := doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", &author, map[string]string{"id": "10"})
	require.Equal(t, http.StatusOK, w.Code)

	// мутация применилась, уведомлений нет
	require.True(t, e.projects.liked[[2]int64{10, author.ID}])
	require.Empty(t, e.notifs.all())
	require.Empty(t, e.delivery.all())
	// инвалидация всё равно случилась
	require.Contains(t, e.cache.invalidated, domain.TagProjectsList)
}

func TestLikeRepeatNoDuplicateNotification(t *testing.T) {
	e := newEnv(t, demoProject())

	doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", &liker, map[string]string{"id": "10"})
	doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", &liker, map[string]string{"id": "10"})

	require.Len(t, e.notifs.all(), 1)
}

func TestLikeNotFoundNoSideEffects(t *testing.T) {
	e := newEnv(t)

	w := doReq(t, e.h.Like, http.MethodPost, "/api/projects/404/like", "", &liker, map[string]string{"id": "404"})
	require.Equal(t, http.StatusNotFound, w.Code)

	require.Empty(t, e.cache.invalidated)
	require.Empty(t, e.notifs.all())
	require.Empty(t, e.delivery.all())
}

func TestLikeUnauthenticated(t *testing.T) {
	e := newEnv(t, demoProject())

	w := doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", nil, map[string]string{"id": "10"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Empty(t, e.cache.invalidated)
}

func TestLikeInvalidatesTags(t *testing.T) {
	e := newEnv(t, demoProject())
	doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", &liker, map[string]string{"id": "10"})
	require.Contains(t, e.cache.invalidated, domain.TagProjectsList)
	require.Contains(t, e.cache.invalidated, domain.TagProjectsTrending)
	require.NotContains(t, e.cache.invalidated, domain.TagProjectsFeatured)
}

func TestLikeFeaturedProjectInvalidatesFeatured(t *testing.T) {
	p := demoProject()
	p.Featured = true
	e := newEnv(t, p)
	doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", &liker, map[string]string{"id": "10"})
	require.Contains(t, e.cache.invalidated, domain.TagProjectsFeatured)
}

func TestLikeNotificationFailureDoesNotAffectResponse(t *testing.T) {
	e := newEnv(t, demoProject())
	e.notifs.fail = true

	w := doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", &liker, map[string]string{"id": "10"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, e.delivery.all()) // без durable-записи пуша нет
}

func TestUnlikeNoNotification(t *testing.T) {
	e := newEnv(t, demoProject())
	e.projects.liked[[2]int64{10, liker.ID}] = true

	w := doReq(t, e.h.Unlike, http.MethodDelete, "/api/projects/10/like", "", &liker, map[string]string{"id": "10"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, e.notifs.all())
	require.Contains(t, e.cache.invalidated, domain.TagProjectsList)
}

func TestCommentNotifiesProjectAuthor(t *testing.T) {
	e := newEnv(t, demoProject())

	w := doReq(t, e.h.CreateComment, http.MethodPost, "/api/projects/10/comments",
		`{"body":"nice work"}`, &liker, map[string]string{"id": "10"})
	require.Equal(t, http.StatusOK, w.Code)

	created := e.notifs.all()
	require.Len(t, created, 1)
	require.Equal(t, domain.NotifyCommentProject, created[0].Type)
	require.Equal(t, author.ID, created[0].RecipientID)
	require.NotNil(t, created[0].CommentID)
}

func TestReplyNotifiesParentAuthor(t *testing.T) {
	e := newEnv(t, demoProject())
	parent, err := e.comments.CreateComment(context.Background(), domain.Comment{
		ProjectID: 10, AuthorID: liker.ID, Body: "first",
	})
	require.NoError(t, err)

	carol := domain.User{ID: 3, Login: "carol"}
	body := `{"body":"agree","parent_id":` + jsonInt(int64(parent.ID)) + `}`
	w := doReq(t, e.h.CreateComment, http.MethodPost, "/api/projects/10/comments",
		body, &carol, map[string]string{"id": "10"})
	require.Equal(t, http.StatusOK, w.Code)

	created := e.notifs.all()
	require.Len(t, created, 1)
	require.Equal(t, domain.NotifyReplyComment, created[0].Type)
	require.Equal(t, liker.ID, created[0].RecipientID) // автор родителя, не проекта
}

func TestReplyToOwnCommentSuppressed(t *testing.T) {
	e := newEnv(t, demoProject())
	parent, _ := e.comments.CreateComment(context.Background(), domain.Comment{
		ProjectID: 10, AuthorID: liker.ID, Body: "first",
	})

	body := `{"body":"self reply","parent_id":` + jsonInt(int64(parent.ID)) + `}`
	w := doReq(t, e.h.CreateComment, http.MethodPost, "/api/projects/10/comments",
		body, &liker, map[string]string{"id": "10"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, e.notifs.all())
}

func TestCommentForeignParentRejected(t *testing.T) {
	other := domain.Project{ID: 11, AuthorID: author.ID, Title: "other"}
	e := newEnv(t, demoProject(), other)
	parent, _ := e.comments.CreateComment(context.Background(), domain.Comment{
		ProjectID: 11, AuthorID: author.ID, Body: "elsewhere",
	})

	body := `{"body":"mismatched","parent_id":` + jsonInt(int64(parent.ID)) + `}`
	w := doReq(t, e.h.CreateComment, http.MethodPost, "/api/projects/10/comments",
		body, &liker, map[string]string{"id": "10"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Empty(t, e.notifs.all())
	require.Empty(t, e.cache.invalidated)
}

func TestCommentInvalidatesLists(t *testing.T) {
	e := newEnv(t, demoProject())
	doReq(t, e.h.CreateComment, http.MethodPost, "/api/projects/10/comments",
		`{"body":"hi"}`, &liker, map[string]string{"id": "10"})
	require.Contains(t, e.cache.invalidated, domain.TagProjectsList)
	require.Contains(t, e.cache.invalidated, domain.TagProjectsTrending)
}

func TestListCachesResponse(t *testing.T) {
	e := newEnv(t, demoProject())

	w1 := doReq(t, e.h.List, http.MethodGet, "/api/projects?page=1&limit=12", "", nil, nil)
	require.Equal(t, http.StatusOK, w1.Code)
	require.Equal(t, 1, e.projects.listCalls)

	// второй запрос — из кэша, репозиторий не трогаем
	w2 := doReq(t, e.h.List, http.MethodGet, "/api/projects?page=1&limit=12", "", nil, nil)
	require.Equal(t, http.StatusOK, w2.Code)
	require.Equal(t, 1, e.projects.listCalls)
	require.JSONEq(t, w1.Body.String(), w2.Body.String())
}

func TestListCacheKeyIncludesViewer(t *testing.T) {
	e := newEnv(t, demoProject())

	doReq(t, e.h.List, http.MethodGet, "/api/projects", "", nil, nil)
	doReq(t, e.h.List, http.MethodGet, "/api/projects", "", &liker, nil)
	// разные смотрящие — разные ключи — два пересчёта
	require.Equal(t, 2, e.projects.listCalls)
}

func TestListRecomputesAfterInvalidation(t *testing.T) {
	e := newEnv(t, demoProject())

	doReq(t, e.h.List, http.MethodGet, "/api/projects", "", nil, nil)
	doReq(t, e.h.Like, http.MethodPost, "/api/projects/10/like", "", &liker, map[string]string{"id": "10"})
	doReq(t, e.h.List, http.MethodGet, "/api/projects", "", nil, nil)
	require.Equal(t, 2, e.projects.listCalls)
}

func TestListEnvelopeShape(t *testing.T) {
	e := newEnv(t, demoProject())

	w := doReq(t, e.h.List, http.MethodGet, "/api/projects", "", nil, nil)
	var env struct {
		Data struct {
			Projects []domain.Project `json:"projects"`
			Total    int              `json:"total"`
			Page     int              `json:"page"`
			Limit    int              `json:"limit"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Equal(t, 1, env.Data.Total)
	require.Equal(t, 1, env.Data.Page)
	require.Equal(t, 12, env.Data.Limit)
}

func TestGetNotFound(t *testing.T) {
	e := newEnv(t)
	w := doReq(t, e.h.Get, http.MethodGet, "/api/projects/99", "", nil, map[string]string{"id": "99"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBadID(t *testing.T) {
	e := newEnv(t)
	w := doReq(t, e.h.Get, http.MethodGet, "/api/projects/abc", "", nil, map[string]string{"id": "abc"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
