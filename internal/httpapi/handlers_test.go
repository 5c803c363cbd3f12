package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/UkralStul/forum-post-service/internal/auth"
	"github.com/UkralStul/forum-post-service/internal/clients"
	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/UkralStul/forum-post-service/internal/events"
	"github.com/UkralStul/forum-post-service/internal/service"
	"github.com/UkralStul/forum-post-service/internal/storage/inmemory"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploaderStub struct{}

func (uploaderStub) Upload(ctx context.Context, authorization string, uploads []clients.Upload) ([]string, error) {
	urls := make([]string, len(uploads))
	for i, u := range uploads {
		urls[i] = "https://files.test/" + u.Filename
	}
	return urls, nil
}

type counterStub map[int64]int64

func (c counterStub) Counts(ctx context.Context, postIDs []int64) (map[int64]int64, error) {
	return c, nil
}

func newTestAPI(t *testing.T, counts counterStub) (*httptest.Server, *inmemory.Store) {
	t.Helper()
	store := inmemory.New()
	observer := events.NewObserver()
	svc := service.New(store, uploaderStub{}, counts, observer)
	srv := httptest.NewServer(NewHandler(svc, observer).Routes())
	t.Cleanup(srv.Close)
	return srv, store
}

func identityHeaders(userID, role, verified string) http.Header {
	h := http.Header{}
	h.Set(auth.HeaderUserID, userID)
	h.Set(auth.HeaderRole, role)
	h.Set(auth.HeaderVerified, verified)
	return h
}

func doRequest(t *testing.T, method, url string, headers http.Header, contentType string, body io.Reader) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	for k, vs := range headers {
		req.Header[k] = vs
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]any
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &decoded))
	}
	return resp, decoded
}

func seedPost(t *testing.T, store *inmemory.Store, owner int64, status domain.Status) *domain.Post {
	t.Helper()
	post, err := store.CreatePost(context.Background(), &domain.Post{
		UserID:  owner,
		Title:   "Seeded",
		Content: "Content",
		Status:  status,
	})
	require.NoError(t, err)
	return post
}

func TestAPI_MissingIdentity(t *testing.T) {
	srv, _ := newTestAPI(t, counterStub{})

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/posts", nil, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, body["error"], "missing authentication headers")
}

func TestAPI_MalformedUserID(t *testing.T) {
	srv, _ := newTestAPI(t, counterStub{})

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/posts",
		identityHeaders("not-a-number", "user", "true"), "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ListPosts_UnverifiedSeesPublishedOnly(t *testing.T) {
	srv, store := newTestAPI(t, counterStub{})
	seedPost(t, store, 1, domain.StatusPublished)
	seedPost(t, store, 2, domain.StatusHidden)
	seedPost(t, store, 2, domain.StatusUnpublished)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/posts", nil)
	require.NoError(t, err)
	for k, vs := range identityHeaders("2", "user", "false") {
		req.Header[k] = vs
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	require.Len(t, list, 1)
	post := list[0]["post"].(map[string]any)
	assert.Equal(t, "Published", post["status"])
}

func TestAPI_GetPost(t *testing.T) {
	srv, store := newTestAPI(t, counterStub{})
	published := seedPost(t, store, 1, domain.StatusPublished)
	hidden := seedPost(t, store, 1, domain.StatusHidden)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/posts/1",
		identityHeaders("5", "user", "false"), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	view := body["post"].(map[string]any)
	assert.Equal(t, float64(published.ID), view["id"])

	// Чужой скрытый пост - 403.
	resp, _ = doRequest(t, http.MethodGet, srv.URL+"/posts/2",
		identityHeaders("5", "user", "true"), "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Владелец видит.
	resp, body = doRequest(t, http.MethodGet, srv.URL+"/posts/2",
		identityHeaders("1", "user", "false"), "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	view = body["post"].(map[string]any)
	assert.Equal(t, float64(hidden.ID), view["id"])

	resp, _ = doRequest(t, http.MethodGet, srv.URL+"/posts/999",
		identityHeaders("5", "user", "true"), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for field, filename := range files {
		fw, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("file-bytes"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestAPI_CreatePost(t *testing.T) {
	srv, _ := newTestAPI(t, counterStub{})

	body, contentType := multipartBody(t,
		map[string]string{"title": "Hello", "content": "World"},
		map[string]string{"images": "a.png"},
	)
	resp, decoded := doRequest(t, http.MethodPost, srv.URL+"/posts",
		identityHeaders("7", "user", "true"), contentType, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	view := decoded["post"].(map[string]any)
	assert.Equal(t, "Hello", view["title"])
	assert.Equal(t, "Unpublished", view["status"])
	assert.Equal(t, float64(7), view["userId"])
	images := view["images"].([]any)
	require.Len(t, images, 1)
	assert.Equal(t, "https://files.test/a.png", images[0])
}

func TestAPI_CreatePost_Unverified(t *testing.T) {
	srv, _ := newTestAPI(t, counterStub{})

	body, contentType := multipartBody(t,
		map[string]string{"title": "Hello", "content": "World"}, nil)
	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/posts",
		identityHeaders("7", "user", "false"), contentType, body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_CreatePost_MissingFields(t *testing.T) {
	srv, _ := newTestAPI(t, counterStub{})

	body, contentType := multipartBody(t, map[string]string{"title": "Hello"}, nil)
	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/posts",
		identityHeaders("7", "user", "true"), contentType, body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_SetStatus(t *testing.T) {
	srv, store := newTestAPI(t, counterStub{})
	seedPost(t, store, 7, domain.StatusUnpublished)

	// Unpublished -> Hidden нелегален.
	resp, _ := doRequest(t, http.MethodPut, srv.URL+"/posts/1/status",
		identityHeaders("7", "user", "true"), "application/json",
		strings.NewReader(`{"status":"Hidden"}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doRequest(t, http.MethodPut, srv.URL+"/posts/1/status",
		identityHeaders("7", "user", "true"), "application/json",
		strings.NewReader(`{"status":"Published"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := body["post"].(map[string]any)
	assert.Equal(t, "Published", view["status"])

	// Тело без статуса - 400.
	resp, _ = doRequest(t, http.MethodPut, srv.URL+"/posts/1/status",
		identityHeaders("7", "user", "true"), "application/json",
		strings.NewReader(`{}`))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_ToggleArchive(t *testing.T) {
	srv, store := newTestAPI(t, counterStub{})
	seedPost(t, store, 7, domain.StatusPublished)

	resp, body := doRequest(t, http.MethodPut, srv.URL+"/posts/1/toggle-archive",
		identityHeaders("7", "user", "true"), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := body["post"].(map[string]any)
	assert.Equal(t, true, view["isArchived"])

	// Админ не может архивировать чужой пост.
	resp, _ = doRequest(t, http.MethodPut, srv.URL+"/posts/1/toggle-archive",
		identityHeaders("99", "admin", "true"), "", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAPI_TopPostsAndDrafts(t *testing.T) {
	counts := counterStub{}
	srv, store := newTestAPI(t, counts)
	first := seedPost(t, store, 7, domain.StatusPublished)
	second := seedPost(t, store, 7, domain.StatusPublished)
	draft := seedPost(t, store, 7, domain.StatusUnpublished)
	counts[first.ID] = 2
	counts[second.ID] = 9

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/posts/7/top-posts",
		identityHeaders("5", "user", "true"), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	posts := body["posts"].([]any)
	require.Len(t, posts, 3)
	top := posts[0].(map[string]any)["post"].(map[string]any)
	assert.Equal(t, float64(second.ID), top["id"])

	resp, body = doRequest(t, http.MethodGet, srv.URL+"/posts/7/drafts",
		identityHeaders("5", "user", "true"), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	drafts := body["drafts"].([]any)
	require.Len(t, drafts, 1)
	view := drafts[0].(map[string]any)["post"].(map[string]any)
	assert.Equal(t, float64(draft.ID), view["id"])
}

func TestAPI_StreamEvents(t *testing.T) {
	srv, store := newTestAPI(t, counterStub{})
	post := seedPost(t, store, 7, domain.StatusPublished)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/posts/1/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, identityHeaders("5", "user", "true"))
	require.NoError(t, err)
	defer conn.Close()

	// Даем хендлеру время оформить подписку после хендшейка.
	time.Sleep(50 * time.Millisecond)

	// Владелец прячет пост - подписчик получает событие.
	resp, _ := doRequest(t, http.MethodPut, srv.URL+"/posts/1/status",
		identityHeaders("7", "user", "true"), "application/json",
		strings.NewReader(`{"status":"Hidden"}`))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev events.StatusEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, post.ID, ev.PostID)
	assert.Equal(t, domain.StatusPublished, ev.From)
	assert.Equal(t, domain.StatusHidden, ev.To)
}

func TestAPI_StreamEvents_ForbiddenPost(t *testing.T) {
	srv, store := newTestAPI(t, counterStub{})
	seedPost(t, store, 7, domain.StatusHidden)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/posts/1/events"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, identityHeaders("5", "user", "true"))
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
