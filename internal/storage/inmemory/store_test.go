package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/UkralStul/forum-post-service/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedPost создает пост с заданным временем создания.
func seedPost(t *testing.T, s *Store, owner int64, status domain.Status, created time.Time) *domain.Post {
	t.Helper()
	post, err := s.CreatePost(context.Background(), &domain.Post{
		UserID:      owner,
		Title:       "Test Post",
		Content:     "Content",
		Status:      status,
		DateCreated: created,
	})
	require.NoError(t, err)
	return post
}

func TestStore_CreateAndGetPost(t *testing.T) {
	s := New()
	ctx := context.Background()

	post := seedPost(t, s, 1, domain.StatusUnpublished, time.Now().UTC())

	retrieved, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Title, retrieved.Title)
	assert.Equal(t, domain.StatusUnpublished, retrieved.Status)

	_, err = s.GetPostByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_MonotonicIDs(t *testing.T) {
	s := New()
	now := time.Now().UTC()

	first := seedPost(t, s, 1, domain.StatusPublished, now)
	second := seedPost(t, s, 1, domain.StatusPublished, now)
	assert.Equal(t, first.ID+1, second.ID)
}

func TestStore_UpdatePost(t *testing.T) {
	s := New()
	ctx := context.Background()
	post := seedPost(t, s, 1, domain.StatusUnpublished, time.Now().UTC())

	post.Status = domain.StatusPublished
	updated, err := s.UpdatePost(ctx, post)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, updated.Status)

	retrieved, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPublished, retrieved.Status)

	missing := &domain.Post{ID: 999}
	_, err = s.UpdatePost(ctx, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()
	post := seedPost(t, s, 1, domain.StatusUnpublished, time.Now().UTC())

	// Мутация полученного поста не должна менять хранилище.
	got, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	got.Status = domain.StatusBanned

	again, err := s.GetPostByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnpublished, again.Status)
}

func TestStore_ListPostsScope(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	published := seedPost(t, s, 1, domain.StatusPublished, now.Add(-3*time.Hour))
	ownDraft := seedPost(t, s, 5, domain.StatusUnpublished, now.Add(-2*time.Hour))
	seedPost(t, s, 1, domain.StatusHidden, now.Add(-1*time.Hour)) // чужой скрытый

	scope := storage.ListScope{
		Statuses:      []domain.Status{domain.StatusPublished},
		OwnerID:       5,
		OwnerStatuses: []domain.Status{domain.StatusUnpublished},
	}
	posts, err := s.ListPosts(ctx, scope)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Новые первыми.
	assert.Equal(t, ownDraft.ID, posts[0].ID)
	assert.Equal(t, published.ID, posts[1].ID)
}

func TestStore_ListPostsTieBreak(t *testing.T) {
	s := New()
	ctx := context.Background()
	created := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	first := seedPost(t, s, 1, domain.StatusPublished, created)
	second := seedPost(t, s, 1, domain.StatusPublished, created)

	posts, err := s.ListPosts(ctx, storage.ListScope{
		Statuses: []domain.Status{domain.StatusPublished},
	})
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// При равном времени создания больший id идет первым.
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}

func TestStore_ListByOwnerExcludesArchived(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	active := seedPost(t, s, 5, domain.StatusPublished, now)
	archived := seedPost(t, s, 5, domain.StatusPublished, now)
	archived.IsArchived = true
	_, err := s.UpdatePost(ctx, archived)
	require.NoError(t, err)
	seedPost(t, s, 9, domain.StatusPublished, now) // другой владелец

	posts, err := s.ListByOwner(ctx, 5, false)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, active.ID, posts[0].ID)

	all, err := s.ListByOwner(ctx, 5, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestStore_ListDrafts(t *testing.T) {
	s := New()
	ctx := context.Background()
	now := time.Now().UTC()

	older := seedPost(t, s, 5, domain.StatusUnpublished, now.Add(-time.Hour))
	newer := seedPost(t, s, 5, domain.StatusUnpublished, now)
	seedPost(t, s, 5, domain.StatusPublished, now)   // не черновик
	seedPost(t, s, 9, domain.StatusUnpublished, now) // чужой

	drafts, err := s.ListDrafts(ctx, 5)
	require.NoError(t, err)
	require.Len(t, drafts, 2)
	assert.Equal(t, newer.ID, drafts[0].ID)
	assert.Equal(t, older.ID, drafts[1].ID)
}
