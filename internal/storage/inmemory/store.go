package inmemory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/UkralStul/forum-post-service/internal/storage"
)

// Store реализует интерфейс Storage в памяти.
type Store struct {
	mu     sync.RWMutex
	posts  map[int64]*domain.Post
	nextID int64
}

// New создает новый экземпляр in-memory хранилища.
func New() *Store {
	return &Store{
		posts:  make(map[int64]*domain.Post),
		nextID: 1,
	}
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := post.Clone()
	cp.ID = s.nextID
	s.nextID++
	if cp.DateCreated.IsZero() {
		cp.DateCreated = time.Now().UTC()
	}
	if cp.DateModified.IsZero() {
		cp.DateModified = cp.DateCreated
	}
	s.posts[cp.ID] = cp
	return cp.Clone(), nil
}

func (s *Store) GetPostByID(ctx context.Context, id int64) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, fmt.Errorf("%w: post %d", domain.ErrNotFound, id)
	}
	return post.Clone(), nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[post.ID]; !ok {
		return nil, fmt.Errorf("%w: post %d", domain.ErrNotFound, post.ID)
	}
	cp := post.Clone()
	s.posts[cp.ID] = cp
	return cp.Clone(), nil
}

func (s *Store) ListPosts(ctx context.Context, scope storage.ListScope) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if scope.Matches(p) {
			matched = append(matched, p.Clone())
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

func (s *Store) ListByOwner(ctx context.Context, userID int64, includeArchived bool) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Post, 0)
	for _, p := range s.posts {
		if p.UserID != userID {
			continue
		}
		if !includeArchived && p.IsArchived {
			continue
		}
		matched = append(matched, p.Clone())
	}
	sortNewestFirst(matched)
	return matched, nil
}

func (s *Store) ListDrafts(ctx context.Context, userID int64) ([]*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*domain.Post, 0)
	for _, p := range s.posts {
		if p.UserID == userID && p.Status == domain.StatusUnpublished {
			matched = append(matched, p.Clone())
		}
	}
	sortNewestFirst(matched)
	return matched, nil
}

// sortNewestFirst сортирует по времени создания по убыванию,
// при равенстве - по id по убыванию, чтобы порядок был стабильным.
func sortNewestFirst(posts []*domain.Post) {
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].DateCreated.Equal(posts[j].DateCreated) {
			return posts[i].DateCreated.After(posts[j].DateCreated)
		}
		return posts[i].ID > posts[j].ID
	})
}
