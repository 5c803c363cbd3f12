package storage

import (
	"context"

	"github.com/UkralStul/forum-post-service/internal/domain"
)

// ListScope - план запроса листинга, построенный политикой видимости.
// Пост попадает в выборку, если его статус входит в Statuses, либо
// он принадлежит OwnerID и его статус входит в OwnerStatuses.
type ListScope struct {
	Statuses      []domain.Status
	OwnerID       int64
	OwnerStatuses []domain.Status
}

// Matches применяет план к одному посту (используется in-memory хранилищем).
func (s ListScope) Matches(p *domain.Post) bool {
	for _, st := range s.Statuses {
		if p.Status == st {
			return true
		}
	}
	if p.UserID != s.OwnerID {
		return false
	}
	for _, st := range s.OwnerStatuses {
		if p.Status == st {
			return true
		}
	}
	return false
}

// Storage определяет контракт для хранилищ постов.
type Storage interface {
	CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)
	GetPostByID(ctx context.Context, id int64) (*domain.Post, error)
	UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error)

	// ListPosts возвращает посты в области видимости, отсортированные по
	// dateCreated по убыванию, при равенстве - по id по убыванию.
	ListPosts(ctx context.Context, scope ListScope) ([]*domain.Post, error)

	// ListByOwner возвращает посты пользователя; includeArchived=false
	// отбрасывает заархивированные.
	ListByOwner(ctx context.Context, userID int64, includeArchived bool) ([]*domain.Post, error)

	// ListDrafts возвращает Unpublished-посты пользователя, новые первыми.
	ListDrafts(ctx context.Context, userID int64) ([]*domain.Post, error)
}
