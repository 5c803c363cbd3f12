package policy

import (
	"fmt"

	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/UkralStul/forum-post-service/internal/storage"
)

// CanView решает, может ли actor читать пост.
// Владелец видит свой пост в любом статусе.
func CanView(post *domain.Post, actor domain.Identity) (bool, error) {
	switch post.Status {
	case domain.StatusPublished:
		// Опубликованные посты видны любому аутентифицированному пользователю.
		return true, nil
	case domain.StatusUnpublished, domain.StatusHidden:
		return post.UserID == actor.UserID, nil
	case domain.StatusBanned, domain.StatusDeleted:
		return post.UserID == actor.UserID || actor.Role.IsAdmin(), nil
	default:
		// Недостижимо при корректном перечислении, но не паникуем.
		return false, fmt.Errorf("%w: %q", domain.ErrInvalidState, post.Status)
	}
}

// ListScope строит план запроса "список всех постов" для actor.
func ListScope(actor domain.Identity) storage.ListScope {
	if actor.Role.IsAdmin() {
		// Админы видят все опубликованные, забаненные и удаленные посты,
		// плюс собственные неопубликованные и скрытые.
		return storage.ListScope{
			Statuses:      []domain.Status{domain.StatusPublished, domain.StatusBanned, domain.StatusDeleted},
			OwnerID:       actor.UserID,
			OwnerStatuses: []domain.Status{domain.StatusUnpublished, domain.StatusHidden},
		}
	}
	if actor.Verified {
		// Верифицированные пользователи видят все опубликованные посты
		// плюс собственные в любом другом статусе.
		return storage.ListScope{
			Statuses: []domain.Status{domain.StatusPublished},
			OwnerID:  actor.UserID,
			OwnerStatuses: []domain.Status{
				domain.StatusUnpublished, domain.StatusHidden,
				domain.StatusBanned, domain.StatusDeleted,
			},
		}
	}
	// Неверифицированные - только опубликованные.
	return storage.ListScope{
		Statuses: []domain.Status{domain.StatusPublished},
		OwnerID:  actor.UserID,
	}
}
