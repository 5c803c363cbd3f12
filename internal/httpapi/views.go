package httpapi

import (
	"github.com/UkralStul/forum-post-service/internal/domain"
)

// dateFormat - формат дат, который ожидает фронтенд.
const dateFormat = "2006/01/02 15:04:05"

// postView - представление поста в ответах API.
type postView struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	UserID       int64         `json:"userId"`
	Content      string        `json:"content"`
	Status       domain.Status `json:"status"`
	IsArchived   bool          `json:"isArchived"`
	DateCreated  string        `json:"dateCreated"`
	DateModified string        `json:"dateModified"`
	Images       []string      `json:"images"`
	Attachments  []string      `json:"attachments"`
}

func renderPost(p *domain.Post) postView {
	return postView{
		ID:           p.ID,
		Title:        p.Title,
		UserID:       p.UserID,
		Content:      p.Content,
		Status:       p.Status,
		IsArchived:   p.IsArchived,
		DateCreated:  p.DateCreated.Format(dateFormat),
		DateModified: p.DateModified.Format(dateFormat),
		Images:       p.Images,
		Attachments:  p.Attachments,
	}
}

// wrappedPost - элемент листинга: каждый пост завернут в ключ "post".
type wrappedPost struct {
	Post postView `json:"post"`
}

func renderPosts(posts []*domain.Post) []wrappedPost {
	views := make([]wrappedPost, len(posts))
	for i, p := range posts {
		views[i] = wrappedPost{Post: renderPost(p)}
	}
	return views
}
