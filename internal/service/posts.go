package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/UkralStul/forum-post-service/internal/clients"
	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/UkralStul/forum-post-service/internal/events"
	"github.com/UkralStul/forum-post-service/internal/policy"
	"github.com/UkralStul/forum-post-service/internal/storage"
)

// FileUploader - порт файлового сервиса.
type FileUploader interface {
	Upload(ctx context.Context, authorization string, uploads []clients.Upload) ([]string, error)
}

// ReplyCounter - порт сервиса ответов (батч-счетчики по списку постов).
type ReplyCounter interface {
	Counts(ctx context.Context, postIDs []int64) (map[int64]int64, error)
}

// Service - агрегатные операции над постами. Все проверки авторизации
// и переходов статуса выполняются здесь через пакет policy, а не
// размазываются по хендлерам.
type Service struct {
	store    storage.Storage
	files    FileUploader
	replies  ReplyCounter
	observer *events.Observer
}

// New создает сервис постов.
func New(store storage.Storage, files FileUploader, replies ReplyCounter, observer *events.Observer) *Service {
	return &Service{store: store, files: files, replies: replies, observer: observer}
}

// CreateInput - входные данные создания поста.
type CreateInput struct {
	Title         string
	Content       string
	Status        string // пусто -> Unpublished
	Images        []clients.Upload
	Attachments   []clients.Upload
	Authorization string // пробрасывается файловому сервису
}

// Create создает пост от имени actor. Требует верификации.
// Начальный статус ограничен Unpublished/Published: пост нельзя
// завести сразу забаненным, скрытым или удаленным.
func (s *Service) Create(ctx context.Context, actor domain.Identity, in CreateInput) (*domain.Post, error) {
	if !actor.Verified {
		return nil, fmt.Errorf("%w: email verification required", domain.ErrForbidden)
	}
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
		return nil, fmt.Errorf("%w: missing required fields", domain.ErrInvalidInput)
	}

	status := domain.StatusUnpublished
	if in.Status != "" {
		parsed, ok := domain.ParseStatus(in.Status)
		if !ok || (parsed != domain.StatusUnpublished && parsed != domain.StatusPublished) {
			return nil, fmt.Errorf("%w: initial status must be Unpublished or Published", domain.ErrInvalidInput)
		}
		status = parsed
	}

	imageURLs, err := s.upload(ctx, in.Authorization, in.Images)
	if err != nil {
		return nil, err
	}
	attachmentURLs, err := s.upload(ctx, in.Authorization, in.Attachments)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post := &domain.Post{
		UserID:       actor.UserID,
		Title:        in.Title,
		Content:      in.Content,
		Status:       status,
		Images:       imageURLs,
		Attachments:  attachmentURLs,
		DateCreated:  now,
		DateModified: now,
	}
	return s.store.CreatePost(ctx, post)
}

// Get возвращает пост, если политика видимости это разрешает.
func (s *Service) Get(ctx context.Context, actor domain.Identity, postID int64) (*domain.Post, error) {
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	visible, err := policy.CanView(post, actor)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, fmt.Errorf("%w: unauthorized to view this post", domain.ErrForbidden)
	}
	return post, nil
}

// List возвращает посты в области видимости actor, новые первыми.
func (s *Service) List(ctx context.Context, actor domain.Identity) ([]*domain.Post, error) {
	return s.store.ListPosts(ctx, policy.ListScope(actor))
}

// EditInput - правка поста. Nil-поля не трогаются; списки картинок и
// вложений заменяются целиком: оставленные URL плюс новые загрузки.
type EditInput struct {
	Title           *string
	Content         *string
	KeepImages      []string
	KeepAttachments []string
	NewImages       []clients.Upload
	NewAttachments  []clients.Upload
	Authorization   string
}

// Edit правит пост. Доступно только владельцу - админы чужие посты
// не редактируют.
func (s *Service) Edit(ctx context.Context, actor domain.Identity, postID int64, in EditInput) (*domain.Post, error) {
	if !actor.Verified {
		return nil, fmt.Errorf("%w: email verification required", domain.ErrForbidden)
	}
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != actor.UserID {
		return nil, fmt.Errorf("%w: unauthorized to edit this post", domain.ErrForbidden)
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", domain.ErrInvalidInput)
		}
		post.Title = *in.Title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, fmt.Errorf("%w: content cannot be empty", domain.ErrInvalidInput)
		}
		post.Content = *in.Content
	}

	newImageURLs, err := s.upload(ctx, in.Authorization, in.NewImages)
	if err != nil {
		return nil, err
	}
	post.Images = mergeURLs(in.KeepImages, newImageURLs)

	newAttachmentURLs, err := s.upload(ctx, in.Authorization, in.NewAttachments)
	if err != nil {
		return nil, err
	}
	post.Attachments = mergeURLs(in.KeepAttachments, newAttachmentURLs)

	post.DateModified = time.Now().UTC()
	return s.store.UpdatePost(ctx, post)
}

// SetStatus выполняет переход статуса. Легальность перехода и привилегии
// проверяет policy.CheckTransition; архивный флаг не трогается.
func (s *Service) SetStatus(ctx context.Context, actor domain.Identity, postID int64, rawStatus string) (*domain.Post, error) {
	if !actor.Verified {
		return nil, fmt.Errorf("%w: email verification required", domain.ErrForbidden)
	}
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	// Неизвестный целевой статус отвергается таблицей переходов.
	next := domain.Status(rawStatus)
	if err := policy.CheckTransition(post, next, actor); err != nil {
		return nil, err
	}

	prev := post.Status
	post.Status = next
	post.DateModified = time.Now().UTC()

	updated, err := s.store.UpdatePost(ctx, post)
	if err != nil {
		return nil, err
	}

	if s.observer != nil {
		s.observer.Notify(events.StatusEvent{
			PostID: updated.ID,
			From:   prev,
			To:     updated.Status,
			At:     updated.DateModified,
		})
	}
	return updated, nil
}

// ToggleArchive переключает архивный флаг опубликованного поста владельца.
func (s *Service) ToggleArchive(ctx context.Context, actor domain.Identity, postID int64) (*domain.Post, error) {
	if !actor.Verified {
		return nil, fmt.Errorf("%w: email verification required", domain.ErrForbidden)
	}
	post, err := s.store.GetPostByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckArchiveToggle(post, actor); err != nil {
		return nil, err
	}

	post.IsArchived = !post.IsArchived
	post.DateModified = time.Now().UTC()
	return s.store.UpdatePost(ctx, post)
}

// TopPosts возвращает до n незаархивированных постов пользователя,
// отсортированных по числу ответов по убыванию; при равенстве счетчиков
// меньший id идет первым.
func (s *Service) TopPosts(ctx context.Context, userID int64, n int) ([]*domain.Post, error) {
	if n <= 0 {
		n = 3
	}
	posts, err := s.store.ListByOwner(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []*domain.Post{}, nil
	}

	ids := make([]int64, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	counts, err := s.replies.Counts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reply counts: %w", err)
	}

	sort.SliceStable(posts, func(i, j int) bool {
		ci, cj := counts[posts[i].ID], counts[posts[j].ID]
		if ci != cj {
			return ci > cj
		}
		return posts[i].ID < posts[j].ID
	})
	if len(posts) > n {
		posts = posts[:n]
	}
	return posts, nil
}

// Drafts возвращает черновики (Unpublished) пользователя, новые первыми.
func (s *Service) Drafts(ctx context.Context, userID int64) ([]*domain.Post, error) {
	return s.store.ListDrafts(ctx, userID)
}

func (s *Service) upload(ctx context.Context, authorization string, uploads []clients.Upload) ([]string, error) {
	if len(uploads) == 0 {
		return nil, nil
	}
	return s.files.Upload(ctx, authorization, uploads)
}

func mergeURLs(kept, added []string) []string {
	merged := make([]string, 0, len(kept)+len(added))
	for _, u := range kept {
		if u = strings.TrimSpace(u); u != "" {
			merged = append(merged, u)
		}
	}
	merged = append(merged, added...)
	if len(merged) == 0 {
		return nil
	}
	return merged
}
