package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/UkralStul/forum-post-service/internal/domain"
	"github.com/UkralStul/forum-post-service/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store реализует интерфейс Storage с использованием PostgreSQL.
type Store struct {
	db *gorm.DB
}

// New создает новый экземпляр хранилища PostgreSQL.
func New(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Выполняем миграцию схемы
	if err := db.AutoMigrate(&domain.Post{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) CreatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Store) GetPostByID(ctx context.Context, id int64) (*domain.Post, error) {
	var post domain.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: post %d", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return &post, nil
}

func (s *Store) UpdatePost(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	// Используем транзакцию для атомарности операции чтения-записи:
	// при сбое пост остается нетронутым.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Post
		if err := tx.First(&existing, "id = ?", post.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: post %d", domain.ErrNotFound, post.ID)
			}
			return err
		}
		return tx.Save(post).Error
	})
	if err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Store) ListPosts(ctx context.Context, scope storage.ListScope) ([]*domain.Post, error) {
	var posts []*domain.Post
	q := s.db.WithContext(ctx)
	if len(scope.OwnerStatuses) > 0 {
		q = q.Where("status IN ? OR (user_id = ? AND status IN ?)",
			scope.Statuses, scope.OwnerID, scope.OwnerStatuses)
	} else {
		q = q.Where("status IN ?", scope.Statuses)
	}
	err := q.Order("date_created DESC, id DESC").Find(&posts).Error
	return posts, err
}

func (s *Store) ListByOwner(ctx context.Context, userID int64, includeArchived bool) ([]*domain.Post, error) {
	var posts []*domain.Post
	q := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if !includeArchived {
		q = q.Where("is_archived = ?", false)
	}
	err := q.Order("date_created DESC, id DESC").Find(&posts).Error
	return posts, err
}

func (s *Store) ListDrafts(ctx context.Context, userID int64) ([]*domain.Post, error) {
	var posts []*domain.Post
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.StatusUnpublished).
		Order("date_created DESC, id DESC").
		Find(&posts).Error
	return posts, err
}
