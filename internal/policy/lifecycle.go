package policy

import (
	"fmt"

	"github.com/UkralStul/forum-post-service/internal/domain"
)

// CheckTransition проверяет запрошенный переход статуса.
// Порядок проверок: владение/привилегия, легальность перехода по таблице,
// затем ограничение на бан/разбан (только админы, даже для владельца).
func CheckTransition(post *domain.Post, next domain.Status, actor domain.Identity) error {
	if post.UserID != actor.UserID && !actor.Role.IsAdmin() {
		return fmt.Errorf("%w: not allowed to change status of this post", domain.ErrForbidden)
	}
	if !post.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, post.Status, next)
	}
	if next == domain.StatusBanned && !actor.Role.IsAdmin() {
		return fmt.Errorf("%w: only admins can ban posts", domain.ErrForbidden)
	}
	if post.Status == domain.StatusBanned && !actor.Role.IsAdmin() {
		return fmt.Errorf("%w: only admins can unban posts", domain.ErrForbidden)
	}
	return nil
}

// CheckArchiveToggle проверяет переключение архивного флага.
// Операция доступна только владельцу: админам она не разрешена.
func CheckArchiveToggle(post *domain.Post, actor domain.Identity) error {
	if post.UserID != actor.UserID {
		return fmt.Errorf("%w: only the owner can archive a post", domain.ErrForbidden)
	}
	if post.Status != domain.StatusPublished {
		return fmt.Errorf("%w: only published posts can be archived", domain.ErrInvalidState)
	}
	return nil
}
