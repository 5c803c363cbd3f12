package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/UkralStul/forum-post-service/internal/domain"
)

// Заголовки, проставляемые API-гейтвеем после проверки токена.
const (
	HeaderUserID   = "X-User-ID"
	HeaderRole     = "X-User-Role"
	HeaderVerified = "X-User-Verified"
)

type contextKey string

const identityKey = contextKey("identity")

// ExtractIdentity строит Identity из доверенных заголовков гейтвея.
// Чистая функция без побочных эффектов: заголовки -> типизированное значение.
func ExtractIdentity(h http.Header) (domain.Identity, error) {
	rawID := h.Get(HeaderUserID)
	rawRole := h.Get(HeaderRole)
	if rawID == "" || rawRole == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing authentication headers", domain.ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || userID <= 0 {
		return domain.Identity{}, fmt.Errorf("%w: invalid user id format", domain.ErrInvalidInput)
	}

	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return domain.Identity{}, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, rawRole)
	}

	// Флаг верификации опционален: любое значение кроме "true" - false.
	verified := strings.EqualFold(h.Get(HeaderVerified), "true")

	return domain.Identity{UserID: userID, Role: role, Verified: verified}, nil
}

// NewContext помещает Identity в контекст запроса.
func NewContext(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext извлекает Identity из контекста.
func FromContext(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityKey).(domain.Identity)
	return id, ok
}
