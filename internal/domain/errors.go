package domain

import "errors"

// Таксономия ошибок сервиса. Слои выше оборачивают их через %w,
// HTTP-слой сопоставляет errors.Is со статус-кодами.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidState      = errors.New("invalid post state")
)
