package domain

// Status - модерационное состояние поста.
type Status string

const (
	StatusUnpublished Status = "Unpublished"
	StatusPublished   Status = "Published"
	StatusHidden      Status = "Hidden"
	StatusBanned      Status = "Banned"
	StatusDeleted     Status = "Deleted"
)

// allowedTransitions - таблица разрешенных переходов статуса.
// Терминальных состояний нет: даже Banned и Deleted возвращаются в Published.
var allowedTransitions = map[Status][]Status{
	StatusUnpublished: {StatusPublished, StatusDeleted},
	StatusPublished:   {StatusHidden, StatusBanned, StatusDeleted},
	StatusHidden:      {StatusPublished, StatusDeleted},
	StatusBanned:      {StatusPublished},
	StatusDeleted:     {StatusPublished},
}

// ParseStatus проверяет строку статуса.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusUnpublished, StatusPublished, StatusHidden, StatusBanned, StatusDeleted:
		return Status(s), true
	}
	return "", false
}

// Valid сообщает, входит ли статус в перечисление.
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo сообщает, разрешен ли переход s -> next таблицей.
// Неизвестный целевой статус никогда не входит в разрешенный набор.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range allowedTransitions[s] {
		if next == allowed {
			return true
		}
	}
	return false
}
