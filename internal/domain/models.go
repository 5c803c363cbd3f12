package domain

import "time"

// Role - роль пользователя, утверждаемая гейтвеем.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole проверяет строку роли из заголовков гейтвея.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return Role(s), true
	}
	return "", false
}

// IsAdmin сообщает, имеет ли роль модераторские привилегии.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Identity - аутентифицированный пользователь на время одного запроса.
// Строится один раз из заголовков и никогда не сохраняется.
type Identity struct {
	UserID   int64
	Role     Role
	Verified bool
}

// Post представляет пост в системе вместе с его модерационным состоянием.
type Post struct {
	ID           int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID       int64     `json:"userId" gorm:"not null;index"`
	Title        string    `json:"title" gorm:"type:varchar(255);not null"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	Status       Status    `json:"status" gorm:"type:varchar(32);not null;default:'Unpublished';index"`
	IsArchived   bool      `json:"isArchived" gorm:"not null;default:false"`
	Images       []string  `json:"images" gorm:"serializer:json;type:text"`
	Attachments  []string  `json:"attachments" gorm:"serializer:json;type:text"`
	DateCreated  time.Time `json:"dateCreated" gorm:"not null"`
	DateModified time.Time `json:"dateModified" gorm:"not null"`
}

// Clone возвращает глубокую копию поста.
func (p *Post) Clone() *Post {
	cp := *p
	if p.Images != nil {
		cp.Images = append([]string(nil), p.Images...)
	}
	if p.Attachments != nil {
		cp.Attachments = append([]string(nil), p.Attachments...)
	}
	return &cp
}
