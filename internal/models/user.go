package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Роли пользователей платформы.
const (
	RoleUser      = "USER"
	RoleModerator = "MODERATOR"
	RoleAdmin     = "ADMIN"
)

// Статусы учётной записи. Меняются только санкционным движком.
const (
	UserStatusActive    = "ACTIVE"
	UserStatusSuspended = "SUSPENDED"
	UserStatusBanned    = "BANNED"
)

// Гранулярные права модераторов.
const (
	PermissionModerateContent = "MODERATE_CONTENT"
	PermissionModerateAll     = "MODERATE_ALL"
)

// User описывает сущность пользователя платформы.
type User struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	Email          string         `db:"email" json:"email"`
	Username       string         `db:"username" json:"username"`
	PasswordHash   string         `db:"password_hash" json:"-"`
	Role           string         `db:"role" json:"role"`
	Permissions    pq.StringArray `db:"permissions" json:"permissions"`
	Status         string         `db:"status" json:"status"`
	SuspendedUntil *time.Time     `db:"suspended_until" json:"suspended_until,omitempty"`
	BanReason      *string        `db:"ban_reason" json:"ban_reason,omitempty"`
	BannedAt       *time.Time     `db:"banned_at" json:"banned_at,omitempty"`
	LastLoginAt    *time.Time     `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// IsModerator сообщает, имеет ли пользователь модераторскую роль.
func (u *User) IsModerator() bool {
	return u.Role == RoleAdmin || u.Role == RoleModerator
}

// HasPermission проверяет наличие гранулярного права.
func (u *User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Session представляет сохранённую сессию модератора.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
