package models

import (
	"time"

	"github.com/google/uuid"
)

// ContentType определяет вид модерируемого контента.
// Значение выбирает таблицу, колонки публикации и колонку владельца.
type ContentType string

const (
	ContentTypePost     ContentType = "POST"
	ContentTypeComment  ContentType = "COMMENT"
	ContentTypeProduct  ContentType = "PRODUCT"
	ContentTypeResource ContentType = "RESOURCE"
	ContentTypeGroup    ContentType = "GROUP"
	ContentTypeEvent    ContentType = "EVENT"
	ContentTypeProfile  ContentType = "PROFILE"
	ContentTypeMessage  ContentType = "MESSAGE"
)

// AllContentTypes перечисляет все поддерживаемые виды контента.
var AllContentTypes = []ContentType{
	ContentTypePost,
	ContentTypeComment,
	ContentTypeProduct,
	ContentTypeResource,
	ContentTypeGroup,
	ContentTypeEvent,
	ContentTypeProfile,
	ContentTypeMessage,
}

// IsValidContentType проверяет, входит ли строка в список видов контента.
func IsValidContentType(s string) bool {
	for _, ct := range AllContentTypes {
		if string(ct) == s {
			return true
		}
	}
	return false
}

// Статусы публикации контента, которые выставляет диспетчер.
const (
	ContentStatusApproved = "APPROVED"
	ContentStatusRejected = "REJECTED"
)

// Значение колонки видимости при действии RESTRICTED_VISIBILITY.
const VisibilityRestricted = "RESTRICTED"

// ContentInfo содержит минимальные сведения о записи контента,
// нужные для резолва владельца и текста уведомления.
// Заполняется репозиторием контента; OwnerID может быть nil,
// если внешний ключ автора в записи пуст.
type ContentInfo struct {
	ID        uuid.UUID  `db:"id"`
	OwnerID   *uuid.UUID `db:"owner_id"`
	Title     *string    `db:"title"`
	CreatedAt time.Time  `db:"created_at"`
}

// DisplayTitle возвращает заголовок записи или дефолт для уведомлений.
func (c *ContentInfo) DisplayTitle() string {
	if c.Title != nil && *c.Title != "" {
		return *c.Title
	}
	return "your content"
}
