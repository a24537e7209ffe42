package specification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByChatID struct {
	ChatID uuid.UUID
}

func (s ByChatID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id = ?", s.ChatID)
}

type ByChatIDs struct {
	ChatIDs []uuid.UUID
}

func (s ByChatIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chat_id IN ?", s.ChatIDs)
}

type ByMessageIDs struct {
	MessageIDs []uuid.UUID
}

func (s ByMessageIDs) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("message_id IN ?", s.MessageIDs)
}

// CreatedAtOrAfter is inclusive: a row created exactly at Time matches.
type CreatedAtOrAfter struct {
	Time time.Time
}

func (s CreatedAtOrAfter) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("created_at >= ?", s.Time)
}

// Chronological orders oldest first.
func Chronological() Specification {
	return OrderBy{Field: "created_at"}
}

// NewestFirst orders newest first.
func NewestFirst() Specification {
	return OrderBy{Field: "created_at", Desc: true}
}
