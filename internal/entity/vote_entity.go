package entity

import "github.com/google/uuid"

type VoteType string

const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

type Vote struct {
	ChatId    uuid.UUID
	MessageId uuid.UUID
	IsUpvoted bool
}
