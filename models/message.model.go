package models

import (
	"gorm.io/gorm"
)

// Message roles in the transcript
const (
	MessageRoleUser      = "user"
	MessageRoleCharacter = "character"
)

// Message is one line of a session transcript. Append only; SequenceNo is the
// authoritative ordering (CreatedAt timestamps may tie).
type Message struct {
	gorm.Model
	SessionID  uint   `json:"session_id" gorm:"index;not null"`
	Role       string `json:"role" gorm:"not null"`
	Content    string `json:"content" gorm:"not null"`
	SequenceNo int    `json:"sequence_no" gorm:"not null"`
	TokenCount int    `json:"token_count" gorm:"default:0"`
}
