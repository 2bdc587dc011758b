package models

import (
	"time"

	"gorm.io/gorm"
)

// ObjectiveProgress tracks one learning objective within one session. Rows are
// created with the session; Achieved transitions false to true only.
type ObjectiveProgress struct {
	gorm.Model
	SessionID      uint       `json:"session_id" gorm:"index:idx_session_objective,unique;not null"`
	ObjectiveIndex int        `json:"objective_index" gorm:"index:idx_session_objective,unique;not null"`
	Description    string     `json:"description" gorm:"not null"`
	Achieved       bool       `json:"achieved" gorm:"default:false"`
	AchievedAt     *time.Time `json:"achieved_at"`
	Confidence     float64    `json:"confidence" gorm:"default:0"`
}
