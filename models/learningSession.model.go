package models

import (
	"time"

	"gorm.io/gorm"
)

// Session status values. Completed and abandoned are terminal.
const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
)

type LearningSession struct {
	gorm.Model
	Token                string     `json:"session_token" gorm:"uniqueIndex;not null"` // opaque bearer credential
	UserID               uint       `json:"user_id" gorm:"index;not null"`
	ScenarioID           uint       `json:"scenario_id" gorm:"index;not null"`
	ContextID            string     `json:"context_id"`
	ResourceLinkID       string     `json:"resource_link_id"`
	OutcomeServiceURL    string     `json:"-"`
	ResultSourcedID      string     `json:"-"`
	Status               string     `json:"status" gorm:"default:'active';index"`
	StartedAt            time.Time  `json:"started_at"`
	EndedAt              *time.Time `json:"ended_at"`
	MessageCount         int        `json:"message_count" gorm:"default:0"`
	CompletionPercentage int        `json:"completion_percentage" gorm:"default:0"`
	FinalGrade           float64    `json:"final_grade" gorm:"default:0"` // set once, on the completed transition
	User                 User       `json:"-" gorm:"foreignKey:UserID"`
	Scenario             Scenario   `json:"-" gorm:"foreignKey:ScenarioID"`
}

// Closed reports whether the session is in a terminal state.
func (s *LearningSession) Closed() bool {
	return s.Status != SessionActive
}
