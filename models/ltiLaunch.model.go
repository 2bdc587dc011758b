package models

import (
	"gorm.io/gorm"
)

// LTILaunch records every launch attempt, successful or not.
type LTILaunch struct {
	gorm.Model
	UserID            *uint  `json:"user_id" gorm:"index"`
	ContextID         string `json:"context_id"`
	ResourceLinkID    string `json:"resource_link_id" gorm:"index"`
	LaunchURL         string `json:"launch_url"`
	OutcomeServiceURL string `json:"outcome_service_url"`
	ResultSourcedID   string `json:"result_sourcedid"`
	Success           bool   `json:"success" gorm:"default:true"`
	ErrorMessage      string `json:"error_message"`
}
