package models

import (
	"gorm.io/gorm"
)

// Role values assigned from LTI launch claims
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

type User struct {
	gorm.Model
	ExternalUserID string `json:"external_user_id" gorm:"uniqueIndex;not null"` // user_id / sub from the LMS
	Name           string `json:"name" gorm:"default:''"`
	Email          string `json:"email" gorm:"default:''"`
	Role           string `json:"role" gorm:"default:'student'"`
}
