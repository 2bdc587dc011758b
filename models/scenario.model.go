package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Scenario struct {
	gorm.Model
	Title              string         `json:"title" gorm:"not null"`
	Description        string         `json:"description"`
	Objective          string         `json:"objective"` // overall objective summary shown to admins
	CharacterName      string         `json:"character_name" gorm:"not null"`
	CharacterTone      string         `json:"character_tone"`
	CharacterContext   string         `json:"character_context"`
	LearningObjectives datatypes.JSON `json:"learning_objectives"` // ordered JSON array of strings
	Active             bool           `json:"active" gorm:"default:true"`
	IsDeleted          bool           `json:"-" gorm:"default:false"`
}

// Objectives decodes the learning objectives column into its ordered list.
func (s *Scenario) Objectives() []string {
	var objectives []string
	if len(s.LearningObjectives) == 0 {
		return objectives
	}
	if err := json.Unmarshal(s.LearningObjectives, &objectives); err != nil {
		return nil
	}
	return objectives
}

// SetObjectives encodes the ordered objective list into the JSON column.
func (s *Scenario) SetObjectives(objectives []string) error {
	raw, err := json.Marshal(objectives)
	if err != nil {
		return err
	}
	s.LearningObjectives = datatypes.JSON(raw)
	return nil
}
