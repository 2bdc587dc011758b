package database

import (
	"errors"
	"time"

	"roleplay/engine"
	"roleplay/models"

	"gorm.io/gorm"
)

// Store implements engine.Store on top of GORM.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ScenarioByID(id uint) (*models.Scenario, error) {
	var scenario models.Scenario
	err := s.db.Where("id = ? AND active = ? AND is_deleted = ?", id, true, false).First(&scenario).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, engine.ErrScenarioNotFound
	}
	if err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Store) CreateSession(session *models.LearningSession, progress []models.ObjectiveProgress) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		for i := range progress {
			progress[i].SessionID = session.ID
		}
		if len(progress) == 0 {
			return nil
		}
		return tx.Create(&progress).Error
	})
}

func (s *Store) SessionByToken(token string) (*models.LearningSession, error) {
	var session models.LearningSession
	err := s.db.Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, engine.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) UpdateSession(session *models.LearningSession) error {
	return s.db.Save(session).Error
}

func (s *Store) AppendMessage(message *models.Message) error {
	return s.db.Create(message).Error
}

func (s *Store) Messages(sessionID uint) ([]models.Message, error) {
	var messages []models.Message
	err := s.db.Where("session_id = ?", sessionID).Order("sequence_no asc").Find(&messages).Error
	return messages, err
}

func (s *Store) Progress(sessionID uint) ([]models.ObjectiveProgress, error) {
	var progress []models.ObjectiveProgress
	err := s.db.Where("session_id = ?", sessionID).Order("objective_index asc").Find(&progress).Error
	return progress, err
}

// MarkObjectiveAchieved flips the row only while it is still unachieved, so
// the transition never reverts and the first confidence wins.
func (s *Store) MarkObjectiveAchieved(sessionID uint, objectiveIndex int, confidence float64, achievedAt time.Time) error {
	return s.db.Model(&models.ObjectiveProgress{}).
		Where("session_id = ? AND objective_index = ? AND achieved = ?", sessionID, objectiveIndex, false).
		Updates(map[string]interface{}{
			"achieved":    true,
			"achieved_at": achievedAt,
			"confidence":  confidence,
		}).Error
}
