package engine

import (
	"time"

	"roleplay/models"
)

// Store is the persistence boundary of the session engine. The production
// implementation lives in the database package; tests use a sqlite-backed one.
type Store interface {
	// ScenarioByID resolves an active scenario. Returns ErrScenarioNotFound
	// for missing, inactive or deleted scenarios.
	ScenarioByID(id uint) (*models.Scenario, error)

	// CreateSession inserts the session and its objective progress rows in
	// one transaction.
	CreateSession(session *models.LearningSession, progress []models.ObjectiveProgress) error

	// SessionByToken resolves a session by its opaque token. Returns
	// ErrSessionNotFound when no session exists.
	SessionByToken(token string) (*models.LearningSession, error)

	UpdateSession(session *models.LearningSession) error

	AppendMessage(message *models.Message) error
	Messages(sessionID uint) ([]models.Message, error)

	Progress(sessionID uint) ([]models.ObjectiveProgress, error)

	// MarkObjectiveAchieved flips an objective to achieved if and only if it
	// is not achieved yet. Calling it for an achieved objective is a no-op,
	// so the false-to-true transition never reverts and the first recorded
	// confidence is kept.
	MarkObjectiveAchieved(sessionID uint, objectiveIndex int, confidence float64, achievedAt time.Time) error
}
