package engine

import (
	"context"
	"testing"
	"time"

	"roleplay/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a minimal in-process Store for exercising engine internals.
type memStore struct {
	scenario *models.Scenario
	session  *models.LearningSession
	messages []models.Message
	progress []models.ObjectiveProgress
}

func newMemStore(t *testing.T, objectives []string) *memStore {
	t.Helper()
	scenario := &models.Scenario{
		Title:         "Angry Customer Call",
		CharacterName: "frustrated customer",
		Active:        true,
	}
	scenario.ID = 1
	require.NoError(t, scenario.SetObjectives(objectives))
	return &memStore{scenario: scenario}
}

func (m *memStore) ScenarioByID(id uint) (*models.Scenario, error) {
	if m.scenario == nil || m.scenario.ID != id {
		return nil, ErrScenarioNotFound
	}
	return m.scenario, nil
}

func (m *memStore) CreateSession(session *models.LearningSession, progress []models.ObjectiveProgress) error {
	session.ID = 1
	m.session = session
	for i := range progress {
		progress[i].SessionID = session.ID
	}
	m.progress = progress
	return nil
}

func (m *memStore) SessionByToken(token string) (*models.LearningSession, error) {
	if m.session == nil || m.session.Token != token {
		return nil, ErrSessionNotFound
	}
	copied := *m.session
	return &copied, nil
}

func (m *memStore) UpdateSession(session *models.LearningSession) error {
	m.session = session
	return nil
}

func (m *memStore) AppendMessage(message *models.Message) error {
	m.messages = append(m.messages, *message)
	return nil
}

func (m *memStore) Messages(sessionID uint) ([]models.Message, error) {
	return m.messages, nil
}

func (m *memStore) Progress(sessionID uint) ([]models.ObjectiveProgress, error) {
	return m.progress, nil
}

func (m *memStore) MarkObjectiveAchieved(sessionID uint, objectiveIndex int, confidence float64, achievedAt time.Time) error {
	p := &m.progress[objectiveIndex]
	if p.Achieved {
		return nil
	}
	p.Achieved = true
	p.Confidence = confidence
	p.AchievedAt = &achievedAt
	return nil
}

// achieveAllEvaluator marks every objective achieved on the first turn.
type achieveAllEvaluator struct{}

func (achieveAllEvaluator) Evaluate(_ context.Context, objectives []string, _, _ string) []ObjectiveResult {
	results := make([]ObjectiveResult, len(objectives))
	for i := range results {
		results[i] = ObjectiveResult{Achieved: true, Confidence: 0.9}
	}
	return results
}

func lockCount(e *Engine) int {
	n := 0
	e.locks.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func TestCompletionReleasesSessionLock(t *testing.T) {
	store := newMemStore(t, []string{"Ask clarifying questions"})
	eng := NewEngine(store, nil, achieveAllEvaluator{}, nil)

	user := &models.User{}
	user.ID = 1
	session, _, err := eng.CreateSession(context.Background(), user, store.scenario, LaunchContext{})
	require.NoError(t, err)

	result, err := eng.RecordTurn(context.Background(), session.Token, "Could you clarify?")
	require.NoError(t, err)
	require.True(t, result.Completed)

	assert.Equal(t, 0, lockCount(eng))

	// a turn against the completed session still fails closed and leaves no
	// lingering mutex behind
	_, err = eng.RecordTurn(context.Background(), session.Token, "again?")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, 0, lockCount(eng))
}

func TestAbandonReleasesSessionLock(t *testing.T) {
	store := newMemStore(t, []string{"Ask clarifying questions"})
	eng := NewEngine(store, nil, HeuristicEvaluator{}, nil)

	user := &models.User{}
	user.ID = 1
	session, _, err := eng.CreateSession(context.Background(), user, store.scenario, LaunchContext{})
	require.NoError(t, err)

	_, err = eng.RecordTurn(context.Background(), session.Token, "Hello.")
	require.NoError(t, err)
	assert.Equal(t, 1, lockCount(eng))

	_, err = eng.Abandon(session.Token)
	require.NoError(t, err)
	assert.Equal(t, 0, lockCount(eng))
}
