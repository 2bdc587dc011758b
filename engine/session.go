package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"roleplay/models"
)

// DefaultGenerateTimeout bounds a single dialogue generator call. The
// generator gets one attempt; on timeout or error the turn falls back to a
// canned line.
const DefaultGenerateTimeout = 20 * time.Second

// GradeReporter sends a score back to the launching LMS. Best effort: it
// reports success as a bool and never blocks a turn.
type GradeReporter interface {
	SendGrade(outcomeServiceURL, resultSourcedID string, score float64) bool
}

// LaunchContext carries the LTI binding a session was launched under.
type LaunchContext struct {
	ContextID         string
	ResourceLinkID    string
	OutcomeServiceURL string
	ResultSourcedID   string
}

// TurnResult is what a recorded turn returns to the student's client.
type TurnResult struct {
	Reply                string
	Progress             []models.ObjectiveProgress
	CompletionPercentage int
	Completed            bool
}

// Engine owns the learning session lifecycle: creation, turn recording,
// objective progress, completion and grade reporting.
type Engine struct {
	store           Store
	dialogue        DialogueGenerator
	evaluator       ObjectiveEvaluator
	reporter        GradeReporter
	generateTimeout time.Duration

	// one mutex per session token; turns on the same session are serialized,
	// turns on different sessions run in parallel
	locks sync.Map
}

func NewEngine(store Store, dialogue DialogueGenerator, evaluator ObjectiveEvaluator, reporter GradeReporter) *Engine {
	if evaluator == nil {
		evaluator = HeuristicEvaluator{}
	}
	return &Engine{
		store:           store,
		dialogue:        dialogue,
		evaluator:       evaluator,
		reporter:        reporter,
		generateTimeout: DefaultGenerateTimeout,
	}
}

// SetGenerateTimeout overrides the dialogue generator deadline.
func (e *Engine) SetGenerateTimeout(d time.Duration) {
	if d > 0 {
		e.generateTimeout = d
	}
}

func (e *Engine) lockFor(token string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(token, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// newSessionToken returns a cryptographically unpredictable opaque token.
func newSessionToken() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("session token entropy unavailable: %v", err))
	}
	return fmt.Sprintf("session_%d_%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}

// CreateSession starts a new roleplay session for a user and scenario. It
// creates the session in active status with one progress row per objective,
// then emits the character's opening line (templated fallback if the
// generator is unavailable). Returns the session and the opening message.
func (e *Engine) CreateSession(ctx context.Context, user *models.User, scenario *models.Scenario, launch LaunchContext) (*models.LearningSession, *models.Message, error) {
	objectives := scenario.Objectives()

	session := &models.LearningSession{
		Token:             newSessionToken(),
		UserID:            user.ID,
		ScenarioID:        scenario.ID,
		ContextID:         launch.ContextID,
		ResourceLinkID:    launch.ResourceLinkID,
		OutcomeServiceURL: launch.OutcomeServiceURL,
		ResultSourcedID:   launch.ResultSourcedID,
		Status:            models.SessionActive,
		StartedAt:         time.Now(),
	}

	progress := make([]models.ObjectiveProgress, len(objectives))
	for i, objective := range objectives {
		progress[i] = models.ObjectiveProgress{
			ObjectiveIndex: i,
			Description:    objective,
		}
	}

	if err := e.store.CreateSession(session, progress); err != nil {
		return nil, nil, err
	}

	opening := e.generateOpening(ctx, scenario)
	message := &models.Message{
		SessionID:  session.ID,
		Role:       models.MessageRoleCharacter,
		Content:    opening,
		SequenceNo: 1,
		TokenCount: EstimateTokens(opening),
	}
	if err := e.store.AppendMessage(message); err != nil {
		return nil, nil, err
	}

	session.MessageCount = 1
	if err := e.store.UpdateSession(session); err != nil {
		return nil, nil, err
	}

	return session, message, nil
}

func (e *Engine) generateOpening(ctx context.Context, scenario *models.Scenario) string {
	if e.dialogue == nil {
		return FallbackOpening(scenario)
	}
	genCtx, cancel := context.WithTimeout(ctx, e.generateTimeout)
	defer cancel()

	opening, err := e.dialogue.GenerateOpening(genCtx, scenario)
	if err != nil || opening == "" {
		log.Printf("Opening generation failed for scenario %d, using fallback: %v", scenario.ID, err)
		return FallbackOpening(scenario)
	}
	return opening
}

// RecordTurn processes one student utterance: appends it to the transcript,
// produces the character's reply, evaluates the objectives and updates
// progress, completion and, on full completion, the final grade and the
// asynchronous grade report. Turns against the same session are serialized.
func (e *Engine) RecordTurn(ctx context.Context, token, utterance string) (*TurnResult, error) {
	mu := e.lockFor(token)
	mu.Lock()
	defer mu.Unlock()

	session, err := e.store.SessionByToken(token)
	if err != nil {
		e.locks.Delete(token)
		return nil, err
	}
	if session.Closed() {
		e.locks.Delete(token)
		return nil, ErrSessionClosed
	}

	scenario, err := e.store.ScenarioByID(session.ScenarioID)
	if err != nil {
		return nil, err
	}

	history, err := e.store.Messages(session.ID)
	if err != nil {
		return nil, err
	}

	studentMessage := &models.Message{
		SessionID:  session.ID,
		Role:       models.MessageRoleUser,
		Content:    utterance,
		SequenceNo: len(history) + 1,
		TokenCount: EstimateTokens(utterance),
	}
	if err := e.store.AppendMessage(studentMessage); err != nil {
		return nil, err
	}

	reply := e.generateReply(ctx, scenario, history, utterance)
	replyMessage := &models.Message{
		SessionID:  session.ID,
		Role:       models.MessageRoleCharacter,
		Content:    reply,
		SequenceNo: len(history) + 2,
		TokenCount: EstimateTokens(reply),
	}
	if err := e.store.AppendMessage(replyMessage); err != nil {
		return nil, err
	}

	e.applyEvaluation(ctx, session, scenario, utterance, reply)

	progress, err := e.store.Progress(session.ID)
	if err != nil {
		return nil, err
	}

	session.MessageCount = len(history) + 2
	session.CompletionPercentage = completionPercentage(progress)

	completed := false
	if session.CompletionPercentage == 100 && session.Status == models.SessionActive {
		now := time.Now()
		session.Status = models.SessionCompleted
		session.EndedAt = &now
		session.FinalGrade = finalGrade(progress)
		completed = true
	}

	if err := e.store.UpdateSession(session); err != nil {
		return nil, err
	}

	if completed {
		// terminal sessions take no further turns; the serializing mutex
		// entry can go with them
		e.locks.Delete(token)
		e.reportGrade(session)
	}

	return &TurnResult{
		Reply:                reply,
		Progress:             progress,
		CompletionPercentage: session.CompletionPercentage,
		Completed:            completed,
	}, nil
}

func (e *Engine) generateReply(ctx context.Context, scenario *models.Scenario, history []models.Message, utterance string) string {
	if e.dialogue == nil {
		return FallbackReply
	}
	genCtx, cancel := context.WithTimeout(ctx, e.generateTimeout)
	defer cancel()

	reply, err := e.dialogue.GenerateReply(genCtx, scenario, history, utterance)
	if err != nil || reply == "" {
		log.Printf("Reply generation failed for scenario %d, using fallback: %v", scenario.ID, err)
		return FallbackReply
	}
	return reply
}

// applyEvaluation runs the objective evaluator and records every new
// achievement above the confidence threshold. Already-achieved objectives are
// left untouched.
func (e *Engine) applyEvaluation(ctx context.Context, session *models.LearningSession, scenario *models.Scenario, utterance, reply string) {
	objectives := scenario.Objectives()
	if len(objectives) == 0 {
		return
	}

	results := e.evaluator.Evaluate(ctx, objectives, utterance, reply)
	now := time.Now()
	for i, result := range results {
		if i >= len(objectives) {
			break
		}
		if !result.Achieved || result.Confidence <= AchievementThreshold {
			continue
		}
		if err := e.store.MarkObjectiveAchieved(session.ID, i, result.Confidence, now); err != nil {
			log.Printf("Failed to record objective %d for session %d: %v", i, session.ID, err)
		}
	}
}

func (e *Engine) reportGrade(session *models.LearningSession) {
	if e.reporter == nil || session.OutcomeServiceURL == "" || session.ResultSourcedID == "" {
		log.Printf("Session %s completed with grade %.2f; no outcome service to report to", session.Token, session.FinalGrade)
		return
	}
	url, sourcedID, grade, token := session.OutcomeServiceURL, session.ResultSourcedID, session.FinalGrade, session.Token
	go func() {
		if ok := e.reporter.SendGrade(url, sourcedID, grade); !ok {
			log.Printf("Grade passback failed for session %s (score %.2f)", token, grade)
		}
	}()
}

// GetProgress returns the session and its objective progress.
func (e *Engine) GetProgress(token string) (*models.LearningSession, []models.ObjectiveProgress, error) {
	session, err := e.store.SessionByToken(token)
	if err != nil {
		return nil, nil, err
	}
	progress, err := e.store.Progress(session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, progress, nil
}

// GetTranscript returns the session and its ordered transcript.
func (e *Engine) GetTranscript(token string) (*models.LearningSession, []models.Message, error) {
	session, err := e.store.SessionByToken(token)
	if err != nil {
		return nil, nil, err
	}
	messages, err := e.store.Messages(session.ID)
	if err != nil {
		return nil, nil, err
	}
	return session, messages, nil
}

// Abandon moves an active session to the abandoned terminal state. A closed
// session cannot be abandoned again.
func (e *Engine) Abandon(token string) (*models.LearningSession, error) {
	mu := e.lockFor(token)
	mu.Lock()
	defer mu.Unlock()

	session, err := e.store.SessionByToken(token)
	if err != nil {
		e.locks.Delete(token)
		return nil, err
	}
	if session.Closed() {
		e.locks.Delete(token)
		return nil, ErrSessionClosed
	}

	now := time.Now()
	session.Status = models.SessionAbandoned
	session.EndedAt = &now
	if err := e.store.UpdateSession(session); err != nil {
		return nil, err
	}
	e.locks.Delete(token)
	return session, nil
}

// completionPercentage is the single place the percentage is computed:
// round(100 * achieved / total).
func completionPercentage(progress []models.ObjectiveProgress) int {
	if len(progress) == 0 {
		return 0
	}
	achieved := 0
	for _, p := range progress {
		if p.Achieved {
			achieved++
		}
	}
	return int(math.Round(float64(achieved) * 100 / float64(len(progress))))
}

// finalGrade is the mean confidence across all objectives, unachieved ones
// contributing zero, rounded to two decimals.
func finalGrade(progress []models.ObjectiveProgress) float64 {
	if len(progress) == 0 {
		return 0
	}
	total := 0.0
	for _, p := range progress {
		if p.Achieved {
			total += p.Confidence
		}
	}
	return math.Round(total/float64(len(progress))*100) / 100
}
