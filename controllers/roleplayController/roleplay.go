package roleplayController

import (
	"errors"
	"log"
	"strings"

	"roleplay/engine"
	"roleplay/middleware"
	"roleplay/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Controller struct {
	DB     *gorm.DB
	Engine *engine.Engine
}

func NewController(db *gorm.DB, eng *engine.Engine) *Controller {
	return &Controller{DB: db, Engine: eng}
}

// Start creates a new roleplay session for a user and scenario. The outcome
// service binding is taken from the user's most recent successful launch on
// the same resource link.
func (ctl *Controller) Start(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStartRequest").(*StartRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var user models.User
	if err := ctl.DB.First(&user, reqData.UserID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	var scenario models.Scenario
	if err := ctl.DB.Where("id = ? AND active = ? AND is_deleted = ?", reqData.ScenarioID, true, false).
		First(&scenario).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Scenario not found!", nil)
	}

	launch := engine.LaunchContext{
		ContextID:      reqData.ContextID,
		ResourceLinkID: reqData.ResourceLinkID,
	}

	// Outcome binding from the launch audit trail; absent for non-graded or
	// test launches.
	var lastLaunch models.LTILaunch
	if err := ctl.DB.Where("user_id = ? AND resource_link_id = ? AND success = ?",
		user.ID, reqData.ResourceLinkID, true).
		Order("created_at desc").First(&lastLaunch).Error; err == nil {
		launch.OutcomeServiceURL = lastLaunch.OutcomeServiceURL
		launch.ResultSourcedID = lastLaunch.ResultSourcedID
	}

	session, opening, err := ctl.Engine.CreateSession(c.Context(), &user, &scenario, launch)
	if err != nil {
		log.Printf("Failed to start session for user %d scenario %d: %v", user.ID, scenario.ID, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start roleplay session!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Roleplay session started.", fiber.Map{
		"session_token":   session.Token,
		"initial_message": opening.Content,
		"scenario": fiber.Map{
			"title":       scenario.Title,
			"description": scenario.Description,
			"character":   scenario.CharacterName,
		},
	})
}

// Chat records one student turn and returns the character's reply with the
// updated progress.
func (ctl *Controller) Chat(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedChatRequest").(*ChatRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	result, err := ctl.Engine.RecordTurn(c.Context(), reqData.SessionToken, strings.TrimSpace(reqData.Message))
	if err != nil {
		return sessionErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Turn recorded.", fiber.Map{
		"response":              result.Reply,
		"progress":              result.Progress,
		"completion_percentage": result.CompletionPercentage,
		"completed":             result.Completed,
	})
}

// GetSession returns the session state and objective progress for a token.
func (ctl *Controller) GetSession(c *fiber.Ctx) error {
	token := c.Params("sessionToken")
	session, progress, err := ctl.Engine.GetProgress(token)
	if err != nil {
		return sessionErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched successfully!", fiber.Map{
		"session":               session,
		"progress":              progress,
		"completion_percentage": session.CompletionPercentage,
	})
}

// GetMessages returns the ordered transcript for a token.
func (ctl *Controller) GetMessages(c *fiber.Ctx) error {
	token := c.Params("sessionToken")
	session, messages, err := ctl.Engine.GetTranscript(token)
	if err != nil {
		return sessionErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Messages fetched successfully!", fiber.Map{
		"session_token": session.Token,
		"messages":      messages,
	})
}

// sessionErrorResponse maps engine errors to HTTP statuses: terminal
// not-found and closed-session failures get 404/409, anything else is a 500.
func sessionErrorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, engine.ErrSessionNotFound), errors.Is(err, engine.ErrScenarioNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
	case errors.Is(err, engine.ErrSessionClosed):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Session is already closed!", nil)
	default:
		log.Printf("Roleplay request failed: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process message!", nil)
	}
}
