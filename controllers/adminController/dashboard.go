package adminController

import (
	"errors"
	"time"

	"roleplay/engine"
	"roleplay/middleware"
	"roleplay/models"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/gorm"
)

type Controller struct {
	DB     *gorm.DB
	Engine *engine.Engine
}

func NewController(db *gorm.DB, eng *engine.Engine) *Controller {
	return &Controller{DB: db, Engine: eng}
}

// requireAdmin resolves the acting user from the user_id query parameter and
// checks their launch-assigned role.
func (ctl *Controller) requireAdmin(c *fiber.Ctx) (*models.User, error) {
	userID := c.QueryInt("user_id")
	if userID <= 0 {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := ctl.DB.First(&user, userID).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	if user.Role != models.RoleAdmin && user.Role != models.RoleInstructor {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructors only.", nil)
	}
	return &user, nil
}

// Dashboard returns aggregate session statistics.
func (ctl *Controller) Dashboard(c *fiber.Ctx) error {
	if _, err := ctl.requireAdmin(c); err != nil {
		return err
	}

	var totalSessions, activeSessions, completedSessions int64
	ctl.DB.Model(&models.LearningSession{}).Count(&totalSessions)
	ctl.DB.Model(&models.LearningSession{}).Where("status = ?", models.SessionActive).Count(&activeSessions)
	ctl.DB.Model(&models.LearningSession{}).Where("status = ?", models.SessionCompleted).Count(&completedSessions)

	today := now.BeginningOfDay()
	var completedToday int64
	ctl.DB.Model(&models.LearningSession{}).
		Where("status = ? AND ended_at >= ?", models.SessionCompleted, today).
		Count(&completedToday)

	var averageGrade float64
	ctl.DB.Model(&models.LearningSession{}).
		Where("status = ?", models.SessionCompleted).
		Select("COALESCE(AVG(final_grade), 0)").Scan(&averageGrade)

	var totalUsers, totalScenarios int64
	ctl.DB.Model(&models.User{}).Count(&totalUsers)
	ctl.DB.Model(&models.Scenario{}).Where("is_deleted = ?", false).Count(&totalScenarios)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", fiber.Map{
		"total_sessions":     totalSessions,
		"active_sessions":    activeSessions,
		"completed_sessions": completedSessions,
		"completed_today":    completedToday,
		"average_grade":      averageGrade,
		"total_users":        totalUsers,
		"total_scenarios":    totalScenarios,
	})
}

// Sessions lists sessions with user and scenario context, newest first.
func (ctl *Controller) Sessions(c *fiber.Ctx) error {
	if _, err := ctl.requireAdmin(c); err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 10)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := ctl.DB.Model(&models.LearningSession{})
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	db.Count(&total)

	var sessions []models.LearningSession
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&sessions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch sessions!", nil)
	}

	type SessionWithContext struct {
		models.LearningSession
		UserName      string `json:"user_name"`
		UserEmail     string `json:"user_email"`
		ScenarioTitle string `json:"scenario_title"`
	}

	result := make([]SessionWithContext, len(sessions))
	for i, s := range sessions {
		var user models.User
		ctl.DB.First(&user, s.UserID)
		var scenario models.Scenario
		ctl.DB.First(&scenario, s.ScenarioID)
		result[i] = SessionWithContext{
			LearningSession: s,
			UserName:        user.Name,
			UserEmail:       user.Email,
			ScenarioTitle:   scenario.Title,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Sessions fetched successfully!", fiber.Map{
		"sessions": result,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// SessionDetail returns one session with its progress and transcript.
func (ctl *Controller) SessionDetail(c *fiber.Ctx) error {
	if _, err := ctl.requireAdmin(c); err != nil {
		return err
	}

	token := c.Params("sessionToken")
	session, progress, err := ctl.Engine.GetProgress(token)
	if err != nil {
		if errors.Is(err, engine.ErrSessionNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch session!", nil)
	}

	_, messages, err := ctl.Engine.GetTranscript(token)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch session!", nil)
	}

	var duration *float64
	if session.EndedAt != nil {
		minutes := session.EndedAt.Sub(session.StartedAt).Minutes()
		duration = &minutes
	} else {
		minutes := time.Since(session.StartedAt).Minutes()
		duration = &minutes
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session fetched successfully!", fiber.Map{
		"session":          session,
		"progress":         progress,
		"messages":         messages,
		"duration_minutes": duration,
	})
}

// AbandonSession force-closes an active session (administrative action).
func (ctl *Controller) AbandonSession(c *fiber.Ctx) error {
	if _, err := ctl.requireAdmin(c); err != nil {
		return err
	}

	token := c.Params("sessionToken")
	session, err := ctl.Engine.Abandon(token)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrSessionNotFound):
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Session not found!", nil)
		case errors.Is(err, engine.ErrSessionClosed):
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Session is already closed!", nil)
		default:
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to abandon session!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Session abandoned.", fiber.Map{
		"session_token": session.Token,
		"status":        session.Status,
	})
}
