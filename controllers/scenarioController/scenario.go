package scenarioController

import (
	"log"

	"roleplay/middleware"
	"roleplay/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type Controller struct {
	DB *gorm.DB
}

func NewController(db *gorm.DB) *Controller {
	return &Controller{DB: db}
}

// List returns the active scenarios students can pick from.
func (ctl *Controller) List(c *fiber.Ctx) error {
	var scenarios []models.Scenario
	if err := ctl.DB.Where("active = ? AND is_deleted = ?", true, false).
		Order("created_at desc").Find(&scenarios).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch scenarios!", nil)
	}

	type scenarioSummary struct {
		ID          uint     `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Objective   string   `json:"objective"`
		Character   string   `json:"character"`
		Objectives  []string `json:"objectives"`
	}

	result := make([]scenarioSummary, len(scenarios))
	for i, s := range scenarios {
		result[i] = scenarioSummary{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Objective:   s.Objective,
			Character:   s.CharacterName,
			Objectives:  s.Objectives(),
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Scenarios fetched successfully!", result)
}

// Get returns one active scenario by ID.
func (ctl *Controller) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid scenario id!", nil)
	}

	var scenario models.Scenario
	if err := ctl.DB.Where("id = ? AND active = ? AND is_deleted = ?", id, true, false).
		First(&scenario).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Scenario not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Scenario fetched successfully!", fiber.Map{
		"scenario":   scenario,
		"objectives": scenario.Objectives(),
	})
}

// ScenarioRequest is the validated body for admin scenario create/update.
type ScenarioRequest struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Objective        string   `json:"objective"`
	CharacterName    string   `json:"character_name"`
	CharacterTone    string   `json:"character_tone"`
	CharacterContext string   `json:"character_context"`
	Objectives       []string `json:"objectives"`
}

// Create adds a new scenario (admin).
func (ctl *Controller) Create(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedScenario").(*ScenarioRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	scenario := models.Scenario{
		Title:            reqData.Title,
		Description:      reqData.Description,
		Objective:        reqData.Objective,
		CharacterName:    reqData.CharacterName,
		CharacterTone:    reqData.CharacterTone,
		CharacterContext: reqData.CharacterContext,
		Active:           true,
	}
	if err := scenario.SetObjectives(reqData.Objectives); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid objectives!", nil)
	}

	if err := ctl.DB.Create(&scenario).Error; err != nil {
		log.Printf("Failed to create scenario: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create scenario!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Scenario created successfully.", scenario)
}

// Update edits an existing scenario (admin).
func (ctl *Controller) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid scenario id!", nil)
	}

	reqData, ok := c.Locals("validatedScenario").(*ScenarioRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	var scenario models.Scenario
	if err := ctl.DB.Where("id = ? AND is_deleted = ?", id, false).First(&scenario).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Scenario not found!", nil)
	}

	scenario.Title = reqData.Title
	scenario.Description = reqData.Description
	scenario.Objective = reqData.Objective
	scenario.CharacterName = reqData.CharacterName
	scenario.CharacterTone = reqData.CharacterTone
	scenario.CharacterContext = reqData.CharacterContext
	if err := scenario.SetObjectives(reqData.Objectives); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid objectives!", nil)
	}

	if err := ctl.DB.Save(&scenario).Error; err != nil {
		log.Printf("Failed to update scenario %d: %v", id, err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update scenario!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Scenario updated successfully.", scenario)
}

// Toggle flips a scenario's active flag (admin).
func (ctl *Controller) Toggle(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid scenario id!", nil)
	}

	var scenario models.Scenario
	if err := ctl.DB.Where("id = ? AND is_deleted = ?", id, false).First(&scenario).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Scenario not found!", nil)
	}

	scenario.Active = !scenario.Active
	if err := ctl.DB.Save(&scenario).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to toggle scenario!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Scenario toggled successfully.", fiber.Map{
		"id":     scenario.ID,
		"active": scenario.Active,
	})
}

// Delete soft-deletes a scenario (admin).
func (ctl *Controller) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid scenario id!", nil)
	}

	var scenario models.Scenario
	if err := ctl.DB.Where("id = ? AND is_deleted = ?", id, false).First(&scenario).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Scenario not found!", nil)
	}

	scenario.IsDeleted = true
	scenario.Active = false
	if err := ctl.DB.Save(&scenario).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete scenario!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Scenario deleted successfully.", nil)
}
