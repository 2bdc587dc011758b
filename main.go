package main

import (
	"context"
	"log"

	"roleplay/ai"
	"roleplay/config"
	"roleplay/controllers/adminController"
	"roleplay/controllers/ltiController"
	"roleplay/controllers/roleplayController"
	"roleplay/controllers/scenarioController"
	"roleplay/database"
	"roleplay/engine"
	"roleplay/lti"
	adminRoutes "roleplay/routers/adminRoutes"
	ltiRoutes "roleplay/routers/ltiRoutes"
	roleplayRoutes "roleplay/routers/roleplayRoutes"
	scenarioRoutes "roleplay/routers/scenarioRoutes"
	"roleplay/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	cfg := config.LoadConfig()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Database setup failed: %v", err)
	}

	provider := lti.NewProvider(cfg.LTIKey, cfg.LTISecret, cfg.AppURL)

	var dialogue engine.DialogueGenerator
	var evaluator engine.ObjectiveEvaluator
	if cfg.GeminiApiKey != "" {
		gemini, err := ai.NewGemini(context.Background(), cfg.GeminiApiKey, cfg.GeminiModel)
		if err != nil {
			log.Printf("Gemini setup failed, falling back to canned dialogue: %v", err)
		} else {
			dialogue = gemini
			evaluator = engine.NewAIEvaluator(gemini)
		}
	}

	eng := engine.NewEngine(database.NewStore(db), dialogue, evaluator, provider)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	ltiRoutes.SetupLTIRoutes(app, ltiController.NewController(db, provider))
	roleplayRoutes.SetupRoleplayRoutes(app, roleplayController.NewController(db, eng))
	scenarioRoutes.SetupScenarioRoutes(app, scenarioController.NewController(db))
	adminRoutes.SetupAdminRoutes(app, adminController.NewController(db, eng))

	sweeper := utils.StartSessionSweeper(db, eng, cfg.SessionIdleMinutes)

	log.Printf("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		sweeper.Stop()
		log.Fatalf("Server stopped: %v", err)
	}
}
