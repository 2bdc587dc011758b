package utils

import (
	"log"
	"time"

	"roleplay/engine"
	"roleplay/models"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// logSweeper logs sweeper events with timestamp
func logSweeper(message string) {
	log.Printf("[SESSION-SWEEPER %s] %s", time.Now().Format(time.RFC3339), message)
}

// sweepIdleSessions abandons active sessions that have had no activity for
// the idle window. Abandonment goes through the engine so the terminal
// transition is the same one administrative actions use.
func sweepIdleSessions(db *gorm.DB, eng *engine.Engine, idleWindow time.Duration) {
	cutoff := time.Now().Add(-idleWindow)

	var stale []models.LearningSession
	if err := db.Where("status = ? AND updated_at < ?", models.SessionActive, cutoff).
		Find(&stale).Error; err != nil {
		logSweeper("Error fetching idle sessions: " + err.Error())
		return
	}

	for _, session := range stale {
		if _, err := eng.Abandon(session.Token); err != nil {
			logSweeper("Failed to abandon session " + session.Token + ": " + err.Error())
			continue
		}
		logSweeper("Abandoned idle session " + session.Token)
	}
}

// StartSessionSweeper runs the idle-session sweep every five minutes.
func StartSessionSweeper(db *gorm.DB, eng *engine.Engine, idleMinutes int) *cron.Cron {
	idleWindow := time.Duration(idleMinutes) * time.Minute

	c := cron.New()
	_, err := c.AddFunc("*/5 * * * *", func() {
		sweepIdleSessions(db, eng, idleWindow)
	})
	if err != nil {
		log.Fatalf("Failed to schedule session sweeper: %v", err)
	}
	c.Start()

	logSweeper("Session sweeper started")
	return c
}
