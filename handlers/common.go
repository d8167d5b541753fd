// handlers/common.go
package handlers

import (
	"log"

	"faltula/services"

	"github.com/gofiber/fiber/v2"
)

// session fetches (or lazily opens) the caller's progress session.
// A nil return means gamification is unavailable; the primary
// operation proceeds without it.
func session(c *fiber.Ctx, userID uint) *services.UserSession {
	sm := services.GetSessionManager()
	if sm == nil {
		return nil
	}

	sess, err := sm.Get(c.Context(), userID)
	if err != nil {
		log.Printf("Failed to open progress session for user %d: %v", userID, err)
		return nil
	}
	return sess
}

// refreshSnapshot pushes fresh domain data into the user's engine.
func refreshSnapshot(c *fiber.Ctx, userID uint) {
	sm := services.GetSessionManager()
	if sm == nil {
		return
	}
	if err := sm.RefreshDomainData(c.Context(), userID); err != nil {
		log.Printf("Failed to refresh domain data for user %d: %v", userID, err)
	}
}
