// handlers/subjects.go
package handlers

import (
	"time"

	"faltula/achievements"
	"faltula/database"
	"faltula/middleware"
	"faltula/models"

	"github.com/gofiber/fiber/v2"
)

type SubjectRequest struct {
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Professor   string   `json:"professor"`
	Color       string   `json:"color"`
	MaxAbsences int      `json:"max_absences"`
	Grade       *float64 `json:"grade,omitempty"`
}

// GetSubjects returns all subjects for the authenticated user
func GetSubjects(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var subjects []models.Subject
	if err := db.Where("user_id = ?", userID).
		Preload("Slots").
		Order("name ASC").
		Find(&subjects).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load subjects"})
	}

	return c.JSON(fiber.Map{"success": true, "subjects": subjects})
}

// CreateSubject creates a new subject for the authenticated user
func CreateSubject(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if req.Name == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Subject name is required"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	subject := models.Subject{
		UserID:      userID,
		Name:        req.Name,
		Code:        req.Code,
		Professor:   req.Professor,
		Color:       req.Color,
		MaxAbsences: req.MaxAbsences,
		Grade:       req.Grade,
		CreatedAt:   time.Now(),
	}

	if err := db.Create(&subject).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create subject"})
	}

	// Progress only after the primary write succeeded
	if sess := session(c, userID); sess != nil {
		refreshSnapshot(c, userID)
		payload := map[string]string{}
		if req.Color != "" {
			payload["color"] = req.Color
		}
		sess.Achievements.HandleAction(c.Context(), achievements.ActionSubjectCreated, payload)
		sess.XP.AwardSubjectXP(c.Context())
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "subject": subject})
}

// UpdateSubject updates an existing subject
func UpdateSubject(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	subjectID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid subject id"})
	}

	var req SubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var subject models.Subject
	if err := db.Where("id = ? AND user_id = ?", subjectID, userID).First(&subject).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Subject not found"})
	}

	updates := map[string]interface{}{
		"name":         req.Name,
		"code":         req.Code,
		"professor":    req.Professor,
		"color":        req.Color,
		"max_absences": req.MaxAbsences,
		"updated_at":   time.Now(),
	}
	if req.Grade != nil {
		updates["grade"] = *req.Grade
	}

	if err := db.Model(&subject).Updates(updates).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update subject"})
	}

	if sess := session(c, userID); sess != nil {
		refreshSnapshot(c, userID)
		if req.Color != "" && req.Color != subject.Color {
			sess.Achievements.HandleAction(c.Context(), achievements.ActionColorChanged,
				map[string]string{"color": req.Color})
		}
	}

	db.First(&subject, subject.ID)
	return c.JSON(fiber.Map{"success": true, "subject": subject})
}

// DeleteSubject removes a subject and everything attached to it
func DeleteSubject(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	subjectID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid subject id"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var subject models.Subject
	if err := db.Where("id = ? AND user_id = ?", subjectID, userID).First(&subject).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Subject not found"})
	}

	db.Where("subject_id = ?", subject.ID).Delete(&models.Absence{})
	db.Where("subject_id = ?", subject.ID).Delete(&models.ScheduleSlot{})

	if err := db.Delete(&subject).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete subject"})
	}

	refreshSnapshot(c, userID)

	return c.JSON(fiber.Map{"success": true})
}
