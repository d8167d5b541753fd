// handlers/profile.go
package handlers

import (
	"time"

	"faltula/achievements"
	"faltula/database"
	"faltula/middleware"
	"faltula/models"

	"github.com/gofiber/fiber/v2"
)

type ProfileRequest struct {
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Course      string `json:"course"`
	University  string `json:"university"`
	Shift       string `json:"shift"`
}

type ThemeRequest struct {
	Theme string `json:"theme"`
}

type SectionVisitRequest struct {
	Section string `json:"section"`
}

type NoteRequest struct {
	SubjectID *uint  `json:"subject_id,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// UpdateProfile updates the user's academic profile fields
func UpdateProfile(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req ProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "User not found"})
	}

	if err := db.Model(&user).Updates(map[string]interface{}{
		"display_name": req.DisplayName,
		"avatar":       req.Avatar,
		"course":       req.Course,
		"university":   req.University,
		"shift":        req.Shift,
		"updated_at":   time.Now(),
	}).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update profile"})
	}

	if sess := session(c, userID); sess != nil {
		refreshSnapshot(c, userID)
		sess.XP.AwardProfileXP(c.Context())
	}

	db.First(&user, userID)
	return c.JSON(fiber.Map{"success": true, "user": userInfo(db, user)})
}

// UpdateTheme changes the user's UI theme
func UpdateTheme(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req ThemeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if req.Theme == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Theme is required"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	if err := db.Model(&models.User{}).Where("id = ?", userID).
		Update("theme", req.Theme).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update theme"})
	}

	if sess := session(c, userID); sess != nil {
		sess.Achievements.HandleAction(c.Context(), achievements.ActionThemeChanged, nil)
	}

	return c.JSON(fiber.Map{"success": true, "theme": req.Theme})
}

// VisitSection records a navigation event into one of the app sections
func VisitSection(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req SectionVisitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if req.Section == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Section is required"})
	}

	if sess := session(c, userID); sess != nil {
		firstVisit := !sess.Achievements.SectionSeen(req.Section)
		sess.Achievements.HandleAction(c.Context(), achievements.ActionSectionVisited,
			map[string]string{"section": req.Section})
		if firstVisit {
			sess.XP.AwardSectionXP(c.Context())
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetNotes returns the user's notes
func GetNotes(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var notes []models.Note
	if err := db.Where("user_id = ?", userID).Order("updated_at DESC").Find(&notes).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load notes"})
	}

	return c.JSON(fiber.Map{"success": true, "notes": notes})
}

// CreateNote adds a planner note
func CreateNote(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req NoteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if req.Title == "" && req.Content == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Note is empty"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	note := models.Note{
		UserID:    userID,
		SubjectID: req.SubjectID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: time.Now(),
	}

	if err := db.Create(&note).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create note"})
	}

	if sess := session(c, userID); sess != nil {
		sess.Achievements.HandleAction(c.Context(), achievements.ActionNoteCreated, nil)
		sess.XP.AwardNoteXP(c.Context())
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "note": note})
}

// DeleteNote removes a planner note
func DeleteNote(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	noteID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid note id"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	res := db.Where("id = ? AND user_id = ?", noteID, userID).Delete(&models.Note{})
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete note"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Note not found"})
	}

	return c.JSON(fiber.Map{"success": true})
}
