// handlers/absences.go
package handlers

import (
	"strconv"
	"time"

	"faltula/achievements"
	"faltula/database"
	"faltula/middleware"
	"faltula/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AbsenceRequest struct {
	SubjectID uint   `json:"subject_id"`
	Date      string `json:"date"` // YYYY-MM-DD
	Justified bool   `json:"justified"`
	Reason    string `json:"reason"`
}

// quickRemovalWindow is how soon after logging an absence its removal
// still counts as an undo.
const quickRemovalWindow = 10 * time.Minute

// GetAbsences returns all absences for the authenticated user
func GetAbsences(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	query := db.Where("user_id = ?", userID)
	if subjectID := c.Query("subject_id"); subjectID != "" {
		if id, err := strconv.Atoi(subjectID); err == nil {
			query = query.Where("subject_id = ?", id)
		}
	}

	var absences []models.Absence
	if err := query.Preload("Subject").Order("date DESC").Find(&absences).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load absences"})
	}

	return c.JSON(fiber.Map{"success": true, "absences": absences})
}

// CreateAbsence logs an absence for a subject on a civil date
func CreateAbsence(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req AbsenceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Date must be YYYY-MM-DD"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var subject models.Subject
	if err := db.Where("id = ? AND user_id = ?", req.SubjectID, userID).First(&subject).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Subject not found"})
	}

	absence := models.Absence{
		UserID:    userID,
		SubjectID: req.SubjectID,
		Date:      req.Date,
		Justified: req.Justified,
		Reason:    req.Reason,
		CreatedAt: time.Now(),
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&absence).Error; err != nil {
			return err
		}
		return tx.Model(&subject).
			Update("current_absences", gorm.Expr("current_absences + 1")).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to log absence"})
	}

	// Progress only after the primary write succeeded
	if sess := session(c, userID); sess != nil {
		refreshSnapshot(c, userID)
		sess.Achievements.HandleAction(c.Context(), achievements.ActionAbsenceAdded,
			map[string]string{
				"date":       req.Date,
				"subject_id": strconv.FormatUint(uint64(req.SubjectID), 10),
			})
		sess.XP.AwardAbsenceXP(c.Context())
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "absence": absence})
}

// DeleteAbsence removes a logged absence. Removing one shortly after
// logging it counts as an undo event.
func DeleteAbsence(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	absenceID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid absence id"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var absence models.Absence
	if err := db.Where("id = ? AND user_id = ?", absenceID, userID).First(&absence).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Absence not found"})
	}

	quickRemoval := time.Since(absence.CreatedAt) <= quickRemovalWindow

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&absence).Error; err != nil {
			return err
		}
		return tx.Model(&models.Subject{}).
			Where("id = ? AND current_absences > 0", absence.SubjectID).
			Update("current_absences", gorm.Expr("current_absences - 1")).Error
	})
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to remove absence"})
	}

	if sess := session(c, userID); sess != nil {
		refreshSnapshot(c, userID)
		if quickRemoval {
			sess.Achievements.HandleAction(c.Context(), achievements.ActionQuickAbsenceRemoval, nil)
		}
	}

	return c.JSON(fiber.Map{"success": true})
}

// CheckInEarlyClass records attendance at a 7 AM class. Valid only
// when the user actually has a slot starting at 7 on today's weekday.
func CheckInEarlyClass(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	now := time.Now()
	var count int64
	db.Model(&models.ScheduleSlot{}).
		Where("user_id = ? AND weekday = ? AND start_hour = 7", userID, int(now.Weekday())).
		Count(&count)

	if count == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "No 7 AM class scheduled today"})
	}

	if sess := session(c, userID); sess != nil {
		sess.Achievements.HandleAction(c.Context(), achievements.ActionEarlyClassAttended, nil)
	}

	return c.JSON(fiber.Map{"success": true})
}
