// handlers/schedule.go
package handlers

import (
	"time"

	"faltula/achievements"
	"faltula/database"
	"faltula/middleware"
	"faltula/models"

	"github.com/gofiber/fiber/v2"
)

type ScheduleSlotRequest struct {
	SubjectID uint   `json:"subject_id"`
	Weekday   int    `json:"weekday"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
	Room      string `json:"room"`
	Color     string `json:"color"`
}

type ScheduleImportRequest struct {
	Subjects []struct {
		Name        string   `json:"name"`
		Code        string   `json:"code"`
		Professor   string   `json:"professor"`
		Color       string   `json:"color"`
		MaxAbsences int      `json:"max_absences"`
		Grade       *float64 `json:"grade,omitempty"`
		Slots       []struct {
			Weekday   int    `json:"weekday"`
			StartHour int    `json:"start_hour"`
			EndHour   int    `json:"end_hour"`
			Room      string `json:"room"`
		} `json:"slots"`
	} `json:"subjects"`
}

// importGuardWindow caps how long evaluation stays suppressed if an
// import never reports completion.
const importGuardWindow = 30 * time.Second

// GetSchedule returns all schedule slots for the authenticated user
func GetSchedule(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var slots []models.ScheduleSlot
	if err := db.Where("user_id = ?", userID).
		Preload("Subject").
		Order("weekday ASC, start_hour ASC").
		Find(&slots).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load schedule"})
	}

	return c.JSON(fiber.Map{"success": true, "slots": slots})
}

// CreateScheduleSlot adds one slot to the user's weekly grid
func CreateScheduleSlot(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req ScheduleSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if req.Weekday < 0 || req.Weekday > 6 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Weekday must be between 0 and 6"})
	}
	if req.StartHour < 0 || req.StartHour > 23 || req.EndHour <= req.StartHour {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid time range"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	var subject models.Subject
	if err := db.Where("id = ? AND user_id = ?", req.SubjectID, userID).First(&subject).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Subject not found"})
	}

	slot := models.ScheduleSlot{
		UserID:    userID,
		SubjectID: req.SubjectID,
		Weekday:   req.Weekday,
		StartHour: req.StartHour,
		EndHour:   req.EndHour,
		Room:      req.Room,
		Color:     req.Color,
		CreatedAt: time.Now(),
	}

	if err := db.Create(&slot).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to create schedule slot"})
	}

	if sess := session(c, userID); sess != nil {
		refreshSnapshot(c, userID)
		payload := map[string]string{}
		if req.Color != "" {
			payload["color"] = req.Color
		}
		sess.Achievements.HandleAction(c.Context(), achievements.ActionScheduleSlotAdded, payload)
		sess.XP.AwardScheduleSlotXP(c.Context())
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "slot": slot})
}

// DeleteScheduleSlot removes one slot from the grid
func DeleteScheduleSlot(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	slotID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid slot id"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	res := db.Where("id = ? AND user_id = ?", slotID, userID).Delete(&models.ScheduleSlot{})
	if res.Error != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to delete slot"})
	}
	if res.RowsAffected == 0 {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Slot not found"})
	}

	refreshSnapshot(c, userID)

	return c.JSON(fiber.Map{"success": true})
}

// ImportSchedule bulk-imports subjects and slots in one request.
// Evaluation is suppressed for the whole import so historical data
// cannot fire achievements retroactively; imported grades still count
// once, through the grade_imported action after the guard lifts.
func ImportSchedule(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req ScheduleImportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if len(req.Subjects) == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Nothing to import"})
	}

	db := database.GetDB()
	if db == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Database not available"})
	}

	sess := session(c, userID)
	if sess != nil {
		sess.Achievements.BeginImport(importGuardWindow)
	}

	importedSubjects := 0
	importedSlots := 0
	importedGrades := 0

	for _, s := range req.Subjects {
		if s.Name == "" {
			continue
		}

		subject := models.Subject{
			UserID:      userID,
			Name:        s.Name,
			Code:        s.Code,
			Professor:   s.Professor,
			Color:       s.Color,
			MaxAbsences: s.MaxAbsences,
			Grade:       s.Grade,
			CreatedAt:   time.Now(),
		}
		if err := db.Create(&subject).Error; err != nil {
			continue
		}
		importedSubjects++
		if s.Grade != nil {
			importedGrades++
		}

		for _, sl := range s.Slots {
			slot := models.ScheduleSlot{
				UserID:    userID,
				SubjectID: subject.ID,
				Weekday:   sl.Weekday,
				StartHour: sl.StartHour,
				EndHour:   sl.EndHour,
				Room:      sl.Room,
				Color:     s.Color,
				CreatedAt: time.Now(),
			}
			if err := db.Create(&slot).Error; err == nil {
				importedSlots++
			}
		}
	}

	if sess != nil {
		sess.Achievements.EndImport()
		refreshSnapshot(c, userID)
		if importedGrades > 0 {
			sess.Achievements.HandleAction(c.Context(), achievements.ActionGradeImported, nil)
			sess.XP.AwardGradesImportXP(c.Context())
		}
	}

	return c.JSON(fiber.Map{
		"success":           true,
		"imported_subjects": importedSubjects,
		"imported_slots":    importedSlots,
	})
}
