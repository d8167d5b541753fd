// handlers/classes.go - Class (study group) HTTP handlers
package handlers

import (
	"time"

	"faltula/achievements"
	"faltula/database"
	"faltula/middleware"
	"faltula/services"

	"github.com/gofiber/fiber/v2"
)

var classService *services.ClassService

// InitClassHandlers initializes the class service
func InitClassHandlers() {
	db := database.GetDB()
	if db == nil {
		panic("Database not initialized before InitClassHandlers")
	}
	classService = services.NewClassService(db)
}

type CreateClassRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    bool   `json:"is_public"`
}

type JoinClassRequest struct {
	Code string `json:"code"`
}

type InviteRequest struct {
	ToUserID *uint `json:"to_user_id,omitempty"`
	TTLHours int   `json:"ttl_hours"`
}

type TransferRequest struct {
	NewLeaderID uint `json:"new_leader_id"`
}

// pushClassCounters refreshes led/member counters inside the engine
// after any membership change.
func pushClassCounters(c *fiber.Ctx, userID uint) {
	sm := services.GetSessionManager()
	if sm == nil {
		return
	}
	_ = sm.RefreshClassCounters(c.Context(), userID)
}

// CreateClass creates a new class with the caller as leader
// POST /api/classes
func CreateClass(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	class, err := classService.CreateClass(req.Name, req.Description, req.IsPublic, userID)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	pushClassCounters(c, userID)

	return c.Status(201).JSON(fiber.Map{"success": true, "class": class})
}

// GetMyClasses lists the caller's classes
// GET /api/classes
func GetMyClasses(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	classes, err := classService.GetUserClasses(userID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load classes"})
	}

	return c.JSON(fiber.Map{"success": true, "classes": classes})
}

// GetClass returns one class with its members
// GET /api/classes/:id
func GetClass(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	classID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid class id"})
	}

	class, err := classService.GetClassByID(uint(classID))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Class not found"})
	}

	return c.JSON(fiber.Map{"success": true, "class": class})
}

// JoinClass joins a class via its join code
// POST /api/classes/join
func JoinClass(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	var req JoinClassRequest
	if err := c.BodyParser(&req); err != nil || req.Code == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Class code is required"})
	}

	class, err := classService.JoinClass(userID, req.Code)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	if sess := session(c, userID); sess != nil {
		sess.Achievements.HandleAction(c.Context(), achievements.ActionJoinedClass, nil)
		sess.XP.AwardClassJoinXP(c.Context())
	}
	pushClassCounters(c, userID)

	// The leader's popularity counter may have moved too
	pushClassCounters(c, class.CreatorID)

	return c.JSON(fiber.Map{"success": true, "class": class})
}

// LeaveClass leaves a class
// POST /api/classes/:id/leave
func LeaveClass(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	classID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid class id"})
	}

	if err := classService.LeaveClass(userID, uint(classID)); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	pushClassCounters(c, userID)

	return c.JSON(fiber.Map{"success": true})
}

// RemoveClassMember removes a member (leader only)
// DELETE /api/classes/:id/members/:memberId
func RemoveClassMember(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	classID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid class id"})
	}

	memberID, err := c.ParamsInt("memberId")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid member id"})
	}

	if err := classService.RemoveMember(uint(classID), userID, uint(memberID)); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	pushClassCounters(c, userID)

	return c.JSON(fiber.Map{"success": true})
}

// TransferLeadership hands the class to another member (leader only)
// POST /api/classes/:id/transfer
func TransferLeadership(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	classID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid class id"})
	}

	var req TransferRequest
	if err := c.BodyParser(&req); err != nil || req.NewLeaderID == 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "New leader id is required"})
	}

	if err := classService.TransferLeadership(uint(classID), userID, req.NewLeaderID); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	pushClassCounters(c, userID)
	pushClassCounters(c, req.NewLeaderID)

	return c.JSON(fiber.Map{"success": true})
}

// CreateClassInvite creates a single-use invite (leader only)
// POST /api/classes/:id/invites
func CreateClassInvite(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	classID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid class id"})
	}

	var req InviteRequest
	_ = c.BodyParser(&req)
	if req.TTLHours <= 0 {
		req.TTLHours = 72
	}

	invite, err := classService.CreateInvite(uint(classID), userID, req.ToUserID,
		time.Duration(req.TTLHours)*time.Hour)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.Status(201).JSON(fiber.Map{"success": true, "invite": invite})
}

// AcceptClassInvite consumes an invite and joins the class
// POST /api/classes/invites/:code/accept
func AcceptClassInvite(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	code := c.Params("code")
	if code == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invite code is required"})
	}

	class, err := classService.AcceptInvite(userID, code)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	if sess := session(c, userID); sess != nil {
		sess.Achievements.HandleAction(c.Context(), achievements.ActionJoinedClass, nil)
		sess.XP.AwardClassJoinXP(c.Context())
	}
	pushClassCounters(c, userID)
	pushClassCounters(c, class.CreatorID)

	return c.JSON(fiber.Map{"success": true, "class": class})
}

// DeclineClassInvite declines an invite
// POST /api/classes/invites/:code/decline
func DeclineClassInvite(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"success": false, "error": "Unauthorized"})
	}

	code := c.Params("code")
	if code == "" {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invite code is required"})
	}

	if err := classService.DeclineInvite(userID, code); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true})
}

// SearchClasses searches public classes
// GET /api/classes/search?q=...&limit=20
func SearchClasses(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	classes, err := classService.SearchPublicClasses(c.Query("q"), limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Search failed"})
	}

	return c.JSON(fiber.Map{"success": true, "classes": classes})
}

// GetPopularClasses lists public classes by member count
// GET /api/classes/popular?limit=20
func GetPopularClasses(c *fiber.Ctx) error {
	if classService == nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Class service not initialized"})
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}

	classes, err := classService.GetPopularClasses(limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load classes"})
	}

	return c.JSON(fiber.Map{"success": true, "classes": classes})
}
