// services/session_manager.go - per-user engine/awarder session registry
package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"faltula/achievements"
	"faltula/gamification"
	"faltula/models"

	"gorm.io/gorm"
)

// UserSession bundles one user's achievement session and XP awarder.
type UserSession struct {
	Achievements *achievements.Session
	XP           *gamification.Awarder
}

// SessionManager lazily opens one UserSession per authenticated user and
// tears it down on logout or reset. Sessions are keyed by user id, so a
// request carrying another user's token can never reach this user's
// engine state.
type SessionManager struct {
	db       *gorm.DB
	store    *AchievementStore
	notifier achievements.Notifier

	mu       sync.Mutex
	sessions map[uint]*UserSession
}

var sessionManager *SessionManager

// InitSessionManager initializes the singleton session manager.
func InitSessionManager(db *gorm.DB, notifier achievements.Notifier) {
	sessionManager = &SessionManager{
		db:       db,
		store:    NewAchievementStore(db),
		notifier: notifier,
		sessions: make(map[uint]*UserSession),
	}
}

// GetSessionManager returns the initialized session manager.
func GetSessionManager() *SessionManager {
	return sessionManager
}

// Get returns the user's session, opening it on first access.
func (m *SessionManager) Get(ctx context.Context, userID uint) (*UserSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sess, ok := m.sessions[userID]; ok {
		return sess, nil
	}

	awarder := gamification.NewAwarder(userID, m.store, gamificationNotifier{m.notifier}, 0)
	achSession, err := achievements.OpenSession(ctx, userID, m.store, m.notifier, awarder)
	if err != nil {
		return nil, err
	}
	awarder.OnTotalExperience(func(totalXP int) {
		achSession.UpdateExperience(context.Background(), totalXP)
	})

	sess := &UserSession{Achievements: achSession, XP: awarder}
	m.sessions[userID] = sess
	m.refreshSnapshot(ctx, sess)
	return sess, nil
}

// Close tears down a user's session, flushing any pending XP toast.
func (m *SessionManager) Close(userID uint) {
	m.mu.Lock()
	sess, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		sess.Achievements.Close()
		sess.XP.Close()
	}
}

// CloseAll tears down every session. Used on shutdown.
func (m *SessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uint]*UserSession)
	m.mu.Unlock()

	for _, sess := range sessions {
		sess.Achievements.Close()
		sess.XP.Close()
	}
}

// RefreshDomainData rebuilds the engine snapshot from the database and
// feeds it into the user's session. Handlers call this after any domain
// write that sequence/data conditions depend on.
func (m *SessionManager) RefreshDomainData(ctx context.Context, userID uint) error {
	sess, err := m.Get(ctx, userID)
	if err != nil {
		return err
	}
	return m.refreshSnapshotFor(ctx, userID, sess)
}

func (m *SessionManager) refreshSnapshot(ctx context.Context, sess *UserSession) {
	_ = m.refreshSnapshotFor(ctx, sess.Achievements.UserID(), sess)
}

func (m *SessionManager) refreshSnapshotFor(ctx context.Context, userID uint, sess *UserSession) error {
	snapshot, err := m.loadSnapshot(ctx, userID)
	if err != nil {
		return err
	}
	sess.Achievements.SetDomainData(ctx, snapshot)
	return nil
}

// loadSnapshot assembles the read-only domain view the engine consumes.
func (m *SessionManager) loadSnapshot(ctx context.Context, userID uint) (achievements.Snapshot, error) {
	var snapshot achievements.Snapshot
	db := m.db.WithContext(ctx)

	var subjects []models.Subject
	if err := db.Where("user_id = ?", userID).Find(&subjects).Error; err != nil {
		return snapshot, err
	}
	for _, subj := range subjects {
		snapshot.Subjects = append(snapshot.Subjects, achievements.SubjectInfo{
			ID:              idString(subj.ID),
			Name:            subj.Name,
			CurrentAbsences: subj.CurrentAbsences,
		})
	}

	var slots []models.ScheduleSlot
	if err := db.Where("user_id = ?", userID).Find(&slots).Error; err != nil {
		return snapshot, err
	}
	for _, slot := range slots {
		snapshot.Schedule = append(snapshot.Schedule, achievements.ScheduleSlotInfo{
			SubjectID: idString(slot.SubjectID),
			Weekday:   slot.Weekday,
			StartHour: slot.StartHour,
		})
	}

	var absences []models.Absence
	if err := db.Where("user_id = ?", userID).Find(&absences).Error; err != nil {
		return snapshot, err
	}
	for _, a := range absences {
		snapshot.Absences = append(snapshot.Absences, achievements.AbsenceInfo{
			SubjectID: idString(a.SubjectID),
			Date:      a.Date,
		})
	}

	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		return snapshot, err
	}
	snapshot.Profile = map[string]string{
		"course":     user.Course,
		"university": user.University,
		"shift":      user.Shift,
		"display":    user.DisplayName,
	}

	return snapshot, nil
}

// RefreshClassCounters recomputes the user's class membership/leadership
// numbers and pushes them into the engine.
func (m *SessionManager) RefreshClassCounters(ctx context.Context, userID uint) error {
	sess, err := m.Get(ctx, userID)
	if err != nil {
		return err
	}

	db := m.db.WithContext(ctx)
	var led int64
	if err := db.Model(&models.ClassMember{}).
		Where("user_id = ? AND role = ? AND is_active = ?", userID, models.ClassRoleLeader, true).
		Count(&led).Error; err != nil {
		return err
	}

	// Largest member count among classes the user leads.
	var members int64
	if led > 0 {
		err := db.Model(&models.ClassMember{}).
			Where("is_active = ? AND class_id IN (?)", true,
				db.Model(&models.ClassMember{}).
					Select("class_id").
					Where("user_id = ? AND role = ? AND is_active = ?", userID, models.ClassRoleLeader, true)).
			Group("class_id").
			Select("COUNT(*)").
			Order("COUNT(*) DESC").
			Limit(1).
			Scan(&members).Error
		if err != nil {
			return err
		}
	}

	sess.Achievements.UpdateClassCounters(ctx, int(members), int(led))
	return nil
}

// gamificationNotifier adapts the shared toast sink to the gamification
// package's interface.
type gamificationNotifier struct {
	inner achievements.Notifier
}

func (n gamificationNotifier) Notify(userID uint, title, description string, duration time.Duration) {
	if n.inner != nil {
		n.inner.Notify(userID, title, description, duration)
	}
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
