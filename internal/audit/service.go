package audit

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Neutralizer/BookManipulator/internal/database/audit"
	"github.com/Neutralizer/BookManipulator/internal/entities"
)

const maxDescriptionLength = 500

// Service provides high-level audit logging functionality.
// A nil *Service is valid and records nothing.
type Service struct {
	repo   *audit.Repository
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	if s == nil {
		return nil
	}
	event.Description = truncate(event.Description, maxDescriptionLength)
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if s == nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.Log(event); err != nil {
			s.logger.Warn("failed to log audit event",
				zap.String("action", event.Action),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until all pending async events are written.
func (s *Service) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

// LogBook records a change to a book made by username.
func (s *Service) LogBook(username, action string, bookID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		Username:    username,
		EventType:   entities.AuditEventBook,
		Action:      action,
		Description: description,
		EntityType:  "book",
		EntityID:    &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogUserCreated records the creation of an account.
func (s *Service) LogUserCreated(actor string, user *entities.User) {
	userID := user.ID
	s.LogAsync(&entities.AuditEvent{
		Username:    actor,
		EventType:   entities.AuditEventUser,
		Action:      "user_create",
		Description: "Created user " + user.Username,
		EntityType:  "user",
		EntityID:    &userID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(username, action, ipAddr string, success bool) {
	event := &entities.AuditEvent{
		Username:  username,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		Status:    entities.AuditStatusSuccess,
	}
	if !success {
		event.Status = entities.AuditStatusFailed
	}
	s.LogAsync(event)
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(filter audit.Filter) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(filter)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
