package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/smarthealth/internal/logging"
	"github.com/dmitrijs2005/smarthealth/internal/server/models"
)

// NotificationService serves a fixed feed. Read state is not stored.
type NotificationService struct {
	logger logging.Logger
	now    func() time.Time
}

func NewNotificationService(l logging.Logger) *NotificationService {
	return &NotificationService{logger: l.With("module", "notifications"), now: time.Now}
}

func (s *NotificationService) List(ctx context.Context, userID string) []models.Notification {
	now := s.now().UTC()
	return []models.Notification{
		{
			ID:          "1",
			Title:       "Daily Goal Achieved",
			Description: "Congratulations! You have completed your daily step goal of 10,000 steps.",
			Type:        "achievement",
			CreatedAt:   now.Add(-time.Hour),
		},
		{
			ID:          "2",
			Title:       "Heart Rate Alert",
			Description: "Your resting heart rate was slightly higher than usual this morning.",
			Type:        "alert",
			Read:        true,
			CreatedAt:   now.Add(-24 * time.Hour),
		},
		{
			ID:          "3",
			Title:       "System Update",
			Description: "Smart Health has been updated to version 2.0 with new features.",
			Type:        "system",
			CreatedAt:   now.Add(-48 * time.Hour),
		},
	}
}

// MarkRead acknowledges a notification and returns the confirmation text.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) string {
	s.logger.Debug(ctx, "notification read", "user_id", userID, "notification_id", id)
	return fmt.Sprintf("Notification %s marked as read", id)
}
