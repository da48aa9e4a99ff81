package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/utils"
	"autoassist/pkg/logger"
	"autoassist/pkg/sms"
)

const notificationSendTimeout = 30 * time.Second

// NotificationService is the best-effort side channel that tells the
// customer about a status change. It is fire-and-forget: delivery failure
// never blocks or rolls back the transition that triggered it.
type NotificationService interface {
	NotifyStatusChange(ctx context.Context, request *models.BreakdownRequest) *models.StatusNotification
	BuildDeepLink(contactNumber, message string) string
}

type notificationService struct {
	provider sms.SMSProvider
	logger   *logger.Logger
}

func NewNotificationService(provider sms.SMSProvider, log *logger.Logger) NotificationService {
	return &notificationService{
		provider: provider,
		logger:   log,
	}
}

func (s *notificationService) NotifyStatusChange(ctx context.Context, request *models.BreakdownRequest) *models.StatusNotification {
	message := fmt.Sprintf("Your breakdown service request status has been updated to: %s", request.Status)

	notification := &models.StatusNotification{
		RequestID:     request.ID,
		ContactNumber: request.ContactNumber,
		Message:       message,
		DeepLink:      s.BuildDeepLink(request.ContactNumber, message),
		Status:        models.NotificationStatusPending,
		CreatedAt:     time.Now(),
	}

	if s.provider == nil {
		return notification
	}

	// Detached from the caller's context: the status write has already
	// committed and must not be tied to the request lifetime.
	go s.send(notification)

	return notification
}

func (s *notificationService) send(notification *models.StatusNotification) {
	ctx, cancel := context.WithTimeout(context.Background(), notificationSendTimeout)
	defer cancel()

	_, err := s.provider.SendSMS(ctx, &sms.SMSRequest{
		To:      utils.NormalizePhone(notification.ContactNumber),
		Message: notification.Message,
		Type:    "transactional",
	})
	if err != nil {
		notification.Status = models.NotificationStatusFailed
		s.logger.WithRequestID(notification.RequestID.Hex()).WithError(err).
			WithField("contact", utils.MaskPhone(notification.ContactNumber)).
			Warn("Failed to deliver status notification")
		return
	}

	now := time.Now()
	notification.Status = models.NotificationStatusSent
	notification.SentAt = &now
}

// BuildDeepLink builds the message-app link the dashboards open: a wa.me
// URL carrying the customer's number and the URL-encoded message text.
// Spaces must encode as %20, not "+": wa.me reads the path and query
// literally and renders a literal plus as part of the message.
func (s *notificationService) BuildDeepLink(contactNumber, message string) string {
	return fmt.Sprintf("https://wa.me/%s?text=%s",
		encodeURIComponent(contactNumber), encodeURIComponent(message))
}

func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
