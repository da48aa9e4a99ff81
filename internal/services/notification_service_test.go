package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"autoassist/internal/models"
	"autoassist/internal/services"
	"autoassist/pkg/logger"
	"autoassist/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeSMSProvider struct {
	sent chan *sms.SMSRequest
	err  error
}

func newFakeSMSProvider(err error) *fakeSMSProvider {
	return &fakeSMSProvider{sent: make(chan *sms.SMSRequest, 1), err: err}
}

func (f *fakeSMSProvider) SendSMS(ctx context.Context, request *sms.SMSRequest) (*sms.SMSResponse, error) {
	f.sent <- request
	if f.err != nil {
		return nil, f.err
	}
	return &sms.SMSResponse{MessageID: "msg-1", Status: "sent"}, nil
}

func testRequest(status models.RequestStatus) *models.BreakdownRequest {
	return &models.BreakdownRequest{
		ID:            primitive.NewObjectID(),
		CustomerName:  "Meera",
		ContactNumber: "+1 (415) 555-0100",
		Status:        status,
	}
}

func TestNotifyStatusChangeBuildsDeepLink(t *testing.T) {
	service := services.NewNotificationService(nil, logger.NewNop())

	notification := service.NotifyStatusChange(context.Background(), testRequest(models.RequestStatusAccepted))

	wantMessage := "Your breakdown service request status has been updated to: Accepted"
	if notification.Message != wantMessage {
		t.Errorf("message = %q, want %q", notification.Message, wantMessage)
	}
	if !strings.HasPrefix(notification.DeepLink, "https://wa.me/") {
		t.Errorf("deep link %q is not a wa.me URL", notification.DeepLink)
	}
	if strings.ContainsAny(notification.DeepLink, " ()") {
		t.Errorf("deep link %q carries unescaped characters", notification.DeepLink)
	}
	if !strings.Contains(notification.DeepLink, "?text=") {
		t.Errorf("deep link %q has no text parameter", notification.DeepLink)
	}
}

func TestNotifyStatusChangeWithoutProvider(t *testing.T) {
	service := services.NewNotificationService(nil, logger.NewNop())

	notification := service.NotifyStatusChange(context.Background(), testRequest(models.RequestStatusCompleted))
	if notification == nil {
		t.Fatal("no notification without a provider")
	}
	if notification.Status != models.NotificationStatusPending {
		t.Errorf("status = %s, want pending", notification.Status)
	}
}

func TestNotifyStatusChangeSendsSMS(t *testing.T) {
	provider := newFakeSMSProvider(nil)
	service := services.NewNotificationService(provider, logger.NewNop())

	service.NotifyStatusChange(context.Background(), testRequest(models.RequestStatusInProgress))

	select {
	case sent := <-provider.sent:
		if sent.To != "+14155550100" {
			t.Errorf("to = %q, want normalized +14155550100", sent.To)
		}
		if !strings.Contains(sent.Message, "In Progress") {
			t.Errorf("message %q does not mention the new status", sent.Message)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("SMS was never dispatched")
	}
}

func TestNotifyStatusChangeToleratesProviderFailure(t *testing.T) {
	provider := newFakeSMSProvider(errors.New("gateway down"))
	service := services.NewNotificationService(provider, logger.NewNop())

	// The caller gets its notification back immediately; the failed
	// delivery happens off to the side.
	notification := service.NotifyStatusChange(context.Background(), testRequest(models.RequestStatusCompleted))
	if notification == nil {
		t.Fatal("delivery failure leaked to the caller")
	}

	select {
	case <-provider.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("SMS attempt never happened")
	}
}

func TestBuildDeepLinkEncoding(t *testing.T) {
	service := services.NewNotificationService(nil, logger.NewNop())

	link := service.BuildDeepLink("+919876543210", "status: In Progress")
	if !strings.HasPrefix(link, "https://wa.me/%2B919876543210?text=") {
		t.Errorf("link = %q, want escaped phone in path", link)
	}
	if strings.Contains(link, " ") {
		t.Errorf("link %q carries an unescaped space", link)
	}

	// Spaces must come out as %20; a "+" in the text would render as a
	// literal plus in the opened chat.
	if !strings.Contains(link, "In%20Progress") {
		t.Errorf("link %q does not percent-encode spaces in the message", link)
	}
	if strings.Contains(link, "In+Progress") {
		t.Errorf("link %q uses form encoding for spaces", link)
	}

	spaced := service.BuildDeepLink("+1 (415) 555-0100", "Your breakdown service request status has been updated to: Accepted")
	if strings.ContainsAny(spaced, " ()") {
		t.Errorf("link %q carries unescaped characters", spaced)
	}
	if strings.Contains(spaced, "+1+") {
		t.Errorf("link %q form-encoded the phone number", spaced)
	}
}
