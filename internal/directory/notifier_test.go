package directory

import (
	"context"
	"errors"
	"testing"

	"business-directory/internal/common/logger"
	"business-directory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEmailSender struct {
	mock.Mock
}

func (m *mockEmailSender) SendText(ctx context.Context, from, to, subject, body string) (string, error) {
	args := m.Called(ctx, from, to, subject, body)
	return args.String(0), args.Error(1)
}

type mockSMSSender struct {
	mock.Mock
}

func (m *mockSMSSender) SendSMS(ctx context.Context, phone, message, senderID string) (string, error) {
	args := m.Called(ctx, phone, message, senderID)
	return args.String(0), args.Error(1)
}

var acme = models.BusinessEntity{ID: 1, Name: "Acme", Phone: "+77015550101", Email: "info@acme.example"}

func TestNotifier_NotifyDecision(t *testing.T) {
	email := &mockEmailSender{}
	sms := &mockSMSSender{}
	email.On("SendText", mock.Anything, "noreply@directory.example", "info@acme.example",
		"Acme was not approved", "Hello! Your company Acme did not pass moderation. Moderator comment: no license").
		Return("msg-1", nil)
	sms.On("SendSMS", mock.Anything, "+77015550101", mock.AnythingOfType("string"), "DIRECTORY").
		Return("", errors.New("opted out"))

	n := NewNotifier(NotifierConfig{EmailEnabled: true, FromEmail: "noreply@directory.example", SMSEnabled: true, SenderID: "DIRECTORY"},
		email, sms, logger.NewTestLogger(t))

	out := n.NotifyDecision(context.Background(), acme, models.ModerationRejected, "no license")

	require.Len(t, out, 2)
	assert.Equal(t, models.NotificationChannelEmail, out[0].Channel)
	assert.Equal(t, models.NotificationStatusSent, out[0].Status)
	assert.Equal(t, models.NotificationChannelSMS, out[1].Channel)
	assert.Equal(t, models.NotificationStatusFailed, out[1].Status)
	assert.NotEqual(t, out[0].ID, out[1].ID)
	email.AssertExpectations(t)
	sms.AssertExpectations(t)
}

func TestNotifier_DisabledChannels(t *testing.T) {
	email := &mockEmailSender{}
	n := NewNotifier(NotifierConfig{EmailEnabled: true}, email, nil, nil)
	noContact := acme
	noContact.Email = ""

	out := n.NotifyDecision(context.Background(), noContact, models.ModerationApproved, "")

	require.Len(t, out, 2)
	for _, note := range out {
		assert.Equal(t, models.NotificationStatusDisabled, note.Status)
	}
	email.AssertNotCalled(t, "SendText")
}

func TestNotifier_PendingIsNotADecision(t *testing.T) {
	n := NewNotifier(NotifierConfig{}, nil, nil, nil)
	assert.Empty(t, n.NotifyDecision(context.Background(), acme, models.ModerationPending, ""))
}
