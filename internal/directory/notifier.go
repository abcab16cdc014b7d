package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"business-directory/internal/common/logger"
	"business-directory/internal/models"

	"github.com/google/uuid"
)

var ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")

// EmailSender is satisfied by *aws.SESClient.
type EmailSender interface {
	SendText(ctx context.Context, from, to, subject, body string) (string, error)
}

// SMSSender is satisfied by *aws.SNSClient.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, message, senderID string) (string, error)
}

type NotifierConfig struct {
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	SenderID     string
}

type notificationTemplate struct {
	subject string
	body    string
}

var decisionTemplates = map[models.ModerationStatus]notificationTemplate{
	models.ModerationApproved: {
		subject: "{{name}} is now listed in the directory",
		body:    "Hello! Your company {{name}} passed moderation and is now visible in the directory.",
	},
	models.ModerationRejected: {
		subject: "{{name}} was not approved",
		body:    "Hello! Your company {{name}} did not pass moderation.{{comment}}",
	},
}

// Notifier tells a company owner about a moderation decision by email and SMS.
type Notifier struct {
	cfg    NotifierConfig
	email  EmailSender
	sms    SMSSender
	logger logger.Logger
	now    func() time.Time
}

func NewNotifier(cfg NotifierConfig, email EmailSender, sms SMSSender, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Notifier{
		cfg:    cfg,
		email:  email,
		sms:    sms,
		logger: log.WithFields(map[string]interface{}{"component": "notifier"}),
		now:    time.Now,
	}
}

// NotifyDecision sends one notification per enabled channel. Channels without a
// contact or a client are skipped and reported as disabled.
func (n *Notifier) NotifyDecision(ctx context.Context, e models.BusinessEntity, decision models.ModerationStatus, comment string) []models.Notification {
	tmpl, ok := decisionTemplates[decision]
	if !ok {
		return nil
	}
	if comment != "" {
		comment = " Moderator comment: " + comment
	}
	r := strings.NewReplacer("{{name}}", e.Name, "{{comment}}", comment)
	subject, body := r.Replace(tmpl.subject), r.Replace(tmpl.body)

	out := []models.Notification{
		n.send(models.NotificationChannelEmail, e, decision, n.cfg.EmailEnabled && n.email != nil && e.Email != "", func() error {
			_, err := n.email.SendText(ctx, n.cfg.FromEmail, e.Email, subject, body)
			return err
		}),
		n.send(models.NotificationChannelSMS, e, decision, n.cfg.SMSEnabled && n.sms != nil && e.Phone != "", func() error {
			_, err := n.sms.SendSMS(ctx, e.Phone, body, n.cfg.SenderID)
			return err
		}),
	}
	return out
}

func (n *Notifier) send(channel string, e models.BusinessEntity, decision models.ModerationStatus, enabled bool, fn func() error) models.Notification {
	note := models.Notification{
		ID:        uuid.New().String(),
		CompanyID: e.ID,
		Decision:  decision,
		Channel:   channel,
		Status:    models.NotificationStatusDisabled,
		SentAt:    n.now().UTC().Format(time.RFC3339),
	}
	if !enabled {
		return note
	}
	if err := fn(); err != nil {
		n.logger.Error("notification send failed", map[string]interface{}{
			"channel":   channel,
			"companyId": e.ID,
			"error":     fmt.Errorf("%w: %v", ErrNotificationSendFailed, err).Error(),
		})
		note.Status = models.NotificationStatusFailed
		return note
	}
	n.logger.Info("notification sent", map[string]interface{}{
		"channel":        channel,
		"companyId":      e.ID,
		"notificationId": note.ID,
	})
	note.Status = models.NotificationStatusSent
	return note
}
