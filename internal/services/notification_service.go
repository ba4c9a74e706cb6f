package services

import (
	"context"
	"fmt"
	"time"

	"fleetdesk/internal/models"
	"fleetdesk/internal/repositories/interfaces"
	"fleetdesk/internal/utils"
	"fleetdesk/pkg/email"
	"fleetdesk/pkg/logger"
	"fleetdesk/pkg/sms"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplianceEvent describes a classified document event for one entity.
type ComplianceEvent struct {
	Company       *models.Company
	EntityType    models.EntityType
	EntityID      primitive.ObjectID
	EntityName    string
	DocumentType  models.DocumentType
	ExpiryDate    time.Time
	ThresholdDays int
	Reason        string
}

// NotificationService translates a compliance event into email and SMS
// payloads. Notify returns an error when no channel confirmed delivery so the
// caller can withhold the sent-marker and retry on the next sweep.
type NotificationService interface {
	Notify(ctx context.Context, kind models.NotificationKind, event *ComplianceEvent) error
}

type notificationService struct {
	emailProvider    email.EmailProvider
	smsProvider      sms.SMSProvider
	notificationRepo interfaces.NotificationRepository
	logger           *logger.Logger
}

func NewNotificationService(
	emailProvider email.EmailProvider,
	smsProvider sms.SMSProvider,
	notificationRepo interfaces.NotificationRepository,
	logger *logger.Logger,
) NotificationService {
	return &notificationService{
		emailProvider:    emailProvider,
		smsProvider:      smsProvider,
		notificationRepo: notificationRepo,
		logger:           logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, kind models.NotificationKind, event *ComplianceEvent) error {
	subject, body := s.buildMessage(kind, event)

	delivered := false

	if s.emailProvider != nil && event.Company.ContactEmail != "" {
		_, err := s.emailProvider.SendEmail(ctx, &email.EmailRequest{
			To:      event.Company.ContactEmail,
			Subject: subject,
			Body:    body,
		})
		s.record(ctx, kind, event, models.NotificationChannelEmail, event.Company.ContactEmail, subject, body, err)
		if err == nil {
			delivered = true
		}
	}

	if s.smsProvider != nil && event.Company.ContactPhone != "" {
		_, err := s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
			To:      event.Company.ContactPhone,
			Message: body,
			Type:    "transactional",
		})
		s.record(ctx, kind, event, models.NotificationChannelSMS, event.Company.ContactPhone, subject, body, err)
		if err == nil {
			delivered = true
		}
	}

	if !delivered {
		return fmt.Errorf("%w: %s for %s", ErrNotificationFailed, kind, event.EntityID.Hex())
	}

	return nil
}

func (s *notificationService) record(ctx context.Context, kind models.NotificationKind, event *ComplianceEvent, channel models.NotificationChannel, recipient, subject, body string, sendErr error) {
	s.logger.LogNotificationEvent(event.EntityID, string(kind), string(channel), sendErr == nil)

	notification := &models.Notification{
		CompanyID:     event.Company.ID,
		EntityType:    event.EntityType,
		EntityID:      event.EntityID,
		DocumentType:  event.DocumentType,
		Kind:          kind,
		Channel:       channel,
		Recipient:     recipient,
		Subject:       subject,
		Message:       body,
		ThresholdDays: event.ThresholdDays,
		Status:        models.NotificationStatusSent,
	}

	if sendErr != nil {
		notification.Status = models.NotificationStatusFailed
		notification.Error = sendErr.Error()
	} else {
		now := time.Now()
		notification.SentAt = &now
	}

	// Audit record is best-effort; a store hiccup must not fail the dispatch.
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.WithError(err).WithCompanyID(event.Company.ID).Warn("Failed to persist notification record")
	}
}

func (s *notificationService) buildMessage(kind models.NotificationKind, event *ComplianceEvent) (subject, body string) {
	docLabel := documentLabel(event.DocumentType)
	entityLabel := fmt.Sprintf("%s %q", event.EntityType, event.EntityName)
	expiry := utils.FormatDate(event.ExpiryDate)

	switch kind {
	case models.NotificationKindExpiring:
		subject = fmt.Sprintf("%s expiring in %d day(s)", docLabel, event.ThresholdDays)
		body = fmt.Sprintf("The %s for %s expires on %s. Please renew it before the expiry date to avoid service interruption.",
			docLabel, entityLabel, expiry)
	case models.NotificationKindExpired:
		subject = fmt.Sprintf("%s has expired", docLabel)
		body = fmt.Sprintf("The %s for %s expired on %s. Renew it as soon as possible; the resource will be deactivated if it remains expired.",
			docLabel, entityLabel, expiry)
	case models.NotificationKindGracePeriod:
		subject = fmt.Sprintf("%s expired %d day(s) ago", docLabel, event.ThresholdDays)
		body = fmt.Sprintf("The %s for %s expired on %s and is in its grace period. Renew it now to avoid deactivation.",
			docLabel, entityLabel, expiry)
	case models.NotificationKindDeactivated:
		subject = fmt.Sprintf("%s deactivated: expired %s", entityLabel, docLabel)
		body = fmt.Sprintf("%s has been deactivated because its %s expired on %s and was not renewed. %s",
			entityLabel, docLabel, expiry, event.Reason)
	default:
		subject = fmt.Sprintf("Compliance notice for %s", entityLabel)
		body = fmt.Sprintf("A compliance event occurred for the %s of %s.", docLabel, entityLabel)
	}

	return subject, body
}

func documentLabel(docType models.DocumentType) string {
	switch docType {
	case models.DocumentTypeIDDocument:
		return "ID document"
	case models.DocumentTypeDriverLicense:
		return "driver license"
	case models.DocumentTypeGoodConductCert:
		return "good conduct certificate"
	case models.DocumentTypeGoodsServiceLicense:
		return "goods service license"
	case models.DocumentTypeInsurance:
		return "insurance certificate"
	default:
		return string(docType)
	}
}
