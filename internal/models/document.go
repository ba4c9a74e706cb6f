package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DocumentType string

const (
	DocumentTypeIDDocument          DocumentType = "id_document"
	DocumentTypeDriverLicense       DocumentType = "driver_license"
	DocumentTypeGoodConductCert     DocumentType = "good_conduct_cert"
	DocumentTypeGoodsServiceLicense DocumentType = "goods_service_license"
	DocumentTypeInsurance           DocumentType = "insurance"
)

// Document is a regulated document attached to a driver or vehicle. The
// embedded NotificationHistory records which expiry thresholds have already
// fired so the compliance sweep delivers each warning at most once.
type Document struct {
	URL                 string              `json:"url" bson:"url"`
	ExpiryDate          time.Time           `json:"expiry_date" bson:"expiry_date"`
	Approved            bool                `json:"approved" bson:"approved" default:"false"`
	VerifiedBy          *primitive.ObjectID `json:"verified_by,omitempty" bson:"verified_by,omitempty"`
	VerifiedAt          *time.Time          `json:"verified_at,omitempty" bson:"verified_at,omitempty"`
	NotificationHistory NotificationHistory `json:"notification_history" bson:"notification_history"`
}

type NotificationHistory struct {
	ExpiringDaysSent []int      `json:"expiring_days_sent" bson:"expiring_days_sent"`
	ExpiredSent      bool       `json:"expired_sent" bson:"expired_sent"`
	GraceDaysSent    []int      `json:"grace_days_sent" bson:"grace_days_sent"`
	LastNotifiedAt   *time.Time `json:"last_notified_at,omitempty" bson:"last_notified_at,omitempty"`
}

func (h *NotificationHistory) HasExpiringSent(days int) bool {
	return containsInt(h.ExpiringDaysSent, days)
}

func (h *NotificationHistory) HasGraceSent(days int) bool {
	return containsInt(h.GraceDaysSent, days)
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
