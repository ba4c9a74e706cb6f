package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationKind string
type NotificationChannel string
type NotificationStatus string
type EntityType string

const (
	NotificationKindExpiring    NotificationKind = "document_expiring"
	NotificationKindExpired     NotificationKind = "document_expired"
	NotificationKindGracePeriod NotificationKind = "grace_period"
	NotificationKindDeactivated NotificationKind = "deactivated"

	NotificationChannelEmail NotificationChannel = "email"
	NotificationChannelSMS   NotificationChannel = "sms"

	NotificationStatusSent   NotificationStatus = "sent"
	NotificationStatusFailed NotificationStatus = "failed"

	EntityTypeDriver  EntityType = "driver"
	EntityTypeVehicle EntityType = "vehicle"
)

type Notification struct {
	ID            primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CompanyID     primitive.ObjectID  `json:"company_id" bson:"company_id" validate:"required"`
	EntityType    EntityType          `json:"entity_type" bson:"entity_type" validate:"required"`
	EntityID      primitive.ObjectID  `json:"entity_id" bson:"entity_id" validate:"required"`
	DocumentType  DocumentType        `json:"document_type" bson:"document_type"`
	Kind          NotificationKind    `json:"kind" bson:"kind" validate:"required"`
	Channel       NotificationChannel `json:"channel" bson:"channel" validate:"required"`
	Recipient     string              `json:"recipient" bson:"recipient"`
	Subject       string              `json:"subject" bson:"subject"`
	Message       string              `json:"message" bson:"message"`
	ThresholdDays int                 `json:"threshold_days" bson:"threshold_days"`
	Status        NotificationStatus  `json:"status" bson:"status"`
	Error         string              `json:"error,omitempty" bson:"error,omitempty"`
	SentAt        *time.Time          `json:"sent_at" bson:"sent_at"`
	CreatedAt     time.Time           `json:"created_at" bson:"created_at"`
}
