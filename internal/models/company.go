package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CompanyStatus string

const (
	CompanyStatusPending  CompanyStatus = "pending"
	CompanyStatusApproved CompanyStatus = "approved"
	CompanyStatusRejected CompanyStatus = "rejected"
)

type Company struct {
	ID                 primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TransporterID      primitive.ObjectID `json:"transporter_id" bson:"transporter_id" validate:"required"`
	Name               string             `json:"name" bson:"name" validate:"required"`
	RegistrationNumber string             `json:"registration_number" bson:"registration_number" validate:"required"`
	ContactEmail       string             `json:"contact_email" bson:"contact_email" validate:"required,email"`
	ContactPhone       string             `json:"contact_phone" bson:"contact_phone"`
	Status             CompanyStatus      `json:"status" bson:"status" default:"pending"`
	RejectionReason    string             `json:"rejection_reason,omitempty" bson:"rejection_reason,omitempty"`
	ApprovedAt         *time.Time         `json:"approved_at" bson:"approved_at"`
	CreatedAt          time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at" bson:"updated_at"`
	DeletedAt          *time.Time         `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}
