package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type DriverStatus string

const (
	DriverStatusPending   DriverStatus = "pending"
	DriverStatusApproved  DriverStatus = "approved"
	DriverStatusRejected  DriverStatus = "rejected"
	DriverStatusSuspended DriverStatus = "suspended"
	DriverStatusRenewal   DriverStatus = "renewal"
)

type Driver struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CompanyID         primitive.ObjectID  `json:"company_id" bson:"company_id" validate:"required"`
	Name              string              `json:"name" bson:"name" validate:"required"`
	Email             string              `json:"email" bson:"email" validate:"required,email"`
	Phone             string              `json:"phone" bson:"phone"`
	Status            DriverStatus        `json:"status" bson:"status" default:"pending"`
	Documents         DriverDocuments     `json:"documents" bson:"documents"`
	AssignedVehicleID *primitive.ObjectID `json:"assigned_vehicle_id,omitempty" bson:"assigned_vehicle_id,omitempty"`
	SuspensionReason  string              `json:"suspension_reason,omitempty" bson:"suspension_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`
	DeletedAt         *time.Time          `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}

type DriverDocuments struct {
	IDDocument          *Document `json:"id_document" bson:"id_document"`
	DriverLicense       *Document `json:"driver_license" bson:"driver_license"`
	GoodConductCert     *Document `json:"good_conduct_cert" bson:"good_conduct_cert"`
	GoodsServiceLicense *Document `json:"goods_service_license" bson:"goods_service_license"`
}

// ByType returns the documents keyed by type, skipping those never uploaded.
func (d *DriverDocuments) ByType() map[DocumentType]*Document {
	docs := make(map[DocumentType]*Document, 4)
	if d.IDDocument != nil {
		docs[DocumentTypeIDDocument] = d.IDDocument
	}
	if d.DriverLicense != nil {
		docs[DocumentTypeDriverLicense] = d.DriverLicense
	}
	if d.GoodConductCert != nil {
		docs[DocumentTypeGoodConductCert] = d.GoodConductCert
	}
	if d.GoodsServiceLicense != nil {
		docs[DocumentTypeGoodsServiceLicense] = d.GoodsServiceLicense
	}
	return docs
}

// CanBeAssigned reports whether the driver may be assigned to a vehicle.
// Requires an approved driver with an approved license document.
func (d *Driver) CanBeAssigned() bool {
	if d.Status != DriverStatusApproved {
		return false
	}
	return d.Documents.DriverLicense != nil && d.Documents.DriverLicense.Approved
}
