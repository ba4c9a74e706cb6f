package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type VehicleStatus string

const (
	VehicleStatusPending     VehicleStatus = "pending"
	VehicleStatusApproved    VehicleStatus = "approved"
	VehicleStatusRejected    VehicleStatus = "rejected"
	VehicleStatusMaintenance VehicleStatus = "maintenance"
)

type Vehicle struct {
	ID                primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	CompanyID         primitive.ObjectID  `json:"company_id" bson:"company_id" validate:"required"`
	Registration      string              `json:"registration" bson:"registration" validate:"required"`
	Make              string              `json:"make" bson:"make"`
	Model             string              `json:"model" bson:"model"`
	Status            VehicleStatus       `json:"status" bson:"status" default:"pending"`
	Insurance         *Document           `json:"insurance" bson:"insurance"`
	AssignedDriverID  *primitive.ObjectID `json:"assigned_driver_id,omitempty" bson:"assigned_driver_id,omitempty"`
	Availability      bool                `json:"availability" bson:"availability" default:"true"`
	MaintenanceReason string              `json:"maintenance_reason,omitempty" bson:"maintenance_reason,omitempty"`
	CreatedAt         time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" bson:"updated_at"`
	DeletedAt         *time.Time          `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
}
