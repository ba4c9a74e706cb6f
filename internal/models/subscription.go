package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UnlimitedLimit is the sentinel plan limit that bypasses resource count checks.
const UnlimitedLimit = -1

type BillingCycle string

const (
	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

type Plan struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name" validate:"required"`
	MaxDrivers   int                `json:"max_drivers" bson:"max_drivers"`
	MaxVehicles  int                `json:"max_vehicles" bson:"max_vehicles"`
	Features     []string           `json:"features" bson:"features"`
	TrialDays    int                `json:"trial_days" bson:"trial_days"`
	Price        float64            `json:"price" bson:"price"`
	Currency     string             `json:"currency" bson:"currency" default:"USD"`
	BillingCycle BillingCycle       `json:"billing_cycle" bson:"billing_cycle" default:"monthly"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}

// Subscriber links a transporter user to a plan. At most one active subscriber
// record may exist per user at any time.
type Subscriber struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID       primitive.ObjectID `json:"user_id" bson:"user_id" validate:"required"`
	PlanID       primitive.ObjectID `json:"plan_id" bson:"plan_id" validate:"required"`
	StartDate    time.Time          `json:"start_date" bson:"start_date"`
	EndDate      time.Time          `json:"end_date" bson:"end_date"`
	IsActive     bool               `json:"is_active" bson:"is_active" default:"false"`
	CurrentUsage int                `json:"current_usage" bson:"current_usage" default:"0"`
	CreatedAt    time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at" bson:"updated_at"`
}
