package services

import "errors"

var (
	// ErrEntitlementDenied is returned together with an EntitlementDecision
	// when a resource creation is blocked by the subscription plan.
	ErrEntitlementDenied = errors.New("entitlement denied")

	// ErrSweepAlreadyRunning guards against overlapping sweep triggers.
	ErrSweepAlreadyRunning = errors.New("compliance sweep already running")

	ErrDriverNotAssignable   = errors.New("driver must be approved with an approved license before assignment")
	ErrDriverAlreadyAssigned = errors.New("driver is already assigned to another vehicle")
	ErrCompanyMismatch       = errors.New("driver and vehicle belong to different companies")

	// ErrNotificationFailed indicates that no notification channel confirmed
	// delivery; the sweep must not mark the threshold as sent.
	ErrNotificationFailed = errors.New("notification dispatch failed on all channels")
)
