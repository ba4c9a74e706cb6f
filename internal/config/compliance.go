package config

import (
	"time"
)

type ComplianceConfig struct {
	SweepInterval       time.Duration `yaml:"sweep_interval"`
	SweepEnabled        bool          `yaml:"sweep_enabled"`
	ExpiryWarningDays   []int         `yaml:"expiry_warning_days"`
	GracePeriodDays     []int         `yaml:"grace_period_days"`
	DeactivateAfterDays int           `yaml:"deactivate_after_days"`
	CompanyTimeout      time.Duration `yaml:"company_timeout"`
	MaxConcurrentSweeps int           `yaml:"max_concurrent_sweeps"`
}

func loadComplianceConfig() *ComplianceConfig {
	return &ComplianceConfig{
		SweepInterval:       getEnvAsDuration("COMPLIANCE_SWEEP_INTERVAL", 24*time.Hour),
		SweepEnabled:        getEnvAsBool("COMPLIANCE_SWEEP_ENABLED", true),
		ExpiryWarningDays:   getEnvAsIntSlice("COMPLIANCE_EXPIRY_WARNING_DAYS", []int{15, 7, 3, 1}),
		GracePeriodDays:     getEnvAsIntSlice("COMPLIANCE_GRACE_PERIOD_DAYS", []int{1, 7, 14}),
		DeactivateAfterDays: getEnvAsInt("COMPLIANCE_DEACTIVATE_AFTER_DAYS", 30),
		CompanyTimeout:      getEnvAsDuration("COMPLIANCE_COMPANY_TIMEOUT", 2*time.Minute),
		MaxConcurrentSweeps: getEnvAsInt("COMPLIANCE_MAX_CONCURRENT_SWEEPS", 8),
	}
}
