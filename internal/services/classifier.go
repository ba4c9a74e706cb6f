package services

import (
	"fmt"
	"time"

	"fleetdesk/internal/utils"
)

// StageKind is the lifecycle position of a regulated document relative to its
// expiry date. Stages are computed from dates on every sweep, never stored;
// the only persisted state is the notification dedup history.
type StageKind int

const (
	StageValid StageKind = iota
	StageExpiringSoon
	StageExpired
	StageGracePeriod
	StageDeactivatable
)

// Phase bands the five stages into the coarse progression that is monotonic
// in time. Individual warning stages use exact day matching, so a document can
// move between Valid and ExpiringSoon within a phase as days tick by.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseLapsed
	PhaseTerminal
)

type Stage struct {
	Kind StageKind
	// Days is daysLeft for ExpiringSoon and daysPast for GracePeriod and
	// Deactivatable; zero otherwise.
	Days int
}

func (s Stage) Phase() Phase {
	switch s.Kind {
	case StageValid, StageExpiringSoon:
		return PhaseActive
	case StageExpired, StageGracePeriod:
		return PhaseLapsed
	default:
		return PhaseTerminal
	}
}

func (s Stage) String() string {
	switch s.Kind {
	case StageValid:
		return "valid"
	case StageExpiringSoon:
		return fmt.Sprintf("expiring_soon(%d)", s.Days)
	case StageExpired:
		return "expired"
	case StageGracePeriod:
		return fmt.Sprintf("grace_period(%d)", s.Days)
	default:
		return "deactivatable"
	}
}

// Classifier maps a document expiry date to a lifecycle stage. Warning and
// grace thresholds use exact day matching: a sweep that skips a day misses
// that threshold tier. Deactivation is continuous past the cutoff.
type Classifier struct {
	warningDays         []int
	graceDays           []int
	deactivateAfterDays int
}

func NewClassifier(warningDays, graceDays []int, deactivateAfterDays int) *Classifier {
	return &Classifier{
		warningDays:         warningDays,
		graceDays:           graceDays,
		deactivateAfterDays: deactivateAfterDays,
	}
}

func DefaultClassifier() *Classifier {
	return NewClassifier([]int{15, 7, 3, 1}, []int{1, 7, 14}, 30)
}

func (c *Classifier) DeactivateAfterDays() int {
	return c.deactivateAfterDays
}

// Classify is a pure function of the two dates.
func (c *Classifier) Classify(expiryDate, referenceDate time.Time) Stage {
	daysLeft := utils.DaysUntil(expiryDate, referenceDate)

	if daysLeft > 0 {
		for _, d := range c.warningDays {
			if daysLeft == d {
				return Stage{Kind: StageExpiringSoon, Days: daysLeft}
			}
		}
		return Stage{Kind: StageValid}
	}

	daysPast := -daysLeft
	if daysPast > c.deactivateAfterDays {
		return Stage{Kind: StageDeactivatable, Days: daysPast}
	}

	for _, d := range c.graceDays {
		if daysPast == d {
			return Stage{Kind: StageGracePeriod, Days: daysPast}
		}
	}

	return Stage{Kind: StageExpired}
}
