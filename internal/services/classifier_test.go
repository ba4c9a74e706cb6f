package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(offset int) time.Time {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestClassifierStages(t *testing.T) {
	classifier := DefaultClassifier()
	reference := day(0)

	tests := []struct {
		name     string
		expiry   time.Time
		wantKind StageKind
		wantDays int
	}{
		{"far future", day(90), StageValid, 0},
		{"sixteen days left", day(16), StageValid, 0},
		{"fifteen day warning", day(15), StageExpiringSoon, 15},
		{"fourteen days is not a threshold", day(14), StageValid, 0},
		{"seven day warning", day(7), StageExpiringSoon, 7},
		{"three day warning", day(3), StageExpiringSoon, 3},
		{"one day warning", day(1), StageExpiringSoon, 1},
		{"expires today", day(0), StageExpired, 0},
		{"one day past grace", day(-1), StageGracePeriod, 1},
		{"two days past is plain expired", day(-2), StageExpired, 0},
		{"seven days past grace", day(-7), StageGracePeriod, 7},
		{"fourteen days past grace", day(-14), StageGracePeriod, 14},
		{"fifteen days past is plain expired", day(-15), StageExpired, 0},
		{"thirty days past still expired", day(-30), StageExpired, 0},
		{"thirty-one days past deactivatable", day(-31), StageDeactivatable, 31},
		{"long expired deactivatable", day(-120), StageDeactivatable, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stage := classifier.Classify(tt.expiry, reference)
			assert.Equal(t, tt.wantKind, stage.Kind)
			assert.Equal(t, tt.wantDays, stage.Days)
		})
	}
}

func TestClassifierIsPure(t *testing.T) {
	classifier := DefaultClassifier()
	expiry := day(7)
	reference := day(0)

	first := classifier.Classify(expiry, reference)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, classifier.Classify(expiry, reference))
	}
}

// Phases never move backwards as the reference date advances, even though
// individual warning stages use exact day matching.
func TestClassifierPhaseMonotonic(t *testing.T) {
	classifier := DefaultClassifier()
	expiry := day(20)

	last := PhaseActive
	for offset := 0; offset <= 80; offset++ {
		stage := classifier.Classify(expiry, day(offset))
		assert.GreaterOrEqual(t, int(stage.Phase()), int(last),
			"phase regressed at offset %d: %s", offset, stage)
		last = stage.Phase()
	}
	assert.Equal(t, PhaseTerminal, last)
}

func TestClassifierCustomThresholds(t *testing.T) {
	classifier := NewClassifier([]int{10}, []int{5}, 20)
	reference := day(0)

	assert.Equal(t, StageExpiringSoon, classifier.Classify(day(10), reference).Kind)
	assert.Equal(t, StageValid, classifier.Classify(day(7), reference).Kind)
	assert.Equal(t, StageGracePeriod, classifier.Classify(day(-5), reference).Kind)
	assert.Equal(t, StageExpired, classifier.Classify(day(-20), reference).Kind)
	assert.Equal(t, StageDeactivatable, classifier.Classify(day(-21), reference).Kind)
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "valid", Stage{Kind: StageValid}.String())
	assert.Equal(t, "expiring_soon(7)", Stage{Kind: StageExpiringSoon, Days: 7}.String())
	assert.Equal(t, "grace_period(14)", Stage{Kind: StageGracePeriod, Days: 14}.String())
	assert.Equal(t, "deactivatable", Stage{Kind: StageDeactivatable, Days: 45}.String())
}
