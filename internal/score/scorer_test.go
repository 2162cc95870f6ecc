package score

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sollytics/provenance/internal/classifier"
)

// now anchors the time-derived factors in tests.
var now = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func ageMonthsAgo(months float64) int64 {
	return now.Add(-time.Duration(months * 30 * 24 * float64(time.Hour))).Unix()
}

func TestScore_WorkedScenario(t *testing.T) {
	// 0 flagged, 0 blacklisted, 5 large transfers, diversity 0.4,
	// staking ratio 0.2, age 6 months, 4 verified programs, 0.5 tx/day.
	a := WalletAnalysis{
		TransactionCount:       100,
		UniqueCounterparties:   20, // 20 / 50 = 0.4
		StakingTransactions:    20, // 0.2
		LargeTransfers:         5,
		LegitimateProgramUsage: 4,
		OldestTransaction:      ageMonthsAgo(6),
		RecentTransactions:     15, // 0.5/day
		Now:                    now,
	}

	res := Score(a)

	// 50 - 15 + 8 + 5 + 12 + 8 + 3 = 71
	assert.Equal(t, 71, res.Score)
	assert.Equal(t, classifier.RiskMedium, res.RiskLevel)
}

func TestScore_EmptyHistory(t *testing.T) {
	res := Score(WalletAnalysis{Now: now})

	assert.Equal(t, 50, res.Score)
	assert.Equal(t, classifier.RiskHigh, res.RiskLevel)
	assert.Empty(t, res.Factors)
	assert.NotNil(t, res.Factors, "empty factors serialize as [], not null")
}

func TestScore_Bounds(t *testing.T) {
	// Heavy penalties floor at 0.
	worst := Score(WalletAnalysis{
		TransactionCount:        10,
		FlaggedInteractions:     5,
		BlacklistedProgramUsage: 5,
		Now:                     now,
	})
	assert.Equal(t, 0, worst.Score)
	assert.Equal(t, classifier.RiskHigh, worst.RiskLevel)

	// Maxed bonuses cap at 100.
	best := Score(WalletAnalysis{
		TransactionCount:       100,
		UniqueCounterparties:   100,
		StakingTransactions:    100,
		LegitimateProgramUsage: 50,
		OldestTransaction:      ageMonthsAgo(36),
		RecentTransactions:     300,
		Now:                    now,
	})
	assert.LessOrEqual(t, best.Score, 100)
	assert.Equal(t, classifier.RiskLow, best.RiskLevel)
}

func TestScore_Idempotent(t *testing.T) {
	a := WalletAnalysis{
		TransactionCount:       40,
		UniqueCounterparties:   10,
		StakingTransactions:    4,
		LegitimateProgramUsage: 2,
		LargeTransfers:         2,
		OldestTransaction:      ageMonthsAgo(4),
		RecentTransactions:     9,
		Now:                    now,
	}

	first := Score(a)
	second := Score(a)
	assert.Equal(t, first, second)
}

func TestScore_LargeTransferPenaltyCapped(t *testing.T) {
	base := WalletAnalysis{TransactionCount: 50, Now: now}

	ten := base
	ten.LargeTransfers = 10
	hundred := base
	hundred.LargeTransfers = 100

	assert.Equal(t, Score(ten).Score, Score(hundred).Score,
		"100 large transfers penalize the same as 10 (cap -30)")
}

func TestScore_DiversityMonotonicUpToCap(t *testing.T) {
	impactFor := func(unique int) int {
		a := WalletAnalysis{TransactionCount: 100, UniqueCounterparties: unique, Now: now}
		res := Score(a)
		for _, f := range res.Factors {
			if f.Name == "counterparty_diversity" {
				return f.Impact
			}
		}
		return 0
	}

	prev := impactFor(1)
	for unique := 2; unique <= 80; unique++ {
		cur := impactFor(unique)
		assert.GreaterOrEqual(t, cur, prev, "diversity impact never decreases (unique=%d)", unique)
		prev = cur
	}
	// Cap at diversity = 1.0.
	assert.Equal(t, 20, impactFor(50))
	assert.Equal(t, 20, impactFor(500))
}

func TestScore_AgeFloorAndCap(t *testing.T) {
	// Brand new wallet with any history: age floors at 0.1 months,
	// bonus rounds to 0.
	fresh := Score(WalletAnalysis{
		TransactionCount:  1,
		OldestTransaction: now.Add(-time.Hour).Unix(),
		Now:               now,
	})
	for _, f := range fresh.Factors {
		if f.Name == "wallet_age" {
			assert.Equal(t, 0, f.Impact)
		}
	}

	// Very old wallet caps at +24.
	old := Score(WalletAnalysis{
		TransactionCount:  1,
		OldestTransaction: ageMonthsAgo(60),
		Now:               now,
	})
	var found bool
	for _, f := range old.Factors {
		if f.Name == "wallet_age" {
			found = true
			assert.Equal(t, 24, f.Impact)
		}
	}
	require.True(t, found)
}

func TestScore_PolarityDecoupledFromImpact(t *testing.T) {
	// Low but nonzero diversity: positive numeric impact, neutral polarity.
	a := WalletAnalysis{TransactionCount: 100, UniqueCounterparties: 10, Now: now} // diversity 0.2
	res := Score(a)

	var factor *Factor
	for i := range res.Factors {
		if res.Factors[i].Name == "counterparty_diversity" {
			factor = &res.Factors[i]
		}
	}
	require.NotNil(t, factor)
	assert.Equal(t, 4, factor.Impact)
	assert.Equal(t, PolarityNeutral, factor.Polarity)
}

func TestRiskLevelThresholds(t *testing.T) {
	assert.Equal(t, classifier.RiskLow, RiskLevelFor(80))
	assert.Equal(t, classifier.RiskMedium, RiskLevelFor(79))
	assert.Equal(t, classifier.RiskMedium, RiskLevelFor(60))
	assert.Equal(t, classifier.RiskHigh, RiskLevelFor(59))
	assert.Equal(t, classifier.RiskHigh, RiskLevelFor(0))
	assert.Equal(t, classifier.RiskLow, RiskLevelFor(100))
}

func TestRecommendations_AllTriggers(t *testing.T) {
	a := WalletAnalysis{
		TransactionCount:        100,
		UniqueCounterparties:    5,  // diversity 0.1
		StakingTransactions:     0,  // ratio 0
		FlaggedInteractions:     1,
		BlacklistedProgramUsage: 1,
		LegitimateProgramUsage:  1,
		LargeTransfers:          11,
		OldestTransaction:       ageMonthsAgo(1),
		Now:                     now,
	}

	recs := Recommendations(a)
	assert.Equal(t, []string{
		recFlagged, recBlacklisted, recStaking, recDiversity,
		recLegit, recAge, recLarge,
	}, recs, "advisories appear in fixed check order")
}

func TestRecommendations_DefaultsWhenClean(t *testing.T) {
	a := WalletAnalysis{
		TransactionCount:       100,
		UniqueCounterparties:   40, // diversity 0.8
		StakingTransactions:    20, // ratio 0.2
		LegitimateProgramUsage: 5,
		LargeTransfers:         3,
		OldestTransaction:      ageMonthsAgo(12),
		Now:                    now,
	}

	recs := Recommendations(a)
	assert.Equal(t, []string{recDefaultHealthy, recDefaultMonitor}, recs)
}
