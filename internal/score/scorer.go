package score

import (
	"fmt"
	"math"
	"time"

	"github.com/sollytics/provenance/internal/classifier"
)

// ---------------------------------------------------------------------------
// Wallet Reputability Scorer — weighted additive signals, bounded 0-100
// ---------------------------------------------------------------------------

// Polarity tags a factor for display. Polarity follows per-factor threshold
// rules and is deliberately not derived from the numeric impact sign.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
	PolarityNeutral  Polarity = "neutral"
)

// Factor is one itemized score contribution.
type Factor struct {
	Name        string   `json:"name"`
	Impact      int      `json:"impact"`
	Description string   `json:"description"`
	Polarity    Polarity `json:"polarity"`
}

// Result is a bounded reputability score with factor attribution.
type Result struct {
	Score     int                  `json:"score"`
	Factors   []Factor             `json:"factors"`
	RiskLevel classifier.RiskLevel `json:"riskLevel"`
}

// WalletAnalysis is the aggregate view of a wallet's history that the scorer
// and the recommendation generator consume. All counts are derived from one
// analysis run.
type WalletAnalysis struct {
	Address                 string
	TransactionCount        int
	UniqueCounterparties    int
	StakingTransactions     int
	FlaggedInteractions     int
	BlacklistedProgramUsage int
	LegitimateProgramUsage  int
	LargeTransfers          int   // transfers above the large threshold
	OldestTransaction       int64 // unix seconds, 0 = no history
	RecentTransactions      int   // trailing 30 days

	// Now anchors time-derived factors; the zero value means time.Now().
	Now time.Time
}

func (a WalletAnalysis) now() time.Time {
	if a.Now.IsZero() {
		return time.Now()
	}
	return a.Now
}

// Diversity is unique counterparties over half the transaction count,
// capped at 1.0.
func (a WalletAnalysis) Diversity() float64 {
	if a.TransactionCount == 0 {
		return 0
	}
	d := float64(a.UniqueCounterparties) / (0.5 * float64(a.TransactionCount))
	if d > 1 {
		d = 1
	}
	return d
}

// StakingRatio is staking transactions over total transactions.
func (a WalletAnalysis) StakingRatio() float64 {
	if a.TransactionCount == 0 {
		return 0
	}
	return float64(a.StakingTransactions) / float64(a.TransactionCount)
}

// AgeMonths is the wallet age in months, floored at 0.1 when any history
// exists and 0 when none does.
func (a WalletAnalysis) AgeMonths() float64 {
	if a.OldestTransaction == 0 {
		return 0
	}
	months := a.now().Sub(time.Unix(a.OldestTransaction, 0)).Hours() / (24 * 30)
	if months < 0.1 {
		months = 0.1
	}
	return months
}

// Frequency is transactions per day over the trailing 30 days.
func (a WalletAnalysis) Frequency() float64 {
	return float64(a.RecentTransactions) / 30
}

// Scoring weights and caps.
const (
	scoreBase = 50

	flaggedPenalty      = 15 // per interaction, unbounded
	blacklistedPenalty  = 20 // per usage, unbounded
	largeTransferWeight = 3
	largeTransferCap    = 30
	diversityWeight     = 20
	stakingWeight       = 25
	ageWeight           = 2
	ageCap              = 24
	legitWeight         = 2
	legitCap            = 20
	frequencyWeight     = 5
	frequencyCap        = 15

	diversityPositiveMin = 0.3
	stakingPositiveMin   = 0.1
	agePositiveMinMonths = 3
	legitPositiveMin     = 3
)

// Score computes the wallet reputability score. Pure function of the
// analysis: the same input always yields the same score, factors, and order.
func Score(a WalletAnalysis) Result {
	total := scoreBase
	// Non-nil so an empty factor list serializes as [] rather than null.
	factors := make([]Factor, 0, 8)

	if a.FlaggedInteractions > 0 {
		impact := -flaggedPenalty * a.FlaggedInteractions
		total += impact
		factors = append(factors, Factor{
			Name:        "flagged_interactions",
			Impact:      impact,
			Description: fmt.Sprintf("%d interaction(s) with flagged addresses", a.FlaggedInteractions),
			Polarity:    PolarityNegative,
		})
	}

	if a.BlacklistedProgramUsage > 0 {
		impact := -blacklistedPenalty * a.BlacklistedProgramUsage
		total += impact
		factors = append(factors, Factor{
			Name:        "blacklisted_programs",
			Impact:      impact,
			Description: fmt.Sprintf("%d invocation(s) of blacklisted programs", a.BlacklistedProgramUsage),
			Polarity:    PolarityNegative,
		})
	}

	if a.LargeTransfers > 0 {
		impact := -capInt(largeTransferWeight*a.LargeTransfers, largeTransferCap)
		total += impact
		factors = append(factors, Factor{
			Name:        "large_transfers",
			Impact:      impact,
			Description: fmt.Sprintf("%d large transfer(s)", a.LargeTransfers),
			Polarity:    PolarityNegative,
		})
	}

	if diversity := a.Diversity(); diversity > 0 {
		impact := round(diversity * diversityWeight)
		total += impact
		polarity := PolarityNeutral
		if diversity > diversityPositiveMin {
			polarity = PolarityPositive
		}
		factors = append(factors, Factor{
			Name:        "counterparty_diversity",
			Impact:      impact,
			Description: fmt.Sprintf("counterparty diversity %.2f across %d transactions", diversity, a.TransactionCount),
			Polarity:    polarity,
		})
	}

	if ratio := a.StakingRatio(); ratio > 0 {
		impact := round(ratio * stakingWeight)
		total += impact
		polarity := PolarityNeutral
		if ratio >= stakingPositiveMin {
			polarity = PolarityPositive
		}
		factors = append(factors, Factor{
			Name:        "staking_activity",
			Impact:      impact,
			Description: fmt.Sprintf("%.0f%% of transactions are staking", ratio*100),
			Polarity:    polarity,
		})
	}

	if age := a.AgeMonths(); age > 0 {
		impact := capInt(round(age*ageWeight), ageCap)
		total += impact
		polarity := PolarityNeutral
		if age >= agePositiveMinMonths {
			polarity = PolarityPositive
		}
		factors = append(factors, Factor{
			Name:        "wallet_age",
			Impact:      impact,
			Description: fmt.Sprintf("wallet active for %.1f month(s)", age),
			Polarity:    polarity,
		})
	}

	if a.LegitimateProgramUsage > 0 {
		impact := capInt(legitWeight*a.LegitimateProgramUsage, legitCap)
		total += impact
		polarity := PolarityNeutral
		if a.LegitimateProgramUsage >= legitPositiveMin {
			polarity = PolarityPositive
		}
		factors = append(factors, Factor{
			Name:        "verified_program_usage",
			Impact:      impact,
			Description: fmt.Sprintf("%d interaction(s) with verified programs", a.LegitimateProgramUsage),
			Polarity:    polarity,
		})
	}

	if freq := a.Frequency(); freq > 0 {
		impact := capInt(round(freq*frequencyWeight), frequencyCap)
		total += impact
		factors = append(factors, Factor{
			Name:        "recent_activity",
			Impact:      impact,
			Description: fmt.Sprintf("%.1f transaction(s)/day over the last 30 days", freq),
			Polarity:    PolarityPositive,
		})
	}

	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}

	return Result{
		Score:     total,
		Factors:   factors,
		RiskLevel: RiskLevelFor(total),
	}
}

// RiskLevelFor maps a score to its risk bucket: >=80 low, >=60 medium,
// otherwise high.
func RiskLevelFor(score int) classifier.RiskLevel {
	switch {
	case score >= 80:
		return classifier.RiskLow
	case score >= 60:
		return classifier.RiskMedium
	default:
		return classifier.RiskHigh
	}
}

func round(v float64) int {
	return int(math.Round(v))
}

func capInt(v, max int) int {
	if v > max {
		return max
	}
	return v
}
