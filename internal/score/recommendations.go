package score

// ---------------------------------------------------------------------------
// Recommendation Generator — advisory strings from the same analysis
// ---------------------------------------------------------------------------

// Advisory and default recommendation texts. Order of emission matches the
// order of checks and is fixed.
const (
	recFlagged     = "This wallet has interacted with flagged addresses; review those transactions before trusting it."
	recBlacklisted = "Blacklisted program usage detected; treat this wallet with extreme caution."
	recStaking     = "Little or no staking activity; long-term staking is a positive trust signal."
	recDiversity   = "Low counterparty diversity; activity is concentrated on very few addresses."
	recLegit       = "Few interactions with verified programs; established protocol usage builds reputation."
	recAge         = "Wallet is less than three months old; newer wallets carry less history to assess."
	recLarge       = "A high number of large transfers was observed; verify the provenance of these funds."

	recDefaultHealthy = "No significant risk indicators were found in this wallet's history."
	recDefaultMonitor = "Continue normal on-chain hygiene: verify addresses before sending and review token approvals periodically."
)

// Recommendations maps an analysis to advisory strings, one per triggered
// condition, in fixed order. When nothing triggers it returns the two
// default positive-reinforcement strings.
func Recommendations(a WalletAnalysis) []string {
	var recs []string

	if a.FlaggedInteractions > 0 {
		recs = append(recs, recFlagged)
	}
	if a.BlacklistedProgramUsage > 0 {
		recs = append(recs, recBlacklisted)
	}
	if a.StakingRatio() < 0.1 {
		recs = append(recs, recStaking)
	}
	if a.Diversity() < 0.3 {
		recs = append(recs, recDiversity)
	}
	if a.LegitimateProgramUsage < 3 {
		recs = append(recs, recLegit)
	}
	if a.AgeMonths() < 3 {
		recs = append(recs, recAge)
	}
	if a.LargeTransfers > 10 {
		recs = append(recs, recLarge)
	}

	if len(recs) == 0 {
		return []string{recDefaultHealthy, recDefaultMonitor}
	}
	return recs
}
