package classifier

// ---------------------------------------------------------------------------
// Static address tables — exchanges, flagged addresses, known programs
// Immutable after construction; injected so deployments can override them.
// ---------------------------------------------------------------------------

// Tables holds the static lookup tables used for classification and risk
// assessment. Tables must not be mutated after the classifier is built.
type Tables struct {
	// Exchanges maps known exchange hot wallet addresses to a venue name.
	Exchanges map[string]string

	// FlaggedAddresses is the scam/blacklist set. Membership is a penalty
	// signal, not a category.
	FlaggedAddresses map[string]bool

	// BlacklistedPrograms are programs whose invocation is penalized.
	BlacklistedPrograms map[string]bool

	// LegitimatePrograms maps verified protocol/program addresses to a
	// display name. Interaction with these is rewarded.
	LegitimatePrograms map[string]string

	// StakingPrograms identify staking/delegation instructions.
	StakingPrograms map[string]bool

	// DexPrograms identify DEX/AMM trade instructions.
	DexPrograms map[string]bool
}

// DefaultTables returns the built-in mainnet tables.
func DefaultTables() Tables {
	return Tables{
		Exchanges: map[string]string{
			// Binance
			"5tzFkiKscXHK5ZXCGbXZxdw7gTjjD1mBwuoFbhUvuAi9": "binance",
			"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM": "binance",
			"2ojv9BAiHUrvsm9gxDe7fJSzbNZSJcxZvf8dqmWGHG8S": "binance",
			"HN7cABqLq46Es1jh92dQQisAq662SmxELLLsHHe4YWrH": "binance",

			// Coinbase
			"GJRs4FwHtemZ5ZE9x3FNvJ8TMwitKTh21yxdRPqn7npE": "coinbase",
			"H8sMJSCQxfKiFTCfDR3DUMLPwcRbM61LGFJ8N4dK3WjS": "coinbase",
			"2AQdpHJ2JpcEgPiATUXjQxA8QmafFegfQwSLWSprPicm": "coinbase",

			// Kraken
			"FWznbcNXWQuHTawe9RxvQ2LdCENssh12dsznf4RiouN5": "kraken",

			// OKX
			"5VCwKtCXgCJ6kit5FybXjvFnPXCrKoKwFqgq5YVe1rAS": "okx",
			"GBCxMjyaNya5cQk7rAFj6AeUQRYXs2NxaVyUgQsq87nS": "okx",

			// Bybit
			"AC5RDfQFmDS1deWZos921JfqscXdByf6BKHAbETSYnh7": "bybit",

			// Gate.io
			"u6PJ8DtQuPFnfmwHbGFULQ4u4EgjDiyYKjVEsynXq2w": "gateio",

			// KuCoin
			"BmFdpraQhkiDQE6SnfG5PVddTtR3GYBnCkEHAowHvPLJ": "kucoin",
		},

		FlaggedAddresses: map[string]bool{
			// Drainer and rug wallets reported by community trackers.
			"GrXcAa3TZtMrLvXkXDLq4jart8DVvB3kqBCBLGsfAQtt": true,
			"7Y3ZbCrpqKU2AbXgRVmPmnkUWn2DoDQ5ZAnCubJEbXNP": true,
			"3FTriBkYuSWqhrLXJpcyAGNSyQqdKRJdFwSxVBWzqVmc": true,
		},

		BlacklistedPrograms: map[string]bool{
			// Known drainer programs.
			"F1aGsSC9yCbzuTjnRbWZuJ3XEqSCzf8NAMvB7dNpS1pc": true,
			"Dra1nRugPu11er111111111111111111111111111111": true,
		},

		LegitimatePrograms: map[string]string{
			"11111111111111111111111111111111":            "system",
			"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA": "spl-token",
			"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": "associated-token",
			"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8": "raydium-amm",
			"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4":  "jupiter",
			"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc":  "orca-whirlpool",
			"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD":  "marinade",
			"ComputeBudget111111111111111111111111111111":  "compute-budget",
			"Stake11111111111111111111111111111111111111":  "stake",
			"Vote111111111111111111111111111111111111111":  "vote",
		},

		StakingPrograms: map[string]bool{
			"Stake11111111111111111111111111111111111111": true,
			"Vote111111111111111111111111111111111111111": true,
			"MarBmsSgKXdrN1egZf5sqe1TMai9K1rChYNDJgjq7aD": true,
		},

		DexPrograms: map[string]bool{
			"675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8": true, // raydium
			"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4":  true, // jupiter
			"whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc":  true, // orca
		},
	}
}

// IsExchange checks the exchange allow-list, returning the venue name.
func (t Tables) IsExchange(address string) (string, bool) {
	venue, ok := t.Exchanges[address]
	return venue, ok
}

// IsFlagged checks the scam/blacklist set.
func (t Tables) IsFlagged(address string) bool {
	return t.FlaggedAddresses[address]
}

// IsBlacklistedProgram checks the blacklisted program set.
func (t Tables) IsBlacklistedProgram(programID string) bool {
	return t.BlacklistedPrograms[programID]
}

// IsLegitimateProgram checks the verified program allow-list.
func (t Tables) IsLegitimateProgram(programID string) (string, bool) {
	name, ok := t.LegitimatePrograms[programID]
	return name, ok
}

// IsStakingProgram reports whether a program is a staking/delegation program.
func (t Tables) IsStakingProgram(programID string) bool {
	return t.StakingPrograms[programID]
}

// IsDexProgram reports whether a program is a DEX/AMM program.
func (t Tables) IsDexProgram(programID string) bool {
	return t.DexPrograms[programID]
}
