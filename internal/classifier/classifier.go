package classifier

import (
	"strings"

	"github.com/sollytics/provenance/internal/solana"
)

// ---------------------------------------------------------------------------
// Address Classifier — static tables + naming-pattern heuristics
// Pure function over immutable tables; no network I/O.
// ---------------------------------------------------------------------------

// Category is the semantic category assigned to an address.
type Category string

const (
	CategoryDeveloper  Category = "developer"
	CategoryWallet     Category = "wallet"
	CategoryExchange   Category = "exchange"
	CategoryContract   Category = "contract"
	CategoryToken      Category = "token"
	CategoryMint       Category = "mint"
	CategoryWhale      Category = "whale"
	CategoryFundSource Category = "fund_source"
	CategoryUnknown    Category = "unknown"
)

// FlowType describes the kind of value movement an address was seen in.
type FlowType string

const (
	FlowTransfer FlowType = "transfer"
	FlowDexTrade FlowType = "dex_trade"
	FlowStaking  FlowType = "staking"
	FlowToken    FlowType = "token_transfer"
	FlowUnknown  FlowType = "unknown"
)

// RiskLevel is the per-address risk bucket.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Context carries the observed flow context for classification. Amount is in
// lamports; Fallback is the category used when no rule matches (defaults to
// CategoryUnknown when empty).
type Context struct {
	Amount   solana.Lamports
	FlowType FlowType
	Fallback Category
}

// Config holds the classifier thresholds.
type Config struct {
	WhaleThresholdSOL     float64 `yaml:"whale_threshold_sol"`      // reference: 10
	VeryLargeThresholdSOL float64 `yaml:"very_large_threshold_sol"` // reference: 100
}

// DefaultConfig returns the reference thresholds.
func DefaultConfig() Config {
	return Config{
		WhaleThresholdSOL:     10,
		VeryLargeThresholdSOL: 100,
	}
}

// Program-account naming heuristics: Solana system-owned programs carry long
// runs of '1' padding, and the wrapped SOL mint starts with "So1".
const (
	systemPadding     = "1111111111"
	wrappedSOLPrefix  = "So1"
	canonicalMinChars = 32
	canonicalMaxChars = 44
)

// Classifier maps addresses to semantic categories.
type Classifier struct {
	tables Tables
	config Config

	whaleLamports     solana.Lamports
	veryLargeLamports solana.Lamports
}

// New builds a classifier over immutable tables.
func New(config Config, tables Tables) *Classifier {
	return &Classifier{
		tables:            tables,
		config:            config,
		whaleLamports:     solana.Lamports(config.WhaleThresholdSOL * solana.LamportsPerSOL),
		veryLargeLamports: solana.Lamports(config.VeryLargeThresholdSOL * solana.LamportsPerSOL),
	}
}

// Tables returns the classifier's lookup tables.
func (c *Classifier) Tables() Tables {
	return c.tables
}

// Classify assigns a category to an address. Rules are applied in priority
// order; identical inputs always yield identical outputs.
func (c *Classifier) Classify(address solana.Pubkey, ctx Context) Category {
	addr := string(address)

	if _, ok := c.tables.IsExchange(addr); ok {
		return CategoryExchange
	}

	// Flagged addresses are a penalty signal, not a category (see IsFlagged).

	if ctx.Amount > c.whaleLamports {
		return CategoryWhale
	}

	switch ctx.FlowType {
	case FlowDexTrade:
		return CategoryExchange
	case FlowStaking, FlowToken:
		return CategoryContract
	}

	if len(addr) >= canonicalMinChars && len(addr) <= canonicalMaxChars {
		if strings.Contains(addr, systemPadding) || strings.HasPrefix(addr, wrappedSOLPrefix) {
			return CategoryContract
		}
	}

	if ctx.Fallback != "" {
		return ctx.Fallback
	}
	return CategoryUnknown
}

// IsFlagged reports whether an address is on the scam/blacklist.
func (c *Classifier) IsFlagged(address solana.Pubkey) bool {
	return c.tables.IsFlagged(string(address))
}

// ExchangeLabel returns the venue name for a known exchange address.
func (c *Classifier) ExchangeLabel(address solana.Pubkey) (string, bool) {
	return c.tables.IsExchange(string(address))
}

// AssessRisk assigns a per-address risk level from amount and flow type.
// Known-safe addresses are always low risk.
func (c *Classifier) AssessRisk(address solana.Pubkey, amount solana.Lamports, flowType FlowType) RiskLevel {
	addr := string(address)
	if _, ok := c.tables.IsExchange(addr); ok {
		return RiskLow
	}
	if _, ok := c.tables.IsLegitimateProgram(addr); ok {
		return RiskLow
	}

	if amount > c.veryLargeLamports && (flowType == FlowUnknown || flowType == "") {
		return RiskHigh
	}
	if amount > c.whaleLamports {
		return RiskMedium
	}
	return RiskLow
}
