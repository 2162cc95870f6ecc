package flows

import (
	"github.com/shopspring/decimal"

	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/solana"
)

var decimalLamports = decimal.NewFromInt(solana.LamportsPerSOL)

// ---------------------------------------------------------------------------
// Pattern Detector — heuristic red flags over the aggregated graph
// ---------------------------------------------------------------------------

// Pattern names reported by the detector.
const (
	PatternCircularFunding   = "circular_funding"
	PatternWashTrading       = "wash_trading_suspicion"
	PatternUnknownSources    = "unknown_source_concentration"
	PatternHighFrequency     = "high_frequency_transfers"
	PatternNoExchangeFunding = "no_exchange_funding"
)

// maxReportedPatterns caps the pattern list in a result.
const maxReportedPatterns = 5

// DetectorConfig holds the pattern materiality floors.
type DetectorConfig struct {
	WashTradeOutRatio    float64         `yaml:"wash_trade_out_ratio"`   // default 0.8
	WashTradeFloor       solana.Lamports `yaml:"wash_trade_floor"`       // default 5 SOL
	UnknownNodeMin       int             `yaml:"unknown_node_min"`       // default 3 (strictly more triggers)
	UnknownNodeAmount    solana.Lamports `yaml:"unknown_node_amount"`    // default 1 SOL
	HighFreqEdgeTxCount  uint32          `yaml:"high_freq_edge_txcount"` // default 20
	HighFreqEdgeMin      int             `yaml:"high_freq_edge_min"`     // default 2 (strictly more triggers)
	NoExchangeTotalFloor solana.Lamports `yaml:"no_exchange_total_floor"` // default 10 SOL
}

// DefaultDetectorConfig returns the reference floors.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		WashTradeOutRatio:    0.8,
		WashTradeFloor:       5 * solana.LamportsPerSOL,
		UnknownNodeMin:       3,
		UnknownNodeAmount:    1 * solana.LamportsPerSOL,
		HighFreqEdgeTxCount:  20,
		HighFreqEdgeMin:      2,
		NoExchangeTotalFloor: 10 * solana.LamportsPerSOL,
	}
}

// Detector scans an aggregated graph for heuristic red flags. All checks are
// independent; every matching pattern is reported, up to a cap of 5.
type Detector struct {
	config DetectorConfig
}

// NewDetector creates a pattern detector.
func NewDetector(config DetectorConfig) *Detector {
	return &Detector{config: config}
}

// Detect evaluates every check against the graph. Nodes are expected to be
// deduplicated by address, so circular funding is an address whose record
// direction escalated to "both".
func (d *Detector) Detect(nodes []Node, edges []Edge, totalIn, totalOut solana.Lamports) []string {
	var patterns []string

	// Circular funding: same address seen in both directions.
	for i, n := range nodes {
		if i == 0 {
			continue // central node carries no direction
		}
		if n.Direction == DirectionBoth {
			patterns = append(patterns, PatternCircularFunding)
			break
		}
	}

	// Wash trading: nearly everything received flows straight back out.
	if totalOut > d.config.WashTradeFloor &&
		float64(totalOut) > d.config.WashTradeOutRatio*float64(totalIn) {
		patterns = append(patterns, PatternWashTrading)
	}

	// Many individually material unknown sources.
	unknown := 0
	for _, n := range nodes {
		if n.Category == classifier.CategoryUnknown && lamportsOf(n) > d.config.UnknownNodeAmount {
			unknown++
		}
	}
	if unknown > d.config.UnknownNodeMin {
		patterns = append(patterns, PatternUnknownSources)
	}

	// High-frequency edges.
	highFreq := 0
	for _, e := range edges {
		if e.Count > d.config.HighFreqEdgeTxCount {
			highFreq++
		}
	}
	if highFreq > d.config.HighFreqEdgeMin {
		patterns = append(patterns, PatternHighFrequency)
	}

	// Material inflow with no exchange anywhere in the graph.
	if totalIn > d.config.NoExchangeTotalFloor && countCategory(nodes, classifier.CategoryExchange) == 0 {
		patterns = append(patterns, PatternNoExchangeFunding)
	}

	if len(patterns) > maxReportedPatterns {
		patterns = patterns[:maxReportedPatterns]
	}
	return patterns
}

func countCategory(nodes []Node, cat classifier.Category) int {
	n := 0
	for _, node := range nodes {
		if node.Category == cat {
			n++
		}
	}
	return n
}

// lamportsOf recovers the lamport amount from a node's SOL decimal.
func lamportsOf(n Node) solana.Lamports {
	return solana.Lamports(n.Amount.Mul(decimalLamports).IntPart())
}
