package flows

import (
	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/solana"
)

// ---------------------------------------------------------------------------
// Fund-flow risk score — graph statistics + detected patterns
// ---------------------------------------------------------------------------

const (
	flowRiskBase              = 30
	flowRiskPerPattern        = 15
	flowRiskNoExchangeInflow  = 20
	flowRiskPerUnknownNode    = 5
	flowRiskPerHighRiskNode   = 10
	flowRiskManyWhales        = 10
	flowRiskPerExchangeNode   = 8
	flowRiskSomeContractNodes = 5

	noExchangeInflowFloor = 10 * solana.LamportsPerSOL
)

// FlowRisk computes the fund-flow risk score in [0,100] from graph
// statistics and detected patterns. Base 30.
func FlowRisk(nodes []Node, edges []Edge, totalIn, totalOut solana.Lamports, patterns []string) int {
	_ = edges // edge statistics enter through the pattern detector

	score := flowRiskBase

	score += flowRiskPerPattern * len(patterns)

	exchanges := countCategory(nodes, classifier.CategoryExchange)
	if exchanges == 0 && totalIn > noExchangeInflowFloor {
		score += flowRiskNoExchangeInflow
	}

	score += flowRiskPerUnknownNode * countCategory(nodes, classifier.CategoryUnknown)

	highRisk := 0
	for _, n := range nodes {
		if n.RiskLevel == classifier.RiskHigh {
			highRisk++
		}
	}
	score += flowRiskPerHighRiskNode * highRisk

	if countCategory(nodes, classifier.CategoryWhale) > 2 {
		score += flowRiskManyWhales
	}

	score -= flowRiskPerExchangeNode * exchanges

	if contracts := countCategory(nodes, classifier.CategoryContract); contracts > 0 && contracts < 5 {
		score -= flowRiskSomeContractNodes
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
