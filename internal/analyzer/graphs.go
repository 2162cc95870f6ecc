package analyzer

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/flows"
	"github.com/sollytics/provenance/internal/solana"
)

// ---------------------------------------------------------------------------
// Fund-flow graph entry points
// ---------------------------------------------------------------------------

// patternUnableToAnalyze is the sentinel reported on degraded graph results.
const patternUnableToAnalyze = "unable_to_analyze"

// WalletGraphReport is the wallet graph endpoint response body.
type WalletGraphReport struct {
	Nodes              []flows.Node    `json:"nodes"`
	Links              []flows.Edge    `json:"links"`
	TotalFundsReceived decimal.Decimal `json:"totalFundsReceived"`
	TotalFundsSent     decimal.Decimal `json:"totalFundsSent"`
	FundingSources     int             `json:"fundingSources"`
	RiskScore          int             `json:"riskScore"`
	SuspiciousPatterns []string        `json:"suspiciousPatterns"`
}

// TokenGraphReport is the token graph endpoint response body.
type TokenGraphReport struct {
	Nodes              []flows.Node    `json:"nodes"`
	Links              []flows.Edge    `json:"links"`
	TotalFunding       decimal.Decimal `json:"totalFunding"`
	FundingSources     int             `json:"fundingSources"`
	RiskScore          int             `json:"riskScore"`
	SuspiciousPatterns []string        `json:"suspiciousPatterns"`
}

// WalletGraph builds the fund-flow graph centered on one wallet. The result
// always contains at least the central node; fetch failures degrade to a
// smaller graph, never an error. The only error returned is local address
// validation.
func (a *Analyzer) WalletGraph(ctx context.Context, address solana.Pubkey) (report *WalletGraphReport, err error) {
	if err := solana.ValidateAddress(string(address)); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("address", string(address)).
				Msg("analyzer: recovered during wallet graph build")
			report = degradedWalletGraph(address)
			err = nil
		}
	}()

	txs := a.fetchTransactions(ctx, address)

	agg := flows.NewAggregator(a.aggregatorCfg, a.classifier, a.extractor)
	for i := range txs {
		agg.Add(a.extractor.ExtractFlows(&txs[i], address))
	}
	agg.Expand(ctx, a.historyFetcher())

	g := agg.BuildGraph(address, classifier.CategoryDeveloper, solana.ShortAddress(string(address)))
	totalIn, totalOut := agg.Totals()

	patterns := a.detector.Detect(g.Nodes, g.Edges, totalIn, totalOut)
	risk := flows.FlowRisk(g.Nodes, g.Edges, totalIn, totalOut, patterns)
	if patterns == nil {
		patterns = []string{}
	}

	log.Info().Str("address", string(address)).
		Int("nodes", len(g.Nodes)).Int("edges", len(g.Edges)).
		Int("risk_score", risk).Strs("patterns", patterns).
		Msg("analyzer: wallet graph built")

	return &WalletGraphReport{
		Nodes:              g.Nodes,
		Links:              g.Edges,
		TotalFundsReceived: totalIn.SOL(),
		TotalFundsSent:     totalOut.SOL(),
		FundingSources:     g.FundingSourceCount(),
		RiskScore:          risk,
		SuspiciousPatterns: patterns,
	}, nil
}

// TokenGraph builds the deployer-centric funding graph for a token mint.
// Funding attribution uses the stricter fee-tolerant extractor. deployer may
// be empty, in which case the graph holds only the mint node.
func (a *Analyzer) TokenGraph(ctx context.Context, mint, deployer solana.Pubkey) (report *TokenGraphReport, err error) {
	if err := solana.ValidateAddress(string(mint)); err != nil {
		return nil, err
	}
	if deployer != "" {
		if err := solana.ValidateAddress(string(deployer)); err != nil {
			return nil, err
		}
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("mint", string(mint)).
				Msg("analyzer: recovered during token graph build")
			report = degradedTokenGraph(mint)
			err = nil
		}
	}()

	mintNode := flows.Node{
		ID:       string(mint),
		Category: classifier.CategoryMint,
		Amount:   decimal.Zero,
		Label:    solana.ShortAddress(string(mint)),
	}

	if deployer == "" {
		return &TokenGraphReport{
			Nodes:              []flows.Node{mintNode},
			TotalFunding:       decimal.Zero,
			SuspiciousPatterns: []string{},
			RiskScore:          flows.FlowRisk([]flows.Node{mintNode}, nil, 0, 0, nil),
		}, nil
	}

	txs := a.fetchTransactions(ctx, deployer)

	// Reserve one node and one edge slot for the mint node and the
	// deployment edge prepended below, so the caps hold for the full response.
	aggCfg := a.aggregatorCfg
	if aggCfg.MaxNodes > 1 {
		aggCfg.MaxNodes--
	}
	if aggCfg.MaxEdges > 1 {
		aggCfg.MaxEdges--
	}
	agg := flows.NewAggregator(aggCfg, a.classifier, a.extractor)
	for i := range txs {
		if f, ok := a.extractor.ExtractFundingSource(&txs[i], deployer); ok {
			agg.Add([]flows.Flow{f})
		}
	}

	g := agg.BuildGraph(deployer, classifier.CategoryDeveloper, solana.ShortAddress(string(deployer)))
	totalIn, totalOut := agg.Totals()
	fundingSources := g.FundingSourceCount()

	patterns := a.detector.Detect(g.Nodes, g.Edges, totalIn, totalOut)
	risk := flows.FlowRisk(g.Nodes, g.Edges, totalIn, totalOut, patterns)
	if patterns == nil {
		patterns = []string{}
	}

	// The mint anchors the graph; the deployer hangs off it with a
	// deployment edge, funders hang off the deployer.
	nodes := append([]flows.Node{mintNode}, g.Nodes...)
	edges := append([]flows.Edge{{
		Source:    string(deployer),
		Target:    string(mint),
		Amount:    decimal.Zero,
		Count:     1,
		Type:      flows.EdgeDeployment,
		Direction: flows.DirectionOutgoing,
	}}, g.Edges...)

	log.Info().Str("mint", string(mint)).Str("deployer", string(deployer)).
		Int("funding_sources", fundingSources).Int("risk_score", risk).
		Msg("analyzer: token graph built")

	return &TokenGraphReport{
		Nodes:              nodes,
		Links:              edges,
		TotalFunding:       totalIn.SOL(),
		FundingSources:     fundingSources,
		RiskScore:          risk,
		SuspiciousPatterns: patterns,
	}, nil
}

// historyFetcher adapts the chain client for secondary-hop expansion.
func (a *Analyzer) historyFetcher() flows.HistoryFetcher {
	return func(ctx context.Context, address solana.Pubkey, limit int) ([]solana.Transaction, error) {
		fetchCtx, cancel := context.WithTimeout(ctx, a.config.FetchTimeout)
		defer cancel()
		return a.client.GetTransactionHistory(fetchCtx, address, limit)
	}
}

func degradedWalletGraph(address solana.Pubkey) *WalletGraphReport {
	return &WalletGraphReport{
		Nodes: []flows.Node{{
			ID:       string(address),
			Category: classifier.CategoryDeveloper,
			Amount:   decimal.Zero,
			Label:    solana.ShortAddress(string(address)),
		}},
		TotalFundsReceived: decimal.Zero,
		TotalFundsSent:     decimal.Zero,
		SuspiciousPatterns: []string{patternUnableToAnalyze},
	}
}

func degradedTokenGraph(mint solana.Pubkey) *TokenGraphReport {
	return &TokenGraphReport{
		Nodes: []flows.Node{{
			ID:       string(mint),
			Category: classifier.CategoryMint,
			Amount:   decimal.Zero,
			Label:    solana.ShortAddress(string(mint)),
		}},
		TotalFunding:       decimal.Zero,
		SuspiciousPatterns: []string{patternUnableToAnalyze},
	}
}
