package flows

import (
	"context"
	"sort"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/solana"
)

// ---------------------------------------------------------------------------
// Flow Aggregator — per-counterparty accumulation and graph construction
// ---------------------------------------------------------------------------

// Node is one address in a fund-flow graph.
type Node struct {
	ID               string               `json:"id"`
	Category         classifier.Category  `json:"category"`
	Amount           decimal.Decimal      `json:"amount"` // SOL
	TransactionCount uint32               `json:"transactionCount"`
	Label            string               `json:"label"`
	Direction        Direction            `json:"direction,omitempty"`
	RiskLevel        classifier.RiskLevel `json:"riskLevel,omitempty"`
}

// EdgeType classifies a graph edge.
type EdgeType string

const (
	EdgeFunding             EdgeType = "funding"
	EdgeWithdrawal          EdgeType = "withdrawal"
	EdgeExchange            EdgeType = "exchange"
	EdgeContractInteraction EdgeType = "contract_interaction"
	EdgeDeployment          EdgeType = "deployment"
	EdgeCreation            EdgeType = "creation"
	EdgeTransfer            EdgeType = "transfer"
)

// Edge is one directed transfer relationship in a fund-flow graph.
type Edge struct {
	Source    string          `json:"source"`
	Target    string          `json:"target"`
	Amount    decimal.Decimal `json:"amount"` // SOL
	Count     uint32          `json:"count"`
	Type      EdgeType        `json:"type"`
	Direction Direction       `json:"direction"`
}

// Graph is a deduplicated, capped fund-flow graph centered on one address.
type Graph struct {
	Nodes    []Node          `json:"nodes"`
	Edges    []Edge          `json:"links"`
	TotalIn  solana.Lamports `json:"-"`
	TotalOut solana.Lamports `json:"-"`
}

// FundingSourceCount is the number of counterparties that sent value in.
func (g *Graph) FundingSourceCount() int {
	n := 0
	for i, node := range g.Nodes {
		if i == 0 {
			continue // central node
		}
		if node.Direction == DirectionIncoming || node.Direction == DirectionBoth {
			n++
		}
	}
	return n
}

// AggregatorConfig bounds the graph and the secondary-hop expansion.
type AggregatorConfig struct {
	MaxNodes             int             `yaml:"max_nodes"`              // default 30
	MaxEdges             int             `yaml:"max_edges"`              // default 50
	MaterialityThreshold solana.Lamports `yaml:"materiality_threshold"`  // default 0.001 SOL
	SecondaryHopTopN     int             `yaml:"secondary_hop_top_n"`    // hop-1 nodes to expand
	SecondaryHopPerNode  int             `yaml:"secondary_hop_per_node"` // results kept per node
	SecondaryFetchLimit  int             `yaml:"secondary_fetch_limit"`  // txs fetched per node
}

// DefaultAggregatorConfig returns the reference caps.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		MaxNodes:             30,
		MaxEdges:             50,
		MaterialityThreshold: solana.LamportsPerSOL / 1000, // 0.001 SOL
		SecondaryHopTopN:     3,
		SecondaryHopPerNode:  5,
		SecondaryFetchLimit:  10,
	}
}

// HistoryFetcher fetches transaction history for secondary-hop expansion.
type HistoryFetcher func(ctx context.Context, address solana.Pubkey, limit int) ([]solana.Transaction, error)

// Aggregator folds per-transaction flow lists into per-counterparty records
// and emits a capped graph. One aggregator serves one analysis run.
type Aggregator struct {
	config     AggregatorConfig
	classifier *classifier.Classifier
	extractor  *Extractor

	records  map[solana.Pubkey]FlowRecord
	totalIn  solana.Lamports
	totalOut solana.Lamports

	// Secondary-hop records keyed by the hop-1 node they extend.
	secondary map[solana.Pubkey][]FlowRecord

	flowCount atomic.Int64
}

// NewAggregator creates an aggregator for one analysis run.
func NewAggregator(config AggregatorConfig, cls *classifier.Classifier, ext *Extractor) *Aggregator {
	return &Aggregator{
		config:     config,
		classifier: cls,
		extractor:  ext,
		records:    make(map[solana.Pubkey]FlowRecord),
		secondary:  make(map[solana.Pubkey][]FlowRecord),
	}
}

// Add folds one per-transaction flow list into the record map. Accumulation
// is commutative over counterparties, so call order does not matter.
func (a *Aggregator) Add(flowList []Flow) {
	for _, f := range flowList {
		a.flowCount.Add(1)

		switch f.Direction {
		case DirectionIncoming:
			a.totalIn += f.Amount
		case DirectionOutgoing:
			a.totalOut += f.Amount
		}

		if existing, ok := a.records[f.Counterparty]; ok {
			a.records[f.Counterparty] = Merge(existing, f)
			continue
		}
		risk := a.classifier.AssessRisk(f.Counterparty, f.Amount, f.FlowType)
		a.records[f.Counterparty] = NewFlowRecord(f, risk)
	}
}

// Records returns the material records, largest total first.
func (a *Aggregator) Records() []FlowRecord {
	out := make([]FlowRecord, 0, len(a.records))
	for _, rec := range a.records {
		if rec.TotalAmount < a.config.MaterialityThreshold {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalAmount != out[j].TotalAmount {
			return out[i].TotalAmount > out[j].TotalAmount
		}
		return out[i].Address < out[j].Address
	})
	return out
}

// Totals returns the accumulated in/out lamport totals.
func (a *Aggregator) Totals() (in, out solana.Lamports) {
	return a.totalIn, a.totalOut
}

// AggregatorStats reports accumulation counters for one run.
type AggregatorStats struct {
	Flows   int64 `json:"flows"`
	Records int   `json:"records"`
}

// Stats returns accumulation counters.
func (a *Aggregator) Stats() AggregatorStats {
	return AggregatorStats{
		Flows:   a.flowCount.Load(),
		Records: len(a.records),
	}
}

// Expand performs the bounded secondary-hop expansion: for the top-N largest
// material counterparties, fetch one more level of history and keep a handful
// of their own largest counterparties. Total traversal depth is 2 hops.
func (a *Aggregator) Expand(ctx context.Context, fetch HistoryFetcher) {
	if fetch == nil || a.config.SecondaryHopTopN <= 0 {
		return
	}

	top := a.Records()
	if len(top) > a.config.SecondaryHopTopN {
		top = top[:a.config.SecondaryHopTopN]
	}

	for _, hop := range top {
		txs, err := fetch(ctx, hop.Address, a.config.SecondaryFetchLimit)
		if err != nil {
			// Missing hop data degrades to no expansion for that node.
			log.Debug().Err(err).Str("address", string(hop.Address)).
				Msg("flows: secondary hop fetch failed, skipping")
			continue
		}

		sub := make(map[solana.Pubkey]FlowRecord)
		for i := range txs {
			for _, f := range a.extractor.ExtractFlows(&txs[i], hop.Address) {
				if existing, ok := sub[f.Counterparty]; ok {
					sub[f.Counterparty] = Merge(existing, f)
					continue
				}
				risk := a.classifier.AssessRisk(f.Counterparty, f.Amount, f.FlowType)
				sub[f.Counterparty] = NewFlowRecord(f, risk)
			}
		}

		recs := make([]FlowRecord, 0, len(sub))
		for _, rec := range sub {
			if rec.TotalAmount < a.config.MaterialityThreshold {
				continue
			}
			recs = append(recs, rec)
		}
		sort.Slice(recs, func(i, j int) bool { return recs[i].TotalAmount > recs[j].TotalAmount })
		if len(recs) > a.config.SecondaryHopPerNode {
			recs = recs[:a.config.SecondaryHopPerNode]
		}
		if len(recs) > 0 {
			a.secondary[hop.Address] = recs
		}
	}
}

// BuildGraph emits the deduplicated, capped graph. The central node is always
// present and always first. Truncation keeps the highest-amount entries and
// drops the rest silently.
func (a *Aggregator) BuildGraph(center solana.Pubkey, centerCategory classifier.Category, centerLabel string) *Graph {
	g := &Graph{TotalIn: a.totalIn, TotalOut: a.totalOut}

	g.Nodes = append(g.Nodes, Node{
		ID:               string(center),
		Category:         centerCategory,
		Amount:           (a.totalIn + a.totalOut).SOL(),
		TransactionCount: uint32(a.flowCount.Load()),
		Label:            centerLabel,
	})

	seen := map[string]bool{string(center): true}

	for _, rec := range a.Records() {
		if len(g.Nodes) >= a.config.MaxNodes || len(g.Edges) >= a.config.MaxEdges {
			break
		}
		if seen[string(rec.Address)] {
			continue
		}
		seen[string(rec.Address)] = true

		node := a.nodeFromRecord(rec)
		g.Nodes = append(g.Nodes, node)
		g.Edges = append(g.Edges, edgeFromRecord(string(center), rec, node.Category))
	}

	// Secondary-hop nodes and edges, while the caps allow.
	for hopAddr, recs := range a.secondary {
		if !seen[string(hopAddr)] {
			continue // hop node itself was truncated out
		}
		for _, rec := range recs {
			if len(g.Nodes) >= a.config.MaxNodes || len(g.Edges) >= a.config.MaxEdges {
				return g
			}
			if seen[string(rec.Address)] {
				continue
			}
			seen[string(rec.Address)] = true
			node := a.nodeFromRecord(rec)
			g.Nodes = append(g.Nodes, node)
			g.Edges = append(g.Edges, edgeFromRecord(string(hopAddr), rec, node.Category))
		}
	}

	return g
}

func (a *Aggregator) nodeFromRecord(rec FlowRecord) Node {
	category := a.classifier.Classify(rec.Address, classifier.Context{
		Amount:   rec.TotalAmount,
		FlowType: rec.FlowType,
		Fallback: classifier.CategoryUnknown,
	})

	label := solana.ShortAddress(string(rec.Address))
	if venue, ok := a.classifier.ExchangeLabel(rec.Address); ok {
		label = venue
	} else if name, ok := a.classifier.Tables().IsLegitimateProgram(string(rec.Address)); ok {
		label = name
	}

	return Node{
		ID:               string(rec.Address),
		Category:         category,
		Amount:           rec.TotalAmount.SOL(),
		TransactionCount: rec.TransactionCount,
		Label:            label,
		Direction:        rec.Direction,
		RiskLevel:        rec.RiskLevel,
	}
}

// edgeFromRecord builds the edge between the center (or hop node) and a
// counterparty, oriented by the record's direction.
func edgeFromRecord(center string, rec FlowRecord, category classifier.Category) Edge {
	source, target := center, string(rec.Address)
	if rec.Direction == DirectionIncoming {
		source, target = target, source
	}
	return Edge{
		Source:    source,
		Target:    target,
		Amount:    rec.TotalAmount.SOL(),
		Count:     rec.TransactionCount,
		Type:      edgeType(rec.Direction, category),
		Direction: rec.Direction,
	}
}

func edgeType(dir Direction, category classifier.Category) EdgeType {
	switch category {
	case classifier.CategoryExchange:
		return EdgeExchange
	case classifier.CategoryContract:
		return EdgeContractInteraction
	}
	switch dir {
	case DirectionIncoming:
		return EdgeFunding
	case DirectionOutgoing:
		return EdgeWithdrawal
	default:
		return EdgeTransfer
	}
}
