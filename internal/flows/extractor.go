package flows

import (
	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/solana"
)

// ---------------------------------------------------------------------------
// Balance-Delta Extractor — per-transaction flow extraction
// ---------------------------------------------------------------------------

// ExtractorConfig holds the extractor thresholds (lamports).
type ExtractorConfig struct {
	// NoiseThreshold: counterparty deltas at or below this are ignored.
	// Reference: 10_000 lamports (~0.00001 SOL).
	NoiseThreshold solana.Lamports `yaml:"noise_threshold"`

	// FeeTolerance: slack when matching a funder's decrease to the target's
	// increase in funding-source attribution.
	FeeTolerance solana.Lamports `yaml:"fee_tolerance"`
}

// DefaultExtractorConfig returns the reference thresholds.
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		NoiseThreshold: 10_000,
		FeeTolerance:   15_000,
	}
}

// Extractor computes per-counterparty balance deltas for a target address.
type Extractor struct {
	config ExtractorConfig
	tables classifier.Tables
}

// NewExtractor creates an extractor over the given classification tables.
func NewExtractor(config ExtractorConfig, tables classifier.Tables) *Extractor {
	return &Extractor{config: config, tables: tables}
}

// ExtractFlows returns one flow per material counterparty in the transaction.
//
// Direction is computed per counterparty from the sign of the counterparty's
// own balance delta: a counterparty whose balance decreased sent value toward
// the target (incoming), one whose balance increased received value
// (outgoing). The amount attributed to each counterparty is that
// counterparty's own |delta|. Returns nil if the target does not appear in
// the transaction.
func (e *Extractor) ExtractFlows(tx *solana.Transaction, target solana.Pubkey) []Flow {
	if _, ok := tx.BalanceDelta(target); !ok {
		return nil
	}

	flowType := e.InferFlowType(tx, target)

	var out []Flow
	for i, key := range tx.AccountKeys {
		if key == target || i >= len(tx.PreBalances) || i >= len(tx.PostBalances) {
			continue
		}
		delta := int64(tx.PostBalances[i]) - int64(tx.PreBalances[i])
		amount := delta
		if amount < 0 {
			amount = -amount
		}
		if solana.Lamports(amount) <= e.config.NoiseThreshold {
			continue
		}

		direction := DirectionOutgoing
		if delta < 0 {
			// Counterparty's balance decreased: value flowed to the target.
			direction = DirectionIncoming
		}

		out = append(out, Flow{
			Counterparty: key,
			Amount:       solana.Lamports(amount),
			Direction:    direction,
			Timestamp:    tx.Timestamp,
			FlowType:     flowType,
		})
	}
	return out
}

// ExtractFundingSource applies the stricter fee-tolerant matching used for
// "who funded this address" attribution: the target's balance must have
// increased, and a single counterparty's decrease must match that increase
// within FeeTolerance plus the transaction fee. Returns the directed funding
// flow, or false when no counterparty matches.
func (e *Extractor) ExtractFundingSource(tx *solana.Transaction, target solana.Pubkey) (Flow, bool) {
	targetDelta, ok := tx.BalanceDelta(target)
	if !ok || targetDelta <= 0 {
		return Flow{}, false
	}

	tolerance := int64(e.config.FeeTolerance) + int64(tx.Fee)

	for i, key := range tx.AccountKeys {
		if key == target || i >= len(tx.PreBalances) || i >= len(tx.PostBalances) {
			continue
		}
		delta := int64(tx.PostBalances[i]) - int64(tx.PreBalances[i])
		if delta >= 0 {
			continue
		}
		decrease := -delta
		diff := decrease - targetDelta
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			return Flow{
				Counterparty: key,
				Amount:       solana.Lamports(targetDelta),
				Direction:    DirectionIncoming,
				Timestamp:    tx.Timestamp,
				FlowType:     FlowTypeOf(e.tables, tx),
			}, true
		}
	}
	return Flow{}, false
}

// InferFlowType classifies the transaction's dominant flow type for the
// given target.
func (e *Extractor) InferFlowType(tx *solana.Transaction, target solana.Pubkey) classifier.FlowType {
	ft := FlowTypeOf(e.tables, tx)
	if ft == classifier.FlowDexTrade || ft == classifier.FlowStaking {
		return ft
	}
	for _, tt := range tx.TokenTransfers {
		if tt.From == target || tt.To == target {
			return classifier.FlowToken
		}
	}
	return ft
}

// FlowTypeOf inspects a transaction's instructions against the program
// tables. DEX programs win over staking when both appear. A transaction
// with no recognized program at all stays unclassified, which keeps risk
// assessment strict for large bare transfers.
func FlowTypeOf(tables classifier.Tables, tx *solana.Transaction) classifier.FlowType {
	staking := false
	recognized := false
	for _, in := range tx.Instructions {
		id := string(in.ProgramID)
		if tables.IsDexProgram(id) {
			return classifier.FlowDexTrade
		}
		if tables.IsStakingProgram(id) {
			staking = true
		}
		if _, ok := tables.IsLegitimateProgram(id); ok {
			recognized = true
		}
	}
	if staking {
		return classifier.FlowStaking
	}
	if recognized {
		return classifier.FlowTransfer
	}
	return classifier.FlowUnknown
}
