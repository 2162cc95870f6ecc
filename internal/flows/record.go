package flows

import (
	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/solana"
)

// ---------------------------------------------------------------------------
// Flow records — per-counterparty accumulation state
// ---------------------------------------------------------------------------

// Direction of value movement relative to the subject address.
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionOutgoing Direction = "outgoing"
	DirectionBoth     Direction = "both"
)

// Flow is one observed value movement between the subject and a counterparty,
// extracted from a single transaction.
type Flow struct {
	Counterparty solana.Pubkey
	Amount       solana.Lamports
	Direction    Direction
	Timestamp    int64
	FlowType     classifier.FlowType
}

// FlowRecord accumulates all flows for one counterparty within a single
// analysis run. RiskLevel is assessed once, when the record is created.
type FlowRecord struct {
	Address          solana.Pubkey        `json:"address"`
	TotalAmount      solana.Lamports      `json:"total_amount"`
	TransactionCount uint32               `json:"transaction_count"`
	Direction        Direction            `json:"direction"`
	FirstSeen        int64                `json:"first_seen"`
	LastSeen         int64                `json:"last_seen"`
	FlowType         classifier.FlowType  `json:"flow_type"`
	RiskLevel        classifier.RiskLevel `json:"risk_level"`
}

// NewFlowRecord creates the initial record for a counterparty's first flow.
func NewFlowRecord(f Flow, risk classifier.RiskLevel) FlowRecord {
	return FlowRecord{
		Address:          f.Counterparty,
		TotalAmount:      f.Amount,
		TransactionCount: 1,
		Direction:        f.Direction,
		FirstSeen:        f.Timestamp,
		LastSeen:         f.Timestamp,
		FlowType:         f.FlowType,
		RiskLevel:        risk,
	}
}

// Merge folds one more flow into an existing record. Direction upgrades to
// "both" the first time the incoming direction differs and never downgrades.
func Merge(existing FlowRecord, incoming Flow) FlowRecord {
	existing.TotalAmount += incoming.Amount
	existing.TransactionCount++
	if incoming.Timestamp < existing.FirstSeen {
		existing.FirstSeen = incoming.Timestamp
	}
	if incoming.Timestamp > existing.LastSeen {
		existing.LastSeen = incoming.Timestamp
	}
	if existing.Direction != DirectionBoth && incoming.Direction != existing.Direction {
		existing.Direction = DirectionBoth
	}
	return existing
}
