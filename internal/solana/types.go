package solana

import (
	"github.com/shopspring/decimal"
)

// Pubkey is a Solana public key (base58 string).
type Pubkey string

// Signature is a Solana transaction signature.
type Signature string

// LamportsPerSOL is the number of smallest units in one SOL.
const LamportsPerSOL = 1_000_000_000

// Lamports is an amount in the smallest native unit.
type Lamports uint64

// SOL converts lamports to a decimal SOL amount for display.
func (l Lamports) SOL() decimal.Decimal {
	return decimal.NewFromInt(int64(l)).Div(decimal.NewFromInt(LamportsPerSOL))
}

// ShortAddress abbreviates an address for display labels: first and last
// four characters joined by "..". Short strings pass through unchanged.
func ShortAddress(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:4] + ".." + addr[len(addr)-4:]
}

// ---------------------------------------------------------------------------
// Transaction types
// ---------------------------------------------------------------------------

// NativeTransfer is a SOL movement within a transaction.
type NativeTransfer struct {
	From   Pubkey   `json:"from"`
	To     Pubkey   `json:"to"`
	Amount Lamports `json:"amount"`
}

// TokenTransfer is an SPL token movement within a transaction.
type TokenTransfer struct {
	From        Pubkey          `json:"from"`
	To          Pubkey          `json:"to"`
	Mint        Pubkey          `json:"mint"`
	Symbol      string          `json:"symbol,omitempty"`
	TokenAmount decimal.Decimal `json:"token_amount"`
}

// Instruction is a program invocation within a transaction.
type Instruction struct {
	ProgramID Pubkey `json:"program_id"`
	Data      string `json:"data,omitempty"`
}

// Transaction is one confirmed transaction as reported by the indexing
// provider. AccountKeys, PreBalances and PostBalances are parallel slices:
// PreBalances[i] and PostBalances[i] are the lamport balances of
// AccountKeys[i] before and after execution.
type Transaction struct {
	Signature       Signature        `json:"signature"`
	Timestamp       int64            `json:"timestamp"` // unix seconds
	Fee             Lamports         `json:"fee"`
	AccountKeys     []Pubkey         `json:"account_keys"`
	PreBalances     []Lamports       `json:"pre_balances"`
	PostBalances    []Lamports       `json:"post_balances"`
	NativeTransfers []NativeTransfer `json:"native_transfers,omitempty"`
	TokenTransfers  []TokenTransfer  `json:"token_transfers,omitempty"`
	Instructions    []Instruction    `json:"instructions,omitempty"`
	Failed          bool             `json:"failed,omitempty"`
}

// BalanceDelta returns post - pre for the given account, and whether the
// account appears in the transaction at all.
func (t *Transaction) BalanceDelta(address Pubkey) (int64, bool) {
	for i, key := range t.AccountKeys {
		if key != address {
			continue
		}
		if i >= len(t.PreBalances) || i >= len(t.PostBalances) {
			return 0, false
		}
		return int64(t.PostBalances[i]) - int64(t.PreBalances[i]), true
	}
	return 0, false
}

// Balance is one token holding of an account.
type Balance struct {
	Mint   Pubkey          `json:"mint"`
	Symbol string          `json:"symbol,omitempty"`
	Amount decimal.Decimal `json:"amount"`
}

// AccountInfo is basic account metadata.
type AccountInfo struct {
	Address    Pubkey   `json:"address"`
	Lamports   Lamports `json:"lamports"`
	Owner      Pubkey   `json:"owner"`
	Executable bool     `json:"executable"`
}

// SignatureInfo is one entry from a signature listing.
type SignatureInfo struct {
	Signature Signature `json:"signature"`
	BlockTime int64     `json:"block_time"`
	Failed    bool      `json:"failed,omitempty"`
}
