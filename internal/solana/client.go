package solana

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ---------------------------------------------------------------------------
// Chain Data Client Interface
// ---------------------------------------------------------------------------

// ChainClient is the interface to the chain-indexing provider.
// Implementations: LiveClient (real provider), StubChainClient (testing).
type ChainClient interface {
	// GetTransactionHistory fetches enriched transactions for an address,
	// newest first.
	GetTransactionHistory(ctx context.Context, address Pubkey, limit int) ([]Transaction, error)

	// GetTokenBalances returns the SPL token holdings of an address.
	GetTokenBalances(ctx context.Context, address Pubkey) ([]Balance, error)

	// GetAccountInfo fetches basic account metadata.
	GetAccountInfo(ctx context.Context, address Pubkey) (*AccountInfo, error)

	// GetSignaturesForAddress lists recent signatures touching an address.
	GetSignaturesForAddress(ctx context.Context, address Pubkey, limit int) ([]SignatureInfo, error)

	// GetTransactionDetail fetches one transaction by signature.
	GetTransactionDetail(ctx context.Context, sig Signature) (*Transaction, error)

	// Health returns the provider health.
	Health(ctx context.Context) error
}

// ClientConfig configures the chain data client.
type ClientConfig struct {
	Endpoint     string        `yaml:"endpoint"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"` // linear: attempt * backoff
	RateLimitRPS float64       `yaml:"rate_limit_rps"`
}

// DefaultClientConfig returns development defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Endpoint:     "https://api.mainnet-beta.solana.com",
		Timeout:      10 * time.Second,
		MaxRetries:   2,
		RetryBackoff: 500 * time.Millisecond,
		RateLimitRPS: 10,
	}
}

// ---------------------------------------------------------------------------
// Stub Chain Client (for testing and development)
// ---------------------------------------------------------------------------

// StubChainClient is a mock chain client for testing.
type StubChainClient struct {
	mu       sync.RWMutex
	history  map[Pubkey][]Transaction
	balances map[Pubkey][]Balance
	accounts map[Pubkey]*AccountInfo
	sigs     map[Pubkey][]SignatureInfo
	txs      map[Signature]*Transaction
	failNext bool

	// Call counters for asserting fetch behavior.
	DetailCalls int
}

// NewStubChainClient creates a stub chain client for testing.
func NewStubChainClient() *StubChainClient {
	return &StubChainClient{
		history:  make(map[Pubkey][]Transaction),
		balances: make(map[Pubkey][]Balance),
		accounts: make(map[Pubkey]*AccountInfo),
		sigs:     make(map[Pubkey][]SignatureInfo),
		txs:      make(map[Signature]*Transaction),
	}
}

// AddHistory registers transaction history for an address.
func (s *StubChainClient) AddHistory(address Pubkey, txs ...Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history[address] = append(s.history[address], txs...)
	for i := range txs {
		tx := txs[i]
		s.txs[tx.Signature] = &tx
		s.sigs[address] = append(s.sigs[address], SignatureInfo{
			Signature: tx.Signature,
			BlockTime: tx.Timestamp,
			Failed:    tx.Failed,
		})
	}
}

// SetBalances registers token balances for an address.
func (s *StubChainClient) SetBalances(address Pubkey, balances []Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[address] = balances
}

// SetAccount registers account info for an address.
func (s *StubChainClient) SetAccount(info AccountInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[info.Address] = &info
}

// SetFailNext makes the next call fail.
func (s *StubChainClient) SetFailNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = true
}

func (s *StubChainClient) shouldFail() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNext {
		s.failNext = false
		return true
	}
	return false
}

// --- Interface implementation ---

func (s *StubChainClient) GetTransactionHistory(_ context.Context, address Pubkey, limit int) ([]Transaction, error) {
	if s.shouldFail() {
		return nil, fmt.Errorf("stub: simulated provider failure")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	txs := s.history[address]
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	out := make([]Transaction, len(txs))
	copy(out, txs)
	return out, nil
}

func (s *StubChainClient) GetTokenBalances(_ context.Context, address Pubkey) ([]Balance, error) {
	if s.shouldFail() {
		return nil, fmt.Errorf("stub: simulated provider failure")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.balances[address], nil
}

func (s *StubChainClient) GetAccountInfo(_ context.Context, address Pubkey) (*AccountInfo, error) {
	if s.shouldFail() {
		return nil, fmt.Errorf("stub: simulated provider failure")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if info, ok := s.accounts[address]; ok {
		return info, nil
	}
	return nil, fmt.Errorf("stub: account %s not found", address)
}

func (s *StubChainClient) GetSignaturesForAddress(_ context.Context, address Pubkey, limit int) ([]SignatureInfo, error) {
	if s.shouldFail() {
		return nil, fmt.Errorf("stub: simulated provider failure")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sigs := s.sigs[address]
	if limit > 0 && len(sigs) > limit {
		sigs = sigs[:limit]
	}
	out := make([]SignatureInfo, len(sigs))
	copy(out, sigs)
	return out, nil
}

func (s *StubChainClient) GetTransactionDetail(_ context.Context, sig Signature) (*Transaction, error) {
	s.mu.Lock()
	s.DetailCalls++
	s.mu.Unlock()
	if s.shouldFail() {
		return nil, fmt.Errorf("stub: simulated provider failure")
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tx, ok := s.txs[sig]; ok {
		return tx, nil
	}
	return nil, fmt.Errorf("stub: transaction %s not found", sig)
}

func (s *StubChainClient) Health(_ context.Context) error {
	if s.shouldFail() {
		return fmt.Errorf("stub: simulated provider failure")
	}
	return nil
}
