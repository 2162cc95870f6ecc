package analyzer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/flows"
	"github.com/sollytics/provenance/internal/solana"
)

const testMint = solana.Pubkey("So11111111111111111111111111111111111111112")

func TestWalletGraph_InvalidAddress(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	_, err := a.WalletGraph(context.Background(), "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, solana.ErrInvalidAddress)
}

func TestWalletGraph_EmptyHistoryKeepsCentralNode(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	report, err := a.WalletGraph(context.Background(), testWallet)
	require.NoError(t, err)

	require.Len(t, report.Nodes, 1)
	assert.Equal(t, string(testWallet), report.Nodes[0].ID)
	assert.Empty(t, report.Links)
	assert.Equal(t, 30, report.RiskScore)
	assert.Empty(t, report.SuspiciousPatterns)
	assert.NotNil(t, report.SuspiciousPatterns)
}

func TestWalletGraph_NoExchangeFunding(t *testing.T) {
	a, stub := newTestAnalyzer(t)

	ts := testNow.Add(-24 * time.Hour).Unix()
	stub.AddHistory(testWallet, transferTx("sig1", ts, testDeployer, testWallet, 12*solana.LamportsPerSOL))

	report, err := a.WalletGraph(context.Background(), testWallet)
	require.NoError(t, err)

	require.Len(t, report.Nodes, 2)
	assert.Equal(t, string(testWallet), report.Nodes[0].ID)
	assert.True(t, report.TotalFundsReceived.Equal(decimal.NewFromInt(12)))
	assert.Equal(t, 1, report.FundingSources)
	assert.Contains(t, report.SuspiciousPatterns, flows.PatternNoExchangeFunding)
	// base 30 + 15 (pattern) + 20 (material inflow, no exchange nodes)
	assert.Equal(t, 65, report.RiskScore)
}

func TestWalletGraph_ExchangeCounterparty(t *testing.T) {
	a, stub := newTestAnalyzer(t)

	ts := testNow.Add(-24 * time.Hour).Unix()
	stub.AddHistory(testWallet, transferTx("sig1", ts, binanceAddr, testWallet, 2*solana.LamportsPerSOL))

	report, err := a.WalletGraph(context.Background(), testWallet)
	require.NoError(t, err)

	require.Len(t, report.Nodes, 2)
	assert.Equal(t, classifier.CategoryExchange, report.Nodes[1].Category)
	assert.Equal(t, "binance", report.Nodes[1].Label)
	require.Len(t, report.Links, 1)
	assert.Equal(t, flows.EdgeExchange, report.Links[0].Type)
	// base 30 - 8 (one exchange node)
	assert.Equal(t, 22, report.RiskScore)
	assert.Empty(t, report.SuspiciousPatterns)
}

func TestWalletGraph_LargeBareTransferIsHighRisk(t *testing.T) {
	a, stub := newTestAnalyzer(t)

	// 150 SOL arriving with no recognized program behind it.
	ts := testNow.Add(-24 * time.Hour).Unix()
	stub.AddHistory(testWallet, transferTx("sig1", ts, testDeployer, testWallet, 150*solana.LamportsPerSOL))

	report, err := a.WalletGraph(context.Background(), testWallet)
	require.NoError(t, err)

	require.Len(t, report.Nodes, 2)
	assert.Equal(t, classifier.RiskHigh, report.Nodes[1].RiskLevel)
	// base 30 + 15 (pattern) + 20 (no exchange inflow) + 10 (high-risk node)
	assert.Equal(t, 75, report.RiskScore)
}

func TestTokenGraph_DeployerFunding(t *testing.T) {
	a, stub := newTestAnalyzer(t)

	ts := testNow.Add(-48 * time.Hour).Unix()
	stub.AddHistory(testDeployer, transferTx("fund1", ts, testWallet, testDeployer, 5*solana.LamportsPerSOL))

	report, err := a.TokenGraph(context.Background(), testMint, testDeployer)
	require.NoError(t, err)

	require.Len(t, report.Nodes, 3)
	assert.Equal(t, string(testMint), report.Nodes[0].ID)
	assert.Equal(t, classifier.CategoryMint, report.Nodes[0].Category)
	assert.Equal(t, string(testDeployer), report.Nodes[1].ID)

	require.Len(t, report.Links, 2)
	assert.Equal(t, flows.EdgeDeployment, report.Links[0].Type)
	assert.Equal(t, string(testDeployer), report.Links[0].Source)
	assert.Equal(t, string(testMint), report.Links[0].Target)
	assert.Equal(t, flows.EdgeFunding, report.Links[1].Type)

	assert.True(t, report.TotalFunding.Equal(decimal.NewFromInt(5)))
	assert.Equal(t, 1, report.FundingSources)
	// base 30 + 5 (one unknown funder)
	assert.Equal(t, 35, report.RiskScore)
}

func TestTokenGraph_CapsHoldWithMintPrepended(t *testing.T) {
	a, stub := newTestAnalyzer(t)

	// Far more funders than the graph can hold.
	ts := testNow.Add(-72 * time.Hour).Unix()
	for i := 0; i < 40; i++ {
		funder := solana.Pubkey(fmt.Sprintf("funder-%02d", i))
		amount := solana.Lamports(uint64(i+1) * solana.LamportsPerSOL / 100)
		stub.AddHistory(testDeployer, transferTx(fmt.Sprintf("fund%d", i), ts, funder, testDeployer, amount))
	}

	report, err := a.TokenGraph(context.Background(), testMint, testDeployer)
	require.NoError(t, err)

	// Caps include the prepended mint node and deployment edge.
	assert.LessOrEqual(t, len(report.Nodes), 30)
	assert.LessOrEqual(t, len(report.Links), 50)
	assert.Equal(t, string(testMint), report.Nodes[0].ID)
	assert.Equal(t, flows.EdgeDeployment, report.Links[0].Type)
}

func TestTokenGraph_NoDeployer(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	report, err := a.TokenGraph(context.Background(), testMint, "")
	require.NoError(t, err)

	require.Len(t, report.Nodes, 1)
	assert.Equal(t, string(testMint), report.Nodes[0].ID)
	assert.Empty(t, report.Links)
	assert.True(t, report.TotalFunding.IsZero())
	assert.Equal(t, 30, report.RiskScore)
}

func TestTokenGraph_InvalidInput(t *testing.T) {
	a, _ := newTestAnalyzer(t)

	_, err := a.TokenGraph(context.Background(), "bad-mint", "")
	assert.ErrorIs(t, err, solana.ErrInvalidAddress)

	_, err = a.TokenGraph(context.Background(), testMint, "bad-deployer")
	assert.ErrorIs(t, err, solana.ErrInvalidAddress)
}
