package analyzer

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/flows"
	"github.com/sollytics/provenance/internal/narrative"
	"github.com/sollytics/provenance/internal/score"
	"github.com/sollytics/provenance/internal/solana"
)

// ---------------------------------------------------------------------------
// Analyzer — per-request orchestration of fetch, classify, aggregate, score
// ---------------------------------------------------------------------------

// Config bounds one analysis run.
type Config struct {
	// HistoryLimit caps the signatures fetched for the subject address.
	HistoryLimit int `yaml:"history_limit"`

	// DetailConcurrency bounds the parallel per-signature detail fetches.
	DetailConcurrency int `yaml:"detail_concurrency"`

	// FetchTimeout applies to each individual detail fetch.
	FetchTimeout time.Duration `yaml:"fetch_timeout"`

	// LargeTransferSOL is the per-transaction threshold above which the
	// subject's own balance change counts as a large transfer.
	LargeTransferSOL float64 `yaml:"large_transfer_sol"`

	// RecentWindow is the trailing window for the activity-frequency factor.
	RecentWindow time.Duration `yaml:"recent_window"`
}

// DefaultConfig returns the reference analysis bounds.
func DefaultConfig() Config {
	return Config{
		HistoryLimit:      100,
		DetailConcurrency: 4,
		FetchTimeout:      10 * time.Second,
		LargeTransferSOL:  10,
		RecentWindow:      30 * 24 * time.Hour,
	}
}

// WalletReport is the scoring endpoint response body.
type WalletReport struct {
	Score           int                  `json:"score"`
	Explanation     string               `json:"explanation"`
	Factors         []score.Factor       `json:"factors"`
	RiskLevel       classifier.RiskLevel `json:"riskLevel"`
	Recommendations []string             `json:"recommendations"`
}

// Analyzer wires the chain client and the analysis engines together. It is
// stateless across requests; every run builds its own aggregator.
type Analyzer struct {
	config        Config
	client        solana.ChainClient
	classifier    *classifier.Classifier
	extractor     *flows.Extractor
	aggregatorCfg flows.AggregatorConfig
	detector      *flows.Detector
	explainer     *narrative.Explainer

	// now is swappable for deterministic time-derived factors in tests.
	now func() time.Time
}

// New builds an analyzer over the given collaborators.
func New(config Config, client solana.ChainClient, cls *classifier.Classifier,
	ext *flows.Extractor, aggCfg flows.AggregatorConfig, det *flows.Detector,
	exp *narrative.Explainer) *Analyzer {
	return &Analyzer{
		config:        config,
		client:        client,
		classifier:    cls,
		extractor:     ext,
		aggregatorCfg: aggCfg,
		detector:      det,
		explainer:     exp,
		now:           time.Now,
	}
}

// AnalyzeWallet scores one wallet. Upstream fetch failures degrade to an
// empty history; the score still computes from whatever data was available.
// The only error returned is local address validation.
func (a *Analyzer) AnalyzeWallet(ctx context.Context, address solana.Pubkey) (report *WalletReport, err error) {
	if err := solana.ValidateAddress(string(address)); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("address", string(address)).
				Msg("analyzer: recovered during wallet analysis")
			report = a.degradedWalletReport(address)
			err = nil
		}
	}()

	txs := a.fetchTransactions(ctx, address)
	analysis := a.buildAnalysis(address, txs)

	res := score.Score(analysis)
	report = &WalletReport{
		Score:           res.Score,
		Factors:         res.Factors,
		RiskLevel:       res.RiskLevel,
		Recommendations: score.Recommendations(analysis),
	}
	report.Explanation = a.explainer.Explain(ctx, narrative.Input{
		Address:          string(address),
		Score:            res.Score,
		RiskLevel:        res.RiskLevel,
		TransactionCount: analysis.TransactionCount,
		AgeMonths:        analysis.AgeMonths(),
		Factors:          res.Factors,
	})

	log.Info().Str("address", string(address)).Int("score", res.Score).
		Int("transactions", analysis.TransactionCount).
		Msg("analyzer: wallet scored")
	return report, nil
}

// degradedWalletReport is the minimal response when analysis itself fails:
// the empty-history baseline score with a fixed explanation.
func (a *Analyzer) degradedWalletReport(address solana.Pubkey) *WalletReport {
	analysis := score.WalletAnalysis{Address: string(address), Now: a.now()}
	res := score.Score(analysis)
	return &WalletReport{
		Score:           res.Score,
		Explanation:     "Unable to analyze this wallet; returning a neutral baseline assessment.",
		Factors:         res.Factors,
		RiskLevel:       res.RiskLevel,
		Recommendations: score.Recommendations(analysis),
	}
}

// fetchTransactions lists signatures and fetches transaction details with
// bounded concurrency. Any failure along the way degrades to fewer (or zero)
// transactions; it never fails the request.
func (a *Analyzer) fetchTransactions(ctx context.Context, address solana.Pubkey) []solana.Transaction {
	sigs, err := a.client.GetSignaturesForAddress(ctx, address, a.config.HistoryLimit)
	if err != nil {
		log.Warn().Err(err).Str("address", string(address)).
			Msg("analyzer: signature listing failed, scoring with empty history")
		return nil
	}

	fetched := make([]*solana.Transaction, len(sigs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.DetailConcurrency)
	for i, si := range sigs {
		if si.Failed {
			continue
		}
		i, sig := i, si.Signature
		g.Go(func() error {
			fetchCtx, cancel := context.WithTimeout(gctx, a.config.FetchTimeout)
			defer cancel()

			tx, err := a.client.GetTransactionDetail(fetchCtx, sig)
			if err != nil {
				// Missing detail for one signature is "no data", not fatal.
				log.Debug().Err(err).Str("signature", string(sig)).
					Msg("analyzer: detail fetch failed, skipping")
				return nil
			}
			fetched[i] = tx
			return nil
		})
	}
	_ = g.Wait()

	out := make([]solana.Transaction, 0, len(fetched))
	for _, tx := range fetched {
		if tx != nil {
			out = append(out, *tx)
		}
	}
	return out
}

// buildAnalysis folds the transaction list into the aggregate view consumed
// by the scorer and the recommendation generator.
func (a *Analyzer) buildAnalysis(address solana.Pubkey, txs []solana.Transaction) score.WalletAnalysis {
	now := a.now()
	tables := a.classifier.Tables()
	largeThreshold := solana.Lamports(a.config.LargeTransferSOL * solana.LamportsPerSOL)
	recentCutoff := now.Add(-a.config.RecentWindow).Unix()

	analysis := score.WalletAnalysis{
		Address:          string(address),
		TransactionCount: len(txs),
		Now:              now,
	}

	unique := make(map[solana.Pubkey]struct{})
	for i := range txs {
		tx := &txs[i]

		for _, f := range a.extractor.ExtractFlows(tx, address) {
			unique[f.Counterparty] = struct{}{}
			if a.classifier.IsFlagged(f.Counterparty) {
				analysis.FlaggedInteractions++
			}
		}

		if flows.FlowTypeOf(tables, tx) == classifier.FlowStaking {
			analysis.StakingTransactions++
		}

		for _, in := range tx.Instructions {
			if tables.IsBlacklistedProgram(string(in.ProgramID)) {
				analysis.BlacklistedProgramUsage++
			}
			if _, ok := tables.IsLegitimateProgram(string(in.ProgramID)); ok {
				analysis.LegitimateProgramUsage++
			}
		}

		if delta, ok := tx.BalanceDelta(address); ok {
			abs := delta
			if abs < 0 {
				abs = -abs
			}
			if solana.Lamports(abs) > largeThreshold {
				analysis.LargeTransfers++
			}
		}

		if tx.Timestamp > 0 {
			if analysis.OldestTransaction == 0 || tx.Timestamp < analysis.OldestTransaction {
				analysis.OldestTransaction = tx.Timestamp
			}
			if tx.Timestamp >= recentCutoff {
				analysis.RecentTransactions++
			}
		}
	}
	analysis.UniqueCounterparties = len(unique)

	return analysis
}
