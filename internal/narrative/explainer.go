package narrative

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/score"
)

// ---------------------------------------------------------------------------
// Narrative Explainer — LLM-generated score explanation, template fallback
// ---------------------------------------------------------------------------

// TextGenerator is the capability interface for the external text-generation
// service. It is fallible and slow; the explainer never depends on it for
// correctness.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Config configures the explainer.
type Config struct {
	Enabled     bool          `yaml:"enabled"`
	APIKey      string        `yaml:"api_key"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// DefaultConfig returns generation defaults.
func DefaultConfig() Config {
	return Config{
		Model:       "gpt-4o-mini",
		MaxTokens:   256,
		Temperature: 0.3,
		Timeout:     8 * time.Second,
	}
}

// Input summarizes one scored wallet for explanation.
type Input struct {
	Address          string
	Score            int
	RiskLevel        classifier.RiskLevel
	TransactionCount int
	AgeMonths        float64
	Factors          []score.Factor
}

// Explainer produces a short natural-language explanation of a score.
type Explainer struct {
	config Config
	gen    TextGenerator
}

// NewExplainer builds an explainer. gen may be nil, in which case only the
// template fallback is used.
func NewExplainer(config Config, gen TextGenerator) *Explainer {
	return &Explainer{config: config, gen: gen}
}

// Explain returns a narrative for the scored wallet. Generation failures
// degrade to the deterministic template; this method never returns an error
// and never fails the surrounding request.
func (e *Explainer) Explain(ctx context.Context, in Input) string {
	if e.config.Enabled && e.gen != nil {
		genCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()

		text, err := e.gen.Generate(genCtx, buildPrompt(in), e.config.MaxTokens, e.config.Temperature)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
		log.Debug().Err(err).Str("address", in.Address).
			Msg("narrative: generation failed, using template fallback")
	}
	return templateExplanation(in)
}

// buildPrompt renders the structured analysis summary sent to the generator.
func buildPrompt(in Input) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a blockchain analyst. Explain, in 2-3 plain sentences for a non-technical user, "+
		"why wallet %s received a trust score of %d/100 (risk level: %s).\n", in.Address, in.Score, in.RiskLevel)
	fmt.Fprintf(&b, "The wallet has %d transactions and is %.1f months old.\n", in.TransactionCount, in.AgeMonths)
	if len(in.Factors) > 0 {
		b.WriteString("Contributing factors:\n")
		for _, f := range in.Factors {
			fmt.Fprintf(&b, "- %s (%+d): %s\n", f.Name, f.Impact, f.Description)
		}
	}
	b.WriteString("Do not give financial advice. Do not invent facts beyond the factors listed.")
	return b.String()
}

// templateExplanation is the deterministic fallback, selected by score
// bracket and interpolating the same numeric fields as the prompt.
func templateExplanation(in Input) string {
	switch {
	case in.Score >= 80:
		return fmt.Sprintf(
			"This wallet scores %d/100, which indicates an established and reputable history. "+
				"Across %d transactions over %.1f months, its activity shows no significant risk indicators.",
			in.Score, in.TransactionCount, in.AgeMonths)
	case in.Score >= 60:
		return fmt.Sprintf(
			"This wallet scores %d/100, a moderate rating. Its %d transactions over %.1f months "+
				"show mostly normal activity with some factors that lower confidence; review the itemized factors for details.",
			in.Score, in.TransactionCount, in.AgeMonths)
	default:
		return fmt.Sprintf(
			"This wallet scores %d/100, a low rating. With %d transactions over %.1f months, "+
				"its history contains risk indicators or too little activity to establish trust; exercise caution.",
			in.Score, in.TransactionCount, in.AgeMonths)
	}
}
