package narrative

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sollytics/provenance/internal/classifier"
	"github.com/sollytics/provenance/internal/score"
)

type stubGenerator struct {
	text string
	err  error

	gotPrompt string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string, _ int, _ float64) (string, error) {
	s.gotPrompt = prompt
	return s.text, s.err
}

func testInput() Input {
	return Input{
		Address:          "8Lq9vPZrW2mCkXJh4nTGdY5eFb3sAoU6iRwNxE1tKpQd",
		Score:            71,
		RiskLevel:        classifier.RiskMedium,
		TransactionCount: 100,
		AgeMonths:        6.0,
		Factors: []score.Factor{
			{Name: "large_transfers", Impact: -15, Description: "5 large transfer(s)", Polarity: score.PolarityNegative},
		},
	}
}

func TestExplain_UsesGenerator(t *testing.T) {
	gen := &stubGenerator{text: "  Generated explanation.  "}
	cfg := DefaultConfig()
	cfg.Enabled = true

	e := NewExplainer(cfg, gen)
	got := e.Explain(context.Background(), testInput())

	assert.Equal(t, "Generated explanation.", got)
	assert.Contains(t, gen.gotPrompt, "71/100")
	assert.Contains(t, gen.gotPrompt, "large_transfers")
	assert.Contains(t, gen.gotPrompt, "medium")
}

func TestExplain_FallsBackOnError(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	cfg := DefaultConfig()
	cfg.Enabled = true

	e := NewExplainer(cfg, gen)
	got := e.Explain(context.Background(), testInput())

	assert.Contains(t, got, "71/100")
	assert.Contains(t, got, "100 transactions")
}

func TestExplain_FallsBackOnEmptyText(t *testing.T) {
	gen := &stubGenerator{text: "   "}
	cfg := DefaultConfig()
	cfg.Enabled = true

	e := NewExplainer(cfg, gen)
	got := e.Explain(context.Background(), testInput())
	assert.Contains(t, got, "71/100")
}

func TestExplain_DisabledSkipsGenerator(t *testing.T) {
	gen := &stubGenerator{text: "should not be used"}

	e := NewExplainer(DefaultConfig(), gen)
	got := e.Explain(context.Background(), testInput())

	assert.Empty(t, gen.gotPrompt)
	assert.NotEqual(t, "should not be used", got)
}

func TestExplain_NilGenerator(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true

	e := NewExplainer(cfg, nil)
	got := e.Explain(context.Background(), testInput())
	assert.NotEmpty(t, got)
}

func TestTemplateBrackets(t *testing.T) {
	in := testInput()

	in.Score = 85
	assert.True(t, strings.Contains(templateExplanation(in), "established and reputable"))

	in.Score = 65
	assert.True(t, strings.Contains(templateExplanation(in), "moderate rating"))

	in.Score = 40
	assert.True(t, strings.Contains(templateExplanation(in), "low rating"))
}
