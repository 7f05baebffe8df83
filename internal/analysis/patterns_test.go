package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
)

func newTestDetector(t *testing.T) *Detector {
	t.Helper()
	cfg, err := config.LoadScoring("")
	assert.NoError(t, err)
	return NewDetector(cfg)
}

func TestDetector_ShortTextScoresZero(t *testing.T) {
	detector := newTestDetector(t)

	matches := detector.Detect([]models.Post{
		{ID: "p1", Text: "hi"},
		{ID: "p2", Text: "   "},
	})

	assert.Equal(t, 0.0, matches["p1"].ScamScore)
	assert.Empty(t, matches["p1"].Flags)
	assert.Equal(t, 0.0, matches["p2"].ScamScore)
}

func TestDetector_CleanTextScoresZero(t *testing.T) {
	detector := newTestDetector(t)

	matches := detector.Detect([]models.Post{
		{ID: "p1", Text: "interesting analysis of the tokenomics and roadmap for this project"},
	})

	assert.Equal(t, 0.0, matches["p1"].ScamScore)
	assert.Empty(t, matches["p1"].Flags)
}

func TestDetector_ScamTextHitsMultipleCategories(t *testing.T) {
	detector := newTestDetector(t)

	matches := detector.Detect([]models.Post{
		{ID: "p1", Text: "guaranteed profit, 100x gains, buy now, dm me for the next call"},
	})

	match := matches["p1"]
	assert.Equal(t, 100.0, match.ScamScore)
	assert.Contains(t, match.Flags, "guaranteed_returns")
	assert.Contains(t, match.Flags, "fomo_language")
	assert.Contains(t, match.Flags, "unsolicited_dm_pattern")
	assert.Contains(t, match.Flags, "pump_and_dump")
	assert.Contains(t, match.Flags, "return_multiplier")
}

func TestDetector_ObfuscatedKeywordsStillMatch(t *testing.T) {
	detector := newTestDetector(t)

	tests := []struct {
		name string
		text string
	}{
		{"leetspeak", "gu4r4nteed profits every day, this is a sure thing"},
		{"dotted", "g.u.a.r.a.n.t.e.e.d returns on this token, a real sure thing"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			matches := detector.Detect([]models.Post{{ID: "p1", Text: tc.text}})
			assert.Contains(t, matches["p1"].Flags, "guaranteed_returns")
			assert.GreaterOrEqual(t, matches["p1"].ScamScore, 25.0)
		})
	}
}

func TestDetector_StructuralSignals(t *testing.T) {
	detector := newTestDetector(t)

	matches := detector.Detect([]models.Post{
		{ID: "caps", Text: "THIS TOKEN IS THE GREATEST THING EVER MADE GET IT TODAY OK"},
		{ID: "exclaim", Text: "such an amazing project!!!!!!!!!!!! really great stuff"},
	})

	assert.Contains(t, matches["caps"].Flags, "excessive_caps")
	assert.Contains(t, matches["exclaim"].Flags, "excessive_exclamation")
}

func TestDetector_ScoreCappedAtHundred(t *testing.T) {
	detector := newTestDetector(t)

	text := "guaranteed no risk pump signal group 100x 1000x moon lambo dm me buy now " +
		"act fast limited time last chance airdrop free tokens presale trust me not a scam"
	matches := detector.Detect([]models.Post{{ID: "p1", Text: text}})

	assert.Equal(t, 100.0, matches["p1"].ScamScore)
}

func TestScamRiskLevel(t *testing.T) {
	assert.Equal(t, "critical", ScamRiskLevel(80))
	assert.Equal(t, "critical", ScamRiskLevel(70))
	assert.Equal(t, "high", ScamRiskLevel(55))
	assert.Equal(t, "medium", ScamRiskLevel(35))
	assert.Equal(t, "low", ScamRiskLevel(10))
}

func TestDetector_FlagMeta(t *testing.T) {
	detector := newTestDetector(t)

	desc, severity := detector.FlagMeta("pump_and_dump")
	assert.Equal(t, "Pump & dump signal language", desc)
	assert.Equal(t, 95, severity)

	desc, severity = detector.FlagMeta("excessive_caps")
	assert.Equal(t, "Excessive caps-lock shouting", desc)
	assert.Equal(t, 40, severity)

	desc, severity = detector.FlagMeta("nonexistent_flag")
	assert.Equal(t, "nonexistent_flag", desc)
	assert.Equal(t, 0, severity)
}
