package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
)

func newTestCredibilityScorer(t *testing.T) *CredibilityScorer {
	t.Helper()
	cfg, err := config.LoadScoring("")
	assert.NoError(t, err)
	return NewCredibilityScorer(&cfg.Credibility)
}

func TestCredibility_UnknownAgeGetsDefault(t *testing.T) {
	scorer := newTestCredibilityScorer(t)

	scores := scorer.Score(map[string]models.Author{
		"a1": {AuthorID: "a1", AccountAgeDays: -1, Reputation: 0.9, PostHistoryCount: 500},
	})

	assert.Equal(t, 50.0, scores["a1"])
}

func TestCredibility_EstablishedAccountScoresHigh(t *testing.T) {
	scorer := newTestCredibilityScorer(t)

	scores := scorer.Score(map[string]models.Author{
		"longtime_analyst": {
			AuthorID:         "longtime_analyst",
			AccountAgeDays:   730,
			Reputation:       0.9,
			PostHistoryCount: 400,
		},
	})

	assert.InDelta(t, 96.5, scores["longtime_analyst"], 0.01)
}

func TestCredibility_NewAccountClamped(t *testing.T) {
	scorer := newTestCredibilityScorer(t)

	// High reputation cannot lift a brand-new account above the cap.
	scores := scorer.Score(map[string]models.Author{
		"fresh": {AuthorID: "fresh", AccountAgeDays: 5, Reputation: 1.0, PostHistoryCount: 1000},
	})

	assert.Equal(t, 25.0, scores["fresh"])
}

func TestCredibility_UsernamePenalties(t *testing.T) {
	scorer := newTestCredibilityScorer(t)

	base := models.Author{AccountAgeDays: 365, Reputation: 0.5, PostHistoryCount: 100}

	tests := []struct {
		name     string
		username string
		expected float64
	}{
		{"clean username", "longtime_analyst", 70},
		{"random chars with digits", "ab1234567", 45},
		{"deleted account", "[deleted]", 50},
		{"shill keyword", "moonboy_trader", 58},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			author := base
			author.AuthorID = tc.username
			scores := scorer.Score(map[string]models.Author{tc.username: author})
			assert.InDelta(t, tc.expected, scores[tc.username], 0.01)
		})
	}
}
