package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/truthfi/truthfi/internal/models"
)

func TestRecommend_PerRiskLevel(t *testing.T) {
	tests := []struct {
		riskLevel string
		verdict   string
	}{
		{"low", "PROCEED WITH CAUTION"},
		{"medium", "EXERCISE CAUTION"},
		{"high", "HIGH RISK - AVOID"},
		{"critical", "CRITICAL RISK - DO NOT INVEST"},
		{"unknown", "INSUFFICIENT DATA"},
	}

	for _, tc := range tests {
		t.Run(tc.riskLevel, func(t *testing.T) {
			rec := Recommend(tc.riskLevel, models.Breakdown{})
			assert.Equal(t, tc.verdict, rec.Recommendation)
			assert.NotEmpty(t, rec.Message)
			assert.NotEmpty(t, rec.Actions)
		})
	}
}

func TestRecommend_Deterministic(t *testing.T) {
	breakdown := models.Breakdown{Coordinated: true, SuspiciousAccounts: 2}
	assert.Equal(t, Recommend("high", breakdown), Recommend("high", breakdown))
}

func TestRecommend_BreakdownAppendsActions(t *testing.T) {
	rec := Recommend("critical", models.Breakdown{Coordinated: true, SuspiciousAccounts: 3})

	assert.Contains(t, rec.Actions,
		"Coordinated posting campaign detected: treat all positive posts about this token as promotional content")
	assert.Contains(t, rec.Actions,
		"Scrutinize the 3 low-credibility accounts promoting this token before trusting any claim")
}
