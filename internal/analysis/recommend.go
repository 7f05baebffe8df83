package analysis

import (
	"fmt"

	"github.com/truthfi/truthfi/internal/models"
)

// Recommend maps a risk level and breakdown to an actionable verdict.
// Pure lookup: identical inputs always produce identical text.
func Recommend(riskLevel string, breakdown models.Breakdown) models.Recommendation {
	var rec models.Recommendation

	switch riskLevel {
	case "low":
		rec = models.Recommendation{
			Recommendation: "PROCEED WITH CAUTION",
			Message: "This token shows relatively low risk indicators based on social media analysis. " +
				"Always conduct your own research and never invest more than you can afford to lose.",
			Actions: []string{
				"Verify project legitimacy through official channels",
				"Check team credentials and project roadmap",
				"Review smart contract audits if available",
				"Start with small investment amounts",
				"Monitor for changes in social sentiment",
			},
		}
	case "medium":
		rec = models.Recommendation{
			Recommendation: "EXERCISE CAUTION",
			Message: "Moderate risk detected in social media activity. " +
				"Additional verification is strongly recommended before any investment decision.",
			Actions: []string{
				"Investigate all red flags thoroughly",
				"Look for independent third-party audits",
				"Verify the contract address on blockchain explorers",
				"Check for liquidity locks and tokenomics",
				"Avoid FOMO and take time for proper research",
			},
		}
	case "high":
		rec = models.Recommendation{
			Recommendation: "HIGH RISK - AVOID",
			Message: "Significant scam indicators detected in social media activity. " +
				"Investment is not recommended without extensive additional verification.",
			Actions: []string{
				"Do NOT invest based on social media hype alone",
				"Multiple red flags indicate possible manipulation",
				"Be extremely wary of time pressure tactics",
				"Consult experienced crypto investors before acting",
				"Report suspicious activity to platform moderators",
			},
		}
	case "critical":
		rec = models.Recommendation{
			Recommendation: "CRITICAL RISK - DO NOT INVEST",
			Message: "Strong scam indicators detected. This appears to be a fraudulent scheme " +
				"or heavily manipulated token. Do not invest under any circumstances.",
			Actions: []string{
				"DO NOT INVEST - high probability of scam",
				"Do not send funds or connect wallets",
				"Report to relevant authorities and platforms",
				"Warn others in the community about this token",
				"Block and ignore promotional accounts",
			},
		}
	default:
		rec = models.Recommendation{
			Recommendation: "INSUFFICIENT DATA",
			Message: "Not enough social media activity was found to produce a reliable verdict. " +
				"Treat this token with heightened caution until more data is available.",
			Actions: []string{
				"Retry the analysis once the token has more discussion volume",
				"Verify the token symbol is correct",
				"Research the project through official channels",
			},
		}
	}

	if breakdown.Coordinated {
		rec.Actions = append(rec.Actions,
			"Coordinated posting campaign detected: treat all positive posts about this token as promotional content")
	}

	if breakdown.SuspiciousAccounts > 0 {
		rec.Actions = append(rec.Actions,
			fmt.Sprintf("Scrutinize the %d low-credibility accounts promoting this token before trusting any claim", breakdown.SuspiciousAccounts))
	}

	return rec
}
