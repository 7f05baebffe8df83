package analysis

import (
	"regexp"
	"strings"

	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
)

// CredibilityScorer estimates how much weight an account's opinion deserves,
// from age, reputation and posting history. Throwaway accounts are the
// dominant scam vector, so accounts younger than the configured minimum age
// are clamped to a low band no matter how the other signals look.
type CredibilityScorer struct {
	cfg *config.CredibilityConfig
}

// NewCredibilityScorer creates a scorer with the given thresholds.
func NewCredibilityScorer(cfg *config.CredibilityConfig) *CredibilityScorer {
	return &CredibilityScorer{cfg: cfg}
}

// Score rates every author on a 0-100 credibility scale. Authors with an
// unknown account age get the conservative default rather than failing.
func (c *CredibilityScorer) Score(authors map[string]models.Author) map[string]float64 {
	scores := make(map[string]float64, len(authors))
	for id, author := range authors {
		scores[id] = c.scoreAuthor(author)
	}
	return scores
}

func (c *CredibilityScorer) scoreAuthor(author models.Author) float64 {
	if author.AccountAgeDays < 0 {
		return c.cfg.UnknownAgeDefault
	}

	ageNorm := float64(author.AccountAgeDays) / float64(c.cfg.AgeSaturationDays)
	if ageNorm > 1 {
		ageNorm = 1
	}

	repNorm := author.Reputation
	if repNorm < 0 {
		repNorm = 0
	} else if repNorm > 1 {
		repNorm = 1
	}

	histNorm := float64(author.PostHistoryCount) / float64(c.cfg.HistorySaturation)
	if histNorm > 1 {
		histNorm = 1
	}

	score := 100 * (c.cfg.AgeWeight*ageNorm + c.cfg.ReputationWeight*repNorm + c.cfg.HistoryWeight*histNorm)

	score -= usernamePenalty(author.AuthorID)

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}

	// Floor clamp: a brand-new account never rises above the new-account
	// band, regardless of reputation bought or transferred into it.
	if author.AccountAgeDays < c.cfg.MinAccountAgeDays && score > c.cfg.NewAccountCap {
		score = c.cfg.NewAccountCap
	}

	return score
}

var (
	wordDigitsPattern  = regexp.MustCompile(`^[a-z]+\d{4,}$`)
	camelDigitsPattern = regexp.MustCompile(`^[A-Z][a-z]+(?:[A-Z][a-z]+)+\d+$`)
	randomCharsPattern = regexp.MustCompile(`^[a-zA-Z]{1,3}\d{6,}$`)
)

var shillKeywords = []string{"crypto", "moon", "pump", "gem", "hodl", "whale"}

// usernamePenalty knocks points off accounts whose names follow bot-farm
// naming conventions.
func usernamePenalty(username string) float64 {
	if username == "" || username == "[deleted]" {
		return 20
	}

	var penalty float64
	switch {
	case randomCharsPattern.MatchString(username):
		penalty += 25
	case wordDigitsPattern.MatchString(strings.ToLower(username)) && camelDigitsPattern.MatchString(username):
		penalty += 18
	case wordDigitsPattern.MatchString(strings.ToLower(username)):
		penalty += 20
	}

	lower := strings.ToLower(username)
	for _, kw := range shillKeywords {
		if strings.Contains(lower, kw) {
			penalty += 12
			break
		}
	}

	return penalty
}
