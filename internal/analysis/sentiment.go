package analysis

import (
	"strings"

	"github.com/truthfi/truthfi/internal/models"
)

// SentimentClassifier labels each post's market sentiment and rates the
// quality of its engagement. Pump incitement is labeled "manipulative"
// rather than bullish: both read positive to naive polarity, but only one
// is organic.
type SentimentClassifier struct {
	lowCredibility float64
}

// NewSentimentClassifier creates a classifier. Engagement from authors
// below lowCredibility is discounted instead of rewarded.
func NewSentimentClassifier(lowCredibility float64) *SentimentClassifier {
	return &SentimentClassifier{lowCredibility: lowCredibility}
}

var bullishWords = []string{
	"bullish", "undervalued", "adoption", "partnership", "promising",
	"solid fundamentals", "long term", "accumulating", "breakout", "rally",
	"strong team", "good entry",
}

var bearishWords = []string{
	"bearish", "overvalued", "crash", "rug", "rugpull", "scam", "dead project",
	"exit liquidity", "dumping", "sell off", "bagholders", "ponzi", "avoid",
}

var manipulativeWords = []string{
	"guaranteed", "moon", "100x", "1000x", "pump", "buy now", "last chance",
	"dm me", "presale", "trust me", "don't miss", "get in now", "next bitcoin",
}

// Classify labels every post. The credibility map (keyed by author id)
// feeds the engagement-quality penalty; authors missing from the map are
// treated as average.
func (s *SentimentClassifier) Classify(posts []models.Post, credibility map[string]float64) map[string]models.PostSentiment {
	out := make(map[string]models.PostSentiment, len(posts))
	for _, post := range posts {
		cred, ok := credibility[post.AuthorID]
		if !ok {
			cred = 50
		}
		out[post.ID] = models.PostSentiment{
			Sentiment:         classifyText(post.Title + " " + post.Text),
			EngagementQuality: s.engagementQuality(post, cred),
		}
	}
	return out
}

func classifyText(text string) string {
	lower := strings.ToLower(text)
	folded := foldObfuscation(lower)

	manip := countHits(lower, folded, manipulativeWords)
	bull := countHits(lower, folded, bullishWords)
	bear := countHits(lower, folded, bearishWords)

	switch {
	case manip >= 2 && manip >= bear:
		return "manipulative"
	case bull > bear:
		return "bullish"
	case bear > bull:
		return "bearish"
	default:
		return "neutral"
	}
}

func countHits(lower, folded string, words []string) int {
	hits := 0
	for _, w := range words {
		if strings.Contains(lower, w) || strings.Contains(folded, foldObfuscation(w)) {
			hits++
		}
	}
	return hits
}

// engagementQuality starts from raw vote/comment bands and discounts high
// apparent popularity when the posting account has low credibility, the
// signature of purchased engagement.
func (s *SentimentClassifier) engagementQuality(post models.Post, credibility float64) float64 {
	var base float64
	switch {
	case post.Score > 20 && post.CommentCount > 10:
		base = 90
	case post.Score > 5 && post.CommentCount > 3:
		base = 70
	case post.Score > 0:
		base = 50
	default:
		base = 20
	}

	if base >= 70 && credibility < s.lowCredibility {
		base *= 0.5 + 0.5*credibility/100
	}

	return base
}

// OverallSentiment condenses per-post labels into one verdict for the
// metrics block. Any meaningful share of manipulative posts dominates.
func OverallSentiment(sentiments map[string]models.PostSentiment) string {
	if len(sentiments) == 0 {
		return "unknown"
	}

	counts := make(map[string]int)
	for _, ps := range sentiments {
		counts[ps.Sentiment]++
	}

	if counts["manipulative"]*5 >= len(sentiments) {
		return "manipulative"
	}

	best, bestCount := "neutral", 0
	for _, label := range []string{"bullish", "bearish", "neutral"} {
		if counts[label] > bestCount {
			best, bestCount = label, counts[label]
		}
	}
	return best
}
