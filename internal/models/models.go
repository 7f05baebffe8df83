package models

import "time"

// Post is a normalized social media post mentioning a token symbol.
// Posts are immutable once produced by a source adapter.
type Post struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"` // "reddit", "telegram", "twitter"
	AuthorID     string    `json:"author_id"`
	Title        string    `json:"title"`
	Text         string    `json:"text"`
	URL          string    `json:"url"`
	CreatedAt    time.Time `json:"created_at"`
	Score        int       `json:"score"` // upvotes, likes, etc.
	CommentCount int       `json:"comment_count"`
	TokenSymbol  string    `json:"token_symbol"`
}

// Author holds per-account signals used for credibility scoring.
// AccountAgeDays is -1 when the platform did not expose it.
type Author struct {
	AuthorID         string  `json:"author_id"`
	Source           string  `json:"source"`
	AccountAgeDays   int     `json:"account_age_days"`
	Reputation       float64 `json:"reputation"` // normalized to [0,1]
	PostHistoryCount int     `json:"post_history_count"`
}

// PatternMatch is the per-post output of the content pattern detector.
type PatternMatch struct {
	PostID    string   `json:"post_id"`
	Flags     []string `json:"flags"`
	ScamScore float64  `json:"scam_score"` // [0,100]
}

// CoordinationVerdict is the whole-set output of the coordination detector.
type CoordinationVerdict struct {
	Coordinated       bool   `json:"coordinated"`
	ClusterCount      int    `json:"cluster_count"`
	MaxClusterSize    int    `json:"max_cluster_size"`
	TimeWindowSeconds int    `json:"time_window_seconds"`
	Reason            string `json:"reason"`
}

// PostSentiment is the per-post output of the sentiment classifier.
type PostSentiment struct {
	Sentiment         string  `json:"sentiment"`
	EngagementQuality float64 `json:"engagement_quality"` // [0,100]
}

// Metrics holds the four component scores plus the overall sentiment label.
type Metrics struct {
	ContentScamScore   float64 `json:"content_scam_score"`
	AccountCredibility float64 `json:"account_credibility"`
	CoordinationRisk   float64 `json:"coordination_risk"`
	EngagementQuality  float64 `json:"engagement_quality"`
	Sentiment          string  `json:"sentiment"`
}

// Breakdown holds quantitative counts backing the metrics.
type Breakdown struct {
	HighRiskPosts        int  `json:"high_risk_posts"`
	SuspiciousAccounts   int  `json:"suspicious_accounts"`
	Coordinated          bool `json:"coordinated"`
	LowQualityEngagement int  `json:"low_quality_engagement"`
}

// Recommendation is the actionable verdict derived from the risk level.
type Recommendation struct {
	Recommendation string   `json:"recommendation"`
	Message        string   `json:"message"`
	Actions        []string `json:"actions"`
}

// SourceCounts reports how many analyzed posts came from each platform.
type SourceCounts struct {
	Reddit   int `json:"reddit"`
	Telegram int `json:"telegram"`
	Twitter  int `json:"twitter"`
}

// AnalysisResult is the complete per-request verdict returned to callers.
type AnalysisResult struct {
	Score          float64        `json:"score"`
	RiskLevel      string         `json:"risk_level"`
	RedFlags       []string       `json:"red_flags"`
	AnalyzedPosts  int            `json:"analyzed_posts"`
	Metrics        Metrics        `json:"metrics"`
	Breakdown      Breakdown      `json:"breakdown"`
	Recommendation Recommendation `json:"recommendation"`
	Sources        SourceCounts   `json:"sources"`
	Timestamp      string         `json:"timestamp"`
}

// TrendingToken is one entry of the trending ranking.
type TrendingToken struct {
	Symbol   string `json:"symbol"`
	Mentions int    `json:"mentions"`
}

// SentimentSummary is the per-symbol aggregate served by /api/sentiment.
type SentimentSummary struct {
	Token        string  `json:"token"`
	Sentiment    string  `json:"sentiment"`
	AvgScore     float64 `json:"avg_score"`
	PostCount    int     `json:"post_count"`
	TotalUpvotes int     `json:"total_upvotes"`
	Timestamp    string  `json:"timestamp"`
}
