package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	cfg, err := config.LoadScoring("")
	assert.NoError(t, err)
	return NewEngine(cfg)
}

func TestEngine_ZeroPostsYieldsInsufficientData(t *testing.T) {
	engine := newTestEngine(t)

	result, err := engine.Analyze(context.Background(), nil, nil)

	assert.NoError(t, err)
	assert.Equal(t, 50.0, result.Score)
	assert.Equal(t, "unknown", result.RiskLevel)
	assert.Equal(t, 0, result.AnalyzedPosts)
	assert.Equal(t, "INSUFFICIENT DATA", result.Recommendation.Recommendation)
	assert.Contains(t, result.RedFlags, "Insufficient data for comprehensive analysis")
}

func TestEngine_UnscorablePostsFilteredOut(t *testing.T) {
	engine := newTestEngine(t)

	posts := []models.Post{
		{ID: "p1", AuthorID: "a1", Text: "hi"},
		{ID: "p2", AuthorID: "a2", Text: "ok"},
	}

	result, err := engine.Analyze(context.Background(), posts, nil)

	assert.NoError(t, err)
	assert.Equal(t, "unknown", result.RiskLevel)
	assert.Equal(t, 0, result.AnalyzedPosts)
}

func TestEngine_CancelledContext(t *testing.T) {
	engine := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Analyze(ctx, []models.Post{{ID: "p1", Text: "long enough text here"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func engineTestPosts() ([]models.Post, map[string]models.Author) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	posts := []models.Post{
		{ID: "p1", Source: "reddit", AuthorID: "a1", Text: "guaranteed 100x gains, buy now before it's too late", CreatedAt: base, Score: 2},
		{ID: "p2", Source: "reddit", AuthorID: "a2", Text: "interesting tokenomics but the unlock schedule worries me", CreatedAt: base.Add(time.Minute), Score: 15, CommentCount: 8},
		{ID: "p3", Source: "twitter", AuthorID: "a3", Text: "dm me to join the private signal group, spots left", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "p4", Source: "twitter", AuthorID: "a4", Text: "comparing this chain's throughput numbers with the competition", CreatedAt: base.Add(3 * time.Minute), Score: 30, CommentCount: 12},
		{ID: "p5", Source: "telegram", AuthorID: "a5", Text: "airdrop live now, connect wallet to claim free tokens", CreatedAt: base.Add(4 * time.Minute)},
	}

	authors := map[string]models.Author{
		"a1": {AuthorID: "a1", AccountAgeDays: 3, Reputation: 0.1, PostHistoryCount: 2},
		"a2": {AuthorID: "a2", AccountAgeDays: 900, Reputation: 0.8, PostHistoryCount: 300},
		"a3": {AuthorID: "a3", AccountAgeDays: 10, Reputation: 0.2, PostHistoryCount: 5},
		"a4": {AuthorID: "a4", AccountAgeDays: 1200, Reputation: 0.9, PostHistoryCount: 500},
		"a5": {AuthorID: "a5", AccountAgeDays: -1, Reputation: 0, PostHistoryCount: 0},
	}

	return posts, authors
}

func TestEngine_DeterministicUnderReordering(t *testing.T) {
	engine := newTestEngine(t)
	posts, authors := engineTestPosts()

	reversed := make([]models.Post, len(posts))
	for i, p := range posts {
		reversed[len(posts)-1-i] = p
	}

	r1, err := engine.Analyze(context.Background(), posts, authors)
	assert.NoError(t, err)
	r2, err := engine.Analyze(context.Background(), reversed, authors)
	assert.NoError(t, err)

	assert.Equal(t, r1.Score, r2.Score)
	assert.Equal(t, r1.RiskLevel, r2.RiskLevel)
	assert.Equal(t, r1.RedFlags, r2.RedFlags)
	assert.Equal(t, r1.Metrics, r2.Metrics)
	assert.Equal(t, r1.Breakdown, r2.Breakdown)
}

func TestEngine_FullAnalysis(t *testing.T) {
	engine := newTestEngine(t)
	posts, authors := engineTestPosts()

	result, err := engine.Analyze(context.Background(), posts, authors)

	assert.NoError(t, err)
	assert.Equal(t, 5, result.AnalyzedPosts)
	assert.GreaterOrEqual(t, result.Score, 0.0)
	assert.LessOrEqual(t, result.Score, 100.0)
	assert.Contains(t, []string{"low", "medium", "high", "critical"}, result.RiskLevel)
	assert.NotEmpty(t, result.RedFlags)
	assert.NotEmpty(t, result.Recommendation.Actions)
	assert.NotEmpty(t, result.Timestamp)

	assert.Equal(t, 2, result.Sources.Reddit)
	assert.Equal(t, 2, result.Sources.Twitter)
	assert.Equal(t, 1, result.Sources.Telegram)
}

func TestEngine_SentimentSummary(t *testing.T) {
	engine := newTestEngine(t)
	posts, authors := engineTestPosts()

	summary := engine.SentimentSummary("TEST", posts, authors)

	assert.Equal(t, "TEST", summary.Token)
	assert.Equal(t, 5, summary.PostCount)
	assert.Equal(t, 47, summary.TotalUpvotes)
	assert.InDelta(t, 9.4, summary.AvgScore, 0.01)
	assert.NotEmpty(t, summary.Sentiment)
}
