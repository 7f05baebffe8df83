package analyzer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
	"github.com/truthfi/truthfi/internal/sources"
)

// MockSource is a mock implementation of the sources.Source interface
type MockSource struct {
	mock.Mock
}

func (m *MockSource) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockSource) IsEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockSource) FetchPosts(ctx context.Context, symbol string, limit int) ([]models.Post, map[string]models.Author, error) {
	args := m.Called(ctx, symbol, limit)
	var posts []models.Post
	if args.Get(0) != nil {
		posts = args.Get(0).([]models.Post)
	}
	var authors map[string]models.Author
	if args.Get(1) != nil {
		authors = args.Get(1).(map[string]models.Author)
	}
	return posts, authors, args.Error(2)
}

func (m *MockSource) FetchRecent(ctx context.Context, limit int) ([]models.Post, error) {
	args := m.Called(ctx, limit)
	var posts []models.Post
	if args.Get(0) != nil {
		posts = args.Get(0).([]models.Post)
	}
	return posts, args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		FetchTimeout:     5 * time.Second,
		MaxPostFetch:     200,
		DefaultPostLimit: 100,
	}
}

func testScoring(t *testing.T) *config.ScoringConfig {
	t.Helper()
	scoring, err := config.LoadScoring("")
	assert.NoError(t, err)
	return scoring
}

func testPosts() ([]models.Post, map[string]models.Author) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	posts := []models.Post{
		{ID: "p1", Source: "reddit", AuthorID: "a1", Text: "interesting tokenomics discussion thread", CreatedAt: base},
		{ID: "p2", Source: "reddit", AuthorID: "a2", Text: "guaranteed 100x gains, dm me to join", CreatedAt: base.Add(time.Minute)},
	}
	authors := map[string]models.Author{
		"a1": {AuthorID: "a1", AccountAgeDays: 500, Reputation: 0.7, PostHistoryCount: 150},
		"a2": {AuthorID: "a2", AccountAgeDays: 2, Reputation: 0.1, PostHistoryCount: 1},
	}
	return posts, authors
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{"lowercase upper-cased", "btc", "BTC", false},
		{"whitespace trimmed", " eth ", "ETH", false},
		{"digits allowed", "sol2", "SOL2", false},
		{"empty", "", "", true},
		{"too long", "toolongsymbol", "", true},
		{"punctuation", "b!c", "", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			symbol, err := NormalizeSymbol(tc.input)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSymbol)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.expected, symbol)
			}
		})
	}
}

func TestAnalyzeToken_InvalidSymbol(t *testing.T) {
	svc := NewService(testConfig(), testScoring(t), nil)

	_, err := svc.AnalyzeToken(context.Background(), "not a symbol!", 50)
	assert.ErrorIs(t, err, ErrInvalidSymbol)
}

func TestAnalyzeToken_NoEnabledSources(t *testing.T) {
	src := &MockSource{}
	src.On("IsEnabled").Return(false)

	svc := NewService(testConfig(), testScoring(t), []sources.Source{src})

	_, err := svc.AnalyzeToken(context.Background(), "BTC", 50)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeToken_Success(t *testing.T) {
	posts, authors := testPosts()

	src := &MockSource{}
	src.On("IsEnabled").Return(true)
	src.On("GetName").Return("reddit")
	src.On("FetchPosts", mock.Anything, "BTC", mock.Anything).Return(posts, authors, nil)

	svc := NewService(testConfig(), testScoring(t), []sources.Source{src})

	result, err := svc.AnalyzeToken(context.Background(), "btc", 50)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.AnalyzedPosts)
	assert.Equal(t, 2, result.Sources.Reddit)
	assert.Contains(t, []string{"low", "medium", "high", "critical"}, result.RiskLevel)
	src.AssertExpectations(t)
}

func TestAnalyzeToken_PartialSourceFailureTolerated(t *testing.T) {
	posts, authors := testPosts()

	good := &MockSource{}
	good.On("IsEnabled").Return(true)
	good.On("GetName").Return("reddit")
	good.On("FetchPosts", mock.Anything, "BTC", mock.Anything).Return(posts, authors, nil)

	bad := &MockSource{}
	bad.On("IsEnabled").Return(true)
	bad.On("GetName").Return("twitter")
	bad.On("FetchPosts", mock.Anything, "BTC", mock.Anything).Return(nil, nil, errors.New("rate limited"))

	svc := NewService(testConfig(), testScoring(t), []sources.Source{good, bad})

	result, err := svc.AnalyzeToken(context.Background(), "BTC", 50)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.AnalyzedPosts)
}

func TestAnalyzeToken_AllSourcesEmpty(t *testing.T) {
	src := &MockSource{}
	src.On("IsEnabled").Return(true)
	src.On("GetName").Return("reddit")
	src.On("FetchPosts", mock.Anything, "XXX", mock.Anything).Return(nil, nil, nil)

	svc := NewService(testConfig(), testScoring(t), []sources.Source{src})

	_, err := svc.AnalyzeToken(context.Background(), "XXX", 50)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestAnalyzeToken_DuplicatePostsMerged(t *testing.T) {
	posts, authors := testPosts()

	s1 := &MockSource{}
	s1.On("IsEnabled").Return(true)
	s1.On("GetName").Return("reddit")
	s1.On("FetchPosts", mock.Anything, "BTC", mock.Anything).Return(posts, authors, nil)

	s2 := &MockSource{}
	s2.On("IsEnabled").Return(true)
	s2.On("GetName").Return("telegram")
	s2.On("FetchPosts", mock.Anything, "BTC", mock.Anything).Return(posts, authors, nil)

	svc := NewService(testConfig(), testScoring(t), []sources.Source{s1, s2})

	result, err := svc.AnalyzeToken(context.Background(), "BTC", 50)

	assert.NoError(t, err)
	assert.Equal(t, 2, result.AnalyzedPosts)
}

func TestSentimentSummary(t *testing.T) {
	posts, authors := testPosts()

	src := &MockSource{}
	src.On("IsEnabled").Return(true)
	src.On("GetName").Return("reddit")
	src.On("FetchPosts", mock.Anything, "BTC", mock.Anything).Return(posts, authors, nil)

	svc := NewService(testConfig(), testScoring(t), []sources.Source{src})

	summary, err := svc.SentimentSummary(context.Background(), "btc")

	assert.NoError(t, err)
	assert.Equal(t, "BTC", summary.Token)
	assert.Equal(t, 2, summary.PostCount)
	assert.NotEmpty(t, summary.Timestamp)
}

func TestRecentPosts_SkipsFailedSources(t *testing.T) {
	posts, _ := testPosts()

	good := &MockSource{}
	good.On("IsEnabled").Return(true)
	good.On("FetchRecent", mock.Anything, 100).Return(posts, nil)

	bad := &MockSource{}
	bad.On("IsEnabled").Return(true)
	bad.On("GetName").Return("twitter")
	bad.On("FetchRecent", mock.Anything, 100).Return(nil, errors.New("unreachable"))

	svc := NewService(testConfig(), testScoring(t), []sources.Source{good, bad})

	out, err := svc.RecentPosts(context.Background(), 100)

	assert.NoError(t, err)
	assert.Len(t, out, 2)
}
