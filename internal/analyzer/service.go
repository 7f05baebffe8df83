package analyzer

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/analysis"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/metrics"
	"github.com/truthfi/truthfi/internal/models"
	"github.com/truthfi/truthfi/internal/sources"
)

// ErrInvalidSymbol marks a missing or malformed token symbol. No fetch or
// computation is attempted.
var ErrInvalidSymbol = errors.New("token symbol must be 1-10 alphanumeric characters")

// ErrNoData marks a request for which zero posts could be retrieved from
// any source. Partial fetch failures are recovered, not surfaced.
var ErrNoData = errors.New("no social media data found for token")

var symbolPattern = regexp.MustCompile(`^[A-Z0-9]{1,10}$`)

// Service runs analyze requests end to end: validate, fetch from all
// enabled sources under one bounded context, normalize, then score. It is
// stateless across requests.
type Service struct {
	cfg     *config.Config
	engine  *analysis.Engine
	sources []sources.Source
}

// NewService creates an analyzer over the given sources.
func NewService(cfg *config.Config, scoring *config.ScoringConfig, srcs []sources.Source) *Service {
	return &Service{
		cfg:     cfg,
		engine:  analysis.NewEngine(scoring),
		sources: srcs,
	}
}

// NormalizeSymbol upper-cases and validates a token symbol.
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolPattern.MatchString(symbol) {
		return "", ErrInvalidSymbol
	}
	return symbol, nil
}

// AnalyzeToken fetches posts mentioning the symbol and produces the full
// analysis result. A source timing out or failing reduces the post set
// rather than failing the request; only zero retrieved posts is an error.
func (s *Service) AnalyzeToken(ctx context.Context, rawSymbol string, postLimit int) (models.AnalysisResult, error) {
	symbol, err := NormalizeSymbol(rawSymbol)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	if postLimit <= 0 {
		postLimit = s.cfg.DefaultPostLimit
	}
	if postLimit > s.cfg.MaxPostFetch {
		postLimit = s.cfg.MaxPostFetch
	}

	log := logrus.WithFields(logrus.Fields{"symbol": symbol, "post_limit": postLimit})
	log.Info("Starting token analysis")

	posts, authors := s.fetchAll(ctx, symbol, postLimit)
	if len(posts) == 0 {
		return models.AnalysisResult{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	// Newest first, then cap at the requested limit.
	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID < posts[j].ID
	})
	if len(posts) > postLimit {
		posts = posts[:postLimit]
	}

	result, err := s.engine.Analyze(ctx, posts, authors)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	metrics.PostsAnalyzed.Add(float64(result.AnalyzedPosts))
	log.WithFields(logrus.Fields{
		"score":      result.Score,
		"risk_level": result.RiskLevel,
		"posts":      result.AnalyzedPosts,
	}).Info("Token analysis complete")

	return result, nil
}

type fetchResult struct {
	source  string
	posts   []models.Post
	authors map[string]models.Author
	err     error
}

// fetchAll queries every enabled source concurrently under the configured
// fetch timeout and merges whatever arrived before the deadline.
func (s *Service) fetchAll(ctx context.Context, symbol string, limit int) ([]models.Post, map[string]models.Author) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	enabled := make([]sources.Source, 0, len(s.sources))
	for _, src := range s.sources {
		if src.IsEnabled() {
			enabled = append(enabled, src)
		}
	}
	if len(enabled) == 0 {
		return nil, nil
	}

	perSource := limit / len(enabled)
	if perSource < 10 {
		perSource = 10
	}

	var wg sync.WaitGroup
	results := make(chan fetchResult, len(enabled))

	for _, src := range enabled {
		wg.Add(1)
		go func(src sources.Source) {
			defer wg.Done()
			posts, authors, err := src.FetchPosts(fetchCtx, symbol, perSource)
			results <- fetchResult{source: src.GetName(), posts: posts, authors: authors, err: err}
		}(src)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var allPosts []models.Post
	allAuthors := make(map[string]models.Author)
	seen := make(map[string]bool)

	for res := range results {
		if res.err != nil {
			metrics.SourceFetchErrors.WithLabelValues(res.source).Inc()
			logrus.Errorf("Fetch from %s failed, proceeding with partial data: %v", res.source, res.err)
			continue
		}
		for _, post := range res.posts {
			if seen[post.ID] {
				continue
			}
			seen[post.ID] = true
			allPosts = append(allPosts, post)
		}
		for id, author := range res.authors {
			allAuthors[id] = author
		}
	}

	return allPosts, allAuthors
}

// SentimentSummary aggregates recent sentiment for one symbol.
func (s *Service) SentimentSummary(ctx context.Context, rawSymbol string) (models.SentimentSummary, error) {
	symbol, err := NormalizeSymbol(rawSymbol)
	if err != nil {
		return models.SentimentSummary{}, err
	}

	posts, authors := s.fetchAll(ctx, symbol, 30)
	if len(posts) == 0 {
		return models.SentimentSummary{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}

	summary := s.engine.SentimentSummary(symbol, posts, authors)
	summary.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return summary, nil
}

// RecentPosts exposes the sources' trending feed for the aggregator.
func (s *Service) RecentPosts(ctx context.Context, limit int) ([]models.Post, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	var allPosts []models.Post
	var lastErr error

	for _, src := range s.sources {
		if !src.IsEnabled() {
			continue
		}
		posts, err := src.FetchRecent(fetchCtx, limit)
		if err != nil {
			metrics.SourceFetchErrors.WithLabelValues(src.GetName()).Inc()
			logrus.Errorf("Recent fetch from %s failed: %v", src.GetName(), err)
			lastErr = err
			continue
		}
		allPosts = append(allPosts, posts...)
	}

	if len(allPosts) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return allPosts, nil
}
