package analysis

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
)

// Engine runs one full analysis over a normalized post set. It holds no
// per-request state: Analyze is a pure function of (posts, authors, config)
// apart from the response timestamp, so concurrent requests never interact.
type Engine struct {
	cfg          *config.ScoringConfig
	detector     *Detector
	credibility  *CredibilityScorer
	coordination *CoordinationDetector
	sentiment    *SentimentClassifier
	aggregator   *Aggregator
}

// NewEngine wires the signal components from one scoring configuration.
func NewEngine(cfg *config.ScoringConfig) *Engine {
	detector := NewDetector(cfg)
	return &Engine{
		cfg:          cfg,
		detector:     detector,
		credibility:  NewCredibilityScorer(&cfg.Credibility),
		coordination: NewCoordinationDetector(&cfg.Coordination),
		sentiment:    NewSentimentClassifier(cfg.Reporting.SuspiciousBelow),
		aggregator:   NewAggregator(cfg, detector),
	}
}

// Analyze scores the post set. Pattern detection, coordination detection
// and credibility+sentiment run concurrently; aggregation waits for all
// three and then runs synchronously. A panic inside any signal component is
// recovered and replaced with that component's conservative default, never
// failing the request.
func (e *Engine) Analyze(ctx context.Context, posts []models.Post, authors map[string]models.Author) (models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	valid := filterScorable(posts)
	if len(valid) == 0 {
		return e.InsufficientDataResult(), nil
	}

	var (
		wg         sync.WaitGroup
		patterns   map[string]models.PatternMatch
		verdict    models.CoordinationVerdict
		creds      map[string]float64
		sentiments map[string]models.PostSentiment
	)

	wg.Add(3)

	go func() {
		defer wg.Done()
		defer recoverComponent("pattern_detector")
		patterns = e.detector.Detect(valid)
	}()

	go func() {
		defer wg.Done()
		defer recoverComponent("coordination_detector")
		verdict = e.coordination.Detect(valid)
	}()

	go func() {
		defer wg.Done()
		defer recoverComponent("credibility_sentiment")
		creds = e.credibility.Score(authors)
		sentiments = e.sentiment.Classify(valid, creds)
	}()

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return models.AnalysisResult{}, err
	}

	// Conservative defaults for any component that panicked.
	if patterns == nil {
		patterns = make(map[string]models.PatternMatch)
	}
	if creds == nil {
		creds = make(map[string]float64)
	}
	if sentiments == nil {
		sentiments = make(map[string]models.PostSentiment)
	}
	if verdict.TimeWindowSeconds == 0 {
		verdict.TimeWindowSeconds = e.cfg.Coordination.TimeWindowSeconds
	}

	score, riskLevel, metrics, breakdown, redFlags := e.aggregator.Aggregate(valid, patterns, creds, verdict, sentiments)

	return models.AnalysisResult{
		Score:          score,
		RiskLevel:      riskLevel,
		RedFlags:       redFlags,
		AnalyzedPosts:  len(valid),
		Metrics:        metrics,
		Breakdown:      breakdown,
		Recommendation: Recommend(riskLevel, breakdown),
		Sources:        countSources(valid),
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// InsufficientDataResult is the deterministic outcome for an empty or
// unscorable post set.
func (e *Engine) InsufficientDataResult() models.AnalysisResult {
	breakdown := models.Breakdown{}
	return models.AnalysisResult{
		Score:         50,
		RiskLevel:     "unknown",
		RedFlags:      []string{"Insufficient data for comprehensive analysis"},
		AnalyzedPosts: 0,
		Metrics: models.Metrics{
			Sentiment: "unknown",
		},
		Breakdown:      breakdown,
		Recommendation: Recommend("unknown", breakdown),
		Sources:        models.SourceCounts{},
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	}
}

// SentimentSummary condenses recent posts into the per-symbol sentiment
// aggregate served by the sentiment endpoint.
func (e *Engine) SentimentSummary(symbol string, posts []models.Post, authors map[string]models.Author) models.SentimentSummary {
	valid := filterScorable(posts)

	creds := e.credibility.Score(authors)
	sentiments := e.sentiment.Classify(valid, creds)

	totalScore := 0
	for _, p := range valid {
		totalScore += p.Score
	}

	avg := 0.0
	if len(valid) > 0 {
		avg = round1(float64(totalScore) / float64(len(valid)))
	}

	return models.SentimentSummary{
		Token:        symbol,
		Sentiment:    OverallSentiment(sentiments),
		AvgScore:     avg,
		PostCount:    len(valid),
		TotalUpvotes: totalScore,
	}
}

// filterScorable drops posts whose combined text is too short to score.
func filterScorable(posts []models.Post) []models.Post {
	valid := make([]models.Post, 0, len(posts))
	for _, p := range posts {
		if len(strings.TrimSpace(p.Title+" "+p.Text)) >= minScorableLength {
			valid = append(valid, p)
		}
	}
	return valid
}

func countSources(posts []models.Post) models.SourceCounts {
	var counts models.SourceCounts
	for _, p := range posts {
		switch p.Source {
		case "reddit":
			counts.Reddit++
		case "telegram":
			counts.Telegram++
		case "twitter":
			counts.Twitter++
		}
	}
	return counts
}

func recoverComponent(name string) {
	if r := recover(); r != nil {
		logrus.WithField("component", name).Errorf("analysis component failed, using conservative defaults: %v", r)
	}
}
