package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
)

// Aggregator joins the four signal streams into the Truth Score, the risk
// band, the metric/breakdown blocks and the ordered red-flag list.
type Aggregator struct {
	cfg      *config.ScoringConfig
	detector *Detector
}

// NewAggregator creates an aggregator. The detector is only consulted for
// flag descriptions and severities.
func NewAggregator(cfg *config.ScoringConfig, detector *Detector) *Aggregator {
	return &Aggregator{cfg: cfg, detector: detector}
}

// Aggregate combines the per-post and whole-set signals. It assumes a
// non-empty post set; the zero-post outcome is handled by the engine.
func (a *Aggregator) Aggregate(
	posts []models.Post,
	patterns map[string]models.PatternMatch,
	credibility map[string]float64,
	verdict models.CoordinationVerdict,
	sentiments map[string]models.PostSentiment,
) (float64, string, models.Metrics, models.Breakdown, []string) {

	contentScore, highRisk, flagCounts := a.contentSignal(posts, patterns)
	credScore, suspicious := a.credibilitySignal(posts, credibility)
	coordRisk := a.coordinationRisk(verdict, len(posts))
	engagement, lowQuality := a.engagementSignal(posts, sentiments)

	w := a.cfg.Weights
	score := (100-contentScore)*w.Content +
		credScore*w.Credibility +
		(100-coordRisk)*w.Coordination +
		engagement*w.Engagement

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	score = round1(score)

	metrics := models.Metrics{
		ContentScamScore:   round1(contentScore),
		AccountCredibility: round1(credScore),
		CoordinationRisk:   round1(coordRisk),
		EngagementQuality:  round1(engagement),
		Sentiment:          OverallSentiment(sentiments),
	}

	breakdown := models.Breakdown{
		HighRiskPosts:        highRisk,
		SuspiciousAccounts:   suspicious,
		Coordinated:          verdict.Coordinated,
		LowQualityEngagement: lowQuality,
	}

	redFlags := a.assembleRedFlags(flagCounts, verdict, suspicious, engagement, lowQuality)

	return score, a.RiskLevel(score), metrics, breakdown, redFlags
}

// RiskLevel maps a score onto the configured bands. The bands partition
// [0,100] with no gaps: each threshold is an inclusive lower bound.
func (a *Aggregator) RiskLevel(score float64) string {
	b := a.cfg.RiskBands
	switch {
	case score >= b.Low:
		return "low"
	case score >= b.Medium:
		return "medium"
	case score >= b.High:
		return "high"
	default:
		return "critical"
	}
}

func (a *Aggregator) contentSignal(posts []models.Post, patterns map[string]models.PatternMatch) (float64, int, map[string]int) {
	flagCounts := make(map[string]int)
	var sum float64
	scored := 0
	highRisk := 0

	for _, post := range posts {
		match, ok := patterns[post.ID]
		if !ok {
			continue
		}
		sum += match.ScamScore
		scored++
		if match.ScamScore >= a.cfg.Reporting.HighRiskPostScore {
			highRisk++
		}
		for _, flag := range match.Flags {
			flagCounts[flag]++
		}
	}

	if scored == 0 {
		return 0, 0, flagCounts
	}
	return sum / float64(scored), highRisk, flagCounts
}

// credibilitySignal averages author credibility weighted by post count:
// each post contributes its author's score once.
func (a *Aggregator) credibilitySignal(posts []models.Post, credibility map[string]float64) (float64, int) {
	var sum float64
	counted := 0
	for _, post := range posts {
		cred, ok := credibility[post.AuthorID]
		if !ok {
			continue
		}
		sum += cred
		counted++
	}

	suspicious := 0
	for _, cred := range credibility {
		if cred < a.cfg.Reporting.SuspiciousBelow {
			suspicious++
		}
	}

	if counted == 0 {
		return 50, suspicious
	}
	return sum / float64(counted), suspicious
}

// coordinationRisk converts the verdict into a 0-100 risk. A clean set
// keeps a low non-zero baseline; a coordinated set scales with how much of
// it belongs to the largest template cluster.
func (a *Aggregator) coordinationRisk(verdict models.CoordinationVerdict, total int) float64 {
	const baseline = 10
	if !verdict.Coordinated || total == 0 {
		return baseline
	}
	risk := 50 + 50*float64(verdict.MaxClusterSize)/float64(total)
	if risk > 100 {
		risk = 100
	}
	return risk
}

func (a *Aggregator) engagementSignal(posts []models.Post, sentiments map[string]models.PostSentiment) (float64, int) {
	var sum float64
	counted := 0
	lowQuality := 0
	for _, post := range posts {
		ps, ok := sentiments[post.ID]
		if !ok {
			continue
		}
		sum += ps.EngagementQuality
		counted++
		if ps.EngagementQuality < a.cfg.Reporting.LowEngagementBelow {
			lowQuality++
		}
	}
	if counted == 0 {
		return 50, 0
	}
	return sum / float64(counted), lowQuality
}

type rankedFlag struct {
	text     string
	severity int
	count    int
}

// assembleRedFlags merges pattern findings with coordination and
// credibility findings into one de-duplicated list, highest severity first.
func (a *Aggregator) assembleRedFlags(flagCounts map[string]int, verdict models.CoordinationVerdict, suspicious int, engagement float64, lowQuality int) []string {
	ranked := make([]rankedFlag, 0, len(flagCounts)+3)

	for name, count := range flagCounts {
		desc, severity := a.detector.FlagMeta(name)
		text := desc
		if count > 1 {
			text = fmt.Sprintf("%s (%dx)", desc, count)
		}
		ranked = append(ranked, rankedFlag{text: text, severity: severity, count: count})
	}

	if verdict.Coordinated {
		ranked = append(ranked, rankedFlag{
			text:     fmt.Sprintf("Coordinated activity: %s", verdict.Reason),
			severity: 93,
			count:    verdict.MaxClusterSize,
		})
	}

	if suspicious > 0 {
		ranked = append(ranked, rankedFlag{
			text:     fmt.Sprintf("%d low-credibility accounts pushing this token", suspicious),
			severity: 80,
			count:    suspicious,
		})
	}

	if engagement < a.cfg.Reporting.LowEngagementBelow {
		ranked = append(ranked, rankedFlag{
			text:     fmt.Sprintf("Poor engagement quality (%d low-quality posts)", lowQuality),
			severity: 30,
			count:    lowQuality,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].severity != ranked[j].severity {
			return ranked[i].severity > ranked[j].severity
		}
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].text < ranked[j].text
	})

	seen := make(map[string]bool, len(ranked))
	flags := make([]string, 0, len(ranked))
	for _, rf := range ranked {
		if seen[rf.text] {
			continue
		}
		seen[rf.text] = true
		flags = append(flags, rf.text)
		if len(flags) >= a.cfg.Reporting.MaxRedFlags {
			break
		}
	}
	return flags
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
