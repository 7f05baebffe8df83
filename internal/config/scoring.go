package config

import (
	"fmt"
	"math"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ScoringConfig is the versioned scoring configuration: the pattern catalog,
// component weights and every threshold the engine consults. It is loaded
// once at startup; an invalid file is fatal, never a request-time error.
type ScoringConfig struct {
	Version      string             `yaml:"version"`
	Weights      ComponentWeights   `yaml:"weights"`
	RiskBands    RiskBands          `yaml:"risk_bands"`
	Patterns     []PatternCategory  `yaml:"patterns"`
	Phrases      []PhrasePattern    `yaml:"phrases"`
	Coordination CoordinationConfig `yaml:"coordination"`
	Credibility  CredibilityConfig  `yaml:"credibility"`
	Reporting    ReportingConfig    `yaml:"reporting"`
}

// ComponentWeights defines how the four signal scores combine into the
// Truth Score. Content and coordination are inverted before weighting.
type ComponentWeights struct {
	Content      float64 `yaml:"content"`
	Credibility  float64 `yaml:"credibility"`
	Coordination float64 `yaml:"coordination"`
	Engagement   float64 `yaml:"engagement"`
}

// RiskBands are the inclusive lower bounds of the low/medium/high bands.
// Scores below High are critical.
type RiskBands struct {
	Low    float64 `yaml:"low"`
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

// PatternCategory is one keyword-driven scam pattern. Matching keywords
// contribute Weight points each, capped at twice the weight per category.
type PatternCategory struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Weight      float64  `yaml:"weight"`
	Severity    int      `yaml:"severity"`
	Keywords    []string `yaml:"keywords"`
}

// PhrasePattern is a regex-driven scam pattern matched against raw text.
type PhrasePattern struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Weight      float64 `yaml:"weight"`
	Severity    int     `yaml:"severity"`
	Regex       string  `yaml:"regex"`

	compiled *regexp.Regexp
}

// Compiled returns the compiled regex; Load guarantees it is valid.
func (p *PhrasePattern) Compiled() *regexp.Regexp {
	return p.compiled
}

// CoordinationConfig tunes burst and template-similarity detection.
type CoordinationConfig struct {
	TimeWindowSeconds   int     `yaml:"time_window_seconds"`
	BurstFraction       float64 `yaml:"burst_fraction"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MinPosts            int     `yaml:"min_posts"`
	MinClusterSize      int     `yaml:"min_cluster_size"`
	ShingleSize         int     `yaml:"shingle_size"`
}

// CredibilityConfig tunes account credibility scoring.
type CredibilityConfig struct {
	MinAccountAgeDays int     `yaml:"min_account_age_days"`
	NewAccountCap     float64 `yaml:"new_account_cap"`
	UnknownAgeDefault float64 `yaml:"unknown_age_default"`
	AgeWeight         float64 `yaml:"age_weight"`
	ReputationWeight  float64 `yaml:"reputation_weight"`
	HistoryWeight     float64 `yaml:"history_weight"`
	AgeSaturationDays int     `yaml:"age_saturation_days"`
	HistorySaturation int     `yaml:"history_saturation"`
}

// ReportingConfig tunes which findings cross into the red-flag list.
type ReportingConfig struct {
	HighRiskPostScore  float64 `yaml:"high_risk_post_score"`
	SuspiciousBelow    float64 `yaml:"suspicious_below"`
	LowEngagementBelow float64 `yaml:"low_engagement_below"`
	MaxRedFlags        int     `yaml:"max_red_flags"`
}

// LoadScoring loads the scoring configuration from a YAML file, or the
// built-in defaults when path is empty.
func LoadScoring(path string) (*ScoringConfig, error) {
	if path == "" {
		cfg := DefaultScoring()
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("default scoring config validation failed: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scoring config %s: %w", path, err)
	}

	var cfg ScoringConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scoring config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("scoring config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *ScoringConfig) validate() error {
	sum := c.Weights.Content + c.Weights.Credibility + c.Weights.Coordination + c.Weights.Engagement
	if math.Abs(sum-1.0) > 0.01 {
		return fmt.Errorf("component weights must sum to 1.0, got %.3f", sum)
	}

	b := c.RiskBands
	if !(b.Low > b.Medium && b.Medium > b.High && b.High > 0 && b.Low < 100) {
		return fmt.Errorf("risk bands must satisfy 0 < high < medium < low < 100, got %+v", b)
	}

	if len(c.Patterns) == 0 {
		return fmt.Errorf("pattern catalog is empty")
	}
	seen := make(map[string]bool)
	for _, p := range c.Patterns {
		if p.Name == "" || p.Weight <= 0 || len(p.Keywords) == 0 {
			return fmt.Errorf("pattern %q must have a name, a positive weight and keywords", p.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate pattern category %q", p.Name)
		}
		seen[p.Name] = true
	}

	for i := range c.Phrases {
		ph := &c.Phrases[i]
		re, err := regexp.Compile(ph.Regex)
		if err != nil {
			return fmt.Errorf("phrase pattern %q has invalid regex: %w", ph.Name, err)
		}
		ph.compiled = re
	}

	co := c.Coordination
	if co.TimeWindowSeconds <= 0 {
		return fmt.Errorf("coordination time_window_seconds must be positive")
	}
	if co.BurstFraction <= 0 || co.BurstFraction > 1 {
		return fmt.Errorf("coordination burst_fraction must be in (0,1]")
	}
	if co.SimilarityThreshold <= 0 || co.SimilarityThreshold > 1 {
		return fmt.Errorf("coordination similarity_threshold must be in (0,1]")
	}
	if co.MinClusterSize < 2 {
		return fmt.Errorf("coordination min_cluster_size must be at least 2")
	}
	if co.ShingleSize < 1 {
		return fmt.Errorf("coordination shingle_size must be at least 1")
	}

	cr := c.Credibility
	if cr.MinAccountAgeDays < 0 {
		return fmt.Errorf("credibility min_account_age_days must not be negative")
	}
	wsum := cr.AgeWeight + cr.ReputationWeight + cr.HistoryWeight
	if math.Abs(wsum-1.0) > 0.01 {
		return fmt.Errorf("credibility weights must sum to 1.0, got %.3f", wsum)
	}
	if cr.AgeSaturationDays <= 0 || cr.HistorySaturation <= 0 {
		return fmt.Errorf("credibility saturation values must be positive")
	}

	if c.Reporting.MaxRedFlags < 1 {
		return fmt.Errorf("reporting max_red_flags must be at least 1")
	}

	return nil
}

// DefaultScoring returns the built-in scoring configuration. The catalog
// mirrors known crypto scam playbooks: guarantees, urgency, FOMO bait,
// DM solicitation, fake authority and pump-group vocabulary.
func DefaultScoring() *ScoringConfig {
	return &ScoringConfig{
		Version: "1.0",
		Weights: ComponentWeights{
			Content:      0.40,
			Credibility:  0.30,
			Coordination: 0.20,
			Engagement:   0.10,
		},
		RiskBands: RiskBands{Low: 75, Medium: 55, High: 35},
		Patterns: []PatternCategory{
			{
				Name:        "pump_and_dump",
				Description: "Pump & dump signal language",
				Weight:      30,
				Severity:    95,
				Keywords: []string{
					"pump", "dump", "pump group", "signal group", "trading signal",
					"buy signal", "sell signal", "entry point", "exit point",
					"buy zone", "accumulation phase", "next call",
				},
			},
			{
				Name:        "guaranteed_returns",
				Description: "Unrealistic guaranteed returns",
				Weight:      25,
				Severity:    90,
				Keywords: []string{
					"guaranteed", "guaranteed profit", "guaranteed returns", "sure thing",
					"no risk", "risk-free", "zero risk", "can't lose", "cannot fail",
					"safe bet", "will moon", "100% gains",
				},
			},
			{
				Name:        "unsolicited_dm_pattern",
				Description: "Unsolicited promotion and DM solicitation",
				Weight:      20,
				Severity:    70,
				Keywords: []string{
					"dm me", "dm for", "join now", "buy now", "act fast", "spots left",
					"limited spots", "whitelist", "exclusive access", "vip only",
					"private group", "insider info", "telegram group",
				},
			},
			{
				Name:        "fomo_language",
				Description: "FOMO bait language",
				Weight:      20,
				Severity:    65,
				Keywords: []string{
					"moon", "to the moon", "lambo", "100x", "1000x", "hidden gem",
					"next bitcoin", "next eth", "don't miss", "massive gains",
					"life changing", "financial freedom", "before it's too late",
				},
			},
			{
				Name:        "urgency_language",
				Description: "Artificial urgency tactics",
				Weight:      15,
				Severity:    60,
				Keywords: []string{
					"hurry", "urgent", "limited time", "last chance", "ending soon",
					"act now", "don't wait", "right now", "immediately", "today only",
					"hours left", "deadline", "countdown",
				},
			},
			{
				Name:        "suspicious_offers",
				Description: "Suspicious giveaway or presale offers",
				Weight:      15,
				Severity:    55,
				Keywords: []string{
					"airdrop", "giveaway", "free tokens", "free crypto", "presale",
					"private sale", "early access", "bonus tokens", "double your",
					"triple your", "multiply your",
				},
			},
			{
				Name:        "impersonation_markers",
				Description: "False authority or impersonation claims",
				Weight:      18,
				Severity:    50,
				Keywords: []string{
					"professional trader", "whale", "insider", "team member",
					"official announcement", "endorsed by", "approved by",
					"verified by", "certified", "partnered with binance",
				},
			},
			{
				Name:        "trust_seeking",
				Description: "Defensive trust-seeking language",
				Weight:      18,
				Severity:    45,
				Keywords: []string{
					"trust me", "believe me", "i promise", "not a scam", "no scam",
					"100% legit", "100% real", "real deal", "legit project",
				},
			},
		},
		Phrases: []PhrasePattern{
			{
				Name:        "send_to_receive",
				Description: "Send-crypto-to-receive scheme",
				Weight:      25,
				Severity:    98,
				Regex:       `send.{0,40}(btc|eth|usdt|bnb|sol).{0,40}(receive|get|back)`,
			},
			{
				Name:        "wallet_drain",
				Description: "Wallet connection or verification request",
				Weight:      25,
				Severity:    97,
				Regex:       `(connect|verify|validate).{0,30}wallet.{0,40}(claim|receive|get|unlock)`,
			},
			{
				Name:        "return_multiplier",
				Description: "Extreme return multiplier promise",
				Weight:      30,
				Severity:    85,
				Regex:       `\b(\d{3,})\s*(x|%)\s*(profit|gain|return|apy|apr|moon)?`,
			},
			{
				Name:        "celebrity_giveaway",
				Description: "Celebrity giveaway bait",
				Weight:      25,
				Severity:    88,
				Regex:       `(elon|musk|vitalik|cz).{0,40}(giveaway|airdrop)`,
			},
			{
				Name:        "suspicious_link",
				Description: "Shortened or throwaway link",
				Weight:      20,
				Severity:    75,
				Regex:       `(bit\.ly|tinyurl|t\.me/\+|discord\.gg|forms\.gle|rb\.gy|cutt\.ly|shorturl)`,
			},
			{
				Name:        "wallet_address",
				Description: "Raw wallet address in post",
				Weight:      15,
				Severity:    72,
				Regex:       `\b(0x[a-fA-F0-9]{40}|[13][a-km-zA-HJ-NP-Z1-9]{25,34}|T[A-Za-z1-9]{33})\b`,
			},
		},
		Coordination: CoordinationConfig{
			TimeWindowSeconds:   300,
			BurstFraction:       0.4,
			SimilarityThreshold: 0.7,
			MinPosts:            5,
			MinClusterSize:      3,
			ShingleSize:         3,
		},
		Credibility: CredibilityConfig{
			MinAccountAgeDays: 30,
			NewAccountCap:     25,
			UnknownAgeDefault: 50,
			AgeWeight:         0.40,
			ReputationWeight:  0.35,
			HistoryWeight:     0.25,
			AgeSaturationDays: 365,
			HistorySaturation: 200,
		},
		Reporting: ReportingConfig{
			HighRiskPostScore:  60,
			SuspiciousBelow:    40,
			LowEngagementBelow: 40,
			MaxRedFlags:        15,
		},
	}
}
