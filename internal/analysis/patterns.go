package analysis

import (
	"strings"
	"unicode"

	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
)

// minScorableLength is the shortest combined title+text worth scoring.
// Shorter posts score 0 and contribute no flags.
const minScorableLength = 10

// Detector scans post text against the configured scam-pattern catalog.
// Detection is pure: the same post always yields the same match.
type Detector struct {
	cfg *config.ScoringConfig
}

// NewDetector creates a pattern detector backed by the given catalog.
func NewDetector(cfg *config.ScoringConfig) *Detector {
	return &Detector{cfg: cfg}
}

// Detect scores every post against the catalog. Output is keyed by post ID
// and independent of input order. Malformed or empty posts score 0.
func (d *Detector) Detect(posts []models.Post) map[string]models.PatternMatch {
	matches := make(map[string]models.PatternMatch, len(posts))
	for _, post := range posts {
		matches[post.ID] = d.analyzePost(post)
	}
	return matches
}

func (d *Detector) analyzePost(post models.Post) models.PatternMatch {
	text := strings.TrimSpace(post.Title + " " + post.Text)
	if len(text) < minScorableLength {
		return models.PatternMatch{PostID: post.ID, ScamScore: 0}
	}

	lower := strings.ToLower(text)
	folded := foldObfuscation(lower)

	var score float64
	var flags []string

	// Keyword categories. Each match adds the category weight, capped at
	// twice the weight per category. Keywords are checked against both the
	// plain lowercase text and the obfuscation-folded variant so that
	// "gu4r4nteed" still hits "guaranteed".
	for _, cat := range d.cfg.Patterns {
		hits := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(lower, kw) || strings.Contains(folded, foldObfuscation(kw)) {
				hits++
			}
		}
		if hits > 0 {
			catScore := float64(hits) * cat.Weight
			if max := cat.Weight * 2; catScore > max {
				catScore = max
			}
			score += catScore
			flags = append(flags, cat.Name)
		}
	}

	// Regex phrase patterns run against the plain lowercase text; folding
	// would corrupt the digits and addresses they look for.
	for _, ph := range d.cfg.Phrases {
		if ph.Compiled().MatchString(lower) {
			score += ph.Weight
			flags = append(flags, ph.Name)
		}
	}

	score += d.structuralScore(text, &flags)

	if score > 100 {
		score = 100
	}

	return models.PatternMatch{PostID: post.ID, Flags: flags, ScamScore: score}
}

// structuralScore covers shape-of-text signals that need the original
// casing: shouting, emoji walls and exclamation streaks.
func (d *Detector) structuralScore(text string, flags *[]string) float64 {
	var score float64

	letters, upper := 0, 0
	emojis := 0
	exclaims := 0
	for _, r := range text {
		switch {
		case unicode.IsLetter(r):
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		case r == '!':
			exclaims++
		case r >= 0x1F300 && r <= 0x1FAFF:
			emojis++
		}
	}

	if letters > 20 {
		ratio := float64(upper) / float64(letters)
		if ratio > 0.5 {
			score += 20
			*flags = append(*flags, flagExcessiveCaps)
		} else if ratio > 0.3 {
			score += 10
			*flags = append(*flags, flagExcessiveCaps)
		}
	}

	if emojis > 10 {
		score += 20
		*flags = append(*flags, flagExcessiveEmoji)
	} else if emojis > 5 {
		score += 10
		*flags = append(*flags, flagExcessiveEmoji)
	}

	if exclaims > 10 {
		score += 15
		*flags = append(*flags, flagExcessiveExclaim)
	} else if exclaims > 5 {
		score += 8
		*flags = append(*flags, flagExcessiveExclaim)
	}

	return score
}

// Structural flag identifiers emitted alongside catalog categories.
const (
	flagExcessiveCaps    = "excessive_caps"
	flagExcessiveEmoji   = "excessive_emoji"
	flagExcessiveExclaim = "excessive_exclamation"
)

type flagMeta struct {
	description string
	severity    int
}

var structuralFlagMeta = map[string]flagMeta{
	flagExcessiveCaps:    {"Excessive caps-lock shouting", 40},
	flagExcessiveEmoji:   {"Excessive emoji density", 38},
	flagExcessiveExclaim: {"Excessive exclamation marks", 36},
}

// FlagMeta resolves a flag identifier to its human-readable description and
// severity, falling back to the identifier itself for unknown flags.
func (d *Detector) FlagMeta(name string) (string, int) {
	for _, cat := range d.cfg.Patterns {
		if cat.Name == name {
			return cat.Description, cat.Severity
		}
	}
	for _, ph := range d.cfg.Phrases {
		if ph.Name == name {
			return ph.Description, ph.Severity
		}
	}
	if m, ok := structuralFlagMeta[name]; ok {
		return m.description, m.severity
	}
	return name, 0
}

// ScamRiskLevel classifies a raw per-text scam score. This is the inverse
// scale of the Truth Score bands: higher means worse.
func ScamRiskLevel(score float64) string {
	switch {
	case score >= 70:
		return "critical"
	case score >= 50:
		return "high"
	case score >= 30:
		return "medium"
	default:
		return "low"
	}
}

// leetFold maps common obfuscation characters back to the letters they
// stand in for. Applied only to a matching copy, never to the stored text.
var leetFold = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'$': 's',
	'@': 'a',
}

// foldObfuscation lowercases leet substitutions and strips the punctuation
// scammers thread through keywords (g.u.a.r.a.n.t.e.e.d).
func foldObfuscation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if mapped, ok := leetFold[r]; ok {
			b.WriteRune(mapped)
			continue
		}
		switch r {
		case '.', '*', '_', '-', '\'':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
