package trending

import (
	"regexp"
	"sort"
	"time"

	"github.com/truthfi/truthfi/internal/models"
)

var (
	dollarSymbolPattern = regexp.MustCompile(`\$([A-Z]{2,10})\b`)
	bareSymbolPattern   = regexp.MustCompile(`\b([A-Z]{3,10})\b`)
)

// excludedWords filters common all-caps words out of bare-symbol matches.
var excludedWords = map[string]bool{
	"THE": true, "AND": true, "FOR": true, "NOT": true, "BUT": true,
	"ARE": true, "YOU": true, "ALL": true, "CAN": true, "WAS": true,
	"ONE": true, "OUR": true, "OUT": true, "DAY": true, "GET": true,
	"HAS": true, "HOW": true, "NEW": true, "NOW": true, "OLD": true,
	"SEE": true, "TWO": true, "WAY": true, "WHO": true, "DID": true,
	"ITS": true, "LET": true, "PUT": true, "SAY": true, "TOO": true,
	"USE": true, "WILL": true, "ABOUT": true, "BEEN": true, "HAVE": true,
	"INTO": true, "LIKE": true, "MORE": true, "SOME": true, "THAN": true,
	"THAT": true, "THEM": true, "THEN": true, "THESE": true, "THIS": true,
	"WHAT": true, "WHEN": true, "WHERE": true, "WHICH": true, "WITH": true,
	"YOUR": true, "WOULD": true, "COULD": true, "SHOULD": true,
	"CRYPTO": true, "COIN": true, "TOKEN": true, "PRICE": true,
	"REDDIT": true, "POST": true, "COMMENT": true, "USD": true, "API": true,
	"AMA": true, "FYI": true, "IMO": true, "TLDR": true, "DYOR": true,
	"FOMO": true, "HODL": true, "DEFI": true, "NFT": true, "ATH": true,
}

// Rank counts token-symbol mentions across the post set and returns the
// top entries, most mentioned first. Ties go to the symbol mentioned most
// recently, then alphabetically for a stable order.
func Rank(posts []models.Post, limit int) []models.TrendingToken {
	mentions := make(map[string]int)
	lastSeen := make(map[string]time.Time)

	for _, post := range posts {
		text := post.Title + " " + post.Text
		for _, symbol := range extractSymbols(text) {
			mentions[symbol]++
			if post.CreatedAt.After(lastSeen[symbol]) {
				lastSeen[symbol] = post.CreatedAt
			}
		}
	}

	ranked := make([]models.TrendingToken, 0, len(mentions))
	for symbol, count := range mentions {
		ranked = append(ranked, models.TrendingToken{Symbol: symbol, Mentions: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Mentions != ranked[j].Mentions {
			return ranked[i].Mentions > ranked[j].Mentions
		}
		ti, tj := lastSeen[ranked[i].Symbol], lastSeen[ranked[j].Symbol]
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return ranked[i].Symbol < ranked[j].Symbol
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// extractSymbols pulls candidate token symbols from text. $SYM matches are
// taken as-is; bare all-caps words pass through the exclusion list. A
// symbol is counted once per post.
func extractSymbols(text string) []string {
	seen := make(map[string]bool)
	var symbols []string

	for _, m := range dollarSymbolPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] && !excludedWords[m[1]] {
			seen[m[1]] = true
			symbols = append(symbols, m[1])
		}
	}
	for _, m := range bareSymbolPattern.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] && !excludedWords[m[1]] {
			seen[m[1]] = true
			symbols = append(symbols, m[1])
		}
	}
	return symbols
}
