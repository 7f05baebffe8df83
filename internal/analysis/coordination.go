package analysis

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
)

// CoordinationDetector looks for manufactured consensus: bursts of posts
// from distinct authors inside a short time window, and near-duplicate
// templated text spread across accounts. Either signal alone marks the set
// as coordinated.
type CoordinationDetector struct {
	cfg *config.CoordinationConfig
}

// NewCoordinationDetector creates a detector with the given thresholds.
func NewCoordinationDetector(cfg *config.CoordinationConfig) *CoordinationDetector {
	return &CoordinationDetector{cfg: cfg}
}

// maxBucketProbes bounds pairwise comparisons per shingle bucket. Candidate
// pairs beyond this still merge transitively through shared neighbors, so
// clustering stays O(n·k) instead of O(n²).
const maxBucketProbes = 4

// Detect analyzes the whole post set. The input is re-sorted internally by
// (created_at, id), so the verdict is invariant under input reordering.
func (d *CoordinationDetector) Detect(posts []models.Post) models.CoordinationVerdict {
	verdict := models.CoordinationVerdict{
		TimeWindowSeconds: d.cfg.TimeWindowSeconds,
		Reason:            "no significant coordination detected",
	}

	if len(posts) < d.cfg.MinPosts {
		verdict.Reason = "insufficient posts for coordination analysis"
		return verdict
	}

	sorted := make([]models.Post, len(posts))
	copy(sorted, posts)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	burst, burstCount := d.detectBurst(sorted)
	clusterCount, maxCluster := d.clusterTemplates(sorted)

	verdict.ClusterCount = clusterCount
	verdict.MaxClusterSize = maxCluster

	templated := maxCluster >= d.cfg.MinClusterSize
	verdict.Coordinated = burst || templated

	switch {
	case burst && templated:
		verdict.Reason = fmt.Sprintf("%d distinct authors posted within %ds and %d posts share templated text",
			burstCount, d.cfg.TimeWindowSeconds, maxCluster)
	case burst:
		verdict.Reason = fmt.Sprintf("%d distinct authors posted within a %ds window", burstCount, d.cfg.TimeWindowSeconds)
	case templated:
		verdict.Reason = fmt.Sprintf("%d posts from distinct authors share near-identical text", maxCluster)
	}

	return verdict
}

// detectBurst slides a time window over the sorted posts and reports whether
// the densest window holds more distinct authors than the configured
// fraction of the set.
func (d *CoordinationDetector) detectBurst(sorted []models.Post) (bool, int) {
	window := int64(d.cfg.TimeWindowSeconds)
	authorCounts := make(map[string]int)
	maxDistinct := 0

	left := 0
	for right := range sorted {
		authorCounts[sorted[right].AuthorID]++
		for sorted[right].CreatedAt.Unix()-sorted[left].CreatedAt.Unix() > window {
			authorCounts[sorted[left].AuthorID]--
			if authorCounts[sorted[left].AuthorID] == 0 {
				delete(authorCounts, sorted[left].AuthorID)
			}
			left++
		}
		if len(authorCounts) > maxDistinct {
			maxDistinct = len(authorCounts)
		}
	}

	threshold := d.cfg.BurstFraction * float64(len(sorted))
	return float64(maxDistinct) > threshold, maxDistinct
}

// clusterTemplates groups near-duplicate posts from distinct authors.
// Posts are bucketed by word-shingle hash first; exact Jaccard similarity
// runs only inside buckets, and matches merge through path-compressed
// union-find. Roots are always the earliest post in a component, so a post
// equally similar to two clusters lands in the earlier-created one.
func (d *CoordinationDetector) clusterTemplates(sorted []models.Post) (clusterCount, maxCluster int) {
	n := len(sorted)
	wordSets := make([]map[string]struct{}, n)
	for i, p := range sorted {
		wordSets[i] = tokenSet(p.Title + " " + p.Text)
	}

	uf := newUnionFind(n)

	buckets := make(map[uint64][]int)
	for i := range sorted {
		for _, h := range shingleHashes(wordSets[i], d.cfg.ShingleSize) {
			buckets[h] = append(buckets[h], i)
		}
	}

	// Deterministic bucket iteration: order by the first (earliest) member.
	keys := make([]uint64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		ka, kb := buckets[keys[a]], buckets[keys[b]]
		if ka[0] != kb[0] {
			return ka[0] < kb[0]
		}
		return keys[a] < keys[b]
	})

	for _, k := range keys {
		members := buckets[k]
		for mi := 1; mi < len(members); mi++ {
			i := members[mi]
			probes := 0
			for mj := mi - 1; mj >= 0 && probes < maxBucketProbes; mj-- {
				j := members[mj]
				if uf.find(i) == uf.find(j) {
					continue
				}
				probes++
				if sorted[i].AuthorID == sorted[j].AuthorID {
					continue
				}
				if jaccard(wordSets[i], wordSets[j]) >= d.cfg.SimilarityThreshold {
					uf.union(i, j)
				}
			}
		}
	}

	sizes := make(map[int]int)
	for i := 0; i < n; i++ {
		sizes[uf.find(i)]++
	}
	for _, size := range sizes {
		if size >= 2 {
			clusterCount++
			if size > maxCluster {
				maxCluster = size
			}
		}
	}
	return clusterCount, maxCluster
}

// unionFind is an arena of int-indexed nodes with path compression.
// union keeps the smaller index as root; indices follow creation order, so
// the root is always the earliest-created post of its component.
type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(i, j int) {
	ri, rj := u.find(i), u.find(j)
	if ri == rj {
		return
	}
	if ri > rj {
		ri, rj = rj, ri
	}
	u.parent[rj] = ri
}

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "to": {}, "of": {},
	"in": {}, "on": {}, "at": {}, "for": {}, "it": {}, "this": {},
}

// tokenSet lowercases, folds obfuscation and drops stop words, so trivially
// mutated templates still collide.
func tokenSet(text string) map[string]struct{} {
	words := strings.Fields(foldObfuscation(strings.ToLower(text)))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,!?:;\"()[]")
		if w == "" {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// shingleHashes hashes the sorted word set in overlapping windows of k
// words. Sorting makes the shingles order-insensitive, which matches the
// Jaccard comparison that follows.
func shingleHashes(set map[string]struct{}, k int) []uint64 {
	words := make([]string, 0, len(set))
	for w := range set {
		words = append(words, w)
	}
	sort.Strings(words)

	if len(words) == 0 {
		return nil
	}
	if len(words) < k {
		k = len(words)
	}

	hashes := make([]uint64, 0, len(words)-k+1)
	for i := 0; i+k <= len(words); i++ {
		h := fnv.New64a()
		for j := i; j < i+k; j++ {
			h.Write([]byte(words[j]))
			h.Write([]byte{0})
		}
		hashes = append(hashes, h.Sum64())
	}
	return hashes
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
